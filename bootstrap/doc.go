// Package bootstrap wires a repository stack from configuration.
//
//	cfg, err := config.Load("my-app")
//	stack, err := bootstrap.New(*cfg)
//	if err := stack.Start(ctx); err != nil { ... }
//	defer stack.Stop(context.Background())
//
//	users := bootstrap.NewRepository[User](stack)
//	u, err := users.FetchOne(ctx, "/users/42", nil)
//
// The stack owns the logger, the token store, the connectivity probe, the
// HTTP transport and the telemetry providers. Components start in that
// dependency order and stop in reverse.
package bootstrap
