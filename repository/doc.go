// Package repository implements a typed JSON client bound to one API host.
//
// A Repository[T] turns (path, params) into an https request, attaches a
// bearer token when one is stored, and decodes the JSON response into T or
// []T:
//
//	users := repository.New[User]("api.example.com", adapter, tokens, probe)
//	u, err := users.FetchOne(ctx, "/users/42", nil)
//	list, err := users.FetchMany(ctx, "/users", UserQuery{Active: true})
//
// Every call is gated by the connectivity probe. Errors that reach the
// caller are always *errors.AppError values from the closed taxonomy in
// package errors.
package repository
