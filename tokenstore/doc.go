// Package tokenstore holds the bearer credential that the repository attaches
// to outgoing requests.
//
// A Store saves, retrieves and removes a single token. "No token" is not an
// error: Retrieve reports it with ok == false. Backends:
//
//   - Memory: in-process, optional TTL (go-cache).
//   - Redis: shared across processes, optional TTL (go-redis).
//
// Decorators compose over any Store:
//
//   - Encrypted seals the token before it reaches the backend.
//   - ExpiryChecked reports EXPIRED_TOKEN for JWTs whose exp claim has passed.
//
//	store := tokenstore.NewExpiryChecked(
//	    tokenstore.NewEncrypted(tokenstore.NewMemory(), cipher),
//	)
//
// Failures are *errors.AppError values: CUSTOM_ERROR for backend failures and
// EXPIRED_TOKEN for stored data that is not a usable token.
package tokenstore
