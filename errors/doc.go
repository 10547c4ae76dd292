// Package errors defines the closed set of failures a repository call can
// surface to its caller.
//
// Every error leaving the repository boundary is an *AppError carrying one of
// five codes:
//
//   - NO_INTERNET: the connectivity probe reported no network; nothing was sent.
//   - SERVER_ERROR: unreadable or rejected status, or any unrecognized failure.
//   - BAD_DATA: malformed URL, unencodable parameters, or an unclassified decode failure.
//   - EXPIRED_TOKEN: the token store held data that is not a usable token.
//   - CUSTOM_ERROR: a described failure, such as a structured decode error or a token store failure.
//
// Use the Is* predicates or CodeOf to branch on the kind:
//
//	if errors.IsNoInternet(err) {
//	    // show offline banner
//	}
package errors
