// Package transport is the capability that sends a fully described request
// and returns its status and body.
//
// The repository builds a Request (URL, method, ordered headers, optional
// body, timeout) and hands it to a Transport. The Adapter implementation uses
// net/http; tests substitute a Func.
//
//	a, err := transport.New(transport.Config{})
//	resp, err := a.Send(ctx, &transport.Request{
//	    URL:     u,
//	    Method:  http.MethodGet,
//	    Timeout: 20 * time.Second,
//	})
//
// The transport does not interpret status codes. Callers decide which
// statuses are acceptable.
package transport
