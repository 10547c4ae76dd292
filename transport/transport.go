package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Transport sends a request and returns the raw response.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f Func) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Request describes an outbound request.
type Request struct {
	// URL is the absolute target URL.
	URL *url.URL
	// Method is the HTTP method.
	Method string
	// Headers are sent in order.
	Headers Headers
	// Body is the request payload. Nil means no body.
	Body []byte
	// Timeout bounds the whole exchange. Zero leaves it to the adapter config.
	Timeout time.Duration
}

// Response is the result of a request.
type Response struct {
	// StatusCode is the HTTP status code. Zero means it could not be read.
	StatusCode int
	// Headers are the response headers, first value only.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// Header is a single name/value pair.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list. Names compare case-insensitively.
type Headers []Header

// Set replaces the value of name in place, or appends it.
func (h *Headers) Set(name, value string) {
	key := http.CanonicalHeaderKey(name)
	for i := range *h {
		if http.CanonicalHeaderKey((*h)[i].Name) == key {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Header{Name: key, Value: value})
}

// Get returns the value of name and whether it was present.
func (h Headers) Get(name string) (string, bool) {
	key := http.CanonicalHeaderKey(name)
	for _, hd := range h {
		if http.CanonicalHeaderKey(hd.Name) == key {
			return hd.Value, true
		}
	}
	return "", false
}

// Del removes name.
func (h *Headers) Del(name string) {
	key := http.CanonicalHeaderKey(name)
	out := (*h)[:0]
	for _, hd := range *h {
		if http.CanonicalHeaderKey(hd.Name) != key {
			out = append(out, hd)
		}
	}
	*h = out
}

// Len returns the number of headers.
func (h Headers) Len() int { return len(h) }

// Each calls fn for every header in order.
func (h Headers) Each(fn func(name, value string)) {
	for _, hd := range h {
		fn(hd.Name, hd.Value)
	}
}
