package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	apperrors "github.com/kbukum/coreapi/errors"
	"github.com/kbukum/coreapi/transport"
)

const (
	scheme          = "https"
	jsonContentType = "application/json; charset=utf-8"
)

// TokenSource yields the bearer token attached to requests. ok is false when
// no token is stored; that is not an error. tokenstore.Store satisfies it.
type TokenSource interface {
	Retrieve(ctx context.Context) (token string, ok bool, err error)
}

// newRequest builds the descriptor for one call. Every error it returns is
// an AppError: BAD_DATA for anything wrong with host, path or params, and
// the token source's own error kinds.
func (r *Repository[T]) newRequest(ctx context.Context, op operation, path string, params any) (*transport.Request, error) {
	u, err := buildURL(r.host, path)
	if err != nil {
		return nil, apperrors.BadData(err)
	}

	req := &transport.Request{
		URL:     u,
		Method:  op.method,
		Timeout: RequestTimeout,
	}

	if op.query {
		q, err := encodeQuery(params)
		if err != nil {
			return nil, apperrors.BadData(err)
		}
		u.RawQuery = q
	} else if op.body {
		body, err := encodeBody(params)
		if err != nil {
			return nil, apperrors.BadData(err)
		}
		req.Body = body
	}

	req.Headers.Set("Content-Type", jsonContentType)
	req.Headers.Set("Accept", jsonContentType)

	token, err := r.bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Headers.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (r *Repository[T]) bearerToken(ctx context.Context) (string, error) {
	if r.tokens == nil {
		return "", nil
	}
	token, ok, err := r.tokens.Retrieve(ctx)
	if err != nil {
		if ae, isApp := apperrors.AsAppError(err); isApp {
			return "", ae
		}
		return "", apperrors.Customf("error while retrieving token: %v", err).WithCause(err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// buildURL joins the fixed scheme, host and path.
func buildURL(host, path string) (*url.URL, error) {
	asciiHost, err := normalizeHost(host)
	if err != nil {
		return nil, err
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must start with /", path)
	}
	return &url.URL{Scheme: scheme, Host: asciiHost, Path: path}, nil
}

// ValidateHost reports whether host is accepted as a repository host: a DNS
// name valid under IDNA lookup rules or an IP literal, with an optional :port.
func ValidateHost(host string) error {
	_, err := normalizeHost(host)
	return err
}

// normalizeHost validates host[:port] and returns it with the name in its
// ASCII (punycode) form. IP literals are accepted as-is.
func normalizeHost(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}

	name, port := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 1 || n > 65535 {
			return "", fmt.Errorf("invalid port in host %q", host)
		}
		name, port = h, p
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		name = host[1 : len(host)-1]
	}

	if ip := net.ParseIP(name); ip != nil {
		if port == "" {
			if ip.To4() == nil {
				return "[" + name + "]", nil
			}
			return name, nil
		}
		return net.JoinHostPort(name, port), nil
	}

	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", host, err)
	}
	if ascii == "" {
		return "", fmt.Errorf("invalid host %q", host)
	}
	if port == "" {
		return ascii, nil
	}
	return net.JoinHostPort(ascii, port), nil
}

// encodeQuery flattens params one level deep. params is encoded to JSON and
// must produce an object; each member becomes one query item. Scalars are
// written in their JSON text form (strings unquoted), nested values as
// compact JSON, and null members are skipped.
func encodeQuery(params any) (string, error) {
	if params == nil {
		return "", nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode query parameters: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var members map[string]any
	if err := dec.Decode(&members); err != nil {
		return "", fmt.Errorf("query parameters must encode to a JSON object, got %s", jsonKind(raw))
	}

	values := make(url.Values, len(members))
	for key, v := range members {
		switch v := v.(type) {
		case nil:
			continue
		case string:
			values.Set(key, v)
		case json.Number:
			values.Set(key, v.String())
		case bool:
			values.Set(key, strconv.FormatBool(v))
		default:
			nested, err := compactJSON(v)
			if err != nil {
				return "", fmt.Errorf("encode query parameter %q: %w", key, err)
			}
			values.Set(key, nested)
		}
	}
	return values.Encode(), nil
}

// encodeBody encodes params as the JSON request body. A nil params, or one
// that encodes to null, yields no body.
func encodeBody(params any) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	return raw, nil
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func jsonKind(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	default:
		return "a number"
	}
}
