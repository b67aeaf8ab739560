package browzer

import (
	"context"
	"strings"
)

// Request is the structured form of one request's header block.
//
// Path excludes the query string, which is kept raw in Query. Header names
// are case-sensitive exactly as they appeared on the wire.
type Request struct {
	Method string
	Path   string
	Proto  string
	Header Header
	Query  string
	// RequestID is generated by the server for every accepted connection.
	RequestID string
	// RemoteAddr is the peer address, when known.
	RemoteAddr string
	ctx        context.Context
}

// Context returns the request's context. If nil, returns Background.
func (r *Request) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if r == nil {
		return nil
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// ParseRequest builds a Request from the lines of a header block: the request
// line followed by header lines, without the terminating empty line.
//
// The request line must hold exactly three whitespace-separated tokens
// (method, target, protocol). Each header line must contain a ':'; the name
// is the trimmed text before the first ':' and the value the trimmed rest.
// The target is split at its first '?' into Path and the raw Query.
// Failures are reported as *ParseError.
func ParseRequest(lines []string) (*Request, error) {
	if len(lines) == 0 {
		return nil, &ParseError{Reason: "empty request"}
	}

	tokens := strings.Fields(lines[0])
	if len(tokens) != 3 {
		return nil, &ParseError{Line: 1, Text: lines[0], Reason: "request line must be METHOD TARGET VERSION"}
	}

	req := &Request{
		Method: tokens[0],
		Proto:  tokens[2],
		Header: make(Header, len(lines)-1),
	}
	req.Path, req.Query, _ = strings.Cut(tokens[1], "?")

	for i, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &ParseError{Line: i + 2, Text: line, Reason: "header line has no ':' separator"}
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ParseError{Line: i + 2, Text: line, Reason: "empty header name"}
		}
		req.Header[name] = strings.TrimSpace(value)
	}
	return req, nil
}

// ParseQuery splits a raw query string on '&' and each pair on its first
// '='. A pair without '=' maps to the empty string, empty pairs and empty
// keys are skipped, and a repeated key keeps its last value. Values are not
// percent-decoded.
func ParseQuery(raw string) map[string]string {
	q := make(map[string]string)
	if raw == "" {
		return q
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if k == "" {
			continue
		}
		q[k] = v
	}
	return q
}
