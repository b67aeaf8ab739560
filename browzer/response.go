package browzer

import (
	"bufio"
	"bytes"

	"dqx0.com/go/web/browzer/internal/http1"
)

// Response is what a handler hands back to the server for serialization.
type Response struct {
	StatusCode int
	Header     Header
	Body       string
	Cookies    []*Cookie
}

// NewResponse returns a response with the given status and body.
func NewResponse(status int, body string) *Response {
	return &Response{StatusCode: status, Header: Header{}, Body: body}
}

// SetCookie appends c to the cookies sent with the response.
func (r *Response) SetCookie(c *Cookie) {
	if c == nil || c.Name == "" {
		return
	}
	r.Cookies = append(r.Cookies, c)
}

// String renders the response exactly as it is written to the wire.
func (r *Response) String() string {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	_ = r.write(bw, []byte(r.Body))
	_ = bw.Flush()
	return buf.String()
}

// write serializes r with body in place of r.Body, so callers can pass an
// encoded body without mutating the response.
func (r *Response) write(bw *bufio.Writer, body []byte) error {
	status := r.StatusCode
	if status == 0 {
		status = StatusOK
	}
	reason := StatusText(status)
	if reason == "" {
		reason = "Unknown"
	}
	var cookies []string
	for _, c := range r.Cookies {
		if s := c.String(); s != "" {
			cookies = append(cookies, s)
		}
	}
	return http1.WriteResponse(bw, "HTTP/1.1", status, reason, r.Header, cookies, body)
}

func notFound() *Response {
	r := NewResponse(StatusNotFound, StatusText(StatusNotFound))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

func methodNotAllowed(allow string) *Response {
	r := NewResponse(StatusMethodNotAllowed, StatusText(StatusMethodNotAllowed))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	r.Header.Set("Allow", allow)
	return r
}

func badRequest() *Response {
	r := NewResponse(StatusBadRequest, StatusText(StatusBadRequest))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

func serviceUnavailable() *Response {
	r := NewResponse(StatusServiceUnavailable, StatusText(StatusServiceUnavailable))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

func internalError() *Response {
	r := NewResponse(StatusInternalServerError, StatusText(StatusInternalServerError))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}
