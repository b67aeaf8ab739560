package browzer

import (
	"strconv"
	"strings"
	"time"
)

// Cookie is an HTTP cookie as carried by a Set-Cookie header.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	MaxAge   int // 0 means unset; negative emits Max-Age=0
	Secure   bool
	HttpOnly bool
}

// NewCookie returns a cookie scoped to "/".
func NewCookie(name, value string) *Cookie {
	return &Cookie{Name: name, Value: value, Path: "/"}
}

// String renders the Set-Cookie header value. A cookie without a name
// renders as "".
func (c *Cookie) String() string {
	if c == nil || c.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
	}
	switch {
	case c.MaxAge > 0:
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	case c.MaxAge < 0:
		b.WriteString("; Max-Age=0")
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	return b.String()
}

// Cookies parses the request's Cookie header, whatever its name case, into
// name/value pairs.
func (r *Request) Cookies() map[string]string {
	out := make(map[string]string)
	raw, _ := r.Header.Fold("Cookie")
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" {
			continue
		}
		out[name] = value
	}
	return out
}
