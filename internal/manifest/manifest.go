// Package manifest turns a declarative route file into registered routes.
//
// A manifest lists static routes. Each route answers with a fixed status,
// headers and body; "{name}" in the body expands to a path parameter and
// "{?name}" to a query parameter. A route may instead redirect, and may be
// guarded by HTTP basic auth checked against a bcrypt hash.
//
//	[[route]]
//	method = "GET"
//	path = "/users/:id"
//	body = "user {id}"
//	[route.headers]
//	Content-Type = "text/plain; charset=utf-8"
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"dqx0.com/go/web/browzer"
)

var (
	ErrUnsupportedFormat = errors.New("manifest: unsupported file extension")
	ErrInvalid           = errors.New("manifest: invalid")
)

// Manifest is the decoded route file.
type Manifest struct {
	Routes []Route `toml:"route" yaml:"routes"`
}

// Route is one static route.
type Route struct {
	Method    string            `toml:"method" yaml:"method"`
	Path      string            `toml:"path" yaml:"path"`
	Status    int               `toml:"status,omitempty" yaml:"status,omitempty"`
	Body      string            `toml:"body,omitempty" yaml:"body,omitempty"`
	Headers   map[string]string `toml:"headers,omitempty" yaml:"headers,omitempty"`
	Redirect  string            `toml:"redirect,omitempty" yaml:"redirect,omitempty"`
	BasicAuth *BasicAuth        `toml:"basic_auth,omitempty" yaml:"basic_auth,omitempty"`
}

// BasicAuth guards a route. PasswordHash is a bcrypt hash.
type BasicAuth struct {
	User         string `toml:"user" yaml:"user"`
	PasswordHash string `toml:"password_hash" yaml:"password_hash"`
	Realm        string `toml:"realm,omitempty" yaml:"realm,omitempty"`
}

// Registrar is anything routes can be added to, such as *browzer.WebServer.
type Registrar interface {
	Handle(method, path string, h browzer.Handler) error
}

// RegistrarFunc adapts a function, such as (*browzer.RouterBuilder).Add, to
// Registrar.
type RegistrarFunc func(method, path string, h browzer.Handler) error

func (f RegistrarFunc) Handle(method, path string, h browzer.Handler) error {
	return f(method, path, h)
}

// Load reads and validates the manifest at path. The decoder is picked by
// extension: .toml, .yaml or .yml.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("manifest: decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("manifest: decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate fills defaults and checks every route.
func (m *Manifest) Validate() error {
	var errs []error
	for i := range m.Routes {
		r := &m.Routes[i]
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if r.Method == "" {
			r.Method = browzer.MethodGet
		}
		if r.Status == 0 {
			if r.Redirect != "" {
				r.Status = browzer.StatusFound
			} else {
				r.Status = browzer.StatusOK
			}
		}
		if !strings.HasPrefix(r.Path, "/") {
			errs = append(errs, fmt.Errorf("route %d: path %q must start with '/'", i+1, r.Path))
		}
		if browzer.StatusText(r.Status) == "" {
			errs = append(errs, fmt.Errorf("route %d: unsupported status %d", i+1, r.Status))
		}
		if r.BasicAuth != nil && (r.BasicAuth.User == "" || r.BasicAuth.PasswordHash == "") {
			errs = append(errs, fmt.Errorf("route %d: basic_auth needs user and password_hash", i+1))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Register adds every route to reg in manifest order. It keeps going past
// failures and returns them joined.
func (m *Manifest) Register(reg Registrar) error {
	var errs []error
	for i := range m.Routes {
		r := m.Routes[i]
		var h browzer.Handler = staticHandler(r)
		if r.BasicAuth != nil {
			h = requireBasicAuth(*r.BasicAuth, h)
		}
		if err := reg.Handle(r.Method, r.Path, h); err != nil {
			errs = append(errs, fmt.Errorf("route %s %s: %w", r.Method, r.Path, err))
		}
	}
	return errors.Join(errs...)
}

// Encode renders routes as a TOML manifest. Handlers are not recoverable
// from a router, so each entry carries only its method and path.
func Encode(routes []browzer.RouteInfo) ([]byte, error) {
	m := Manifest{Routes: make([]Route, 0, len(routes))}
	for _, r := range routes {
		m.Routes = append(m.Routes, Route{Method: r.Method, Path: r.Pattern})
	}
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func staticHandler(r Route) browzer.HandlerFunc {
	return func(c *browzer.Context) *browzer.Response {
		for k, v := range r.Headers {
			c.SetHeader(k, v)
		}
		if r.Redirect != "" {
			return c.Redirect(r.Status, expand(r.Redirect, c))
		}
		return c.SendString(r.Status, expand(r.Body, c))
	}
}

// expand replaces {name} with the path parameter and {?name} with the query
// parameter of that name. Unknown names expand to "".
func expand(s string, c *browzer.Context) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:open])
		name := s[open+1 : open+end]
		if q, ok := strings.CutPrefix(name, "?"); ok {
			b.WriteString(c.Query(q))
		} else {
			b.WriteString(c.Param(name))
		}
		s = s[open+end+1:]
	}
}
