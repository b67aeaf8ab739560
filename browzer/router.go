package browzer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"dqx0.com/go/web/internal/obs"
)

// Supported request methods for the registration helpers. Handle accepts
// any method token.
const (
	MethodGet    = "GET"
	MethodHead   = "HEAD"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// Handler produces the response for a matched request.
type Handler interface {
	Handle(c *Context) *Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(c *Context) *Response

func (f HandlerFunc) Handle(c *Context) *Response {
	return f(c)
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}

type route struct {
	method   string
	pattern  string
	segments []string
	handler  Handler
}

// RouterBuilder collects routes before serving starts. Build freezes it and
// returns the immutable Router shared by every worker.
type RouterBuilder struct {
	logger *slog.Logger

	mu     sync.Mutex
	routes []*route
	frozen bool
}

// NewRouterBuilder returns an empty builder. A nil logger discards output.
func NewRouterBuilder(logger *slog.Logger) *RouterBuilder {
	return &RouterBuilder{logger: obs.OrDiscard(logger)}
}

// Add normalizes path with FormatPath and appends the route to the list for
// method. Order of Add calls is the match priority. A failed registration is
// logged and returned; the route is skipped and the builder stays usable.
func (b *RouterBuilder) Add(method, path string, h Handler) error {
	err := b.add(method, path, h)
	if err != nil {
		b.logger.Error("route registration failed", "method", method, "path", path, "error", err)
	}
	return err
}

func (b *RouterBuilder) add(method, path string, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	if method == "" || strings.ContainsAny(method, " \t") {
		return fmt.Errorf("%w: bad method %q", ErrInvalidPattern, method)
	}
	pattern, err := FormatPath(path)
	if err != nil {
		return err
	}
	segments, err := compilePattern(pattern)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return ErrRouterFrozen
	}
	b.routes = append(b.routes, &route{method: method, pattern: pattern, segments: segments, handler: h})
	b.logger.Debug("route registered", "method", method, "pattern", pattern)
	return nil
}

// Build freezes the builder and returns a Router holding a copy of the
// route table. Subsequent Add calls fail with ErrRouterFrozen.
func (b *RouterBuilder) Build() *Router {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true

	r := &Router{
		logger: b.logger,
		table:  make(map[string][]*route),
		all:    make([]*route, len(b.routes)),
	}
	copy(r.all, b.routes)
	for _, rt := range r.all {
		r.table[rt.method] = append(r.table[rt.method], rt)
	}
	return r
}

// Router matches requests against an immutable route table. It is safe for
// concurrent use.
type Router struct {
	logger *slog.Logger
	table  map[string][]*route
	all    []*route
}

// HandleRequest routes req and returns the handler's response unchanged.
//
// Routes registered for req.Method are tried in registration order and the
// first whose segments match wins; a ":name" segment matches any non-empty
// segment and binds it. Without a match the response is a synthesized 405
// when some other method has a matching route, or 404 otherwise.
func (r *Router) HandleRequest(req *Request) *Response {
	path, err := FormatPath(req.Path)
	if err != nil {
		r.logger.Error("request path formatting failed", "path", req.Path, "error", err)
		return notFound()
	}
	segs := splitSegments(path)

	for _, rt := range r.table[req.Method] {
		params, ok := rt.match(segs)
		if !ok {
			continue
		}
		c := NewContext(req)
		c.Params = params
		c.QueryParams = ParseQuery(req.Query)
		resp := rt.handler.Handle(c)
		if resp == nil {
			resp = c.Response
		}
		return resp
	}

	if allow := r.allowedMethods(req.Method, segs); len(allow) > 0 {
		return methodNotAllowed(strings.Join(allow, ", "))
	}
	return notFound()
}

// Routes lists the table in registration order.
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, len(r.all))
	for i, rt := range r.all {
		out[i] = RouteInfo{Method: rt.method, Pattern: rt.pattern}
	}
	return out
}

// allowedMethods returns, sorted, every method other than skip that has a
// route matching segs.
func (r *Router) allowedMethods(skip string, segs []string) []string {
	var allow []string
	for method, routes := range r.table {
		if method == skip {
			continue
		}
		for _, rt := range routes {
			if _, ok := rt.match(segs); ok {
				allow = append(allow, method)
				break
			}
		}
	}
	sort.Strings(allow)
	return allow
}

func (rt *route) match(segs []string) (map[string]string, bool) {
	if len(rt.segments) != len(segs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, s := range rt.segments {
		if name, ok := strings.CutPrefix(s, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			params[name] = segs[i]
			continue
		}
		if s != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// compilePattern validates a normalized pattern and splits it into segments.
func compilePattern(pattern string) ([]string, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPattern, pattern)
	}
	if strings.Contains(pattern, "?") {
		return nil, fmt.Errorf("%w: %q contains a query string", ErrInvalidPattern, pattern)
	}
	segs := splitSegments(pattern)
	for _, s := range segs {
		if s == ":" {
			return nil, fmt.Errorf("%w: %q has an unnamed parameter", ErrInvalidPattern, pattern)
		}
	}
	return segs, nil
}

// splitSegments turns "/a/b" into ["a" "b"] and "/" into [""].
func splitSegments(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// Routes lists the routes added so far, in registration order.
func (b *RouterBuilder) Routes() []RouteInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RouteInfo, len(b.routes))
	for i, rt := range b.routes {
		out[i] = RouteInfo{Method: rt.method, Pattern: rt.pattern}
	}
	return out
}
