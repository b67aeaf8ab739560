package browzer

// Context bundles everything a handler needs for one request: the parsed
// Request, the Response being built, the path parameters bound by the
// matched route and the parsed query parameters.
type Context struct {
	Request     *Request
	Response    *Response
	Params      map[string]string
	QueryParams map[string]string
}

// NewContext returns a Context for req with an empty 200 response.
func NewContext(req *Request) *Context {
	return &Context{
		Request:     req,
		Response:    NewResponse(StatusOK, ""),
		Params:      map[string]string{},
		QueryParams: map[string]string{},
	}
}

// Param returns the value bound to a ":name" segment, or "".
func (c *Context) Param(name string) string { return c.Params[name] }

// Query returns a query parameter, or "".
func (c *Context) Query(name string) string { return c.QueryParams[name] }

// SetHeader sets a response header.
func (c *Context) SetHeader(name, value string) { c.Response.Header.Set(name, value) }

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(ck *Cookie) { c.Response.SetCookie(ck) }

// SendString sets the status and body and returns the response.
func (c *Context) SendString(status int, body string) *Response {
	c.Response.StatusCode = status
	c.Response.Body = body
	return c.Response
}

// Redirect points the client at location with the given status
// (typically 301, 302 or 303) and returns the response.
func (c *Context) Redirect(status int, location string) *Response {
	c.Response.StatusCode = status
	c.Response.Header.Set("Location", location)
	return c.Response
}
