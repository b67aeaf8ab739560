// Package browzer is a small HTTP/1.x server toolkit built directly on TCP.
//
// A WebServer binds a listener, accepts connections on one goroutine and
// hands each of them to a fixed pool of workers. A worker reads the header
// block, parses it into a Request, routes it and writes one response before
// closing the connection. Request bodies and keep-alive are not supported.
//
// Highlights
//   - Routing: per-method route lists tried in registration order; ":name"
//     segments bind path parameters; first match wins. Unmatched paths get
//     404, or 405 with an Allow header when another method matches.
//   - Route table is frozen when Listen starts and shared read-only by all
//     workers; no locking on the request path.
//   - Parsing: request line and "Name: value" header lines, raw query string
//     split into key/value pairs without percent-decoding.
//   - Operations: injected slog logger, plug-in Meter, header size limits,
//     read/write deadlines, opt-in gzip, graceful Shutdown.
//   - Each request gets a UUID request ID (X-Request-Id) and joins the
//     caller's W3C trace when a traceparent header is present.
//
// Quick start:
//
//	s, err := browzer.New(":8080", 4)
//	if err != nil { log.Fatal(err) }
//	s.Get("/hello/:name", func(c *browzer.Context) *browzer.Response {
//	    return c.SendString(browzer.StatusOK, "Hello, "+c.Param("name")+"!")
//	})
//	if err := s.Listen(); err != nil { log.Fatal(err) }
package browzer
