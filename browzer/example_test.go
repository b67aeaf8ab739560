package browzer_test

import (
	"fmt"

	"dqx0.com/go/web/browzer"
)

// ExampleFormatPath shows path normalization.
func ExampleFormatPath() {
	for _, p := range []string{"/menu/items/", "/", "", "/users/axew/?pass=1"} {
		out, _ := browzer.FormatPath(p)
		fmt.Println(out)
	}
	// Output:
	// /menu/items
	// /
	// /
	// /users/axew?pass=1
}

// ExampleParseRequest parses a header block.
func ExampleParseRequest() {
	req, err := browzer.ParseRequest([]string{
		"GET /search?q=go&page=2 HTTP/1.1",
		"Host: example.com",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(req.Method, req.Path, req.Header.Get("Host"))
	fmt.Println(browzer.ParseQuery(req.Query)["page"])

	_, err = browzer.ParseRequest([]string{"BADLINE"})
	fmt.Println(err)
	// Output:
	// GET /search example.com
	// 2
	// browzer: parse request: line 1 "BADLINE": request line must be METHOD TARGET VERSION
}

// ExampleRouterBuilder registers routes and routes a request without a
// network listener.
func ExampleRouterBuilder() {
	b := browzer.NewRouterBuilder(nil)
	_ = b.Add(browzer.MethodGet, "/users/:id", browzer.HandlerFunc(func(c *browzer.Context) *browzer.Response {
		return c.SendString(browzer.StatusOK, "user "+c.Param("id"))
	}))
	_ = b.Add(browzer.MethodGet, "/old", browzer.HandlerFunc(func(c *browzer.Context) *browzer.Response {
		return c.Redirect(browzer.StatusMovedPermanently, "/users/1")
	}))
	r := b.Build()

	req, _ := browzer.ParseRequest([]string{"GET /users/7/ HTTP/1.1"})
	fmt.Println(r.HandleRequest(req).Body)

	req, _ = browzer.ParseRequest([]string{"GET /old HTTP/1.1"})
	resp := r.HandleRequest(req)
	fmt.Println(resp.StatusCode, resp.Header.Get("Location"))

	req, _ = browzer.ParseRequest([]string{"DELETE /users/7 HTTP/1.1"})
	resp = r.HandleRequest(req)
	fmt.Println(resp.StatusCode, resp.Header.Get("Allow"))
	// Output:
	// user 7
	// 301 /users/1
	// 405 GET
}

// ExampleResponse_String shows the wire form of a response.
func ExampleResponse_String() {
	resp := browzer.NewResponse(browzer.StatusOK, "hi")
	resp.Header.Set("Content-Type", "text/plain")
	resp.SetCookie(&browzer.Cookie{Name: "sid", Value: "abc", Path: "/", HttpOnly: true})
	fmt.Printf("%q\n", resp.String())
	// Output:
	// "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nSet-Cookie: sid=abc; Path=/; HttpOnly\r\nContent-Length: 2\r\nConnection: close\r\n\r\nhi"
}
