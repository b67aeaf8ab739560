package browzer

import (
	"strings"
	"testing"
	"time"
)

func TestStatusText(t *testing.T) {
	tests := map[int]string{
		200: "OK", 201: "Created", 202: "Accepted", 204: "No Content",
		301: "Moved Permanently", 302: "Found", 303: "See Other", 304: "Not Modified",
		400: "Bad Request", 401: "Unauthorized", 403: "Forbidden", 404: "Not Found",
		405: "Method Not Allowed", 500: "Internal Server Error", 501: "Not Implemented",
		502: "Bad Gateway", 503: "Service Unavailable",
	}
	for code, want := range tests {
		if got := StatusText(code); got != want {
			t.Errorf("StatusText(%d) = %q, want %q", code, got, want)
		}
	}
	if StatusText(418) != "" {
		t.Errorf("unexpected reason for 418")
	}
}

func TestResponse_StringDefaults(t *testing.T) {
	got := (&Response{}).String()
	if !strings.HasPrefix(got, "HTTP/1.1 200 OK\r\n") || !strings.HasSuffix(got, "Content-Length: 0\r\nConnection: close\r\n\r\n") {
		t.Fatalf("zero Response = %q", got)
	}
	got = NewResponse(418, "teapot").String()
	if !strings.HasPrefix(got, "HTTP/1.1 418 Unknown\r\n") {
		t.Fatalf("unknown status = %q", got)
	}
}

func TestCookie_String(t *testing.T) {
	c := NewCookie("auth-token", "itisanauthtoken")
	if c.Path != "/" || c.HttpOnly {
		t.Fatalf("defaults = %+v", c)
	}
	c.Domain = "example.com"
	c.Expires = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	c.MaxAge = 60
	c.Secure = true
	want := "auth-token=itisanauthtoken; Path=/; Domain=example.com; Expires=Wed, 02 Jan 2030 03:04:05 GMT; Max-Age=60; Secure"
	if got := c.String(); got != want {
		t.Fatalf("String() = %q\nwant      %q", got, want)
	}
	if (&Cookie{Name: "x", MaxAge: -1}).String() != "x=; Max-Age=0" {
		t.Fatalf("negative MaxAge rendering")
	}
	r := NewResponse(StatusOK, "")
	r.SetCookie(&Cookie{})
	r.SetCookie(nil)
	if len(r.Cookies) != 0 {
		t.Fatalf("unnamed cookies must be ignored")
	}
}

func TestContext_Helpers(t *testing.T) {
	c := NewContext(&Request{Method: "GET", Path: "/"})
	c.SetCookie(NewCookie("a", "b"))
	resp := c.Redirect(StatusSeeOther, "/next")
	if resp != c.Response || resp.StatusCode != StatusSeeOther || resp.Header.Get("Location") != "/next" {
		t.Fatalf("Redirect = %+v", resp)
	}
	if !strings.Contains(resp.String(), "Set-Cookie: a=b; Path=/\r\n") {
		t.Fatalf("cookie missing from %q", resp.String())
	}
	if c.Param("missing") != "" || c.Query("missing") != "" {
		t.Fatal("missing params must be empty")
	}
}

func TestHeader_Basics(t *testing.T) {
	h := Header{}
	h.Set("X-Foo", "a")
	h.Set("x-foo", "b")
	if h.Get("X-Foo") != "a" || h.Get("x-foo") != "b" {
		t.Fatalf("names must be case-sensitive: %v", h)
	}
	if keys := h.Keys(); len(keys) != 2 || keys[0] != "X-Foo" {
		t.Fatalf("Keys() = %v", keys)
	}
	c := h.Clone()
	h.Del("X-Foo")
	if h.Has("X-Foo") || !c.Has("X-Foo") {
		t.Fatalf("Clone must be independent")
	}
	var nilH Header
	nilH.Set("a", "b")
	if nilH.Get("a") != "" || nilH.Clone() != nil {
		t.Fatal("nil header must be inert")
	}
}

func TestHeader_Fold(t *testing.T) {
	h := Header{"accept-encoding": "gzip", "Host": "x"}
	if v, ok := h.Fold("Accept-Encoding"); !ok || v != "gzip" {
		t.Fatalf("Fold = %q %v", v, ok)
	}
	if h.Get("Accept-Encoding") != "" {
		t.Fatal("Get must stay case-sensitive")
	}
	if _, ok := h.Fold("Cookie"); ok {
		t.Fatal("missing header reported present")
	}
	var nilHeader Header
	if _, ok := nilHeader.Fold("Host"); ok {
		t.Fatal("nil header reported present")
	}
}
