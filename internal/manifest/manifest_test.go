package manifest

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/bcrypt"

	"dqx0.com/go/web/browzer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// serve registers m on a fresh builder and routes one request through it.
func serve(t *testing.T, m *Manifest, lines ...string) *browzer.Response {
	t.Helper()
	b := browzer.NewRouterBuilder(nil)
	if err := m.Register(RegistrarFunc(b.Add)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	req, err := browzer.ParseRequest(lines)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	return b.Build().HandleRequest(req)
}

const tomlManifest = `
[[route]]
method = "get"
path = "/users/:id/"
body = "user {id} tab {?tab}"
[route.headers]
Content-Type = "text/plain"

[[route]]
path = "/old"
redirect = "/new/{?page}"
`

func TestLoad_TOML(t *testing.T) {
	m, err := Load(writeFile(t, "routes.toml", tomlManifest))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Routes) != 2 {
		t.Fatalf("routes = %d", len(m.Routes))
	}
	r := m.Routes[0]
	if r.Method != browzer.MethodGet || r.Status != browzer.StatusOK {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if m.Routes[1].Method != browzer.MethodGet || m.Routes[1].Status != browzer.StatusFound {
		t.Fatalf("redirect defaults not applied: %+v", m.Routes[1])
	}

	resp := serve(t, m, "GET /users/42?tab=posts HTTP/1.1", "Host: x")
	if resp.StatusCode != 200 || resp.Body != "user 42 tab posts" {
		t.Fatalf("resp = %d %q", resp.StatusCode, resp.Body)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/plain" {
		t.Fatalf("Content-Type = %q", got)
	}

	resp = serve(t, m, "GET /old?page=3 HTTP/1.1")
	if resp.StatusCode != 302 || resp.Header.Get("Location") != "/new/3" {
		t.Fatalf("redirect = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLoad_YAML(t *testing.T) {
	const doc = `
routes:
  - method: POST
    path: /echo/:word
    status: 201
    body: "{word}!"
`
	m, err := Load(writeFile(t, "routes.yml", doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	resp := serve(t, m, "POST /echo/hi HTTP/1.1")
	if resp.StatusCode != 201 || resp.Body != "hi!" {
		t.Fatalf("resp = %d %q", resp.StatusCode, resp.Body)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(writeFile(t, "routes.ini", "x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("ini: err = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file: expected error")
	}
	if _, err := Load(writeFile(t, "bad.toml", "[[route]\n")); err == nil {
		t.Fatal("bad toml: expected error")
	}
	bad := "[[route]]\npath = \"nope\"\nstatus = 799\n"
	_, err := Load(writeFile(t, "invalid.toml", bad))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("invalid: err = %v", err)
	}
	if !strings.Contains(err.Error(), "must start with") || !strings.Contains(err.Error(), "799") {
		t.Fatalf("invalid: both problems should be reported: %v", err)
	}
}

func TestExpand(t *testing.T) {
	c := browzer.NewContext(&browzer.Request{})
	c.Params["id"] = "7"
	c.QueryParams["q"] = "go"
	cases := map[string]string{
		"":                "",
		"plain":           "plain",
		"{id}":            "7",
		"a{id}b{?q}c":     "a7bgoc",
		"{missing}|{?no}": "|",
		"open {id":        "open {id",
	}
	for in, want := range cases {
		if got := expand(in, c); got != want {
			t.Errorf("expand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	m := &Manifest{Routes: []Route{{
		Path:      "/admin",
		Body:      "welcome",
		BasicAuth: &BasicAuth{User: "admin", PasswordHash: string(hash)},
	}}}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	basic := func(user, pass string) string {
		return "authorization: Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
	}

	resp := serve(t, m, "GET /admin HTTP/1.1")
	if resp.StatusCode != browzer.StatusUnauthorized {
		t.Fatalf("no credentials: status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); got != `Basic realm="browzer"` {
		t.Fatalf("WWW-Authenticate = %q", got)
	}
	if resp := serve(t, m, "GET /admin HTTP/1.1", basic("admin", "wrong")); resp.StatusCode != 401 {
		t.Fatalf("wrong password: status = %d", resp.StatusCode)
	}
	if resp := serve(t, m, "GET /admin HTTP/1.1", basic("root", "s3cret")); resp.StatusCode != 401 {
		t.Fatalf("wrong user: status = %d", resp.StatusCode)
	}
	resp = serve(t, m, "GET /admin HTTP/1.1", basic("admin", "s3cret"))
	if resp.StatusCode != 200 || resp.Body != "welcome" {
		t.Fatalf("valid credentials: %d %q", resp.StatusCode, resp.Body)
	}
}

func TestValidate_BasicAuthIncomplete(t *testing.T) {
	m := &Manifest{Routes: []Route{{Path: "/a", BasicAuth: &BasicAuth{User: "x"}}}}
	if err := m.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegister_ReportsEveryFailure(t *testing.T) {
	m := &Manifest{Routes: []Route{
		{Method: "GET", Path: "/ok", Status: 200},
		{Method: "GET", Path: "/bad/:", Status: 200},
		{Method: "GET", Path: "/also?bad", Status: 200},
	}}
	b := browzer.NewRouterBuilder(nil)
	err := m.Register(RegistrarFunc(b.Add))
	if !errors.Is(err, browzer.ErrInvalidPattern) {
		t.Fatalf("err = %v", err)
	}
	if n := len(b.Routes()); n != 1 {
		t.Fatalf("registered %d routes, want 1", n)
	}
}

func TestEncode(t *testing.T) {
	routes := []browzer.RouteInfo{
		{Method: "GET", Pattern: "/"},
		{Method: "POST", Pattern: "/users/:id"},
	}
	data, err := Encode(routes)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var back Manifest
	if _, err := toml.Decode(string(data), &back); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if len(back.Routes) != 2 || back.Routes[1].Method != "POST" || back.Routes[1].Path != "/users/:id" {
		t.Fatalf("round trip = %+v", back.Routes)
	}
	if strings.Contains(string(data), "status") || strings.Contains(string(data), "basic_auth") {
		t.Fatalf("empty fields should be omitted:\n%s", data)
	}
}
