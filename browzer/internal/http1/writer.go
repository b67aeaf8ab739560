package http1

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WriteResponse writes a complete response: status line, headers sorted by
// name, Content-Length, Connection: close, a blank line and the body.
// Any caller-supplied Content-Length or Connection header is replaced.
// Header names that are not valid tokens are skipped.
func WriteResponse(bw *bufio.Writer, proto string, status int, reason string, hdr map[string]string, cookies []string, body []byte) error {
	if proto == "" {
		proto = "HTTP/1.1"
	}
	if _, err := fmt.Fprintf(bw, "%s %d %s\r\n", proto, status, reason); err != nil {
		return err
	}

	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		if SanitizeHeaderKey(k) == "" {
			continue
		}
		if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, "Connection") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", k, SanitizeHeaderValue(hdr[k])); err != nil {
			return err
		}
	}
	for _, c := range cookies {
		if _, err := fmt.Fprintf(bw, "Set-Cookie: %s\r\n", SanitizeHeaderValue(c)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(bw, "Content-Length: "+strconv.Itoa(len(body))+"\r\nConnection: close\r\n\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := bw.Write(body); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeHeaderKey ensures header name is a valid token; returns empty string if invalid.
func SanitizeHeaderKey(k string) string {
	if k == "" {
		return ""
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			continue
		}
		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
			continue
		default:
			return ""
		}
	}
	return k
}

// SanitizeHeaderValue removes CR/LF and control chars except HTAB.
func SanitizeHeaderValue(v string) string {
	if v == "" {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
