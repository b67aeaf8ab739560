package browzer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Trace is the W3C trace context of a request. A request carrying a valid
// traceparent header joins that trace: ParentSpanID is the caller's span and
// SpanID is fresh for this server.
type Trace struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
	Flags        string
}

// Traceparent renders t as a traceparent header value.
func (t Trace) Traceparent() string {
	flags := t.Flags
	if flags == "" {
		flags = "01"
	}
	return "00-" + t.TraceID + "-" + t.SpanID + "-" + flags
}

type traceKey struct{}

// WithTrace stores tr in ctx.
func WithTrace(ctx context.Context, tr Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, tr)
}

// TraceFrom extracts the trace context stored by the server, if any.
func TraceFrom(ctx context.Context) (Trace, bool) {
	tr, ok := ctx.Value(traceKey{}).(Trace)
	return tr, ok
}

func traceFromHeader(h Header) (Trace, bool) {
	v, ok := h.Fold("traceparent")
	if !ok {
		return Trace{}, false
	}
	traceID, parent, flags, ok := parseTraceparent(v)
	if !ok {
		return Trace{}, false
	}
	return Trace{TraceID: traceID, SpanID: newSpanID(), ParentSpanID: parent, Flags: flags}, true
}

// parseTraceparent splits "00-<32 hex>-<16 hex>-<2 hex>". All-zero ids are
// invalid.
func parseTraceparent(v string) (traceID, spanID, flags string, ok bool) {
	parts := strings.Split(strings.TrimSpace(v), "-")
	if len(parts) < 4 {
		return "", "", "", false
	}
	ver, tid, sid, fl := parts[0], parts[1], parts[2], parts[3]
	if len(ver) != 2 || len(tid) != 32 || len(sid) != 16 || len(fl) != 2 {
		return "", "", "", false
	}
	if !isHex(ver) || !isHex(tid) || !isHex(sid) || !isHex(fl) {
		return "", "", "", false
	}
	tid, sid = strings.ToLower(tid), strings.ToLower(sid)
	if tid == strings.Repeat("0", 32) || sid == strings.Repeat("0", 16) {
		return "", "", "", false
	}
	return tid, sid, strings.ToLower(fl), true
}

func newSpanID() string {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err == nil && b != [8]byte{} {
			return hex.EncodeToString(b[:])
		}
	}
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
