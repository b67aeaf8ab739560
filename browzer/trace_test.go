package browzer

import (
	"context"
	"testing"
)

func TestParseTraceparent(t *testing.T) {
	const tid = "4BF92F3577B34DA6A3CE929D0E0E4736"
	tests := []struct {
		in     string
		ok     bool
		parent string
	}{
		{"00-" + tid + "-00f067aa0ba902b7-01", true, "00f067aa0ba902b7"},
		{" 00-" + tid + "-00F067AA0BA902B7-00 ", true, "00f067aa0ba902b7"},
		{"00-" + tid + "-00f067aa0ba902b7", false, ""},
		{"00-00000000000000000000000000000000-00f067aa0ba902b7-01", false, ""},
		{"00-" + tid + "-0000000000000000-01", false, ""},
		{"00-" + tid + "-00f067aa0ba902bz-01", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		gotTID, sid, _, ok := parseTraceparent(tt.in)
		if ok != tt.ok {
			t.Errorf("parseTraceparent(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (gotTID != "4bf92f3577b34da6a3ce929d0e0e4736" || sid != tt.parent) {
			t.Errorf("parseTraceparent(%q) = %s %s", tt.in, gotTID, sid)
		}
	}
}

func TestTraceFromHeader(t *testing.T) {
	h := Header{"TraceParent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}
	tr, ok := traceFromHeader(h)
	if !ok {
		t.Fatal("expected trace")
	}
	if tr.ParentSpanID != "00f067aa0ba902b7" || len(tr.SpanID) != 16 || tr.SpanID == tr.ParentSpanID {
		t.Fatalf("trace = %+v", tr)
	}
	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-" + tr.SpanID + "-01"
	if got := tr.Traceparent(); got != want {
		t.Fatalf("Traceparent() = %q, want %q", got, want)
	}

	ctx := WithTrace(context.Background(), tr)
	if got, ok := TraceFrom(ctx); !ok || got != tr {
		t.Fatalf("TraceFrom = %+v %v", got, ok)
	}
	if _, ok := TraceFrom(context.Background()); ok {
		t.Fatal("empty context should carry no trace")
	}
	if _, ok := traceFromHeader(Header{"Host": "x"}); ok {
		t.Fatal("no traceparent header should yield no trace")
	}
}
