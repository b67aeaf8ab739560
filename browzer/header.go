package browzer

import (
	"sort"
	"strings"
)

// Header maps a header name to its value. Names are kept exactly as parsed
// or set; lookups are case-sensitive and a repeated name keeps the last value.
type Header map[string]string

func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[key]
}

// Fold returns the value of a header whose name equals key without
// regard to case. Set and Get stay exact.
func (h Header) Fold(key string) (string, bool) {
	if v, ok := h[key]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (h Header) Has(key string) bool {
	if h == nil {
		return false
	}
	_, ok := h[key]
	return ok
}

func (h Header) Set(key, value string) {
	if h == nil {
		return
	}
	h[key] = value
}

func (h Header) Del(key string) {
	if h == nil {
		return
	}
	delete(h, key)
}

// Keys returns the header names in sorted order.
func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of h; nil stays nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	c := make(Header, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}
