package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/km-arc/go-verdure/framework/config"
)

// Request wraps *http.Request with query and route helpers.
type Request struct {
	raw *http.Request
}

func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Query returns a query-string value, or the first fallback when it is empty.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Has reports whether the query-string key is present and non-empty.
func (req *Request) Has(key string) bool {
	return req.Query(key) != ""
}

// QueryBool parses a query value with the configuration boolean tokens
// (true/false, yes/no, on/off, 1/0). ok is false when the key is absent or
// not a boolean.
func (req *Request) QueryBool(key string) (v, ok bool) {
	raw := req.Query(key)
	if raw == "" {
		return false, false
	}
	return config.ParseBool(raw)
}

// RouteParam returns a URL route parameter (chi).
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}
