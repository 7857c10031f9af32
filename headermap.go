package halcyon

import "strings"

// Headers is a case-insensitive multimap of HTTP field names to values,
// preserving the order in which values were added. Keys are normalized to
// their canonical MIME form (e.g. "content-type" and "Content-Type" address
// the same entry).
type Headers struct {
	pairs []kv
}

// NewHeaders returns an empty Headers map.
func NewHeaders() *Headers { return &Headers{} }

// Get returns the first value of name, or "" if absent.
func (h *Headers) Get(name string) string {
	name = canonicalHeader(name)
	for _, p := range h.pairs {
		if p.key == name {
			return p.value
		}
	}
	return ""
}

// Values returns every value of name, in insertion order.
func (h *Headers) Values(name string) []string {
	name = canonicalHeader(name)
	var vs []string
	for _, p := range h.pairs {
		if p.key == name {
			vs = append(vs, p.value)
		}
	}
	return vs
}

// Has reports whether name has at least one value.
func (h *Headers) Has(name string) bool {
	name = canonicalHeader(name)
	for _, p := range h.pairs {
		if p.key == name {
			return true
		}
	}
	return false
}

// Add appends value to the list for name, keeping any values already
// present.
func (h *Headers) Add(name, value string) {
	h.pairs = append(h.pairs, kv{canonicalHeader(name), strings.TrimSpace(value)})
}

// Set replaces all values of name with the single value given.
func (h *Headers) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// Del removes every value associated with name.
func (h *Headers) Del(name string) {
	name = canonicalHeader(name)
	out := h.pairs[:0]
	for _, p := range h.pairs {
		if p.key != name {
			out = append(out, p)
		}
	}
	h.pairs = out
}

// Keys returns the distinct canonical field names, in first-occurrence
// order.
func (h *Headers) Keys() []string {
	seen := map[string]bool{}
	var ks []string
	for _, p := range h.pairs {
		if !seen[p.key] {
			seen[p.key] = true
			ks = append(ks, p.key)
		}
	}
	return ks
}

// Clone returns a deep copy of h.
func (h *Headers) Clone() *Headers {
	c := &Headers{pairs: make([]kv, len(h.pairs))}
	copy(c.pairs, h.pairs)
	return c
}

// canonicalHeader mirrors net/textproto's MIME header canonicalization
// (first letter and letters after '-' uppercased, the rest lowercased)
// without importing net/textproto, keeping header comparison independent of
// spelling ("content-type" == "Content-Type" == "CONTENT-TYPE").
func canonicalHeader(name string) string {
	b := []byte(name)
	upper := true
	for i, c := range b {
		switch {
		case upper && c >= 'a' && c <= 'z':
			b[i] = c - ('a' - 'A')
		case !upper && c >= 'A' && c <= 'Z':
			b[i] = c + ('a' - 'A')
		}
		upper = c == '-'
	}
	return string(b)
}

// Common header field names used by the core and its built-in middlewares.
const (
	HeaderContentType                   = "Content-Type"
	HeaderContentLength                 = "Content-Length"
	HeaderTransferEncoding              = "Transfer-Encoding"
	HeaderConnection                    = "Connection"
	HeaderHost                          = "Host"
	HeaderAllow                         = "Allow"
	HeaderExpect                        = "Expect"
	HeaderAuthorization                 = "Authorization"
	HeaderWWWAuthenticate               = "WWW-Authenticate"
	HeaderETag                          = "ETag"
	HeaderIfNoneMatch                   = "If-None-Match"
	HeaderVary                          = "Vary"
	HeaderOrigin                        = "Origin"
	HeaderXRequestID                    = "X-Request-Id"
	HeaderAccessControlAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAccessControlExposeHeaders    = "Access-Control-Expose-Headers"
	HeaderAccessControlAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAccessControlMaxAge           = "Access-Control-Max-Age"
)
