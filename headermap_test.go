package halcyon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadersCaseInsensitive(t *testing.T) {
	h := NewHeaders()
	h.Add("content-type", "text/plain")

	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.True(t, h.Has("CONTENT-TYPE"))
}

func TestHeadersAddPreservesOrder(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Tag", "a")
	h.Add("X-Tag", "b")

	assert.Equal(t, []string{"a", "b"}, h.Values("X-Tag"))
	assert.Equal(t, "a", h.Get("X-Tag"))
}

func TestHeadersSetReplaces(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Tag", "a")
	h.Set("X-Tag", "b")

	assert.Equal(t, []string{"b"}, h.Values("X-Tag"))
}

func TestHeadersDel(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Tag", "a")
	h.Del("X-Tag")

	assert.False(t, h.Has("X-Tag"))
}

func TestHeadersClone(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Tag", "a")

	c := h.Clone()
	c.Add("X-Tag", "b")

	assert.Equal(t, []string{"a"}, h.Values("X-Tag"))
	assert.Equal(t, []string{"a", "b"}, c.Values("X-Tag"))
}

func TestCanonicalHeader(t *testing.T) {
	assert.Equal(t, "Content-Type", canonicalHeader("content-type"))
	assert.Equal(t, "Content-Type", canonicalHeader("CONTENT-TYPE"))
	assert.Equal(t, "X-Request-Id", canonicalHeader("x-request-id"))
}
