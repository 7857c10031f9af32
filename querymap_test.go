package halcyon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	q := ParseQuery("a=1&b=2&a=3")

	assert.Equal(t, "1", q.Get("a"))
	assert.Equal(t, []string{"1", "3"}, q.Values("a"))
	assert.True(t, q.Has("b"))
	assert.False(t, q.Has("c"))
	assert.Equal(t, []string{"a", "b"}, q.Keys())
}

func TestParseQueryPercentEscapes(t *testing.T) {
	q := ParseQuery("name=John%20Doe&tag=a%2Bb")

	assert.Equal(t, "John Doe", q.Get("name"))
	assert.Equal(t, "a+b", q.Get("tag"))
}

func TestParseQueryPlusIsSpace(t *testing.T) {
	q := ParseQuery("q=foo+bar")
	assert.Equal(t, "foo bar", q.Get("q"))
}

func TestParseQueryMalformedEscapeKeptVerbatim(t *testing.T) {
	q := ParseQuery("a=100%")
	assert.Equal(t, "100%", q.Get("a"))
}

func TestParseQueryEmpty(t *testing.T) {
	q := ParseQuery("")
	assert.Equal(t, 0, q.Len())
}

func TestParseQueryKeyWithoutValue(t *testing.T) {
	q := ParseQuery("flag")
	assert.True(t, q.Has("flag"))
	assert.Equal(t, "", q.Get("flag"))
}

func TestPathParamsGet(t *testing.T) {
	p := PathParams{"id": "7"}
	assert.Equal(t, "7", p.Get("id"))
	assert.Equal(t, "", p.Get("missing"))
}
