package halcyon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func textHandler(body string) any {
	return func() string { return body }
}

func TestBuildRouterBasicMatch(t *testing.T) {
	r, err := buildRouter([]Servable{
		GET("/users/{id}", textHandler("user")),
		POST("/users/{id}", textHandler("create")),
	})
	assert.NoError(t, err)

	res := r.Match("GET", "/users/42")
	assert.Equal(t, Matched, res.Outcome)
	assert.Equal(t, "42", res.Params.Get("id"))
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r, err := buildRouter([]Servable{
		GET("/users/{id}", textHandler("user")),
	})
	assert.NoError(t, err)

	res := r.Match("DELETE", "/users/42")
	assert.Equal(t, MethodNotAllowed, res.Outcome)
	assert.Equal(t, "GET", res.AllowHeader())
}

func TestRouterNotFound(t *testing.T) {
	r, err := buildRouter([]Servable{
		GET("/users/{id}", textHandler("user")),
	})
	assert.NoError(t, err)

	res := r.Match("GET", "/nothing")
	assert.Equal(t, NotFound, res.Outcome)
}

func TestRouterStaticBeatsParam(t *testing.T) {
	r, err := buildRouter([]Servable{
		GET("/users/{id}", textHandler("param")),
		GET("/users/me", textHandler("static")),
	})
	assert.NoError(t, err)

	res := r.Match("GET", "/users/me")
	assert.Equal(t, Matched, res.Outcome)

	resp, err := res.Route.service(newRequest())
	assert.NoError(t, err)
	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "static", string(data))
}

func TestRouterMethodSpecificBeatsAny(t *testing.T) {
	r, err := buildRouter([]Servable{
		Any("/ping", textHandler("any")),
		GET("/ping", textHandler("get")),
	})
	assert.NoError(t, err)

	res := r.Match("GET", "/ping")
	assert.Equal(t, Matched, res.Outcome)

	resp, _ := res.Route.service(newRequest())
	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "get", string(data))

	res2 := r.Match("POST", "/ping")
	assert.Equal(t, Matched, res2.Outcome)
	resp2, _ := res2.Route.service(newRequest())
	data2, _ := ReadAll(resp2.Body)
	assert.Equal(t, "any", string(data2))
}

func TestBuildRouterDuplicateRouteConflict(t *testing.T) {
	_, err := buildRouter([]Servable{
		GET("/users/{id}", textHandler("a")),
		GET("/users/{name}", textHandler("b")),
	})
	assert.Error(t, err)

	var conflict *ErrRouteConflict
	assert.ErrorAs(t, err, &conflict)
}

func TestBuildRouterInvalidPattern(t *testing.T) {
	_, err := buildRouter([]Servable{
		GET("/{bad-name}", textHandler("a")),
	})
	assert.Error(t, err)
}
