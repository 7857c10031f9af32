package halcyon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildTestServer(t *testing.T, items ...Servable) *Server {
	t.Helper()
	b := NewBuilder()
	for _, item := range items {
		b.Serve(item)
	}
	srv, err := b.Build()
	assert.NoError(t, err)
	return srv
}

func serveSync(srv *Server, req *Request) (*Response, error) {
	var resp *Response
	var rerr error
	srv.ServeRequest(req.Path, req, func(r *Response, err error) {
		resp, rerr = r, err
	})
	return resp, rerr
}

func TestServeRequestMatchedRoute(t *testing.T) {
	srv := buildTestServer(t, GET("/hello/{name}", func(p PathParams) string {
		return "hello " + p.Get("name")
	}))

	resp, err := serveSync(srv, NewTestRequest("GET", "/hello/world", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "hello world", string(data))
}

func TestServeRequestNotFound(t *testing.T) {
	srv := buildTestServer(t, GET("/hello", func() string { return "hi" }))

	resp, err := serveSync(srv, NewTestRequest("GET", "/missing", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 404, resp.Status)
}

func TestServeRequestMethodNotAllowed(t *testing.T) {
	srv := buildTestServer(t, GET("/hello", func() string { return "hi" }))

	resp, err := serveSync(srv, NewTestRequest("POST", "/hello", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 405, resp.Status)
	assert.Equal(t, "GET", resp.Headers.Get(HeaderAllow))
}

func TestServeRequestHandlerErrorConvertsTo500(t *testing.T) {
	srv := buildTestServer(t, GET("/boom", func() error { return errors.New("kaboom") }))

	resp, err := serveSync(srv, NewTestRequest("GET", "/boom", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
}

func TestServeRequestPanicInvokesExceptionHandler(t *testing.T) {
	b := NewBuilder()
	b.Serve(GET("/panic", func() string { panic("boom") }))
	b.SetExceptionHandler(func(err error, req *Request) *Response {
		return NewResponse().WithStatus(502)
	})
	srv, err := b.Build()
	assert.NoError(t, err)

	resp, rerr := serveSync(srv, NewTestRequest("GET", "/panic", nil, nil))
	assert.NoError(t, rerr)
	assert.Equal(t, 502, resp.Status)
}

func TestServeRequestPanicRecovered(t *testing.T) {
	srv := buildTestServer(t, GET("/panic", func() string {
		panic("boom")
	}))

	resp, err := serveSync(srv, NewTestRequest("GET", "/panic", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
}

func TestServeRequestBodyBudgetEnforced(t *testing.T) {
	srv := buildTestServer(t, POST("/upload", func(b RawBody) string {
		return "ok"
	}).MaxBodyBytes(4))

	req := NewTestRequest("POST", "/upload", nil, []byte("far too long a body"))
	resp, err := serveSync(srv, req)
	assert.NoError(t, err)
	assert.Equal(t, 413, resp.Status)
}

func TestNewTestRequestParsesQuery(t *testing.T) {
	req := NewTestRequest("GET", "/search?q=hello", nil, nil)
	assert.Equal(t, "/search", req.Path)
	assert.Equal(t, "hello", req.Query.Get("q"))
}
