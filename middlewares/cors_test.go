package middlewares

import (
	"testing"

	"github.com/halcyon-http/halcyon"
	"github.com/stretchr/testify/assert"
)

func terminal(status int) halcyon.Service {
	return func(req *halcyon.Request) (*halcyon.Response, error) {
		return halcyon.NewResponse().WithStatus(status), nil
	}
}

func TestCORSPreflightAnswersWithoutCallingNext(t *testing.T) {
	called := false
	next := func(req *halcyon.Request) (*halcyon.Response, error) {
		called = true
		return halcyon.NewResponse().WithStatus(200), nil
	}

	svc := CORSWithConfig(CORSConfig{
		AllowOrigins: []string{"https://example.com"},
		AllowMethods: []string{"GET", "POST"},
	})(next)

	req := halcyon.NewTestRequest("OPTIONS", "/x", map[string]string{
		"Origin": "https://example.com",
	}, nil)

	resp, err := svc(req)
	assert.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 204, resp.Status)
	assert.Equal(t, "https://example.com", resp.Headers.Get(halcyon.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET,POST", resp.Headers.Get(halcyon.HeaderAccessControlAllowMethods))
}

func TestCORSActualRequestSetsAllowOrigin(t *testing.T) {
	svc := CORS()(terminal(200))

	req := halcyon.NewTestRequest("GET", "/x", map[string]string{
		"Origin": "https://anywhere.example",
	}, nil)

	resp, err := svc(req)
	assert.NoError(t, err)
	assert.Equal(t, "*", resp.Headers.Get(halcyon.HeaderAccessControlAllowOrigin))
}

func TestCORSRejectsDisallowedOrigin(t *testing.T) {
	svc := CORSWithConfig(CORSConfig{AllowOrigins: []string{"https://allowed.example"}})(terminal(200))

	req := halcyon.NewTestRequest("GET", "/x", map[string]string{
		"Origin": "https://evil.example",
	}, nil)

	resp, err := svc(req)
	assert.NoError(t, err)
	assert.Empty(t, resp.Headers.Get(halcyon.HeaderAccessControlAllowOrigin))
}

func TestCORSNoOriginPassesThroughUntouched(t *testing.T) {
	svc := CORS()(terminal(200))

	resp, err := svc(halcyon.NewTestRequest("GET", "/x", nil, nil))
	assert.NoError(t, err)
	assert.Empty(t, resp.Headers.Get(halcyon.HeaderAccessControlAllowOrigin))
}
