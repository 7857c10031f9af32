package middlewares

import (
	"testing"

	"github.com/halcyon-http/halcyon"
	"github.com/stretchr/testify/assert"
)

func TestRecoverCatchesPanic(t *testing.T) {
	svc := Recover()(func(req *halcyon.Request) (*halcyon.Response, error) {
		panic("boom")
	})

	resp, err := svc(halcyon.NewTestRequest("GET", "/x", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
}

func TestRecoverPassesThroughWhenNoPanic(t *testing.T) {
	svc := Recover()(func(req *halcyon.Request) (*halcyon.Response, error) {
		return halcyon.NewResponse().WithStatus(200), nil
	})

	resp, err := svc(halcyon.NewTestRequest("GET", "/x", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestRecoverCatchesErrorPanic(t *testing.T) {
	svc := Recover()(func(req *halcyon.Request) (*halcyon.Response, error) {
		panic(assert.AnError)
	})

	resp, err := svc(halcyon.NewTestRequest("GET", "/x", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
}
