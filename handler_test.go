package halcyon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdaptNoArgsStringReturn(t *testing.T) {
	svc := Adapt(func() (string, error) {
		return "ok", nil
	})

	resp, err := svc(newRequest())
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "ok", string(data))
}

func TestAdaptRequestParam(t *testing.T) {
	svc := Adapt(func(req *Request) string {
		return req.Method
	})

	req := newRequest()
	req.Method = "POST"

	resp, err := svc(req)
	assert.NoError(t, err)
	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "POST", string(data))
}

func TestAdaptPathParamsDirect(t *testing.T) {
	svc := Adapt(func(p PathParams) string {
		return p.Get("id")
	})

	req := newRequest()
	req.PathParams = PathParams{"id": "42"}

	resp, _ := svc(req)
	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "42", string(data))
}

func TestAdaptExtractorParam(t *testing.T) {
	svc := Adapt(func(b TextBody) string {
		return "got: " + b.Text
	})

	req := reqWithBody([]byte("payload"))
	resp, _ := svc(req)

	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "got: payload", string(data))
}

func TestAdaptExtractorFailureShortCircuits(t *testing.T) {
	called := false
	svc := Adapt(func(j JSONBody[map[string]any]) string {
		called = true
		return "unreachable"
	})

	req := reqWithBody([]byte("not json"))
	req.Headers.Set(HeaderContentType, "application/json")

	resp, err := svc(req)
	assert.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, 400, resp.Status)
}

func TestAdaptErrorReturnBecomes500(t *testing.T) {
	svc := Adapt(func() error {
		return errors.New("boom")
	})

	resp, err := svc(newRequest())
	assert.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
}

func TestAdaptTwoBodyConsumersPanics(t *testing.T) {
	assert.Panics(t, func() {
		Adapt(func(a RawBody, b TextBody) string { return "" })
	})
}

func TestAdaptUnknownParamTypePanics(t *testing.T) {
	assert.Panics(t, func() {
		Adapt(func(n int) string { return "" })
	})
}

type greeting struct{ Name string }

func (g greeting) IntoResponse() (*Response, error) {
	return TextResponse("hi " + g.Name), nil
}

func TestAdaptCustomIntoResponse(t *testing.T) {
	svc := Adapt(func() greeting {
		return greeting{Name: "Ada"}
	})

	resp, _ := svc(newRequest())
	data, _ := ReadAll(resp.Body)
	assert.Equal(t, "hi Ada", string(data))
}
