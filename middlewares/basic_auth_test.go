package middlewares

import (
	"encoding/base64"
	"testing"

	"github.com/halcyon-http/halcyon"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func basicAuthHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestBasicAuthAcceptsValidCredentials(t *testing.T) {
	svc := BasicAuth(func(user, pass string) bool {
		return user == "admin" && pass == "secret"
	})(terminal(200))

	req := halcyon.NewTestRequest("GET", "/x", map[string]string{
		"Authorization": basicAuthHeader("admin", "secret"),
	}, nil)

	resp, err := svc(req)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestBasicAuthRejectsInvalidCredentials(t *testing.T) {
	svc := BasicAuth(func(user, pass string) bool { return false })(terminal(200))

	req := halcyon.NewTestRequest("GET", "/x", map[string]string{
		"Authorization": basicAuthHeader("admin", "wrong"),
	}, nil)

	resp, err := svc(req)
	assert.NoError(t, err)
	assert.Equal(t, 401, resp.Status)
	assert.Contains(t, resp.Headers.Get(halcyon.HeaderWWWAuthenticate), "Restricted")
}

func TestBasicAuthRejectsMissingHeader(t *testing.T) {
	svc := BasicAuth(func(user, pass string) bool { return true })(terminal(200))

	resp, err := svc(halcyon.NewTestRequest("GET", "/x", nil, nil))
	assert.NoError(t, err)
	assert.Equal(t, 401, resp.Status)
}

func TestBCryptValidator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	validator := BCryptValidator(map[string][]byte{"admin": hash})

	assert.True(t, validator("admin", "hunter2"))
	assert.False(t, validator("admin", "wrong"))
	assert.False(t, validator("nobody", "hunter2"))
}
