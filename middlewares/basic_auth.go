package middlewares

import (
	"encoding/base64"
	"strings"

	"github.com/halcyon-http/halcyon"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuthValidator validates a username/password pair extracted from a
// Basic Authorization header, returning true if the credentials are
// accepted.
type BasicAuthValidator func(user, pass string) bool

// BasicAuthConfig configures BasicAuth.
type BasicAuthConfig struct {
	// Realm is advertised in the WWW-Authenticate challenge.
	//
	// Default value: "Restricted"
	Realm string

	// Validator is called with the decoded username/password. Required.
	Validator BasicAuthValidator
}

const basicAuthPrefix = "Basic"

// BasicAuth returns a Middleware enforcing HTTP Basic authentication,
// calling validator with the decoded credentials (SPEC_FULL.md §4.12).
func BasicAuth(validator BasicAuthValidator) halcyon.Middleware {
	return BasicAuthWithConfig(BasicAuthConfig{Validator: validator})
}

// BasicAuthWithConfig is like BasicAuth but accepts an explicit
// BasicAuthConfig.
func BasicAuthWithConfig(config BasicAuthConfig) halcyon.Middleware {
	if config.Validator == nil {
		panic("halcyon/middlewares: BasicAuth requires a Validator")
	}
	if config.Realm == "" {
		config.Realm = "Restricted"
	}

	challenge := basicAuthPrefix + ` realm="` + config.Realm + `"`

	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (*halcyon.Response, error) {
			auth := req.HeaderValue(halcyon.HeaderAuthorization)
			l := len(basicAuthPrefix)

			if len(auth) > l+1 && auth[:l] == basicAuthPrefix {
				raw, err := base64.StdEncoding.DecodeString(auth[l+1:])
				if err == nil {
					if i := strings.IndexByte(string(raw), ':'); i >= 0 {
						user, pass := string(raw[:i]), string(raw[i+1:])
						if config.Validator(user, pass) {
							return next(req)
						}
					}
				}
			}

			resp := halcyon.ErrorResponse(errUnauthorized{}, 401)
			resp.Headers.Set(halcyon.HeaderWWWAuthenticate, challenge)
			return resp, nil
		}
	}
}

// BCryptValidator builds a BasicAuthValidator comparing the supplied
// password against a bcrypt hash keyed by username, for callers storing
// password hashes rather than plaintext (SPEC_FULL.md §4.12 enrichment).
func BCryptValidator(hashes map[string][]byte) BasicAuthValidator {
	return func(user, pass string) bool {
		hash, ok := hashes[user]
		if !ok {
			return false
		}
		return bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
	}
}

type errUnauthorized struct{}

func (errUnauthorized) Error() string { return "halcyon: unauthorized" }
