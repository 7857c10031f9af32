package middlewares

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/halcyon-http/halcyon"
)

// JWTConfig configures JWTAuth.
type JWTConfig struct {
	// SigningKey validates the token signature. Required.
	SigningKey any

	// SigningMethod names the expected signing algorithm.
	//
	// Default value: "HS256"
	SigningMethod string

	// TokenLookup is "header:<name>" or "query:<name>", naming where to
	// find the bearer token.
	//
	// Default value: "header:Authorization"
	TokenLookup string
}

// DefaultJWTConfig is the config used by JWTAuth, less SigningKey.
var DefaultJWTConfig = JWTConfig{
	SigningMethod: "HS256",
	TokenLookup:   "header:" + halcyon.HeaderAuthorization,
}

const bearerPrefix = "Bearer"

// JWTAuth returns a Middleware validating a JSON Web Token on every request,
// short-circuiting to 400 when no token is found where TokenLookup points
// (for a header, one without the "Bearer " prefix counts as missing), and
// to 401 when the token fails parsing or signature verification (adapted from the teacher's JWT gas, which stashed
// the parsed token in its Context's value bag; this module's Request has no
// equivalent per-request value bag, so the handler re-parses the token via
// an Extractor if it needs the claims).
func JWTAuth(key any) halcyon.Middleware {
	c := DefaultJWTConfig
	c.SigningKey = key
	return JWTAuthWithConfig(c)
}

// JWTAuthWithConfig is like JWTAuth but accepts an explicit JWTConfig.
func JWTAuthWithConfig(config JWTConfig) halcyon.Middleware {
	if config.SigningKey == nil {
		panic("halcyon/middlewares: JWTAuth requires a SigningKey")
	}
	if config.SigningMethod == "" {
		config.SigningMethod = DefaultJWTConfig.SigningMethod
	}
	if config.TokenLookup == "" {
		config.TokenLookup = DefaultJWTConfig.TokenLookup
	}

	parts := strings.SplitN(config.TokenLookup, ":", 2)
	source, name := parts[0], parts[1]

	extract := func(req *halcyon.Request) (string, error) {
		switch source {
		case "query":
			if tok := req.Query.Get(name); tok != "" {
				return tok, nil
			}
			return "", errors.New("empty jwt in query string")
		default:
			auth := req.HeaderValue(name)
			l := len(bearerPrefix)
			if len(auth) > l+1 && auth[:l] == bearerPrefix {
				return auth[l+1:], nil
			}
			return "", errors.New("empty or invalid jwt in request header")
		}
	}

	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (*halcyon.Response, error) {
			raw, err := extract(req)
			if err != nil {
				return halcyon.ErrorResponse(err, 400), nil
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if t.Method.Alg() != config.SigningMethod {
					return nil, errors.New("unexpected jwt signing method")
				}
				return config.SigningKey, nil
			})
			if err != nil || !token.Valid {
				return halcyon.ErrorResponse(errUnauthorized{}, 401), nil
			}

			return next(req)
		}
	}
}
