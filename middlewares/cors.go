package middlewares

import (
	"strconv"
	"strings"

	"github.com/halcyon-http/halcyon"
)

// CORSConfig configures CORS, mirroring the teacher's CORSConfig field for
// field (SPEC_FULL.md §4.12).
type CORSConfig struct {
	// AllowOrigins lists the origins allowed to access the resource.
	//
	// Default value: []string{"*"}
	AllowOrigins []string

	// AllowHeaders lists the request headers permitted in the actual
	// request, in response to a preflight request.
	//
	// Default value: nil
	AllowHeaders []string

	// AllowMethods lists the methods permitted in the actual request, in
	// response to a preflight request.
	//
	// Default value: nil
	AllowMethods []string

	// AllowCredentials reports whether the response may be exposed when
	// the credentials flag is true.
	//
	// Default value: false
	AllowCredentials bool

	// ExposeHeaders lists the response headers clients are allowed to
	// access.
	//
	// Default value: nil
	ExposeHeaders []string

	// MaxAge is how long, in seconds, a preflight response may be
	// cached.
	//
	// Default value: 0
	MaxAge int
}

// DefaultCORSConfig is the config used by CORS.
var DefaultCORSConfig = CORSConfig{AllowOrigins: []string{"*"}}

// CORS returns a Middleware implementing Cross-Origin Resource Sharing with
// DefaultCORSConfig.
func CORS() halcyon.Middleware {
	return CORSWithConfig(DefaultCORSConfig)
}

// CORSWithConfig is like CORS but accepts an explicit CORSConfig.
func CORSWithConfig(config CORSConfig) halcyon.Middleware {
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = DefaultCORSConfig.AllowOrigins
	}
	exposeHeaders := strings.Join(config.ExposeHeaders, ",")
	allowHeaders := strings.Join(config.AllowHeaders, ",")
	allowMethods := strings.Join(config.AllowMethods, ",")

	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (*halcyon.Response, error) {
			origin := req.HeaderValue(halcyon.HeaderOrigin)

			if origin == "" {
				return next(req)
			}

			allowedOrigin := ""
			for _, o := range config.AllowOrigins {
				if o == "*" || o == origin {
					allowedOrigin = o
					break
				}
			}
			if allowedOrigin == "" {
				return next(req)
			}

			if req.Method == "OPTIONS" {
				resp := halcyon.NewResponse().WithStatus(204)
				resp.Headers.Add(halcyon.HeaderVary, halcyon.HeaderOrigin)
				resp.Headers.Set(halcyon.HeaderAccessControlAllowOrigin, allowedOrigin)
				if config.AllowCredentials {
					resp.Headers.Set(halcyon.HeaderAccessControlAllowCredentials, "true")
				}
				if allowMethods != "" {
					resp.Headers.Set(halcyon.HeaderAccessControlAllowMethods, allowMethods)
				}
				if allowHeaders != "" {
					resp.Headers.Set(halcyon.HeaderAccessControlAllowHeaders, allowHeaders)
				}
				if config.MaxAge > 0 {
					resp.Headers.Set(halcyon.HeaderAccessControlMaxAge, strconv.Itoa(config.MaxAge))
				}
				return resp, nil
			}

			resp, err := next(req)
			if err != nil {
				return resp, err
			}

			resp.Headers.Add(halcyon.HeaderVary, halcyon.HeaderOrigin)
			resp.Headers.Set(halcyon.HeaderAccessControlAllowOrigin, allowedOrigin)
			if config.AllowCredentials {
				resp.Headers.Set(halcyon.HeaderAccessControlAllowCredentials, "true")
			}
			if exposeHeaders != "" {
				resp.Headers.Set(halcyon.HeaderAccessControlExposeHeaders, exposeHeaders)
			}
			return resp, nil
		}
	}
}
