package middlewares

import (
	"github.com/google/uuid"
	"github.com/halcyon-http/halcyon"
)

// RequestID returns a Middleware that assigns a UUIDv4 to every request
// lacking an X-Request-Id header already, and echoes it on the response,
// an enrichment with no teacher-gas equivalent, grounded on the retrieval
// pack's use of google/uuid for identifier generation (SPEC_FULL.md
// §4.12).
func RequestID() halcyon.Middleware {
	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (*halcyon.Response, error) {
			id := req.HeaderValue(halcyon.HeaderXRequestID)
			if id == "" {
				id = uuid.New().String()
				req.Headers.Set(halcyon.HeaderXRequestID, id)
			}

			resp, err := next(req)
			if resp != nil {
				resp.Headers.Set(halcyon.HeaderXRequestID, id)
			}
			return resp, err
		}
	}
}
