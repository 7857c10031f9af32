package middlewares

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/halcyon-http/halcyon"
)

// ETag returns a Middleware that computes a weak ETag (an xxhash digest of
// the response body) for every successful GET/HEAD response with a sized
// body, and answers with 304 Not Modified when the request's If-None-Match
// matches. Computing the digest requires materializing the response body,
// so it is skipped for unsized (chunked/streaming) bodies.
func ETag() halcyon.Middleware {
	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (*halcyon.Response, error) {
			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}
			if req.Method != "GET" && req.Method != "HEAD" {
				return resp, nil
			}
			if resp.Status != 200 {
				return resp, nil
			}
			if _, known := resp.Body.SizeHint().Exact(); !known {
				return resp, nil
			}

			body, err := halcyon.ReadAll(resp.Body)
			if err != nil {
				return resp, err
			}

			tag := `W/"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
			resp.Headers.Set(halcyon.HeaderETag, tag)
			resp.Body = halcyon.BytesStream(body)

			if req.HeaderValue(halcyon.HeaderIfNoneMatch) == tag {
				notModified := halcyon.NewResponse().WithStatus(304)
				notModified.Headers.Set(halcyon.HeaderETag, tag)
				return notModified, nil
			}

			return resp, nil
		}
	}
}
