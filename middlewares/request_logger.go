package middlewares

import (
	"time"

	"github.com/halcyon-http/halcyon"
)

// RequestLogger returns a Middleware that logs one structured record per
// request through logger, adapted from the teacher's Logger gas (which
// formatted a template string per request) into a zerolog-backed record
// instead of an ad hoc text/template (SPEC_FULL.md §4.12).
func RequestLogger(logger *halcyon.Logger) halcyon.Middleware {
	return func(next halcyon.Service) halcyon.Service {
		return func(req *halcyon.Request) (*halcyon.Response, error) {
			start := time.Now()

			resp, err := next(req)

			status := 0
			if resp != nil {
				status = resp.Status
			}

			l := logger.
				WithField("method", req.Method).
				WithField("path", req.Path).
				WithField("status", status).
				WithField("latency_us", time.Since(start).Microseconds())

			if err != nil {
				l.Errorf("request failed: %v", err)
			} else {
				l.Infof("request served")
			}

			return resp, err
		}
	}
}
