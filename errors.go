package halcyon

import "fmt"

// ErrRouteConflict is a build-time error: two routes flattened to the same
// (method, pattern) key.
type ErrRouteConflict struct {
	Method  string
	Pattern string
}

func (e *ErrRouteConflict) Error() string {
	return fmt.Sprintf("halcyon: route conflict: %s %s is already registered", e.Method, e.Pattern)
}

// ErrRequestParse reports a malformed HTTP request head. It surfaces as a
// 400 response followed by closing the connection.
type ErrRequestParse struct {
	Reason string
}

func (e *ErrRequestParse) Error() string { return "halcyon: malformed request: " + e.Reason }
func (e *ErrRequestParse) StatusCode() int { return 400 }

// ErrHeaderTooLarge reports a request head exceeding MaxHeaderBytes.
type ErrHeaderTooLarge struct{}

func (e *ErrHeaderTooLarge) Error() string   { return "halcyon: request header fields too large" }
func (e *ErrHeaderTooLarge) StatusCode() int { return 431 }

// ErrBodyTooLarge reports a request body exceeding a route's MaxBodyBytes.
type ErrBodyTooLarge struct{}

func (e *ErrBodyTooLarge) Error() string   { return "halcyon: request body too large" }
func (e *ErrBodyTooLarge) StatusCode() int { return 413 }

// ErrReadTimeout reports a read deadline expiring while reading the request
// head.
type ErrReadTimeout struct{}

func (e *ErrReadTimeout) Error() string   { return "halcyon: request timeout" }
func (e *ErrReadTimeout) StatusCode() int { return 408 }

// ErrWriteTimeout reports a write deadline expiring while writing the
// response; the connection is closed rather than answered, so it has no
// StatusCode.
type ErrWriteTimeout struct{}

func (e *ErrWriteTimeout) Error() string { return "halcyon: write timeout" }

// ErrStreamPrematureEndRequest reports a request body shorter than its
// declared Content-Length.
type ErrStreamPrematureEndRequest struct{}

func (e *ErrStreamPrematureEndRequest) Error() string   { return "halcyon: request body ended prematurely" }
func (e *ErrStreamPrematureEndRequest) StatusCode() int { return 400 }

// ErrClientDisconnect indicates the peer closed the connection; it never
// reaches a response and is only used for logging.
type ErrClientDisconnect struct{}

func (e *ErrClientDisconnect) Error() string { return "halcyon: client disconnected" }

// HasStatusCode is implemented by errors that know how to render themselves
// as a plain-text error response (the `to_response` capability of §7).
type HasStatusCode interface {
	error
	StatusCode() int
}
