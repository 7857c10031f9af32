package halcyon

// Response is an HTTP response, built by a handler or middleware and handed
// to the serializer (the connection state machine, conn.go) for writing.
type Response struct {
	Status  int
	Headers *Headers
	Body    Stream
}

// NewResponse returns a 200 OK Response with an empty body.
func NewResponse() *Response {
	return &Response{
		Status:  200,
		Headers: NewHeaders(),
		Body:    EmptyStream,
	}
}

// WithStatus sets the status code and returns the Response, for chaining.
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// WithHeader sets a single header value and returns the Response, for
// chaining.
func (r *Response) WithHeader(name, value string) *Response {
	r.Headers.Set(name, value)
	return r
}

// WithBody sets the response body stream and returns the Response, for
// chaining.
func (r *Response) WithBody(body Stream) *Response {
	r.Body = body
	return r
}

// TextResponse builds a 200 OK, text/plain response from s, the default
// conversion for a handler returning a plain string (spec §4.4).
func TextResponse(s string) *Response {
	r := NewResponse()
	r.Headers.Set(HeaderContentType, "text/plain; charset=utf-8")
	r.Body = BytesStream([]byte(s))
	return r
}

// BytesResponse builds a 200 OK response from b, sniffing a Content-Type
// from its content (via mimesniffer, see codecs.go) instead of defaulting to
// a bare application/octet-stream, the default conversion for a handler
// returning a byte slice (spec §4.4, enriched per SPEC_FULL.md §4.13).
func BytesResponse(b []byte) *Response {
	r := NewResponse()
	r.Headers.Set(HeaderContentType, sniffContentType(b))
	r.Body = BytesStream(b)
	return r
}

// ErrorResponse renders err as a plain-text error body, using status if err
// does not implement HasStatusCode. User-visible failure bodies are always
// plain text; no stack traces are ever included (spec §7).
func ErrorResponse(err error, status int) *Response {
	if hs, ok := err.(HasStatusCode); ok {
		status = hs.StatusCode()
	}
	r := NewResponse()
	r.Status = status
	r.Headers.Set(HeaderContentType, "text/plain; charset=utf-8")
	r.Body = BytesStream([]byte(err.Error()))
	return r
}
