package halcyon

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"
)

// connKey is the context key the Server's ConnContext hook uses to thread
// the raw net.Conn through to ServeHTTP, so Request.Conn can carry the
// accept-time local/remote endpoints spec.md §3 describes ("captured at
// accept time, copied by reference into each Request served on that
// connection").
type connKey struct{}

func withConn(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, c)
}

func connFromContext(ctx context.Context) (net.Conn, bool) {
	c, ok := ctx.Value(connKey{}).(net.Conn)
	return c, ok
}

// ServeHTTP implements http.Handler, realizing the connection state
// machine's ReadingHead -> Dispatching -> WritingHead -> StreamingBody
// states of spec.md §4.8 on top of net/http's accept/read/write substrate
// and HTTP/1.x wire parser/serializer — both explicitly out of scope per
// spec.md §1 and assumed to be supplied by an external collaborator, which
// net/http's *http.Server plays here (see server.go).
//
// Parse errors, timeouts, and oversized heads are handled by net/http itself
// (via Server.MaxHeaderBytes / ReadHeaderTimeout) before ServeHTTP is ever
// called; this method's own responsibility begins at Dispatching.
func (s *Server) ServeHTTP(rw http.ResponseWriter, hr *http.Request) {
	req := s.requestFromHTTP(hr)

	result := s.router.Match(req.Method, req.Path)

	switch result.Outcome {
	case NotFound:
		s.writeResponse(rw, hr, ErrorResponse(errNotFound, 404))
		return
	case MethodNotAllowed:
		resp := ErrorResponse(errMethodNotAllowed, 405)
		resp.Headers.Set(HeaderAllow, result.AllowHeader())
		s.writeResponse(rw, hr, resp)
		return
	}

	cr := result.Route
	req.PathParams = result.Params
	req.state = cr.state

	if s.config.BodyReadTimeout > 0 {
		http.NewResponseController(rw).SetReadDeadline(time.Now().Add(s.config.BodyReadTimeout))
	}

	if cr.maxBody > 0 {
		req.Body = limitStream(req.Body, cr.maxBody)
	} else if s.config.MaxBodyBytes > 0 {
		req.Body = limitStream(req.Body, s.config.MaxBodyBytes)
	}

	resp, err := s.invoke(cr.service, req)
	if err != nil {
		resp = s.handleException(err, req)
	}

	s.writeResponse(rw, hr, resp)
}

// invoke runs svc and recovers a panic escaping it into a HandlerFailure,
// containing the exception the way spec.md §7 requires ("any
// exception/failure escaping next must either be converted into a Response
// or re-surfaced ... for logging").
func (s *Server) invoke(svc Service, req *Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = &panicError{value: r}
			}
		}
	}()
	return svc(req)
}

func (s *Server) handleException(err error, req *Request) *Response {
	if s.exceptionHandler != nil {
		return s.exceptionHandler(err, req)
	}
	s.logger.Errorf("halcyon: unhandled error serving %s %s: %v", req.Method, req.Path, err)
	return ErrorResponse(err, 500)
}

type panicError struct{ value any }

func (p *panicError) Error() string { return "panic: " + toErrorString(p.value) }

func toErrorString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if e, ok := v.(error); ok {
		return e.Error()
	}
	return "non-error panic value"
}

var (
	errNotFound         = &simpleError{"halcyon: no matching route", 404}
	errMethodNotAllowed = &simpleError{"halcyon: method not allowed", 405}
)

type simpleError struct {
	msg    string
	status int
}

func (e *simpleError) Error() string   { return e.msg }
func (e *simpleError) StatusCode() int { return e.status }

// requestFromHTTP adapts an *http.Request into a Request, bridging the
// wire-parsed head into the core's own types (spec.md §4.8's ReadingHead ->
// Dispatching transition).
func (s *Server) requestFromHTTP(hr *http.Request) *Request {
	req := newRequest()
	req.Method = hr.Method
	req.Path = hr.URL.EscapedPath()
	req.RawURI = hr.RequestURI
	req.Proto = hr.Proto
	req.Query = ParseQuery(hr.URL.RawQuery)

	for name, values := range hr.Header {
		for _, v := range values {
			req.Headers.Add(name, v)
		}
	}

	if c, ok := connFromContext(hr.Context()); ok {
		req.Conn = ConnInfo{LocalAddr: c.LocalAddr(), RemoteAddr: c.RemoteAddr()}
	} else if addr, err := net.ResolveTCPAddr("tcp", hr.RemoteAddr); err == nil {
		req.Conn = ConnInfo{RemoteAddr: addr}
	}

	req.Body = httpBodyStream(hr)

	return req
}

// httpBodyStream wraps an *http.Request's Body in a Stream with the proper
// size hint: sized when Content-Length was declared, chunked (unsized)
// otherwise, per spec.md §3's Stream body invariants.
func httpBodyStream(hr *http.Request) Stream {
	if hr.Body == nil || hr.Body == http.NoBody {
		return EmptyStream
	}

	hint := UnknownSize
	if hr.ContentLength >= 0 {
		hint = ExactSize(hr.ContentLength)
	}

	return ReaderStream(hr.Body, hint)
}

// writeResponse serializes a Response onto rw, the WritingHead ->
// StreamingBody transition of spec.md §4.8. Headers are always written
// before any body bytes (spec.md §5's ordering guarantee); net/http handles
// chunked-vs-Content-Length framing for us as the wire serializer.
func (s *Server) writeResponse(rw http.ResponseWriter, hr *http.Request, resp *Response) {
	rc := http.NewResponseController(rw)
	armWriteDeadline := func() {
		if s.config.WriteTimeout > 0 {
			rc.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		}
	}
	armWriteDeadline()

	h := rw.Header()
	for _, name := range resp.Headers.Keys() {
		for _, v := range resp.Headers.Values(name) {
			h.Add(name, v)
		}
	}

	if n, ok := resp.Body.SizeHint().Exact(); ok {
		h.Set(HeaderContentLength, strconv.FormatInt(n, 10))
	}

	rw.WriteHeader(resp.Status)

	if hr.Method == http.MethodHead {
		return
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.ReadNext(buf)
		if n > 0 {
			armWriteDeadline()
			if _, werr := rw.Write(buf[:n]); werr != nil {
				s.logger.Errorf("halcyon: %v", &ErrClientDisconnect{})
				return
			}
			if f, ok := rw.(http.Flusher); ok {
				f.Flush()
			}
		}
		if err == ErrStreamClosed {
			return
		}
		if err != nil {
			s.logger.Errorf("halcyon: error streaming response body: %v", err)
			return
		}
	}
}

// limitStream wraps body so that reading more than max bytes fails with
// ErrBodyTooLarge, realizing spec.md §4.8's per-route body budget.
func limitStream(body Stream, max int64) Stream {
	return &limitedStream{inner: body, remaining: max}
}

type limitedStream struct {
	inner     Stream
	remaining int64
}

func (l *limitedStream) SizeHint() SizeHint { return l.inner.SizeHint() }

func (l *limitedStream) ReadNext(buf []byte) (int, error) {
	if int64(len(buf)) > l.remaining+1 {
		buf = buf[:l.remaining+1]
	}
	n, err := l.inner.ReadNext(buf)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, &ErrBodyTooLarge{}
	}
	return n, err
}
