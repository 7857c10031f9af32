package halcyon

import (
	"encoding/json"
	"errors"
	"mime"
)

// Extractor is implemented by a pointer to a value that can populate itself
// from a Request. It is the Go expression of the `FromRequest<T>` trait
// described in spec.md's Design Notes: the handler adapter (handler.go)
// instantiates a zero T, calls ExtractFromRequest on its address, and passes
// the dereferenced value as the handler's argument.
type Extractor interface {
	ExtractFromRequest(req *Request) error
}

// bodyConsumer is implemented by extractors that read from the request
// body. The handler adapter rejects, at build time, any handler declaring
// more than one body-consuming parameter.
type bodyConsumer interface {
	consumesBody()
}

// streamConsumer is implemented by extractors that take ownership of the
// raw body Stream rather than materializing it. At most one per handler.
type streamConsumer interface {
	consumesStream()
}

// ErrExtraction wraps an extractor failure with the HTTP status it should
// render as, defaulting to 400 per spec.md §4.3 ("usually 4xx").
type ErrExtraction struct {
	Status int
	Reason string
}

func (e *ErrExtraction) Error() string   { return e.Reason }
func (e *ErrExtraction) StatusCode() int { return e.Status }

func extractionError(status int, reason string) error {
	return &ErrExtraction{Status: status, Reason: reason}
}

// bodyReadError wraps a failure reading the request body, preserving the
// status code of errors that carry one (e.g. ErrBodyTooLarge's 413) instead
// of collapsing every read failure to 400. A bare ErrStreamPrematureEnd is
// promoted to the request-side ErrStreamPrematureEndRequest first, so
// logging and HasStatusCode both see the named taxonomy type.
func bodyReadError(err error) error {
	if errors.Is(err, ErrStreamPrematureEnd) {
		err = &ErrStreamPrematureEndRequest{}
	}

	status := 400
	if hs, ok := err.(HasStatusCode); ok {
		status = hs.StatusCode()
	}
	return extractionError(status, "reading body: "+err.Error())
}

// RawBody extracts the entire request body as raw bytes.
type RawBody struct {
	Bytes []byte
}

func (b *RawBody) ExtractFromRequest(req *Request) error {
	data, err := ReadAll(req.takeBody())
	if err != nil {
		return bodyReadError(err)
	}
	b.Bytes = data
	return nil
}

func (*RawBody) consumesBody() {}

// TextBody extracts the entire request body decoded as UTF-8 text.
type TextBody struct {
	Text string
}

func (b *TextBody) ExtractFromRequest(req *Request) error {
	data, err := ReadAll(req.takeBody())
	if err != nil {
		return bodyReadError(err)
	}
	b.Text = string(data)
	return nil
}

func (*TextBody) consumesBody() {}

// FormBody extracts the request body as a application/x-www-form-urlencoded
// document into a QueryMap.
type FormBody struct {
	Values QueryMap
}

func (f *FormBody) ExtractFromRequest(req *Request) error {
	ct := req.HeaderValue(HeaderContentType)
	if mt, _, _ := mime.ParseMediaType(ct); mt != "" && mt != "application/x-www-form-urlencoded" {
		return extractionError(400, "expected application/x-www-form-urlencoded, got "+mt)
	}

	data, err := ReadAll(req.takeBody())
	if err != nil {
		return bodyReadError(err)
	}
	f.Values = ParseQuery(string(data))
	return nil
}

func (*FormBody) consumesBody() {}

// RequireFields returns an extraction error naming the first missing field
// among names, or nil if all are present. Handlers that require a fixed
// form field set can call this directly.
func (f FormBody) RequireFields(names ...string) error {
	for _, n := range names {
		if !f.Values.Has(n) {
			return extractionError(400, "missing required field "+n)
		}
	}
	return nil
}

// JSONBody decodes the request body as JSON into a value of type T.
type JSONBody[T any] struct {
	Value T
}

func (j *JSONBody[T]) ExtractFromRequest(req *Request) error {
	ct := req.HeaderValue(HeaderContentType)
	if mt, _, _ := mime.ParseMediaType(ct); mt != "" && mt != "application/json" {
		return extractionError(400, "expected application/json, got "+mt)
	}

	data, err := ReadAll(req.takeBody())
	if err != nil {
		return bodyReadError(err)
	}

	if err := json.Unmarshal(data, &j.Value); err != nil {
		return extractionError(400, "decoding JSON body: "+err.Error())
	}

	return nil
}

func (*JSONBody[T]) consumesBody() {}

// StreamBody transfers ownership of the raw, unmaterialized request body
// Stream to the handler, per spec.md §4.3's "stream handle" extractor.
type StreamBody struct {
	Stream Stream
}

func (s *StreamBody) ExtractFromRequest(req *Request) error {
	s.Stream = req.takeBody()
	return nil
}

func (*StreamBody) consumesBody()   {}
func (*StreamBody) consumesStream() {}

// StateOf extracts shared, per-route state of type T via the request's
// StateStack (state.go).
type StateOf[T any] struct {
	Value T
}

func (s *StateOf[T]) ExtractFromRequest(req *Request) error {
	v, err := State[T](req)
	if err != nil {
		return err
	}
	s.Value = v
	return nil
}
