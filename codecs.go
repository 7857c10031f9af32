package halcyon

import (
	"encoding/json"

	"github.com/aofei/mimesniffer"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
)

// sniffContentType detects a MIME type from a response body's leading
// bytes, grounded on response.go's own use of mimesniffer for the same
// purpose in the teacher framework.
func sniffContentType(b []byte) string {
	if len(b) == 0 {
		return "application/octet-stream"
	}
	return mimesniffer.Sniff(b)
}

// JSON wraps a value to be encoded as a JSON response body, one of the
// response codecs SPEC_FULL.md §4.13 adds alongside the plain
// string/[]byte/Response conversions of spec.md §4.4.
type JSON[T any] struct{ Value T }

// IntoResponse encodes j.Value as application/json.
func (j JSON[T]) IntoResponse() (*Response, error) {
	b, err := json.Marshal(j.Value)
	if err != nil {
		return nil, err
	}
	r := NewResponse()
	r.Headers.Set(HeaderContentType, "application/json; charset=utf-8")
	r.Body = BytesStream(b)
	return r, nil
}

// MsgPack wraps a value to be encoded as a MessagePack response body using
// github.com/vmihailenco/msgpack/v5.
type MsgPack[T any] struct{ Value T }

// IntoResponse encodes m.Value as application/msgpack.
func (m MsgPack[T]) IntoResponse() (*Response, error) {
	b, err := msgpack.Marshal(m.Value)
	if err != nil {
		return nil, err
	}
	r := NewResponse()
	r.Headers.Set(HeaderContentType, "application/msgpack")
	r.Body = BytesStream(b)
	return r, nil
}

// Proto wraps a protobuf message to be encoded as a binary protobuf response
// body using google.golang.org/protobuf/proto.
type Proto struct{ Message proto.Message }

// IntoResponse encodes p.Message as application/x-protobuf.
func (p Proto) IntoResponse() (*Response, error) {
	b, err := proto.Marshal(p.Message)
	if err != nil {
		return nil, err
	}
	r := NewResponse()
	r.Headers.Set(HeaderContentType, "application/x-protobuf")
	r.Body = BytesStream(b)
	return r, nil
}
