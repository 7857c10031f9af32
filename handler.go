package halcyon

import (
	"fmt"
	"reflect"
)

// Service is the uniform callable every route, middleware, and handler
// eventually compiles down to: (Request) -> (Response, error). It is the
// framework's one concurrency-relevant contract — a Service is invoked on a
// single goroutine at a time per request, never concurrently with itself.
type Service func(req *Request) (*Response, error)

// Handler is an alias for Service kept for readability at registration call
// sites (Route, Scope.Serve).
type Handler = Service

// IntoResponse is implemented by any value a handler may return besides the
// built-in string/[]byte/*Response conversions of spec.md §4.4.
type IntoResponse interface {
	IntoResponse() (*Response, error)
}

var (
	requestPtrType = reflect.TypeOf((*Request)(nil))
	connInfoType   = reflect.TypeOf(ConnInfo{})
	queryMapType   = reflect.TypeOf(QueryMap{})
	pathParamsType = reflect.TypeOf(PathParams{})
	headersPtrType = reflect.TypeOf((*Headers)(nil))
	extractorIface = reflect.TypeOf((*Extractor)(nil)).Elem()
	errorIface     = reflect.TypeOf((*error)(nil)).Elem()
)

// ErrUnknownExtractor is a build-time error: a handler declared a parameter
// type with no recognized extraction strategy.
type ErrUnknownExtractor struct {
	Type reflect.Type
}

func (e *ErrUnknownExtractor) Error() string {
	return fmt.Sprintf("halcyon: no extractor for handler parameter type %s", e.Type)
}

// ErrHandlerShape is a build-time error: a handler's signature cannot be
// adapted (too many body/stream consumers, or too many return values).
type ErrHandlerShape struct {
	Reason string
}

func (e *ErrHandlerShape) Error() string { return "halcyon: " + e.Reason }

// paramPlan describes how a single handler parameter is populated at
// request time.
type paramPlan struct {
	// direct, when non-nil, reads the argument straight off the Request
	// without going through the Extractor interface (the built-in
	// categories of spec.md §4.3: whole request, connection info,
	// headers, query map, path params).
	direct func(req *Request) reflect.Value

	// extractorPtrType is set when the parameter is populated via the
	// Extractor interface: a new *extractorPtrType.Elem() is allocated,
	// ExtractFromRequest is called on it, and its Elem() is passed as
	// the argument.
	extractorPtrType reflect.Type
}

// Adapt turns a handler function of (almost) any shape into a Service, per
// the algorithm of spec.md §4.4:
//
//  1. each declared parameter type selects an extractor;
//  2. extractors run left to right, short-circuiting to an error Response
//     on the first failure;
//  3. the handler is invoked with the extracted arguments;
//  4. its return value(s) are converted to a Response via IntoResponse (or
//     one of the built-in conversions).
//
// Adapt panics on a handler whose shape cannot be adapted (unknown parameter
// type, more than one body- or stream-consuming parameter, or an
// unsupported return shape) — these are programmer errors in route
// registration and are surfaced at Builder.Build time, not per-request (see
// buildRouter in router.go).
func Adapt(handler any) Service {
	if svc, ok := handler.(Service); ok {
		return svc
	}
	if fn, ok := handler.(func(*Request) (*Response, error)); ok {
		return Service(fn)
	}

	rv := reflect.ValueOf(handler)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		panic(fmt.Sprintf("halcyon: handler must be a function, got %s", rt))
	}

	plans := make([]paramPlan, rt.NumIn())
	bodyConsumers, streamConsumers := 0, 0

	for i := 0; i < rt.NumIn(); i++ {
		pt := rt.In(i)
		plan, consumesBody, consumesStream := planParam(pt)
		plans[i] = plan
		if consumesBody {
			bodyConsumers++
		}
		if consumesStream {
			streamConsumers++
		}
	}

	if bodyConsumers > 1 {
		panic(&ErrHandlerShape{"handler declares more than one body-consuming extractor"})
	}
	if streamConsumers > 1 {
		panic(&ErrHandlerShape{"handler declares more than one stream extractor"})
	}

	if rt.NumOut() > 2 {
		panic(&ErrHandlerShape{"handler must return at most (result, error)"})
	}
	if rt.NumOut() == 2 && !rt.Out(1).Implements(errorIface) {
		panic(&ErrHandlerShape{"handler's second return value must be an error"})
	}

	return func(req *Request) (*Response, error) {
		args := make([]reflect.Value, len(plans))

		for i, plan := range plans {
			if plan.direct != nil {
				args[i] = plan.direct(req)
				continue
			}

			ptr := reflect.New(plan.extractorPtrType.Elem())
			if err := ptr.Interface().(Extractor).ExtractFromRequest(req); err != nil {
				return extractorFailureResponse(err)
			}
			args[i] = ptr.Elem()
		}

		out := rv.Call(args)
		return handlerReturn(rt, out)
	}
}

func planParam(pt reflect.Type) (plan paramPlan, consumesBody, consumesStream bool) {
	switch {
	case pt == requestPtrType:
		return paramPlan{direct: func(req *Request) reflect.Value { return reflect.ValueOf(req) }}, false, false
	case pt == connInfoType:
		return paramPlan{direct: func(req *Request) reflect.Value { return reflect.ValueOf(req.Conn) }}, false, false
	case pt == queryMapType:
		return paramPlan{direct: func(req *Request) reflect.Value { return reflect.ValueOf(req.Query) }}, false, false
	case pt == pathParamsType:
		return paramPlan{direct: func(req *Request) reflect.Value { return reflect.ValueOf(req.PathParams) }}, false, false
	case pt == headersPtrType:
		return paramPlan{direct: func(req *Request) reflect.Value { return reflect.ValueOf(req.Headers) }}, false, false
	}

	ptrType := reflect.PtrTo(pt)
	if !ptrType.Implements(extractorIface) {
		panic(&ErrUnknownExtractor{Type: pt})
	}

	consumesBody = ptrType.Implements(reflect.TypeOf((*bodyConsumer)(nil)).Elem())
	consumesStream = ptrType.Implements(reflect.TypeOf((*streamConsumer)(nil)).Elem())

	return paramPlan{extractorPtrType: ptrType}, consumesBody, consumesStream
}

// extractorFailureResponse converts an extractor's error into a Response per
// spec.md §4.3/§7: ExtractorFailure surfaces as a 4xx with no handler
// invocation.
func extractorFailureResponse(err error) (*Response, error) {
	status := 400
	return ErrorResponse(err, status), nil
}

// handlerReturn converts a handler's raw reflect.Call output into a
// Response, implementing the return-value half of spec.md §4.4's algorithm.
func handlerReturn(rt reflect.Type, out []reflect.Value) (*Response, error) {
	switch len(out) {
	case 0:
		return NewResponse(), nil

	case 1:
		if rt.Out(0).Implements(errorIface) {
			if out[0].IsNil() {
				return NewResponse(), nil
			}
			err := out[0].Interface().(error)
			return ErrorResponse(err, 500), nil
		}
		return toResponse(out[0].Interface())

	default: // 2
		if !out[1].IsNil() {
			err := out[1].Interface().(error)
			return ErrorResponse(err, 500), nil
		}
		return toResponse(out[0].Interface())
	}
}

// toResponse implements the default conversions of spec.md §4.4: identity
// for *Response, text/plain for string, application/octet-stream (sniffed)
// for []byte, and delegation to IntoResponse for anything else. A handler
// declared to return an interface (a tagged union) is handled by switching
// on the dynamic value it actually returns.
func toResponse(v any) (*Response, error) {
	switch val := v.(type) {
	case nil:
		return NewResponse(), nil
	case *Response:
		return val, nil
	case string:
		return TextResponse(val), nil
	case []byte:
		return BytesResponse(val), nil
	case IntoResponse:
		return val.IntoResponse()
	default:
		return nil, fmt.Errorf("halcyon: %T does not implement IntoResponse", v)
	}
}
