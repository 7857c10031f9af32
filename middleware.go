package halcyon

// Middleware is a factory that, given the "next" Service, returns a new
// Service of the same shape — the Go expression of spec.md §4.5's
// "MiddlewareFactory" protocol (the teacher's `Gas`, generalized from
// `func(Handler) Handler` to `func(Service) Service`).
//
// A Middleware must forward cancellation and deadlines to next (by simply
// calling it with the same *Request, whose Body/context plumbing already
// carries them), may short-circuit by returning a Response without calling
// next, and must not silently drop an error returned by next.
type Middleware func(next Service) Service

// Chain composes middlewares around a terminal Service, outermost first:
// Chain(h, m1, m2) behaves as m1(m2(h)) — m1 sees the request first and the
// response last, matching spec.md §4.5 and the invariant of §8.4.
//
// All composition happens once, here, at build time; per-request dispatch
// invokes the resulting Service directly with no further allocation for
// chaining (spec.md §4.6).
func Chain(terminal Service, mws ...Middleware) Service {
	svc := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}
