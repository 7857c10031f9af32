package halcyon

// MethodAny matches any HTTP method when no method-specific route matches
// the same pattern (spec.md's Design Notes: method-specific routes win over
// ANY; see Router.Match in router.go).
const MethodAny = "ANY"

// RouteSpec is a single, not-yet-built route declaration produced by GET,
// POST, ... and ANY, ready to be handed to a Scope or a Builder.
type RouteSpec struct {
	method      string
	pattern     string
	handler     any
	middlewares []Middleware
	maxBody     int64 // 0 means "use the scope/builder default"
}

// Use attaches route-local middlewares, innermost (closest to the handler)
// of the whole chain the route ends up with.
func (r RouteSpec) Use(mws ...Middleware) RouteSpec {
	r.middlewares = append(append([]Middleware{}, r.middlewares...), mws...)
	return r
}

// MaxBodyBytes sets a per-route request body budget, overriding the
// server-wide default (spec.md §4.8's "Limits").
func (r RouteSpec) MaxBodyBytes(n int64) RouteSpec {
	r.maxBody = n
	return r
}

func route(method, pattern string, handler any) RouteSpec {
	return RouteSpec{method: method, pattern: pattern, handler: handler}
}

// GET declares a route matching the GET method.
func GET(pattern string, handler any) RouteSpec { return route("GET", pattern, handler) }

// HEAD declares a route matching the HEAD method.
func HEAD(pattern string, handler any) RouteSpec { return route("HEAD", pattern, handler) }

// POST declares a route matching the POST method.
func POST(pattern string, handler any) RouteSpec { return route("POST", pattern, handler) }

// PUT declares a route matching the PUT method.
func PUT(pattern string, handler any) RouteSpec { return route("PUT", pattern, handler) }

// PATCH declares a route matching the PATCH method.
func PATCH(pattern string, handler any) RouteSpec { return route("PATCH", pattern, handler) }

// DELETE declares a route matching the DELETE method.
func DELETE(pattern string, handler any) RouteSpec { return route("DELETE", pattern, handler) }

// OPTIONS declares a route matching the OPTIONS method.
func OPTIONS(pattern string, handler any) RouteSpec { return route("OPTIONS", pattern, handler) }

// Any declares a route matching any method not otherwise claimed by a
// method-specific route on the same pattern.
func Any(pattern string, handler any) RouteSpec { return route(MethodAny, pattern, handler) }

// Servable is implemented by both RouteSpec and *Scope, letting
// Scope.Serve/Builder.Serve accept either a leaf route or a nested scope.
type Servable interface {
	flatten(prefix string, mws []Middleware, state StateStack) ([]flatRoute, error)
}

// flatRoute is a fully resolved route: concatenated pattern, concatenated
// middleware list (outer first), and stacked state, ready for the Router
// index to compile (spec.md §4.6's "flattening").
type flatRoute struct {
	method      string
	pattern     string
	handlerAny  any
	middlewares []Middleware
	state       StateStack
	maxBody     int64
}

func (r RouteSpec) flatten(prefix string, mws []Middleware, state StateStack) ([]flatRoute, error) {
	all := make([]Middleware, 0, len(mws)+len(r.middlewares))
	all = append(all, mws...)
	all = append(all, r.middlewares...)

	return []flatRoute{{
		method:      r.method,
		pattern:     prefix + r.pattern,
		handlerAny:  r.handler,
		middlewares: all,
		state:       state,
		maxBody:     r.maxBody,
	}}, nil
}

// Scope is a builder-only node contributing a path prefix, a middleware
// list, and a state layer to every descendant route. Scopes have no
// existence after Build: flattening erases them into a flat list of routes.
type Scope struct {
	prefix      string
	middlewares []Middleware
	state       stateLayer
	children    []Servable
}

// NewScope returns a new Scope rooted at prefix.
func NewScope(prefix string) *Scope {
	return &Scope{prefix: prefix, state: stateLayer{}}
}

// Use appends middlewares to the scope's middleware list, outer (declared
// earlier) first.
func (s *Scope) Use(mws ...Middleware) *Scope {
	s.middlewares = append(s.middlewares, mws...)
	return s
}

// SetState stores value in the scope's state layer, to be looked up by type
// via State[T] from any route (or sub-scope) nested under s.
func (s *Scope) SetState(value any) *Scope {
	s.state[typeOf(value)] = value
	return s
}

// Serve registers a leaf route or a nested Scope under s.
func (s *Scope) Serve(item Servable) *Scope {
	s.children = append(s.children, item)
	return s
}

func (s *Scope) flatten(prefix string, mws []Middleware, state StateStack) ([]flatRoute, error) {
	childPrefix := prefix + s.prefix

	childMws := make([]Middleware, 0, len(mws)+len(s.middlewares))
	childMws = append(childMws, mws...)
	childMws = append(childMws, s.middlewares...)

	childState := state.Clone()
	idx := childState.Push()
	for t, v := range s.state {
		childState.layers[idx][t] = v
	}

	var out []flatRoute
	for _, child := range s.children {
		rs, err := child.flatten(childPrefix, childMws, childState)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}
