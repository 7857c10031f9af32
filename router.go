package halcyon

import (
	"sort"
	"strings"
)

// compiledRoute is a single flattened, Adapt()-ed, Chain()-ed route, ready
// for matching (spec.md §3's "Router index... immutable after build").
type compiledRoute struct {
	method  string
	pattern *Pattern
	service Service
	state   StateStack
	maxBody int64
	order   int // registration order, for stable specificity tie-breaks
}

// Router is the immutable, flattened index of every route registered
// against a Builder. It is built once, by Builder.Build, and is safe to
// share across connection tasks without locking (spec.md §5).
type Router struct {
	byMethod map[string][]*compiledRoute
	any      []*compiledRoute
	all      []*compiledRoute // every route, for 405 Allow computation
}

// buildRouter flattens the given top-level servables and compiles a Router,
// or returns a build-time error (ErrPatternSyntax / ErrRouteConflict).
func buildRouter(items []Servable) (*Router, error) {
	var flats []flatRoute
	for _, item := range items {
		fr, err := item.flatten("", nil, StateStack{})
		if err != nil {
			return nil, err
		}
		flats = append(flats, fr...)
	}

	r := &Router{byMethod: map[string][]*compiledRoute{}}

	seen := map[string]bool{}
	for i, fr := range flats {
		pat, err := ParsePattern(fr.pattern)
		if err != nil {
			return nil, err
		}

		key := fr.method + " " + pat.signature()
		if seen[key] {
			return nil, &ErrRouteConflict{Method: fr.method, Pattern: fr.pattern}
		}
		seen[key] = true

		cr := &compiledRoute{
			method:  fr.method,
			pattern: pat,
			service: Chain(Adapt(fr.handlerAny), fr.middlewares...),
			state:   fr.state,
			maxBody: fr.maxBody,
			order:   i,
		}

		r.all = append(r.all, cr)
		if fr.method == MethodAny {
			r.any = append(r.any, cr)
		} else {
			r.byMethod[fr.method] = append(r.byMethod[fr.method], cr)
		}
	}

	bySpecificity := func(rs []*compiledRoute) {
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].pattern.moreSpecificThan(rs[j].pattern)
		})
	}
	for m := range r.byMethod {
		bySpecificity(r.byMethod[m])
	}
	bySpecificity(r.any)

	return r, nil
}

// MatchOutcome is the kind of result a Router.Match call produced.
type MatchOutcome uint8

const (
	// Matched means a route was found for (method, path).
	Matched MatchOutcome = iota
	// NotFound means no route's pattern matches path under any method.
	NotFound
	// MethodNotAllowed means some route's pattern matches path, but not
	// under the requested method.
	MethodNotAllowed
)

// MatchResult is the outcome of routing a single (method, path) pair.
type MatchResult struct {
	Outcome MatchOutcome
	Route   *compiledRoute
	Params  PathParams
	// Allow lists, in sorted order, the methods that do match path, set
	// only when Outcome == MethodNotAllowed (spec.md §4.7).
	Allow []string
}

// Match routes a (method, path) pair: method-specific routes are tried
// before the ANY bucket (spec.md's Design Notes resolve the ANY-precedence
// open question in favor of method-specific routes winning), in specificity
// order within each (spec.md §4.1, §8 invariant 1). A HEAD request with no
// matching HEAD route is served by a matching GET route.
func (r *Router) Match(method, path string) MatchResult {
	for _, cr := range r.byMethod[method] {
		if params, ok := cr.pattern.Match(path); ok {
			return MatchResult{Outcome: Matched, Route: cr, Params: params}
		}
	}

	if method == "HEAD" {
		for _, cr := range r.byMethod["GET"] {
			if params, ok := cr.pattern.Match(path); ok {
				return MatchResult{Outcome: Matched, Route: cr, Params: params}
			}
		}
	}

	for _, cr := range r.any {
		if params, ok := cr.pattern.Match(path); ok {
			return MatchResult{Outcome: Matched, Route: cr, Params: params}
		}
	}

	allowed := map[string]bool{}
	for _, cr := range r.all {
		if cr.method == MethodAny {
			continue
		}
		if _, ok := cr.pattern.Match(path); ok {
			allowed[cr.method] = true
		}
	}

	if len(allowed) == 0 {
		return MatchResult{Outcome: NotFound}
	}

	methods := make([]string, 0, len(allowed))
	for m := range allowed {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	return MatchResult{Outcome: MethodNotAllowed, Allow: methods}
}

// AllowHeader renders a MethodNotAllowed result's Allow methods as a single
// comma-separated header value, e.g. "GET, POST".
func (m MatchResult) AllowHeader() string {
	return strings.Join(m.Allow, ", ")
}
