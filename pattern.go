package halcyon

import (
	"fmt"
	"strings"
)

// tokenKind is the kind of a single `patternToken` parsed out of a route
// pattern.
type tokenKind uint8

// token kinds
const (
	staticToken tokenKind = iota
	paramToken
	wildcardToken
)

// patternToken is one element of a parsed `Pattern`.
//
//   - staticToken carries its literal in `lit`.
//   - paramToken and wildcardToken carry the bound name in `name`.
type patternToken struct {
	kind tokenKind
	lit  string
	name string
}

// Pattern is a parsed route pattern: a sequence of static, param, and
// (at most one, trailing) wildcard tokens.
//
// Two patterns with equal literal bytes are the same route-key regardless of
// how their param names are spelled, since matching never inspects names —
// only the token shape.
type Pattern struct {
	raw    string
	tokens []patternToken

	// staticTokens, literalLen, and paramCount are pre-computed so that
	// specificity comparisons (see router.go) are O(1).
	staticTokens int
	literalLen   int
	paramCount   int
	hasWildcard  bool
}

// String returns the original pattern string the Pattern was parsed from.
func (p *Pattern) String() string { return p.raw }

// ErrPatternSyntax reports a malformed route pattern.
type ErrPatternSyntax struct {
	Pattern string
	Reason  string
}

func (e *ErrPatternSyntax) Error() string {
	return fmt.Sprintf("halcyon: invalid pattern %q: %s", e.Pattern, e.Reason)
}

// ParsePattern parses a route pattern string into a Pattern.
//
// Grammar:
//
//	pattern   = *( "/" segment ) [ "/" "#" name ]
//	segment   = literal | "{" name "}"
//	name      = 1*( ALPHA / DIGIT / "_" )
//	literal   = 1*( %x21-7E - "/{}" )
func ParsePattern(raw string) (*Pattern, error) {
	p := &Pattern{raw: raw}

	if raw == "" {
		return p, nil
	}

	names := map[string]bool{}

	segs := strings.Split(raw, "/")
	for i, seg := range segs {
		switch {
		case seg == "":
			// Leading "/" (segs[0]) and a literal empty segment
			// both parse to an empty static token, preserving
			// significance of a trailing slash.
			p.tokens = append(p.tokens, patternToken{kind: staticToken, lit: ""})
			p.staticTokens++
		case strings.HasPrefix(seg, "#"):
			if i != len(segs)-1 {
				return nil, &ErrPatternSyntax{raw, "wildcard must be the last segment"}
			}

			name := seg[1:]
			if err := validateName(raw, name); err != nil {
				return nil, err
			}
			if names[name] {
				return nil, &ErrPatternSyntax{raw, "duplicate name " + name}
			}
			names[name] = true

			p.tokens = append(p.tokens, patternToken{kind: wildcardToken, name: name})
			p.hasWildcard = true
		case strings.HasPrefix(seg, "{"):
			if !strings.HasSuffix(seg, "}") {
				return nil, &ErrPatternSyntax{raw, "unbalanced { in segment " + seg}
			}

			name := seg[1 : len(seg)-1]
			if err := validateName(raw, name); err != nil {
				return nil, err
			}
			if names[name] {
				return nil, &ErrPatternSyntax{raw, "duplicate name " + name}
			}
			names[name] = true

			p.tokens = append(p.tokens, patternToken{kind: paramToken, name: name})
			p.paramCount++
		default:
			if strings.ContainsAny(seg, "{}") {
				return nil, &ErrPatternSyntax{raw, "unbalanced { or } in segment " + seg}
			}
			if strings.Contains(seg, "#") {
				return nil, &ErrPatternSyntax{raw, "# is only allowed to introduce a wildcard"}
			}

			p.tokens = append(p.tokens, patternToken{kind: staticToken, lit: seg})
			p.staticTokens++
			p.literalLen += len(seg)
		}
	}

	return p, nil
}

func validateName(pattern, name string) error {
	if name == "" {
		return &ErrPatternSyntax{pattern, "empty parameter name"}
	}
	for _, r := range name {
		if !(r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')) {
			return &ErrPatternSyntax{pattern, "invalid character in parameter name " + name}
		}
	}
	return nil
}

// Match attempts to match the given raw (non percent-decoded) request path
// against the Pattern. It returns the bound path parameters and true on a
// match, or nil and false otherwise.
//
// Matching is performed purely on the raw bytes of path; percent-decoding, if
// desired, must be applied by the caller to the bound values after the fact,
// never to path before matching.
func (p *Pattern) Match(path string) (PathParams, bool) {
	if len(p.tokens) == 0 {
		if path == "" {
			return PathParams{}, true
		}
		return nil, false
	}

	var params PathParams

	segs := strings.Split(path, "/")
	ti := 0
	si := 0

	for ti < len(p.tokens) {
		tok := p.tokens[ti]

		if tok.kind == wildcardToken {
			rest := strings.Join(segs[si:], "/")
			if params == nil {
				params = PathParams{}
			}
			params[tok.name] = rest
			return params, true
		}

		if si >= len(segs) {
			return nil, false
		}

		seg := segs[si]

		switch tok.kind {
		case staticToken:
			if seg != tok.lit {
				return nil, false
			}
		case paramToken:
			if seg == "" {
				return nil, false
			}
			if params == nil {
				params = PathParams{}
			}
			params[tok.name] = seg
		}

		ti++
		si++
	}

	if si != len(segs) {
		return nil, false
	}
	if params == nil {
		params = PathParams{}
	}

	return params, true
}

// signature returns a representation of p that is equal for two patterns
// with equal literal bytes regardless of how their param/wildcard names are
// spelled (spec.md §3's route-key invariant), used to detect duplicate
// routes at build time.
func (p *Pattern) signature() string {
	var b strings.Builder
	for _, t := range p.tokens {
		switch t.kind {
		case staticToken:
			b.WriteByte('/')
			b.WriteString(t.lit)
		case paramToken:
			b.WriteString("/{}")
		case wildcardToken:
			b.WriteString("/#")
		}
	}
	return b.String()
}

// moreSpecificThan reports whether p is strictly more specific than other,
// per the ordering in spec §4.1: more static tokens wins; ties broken by
// longer total literal length; remaining ties broken by params beating a
// wildcard. Equal specificity returns false for both directions, leaving
// registration order (tracked by the caller) as the final tie-break.
func (p *Pattern) moreSpecificThan(other *Pattern) bool {
	if p.staticTokens != other.staticTokens {
		return p.staticTokens > other.staticTokens
	}
	if p.literalLen != other.literalLen {
		return p.literalLen > other.literalLen
	}
	if p.hasWildcard != other.hasWildcard {
		return !p.hasWildcard
	}
	return false
}
