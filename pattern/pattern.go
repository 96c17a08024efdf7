// Package pattern implements PathPatternEval: compiling a path-pattern
// string into a matcher that can either test one path in isolation
// (Match) or advance a persistent search state along a depth-first
// traversal (SearchState.Next), propagating constancy so a caller can
// skip descending into subtrees the pattern can never match.
//
// The compiled form follows a segment/stretch model: components between
// "//" stretch markers form segments; a segment at the head or tail of
// the pattern must match at a fixed position, while an interior segment
// may match anywhere in the remaining range. Each match result carries a
// bool plus a constant/varying tag rather than a bare bool.
package pattern

import (
	"regexp"
	"strings"

	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/path"
)

// Constancy classifies whether a PredicateResult holds for every
// descendant of the path it was computed for, or only for that path.
type Constancy int

const (
	// Varying means the result is only known for the exact path tested;
	// a descendant might evaluate differently.
	Varying Constancy = iota
	// Constant means the result holds for this path and every descendant.
	Constant
)

// PredicateResult is the outcome of evaluating a pattern or predicate
// against a path: a boolean plus its constancy.
type PredicateResult struct {
	Value    bool
	Constant Constancy
}

// VaryingResult builds a non-propagating result.
func VaryingResult(v bool) PredicateResult { return PredicateResult{Value: v, Constant: Varying} }

// ConstantResult builds a result that propagates to every descendant.
func ConstantResult(v bool) PredicateResult { return PredicateResult{Value: v, Constant: Constant} }

// Not negates a result, preserving its constancy.
func Not(r PredicateResult) PredicateResult { return PredicateResult{Value: !r.Value, Constant: r.Constant} }

// And combines two results. The combination is constant when both
// operands are constant, or when either operand is constant with a
// false (deciding) value.
func And(a, b PredicateResult) PredicateResult {
	v := a.Value && b.Value
	c := Varying
	if (a.Constant == Constant && b.Constant == Constant) ||
		(a.Constant == Constant && !a.Value) ||
		(b.Constant == Constant && !b.Value) {
		c = Constant
	}
	return PredicateResult{Value: v, Constant: c}
}

// Or combines two results. The combination is constant when both
// operands are constant, or when either operand is constant with a
// true (deciding) value.
func Or(a, b PredicateResult) PredicateResult {
	v := a.Value || b.Value
	c := Varying
	if (a.Constant == Constant && b.Constant == Constant) ||
		(a.Constant == Constant && a.Value) ||
		(b.Constant == Constant && b.Value) {
		c = Constant
	}
	return PredicateResult{Value: v, Constant: c}
}

// PredicateFunc is a named test attached to a pattern component: each
// component may carry an attached predicate function index, evaluated
// against the path element it's attached to.
type PredicateFunc func(p path.Path) PredicateResult

// Library resolves predicate names used in a pattern's {name} syntax.
type Library map[string]PredicateFunc

type componentKind int

const (
	literalComponent componentKind = iota
	globComponent
)

type component struct {
	kind      componentKind
	text      string
	re        *regexp.Regexp
	predicate PredicateFunc
}

func (c component) matchesName(name path.Token) bool {
	switch c.kind {
	case literalComponent:
		return c.text == "" || c.text == name.String()
	case globComponent:
		return c.re.MatchString(name.String())
	}
	return false
}

type matchObjType int

const (
	matchPrimOnly matchObjType = iota
	matchPropOnly
	matchPrimOrProp
)

// Pattern is a compiled path pattern.
type Pattern struct {
	prefix       path.Path
	stretchBegin bool
	stretchEnd   bool
	segments     [][]component
	objType      matchObjType
	propertyGlob *component
}

// Compile builds a Pattern from its textual form: a prefix absolute
// path, a sequence of components and "//" stretch markers, optionally
// followed by ".propertyGlob". Components may carry a "{predicateName}"
// suffix resolved against lib.
func Compile(text string, lib Library) (*Pattern, error) {
	primText, propText, hasProperty := splitProperty(text)
	if !strings.HasPrefix(primText, "/") {
		return nil, diag.Errorf(diag.ParseError, "pattern: %q must be an absolute path pattern", text)
	}
	tokens := strings.Split(primText[1:], "/")
	if len(tokens) == 1 && tokens[0] == "" {
		tokens = nil
	}

	prefixTokens, rest := splitPrefixAndComponents(tokens)
	prefix := path.AbsoluteRoot
	for _, t := range prefixTokens {
		prefix = prefix.AppendChild(path.Intern(t))
	}

	p := &Pattern{prefix: prefix}
	var cur []component
	var pending *component // a bare-predicate component awaiting a neighbor to merge into

	closeSegment := func() {
		if pending != nil {
			// A bare predicate with no following component in its
			// segment becomes its own component: it matches any one path
			// element and tests the predicate against it.
			cur = append(cur, *pending)
			pending = nil
		}
		if len(cur) > 0 {
			p.segments = append(p.segments, cur)
			cur = nil
		}
	}

	for i, tok := range rest {
		if tok == "" {
			if i == 0 {
				p.stretchBegin = true
				continue
			}
			closeSegment()
			continue
		}
		c, err := compileComponent(tok, lib)
		if err != nil {
			return nil, err
		}
		if c.text == "" && c.predicate != nil && c.kind == literalComponent {
			// Bare predicate: merge onto the next real component in this
			// segment, or (if none follows) keep it as its own
			// match-anything component carrying the predicate.
			pc := c
			pending = &pc
			continue
		}
		if pending != nil {
			c.predicate = pending.predicate
			pending = nil
		}
		cur = append(cur, c)
	}
	if len(rest) > 0 && rest[len(rest)-1] == "" {
		p.stretchEnd = true
	}
	closeSegment()

	if hasProperty {
		pc, err := compileComponent(propText, lib)
		if err != nil {
			return nil, err
		}
		p.propertyGlob = &pc
		p.objType = matchPropOnly
	} else if p.stretchEnd || len(p.segments) == 0 {
		p.objType = matchPrimOrProp
	} else {
		p.objType = matchPrimOnly
	}
	return p, nil
}

// splitProperty finds the first '.' outside of a {...} predicate and
// splits the pattern there.
func splitProperty(text string) (prim, prop string, ok bool) {
	depth := 0
	for i, r := range text {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case '.':
			if depth == 0 {
				return text[:i], text[i+1:], true
			}
		}
	}
	return text, "", false
}

func isPlainLiteral(tok string) bool {
	if tok == "" || strings.ContainsAny(tok, "{*?[") {
		return false
	}
	return true
}

func splitPrefixAndComponents(tokens []string) (prefix []string, rest []string) {
	i := 0
	for ; i < len(tokens); i++ {
		if !isPlainLiteral(tokens[i]) {
			break
		}
		prefix = append(prefix, tokens[i])
	}
	return prefix, tokens[i:]
}

func compileComponent(tok string, lib Library) (component, error) {
	text := tok
	var pred PredicateFunc
	if idx := strings.IndexByte(tok, '{'); idx >= 0 {
		if !strings.HasSuffix(tok, "}") {
			return component{}, diag.Errorf(diag.ParseError, "pattern: malformed predicate in %q", tok)
		}
		name := tok[idx+1 : len(tok)-1]
		fn, ok := lib[name]
		if !ok {
			return component{}, diag.Errorf(diag.ParseError, "pattern: unknown predicate %q", name)
		}
		pred = fn
		text = tok[:idx]
	}
	if text == "" {
		return component{kind: literalComponent, text: "", predicate: pred}, nil
	}
	if strings.ContainsAny(text, "*?[") {
		re, err := regexp.Compile("^" + translateGlob(text) + "$")
		if err != nil {
			return component{}, diag.Errorf(diag.ParseError, "pattern: bad glob %q: %w", text, err)
		}
		return component{kind: globComponent, text: text, re: re, predicate: pred}, nil
	}
	return component{kind: literalComponent, text: text, predicate: pred}, nil
}

func translateGlob(g string) string {
	var b strings.Builder
	for i := 0; i < len(g); i++ {
		switch c := g[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '.', '+', '(', ')', '|', '^', '$', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Match tests path in isolation against the compiled pattern.
func (p *Pattern) Match(pp path.Path) PredicateResult {
	if !pp.IsPrimPath() && !pp.IsPrimPropertyPath() {
		return ConstantResult(false)
	}
	isProp := pp.IsPrimPropertyPath()
	switch {
	case p.objType == matchPropOnly && !isProp:
		// A descendant property might still match.
		return VaryingResult(false)
	case p.objType == matchPrimOnly && isProp:
		// Property paths have no descendants of their own.
		return ConstantResult(false)
	}

	if !pp.HasPrefix(p.prefix) {
		if p.prefix.HasPrefix(pp) {
			return VaryingResult(false)
		}
		return ConstantResult(false)
	}

	primPart := pp
	var propName path.Token
	if isProp {
		primPart = pp.PrimPath()
		propName = pp.Name()
	}

	elems := elementsAfterPrefix(primPart, p.prefix)
	matched := p.matchSegments(elems)

	if matched && p.propertyGlob != nil && !p.propertyGlob.matchesName(propName) {
		matched = false
	}

	if matched {
		if p.stretchEnd && p.propertyGlob == nil {
			return ConstantResult(true)
		}
		return VaryingResult(true)
	}
	if !isProp && p.objType == matchPropOnly {
		return VaryingResult(false)
	}
	if p.hasAnyStretch() {
		return VaryingResult(false)
	}
	if len(elems) >= p.totalRequired() {
		return ConstantResult(false)
	}
	return VaryingResult(false)
}

type levelElem struct {
	p    path.Path
	name path.Token
}

func elementsAfterPrefix(pp, prefix path.Path) []levelElem {
	chain := pp.GetPrefixes(0)
	prefixChain := prefix.GetPrefixes(0)
	if len(chain) < len(prefixChain) {
		return nil
	}
	rest := chain[len(prefixChain):]
	out := make([]levelElem, len(rest))
	for i, c := range rest {
		out[i] = levelElem{p: c, name: c.Name()}
	}
	return out
}

func (p *Pattern) hasAnyStretch() bool {
	return p.stretchBegin || p.stretchEnd || len(p.segments) > 1
}

func (p *Pattern) totalRequired() int {
	n := 0
	for _, seg := range p.segments {
		n += len(seg)
	}
	return n
}

func (p *Pattern) matchSegments(elems []levelElem) bool {
	return tryMatchFrom(p.segments, 0, elems, 0, p.stretchBegin, p.stretchEnd)
}

func tryMatchFrom(segments [][]component, segIdx int, elems []levelElem, pos int, stretchBegin, stretchEnd bool) bool {
	if segIdx == len(segments) {
		if stretchEnd {
			return true
		}
		return pos == len(elems)
	}
	seg := segments[segIdx]
	firstSeg := segIdx == 0
	lastSeg := segIdx == len(segments)-1

	switch {
	case firstSeg && !stretchBegin:
		if !matchSegmentAt(seg, elems, pos) {
			return false
		}
		return tryMatchFrom(segments, segIdx+1, elems, pos+len(seg), stretchBegin, stretchEnd)
	case lastSeg && !stretchEnd:
		start := len(elems) - len(seg)
		if start < pos || !matchSegmentAt(seg, elems, start) {
			return false
		}
		return tryMatchFrom(segments, segIdx+1, elems, start+len(seg), stretchBegin, stretchEnd)
	default:
		for start := pos; start+len(seg) <= len(elems); start++ {
			if matchSegmentAt(seg, elems, start) &&
				tryMatchFrom(segments, segIdx+1, elems, start+len(seg), stretchBegin, stretchEnd) {
				return true
			}
		}
		return false
	}
}

func matchSegmentAt(seg []component, elems []levelElem, start int) bool {
	if start < 0 || start+len(seg) > len(elems) {
		return false
	}
	for i, c := range seg {
		el := elems[start+i]
		if !c.matchesName(el.name) {
			return false
		}
		if c.predicate != nil {
			if res := c.predicate(el.p); !res.Value {
				return false
			}
		}
	}
	return true
}

// SearchState is persistent incremental-search state for one traversal:
// it caches a constant verdict once one is reached, so callers walking a
// subtree can skip recomputation for every descendant.
type SearchState struct {
	pattern      *Pattern
	constantSet  bool
	constant     bool
	constantPath path.Path
}

// NewSearch starts a fresh incremental search against p.
func (p *Pattern) NewSearch() *SearchState { return &SearchState{pattern: p} }

// Next advances the search to pp, which must be a descendant of (or
// equal to) every path previously passed to Next on this state.
func (s *SearchState) Next(pp path.Path) PredicateResult {
	if s.constantSet && pp.HasPrefix(s.constantPath) {
		return ConstantResult(s.constant)
	}
	res := s.pattern.Match(pp)
	if res.Constant == Constant {
		s.constantSet = true
		s.constant = res.Value
		s.constantPath = pp
	}
	return res
}
