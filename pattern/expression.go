package pattern

import (
	"strings"

	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/path"
)

// Expression is a boolean combination of patterns: a small
// recursive-descent evaluator over &&/||/! rather than a compiled
// postfix op list.
type Expression struct {
	pattern *Pattern // leaf
	not     *Expression
	lhs     *Expression
	op      byte // 0 for leaf/not, '&' or '|' for binary
	rhs     *Expression
}

// Match evaluates the expression tree against pp, combining sub-results
// with the same constancy rules as the standalone And/Or/Not helpers.
func (e *Expression) Match(pp path.Path) PredicateResult {
	switch {
	case e.pattern != nil:
		return e.pattern.Match(pp)
	case e.not != nil:
		return Not(e.not.Match(pp))
	case e.op == '&':
		return And(e.lhs.Match(pp), e.rhs.Match(pp))
	case e.op == '|':
		return Or(e.lhs.Match(pp), e.rhs.Match(pp))
	}
	return ConstantResult(false)
}

// CompileExpression parses a space-separated combination of patterns
// joined by "&&", "||", and a leading "!", left-to-right with no
// operator precedence (parenthesization is not supported).
func CompileExpression(text string, lib Library) (*Expression, error) {
	terms, ops, err := splitExpression(text)
	if err != nil {
		return nil, err
	}
	exprs := make([]*Expression, len(terms))
	for i, t := range terms {
		negate := false
		t = strings.TrimSpace(t)
		for strings.HasPrefix(t, "!") {
			negate = !negate
			t = strings.TrimSpace(t[1:])
		}
		p, err := Compile(t, lib)
		if err != nil {
			return nil, err
		}
		leaf := &Expression{pattern: p}
		if negate {
			leaf = &Expression{not: leaf}
		}
		exprs[i] = leaf
	}
	result := exprs[0]
	for i, op := range ops {
		result = &Expression{lhs: result, op: op, rhs: exprs[i+1]}
	}
	return result, nil
}

func splitExpression(text string) (terms []string, ops []byte, err error) {
	rest := text
	for {
		andIdx := strings.Index(rest, "&&")
		orIdx := strings.Index(rest, "||")
		switch {
		case andIdx < 0 && orIdx < 0:
			terms = append(terms, rest)
			return terms, ops, nil
		case andIdx >= 0 && (orIdx < 0 || andIdx < orIdx):
			terms = append(terms, rest[:andIdx])
			ops = append(ops, '&')
			rest = rest[andIdx+2:]
		default:
			terms = append(terms, rest[:orIdx])
			ops = append(ops, '|')
			rest = rest[orIdx+2:]
		}
		if rest == "" {
			return nil, nil, diag.Errorf(diag.ParseError, "pattern: dangling operator in %q", text)
		}
	}
}
