package path

import (
	"fmt"
	"strings"

	"scenedesc.dev/sdf/diag"
)

// FromString parses the textual path syntax: absolute
// ("/a/b"), relative ("a/b"), variant selections ("{set=var}"), properties
// (".name"), targets ("[path]"), mappers (".mapper[path]"), mapper args,
// and the ".expression" marker. On malformed input it reports a ParseError
// to the default diagnostic sink and returns Empty.
func FromString(s string) Path {
	if s == "" {
		return Empty
	}
	p := Empty
	rest := s
	if strings.HasPrefix(rest, "/") {
		p = AbsoluteRoot
		rest = rest[1:]
	}
	if rest == "" {
		return p
	}
	result, err := parseRelativeFrom(p, rest)
	if err != nil {
		diag.Report(diag.ParseError, "malformed path %q: %v", s, err)
		return Empty
	}
	return result
}

// parseRelativeFrom parses rest (no leading "/") and appends the result
// onto base.
func parseRelativeFrom(base Path, rest string) (Path, error) {
	p := base
	i := 0
	n := len(rest)
	first := true
	for i < n {
		switch {
		case rest[i] == '/':
			i++
			first = false
			continue
		case rest[i] == '.':
			i++
			if i < n && rest[i] == '.' {
				return Empty, fmt.Errorf("parent-relative \"..\" segments are not supported")
			}
			name, adv := scanToken(rest[i:])
			if name == "" {
				return Empty, fmt.Errorf("empty property name at offset %d", i)
			}
			i += adv
			if name == "expression" {
				p = p.AppendExpression()
			} else if name == "mapper" {
				if i >= n || rest[i] != '[' {
					return Empty, fmt.Errorf("expected '[' after \"mapper\"")
				}
				inner, adv2, err := scanBracketed(rest[i:])
				if err != nil {
					return Empty, err
				}
				i += adv2
				target := FromString(inner)
				p = p.AppendMapper(target)
			} else if p.IsTargetPath() {
				p = p.AppendRelationalAttribute(Intern(name))
			} else if p.IsMapperPath() {
				p = p.AppendMapperArg(Intern(name))
			} else {
				p = p.AppendProperty(Intern(name))
			}
		case rest[i] == '{':
			inner, adv, err := scanBraced(rest[i:])
			if err != nil {
				return Empty, err
			}
			i += adv
			set, variant, err := splitVariantSelection(inner)
			if err != nil {
				return Empty, err
			}
			p = p.AppendVariantSelection(Intern(set), Intern(variant))
		case rest[i] == '[':
			inner, adv, err := scanBracketed(rest[i:])
			if err != nil {
				return Empty, err
			}
			i += adv
			target := FromString(inner)
			p = p.AppendTarget(target)
		default:
			name, adv := scanToken(rest[i:])
			if name == "" {
				return Empty, fmt.Errorf("unexpected character %q at offset %d", rest[i], i)
			}
			i += adv
			if first || p.IsPrimPath() || p.IsPrimVariantSelectionPath() || p.IsEmpty() {
				p = p.AppendChild(Intern(name))
			} else {
				return Empty, fmt.Errorf("unexpected bare name %q at offset %d", name, i)
			}
		}
		first = false
	}
	return p, nil
}

func scanToken(s string) (string, int) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '/' || c == '.' || c == '{' || c == '[' || c == '}' || c == ']' {
			break
		}
		i++
	}
	return s[:i], i
}

func scanBracketed(s string) (inner string, advance int, err error) {
	return scanDelimited(s, '[', ']')
}

func scanBraced(s string) (inner string, advance int, err error) {
	return scanDelimited(s, '{', '}')
}

func scanDelimited(s string, open, close byte) (string, int, error) {
	if len(s) == 0 || s[0] != open {
		return "", 0, fmt.Errorf("expected %q", open)
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[1:i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unterminated %q...%q", open, close)
}

func splitVariantSelection(s string) (set, variant string, err error) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return "", "", fmt.Errorf("malformed variant selection %q", s)
	}
	return s[:idx], s[idx+1:], nil
}
