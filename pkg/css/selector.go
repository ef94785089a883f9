package css

import (
	"fmt"
	"strings"
)

// Selector is a complex selector: compound parts joined by combinators,
// Parts[i] and Parts[i+1] are joined by Combinators[i].
type Selector struct {
	Raw           string
	Parts         []SelectorPart
	Combinators   []Combinator
	PseudoElement string
	Specificity   int
}

type Combinator int

const (
	DescendantCombinator      Combinator = iota // a b
	ChildCombinator                             // a > b
	AdjacentSiblingCombinator                   // a + b
	GeneralSiblingCombinator                    // a ~ b
)

type SelectorPart struct {
	Element       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []string
}

type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "^=", "$=", "*=", "~=", "|="
	Value    string
}

// SplitSelectorGroup splits "a, b > c" into its comma separated members,
// ignoring commas inside brackets and parentheses.
func SplitSelectorGroup(group string) []string {
	var out []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(group); i++ {
		c := group[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			if s := strings.TrimSpace(group[start:i]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(group[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// ParseSelectorGroup parses every member of a selector group.
func ParseSelectorGroup(group string) ([]Selector, error) {
	members := SplitSelectorGroup(group)
	if len(members) == 0 {
		return nil, fmt.Errorf("empty selector %q", group)
	}
	out := make([]Selector, 0, len(members))
	for _, m := range members {
		sel, err := ParseSelector(m)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

// ParseSelector parses a single complex selector.
func ParseSelector(raw string) (Selector, error) {
	sp := &selectorParser{in: strings.TrimSpace(raw)}
	sel := Selector{Raw: sp.in}
	if sp.in == "" {
		return sel, fmt.Errorf("empty selector")
	}

	for {
		part, pseudoElement, err := sp.compound()
		if err != nil {
			return Selector{}, fmt.Errorf("selector %q: %w", raw, err)
		}
		sel.Parts = append(sel.Parts, part)
		if pseudoElement != "" {
			sel.PseudoElement = pseudoElement
		}

		hadSpace := sp.skipSpace()
		if sp.eof() {
			break
		}
		comb := DescendantCombinator
		switch sp.peek() {
		case '>':
			comb = ChildCombinator
			sp.pos++
		case '+':
			comb = AdjacentSiblingCombinator
			sp.pos++
		case '~':
			comb = GeneralSiblingCombinator
			sp.pos++
		default:
			if !hadSpace {
				return Selector{}, fmt.Errorf("selector %q: unexpected %q at %d", raw, sp.peek(), sp.pos)
			}
		}
		sp.skipSpace()
		if sp.eof() {
			return Selector{}, fmt.Errorf("selector %q: dangling combinator", raw)
		}
		sel.Combinators = append(sel.Combinators, comb)
	}

	sel.Specificity = specificity(sel)
	return sel, nil
}

func specificity(sel Selector) int {
	var a, b, c int
	for _, p := range sel.Parts {
		if p.ID != "" {
			a++
		}
		b += len(p.Classes) + len(p.Attributes) + len(p.PseudoClasses)
		if p.Element != "" && p.Element != "*" {
			c++
		}
	}
	if sel.PseudoElement != "" {
		c++
	}
	return a*100 + b*10 + c
}

type selectorParser struct {
	in  string
	pos int
}

func (sp *selectorParser) eof() bool  { return sp.pos >= len(sp.in) }
func (sp *selectorParser) peek() byte { return sp.in[sp.pos] }

func (sp *selectorParser) skipSpace() bool {
	start := sp.pos
	for !sp.eof() && (sp.peek() == ' ' || sp.peek() == '\t' || sp.peek() == '\n' || sp.peek() == '\r') {
		sp.pos++
	}
	return sp.pos > start
}

func (sp *selectorParser) ident() string {
	start := sp.pos
	for !sp.eof() {
		c := sp.peek()
		if c == '-' || c == '_' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sp.pos++
			continue
		}
		if c == '\\' && sp.pos+1 < len(sp.in) {
			sp.pos += 2
			continue
		}
		break
	}
	return strings.ReplaceAll(sp.in[start:sp.pos], "\\", "")
}

func (sp *selectorParser) compound() (SelectorPart, string, error) {
	var part SelectorPart
	var pseudoElement string
	if sp.eof() {
		return part, "", fmt.Errorf("expected selector")
	}
	if sp.peek() == '*' {
		part.Element = "*"
		sp.pos++
	} else if name := sp.ident(); name != "" {
		part.Element = strings.ToLower(name)
	}

	for !sp.eof() {
		switch sp.peek() {
		case '#':
			sp.pos++
			id := sp.ident()
			if id == "" {
				return part, "", fmt.Errorf("empty id at %d", sp.pos)
			}
			part.ID = id
		case '.':
			sp.pos++
			class := sp.ident()
			if class == "" {
				return part, "", fmt.Errorf("empty class at %d", sp.pos)
			}
			part.Classes = append(part.Classes, class)
		case '[':
			attr, err := sp.attribute()
			if err != nil {
				return part, "", err
			}
			part.Attributes = append(part.Attributes, attr)
		case ':':
			sp.pos++
			if !sp.eof() && sp.peek() == ':' {
				sp.pos++
				pseudoElement = strings.ToLower(sp.ident())
				continue
			}
			name := strings.ToLower(sp.ident())
			if name == "" {
				return part, "", fmt.Errorf("empty pseudo-class at %d", sp.pos)
			}
			if !sp.eof() && sp.peek() == '(' {
				end := strings.IndexByte(sp.in[sp.pos:], ')')
				if end < 0 {
					return part, "", fmt.Errorf("unterminated pseudo-class argument")
				}
				name += sp.in[sp.pos : sp.pos+end+1]
				sp.pos += end + 1
			}
			switch name {
			case "before", "after", "first-line", "first-letter":
				pseudoElement = name
			default:
				part.PseudoClasses = append(part.PseudoClasses, name)
			}
		default:
			if part.Element == "" && part.ID == "" && len(part.Classes) == 0 &&
				len(part.Attributes) == 0 && len(part.PseudoClasses) == 0 && pseudoElement == "" {
				return part, "", fmt.Errorf("unexpected %q at %d", sp.peek(), sp.pos)
			}
			return part, pseudoElement, nil
		}
	}
	return part, pseudoElement, nil
}

func (sp *selectorParser) attribute() (AttributeSelector, error) {
	end := strings.IndexByte(sp.in[sp.pos:], ']')
	if end < 0 {
		return AttributeSelector{}, fmt.Errorf("unterminated attribute selector")
	}
	body := strings.TrimSpace(sp.in[sp.pos+1 : sp.pos+end])
	sp.pos += end + 1

	for _, op := range []string{"^=", "$=", "*=", "~=", "|=", "="} {
		if i := strings.Index(body, op); i > 0 {
			value := strings.TrimSpace(body[i+len(op):])
			value = strings.Trim(value, `"'`)
			return AttributeSelector{
				Name:     strings.ToLower(strings.TrimSpace(body[:i])),
				Operator: op,
				Value:    value,
			}, nil
		}
	}
	if body == "" {
		return AttributeSelector{}, fmt.Errorf("empty attribute selector")
	}
	return AttributeSelector{Name: strings.ToLower(body)}, nil
}
