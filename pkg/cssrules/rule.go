// Package cssrules is a lightweight, forgiving extractor for the style rules
// that drive region flows. It does not aim for CSS compliance: it recognizes
// `selector { key: value }` blocks, one level of nested @-blocks and nothing
// else.
package cssrules

import "strings"

// RuleType tags a Rule as a plain rule or one of the @-block variants.
type RuleType int

const (
	RuleTypeRule RuleType = iota
	RuleTypeTemplate
	RuleTypeSlot
	RuleTypeUnknown
)

func (t RuleType) String() string {
	switch t {
	case RuleTypeTemplate:
		return "template"
	case RuleTypeSlot:
		return "slot"
	case RuleTypeUnknown:
		return "unknown"
	}
	return "rule"
}

// IsBlock reports whether rules of this type may carry nested rules.
func (t RuleType) IsBlock() bool {
	return t != RuleTypeRule
}

// DefaultIdentifier names @-blocks declared without an identifier.
const DefaultIdentifier = "auto"

// Declaration is a single key/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Declarations is an ordered property map. Setting an existing key replaces
// its value in place. The zero value is empty and ready to use.
type Declarations struct {
	items []Declaration
}

func (d *Declarations) Set(property, value string) {
	for i := range d.items {
		if d.items[i].Property == property {
			d.items[i].Value = value
			return
		}
	}
	d.items = append(d.items, Declaration{Property: property, Value: value})
}

func (d *Declarations) Get(property string) (string, bool) {
	for _, it := range d.items {
		if it.Property == property {
			return it.Value, true
		}
	}
	return "", false
}

func (d *Declarations) Len() int {
	return len(d.items)
}

// All returns a copy of the declarations in insertion order.
func (d *Declarations) All() []Declaration {
	return append([]Declaration(nil), d.items...)
}

// Merge copies every declaration of other into d, other winning.
func (d *Declarations) Merge(other Declarations) {
	for _, it := range other.items {
		d.Set(it.Property, it.Value)
	}
}

func (d *Declarations) clone() Declarations {
	return Declarations{items: d.All()}
}

// Rule is one extracted style rule. Nested is only populated for block
// types.
type Rule struct {
	Selector     string
	Declarations Declarations
	Type         RuleType
	Identifier   string
	Nested       []*Rule

	parent *Rule
}

// Parent returns the enclosing block rule, or nil for top-level rules.
func (r *Rule) Parent() *Rule {
	return r.parent
}

func newRule(selector string) *Rule {
	r := &Rule{Selector: selector}
	if !strings.HasPrefix(selector, "@") {
		return r
	}

	name, ident, _ := strings.Cut(selector[1:], " ")
	switch name {
	case "template":
		r.Type = RuleTypeTemplate
	case "slot":
		r.Type = RuleTypeSlot
	default:
		r.Type = RuleTypeUnknown
	}
	r.Identifier = strings.TrimSpace(ident)
	if r.Identifier == "" {
		r.Identifier = DefaultIdentifier
	}
	return r
}
