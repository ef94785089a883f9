package cssrules

// Cascade merges rules sharing a selector, later declarations overriding
// earlier ones key by key. Merged rules take the position of the first
// occurrence. Nested lists are concatenated and cascaded recursively. The
// input rules are not modified.
func Cascade(rules []*Rule) []*Rule {
	if len(rules) == 0 {
		return rules
	}

	var order []string
	merged := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		c := r.copy()
		existing, ok := merged[c.Selector]
		if !ok {
			merged[c.Selector] = c
			order = append(order, c.Selector)
			continue
		}
		merge(existing, c)
	}

	out := make([]*Rule, 0, len(order))
	for _, sel := range order {
		out = append(out, merged[sel])
	}
	return out
}

// copy clones r with its nested rules cascaded. The parent link is shared,
// never followed.
func (r *Rule) copy() *Rule {
	c := &Rule{
		Selector:     r.Selector,
		Declarations: r.Declarations.clone(),
		Type:         r.Type,
		Identifier:   r.Identifier,
		parent:       r.parent,
	}
	if r.Nested != nil {
		c.Nested = adopt(Cascade(r.Nested), c)
	}
	return c
}

func merge(dst, src *Rule) {
	dst.Declarations.Merge(src.Declarations)
	dst.Type = src.Type
	dst.Identifier = src.Identifier
	switch {
	case src.Nested == nil:
	case dst.Nested == nil:
		dst.Nested = adopt(src.Nested, dst)
	default:
		combined := make([]*Rule, 0, len(dst.Nested)+len(src.Nested))
		combined = append(append(combined, dst.Nested...), src.Nested...)
		dst.Nested = adopt(Cascade(combined), dst)
	}
}

func adopt(rules []*Rule, parent *Rule) []*Rule {
	for _, r := range rules {
		r.parent = parent
	}
	return rules
}
