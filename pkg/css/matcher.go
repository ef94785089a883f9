package css

import (
	"strconv"
	"strings"

	"regionflow/pkg/html"
)

// MatchesSelector returns true if the node matches the complex selector.
// Selectors carrying a pseudo-element never match the element itself.
func MatchesSelector(node *html.Node, selector Selector) bool {
	if node.Type != html.ElementNode || isSyntheticRoot(node) {
		return false
	}
	if len(selector.Parts) == 0 || selector.PseudoElement != "" {
		return false
	}

	// Start matching from the rightmost part (the target element)
	return matchesCompoundSelector(node, selector, len(selector.Parts)-1)
}

// matchesCompoundSelector checks if the node matches the selector at the given part index
// and all ancestor requirements
func matchesCompoundSelector(node *html.Node, selector Selector, partIndex int) bool {
	if !matchesSelectorPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	prevPartIndex := partIndex - 1
	switch selector.Combinators[prevPartIndex] {
	case DescendantCombinator:
		return matchesAncestor(node, selector, prevPartIndex)

	case ChildCombinator:
		if node.Parent != nil && !isSyntheticRoot(node.Parent) {
			return matchesCompoundSelector(node.Parent, selector, prevPartIndex)
		}
		return false

	case AdjacentSiblingCombinator:
		if prev := previousElementSibling(node); prev != nil {
			return matchesCompoundSelector(prev, selector, prevPartIndex)
		}
		return false

	case GeneralSiblingCombinator:
		for sib := previousElementSibling(node); sib != nil; sib = previousElementSibling(sib) {
			if matchesCompoundSelector(sib, selector, prevPartIndex) {
				return true
			}
		}
		return false
	}

	return false
}

func isSyntheticRoot(n *html.Node) bool {
	return n.Parent == nil && n.TagName == "document"
}

// matchesSelectorPart checks if a node matches a single selector part
func matchesSelectorPart(node *html.Node, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}

	if part.ID != "" && node.ID() != part.ID {
		return false
	}

	if len(part.Classes) > 0 {
		classAttr, ok := node.GetAttribute("class")
		if !ok {
			return false
		}
		nodeClasses := strings.Fields(classAttr)
		for _, required := range part.Classes {
			found := false
			for _, c := range nodeClasses {
				if c == required {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	for _, attrSel := range part.Attributes {
		if !matchesAttributeSelector(node, attrSel) {
			return false
		}
	}

	for _, pc := range part.PseudoClasses {
		if !matchesPseudoClass(node, pc) {
			return false
		}
	}

	return true
}

// matchesPseudoClass handles the structural pseudo-classes. Dynamic ones
// (hover, focus, ...) never match in a static document.
func matchesPseudoClass(node *html.Node, pc string) bool {
	switch pc {
	case "first-child":
		return previousElementSibling(node) == nil
	case "last-child":
		return nextElementSibling(node) == nil
	case "only-child":
		return previousElementSibling(node) == nil && nextElementSibling(node) == nil
	case "empty":
		return len(node.Children) == 0
	case "root":
		return node.Parent == nil || isSyntheticRoot(node.Parent)
	}
	if arg, ok := strings.CutPrefix(pc, "nth-child("); ok {
		a, b, ok := parseNth(strings.TrimSuffix(arg, ")"))
		return ok && nthMatches(a, b, elementIndex(node, previousElementSibling))
	}
	if arg, ok := strings.CutPrefix(pc, "nth-last-child("); ok {
		a, b, ok := parseNth(strings.TrimSuffix(arg, ")"))
		return ok && nthMatches(a, b, elementIndex(node, nextElementSibling))
	}
	if inner, ok := strings.CutPrefix(pc, "not("); ok {
		sel, err := ParseSelector(strings.TrimSuffix(inner, ")"))
		if err != nil || len(sel.Parts) != 1 {
			return false
		}
		return !matchesSelectorPart(node, sel.Parts[0])
	}
	return false
}

// parseNth reads the an+b argument of :nth-child, including the odd and even
// keywords.
func parseNth(arg string) (a, b int, ok bool) {
	arg = strings.ToLower(strings.ReplaceAll(arg, " ", ""))
	switch arg {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	case "":
		return 0, 0, false
	}
	n := strings.IndexByte(arg, 'n')
	if n < 0 {
		b, err := strconv.Atoi(arg)
		return 0, b, err == nil
	}
	switch coef := arg[:n]; coef {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		var err error
		if a, err = strconv.Atoi(coef); err != nil {
			return 0, 0, false
		}
	}
	if rest := arg[n+1:]; rest != "" {
		if rest[0] != '+' && rest[0] != '-' {
			return 0, 0, false
		}
		var err error
		if b, err = strconv.Atoi(rest); err != nil {
			return 0, 0, false
		}
	}
	return a, b, true
}

// nthMatches reports whether the 1-based index equals a*n+b for some n >= 0.
func nthMatches(a, b, index int) bool {
	if a == 0 {
		return index == b
	}
	d := index - b
	return d%a == 0 && d/a >= 0
}

// elementIndex is the 1-based position of node among its element siblings,
// counted in the direction of step.
func elementIndex(node *html.Node, step func(*html.Node) *html.Node) int {
	i := 1
	for s := step(node); s != nil; s = step(s) {
		i++
	}
	return i
}

// matchesAttributeSelector checks if a node matches an attribute selector
func matchesAttributeSelector(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}

	switch attr.Operator {
	case "":
		return true
	case "=":
		return value == attr.Value
	case "^=":
		return attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(value, attr.Value)
	case "~=":
		for _, word := range strings.Fields(value) {
			if word == attr.Value {
				return true
			}
		}
		return false
	case "|=":
		return value == attr.Value || strings.HasPrefix(value, attr.Value+"-")
	}

	return false
}

// matchesAncestor checks if any ancestor matches the selector part
func matchesAncestor(node *html.Node, selector Selector, partIndex int) bool {
	for ancestor := node.Parent; ancestor != nil; ancestor = ancestor.Parent {
		if ancestor.Type == html.ElementNode && !isSyntheticRoot(ancestor) {
			if matchesCompoundSelector(ancestor, selector, partIndex) {
				return true
			}
		}
	}
	return false
}

func previousElementSibling(node *html.Node) *html.Node {
	for s := node.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func nextElementSibling(node *html.Node) *html.Node {
	for s := node.NextSibling(); s != nil; s = s.NextSibling() {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// FindMatchingRules returns all rules that match the given node whose media
// query holds for the viewport.
func FindMatchingRules(node *html.Node, stylesheet *Stylesheet, viewportWidth, viewportHeight float64) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range stylesheet.Rules {
		if !EvaluateMediaQuery(rule.MediaQuery, viewportWidth, viewportHeight) {
			continue
		}
		if MatchesSelector(node, rule.Selector) {
			matches = append(matches, rule)
		}
	}
	return matches
}

// QueryAll returns every element below root matching the selector group, in
// document order and without duplicates.
func QueryAll(root *html.Node, group string) ([]*html.Node, error) {
	selectors, err := ParseSelectorGroup(group)
	if err != nil {
		return nil, err
	}
	return root.Collect(func(n *html.Node) html.FilterResult {
		if n.Type != html.ElementNode {
			return html.FilterReject
		}
		for _, sel := range selectors {
			if MatchesSelector(n, sel) {
				return html.FilterAccept
			}
		}
		return html.FilterSkip
	}), nil
}
