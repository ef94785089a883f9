package html

import "strings"

// InlineStyle returns the value of prop from the node's style attribute.
func (n *Node) InlineStyle(prop string) (string, bool) {
	for _, d := range parseInlineStyle(n) {
		if d.name == prop {
			return d.value, true
		}
	}
	return "", false
}

// SetInlineStyle sets prop in the node's style attribute, keeping the
// position of an existing declaration.
func (n *Node) SetInlineStyle(prop, value string) {
	decls := parseInlineStyle(n)
	for i := range decls {
		if decls[i].name == prop {
			decls[i].value = value
			n.writeInlineStyle(decls)
			return
		}
	}
	n.writeInlineStyle(append(decls, inlineDecl{name: prop, value: value}))
}

// RemoveInlineStyle drops prop from the style attribute. An emptied style
// attribute is removed entirely.
func (n *Node) RemoveInlineStyle(prop string) {
	decls := parseInlineStyle(n)
	kept := decls[:0]
	for _, d := range decls {
		if d.name != prop {
			kept = append(kept, d)
		}
	}
	n.writeInlineStyle(kept)
}

type inlineDecl struct {
	name, value string
}

func parseInlineStyle(n *Node) []inlineDecl {
	raw, ok := n.GetAttribute("style")
	if !ok {
		return nil
	}
	var decls []inlineDecl
	for _, part := range strings.Split(raw, ";") {
		name, value, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		decls = append(decls, inlineDecl{name: name, value: value})
	}
	return decls
}

func (n *Node) writeInlineStyle(decls []inlineDecl) {
	if len(decls) == 0 {
		n.RemoveAttribute("style")
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.name + ": " + d.value
	}
	n.SetAttribute("style", strings.Join(parts, "; "))
}

// InlineStyleNames returns the properties of the style attribute in order.
func (n *Node) InlineStyleNames() []string {
	decls := parseInlineStyle(n)
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.name
	}
	return names
}
