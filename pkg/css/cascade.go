package css

import (
	"sort"
	"strconv"

	"regionflow/pkg/html"
)

// inherited lists the properties copied from the parent's computed style
// when the element does not set them.
var inherited = []string{
	"font-size", "font-family", "font-weight", "font-style", "line-height",
	"color", "white-space", "visibility", "text-align",
}

// applyUserAgentStyles applies default browser styles based on element type
func applyUserAgentStyles(node *html.Node, style *Style) {
	if node.Type != html.ElementNode {
		return
	}

	switch node.TagName {
	case "head", "style", "script", "title", "meta", "link", "base", "template":
		style.Set("display", "none")
		return
	case "br":
		style.Set("display", "inline")
		return
	}
	if html.IsBlockTag(node.TagName) {
		style.Set("display", "block")
	}

	switch node.TagName {
	case "b", "strong", "h1", "h2", "h3", "h4", "h5", "h6", "th":
		style.Set("font-weight", "bold")
	case "i", "em", "cite", "var":
		style.Set("font-style", "italic")
	case "code", "pre", "tt", "kbd", "samp":
		style.Set("font-family", "monospace")
	case "a":
		style.Set("color", "#0645ad")
		style.Set("text-decoration", "underline")
	}
	if node.TagName == "pre" {
		style.Set("white-space", "pre")
	}
}

// ComputeStyle computes the cascaded (not inherited) style for a node:
// user agent defaults, then matching rules by specificity and source order,
// then the inline style attribute.
func ComputeStyle(node *html.Node, stylesheets []*Stylesheet, viewportWidth, viewportHeight float64) *Style {
	finalStyle := NewStyle()
	applyUserAgentStyles(node, finalStyle)

	type ranked struct {
		rule  Rule
		sheet int
	}
	allRules := make([]ranked, 0)
	for i, stylesheet := range stylesheets {
		for _, r := range FindMatchingRules(node, stylesheet, viewportWidth, viewportHeight) {
			allRules = append(allRules, ranked{rule: r, sheet: i})
		}
	}

	// Lowest specificity first, later sheets and later rules win ties.
	sort.SliceStable(allRules, func(i, j int) bool {
		a, b := allRules[i], allRules[j]
		if a.rule.Selector.Specificity != b.rule.Selector.Specificity {
			return a.rule.Selector.Specificity < b.rule.Selector.Specificity
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule.Order < b.rule.Order
	})

	for _, r := range allRules {
		for property, value := range r.rule.Declarations {
			finalStyle.Set(property, value)
		}
	}

	if styleAttr, ok := node.GetAttribute("style"); ok {
		for property, value := range ParseInlineStyle(styleAttr).Properties {
			finalStyle.Set(property, value)
		}
	}

	return finalStyle
}

// StyleResolver computes and memoizes inherited computed styles for the
// elements of a live document. Reset must be called after the document or
// the stylesheets change.
type StyleResolver struct {
	sheets         []*Stylesheet
	viewportWidth  float64
	viewportHeight float64
	cache          map[*html.Node]*Style
}

func NewStyleResolver(sheets []*Stylesheet, viewportWidth, viewportHeight float64) *StyleResolver {
	return &StyleResolver{
		sheets:         sheets,
		viewportWidth:  viewportWidth,
		viewportHeight: viewportHeight,
		cache:          make(map[*html.Node]*Style),
	}
}

// Reset drops memoized styles.
func (r *StyleResolver) Reset() {
	clear(r.cache)
}

// SetViewport changes the viewport used for media queries and drops memoized styles.
func (r *StyleResolver) SetViewport(width, height float64) {
	r.viewportWidth, r.viewportHeight = width, height
	r.Reset()
}

// Resolve returns the computed style of an element. Text nodes resolve to
// the style of their parent.
func (r *StyleResolver) Resolve(n *html.Node) *Style {
	if n == nil {
		return NewStyle()
	}
	if n.Type == html.TextNode {
		return r.Resolve(n.Parent)
	}
	if s, ok := r.cache[n]; ok {
		return s
	}

	var parent *Style
	if n.Parent != nil {
		parent = r.Resolve(n.Parent)
	}

	style := NewStyle()
	if !isSyntheticRoot(n) {
		style = ComputeStyle(n, r.sheets, r.viewportWidth, r.viewportHeight)
	}

	parentFontSize := DefaultFontSize
	if parent != nil {
		parentFontSize = parent.GetFontSize()
	}
	if fs, ok := style.Get("font-size"); ok {
		if px, ok := ResolveLength(fs, parentFontSize, parentFontSize); ok {
			style.Set("font-size", strconv.FormatFloat(px, 'f', -1, 64)+"px")
		} else {
			style.Set("font-size", strconv.FormatFloat(parentFontSize, 'f', -1, 64)+"px")
		}
	}

	if parent != nil {
		for _, prop := range inherited {
			if _, ok := style.Get(prop); ok {
				continue
			}
			if v, ok := parent.Get(prop); ok {
				style.Set(prop, v)
			}
		}
	}

	r.cache[n] = style
	return style
}
