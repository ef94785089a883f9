package layout

import (
	"regionflow/pkg/css"
	"regionflow/pkg/html"
)

// collapseMargins returns the collapsed margin value for two adjoining vertical margins.
// Per CSS 2.1: both positive => max, both negative => most negative, mixed => sum.
func collapseMargins(margin1, margin2 float64) float64 {
	if margin1 >= 0 && margin2 >= 0 {
		return max(margin1, margin2)
	}
	if margin1 < 0 && margin2 < 0 {
		return min(margin1, margin2)
	}
	return margin1 + margin2
}

func edges(style *css.Style) (margin, border, padding css.BoxEdge) {
	return style.GetMargin(), style.GetBorderWidth(), style.GetPadding()
}

// contentWidthFor resolves the content width of a block with the given
// style inside a containing block of width avail.
func contentWidthFor(style *css.Style, avail float64) float64 {
	margin, border, padding := edges(style)
	var w float64
	if val, ok := style.Get("width"); ok {
		if cw, ok := css.ResolveLength(val, style.GetFontSize(), avail); ok {
			w = cw
			if bs, _ := style.Get("box-sizing"); bs == "border-box" {
				w -= border.Horizontal() + padding.Horizontal()
			}
			return max(w, 0)
		}
	}
	w = avail - margin.Horizontal() - border.Horizontal() - padding.Horizontal()
	return max(w, 0)
}

// contentWidthOf walks from the root down to n narrowing the available
// width at every block ancestor.
func (le *LayoutEngine) contentWidthOf(n *html.Node) float64 {
	var chain []*html.Node
	for a := n; a != nil; a = a.Parent {
		if a.Type == html.ElementNode {
			chain = append(chain, a)
		}
	}
	w := le.viewport.width
	for i := len(chain) - 1; i >= 0; i-- {
		a := chain[i]
		if a.Parent == nil {
			continue // synthetic document root
		}
		style := le.resolver.Resolve(a)
		if style.GetDisplay() == css.DisplayInline && a != n {
			continue
		}
		w = contentWidthFor(style, w)
	}
	return w
}

// declaredHeight returns the content height an element is constrained to:
// its height, else its max-height. Percentages need a definite parent.
func (le *LayoutEngine) declaredHeight(n *html.Node) (float64, bool) {
	if n == nil || n.Type != html.ElementNode {
		return 0, false
	}
	if n.Parent == nil {
		return le.viewport.height, true
	}
	style := le.resolver.Resolve(n)
	for _, prop := range []string{"height", "max-height"} {
		val, ok := style.Get(prop)
		if !ok {
			continue
		}
		base := 0.0
		if ph, ok := le.declaredHeight(n.Parent); ok {
			base = ph
		}
		h, ok := css.ResolveLength(val, style.GetFontSize(), base)
		if !ok {
			continue
		}
		if bs, _ := style.Get("box-sizing"); bs == "border-box" {
			h -= verticalEdges(style)
		}
		return max(h, 0), true
	}
	return 0, false
}

// layoutContents lays out the children of n inside its content box,
// ignoring n's own declared height.
func (le *LayoutEngine) layoutContents(n *html.Node) *Box {
	style := le.resolver.Resolve(n)
	box := &Box{Node: n, Style: style, Width: le.contentWidthOf(n)}
	box.Height = le.layoutChildren(box)
	return box
}

// layoutBlock lays out a block-level element at (x, y) inside a containing
// block of width availableWidth. It returns nil for elements not rendered.
func (le *LayoutEngine) layoutBlock(n *html.Node, x, y, availableWidth float64) *Box {
	style := le.resolver.Resolve(n)
	if style.GetDisplay() == css.DisplayNone {
		return nil
	}
	margin, border, padding := edges(style)
	box := &Box{
		Node:    n,
		Style:   style,
		Margin:  margin,
		Border:  border,
		Padding: padding,
		X:       x + margin.Left + border.Left + padding.Left,
		Y:       y + margin.Top + border.Top + padding.Top,
		Width:   contentWidthFor(style, availableWidth),
	}

	contentHeight := le.layoutChildren(box)
	if h, ok := le.explicitHeight(style, n); ok {
		box.Height = h
	} else {
		box.Height = contentHeight
	}
	return box
}

func (le *LayoutEngine) explicitHeight(style *css.Style, n *html.Node) (float64, bool) {
	val, ok := style.Get("height")
	if !ok {
		return 0, false
	}
	base := 0.0
	if n.Parent != nil {
		if ph, ok := le.declaredHeight(n.Parent); ok {
			base = ph
		}
	}
	h, ok := css.ResolveLength(val, style.GetFontSize(), base)
	if !ok {
		return 0, false
	}
	if bs, _ := style.Get("box-sizing"); bs == "border-box" {
		h -= verticalEdges(style)
	}
	return max(h, 0), true
}

func verticalEdges(style *css.Style) float64 {
	_, border, padding := edges(style)
	return border.Vertical() + padding.Vertical()
}

// layoutChildren stacks block children and runs of inline children
// vertically inside box and returns the content height.
func (le *LayoutEngine) layoutChildren(box *Box) float64 {
	y := 0.0
	prevMargin := 0.0
	havePrev := false

	var run []*html.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		lines := le.layoutInline(run, box.Style, box.Width)
		run = run[:0]
		if len(lines) == 0 {
			return
		}
		if havePrev {
			y += prevMargin
		}
		last := lines[len(lines)-1]
		runHeight := last.Y + last.Height
		for _, lb := range lines {
			lb.Y += box.Y + y
			box.LineBoxes = append(box.LineBoxes, lb)
		}
		y += runHeight
		prevMargin, havePrev = 0, false
	}

	for _, child := range box.Node.Children {
		if !le.isBlockLevel(child) {
			run = append(run, child)
			continue
		}
		flush()
		margin := le.resolver.Resolve(child).GetMargin()
		gap := margin.Top
		if havePrev {
			gap = collapseMargins(prevMargin, margin.Top)
		}
		cb := le.layoutBlock(child, box.X, box.Y+y+gap-margin.Top, box.Width)
		if cb == nil {
			continue
		}
		box.Children = append(box.Children, cb)
		y += gap + cb.Height + cb.Padding.Vertical() + cb.Border.Vertical()
		prevMargin, havePrev = margin.Bottom, true
	}
	flush()
	if havePrev {
		y += prevMargin
	}
	return y
}

// isBlockLevel reports whether n takes part in block flow: block elements,
// and inline elements wrapping a block (treated as blocks).
func (le *LayoutEngine) isBlockLevel(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch le.resolver.Resolve(n).GetDisplay() {
	case css.DisplayBlock:
		return true
	case css.DisplayInlineBlock, css.DisplayNone:
		return false
	}
	for _, c := range n.Children {
		if c.Type == html.ElementNode && le.resolver.Resolve(c).GetDisplay() == css.DisplayBlock {
			return true
		}
	}
	return false
}
