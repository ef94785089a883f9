package layout

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"regionflow/pkg/css"
	"regionflow/pkg/html"
	"regionflow/pkg/text"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenAtomic
	tokenBreak
)

// inlineToken is one unbreakable piece of inline content.
type inlineToken struct {
	kind        tokenKind
	node        *html.Node
	text        string
	width       float64
	height      float64 // line height for words, box height for atomics
	spaceBefore bool
	spaceWidth  float64
}

// defaultReplacedSize is the size browsers give replaced elements without
// intrinsic or declared dimensions.
var defaultReplacedSize = [2]float64{300, 150}

func fontStyle(style *css.Style) text.FontStyle {
	return text.FontStyle{
		Size:   style.GetFontSize(),
		Bold:   style.GetFontWeight() == css.FontWeightBold,
		Italic: style.IsItalic(),
		Mono:   style.IsMonospace(),
	}
}

// layoutInline breaks a run of inline-level siblings into lines of at most
// width. Line Y values are relative to the start of the run.
func (le *LayoutEngine) layoutInline(nodes []*html.Node, blockStyle *css.Style, width float64) []*LineBox {
	var tokens []inlineToken
	pending := false
	for _, n := range nodes {
		tokens = le.collectInline(n, width, tokens, &pending)
	}
	if len(tokens) == 0 {
		return nil
	}

	strut := blockStyle.GetLineHeight()
	var lines []*LineBox
	cur := &LineBox{Height: strut}
	x, y := 0.0, 0.0

	finish := func() {
		cur.Y = y
		y += cur.Height
		lines = append(lines, cur)
		cur = &LineBox{Height: strut}
		x = 0
	}

	for _, tok := range tokens {
		if tok.kind == tokenBreak {
			if len(cur.Items) > 0 {
				cur.Items = append(cur.Items, LineItem{Node: tok.node, X: x})
			}
			finish()
			continue
		}

		space := 0.0
		if tok.spaceBefore && len(cur.Items) > 0 {
			space = tok.spaceWidth
		}
		if len(cur.Items) > 0 && x+space+tok.width > width {
			finish()
			space = 0
		}

		label := tok.text
		if space > 0 {
			label = " " + label
		}
		cur.Items = append(cur.Items, LineItem{
			Node:   tok.node,
			Text:   label,
			X:      x + space,
			Width:  tok.width,
			Height: tok.height,
		})
		cur.Height = max(cur.Height, tok.height)
		x += space + tok.width
	}
	if len(cur.Items) > 0 {
		finish()
	}
	return lines
}

func (le *LayoutEngine) collectInline(n *html.Node, width float64, tokens []inlineToken, pending *bool) []inlineToken {
	if n.Type == html.TextNode {
		return le.textTokens(n, tokens, pending)
	}

	style := le.resolver.Resolve(n)
	switch style.GetDisplay() {
	case css.DisplayNone:
		return tokens
	case css.DisplayInlineBlock:
		return le.atomicToken(n, style, width, tokens, pending)
	}

	switch n.TagName {
	case "br":
		*pending = false
		return append(tokens, inlineToken{kind: tokenBreak, node: n})
	case "img", "svg", "video", "canvas", "object", "embed", "iframe", "fig":
		return le.atomicToken(n, style, width, tokens, pending)
	}

	for _, c := range n.Children {
		tokens = le.collectInline(c, width, tokens, pending)
	}
	return tokens
}

func (le *LayoutEngine) textTokens(n *html.Node, tokens []inlineToken, pending *bool) []inlineToken {
	style := le.resolver.Resolve(n.Parent)
	fs := fontStyle(style)
	lineHeight := style.GetLineHeight()
	spaceWidth := le.metrics.Width(" ", fs)

	if ws, _ := style.Get("white-space"); ws == "pre" || ws == "pre-wrap" || ws == "pre-line" {
		for i, line := range strings.Split(n.Text, "\n") {
			if i > 0 {
				tokens = append(tokens, inlineToken{kind: tokenBreak, node: n})
			}
			if line == "" {
				continue
			}
			tokens = append(tokens, inlineToken{
				kind:   tokenWord,
				node:   n,
				text:   line,
				width:  le.metrics.Width(line, fs),
				height: lineHeight,
			})
		}
		*pending = false
		return tokens
	}

	if text.HasLeadingSpace(n.Text) {
		*pending = true
	}
	for _, w := range text.SplitWords(n.Text) {
		tokens = append(tokens, inlineToken{
			kind:        tokenWord,
			node:        n,
			text:        w,
			width:       le.metrics.Width(w, fs),
			height:      lineHeight,
			spaceBefore: *pending,
			spaceWidth:  spaceWidth,
		})
		*pending = true
	}
	if n.Text != "" {
		*pending = text.HasTrailingSpace(n.Text)
	}
	return tokens
}

func (le *LayoutEngine) atomicToken(n *html.Node, style *css.Style, width float64, tokens []inlineToken, pending *bool) []inlineToken {
	w, h := le.atomicSize(n, style, width)
	tok := inlineToken{
		kind:        tokenAtomic,
		node:        n,
		width:       w,
		height:      h,
		spaceBefore: *pending,
		spaceWidth:  le.metrics.Width(" ", fontStyle(style)),
	}
	*pending = false
	return append(tokens, tok)
}

// atomicSize returns the margin-box size of a replaced element or an
// inline-block.
func (le *LayoutEngine) atomicSize(n *html.Node, style *css.Style, avail float64) (float64, float64) {
	margin, border, padding := edges(style)
	chrome := func(w, h float64) (float64, float64) {
		return w + margin.Horizontal() + border.Horizontal() + padding.Horizontal(),
			h + margin.Vertical() + border.Vertical() + padding.Vertical()
	}

	if style.GetDisplay() == css.DisplayInlineBlock && !isReplaced(n) {
		box := le.layoutBlock(n, 0, 0, avail)
		if box == nil {
			return 0, 0
		}
		w := box.Width
		if _, ok := style.Get("width"); !ok {
			// shrink to the widest line
			w = 0
			for _, lb := range box.LineBoxes {
				if len(lb.Items) > 0 {
					last := lb.Items[len(lb.Items)-1]
					w = max(w, last.X+last.Width)
				}
			}
			for _, c := range box.Children {
				w = max(w, c.Width+c.Padding.Horizontal()+c.Border.Horizontal()+c.Margin.Horizontal())
			}
		}
		return chrome(w, box.Height)
	}

	w, wok := le.dimension(n, style, "width", avail)
	h, hok := le.dimension(n, style, "height", 0)
	if wok && hok {
		return chrome(w, h)
	}

	iw, ih := defaultReplacedSize[0], defaultReplacedSize[1]
	if n.TagName == "img" {
		iw, ih = 0, 0
		if src, ok := n.GetAttribute("src"); ok && le.images != nil {
			pw, ph, err := le.images.GetImageDimensions(src)
			if err != nil {
				le.log.Debug("Image size unavailable", zap.Error(err))
			} else {
				iw, ih = float64(pw), float64(ph)
			}
		}
	}
	switch {
	case wok && iw > 0:
		h = w * ih / iw
	case hok && ih > 0:
		w = h * iw / ih
	case !wok && !hok:
		w, h = iw, ih
	}
	return chrome(w, h)
}

// dimension reads a size from the style, falling back to the HTML
// attribute of the same name.
func (le *LayoutEngine) dimension(n *html.Node, style *css.Style, prop string, base float64) (float64, bool) {
	if val, ok := style.Get(prop); ok {
		if v, ok := css.ResolveLength(val, style.GetFontSize(), base); ok {
			return v, true
		}
	}
	if val, ok := n.GetAttribute(prop); ok {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "px"), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func isReplaced(n *html.Node) bool {
	switch n.TagName {
	case "img", "svg", "video", "canvas", "object", "embed", "iframe":
		return true
	}
	return false
}
