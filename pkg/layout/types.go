package layout

import (
	"regionflow/pkg/css"
	"regionflow/pkg/html"
)

// Box is the laid-out block box of an element. X and Y locate the content
// box relative to the box the layout started from.
type Box struct {
	Node     *html.Node
	Style    *css.Style
	X        float64
	Y        float64
	Width    float64 // Content width
	Height   float64 // Content height
	Margin   css.BoxEdge
	Padding  css.BoxEdge
	Border   css.BoxEdge
	Children []*Box

	// Line boxes for block containers with inline content, in order and
	// interleaved with Children by Y.
	LineBoxes []*LineBox
}

// MarginBoxHeight returns the height including padding, border and margin.
func (b *Box) MarginBoxHeight() float64 {
	return b.Height + b.Padding.Vertical() + b.Border.Vertical() + b.Margin.Vertical()
}

// LineBox is one line of an inline formatting context.
type LineBox struct {
	Y      float64
	Height float64
	Items  []LineItem
}

// Text returns the words of the line joined by their spaces.
func (lb *LineBox) Text() string {
	s := ""
	for _, it := range lb.Items {
		s += it.Text
	}
	return s
}

// LineItem is a word (with its preceding space), an atomic inline box or a
// forced break placed on a line.
type LineItem struct {
	Node   *html.Node
	Text   string
	X      float64
	Width  float64
	Height float64
}
