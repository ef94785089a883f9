package regions

import "regionflow/pkg/html"

// Measurer answers the layout questions the flow engine asks about a live
// document. Calls are synchronous and may lay out the tree each time.
type Measurer interface {
	// Display returns the computed display of n, "none" when n is not
	// rendered.
	Display(n *html.Node) string
	// BoxSize returns the declared content box of a region.
	BoxSize(n *html.Node) (width, height float64)
	// Overflows reports whether the content of region does not fit its box.
	Overflows(region *html.Node) bool
}

// StyleAware measurers receive the loaded stylesheet texts before the first
// pass.
type StyleAware interface {
	SetStylesheets(sheets []string)
}

// Resizable measurers follow viewport changes.
type Resizable interface {
	SetViewport(width, height float64)
}
