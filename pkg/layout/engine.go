package layout

import (
	"go.uber.org/zap"

	"regionflow/pkg/css"
	"regionflow/pkg/html"
	"regionflow/pkg/images"
	"regionflow/pkg/text"
)

// DefaultTolerance is the overflow slack in pixels: a region overflows when
// its content is more than this much taller than its box.
const DefaultTolerance = 1.0

// LayoutEngine measures elements of a live document with block flow and
// inline line breaking. It holds no layout state between calls, so the
// document may be mutated freely in between.
type LayoutEngine struct {
	viewport struct {
		width  float64
		height float64
	}
	stylesheets []*css.Stylesheet
	resolver    *css.StyleResolver
	metrics     text.Metrics
	images      *images.Cache
	tolerance   float64
	log         *zap.Logger
}

type Option func(*LayoutEngine)

// WithMetrics sets the text metrics. The default measures with the embedded
// Go fonts.
func WithMetrics(m text.Metrics) Option {
	return func(le *LayoutEngine) { le.metrics = m }
}

// WithImages sets the cache used for intrinsic image sizes.
func WithImages(c *images.Cache) Option {
	return func(le *LayoutEngine) { le.images = c }
}

func WithTolerance(t float64) Option {
	return func(le *LayoutEngine) { le.tolerance = t }
}

func WithLogger(log *zap.Logger) Option {
	return func(le *LayoutEngine) { le.log = log }
}

func NewLayoutEngine(viewportWidth, viewportHeight float64, opts ...Option) *LayoutEngine {
	le := &LayoutEngine{tolerance: DefaultTolerance}
	le.viewport.width = viewportWidth
	le.viewport.height = viewportHeight
	for _, opt := range opts {
		opt(le)
	}
	if le.log == nil {
		le.log = zap.NewNop()
	}
	le.log = le.log.Named("layout")
	if le.metrics == nil {
		le.metrics = text.NewFaceMetrics(text.FontConfig{}, le.log)
	}
	le.resolver = css.NewStyleResolver(nil, viewportWidth, viewportHeight)
	return le
}

// SetStylesheets replaces the author stylesheets.
func (le *LayoutEngine) SetStylesheets(sheets []string) {
	parser := css.NewParser(le.log)
	le.stylesheets = make([]*css.Stylesheet, 0, len(sheets))
	for _, s := range sheets {
		le.stylesheets = append(le.stylesheets, parser.Parse(s))
	}
	le.resolver = css.NewStyleResolver(le.stylesheets, le.viewport.width, le.viewport.height)
}

// SetViewport changes the viewport size.
func (le *LayoutEngine) SetViewport(width, height float64) {
	le.viewport.width = width
	le.viewport.height = height
	le.resolver.SetViewport(width, height)
}

// Viewport returns the current viewport size.
func (le *LayoutEngine) Viewport() (width, height float64) {
	return le.viewport.width, le.viewport.height
}

// Style returns the computed style of n as of now.
func (le *LayoutEngine) Style(n *html.Node) *css.Style {
	le.resolver.Reset()
	return le.resolver.Resolve(n)
}

// Display returns the computed display of n, "none" when n or one of its
// ancestors is not rendered.
func (le *LayoutEngine) Display(n *html.Node) string {
	le.resolver.Reset()
	for a := n; a != nil; a = a.Parent {
		if a.Type == html.ElementNode && le.resolver.Resolve(a).GetDisplay() == css.DisplayNone {
			return string(css.DisplayNone)
		}
	}
	return string(le.resolver.Resolve(n).GetDisplay())
}

// BoxSize returns the content width of n and its declared height (height,
// else max-height), zero when the height is auto.
func (le *LayoutEngine) BoxSize(n *html.Node) (width, height float64) {
	le.resolver.Reset()
	width = le.contentWidthOf(n)
	height, _ = le.declaredHeight(n)
	return width, height
}

// ContentHeight lays out the children of n in its content box and returns
// the height they occupy.
func (le *LayoutEngine) ContentHeight(n *html.Node) float64 {
	le.resolver.Reset()
	box := le.layoutContents(n)
	return box.Height
}

// Overflows reports whether the content of region is taller than its box by
// more than the tolerance. Regions with an auto height never overflow.
func (le *LayoutEngine) Overflows(region *html.Node) bool {
	le.resolver.Reset()
	boxHeight, ok := le.declaredHeight(region)
	if !ok {
		return false
	}
	return le.layoutContents(region).Height-boxHeight > le.tolerance
}

// LineTexts returns the text of every line laid out inside n, in order.
func (le *LayoutEngine) LineTexts(n *html.Node) []string {
	le.resolver.Reset()
	var lines []string
	var collect func(b *Box)
	collect = func(b *Box) {
		// lines and child boxes interleave by position
		li, ci := 0, 0
		for li < len(b.LineBoxes) || ci < len(b.Children) {
			if ci >= len(b.Children) || (li < len(b.LineBoxes) && b.LineBoxes[li].Y <= b.Children[ci].Y) {
				lines = append(lines, b.LineBoxes[li].Text())
				li++
				continue
			}
			collect(b.Children[ci])
			ci++
		}
	}
	collect(le.layoutContents(n))
	return lines
}
