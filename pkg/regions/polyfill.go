// Package regions flows the content of source elements through chains of
// region elements of a live document, the way CSS Regions named flows do.
package regions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"regionflow/pkg/cssrules"
	"regionflow/pkg/html"
	"regionflow/pkg/layout"
	"regionflow/pkg/resource"
	stdnet "regionflow/std/net"
)

// StyleLoader returns the text of every stylesheet of a document in
// document order. Sheets that fail are left out; the error describes them.
type StyleLoader interface {
	Load(ctx context.Context, doc *html.Document) ([]string, error)
}

// RuleExtractor turns raw stylesheet text into rules.
type RuleExtractor interface {
	Extract(raw string) []*cssrules.Rule
}

// Polyfill discovers named flows from a document's stylesheets and keeps
// their regions filled.
type Polyfill struct {
	loader      StyleLoader
	extractor   RuleExtractor
	measure     Measurer
	prefixes    []string
	resizeDelay time.Duration
	log         *zap.Logger

	loaderSet, extractorSet bool

	doc      *html.Document
	caps     *Capabilities
	registry *Registry
	engine   *Engine
	sched    *Scheduler

	vpMu     sync.Mutex
	viewport *[2]float64
}

type Option func(*Polyfill)

func WithLoader(l StyleLoader) Option {
	return func(p *Polyfill) { p.loader, p.loaderSet = l, true }
}

func WithExtractor(x RuleExtractor) Option {
	return func(p *Polyfill) { p.extractor, p.extractorSet = x, true }
}

func WithMeasurer(m Measurer) Option {
	return func(p *Polyfill) { p.measure = m }
}

// WithPrefixes sets the probing order for prefixed flow properties.
func WithPrefixes(prefixes []string) Option {
	return func(p *Polyfill) { p.prefixes = prefixes }
}

func WithResizeDelay(d time.Duration) Option {
	return func(p *Polyfill) { p.resizeDelay = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Polyfill) { p.log = log }
}

// New creates a polyfill. Unless replaced by options, styles are loaded
// with a resource.Loader, rules extracted with a cssrules.Extractor and
// boxes measured by a layout.LayoutEngine on a 1024x768 viewport. Passing a
// nil loader or extractor makes Init fail.
func New(opts ...Option) *Polyfill {
	p := &Polyfill{resizeDelay: DefaultResizeDelay}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	p.log = p.log.Named("regions")

	if !p.loaderSet {
		p.loader = resource.NewLoader(resource.NewFetcher("", stdnet.DefaultTimeout), p.log, 4)
	}
	if !p.extractorSet {
		p.extractor = cssrules.NewExtractor(p.log)
	}
	if p.measure == nil {
		p.measure = layout.NewLayoutEngine(1024, 768, layout.WithLogger(p.log))
	}

	p.caps = NewCapabilities(p.prefixes, nil)
	p.registry = NewRegistry(p.log, p.DoLayout)
	p.engine = NewEngine(p.registry, p.measure, p.caps, p.log)
	p.sched = NewScheduler(p.pass, func() { p.registry.Invalidate() }, p.resizeDelay, p.log)
	return p
}

// Init loads the stylesheets of doc, registers the flows they declare and
// runs the first layout pass. A document without flow rules is not an
// error.
func (p *Polyfill) Init(ctx context.Context, doc *html.Document) error {
	p.doc = doc
	if p.loader == nil {
		p.log.Error("Missing style loader")
		return fmt.Errorf("style loader: %w", ErrMissingCollaborator)
	}
	if p.extractor == nil {
		p.log.Error("Missing rule extractor")
		return fmt.Errorf("rule extractor: %w", ErrMissingCollaborator)
	}

	sheets, err := p.loader.Load(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("loading stylesheets: %w", err)
		}
		p.log.Warn("Some stylesheets were skipped", zap.Error(err))
	}
	if sa, ok := p.measure.(StyleAware); ok {
		sa.SetStylesheets(sheets)
	}

	var rules []*cssrules.Rule
	for _, sheet := range sheets {
		rules = append(rules, p.extractor.Extract(sheet)...)
	}
	rules = cssrules.Cascade(rules)
	if len(rules) == 0 {
		p.log.Info("No style rules found, nothing to flow")
		return nil
	}

	p.caps = NewCapabilities(p.prefixes, rules)
	p.engine.caps = p.caps
	groupings := CollectFlows(rules, p.caps)
	if len(groupings) == 0 {
		p.log.Info("No named flow rules found", zap.String("prefix", p.caps.Prefix()))
		return nil
	}

	resolver := NewResolver(doc, p.log)
	for _, g := range groupings {
		p.registry.GetOrCreate(g.Name)
		for _, n := range resolver.Resolve(g.SourceSelectors) {
			if err := p.registry.AddSource(g.Name, n); err != nil {
				return err
			}
		}
		for _, n := range resolver.Resolve(g.RegionSelectors) {
			if err := p.registry.AddRegion(g.Name, n); err != nil {
				return err
			}
		}
		f := p.registry.Get(g.Name)
		p.log.Debug("Named flow registered",
			zap.String("flow", g.Name),
			zap.Int("sources", len(f.Content())),
			zap.Int("regions", len(f.Regions())))
	}

	p.DoLayout()
	return nil
}

// Document returns the document passed to Init.
func (p *Polyfill) Document() *html.Document { return p.doc }

// Capabilities returns the names resolved for the loaded stylesheets.
func (p *Polyfill) Capabilities() *Capabilities { return p.caps }

// Measurer returns the measurer used for layout passes.
func (p *Polyfill) Measurer() Measurer { return p.measure }

// NamedFlows returns the registered flows.
func (p *Polyfill) NamedFlows() *Collection {
	return p.registry.List()
}

// AddSourceToNamedFlow adds an element to the content of a flow, creating
// the flow if needed. The next layout pass picks it up.
func (p *Polyfill) AddSourceToNamedFlow(name string, n *html.Node) error {
	return p.registry.AddSource(name, n)
}

// AddRegionToNamedFlow adds an element to the region chain of a flow.
func (p *Polyfill) AddRegionToNamedFlow(name string, n *html.Node) error {
	return p.registry.AddRegion(name, n)
}

// DoLayout runs a layout pass over all flows, or folds into the pass
// already running.
func (p *Polyfill) DoLayout() {
	if p.registry.Len() == 0 {
		p.log.Warn("No named flows to lay out")
		return
	}
	p.sched.Request()
}

// Invalidate forces a full reflow of the named flows, or all flows, on the
// next pass.
func (p *Polyfill) Invalidate(names ...string) {
	p.registry.Invalidate(names...)
}

// Resize schedules a debounced reflow of every flow. A resizable measurer
// gets the new viewport at the start of the next pass, so Resize is safe to
// call from any goroutine.
func (p *Polyfill) Resize(width, height float64) {
	p.vpMu.Lock()
	p.viewport = &[2]float64{width, height}
	p.vpMu.Unlock()
	p.sched.NotifyResize()
}

func (p *Polyfill) pass() {
	p.vpMu.Lock()
	vp := p.viewport
	p.viewport = nil
	p.vpMu.Unlock()
	if r, ok := p.measure.(Resizable); ok && vp != nil {
		r.SetViewport(vp[0], vp[1])
	}
	p.engine.FillAll()
}

// RegionStatus returns the status of a region after the last pass.
func (p *Polyfill) RegionStatus(region *html.Node) RegionStatus {
	return p.engine.Status(region)
}

// Close stops pending reflows.
func (p *Polyfill) Close() error {
	p.sched.Close()
	return nil
}
