package regions

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"regionflow/pkg/html"
)

const displayNone = "none"

// regionMeta is what a pass remembers about a region to detect changes.
type regionMeta struct {
	width, height float64
	displayed     bool
}

// Engine pours the content of named flows into their regions.
type Engine struct {
	reg     *Registry
	measure Measurer
	caps    *Capabilities
	log     *zap.Logger

	// original inline display of hidden sources
	sourceDisplay *nodeTable[string]
	regionMeta    *nodeTable[regionMeta]
	status        *nodeTable[RegionStatus]
}

func NewEngine(reg *Registry, m Measurer, caps *Capabilities, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if caps == nil {
		caps = NewCapabilities(nil, nil)
	}
	return &Engine{
		reg:           reg,
		measure:       m,
		caps:          caps,
		log:           log,
		sourceDisplay: newNodeTable[string](),
		regionMeta:    newNodeTable[regionMeta](),
		status:        newNodeTable[RegionStatus](),
	}
}

// Status returns the status the last pass gave to a region.
func (e *Engine) Status(region *html.Node) RegionStatus {
	if region == nil {
		return StatusNone
	}
	s, _ := e.status.get(region)
	return s
}

// FillAll runs one pass over every registered flow.
func (e *Engine) FillAll() {
	log := e.log.With(zap.String("pass", uuid.NewString()))
	flows := e.reg.Flows()
	log.Debug("Layout pass started", zap.Int("flows", len(flows)))
	for _, f := range flows {
		e.fill(f, log)
	}
	log.Debug("Layout pass done")
}

// Fill lays out a single flow.
func (e *Engine) Fill(f *NamedFlow) {
	e.fill(f, e.log)
}

func (e *Engine) fill(f *NamedFlow, log *zap.Logger) {
	log = log.With(zap.String("flow", f.name))

	f.mu.Lock()
	regions := e.liveRegions(f, log)

	var (
		queue []*html.Node
		start int
	)
	if len(regions) == 0 {
		// nowhere to pour: show the sources again
		e.restoreSources(f.contentNodes)
		f.placements = nil
		f.firstEmptyRegionIndex = -1
		f.lastRegionWithContentIndex = -1
		f.overset = len(f.contentNodes) > 0
		f.valid = true
		hasRegions := len(f.regions) > 0
		f.mu.Unlock()
		log.Debug("Flow has no displayed region", zap.Int("sources", len(f.contentNodes)))
		if hasRegions {
			e.fireLayoutUpdate(f)
		}
		return
	}
	if f.valid && f.lastRegionWithContentIndex >= 0 && f.lastRegionWithContentIndex < len(regions) {
		start = f.lastRegionWithContentIndex
		queue = regions[start].RemoveChildren()
		f.dropPlacementsFrom(start)
		log.Debug("Resuming flow", zap.Int("region", start), zap.Int("units", len(queue)))
	} else {
		queue = e.sourceQueue(f.contentNodes)
		f.placements = nil
	}
	f.firstEmptyRegionIndex = -1
	if start == 0 {
		f.lastRegionWithContentIndex = -1
	}
	overflowed := false

	for i := start; i < len(regions); i++ {
		region := regions[i]
		region.RemoveChildren()

		if len(queue) == 0 {
			if f.firstEmptyRegionIndex == -1 {
				f.firstEmptyRegionIndex = i
			}
			e.status.set(region, StatusEmpty)
			continue
		}

		f.lastRegionWithContentIndex = i
		if i == len(regions)-1 {
			for _, unit := range queue {
				region.AddChild(unit)
				f.place(unit, region, i)
			}
			queue = nil
			overflowed = e.measure.Overflows(region)
			if overflowed {
				e.status.set(region, StatusOverset)
			} else {
				e.status.set(region, StatusFit)
			}
			continue
		}

		for len(queue) > 0 {
			unit := queue[0]
			queue = queue[1:]
			if rest := e.addContentToRegion(f, unit, region, i); rest != nil {
				queue = append([]*html.Node{rest}, queue...)
				break
			}
		}
		e.status.set(region, StatusFit)
	}

	f.overset = len(queue) > 0 || overflowed
	f.valid = true
	hasRegions := len(f.regions) > 0
	overset := f.overset
	f.mu.Unlock()

	log.Debug("Flow laid out",
		zap.Int("regions", len(regions)),
		zap.Bool("overset", overset),
		zap.Int("left", len(queue)))

	if hasRegions {
		e.fireLayoutUpdate(f)
	}
}

// fireLayoutUpdate notifies listeners under the resolved event name and,
// when it is prefixed, under the plain one too.
func (e *Engine) fireLayoutUpdate(f *NamedFlow) {
	ev := e.caps.EventName(EventRegionLayoutUpdate)
	f.Fire(Event{Type: ev, Flow: f})
	if ev != EventRegionLayoutUpdate {
		f.Fire(Event{Type: EventRegionLayoutUpdate, Flow: f})
	}
}

// liveRegions returns the displayed regions of f. Any change in visibility
// or box size since the previous pass invalidates f. Hidden regions are
// emptied and lose their status. Called with f.mu held.
func (e *Engine) liveRegions(f *NamedFlow, log *zap.Logger) []*html.Node {
	var live []*html.Node
	for _, r := range f.regions {
		prev, seen := e.regionMeta.get(r)
		if e.measure.Display(r) == displayNone {
			if seen && prev.displayed {
				log.Debug("Region hidden, reflowing")
				f.valid = false
			}
			if len(r.Children) > 0 {
				r.RemoveChildren()
			}
			e.status.remove(r)
			e.regionMeta.set(r, regionMeta{displayed: false})
			continue
		}

		w, h := e.measure.BoxSize(r)
		if seen && (!prev.displayed || prev.width != w || prev.height != h) {
			log.Debug("Region changed, reflowing",
				zap.Bool("shown", !prev.displayed),
				zap.Float64("width", w), zap.Float64("height", h))
			f.valid = false
		}
		e.regionMeta.set(r, regionMeta{width: w, height: h, displayed: true})
		live = append(live, r)
	}
	return live
}

// sourceQueue clones the sources in order and hides the originals.
func (e *Engine) sourceQueue(sources []*html.Node) []*html.Node {
	queue := make([]*html.Node, 0, len(sources))
	for _, src := range sources {
		clone := src.CloneNode(true)
		if d, ok := clone.InlineStyle("display"); ok && d == displayNone {
			// hidden by an earlier pass
			if orig, _ := e.sourceDisplay.get(src); orig != "" {
				clone.SetInlineStyle("display", orig)
			} else {
				clone.RemoveInlineStyle("display")
			}
		}
		queue = append(queue, clone)

		if e.measure.Display(src) != displayNone {
			orig, _ := src.InlineStyle("display")
			e.sourceDisplay.set(src, orig)
			src.SetInlineStyle("display", displayNone)
		}
	}
	return queue
}

// restoreSources undoes the hiding done by sourceQueue.
func (e *Engine) restoreSources(sources []*html.Node) {
	for _, src := range sources {
		orig, ok := e.sourceDisplay.get(src)
		if !ok {
			continue
		}
		if orig != "" {
			src.SetInlineStyle("display", orig)
		} else {
			src.RemoveInlineStyle("display")
		}
		e.sourceDisplay.remove(src)
	}
}

// place records the atoms of n as placed in region ri.
func (f *NamedFlow) place(n, region *html.Node, ri int) {
	for _, a := range collectAtoms(n) {
		f.placements = append(f.placements, placement{atom: a, region: region, regionIndex: ri})
	}
}

func (f *NamedFlow) dropPlacementsFrom(ri int) {
	kept := f.placements[:0]
	for _, p := range f.placements {
		if p.regionIndex < ri {
			kept = append(kept, p)
		}
	}
	f.placements = kept
}
