package regions

import (
	"slices"
	"sync"

	"regionflow/pkg/html"
)

// RegionStatus tells how a region ended up after the last pass.
type RegionStatus string

const (
	StatusNone    RegionStatus = ""
	StatusEmpty   RegionStatus = "empty"
	StatusFit     RegionStatus = "fit"
	StatusOverset RegionStatus = "overset"
)

// placement records that an atom of flowed content was put in a region.
// Text atoms are reported through their parent element.
type placement struct {
	atom        *html.Node
	region      *html.Node
	regionIndex int
}

// NamedFlow is a sequence of content nodes poured into a chain of regions.
// Content and regions are owned by the document; the flow only refers to
// them.
type NamedFlow struct {
	name string
	*Observers

	mu                         sync.Mutex
	contentNodes               []*html.Node
	regions                    []*html.Node
	overset                    bool
	lastRegionWithContentIndex int
	firstEmptyRegionIndex      int
	placements                 []placement
	valid                      bool
}

func newNamedFlow(name string, onSubscribe func()) *NamedFlow {
	return &NamedFlow{
		name:                       name,
		Observers:                  newObservers(onSubscribe),
		overset:                    true,
		lastRegionWithContentIndex: -1,
		firstEmptyRegionIndex:      -1,
	}
}

func (f *NamedFlow) Name() string { return f.name }

// Overset reports whether the last pass left content without a region.
// A flow that has never been laid out is overset.
func (f *NamedFlow) Overset() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overset
}

// FirstEmptyRegionIndex returns the index of the first region that received
// no content, or -1.
func (f *NamedFlow) FirstEmptyRegionIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.firstEmptyRegionIndex
}

// LastRegionWithContentIndex returns the index, among displayed regions, of
// the last region that received content, or -1.
func (f *NamedFlow) LastRegionWithContentIndex() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRegionWithContentIndex
}

// Regions returns the regions of the flow in document order.
func (f *NamedFlow) Regions() []*html.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.regions)
}

// Content returns the source nodes of the flow in document order.
func (f *NamedFlow) Content() []*html.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.contentNodes)
}

// RegionsByContent returns the regions holding flowed content from the
// subtree of n, in region order. n is usually an element inside a region,
// or the parent of a text run placed there.
func (f *NamedFlow) RegionsByContent(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[*html.Node]bool)
	var hits []placement
	for _, p := range f.placements {
		owner := p.atom
		if owner.Type == html.TextNode && owner.Parent != nil {
			owner = owner.Parent
		}
		if !n.Contains(owner) || seen[p.region] {
			continue
		}
		seen[p.region] = true
		hits = append(hits, p)
	}
	slices.SortStableFunc(hits, func(a, b placement) int { return a.regionIndex - b.regionIndex })

	out := make([]*html.Node, len(hits))
	for i, p := range hits {
		out[i] = p.region
	}
	return out
}

// AddEventListener subscribes fn to events of type typ on this flow.
// Subscribing requests a layout pass.
func (f *NamedFlow) AddEventListener(typ string, fn Listener) Subscription {
	return f.Subscribe(typ, fn)
}

// RemoveEventListener drops a listener added with AddEventListener.
func (f *NamedFlow) RemoveEventListener(typ string, id Subscription) {
	f.Unsubscribe(typ, id)
}

func (f *NamedFlow) invalidate() {
	f.mu.Lock()
	f.valid = false
	f.mu.Unlock()
}

// Valid reports whether the last pass is still current.
func (f *NamedFlow) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid
}

// placedAtoms returns the number of atoms recorded in the reverse index.
func (f *NamedFlow) placedAtoms() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placements)
}
