package regions

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"regionflow/pkg/html"
)

// Registry owns the named flows of a document.
type Registry struct {
	mu    sync.Mutex
	flows []*NamedFlow
	log   *zap.Logger

	// onSubscribe is handed to every flow's observers.
	onSubscribe func()
}

// NewRegistry creates an empty registry. onSubscribe, if set, runs every
// time a listener is added to one of its flows.
func NewRegistry(log *zap.Logger, onSubscribe func()) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log, onSubscribe: onSubscribe}
}

// GetOrCreate returns the flow with the given name, creating it if needed.
// An empty name means DefaultFlowName. The flow is invalidated either way.
func (r *Registry) GetOrCreate(name string) *NamedFlow {
	if name == "" {
		name = DefaultFlowName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.lookup(name)
	if f == nil {
		f = newNamedFlow(name, r.onSubscribe)
		r.flows = append(r.flows, f)
		r.log.Debug("Named flow created", zap.String("flow", name))
	}
	f.invalidate()
	return f
}

func (r *Registry) lookup(name string) *NamedFlow {
	for _, f := range r.flows {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Get returns the flow with the given name, or nil.
func (r *Registry) Get(name string) *NamedFlow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(name)
}

// AddSource appends n to the content of the named flow.
func (r *Registry) AddSource(name string, n *html.Node) error {
	if n == nil {
		return fmt.Errorf("adding source to flow %q: nil node: %w", name, ErrInvalidArgument)
	}
	f := r.GetOrCreate(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Contains(f.contentNodes, n) {
		f.contentNodes = append(f.contentNodes, n)
	}
	return nil
}

// AddRegion appends n to the region chain of the named flow.
func (r *Registry) AddRegion(name string, n *html.Node) error {
	if n == nil {
		return fmt.Errorf("adding region to flow %q: nil node: %w", name, ErrInvalidArgument)
	}
	f := r.GetOrCreate(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Contains(f.regions, n) {
		f.regions = append(f.regions, n)
	}
	return nil
}

// Flows returns the flows in creation order.
func (r *Registry) Flows() []*NamedFlow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.flows)
}

// Len returns the number of flows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// List returns the flows as a collection.
func (r *Registry) List() *Collection {
	flows := r.Flows()
	if flows == nil {
		flows = []*NamedFlow{}
	}
	c, _ := NewCollection(flows)
	return c
}

// Invalidate marks the named flows, or all flows when no name is given,
// for a full reflow.
func (r *Registry) Invalidate(names ...string) {
	for _, f := range r.Flows() {
		if len(names) == 0 || slices.Contains(names, f.name) {
			f.invalidate()
		}
	}
}
