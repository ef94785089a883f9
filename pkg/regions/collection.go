package regions

import "fmt"

// Collection is an indexed, name-keyed view of named flows.
type Collection struct {
	items  []*NamedFlow
	byName map[string]*NamedFlow
}

// NewCollection wraps flows. A nil slice is rejected; an empty one is not.
func NewCollection(flows []*NamedFlow) (*Collection, error) {
	if flows == nil {
		return nil, fmt.Errorf("collection: expected a slice of flows, got nil: %w", ErrInvalidArgument)
	}
	c := &Collection{
		items:  flows,
		byName: make(map[string]*NamedFlow, len(flows)),
	}
	for _, f := range flows {
		if f == nil {
			continue
		}
		if _, dup := c.byName[f.Name()]; !dup {
			c.byName[f.Name()] = f
		}
	}
	return c, nil
}

func (c *Collection) Len() int { return len(c.items) }

// Item returns the flow at index i, or nil when out of range.
func (c *Collection) Item(i int) *NamedFlow {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	return c.items[i]
}

// NamedItem returns the flow with the given name, or nil.
func (c *Collection) NamedItem(name string) *NamedFlow {
	return c.byName[name]
}

// All returns the flows in registration order.
func (c *Collection) All() []*NamedFlow {
	return append([]*NamedFlow(nil), c.items...)
}
