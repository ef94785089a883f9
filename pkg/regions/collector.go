package regions

import "regionflow/pkg/cssrules"

// DefaultFlowName is used when a flow declaration has an empty value.
const DefaultFlowName = "none"

// FlowGrouping holds the selectors of one named flow.
type FlowGrouping struct {
	Name            string
	SourceSelectors []string
	RegionSelectors []string
}

// Groupings lists flow groupings in the order their names were first seen.
type Groupings []*FlowGrouping

// Get returns the grouping of a flow, or nil.
func (g Groupings) Get(name string) *FlowGrouping {
	for _, fg := range g {
		if fg.Name == name {
			return fg
		}
	}
	return nil
}

// CollectFlows scans the declarations of every top-level rule. The first
// flow-family declaration of a rule decides its role and ends the scan of
// that rule.
func CollectFlows(rules []*cssrules.Rule, caps *Capabilities) Groupings {
	var out Groupings
	into := caps.Property(PropFlowInto)
	from := caps.Property(PropFlowFrom)

	group := func(name string) *FlowGrouping {
		if fg := out.Get(name); fg != nil {
			return fg
		}
		fg := &FlowGrouping{Name: name}
		out = append(out, fg)
		return fg
	}

	for _, r := range rules {
		for _, d := range r.Declarations.All() {
			if !caps.IsFlowProperty(d.Property) {
				continue
			}
			name := d.Value
			if name == "" {
				name = DefaultFlowName
			}
			switch d.Property {
			case into:
				fg := group(name)
				fg.SourceSelectors = append(fg.SourceSelectors, r.Selector)
			case from:
				fg := group(name)
				fg.RegionSelectors = append(fg.RegionSelectors, r.Selector)
			}
			break
		}
	}
	return out
}
