package regions

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"regionflow/pkg/cssrules"
)

// DefaultPrefixes is the probing order used to find which spelling of the
// flow properties a document uses.
var DefaultPrefixes = []string{"-adobe-", "", "-webkit-", "-ms-"}

// Logical names resolved through Capabilities.
const (
	PropFlow     = "flow"
	PropFlowInto = "flow-into"
	PropFlowFrom = "flow-from"

	OMNamedFlows    = "getNamedFlows"
	OMRegionOverset = "regionOverset"

	EventRegionLayoutUpdate = "regionlayoutupdate"
)

// Capabilities maps logical property, object-model and event names to the
// concrete names in use. The prefix is chosen once, by probing the
// declared property names in prefix order, and cached.
type Capabilities struct {
	prefixes []string
	declared map[string]bool

	once   sync.Once
	prefix string
}

// NewCapabilities records the property names declared by rules, nested
// rules included. A nil prefix list means DefaultPrefixes.
func NewCapabilities(prefixes []string, rules []*cssrules.Rule) *Capabilities {
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}
	c := &Capabilities{
		prefixes: prefixes,
		declared: make(map[string]bool),
	}
	var record func([]*cssrules.Rule)
	record = func(rs []*cssrules.Rule) {
		for _, r := range rs {
			for _, d := range r.Declarations.All() {
				c.declared[d.Property] = true
			}
			record(r.Nested)
		}
	}
	record(rules)
	return c
}

// Prefix returns the CSS prefix of the flow properties: the first probed
// prefix with a declared flow-into or flow-from, else the first prefix.
func (c *Capabilities) Prefix() string {
	c.once.Do(func() {
		for _, p := range c.prefixes {
			if c.declared[p+PropFlowInto] || c.declared[p+PropFlowFrom] {
				c.prefix = p
				return
			}
		}
		if len(c.prefixes) > 0 {
			c.prefix = c.prefixes[0]
		}
	})
	return c.prefix
}

// Property returns the concrete CSS property name for a logical one.
func (c *Capabilities) Property(logical string) string {
	return c.Prefix() + logical
}

// IsFlowProperty reports whether a declared property belongs to the flow
// family under the resolved prefix.
func (c *Capabilities) IsFlowProperty(property string) bool {
	return strings.HasPrefix(property, c.Property(PropFlow))
}

func (c *Capabilities) omPrefix() string {
	return strings.Trim(c.Prefix(), "-")
}

// OMName returns the prefixed object-model name, "adobeRegionOverset" for
// "regionOverset" under -adobe-. Without a prefix the name is unchanged.
func (c *Capabilities) OMName(logical string) string {
	p := c.omPrefix()
	if p == "" || logical == "" {
		return logical
	}
	r, size := utf8.DecodeRuneInString(logical)
	return p + string(unicode.ToUpper(r)) + logical[size:]
}

// EventName returns the prefixed event type.
func (c *Capabilities) EventName(logical string) string {
	return c.omPrefix() + logical
}
