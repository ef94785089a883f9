package css

import (
	"strconv"
	"strings"
)

type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ResolveLength(val, s.GetFontSize(), 0)
}

// ParseLength parses a plain length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// ResolveLength converts px, pt, em, rem and % values to pixels. Percentages
// resolve against percentBase; a zero base makes them unresolvable.
func ResolveLength(val string, fontSize, percentBase float64) (float64, bool) {
	val = strings.TrimSpace(strings.ToLower(val))
	if val == "" || val == "auto" || val == "none" || val == "normal" {
		return 0, false
	}
	unit := ""
	for _, u := range []string{"px", "pt", "rem", "em", "%"} {
		if strings.HasSuffix(val, u) {
			unit = u
			val = strings.TrimSuffix(val, u)
			break
		}
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "pt":
		return num * 4 / 3, true
	case "em":
		return num * fontSize, true
	case "rem":
		return num * DefaultFontSize, true
	case "%":
		if percentBase <= 0 {
			return 0, false
		}
		return num * percentBase / 100, true
	}
	return num, true
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }
func (e BoxEdge) Vertical() float64   { return e.Top + e.Bottom }

// GetMargin returns the margin values for all four sides
func (s *Style) GetMargin() BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero("margin-top"),
		Right:  s.getLengthOrZero("margin-right"),
		Bottom: s.getLengthOrZero("margin-bottom"),
		Left:   s.getLengthOrZero("margin-left"),
	}
}

// GetPadding returns the padding values for all four sides
func (s *Style) GetPadding() BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero("padding-top"),
		Right:  s.getLengthOrZero("padding-right"),
		Bottom: s.getLengthOrZero("padding-bottom"),
		Left:   s.getLengthOrZero("padding-left"),
	}
}

// GetBorderWidth returns the border width for all four sides. Sides with
// border-style none contribute nothing.
func (s *Style) GetBorderWidth() BoxEdge {
	if st, ok := s.Get("border-style"); ok && (st == "none" || st == "hidden") {
		return BoxEdge{}
	}
	return BoxEdge{
		Top:    s.getLengthOrZero("border-top-width"),
		Right:  s.getLengthOrZero("border-right-width"),
		Bottom: s.getLengthOrZero("border-bottom-width"),
		Left:   s.getLengthOrZero("border-left-width"),
	}
}

// getLengthOrZero returns the length value or 0 if not found
func (s *Style) getLengthOrZero(property string) float64 {
	val, ok := s.GetLength(property)
	if !ok {
		return 0
	}
	return val
}

func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	declarations := strings.Split(styleAttr, ";")
	for _, decl := range declarations {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])

		expandShorthand(style, property, value)
	}
	return style
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
	switch property {
	case "margin":
		expandBoxProperty(style, "margin", "", value)
	case "padding":
		expandBoxProperty(style, "padding", "", value)
	case "border-width":
		expandBoxProperty(style, "border", "-width", value)
	case "border":
		expandBorderProperty(style, []string{"top", "right", "bottom", "left"}, value)
	case "border-top", "border-right", "border-bottom", "border-left":
		expandBorderProperty(style, []string{strings.TrimPrefix(property, "border-")}, value)
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands margin/padding shorthand. One to four values,
// in top right bottom left order.
func expandBoxProperty(style *Style, prefix, suffix, value string) {
	parts := strings.Fields(value)
	set := func(side, v string) { style.Set(prefix+"-"+side+suffix, v) }

	switch len(parts) {
	case 1:
		set("top", parts[0])
		set("right", parts[0])
		set("bottom", parts[0])
		set("left", parts[0])
	case 2:
		set("top", parts[0])
		set("bottom", parts[0])
		set("right", parts[1])
		set("left", parts[1])
	case 3:
		set("top", parts[0])
		set("right", parts[1])
		set("left", parts[1])
		set("bottom", parts[2])
	case 4:
		set("top", parts[0])
		set("right", parts[1])
		set("bottom", parts[2])
		set("left", parts[3])
	}
}

// expandBorderProperty expands border shorthand
// Format: "1px solid black" or "2px dotted #FF0000"
func expandBorderProperty(style *Style, sides []string, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case isBorderStyle(part):
			style.Set("border-style", part)
		case isLengthToken(part):
			for _, side := range sides {
				style.Set("border-"+side+"-width", part)
			}
		default:
			style.Set("border-color", part)
		}
	}
}

func isBorderStyle(s string) bool {
	switch s {
	case "none", "hidden", "solid", "dotted", "dashed", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

func isLengthToken(s string) bool {
	switch s {
	case "thin", "medium", "thick":
		return false
	}
	_, ok := ResolveLength(s, DefaultFontSize, 0)
	return ok
}

// DefaultFontSize is the initial font-size in pixels.
const DefaultFontSize = 16.0

// GetFontSize returns the font-size in pixels (default: 16px)
func (s *Style) GetFontSize() float64 {
	if val, ok := s.Get("font-size"); ok {
		if size, ok := ResolveLength(val, DefaultFontSize, 0); ok {
			return size
		}
	}
	return DefaultFontSize
}

// FontWeight represents the font-weight property value
type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

// GetFontWeight returns the font-weight value (default: normal)
func (s *Style) GetFontWeight() FontWeight {
	if weight, ok := s.Get("font-weight"); ok {
		switch weight {
		case "bold", "bolder", "600", "700", "800", "900":
			return FontWeightBold
		}
	}
	return FontWeightNormal
}

// IsItalic reports font-style italic or oblique.
func (s *Style) IsItalic() bool {
	v, _ := s.Get("font-style")
	return v == "italic" || v == "oblique"
}

// IsMonospace reports a monospace font-family.
func (s *Style) IsMonospace() bool {
	v, _ := s.Get("font-family")
	return strings.Contains(strings.ToLower(v), "monospace")
}

// DisplayType represents the display property value
type DisplayType string

const (
	DisplayBlock       DisplayType = "block"
	DisplayInline      DisplayType = "inline"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayNone        DisplayType = "none"
)

// GetDisplay returns the display value. Unknown block-ish values (flex,
// list-item, table, ...) are treated as block.
func (s *Style) GetDisplay() DisplayType {
	display, ok := s.Get("display")
	if !ok {
		return DisplayInline
	}
	switch display {
	case "inline":
		return DisplayInline
	case "inline-block", "inline-flex", "inline-table":
		return DisplayInlineBlock
	case "none":
		return DisplayNone
	}
	return DisplayBlock
}

// GetLineHeight returns the line-height in pixels (default: 1.2 * font-size)
func (s *Style) GetLineHeight() float64 {
	fontSize := s.GetFontSize()
	val, ok := s.Get("line-height")
	if !ok || val == "normal" {
		return fontSize * 1.2
	}
	if factor, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
		return factor * fontSize
	}
	if lh, ok := ResolveLength(val, fontSize, fontSize); ok {
		return lh
	}
	return fontSize * 1.2
}
