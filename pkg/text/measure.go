// Package text measures words for line breaking. FaceMetrics measures with
// real font outlines; FixedMetrics gives every rune the same advance, which
// keeps layouts reproducible in tests.
package text

import (
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontStyle selects a face and its size in pixels.
type FontStyle struct {
	Size   float64
	Bold   bool
	Italic bool
	Mono   bool
}

// Metrics measures the advance width of a run of text.
type Metrics interface {
	Width(s string, style FontStyle) float64
}

// FixedMetrics advances every rune by Advance * font size.
type FixedMetrics struct {
	Advance float64
}

func (m FixedMetrics) Width(s string, style FontStyle) float64 {
	return float64(utf8.RuneCountInString(s)) * m.Advance * style.Size
}

// FontConfig holds paths to font files used for text measurement. Empty
// paths fall back to the embedded Go fonts.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
	MonoBold   string
}

// FontPath returns the font path for the given style combination.
func (fc FontConfig) FontPath(bold, italic, mono bool) string {
	if mono {
		if bold && fc.MonoBold != "" {
			return fc.MonoBold
		}
		if fc.Monospace != "" {
			return fc.Monospace
		}
		// fall through to proportional if no mono font configured
	}
	if bold && italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if bold {
		return fc.Bold
	}
	if italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

type faceKey struct {
	variant string
	size    float64
}

// FaceMetrics measures text with opentype faces, cached per style.
type FaceMetrics struct {
	cfg FontConfig
	log *zap.Logger

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

func NewFaceMetrics(cfg FontConfig, log *zap.Logger) *FaceMetrics {
	if log == nil {
		log = zap.NewNop()
	}
	return &FaceMetrics{
		cfg:   cfg,
		log:   log.Named("fonts"),
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

func (m *FaceMetrics) Width(s string, style FontStyle) float64 {
	if s == "" || style.Size <= 0 {
		return 0
	}
	face := m.face(style)
	if face == nil {
		// basicfont is 7px wide at 13px
		adv := font.MeasureString(basicfont.Face7x13, s)
		return fixedToFloat(adv) * style.Size / 13
	}
	return fixedToFloat(font.MeasureString(face, s))
}

// Close releases cached faces.
func (m *FaceMetrics) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, f := range m.faces {
		if f == nil {
			delete(m.faces, k)
			continue
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing face %s: %w", k.variant, err)
		}
		delete(m.faces, k)
	}
	return nil
}

func (m *FaceMetrics) face(style FontStyle) font.Face {
	variant := variantName(style)
	key := faceKey{variant: variant, size: style.Size}

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[key]; ok {
		return f
	}

	fnt, err := m.loadFont(variant, style)
	if err != nil {
		m.log.Warn("Unable to load font, using fallback", zap.String("variant", variant), zap.Error(err))
		m.faces[key] = nil
		return nil
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    style.Size,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingNone,
	})
	if err != nil {
		m.log.Warn("Unable to create face, using fallback", zap.String("variant", variant), zap.Error(err))
		m.faces[key] = nil
		return nil
	}
	m.faces[key] = face
	return face
}

func (m *FaceMetrics) loadFont(variant string, style FontStyle) (*opentype.Font, error) {
	if f, ok := m.fonts[variant]; ok {
		return f, nil
	}

	data := embedded(style)
	if path := m.cfg.FontPath(style.Bold, style.Italic, style.Mono); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading font %q: %w", path, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", variant, err)
	}
	m.fonts[variant] = f
	return f, nil
}

func variantName(style FontStyle) string {
	switch {
	case style.Mono && style.Bold:
		return "mono-bold"
	case style.Mono:
		return "mono"
	case style.Bold && style.Italic:
		return "bold-italic"
	case style.Bold:
		return "bold"
	case style.Italic:
		return "italic"
	}
	return "regular"
}

func embedded(style FontStyle) []byte {
	switch variantName(style) {
	case "mono-bold":
		return gomonobold.TTF
	case "mono":
		return gomono.TTF
	case "bold-italic":
		return gobolditalic.TTF
	case "bold":
		return gobold.TTF
	case "italic":
		return goitalic.TTF
	}
	return goregular.TTF
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
