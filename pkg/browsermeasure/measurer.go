// Package browsermeasure measures region boxes in a headless Chrome driven
// through the DevTools protocol. It is an alternative to the built-in box
// layout when the flowed content needs a real browser's line breaking.
package browsermeasure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"regionflow/pkg/html"
)

const (
	DefaultTimeout = 10 * time.Second

	probeAttr = "data-regionflow-probe"

	// overflowTolerance absorbs sub-pixel rounding of scroll sizes.
	overflowTolerance = 1
)

// Measurer answers box queries by loading the current state of the document
// into the browser page. Queries never fail: a failed query is logged,
// answered with zero values and remembered for Err.
type Measurer struct {
	log      *zap.Logger
	execPath string
	timeout  time.Duration
	width    int64
	height   int64

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu     sync.Mutex
	sheets []string
	err    error
}

type Option func(*Measurer)

// WithExecPath selects the browser binary; empty means chromedp's lookup.
func WithExecPath(path string) Option {
	return func(m *Measurer) { m.execPath = path }
}

func WithViewport(width, height float64) Option {
	return func(m *Measurer) { m.width, m.height = int64(width), int64(height) }
}

// WithTimeout bounds every single query.
func WithTimeout(d time.Duration) Option {
	return func(m *Measurer) { m.timeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Measurer) { m.log = log }
}

// New starts a headless browser. It lives until Close or until ctx is done.
func New(ctx context.Context, opts ...Option) (*Measurer, error) {
	m := &Measurer{timeout: DefaultTimeout, width: 1024, height: 768}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	m.log = m.log.Named("browser-measure")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(int(m.width), int(m.height)),
	)
	if m.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(m.execPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	bctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(m.log.Sugar().Debugf),
		chromedp.WithErrorf(m.log.Sugar().Warnf))
	m.ctx, m.cancel, m.allocCancel = bctx, cancel, allocCancel

	if err := chromedp.Run(bctx, chromedp.Navigate("about:blank"), m.viewportAction()); err != nil {
		m.Close()
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	m.log.Debug("Browser ready", zap.Int64("width", m.width), zap.Int64("height", m.height))
	return m, nil
}

func (m *Measurer) viewportAction() chromedp.Action {
	return emulation.SetDeviceMetricsOverride(m.width, m.height, 1, false)
}

// SetStylesheets sets the style text applied to every probe.
func (m *Measurer) SetStylesheets(sheets []string) {
	m.mu.Lock()
	m.sheets = append([]string(nil), sheets...)
	m.mu.Unlock()
}

// SetViewport resizes the emulated viewport.
func (m *Measurer) SetViewport(width, height float64) {
	m.mu.Lock()
	m.width, m.height = int64(width), int64(height)
	action := m.viewportAction()
	m.mu.Unlock()
	if err := m.run(action); err != nil {
		m.record("viewport", err)
	}
}

// box is what a probe reports about the marked element.
type box struct {
	Display      string  `json:"display"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
}

const probeScript = `(() => {
	document.documentElement.innerHTML = %s;
	const el = document.querySelector('[%s]');
	if (!el) return {display: "none"};
	const r = el.getBoundingClientRect();
	return {
		display: getComputedStyle(el).display,
		width: r.width,
		height: r.height,
		scrollHeight: el.scrollHeight,
		clientHeight: el.clientHeight,
	};
})()`

func (m *Measurer) probe(n *html.Node) box {
	markup := m.probeMarkup(n)
	literal, err := json.MarshalToString(markup)
	if err != nil {
		m.record("encode", err)
		return box{}
	}
	var b box
	if err := m.run(chromedp.Evaluate(fmt.Sprintf(probeScript, literal, probeAttr), &b)); err != nil {
		m.record("probe", err)
		return box{}
	}
	return b
}

// probeMarkup serializes the document holding n, with n marked and the
// loaded stylesheets in the head.
func (m *Measurer) probeMarkup(n *html.Node) string {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	body := root.FindFirst(func(c *html.Node) bool {
		return c.Type == html.ElementNode && c.TagName == "body"
	})
	if body == nil {
		body = root
	}

	prev, had := n.GetAttribute(probeAttr)
	n.SetAttribute(probeAttr, "")
	defer func() {
		if had {
			n.SetAttribute(probeAttr, prev)
		} else {
			n.RemoveAttribute(probeAttr)
		}
	}()

	m.mu.Lock()
	sheets := m.sheets
	m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("<head>")
	for _, s := range sheets {
		sb.WriteString("<style>")
		sb.WriteString(s)
		sb.WriteString("</style>")
	}
	sb.WriteString("</head><body>")
	sb.WriteString(body.Serialize())
	sb.WriteString("</body>")
	return sb.String()
}

func (m *Measurer) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (m *Measurer) record(op string, err error) {
	m.log.Warn("Browser query failed", zap.String("op", op), zap.Error(err))
	m.mu.Lock()
	multierr.AppendInto(&m.err, fmt.Errorf("%s: %w", op, err))
	m.mu.Unlock()
}

// Display returns the computed display of n.
func (m *Measurer) Display(n *html.Node) string {
	if n.Type != html.ElementNode {
		return "inline"
	}
	return m.probe(n).Display
}

// BoxSize returns the border box of n.
func (m *Measurer) BoxSize(n *html.Node) (float64, float64) {
	b := m.probe(n)
	return b.Width, b.Height
}

// Overflows reports whether the content of region is taller than its box.
func (m *Measurer) Overflows(region *html.Node) bool {
	b := m.probe(region)
	return b.ScrollHeight-b.ClientHeight > overflowTolerance
}

// Err returns the combined errors of all failed queries so far.
func (m *Measurer) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Close shuts the browser down and returns Err.
func (m *Measurer) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
	err := m.Err()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
