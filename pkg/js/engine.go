// Package js runs document scripts in a goja runtime with a small DOM and,
// when bound to a regions.Polyfill, the named flow object model.
package js

import (
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"regionflow/pkg/html"
	"regionflow/pkg/regions"
)

// Engine executes JavaScript against an HTML document's DOM. It is not safe
// for concurrent use.
type Engine struct {
	vm   *goja.Runtime
	log  *zap.Logger
	poly *regions.Polyfill
	dom  *domContext
}

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRegions exposes the flows of p to scripts. p must have been
// initialized with the document later passed to Execute.
func WithRegions(p *regions.Polyfill) Option {
	return func(e *Engine) { e.poly = p }
}

// New creates a new JS engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	e := &Engine{vm: goja.New()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	e.log = e.log.Named("js")
	registerConsole(e.vm, e.log.Named("console"))
	return e
}

// Bind installs the globals for doc without running its scripts.
func (e *Engine) Bind(doc *html.Document) {
	e.dom = newDOMContext(e.vm, doc, e.log)
	docObj := registerDocument(e.dom)
	if e.poly != nil {
		e.dom.flows = registerFlows(e.dom, docObj, e.poly)
	}
}

// Execute binds doc and runs its scripts in document order. It stops at the
// first script that throws.
func (e *Engine) Execute(doc *html.Document) error {
	e.Bind(doc)
	for i, script := range doc.Scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	e.log.Debug("Scripts executed", zap.Int("count", len(doc.Scripts)))
	return nil
}

// Run evaluates src against the bound document.
func (e *Engine) Run(src string) (goja.Value, error) {
	if e.dom == nil {
		return nil, fmt.Errorf("no document bound")
	}
	return e.vm.RunString(src)
}
