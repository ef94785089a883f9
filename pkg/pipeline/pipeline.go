// Package pipeline assembles a flowed document from configuration: it
// fetches the document, builds the configured measurer and runs the first
// layout pass.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"regionflow/pkg/browsermeasure"
	"regionflow/pkg/config"
	"regionflow/pkg/html"
	"regionflow/pkg/images"
	"regionflow/pkg/js"
	"regionflow/pkg/layout"
	"regionflow/pkg/regions"
	"regionflow/pkg/resource"
	"regionflow/pkg/text"
)

// Session is one document with its flows laid out.
type Session struct {
	Source   string
	Doc      *html.Document
	Polyfill *regions.Polyfill
	// Layout is nil when the browser measurer is used.
	Layout *layout.LayoutEngine

	log     *zap.Logger
	closers []func() error
}

type Options struct {
	// RunScripts executes the document scripts after the first pass and
	// lays out again.
	RunScripts bool
}

// Open loads source, a file path or an http(s) URL, and lays out its flows.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger, source string, opts Options) (s *Session, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	s = &Session{Source: source, log: log}
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.Close())
			s = nil
		}
	}()

	fetcher := resource.NewFetcher(source, cfg.Fetch.Timeout())
	if s.Doc, err = resource.OpenDocument(ctx, source, fetcher); err != nil {
		return s, err
	}
	log.Debug("Document loaded", zap.String("source", source), zap.Int("styles", len(s.Doc.Styles)), zap.Int("scripts", len(s.Doc.Scripts)))

	measurer, err := s.measurer(ctx, cfg, fetcher)
	if err != nil {
		return s, err
	}

	s.Polyfill = regions.New(
		regions.WithLoader(resource.NewLoader(fetcher, log, cfg.Fetch.Concurrency)),
		regions.WithMeasurer(measurer),
		regions.WithPrefixes(cfg.Flow.Prefixes),
		regions.WithResizeDelay(cfg.Layout.ResizeDebounce()),
		regions.WithLogger(log))
	s.closers = append(s.closers, s.Polyfill.Close)

	if err = s.Polyfill.Init(ctx, s.Doc); err != nil {
		return s, fmt.Errorf("initializing flows: %w", err)
	}

	if opts.RunScripts && len(s.Doc.Scripts) > 0 {
		engine := js.New(js.WithRegions(s.Polyfill), js.WithLogger(log))
		if err := engine.Execute(s.Doc); err != nil {
			// the document stays usable with whatever the scripts did so far
			log.Warn("Document script failed", zap.Error(err))
		}
		if s.Polyfill.NamedFlows().Len() > 0 {
			s.Polyfill.DoLayout()
		}
	}
	return s, nil
}

func (s *Session) measurer(ctx context.Context, cfg *config.Config, fetcher *resource.DefaultFetcher) (regions.Measurer, error) {
	switch cfg.Measurer.Backend {
	case config.MeasurerBrowser:
		m, err := browsermeasure.New(ctx,
			browsermeasure.WithExecPath(cfg.Measurer.ExecPath),
			browsermeasure.WithViewport(cfg.Viewport.Width, cfg.Viewport.Height),
			browsermeasure.WithTimeout(cfg.Measurer.Timeout()),
			browsermeasure.WithLogger(s.log))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, m.Close)
		return m, nil
	}

	var metrics text.Metrics
	if cfg.Layout.FixedAdvance > 0 {
		metrics = text.FixedMetrics{Advance: cfg.Layout.FixedAdvance}
	} else {
		fm := text.NewFaceMetrics(cfg.Layout.FontConfig(), s.log)
		s.closers = append(s.closers, fm.Close)
		metrics = fm
	}
	imgs := images.NewCache(func(uri string) ([]byte, error) {
		return fetcher.FetchImage(ctx, uri)
	})
	s.Layout = layout.NewLayoutEngine(cfg.Viewport.Width, cfg.Viewport.Height,
		layout.WithMetrics(metrics),
		layout.WithImages(imgs),
		layout.WithTolerance(cfg.Layout.OverflowTolerance),
		layout.WithLogger(s.log))
	return s.Layout, nil
}

// Serialize returns the markup of the document as it is now.
func (s *Session) Serialize() string {
	return s.Doc.Root.Serialize()
}

// Close releases the measurer and stops pending reflows. It may be called
// more than once.
func (s *Session) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	s.closers = nil
	return err
}
