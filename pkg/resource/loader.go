package resource

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"regionflow/pkg/html"
	stdnet "regionflow/std/net"
)

// Loader gathers the text of every stylesheet of a document: inline <style>
// blocks and linked sheets, in document order.
type Loader struct {
	fetcher     Fetcher
	log         *zap.Logger
	concurrency int
}

// NewLoader creates a loader. A concurrency below one means no limit.
func NewLoader(fetcher Fetcher, log *zap.Logger, concurrency int) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, log: log.Named("style-loader"), concurrency: concurrency}
}

// Load returns once every sheet has been fetched or has failed. Failed
// sheets are left out of the result; their errors are combined in the
// returned error, which does not invalidate the sheets that were loaded.
func (l *Loader) Load(ctx context.Context, doc *html.Document) ([]string, error) {
	texts := make([]string, len(doc.Styles))
	errs := make([]error, len(doc.Styles))

	g, ctx := errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}

	for i, ref := range doc.Styles {
		if ref.Inline {
			texts[i] = ref.Text
			continue
		}
		href := ref.Href
		if href == "" {
			continue
		}
		if doc.BaseURL != "" && !stdnet.IsNetworkURL(href) && !stdnet.IsDataURI(href) && stdnet.IsNetworkURL(doc.BaseURL) {
			href = stdnet.ResolveURL(doc.BaseURL, href)
		}
		if l.fetcher == nil && !stdnet.IsDataURI(href) {
			errs[i] = fmt.Errorf("stylesheet %q: no fetcher", href)
			continue
		}

		g.Go(func() error {
			var (
				text string
				err  error
			)
			if stdnet.IsDataURI(href) {
				var data []byte
				data, _, err = stdnet.ParseDataURI(href)
				text = string(data)
			} else {
				text, err = FetchCSS(ctx, l.fetcher, href)
			}
			if err != nil {
				// a failed sheet never cancels the others
				errs[i] = fmt.Errorf("stylesheet %q: %w", href, err)
				return nil
			}
			texts[i] = text
			l.log.Debug("Stylesheet loaded", zap.String("href", href), zap.Int("bytes", len(text)))
			return nil
		})
	}
	_ = g.Wait()

	sheets := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			sheets = append(sheets, t)
		}
	}

	err := multierr.Combine(errs...)
	if err != nil {
		l.log.Warn("Some stylesheets could not be loaded", zap.Error(err))
	}
	return sheets, err
}
