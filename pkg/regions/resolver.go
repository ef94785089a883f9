package regions

import (
	"go.uber.org/zap"

	"regionflow/pkg/css"
	"regionflow/pkg/html"
)

// Resolver turns selector lists into document nodes.
type Resolver struct {
	doc *html.Document
	log *zap.Logger
}

func NewResolver(doc *html.Document, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{doc: doc, log: log}
}

// Resolve returns the elements of the body matched by any of the selectors,
// in document order and without duplicates. Selectors that do not parse are
// skipped.
func (r *Resolver) Resolve(selectors []string) []*html.Node {
	body := r.doc.Body()
	matched := make(map[*html.Node]bool)
	for _, sel := range selectors {
		nodes, err := css.QueryAll(r.doc.Root, sel)
		if err != nil {
			r.log.Debug("Skipping selector", zap.String("selector", sel), zap.Error(err))
			continue
		}
		for _, n := range nodes {
			matched[n] = true
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return body.Collect(func(n *html.Node) html.FilterResult {
		if matched[n] {
			return html.FilterAccept
		}
		return html.FilterSkip
	})
}
