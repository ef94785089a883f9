package resource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"regionflow/pkg/html"
	stdnet "regionflow/std/net"
)

// OpenDocument fetches and parses the document at uri. The document base
// defaults to uri itself; a relative <base href> is resolved against it.
func OpenDocument(ctx context.Context, uri string, fetcher Fetcher) (*html.Document, error) {
	if fetcher == nil {
		fetcher = NewFetcher("", 0)
	}
	body, _, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	doc, err := html.Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	switch {
	case doc.BaseURL == "":
		doc.BaseURL = uri
	case stdnet.IsNetworkURL(uri):
		doc.BaseURL = stdnet.ResolveURL(uri, doc.BaseURL)
	case !stdnet.IsNetworkURL(doc.BaseURL) && !filepath.IsAbs(doc.BaseURL):
		base := filepath.Join(filepath.Dir(uri), doc.BaseURL)
		if strings.HasSuffix(doc.BaseURL, "/") {
			base += string(filepath.Separator)
		}
		doc.BaseURL = base
	}
	return doc, nil
}
