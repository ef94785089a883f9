package resource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"regionflow/pkg/html"
)

func cssServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.css":
			w.Header().Set("Content-Type", "text/css")
			_, _ = w.Write([]byte(".a { flow-into: f }"))
		case "/img.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_DocumentOrderAndFailures(t *testing.T) {
	srv := cssServer(t)
	doc, err := html.Parse(`<html><head>
		<style>.first { color: red }</style>
		<link rel="stylesheet" href="/a.css">
		<link rel="stylesheet" href="/missing.css">
		<link rel="stylesheet" href="/img.png">
		<link rel="stylesheet" href="data:text/css,.d%20%7B%7D">
		<style>.last { color: blue }</style>
	</head><body></body></html>`)
	require.NoError(t, err)
	doc.BaseURL = srv.URL + "/index.html"

	l := NewLoader(NewFetcher(doc.BaseURL, 0), zaptest.NewLogger(t), 2)
	sheets, err := l.Load(context.Background(), doc)

	assert.Equal(t, []string{
		".first { color: red }",
		".a { flow-into: f }",
		".d {}",
		".last { color: blue }",
	}, sheets)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestLoader_NoStyles(t *testing.T) {
	doc, err := html.Parse(`<p>x</p>`)
	require.NoError(t, err)
	sheets, err := NewLoader(nil, nil, 0).Load(context.Background(), doc)
	assert.NoError(t, err)
	assert.Empty(t, sheets)
}

func TestFetcher_FilesRelativeToBase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "s.css"), []byte("p{}"), 0o644))
	index := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte(`<link rel="stylesheet" href="css/s.css"><p>x</p>`), 0o644))

	f := NewFetcher(index, 0)
	css, err := f.FetchCSS(context.Background(), "css/s.css")
	require.NoError(t, err)
	assert.Equal(t, "p{}", css)

	doc, err := OpenDocument(context.Background(), index, nil)
	require.NoError(t, err)
	assert.Equal(t, index, doc.BaseURL)

	sheets, err := NewLoader(NewFetcher(doc.BaseURL, 0), nil, 0).Load(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"p{}"}, sheets)
}

func TestFetcher_Resolve(t *testing.T) {
	f := NewFetcher("http://x.test/a/index.html", 0)
	assert.Equal(t, "http://x.test/a/s.css", f.Resolve("s.css"))
	assert.Equal(t, "data:,x", f.Resolve("data:,x"))

	body, ct, err := f.Fetch(context.Background(), "data:text/css,p")
	require.NoError(t, err)
	assert.Equal(t, "p", string(body))
	assert.Equal(t, "text/css", ct)
}

func TestOpenDocument_Missing(t *testing.T) {
	_, err := OpenDocument(context.Background(), filepath.Join(t.TempDir(), "nope.html"), nil)
	assert.ErrorContains(t, err, "loading document")
}
