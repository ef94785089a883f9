package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("p{}"))
	}))
	t.Cleanup(srv.Close)

	body, ct, err := Fetch(context.Background(), srv.URL+"/a.css")
	require.NoError(t, err)
	assert.Equal(t, "p{}", string(body))
	assert.Equal(t, "text/css", ct)

	_, _, err = Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestFetch_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "http://x.test/css/a.css", ResolveURL("http://x.test/index.html", "css/a.css"))
	assert.Equal(t, "https://y.test/b.css", ResolveURL("http://x.test/", "https://y.test/b.css"))
}

func TestParseDataURI(t *testing.T) {
	data, mt, err := ParseDataURI("data:text/css,p%20%7B%20color%3A%20red%20%7D")
	require.NoError(t, err)
	assert.Equal(t, "text/css", mt)
	assert.Equal(t, "p { color: red }", string(data))

	data, mt, err = ParseDataURI("data:;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)
	assert.Equal(t, "hi", string(data))

	_, _, err = ParseDataURI("data:text/css")
	assert.Error(t, err)
	_, _, err = ParseDataURI("http://x")
	assert.Error(t, err)
}
