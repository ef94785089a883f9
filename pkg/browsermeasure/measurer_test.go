package browsermeasure

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"regionflow/pkg/html"
)

func TestProbeMarkup(t *testing.T) {
	doc, err := html.Parse(`<html><head><title>x</title></head><body><div id="a"><p id="b">text</p></div></body></html>`)
	require.NoError(t, err)
	b := doc.Root.FindFirst(func(n *html.Node) bool { return n.ID() == "b" })

	m := &Measurer{}
	m.SetStylesheets([]string{"p { color: red }"})
	got := m.probeMarkup(b)

	assert.Equal(t, `<head><style>p { color: red }</style></head><body><div id="a"><p data-regionflow-probe="" id="b">text</p></div></body>`, got)
	_, marked := b.GetAttribute(probeAttr)
	assert.False(t, marked, "the probe marker is removed again")
}

func TestProbeMarkup_DetachedNode(t *testing.T) {
	n := html.NewElement("div", nil)
	n.AppendText("loose")
	m := &Measurer{}
	assert.Equal(t, `<head></head><body>loose</body>`, m.probeMarkup(n))
}

func findBrowser() string {
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func TestMeasurer_Browser(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a browser")
	}
	path := findBrowser()
	if path == "" {
		t.Skip("no Chrome or Chromium found")
	}

	m, err := New(context.Background(), WithExecPath(path), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	doc, err := html.Parse(`<body>
		<div id="box" style="width: 120px; height: 20px; font-size: 10px; line-height: 10px">one two three four five six seven eight nine ten eleven twelve</div>
		<span id="hidden" style="display: none">x</span>
	</body>`)
	require.NoError(t, err)
	byID := func(id string) *html.Node {
		return doc.Root.FindFirst(func(n *html.Node) bool { return n.ID() == id })
	}

	w, h := m.BoxSize(byID("box"))
	assert.Equal(t, 120.0, w)
	assert.Equal(t, 20.0, h)
	assert.True(t, m.Overflows(byID("box")))
	assert.Equal(t, "none", m.Display(byID("hidden")))
	assert.NoError(t, m.Err())
}
