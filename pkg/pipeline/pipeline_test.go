package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"regionflow/pkg/config"
	"regionflow/pkg/html"
	"regionflow/pkg/regions"
)

const page = `<html><head>
<link rel="stylesheet" href="css/flow.css">
</head><body>
<div id="src">Lorem ipsum dolor sit amet. Lorem ipsum dolor sit amet.</div>
<div id="r1" class="region"></div>
<div id="r2" class="region"></div>
<p id="out"></p>
<script>
document.getElementById("out").textContent = "first empty " + document.getNamedFlows()[0].firstEmptyRegionIndex;
</script>
</body></html>`

const sheet = `#src { flow-into: article }
.region { flow-from: article; width: 100px; height: 20px; font-size: 10px; line-height: 10px }`

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "flow.css"), []byte(sheet), 0644))
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	require.NoError(t, err)
	cfg.Layout.FixedAdvance = 0.5
	return cfg
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t), zaptest.NewLogger(t), writeSite(t), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })

	require.NotNil(t, s.Layout)
	f := s.Polyfill.NamedFlows().NamedItem("article")
	require.NotNil(t, f, "flow from the linked stylesheet")
	assert.False(t, f.Overset())
	assert.Equal(t, "", s.Polyfill.Capabilities().Prefix())

	regs := f.Regions()
	require.Len(t, regs, 2)
	for _, r := range regs {
		assert.Equal(t, regions.StatusFit, s.Polyfill.RegionStatus(r))
	}
	assert.Equal(t, []string{"Lorem ipsum dolor", "sit amet. Lorem"}, s.Layout.LineTexts(regs[0]))
	assert.Contains(t, s.Serialize(), `id="r2"`)
}

func TestOpen_RunScripts(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t), zaptest.NewLogger(t), writeSite(t), Options{RunScripts: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	out := s.Doc.Root.FindFirst(func(n *html.Node) bool { return n.ID() == "out" })
	require.NotNil(t, out)
	assert.Equal(t, "first empty -1", out.TextContent())
}

func TestOpen_MissingDocument(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t), zaptest.NewLogger(t), filepath.Join(t.TempDir(), "absent.html"), Options{})
	assert.ErrorContains(t, err, "loading document")
	assert.Nil(t, s)
}

func TestClose_Twice(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t), zaptest.NewLogger(t), writeSite(t), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
