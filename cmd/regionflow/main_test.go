package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `<style>
#src { flow-into: main }
.region { flow-from: main; width: 100px; height: 20px; font-size: 10px; line-height: 10px }
</style>
<div id="src">Lorem ipsum dolor sit amet. Lorem ipsum dolor sit amet.</div>
<div id="r1" class="region"></div>`

func setup(t *testing.T) (dir, src, cfg string) {
	t.Helper()
	dir = t.TempDir()
	src = filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(src, []byte(document), 0644))
	cfg = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("version: 1\nlayout:\n  fixed_advance: 0.5\nlogging:\n  console:\n    level: none\n"), 0644))
	return dir, src, cfg
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	errWasHandled = false
	return newApp().Run(contextWithEnv(context.Background()), append([]string{appName}, args...))
}

func TestFlowReport(t *testing.T) {
	dir, src, cfg := setup(t)
	dst := filepath.Join(dir, "report.json")
	require.NoError(t, run(t, "-c", cfg, "flow", "--format", "json", src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var got struct {
		Flows []struct {
			Name    string
			Overset bool
			Regions []struct{ Status string }
		}
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Flows, 1)
	assert.Equal(t, "main", got.Flows[0].Name)
	assert.True(t, got.Flows[0].Overset)
	require.Len(t, got.Flows[0].Regions, 1)
	assert.Equal(t, "overset", got.Flows[0].Regions[0].Status)
}

func TestFlowHTML(t *testing.T) {
	dir, src, cfg := setup(t)
	dst := filepath.Join(dir, "out.html")
	require.NoError(t, run(t, "-c", cfg, "flow", src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	out := string(data)
	r1 := out[strings.Index(out, `id="r1"`):]
	assert.Contains(t, r1, "Lorem ipsum dolor")

	// existing destination is kept unless asked otherwise
	assert.ErrorContains(t, run(t, "-c", cfg, "flow", src, dst), "already exists")
	assert.NoError(t, run(t, "-c", cfg, "flow", "--overwrite", src, dst))
}

func TestFlowErrors(t *testing.T) {
	_, src, cfg := setup(t)
	assert.ErrorContains(t, run(t, "-c", cfg, "flow", "--format", "csv", src), "unknown output format")
	assert.ErrorContains(t, run(t, "-c", cfg, "flow"), "no source")
}

func TestDumpConfig(t *testing.T) {
	dir, _, cfg := setup(t)
	dst := filepath.Join(dir, "dump.yaml")
	require.NoError(t, run(t, "-c", cfg, "dumpconfig", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fixed_advance: 0.5")

	def := filepath.Join(dir, "default.yaml")
	require.NoError(t, run(t, "dumpconfig", "--default", def))
	data, err = os.ReadFile(def)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fixed_advance: 0\n")
}
