package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Viewport.Width != 1024 || cfg.Viewport.Height != 768 {
		t.Errorf("Default viewport = %vx%v, want 1024x768", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.Measurer.Backend != MeasurerBox {
		t.Errorf("Default backend = %q, want %q", cfg.Measurer.Backend, MeasurerBox)
	}
	if got := cfg.Layout.ResizeDebounce(); got != 200*time.Millisecond {
		t.Errorf("ResizeDebounce() = %v, want 200ms", got)
	}
	want := []string{"-adobe-", "", "-webkit-", "-ms-"}
	if diff := cmp.Diff(want, cfg.Flow.Prefixes); diff != "" {
		t.Errorf("Default prefixes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
viewport:
  width: 600
  height: 400
layout:
  fixed_advance: 0.5
flow:
  prefixes: ["-webkit-"]
fetch:
  concurrency: 1
logging:
  console:
    level: debug
  file:
    level: debug
    destination: /tmp/regionflow-test.log
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Viewport.Width != 600 || cfg.Viewport.Height != 400 {
		t.Errorf("Viewport = %vx%v, want 600x400", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.Layout.FixedAdvance != 0.5 {
		t.Errorf("FixedAdvance = %v, want 0.5", cfg.Layout.FixedAdvance)
	}
	if diff := cmp.Diff([]string{"-webkit-"}, cfg.Flow.Prefixes); diff != "" {
		t.Errorf("Prefixes mismatch (-want +got):\n%s", diff)
	}
	if cfg.Fetch.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Fetch.Concurrency)
	}
	// untouched values keep their defaults
	if cfg.Layout.OverflowTolerance != 1 {
		t.Errorf("OverflowTolerance = %v, want default 1", cfg.Layout.OverflowTolerance)
	}
	if cfg.Fetch.Timeout() != 30*time.Second {
		t.Errorf("Fetch.Timeout() = %v, want 30s", cfg.Fetch.Timeout())
	}
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "version: 1\nbogus: true\n", "decode"},
		{"bad version", "version: 2\n", "validate"},
		{"bad backend", "version: 1\nmeasurer:\n  backend: gpu\n", "validate"},
		{"negative tolerance", "version: 1\nlayout:\n  overflow_tolerance: -1\n", "validate"},
		{"file log without destination", "version: 1\nlogging:\n  file:\n    level: debug\n", "validate"},
		{"fixed advance in browser", "version: 1\nmeasurer:\n  backend: browser\nlayout:\n  fixed_advance: 0.5\n", "browser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfiguration() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfiguration() expected error for missing file")
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "backend: box") {
		t.Errorf("Prepare() output does not hold defaults:\n%s", data)
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	dumped, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	// dumped configuration loads back into the same values
	var back Config
	if err := yaml.Unmarshal(dumped, &back); err != nil {
		t.Fatalf("Unmarshal dumped configuration: %v", err)
	}
	if diff := cmp.Diff(*cfg, back); diff != "" {
		t.Errorf("Dump() round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggingPrepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "logs", "regionflow.log")
	conf := LoggingConfig{
		ConsoleLogger: ConsoleLoggerConfig{Level: "none"},
		FileLogger:    FileLoggerConfig{Level: "normal", Destination: dest, MaxSizeMB: 1},
	}
	log, closer := conf.Prepare("regionflow", false)
	log.Debug("not written")
	log.Info("written")
	if err := closer(); err != nil {
		t.Fatalf("closer() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written") || strings.Contains(string(data), "not written") {
		t.Errorf("unexpected log content:\n%s", data)
	}
	if !strings.Contains(string(data), `"logger":"regionflow"`) {
		t.Errorf("log entries are not named:\n%s", data)
	}
}
