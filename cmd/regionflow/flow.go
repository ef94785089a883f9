package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"regionflow/pkg/pipeline"
	"regionflow/pkg/report"
)

const formatHTML = "html"

func runFlow(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errors.New("no source specified")
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	format := cmd.String("format")
	if format != formatHTML && !slices.Contains(report.Formats(), format) {
		return fmt.Errorf("unknown output format %q", format)
	}

	cfg := *env.Cfg
	if w := cmd.Float("width"); w > 0 {
		cfg.Viewport.Width = w
	}
	if h := cmd.Float("height"); h > 0 {
		cfg.Viewport.Height = h
	}

	s, err := pipeline.Open(ctx, &cfg, env.Log, src, pipeline.Options{RunScripts: cmd.Bool("scripts")})
	if err != nil {
		return fmt.Errorf("unable to lay out '%s': %w", src, err)
	}
	defer func() {
		err = multierr.Append(err, s.Close())
	}()

	for _, f := range s.Polyfill.NamedFlows().All() {
		env.Log.Info("Named flow laid out",
			zap.String("flow", f.Name()),
			zap.Int("regions", len(f.Regions())),
			zap.Bool("overset", f.Overset()),
			zap.Int("first empty", f.FirstEmptyRegionIndex()))
	}

	out, closeOut, err := createOutput(dst, cmd.Bool("overwrite"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeOut())
	}()

	if format == formatHTML {
		if _, err := io.WriteString(out, s.Serialize()); err != nil {
			return fmt.Errorf("unable to write document: %w", err)
		}
		return nil
	}
	if err := report.Build(src, s.Polyfill).Write(out, report.Format(format)); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

// createOutput opens fname for writing, STDOUT when fname is empty.
func createOutput(fname string, overwrite bool) (io.Writer, func() error, error) {
	if len(fname) == 0 {
		return os.Stdout, func() error { return nil }, nil
	}
	if !overwrite {
		if _, err := os.Stat(fname); err == nil {
			return nil, nil, fmt.Errorf("destination '%s' already exists", fname)
		}
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	return f, f.Close, nil
}
