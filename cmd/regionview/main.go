package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	cli "github.com/urfave/cli/v3"

	"regionflow/pkg/config"
)

const appName = "regionview"

func main() {
	cmd := &cli.Command{
		Name:      appName,
		Usage:     "shows regions of named flows and relayouts them as the window is resized",
		ArgsUsage: "[SOURCE]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log everything to console"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfiguration(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	log, closeLog := cfg.Logging.Prepare(appName, cmd.Bool("debug"))
	defer closeLog()

	a := app.New()
	w := a.NewWindow(appName)
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)))

	v := newViewer(ctx, cfg, log, w)
	defer v.close()

	// Source bar
	sourceEntry := widget.NewEntry()
	sourceEntry.SetPlaceHolder("path/to/document.html or https://example.com")
	sourceEntry.OnSubmitted = v.open

	topBar := container.NewBorder(nil, nil, nil, nil, sourceEntry)
	content := container.NewBorder(topBar, v.status, nil, nil, container.NewVScroll(v.flows))
	w.SetContent(container.New(&resizeLayout{onResize: v.resized}, content))

	// Keep focus on source entry to prevent Tab freeze with no other focusable widgets
	w.Canvas().Focus(sourceEntry)

	if src := cmd.Args().First(); src != "" {
		sourceEntry.SetText(src)
		v.open(src)
	}
	w.ShowAndRun()
	log.Debug("Viewer closed")
	return nil
}

// resizeLayout stretches its objects over the whole window and reports size
// changes.
type resizeLayout struct {
	last     fyne.Size
	onResize func(fyne.Size)
}

func (l *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(size)
	}
	if size != l.last {
		l.last = size
		l.onResize(size)
	}
}

func (l *resizeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var size fyne.Size
	for _, o := range objects {
		size = size.Max(o.MinSize())
	}
	return size
}
