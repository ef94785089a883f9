package main

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"regionflow/pkg/config"
	"regionflow/pkg/pipeline"
	"regionflow/pkg/regions"
	"regionflow/pkg/report"
)

// regionView is what is shown for a region after a pass.
type regionView struct {
	title  string
	status regions.RegionStatus
	lines  []string
}

type flowView struct {
	name    string
	overset bool
	regions []regionView
}

// viewer owns the session on the UI goroutine. Layout passes run on other
// goroutines and hand snapshots over with fyne.Do.
type viewer struct {
	ctx    context.Context
	cfg    *config.Config
	log    *zap.Logger
	win    fyne.Window
	status *widget.Label
	flows  *fyne.Container

	session *pipeline.Session
	cards   map[string]*widget.Card
}

func newViewer(ctx context.Context, cfg *config.Config, log *zap.Logger, win fyne.Window) *viewer {
	return &viewer{
		ctx:    ctx,
		cfg:    cfg,
		log:    log,
		win:    win,
		status: widget.NewLabel("Enter a file or URL and press Enter"),
		flows:  container.NewVBox(),
		cards:  make(map[string]*widget.Card),
	}
}

func (v *viewer) open(source string) {
	v.status.SetText("Loading " + source + "...")
	go func() {
		s, err := pipeline.Open(v.ctx, v.cfg, v.log, source, pipeline.Options{RunScripts: true})
		if err != nil {
			v.log.Warn("Unable to open document", zap.String("source", source), zap.Error(err))
			fyne.Do(func() { v.status.SetText("Error: " + err.Error()) })
			return
		}
		fyne.Do(func() {
			v.close()
			v.session = s
			v.flows.RemoveAll()
			clear(v.cards)
			v.win.SetTitle(fmt.Sprintf("%s - %s", appName, source))
			if s.Polyfill.NamedFlows().Len() == 0 {
				v.status.SetText(source + ": no named flows")
				return
			}
			v.status.SetText(source)
		})
		v.watch(s)
	}()
}

// watch subscribes to every flow of s. Subscribing lays out, so the first
// snapshots arrive right away.
func (v *viewer) watch(s *pipeline.Session) {
	for _, f := range s.Polyfill.NamedFlows().All() {
		f.AddEventListener(regions.EventRegionLayoutUpdate, func(regions.Event) {
			fv := snapshot(s, f)
			fyne.Do(func() {
				if v.session == s {
					v.show(fv)
				}
			})
		})
	}
}

func snapshot(s *pipeline.Session, f *regions.NamedFlow) flowView {
	fv := flowView{name: f.Name(), overset: f.Overset()}
	for _, n := range f.Regions() {
		rv := regionView{title: report.Describe(n), status: s.Polyfill.RegionStatus(n)}
		if s.Layout != nil {
			rv.lines = s.Layout.LineTexts(n)
		} else if text := strings.Join(strings.Fields(n.TextContent()), " "); text != "" {
			rv.lines = []string{text}
		}
		fv.regions = append(fv.regions, rv)
	}
	return fv
}

func (v *viewer) show(fv flowView) {
	subtitle := "fits"
	if fv.overset {
		subtitle = "overset"
	}
	boxes := container.NewVBox()
	for _, r := range fv.regions {
		status := string(r.status)
		if status == "" {
			status = "not laid out"
		}
		boxes.Add(widget.NewCard(r.title, status, widget.NewLabel(strings.Join(r.lines, "\n"))))
	}

	card, ok := v.cards[fv.name]
	if !ok {
		card = widget.NewCard(fv.name, subtitle, boxes)
		v.cards[fv.name] = card
		v.flows.Add(card)
		return
	}
	card.SetSubTitle(subtitle)
	card.SetContent(boxes)
}

func (v *viewer) resized(size fyne.Size) {
	if v.session == nil {
		return
	}
	v.log.Debug("Window resized", zap.Float32("width", size.Width), zap.Float32("height", size.Height))
	v.session.Polyfill.Resize(float64(size.Width), float64(size.Height))
}

func (v *viewer) close() {
	if v.session == nil {
		return
	}
	if err := v.session.Close(); err != nil {
		v.log.Warn("Unable to close document", zap.Error(err))
	}
	v.session = nil
}
