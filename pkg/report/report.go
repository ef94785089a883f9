// Package report describes the state of every named flow after layout and
// writes it as JSON, YAML or XML.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	json "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"regionflow/pkg/html"
	"regionflow/pkg/regions"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// Formats lists supported report formats.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatXML)}
}

type Region struct {
	Element string `json:"element" yaml:"element"`
	Status  string `json:"status" yaml:"status"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
}

type Flow struct {
	Name                  string   `json:"name" yaml:"name"`
	Overset               bool     `json:"overset" yaml:"overset"`
	FirstEmptyRegionIndex int      `json:"firstEmptyRegionIndex" yaml:"first_empty_region_index"`
	Content               []string `json:"content" yaml:"content"`
	Regions               []Region `json:"regions" yaml:"regions"`
}

type Report struct {
	Source string `json:"source" yaml:"source"`
	// Prefix of the flow properties the document uses, "none" when it
	// declares no flows.
	Prefix string `json:"prefix" yaml:"prefix"`
	Flows  []Flow `json:"flows" yaml:"flows"`
}

// Build captures the current state of p. Run it after a layout pass.
func Build(source string, p *regions.Polyfill) *Report {
	r := &Report{Source: source, Prefix: "none", Flows: []Flow{}}
	flows := p.NamedFlows()
	if flows.Len() > 0 {
		r.Prefix = p.Capabilities().Prefix()
	}
	for _, f := range flows.All() {
		fl := Flow{
			Name:                  f.Name(),
			Overset:               f.Overset(),
			FirstEmptyRegionIndex: f.FirstEmptyRegionIndex(),
			Content:               []string{},
			Regions:               []Region{},
		}
		for _, n := range f.Content() {
			fl.Content = append(fl.Content, Describe(n))
		}
		for _, n := range f.Regions() {
			fl.Regions = append(fl.Regions, Region{
				Element: Describe(n),
				Status:  string(p.RegionStatus(n)),
				Text:    strings.Join(strings.Fields(n.TextContent()), " "),
			})
		}
		r.Flows = append(r.Flows, fl)
	}
	return r
}

// Describe renders n as a short selector: tag, id and classes.
func Describe(n *html.Node) string {
	if n.Type == html.TextNode {
		return "#text"
	}
	var sb strings.Builder
	sb.WriteString(n.TagName)
	if id := n.ID(); id != "" {
		sb.WriteString("#" + id)
	}
	if class, ok := n.GetAttribute("class"); ok {
		for _, c := range strings.Fields(class) {
			sb.WriteString("." + c)
		}
	}
	return sb.String()
}

// Write encodes r to w in the requested format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatXML:
		doc := r.xml()
		doc.Indent(2)
		_, err := doc.WriteTo(w)
		return err
	}
	return fmt.Errorf("unsupported report format %q", format)
}

func (r *Report) xml() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("report")
	root.CreateAttr("source", r.Source)
	root.CreateAttr("prefix", r.Prefix)
	for _, f := range r.Flows {
		flow := root.CreateElement("flow")
		flow.CreateAttr("name", f.Name)
		flow.CreateAttr("overset", strconv.FormatBool(f.Overset))
		flow.CreateAttr("first-empty-region-index", strconv.Itoa(f.FirstEmptyRegionIndex))
		for _, c := range f.Content {
			flow.CreateElement("content").CreateAttr("element", c)
		}
		for _, reg := range f.Regions {
			region := flow.CreateElement("region")
			region.CreateAttr("element", reg.Element)
			region.CreateAttr("status", reg.Status)
			if reg.Text != "" {
				region.SetText(reg.Text)
			}
		}
	}
	return doc
}
