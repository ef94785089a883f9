package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"regionflow/pkg/html"
	"regionflow/pkg/layout"
	"regionflow/pkg/regions"
	"regionflow/pkg/text"
)

const article = `<style>
#src { -adobe-flow-into: article }
.region { -adobe-flow-from: article; width: 100px; height: 20px; font-size: 10px; line-height: 10px }
</style>
<div id="src">Lorem ipsum dolor sit amet. Lorem ipsum dolor sit amet.</div>
<div id="r1" class="region first"></div>
<div id="r2" class="region"></div>
<div id="r3" class="region"></div>`

func laidOut(t *testing.T, markup string) *regions.Polyfill {
	t.Helper()
	doc, err := html.Parse(markup)
	require.NoError(t, err)
	p := regions.New(
		regions.WithMeasurer(layout.NewLayoutEngine(800, 600, layout.WithMetrics(text.FixedMetrics{Advance: 0.5}))),
		regions.WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.Init(context.Background(), doc))
	return p
}

func TestBuild(t *testing.T) {
	r := Build("article.html", laidOut(t, article))

	want := &Report{
		Source: "article.html",
		Prefix: "-adobe-",
		Flows: []Flow{{
			Name:                  "article",
			Overset:               false,
			FirstEmptyRegionIndex: 2,
			Content:               []string{"div#src"},
			Regions: []Region{
				{Element: "div#r1.region.first", Status: "fit"},
				{Element: "div#r2.region", Status: "fit"},
				{Element: "div#r3.region", Status: "empty"},
			},
		}},
	}
	if diff := cmp.Diff(want, r, cmpopts.IgnoreFields(Region{}, "Text")); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	all := r.Flows[0].Regions[0].Text + " " + r.Flows[0].Regions[1].Text
	assert.Equal(t, "Lorem ipsum dolor sit amet. Lorem ipsum dolor sit amet.", strings.Join(strings.Fields(all), " "))
	assert.Empty(t, r.Flows[0].Regions[2].Text)
}

func TestBuild_NoFlows(t *testing.T) {
	r := Build("plain.html", laidOut(t, `<style>p { color: red }</style><p>text</p>`))
	assert.Equal(t, "none", r.Prefix)
	assert.Empty(t, r.Flows)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		node *html.Node
		want string
	}{
		{html.NewElement("p", nil), "p"},
		{html.NewElement("div", map[string]string{"id": "a"}), "div#a"},
		{html.NewElement("section", map[string]string{"id": "a", "class": " x  y "}), "section#a.x.y"},
		{html.NewText("hello"), "#text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.node))
	}
}

func sample() *Report {
	return &Report{
		Source: "doc.html",
		Prefix: "",
		Flows: []Flow{{
			Name:                  "main",
			Overset:               true,
			FirstEmptyRegionIndex: -1,
			Content:               []string{"article#a"},
			Regions:               []Region{{Element: "div#r1", Status: "overset", Text: "Lorem ipsum"}},
		}},
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().Write(&buf, FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	flow := got["flows"].([]any)[0].(map[string]any)
	assert.Equal(t, "main", flow["name"])
	assert.Equal(t, true, flow["overset"])
	assert.EqualValues(t, -1, flow["firstEmptyRegionIndex"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().Write(&buf, FormatYAML))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	if diff := cmp.Diff(sample(), &got); diff != "" {
		t.Errorf("YAML report mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_XML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sample().Write(&buf, FormatXML))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	flow := doc.FindElement("/report/flow[@name='main']")
	require.NotNil(t, flow)
	assert.Equal(t, "true", flow.SelectAttrValue("overset", ""))
	assert.Equal(t, "-1", flow.SelectAttrValue("first-empty-region-index", ""))

	region := flow.SelectElement("region")
	require.NotNil(t, region)
	assert.Equal(t, "overset", region.SelectAttrValue("status", ""))
	assert.Equal(t, "Lorem ipsum", region.Text())
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := sample().Write(&bytes.Buffer{}, Format("csv"))
	assert.ErrorContains(t, err, "csv")
}
