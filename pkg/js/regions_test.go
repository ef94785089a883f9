package js

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"regionflow/pkg/html"
	"regionflow/pkg/layout"
	"regionflow/pkg/regions"
	"regionflow/pkg/text"
)

const flowDoc = `<style>
#src { -adobe-flow-into: article }
.region { -adobe-flow-from: article; width: 100px; height: 20px; font-size: 10px; line-height: 10px }
</style>
<div id="src">Lorem ipsum dolor sit amet. Lorem ipsum dolor sit amet.</div>
<div id="r1" class="region"></div>
<div id="r2" class="region"></div>`

func newFlowEngine(t *testing.T) (*Engine, *regions.Polyfill, *html.Document) {
	t.Helper()
	doc, err := html.Parse(flowDoc)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	p := regions.New(
		regions.WithMeasurer(layout.NewLayoutEngine(800, 600, layout.WithMetrics(text.FixedMetrics{Advance: 0.5}))),
		regions.WithLogger(log))
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.Init(context.Background(), doc))

	e := New(WithRegions(p), WithLogger(log))
	e.Bind(doc)
	return e, p, doc
}

func run(t *testing.T, e *Engine, src string) {
	t.Helper()
	_, err := e.Run(src)
	require.NoError(t, err)
}

func TestNamedFlowCollection(t *testing.T) {
	e, _, _ := newFlowEngine(t)
	run(t, e, `
		var flows = document.getNamedFlows();
		if (flows.length !== 1) throw new Error("length: " + flows.length);
		if (flows[0].name !== "article") throw new Error("name: " + flows[0].name);
		if (flows.item(0) !== flows[0]) throw new Error("item(0) is a different object");
		if (flows.namedItem("article") !== flows[0]) throw new Error("namedItem");
		if (flows.article !== flows[0]) throw new Error("named property");
		if (flows.namedItem("missing") !== null) throw new Error("missing flow must be null");
		if (flows.item(5) !== null) throw new Error("out of range item must be null");
		if (document.adobeGetNamedFlows()[0] !== flows[0]) throw new Error("prefixed alias");
	`)
}

func TestNamedFlowState(t *testing.T) {
	e, _, _ := newFlowEngine(t)
	run(t, e, `
		var flow = document.getNamedFlows().namedItem("article");
		if (flow.overset !== false) throw new Error("overset: " + flow.overset);
		if (flow.firstEmptyRegionIndex !== -1) throw new Error("firstEmptyRegionIndex: " + flow.firstEmptyRegionIndex);

		var regions = flow.getRegions();
		if (regions.length !== 2) throw new Error("regions: " + regions.length);
		if (regions[0] !== document.getElementById("r1")) throw new Error("first region");

		var content = flow.getContent();
		if (content.length !== 1 || content[0].id !== "src") throw new Error("content");

		var r2 = document.getElementById("r2");
		var byContent = flow.getRegionsByContent(r2.firstChild);
		if (byContent.length !== 1 || byContent[0] !== r2) throw new Error("getRegionsByContent");
	`)
}

func TestRegionOverset(t *testing.T) {
	e, _, _ := newFlowEngine(t)
	run(t, e, `
		var r1 = document.getElementById("r1");
		if (r1.regionOverset !== "fit") throw new Error("regionOverset: " + r1.regionOverset);
		if (r1.adobeRegionOverset !== "fit") throw new Error("adobeRegionOverset: " + r1.adobeRegionOverset);
		if (document.getElementById("src").regionOverset !== undefined) throw new Error("source is not a region");
	`)
}

func TestFlowEventListeners(t *testing.T) {
	e, _, _ := newFlowEngine(t)
	run(t, e, `
		var flow = document.getNamedFlows()[0];
		var calls = 0, lastType = "";
		function onUpdate(ev) {
			calls++;
			lastType = ev.type;
			if (ev.target !== flow) throw new Error("target");
		}
		flow.addEventListener("adoberegionlayoutupdate", onUpdate);
		if (calls !== 1) throw new Error("adding a listener lays out: " + calls);
		if (lastType !== "adoberegionlayoutupdate") throw new Error("type: " + lastType);

		flow.addEventListener("adoberegionlayoutupdate", onUpdate);
		CSSRegions.doLayout();
		if (calls !== 2) throw new Error("duplicate listener or missing pass: " + calls);

		flow.removeEventListener("adoberegionlayoutupdate", onUpdate);
		CSSRegions.doLayout();
		if (calls !== 2) throw new Error("removed listener still called: " + calls);
	`)
}

func TestAddRegionFromScript(t *testing.T) {
	e, p, _ := newFlowEngine(t)
	run(t, e, `
		var r3 = document.createElement("div");
		r3.id = "r3";
		r3.setAttribute("style", "width: 100px; height: 20px; font-size: 10px; line-height: 10px");
		document.getElementById("r2").after(r3);
		CSSRegions.addRegionToNamedFlow("article", r3);
		CSSRegions.doLayout();

		var flow = document.getNamedFlows()[0];
		if (flow.getRegions().length !== 3) throw new Error("regions: " + flow.getRegions().length);
		if (flow.firstEmptyRegionIndex !== 2) throw new Error("firstEmptyRegionIndex: " + flow.firstEmptyRegionIndex);
		if (r3.regionOverset !== "empty") throw new Error("r3: " + r3.regionOverset);
	`)
	assert.Len(t, p.NamedFlows().NamedItem("article").Regions(), 3)
}

func TestInvalidArgumentsThrowTypeError(t *testing.T) {
	e, _, _ := newFlowEngine(t)
	run(t, e, `
		function expectTypeError(fn) {
			try { fn(); } catch (e) {
				if (e instanceof TypeError) return;
				throw e;
			}
			throw new Error("no exception");
		}
		expectTypeError(function() { CSSRegions.addRegionToNamedFlow("article", null); });
		expectTypeError(function() { CSSRegions.addSourceToNamedFlow("article", {}); });
		expectTypeError(function() { document.getNamedFlows()[0].getRegionsByContent(42); });
		expectTypeError(function() { document.getNamedFlows()[0].addEventListener("x", "not a function"); });
	`)
}
