package html

import "testing"

func TestParser_SingleElement(t *testing.T) {
	doc, err := Parse("<div></div>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 1 {
		t.Errorf("expected 1 child, got %d", len(doc.Root.Children))
	}
	if doc.Root.Children[0].TagName != "div" {
		t.Errorf("expected tag 'div', got '%s'", doc.Root.Children[0].TagName)
	}
}

func TestParser_MultipleElements(t *testing.T) {
	doc, err := Parse("<div></div><p></p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(doc.Root.Children))
	}
}

func TestParser_WithAttributes(t *testing.T) {
	doc, err := Parse(`<div style="color: red"></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	style, ok := doc.Root.Children[0].GetAttribute("style")
	if !ok || style != "color: red" {
		t.Error("expected style attribute 'color: red'")
	}
}

// Phase 2 tests: Nested elements
func TestParser_NestedElements(t *testing.T) {
	doc, err := Parse(`<div><p>Hello</p></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should have one child (div)
	if len(doc.Root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(doc.Root.Children))
	}

	div := doc.Root.Children[0]
	if div.TagName != "div" {
		t.Errorf("expected 'div', got '%s'", div.TagName)
	}

	// Div should have one child (p)
	if len(div.Children) != 1 {
		t.Fatalf("expected div to have 1 child, got %d", len(div.Children))
	}

	p := div.Children[0]
	if p.TagName != "p" {
		t.Errorf("expected 'p', got '%s'", p.TagName)
	}

	// P should have one text child
	if len(p.Children) != 1 {
		t.Fatalf("expected p to have 1 text child, got %d", len(p.Children))
	}

	if p.Children[0].Type != TextNode || p.Children[0].Text != "Hello" {
		t.Error("expected text node with 'Hello'")
	}
}

func TestParser_DeeplyNestedElements(t *testing.T) {
	doc, err := Parse(`<div><section><article><p>Deep</p></article></section></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Navigate down the tree
	div := doc.Root.Children[0]
	if div.TagName != "div" || len(div.Children) != 1 {
		t.Error("expected div with 1 child")
	}

	section := div.Children[0]
	if section.TagName != "section" || len(section.Children) != 1 {
		t.Error("expected section with 1 child")
	}

	article := section.Children[0]
	if article.TagName != "article" || len(article.Children) != 1 {
		t.Error("expected article with 1 child")
	}

	p := article.Children[0]
	if p.TagName != "p" || len(p.Children) != 1 {
		t.Error("expected p with 1 text child")
	}

	if p.Children[0].Text != "Deep" {
		t.Errorf("expected text 'Deep', got '%s'", p.Children[0].Text)
	}
}

func TestParser_SiblingElements(t *testing.T) {
	doc, err := Parse(`<div><p>First</p><p>Second</p></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	div := doc.Root.Children[0]
	if len(div.Children) != 2 {
		t.Fatalf("expected div to have 2 children, got %d", len(div.Children))
	}

	if div.Children[0].TagName != "p" || div.Children[1].TagName != "p" {
		t.Error("expected two p elements")
	}

	if div.Children[0].Children[0].Text != "First" {
		t.Error("expected first p to contain 'First'")
	}

	if div.Children[1].Children[0].Text != "Second" {
		t.Error("expected second p to contain 'Second'")
	}
}

func TestParser_ParentReferences(t *testing.T) {
	doc, err := Parse(`<div><p>Text</p></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	div := doc.Root.Children[0]
	p := div.Children[0]

	// Check parent references
	if p.Parent != div {
		t.Error("p's parent should be div")
	}

	if div.Parent != doc.Root {
		t.Error("div's parent should be root")
	}
}

func TestParser_StyleTag(t *testing.T) {
	doc, err := Parse(`<style>div { color: red; }</style><div></div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Root.Children) != 2 {
		t.Fatalf("expected style and div, got %d children", len(doc.Root.Children))
	}
	if doc.Root.Children[1].TagName != "div" {
		t.Errorf("expected div, got %s", doc.Root.Children[1].TagName)
	}

	if len(doc.Styles) != 1 {
		t.Fatalf("expected 1 style ref, got %d", len(doc.Styles))
	}
	if !doc.Styles[0].Inline || doc.Styles[0].Text != "div { color: red; }" {
		t.Errorf("unexpected style ref %+v", doc.Styles[0])
	}
}

func TestParser_StyleRefsInDocumentOrder(t *testing.T) {
	doc, err := Parse(`
		<link rel="stylesheet" href="a.css">
		<style>div { color: red; }</style>
		<div></div>
		<link rel="alternate" href="feed.xml">
		<link rel="stylesheet" href="data:text/css,p%20%7B%7D">
		<style>p { color: blue; }</style>
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Styles) != 4 {
		t.Fatalf("expected 4 style refs, got %d", len(doc.Styles))
	}
	if doc.Styles[0].Href != "a.css" || doc.Styles[0].Inline {
		t.Errorf("first ref should be a.css link, got %+v", doc.Styles[0])
	}
	if doc.Styles[1].Text != "div { color: red; }" {
		t.Errorf("second ref incorrect: %+v", doc.Styles[1])
	}
	if doc.Styles[2].Href != "data:text/css,p%20%7B%7D" {
		t.Errorf("third ref incorrect: %+v", doc.Styles[2])
	}
	if doc.Styles[3].Text != "p { color: blue; }" {
		t.Errorf("fourth ref incorrect: %+v", doc.Styles[3])
	}
}

func TestParser_StyleTextIsRaw(t *testing.T) {
	doc, err := Parse(`<style>a > b { content: "&amp;" }</style>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Styles[0].Text; got != `a > b { content: "&amp;" }` {
		t.Errorf("style text should be verbatim, got %q", got)
	}
	if got := doc.Root.SerializeOuter(); got != `<document><style>a > b { content: "&amp;" }</style></document>` {
		t.Errorf("style text should serialize verbatim, got %q", got)
	}
}

func TestParser_Scripts(t *testing.T) {
	doc, err := Parse(`<script src="x.js"></script><script>console.log("a < b")</script>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Scripts) != 1 || doc.Scripts[0] != `console.log("a < b")` {
		t.Errorf("unexpected scripts %q", doc.Scripts)
	}
}

func TestParser_BaseAndBody(t *testing.T) {
	doc, err := Parse(`<html><head><base href="http://example.com/x/"></head><body><p>hi</p></body></html>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.BaseURL != "http://example.com/x/" {
		t.Errorf("BaseURL = %q", doc.BaseURL)
	}
	if body := doc.Body(); body.TagName != "body" || body.FirstChild().TagName != "p" {
		t.Errorf("Body() returned %s", body.TagName)
	}
}

func TestParser_AutoCloseP(t *testing.T) {
	doc, err := Parse(`<p>one<div>two</div>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 2 {
		t.Fatalf("expected p and div as siblings, got %d children", len(doc.Root.Children))
	}
}

func TestParser_Entities(t *testing.T) {
	doc, err := Parse(`<p>fish &amp;   chips</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Root.Children[0].TextContent(); got != "fish & chips" {
		t.Errorf("TextContent() = %q", got)
	}
}

func TestParser_Fragment(t *testing.T) {
	nodes, err := ParseFragment("<p>text</p><script>var x = 1;</script>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[1].TagName != "script" {
		t.Errorf("expected second node 'script', got '%s'", nodes[1].TagName)
	}
	for _, n := range nodes {
		if n.Parent != nil {
			t.Errorf("%s: expected detached node", n.TagName)
		}
	}
}
