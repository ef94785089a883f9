package js

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"regionflow/pkg/html"
)

func parseHTML(t *testing.T, s string) *html.Document {
	t.Helper()
	doc, err := html.Parse(s)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return doc
}

func TestSetTextContent(t *testing.T) {
	doc := parseHTML(t, `<p id="target">original</p>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		document.getElementById("target").textContent = "changed";
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "target")
	if node == nil {
		t.Fatal("target not found")
	}
	got := node.TextContent()
	if got != "changed" {
		t.Errorf("textContent = %q, want %q", got, "changed")
	}
}

func TestSetStyleColor(t *testing.T) {
	doc := parseHTML(t, `<p id="target" style="color: red;">text</p>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		document.getElementById("target").style.color = "blue";
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "target")
	if v, _ := node.InlineStyle("color"); v != "blue" {
		t.Errorf("color = %q, want blue", v)
	}
}

func TestSetStyleDisplay(t *testing.T) {
	doc := parseHTML(t, `<p id="target">visible</p>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		document.getElementById("target").style.display = "none";
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "target")
	if v, _ := node.InlineStyle("display"); v != "none" {
		t.Errorf("display = %q, want none", v)
	}
}

func TestSetStyleCamelCase(t *testing.T) {
	doc := parseHTML(t, `<div id="box">box</div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var el = document.getElementById("box");
		el.style.backgroundColor = "yellow";
		el.style.fontSize = "20px";
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "box")
	if v, _ := node.InlineStyle("background-color"); v != "yellow" {
		t.Errorf("background-color = %q, want yellow", v)
	}
	if v, _ := node.InlineStyle("font-size"); v != "20px" {
		t.Errorf("font-size = %q, want 20px", v)
	}
}

func TestSetAttribute(t *testing.T) {
	doc := parseHTML(t, `<div id="target">text</div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var el = document.getElementById("target");
		el.setAttribute("data-value", "42");
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "target")
	if val, ok := node.Attributes["data-value"]; !ok || val != "42" {
		t.Errorf("data-value = %q, want %q", val, "42")
	}
}

func TestSetClassName(t *testing.T) {
	doc := parseHTML(t, `<div id="target" class="old">text</div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		document.getElementById("target").className = "new-class";
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "target")
	if node.Attributes["class"] != "new-class" {
		t.Errorf("class = %q, want %q", node.Attributes["class"], "new-class")
	}
}

func TestScriptError(t *testing.T) {
	doc := parseHTML(t, `<p>text</p>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `throw new Error("test error");`)
	err := engine.Execute(doc)
	if err == nil {
		t.Fatal("expected error from script")
	}
}

func TestScriptExtraction(t *testing.T) {
	doc := parseHTML(t, `<p>text</p><script>var x = 1;</script><script>var y = 2;</script>`)
	if len(doc.Scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(doc.Scripts))
	}
	if doc.Scripts[0] != "var x = 1;" {
		t.Errorf("script 0 = %q", doc.Scripts[0])
	}
	if doc.Scripts[1] != "var y = 2;" {
		t.Errorf("script 1 = %q", doc.Scripts[1])
	}
}

func TestCamelToKebab(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"color", "color"},
		{"backgroundColor", "background-color"},
		{"fontSize", "font-size"},
		{"fontWeight", "font-weight"},
		{"textDecoration", "text-decoration"},
		{"borderTopWidth", "border-top-width"},
		{"cssFloat", "float"},
	}
	for _, tt := range tests {
		got := camelToKebab(tt.input)
		if got != tt.want {
			t.Errorf("camelToKebab(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClearStyleProperty(t *testing.T) {
	doc := parseHTML(t, `<p id="target" style="display: none; color: red">text</p>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var el = document.getElementById("target");
		el.style.display = "";
		if (el.style.color !== "red") throw new Error("color lost: " + el.style.color);
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	node := getElementById(doc.Root, "target")
	if _, ok := node.InlineStyle("display"); ok {
		t.Errorf("display still set: %q", node.Attributes["style"])
	}
}

func TestConsoleRoutesToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	doc := parseHTML(t, `<p>text</p>`)
	engine := New(WithLogger(zap.New(core)))
	doc.Scripts = append(doc.Scripts, `console.log("hello", 42); console.warn("careful"); console.error("broken")`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	entries := logs.FilterLoggerName("js.console").All()
	if len(entries) != 3 {
		t.Fatalf("got %d console entries, want 3", len(entries))
	}
	want := []struct {
		level zapcore.Level
		msg   string
	}{
		{zapcore.InfoLevel, "hello 42"},
		{zapcore.WarnLevel, "careful"},
		{zapcore.ErrorLevel, "broken"},
	}
	for i, w := range want {
		if entries[i].Level != w.level || entries[i].Message != w.msg {
			t.Errorf("entry %d = %v %q, want %v %q", i, entries[i].Level, entries[i].Message, w.level, w.msg)
		}
	}
}

func TestMutationsReachGoTree(t *testing.T) {
	doc := parseHTML(t, `<div id="root"><span id="gone"></span></div>`)
	engine := New()
	doc.Scripts = append(doc.Scripts, `
		var root = document.getElementById("root");
		root.appendChild(document.createElement("p"));
		document.getElementById("gone").remove();
		root.lastElementChild.innerHTML = "<b>bold</b> tail";
	`)
	if err := engine.Execute(doc); err != nil {
		t.Fatal(err)
	}

	root := getElementById(doc.Root, "root")
	if len(root.Children) != 1 || root.Children[0].TagName != "p" {
		t.Fatalf("root children = %q", root.Serialize())
	}
	if got := root.Serialize(); got != "<p><b>bold</b> tail</p>" {
		t.Errorf("root markup = %q", got)
	}
}
