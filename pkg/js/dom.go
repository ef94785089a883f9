package js

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"regionflow/pkg/html"
)

// domContext holds the state shared by the DOM bindings of one runtime. It
// keeps one proxy per node so that === holds for the same *html.Node, and
// the reverse map to get the node back from a script value.
type domContext struct {
	vm    *goja.Runtime
	doc   *html.Document
	log   *zap.Logger
	flows *flowOM

	proxies map[*html.Node]*goja.Object
	nodes   map[*goja.Object]*html.Node
}

func newDOMContext(vm *goja.Runtime, doc *html.Document, log *zap.Logger) *domContext {
	return &domContext{
		vm:      vm,
		doc:     doc,
		log:     log,
		proxies: make(map[*html.Node]*goja.Object),
		nodes:   make(map[*goja.Object]*html.Node),
	}
}

// registerDocument sets up the global `document` object.
func registerDocument(ctx *domContext) *goja.Object {
	vm, doc := ctx.vm, ctx.doc

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return ctx.nodeOrNull(getElementById(doc.Root, call.Arguments[0].String()))
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(getElementsByTagName(doc.Root, strings.ToLower(call.Arguments[0].String())))
	})
	docObj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(getElementsByClassName(doc.Root, call.Arguments[0].String()))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(strings.ToLower(call.Arguments[0].String()), nil))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(html.NewText(text))
	})

	docObj.Set("querySelector", querySelectorFn(ctx, doc.Root))
	docObj.Set("querySelectorAll", querySelectorAllFn(ctx, doc.Root))
	registerDocumentProperties(ctx, docObj, doc)

	vm.Set("document", docObj)
	return docObj
}

func getElementById(root *html.Node, id string) *html.Node {
	return root.FindFirst(func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.ID() == id
	})
}

// getElementsByTagName collects the elements below root (root excluded).
func getElementsByTagName(root *html.Node, tag string) []*html.Node {
	return collectElements(root, func(n *html.Node) bool { return n.TagName == tag })
}

func getElementsByClassName(root *html.Node, cls string) []*html.Node {
	return collectElements(root, func(n *html.Node) bool {
		classes, _ := n.GetAttribute("class")
		return containsToken(strings.Fields(classes), cls)
	})
}

func collectElements(root *html.Node, match func(*html.Node) bool) []*html.Node {
	return root.Collect(func(n *html.Node) html.FilterResult {
		if n != root && n.Type == html.ElementNode && match(n) {
			return html.FilterAccept
		}
		return html.FilterSkip
	})
}

// elementArray creates a JS array of element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	vals := make([]any, len(nodes))
	for i, n := range nodes {
		vals[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(vals...)
}

// elementProxy returns the proxy of node, creating it on first use.
func (ctx *domContext) elementProxy(node *html.Node) *goja.Object {
	if obj, ok := ctx.proxies[node]; ok {
		return obj
	}
	obj := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.proxies[node] = obj
	ctx.nodes[obj] = node
	return obj
}

func (ctx *domContext) nodeOrNull(node *html.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	return ctx.elementProxy(node)
}

// unwrapNode returns the node behind a proxy, or nil for any other value.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.nodes[obj]
}

// elementAccessor implements goja.DynamicObject for element and text
// proxies. Properties are served from elementProps.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

type elementProp struct {
	get func(e *elementAccessor) goja.Value
	set func(e *elementAccessor, v goja.Value)
}

// method wraps fn as a property whose value is a bound JS function.
func method(fn func(e *elementAccessor, call goja.FunctionCall) goja.Value) elementProp {
	return elementProp{get: func(e *elementAccessor) goja.Value {
		return e.ctx.vm.ToValue(func(call goja.FunctionCall) goja.Value { return fn(e, call) })
	}}
}

func attrProp(name string) elementProp {
	return elementProp{
		get: func(e *elementAccessor) goja.Value {
			v, _ := e.node.GetAttribute(name)
			return e.ctx.vm.ToValue(v)
		},
		set: func(e *elementAccessor, v goja.Value) { e.node.SetAttribute(name, v.String()) },
	}
}

var elementProps map[string]elementProp

func init() {
	elementProps = map[string]elementProp{
		"nodeType": {get: func(e *elementAccessor) goja.Value {
			if e.node.Type == html.TextNode {
				return e.ctx.vm.ToValue(3)
			}
			return e.ctx.vm.ToValue(1)
		}},
		"nodeName": {get: func(e *elementAccessor) goja.Value {
			if e.node.Type == html.TextNode {
				return e.ctx.vm.ToValue("#text")
			}
			return e.ctx.vm.ToValue(strings.ToUpper(e.node.TagName))
		}},
		"nodeValue": {
			get: func(e *elementAccessor) goja.Value {
				if e.node.Type == html.TextNode {
					return e.ctx.vm.ToValue(e.node.Text)
				}
				return goja.Null()
			},
			set: func(e *elementAccessor, v goja.Value) {
				if e.node.Type == html.TextNode {
					e.node.Text = v.String()
				}
			},
		},
		"tagName": {get: func(e *elementAccessor) goja.Value {
			if e.node.Type == html.TextNode {
				return goja.Undefined()
			}
			return e.ctx.vm.ToValue(strings.ToUpper(e.node.TagName))
		}},
		"id":        attrProp("id"),
		"className": attrProp("class"),
		"textContent": {
			get: func(e *elementAccessor) goja.Value { return e.ctx.vm.ToValue(e.node.TextContent()) },
			set: func(e *elementAccessor, v goja.Value) { setTextContent(e.node, v.String()) },
		},
		"innerHTML": {
			get: func(e *elementAccessor) goja.Value { return e.ctx.vm.ToValue(e.node.Serialize()) },
			set: func(e *elementAccessor, v goja.Value) { e.setInnerHTML(v.String()) },
		},
		"outerHTML": {get: func(e *elementAccessor) goja.Value { return e.ctx.vm.ToValue(e.node.SerializeOuter()) }},

		"getAttribute": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.node.GetAttribute(call.Arguments[0].String())
			if !ok {
				return goja.Null()
			}
			return e.ctx.vm.ToValue(val)
		}),
		"setAttribute": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) >= 2 {
				e.node.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
			}
			return goja.Undefined()
		}),
		"hasAttribute": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.vm.ToValue(false)
			}
			_, ok := e.node.GetAttribute(call.Arguments[0].String())
			return e.ctx.vm.ToValue(ok)
		}),
		"removeAttribute": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				e.node.RemoveAttribute(call.Arguments[0].String())
			}
			return goja.Undefined()
		}),

		"children": {get: func(e *elementAccessor) goja.Value {
			return e.ctx.elementArray(e.elementChildren())
		}},
		"childNodes": {get: func(e *elementAccessor) goja.Value {
			return e.ctx.elementArray(e.node.Children)
		}},
		"childElementCount": {get: func(e *elementAccessor) goja.Value {
			return e.ctx.vm.ToValue(len(e.elementChildren()))
		}},
		"parentElement": {get: func(e *elementAccessor) goja.Value { return e.parent() }},
		"parentNode":    {get: func(e *elementAccessor) goja.Value { return e.parent() }},
		"style": {get: func(e *elementAccessor) goja.Value {
			return e.ctx.vm.NewDynamicObject(&styleAccessor{vm: e.ctx.vm, node: e.node})
		}},
		"classList": {get: func(e *elementAccessor) goja.Value { return newClassListProxy(e.ctx, e.node) }},

		"appendChild":     method((*elementAccessor).appendChild),
		"removeChild":     method((*elementAccessor).removeChild),
		"insertBefore":    method((*elementAccessor).insertBefore),
		"remove":          method((*elementAccessor).remove),
		"append":          method((*elementAccessor).append),
		"prepend":         method((*elementAccessor).prepend),
		"before":          method((*elementAccessor).before),
		"after":           method((*elementAccessor).after),
		"replaceWith":     method((*elementAccessor).replaceWith),
		"replaceChildren": method((*elementAccessor).replaceChildren),

		"firstChild":             {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(e.node.FirstChild()) }},
		"lastChild":              {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(e.node.LastChild()) }},
		"nextSibling":            {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(e.node.NextSibling()) }},
		"previousSibling":        {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(e.node.PreviousSibling()) }},
		"firstElementChild":      {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(firstElement(e.node.Children, 1)) }},
		"lastElementChild":       {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(firstElement(e.node.Children, -1)) }},
		"nextElementSibling":     {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(e.elementSibling(1)) }},
		"previousElementSibling": {get: func(e *elementAccessor) goja.Value { return e.ctx.nodeOrNull(e.elementSibling(-1)) }},

		"querySelector": {get: func(e *elementAccessor) goja.Value {
			return e.ctx.vm.ToValue(querySelectorFn(e.ctx, e.node))
		}},
		"querySelectorAll": {get: func(e *elementAccessor) goja.Value {
			return e.ctx.vm.ToValue(querySelectorAllFn(e.ctx, e.node))
		}},
		"matches": {get: func(e *elementAccessor) goja.Value { return e.ctx.vm.ToValue(matchesFn(e.ctx, e.node)) }},
		"closest": {get: func(e *elementAccessor) goja.Value { return e.ctx.vm.ToValue(closestFn(e.ctx, e.node)) }},
		"getElementsByTagName": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			return e.ctx.elementArray(getElementsByTagName(e.node, strings.ToLower(call.Arguments[0].String())))
		}),
		"getElementsByClassName": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			return e.ctx.elementArray(getElementsByClassName(e.node, call.Arguments[0].String()))
		}),

		"cloneNode": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			deep := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
			return e.ctx.elementProxy(e.node.CloneNode(deep))
		}),
		"contains": method(func(e *elementAccessor, call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.vm.ToValue(false)
			}
			other := e.ctx.unwrapNode(call.Arguments[0])
			return e.ctx.vm.ToValue(other != nil && e.node.Contains(other))
		}),
		"hasChildNodes": method(func(e *elementAccessor, _ goja.FunctionCall) goja.Value {
			return e.ctx.vm.ToValue(len(e.node.Children) > 0)
		}),
	}
}

func (e *elementAccessor) Get(key string) goja.Value {
	if e.ctx.flows != nil && e.ctx.flows.isOversetKey(key) {
		return e.ctx.flows.regionOverset(e.node)
	}
	if p, ok := elementProps[key]; ok {
		return p.get(e)
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	p, ok := elementProps[key]
	if !ok || p.set == nil {
		return false
	}
	p.set(e, val)
	return true
}

func (e *elementAccessor) Has(key string) bool {
	if e.ctx.flows != nil && e.ctx.flows.isOversetKey(key) {
		return true
	}
	_, ok := elementProps[key]
	return ok
}

func (e *elementAccessor) Delete(string) bool { return false }

func (e *elementAccessor) Keys() []string {
	keys := make([]string, 0, len(elementProps))
	for k := range elementProps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *elementAccessor) elementChildren() []*html.Node {
	var out []*html.Node
	for _, c := range e.node.Children {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// parent returns the parent proxy; the document root is not exposed.
func (e *elementAccessor) parent() goja.Value {
	p := e.node.Parent
	if p == nil || p == e.ctx.docRoot() {
		return goja.Null()
	}
	return e.ctx.elementProxy(p)
}

func (ctx *domContext) docRoot() *html.Node {
	if ctx.doc == nil {
		return nil
	}
	return ctx.doc.Root
}

// firstElement scans nodes from the front (dir 1) or back (dir -1).
func firstElement(nodes []*html.Node, dir int) *html.Node {
	i, end := 0, len(nodes)
	if dir < 0 {
		i, end = len(nodes)-1, -1
	}
	for ; i != end; i += dir {
		if nodes[i].Type == html.ElementNode {
			return nodes[i]
		}
	}
	return nil
}

func (e *elementAccessor) elementSibling(dir int) *html.Node {
	p := e.node.Parent
	if p == nil {
		return nil
	}
	i := e.node.IndexInParent()
	if dir > 0 {
		return firstElement(p.Children[i+1:], 1)
	}
	return firstElement(p.Children[:i], -1)
}

// setTextContent replaces all children with a single text node.
func setTextContent(node *html.Node, text string) {
	node.RemoveChildren()
	node.AppendText(text)
}

// styleAccessor maps camelCase style properties onto the node's style
// attribute.
type styleAccessor struct {
	vm   *goja.Runtime
	node *html.Node
}

func (s *styleAccessor) Get(key string) goja.Value {
	v, _ := s.node.InlineStyle(camelToKebab(key))
	return s.vm.ToValue(v)
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	prop := camelToKebab(key)
	if v := val.String(); v != "" {
		s.node.SetInlineStyle(prop, v)
	} else {
		s.node.RemoveInlineStyle(prop)
	}
	return true
}

func (s *styleAccessor) Has(string) bool { return true }

func (s *styleAccessor) Delete(key string) bool {
	s.node.RemoveInlineStyle(camelToKebab(key))
	return true
}

func (s *styleAccessor) Keys() []string {
	return s.node.InlineStyleNames()
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// indexKey reports whether key is an array index.
func indexKey(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	return i, err == nil && i >= 0
}
