package js

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"regionflow/pkg/html"
)

// argNode returns the node behind a proxy argument. With text set, any
// other value becomes a new text node; otherwise it throws.
func (e *elementAccessor) argNode(arg goja.Value, fn string, text bool) *html.Node {
	if n := e.ctx.unwrapNode(arg); n != nil {
		n.Detach()
		return n
	}
	if !text {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': parameter is not a Node", fn))
	}
	return html.NewText(arg.String())
}

func (e *elementAccessor) argNodes(call goja.FunctionCall, fn string) []*html.Node {
	nodes := make([]*html.Node, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		nodes = append(nodes, e.argNode(arg, fn, true))
	}
	return nodes
}

func (e *elementAccessor) requireArgs(call goja.FunctionCall, n int, fn string) {
	if len(call.Arguments) < n {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': %d argument(s) required", fn, n))
	}
}

func (e *elementAccessor) appendChild(call goja.FunctionCall) goja.Value {
	e.requireArgs(call, 1, "appendChild")
	child := e.argNode(call.Arguments[0], "appendChild", false)
	e.node.AddChild(child)
	return e.ctx.elementProxy(child)
}

func (e *elementAccessor) removeChild(call goja.FunctionCall) goja.Value {
	e.requireArgs(call, 1, "removeChild")
	child := e.ctx.unwrapNode(call.Arguments[0])
	if child == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': parameter is not a Node"))
	}
	if e.node.RemoveChild(child) == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
	}
	return e.ctx.elementProxy(child)
}

func (e *elementAccessor) insertBefore(call goja.FunctionCall) goja.Value {
	e.requireArgs(call, 1, "insertBefore")
	var ref *html.Node
	if len(call.Arguments) > 1 {
		ref = e.ctx.unwrapNode(call.Arguments[1])
	}
	child := e.argNode(call.Arguments[0], "insertBefore", false)
	e.node.InsertBefore(child, ref)
	return e.ctx.elementProxy(child)
}

func (e *elementAccessor) remove(goja.FunctionCall) goja.Value {
	e.node.Detach()
	return goja.Undefined()
}

func (e *elementAccessor) append(call goja.FunctionCall) goja.Value {
	for _, n := range e.argNodes(call, "append") {
		e.node.AddChild(n)
	}
	return goja.Undefined()
}

func (e *elementAccessor) prepend(call goja.FunctionCall) goja.Value {
	nodes := e.argNodes(call, "prepend")
	first := e.node.FirstChild()
	for _, n := range nodes {
		e.node.InsertBefore(n, first)
	}
	return goja.Undefined()
}

func (e *elementAccessor) before(call goja.FunctionCall) goja.Value {
	parent := e.node.Parent
	if parent == nil {
		return goja.Undefined()
	}
	for _, n := range e.argNodes(call, "before") {
		parent.InsertBefore(n, e.node)
	}
	return goja.Undefined()
}

func (e *elementAccessor) after(call goja.FunctionCall) goja.Value {
	parent := e.node.Parent
	if parent == nil {
		return goja.Undefined()
	}
	at := e.node
	for _, n := range e.argNodes(call, "after") {
		parent.InsertAt(n, at.IndexInParent()+1)
		at = n
	}
	return goja.Undefined()
}

func (e *elementAccessor) replaceWith(call goja.FunctionCall) goja.Value {
	parent := e.node.Parent
	if parent == nil {
		return goja.Undefined()
	}
	for _, n := range e.argNodes(call, "replaceWith") {
		parent.InsertBefore(n, e.node)
	}
	parent.RemoveChild(e.node)
	return goja.Undefined()
}

func (e *elementAccessor) replaceChildren(call goja.FunctionCall) goja.Value {
	nodes := e.argNodes(call, "replaceChildren")
	e.node.RemoveChildren()
	for _, n := range nodes {
		e.node.AddChild(n)
	}
	return goja.Undefined()
}

// setInnerHTML parses markup and replaces the node's children with it.
// Unparseable markup leaves the node empty.
func (e *elementAccessor) setInnerHTML(markup string) {
	e.node.RemoveChildren()
	if markup == "" {
		return
	}
	children, err := html.ParseFragment(markup)
	if err != nil {
		e.ctx.log.Debug("innerHTML not parsed", zap.Error(err))
		return
	}
	for _, c := range children {
		e.node.AddChild(c)
	}
}
