package js

import (
	"github.com/dop251/goja"

	"regionflow/pkg/css"
	"regionflow/pkg/html"
)

// query runs a selector group below root, root excluded. Invalid selectors
// throw, as they do in browsers.
func query(ctx *domContext, root *html.Node, call goja.FunctionCall, fn string) []*html.Node {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': 1 argument required", fn))
	}
	nodes, err := css.QueryAll(root, call.Arguments[0].String())
	if err != nil {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': %v", fn, err))
	}
	if len(nodes) > 0 && nodes[0] == root {
		nodes = nodes[1:]
	}
	return nodes
}

func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		nodes := query(ctx, root, call, "querySelector")
		if len(nodes) == 0 {
			return goja.Null()
		}
		return ctx.elementProxy(nodes[0])
	}
}

func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.elementArray(query(ctx, root, call, "querySelectorAll"))
	}
}

// matches reports whether node matches any selector of the group in the
// first argument.
func matches(ctx *domContext, node *html.Node, call goja.FunctionCall, fn string) bool {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': 1 argument required", fn))
	}
	selectors, err := css.ParseSelectorGroup(call.Arguments[0].String())
	if err != nil {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': %v", fn, err))
	}
	for _, sel := range selectors {
		if css.MatchesSelector(node, sel) {
			return true
		}
	}
	return false
}

func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.vm.ToValue(node.Type == html.ElementNode && matches(ctx, node, call, "matches"))
	}
}

func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for cur := node; cur != nil && cur != ctx.docRoot(); cur = cur.Parent {
			if cur.Type == html.ElementNode && matches(ctx, cur, call, "closest") {
				return ctx.elementProxy(cur)
			}
		}
		return goja.Null()
	}
}
