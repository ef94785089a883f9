package js

import (
	"github.com/dop251/goja"

	"regionflow/pkg/html"
)

// registerDocumentProperties adds document.documentElement, head and body
// as live getters, so elements added by earlier scripts are found.
func registerDocumentProperties(ctx *domContext, docObj *goja.Object, doc *html.Document) {
	getter := func(find func() *html.Node) goja.Value {
		return ctx.vm.ToValue(func(goja.FunctionCall) goja.Value {
			return ctx.nodeOrNull(find())
		})
	}
	byTag := func(tag string) func() *html.Node {
		return func() *html.Node {
			return doc.Root.FindFirst(func(n *html.Node) bool {
				return n.Type == html.ElementNode && n.TagName == tag
			})
		}
	}

	docObj.DefineAccessorProperty("documentElement", getter(byTag("html")), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	docObj.DefineAccessorProperty("head", getter(byTag("head")), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
	docObj.DefineAccessorProperty("body", getter(byTag("body")), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
}
