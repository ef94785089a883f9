package js

import (
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"regionflow/pkg/html"
	"regionflow/pkg/regions"
)

// flowOM exposes the flows of a polyfill: document.getNamedFlows, the
// CSSRegions global, NamedFlow objects and element.regionOverset.
type flowOM struct {
	ctx  *domContext
	poly *regions.Polyfill

	objects   map[*regions.NamedFlow]*goja.Object
	listeners map[*regions.NamedFlow][]jsListener
}

type jsListener struct {
	typ string
	fn  goja.Value
	id  regions.Subscription
}

func registerFlows(ctx *domContext, docObj *goja.Object, p *regions.Polyfill) *flowOM {
	om := &flowOM{
		ctx:       ctx,
		poly:      p,
		objects:   make(map[*regions.NamedFlow]*goja.Object),
		listeners: make(map[*regions.NamedFlow][]jsListener),
	}
	vm := ctx.vm

	getNamedFlows := func(goja.FunctionCall) goja.Value { return om.collection() }
	docObj.Set(regions.OMNamedFlows, getNamedFlows)
	if alias := om.caps().OMName(regions.OMNamedFlows); alias != regions.OMNamedFlows {
		docObj.Set(alias, getNamedFlows)
	}

	cssRegions := vm.NewObject()
	cssRegions.Set("doLayout", func(goja.FunctionCall) goja.Value {
		p.DoLayout()
		return goja.Undefined()
	})
	cssRegions.Set("addSourceToNamedFlow", func(call goja.FunctionCall) goja.Value {
		name, n := om.flowArgs(call, "addSourceToNamedFlow")
		om.check(p.AddSourceToNamedFlow(name, n))
		return goja.Undefined()
	})
	cssRegions.Set("addRegionToNamedFlow", func(call goja.FunctionCall) goja.Value {
		name, n := om.flowArgs(call, "addRegionToNamedFlow")
		om.check(p.AddRegionToNamedFlow(name, n))
		return goja.Undefined()
	})
	vm.Set("CSSRegions", cssRegions)
	return om
}

func (om *flowOM) caps() *regions.Capabilities {
	return om.poly.Capabilities()
}

// check turns registry errors into script exceptions.
func (om *flowOM) check(err error) {
	switch {
	case err == nil:
	case errors.Is(err, regions.ErrInvalidArgument):
		panic(om.ctx.vm.NewTypeError("%s", err.Error()))
	default:
		panic(om.ctx.vm.NewGoError(err))
	}
}

func (om *flowOM) flowArgs(call goja.FunctionCall, fn string) (string, *html.Node) {
	if len(call.Arguments) < 2 {
		panic(om.ctx.vm.NewTypeError("Failed to execute '%s': 2 arguments required", fn))
	}
	return call.Arguments[0].String(), om.ctx.unwrapNode(call.Arguments[1])
}

// collection builds the array-like NamedFlowCollection: indexed entries,
// item(i), namedItem(name) and a property per flow name.
func (om *flowOM) collection() goja.Value {
	vm := om.ctx.vm
	flows := om.poly.NamedFlows()

	items := make([]any, 0, flows.Len())
	for _, f := range flows.All() {
		items = append(items, om.flowObject(f))
	}
	arr := vm.NewArray(items...)
	arr.Set("item", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return om.flowOrNull(flows.Item(int(call.Arguments[0].ToInteger())))
	})
	arr.Set("namedItem", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return om.flowOrNull(flows.NamedItem(call.Arguments[0].String()))
	})
	for _, f := range flows.All() {
		switch name := f.Name(); name {
		case "length", "item", "namedItem":
		default:
			if _, numeric := indexKey(name); !numeric {
				arr.Set(name, om.flowObject(f))
			}
		}
	}
	return arr
}

func (om *flowOM) flowOrNull(f *regions.NamedFlow) goja.Value {
	if f == nil {
		return goja.Null()
	}
	return om.flowObject(f)
}

// flowObject returns the script object of f, the same one on every call.
func (om *flowOM) flowObject(f *regions.NamedFlow) *goja.Object {
	if obj, ok := om.objects[f]; ok {
		return obj
	}
	vm := om.ctx.vm
	obj := vm.NewObject()
	om.objects[f] = obj

	getter := func(get func() any) goja.Value {
		return vm.ToValue(func(goja.FunctionCall) goja.Value { return vm.ToValue(get()) })
	}
	obj.DefineAccessorProperty("name", getter(func() any { return f.Name() }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("overset", getter(func() any { return f.Overset() }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("firstEmptyRegionIndex", getter(func() any { return f.FirstEmptyRegionIndex() }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("getRegions", func(goja.FunctionCall) goja.Value {
		return om.ctx.elementArray(f.Regions())
	})
	obj.Set("getContent", func(goja.FunctionCall) goja.Value {
		return om.ctx.elementArray(f.Content())
	})
	obj.Set("getRegionsByContent", func(call goja.FunctionCall) goja.Value {
		var n *html.Node
		if len(call.Arguments) > 0 {
			n = om.ctx.unwrapNode(call.Arguments[0])
		}
		if n == nil {
			panic(vm.NewTypeError("Failed to execute 'getRegionsByContent': parameter is not a Node"))
		}
		return om.ctx.elementArray(f.RegionsByContent(n))
	})
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		om.addListener(f, obj, call)
		return goja.Undefined()
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		om.removeListener(f, call)
		return goja.Undefined()
	})
	return obj
}

func (om *flowOM) addListener(f *regions.NamedFlow, target *goja.Object, call goja.FunctionCall) {
	vm := om.ctx.vm
	if len(call.Arguments) < 2 {
		panic(vm.NewTypeError("Failed to execute 'addEventListener': 2 arguments required"))
	}
	typ, fn := call.Arguments[0].String(), call.Arguments[1]
	cb, ok := goja.AssertFunction(fn)
	if !ok {
		panic(vm.NewTypeError("Failed to execute 'addEventListener': listener is not a function"))
	}
	for _, l := range om.listeners[f] {
		if l.typ == typ && l.fn.SameAs(fn) {
			return
		}
	}

	// Subscribing requests a layout pass, which may already call cb and
	// even remove it again.
	om.listeners[f] = append(om.listeners[f], jsListener{typ: typ, fn: fn})
	id := f.AddEventListener(typ, func(ev regions.Event) {
		evObj := vm.NewObject()
		evObj.Set("type", ev.Type)
		evObj.Set("target", target)
		if _, err := cb(target, evObj); err != nil {
			om.ctx.log.Warn("Flow listener threw",
				zap.String("flow", f.Name()),
				zap.String("event", ev.Type),
				zap.Error(err))
		}
	})
	ls := om.listeners[f]
	for i := range ls {
		if ls[i].typ == typ && ls[i].fn.SameAs(fn) {
			ls[i].id = id
			return
		}
	}
	f.RemoveEventListener(typ, id)
}

func (om *flowOM) removeListener(f *regions.NamedFlow, call goja.FunctionCall) {
	if len(call.Arguments) < 2 {
		return
	}
	typ, fn := call.Arguments[0].String(), call.Arguments[1]
	ls := om.listeners[f]
	for i, l := range ls {
		if l.typ == typ && l.fn.SameAs(fn) {
			f.RemoveEventListener(typ, l.id)
			om.listeners[f] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (om *flowOM) isOversetKey(key string) bool {
	return key == regions.OMRegionOverset || key == om.caps().OMName(regions.OMRegionOverset)
}

// regionOverset is undefined for elements that are not laid-out regions.
func (om *flowOM) regionOverset(n *html.Node) goja.Value {
	status := om.poly.RegionStatus(n)
	if status == regions.StatusNone {
		return goja.Undefined()
	}
	return om.ctx.vm.ToValue(string(status))
}
