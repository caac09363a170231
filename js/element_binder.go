package js

import (
	"github.com/dop251/goja"

	"github.com/mgrady/customel/dom"
)

// ElementBinder bridges dom nodes and their JavaScript objects. Each dom
// element maps to exactly one JS object; for upgraded customized built-in
// elements that object is the instance the registered class constructed.
type ElementBinder struct {
	runtime  *Runtime
	events   *EventBinder
	registry *CustomElementRegistry // set by NewCustomElementRegistry

	nodeMap  map[*dom.Node]*goja.Object
	objMap   map[*goja.Object]*dom.Node
	upgraded map[*dom.Node]bool

	htmlElementProto *goja.Object
	documentProto    *goja.Object
}

// NewElementBinder creates a new element binder for the given runtime.
func NewElementBinder(runtime *Runtime, events *EventBinder) *ElementBinder {
	b := &ElementBinder{
		runtime: runtime,
		events:  events,
		nodeMap:  make(map[*dom.Node]*goja.Object),
		objMap:   make(map[*goja.Object]*dom.Node),
		upgraded: make(map[*dom.Node]bool),
	}
	b.setupPrototypes()
	return b
}

// setupPrototypes creates the HTMLElement prototype and constructor.
// Component classes extend HTMLElement; the prototype carries the element
// accessors and the event target methods shared by all instances.
func (b *ElementBinder) setupPrototypes() {
	vm := b.runtime.vm

	b.htmlElementProto = vm.NewObject()
	htmlElementConstructor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		// Direct construction is not allowed; subclass construction
		// (super() during upgrade) passes through.
		proto := call.This.Prototype()
		if proto != nil && proto.SameAs(b.htmlElementProto) {
			panic(vm.NewTypeError("Illegal constructor"))
		}
		return call.This
	})
	htmlElementConstructorObj := htmlElementConstructor.ToObject(vm)
	htmlElementConstructorObj.Set("prototype", b.htmlElementProto)
	b.htmlElementProto.Set("constructor", htmlElementConstructorObj)
	vm.Set("HTMLElement", htmlElementConstructorObj)

	b.events.BindEventTargetPrototype(b.htmlElementProto)
	b.bindElementMembers(b.htmlElementProto)

	b.documentProto = vm.NewObject()
	documentConstructor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		panic(vm.NewTypeError("Illegal constructor"))
	})
	documentConstructorObj := documentConstructor.ToObject(vm)
	documentConstructorObj.Set("prototype", b.documentProto)
	b.documentProto.Set("constructor", documentConstructorObj)
	vm.Set("Document", documentConstructorObj)
}

// HTMLElementPrototype returns the shared HTMLElement prototype object.
func (b *ElementBinder) HTMLElementPrototype() *goja.Object {
	return b.htmlElementProto
}

// elementOf resolves the dom element behind a JS this value, or panics
// with a TypeError when the object has no backing element.
func (b *ElementBinder) elementOf(this goja.Value) *dom.Element {
	vm := b.runtime.vm
	obj := this.ToObject(vm)
	node, ok := b.objMap[obj]
	if !ok || node.AsElement() == nil {
		panic(vm.NewTypeError("object is not backed by an element"))
	}
	return node.AsElement()
}

// bindElementMembers installs the element accessors and methods on proto.
func (b *ElementBinder) bindElementMembers(proto *goja.Object) {
	vm := b.runtime.vm

	proto.DefineAccessorProperty("tagName", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.elementOf(call.This).TagName())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	proto.DefineAccessorProperty("localName", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.elementOf(call.This).LocalName())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	proto.DefineAccessorProperty("isConnected", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.elementOf(call.This).IsConnected())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	proto.DefineAccessorProperty("id", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.elementOf(call.This).ID())
	}), vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			b.elementOf(call.This).SetAttribute("id", call.Arguments[0].String())
		}
		return goja.Undefined()
	}), goja.FLAG_FALSE, goja.FLAG_TRUE)

	proto.DefineAccessorProperty("parentElement", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		parent := b.elementOf(call.This).AsNode().ParentElement()
		if parent == nil {
			return goja.Null()
		}
		return b.BindElement(parent)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	proto.DefineAccessorProperty("textContent", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.elementOf(call.This).TextContent())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	proto.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		el := b.elementOf(call.This)
		name := call.Arguments[0].String()
		if !el.HasAttribute(name) {
			return goja.Null()
		}
		return vm.ToValue(el.GetAttribute(name))
	})

	proto.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		b.elementOf(call.This).SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
		return goja.Undefined()
	})

	proto.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue(false)
		}
		return vm.ToValue(b.elementOf(call.This).HasAttribute(call.Arguments[0].String()))
	})

	proto.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		b.elementOf(call.This).RemoveAttribute(call.Arguments[0].String())
		return goja.Undefined()
	})

	proto.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("appendChild requires a node"))
		}
		el := b.elementOf(call.This)
		child := b.nodeOf(call.Arguments[0])
		if err := el.AppendChild(child); err != nil {
			panic(vm.NewGoError(err))
		}
		return call.Arguments[0]
	})

	proto.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("removeChild requires a node"))
		}
		el := b.elementOf(call.This)
		child := b.nodeOf(call.Arguments[0])
		if err := el.RemoveChild(child); err != nil {
			panic(vm.NewGoError(err))
		}
		return call.Arguments[0]
	})

	proto.Set("remove", func(call goja.FunctionCall) goja.Value {
		b.elementOf(call.This).Remove()
		return goja.Undefined()
	})
}

// nodeOf resolves the dom node behind a JS value, or panics with a
// TypeError.
func (b *ElementBinder) nodeOf(v goja.Value) *dom.Node {
	vm := b.runtime.vm
	obj := v.ToObject(vm)
	node, ok := b.objMap[obj]
	if !ok {
		panic(vm.NewTypeError("object is not backed by a node"))
	}
	return node
}

// Associate records obj as the JS object for el.
func (b *ElementBinder) Associate(el *dom.Element, obj *goja.Object) {
	b.nodeMap[el.AsNode()] = obj
	b.objMap[obj] = el.AsNode()
}

// AssociateInstance makes the constructed class instance the element's
// binding and marks the element upgraded. A plain HTMLElement binding
// created earlier is superseded; its objMap entry stays valid so held
// references keep resolving to the same element.
func (b *ElementBinder) AssociateInstance(el *dom.Element, obj *goja.Object) {
	b.Associate(el, obj)
	b.upgraded[el.AsNode()] = true
}

// IsUpgraded reports whether el's binding is an upgraded class instance
// rather than a plain HTMLElement one.
func (b *ElementBinder) IsUpgraded(el *dom.Element) bool {
	return b.upgraded[el.AsNode()]
}

// CachedObject returns the JS object already bound to el, or nil.
func (b *ElementBinder) CachedObject(el *dom.Element) *goja.Object {
	return b.nodeMap[el.AsNode()]
}

// ElementFor returns the dom element bound to obj, or nil.
func (b *ElementBinder) ElementFor(obj *goja.Object) *dom.Element {
	node, ok := b.objMap[obj]
	if !ok {
		return nil
	}
	return node.AsElement()
}

// BindElement returns the JS object for a dom element, creating a plain
// HTMLElement-backed object if none exists yet.
func (b *ElementBinder) BindElement(el *dom.Element) *goja.Object {
	if obj, ok := b.nodeMap[el.AsNode()]; ok {
		return obj
	}
	obj := b.runtime.vm.NewObject()
	obj.SetPrototype(b.htmlElementProto)
	b.Associate(el, obj)
	return obj
}

// BindDocument creates the JavaScript document object for a dom document
// and sets it as the document global.
func (b *ElementBinder) BindDocument(doc *dom.Document) *goja.Object {
	vm := b.runtime.vm
	jsDoc := vm.NewObject()
	jsDoc.SetPrototype(b.documentProto)

	jsDoc.Set("nodeType", int(dom.DocumentNode))
	jsDoc.Set("nodeName", "#document")

	jsDoc.DefineAccessorProperty("contentType", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(doc.ContentType())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsDoc.DefineAccessorProperty("documentElement", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		el := doc.DocumentElement()
		if el == nil {
			return goja.Null()
		}
		return b.BindElement(el)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsDoc.DefineAccessorProperty("body", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		for _, el := range doc.GetElementsByTagName("body") {
			return b.BindElement(el)
		}
		return goja.Null()
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	jsDoc.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Null()
		}
		el := doc.GetElementById(call.Arguments[0].String())
		if el == nil {
			return goja.Null()
		}
		return b.BindElement(el)
	})

	jsDoc.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue([]interface{}{})
		}
		elements := doc.GetElementsByTagName(call.Arguments[0].String())
		bound := make([]interface{}, len(elements))
		for i, el := range elements {
			bound[i] = b.BindElement(el)
		}
		return vm.ToValue(bound)
	})

	jsDoc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.NewTypeError("createElement requires a tag name"))
		}
		tagName := call.Arguments[0].String()
		is := ""
		if len(call.Arguments) > 1 {
			if optObj, ok := call.Arguments[1].(*goja.Object); ok {
				if v := optObj.Get("is"); v != nil && !goja.IsUndefined(v) {
					is = v.String()
				}
			}
		}

		el := doc.CreateElementIs(tagName, is)
		if b.registry != nil && is != "" {
			b.registry.Upgrade(el)
		}
		return b.BindElement(el)
	})

	vm.Set("document", jsDoc)
	return jsDoc
}
