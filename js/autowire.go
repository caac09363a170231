package js

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// HandlerEvents is the documented method-name to event-name table for
// auto-wired handlers. EventNameForHandler derives the event name by
// blind prefix-strip and lowercasing, which is only guaranteed correct
// for this family: every name here lowercases to its native spelling.
// When extending the table, verify the new event's native spelling
// instead of trusting the transform.
var HandlerEvents = map[string]string{
	"onClick":       "click",
	"onDblClick":    "dblclick",
	"onMouseDown":   "mousedown",
	"onMouseUp":     "mouseup",
	"onMouseMove":   "mousemove",
	"onMouseOver":   "mouseover",
	"onMouseOut":    "mouseout",
	"onContextMenu": "contextmenu",
	"onKeyDown":     "keydown",
	"onKeyUp":       "keyup",
	"onKeyPress":    "keypress",
	"onInput":       "input",
	"onChange":      "change",
	"onSubmit":      "submit",
	"onFocus":       "focus",
	"onBlur":        "blur",
	"onWheel":       "wheel",
}

// IsHandlerName reports whether name follows the auto-wiring convention:
// "on" followed by an uppercase ASCII letter.
func IsHandlerName(name string) bool {
	return len(name) >= 3 && name[0] == 'o' && name[1] == 'n' && name[2] >= 'A' && name[2] <= 'Z'
}

// EventNameForHandler derives the event name for a handler method name by
// stripping the "on" prefix and lowercasing the remainder:
// "onDblClick" becomes "dblclick".
func EventNameForHandler(name string) string {
	return strings.ToLower(name[2:])
}

// AutoWirer attaches on-prefixed handler methods as event listeners when
// an instance connects and removes them when it disconnects. Each wired
// handler property is redefined on the instance as non-writable, so the
// listener and the visible method cannot drift apart.
type AutoWirer struct {
	runtime *Runtime
	events  *EventBinder

	// cleanups holds each instance's teardown closures in wiring order.
	cleanups map[*goja.Object][]func()

	getOwnPropertyNames goja.Callable
	objectProto         goja.Value
}

// NewAutoWirer creates an auto wirer for the runtime.
func NewAutoWirer(runtime *Runtime, events *EventBinder) *AutoWirer {
	vm := runtime.vm
	objectCtor := vm.Get("Object").ToObject(vm)
	getOwnPropertyNames, ok := goja.AssertFunction(objectCtor.Get("getOwnPropertyNames"))
	if !ok {
		// Object.getOwnPropertyNames is a required intrinsic.
		panic("js: Object.getOwnPropertyNames is not callable")
	}
	return &AutoWirer{
		runtime:             runtime,
		events:              events,
		cleanups:            make(map[*goja.Object][]func()),
		getOwnPropertyNames: getOwnPropertyNames,
		objectProto:         objectCtor.Get("prototype"),
	}
}

// Setup installs the withAutoEvents mixin and its wiring hooks on the
// global object.
func (w *AutoWirer) Setup() error {
	vm := w.runtime.vm

	vm.Set("__wireAutoEvents", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		w.Wire(call.Arguments[0].ToObject(vm))
		return goja.Undefined()
	})

	vm.Set("__unwireAutoEvents", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		w.Unwire(call.Arguments[0].ToObject(vm))
		return goja.Undefined()
	})

	_, err := w.runtime.Execute(autoEventsBootstrap)
	return err
}

// autoEventsBootstrap defines withAutoEvents(Base): a subclass that wires
// handlers after the base connection logic and unwires after the base
// disconnection logic, and forwards attribute changes to the base
// unmodified.
const autoEventsBootstrap = `
(function() {
	'use strict';
	globalThis.withAutoEvents = function(Base) {
		return class extends Base {
			connectedCallback() {
				if (typeof super.connectedCallback === 'function') {
					super.connectedCallback();
				}
				__wireAutoEvents(this);
			}
			disconnectedCallback() {
				if (typeof super.disconnectedCallback === 'function') {
					super.disconnectedCallback();
				}
				__unwireAutoEvents(this);
			}
			attributeChangedCallback(name, oldValue, newValue) {
				if (typeof super.attributeChangedCallback === 'function') {
					super.attributeChangedCallback(name, oldValue, newValue);
				}
			}
		};
	};
})();
`

// Wire scans the instance's prototype chain for handler-shaped methods,
// registers each as an event listener bound to the instance, and locks
// the handler property. Wire does not check for a previous wiring pass;
// the caller alternates Wire and Unwire per connect/disconnect cycle.
func (w *AutoWirer) Wire(instance *goja.Object) {
	target := w.events.GetOrCreateTarget(instance)

	for _, name := range w.collectHandlerNames(instance) {
		// Resolve through the instance so the most-derived override wins.
		fn, ok := goja.AssertFunction(instance.Get(name))
		if !ok {
			continue // matched the convention but not callable: not a handler
		}

		eventName := EventNameForHandler(name)
		bound := w.bindHandler(instance, fn)
		boundFn, _ := goja.AssertFunction(bound)
		target.AddEventListener(eventName, boundFn, bound, false)
		w.cleanups[instance] = append(w.cleanups[instance], func() {
			target.RemoveEventListener(eventName, bound)
		})

		// Non-writable but still configurable: assignment fails loudly
		// in strict mode while a later wiring pass can redefine.
		if err := instance.DefineDataProperty(name, bound, goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			w.runtime.ReportError(fmt.Errorf("locking handler %s: %w", name, err))
		}
	}
}

// Unwire runs the instance's teardown closures in the order they were
// added and resets the registry. Calling Unwire on an instance with no
// wired handlers is a no-op.
func (w *AutoWirer) Unwire(instance *goja.Object) {
	for _, cleanup := range w.cleanups[instance] {
		cleanup()
	}
	delete(w.cleanups, instance)
}

// Clear drops the teardown closures of every instance without running
// them. Used at environment teardown, where the listeners they would
// remove are dropped wholesale anyway.
func (w *AutoWirer) Clear() {
	w.cleanups = make(map[*goja.Object][]func())
}

// WiredCount returns the number of teardown closures currently held for
// an instance.
func (w *AutoWirer) WiredCount(instance *goja.Object) int {
	return len(w.cleanups[instance])
}

// collectHandlerNames walks the prototype chain from the instance itself
// up to, but not including, Object.prototype and collects handler-shaped
// own property names. A name found at several chain levels counts once.
func (w *AutoWirer) collectHandlerNames(instance *goja.Object) []string {
	seen := make(map[string]bool)
	var names []string

	for level := instance; level != nil && !level.SameAs(w.objectProto); level = level.Prototype() {
		for _, name := range w.ownPropertyNames(level) {
			if !IsHandlerName(name) || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ownPropertyNames lists an object's own property names, including
// non-enumerable ones. Class methods are non-enumerable, so Keys() alone
// would miss every handler defined in a class body.
func (w *AutoWirer) ownPropertyNames(obj *goja.Object) []string {
	vm := w.runtime.vm
	res, err := w.getOwnPropertyNames(goja.Undefined(), obj)
	if err != nil {
		w.runtime.ReportError(err)
		return nil
	}
	arr := res.ToObject(vm)
	length := int(arr.Get("length").ToInteger())
	names := make([]string, 0, length)
	for i := 0; i < length; i++ {
		if v := arr.Get(strconv.Itoa(i)); v != nil {
			names = append(names, v.String())
		}
	}
	return names
}

// bindHandler creates the JS function registered as the listener and
// installed as the locked property: a call forwards to fn with this
// permanently set to instance.
func (w *AutoWirer) bindHandler(instance *goja.Object, fn goja.Callable) goja.Value {
	return w.runtime.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		ret, err := fn(instance, call.Arguments...)
		if err != nil {
			w.runtime.ReportError(err)
			return goja.Undefined()
		}
		return ret
	})
}
