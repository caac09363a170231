package js

import (
	"sync"

	"github.com/dop251/goja"
)

// Event dispatch in this library is at-target only: listeners are scoped
// to one instance and there is no capture or bubble tree walk. The phase
// constants exist for API fidelity with the DOM Event interface.
const (
	eventPhaseNone     = 0
	eventPhaseAtTarget = 2
)

// eventListener represents a registered event listener.
type eventListener struct {
	id       int
	callback goja.Callable
	value    goja.Value // original value, used for identity comparison
	once     bool
}

// EventTarget manages event listeners for a single target object.
type EventTarget struct {
	listeners map[string][]eventListener
	nextID    int
	mu        sync.RWMutex
}

// NewEventTarget creates a new EventTarget.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string][]eventListener),
	}
}

// AddEventListener registers an event listener. Registering the same
// function value twice for the same event type is a no-op.
func (et *EventTarget) AddEventListener(eventType string, callback goja.Callable, value goja.Value, once bool) {
	et.mu.Lock()
	defer et.mu.Unlock()

	for _, l := range et.listeners[eventType] {
		if l.value.SameAs(value) {
			return // already registered
		}
	}

	et.nextID++
	et.listeners[eventType] = append(et.listeners[eventType], eventListener{
		id:       et.nextID,
		callback: callback,
		value:    value,
		once:     once,
	})
}

// RemoveEventListener unregisters an event listener by function identity.
func (et *EventTarget) RemoveEventListener(eventType string, value goja.Value) {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.value.SameAs(value) {
			et.listeners[eventType] = append(listeners[:i], listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of listeners for the event type.
func (et *EventTarget) ListenerCount(eventType string) int {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return len(et.listeners[eventType])
}

// DispatchEvent invokes the registered listeners for the event's type in
// registration order. Returns true unless a listener called
// preventDefault on a cancelable event. Listener exceptions are reported
// to the runtime and do not stop dispatch.
func (et *EventTarget) DispatchEvent(r *Runtime, event *goja.Object) bool {
	et.mu.RLock()
	eventType := event.Get("type").String()
	listeners := make([]eventListener, len(et.listeners[eventType]))
	copy(listeners, et.listeners[eventType])
	et.mu.RUnlock()

	var toRemove []eventListener

	for _, l := range listeners {
		if _, err := l.callback(event.Get("currentTarget"), event); err != nil {
			r.ReportError(err)
		}

		if l.once {
			toRemove = append(toRemove, l)
		}

		if stopImmediate := event.Get("_stopImmediate"); stopImmediate != nil && stopImmediate.ToBoolean() {
			break
		}
	}

	if len(toRemove) > 0 {
		et.mu.Lock()
		for _, l := range toRemove {
			listeners := et.listeners[eventType]
			for i, existing := range listeners {
				if existing.id == l.id {
					et.listeners[eventType] = append(listeners[:i], listeners[i+1:]...)
					break
				}
			}
		}
		et.mu.Unlock()
	}

	if defaultPrevented := event.Get("defaultPrevented"); defaultPrevented != nil {
		return !defaultPrevented.ToBoolean()
	}
	return true
}

// EventBinder owns the per-object event targets and the JS-visible
// addEventListener/removeEventListener/dispatchEvent methods.
type EventBinder struct {
	runtime   *Runtime
	targetMap map[*goja.Object]*EventTarget
	mu        sync.RWMutex
}

// NewEventBinder creates a new event binder.
func NewEventBinder(runtime *Runtime) *EventBinder {
	return &EventBinder{
		runtime:   runtime,
		targetMap: make(map[*goja.Object]*EventTarget),
	}
}

// GetOrCreateTarget gets or creates the EventTarget for a JS object.
func (eb *EventBinder) GetOrCreateTarget(obj *goja.Object) *EventTarget {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if target, ok := eb.targetMap[obj]; ok {
		return target
	}

	target := NewEventTarget()
	eb.targetMap[obj] = target
	return target
}

// ReleaseTarget drops the EventTarget for a JS object.
func (eb *EventBinder) ReleaseTarget(obj *goja.Object) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.targetMap, obj)
}

// BindEventTargetPrototype installs addEventListener, removeEventListener
// and dispatchEvent on a prototype object. The acting target is resolved
// through the call's this value, so every instance whose chain includes
// the prototype shares one set of methods.
func (eb *EventBinder) BindEventTargetPrototype(proto *goja.Object) {
	vm := eb.runtime.vm

	proto.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		this := call.This.ToObject(vm)
		eventType := call.Arguments[0].String()
		callback, ok := goja.AssertFunction(call.Arguments[1])
		if !ok {
			return goja.Undefined()
		}

		once := false
		if len(call.Arguments) > 2 {
			if optObj, ok := call.Arguments[2].(*goja.Object); ok {
				if v := optObj.Get("once"); v != nil {
					once = v.ToBoolean()
				}
			}
		}

		eb.GetOrCreateTarget(this).AddEventListener(eventType, callback, call.Arguments[1], once)
		return goja.Undefined()
	})

	proto.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		this := call.This.ToObject(vm)
		eventType := call.Arguments[0].String()
		if _, ok := goja.AssertFunction(call.Arguments[1]); !ok {
			return goja.Undefined()
		}

		eb.GetOrCreateTarget(this).RemoveEventListener(eventType, call.Arguments[1])
		return goja.Undefined()
	})

	proto.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return vm.ToValue(true)
		}
		this := call.This.ToObject(vm)
		event := call.Arguments[0].ToObject(vm)
		if event == nil {
			return vm.ToValue(true)
		}
		return vm.ToValue(eb.Dispatch(this, event))
	})
}

// Dispatch delivers an event to the listeners registered on target.
func (eb *EventBinder) Dispatch(target *goja.Object, event *goja.Object) bool {
	event.Set("target", target)
	event.Set("currentTarget", target)
	event.Set("eventPhase", eventPhaseAtTarget)
	result := eb.GetOrCreateTarget(target).DispatchEvent(eb.runtime, event)
	event.Set("eventPhase", eventPhaseNone)
	event.Set("currentTarget", goja.Null())
	return result
}

// DispatchNamed creates an event of the given type and dispatches it on
// target. This is the Go-side entry point hosts use to simulate native
// event delivery.
func (eb *EventBinder) DispatchNamed(target *goja.Object, eventType string) bool {
	return eb.Dispatch(target, eb.CreateEvent(eventType, nil))
}

// CreateEvent creates a new Event object.
func (eb *EventBinder) CreateEvent(eventType string, options map[string]interface{}) *goja.Object {
	vm := eb.runtime.vm
	event := vm.NewObject()

	event.Set("type", eventType)
	event.Set("target", goja.Null())
	event.Set("currentTarget", goja.Null())
	event.Set("eventPhase", eventPhaseNone)
	event.Set("bubbles", false)
	event.Set("cancelable", false)
	event.Set("defaultPrevented", false)
	event.Set("isTrusted", false)

	// Internal flags
	event.Set("_stopImmediate", false)

	if options != nil {
		if v, ok := options["bubbles"]; ok {
			event.Set("bubbles", v)
		}
		if v, ok := options["cancelable"]; ok {
			event.Set("cancelable", v)
		}
		if v, ok := options["detail"]; ok {
			event.Set("detail", v)
		}
	}

	event.Set("preventDefault", func(call goja.FunctionCall) goja.Value {
		if event.Get("cancelable").ToBoolean() {
			event.Set("defaultPrevented", true)
		}
		return goja.Undefined()
	})

	event.Set("stopPropagation", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	event.Set("stopImmediatePropagation", func(call goja.FunctionCall) goja.Value {
		event.Set("_stopImmediate", true)
		return goja.Undefined()
	})

	event.Set("NONE", eventPhaseNone)
	event.Set("AT_TARGET", eventPhaseAtTarget)

	return event
}

// SetupEventConstructors sets up the Event and CustomEvent constructors
// on the global object.
func (eb *EventBinder) SetupEventConstructors() {
	vm := eb.runtime.vm

	vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		eventType := ""
		if len(call.Arguments) > 0 {
			eventType = call.Arguments[0].String()
		}
		return eb.CreateEvent(eventType, exportEventOptions(vm, call.Arguments, false))
	})

	vm.Set("CustomEvent", func(call goja.ConstructorCall) *goja.Object {
		eventType := ""
		if len(call.Arguments) > 0 {
			eventType = call.Arguments[0].String()
		}
		options := exportEventOptions(vm, call.Arguments, true)
		event := eb.CreateEvent(eventType, options)
		if options == nil || options["detail"] == nil {
			event.Set("detail", goja.Null())
		}
		return event
	})
}

// exportEventOptions reads an event init dictionary from the second
// constructor argument.
func exportEventOptions(vm *goja.Runtime, args []goja.Value, withDetail bool) map[string]interface{} {
	if len(args) < 2 || goja.IsUndefined(args[1]) || goja.IsNull(args[1]) {
		return nil
	}
	optObj := args[1].ToObject(vm)
	if optObj == nil {
		return nil
	}
	options := make(map[string]interface{})
	if v := optObj.Get("bubbles"); v != nil && !goja.IsUndefined(v) {
		options["bubbles"] = v.ToBoolean()
	}
	if v := optObj.Get("cancelable"); v != nil && !goja.IsUndefined(v) {
		options["cancelable"] = v.ToBoolean()
	}
	if withDetail {
		if v := optObj.Get("detail"); v != nil && !goja.IsUndefined(v) {
			options["detail"] = v
		}
	}
	return options
}

// ClearTargets drops all event target registrations.
func (eb *EventBinder) ClearTargets() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.targetMap = make(map[*goja.Object]*EventTarget)
}
