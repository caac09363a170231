package js

import (
	"github.com/dop251/goja"

	"github.com/mgrady/customel/dom"
)

// Environment wires the runtime, event plumbing, element bindings, the
// custom element registry and the auto wirer into one host for a
// document. It is the usual entry point for embedders.
type Environment struct {
	runtime  *Runtime
	events   *EventBinder
	binder   *ElementBinder
	registry *CustomElementRegistry
	wirer    *AutoWirer
	document *dom.Document
}

// NewEnvironment creates a fully wired environment with no document
// loaded yet.
func NewEnvironment() (*Environment, error) {
	runtime := NewRuntime()

	events := NewEventBinder(runtime)
	events.SetupEventConstructors()

	binder := NewElementBinder(runtime, events)
	registry := NewCustomElementRegistry(runtime, binder)
	registry.BindCustomElements()

	wirer := NewAutoWirer(runtime, events)
	if err := wirer.Setup(); err != nil {
		return nil, err
	}

	return &Environment{
		runtime:  runtime,
		events:   events,
		binder:   binder,
		registry: registry,
		wirer:    wirer,
	}, nil
}

// Runtime returns the underlying JS runtime.
func (e *Environment) Runtime() *Runtime { return e.runtime }

// Registry returns the custom element registry.
func (e *Environment) Registry() *CustomElementRegistry { return e.registry }

// Binder returns the element binder.
func (e *Environment) Binder() *ElementBinder { return e.binder }

// Events returns the event binder.
func (e *Environment) Events() *EventBinder { return e.events }

// Wirer returns the auto wirer.
func (e *Environment) Wirer() *AutoWirer { return e.wirer }

// Document returns the currently loaded document, or nil.
func (e *Environment) Document() *dom.Document { return e.document }

// LoadDocument binds a parsed document as the global document, starts
// observing it for lifecycle changes, and upgrades any elements whose
// definitions already exist. A previously loaded document is released:
// its listeners and auto-wired handlers are dropped.
func (e *Environment) LoadDocument(doc *dom.Document) {
	if e.document != nil {
		e.registry.Unobserve(e.document)
		e.document.ForEachElement(func(el *dom.Element) {
			if obj := e.binder.CachedObject(el); obj != nil {
				e.wirer.Unwire(obj)
				e.events.ReleaseTarget(obj)
			}
		})
	}
	e.document = doc
	e.binder.BindDocument(doc)
	e.registry.Observe(doc)
	e.registry.UpgradeTree(doc)
}

// ExecuteScripts runs the text of every script element in the loaded
// document, in document order. Execution continues past a failing
// script; failures are recorded on the runtime.
func (e *Environment) ExecuteScripts() {
	if e.document == nil {
		return
	}
	for _, script := range e.document.GetElementsByTagName("script") {
		src := script.TextContent()
		if src == "" {
			continue
		}
		_ = e.runtime.ExecuteScript(src, "<script>")
	}
	e.runtime.DrainMicrotasks()
}

// DispatchNamed dispatches an event of the given type to a DOM element's
// JS binding and reports whether default was not prevented.
func (e *Environment) DispatchNamed(el *dom.Element, eventType string) bool {
	obj := e.binder.BindElement(el)
	result := e.events.DispatchNamed(obj, eventType)
	e.runtime.DrainMicrotasks()
	return result
}

// InstanceOf returns the upgraded class instance bound to an element,
// or nil if the element was never upgraded. A plain HTMLElement binding
// does not count.
func (e *Environment) InstanceOf(el *dom.Element) *goja.Object {
	if !e.binder.IsUpgraded(el) {
		return nil
	}
	return e.binder.CachedObject(el)
}

// Close releases the environment's per-object state and stops observing
// the loaded document.
func (e *Environment) Close() {
	if e.document != nil {
		e.registry.Unobserve(e.document)
		dom.ClearLifecycleObservers(e.document)
		e.document = nil
	}
	e.wirer.Clear()
	e.events.ClearTargets()
	e.runtime.eventLoop.clear()
}
