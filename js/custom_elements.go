package js

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/mgrady/customel/dom"
)

// DefineOptions configures a customized built-in element definition.
type DefineOptions struct {
	// Extends names the built-in element being customized ("button",
	// "input", ...). Required: this registry only handles customized
	// built-ins, not autonomous custom elements.
	Extends string
}

// definition is one registered customized built-in element.
type definition struct {
	name      string
	extends   string
	ctor      *goja.Object
	construct goja.Constructor
	observed  []string
}

// CustomElementRegistry maps tag identifiers to element definitions and
// drives lifecycle callbacks from document mutations. It implements
// dom.LifecycleObserver.
type CustomElementRegistry struct {
	runtime *Runtime
	binder  *ElementBinder
	defs    map[string]*definition
	docs    []*dom.Document

	// OnWarning is called for warning conditions such as duplicate
	// definitions. When nil, warnings go through the runtime's hook.
	OnWarning func(message string)
}

// NewCustomElementRegistry creates a registry and links it to the binder
// so createElement can upgrade new elements.
func NewCustomElementRegistry(runtime *Runtime, binder *ElementBinder) *CustomElementRegistry {
	reg := &CustomElementRegistry{
		runtime: runtime,
		binder:  binder,
		defs:    make(map[string]*definition),
	}
	binder.registry = reg
	return reg
}

// reservedNames are hyphenated names the custom elements specification
// reserves for SVG and MathML.
var reservedNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// IsValidCustomElementName reports whether name is a valid custom element
// name: starts with a lowercase ASCII letter, contains a hyphen, has no
// uppercase ASCII letters, and is not reserved.
func IsValidCustomElementName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	hasHyphen := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			return false
		}
		if c == '-' {
			hasHyphen = true
		}
	}
	return hasHyphen && !reservedNames[name]
}

// Define registers a customized built-in element under name. A duplicate
// name is refused with a warning and the original definition is kept;
// this is deliberately not an error because markup referencing the name
// keeps working against the first definition.
func (reg *CustomElementRegistry) Define(name string, ctorVal goja.Value, opts DefineOptions) error {
	if !IsValidCustomElementName(name) {
		return dom.ErrSyntax(fmt.Sprintf("%q is not a valid custom element name", name))
	}
	if opts.Extends == "" {
		return dom.ErrNotSupported(fmt.Sprintf("definition for %q needs an extends target: customized built-in elements extend a native element", name))
	}

	ctorObj, ok := ctorVal.(*goja.Object)
	if !ok {
		return fmt.Errorf("definition for %q is not a constructor", name)
	}
	construct, ok := goja.AssertConstructor(ctorObj)
	if !ok {
		return fmt.Errorf("definition for %q is not a constructor", name)
	}

	if _, exists := reg.defs[name]; exists {
		reg.warn(fmt.Sprintf("duplicate custom element definition for %q ignored; the original registration is kept", name))
		return nil
	}

	reg.defs[name] = &definition{
		name:      name,
		extends:   opts.Extends,
		ctor:      ctorObj,
		construct: construct,
		observed:  readObservedAttributes(ctorObj),
	}

	// Elements already parsed into an observed document upgrade as soon
	// as their definition arrives.
	for _, doc := range reg.docs {
		reg.UpgradeTree(doc)
	}
	return nil
}

// readObservedAttributes reads the static observedAttributes list from a
// constructor once, at definition time, preserving the supplied order.
func readObservedAttributes(ctor *goja.Object) []string {
	v := ctor.Get("observedAttributes")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	arr, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	length := int(arr.Get("length").ToInteger())
	observed := make([]string, 0, length)
	for i := 0; i < length; i++ {
		item := arr.Get(fmt.Sprintf("%d", i))
		if item == nil || goja.IsUndefined(item) {
			continue
		}
		observed = append(observed, item.String())
	}
	return observed
}

// Get returns the constructor registered under name, or nil.
func (reg *CustomElementRegistry) Get(name string) *goja.Object {
	if def, ok := reg.defs[name]; ok {
		return def.ctor
	}
	return nil
}

// ObservedAttributes returns the attribute names observed by the
// definition registered under name, in registration-time order.
func (reg *CustomElementRegistry) ObservedAttributes(name string) []string {
	def, ok := reg.defs[name]
	if !ok {
		return nil
	}
	observed := make([]string, len(def.observed))
	copy(observed, def.observed)
	return observed
}

// warn routes a warning through the registry hook or the runtime.
func (reg *CustomElementRegistry) warn(message string) {
	if reg.OnWarning != nil {
		reg.OnWarning(message)
		return
	}
	reg.runtime.Warn(message)
}

// Observe registers the registry for lifecycle notifications on doc and
// remembers it so later definitions can upgrade its elements.
func (reg *CustomElementRegistry) Observe(doc *dom.Document) {
	for _, d := range reg.docs {
		if d == doc {
			return
		}
	}
	dom.RegisterLifecycleObserver(doc, reg)
	reg.docs = append(reg.docs, doc)
}

// Unobserve stops lifecycle notifications for doc.
func (reg *CustomElementRegistry) Unobserve(doc *dom.Document) {
	dom.UnregisterLifecycleObserver(doc, reg)
	for i, d := range reg.docs {
		if d == doc {
			reg.docs = append(reg.docs[:i], reg.docs[i+1:]...)
			return
		}
	}
}

// Upgrade constructs the registered class instance for el if its is=""
// identifier names a definition whose extends target matches the
// element, and no instance exists yet. A plain HTMLElement binding
// created before the definition arrived (a script touched the element
// first) does not block the upgrade: the instance supersedes it. A
// connected element receives its connectedCallback immediately after
// construction.
func (reg *CustomElementRegistry) Upgrade(el *dom.Element) {
	def := reg.definitionFor(el)
	if def == nil || reg.binder.IsUpgraded(el) {
		return
	}

	instance, err := def.construct(nil)
	if err != nil {
		reg.runtime.ReportError(fmt.Errorf("constructing <%s is=%q>: %w", el.LocalName(), el.Is(), err))
		return
	}
	reg.binder.AssociateInstance(el, instance)

	if el.IsConnected() {
		reg.invokeCallback(instance, "connectedCallback")
	}
}

// UpgradeTree upgrades every element in the document carrying a
// registered is="" identifier, in document order.
func (reg *CustomElementRegistry) UpgradeTree(doc *dom.Document) {
	doc.ForEachElement(func(el *dom.Element) {
		if el.Is() != "" {
			reg.Upgrade(el)
		}
	})
}

// definitionFor returns the definition matching el's is="" identifier
// and extends target, or nil.
func (reg *CustomElementRegistry) definitionFor(el *dom.Element) *definition {
	is := el.Is()
	if is == "" {
		return nil
	}
	def, ok := reg.defs[is]
	if !ok || def.extends != el.LocalName() {
		return nil
	}
	return def
}

// instanceFor returns the upgraded instance for el, or nil when el is
// not a registered customized built-in or has not been upgraded.
func (reg *CustomElementRegistry) instanceFor(el *dom.Element) *goja.Object {
	if reg.definitionFor(el) == nil || !reg.binder.IsUpgraded(el) {
		return nil
	}
	return reg.binder.CachedObject(el)
}

// invokeCallback calls a lifecycle callback on instance if it defines
// one. Callback exceptions are reported and do not interrupt the caller.
func (reg *CustomElementRegistry) invokeCallback(instance *goja.Object, name string, args ...goja.Value) {
	fn, ok := goja.AssertFunction(instance.Get(name))
	if !ok {
		return
	}
	if _, err := fn(instance, args...); err != nil {
		reg.runtime.ReportError(fmt.Errorf("%s: %w", name, err))
	}
}

// OnElementConnected implements dom.LifecycleObserver. An element that
// was never upgraded (e.g. parsed markup defined after insertion) is
// upgraded here, which also delivers its connectedCallback.
func (reg *CustomElementRegistry) OnElementConnected(el *dom.Element) {
	if instance := reg.instanceFor(el); instance != nil {
		reg.invokeCallback(instance, "connectedCallback")
		return
	}
	reg.Upgrade(el)
}

// OnElementDisconnected implements dom.LifecycleObserver.
func (reg *CustomElementRegistry) OnElementDisconnected(el *dom.Element) {
	if instance := reg.instanceFor(el); instance != nil {
		reg.invokeCallback(instance, "disconnectedCallback")
	}
}

// OnAttributeChanged implements dom.LifecycleObserver. Only attributes in
// the definition's observed list reach attributeChangedCallback; values
// are forwarded unmodified as strings.
func (reg *CustomElementRegistry) OnAttributeChanged(el *dom.Element, name, oldValue, newValue string) {
	def := reg.definitionFor(el)
	if def == nil {
		return
	}
	observed := false
	for _, attr := range def.observed {
		if attr == name {
			observed = true
			break
		}
	}
	if !observed {
		return
	}
	instance := reg.instanceFor(el)
	if instance == nil {
		return
	}
	vm := reg.runtime.vm
	reg.invokeCallback(instance, "attributeChangedCallback",
		vm.ToValue(name), vm.ToValue(oldValue), vm.ToValue(newValue))
}

// BindCustomElements exposes the registry to JavaScript as the global
// customElements object with define and get.
func (reg *CustomElementRegistry) BindCustomElements() *goja.Object {
	vm := reg.runtime.vm
	obj := vm.NewObject()

	obj.Set("define", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("customElements.define requires a name and a constructor"))
		}
		name := call.Arguments[0].String()
		opts := DefineOptions{}
		if len(call.Arguments) > 2 {
			if optObj, ok := call.Arguments[2].(*goja.Object); ok {
				if v := optObj.Get("extends"); v != nil && !goja.IsUndefined(v) {
					opts.Extends = v.String()
				}
			}
		}
		if err := reg.Define(name, call.Arguments[1], opts); err != nil {
			panic(vm.NewTypeError(err.Error()))
		}
		return goja.Undefined()
	})

	obj.Set("get", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		if ctor := reg.Get(call.Arguments[0].String()); ctor != nil {
			return ctor
		}
		return goja.Undefined()
	})

	vm.Set("customElements", obj)
	return obj
}
