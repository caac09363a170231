// Package js hosts customized built-in elements on the goja JavaScript
// engine: a runtime wrapper, the event listener substrate, DOM bindings,
// the custom element registry, and automatic event wiring for on-prefixed
// handler methods.
package js

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// Runtime wraps a goja JavaScript runtime with the globals this library
// needs: a console, queueMicrotask, and error accumulation.
type Runtime struct {
	vm        *goja.Runtime
	eventLoop *eventLoop

	// mu serializes script execution. Error and hook state is guarded
	// separately by hookMu so code running inside Execute can report
	// errors and warnings without deadlocking.
	mu sync.Mutex

	hookMu    sync.Mutex
	errors    []error
	onError   func(error)
	onWarning func(string)
}

// NewRuntime creates a new JavaScript runtime.
func NewRuntime() *Runtime {
	vm := goja.New()

	r := &Runtime{
		vm:        vm,
		eventLoop: newEventLoop(),
		errors:    make([]error, 0),
	}

	r.setupConsole()
	r.setupGlobals()

	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// SetOnError sets a callback for JavaScript errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.onError = handler
}

// SetOnWarning sets a callback for warnings (console.warn and library
// warnings such as duplicate element definitions).
func (r *Runtime) SetOnWarning(handler func(string)) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.onWarning = handler
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.recordError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript runs JavaScript code with a source name for error messages.
// Scripts are compiled in non-strict (sloppy) mode; scripts that need
// strict mode should include a "use strict" directive.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.recordError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.recordError(err)
		return err
	}

	_, err = r.vm.RunProgram(program)
	if err != nil {
		r.recordError(err)
	}
	return err
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.errors = r.errors[:0]
}

// ReportError records an error raised by a listener or lifecycle
// callback. Safe to call from code running inside Execute.
func (r *Runtime) ReportError(err error) {
	if err == nil {
		return
	}
	r.recordError(err)
}

// recordError appends err and fires the error hook.
func (r *Runtime) recordError(err error) {
	r.hookMu.Lock()
	r.errors = append(r.errors, err)
	hook := r.onError
	r.hookMu.Unlock()
	if hook != nil {
		hook(err)
	}
}

// Warn emits a warning through the warning hook, falling back to stdout.
func (r *Runtime) Warn(message string) {
	r.hookMu.Lock()
	hook := r.onWarning
	r.hookMu.Unlock()
	if hook != nil {
		hook(message)
		return
	}
	fmt.Println("[WARN]", message)
}

// DrainMicrotasks runs queued microtasks until the queue is empty.
func (r *Runtime) DrainMicrotasks() {
	r.eventLoop.drain()
}

// HasPendingWork returns true if there are microtasks waiting.
func (r *Runtime) HasPendingWork() bool {
	return r.eventLoop.hasPending()
}

// setupConsole creates the console object with log, warn, error, etc.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	console.Set("log", func(call goja.FunctionCall) goja.Value {
		fmt.Println(formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("warn", func(call goja.FunctionCall) goja.Value {
		r.Warn(formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("error", func(call goja.FunctionCall) goja.Value {
		fmt.Println("[ERROR]", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("info", func(call goja.FunctionCall) goja.Value {
		fmt.Println("[INFO]", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("debug", func(call goja.FunctionCall) goja.Value {
		fmt.Println("[DEBUG]", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// setupGlobals wires the remaining globals onto the global object.
func (r *Runtime) setupGlobals() {
	global := r.vm.GlobalObject()
	r.vm.Set("globalThis", global)
	r.vm.Set("self", global)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		r.eventLoop.queueMicrotask(callback, nil)
		return goja.Undefined()
	})
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	result := ""
	for i, arg := range args {
		if i > 0 {
			result += " "
		}
		result += formatValue(arg)
	}
	return result
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
