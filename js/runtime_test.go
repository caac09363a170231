package js

import (
	"strings"
	"testing"
)

func TestExecuteBasic(t *testing.T) {
	r := NewRuntime()

	result, err := r.Execute("6 * 7")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 42 {
		t.Errorf("result = %d, want 42", result.ToInteger())
	}
}

func TestExecuteErrorRecorded(t *testing.T) {
	r := NewRuntime()

	if _, err := r.Execute(`throw new Error('boom')`); err == nil {
		t.Fatal("throwing script did not return an error")
	}
	errs := r.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d recorded errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "boom") {
		t.Errorf("recorded error %q does not contain the thrown message", errs[0])
	}

	r.ClearErrors()
	if len(r.Errors()) != 0 {
		t.Error("ClearErrors left errors behind")
	}
}

func TestErrorHookFires(t *testing.T) {
	r := NewRuntime()

	var seen []error
	r.SetOnError(func(err error) { seen = append(seen, err) })

	_, _ = r.Execute(`throw new Error('hooked')`)
	if len(seen) != 1 {
		t.Fatalf("error hook fired %d times, want 1", len(seen))
	}
}

func TestConsoleWarnRoutesToHook(t *testing.T) {
	r := NewRuntime()

	var warnings []string
	r.SetOnWarning(func(message string) { warnings = append(warnings, message) })

	if _, err := r.Execute(`console.warn('careful', 42)`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if warnings[0] != "careful 42" {
		t.Errorf("warning = %q, want %q", warnings[0], "careful 42")
	}
}

func TestExecuteScriptCompileError(t *testing.T) {
	r := NewRuntime()

	if err := r.ExecuteScript(`function (`, "broken.js"); err == nil {
		t.Fatal("invalid script did not return an error")
	}
	if len(r.Errors()) == 0 {
		t.Error("compile error was not recorded")
	}

	// The runtime stays usable after a failed script.
	result, err := r.Execute("1 + 1")
	if err != nil {
		t.Fatalf("Execute after failure: %v", err)
	}
	if result.ToInteger() != 2 {
		t.Errorf("result = %d, want 2", result.ToInteger())
	}
}

func TestQueueMicrotask(t *testing.T) {
	r := NewRuntime()

	_, err := r.Execute(`
		globalThis.order = [];
		queueMicrotask(function() {
			order.push('outer');
			queueMicrotask(function() { order.push('inner'); });
		});
		order.push('sync');
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !r.HasPendingWork() {
		t.Fatal("no pending microtasks after queueMicrotask")
	}
	r.DrainMicrotasks()
	if r.HasPendingWork() {
		t.Error("microtasks still pending after drain")
	}

	result, err := r.Execute("order.join(',')")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.String() != "sync,outer,inner" {
		t.Errorf("order = %q, want %q", result.String(), "sync,outer,inner")
	}
}
