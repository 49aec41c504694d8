package stdlib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cellang/jsvm/internal/interp"
	"github.com/cellang/jsvm/internal/lexer"
	"github.com/cellang/jsvm/internal/parser"
)

func run(t *testing.T, src string) (interp.Value, *interp.Interpreter, error) {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors for %q: %v", src, p.Errors())
	}
	var buf bytes.Buffer
	i := interp.New(&buf)
	Install(i)
	v, err := i.Eval(program)
	return v, i, err
}

func TestMathMethods(t *testing.T) {
	v, _, err := run(t, `Math.floor(3.7) + Math.max(1, 9, 2) + Math.round(Math.PI)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(interp.Number)
	if !ok || float64(n) != 3+9+3 {
		t.Fatalf("expected 15, got %v (%T)", v, v)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v, _, err := run(t, `JSON.stringify(JSON.parse('{"a":1,"b":[2,3],"c":"x"}'))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := v.(interp.String)
	if !ok {
		t.Fatalf("expected a string, got %v (%T)", v, v)
	}
	got := string(s)
	for _, want := range []string{`"a":1`, `"b":[2,3]`, `"c":"x"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected stringified JSON to contain %q, got %q", want, got)
		}
	}
}

func TestJSONStringifySkipsUndefinedAndFunctions(t *testing.T) {
	v, _, err := run(t, `JSON.stringify({a: 1, b: undefined, c: function(){}})`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := v.(interp.String)
	if !ok || string(s) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %v (%T)", v, v)
	}
}

func TestPromiseResolveThenChaining(t *testing.T) {
	v, _, err := run(t, `
		let result = 0;
		Promise.resolve(1).then(function(x){ result = x + 1; return result; });
		result;
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(interp.Number)
	if !ok || float64(n) != 2 {
		t.Fatalf("expected 2, got %v (%T)", v, v)
	}
}

func TestAsyncAwaitSumsResolvedPromises(t *testing.T) {
	v, _, err := run(t, `async function f(){ return (await Promise.resolve(2)) + (await Promise.resolve(3)); } f()`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(*interp.Object)
	if !ok || obj.Class != "Promise" {
		t.Fatalf("expected a Promise, got %v (%T)", v, v)
	}
	if state, _ := obj.Internal["state"].(string); state != "fulfilled" {
		t.Fatalf("expected fulfilled promise, got state=%v", obj.Internal["state"])
	}
	n, ok := obj.Internal["value"].(interp.Number)
	if !ok || float64(n) != 5 {
		t.Fatalf("expected fulfilled value 5, got %v", obj.Internal["value"])
	}
}

func TestPromiseAllSettlesInOrder(t *testing.T) {
	v, _, err := run(t, `Promise.all([Promise.resolve(1), Promise.resolve(2), 3])`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(*interp.Object)
	if !ok || obj.Class != "Promise" {
		t.Fatalf("expected a Promise, got %v (%T)", v, v)
	}
	arr, ok := obj.Internal["value"].(*interp.Array)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element resolved array, got %v", obj.Internal["value"])
	}
	for idx, want := range []float64{1, 2, 3} {
		if n, ok := arr.Elements[idx].(interp.Number); !ok || float64(n) != want {
			t.Fatalf("expected element %d to be %v, got %v", idx, want, arr.Elements[idx])
		}
	}
}

func TestRegExpTestAndExec(t *testing.T) {
	v, _, err := run(t, `/a(b+)c/.test("xabbcX")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := v.(interp.Boolean); !ok || !bool(b) {
		t.Fatalf("expected true, got %v (%T)", v, v)
	}

	v2, _, err := run(t, `/a(b+)c/.exec("xabbcX")[1]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v2.(interp.String); !ok || string(s) != "bb" {
		t.Fatalf("expected capture group 'bb', got %v (%T)", v2, v2)
	}
}

func TestObjectFreezeThrowsInStrictMode(t *testing.T) {
	_, _, err := run(t, `"use strict"; const o=Object.freeze({x:1}); o.x = 2;`)
	if err == nil {
		t.Fatalf("expected a TypeError assigning to a frozen object in strict mode")
	}
	if _, ok := err.(*interp.ThrownError); !ok {
		t.Fatalf("expected a *ThrownError, got %T: %v", err, err)
	}
}

func TestObjectFreezeSilentlyNoOpsInSloppyMode(t *testing.T) {
	v, _, err := run(t, `const o=Object.freeze({x:1}); o.x = 2; o.x`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(interp.Number); !ok || float64(n) != 1 {
		t.Fatalf("expected the frozen property to stay 1, got %v", v)
	}
}

func TestObjectKeysValuesEntries(t *testing.T) {
	v, _, err := run(t, `Object.keys({a:1,b:2}).join(",")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(interp.String); !ok || string(s) != "a,b" {
		t.Fatalf("expected \"a,b\", got %v (%T)", v, v)
	}

	v2, _, err := run(t, `Object.values({a:1,b:2}).join(",") + "|" + Object.entries({a:1,b:2}).join(";")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v2.(interp.String); !ok || string(s) != "1,2|a,1;b,2" {
		t.Fatalf("expected \"1,2|a,1;b,2\", got %v (%T)", v2, v2)
	}
}

func TestConsoleLogWritesToInterpreterOut(t *testing.T) {
	var buf bytes.Buffer
	l := lexer.New(`console.log("hello", 1, true);`)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	i := interp.New(&buf)
	Install(i)
	if _, err := i.Eval(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "hello 1 true\n" {
		t.Fatalf("unexpected console output: %q", got)
	}
}

func TestLocalStorageGetSetRemove(t *testing.T) {
	v, _, err := run(t, `
		localStorage.setItem("k", "v1");
		localStorage.setItem("k2", "v2");
		let first = localStorage.getItem("k");
		localStorage.removeItem("k");
		let afterRemove = localStorage.getItem("k");
		first + "|" + (afterRemove === null);
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(interp.String); !ok || string(s) != "v1|true" {
		t.Fatalf("expected \"v1|true\", got %v (%T)", v, v)
	}
}
