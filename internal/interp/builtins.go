package interp

import (
	"sort"
	"strconv"
	"strings"
)

// Array.prototype / String.prototype are implemented directly in the
// evaluator (rather than package stdlib) because they are exercised by
// the for-of/spread/destructuring machinery itself and the evaluator
// needs them unconditionally, unlike Math/JSON/Promise/RegExp which are
// genuinely external per spec.md §1's "standard-library surface".

type arrayMethodFn func(i *Interpreter, self *Array, args []Value) (Value, error)

var arrayPrototypeMethods map[string]arrayMethodFn

func init() {
	arrayPrototypeMethods = map[string]arrayMethodFn{
		"push": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			self.Elements = append(self.Elements, args...)
			return Number(float64(len(self.Elements))), nil
		},
		"pop": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			if len(self.Elements) == 0 {
				return TheUndefined, nil
			}
			last := self.Elements[len(self.Elements)-1]
			self.Elements = self.Elements[:len(self.Elements)-1]
			if _, ok := last.(Hole); ok {
				return TheUndefined, nil
			}
			return last, nil
		},
		"shift": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			if len(self.Elements) == 0 {
				return TheUndefined, nil
			}
			first := self.Elements[0]
			self.Elements = self.Elements[1:]
			if _, ok := first.(Hole); ok {
				return TheUndefined, nil
			}
			return first, nil
		},
		"unshift": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			self.Elements = append(append([]Value{}, args...), self.Elements...)
			return Number(float64(len(self.Elements))), nil
		},
		"slice": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			start, end := sliceBounds(args, len(self.Elements))
			out := NewArray(0)
			if start < end {
				out.Elements = append(out.Elements, self.Elements[start:end]...)
			}
			return out, nil
		},
		"splice": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			n := len(self.Elements)
			start := 0
			if len(args) > 0 {
				start = clampIndex(int(ToNumber(args[0])), n)
			}
			deleteCount := n - start
			if len(args) > 1 {
				deleteCount = int(ToNumber(args[1]))
				if deleteCount < 0 {
					deleteCount = 0
				}
				if start+deleteCount > n {
					deleteCount = n - start
				}
			}
			removed := NewArray(0)
			removed.Elements = append(removed.Elements, self.Elements[start:start+deleteCount]...)
			var inserted []Value
			if len(args) > 2 {
				inserted = args[2:]
			}
			tail := append([]Value{}, self.Elements[start+deleteCount:]...)
			self.Elements = append(append(self.Elements[:start], inserted...), tail...)
			return removed, nil
		},
		"concat": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			out := NewArray(0)
			out.Elements = append(out.Elements, self.Elements...)
			for _, a := range args {
				if arr, ok := a.(*Array); ok {
					out.Elements = append(out.Elements, arr.Elements...)
				} else {
					out.Elements = append(out.Elements, a)
				}
			}
			return out, nil
		},
		"join": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			sep := ","
			if len(args) > 0 {
				sep = ToPrimitiveString(args[0])
			}
			parts := make([]string, len(self.Elements))
			for idx, v := range self.Elements {
				if _, ok := v.(Hole); ok {
					continue
				}
				if isNullish(v) {
					continue
				}
				parts[idx] = ToPrimitiveString(v)
			}
			return String(strings.Join(parts, sep)), nil
		},
		"reverse": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			for l, r := 0, len(self.Elements)-1; l < r; l, r = l+1, r-1 {
				self.Elements[l], self.Elements[r] = self.Elements[r], self.Elements[l]
			}
			return self, nil
		},
		"indexOf": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			for idx, v := range self.Elements {
				if strictEquals(v, args[0]) {
					return Number(float64(idx)), nil
				}
			}
			return Number(-1), nil
		},
		"includes": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			if len(args) == 0 {
				return Boolean(false), nil
			}
			for _, v := range self.Elements {
				if strictEquals(v, args[0]) {
					return Boolean(true), nil
				}
			}
			return Boolean(false), nil
		},
		"forEach": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			if !ok {
				return TheUndefined, nil
			}
			for idx, v := range self.Elements {
				if _, err := i.callFunction(cb, []Value{v, Number(float64(idx)), self}, TheUndefined); err != nil {
					return TheUndefined, err
				}
			}
			return TheUndefined, nil
		},
		"map": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			out := NewArray(0)
			if !ok {
				return out, nil
			}
			for idx, v := range self.Elements {
				r, err := i.callFunction(cb, []Value{v, Number(float64(idx)), self}, TheUndefined)
				if err != nil {
					return out, err
				}
				out.Elements = append(out.Elements, r)
			}
			return out, nil
		},
		"filter": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			out := NewArray(0)
			if !ok {
				return out, nil
			}
			for idx, v := range self.Elements {
				r, err := i.callFunction(cb, []Value{v, Number(float64(idx)), self}, TheUndefined)
				if err != nil {
					return out, err
				}
				if ToBoolean(r) {
					out.Elements = append(out.Elements, v)
				}
			}
			return out, nil
		},
		"find": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			if !ok {
				return TheUndefined, nil
			}
			for idx, v := range self.Elements {
				r, err := i.callFunction(cb, []Value{v, Number(float64(idx)), self}, TheUndefined)
				if err != nil {
					return TheUndefined, err
				}
				if ToBoolean(r) {
					return v, nil
				}
			}
			return TheUndefined, nil
		},
		"some": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			if !ok {
				return Boolean(false), nil
			}
			for idx, v := range self.Elements {
				r, err := i.callFunction(cb, []Value{v, Number(float64(idx)), self}, TheUndefined)
				if err != nil {
					return Boolean(false), err
				}
				if ToBoolean(r) {
					return Boolean(true), nil
				}
			}
			return Boolean(false), nil
		},
		"every": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			if !ok {
				return Boolean(true), nil
			}
			for idx, v := range self.Elements {
				r, err := i.callFunction(cb, []Value{v, Number(float64(idx)), self}, TheUndefined)
				if err != nil {
					return Boolean(true), err
				}
				if !ToBoolean(r) {
					return Boolean(false), nil
				}
			}
			return Boolean(true), nil
		},
		"reduce": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, ok := callable(args)
			if !ok {
				return TheUndefined, nil
			}
			idx := 0
			var acc Value
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(self.Elements) == 0 {
					return TheUndefined, nil
				}
				acc = self.Elements[0]
				idx = 1
			}
			for ; idx < len(self.Elements); idx++ {
				r, err := i.callFunction(cb, []Value{acc, self.Elements[idx], Number(float64(idx)), self}, TheUndefined)
				if err != nil {
					return TheUndefined, err
				}
				acc = r
			}
			return acc, nil
		},
		"sort": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			cb, hasCb := callable(args)
			var sortErr error
			sort.SliceStable(self.Elements, func(a, b int) bool {
				if sortErr != nil {
					return false
				}
				if hasCb {
					r, err := i.callFunction(cb, []Value{self.Elements[a], self.Elements[b]}, TheUndefined)
					if err != nil {
						sortErr = err
						return false
					}
					return ToNumber(r) < 0
				}
				return ToPrimitiveString(self.Elements[a]) < ToPrimitiveString(self.Elements[b])
			})
			return self, sortErr
		},
		"flat": func(i *Interpreter, self *Array, args []Value) (Value, error) {
			out := NewArray(0)
			for _, v := range self.Elements {
				if arr, ok := v.(*Array); ok {
					out.Elements = append(out.Elements, arr.Elements...)
				} else {
					out.Elements = append(out.Elements, v)
				}
			}
			return out, nil
		},
	}
}

func callable(args []Value) (*Function, bool) {
	if len(args) == 0 {
		return nil, false
	}
	fn, ok := args[0].(*Function)
	return fn, ok
}

func sliceBounds(args []Value, length int) (int, int) {
	start, end := 0, length
	if len(args) > 0 {
		start = clampIndex(int(ToNumber(args[0])), length)
	}
	if len(args) > 1 {
		end = clampIndex(int(ToNumber(args[1])), length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(n, length int) int {
	if n < 0 {
		n += length
	}
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}

func (i *Interpreter) bindArrayMethod(fn arrayMethodFn, self *Array) *Function {
	return &Function{
		Name: "native",
		Native: func(args []Value, this Value) (Value, error) {
			return fn(i, self, args)
		},
	}
}

type stringMethodFn func(self string, args []Value) Value

var stringPrototypeMethods map[string]stringMethodFn

func init() {
	stringPrototypeMethods = map[string]stringMethodFn{
		"charAt": func(self string, args []Value) Value {
			runes := []rune(self)
			n := 0
			if len(args) > 0 {
				n = int(ToNumber(args[0]))
			}
			if n < 0 || n >= len(runes) {
				return String("")
			}
			return String(string(runes[n]))
		},
		"toUpperCase": func(self string, args []Value) Value { return String(strings.ToUpper(self)) },
		"toLowerCase": func(self string, args []Value) Value { return String(strings.ToLower(self)) },
		"trim":        func(self string, args []Value) Value { return String(strings.TrimSpace(self)) },
		"includes": func(self string, args []Value) Value {
			if len(args) == 0 {
				return Boolean(false)
			}
			return Boolean(strings.Contains(self, ToPrimitiveString(args[0])))
		},
		"indexOf": func(self string, args []Value) Value {
			if len(args) == 0 {
				return Number(-1)
			}
			return Number(float64(strings.Index(self, ToPrimitiveString(args[0]))))
		},
		"split": func(self string, args []Value) Value {
			sep := ""
			if len(args) > 0 {
				sep = ToPrimitiveString(args[0])
			}
			out := NewArray(0)
			var parts []string
			if sep == "" {
				for _, r := range self {
					parts = append(parts, string(r))
				}
			} else {
				parts = strings.Split(self, sep)
			}
			for _, p := range parts {
				out.Elements = append(out.Elements, String(p))
			}
			return out
		},
		"slice": func(self string, args []Value) Value {
			runes := []rune(self)
			start, end := sliceBounds(args, len(runes))
			if start >= end {
				return String("")
			}
			return String(string(runes[start:end]))
		},
		"replace": func(self string, args []Value) Value {
			if len(args) < 2 {
				return String(self)
			}
			return String(strings.Replace(self, ToPrimitiveString(args[0]), ToPrimitiveString(args[1]), 1))
		},
		"replaceAll": func(self string, args []Value) Value {
			if len(args) < 2 {
				return String(self)
			}
			return String(strings.ReplaceAll(self, ToPrimitiveString(args[0]), ToPrimitiveString(args[1])))
		},
		"repeat": func(self string, args []Value) Value {
			n := 0
			if len(args) > 0 {
				n = int(ToNumber(args[0]))
			}
			if n < 0 {
				n = 0
			}
			return String(strings.Repeat(self, n))
		},
		"startsWith": func(self string, args []Value) Value {
			if len(args) == 0 {
				return Boolean(false)
			}
			return Boolean(strings.HasPrefix(self, ToPrimitiveString(args[0])))
		},
		"endsWith": func(self string, args []Value) Value {
			if len(args) == 0 {
				return Boolean(false)
			}
			return Boolean(strings.HasSuffix(self, ToPrimitiveString(args[0])))
		},
		"concat": func(self string, args []Value) Value {
			var sb strings.Builder
			sb.WriteString(self)
			for _, a := range args {
				sb.WriteString(ToPrimitiveString(a))
			}
			return String(sb.String())
		},
		"padStart": func(self string, args []Value) Value { return padString(self, args, true) },
		"padEnd":   func(self string, args []Value) Value { return padString(self, args, false) },
	}
}

func padString(self string, args []Value, start bool) Value {
	if len(args) == 0 {
		return String(self)
	}
	target := int(ToNumber(args[0]))
	pad := " "
	if len(args) > 1 {
		pad = ToPrimitiveString(args[1])
	}
	if pad == "" || len([]rune(self)) >= target {
		return String(self)
	}
	need := target - len([]rune(self))
	var sb strings.Builder
	for sb.Len() < need {
		sb.WriteString(pad)
	}
	padding := string([]rune(sb.String())[:need])
	if start {
		return String(padding + self)
	}
	return String(self + padding)
}

func (i *Interpreter) bindStringMethod(fn stringMethodFn, self String) *Function {
	s := string(self)
	return &Function{
		Name: "native",
		Native: func(args []Value, this Value) (Value, error) {
			return fn(s, args), nil
		},
	}
}

var _ = strconv.Itoa
