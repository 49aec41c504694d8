package stdlib

import (
	"fmt"
	"strings"

	"github.com/cellang/jsvm/internal/interp"
	"github.com/dlclark/regexp2"
)

// installRegExp wires the `RegExp` constructor and, via
// interp.SetRegexEnsureHook, the lazy compilation every RegExp literal
// and constructor call goes through before its .test/.exec/.toString
// methods work. regexp2 backs matching rather than Go's stdlib regexp
// package because JS regex literals allow backreferences and lookaround
// that RE2 (Go's engine) can't express; regexp2's .NET-style engine can.
func installRegExp(i *interp.Interpreter) {
	realm := i.Realm

	interp.SetRegexEnsureHook(func(r *interp.RegExp) {
		opts := regexp2.None
		if strings.Contains(r.Flags, "i") {
			opts |= regexp2.IgnoreCase
		}
		if strings.Contains(r.Flags, "s") {
			opts |= regexp2.Singleline
		}
		if strings.Contains(r.Flags, "m") {
			opts |= regexp2.Multiline
		}
		re, err := regexp2.Compile(r.Source, opts)
		if r.Overlay == nil {
			r.Overlay = interp.NewObject(realm.ObjectProto)
		}
		if err != nil {
			r.Overlay.SetHidden("test", i.NativeFn(func([]interp.Value, interp.Value) (interp.Value, error) {
				return interp.Boolean(false), nil
			}))
			return
		}
		r.Engine = re
		r.Overlay.SetHidden("test", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			s := interp.ToPrimitiveString(argOrUndefined(args, 0))
			ok, _ := re.MatchString(s)
			return interp.Boolean(ok), nil
		}))
		r.Overlay.SetHidden("exec", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			s := interp.ToPrimitiveString(argOrUndefined(args, 0))
			m, err := re.FindStringMatch(s)
			if err != nil || m == nil {
				return interp.TheNull, nil
			}
			groups := m.Groups()
			elems := make([]interp.Value, len(groups))
			for gi, g := range groups {
				if len(g.Captures) == 0 {
					elems[gi] = interp.TheUndefined
					continue
				}
				elems[gi] = interp.String(g.String())
			}
			arr := &interp.Array{Elements: elems, Overlay: interp.NewObject(nil)}
			arr.Overlay.Set("index", interp.Number(float64(m.Index)))
			arr.Overlay.Set("input", interp.String(s))
			return arr, nil
		}))
		r.Overlay.SetHidden("toString", i.NativeFn(func([]interp.Value, interp.Value) (interp.Value, error) {
			return interp.String(r.String()), nil
		}))
	})

	ctor := &interp.Function{
		Name:    "RegExp",
		Overlay: interp.NewObject(realm.FunctionProto),
		Native: func(args []interp.Value, _ interp.Value) (interp.Value, error) {
			var source, flags string
			switch pattern := argOrUndefined(args, 0).(type) {
			case *interp.RegExp:
				source, flags = pattern.Source, pattern.Flags
			default:
				source = interp.ToPrimitiveString(pattern)
			}
			if len(args) > 1 {
				flags = interp.ToPrimitiveString(args[1])
			}
			if _, err := regexp2.Compile(source, regexp2.None); err != nil {
				return nil, fmt.Errorf("SyntaxError: Invalid regular expression: %v", err)
			}
			return &interp.RegExp{Source: source, Flags: flags, Overlay: interp.NewObject(realm.ObjectProto)}, nil
		},
	}
	realm.Global.Define("RegExp", ctor, interp.Binding{})
}
