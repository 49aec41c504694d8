package stdlib

import (
	"fmt"
	"strconv"

	"github.com/cellang/jsvm/internal/interp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// installJSON defines the `JSON` host object: parse via gjson (read
// path), stringify via sjson (write/patch path), replacing the teacher's
// bespoke jsonvalue package with the pack's own gjson/sjson combination
// per SPEC_FULL's DOMAIN STACK.
func installJSON(i *interp.Interpreter) {
	j := interp.NewObject(i.Realm.ObjectProto)
	j.SetHidden("parse", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		text := interp.ToPrimitiveString(argOrUndefined(args, 0))
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("SyntaxError: Unexpected token in JSON")
		}
		return gjsonToValue(i, gjson.Parse(text)), nil
	}))
	j.SetHidden("stringify", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		v := argOrUndefined(args, 0)
		raw, skip, err := stringifyValue(i, v)
		if err != nil {
			return nil, err
		}
		if skip {
			return interp.TheUndefined, nil
		}
		return interp.String(raw), nil
	}))
	i.Realm.Global.Define("JSON", j, interp.Binding{})
}

// gjsonToValue converts a parsed gjson.Result tree into kernel Values.
func gjsonToValue(i *interp.Interpreter, r gjson.Result) interp.Value {
	switch {
	case r.Type == gjson.Null:
		return interp.TheNull
	case r.Type == gjson.True || r.Type == gjson.False:
		return interp.Boolean(r.Bool())
	case r.Type == gjson.Number:
		return interp.Number(r.Float())
	case r.Type == gjson.String:
		return interp.String(r.String())
	case r.IsArray():
		var elems []interp.Value
		r.ForEach(func(_, v gjson.Result) bool {
			elems = append(elems, gjsonToValue(i, v))
			return true
		})
		return &interp.Array{Elements: elems, Overlay: interp.NewObject(nil)}
	case r.IsObject():
		obj := interp.NewObject(i.Realm.ObjectProto)
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.String(), gjsonToValue(i, v))
			return true
		})
		return obj
	default:
		return interp.TheUndefined
	}
}

// stringifyValue renders v as a JSON-text fragment at path "" of a fresh
// accumulator, using sjson.Set for primitives (which handles quoting and
// escaping) and sjson.SetRaw to splice in recursively stringified
// children for objects/arrays. skip reports JSON.stringify's own
// "omit this value" cases (undefined, function) the way the real
// JSON.stringify does for object properties and returns `undefined` for
// entirely.
func stringifyValue(i *interp.Interpreter, v interp.Value) (raw string, skip bool, err error) {
	switch x := v.(type) {
	case interp.Undefined:
		return "", true, nil
	case interp.Null:
		return "null", false, nil
	case interp.Boolean:
		return strconv.FormatBool(bool(x)), false, nil
	case interp.Number:
		return jsonNumberLiteral(float64(x)), false, nil
	case interp.String:
		quoted, err := sjson.Set("", "s", string(x))
		if err != nil {
			return "", false, fmt.Errorf("TypeError: JSON.stringify: %v", err)
		}
		return gjson.Get(quoted, "s").Raw, false, nil
	case interp.BigInt:
		return "", false, fmt.Errorf("TypeError: Do not know how to serialize a BigInt")
	case *interp.Function:
		return "", true, nil
	case *interp.Array:
		acc := "[]"
		for idx, el := range x.Elements {
			if _, isHole := el.(interp.Hole); isHole {
				el = interp.TheNull
			}
			elRaw, elSkip, err := stringifyValue(i, el)
			if err != nil {
				return "", false, err
			}
			if elSkip {
				elRaw = "null"
			}
			acc, err = sjson.SetRaw(acc, strconv.Itoa(idx), elRaw)
			if err != nil {
				return "", false, fmt.Errorf("TypeError: JSON.stringify: %v", err)
			}
		}
		return acc, false, nil
	case *interp.Object:
		acc := "{}"
		for _, k := range x.OwnKeys() {
			val := i.GetProperty(x, k)
			propRaw, propSkip, err := stringifyValue(i, val)
			if err != nil {
				return "", false, err
			}
			if propSkip {
				continue
			}
			acc, err = sjson.SetRaw(acc, k, propRaw)
			if err != nil {
				return "", false, fmt.Errorf("TypeError: JSON.stringify: %v", err)
			}
		}
		return acc, false, nil
	default:
		return "", true, nil
	}
}

func jsonNumberLiteral(f float64) string {
	if f != f { // NaN
		return "null"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
