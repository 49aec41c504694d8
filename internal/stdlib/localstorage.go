package stdlib

import (
	"os"

	"github.com/cellang/jsvm/internal/interp"
	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"
)

// localStorageSnapshot is the on-disk shape persisted for the
// `localStorage`-like stub spec.md §1 Non-goal (iv) explicitly keeps in
// scope: a flat string-to-string map, YAML-encoded.
type localStorageSnapshot struct {
	Items map[string]string `yaml:"items"`
}

// installLocalStorage defines a `localStorage` host object backed by an
// in-memory map. If JSVM_LOCALSTORAGE_PATH names a file, the store loads
// from it at startup and persists to it on every mutation, using
// goccy/go-yaml rather than encoding/json so the snapshot is easy to
// read and edit by hand.
func installLocalStorage(i *interp.Interpreter) {
	path := os.Getenv("JSVM_LOCALSTORAGE_PATH")
	items := map[string]string{}

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var snap localStorageSnapshot
			if err := yaml.Unmarshal(data, &snap); err != nil {
				logrus.WithError(err).WithField("path", path).Warn("localStorage: ignoring unreadable snapshot")
			} else if snap.Items != nil {
				items = snap.Items
			}
		}
	}

	save := func() {
		if path == "" {
			return
		}
		data, err := yaml.Marshal(localStorageSnapshot{Items: items})
		if err != nil {
			logrus.WithError(err).Warn("localStorage: failed to encode snapshot")
			return
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("localStorage: failed to persist snapshot")
		}
	}

	ls := interp.NewObject(i.Realm.ObjectProto)
	ls.SetHidden("getItem", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		key := interp.ToPrimitiveString(argOrUndefined(args, 0))
		if v, ok := items[key]; ok {
			return interp.String(v), nil
		}
		return interp.TheNull, nil
	}))
	ls.SetHidden("setItem", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		key := interp.ToPrimitiveString(argOrUndefined(args, 0))
		val := interp.ToPrimitiveString(argOrUndefined(args, 1))
		items[key] = val
		save()
		return interp.TheUndefined, nil
	}))
	ls.SetHidden("removeItem", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		key := interp.ToPrimitiveString(argOrUndefined(args, 0))
		delete(items, key)
		save()
		return interp.TheUndefined, nil
	}))
	ls.SetHidden("clear", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		items = map[string]string{}
		save()
		return interp.TheUndefined, nil
	}))
	ls.SetHidden("key", i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		n := int(interp.ToNumber(argOrUndefined(args, 0)))
		idx := 0
		for k := range items {
			if idx == n {
				return interp.String(k), nil
			}
			idx++
		}
		return interp.TheNull, nil
	}))

	i.Realm.Global.Define("localStorage", ls, interp.Binding{})
}
