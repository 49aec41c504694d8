package stdlib

import (
	"fmt"
	"strings"

	"github.com/cellang/jsvm/internal/interp"
)

// installConsole defines the `console` host object. Kept on the
// standard library's plain fmt.Fprintln, matching the teacher's own
// PrintLn builtin, which is ordinary fmt over the CLI's stdout rather
// than a logging library — console output is user-program output, not
// an ambient diagnostic, so it doesn't belong on the logrus trace path
// wired in cmd/jsvm for --trace.
func installConsole(i *interp.Interpreter) {
	console := interp.NewObject(i.Realm.ObjectProto)
	log := i.NativeFn(func(args []interp.Value, _ interp.Value) (interp.Value, error) {
		parts := make([]string, len(args))
		for idx, a := range args {
			parts[idx] = interp.ToPrimitiveString(a)
		}
		fmt.Fprintln(i.Out, strings.Join(parts, " "))
		return interp.TheUndefined, nil
	})
	console.SetHidden("log", log)
	console.SetHidden("info", log)
	console.SetHidden("warn", log)
	console.SetHidden("error", log)
	console.SetHidden("debug", log)
	i.Realm.Global.Define("console", console, interp.Binding{})
}
