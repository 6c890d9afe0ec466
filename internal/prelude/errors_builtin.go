package prelude

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// registerErrorBuiltin binds `error(type, message, details?)` (§4.2 Error
// creation): unlike every other built-in, it raises immediately rather
// than returning a value — the evaluator/VM's apply path must recognize
// the returned *jerrors.JSLError and unwind rather than treat it as a
// generic Go error wrapping an ordinary failure. Since both paths already
// propagate any error returned from a Builtin.Fn as a raise, no special
// casing is actually needed: `error` simply never returns a non-nil Value.
func registerErrorBuiltin(t table2) {
	t.add(Builtin{Name: "error", Arity: Range(2, 3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		userType, err := strArg("error", args[0])
		if err != nil {
			return value.Null, err
		}
		message, err := strArg("error", args[1])
		if err != nil {
			return value.Null, err
		}
		var details any
		if len(args) == 3 {
			details, err = value.ToJSON(args[2])
			if err != nil {
				return value.Null, err
			}
		}
		return value.Null, jerrors.UserErrorf(userType, message, details)
	}})
}
