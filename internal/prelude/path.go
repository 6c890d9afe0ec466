package prelude

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// splitPath normalizes JSL path syntax (§4.2 Path) into segments: dot
// separated, with bracket index forms `name[i]` rewritten to `name.i`
// before splitting, so that downstream code only ever sees plain
// dot-segments. `*` is preserved as a literal segment.
func splitPath(path string) []string {
	normalized := strings.NewReplacer("[", ".", "]", "").Replace(path)
	segs := strings.Split(normalized, ".")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasWildcard(segs []string) bool {
	for _, s := range segs {
		if s == "*" {
			return true
		}
	}
	return false
}

// getPathNative walks segs over v directly, implementing the `*` wildcard
// flatten-by-one-level rule (§4.2 Path) that no off-the-shelf JSON path
// library expresses. Used whenever the path contains a wildcard; the
// wildcard-free case is instead delegated to gjson (getPathGJSON) so a
// real third-party JSON-path engine does the walking whenever it can.
func getPathNative(v value.Value, segs []string) (value.Value, bool) {
	if len(segs) == 0 {
		return v, true
	}
	seg, rest := segs[0], segs[1:]

	if seg == "*" {
		if v.Kind() != value.KindList {
			return value.Null, false
		}
		var out []value.Value
		for _, elem := range v.AsList() {
			r, ok := getPathNative(elem, rest)
			if !ok {
				continue
			}
			if r.Kind() == value.KindList {
				out = append(out, r.AsList()...)
			} else {
				out = append(out, r)
			}
		}
		return value.ListFrom(out), true
	}

	if idx, err := strconv.ParseInt(seg, 10, 64); err == nil {
		if v.Kind() != value.KindList {
			return value.Null, false
		}
		lst := v.AsList()
		if idx < 0 || idx >= int64(len(lst)) {
			return value.Null, false
		}
		return getPathNative(lst[idx], rest)
	}

	if v.Kind() != value.KindObject {
		return value.Null, false
	}
	fv, ok := v.ObjectGet(seg)
	if !ok {
		return value.Null, false
	}
	return getPathNative(fv, rest)
}

// getPathGJSON handles the common wildcard-free case by round-tripping v
// through JSON and querying it with gjson, whose dot/index path dialect is
// already exactly JSL's (bracket forms are normalized away by splitPath
// before this is ever reached).
func getPathGJSON(op string, v value.Value, segs []string) (value.Value, bool, error) {
	j, err := value.ToJSON(v)
	if err != nil {
		return value.Null, false, jerrors.TypeErrorf(op, "JSON-representable value", v.Kind().String())
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return value.Null, false, jerrors.TypeErrorf(op, "JSON-representable value", v.Kind().String())
	}
	result := gjson.GetBytes(raw, strings.Join(segs, "."))
	if !result.Exists() {
		return value.Null, false, nil
	}
	out, err := value.ParseJSON([]byte(result.Raw))
	if err != nil {
		// Scalars (numbers, bare strings without quotes) aren't valid
		// top-level JSON on their own in some encodings; fall back to
		// decoding via gjson's already-typed Value.
		out, err = value.FromJSON(result.Value())
		if err != nil {
			return value.Null, false, err
		}
	}
	return out, true, nil
}

func getPath(op string, v value.Value, path string) (value.Value, bool, error) {
	segs := splitPath(path)
	if hasWildcard(segs) {
		r, ok := getPathNative(v, segs)
		return r, ok, nil
	}
	return getPathGJSON(op, v, segs)
}

// setPathGJSON handles the wildcard-free write path via sjson.
func setPathGJSON(op string, v value.Value, segs []string, newVal value.Value) (value.Value, error) {
	j, err := value.ToJSON(v)
	if err != nil {
		return value.Null, jerrors.TypeErrorf(op, "JSON-representable value", v.Kind().String())
	}
	raw, err := json.Marshal(j)
	if err != nil {
		return value.Null, jerrors.TypeErrorf(op, "JSON-representable value", v.Kind().String())
	}
	nv, err := value.ToJSON(newVal)
	if err != nil {
		return value.Null, jerrors.TypeErrorf(op, "JSON-representable value", newVal.Kind().String())
	}
	out, err := sjson.SetBytes(raw, strings.Join(segs, "."), nv)
	if err != nil {
		return value.Null, jerrors.PathErrorf(strings.Join(segs, "."), "%v", err)
	}
	return value.ParseJSON(out)
}

// setPathNative implements a wildcard-aware write: every element matched by
// `*` at this segment receives the same write at the remaining path.
func setPathNative(v value.Value, segs []string, newVal value.Value) (value.Value, error) {
	if len(segs) == 0 {
		return newVal, nil
	}
	seg, rest := segs[0], segs[1:]

	if seg == "*" {
		if v.Kind() != value.KindList {
			return value.Null, jerrors.PathErrorf(strings.Join(segs, "."), "* requires a list")
		}
		lst := v.AsList()
		out := make([]value.Value, len(lst))
		for i, elem := range lst {
			nv, err := setPathNative(elem, rest, newVal)
			if err != nil {
				return value.Null, err
			}
			out[i] = nv
		}
		return value.ListFrom(out), nil
	}

	if idx, err := strconv.ParseInt(seg, 10, 64); err == nil {
		if v.Kind() != value.KindList {
			return value.Null, jerrors.PathErrorf(strings.Join(segs, "."), "integer segment requires a list")
		}
		lst := append([]value.Value{}, v.AsList()...)
		for int64(len(lst)) <= idx {
			lst = append(lst, value.Null)
		}
		nv, err := setPathNative(lst[idx], rest, newVal)
		if err != nil {
			return value.Null, err
		}
		lst[idx] = nv
		return value.ListFrom(lst), nil
	}

	var obj value.Value
	if v.Kind() == value.KindObject {
		obj = v
	} else {
		obj = value.EmptyObject()
	}
	cur, _ := obj.ObjectGet(seg)
	nv, err := setPathNative(cur, rest, newVal)
	if err != nil {
		return value.Null, err
	}
	return withField(obj, seg, nv), nil
}

func setPath(v value.Value, path string, newVal value.Value) (value.Value, error) {
	segs := splitPath(path)
	if hasWildcard(segs) {
		return setPathNative(v, segs, newVal)
	}
	return setPathGJSON("set-path", v, segs, newVal)
}

func registerPath(t table2) {
	t.add(Builtin{Name: "get-path", Arity: Range(2, 3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		path, err := strArg("get-path", args[1])
		if err != nil {
			return value.Null, err
		}
		v, ok, err := getPath("get-path", args[0], path)
		if err != nil {
			return value.Null, err
		}
		if !ok {
			if len(args) == 3 {
				return args[2], nil
			}
			return value.Null, jerrors.PathErrorf(path, "missing intermediate segment")
		}
		return v, nil
	}})

	t.add(Builtin{Name: "get-safe", Arity: Range(2, 3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		path, err := strArg("get-safe", args[1])
		if err != nil {
			return value.Null, err
		}
		v, ok, err := getPath("get-safe", args[0], path)
		if err != nil || !ok {
			if len(args) == 3 {
				return args[2], nil
			}
			return value.Null, nil
		}
		return v, nil
	}})

	t.add(Builtin{Name: "has-path", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		path, err := strArg("has-path", args[1])
		if err != nil {
			return value.Null, err
		}
		_, ok, err := getPath("has-path", args[0], path)
		if err != nil {
			return value.Bool(false), nil
		}
		return value.Bool(ok), nil
	}})

	t.add(Builtin{Name: "set-path", Arity: Fixed(3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		path, err := strArg("set-path", args[1])
		if err != nil {
			return value.Null, err
		}
		return setPath(args[0], path, args[2])
	}})

	t.add(Builtin{Name: "update-path", Arity: Fixed(3), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		path, err := strArg("update-path", args[1])
		if err != nil {
			return value.Null, err
		}
		cur, ok, err := getPath("update-path", args[0], path)
		if err != nil {
			return value.Null, err
		}
		if !ok {
			cur = value.Null
		}
		updated, err := ctx.Apply(args[2], []value.Value{cur})
		if err != nil {
			return value.Null, err
		}
		return setPath(args[0], path, updated)
	}})
}
