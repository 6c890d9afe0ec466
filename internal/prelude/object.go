package prelude

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

func objArg(op string, v value.Value) (value.Value, error) {
	if v.Kind() != value.KindObject {
		return value.Value{}, jerrors.TypeErrorf(op, "object", v.Kind().String())
	}
	return v, nil
}

func strArg(op string, v value.Value) (string, error) {
	if v.Kind() != value.KindString {
		return "", jerrors.TypeErrorf(op, "string", v.Kind().String())
	}
	return v.AsString(), nil
}

// withField returns a copy of obj with key set to val, preserving existing
// key order and appending key if new. Every object builtin that "mutates"
// actually builds a fresh object (§3 invariant 6: all Values are immutable).
func withField(obj value.Value, key string, val value.Value) value.Value {
	keys := obj.ObjectKeys()
	fields := make(map[string]value.Value, len(keys)+1)
	newKeys := make([]string, 0, len(keys)+1)
	found := false
	for _, k := range keys {
		v, _ := obj.ObjectGet(k)
		if k == key {
			v = val
			found = true
		}
		fields[k] = v
		newKeys = append(newKeys, k)
	}
	if !found {
		newKeys = append(newKeys, key)
		fields[key] = val
	}
	return value.Object(newKeys, fields)
}

func registerObject(t table2) {
	t.add(Builtin{Name: "get", Arity: Range(2, 3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		obj, err := objArg("get", args[0])
		if err != nil {
			return value.Null, err
		}
		key, err := strArg("get", args[1])
		if err != nil {
			return value.Null, err
		}
		if v, ok := obj.ObjectGet(key); ok {
			return v, nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return value.Null, nil
	}})

	t.add(Builtin{Name: "set", Arity: Fixed(3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		obj, err := objArg("set", args[0])
		if err != nil {
			return value.Null, err
		}
		key, err := strArg("set", args[1])
		if err != nil {
			return value.Null, err
		}
		return withField(obj, key, args[2]), nil
	}})

	t.add(Builtin{Name: "has", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		obj, err := objArg("has", args[0])
		if err != nil {
			return value.Null, err
		}
		key, err := strArg("has", args[1])
		if err != nil {
			return value.Null, err
		}
		_, ok := obj.ObjectGet(key)
		return value.Bool(ok), nil
	}})

	t.add(Builtin{Name: "keys", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		obj, err := objArg("keys", args[0])
		if err != nil {
			return value.Null, err
		}
		ks := obj.ObjectKeys()
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			out[i] = value.String(k)
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "values", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		obj, err := objArg("values", args[0])
		if err != nil {
			return value.Null, err
		}
		ks := obj.ObjectKeys()
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			out[i], _ = obj.ObjectGet(k)
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "merge", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		keys := []string{}
		fields := map[string]value.Value{}
		for _, a := range args {
			obj, err := objArg("merge", a)
			if err != nil {
				return value.Null, err
			}
			for _, k := range obj.ObjectKeys() {
				v, _ := obj.ObjectGet(k)
				if _, exists := fields[k]; !exists {
					keys = append(keys, k)
				}
				fields[k] = v
			}
		}
		return value.Object(keys, fields), nil
	}})
}
