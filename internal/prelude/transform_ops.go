package prelude

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// registerTransformOps binds the six transform-operator helpers (§4.2
// Transform operators). Each returns a value.Descriptor wrapped as a
// value.Value; only the `transform` special form (evaluator/compiler+VM)
// ever interprets one — everywhere else a descriptor is an inert, opaque
// value, per §3 "operation-descriptor".
func registerTransformOps(t table2) {
	t.add(Builtin{Name: "pick", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.DescriptorValue(&value.Descriptor{Op: "pick", Args: append([]value.Value{}, args...)}), nil
	}})
	t.add(Builtin{Name: "omit", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.DescriptorValue(&value.Descriptor{Op: "omit", Args: append([]value.Value{}, args...)}), nil
	}})
	t.add(Builtin{Name: "assign", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.DescriptorValue(&value.Descriptor{Op: "assign", Args: args}), nil
	}})
	t.add(Builtin{Name: "rename", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.DescriptorValue(&value.Descriptor{Op: "rename", Args: args}), nil
	}})
	t.add(Builtin{Name: "default", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.DescriptorValue(&value.Descriptor{Op: "default", Args: args}), nil
	}})
	t.add(Builtin{Name: "update", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.DescriptorValue(&value.Descriptor{Op: "update", Args: args}), nil
	}})
}

// ApplyDescriptor interprets a single operation-descriptor against an
// object, producing the updated object (§4.1 `transform`). It is exported
// for use by the evaluator and VM's `transform` special-form implementation.
func ApplyDescriptor(ctx *Context, obj value.Value, d *value.Descriptor) (value.Value, error) {
	if obj.Kind() != value.KindObject {
		return value.Null, jerrors.TypeErrorf("transform", "object", obj.Kind().String())
	}
	switch d.Op {
	case "pick":
		keys := make([]string, 0, len(d.Args))
		fields := map[string]value.Value{}
		for _, k := range d.Args {
			ks, err := strArg("pick", k)
			if err != nil {
				return value.Null, err
			}
			if v, ok := obj.ObjectGet(ks); ok {
				keys = append(keys, ks)
				fields[ks] = v
			}
		}
		return value.Object(keys, fields), nil

	case "omit":
		omitSet := map[string]bool{}
		for _, k := range d.Args {
			ks, err := strArg("omit", k)
			if err != nil {
				return value.Null, err
			}
			omitSet[ks] = true
		}
		keys := []string{}
		fields := map[string]value.Value{}
		for _, k := range obj.ObjectKeys() {
			if omitSet[k] {
				continue
			}
			v, _ := obj.ObjectGet(k)
			keys = append(keys, k)
			fields[k] = v
		}
		return value.Object(keys, fields), nil

	case "assign":
		key, err := strArg("assign", d.Args[0])
		if err != nil {
			return value.Null, err
		}
		return withField(obj, key, d.Args[1]), nil

	case "rename":
		oldKey, err := strArg("rename", d.Args[0])
		if err != nil {
			return value.Null, err
		}
		newKey, err := strArg("rename", d.Args[1])
		if err != nil {
			return value.Null, err
		}
		v, ok := obj.ObjectGet(oldKey)
		if !ok {
			return obj, nil // missing key is a no-op, per §4.1 `rename`
		}
		keys := []string{}
		fields := map[string]value.Value{}
		for _, k := range obj.ObjectKeys() {
			if k == oldKey {
				keys = append(keys, newKey)
				fields[newKey] = v
				continue
			}
			fv, _ := obj.ObjectGet(k)
			keys = append(keys, k)
			fields[k] = fv
		}
		return value.Object(keys, fields), nil

	case "default":
		key, err := strArg("default", d.Args[0])
		if err != nil {
			return value.Null, err
		}
		if _, ok := obj.ObjectGet(key); ok {
			return obj, nil
		}
		return withField(obj, key, d.Args[1]), nil

	case "update":
		key, err := strArg("update", d.Args[0])
		if err != nil {
			return value.Null, err
		}
		cur, ok := obj.ObjectGet(key)
		if !ok {
			cur = value.Null
		}
		updated, err := ctx.Apply(d.Args[1], []value.Value{cur})
		if err != nil {
			return value.Null, err
		}
		return withField(obj, key, updated), nil

	default:
		return value.Null, jerrors.New(jerrors.KindTypeError, "unknown transform operator %q", d.Op)
	}
}
