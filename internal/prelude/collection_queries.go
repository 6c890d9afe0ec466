package prelude

import (
	"sort"

	"github.com/jsl-lang/jsl/internal/value"
)

// keyOf resolves a "key-fn-or-field" argument (used by group-by/sort-by)
// against an element: a string argument is treated as an object field
// name, a closure/builtin is applied to the element.
func keyOf(ctx *Context, keyArg, elem value.Value) (value.Value, error) {
	if keyArg.Kind() == value.KindString {
		obj, err := objArg("group-by/sort-by", elem)
		if err != nil {
			return value.Null, err
		}
		v, ok := obj.ObjectGet(keyArg.AsString())
		if !ok {
			return value.Null, nil
		}
		return v, nil
	}
	return ctx.Apply(keyArg, []value.Value{elem})
}

func registerCollectionQueries(t table2) {
	t.add(Builtin{Name: "pluck", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("pluck", args[0])
		if err != nil {
			return value.Null, err
		}
		key, err := strArg("pluck", args[1])
		if err != nil {
			return value.Null, err
		}
		out := make([]value.Value, len(lst))
		for i, e := range lst {
			obj, err := objArg("pluck", e)
			if err != nil {
				return value.Null, err
			}
			v, ok := obj.ObjectGet(key)
			if !ok {
				v = value.Null
			}
			out[i] = v
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "index-by", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("index-by", args[0])
		if err != nil {
			return value.Null, err
		}
		key, err := strArg("index-by", args[1])
		if err != nil {
			return value.Null, err
		}
		keys := []string{}
		fields := map[string]value.Value{}
		for _, e := range lst {
			obj, err := objArg("index-by", e)
			if err != nil {
				return value.Null, err
			}
			kv, ok := obj.ObjectGet(key)
			if !ok {
				continue
			}
			ks := kv.String()
			if kv.Kind() == value.KindString {
				ks = kv.AsString()
			}
			if _, exists := fields[ks]; !exists {
				keys = append(keys, ks)
			}
			fields[ks] = obj
		}
		return value.Object(keys, fields), nil
	}})

	t.add(Builtin{Name: "group-by", Arity: Fixed(2), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("group-by", args[0])
		if err != nil {
			return value.Null, err
		}
		keys := []string{}
		groups := map[string][]value.Value{}
		for _, e := range lst {
			kv, err := keyOf(ctx, args[1], e)
			if err != nil {
				return value.Null, err
			}
			ks := keyString(kv)
			if _, exists := groups[ks]; !exists {
				keys = append(keys, ks)
			}
			groups[ks] = append(groups[ks], e)
		}
		fields := map[string]value.Value{}
		for k, v := range groups {
			fields[k] = value.ListFrom(v)
		}
		return value.Object(keys, fields), nil
	}})

	t.add(Builtin{Name: "unique", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("unique", args[0])
		if err != nil {
			return value.Null, err
		}
		var out []value.Value
		for _, e := range lst {
			dup := false
			for _, o := range out {
				if value.Equal(e, o) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, e)
			}
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "flatten", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("flatten", args[0])
		if err != nil {
			return value.Null, err
		}
		var out []value.Value
		for _, e := range lst {
			if e.Kind() == value.KindList {
				out = append(out, e.AsList()...)
			} else {
				out = append(out, e)
			}
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "sort-by", Arity: Fixed(2), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("sort-by", args[0])
		if err != nil {
			return value.Null, err
		}
		out := append([]value.Value{}, lst...)
		keysCache := make([]value.Value, len(out))
		for i, e := range out {
			kv, err := keyOf(ctx, args[1], e)
			if err != nil {
				return value.Null, err
			}
			keysCache[i] = kv
		}
		// Sort an index permutation rather than `out` directly: sorting `out`
		// in place while comparing through keysCache by (already-permuted)
		// positions compares each element against a key that no longer
		// belongs to it after the first swap.
		idx := make([]int, len(out))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool {
			return lessValue(keysCache[idx[i]], keysCache[idx[j]])
		})
		sorted := make([]value.Value, len(out))
		for i, p := range idx {
			sorted[i] = out[p]
		}
		return value.ListFrom(sorted), nil
	}})
}

func keyString(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		return v.AsString()
	default:
		return v.String()
	}
}

func lessValue(a, b value.Value) bool {
	if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
		return a.AsNumber() < b.AsNumber()
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		return a.AsString() < b.AsString()
	}
	return a.String() < b.String()
}
