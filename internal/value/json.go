package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FromJSON decodes a generic JSON payload (the result of json.Unmarshal into
// `any`) into a Value. This is used both to read an incoming JSL source
// program and to decode the "simple path" of the serializer (§4.5). Object
// key order is not preserved by encoding/json, so FromJSON sorts each
// object's keys lexicographically (the evaluator never depends on object
// key order, per §3 invariant "iteration order need not be preserved").
func FromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid JSON number %q: %w", x, err)
		}
		return Number(f), nil
	case string:
		return String(x), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return ListFrom(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, k)
			fields[k] = v
		}
		sort.Strings(keys)
		return Object(keys, fields), nil
	default:
		return Value{}, fmt.Errorf("value: cannot decode Go type %T as a JSL value", raw)
	}
}

// ParseJSON unmarshals raw JSON bytes into a Value.
func ParseJSON(data []byte) (Value, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("value: parse JSON: %w", err)
	}
	return FromJSON(raw)
}

// ToJSON converts a Value to a plain Go value suitable for json.Marshal.
// It returns an error for closures and descriptors, which are not directly
// JSON-representable outside the CAS serializer.
func ToJSON(v Value) (any, error) {
	switch v.Kind() {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.AsBool(), nil
	case KindNumber:
		if v.IsInt() {
			return v.AsInt(), nil
		}
		return v.AsNumber(), nil
	case KindString:
		return v.AsString(), nil
	case KindList:
		elems := v.AsList()
		out := make([]any, len(elems))
		for i, e := range elems {
			j, err := ToJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, len(v.ObjectKeys()))
		for _, k := range v.ObjectKeys() {
			fv, _ := v.ObjectGet(k)
			j, err := ToJSON(fv)
			if err != nil {
				return nil, err
			}
			out[k] = j
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value: %s is not directly JSON-representable (use the CAS serializer)", v.Kind())
	}
}

// MarshalJSON implements json.Marshaler for the simple (non-CAS) path.
func (v Value) MarshalJSON() ([]byte, error) {
	j, err := ToJSON(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler, used to decode literal payload
// operands (JPN's LIT/LITSTR wire form) straight into a Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ContainsClosureOrEnv reports whether v's transitive contents include any
// closure. This is the trigger condition for the CAS serialization path
// (§4.5): environments are only reachable from closures, so checking for
// closures is sufficient.
func ContainsClosureOrEnv(v Value) bool {
	switch v.Kind() {
	case KindClosure:
		return true
	case KindList:
		for _, e := range v.AsList() {
			if ContainsClosureOrEnv(e) {
				return true
			}
		}
		return false
	case KindObject:
		for _, k := range v.ObjectKeys() {
			fv, _ := v.ObjectGet(k)
			if ContainsClosureOrEnv(fv) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
