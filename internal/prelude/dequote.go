package prelude

import (
	"strings"

	"github.com/jsl-lang/jsl/internal/value"
)

// Dequote normalizes a quoted data structure per §4.1 "String literal
// convention inside quoted data": `where`/`transform` interpret `@`-prefixed strings and object keys the same way ordinary
// (unquoted) evaluation does, but at the point the data-directed form
// consumes the data rather than at quote time (`quote`/`@` themselves
// return their argument completely unevaluated, `@`-tags and all). A
// string without the prefix passes through unchanged: plain data has no
// variable to look up, so there is nothing else for it to mean.
func Dequote(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindString:
		s := v.AsString()
		if strings.HasPrefix(s, "@") {
			return value.String(s[1:])
		}
		return v
	case value.KindList:
		elems := v.AsList()
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			out[i] = Dequote(e)
		}
		return value.ListFrom(out)
	case value.KindObject:
		keys := v.ObjectKeys()
		outKeys := make([]string, 0, len(keys))
		fields := make(map[string]value.Value, len(keys))
		for _, k := range keys {
			nk := strings.TrimPrefix(k, "@")
			fv, _ := v.ObjectGet(k)
			if _, dup := fields[nk]; !dup {
				outKeys = append(outKeys, nk)
			}
			fields[nk] = Dequote(fv)
		}
		return value.Object(outKeys, fields)
	default:
		return v
	}
}
