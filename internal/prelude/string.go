package prelude

import (
	"regexp"
	"strings"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// regexCache avoids recompiling the same pattern on every call
// within a single process; JSL's regex dialect is fixed to Go's RE2
// (stdlib `regexp`), per the Open Question resolution in SPEC_FULL.md §3.
var regexCache = map[string]*regexp.Regexp{}

func compileRegex(op, pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, jerrors.DomainErrorf("%s: invalid regular expression %q: %v", op, pattern, err)
	}
	regexCache[pattern] = re
	return re, nil
}

func registerString(t table2) {
	t.add(Builtin{Name: "str-concat", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		var sb strings.Builder
		for _, a := range args {
			s, err := strArg("str-concat", a)
			if err != nil {
				return value.Null, err
			}
			sb.WriteString(s)
		}
		return value.String(sb.String()), nil
	}})

	t.add(Builtin{Name: "str-length", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-length", args[0])
		if err != nil {
			return value.Null, err
		}
		return value.Int(int64(len([]rune(s)))), nil
	}})

	t.add(Builtin{Name: "str-upper", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-upper", args[0])
		if err != nil {
			return value.Null, err
		}
		return value.String(strings.ToUpper(s)), nil
	}})

	t.add(Builtin{Name: "str-lower", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-lower", args[0])
		if err != nil {
			return value.Null, err
		}
		return value.String(strings.ToLower(s)), nil
	}})

	t.add(Builtin{Name: "str-split", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-split", args[0])
		if err != nil {
			return value.Null, err
		}
		sep, err := strArg("str-split", args[1])
		if err != nil {
			return value.Null, err
		}
		parts := strings.Split(s, sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "str-join", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("str-join", args[0])
		if err != nil {
			return value.Null, err
		}
		sep, err := strArg("str-join", args[1])
		if err != nil {
			return value.Null, err
		}
		parts := make([]string, len(lst))
		for i, v := range lst {
			s, err := strArg("str-join", v)
			if err != nil {
				return value.Null, err
			}
			parts[i] = s
		}
		return value.String(strings.Join(parts, sep)), nil
	}})

	t.add(Builtin{Name: "str-slice", Arity: Fixed(3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-slice", args[0])
		if err != nil {
			return value.Null, err
		}
		start, err := intArg("str-slice", args[1])
		if err != nil {
			return value.Null, err
		}
		end, err := intArg("str-slice", args[2])
		if err != nil {
			return value.Null, err
		}
		r := []rune(s)
		start = clampIndex(start, int64(len(r)))
		end = clampIndex(end, int64(len(r)))
		if end < start {
			end = start
		}
		return value.String(string(r[start:end])), nil
	}})

	t.add(Builtin{Name: "str-contains", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-contains", args[0])
		if err != nil {
			return value.Null, err
		}
		sub, err := strArg("str-contains", args[1])
		if err != nil {
			return value.Null, err
		}
		return value.Bool(strings.Contains(s, sub)), nil
	}})

	t.add(Builtin{Name: "str-matches", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-matches", args[0])
		if err != nil {
			return value.Null, err
		}
		pattern, err := strArg("str-matches", args[1])
		if err != nil {
			return value.Null, err
		}
		re, err := compileRegex("str-matches", pattern)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(re.MatchString(s)), nil
	}})

	t.add(Builtin{Name: "str-replace", Arity: Fixed(3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-replace", args[0])
		if err != nil {
			return value.Null, err
		}
		pattern, err := strArg("str-replace", args[1])
		if err != nil {
			return value.Null, err
		}
		repl, err := strArg("str-replace", args[2])
		if err != nil {
			return value.Null, err
		}
		re, err := compileRegex("str-replace", pattern)
		if err != nil {
			return value.Null, err
		}
		return value.String(re.ReplaceAllString(s, repl)), nil
	}})

	t.add(Builtin{Name: "str-find-all", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		s, err := strArg("str-find-all", args[0])
		if err != nil {
			return value.Null, err
		}
		pattern, err := strArg("str-find-all", args[1])
		if err != nil {
			return value.Null, err
		}
		re, err := compileRegex("str-find-all", pattern)
		if err != nil {
			return value.Null, err
		}
		matches := re.FindAllString(s, -1)
		out := make([]value.Value, len(matches))
		for i, m := range matches {
			out[i] = value.String(m)
		}
		return value.ListFrom(out), nil
	}})
}
