package compiler

import (
	"strings"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// specialForms is the fixed keyword set that short-circuits ordinary
// application dispatch (§4.1 "A known special form symbol dispatches to
// that form's rule").
var specialForms = map[string]bool{
	"def": true, "lambda": true, "if": true, "do": true, "let": true,
	"quote": true, "@": true, "try": true, "host": true,
	"where": true, "transform": true,
}

// builder accumulates instructions for one Program, supporting
// backpatched forward jumps the way a single-pass compiler must (§4.3 "if
// compiles with two forward jumps").
type builder struct {
	instrs []Instruction
}

func (b *builder) emit(i Instruction) int {
	b.instrs = append(b.instrs, i)
	return len(b.instrs) - 1
}

func (b *builder) here() int { return len(b.instrs) }

func (b *builder) patchTarget(idx, target int) { b.instrs[idx].N = target }

func (b *builder) program() *Program { return &Program{Instructions: b.instrs} }

// Compile lowers an S-expression to a JPN Program (§4.3).
func Compile(expr value.Value) (*Program, error) {
	b := &builder{}
	if err := compileExpr(b, expr); err != nil {
		return nil, err
	}
	return b.program(), nil
}

func compileExpr(b *builder, expr value.Value) error {
	switch expr.Kind() {
	case value.KindNull, value.KindBool, value.KindNumber:
		b.emit(Instruction{Op: OpPushLit, Lit: expr})
		return nil

	case value.KindString:
		s := expr.AsString()
		if strings.HasPrefix(s, "@") {
			b.emit(Instruction{Op: OpPushLitString, Lit: value.String(s[1:])})
			return nil
		}
		b.emit(Instruction{Op: OpPushVar, Name: s})
		return nil

	case value.KindObject:
		return compileObject(b, expr)

	case value.KindList:
		elems := expr.AsList()
		if len(elems) == 0 {
			b.emit(Instruction{Op: OpPushLit, Lit: expr})
			return nil
		}
		return compileApplication(b, elems)

	default:
		return jerrors.New(jerrors.KindSyntax, "cannot compile value of kind %s as an expression", expr.Kind())
	}
}

// compileObjectKey resolves one key per §4.1 object-evaluation rule: an
// `@`-prefixed key is literal; otherwise the key string is itself a
// variable reference whose value supplies the real field name.
func compileObjectKey(b *builder, key string) {
	if strings.HasPrefix(key, "@") {
		b.emit(Instruction{Op: OpPushLit, Lit: value.String(key[1:])})
		return
	}
	b.emit(Instruction{Op: OpPushVar, Name: key})
}

func compileObject(b *builder, obj value.Value) error {
	keys := obj.ObjectKeys()
	for _, k := range keys {
		compileObjectKey(b, k)
		v, _ := obj.ObjectGet(k)
		if err := compileExpr(b, v); err != nil {
			return err
		}
	}
	b.emit(Instruction{Op: OpMakeDict, N: len(keys) * 2})
	return nil
}

func compileApplication(b *builder, elems []value.Value) error {
	head := elems[0]
	args := elems[1:]

	if head.Kind() == value.KindString {
		name := head.AsString()
		if !strings.HasPrefix(name, "@") && specialForms[name] {
			return compileSpecialForm(b, name, args)
		}
		if !strings.HasPrefix(name, "@") {
			for _, a := range args {
				if err := compileExpr(b, a); err != nil {
					return err
				}
			}
			b.emit(Instruction{Op: OpCall, N: len(args), Name: name})
			return nil
		}
	}

	// Generic path: head is an expression that must itself be evaluated
	// (a list, an `@`-literal string, or an object) — §4.3 "__apply__".
	if err := compileExpr(b, head); err != nil {
		return err
	}
	for _, a := range args {
		if err := compileExpr(b, a); err != nil {
			return err
		}
	}
	b.emit(Instruction{Op: OpApply, N: len(args)})
	return nil
}
