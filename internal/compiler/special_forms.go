package compiler

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

func compileSpecialForm(b *builder, name string, args []value.Value) error {
	switch name {
	case "def":
		return compileDef(b, args)
	case "lambda":
		return compileLambda(b, args)
	case "if":
		return compileIf(b, args)
	case "do":
		return compileDo(b, args)
	case "let":
		return compileLet(b, args)
	case "quote", "@":
		return compileQuote(b, args)
	case "try":
		return compileTry(b, args)
	case "host":
		return compileHost(b, args)
	case "where":
		return compileWhere(b, args)
	case "transform":
		return compileTransform(b, args)
	default:
		return jerrors.New(jerrors.KindSyntax, "unknown special form %q", name)
	}
}

func requireArity(name string, args []value.Value, want int) error {
	if len(args) != want {
		return jerrors.ArityErrorf(name, want, len(args))
	}
	return nil
}

func requireMin(name string, args []value.Value, min int) error {
	if len(args) < min {
		return jerrors.ArityRangeErrorf(name, min, -1, len(args))
	}
	return nil
}

// nameOf extracts a plain symbol name from a binder-position Value, which
// must be an unprefixed string (a bare variable name being bound, not an
// `@`-literal or a variable reference to be resolved).
func nameOf(op string, v value.Value) (string, error) {
	if v.Kind() != value.KindString {
		return "", jerrors.TypeErrorf(op, "string (a bare name)", v.Kind().String())
	}
	return v.AsString(), nil
}

func compileDef(b *builder, args []value.Value) error {
	if err := requireArity("def", args, 2); err != nil {
		return err
	}
	name, err := nameOf("def", args[0])
	if err != nil {
		return err
	}
	if err := compileExpr(b, args[1]); err != nil {
		return err
	}
	b.emit(Instruction{Op: OpDef, Name: name})
	return nil
}

func compileLambda(b *builder, args []value.Value) error {
	if err := requireArity("lambda", args, 2); err != nil {
		return err
	}
	if args[0].Kind() != value.KindList {
		return jerrors.TypeErrorf("lambda", "list of parameter names", args[0].Kind().String())
	}
	params := make([]string, 0, len(args[0].AsList()))
	for _, p := range args[0].AsList() {
		n, err := nameOf("lambda", p)
		if err != nil {
			return err
		}
		params = append(params, n)
	}
	bodyProg, err := Compile(args[1])
	if err != nil {
		return err
	}
	bodyProg.Instructions = append(bodyProg.Instructions, Instruction{Op: OpRet})
	b.emit(Instruction{Op: OpMakeClosure, Params: params, Chunk: bodyProg, Body: args[1]})
	return nil
}

func compileIf(b *builder, args []value.Value) error {
	if err := requireArity("if", args, 3); err != nil {
		return err
	}
	if err := compileExpr(b, args[0]); err != nil {
		return err
	}
	jumpElse := b.emit(Instruction{Op: OpJumpIfFalse})
	if err := compileExpr(b, args[1]); err != nil {
		return err
	}
	jumpEnd := b.emit(Instruction{Op: OpJump})
	b.patchTarget(jumpElse, b.here())
	if err := compileExpr(b, args[2]); err != nil {
		return err
	}
	b.patchTarget(jumpEnd, b.here())
	return nil
}

func compileDo(b *builder, args []value.Value) error {
	if len(args) == 0 {
		b.emit(Instruction{Op: OpPushLit, Lit: value.Null})
		return nil
	}
	for i, a := range args {
		if err := compileExpr(b, a); err != nil {
			return err
		}
		if i != len(args)-1 {
			b.emit(Instruction{Op: OpPop})
		}
	}
	return nil
}

// compileLet lowers `let ((x1 v1) (x2 v2) …) body` into a sequence of
// scope-extend-and-bind instructions around the compiled body, per the
// Open Question resolution in SPEC_FULL.md §3 (nested-pair shape only).
func compileLet(b *builder, args []value.Value) error {
	if err := requireArity("let", args, 2); err != nil {
		return err
	}
	if args[0].Kind() != value.KindList {
		return jerrors.TypeErrorf("let", "list of (name value) bindings", args[0].Kind().String())
	}
	b.emit(Instruction{Op: OpPushScope})
	for _, binding := range args[0].AsList() {
		if binding.Kind() != value.KindList || len(binding.AsList()) != 2 {
			return jerrors.New(jerrors.KindSyntax, "let: each binding must be a (name value) pair")
		}
		pair := binding.AsList()
		name, err := nameOf("let", pair[0])
		if err != nil {
			return err
		}
		if err := compileExpr(b, pair[1]); err != nil {
			return err
		}
		b.emit(Instruction{Op: OpBindLocal, Name: name})
	}
	if err := compileExpr(b, args[1]); err != nil {
		return err
	}
	b.emit(Instruction{Op: OpPopScope})
	return nil
}

func compileQuote(b *builder, args []value.Value) error {
	if err := requireArity("quote", args, 1); err != nil {
		return err
	}
	b.emit(Instruction{Op: OpPushLit, Lit: args[0]})
	return nil
}

func compileTry(b *builder, args []value.Value) error {
	if err := requireArity("try", args, 2); err != nil {
		return err
	}
	enterIdx := b.emit(Instruction{Op: OpTryEnter})
	if err := compileExpr(b, args[0]); err != nil {
		return err
	}
	b.emit(Instruction{Op: OpTryExit})
	jumpEnd := b.emit(Instruction{Op: OpJump})
	b.patchTarget(enterIdx, b.here())
	// Stack here: [error_record] (pushed by the VM's unwind). Evaluate the
	// handler expression, then swap so the layout becomes [handler, error_record]
	// — the [fn, arg...] order OpApply expects — before applying it.
	if err := compileExpr(b, args[1]); err != nil {
		return err
	}
	b.emit(Instruction{Op: OpSwap})
	b.emit(Instruction{Op: OpApply, N: 1})
	b.patchTarget(jumpEnd, b.here())
	return nil
}

func compileHost(b *builder, args []value.Value) error {
	if err := requireMin("host", args, 1); err != nil {
		return err
	}
	for _, a := range args {
		if err := compileExpr(b, a); err != nil {
			return err
		}
	}
	b.emit(Instruction{Op: OpHostCall, N: len(args) - 1})
	return nil
}

func compileWhere(b *builder, args []value.Value) error {
	if err := requireArity("where", args, 2); err != nil {
		return err
	}
	if err := compileExpr(b, args[0]); err != nil {
		return err
	}
	condProg, err := Compile(args[1])
	if err != nil {
		return err
	}
	condProg.Instructions = append(condProg.Instructions, Instruction{Op: OpRet})
	b.emit(Instruction{Op: OpWhere, Chunk: condProg})
	return nil
}

func compileTransform(b *builder, args []value.Value) error {
	if err := requireMin("transform", args, 1); err != nil {
		return err
	}
	if err := compileExpr(b, args[0]); err != nil {
		return err
	}
	chunks := make([]*Program, 0, len(args)-1)
	for _, opExpr := range args[1:] {
		opProg, err := Compile(opExpr)
		if err != nil {
			return err
		}
		opProg.Instructions = append(opProg.Instructions, Instruction{Op: OpRet})
		chunks = append(chunks, opProg)
	}
	b.emit(Instruction{Op: OpTransform, Chunks: chunks})
	return nil
}
