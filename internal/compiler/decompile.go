package compiler

import (
	"fmt"

	"github.com/jsl-lang/jsl/internal/value"
)

// Decompile reverses Compile, reconstructing an S-expression structurally
// equivalent to the original for every form with a unique S-expression
// origin (§4.3 "Decompilation"). `__apply__`/`__dict__` are internal and
// have no surface syntax of their own — they reconstruct as ordinary
// application/object forms, which is what produced them in the first
// place. Quoting a bare scalar or an empty list is the one further
// exception noted inline below: it compiles identically to writing the
// scalar/empty-list directly, so decompilation always produces the
// simpler of the two equivalent source forms.
func Decompile(prog *Program) (value.Value, error) {
	v, pos, err := decompileUntil(prog.Instructions, 0, len(prog.Instructions), nil)
	if err != nil {
		return value.Null, err
	}
	if pos != len(prog.Instructions) {
		return value.Null, fmt.Errorf("compiler: decompile left %d unconsumed instruction(s)", len(prog.Instructions)-pos)
	}
	return v, nil
}

// decompileChunk decompiles a nested body Program (lambda/where/transform),
// which always ends in a trailing OpRet appended by the compiler.
func decompileChunk(chunk *Program) (value.Value, error) {
	n := len(chunk.Instructions)
	if n == 0 || chunk.Instructions[n-1].Op != OpRet {
		return value.Null, fmt.Errorf("compiler: malformed chunk (missing trailing RET)")
	}
	v, pos, err := decompileUntil(chunk.Instructions, 0, n-1, nil)
	if err != nil {
		return value.Null, err
	}
	if pos != n-1 {
		return value.Null, fmt.Errorf("compiler: decompile left %d unconsumed instruction(s) in chunk", n-1-pos)
	}
	return v, nil
}

// stackItem is a decompiled atom or composite expression. keyForm is set
// only for the two single-instruction shapes compileObjectKey can ever
// produce (a literal string push or a variable push), so that OpMakeDict's
// key slots can recover the original `@literal`/bareName wire form; it is
// ignored everywhere else.
type stackItem struct {
	val     value.Value
	keyForm string
}

// decompileLit reconstructs the source expression for an OpPushLit/quote
// payload. Null/bool/number and the empty list are self-evaluating and
// decompile to themselves; every other kind (string, non-empty list,
// object) can only have reached OpPushLit via `quote`/`@`, so it
// reconstructs the quote form.
func decompileLit(lit value.Value) value.Value {
	switch lit.Kind() {
	case value.KindNull, value.KindBool, value.KindNumber:
		return lit
	case value.KindList:
		if len(lit.AsList()) == 0 {
			return lit
		}
		return value.List(value.String("quote"), lit)
	default:
		return value.List(value.String("quote"), lit)
	}
}

func keyFormOf(instr Instruction) string {
	if instr.Op == OpPushLit && instr.Lit.Kind() == value.KindString {
		return "@" + instr.Lit.AsString()
	}
	if instr.Op == OpPushVar {
		return instr.Name
	}
	return ""
}

// decompileUntil is the shared decompilation engine: a linear scan over
// instrs[pos:hi] maintaining an explicit symbolic value stack (the
// standard technique for reversing a stack machine's postfix output back
// to a tree). It stops early if stop is non-nil and reports true for the
// opcode about to be processed (used by `let` to find a binding's value
// expression boundary without knowing its length in advance); otherwise it
// runs to hi. Zero or more completed `do`-statements (separated by OpPop,
// the only opcode that ever appears between sibling top-level
// expressions) are collected and wrapped in a `do` form iff there is more
// than one.
func decompileUntil(instrs []Instruction, pos, hi int, stop func(OpCode) bool) (value.Value, int, error) {
	var stmts []value.Value
	stack := []stackItem{}

	for pos < hi {
		op := instrs[pos].Op
		if stop != nil && stop(op) {
			break
		}
		switch op {
		case OpPop:
			if len(stack) == 0 {
				return value.Null, 0, fmt.Errorf("compiler: decompile: POP with empty stack")
			}
			stmts = append(stmts, stack[len(stack)-1].val)
			stack = stack[:len(stack)-1]
			pos++

		case OpPushScope:
			letVal, newPos, err := decompileLet(instrs, pos)
			if err != nil {
				return value.Null, 0, err
			}
			stack = append(stack, stackItem{val: letVal})
			pos = newPos

		case OpDef:
			if len(stack) == 0 {
				return value.Null, 0, fmt.Errorf("compiler: decompile: DEF with empty stack")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			defVal := value.List(value.String("def"), value.String(instrs[pos].Name), top.val)
			stack = append(stack, stackItem{val: defVal})
			pos++

		default:
			newPos, err := decompileOne(instrs, pos, &stack)
			if err != nil {
				return value.Null, 0, err
			}
			pos = newPos
		}
	}

	if len(stack) != 1 {
		return value.Null, 0, fmt.Errorf("compiler: decompile: expected exactly one residual value, got %d", len(stack))
	}
	final := stack[0].val
	if len(stmts) == 0 {
		return final, pos, nil
	}
	doForm := append([]value.Value{value.String("do")}, stmts...)
	doForm = append(doForm, final)
	return value.ListFrom(doForm), pos, nil
}

// decompileLet reconstructs `let` starting at its OpPushScope instruction,
// returning the position just after the matching OpPopScope.
func decompileLet(instrs []Instruction, pos int) (value.Value, int, error) {
	cur := pos + 1
	var bindings []value.Value
	stopAtBindOrEnd := func(op OpCode) bool { return op == OpBindLocal || op == OpPopScope }

	for {
		val, newPos, err := decompileUntil(instrs, cur, len(instrs), stopAtBindOrEnd)
		if err != nil {
			return value.Null, 0, err
		}
		cur = newPos
		if instrs[cur].Op == OpBindLocal {
			bindings = append(bindings, value.List(value.String(instrs[cur].Name), val))
			cur++
			continue
		}
		// instrs[cur].Op == OpPopScope: val is the let body.
		bindingsVal := value.ListFrom(bindings)
		letForm := value.List(value.String("let"), bindingsVal, val)
		return letForm, cur + 1, nil
	}
}

// decompileOne decompiles the single expression-producing construct at
// instrs[pos] (an atom, an application, or a self-contained control
// construct: if, try, lambda, where, transform, host), pushing exactly one
// net item and returning the position just past it.
func decompileOne(instrs []Instruction, pos int, stack *[]stackItem) (int, error) {
	instr := instrs[pos]

	pop := func() stackItem {
		n := len(*stack)
		it := (*stack)[n-1]
		*stack = (*stack)[:n-1]
		return it
	}
	popN := func(n int) []stackItem {
		if n == 0 {
			return nil
		}
		out := make([]stackItem, n)
		for i := n - 1; i >= 0; i-- {
			out[i] = pop()
		}
		return out
	}

	switch instr.Op {
	case OpPushLit:
		*stack = append(*stack, stackItem{val: decompileLit(instr.Lit), keyForm: keyFormOf(instr)})
		return pos + 1, nil

	case OpPushLitString:
		*stack = append(*stack, stackItem{val: value.String("@" + instr.Lit.AsString())})
		return pos + 1, nil

	case OpPushVar:
		*stack = append(*stack, stackItem{val: value.String(instr.Name), keyForm: keyFormOf(instr)})
		return pos + 1, nil

	case OpMakeDict:
		items := popN(instr.N)
		keys := make([]string, 0, len(items)/2)
		fields := make(map[string]value.Value, len(items)/2)
		for i := 0; i+1 < len(items); i += 2 {
			k := items[i].keyForm
			if k == "" {
				k = items[i].val.String()
			}
			keys = append(keys, k)
			fields[k] = items[i+1].val
		}
		*stack = append(*stack, stackItem{val: value.Object(keys, fields)})
		return pos + 1, nil

	case OpCall:
		args := popN(instr.N)
		list := make([]value.Value, 0, len(args)+1)
		list = append(list, value.String(instr.Name))
		for _, a := range args {
			list = append(list, a.val)
		}
		*stack = append(*stack, stackItem{val: value.ListFrom(list)})
		return pos + 1, nil

	case OpApply:
		args := popN(instr.N)
		fn := pop()
		list := make([]value.Value, 0, len(args)+1)
		list = append(list, fn.val)
		for _, a := range args {
			list = append(list, a.val)
		}
		*stack = append(*stack, stackItem{val: value.ListFrom(list)})
		return pos + 1, nil

	case OpHostCall:
		args := popN(instr.N)
		cmd := pop()
		list := make([]value.Value, 0, len(args)+2)
		list = append(list, value.String("host"), cmd.val)
		for _, a := range args {
			list = append(list, a.val)
		}
		*stack = append(*stack, stackItem{val: value.ListFrom(list)})
		return pos + 1, nil

	case OpMakeClosure:
		bodyVal, err := decompileChunk(instr.Chunk)
		if err != nil {
			return 0, err
		}
		params := make([]value.Value, len(instr.Params))
		for i, p := range instr.Params {
			params[i] = value.String(p)
		}
		lam := value.List(value.String("lambda"), value.ListFrom(params), bodyVal)
		*stack = append(*stack, stackItem{val: lam})
		return pos + 1, nil

	case OpWhere:
		col := pop()
		condVal, err := decompileChunk(instr.Chunk)
		if err != nil {
			return 0, err
		}
		w := value.List(value.String("where"), col.val, condVal)
		*stack = append(*stack, stackItem{val: w})
		return pos + 1, nil

	case OpTransform:
		data := pop()
		ops := make([]value.Value, len(instr.Chunks))
		for i, c := range instr.Chunks {
			ov, err := decompileChunk(c)
			if err != nil {
				return 0, err
			}
			ops[i] = ov
		}
		list := append([]value.Value{value.String("transform"), data.val}, ops...)
		*stack = append(*stack, stackItem{val: value.ListFrom(list)})
		return pos + 1, nil

	case OpJumpIfFalse:
		cond := pop()
		elseStart := instr.N
		jumpPos := elseStart - 1
		endTarget := instrs[jumpPos].N
		thenVal, _, err := decompileUntil(instrs, pos+1, jumpPos, nil)
		if err != nil {
			return 0, err
		}
		elseVal, _, err := decompileUntil(instrs, elseStart, endTarget, nil)
		if err != nil {
			return 0, err
		}
		iff := value.List(value.String("if"), cond.val, thenVal, elseVal)
		*stack = append(*stack, stackItem{val: iff})
		return endTarget, nil

	case OpTryEnter:
		catchLabel := instr.N
		tryExitPos := catchLabel - 2
		bodyVal, _, err := decompileUntil(instrs, pos+1, tryExitPos, nil)
		if err != nil {
			return 0, err
		}
		jumpPos := catchLabel - 1
		endTarget := instrs[jumpPos].N
		swapPos := endTarget - 2
		handlerVal, _, err := decompileUntil(instrs, catchLabel, swapPos, nil)
		if err != nil {
			return 0, err
		}
		tryForm := value.List(value.String("try"), bodyVal, handlerVal)
		*stack = append(*stack, stackItem{val: tryForm})
		return endTarget, nil

	default:
		return 0, fmt.Errorf("compiler: decompile: unexpected opcode %q in expression position", instr.Op)
	}
}
