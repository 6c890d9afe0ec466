// Package compiler translates JSL S-expressions into JPN, the flat postfix
// bytecode the stack VM executes (§4.3), and back (decompilation, §4.3
// "Decompilation"). The instruction set below is the JSON-shaped opcode
// catalog named in spec §6: each OpCode is a reserved string sentinel, and
// the wire form of a Program is a JSON array of per-instruction JSON
// arrays — `["CALL", 2, "+"]`, `["JUMP_IF_FALSE", 7]`, and so on — which is
// exactly "a JSON array of instructions: JSON primitives, strings..., and
// opcode sentinels encoded as reserved strings" (§6).
package compiler

import "github.com/jsl-lang/jsl/internal/value"

// OpCode is a JPN instruction's opcode, serialized as its string name.
type OpCode string

const (
	// OpPushLit pushes a literal Value (Arg.Lit) onto the stack. Used for
	// numbers, booleans, null, objects-as-data is NOT here (objects are
	// always compiled field-by-field, §4.1 rule 1), and `quote`/`@`
	// payloads, which push an unevaluated S-expression as inert data.
	OpPushLit OpCode = "LIT"

	// OpPushVar resolves Arg.Name in the current environment and pushes
	// the result; SymbolNotFound if it's unbound anywhere in the chain.
	OpPushVar OpCode = "VAR"

	// OpPushLitString pushes the string payload of an `@name` literal
	// (the `@` already stripped at compile time, per §3 invariant 3).
	OpPushLitString OpCode = "LITSTR"

	// OpCall pops Arg.N values (in argument order) and applies the named
	// operator Arg.Name, which must resolve to a closure or builtin in the
	// current environment. This is the postfix encoding of §4.3: "arg1-code
	// … argn-code, n, op-name".
	OpCall OpCode = "CALL"

	// OpApply pops Arg.N arguments then the function value itself, and
	// applies it. Used when the application head is an expression that
	// must itself be evaluated (§4.3 "__apply__").
	OpApply OpCode = "__apply__"

	// OpMakeDict pops Arg.N (always even) values as k1,v1,k2,v2,... in
	// order and constructs an object (§4.3 "__dict__").
	OpMakeDict OpCode = "__dict__"

	// OpJump unconditionally sets pc to Arg.N.
	OpJump OpCode = "JUMP"

	// OpJumpIfFalse pops the top of stack; if falsy, sets pc to Arg.N.
	OpJumpIfFalse OpCode = "JUMP_IF_FALSE"

	// OpPop discards the top of stack (used between non-final `do` exprs).
	OpPop OpCode = "POP"

	// OpMakeClosure pops nothing; it constructs a closure from Arg.Params
	// and Arg.Chunk (the lambda body, compiled as its own nested Program),
	// capturing the VM's current environment (§4.3 "SPECIAL_FORM lambda").
	OpMakeClosure OpCode = "LAMBDA"

	// OpDef pops one value and binds it to Arg.Name in the current
	// environment, which must not be frozen (ImmutablePrelude otherwise).
	OpDef OpCode = "DEF"

	// OpPushScope extends the current environment with an empty child and
	// makes it current; used by `let`.
	OpPushScope OpCode = "PUSH_SCOPE"

	// OpBindLocal pops one value and defines Arg.Name in the current
	// (innermost) environment; used by `let`'s sequential bindings.
	OpBindLocal OpCode = "BIND"

	// OpPopScope restores the environment to what it was before the
	// matching PushScope.
	OpPopScope OpCode = "POP_SCOPE"

	// OpHostCall pops Arg.N+1 values (cmd, then N args, in argument order)
	// and invokes the host dispatcher (§4.8).
	OpHostCall OpCode = "HOST"

	// OpTryEnter pushes a recovery point targeting Arg.N (the catch
	// label); OpTryExit pops it on successful completion of the body.
	OpTryEnter OpCode = "TRY_ENTER"
	OpTryExit  OpCode = "TRY_EXIT"

	// OpWhere pops a list, filters it by evaluating Arg.Chunk (the
	// condition) once per element in an item-extended environment, and
	// pushes the filtered list (§4.7 where).
	OpWhere OpCode = "WHERE"

	// OpTransform pops a value (list or single item) and applies the
	// pipeline of Arg.Chunks (one per operation expression) to each
	// element, pushing the transformed result (§4.7 transform).
	OpTransform OpCode = "TRANSFORM"

	// OpRet pops the current call frame, carrying the top of the callee
	// stack back as the return value.
	OpRet OpCode = "RET"

	// OpSwap exchanges the top two stack values. Used only by `try`'s catch
	// sequence, to reorder the error record (pushed by the VM's unwind,
	// beneath) and the freshly evaluated handler value (on top) into the
	// [fn, arg] order OpApply expects.
	OpSwap OpCode = "SWAP"
)

// Instruction is one JPN opcode plus whichever operand fields it uses.
// Only the fields relevant to Op are populated; the rest are zero values.
// This is the in-memory (flat, PC-indexed) representation the VM executes;
// Program.MarshalJSON/UnmarshalJSON project it to and from the §6 wire
// form.
type Instruction struct {
	Op     OpCode
	N      int          // arity, jump target, or count, depending on Op
	Name   string       // variable/operator/field/host-independent name
	Lit    value.Value  // literal payload for OpPushLit
	Params []string     // OpMakeClosure parameter list
	Chunk  *Program     // nested body: lambda, where-condition
	Chunks []*Program   // transform's per-operation expression chunks
	Body   value.Value  // OpMakeClosure: the raw (uncompiled) lambda body, kept for serialization
}

// Program is a flat, linear JPN code block: a PC into Instructions indexes
// directly, and jump targets (Instruction.N for OpJump/OpJumpIfFalse/
// OpTryEnter) are absolute indices into this same slice.
type Program struct {
	Instructions []Instruction
}

// Len returns the instruction count.
func (p *Program) Len() int { return len(p.Instructions) }
