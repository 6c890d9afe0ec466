package vm

import (
	"github.com/jsl-lang/jsl/internal/compiler"
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/host"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// step executes one instruction, charging gas first. It returns done=true
// with a final result when the outermost program completes (falling off
// the end, or an OpRet with no enclosing call frame — the base case shared
// with runChunk's nested executions).
func (m *VM) step(instr compiler.Instruction) (done bool, result value.Value, err error) {
	m.pc++ // default: advance to the next instruction; jump/call ops override below.

	switch instr.Op {
	case compiler.OpPushLit:
		m.budget.Charge(jerrors.GasLiteralPush)
		m.push(instr.Lit)

	case compiler.OpPushLitString:
		m.budget.Charge(jerrors.GasLiteralPush)
		m.push(instr.Lit)

	case compiler.OpPushVar:
		m.budget.Charge(jerrors.GasVariableLookup)
		v, lerr := m.environ.Lookup(instr.Name)
		if lerr != nil {
			return false, value.Null, lerr
		}
		m.push(v)

	case compiler.OpPop:
		m.pop()

	case compiler.OpSwap:
		n := len(m.stack)
		m.stack[n-1], m.stack[n-2] = m.stack[n-2], m.stack[n-1]

	case compiler.OpJump:
		m.pc = instr.N

	case compiler.OpJumpIfFalse:
		cond := m.pop()
		if !cond.Truthy() {
			m.pc = instr.N
		}

	case compiler.OpMakeDict:
		n := instr.N
		fields := make(map[string]value.Value, n/2)
		keys := make([]string, 0, n/2)
		vals := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			vals[i] = m.pop()
		}
		for i := 0; i < n; i += 2 {
			k := vals[i].AsString()
			if _, dup := fields[k]; !dup {
				keys = append(keys, k)
			}
			fields[k] = vals[i+1]
		}
		m.budget.Allocate(int64(len(keys)) * 2)
		m.push(value.Object(keys, fields))

	case compiler.OpMakeClosure:
		m.budget.Charge(jerrors.GasLiteralPush)
		m.push(value.ClosureValue(&value.Closure{
			Params:   instr.Params,
			Body:     instr.Body,
			Env:      m.environ,
			Compiled: instr.Chunk,
		}))

	case compiler.OpDef:
		v := m.pop()
		if c, ok := asNamedClosure(v); ok && c.Name == "" {
			c.Name = instr.Name
		}
		if derr := m.environ.Define(instr.Name, v); derr != nil {
			return false, value.Null, derr
		}
		m.push(v)

	case compiler.OpPushScope:
		m.environ = m.environ.Extend()

	case compiler.OpBindLocal:
		v := m.pop()
		if derr := m.environ.Define(instr.Name, v); derr != nil {
			return false, value.Null, derr
		}

	case compiler.OpPopScope:
		if p := m.environ.Parent(); p != nil {
			m.environ = p
		}

	case compiler.OpCall:
		n := instr.N
		args := m.popN(n)
		fn, lerr := m.environ.Lookup(instr.Name)
		if lerr != nil {
			return false, value.Null, lerr
		}
		base := len(m.stack)
		if _, cerr := m.callValue(fn, args, base); cerr != nil {
			return false, value.Null, cerr
		}

	case compiler.OpApply:
		n := instr.N
		args := m.popN(n)
		fn := m.pop()
		base := len(m.stack)
		if _, cerr := m.callValue(fn, args, base); cerr != nil {
			return false, value.Null, cerr
		}

	case compiler.OpRet:
		retVal := m.pop()
		if len(m.callStack) == 0 {
			return true, retVal, nil
		}
		frame := m.callStack[len(m.callStack)-1]
		m.callStack = m.callStack[:len(m.callStack)-1]
		m.stack = append(m.stack[:frame.StackBase], retVal)
		m.code = frame.ReturnCode
		m.pc = frame.ReturnPC
		m.environ = frame.ReturnEnv

	case compiler.OpTryEnter:
		m.tryStack = append(m.tryStack, TryFrame{
			CatchPC:   instr.N,
			StackBase: len(m.stack),
			CallDepth: len(m.callStack),
			Env:       m.environ,
			Code:      m.code,
		})

	case compiler.OpTryExit:
		if len(m.tryStack) > 0 {
			m.tryStack = m.tryStack[:len(m.tryStack)-1]
		}

	case compiler.OpHostCall:
		n := instr.N
		args := m.popN(n)
		cmdVal := m.pop()
		if cmdVal.Kind() != value.KindString {
			return false, value.Null, jerrors.TypeErrorf("host", "string command id", cmdVal.Kind().String())
		}
		if m.dispatch == nil {
			return false, value.Null, jerrors.New(jerrors.KindHostError, "no host dispatcher configured")
		}
		res, herr := m.dispatch.Dispatch(m.ctx, cmdVal.AsString(), args)
		if herr != nil {
			return false, value.Null, hostErrAsJSL(herr)
		}
		m.push(res)

	case compiler.OpWhere:
		cond := m.pop()
		out, werr := m.execWhere(cond, instr.Chunk)
		if werr != nil {
			return false, value.Null, werr
		}
		m.push(out)

	case compiler.OpTransform:
		data := m.pop()
		out, terr := m.execTransform(data, instr.Chunks)
		if terr != nil {
			return false, value.Null, terr
		}
		m.push(out)

	default:
		return false, value.Null, jerrors.New(jerrors.KindSyntax, "vm: unknown opcode %q", instr.Op)
	}

	return false, value.Null, nil
}

func (m *VM) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() value.Value {
	n := len(m.stack)
	v := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return v
}

// popN pops n values and returns them in original (left-to-right
// argument) order (§4.4 "pop n values, reversing to argument order").
func (m *VM) popN(n int) []value.Value {
	if n == 0 {
		return nil
	}
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = m.pop()
	}
	return out
}

// asNamedClosure reports whether v is a real user closure (as opposed to a
// boxed builtin, whose Env holds a *prelude.Builtin instead of an
// *env.Environment) — only a real closure gets its def-site name patched
// in by OpDef.
func asNamedClosure(v value.Value) (*value.Closure, bool) {
	if v.Kind() != value.KindClosure {
		return nil, false
	}
	c := v.AsClosure()
	if _, ok := c.Env.(*env.Environment); !ok {
		return nil, false
	}
	return c, true
}

// hostErrAsJSL converts a dispatcher failure into the core's error
// representation (§4.8): a *host.HostError carries structured type/
// message/details; anything else is wrapped generically.
func hostErrAsJSL(err error) error {
	if he, ok := err.(*host.HostError); ok {
		return jerrors.HostErrorFrom(he.Type, he.Message, he.Details)
	}
	return jerrors.HostErrorFrom("HostError", err.Error(), nil)
}
