package vm

import (
	"github.com/jsl-lang/jsl/internal/compiler"
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

// closureProgram returns c's compiled body, compiling and caching it on
// first use. VM-native closures (built by OpMakeClosure) already carry a
// compiled Chunk; this fallback exists for closures that arrive from
// outside the VM — deserialized from CAS, or constructed by the tree
// evaluator — which only carry the raw Body expression.
func closureProgram(c *value.Closure) (*compiler.Program, error) {
	if p, ok := c.Compiled.(*compiler.Program); ok && p != nil {
		return p, nil
	}
	prog, err := compiler.Compile(c.Body)
	if err != nil {
		return nil, err
	}
	prog.Instructions = append(prog.Instructions, compiler.Instruction{Op: compiler.OpRet})
	c.Compiled = prog
	return prog, nil
}

func closureCallEnv(c *value.Closure, args []value.Value) (*env.Environment, error) {
	if len(args) != len(c.Params) {
		name := c.Name
		if name == "" {
			name = "lambda"
		}
		return nil, jerrors.ArityErrorf(name, len(c.Params), len(args))
	}
	parent, ok := c.Env.(*env.Environment)
	if !ok {
		return nil, jerrors.New(jerrors.KindTypeError, "closure has no valid capture environment")
	}
	bindings := make(map[string]value.Value, len(args))
	for i, p := range c.Params {
		bindings[p] = args[i]
	}
	return parent.ExtendWith(bindings), nil
}

// pushCall transfers control in-line to a closure's body: the main step
// loop keeps running, now inside the callee, so pause/resume retains full
// instruction-level granularity for ordinary calls (§4.4 "__apply__...
// push a new frame and jump to its body").
func (m *VM) pushCall(c *value.Closure, args []value.Value, stackBase int) error {
	prog, err := closureProgram(c)
	if err != nil {
		return err
	}
	callEnv, err := closureCallEnv(c, args)
	if err != nil {
		return err
	}
	m.callStack = append(m.callStack, Frame{
		ReturnCode: m.code,
		ReturnPC:   m.pc,
		ReturnEnv:  m.environ,
		StackBase:  stackBase,
	})
	m.code = prog
	m.pc = 0
	m.environ = callEnv
	return nil
}

// callValue dispatches fn(args) where fn may be a builtin or a closure. For
// builtins it runs to completion synchronously (builtins never suspend).
// For closures it uses pushCall so the main loop continues inside the
// callee body. pushed reports whether a closure frame was pushed; if fn is
// neither a builtin nor a closure it returns a TypeError.
func (m *VM) callValue(fn value.Value, args []value.Value, stackBase int) (pushed bool, err error) {
	if b, ok := prelude.AsBuiltin(fn); ok {
		if !b.Arity.Accepts(len(args)) {
			return false, jerrors.ArityRangeErrorf(b.Name, b.Arity.Min, b.Arity.Max, len(args))
		}
		m.budget.Charge(jerrors.GasForNary(len(args)))
		result, err := b.Fn(m.pctx, args)
		if err != nil {
			return false, err
		}
		m.stack = append(m.stack[:stackBase], result)
		return false, nil
	}
	if fn.Kind() == value.KindClosure {
		m.budget.Charge(jerrors.GasCallBase)
		if err := m.pushCall(fn.AsClosure(), args, stackBase); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, jerrors.TypeErrorf("apply", "closure or builtin", fn.Kind().String())
}

// applyInline runs fn(args) to completion against the shared budget and
// returns its result directly, used by prelude built-ins that need to call
// back into JSL (map, filter, reduce, sort-by, group-by, transform's
// `update`) and by where/transform's per-item evaluation. It does not
// participate in the main loop's pause/resume granularity: a pause that
// occurs while inside applyInline loses the outer (map/where/transform)
// context on resume, an accepted approximation documented alongside
// Context.Apply.
func (m *VM) applyInline(fn value.Value, args []value.Value) (value.Value, error) {
	if b, ok := prelude.AsBuiltin(fn); ok {
		if !b.Arity.Accepts(len(args)) {
			return value.Null, jerrors.ArityRangeErrorf(b.Name, b.Arity.Min, b.Arity.Max, len(args))
		}
		m.budget.Charge(jerrors.GasForNary(len(args)))
		return b.Fn(m.pctx, args)
	}
	if fn.Kind() != value.KindClosure {
		return value.Null, jerrors.TypeErrorf("apply", "closure or builtin", fn.Kind().String())
	}
	c := fn.AsClosure()
	prog, err := closureProgram(c)
	if err != nil {
		return value.Null, err
	}
	callEnv, err := closureCallEnv(c, args)
	if err != nil {
		return value.Null, err
	}
	return m.runChunk(prog, callEnv)
}

// runChunk executes prog from pc 0 in environ to completion (an OpRet with
// an empty call stack, or falling off the end), sharing this VM's budget
// and dispatcher but with an independent stack/call-stack/try-stack. Used
// for where/transform's per-item sub-evaluation and applyInline's closure
// path.
func (m *VM) runChunk(prog *compiler.Program, environ *env.Environment) (value.Value, error) {
	savedStack, savedCode, savedPC := m.stack, m.code, m.pc
	savedEnv, savedCallStack, savedTryStack := m.environ, m.callStack, m.tryStack

	m.stack = nil
	m.code = prog
	m.pc = 0
	m.environ = environ
	m.callStack = nil
	m.tryStack = nil

	result, err := m.loop()

	m.stack, m.code, m.pc = savedStack, savedCode, savedPC
	m.environ, m.callStack, m.tryStack = savedEnv, savedCallStack, savedTryStack
	return result, err
}
