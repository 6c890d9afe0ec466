package vm

import (
	"context"

	"github.com/jsl-lang/jsl/internal/compiler"
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/host"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

// VM drives a single JPN program to completion or to a Paused boundary. It
// owns the mutable execution state named by §4.4: stack, pc, code, env,
// call stack, and the shared resource budget.
type VM struct {
	stack     []value.Value
	code      *compiler.Program
	pc        int
	environ   *env.Environment
	callStack []Frame
	tryStack  []TryFrame
	budget    *jerrors.Budget
	dispatch  *host.Dispatcher
	ctx       context.Context
	pctx      *prelude.Context
}

// New constructs a VM ready to run prog in environ, charged against budget,
// with host effects routed through dispatch (may be nil if the program
// never uses `host`).
func New(prog *compiler.Program, environ *env.Environment, budget *jerrors.Budget, dispatch *host.Dispatcher) *VM {
	m := &VM{
		code:    prog,
		environ: environ,
		budget:  budget,
		dispatch: dispatch,
		ctx:     context.Background(),
	}
	m.pctx = &prelude.Context{Apply: m.ApplyValue, Host: dispatch}
	return m
}

// Run executes from the beginning of the VM's program until it returns a
// value, raises an error, or pauses (§4.4 "Pause/resume").
func (m *VM) Run() (value.Value, error) {
	return m.loop()
}

// Resume continues execution from a previously captured Snapshot (§4.4
// "Resume is the inverse"), restoring the full quintuple and consuming the
// resumed budget argument going forward (testable property 4 splits gas
// across an initial and a resumed half).
func Resume(snap *Snapshot, dispatch *host.Dispatcher, budget *jerrors.Budget) (value.Value, error) {
	m := &VM{
		stack:     append([]value.Value{}, snap.Stack...),
		code:      snap.Code,
		pc:        snap.PC,
		environ:   snap.Env,
		callStack: append([]Frame{}, snap.CallStack...),
		tryStack:  append([]TryFrame{}, snap.TryStack...),
		budget:    budget,
		dispatch:  dispatch,
		ctx:       context.Background(),
	}
	m.pctx = &prelude.Context{Apply: m.ApplyValue, Host: dispatch}
	return m.loop()
}

func (m *VM) loop() (value.Value, error) {
	for {
		if err := m.budget.CheckTerminal(len(m.callStack)); err != nil {
			return value.Null, err
		}
		if m.budget.Exhausted() {
			return value.Null, &Paused{State: m.snapshot()}
		}
		if m.pc >= m.code.Len() {
			// Top-level program fell off the end without an explicit RET
			// (only the outermost program does this; nested chunks always
			// end in OpRet).
			if len(m.stack) == 0 {
				return value.Null, nil
			}
			return m.stack[len(m.stack)-1], nil
		}

		instr := m.code.Instructions[m.pc]
		done, result, err := m.step(instr)
		if err != nil {
			if handled, perr := m.unwind(err); handled {
				if perr != nil {
					return value.Null, perr
				}
				continue
			}
			return value.Null, err
		}
		if done {
			return result, nil
		}
	}
}

func (m *VM) snapshot() *Snapshot {
	return &Snapshot{
		Stack:     append([]value.Value{}, m.stack...),
		Code:      m.code,
		PC:        m.pc,
		Env:       m.environ,
		CallStack: append([]Frame{}, m.callStack...),
		TryStack:  append([]TryFrame{}, m.tryStack...),
		Budget:    m.budget.Clone(),
	}
}

// unwind looks for an enclosing try frame for a raised *jerrors.JSLError
// (ResourceExhausted is terminal and never caught, §4.6). Returns
// handled=true if execution should continue (try caught it, the error
// record is now on the stack) or if the error must propagate out of loop
// (handled=true, perr set, when it's a Paused passthrough). handled=false
// means the caller should return err as-is.
func (m *VM) unwind(err error) (handled bool, perr error) {
	if p, ok := err.(*Paused); ok {
		return true, p
	}
	jerr, ok := err.(*jerrors.JSLError)
	if !ok || jerr.Kind == jerrors.KindResourceExhausted {
		return false, nil
	}
	if len(m.tryStack) == 0 {
		return false, nil
	}
	frame := m.tryStack[len(m.tryStack)-1]
	m.tryStack = m.tryStack[:len(m.tryStack)-1]
	m.callStack = m.callStack[:frame.CallDepth]
	m.stack = m.stack[:frame.StackBase]
	m.environ = frame.Env
	m.code = frame.Code
	m.pc = frame.CatchPC

	kind, message, details := jerr.Record()
	m.stack = append(m.stack, errorRecord(kind, message, details))
	return true, nil
}

func errorRecord(kind, message string, details any) value.Value {
	fields := map[string]value.Value{
		"type":    value.String(kind),
		"message": value.String(message),
	}
	keys := []string{"type", "message"}
	if details != nil {
		v, err := value.FromJSON(details)
		if err == nil {
			fields["details"] = v
			keys = append(keys, "details")
		}
	}
	return value.Object(keys, fields)
}

// Apply invokes fn(args) directly, without compiling or running any
// surrounding program — the entry point an embedder uses to call a Value
// obtained some other way (most notably a closure just produced by
// Deserialize, per §4.5's cross-runtime closure portability scenario) rather
// than one reached by evaluating source. It runs against budget; if the
// budget runs out inside the call, the *Paused from the nested loop is
// returned as is (see applyInline).
func Apply(fn value.Value, args []value.Value, dispatch *host.Dispatcher, budget *jerrors.Budget) (value.Value, error) {
	m := &VM{budget: budget, dispatch: dispatch, ctx: context.Background()}
	m.pctx = &prelude.Context{Apply: m.ApplyValue, Host: dispatch}
	return m.applyInline(fn, args)
}

// ApplyValue applies fn (a closure or builtin Value) to args; it backs the
// prelude.Context.Apply hook used by map/filter/reduce/sort-by/group-by and
// transform's `update`. It runs the callee to completion within this same
// budget; it does not itself return a Paused value — a pause mid-callback
// surfaces as an opaque error to the builtin that invoked it, an accepted
// approximation for higher-order built-ins (ordinary OpCall/OpApply to a
// closure instead runs inline in the main loop, so pause/resume there keeps
// full instruction-level granularity).
func (m *VM) ApplyValue(fn value.Value, args []value.Value) (value.Value, error) {
	return m.applyInline(fn, args)
}
