// Package vm implements the JSL stack VM (§4.4): a value stack, program
// counter into the current code block, environment pointer, call stack,
// and a resource budget, pauseable at instruction boundaries and resumable
// from a captured Paused state.
package vm

import (
	"github.com/jsl-lang/jsl/internal/compiler"
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// Frame is a saved call-stack entry: where to resume, and how much of the
// value stack belongs to the call that is returning (§4.4 state tuple K).
type Frame struct {
	ReturnCode *compiler.Program
	ReturnPC   int
	ReturnEnv  *env.Environment
	StackBase  int
}

// TryFrame is a pending `try` recovery point (§4.1 `try`): on an error
// raised anywhere in the dynamic extent of the body, execution unwinds the
// value stack and call stack to this point and jumps to CatchPC.
type TryFrame struct {
	CatchPC   int
	StackBase int
	CallDepth int
	Env       *env.Environment
	Code      *compiler.Program
}

// Snapshot is the full quintuple (S, pc, C, E, K) of §4.4, plus the
// resource budget, captured when execution pauses and restored on resume.
// It is the in-memory "Paused state" of §4.4/§4.6: its fields are live Go
// values (programs, environments), and no encoding of a Snapshot to bytes
// is provided.
type Snapshot struct {
	Stack     []value.Value
	Code      *compiler.Program
	PC        int
	Env       *env.Environment
	CallStack []Frame
	TryStack  []TryFrame
	Budget    *jerrors.Budget
}

// Paused is returned (as an error-shaped value, per the evaluate contract
// "Value | Error | Paused(state)") when gas or steps are exhausted at an
// instruction boundary. It is explicitly not a jerrors.JSLError: gas/step
// exhaustion is recoverable (§4.6 "is not an error — it is a Paused
// state"), so callers must type-assert for *Paused before treating a
// non-nil error as a raised error.
type Paused struct {
	State *Snapshot
}

// Error implements the error interface so Paused can travel through Go's
// ordinary error-return plumbing; callers MUST check errors.As(err, &p)
// before treating a failure as terminal.
func (p *Paused) Error() string {
	return "jsl: execution paused (gas or step budget exhausted)"
}
