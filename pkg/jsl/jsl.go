// Package jsl is the sole external-facing surface of the core (§6): a
// program enters through Evaluate, leaves through Serialize/Deserialize,
// and reaches outward through RegisterHostCommand. Everything under
// internal/ is invisible outside the module, mirroring the teacher's
// internal/ vs. pkg/dwscript split.
package jsl

import (
	"log/slog"
	"time"

	"github.com/jsl-lang/jsl/internal/compiler"
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/evaluator"
	"github.com/jsl-lang/jsl/internal/host"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/serialize"
	"github.com/jsl-lang/jsl/internal/value"
	"github.com/jsl-lang/jsl/internal/vm"
)

// Budget is the caller-facing resource cap (§4.6), a plain struct in the
// teacher's Options style: constructed by the embedder, never read from
// flags or environment variables inside the core.
type Budget struct {
	Gas           int64
	Steps         int64
	MaxMemory     int64
	Deadline      time.Time
	MaxStackDepth int
}

func (b Budget) toInternal() *jerrors.Budget {
	return &jerrors.Budget{
		Gas:           b.Gas,
		Steps:         b.Steps,
		MaxMemory:     b.MaxMemory,
		Deadline:      b.Deadline,
		MaxStackDepth: b.MaxStackDepth,
	}
}

// DefaultBudget returns generous but finite caps, suitable for tests and
// quick embedder prototyping; production embedders should size Budget to
// their own resource policy.
func DefaultBudget() Budget {
	return Budget{Gas: 1_000_000, Steps: 1_000_000, MaxStackDepth: 10_000}
}

// Options configures a Runtime at construction time.
type Options struct {
	// Log receives the host dispatcher's audit trail (§4.8); nil falls
	// back to slog.Default().
	Log *slog.Logger
}

// Runtime is an embeddable JSL instance: one frozen prelude, one host
// command dispatcher, shared across any number of Evaluate calls.
type Runtime struct {
	root     *env.Environment
	dispatch *host.Dispatcher
}

// New constructs a Runtime with a fresh prelude and an empty host
// dispatcher (RegisterHostCommand populates it before first use).
func New(opts Options) *Runtime {
	return &Runtime{
		root:     prelude.New(),
		dispatch: host.NewDispatcher(opts.Log),
	}
}

// RegisterHostCommand binds a capability handler under id (§4.8); policy
// about what is registered, and under what authorization, is entirely the
// embedder's concern.
func (r *Runtime) RegisterHostCommand(id string, entry host.ManifestEntry, h host.Handler) {
	r.dispatch.Register(id, entry, h)
}

// HostManifest returns the registered command set for introspection/
// publication by the embedder.
func (r *Runtime) HostManifest() []host.ManifestEntry {
	return r.dispatch.Manifest()
}

// Parse decodes a JSON-encoded program into a Value, the universal input
// shape every entry point below accepts (§3 "a JSON program enters the
// parser as a Value").
func Parse(data []byte) (value.Value, error) {
	return value.ParseJSON(data)
}

// Paused is returned by Evaluate when the budget is exhausted before the
// program completes; Resume continues from exactly this point.
type Paused struct {
	snap *vm.Snapshot
}

func (p *Paused) Error() string { return "jsl: evaluation paused (gas or step budget exhausted)" }

// Evaluate runs expr to completion or to a budget boundary, using the
// stack VM (the canonical gas/step ledger, §9 Open Question resolution).
// A *Paused error is returned (wrapping resumable state) rather than a
// plain error when the budget runs out; any other error is a genuine
// *jerrors.JSLError.
func (r *Runtime) Evaluate(expr value.Value, budget Budget) (value.Value, error) {
	prog, err := compiler.Compile(expr)
	if err != nil {
		return value.Null, err
	}
	m := vm.New(prog, r.root.Extend(), budget.toInternal(), r.dispatch)
	result, err := m.Run()
	if p, ok := err.(*vm.Paused); ok {
		return value.Null, &Paused{snap: p.State}
	}
	return result, err
}

// Resume continues a previously paused evaluation, charging the new
// budget going forward (testable property 4: gas can be split across an
// initial and a resumed half).
func (r *Runtime) Resume(p *Paused, budget Budget) (value.Value, error) {
	result, err := vm.Resume(p.snap, r.dispatch, budget.toInternal())
	if pp, ok := err.(*vm.Paused); ok {
		return value.Null, &Paused{snap: pp.State}
	}
	return result, err
}

// EvaluateTree runs expr through the tree-walking reference evaluator
// instead of the VM. It is the correctness oracle (testable property 1:
// evaluator_tree ≡ vm) and is not expected to pause/resume with the VM's
// fidelity — see internal/evaluator's documented approximation.
func (r *Runtime) EvaluateTree(expr value.Value, budget Budget) (value.Value, error) {
	e := evaluator.New(budget.toInternal(), r.dispatch)
	return e.Eval(expr, r.root.Extend())
}

// Apply invokes fn (typically a closure just produced by Deserialize) on
// args directly, without any surrounding source to compile — the missing
// piece the "recursive closure survives serialization" scenario (§8) needs:
// a deserialized closure is a Value, not source, so it cannot be reached by
// writing it into an Evaluate expression.
func (r *Runtime) Apply(fn value.Value, args []value.Value, budget Budget) (value.Value, error) {
	return vm.Apply(fn, args, r.dispatch, budget.toInternal())
}

// Serialize encodes v per §4.5 (direct JSON, or the CAS envelope when the
// graph reaches a closure/environment).
func Serialize(v value.Value) ([]byte, error) {
	return serialize.Serialize(v)
}

// Deserialize reverses Serialize against this Runtime's own prelude: any
// environment chain in data is re-attached to r's live prelude rather
// than whatever the original program's prelude reference was (§4.5
// "Prelude non-serialization").
func (r *Runtime) Deserialize(data []byte) (value.Value, error) {
	return serialize.Deserialize(data, r.root)
}
