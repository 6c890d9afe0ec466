// Package host implements the JHIP (JSL Host Interaction Protocol)
// dispatcher (§4.8): a registry of capability handlers keyed by command id,
// through which the evaluator's `host` special form reifies effects. This
// follows the shape of the teacher's FFI registration
// (internal/interp/ffi_callback.go, ffi_errors.go): Go-side handlers are
// registered by name, invoked with marshaled arguments, and any Go error is
// converted into the core's error representation rather than panicking.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jsl-lang/jsl/internal/value"
)

// Handler answers a single JHIP command. It receives the already-evaluated
// argument list and returns a result Value or a *HostError. Handlers never
// see unevaluated expressions: the `host` special form evaluates cmd and
// every argument before dispatch (§4.1 `host`).
type Handler func(ctx context.Context, args []value.Value) (value.Value, error)

// HostError is the Go-side error type a Handler returns; the evaluator and
// the VM convert it with jerrors.HostErrorFrom into a JSLError of kind
// HostError (Type kept under details "hostType"), which `try` can catch.
// No `{__jsl_host_error__: ...}` object is built, and a handler's
// successful result is passed back unchanged whatever its shape.
type HostError struct {
	Type    string
	Message string
	Details any
}

// Error implements the error interface.
func (e *HostError) Error() string { return fmt.Sprintf("%s: %s", e.Type, e.Message) }

// Manifest entry describes one registered command for introspection by an
// embedding host (e.g. to publish a capability list to a client). Arity
// uses the same Min/Max-inclusive-with--1-unbounded convention as
// internal/prelude.Arity but is kept as plain ints here to avoid a
// dependency from host on prelude.
type ManifestEntry struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	MinArgs     int    `yaml:"minArgs" json:"minArgs"`
	MaxArgs     int    `yaml:"maxArgs" json:"maxArgs"` // -1 = unbounded
}

// Dispatcher is a registry of Handlers keyed by command id. It is safe for
// concurrent Register calls and concurrent Dispatch calls (the core itself
// is single-threaded per evaluation per §5, but nothing stops an embedding
// host from running independent evaluations concurrently, each dispatching
// through a shared Dispatcher).
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	manifest map[string]ManifestEntry
	log      *slog.Logger
}

// NewDispatcher constructs an empty dispatcher. A nil logger falls back to
// slog.Default(); passing one in lets an embedding host route JHIP audit
// records into its own structured-logging pipeline.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]Handler),
		manifest: make(map[string]ManifestEntry),
		log:      log,
	}
}

// Register binds a Handler to a command id. Re-registering an id replaces
// the previous handler; policy about who may register what is left to the
// embedding host (§4.8 "Policy... is external").
func (d *Dispatcher) Register(id string, entry ManifestEntry, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry.ID = id
	d.handlers[id] = h
	d.manifest[id] = entry
}

// Manifest returns the registered commands sorted by id, suitable for YAML
// or JSON serialization to publish a capability list.
func (d *Dispatcher) Manifest() []ManifestEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ManifestEntry, 0, len(d.manifest))
	for _, e := range d.manifest {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dispatch routes a JHIP request (cmd, args) to its registered Handler. An
// unregistered cmd yields a HostError of type "UnknownCommand" rather than
// a Go panic, since discovering the available command set is itself part
// of the host/core contract (§4.8).
func (d *Dispatcher) Dispatch(ctx context.Context, cmd string, args []value.Value) (value.Value, error) {
	d.mu.RLock()
	h, ok := d.handlers[cmd]
	entry, hasEntry := d.manifest[cmd]
	d.mu.RUnlock()

	if !ok {
		d.log.WarnContext(ctx, "jhip: dispatch to unknown command", "cmd", cmd)
		return value.Null, &HostError{Type: "UnknownCommand", Message: fmt.Sprintf("no host command registered for %q", cmd)}
	}
	if hasEntry && !arityOK(entry, len(args)) {
		return value.Null, &HostError{
			Type:    "ArityError",
			Message: fmt.Sprintf("%s expects between %d and %d argument(s), got %d", cmd, entry.MinArgs, entry.MaxArgs, len(args)),
		}
	}

	d.log.DebugContext(ctx, "jhip: dispatch", "cmd", cmd, "argc", len(args))
	result, err := h(ctx, args)
	if err != nil {
		d.log.WarnContext(ctx, "jhip: handler error", "cmd", cmd, "error", err)
		if he, ok := err.(*HostError); ok {
			return value.Null, he
		}
		return value.Null, &HostError{Type: "HandlerError", Message: err.Error()}
	}
	return result, nil
}

func arityOK(e ManifestEntry, n int) bool {
	if n < e.MinArgs {
		return false
	}
	if e.MaxArgs == -1 {
		return true
	}
	return n <= e.MaxArgs
}
