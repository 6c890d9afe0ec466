// Package serialize implements the content-addressable serializer (§4.5):
// a plain-JSON fast path for closure/environment-free values, and a
// hash-addressed object-graph encoding for everything else, so that
// closures (and the environments they capture) survive a Serialize/
// Deserialize round trip with sharing and cycles intact.
package serialize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

// CASVersion is the `__cas_version__` tag of the wire envelope.
const CASVersion = 1

// Envelope is the CAS-path wire shape: a root (value or `{__ref__: hash}`)
// plus the flat object table every reference resolves against.
type Envelope struct {
	Version int                       `json:"__cas_version__"`
	Root    json.RawMessage           `json:"root"`
	Objects map[string]json.RawMessage `json:"objects"`
}

type ref struct {
	Hash string `json:"__ref__"`
}

// builder accumulates canonicalized objects keyed by content hash while
// walking a Value graph, so that identical sub-graphs (the same closure
// captured twice, a shared parent environment) collapse to one entry —
// "cycles are naturally handled because references are by hash, not
// pointer" (§4.5).
type builder struct {
	objects map[string]json.RawMessage
}

// Serialize encodes v per §4.5: the simple direct-JSON path when v's
// transitive contents hold no closure or environment, otherwise the CAS
// envelope.
func Serialize(v value.Value) ([]byte, error) {
	if !value.ContainsClosureOrEnv(v) {
		return json.Marshal(v)
	}
	b := &builder{objects: make(map[string]json.RawMessage)}
	rootRaw, err := b.encode(v)
	if err != nil {
		return nil, err
	}
	env := Envelope{Version: CASVersion, Root: rootRaw, Objects: b.objects}
	return json.Marshal(env)
}

// encode canonicalizes v, hash-addressing any closure or environment it
// reaches and inlining everything else directly.
func (b *builder) encode(v value.Value) (json.RawMessage, error) {
	switch v.Kind() {
	case value.KindClosure:
		return b.encodeClosure(v.AsClosure())
	case value.KindList:
		elems := v.AsList()
		out := make([]json.RawMessage, len(elems))
		for i, e := range elems {
			r, err := b.encode(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return json.Marshal(out)
	case value.KindObject:
		keys := v.ObjectKeys()
		sorted := append([]string{}, keys...)
		sort.Strings(sorted)
		out := make(map[string]json.RawMessage, len(sorted))
		for _, k := range sorted {
			fv, _ := v.ObjectGet(k)
			r, err := b.encode(fv)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return json.Marshal(out)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
}

// encodeClosure registers {__type__: "closure", params, body, env: <ref>}
// under its content hash and returns a reference to it. Builtins (boxed
// as a Closure whose Env holds a *prelude.Builtin) are never serialized:
// per §4.5 "Prelude non-serialization", they re-bind from the local
// prelude on deserialize, so a builtin encodes as nothing more than its
// own name, resolved back to the live builtin table on the other side.
func (b *builder) encodeClosure(c *value.Closure) (json.RawMessage, error) {
	if _, isBuiltin := c.Env.(*prelude.Builtin); isBuiltin {
		obj := map[string]any{"__type__": "builtin", "name": c.Name}
		return b.intern(obj)
	}
	bodyRaw, err := b.encode(c.Body)
	if err != nil {
		return nil, err
	}
	var envRef json.RawMessage
	if parent, ok := c.Env.(*env.Environment); ok && parent != nil {
		envRef, err = b.encodeEnv(parent)
		if err != nil {
			return nil, err
		}
	} else {
		envRef, _ = json.Marshal(nil)
	}
	obj := map[string]json.RawMessage{
		"__type__": mustMarshal("closure"),
		"params":   mustMarshal(c.Params),
		"name":     mustMarshal(c.Name),
		"body":     bodyRaw,
		"env":      envRef,
	}
	return b.internRaw(obj)
}

// encodeEnv registers {__type__: "env", bindings: {...}, parent: <ref>}
// for every ancestor up to (but not including) the prelude root, which is
// never emitted (§4.5 "Prelude non-serialization"): the deserializer
// re-attaches the caller's local prelude as the final ancestor instead.
func (b *builder) encodeEnv(e *env.Environment) (json.RawMessage, error) {
	if e == nil || isPreludeRoot(e) {
		return json.RawMessage("null"), nil
	}
	bindings := make(map[string]json.RawMessage)
	e.Range(func(name string, v value.Value) bool {
		r, err := b.encode(v)
		if err != nil {
			return false
		}
		bindings[name] = r
		return true
	})
	var parentRef json.RawMessage
	var err error
	parentRef, err = b.encodeEnv(e.Parent())
	if err != nil {
		return nil, err
	}
	obj := map[string]json.RawMessage{
		"__type__": mustMarshal("env"),
		"bindings": mustMarshal(bindings),
		"parent":   parentRef,
	}
	return b.internRaw(obj)
}

// isPreludeRoot reports whether e is the frozen root environment: the
// immutable prelude is never itself part of any user program's
// serialized state (§3 invariant: it is "constructed once, frozen, and
// never rebound"), so any environment chain reaching it stops there.
func isPreludeRoot(e *env.Environment) bool {
	return e.Parent() == nil && e.Frozen()
}

func (b *builder) intern(obj map[string]any) (json.RawMessage, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return b.internRaw(rawFields(raw))
}

func (b *builder) internRaw(fields map[string]json.RawMessage) (json.RawMessage, error) {
	canon, err := canonicalize(fields)
	if err != nil {
		return nil, err
	}
	h := contentHash(canon)
	if _, exists := b.objects[h]; !exists {
		b.objects[h] = canon
	}
	return json.Marshal(ref{Hash: h})
}

func rawFields(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	_ = json.Unmarshal(raw, &m)
	return m
}

// canonicalize renders fields as JSON with keys in sorted order, the
// deterministic form the content hash is computed over (§4.5 "keys
// sorted, references inlined as hash strings").
func canonicalize(fields map[string]json.RawMessage) (json.RawMessage, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf []byte
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kj, _ := json.Marshal(k)
		buf = append(buf, kj...)
		buf = append(buf, ':')
		buf = append(buf, fields[k]...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// contentHash hashes canon with stdlib crypto/sha256. No pack example
// library targets content-hashing (gjson/sjson are JSON-path tools,
// go-yaml a config format, go-snaps a test harness); sha256 is the
// standard, dependency-free choice for this concern, noted in DESIGN.md.
func contentHash(canon json.RawMessage) string {
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

// Deserialize reverses Serialize. prelude is the live root environment
// every deserialized environment chain is re-attached to in place of
// whatever prelude reference the original program had (§4.5 "Prelude
// non-serialization").
func Deserialize(data []byte, preludeRoot *env.Environment) (value.Value, error) {
	var probe struct {
		Version int `json:"__cas_version__"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Version != 0 {
		var env_ Envelope
		if err := json.Unmarshal(data, &env_); err != nil {
			return value.Value{}, err
		}
		d := &decoder{objects: env_.Objects, resolved: make(map[string]value.Value), preludeRoot: preludeRoot}
		return d.decode(env_.Root)
	}
	return value.ParseJSON(data)
}

type decoder struct {
	objects     map[string]json.RawMessage
	resolved    map[string]value.Value
	resolvedEnv map[string]*env.Environment
	preludeRoot *env.Environment
}

func (d *decoder) decode(raw json.RawMessage) (value.Value, error) {
	var r ref
	if err := json.Unmarshal(raw, &r); err == nil && r.Hash != "" {
		return d.resolveObject(r.Hash)
	}
	return value.ParseJSON(raw)
}

func (d *decoder) resolveObject(hash string) (value.Value, error) {
	if v, ok := d.resolved[hash]; ok {
		return v, nil
	}
	raw, ok := d.objects[hash]
	if !ok {
		return value.Value{}, fmt.Errorf("serialize: dangling reference %q", hash)
	}
	var tag struct {
		Type string `json:"__type__"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return value.Value{}, err
	}
	switch tag.Type {
	case "builtin":
		var b struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return value.Value{}, err
		}
		v, err := d.preludeRoot.Lookup(b.Name)
		if err != nil {
			return value.Value{}, fmt.Errorf("serialize: unknown builtin %q", b.Name)
		}
		d.resolved[hash] = v
		return v, nil
	case "closure":
		var c struct {
			Params []string        `json:"params"`
			Name   string          `json:"name"`
			Body   json.RawMessage `json:"body"`
			Env    json.RawMessage `json:"env"`
		}
		if err := json.Unmarshal(raw, &c); err != nil {
			return value.Value{}, err
		}
		bodyVal, err := d.decode(c.Body)
		if err != nil {
			return value.Value{}, err
		}
		capturedEnv, err := d.decodeEnvRef(c.Env)
		if err != nil {
			return value.Value{}, err
		}
		v := value.ClosureValue(&value.Closure{Params: c.Params, Name: c.Name, Body: bodyVal, Env: capturedEnv})
		d.resolved[hash] = v
		return v, nil
	default:
		return value.Value{}, fmt.Errorf("serialize: unknown object type %q", tag.Type)
	}
}

func (d *decoder) decodeEnvRef(raw json.RawMessage) (*env.Environment, error) {
	if d.resolvedEnv == nil {
		d.resolvedEnv = make(map[string]*env.Environment)
	}
	if string(raw) == "null" || len(raw) == 0 {
		return d.preludeRoot, nil
	}
	var r ref
	if err := json.Unmarshal(raw, &r); err != nil || r.Hash == "" {
		return d.preludeRoot, nil
	}
	if e, ok := d.resolvedEnv[r.Hash]; ok {
		return e, nil
	}
	envRaw, ok := d.objects[r.Hash]
	if !ok {
		return nil, fmt.Errorf("serialize: dangling environment reference %q", r.Hash)
	}
	var rec struct {
		Bindings map[string]json.RawMessage `json:"bindings"`
		Parent   json.RawMessage            `json:"parent"`
	}
	if err := json.Unmarshal(envRaw, &rec); err != nil {
		return nil, err
	}
	parent, err := d.decodeEnvRef(rec.Parent)
	if err != nil {
		return nil, err
	}
	bindings := make(map[string]value.Value, len(rec.Bindings))
	for name, fr := range rec.Bindings {
		v, err := d.decode(fr)
		if err != nil {
			return nil, err
		}
		bindings[name] = v
	}
	child := parent.ExtendWith(bindings)
	d.resolvedEnv[r.Hash] = child
	return child, nil
}
