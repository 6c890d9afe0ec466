package host

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// manifestDoc is the on-disk shape of a capability manifest: a declarative
// list of command ids an embedding host intends to register, published so
// that a remote client (or a test) can introspect the available command
// set without instantiating Go handler closures.
type manifestDoc struct {
	Commands []ManifestEntry `yaml:"commands"`
}

// ParseManifestYAML decodes a capability manifest from YAML. It does not
// register any handlers itself — an embedding host typically loads the
// manifest to validate that every declared id has a matching Register call
// (see ValidateAgainst) before serving JSL programs.
func ParseManifestYAML(data []byte) ([]ManifestEntry, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("host: parse manifest YAML: %w", err)
	}
	for i := range doc.Commands {
		if doc.Commands[i].MaxArgs == 0 && doc.Commands[i].MinArgs == 0 {
			doc.Commands[i].MaxArgs = -1
		}
	}
	return doc.Commands, nil
}

// ToYAML renders the dispatcher's current manifest as YAML, the inverse of
// ParseManifestYAML, for publishing the live capability set.
func (d *Dispatcher) ToYAML() ([]byte, error) {
	doc := manifestDoc{Commands: d.Manifest()}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("host: render manifest YAML: %w", err)
	}
	return out, nil
}

// ValidateAgainst reports the command ids named in a declarative manifest
// that have no registered Handler, and vice versa — ids registered but
// undeclared. Either list being non-empty signals a drift between the
// host's published capability set and its actual registrations.
func (d *Dispatcher) ValidateAgainst(declared []ManifestEntry) (missing, undeclared []string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	declaredSet := make(map[string]bool, len(declared))
	for _, e := range declared {
		declaredSet[e.ID] = true
		if _, ok := d.handlers[e.ID]; !ok {
			missing = append(missing, e.ID)
		}
	}
	for id := range d.handlers {
		if !declaredSet[id] {
			undeclared = append(undeclared, id)
		}
	}
	return missing, undeclared
}
