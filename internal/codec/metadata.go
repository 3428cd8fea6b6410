package codec

import (
	"bytes"
	"fmt"
	"os"
)

// wasmMagic is the leading magic of a compiled metadata module.
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// Metadata is the program's compiled interface description. The feeder
// treats it as a serialization contract to validate against at startup, not
// as a runtime dispatch mechanism: the action layouts are fixed at compile
// time and checked against the registry names embedded in the module.
type Metadata struct {
	path string
	raw  []byte
}

// LoadMetadata reads and sanity-checks a compiled metadata module file.
func LoadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata module: %w", err)
	}
	if len(raw) < len(wasmMagic) || !bytes.Equal(raw[:len(wasmMagic)], wasmMagic) {
		return nil, fmt.Errorf("metadata module %s: not a wasm binary", path)
	}
	return &Metadata{path: path, raw: raw}, nil
}

// Path returns the file the metadata was loaded from.
func (m *Metadata) Path() string { return m.path }

// EnsureAction verifies the module's type registry declares the named
// action variant. The registry embeds variant names as plain strings.
func (m *Metadata) EnsureAction(name string) error {
	if !bytes.Contains(m.raw, []byte(name)) {
		return fmt.Errorf("metadata module %s: action %q not declared", m.path, name)
	}
	return nil
}
