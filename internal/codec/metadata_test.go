package codec

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMetaFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oracle.meta.wasm")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMetadata(t *testing.T) {
	content := append(append([]byte{}, wasmMagic...), []byte("\x01\x00\x00\x00...UpdateValue...RequestValue")...)
	meta, err := LoadMetadata(writeMetaFile(t, content))
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}

	if err := meta.EnsureAction("UpdateValue"); err != nil {
		t.Errorf("EnsureAction(UpdateValue) error = %v", err)
	}
	if err := meta.EnsureAction("SetRandomValue"); err == nil {
		t.Error("EnsureAction(SetRandomValue) should fail for the value oracle module")
	}
}

func TestLoadMetadata_NotWasm(t *testing.T) {
	if _, err := LoadMetadata(writeMetaFile(t, []byte("{}"))); err == nil {
		t.Error("LoadMetadata() should reject non-wasm content")
	}
}

func TestLoadMetadata_Missing(t *testing.T) {
	if _, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.wasm")); err == nil {
		t.Error("LoadMetadata() should fail for a missing file")
	}
}
