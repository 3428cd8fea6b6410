package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		NodeRPCURL:   "http://127.0.0.1:9933",
		NodeWSURL:    "ws://127.0.0.1:9944",
		ProgramID:    "0xabc",
		MetadataPath: "oracle.meta.wasm",
		KeyfilePath:  "feeder-key.json",
		Variant:      VariantValue,
		ValueBound:   10_000_000_000_000,
		BeaconURL:    "https://drand.cloudflare.com",
		PollInterval: 30 * time.Second,
		Workers:      4,
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingProgram(t *testing.T) {
	cfg := validConfig()
	cfg.ProgramID = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_MissingKeyfile(t *testing.T) {
	cfg := validConfig()
	cfg.KeyfilePath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_ZeroBound(t *testing.T) {
	cfg := validConfig()
	cfg.ValueBound = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RandomnessVariant(t *testing.T) {
	cfg := validConfig()
	cfg.Variant = VariantRandomness
	require.NoError(t, cfg.Validate())

	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_UnknownVariant(t *testing.T) {
	cfg := validConfig()
	cfg.Variant = "both"
	assert.Error(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ORACLE_PROGRAM_ID", "0xfeed")
	t.Setenv("ORACLE_META_PATH", "oracle.meta.wasm")
	t.Setenv("KEYFILE_PATH", "key.json")
	t.Setenv("FEEDER_VARIANT", "value")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", cfg.ProgramID)
	assert.Equal(t, VariantValue, cfg.Variant)
	assert.Equal(t, uint64(10_000_000_000_000), cfg.ValueBound)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
}
