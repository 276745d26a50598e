package machine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, text string) (path string) {
	path = filepath.Join(t.TempDir(), "rvemu.toml")
	err := os.WriteFile(path, []byte(text), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, `
ram_size = 65536
batch = 100
verbose = true
`)

	cfg, err := LoadConfig(path)
	assert.NoError(err)
	assert.Equal(uint32(65536), cfg.RamSize)
	assert.Equal(100, cfg.Batch)
	assert.Equal(uint32(0x1000), cfg.LoadAddress)
	assert.True(cfg.Verbose)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, "frob = 1\n")

	_, err := LoadConfig(path)
	assert.ErrorIs(err, ErrConfigKey)

	var cerr *ErrConfig
	if assert.True(errors.As(err, &cerr)) {
		assert.Equal("frob", cerr.Key)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	table := [](struct {
		modify func(cfg *Config)
		key    string
		err    error
	}){
		{func(cfg *Config) { cfg.RamSize = 0 }, "ram_size", ErrRamSize},
		{func(cfg *Config) { cfg.RamSize = 0xC000_0001 }, "ram_size", ErrRamSize},
		{func(cfg *Config) { cfg.Batch = 0 }, "batch", ErrBatch},
		{func(cfg *Config) { cfg.LoadAddress = 0x1002 }, "load_address", ErrLoadAddress},
		{func(cfg *Config) { cfg.LoadAddress = RAM_SIZE_DEFAULT }, "load_address", ErrLoadAddress},
	}

	for _, entry := range table {
		cfg := DefaultConfig()
		entry.modify(&cfg)

		err := cfg.Validate()
		assert.ErrorIs(t, err, entry.err, entry.key)

		var cerr *ErrConfig
		if assert.True(t, errors.As(err, &cerr), entry.key) {
			assert.Equal(t, entry.key, cerr.Key)
		}
	}

	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}
