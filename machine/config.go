package machine

import (
	"errors"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/rvemu/cpu"
	"github.com/ezrec/rvemu/memory"
)

const (
	RAM_SIZE_DEFAULT = uint32(16 << 20) // 16 MiB
	BATCH_DEFAULT    = 5000             // Cycles per Tick()
)

// Config is the machine configuration.
type Config struct {
	RamSize     uint32 `toml:"ram_size"`     // Bytes of RAM at address 0.
	Batch       int    `toml:"batch"`        // Cycle budget of each Tick().
	LoadAddress uint32 `toml:"load_address"` // Binary load and reset address.
	Verbose     bool   `toml:"verbose"`      // Verbose logging.
}

// DefaultConfig returns the default machine configuration.
func DefaultConfig() Config {
	return Config{
		RamSize:     RAM_SIZE_DEFAULT,
		Batch:       BATCH_DEFAULT,
		LoadAddress: cpu.RESET_VECTOR,
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (cfg Config, err error) {
	cfg = DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return
	}

	var errs []error
	for _, key := range md.Undecoded() {
		errs = append(errs, &ErrConfig{Key: key.String(), Err: ErrConfigKey})
	}
	errs = append(errs, cfg.Validate())

	err = errors.Join(errs...)

	return
}

// Validate checks the configuration for consistency.
func (cfg *Config) Validate() (err error) {
	var errs []error

	if cfg.RamSize == 0 || uint64(cfg.RamSize) > memory.RAM_SIZE_MAX {
		errs = append(errs, &ErrConfig{Key: "ram_size", Err: ErrRamSize})
	}

	if cfg.Batch <= 0 {
		errs = append(errs, &ErrConfig{Key: "batch", Err: ErrBatch})
	}

	if cfg.LoadAddress&3 != 0 || cfg.LoadAddress >= cfg.RamSize {
		errs = append(errs, &ErrConfig{Key: "load_address", Err: ErrLoadAddress})
	}

	return errors.Join(errs...)
}
