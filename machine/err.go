package machine

import (
	"errors"

	"github.com/ezrec/rvemu/translate"
)

var f = translate.From

var (
	ErrRamSize     = errors.New(f("ram size invalid"))
	ErrBatch       = errors.New(f("batch size must be positive"))
	ErrLoadAddress = errors.New(f("load address outside of ram"))
	ErrConfigKey   = errors.New(f("configuration key unknown"))
)

// ErrConfig indicates the configuration key in error.
type ErrConfig struct {
	Key string
	Err error
}

func (err *ErrConfig) Error() string {
	return f("config %v: %v", err.Key, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
