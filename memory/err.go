package memory

import (
	"errors"

	"github.com/ezrec/rvemu/translate"
)

var f = translate.From

var (
	ErrRamSize         = errors.New(f("ram size exceeds device region base"))
	ErrLoadRange       = errors.New(f("load outside of ram"))
	ErrNotDeviceRegion = errors.New(f("device base below device region"))
	ErrSlotBusy        = errors.New(f("device slot already in use"))
)
