package device

import (
	"errors"

	"github.com/ezrec/rvemu/translate"
)

var f = translate.From

var (
	// Aggregator errors
	ErrSourceInvalid = errors.New(f("interrupt source out of range"))
	ErrSourceBusy    = errors.New(f("interrupt source already attached"))
)
