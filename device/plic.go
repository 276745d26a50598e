package device

import (
	"iter"
	"math/bits"

	"github.com/ezrec/rvemu/internal"
)

const (
	PLIC_SOURCES = 32 // Maximum number of interrupt sources.

	PLIC_REG_CLAIM = uint32(0x004) // Claim (read) and complete (write).
)

var _plic_defines = map[string]uint32{
	"PLIC_CLAIM":   PLIC_REG_CLAIM,
	"PLIC_SOURCES": PLIC_SOURCES,
}

// Plic is an interrupt aggregator. It collects up to 32 level triggered
// source lines, numbered from 1, and drives one output line.
//
// The output is asserted while any source is pending and not yet claimed.
// All sources share one priority; the lowest numbered source is claimed
// first.
type Plic struct {
	Region

	sources [PLIC_SOURCES]Device
	pending uint32
	served  uint32
}

var (
	_ Device        = (*Plic)(nil)
	_ InterruptSink = (*Plic)(nil)
)

// NewPlic creates an interrupt aggregator occupying [base, top].
func NewPlic(name string, base, top uint32) (plic *Plic) {
	plic = &Plic{
		Region: MakeRegion(name, base, top),
	}

	return
}

// Defines returns an iterator over the aggregator register symbols.
func (plic *Plic) Defines() iter.Seq2[string, string] {
	return internal.HexDefines(_plic_defines)
}

// Attach wires the output line of a device to an aggregator source.
func (plic *Plic) Attach(dev Device, source uint32) (err error) {
	if source < 1 || source > PLIC_SOURCES {
		err = ErrSourceInvalid
		return
	}

	if plic.sources[source-1] != nil {
		err = ErrSourceBusy
		return
	}

	plic.sources[source-1] = dev
	dev.ConnectInterrupt(source, plic)

	return
}

// Source returns the device attached to a source number.
func (plic *Plic) Source(source uint32) (dev Device, ok bool) {
	if source < 1 || source > PLIC_SOURCES {
		return
	}

	dev = plic.sources[source-1]
	ok = dev != nil
	return
}

// Reset clears the pending and served state.
func (plic *Plic) Reset() {
	plic.pending = 0
	plic.served = 0
	plic.check()
}

// SetInterrupt is called by attached devices to set a source level.
func (plic *Plic) SetInterrupt(source uint32, level bool) {
	if source < 1 || source > PLIC_SOURCES {
		return
	}

	mask := uint32(1) << (source - 1)
	if level {
		plic.pending |= mask
	} else {
		plic.pending &^= mask
	}

	plic.check()
}

// Pending returns the pending source bitmask; bit 0 is source 1.
func (plic *Plic) Pending() uint32 { return plic.pending }

// Served returns the claimed source bitmask; bit 0 is source 1.
func (plic *Plic) Served() uint32 { return plic.served }

// check recomputes the aggregate output line.
func (plic *Plic) check() {
	plic.SignalInterrupt((plic.pending & ^plic.served) != 0)
}

// ReadU32 reads an aggregator register. Reading the claim register returns
// the lowest pending unclaimed source, and marks it claimed.
func (plic *Plic) ReadU32(reg uint32) (value uint32, ok bool) {
	switch reg {
	case PLIC_REG_CLAIM:
		mask := plic.pending & ^plic.served
		if mask != 0 {
			n := uint32(bits.TrailingZeros32(mask))
			plic.served |= 1 << n
			plic.check()
			value = n + 1
		}
	default:
		value = 0
	}

	return value, true
}

// WriteU32 writes an aggregator register. Writing a claimed source number
// to the claim register completes it.
func (plic *Plic) WriteU32(reg uint32, value uint32) (ok bool) {
	switch reg {
	case PLIC_REG_CLAIM:
		value--
		if value < PLIC_SOURCES {
			plic.served &^= 1 << value
			plic.check()
		}
	default:
		// ignored
	}

	return true
}
