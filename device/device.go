// Package device provides the memory mapped devices of the rvemu machine.
// It includes the Device capability interface consumed by the memory
// subsystem, a SiFive style UART (Uart), and a PLIC style interrupt
// aggregator (Plic) that funnels device interrupt lines into the CPU.
package device

// InterruptSink receives level changes of an interrupt line.
type InterruptSink interface {
	// SetInterrupt sets the level of an input line.
	SetInterrupt(line uint32, level bool)
}

// Device defines the interface for all memory mapped devices.
// Register numbers are offsets within the 16MiB device slot.
type Device interface {
	// Name returns the device instance name.
	Name() string
	// Base returns the lowest bus address of the device.
	Base() uint32
	// Top returns the highest bus address of the device.
	Top() uint32

	// Reset reinitializes the device registers. Attachments are kept.
	Reset()

	ReadU8(reg uint32) (value uint8, ok bool)
	ReadU16(reg uint32) (value uint16, ok bool)
	ReadU32(reg uint32) (value uint32, ok bool)

	WriteU8(reg uint32, value uint8) (ok bool)
	WriteU16(reg uint32, value uint16) (ok bool)
	WriteU32(reg uint32, value uint32) (ok bool)

	// ConnectInterrupt wires the device output line to a sink.
	ConnectInterrupt(line uint32, sink InterruptSink)
}

// Region is embedded by concrete devices. It carries the bus address range,
// the outward interrupt connection, and unsupported sized accessors that
// the device overrides for the widths it implements.
type Region struct {
	name string
	base uint32
	top  uint32

	sink InterruptSink
	line uint32
}

// MakeRegion creates a named device address range.
func MakeRegion(name string, base, top uint32) Region {
	return Region{name: name, base: base, top: top}
}

func (r *Region) Name() string { return r.name }
func (r *Region) Base() uint32 { return r.base }
func (r *Region) Top() uint32  { return r.top }

// ConnectInterrupt wires the device output line to a sink.
func (r *Region) ConnectInterrupt(line uint32, sink InterruptSink) {
	r.sink = sink
	r.line = line
}

// InterruptLine returns the line number the device drives, if connected.
func (r *Region) InterruptLine() (line uint32, ok bool) {
	return r.line, r.sink != nil
}

// SignalInterrupt drives the connected interrupt line.
func (r *Region) SignalInterrupt(level bool) {
	if r.sink != nil {
		r.sink.SetInterrupt(r.line, level)
	}
}

func (r *Region) ReadU8(reg uint32) (value uint8, ok bool)   { return }
func (r *Region) ReadU16(reg uint32) (value uint16, ok bool) { return }
func (r *Region) ReadU32(reg uint32) (value uint32, ok bool) { return }

func (r *Region) WriteU8(reg uint32, value uint8) (ok bool)   { return }
func (r *Region) WriteU16(reg uint32, value uint16) (ok bool) { return }
func (r *Region) WriteU32(reg uint32, value uint32) (ok bool) { return }
