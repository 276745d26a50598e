// Package memory implements the unified address space of the rvemu machine:
// a RAM region starting at address zero, and a device region at the top of
// the address space sliced into 16 slots of 16MiB, one device per slot.
package memory

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"

	"github.com/ezrec/rvemu/device"
)

const (
	DEVICE_BASE  = uint32(0xC000_0000) // Lowest address of the device region.
	DEVICE_SLOTS = 16                  // Number of device slots.
	SLOT_SHIFT   = 24                  // Address bit selecting the slot.
	SLOT_MASK    = uint32(0xF)         // Slot number mask, after shift.
	REG_MASK     = uint32(0xFF_FFFF)   // Register number within a slot.
	SLOT_SIZE    = REG_MASK + 1        // Size of a device slot.

	RAM_SIZE_MAX = uint64(DEVICE_BASE) // Largest permitted RAM size.
)

// FaultKind classifies a failed memory access. Stores include the write
// half of an atomic.
type FaultKind int

//go:generate go tool stringer -linecomment -type=FaultKind
const (
	FAULT_NONE        = FaultKind(iota) // none
	FAULT_INSTRUCTION                   // instruction
	FAULT_LOAD                          // load
	FAULT_STORE                         // store
)

// Memory is the address space seen by the CPU.
type Memory struct {
	Verbose bool // Set to enable verbose logging.

	ram     []byte
	devices [DEVICE_SLOTS]device.Device

	faultAddr uint32
	faultKind FaultKind
}

// NewMemory creates an address space with size bytes of RAM.
func NewMemory(size uint32) (mem *Memory, err error) {
	if uint64(size) > RAM_SIZE_MAX {
		err = ErrRamSize
		return
	}

	mem = &Memory{
		ram: make([]byte, size),
	}

	return
}

// Size returns the RAM size in bytes.
func (mem *Memory) Size() uint32 {
	return uint32(len(mem.ram))
}

// Attach places a device in the slot selected by its base address.
func (mem *Memory) Attach(dev device.Device) (err error) {
	base := dev.Base()
	if base < DEVICE_BASE {
		err = fmt.Errorf("%w: %v 0x%08x", ErrNotDeviceRegion, dev.Name(), base)
		return
	}

	slot := (base >> SLOT_SHIFT) & SLOT_MASK
	if mem.devices[slot] != nil {
		err = fmt.Errorf("%w: %v slot %d", ErrSlotBusy, dev.Name(), slot)
		return
	}

	mem.devices[slot] = dev

	if mem.Verbose {
		log.Print(f("memory: attach %v slot %d [0x%08x, 0x%08x]", dev.Name(), slot, base, dev.Top()))
	}

	return
}

// Device returns the device attached in a slot, or nil.
func (mem *Memory) Device(slot int) device.Device {
	if slot < 0 || slot >= len(mem.devices) {
		return nil
	}
	return mem.devices[slot]
}

// Devices returns all attached devices, in slot order.
func (mem *Memory) Devices() (devs []device.Device) {
	for _, dev := range mem.devices {
		if dev != nil {
			devs = append(devs, dev)
		}
	}
	return
}

// Fault returns the address and kind of the most recent failed access.
func (mem *Memory) Fault() (addr uint32, kind FaultKind) {
	return mem.faultAddr, mem.faultKind
}

func (mem *Memory) fault(addr uint32, kind FaultKind) {
	mem.faultAddr = addr
	mem.faultKind = kind
}

// inRam returns true if the span [addr, addr+width) lies entirely in RAM.
func (mem *Memory) inRam(addr uint32, width uint32) bool {
	return uint64(addr)+uint64(width) <= uint64(len(mem.ram))
}

// slot returns the device and register number for a device region span.
func (mem *Memory) slot(addr uint32, width uint32) (dev device.Device, reg uint32, ok bool) {
	if addr < DEVICE_BASE {
		return
	}

	reg = addr & REG_MASK
	if reg+width > SLOT_SIZE {
		return
	}

	dev = mem.devices[(addr>>SLOT_SHIFT)&SLOT_MASK]
	ok = dev != nil
	return
}

// Read8 loads a byte.
func (mem *Memory) Read8(addr uint32) (value uint8, ok bool) {
	if mem.inRam(addr, 1) {
		return mem.ram[addr], true
	}

	if dev, reg, found := mem.slot(addr, 1); found {
		value, ok = dev.ReadU8(reg)
	}

	if !ok {
		mem.fault(addr, FAULT_LOAD)
	}

	return
}

// Read16 loads a little-endian half word. Unaligned RAM accesses are permitted.
func (mem *Memory) Read16(addr uint32) (value uint16, ok bool) {
	if mem.inRam(addr, 2) {
		return binary.LittleEndian.Uint16(mem.ram[addr:]), true
	}

	if dev, reg, found := mem.slot(addr, 2); found {
		value, ok = dev.ReadU16(reg)
	}

	if !ok {
		mem.fault(addr, FAULT_LOAD)
	}

	return
}

// Read32 loads a little-endian word. Unaligned RAM accesses are permitted.
func (mem *Memory) Read32(addr uint32) (value uint32, ok bool) {
	if mem.inRam(addr, 4) {
		return binary.LittleEndian.Uint32(mem.ram[addr:]), true
	}

	if dev, reg, found := mem.slot(addr, 4); found {
		value, ok = dev.ReadU32(reg)
	}

	if !ok {
		mem.fault(addr, FAULT_LOAD)
	}

	return
}

// Peek32 reads a RAM word for the host. Device addresses are not
// dispatched, and no fault is recorded.
func (mem *Memory) Peek32(addr uint32) (value uint32, ok bool) {
	if !mem.inRam(addr, 4) {
		return
	}

	return binary.LittleEndian.Uint32(mem.ram[addr:]), true
}

// Write8 stores a byte.
func (mem *Memory) Write8(addr uint32, value uint8) (ok bool) {
	if mem.inRam(addr, 1) {
		mem.ram[addr] = value
		return true
	}

	if dev, reg, found := mem.slot(addr, 1); found {
		ok = dev.WriteU8(reg, value)
	}

	if !ok {
		mem.fault(addr, FAULT_STORE)
	}

	return
}

// Write16 stores a little-endian half word.
func (mem *Memory) Write16(addr uint32, value uint16) (ok bool) {
	if mem.inRam(addr, 2) {
		binary.LittleEndian.PutUint16(mem.ram[addr:], value)
		return true
	}

	if dev, reg, found := mem.slot(addr, 2); found {
		ok = dev.WriteU16(reg, value)
	}

	if !ok {
		mem.fault(addr, FAULT_STORE)
	}

	return
}

// Write32 stores a little-endian word.
func (mem *Memory) Write32(addr uint32, value uint32) (ok bool) {
	if mem.inRam(addr, 4) {
		binary.LittleEndian.PutUint32(mem.ram[addr:], value)
		return true
	}

	if dev, reg, found := mem.slot(addr, 4); found {
		ok = dev.WriteU32(reg, value)
	}

	if !ok {
		mem.fault(addr, FAULT_STORE)
	}

	return
}

// Prefetch fills insns with consecutive instruction words starting at addr.
// The whole span must lie in RAM; instructions are never fetched from devices.
func (mem *Memory) Prefetch(addr uint32, insns []uint32) (ok bool) {
	width := uint64(len(insns)) * 4
	if uint64(addr)+width > uint64(len(mem.ram)) {
		mem.fault(addr, FAULT_INSTRUCTION)
		return
	}

	for n := range insns {
		insns[n] = binary.LittleEndian.Uint32(mem.ram[addr+uint32(n*4):])
	}

	return true
}

// Load copies data into RAM at addr.
func (mem *Memory) Load(addr uint32, data []byte) (err error) {
	if !mem.inRam(addr, uint32(len(data))) || uint64(len(data)) > uint64(len(mem.ram)) {
		err = fmt.Errorf("%w: 0x%08x+0x%x", ErrLoadRange, addr, len(data))
		return
	}

	copy(mem.ram[addr:], data)

	if mem.Verbose {
		log.Print(f("memory: load 0x%x bytes at 0x%08x", len(data), addr))
	}

	return
}

// LoadFrom copies an entire image from a reader into RAM at addr.
func (mem *Memory) LoadFrom(addr uint32, r io.Reader) (err error) {
	if addr > mem.Size() {
		err = fmt.Errorf("%w: 0x%08x", ErrLoadRange, addr)
		return
	}

	// Read one byte beyond the available space to detect oversize images.
	limit := int64(mem.Size()-addr) + 1
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return
	}

	err = mem.Load(addr, data)
	return
}

// Dump returns a copy of n bytes of RAM at addr.
func (mem *Memory) Dump(addr uint32, n int) (data []byte, err error) {
	if n < 0 || !mem.inRam(addr, uint32(n)) || uint64(n) > uint64(len(mem.ram)) {
		err = fmt.Errorf("%w: 0x%08x+0x%x", ErrLoadRange, addr, n)
		return
	}

	data = make([]byte, n)
	copy(data, mem.ram[addr:])
	return
}

// Clear zeros all of RAM.
func (mem *Memory) Clear() {
	clear(mem.ram)
}
