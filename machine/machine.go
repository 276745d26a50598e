// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/rvemu/asm"
	"github.com/ezrec/rvemu/cpu"
	"github.com/ezrec/rvemu/device"
	"github.com/ezrec/rvemu/internal"
	"github.com/ezrec/rvemu/isa"
	"github.com/ezrec/rvemu/memory"
)

// Address map of the machine devices.
const (
	PLIC_BASE = uint32(0xC100_0000)
	PLIC_TOP  = uint32(0xC120_0000)

	UART0_BASE   = uint32(0xC200_0000)
	UART0_TOP    = uint32(0xC200_0FFF)
	UART0_SOURCE = uint32(1) // PLIC source of UART0
)

var _machine_defines = map[string]uint32{
	"PLIC_BASE":    PLIC_BASE,
	"UART0_BASE":   UART0_BASE,
	"UART0_SOURCE": UART0_SOURCE,
}

// Machine state. CPU + memory + PLIC + UART, and the host console.
type Machine struct {
	Verbose  bool           // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Memory   *memory.Memory // Address space of the CPU.
	Plic     *device.Plic   // Interrupt aggregator, wired to MEIP.
	Uart     *device.Uart   // UART0, the console.
	Console  Console        // Host side of UART0.
	Program  *asm.Program   // Listing of the loaded program, if assembled.
	config   Config
}

// NewMachine assembles a machine from its configuration.
func NewMachine(cfg Config) (m *Machine, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	mem, err := memory.NewMemory(cfg.RamSize)
	if err != nil {
		return
	}

	m = &Machine{
		Verbose: cfg.Verbose,
		Cpu:     cpu.NewCpu(mem),
		Memory:  mem,
		Plic:    device.NewPlic("plic", PLIC_BASE, PLIC_TOP),
		Uart:    device.NewUart("uart0", UART0_BASE, UART0_TOP),
		config:  cfg,
	}

	for _, dev := range []device.Device{m.Plic, m.Uart} {
		err = mem.Attach(dev)
		if err != nil {
			m = nil
			return
		}
	}

	err = m.Plic.Attach(m.Uart, UART0_SOURCE)
	if err != nil {
		m = nil
		return
	}

	m.Plic.ConnectInterrupt(cpu.IRQ_MEI, m.Cpu)

	m.Reset()

	return
}

// Config returns the machine configuration.
func (m *Machine) Config() Config {
	return m.config
}

// Defines returns an iterator over all of the address map symbols.
func (m *Machine) Defines() iter.Seq2[string, string] {
	sizes := map[string]uint32{
		"RAM_SIZE":     m.Memory.Size(),
		"LOAD_ADDRESS": m.config.LoadAddress,
	}

	return internal.IterSeq2Concat(
		internal.HexDefines(sizes),
		internal.HexDefines(_machine_defines),
		m.Cpu.Defines(),
		m.Plic.Defines(),
		m.Uart.Defines(),
	)
}

// Reset resets the CPU and every device. Memory contents are kept.
func (m *Machine) Reset() {
	m.Cpu.Reset()
	m.Cpu.Pc = m.config.LoadAddress

	for _, dev := range m.Memory.Devices() {
		dev.Reset()
	}

	if m.Verbose {
		log.Print(f("machine: reset, pc 0x%08x", m.Cpu.Pc))
	}
}

// LoadBinary loads a raw image at the load address.
func (m *Machine) LoadBinary(r io.Reader) (err error) {
	err = m.Memory.LoadFrom(m.config.LoadAddress, r)
	if err != nil {
		return
	}

	m.Program = nil

	return
}

// LoadProgram loads an assembled program, and keeps its listing.
func (m *Machine) LoadProgram(prog *asm.Program) (err error) {
	err = m.Memory.Load(prog.Origin, prog.Binary())
	if err != nil {
		return
	}

	m.Program = prog

	return
}

// Assembler returns an assembler predefined with the machine symbols.
func (m *Machine) Assembler() (assembler *asm.Assembler) {
	assembler = &asm.Assembler{Verbose: m.Verbose}
	for key, value := range maps.Collect(m.Defines()) {
		assembler.Predefine(key, value)
	}

	return
}

// LineNo returns the source line number for the program counter,
// or 0 if there is no program listing.
func (m *Machine) LineNo() int {
	if m.Program == nil {
		return 0
	}

	dbg := m.Program.Debug(m.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// insnHalt is 'jal zero, 0', a jump to itself.
const insnHalt = uint32(0x0000006f)

// Halted returns true if the CPU is parked on a jump to itself with
// interrupts disabled, so that nothing can move it.
func (m *Machine) Halted() bool {
	mstatus, _ := m.Cpu.Csr(isa.CSR_MSTATUS)
	if (mstatus & cpu.MSTATUS_MIE) != 0 {
		return false
	}

	insn, ok := m.Memory.Peek32(m.Cpu.Pc)
	return ok && insn == insnHalt
}

// Tick pumps the console, and runs one batch of instructions.
func (m *Machine) Tick() (retired int, err error) {
	m.Cpu.Verbose = m.Verbose

	err = m.Console.Pump(m.Uart)
	if err != nil {
		return
	}

	retired = m.Cpu.Run(m.config.Batch)

	return
}
