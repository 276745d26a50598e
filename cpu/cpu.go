package cpu

import (
	"fmt"
	"iter"
	"log"
	"math/bits"
	"strings"

	"github.com/ezrec/rvemu/device"
	"github.com/ezrec/rvemu/internal"
	"github.com/ezrec/rvemu/isa"
	"github.com/ezrec/rvemu/memory"
	"github.com/ezrec/rvemu/translate"
)

var f = translate.From

// Privilege is a hart privilege level.
type Privilege uint32

//go:generate go tool stringer -linecomment -type=Privilege
const (
	PRIV_USER       = Privilege(0) // user
	PRIV_SUPERVISOR = Privilege(1) // supervisor
	PRIV_MACHINE    = Privilege(3) // machine
)

// Exception is a trap cause, as reported in mcause. EXC_INTERRUPT is set
// for asynchronous causes.
type Exception uint32

//go:generate go tool stringer -linecomment -type=Exception
const (
	EXC_INSTRUCTION_MISALIGNED = Exception(0)  // instruction address misaligned
	EXC_INSTRUCTION_FAULT      = Exception(1)  // instruction access fault
	EXC_ILLEGAL_INSTRUCTION    = Exception(2)  // illegal instruction
	EXC_BREAKPOINT             = Exception(3)  // breakpoint
	EXC_LOAD_MISALIGNED        = Exception(4)  // load address misaligned
	EXC_LOAD_FAULT             = Exception(5)  // load access fault
	EXC_STORE_MISALIGNED       = Exception(6)  // store address misaligned
	EXC_STORE_FAULT            = Exception(7)  // store access fault
	EXC_ECALL_U                = Exception(8)  // ecall from user
	EXC_ECALL_S                = Exception(9)  // ecall from supervisor
	EXC_ECALL_M                = Exception(11) // ecall from machine

	EXC_INTERRUPT = Exception(1 << 31) // interrupt
)

// mstatus bits.
const (
	MSTATUS_UIE  = uint32(1 << 0)
	MSTATUS_SIE  = uint32(1 << 1)
	MSTATUS_MIE  = uint32(1 << 3)
	MSTATUS_UPIE = uint32(1 << 4)
	MSTATUS_SPIE = uint32(1 << 5)
	MSTATUS_MPIE = uint32(1 << 7)
	MSTATUS_SPP  = uint32(1 << 8)

	MSTATUS_MPIE_SHIFT = 7
	MSTATUS_MPP_SHIFT  = 11
	MSTATUS_MPP_MASK   = uint32(0b11 << MSTATUS_MPP_SHIFT)

	MSTATUS_WRITE_MASK = MSTATUS_UIE | MSTATUS_SIE | MSTATUS_MIE |
		MSTATUS_UPIE | MSTATUS_SPIE | MSTATUS_MPIE |
		MSTATUS_SPP | MSTATUS_MPP_MASK
)

// Interrupt lines, as bit numbers of mie and mip.
const (
	IRQ_MSI = 3  // Machine software interrupt
	IRQ_MTI = 7  // Machine timer interrupt
	IRQ_MEI = 11 // Machine external interrupt

	MIE_MSIE = uint32(1 << IRQ_MSI)
	MIE_MTIE = uint32(1 << IRQ_MTI)
	MIE_MEIE = uint32(1 << IRQ_MEI)
	MIE_MASK = MIE_MSIE | MIE_MTIE | MIE_MEIE

	MIP_MSIP = MIE_MSIE
	MIP_MTIP = MIE_MTIE
	MIP_MEIP = MIE_MEIE
)

// mcounteren bits.
const (
	MCOUNTEREN_CY   = uint32(1 << 0)
	MCOUNTEREN_TM   = uint32(1 << 1)
	MCOUNTEREN_IR   = uint32(1 << 2)
	MCOUNTEREN_MASK = MCOUNTEREN_CY | MCOUNTEREN_TM | MCOUNTEREN_IR
)

const (
	RESET_VECTOR = uint32(0x1000)     // Program counter after reset.
	MISA_RV32IMA = uint32(0x40001101) // MXL=32, I, M, A
)

var _cpu_defines = map[string]uint32{
	"RESET_VECTOR":     RESET_VECTOR,
	"MSTATUS_MIE":      MSTATUS_MIE,
	"MSTATUS_MPIE":     MSTATUS_MPIE,
	"MSTATUS_MPP":      MSTATUS_MPP_MASK,
	"MIE_MSIE":         MIE_MSIE,
	"MIE_MTIE":         MIE_MTIE,
	"MIE_MEIE":         MIE_MEIE,
	"MIP_MEIP":         MIP_MEIP,
	"MCOUNTEREN_CY":    MCOUNTEREN_CY,
	"MCOUNTEREN_TM":    MCOUNTEREN_TM,
	"MCOUNTEREN_IR":    MCOUNTEREN_IR,
	"MCAUSE_INTERRUPT": uint32(EXC_INTERRUPT),
	"MCAUSE_MEI":       uint32(EXC_INTERRUPT) | IRQ_MEI,
	"EXC_ILLEGAL":      uint32(EXC_ILLEGAL_INSTRUCTION),
	"EXC_BREAKPOINT":   uint32(EXC_BREAKPOINT),
	"EXC_LOAD_FAULT":   uint32(EXC_LOAD_FAULT),
	"EXC_STORE_FAULT":  uint32(EXC_STORE_FAULT),
	"EXC_ECALL_U":      uint32(EXC_ECALL_U),
	"EXC_ECALL_M":      uint32(EXC_ECALL_M),
}

// Cpu is the simulation context of a single RV32IMA hart.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory *memory.Memory // Address space for fetches, loads and stores.

	Pc      uint32 // Current program counter.
	Cycle   uint64 // Cycle counter; one cycle per retired instruction.
	Instret uint64 // Retired instruction counter.

	reg  [32]uint32
	priv Privilege

	reservation uint32
	reserved    bool

	trapped bool
	cause   Exception
	tval    uint32

	mstatus    uint32
	mie        uint32
	mip        uint32
	mtvec      uint32
	mcounteren uint32
	mscratch   uint32
	mepc       uint32
	mcause     uint32
	mtval      uint32
}

var _ device.InterruptSink = (*Cpu)(nil)

// NewCpu creates a CPU attached to an address space, in the reset state.
func NewCpu(mem *memory.Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}

	cpu.Reset()

	return
}

// Defines returns an iterator over the CPU symbols.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.HexDefines(_cpu_defines)
}

// Reset the CPU state.
//   - Clears the registers, counters and reservation.
//   - Clears the CSR bank, so traps vector to address 0.
//   - Enters machine mode at the reset vector.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Print(f("cpu: reset"))
	}

	clear(cpu.reg[:])
	cpu.Pc = RESET_VECTOR
	cpu.priv = PRIV_MACHINE
	cpu.Cycle = 0
	cpu.Instret = 0

	cpu.reservation = 0
	cpu.reserved = false

	cpu.trapped = false
	cpu.cause = 0
	cpu.tval = 0

	cpu.mstatus = 0
	cpu.mie = 0
	cpu.mip = 0
	cpu.mtvec = 0
	cpu.mcounteren = 0
	cpu.mscratch = 0
	cpu.mepc = 0
	cpu.mcause = 0
	cpu.mtval = 0
}

// Register returns the value of a general purpose register.
func (cpu *Cpu) Register(n uint32) uint32 {
	return cpu.reg[n&31]
}

// SetRegister sets a general purpose register. Writes to x0 are discarded.
func (cpu *Cpu) SetRegister(n uint32, value uint32) {
	cpu.setReg(n&31, value)
}

func (cpu *Cpu) setReg(rd uint32, value uint32) {
	if rd != 0 {
		cpu.reg[rd] = value
	}
}

// Privilege returns the current privilege level.
func (cpu *Cpu) Privilege() Privilege {
	return cpu.priv
}

// Reservation returns the LR/SC reservation address, if one is held.
func (cpu *Cpu) Reservation() (addr uint32, ok bool) {
	return cpu.reservation, cpu.reserved
}

// SetInterrupt sets the level of a mip interrupt line.
func (cpu *Cpu) SetInterrupt(line uint32, level bool) {
	if line >= 32 {
		return
	}

	if level {
		cpu.mip |= 1 << line
	} else {
		cpu.mip &^= 1 << line
	}
}

// Run executes up to cycles instructions, returning the count retired.
//
// Interrupts enabled in mie and pending in mip are taken before any
// instruction executes, if mstatus.MIE is set. A trap ends the batch
// with the program counter at the trap vector.
func (cpu *Cpu) Run(cycles int) (retired int) {
	if pending := cpu.mie & cpu.mip; pending != 0 && (cpu.mstatus&MSTATUS_MIE) != 0 {
		cpu.raise(EXC_INTERRUPT|Exception(bits.TrailingZeros32(pending)), 0)
	}

	var insn [1]uint32
	for !cpu.trapped && retired < cycles {
		if !cpu.Memory.Prefetch(cpu.Pc, insn[:]) {
			cpu.raiseMemory()
			break
		}

		cpu.execute(insn[0])
		if cpu.trapped {
			break
		}

		retired++
		cpu.Cycle++
		cpu.Instret++
	}

	if cpu.trapped {
		cpu.enterTrap()
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	var text strings.Builder

	fmt.Fprintf(&text, "% 8s: %08x %v\n", "pc", cpu.Pc, cpu.priv)
	for n := range 32 {
		fmt.Fprintf(&text, "% 4s/x%-2d: %08x", isa.RegisterNames[n], n, cpu.reg[n])
		if n%4 == 3 {
			text.WriteString("\n")
		} else {
			text.WriteString("  ")
		}
	}

	csrs := []isa.Csr{isa.CSR_MSTATUS, isa.CSR_MIE, isa.CSR_MIP, isa.CSR_MTVEC,
		isa.CSR_MEPC, isa.CSR_MCAUSE, isa.CSR_MTVAL, isa.CSR_MSCRATCH}
	for n, csr := range csrs {
		value, _ := cpu.Csr(csr)
		fmt.Fprintf(&text, "% 8s: %08x", csr, value)
		if n%4 == 3 {
			text.WriteString("\n")
		} else {
			text.WriteString("  ")
		}
	}

	return text.String()
}
