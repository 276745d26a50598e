package cpu

import (
	"log"

	"github.com/ezrec/rvemu/memory"
)

// raise records a pending trap. The trap is taken when the current
// instruction is abandoned.
func (cpu *Cpu) raise(cause Exception, tval uint32) {
	cpu.trapped = true
	cpu.cause = cause
	cpu.tval = tval
}

// raiseIllegal records an illegal instruction trap for insn.
func (cpu *Cpu) raiseIllegal(insn uint32) {
	cpu.raise(EXC_ILLEGAL_INSTRUCTION, insn)
}

// raiseMemory records the access fault reported by the address space.
func (cpu *Cpu) raiseMemory() {
	addr, kind := cpu.Memory.Fault()

	switch kind {
	case memory.FAULT_INSTRUCTION:
		cpu.raise(EXC_INSTRUCTION_FAULT, addr)
	case memory.FAULT_STORE:
		cpu.raise(EXC_STORE_FAULT, addr)
	default:
		cpu.raise(EXC_LOAD_FAULT, addr)
	}
}

// enterTrap transfers control to the machine mode trap vector.
func (cpu *Cpu) enterTrap() {
	if cpu.Verbose {
		log.Print(f("cpu: trap %v at 0x%08x, tval 0x%08x", cpu.cause, cpu.Pc, cpu.tval))
	}

	cpu.mcause = uint32(cpu.cause)
	cpu.mtval = cpu.tval
	cpu.mepc = cpu.Pc

	// Save the interrupt enable of the current mode.
	ie := (cpu.mstatus >> uint32(cpu.priv)) & 1
	cpu.mstatus = (cpu.mstatus &^ MSTATUS_MPIE) | (ie << MSTATUS_MPIE_SHIFT)
	cpu.mstatus = (cpu.mstatus &^ MSTATUS_MPP_MASK) | (uint32(cpu.priv) << MSTATUS_MPP_SHIFT)
	cpu.mstatus &^= MSTATUS_MIE

	cpu.priv = PRIV_MACHINE
	cpu.Pc = cpu.mtvec

	cpu.trapped = false
}

// mret returns from a machine mode trap handler.
func (cpu *Cpu) mret() {
	mpp := (cpu.mstatus & MSTATUS_MPP_MASK) >> MSTATUS_MPP_SHIFT
	mpie := (cpu.mstatus & MSTATUS_MPIE) >> MSTATUS_MPIE_SHIFT

	cpu.mstatus = (cpu.mstatus &^ (1 << mpp)) | (mpie << mpp)
	cpu.mstatus |= MSTATUS_MPIE
	cpu.mstatus &^= MSTATUS_MPP_MASK

	cpu.priv = Privilege(mpp)
	cpu.Pc = cpu.mepc

	if cpu.Verbose {
		log.Print(f("cpu: mret to 0x%08x, %v mode", cpu.Pc, cpu.priv))
	}
}
