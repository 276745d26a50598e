package cpu

import (
	"github.com/ezrec/rvemu/isa"
)

// Csr returns the value of a CSR without privilege checks or side effects.
func (cpu *Cpu) Csr(csr isa.Csr) (value uint32, ok bool) {
	ok = true
	switch csr {
	case isa.CSR_MSTATUS:
		value = cpu.mstatus
	case isa.CSR_MISA:
		value = MISA_RV32IMA
	case isa.CSR_MIE:
		value = cpu.mie
	case isa.CSR_MIP:
		value = cpu.mip
	case isa.CSR_MTVEC:
		value = cpu.mtvec
	case isa.CSR_MCOUNTEREN:
		value = cpu.mcounteren
	case isa.CSR_MSCRATCH:
		value = cpu.mscratch
	case isa.CSR_MEPC:
		value = cpu.mepc
	case isa.CSR_MCAUSE:
		value = cpu.mcause
	case isa.CSR_MTVAL:
		value = cpu.mtval
	case isa.CSR_CYCLE, isa.CSR_TIME:
		value = uint32(cpu.Cycle)
	case isa.CSR_CYCLEH, isa.CSR_TIMEH:
		value = uint32(cpu.Cycle >> 32)
	case isa.CSR_INSTRET:
		value = uint32(cpu.Instret)
	case isa.CSR_INSTRETH:
		value = uint32(cpu.Instret >> 32)
	case isa.CSR_MVENDORID, isa.CSR_MARCHID, isa.CSR_MIMPID, isa.CSR_MHARTID:
		value = 0
	default:
		ok = false
	}

	return
}

// SetCsr writes a CSR as a machine mode csrrw would, without a trap on
// failure. Returns false for read-only or unimplemented CSRs.
func (cpu *Cpu) SetCsr(csr isa.Csr, value uint32) (ok bool) {
	if csr.ReadOnly() {
		return
	}

	return cpu.csrWrite(csr, value)
}

// counterEnable returns the mcounteren bit gating a counter CSR, or 0.
func counterEnable(csr isa.Csr) uint32 {
	switch csr {
	case isa.CSR_CYCLE, isa.CSR_CYCLEH:
		return MCOUNTEREN_CY
	case isa.CSR_TIME, isa.CSR_TIMEH:
		return MCOUNTEREN_TM
	case isa.CSR_INSTRET, isa.CSR_INSTRETH:
		return MCOUNTEREN_IR
	}
	return 0
}

// csrRead reads a CSR for a CSR instruction. write is set if the
// instruction intends to write the CSR afterwards.
func (cpu *Cpu) csrRead(csr isa.Csr, write bool) (value uint32, ok bool) {
	if write && csr.ReadOnly() {
		return
	}

	if uint32(cpu.priv) < csr.Privilege() {
		return
	}

	if gate := counterEnable(csr); gate != 0 && cpu.priv < PRIV_MACHINE {
		if (cpu.mcounteren & gate) == 0 {
			return
		}
	}

	return cpu.Csr(csr)
}

// csrWrite writes a CSR for a CSR instruction.
func (cpu *Cpu) csrWrite(csr isa.Csr, value uint32) (ok bool) {
	switch csr {
	case isa.CSR_MSTATUS:
		// MPP only holds user or machine; other values keep the old MPP.
		switch Privilege((value & MSTATUS_MPP_MASK) >> MSTATUS_MPP_SHIFT) {
		case PRIV_USER, PRIV_MACHINE:
		default:
			value = (value &^ MSTATUS_MPP_MASK) | (cpu.mstatus & MSTATUS_MPP_MASK)
		}
		cpu.mstatus = value & MSTATUS_WRITE_MASK
	case isa.CSR_MISA:
		return false
	case isa.CSR_MIE:
		cpu.mie = value & MIE_MASK
	case isa.CSR_MIP:
		// driven by interrupt lines only
	case isa.CSR_MTVEC:
		cpu.mtvec = value
	case isa.CSR_MCOUNTEREN:
		cpu.mcounteren = value & MCOUNTEREN_MASK
	case isa.CSR_MSCRATCH:
		cpu.mscratch = value
	case isa.CSR_MEPC:
		cpu.mepc = value &^ 1
	case isa.CSR_MCAUSE:
		cpu.mcause = value
	case isa.CSR_MTVAL:
		cpu.mtval = value
	default:
		return false
	}

	return true
}

// csrOp performs the read-modify-write of a CSR instruction, returning
// the prior CSR value. Set and clear with a zero operand do not write.
func (cpu *Cpu) csrOp(csr isa.Csr, funct3 uint32, operand uint32) (old uint32, ok bool) {
	var value uint32
	write := true

	switch funct3 {
	case isa.F3_CSRRW, isa.F3_CSRRWI:
		value = operand
	case isa.F3_CSRRS, isa.F3_CSRRSI:
		write = operand != 0
	case isa.F3_CSRRC, isa.F3_CSRRCI:
		write = operand != 0
	default:
		return
	}

	old, ok = cpu.csrRead(csr, write)
	if !ok || !write {
		return
	}

	switch funct3 {
	case isa.F3_CSRRS, isa.F3_CSRRSI:
		value = old | operand
	case isa.F3_CSRRC, isa.F3_CSRRCI:
		value = old &^ operand
	}

	ok = cpu.csrWrite(csr, value)
	return
}
