// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"log"

	"github.com/ezrec/rvemu/isa"
)

// execute executes a single instruction at Pc. On success the destination
// register and Pc are updated; on failure a trap is recorded and neither
// is changed.
func (cpu *Cpu) execute(insn uint32) {
	if cpu.Verbose {
		log.Print(f("cpu: %08x: %08x %v", cpu.Pc, insn, isa.OpcodeOf(insn)))
	}

	rd := isa.Rd(insn)

	switch isa.OpcodeOf(insn) {
	case isa.OP_LUI:
		cpu.setReg(rd, isa.ImmU(insn))
		cpu.Pc += 4
	case isa.OP_AUIPC:
		cpu.setReg(rd, cpu.Pc+isa.ImmU(insn))
		cpu.Pc += 4
	case isa.OP_JAL:
		link := cpu.Pc + 4
		cpu.Pc += isa.ImmJ(insn)
		cpu.setReg(rd, link)
	case isa.OP_JALR:
		if isa.Funct3(insn) != 0 {
			cpu.raiseIllegal(insn)
			return
		}
		link := cpu.Pc + 4
		cpu.Pc = (cpu.reg[isa.Rs1(insn)] + isa.ImmI(insn)) &^ 1
		cpu.setReg(rd, link)
	case isa.OP_BRANCH:
		cpu.execBranch(insn)
	case isa.OP_LOAD:
		cpu.execLoad(insn)
	case isa.OP_STORE:
		cpu.execStore(insn)
	case isa.OP_IMM:
		cpu.execImm(insn)
	case isa.OP_OP:
		cpu.execOp(insn)
	case isa.OP_AMO:
		cpu.execAmo(insn)
	case isa.OP_MISC_MEM:
		// fence and fence.i have nothing to order on a single hart
		switch isa.Funct3(insn) {
		case isa.F3_FENCE, isa.F3_FENCE_I:
			cpu.Pc += 4
		default:
			cpu.raiseIllegal(insn)
		}
	case isa.OP_SYSTEM:
		cpu.execSystem(insn)
	default:
		cpu.raiseIllegal(insn)
	}
}

func (cpu *Cpu) execBranch(insn uint32) {
	a := cpu.reg[isa.Rs1(insn)]
	b := cpu.reg[isa.Rs2(insn)]

	var taken bool
	switch isa.Funct3(insn) {
	case isa.F3_BEQ:
		taken = a == b
	case isa.F3_BNE:
		taken = a != b
	case isa.F3_BLT:
		taken = int32(a) < int32(b)
	case isa.F3_BGE:
		taken = int32(a) >= int32(b)
	case isa.F3_BLTU:
		taken = a < b
	case isa.F3_BGEU:
		taken = a >= b
	default:
		cpu.raiseIllegal(insn)
		return
	}

	if taken {
		cpu.Pc += isa.ImmB(insn)
	} else {
		cpu.Pc += 4
	}
}

func (cpu *Cpu) execLoad(insn uint32) {
	addr := cpu.reg[isa.Rs1(insn)] + isa.ImmI(insn)

	var value uint32
	var ok bool
	switch isa.Funct3(insn) {
	case isa.F3_LB:
		var v8 uint8
		v8, ok = cpu.Memory.Read8(addr)
		value = isa.SignExtend(uint32(v8), 8)
	case isa.F3_LBU:
		var v8 uint8
		v8, ok = cpu.Memory.Read8(addr)
		value = uint32(v8)
	case isa.F3_LH:
		var v16 uint16
		v16, ok = cpu.Memory.Read16(addr)
		value = isa.SignExtend(uint32(v16), 16)
	case isa.F3_LHU:
		var v16 uint16
		v16, ok = cpu.Memory.Read16(addr)
		value = uint32(v16)
	case isa.F3_LW:
		value, ok = cpu.Memory.Read32(addr)
	default:
		cpu.raiseIllegal(insn)
		return
	}

	if !ok {
		cpu.raiseMemory()
		return
	}

	cpu.setReg(isa.Rd(insn), value)
	cpu.Pc += 4
}

func (cpu *Cpu) execStore(insn uint32) {
	addr := cpu.reg[isa.Rs1(insn)] + isa.ImmS(insn)
	value := cpu.reg[isa.Rs2(insn)]

	var ok bool
	switch isa.Funct3(insn) {
	case isa.F3_SB:
		ok = cpu.Memory.Write8(addr, uint8(value))
	case isa.F3_SH:
		ok = cpu.Memory.Write16(addr, uint16(value))
	case isa.F3_SW:
		ok = cpu.Memory.Write32(addr, value)
	default:
		cpu.raiseIllegal(insn)
		return
	}

	if !ok {
		cpu.raiseMemory()
		return
	}

	cpu.Pc += 4
}

func (cpu *Cpu) execImm(insn uint32) {
	a := cpu.reg[isa.Rs1(insn)]
	imm := isa.ImmI(insn)
	shamt := isa.Rs2(insn)
	f7 := isa.Funct7(insn)

	var value uint32
	switch isa.Funct3(insn) {
	case isa.F3_ADD:
		value = a + imm
	case isa.F3_SLT:
		value = bool2u(int32(a) < int32(imm))
	case isa.F3_SLTU:
		value = bool2u(a < imm)
	case isa.F3_XOR:
		value = a ^ imm
	case isa.F3_OR:
		value = a | imm
	case isa.F3_AND:
		value = a & imm
	case isa.F3_SLL:
		if f7 != isa.F7_BASE {
			cpu.raiseIllegal(insn)
			return
		}
		value = a << shamt
	case isa.F3_SRL:
		switch f7 {
		case isa.F7_BASE:
			value = a >> shamt
		case isa.F7_ALT:
			value = uint32(int32(a) >> shamt)
		default:
			cpu.raiseIllegal(insn)
			return
		}
	}

	cpu.setReg(isa.Rd(insn), value)
	cpu.Pc += 4
}

func (cpu *Cpu) execOp(insn uint32) {
	a := cpu.reg[isa.Rs1(insn)]
	b := cpu.reg[isa.Rs2(insn)]

	var value uint32
	switch isa.Funct7(insn) {
	case isa.F7_BASE:
		switch isa.Funct3(insn) {
		case isa.F3_ADD:
			value = a + b
		case isa.F3_SLL:
			value = a << (b & 0x1f)
		case isa.F3_SLT:
			value = bool2u(int32(a) < int32(b))
		case isa.F3_SLTU:
			value = bool2u(a < b)
		case isa.F3_XOR:
			value = a ^ b
		case isa.F3_SRL:
			value = a >> (b & 0x1f)
		case isa.F3_OR:
			value = a | b
		case isa.F3_AND:
			value = a & b
		}
	case isa.F7_ALT:
		switch isa.Funct3(insn) {
		case isa.F3_ADD:
			value = a - b
		case isa.F3_SRL:
			value = uint32(int32(a) >> (b & 0x1f))
		default:
			cpu.raiseIllegal(insn)
			return
		}
	case isa.F7_MULDIV:
		value = muldiv(isa.Funct3(insn), a, b)
	default:
		cpu.raiseIllegal(insn)
		return
	}

	cpu.setReg(isa.Rd(insn), value)
	cpu.Pc += 4
}

// muldiv evaluates the M extension operations. Division by zero and
// signed overflow produce the architectural results, never a trap.
func muldiv(funct3 uint32, a, b uint32) (value uint32) {
	switch funct3 {
	case isa.F3_MUL:
		value = a * b
	case isa.F3_MULH:
		value = uint32((int64(int32(a)) * int64(int32(b))) >> 32)
	case isa.F3_MULHSU:
		value = uint32((int64(int32(a)) * int64(b)) >> 32)
	case isa.F3_MULHU:
		value = uint32((uint64(a) * uint64(b)) >> 32)
	case isa.F3_DIV:
		switch {
		case b == 0:
			value = 0xffffffff
		case a == 0x80000000 && b == 0xffffffff:
			value = a
		default:
			value = uint32(int32(a) / int32(b))
		}
	case isa.F3_DIVU:
		if b == 0 {
			value = 0xffffffff
		} else {
			value = a / b
		}
	case isa.F3_REM:
		switch {
		case b == 0:
			value = a
		case a == 0x80000000 && b == 0xffffffff:
			value = 0
		default:
			value = uint32(int32(a) % int32(b))
		}
	case isa.F3_REMU:
		if b == 0 {
			value = a
		} else {
			value = a % b
		}
	}

	return
}

func (cpu *Cpu) execAmo(insn uint32) {
	if isa.Funct3(insn) != isa.F3_AMO_W {
		cpu.raiseIllegal(insn)
		return
	}

	addr := cpu.reg[isa.Rs1(insn)]
	src := cpu.reg[isa.Rs2(insn)]
	rd := isa.Rd(insn)

	switch op := isa.Funct5(insn); op {
	case isa.F5_LR:
		if isa.Rs2(insn) != 0 {
			cpu.raiseIllegal(insn)
			return
		}
		value, ok := cpu.Memory.Read32(addr)
		if !ok {
			cpu.raiseMemory()
			return
		}
		cpu.reservation = addr
		cpu.reserved = true
		cpu.setReg(rd, value)
	case isa.F5_SC:
		matched := cpu.reserved && cpu.reservation == addr
		cpu.reserved = false
		result := uint32(1)
		if matched {
			if !cpu.Memory.Write32(addr, src) {
				cpu.raiseMemory()
				return
			}
			result = 0
		}
		cpu.setReg(rd, result)
	case isa.F5_AMOSWAP, isa.F5_AMOADD, isa.F5_AMOXOR, isa.F5_AMOAND, isa.F5_AMOOR,
		isa.F5_AMOMIN, isa.F5_AMOMAX, isa.F5_AMOMINU, isa.F5_AMOMAXU:
		old, ok := cpu.Memory.Read32(addr)
		if !ok {
			cpu.raiseMemory()
			return
		}
		value := amo(op, old, src)
		// A failed write back leaves any side effect of the read in place.
		if !cpu.Memory.Write32(addr, value) {
			cpu.raiseMemory()
			return
		}
		cpu.setReg(rd, old)
	default:
		cpu.raiseIllegal(insn)
		return
	}

	cpu.Pc += 4
}

// amo computes the value written back by an atomic memory operation.
func amo(funct5 uint32, old, src uint32) (value uint32) {
	switch funct5 {
	case isa.F5_AMOSWAP:
		value = src
	case isa.F5_AMOADD:
		value = old + src
	case isa.F5_AMOXOR:
		value = old ^ src
	case isa.F5_AMOAND:
		value = old & src
	case isa.F5_AMOOR:
		value = old | src
	case isa.F5_AMOMIN:
		value = old
		if int32(src) < int32(old) {
			value = src
		}
	case isa.F5_AMOMAX:
		value = old
		if int32(src) > int32(old) {
			value = src
		}
	case isa.F5_AMOMINU:
		value = min(old, src)
	case isa.F5_AMOMAXU:
		value = max(old, src)
	}

	return
}

func (cpu *Cpu) execSystem(insn uint32) {
	rd := isa.Rd(insn)
	rs1 := isa.Rs1(insn)
	funct3 := isa.Funct3(insn)

	switch funct3 {
	case isa.F3_PRIV:
		if rd != 0 || rs1 != 0 {
			cpu.raiseIllegal(insn)
			return
		}
		switch isa.Funct12(insn) {
		case isa.F12_ECALL:
			cpu.raise(EXC_ECALL_U+Exception(cpu.priv), 0)
		case isa.F12_EBREAK:
			cpu.raise(EXC_BREAKPOINT, 0)
		case isa.F12_MRET:
			if cpu.priv < PRIV_MACHINE {
				cpu.raiseIllegal(insn)
				return
			}
			cpu.mret()
		case isa.F12_WFI:
			// Interrupts are only sampled between batches.
			cpu.Pc += 4
		default:
			cpu.raiseIllegal(insn)
		}
	case isa.F3_CSRRW, isa.F3_CSRRS, isa.F3_CSRRC:
		cpu.execCsr(insn, cpu.reg[rs1])
	case isa.F3_CSRRWI, isa.F3_CSRRSI, isa.F3_CSRRCI:
		cpu.execCsr(insn, rs1)
	default:
		cpu.raiseIllegal(insn)
	}
}

func (cpu *Cpu) execCsr(insn uint32, operand uint32) {
	old, ok := cpu.csrOp(isa.Csr(isa.Funct12(insn)), isa.Funct3(insn), operand)
	if !ok {
		cpu.raiseIllegal(insn)
		return
	}

	cpu.setReg(isa.Rd(insn), old)
	cpu.Pc += 4
}

func bool2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
