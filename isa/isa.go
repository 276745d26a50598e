// Package isa describes the RV32IMA instruction encoding used by the rvemu
// emulator and assembler.
//
// It holds the major opcode and function field constants, field decoders
// that return sign extended immediates, the matching encoders, and the
// register and CSR name tables shared by the CPU and the assembler.
package isa

// Opcode is the 7-bit major opcode field of an instruction.
type Opcode uint32

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_LOAD     = Opcode(0b0000011) // load
	OP_MISC_MEM = Opcode(0b0001111) // misc-mem
	OP_IMM      = Opcode(0b0010011) // op-imm
	OP_AUIPC    = Opcode(0b0010111) // auipc
	OP_STORE    = Opcode(0b0100011) // store
	OP_AMO      = Opcode(0b0101111) // amo
	OP_OP       = Opcode(0b0110011) // op
	OP_LUI      = Opcode(0b0110111) // lui
	OP_BRANCH   = Opcode(0b1100011) // branch
	OP_JALR     = Opcode(0b1100111) // jalr
	OP_JAL      = Opcode(0b1101111) // jal
	OP_SYSTEM   = Opcode(0b1110011) // system

	OPCODE_MASK = uint32(0x7f)
)

// Branch funct3 values.
const (
	F3_BEQ  = uint32(0b000)
	F3_BNE  = uint32(0b001)
	F3_BLT  = uint32(0b100)
	F3_BGE  = uint32(0b101)
	F3_BLTU = uint32(0b110)
	F3_BGEU = uint32(0b111)
)

// Load and store funct3 values.
const (
	F3_LB  = uint32(0b000)
	F3_LH  = uint32(0b001)
	F3_LW  = uint32(0b010)
	F3_LBU = uint32(0b100)
	F3_LHU = uint32(0b101)

	F3_SB = uint32(0b000)
	F3_SH = uint32(0b001)
	F3_SW = uint32(0b010)
)

// Integer funct3 values, shared by OP_IMM and OP_OP.
const (
	F3_ADD  = uint32(0b000) // add, sub, addi
	F3_SLL  = uint32(0b001)
	F3_SLT  = uint32(0b010)
	F3_SLTU = uint32(0b011)
	F3_XOR  = uint32(0b100)
	F3_SRL  = uint32(0b101) // srl, sra
	F3_OR   = uint32(0b110)
	F3_AND  = uint32(0b111)
)

// Multiply and divide funct3 values, selected by F7_MULDIV.
const (
	F3_MUL    = uint32(0b000)
	F3_MULH   = uint32(0b001)
	F3_MULHSU = uint32(0b010)
	F3_MULHU  = uint32(0b011)
	F3_DIV    = uint32(0b100)
	F3_DIVU   = uint32(0b101)
	F3_REM    = uint32(0b110)
	F3_REMU   = uint32(0b111)
)

// funct7 tags of OP_OP.
const (
	F7_BASE   = uint32(0b0000000)
	F7_MULDIV = uint32(0b0000001)
	F7_ALT    = uint32(0b0100000) // sub, sra, srai
)

// System funct3 values.
const (
	F3_PRIV   = uint32(0b000) // ecall, ebreak, mret, wfi
	F3_CSRRW  = uint32(0b001)
	F3_CSRRS  = uint32(0b010)
	F3_CSRRC  = uint32(0b011)
	F3_CSRRWI = uint32(0b101)
	F3_CSRRSI = uint32(0b110)
	F3_CSRRCI = uint32(0b111)
)

// funct12 values of F3_PRIV system instructions.
const (
	F12_ECALL  = uint32(0x000)
	F12_EBREAK = uint32(0x001)
	F12_WFI    = uint32(0x105)
	F12_MRET   = uint32(0x302)
)

// Misc-mem funct3 values.
const (
	F3_FENCE   = uint32(0b000)
	F3_FENCE_I = uint32(0b001)
)

// Atomic memory operation funct5 values; funct3 is always F3_AMO_W.
const (
	F5_AMOADD  = uint32(0b00000)
	F5_AMOSWAP = uint32(0b00001)
	F5_LR      = uint32(0b00010)
	F5_SC      = uint32(0b00011)
	F5_AMOXOR  = uint32(0b00100)
	F5_AMOOR   = uint32(0b01000)
	F5_AMOAND  = uint32(0b01100)
	F5_AMOMIN  = uint32(0b10000)
	F5_AMOMAX  = uint32(0b10100)
	F5_AMOMINU = uint32(0b11000)
	F5_AMOMAXU = uint32(0b11100)

	F3_AMO_W = uint32(0b010)
)

// Bits extracts the bit field [low, high] of val.
func Bits(val uint32, low, high uint) uint32 {
	return (val >> low) & ((1 << (high - low + 1)) - 1)
}

// Bit extracts a single bit of val.
func Bit(val uint32, bit uint) uint32 {
	return (val >> bit) & 1
}

// SignExtend sign extends the low 'width' bits of val.
func SignExtend(val uint32, width uint) uint32 {
	shift := 32 - width
	return uint32(int32(val<<shift) >> shift)
}

// OpcodeOf returns the major opcode of an instruction.
func OpcodeOf(insn uint32) Opcode { return Opcode(insn & OPCODE_MASK) }

func Rd(insn uint32) uint32     { return Bits(insn, 7, 11) }
func Rs1(insn uint32) uint32    { return Bits(insn, 15, 19) }
func Rs2(insn uint32) uint32    { return Bits(insn, 20, 24) }
func Funct3(insn uint32) uint32 { return Bits(insn, 12, 14) }
func Funct5(insn uint32) uint32 { return insn >> 27 }
func Funct7(insn uint32) uint32 { return insn >> 25 }

// Funct12 is the unsigned top 12 bits, used for CSR numbers and
// privileged system instructions.
func Funct12(insn uint32) uint32 { return insn >> 20 }

// ImmI returns the sign extended I-type immediate.
func ImmI(insn uint32) uint32 {
	return uint32(int32(insn) >> 20)
}

// ImmS returns the sign extended S-type immediate.
func ImmS(insn uint32) uint32 {
	return uint32(int32(insn&0xfe000000)>>20) | Bits(insn, 7, 11)
}

// ImmB returns the sign extended B-type branch offset.
func ImmB(insn uint32) uint32 {
	imm := (Bits(insn, 8, 11) << 1) |
		(Bits(insn, 25, 30) << 5) |
		(Bit(insn, 7) << 11) |
		(Bit(insn, 31) << 12)
	return SignExtend(imm, 13)
}

// ImmU returns the U-type immediate, already shifted into place.
func ImmU(insn uint32) uint32 {
	return insn & 0xfffff000
}

// ImmJ returns the sign extended J-type jump offset.
func ImmJ(insn uint32) uint32 {
	imm := (Bits(insn, 21, 30) << 1) |
		(Bit(insn, 20) << 11) |
		(Bits(insn, 12, 19) << 12) |
		(Bit(insn, 31) << 20)
	return SignExtend(imm, 21)
}
