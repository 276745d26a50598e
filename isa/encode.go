package isa

// EncodeR encodes a register-register instruction.
func EncodeR(op Opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return uint32(op) |
		(rd&0x1f)<<7 |
		(funct3&0x7)<<12 |
		(rs1&0x1f)<<15 |
		(rs2&0x1f)<<20 |
		(funct7&0x7f)<<25
}

// EncodeI encodes an immediate instruction. Only the low 12 bits of imm are used.
func EncodeI(op Opcode, rd, funct3, rs1, imm uint32) uint32 {
	return uint32(op) |
		(rd&0x1f)<<7 |
		(funct3&0x7)<<12 |
		(rs1&0x1f)<<15 |
		FieldI(imm)
}

// EncodeS encodes a store instruction.
func EncodeS(op Opcode, funct3, rs1, rs2, imm uint32) uint32 {
	return uint32(op) |
		(funct3&0x7)<<12 |
		(rs1&0x1f)<<15 |
		(rs2&0x1f)<<20 |
		FieldS(imm)
}

// EncodeB encodes a conditional branch with a byte offset.
func EncodeB(op Opcode, funct3, rs1, rs2, offset uint32) uint32 {
	return uint32(op) |
		(funct3&0x7)<<12 |
		(rs1&0x1f)<<15 |
		(rs2&0x1f)<<20 |
		FieldB(offset)
}

// EncodeU encodes an upper immediate instruction. imm holds the already
// shifted value, its low 12 bits are ignored.
func EncodeU(op Opcode, rd, imm uint32) uint32 {
	return uint32(op) | (rd&0x1f)<<7 | FieldU(imm)
}

// EncodeJ encodes a jump with a byte offset.
func EncodeJ(op Opcode, rd, offset uint32) uint32 {
	return uint32(op) | (rd&0x1f)<<7 | FieldJ(offset)
}

// FieldI places a 12-bit immediate in the I-type field.
func FieldI(imm uint32) uint32 {
	return (imm & 0xfff) << 20
}

// FieldS scatters a 12-bit immediate into the S-type fields.
func FieldS(imm uint32) uint32 {
	return Bits(imm, 0, 4)<<7 | Bits(imm, 5, 11)<<25
}

// FieldB scatters a branch offset into the B-type fields.
func FieldB(offset uint32) uint32 {
	return Bit(offset, 11)<<7 |
		Bits(offset, 1, 4)<<8 |
		Bits(offset, 5, 10)<<25 |
		Bit(offset, 12)<<31
}

// FieldU places the upper 20 bits of imm.
func FieldU(imm uint32) uint32 {
	return imm & 0xfffff000
}

// FieldJ scatters a jump offset into the J-type fields.
func FieldJ(offset uint32) uint32 {
	return Bits(offset, 12, 19)<<12 |
		Bit(offset, 11)<<20 |
		Bits(offset, 1, 10)<<21 |
		Bit(offset, 20)<<31
}

// FitsI returns true if value is representable as a sign extended 12-bit immediate.
func FitsI(value uint32) bool {
	v := int32(value)
	return v >= -2048 && v <= 2047
}

// FitsB returns true if offset is a reachable, even branch offset.
func FitsB(offset uint32) bool {
	v := int32(offset)
	return v&1 == 0 && v >= -4096 && v <= 4094
}

// FitsJ returns true if offset is a reachable, even jump offset.
func FitsJ(offset uint32) bool {
	v := int32(offset)
	return v&1 == 0 && v >= -(1<<20) && v <= (1<<20)-2
}

// SplitHiLo splits a 32-bit value into the lui/auipc upper part and the
// sign extended addi lower part such that hi + lo == value.
func SplitHiLo(value uint32) (hi, lo uint32) {
	lo = SignExtend(value&0xfff, 12)
	hi = (value - lo) & 0xfffff000
	return
}
