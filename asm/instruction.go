package asm

import (
	"github.com/ezrec/rvemu/isa"
)

// Format is the operand syntax of a machine instruction.
type Format int

//go:generate go tool stringer -type=Format
const (
	FORMAT_R      = Format(iota) // rd rs1 rs2
	FORMAT_I                     // rd rs1 imm
	FORMAT_SHIFT                 // rd rs1 shamt
	FORMAT_LOAD                  // rd imm(rs1)
	FORMAT_STORE                 // rs2 imm(rs1)
	FORMAT_BRANCH                // rs1 rs2 target
	FORMAT_U                     // rd imm20
	FORMAT_JAL                   // rd target
	FORMAT_JALR                  // rd imm(rs1), or rd rs1 imm
	FORMAT_CSR                   // rd csr rs1
	FORMAT_CSRI                  // rd csr uimm5
	FORMAT_AMO                   // rd rs2 (rs1)
	FORMAT_LR                    // rd (rs1)
	FORMAT_FIXED                 // no operands
)

// Instruction describes the encoding of a machine instruction mnemonic.
type Instruction struct {
	Format Format
	Op     isa.Opcode
	Funct3 uint32
	Funct7 uint32 // funct7 for FORMAT_R and FORMAT_SHIFT, funct5<<2 for FORMAT_AMO
	Fixed  uint32 // complete encoding for FORMAT_FIXED
}

func amoFunct7(funct5 uint32) uint32 {
	return funct5 << 2
}

// Instructions maps machine mnemonics to their encodings.
var Instructions = map[string]Instruction{
	"add":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_ADD, Funct7: isa.F7_BASE},
	"sub":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_ADD, Funct7: isa.F7_ALT},
	"sll":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_SLL, Funct7: isa.F7_BASE},
	"slt":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_SLT, Funct7: isa.F7_BASE},
	"sltu": {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_SLTU, Funct7: isa.F7_BASE},
	"xor":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_XOR, Funct7: isa.F7_BASE},
	"srl":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_SRL, Funct7: isa.F7_BASE},
	"sra":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_SRL, Funct7: isa.F7_ALT},
	"or":   {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_OR, Funct7: isa.F7_BASE},
	"and":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_AND, Funct7: isa.F7_BASE},

	"mul":    {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_MUL, Funct7: isa.F7_MULDIV},
	"mulh":   {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_MULH, Funct7: isa.F7_MULDIV},
	"mulhsu": {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_MULHSU, Funct7: isa.F7_MULDIV},
	"mulhu":  {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_MULHU, Funct7: isa.F7_MULDIV},
	"div":    {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_DIV, Funct7: isa.F7_MULDIV},
	"divu":   {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_DIVU, Funct7: isa.F7_MULDIV},
	"rem":    {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_REM, Funct7: isa.F7_MULDIV},
	"remu":   {Format: FORMAT_R, Op: isa.OP_OP, Funct3: isa.F3_REMU, Funct7: isa.F7_MULDIV},

	"addi":  {Format: FORMAT_I, Op: isa.OP_IMM, Funct3: isa.F3_ADD},
	"slti":  {Format: FORMAT_I, Op: isa.OP_IMM, Funct3: isa.F3_SLT},
	"sltiu": {Format: FORMAT_I, Op: isa.OP_IMM, Funct3: isa.F3_SLTU},
	"xori":  {Format: FORMAT_I, Op: isa.OP_IMM, Funct3: isa.F3_XOR},
	"ori":   {Format: FORMAT_I, Op: isa.OP_IMM, Funct3: isa.F3_OR},
	"andi":  {Format: FORMAT_I, Op: isa.OP_IMM, Funct3: isa.F3_AND},
	"slli":  {Format: FORMAT_SHIFT, Op: isa.OP_IMM, Funct3: isa.F3_SLL, Funct7: isa.F7_BASE},
	"srli":  {Format: FORMAT_SHIFT, Op: isa.OP_IMM, Funct3: isa.F3_SRL, Funct7: isa.F7_BASE},
	"srai":  {Format: FORMAT_SHIFT, Op: isa.OP_IMM, Funct3: isa.F3_SRL, Funct7: isa.F7_ALT},

	"lb":  {Format: FORMAT_LOAD, Op: isa.OP_LOAD, Funct3: isa.F3_LB},
	"lh":  {Format: FORMAT_LOAD, Op: isa.OP_LOAD, Funct3: isa.F3_LH},
	"lw":  {Format: FORMAT_LOAD, Op: isa.OP_LOAD, Funct3: isa.F3_LW},
	"lbu": {Format: FORMAT_LOAD, Op: isa.OP_LOAD, Funct3: isa.F3_LBU},
	"lhu": {Format: FORMAT_LOAD, Op: isa.OP_LOAD, Funct3: isa.F3_LHU},
	"sb":  {Format: FORMAT_STORE, Op: isa.OP_STORE, Funct3: isa.F3_SB},
	"sh":  {Format: FORMAT_STORE, Op: isa.OP_STORE, Funct3: isa.F3_SH},
	"sw":  {Format: FORMAT_STORE, Op: isa.OP_STORE, Funct3: isa.F3_SW},

	"beq":  {Format: FORMAT_BRANCH, Op: isa.OP_BRANCH, Funct3: isa.F3_BEQ},
	"bne":  {Format: FORMAT_BRANCH, Op: isa.OP_BRANCH, Funct3: isa.F3_BNE},
	"blt":  {Format: FORMAT_BRANCH, Op: isa.OP_BRANCH, Funct3: isa.F3_BLT},
	"bge":  {Format: FORMAT_BRANCH, Op: isa.OP_BRANCH, Funct3: isa.F3_BGE},
	"bltu": {Format: FORMAT_BRANCH, Op: isa.OP_BRANCH, Funct3: isa.F3_BLTU},
	"bgeu": {Format: FORMAT_BRANCH, Op: isa.OP_BRANCH, Funct3: isa.F3_BGEU},

	"lui":   {Format: FORMAT_U, Op: isa.OP_LUI},
	"auipc": {Format: FORMAT_U, Op: isa.OP_AUIPC},
	"jal":   {Format: FORMAT_JAL, Op: isa.OP_JAL},
	"jalr":  {Format: FORMAT_JALR, Op: isa.OP_JALR},

	"csrrw":  {Format: FORMAT_CSR, Op: isa.OP_SYSTEM, Funct3: isa.F3_CSRRW},
	"csrrs":  {Format: FORMAT_CSR, Op: isa.OP_SYSTEM, Funct3: isa.F3_CSRRS},
	"csrrc":  {Format: FORMAT_CSR, Op: isa.OP_SYSTEM, Funct3: isa.F3_CSRRC},
	"csrrwi": {Format: FORMAT_CSRI, Op: isa.OP_SYSTEM, Funct3: isa.F3_CSRRWI},
	"csrrsi": {Format: FORMAT_CSRI, Op: isa.OP_SYSTEM, Funct3: isa.F3_CSRRSI},
	"csrrci": {Format: FORMAT_CSRI, Op: isa.OP_SYSTEM, Funct3: isa.F3_CSRRCI},

	"lr.w":      {Format: FORMAT_LR, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_LR)},
	"sc.w":      {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_SC)},
	"amoswap.w": {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOSWAP)},
	"amoadd.w":  {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOADD)},
	"amoxor.w":  {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOXOR)},
	"amoand.w":  {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOAND)},
	"amoor.w":   {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOOR)},
	"amomin.w":  {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOMIN)},
	"amomax.w":  {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOMAX)},
	"amominu.w": {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOMINU)},
	"amomaxu.w": {Format: FORMAT_AMO, Op: isa.OP_AMO, Funct3: isa.F3_AMO_W, Funct7: amoFunct7(isa.F5_AMOMAXU)},

	"ecall":   {Format: FORMAT_FIXED, Fixed: isa.EncodeI(isa.OP_SYSTEM, 0, isa.F3_PRIV, 0, isa.F12_ECALL)},
	"ebreak":  {Format: FORMAT_FIXED, Fixed: isa.EncodeI(isa.OP_SYSTEM, 0, isa.F3_PRIV, 0, isa.F12_EBREAK)},
	"mret":    {Format: FORMAT_FIXED, Fixed: isa.EncodeI(isa.OP_SYSTEM, 0, isa.F3_PRIV, 0, isa.F12_MRET)},
	"wfi":     {Format: FORMAT_FIXED, Fixed: isa.EncodeI(isa.OP_SYSTEM, 0, isa.F3_PRIV, 0, isa.F12_WFI)},
	"fence":   {Format: FORMAT_FIXED, Fixed: isa.EncodeI(isa.OP_MISC_MEM, 0, isa.F3_FENCE, 0, 0x0ff)},
	"fence.i": {Format: FORMAT_FIXED, Fixed: isa.EncodeI(isa.OP_MISC_MEM, 0, isa.F3_FENCE_I, 0, 0)},
}
