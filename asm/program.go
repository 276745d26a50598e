package asm

import (
	"encoding/binary"
	"iter"

	"github.com/ezrec/rvemu/isa"
)

// Link describes how a label address is applied to an opcode.
type Link int

//go:generate go tool stringer -type=Link
const (
	LINK_NONE   = Link(iota)
	LINK_BRANCH // B-type offset in Codes[0]
	LINK_JAL    // J-type offset in Codes[0]
	LINK_PCREL  // auipc, then an I-type lower half
	LINK_ABS    // lui, then an I-type lower half
	LINK_WORD   // absolute address as Codes[0]
)

// Opcode is one assembled source statement.
type Opcode struct {
	LineNo    int      // Source line number.
	Addr      uint32   // Address of Codes[0].
	Words     []string // Source words, after substitutions.
	Codes     []uint32 // Instruction or data words.
	LinkLabel string   // Label resolved at link time.
	Link      Link     // How LinkLabel is applied.
}

// link applies the address of the link label.
func (op *Opcode) link(target uint32) (err error) {
	offset := target - op.Addr

	switch op.Link {
	case LINK_BRANCH:
		if !isa.FitsB(offset) {
			err = ErrLinkRange
			return
		}
		op.Codes[0] |= isa.FieldB(offset)
	case LINK_JAL:
		if !isa.FitsJ(offset) {
			err = ErrLinkRange
			return
		}
		op.Codes[0] |= isa.FieldJ(offset)
	case LINK_PCREL:
		hi, lo := isa.SplitHiLo(offset)
		op.Codes[0] |= isa.FieldU(hi)
		op.Codes[1] |= isa.FieldI(lo)
	case LINK_ABS:
		hi, lo := isa.SplitHiLo(target)
		op.Codes[0] |= isa.FieldU(hi)
		op.Codes[1] |= isa.FieldI(lo)
	case LINK_WORD:
		op.Codes[0] = target
	}

	return
}

// Program is an assembled, linked program.
type Program struct {
	Origin  uint32            // Load address of the first opcode.
	Opcodes []Opcode          // Opcodes, in address order.
	Labels  map[string]uint32 // Label addresses.
}

// Debug locates the opcode containing an address.
type Debug struct {
	*Opcode
	Index int // Index into Opcode.Codes
}

// Debug returns the opcode that generated the code at addr.
// The embedded Opcode is nil if no opcode covers addr.
func (prog *Program) Debug(addr uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && addr < op.Addr+uint32(4*len(op.Codes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr-op.Addr) / 4,
			}
			break
		}
	}

	return
}

// Binary returns the little-endian image of the program, starting at Origin.
func (prog *Program) Binary() (bin []byte) {
	for _, code := range prog.Codes() {
		bin = binary.LittleEndian.AppendUint32(bin, code)
	}

	return
}

// Codes iterates over the address and value of every code word.
func (prog *Program) Codes() iter.Seq2[uint32, uint32] {
	return func(yield func(addr uint32, code uint32) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Addr+uint32(4*n), code) {
					return
				}
			}
		}
	}
}
