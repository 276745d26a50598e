package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvemu/isa"
)

func FuzzCpu(f *testing.F) {
	for _, insn := range []uint32{
		insnNop, insnEcall, insnEbreak, insnMret, insnWfi, insnFence,
		addi(1, 2, 0x7ff),
		opR(isa.F3_DIV, isa.F7_MULDIV, 3, 1, 0),
		amoR(isa.F5_AMOADD, 3, 1, 2),
		amoR(isa.F5_SC, 3, 1, 2),
		load(isa.F3_LW, 3, 1, 0),
		store(isa.F3_SW, 3, 1, 0),
		csrI(isa.F3_CSRRW, 3, isa.CSR_MISA, 1),
		0, 0xffffffff,
	} {
		f.Add(insn, uint32(0x2000), uint32(0x80000000))
		f.Add(insn, uint32(0xC0000000), uint32(0))
	}

	f.Fuzz(func(t *testing.T, insn uint32, a uint32, b uint32) {
		assert := assert.New(t)

		cpu := newTestCpu(t, insn)
		cpu.mtvec = 0x3000
		for n := range uint32(32) {
			if n%2 == 1 {
				cpu.SetRegister(n, a+n)
			} else {
				cpu.SetRegister(n, b^n)
			}
		}

		retired := cpu.Run(1)

		code_str := fmt.Sprintf("0x%08x (%v) a:0x%x b:0x%x\ncpu:%v", insn, isa.OpcodeOf(insn), a, b, cpu.String())

		assert.Equal(uint32(0), cpu.Register(0), code_str)
		assert.Equal(uint64(retired), cpu.Cycle, code_str)
		assert.Equal(uint64(retired), cpu.Instret, code_str)

		switch retired {
		case 0:
			assert.Equal(uint32(0x3000), cpu.Pc, code_str)
			assert.Equal(uint32(0x1000), cpu.mepc, code_str)
			assert.Equal(PRIV_MACHINE, cpu.Privilege(), code_str)
			assert.Equal(uint32(0), cpu.mcause&uint32(EXC_INTERRUPT), code_str)

			switch Exception(cpu.mcause) {
			case EXC_ILLEGAL_INSTRUCTION:
				assert.Equal(insn, cpu.mtval, code_str)
			case EXC_LOAD_FAULT, EXC_STORE_FAULT:
				addr, _ := cpu.Memory.Fault()
				assert.Equal(addr, cpu.mtval, code_str)
			case EXC_ECALL_M, EXC_BREAKPOINT:
				assert.Equal(uint32(0), cpu.mtval, code_str)
			default:
				assert.Fail("unexpected cause", code_str)
			}
		case 1:
			assert.Equal(uint32(0), cpu.Pc&1, code_str)
		default:
			assert.Fail("too many retired", code_str)
		}
	})
}
