package cpu_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/rvemu/asm"
	"github.com/ezrec/rvemu/cpu"
	"github.com/ezrec/rvemu/isa"
	"github.com/ezrec/rvemu/memory"
)

// hart is a CPU with an assembled program loaded at its reset vector.
type hart struct {
	*cpu.Cpu
	prog *asm.Program
}

func newHart(lines ...string) (h *hart) {
	assembler := &asm.Assembler{}
	prog, err := assembler.Parse(strings.NewReader(strings.Join(lines, "\n")))
	Expect(err).NotTo(HaveOccurred())
	Expect(prog.Origin).To(Equal(cpu.RESET_VECTOR))

	mem, err := memory.NewMemory(0x1_0000)
	Expect(err).NotTo(HaveOccurred())
	Expect(mem.Load(prog.Origin, prog.Binary())).To(Succeed())

	h = &hart{Cpu: cpu.NewCpu(mem), prog: prog}
	return
}

// label returns the address of a program label.
func (h *hart) label(name string) uint32 {
	addr, ok := h.prog.Labels[name]
	Expect(ok).To(BeTrue(), name)
	return addr
}

// reg returns a register by ABI name.
func (h *hart) reg(name string) uint32 {
	n, ok := isa.RegisterNumber(name)
	Expect(ok).To(BeTrue(), name)
	return h.Register(n)
}

// csr returns a CSR value.
func (h *hart) csr(csr isa.Csr) uint32 {
	value, ok := h.Csr(csr)
	Expect(ok).To(BeTrue(), csr.String())
	return value
}

// runToHalt runs batches until the program reaches its 'halt' loop.
func (h *hart) runToHalt() {
	halt := h.label("halt")
	for range 1000 {
		if h.Pc == halt {
			return
		}
		h.Run(100)
	}
	Fail("program did not reach halt:\n" + h.String())
}

var _ = Describe("RV32IMA programs", func() {
	Describe("integer arithmetic", func() {
		It("computes fibonacci numbers", func() {
			h := newHart(
				"    li a0, 0",
				"    li a1, 1",
				"    li t0, 10",
				"loop:",
				"    add t1, a0, a1",
				"    mv a0, a1",
				"    mv a1, t1",
				"    addi t0, t0, -1",
				"    bnez t0, loop",
				"halt: j halt",
			)
			h.runToHalt()

			Expect(h.reg("a0")).To(Equal(uint32(55)))
			Expect(h.reg("t0")).To(BeZero())
		})

		It("follows the division edge cases", func() {
			h := newHart(
				"    li a0, 7",
				"    li a1, 0",
				"    div a2, a0, a1",
				"    rem a3, a0, a1",
				"    divu a4, a0, a1",
				"    li a0, 0x80000000",
				"    li a1, -1",
				"    div a5, a0, a1",
				"    rem a6, a0, a1",
				"    mulh a7, a0, a0",
				"halt: j halt",
			)
			h.runToHalt()

			Expect(h.reg("a2")).To(Equal(uint32(0xffffffff)))
			Expect(h.reg("a3")).To(Equal(uint32(7)))
			Expect(h.reg("a4")).To(Equal(uint32(0xffffffff)))
			Expect(h.reg("a5")).To(Equal(uint32(0x80000000)))
			Expect(h.reg("a6")).To(BeZero())
			Expect(h.reg("a7")).To(Equal(uint32(0x40000000)))
		})
	})

	Describe("memory access", func() {
		It("sign and zero extends sub-word loads", func() {
			h := newHart(
				"    la t0, data",
				"    lb a0, 0(t0)",
				"    lbu a1, 0(t0)",
				"    lh a2, 0(t0)",
				"    lhu a3, 2(t0)",
				"    sw a0, 4(t0)",
				"    lw a4, 4(t0)",
				"    sb a3, 5(t0)",
				"    lw a5, 4(t0)",
				"halt: j halt",
				"data: .word 0x12348080 0",
			)
			h.runToHalt()

			Expect(h.reg("a0")).To(Equal(uint32(0xffffff80)))
			Expect(h.reg("a1")).To(Equal(uint32(0x80)))
			Expect(h.reg("a2")).To(Equal(uint32(0xffff8080)))
			Expect(h.reg("a3")).To(Equal(uint32(0x1234)))
			Expect(h.reg("a4")).To(Equal(uint32(0xffffff80)))
			Expect(h.reg("a5")).To(Equal(uint32(0xffff3480)))
		})

		It("keeps a call stack", func() {
			h := newHart(
				"    li sp, 0x8000",
				"    li a0, 5",
				"    call fact",
				"halt: j halt",
				"",
				"; a0 = a0!",
				"fact:",
				"    addi sp, sp, -8",
				"    sw ra, 4(sp)",
				"    sw a0, 0(sp)",
				"    li t0, 1",
				"    ble a0, t0, base",
				"    addi a0, a0, -1",
				"    call fact",
				"    lw t1, 0(sp)",
				"    mul a0, a0, t1",
				"    j out",
				"base:",
				"    li a0, 1",
				"out:",
				"    lw ra, 4(sp)",
				"    addi sp, sp, 8",
				"    ret",
			)
			h.runToHalt()

			Expect(h.reg("a0")).To(Equal(uint32(120)))
			Expect(h.reg("sp")).To(Equal(uint32(0x8000)))
		})

		It("increments atomically", func() {
			h := newHart(
				"    la t0, counter",
				"    li t2, 3",
				"retry:",
				"    lr.w t1, (t0)",
				"    addi t1, t1, 1",
				"    sc.w t3, t1, (t0)",
				"    bnez t3, retry",
				"    addi t2, t2, -1",
				"    bnez t2, retry",
				"    li t4, 10",
				"    amoadd.w a0, t4, (t0)",
				"    lw a1, 0(t0)",
				"halt: j halt",
				"counter: .word 0",
			)
			h.runToHalt()

			Expect(h.reg("a0")).To(Equal(uint32(3)))
			Expect(h.reg("a1")).To(Equal(uint32(13)))
			_, reserved := h.Reservation()
			Expect(reserved).To(BeFalse())
		})
	})

	Describe("traps", func() {
		It("returns from ecall handlers", func() {
			h := newHart(
				"    la t0, handler",
				"    csrw mtvec, t0",
				"    li a0, 0",
				"    ecall",
				"    ecall",
				"brk: ebreak",
				"    nop",
				"handler:",
				"    csrr t1, mcause",
				"    li t2, 11",
				"    bne t1, t2, halt",
				"    addi a0, a0, 1",
				"    csrr t1, mepc",
				"    addi t1, t1, 4",
				"    csrw mepc, t1",
				"    mret",
				"halt: j halt",
			)
			h.runToHalt()

			Expect(h.reg("a0")).To(Equal(uint32(2)))
			Expect(h.csr(isa.CSR_MCAUSE)).To(Equal(uint32(cpu.EXC_BREAKPOINT)))
			Expect(h.csr(isa.CSR_MEPC)).To(Equal(h.label("brk")))
			Expect(h.Privilege()).To(Equal(cpu.PRIV_MACHINE))
		})

		It("takes an external interrupt at batch entry", func() {
			h := newHart(
				"    la t0, handler",
				"    csrw mtvec, t0",
				"    li t0, 0x800",
				"    csrw mie, t0",
				"    csrsi mstatus, 8",
				"wait: j wait",
				"handler:",
				"    csrr a0, mcause",
				"    csrr a1, mstatus",
				"halt: j halt",
			)

			h.Run(100)
			Expect(h.Pc).To(Equal(h.label("wait")))

			h.SetInterrupt(cpu.IRQ_MEI, true)
			h.runToHalt()

			Expect(h.reg("a0")).To(Equal(uint32(0x8000000b)))
			Expect(h.reg("a1") & cpu.MSTATUS_MIE).To(BeZero())
			Expect(h.reg("a1") & cpu.MSTATUS_MPIE).NotTo(BeZero())
			Expect(h.csr(isa.CSR_MEPC)).To(Equal(h.label("wait")))
		})

		It("traps an illegal instruction with its encoding", func() {
			h := newHart(
				"    la t0, halt",
				"    csrw mtvec, t0",
				"bad: .word 0xffffffff",
				"halt: j halt",
			)
			h.runToHalt()

			Expect(h.csr(isa.CSR_MCAUSE)).To(Equal(uint32(cpu.EXC_ILLEGAL_INSTRUCTION)))
			Expect(h.csr(isa.CSR_MTVAL)).To(Equal(uint32(0xffffffff)))
			Expect(h.csr(isa.CSR_MEPC)).To(Equal(h.label("bad")))
		})
	})
})
