package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Csr is a 12-bit control and status register number.
type Csr uint32

// Supported CSR numbers.
const (
	CSR_MSTATUS    = Csr(0x300)
	CSR_MISA       = Csr(0x301)
	CSR_MIE        = Csr(0x304)
	CSR_MTVEC      = Csr(0x305)
	CSR_MCOUNTEREN = Csr(0x306)

	CSR_MSCRATCH = Csr(0x340)
	CSR_MEPC     = Csr(0x341)
	CSR_MCAUSE   = Csr(0x342)
	CSR_MTVAL    = Csr(0x343)
	CSR_MIP      = Csr(0x344)

	CSR_CYCLE    = Csr(0xc00)
	CSR_TIME     = Csr(0xc01)
	CSR_INSTRET  = Csr(0xc02)
	CSR_CYCLEH   = Csr(0xc80)
	CSR_TIMEH    = Csr(0xc81)
	CSR_INSTRETH = Csr(0xc82)

	CSR_MVENDORID = Csr(0xf11)
	CSR_MARCHID   = Csr(0xf12)
	CSR_MIMPID    = Csr(0xf13)
	CSR_MHARTID   = Csr(0xf14)
)

// CsrNames maps assembler CSR names to their numbers.
var CsrNames = map[string]Csr{
	"mstatus":    CSR_MSTATUS,
	"misa":       CSR_MISA,
	"mie":        CSR_MIE,
	"mtvec":      CSR_MTVEC,
	"mcounteren": CSR_MCOUNTEREN,
	"mscratch":   CSR_MSCRATCH,
	"mepc":       CSR_MEPC,
	"mcause":     CSR_MCAUSE,
	"mtval":      CSR_MTVAL,
	"mip":        CSR_MIP,
	"cycle":      CSR_CYCLE,
	"time":       CSR_TIME,
	"instret":    CSR_INSTRET,
	"cycleh":     CSR_CYCLEH,
	"timeh":      CSR_TIMEH,
	"instreth":   CSR_INSTRETH,
	"mvendorid":  CSR_MVENDORID,
	"marchid":    CSR_MARCHID,
	"mimpid":     CSR_MIMPID,
	"mhartid":    CSR_MHARTID,
}

func (csr Csr) String() string {
	for name, num := range CsrNames {
		if num == csr {
			return name
		}
	}
	return fmt.Sprintf("csr 0x%03x", uint32(csr))
}

// Privilege returns the minimum privilege level encoded in the CSR number.
func (csr Csr) Privilege() uint32 {
	return (uint32(csr) >> 8) & 3
}

// ReadOnly returns true if the CSR number is in a read-only class.
func (csr Csr) ReadOnly() bool {
	return (uint32(csr) & 0xc00) == 0xc00
}

// RegisterNames lists the ABI names of the integer registers.
var RegisterNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// RegisterNumber parses a register name, either ABI (a0, sp, fp) or
// architectural (x0-x31).
func RegisterNumber(name string) (reg uint32, ok bool) {
	name = strings.ToLower(name)

	if name == "fp" {
		return 8, true
	}

	for n, abi := range RegisterNames {
		if abi == name {
			return uint32(n), true
		}
	}

	if len(name) >= 2 && name[0] == 'x' {
		n, err := strconv.ParseUint(name[1:], 10, 8)
		if err == nil && n < 32 {
			return uint32(n), true
		}
	}

	return
}
