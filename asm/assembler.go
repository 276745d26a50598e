// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/rvemu/isa"
)

// DEFAULT_ORIGIN is the load address used when no .org is given.
const DEFAULT_ORIGIN = uint32(0x1000)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"XLEN":   "32",
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\(([^()]|\([^()]*\))*\)`)
	reMemory     = regexp.MustCompile(`([^\s()]*)\(\s*([^\s()]+)\s*\)`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// Assembler is a single pass macro assembler for RV32IMA.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	origin    uint32              // Address of the first opcode.
	Label     map[string]uint32   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for '@' local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 34)
	if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	if invert {
		value = ^value
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	err = nil
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeUint(uint(addr))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// characterEval converts a quoted character into its decimal value.
func characterEval(word string) string {
	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		str = str[1:]
		switch str {
		case "\\":
			str = "\\"
		case "n":
			str = "\n"
		case "r":
			str = "\r"
		case "t":
			str = "\t"
		case "0":
			str = "\000"
		case "e":
			str = "\033"
		default:
			return word
		}
	} else if len(str) != 1 {
		return word
	}
	return fmt.Sprintf("%v", str[0])
}

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, characterEval)

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	// Operand separators, and offset(reg) memory operands.
	line = strings.ReplaceAll(line, ",", " ")
	line = reMemory.ReplaceAllStringFunc(line, func(str string) string {
		match := reMemory.FindStringSubmatch(str)
		offset := match[1]
		if len(offset) == 0 {
			offset = "0"
		}
		return " " + offset + " " + match[2] + " "
	})

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentAddr()
		if asm.Verbose {
			log.Print(f("label %v = %#08x", label, asm.Label[label]))
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next opcode.
func (asm *Assembler) currentAddr() uint32 {
	if len(asm.Opcode) == 0 {
		return asm.origin
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + uint32(4*len(last.Codes))
}

// stripComment removes ';' and '#' comments.
func stripComment(text string) string {
	if n := strings.IndexAny(text, ";#"); n >= 0 {
		text = text[:n]
	}
	return strings.TrimSpace(text)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.origin = DEFAULT_ORIGIN
	asm.expansions = 0
	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Print(f("%v: %v", lineno, text))
		}

		line = stripComment(text)
		words := strings.Fields(strings.ReplaceAll(line, ",", " "))

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		target, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}

		err = op.link(target)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Origin:  asm.origin,
		Opcodes: slices.Clone(asm.Opcode),
		Labels:  maps.Clone(asm.Label),
	}

	return
}

// register gets the register number of a word.
func register(word string) (reg uint32, err error) {
	reg, ok := isa.RegisterNumber(word)
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// isRegister returns true if the word names a register.
func isRegister(word string) bool {
	_, ok := isa.RegisterNumber(word)
	return ok
}

// csrOf gets the CSR number of a word, by name or by value.
func (asm *Assembler) csrOf(word string) (csr uint32, err error) {
	named, ok := isa.CsrNames[strings.ToLower(word)]
	if ok {
		csr = uint32(named)
		return
	}

	csr, err = asm.valueOf(word)
	if err != nil || csr > 0xfff {
		err = ErrCsrInvalid
	}
	return
}

// immediate gets the value of a word, checking its range.
func (asm *Assembler) immediate(word string, fits func(value uint32) bool) (value uint32, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}
	if !fits(value) {
		err = ErrImmediateRange
	}
	return
}

func fitsUnsigned(limit uint32) func(value uint32) bool {
	return func(value uint32) bool {
		return value <= limit
	}
}

// argCount verifies the number of instruction arguments.
func argCount(args []string, min int, max int) (err error) {
	switch {
	case len(args) < min:
		err = ErrOpcodeMissing
	case len(args) > max:
		err = ErrOpcodeExtraArgs
	}
	return
}

// target resolves a branch or jump target, either a byte offset
// or a label to link later.
func (asm *Assembler) target(word string, fits func(offset uint32) bool) (offset uint32, label string, err error) {
	offset, err = asm.valueOf(word)
	if err == nil {
		if !fits(offset) {
			err = ErrImmediateRange
		}
		return
	}

	if !reIdentifier.MatchString(word) {
		return
	}

	err = nil
	offset = 0
	label = word
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint32
	var label string
	var link Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Codes: codes, LinkLabel: label, Link: link}
		if asm.Verbose {
			log.Print(f("%08x: %v", opcode.Addr, opcode.Words))
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	args := words[1:]

	switch words[0] {
	case ".org":
		if len(args) != 1 {
			err = ErrOrgSyntax
			return
		}
		if len(asm.Opcode) > 0 || len(asm.Label) > 0 {
			err = ErrOrgLate
			return
		}
		var origin uint32
		origin, err = asm.valueOf(args[0])
		if err != nil || origin&3 != 0 {
			err = ErrOrgSyntax
			return
		}
		asm.origin = origin
		return
	case ".word":
		if len(args) == 0 {
			err = ErrWordSyntax
			return
		}
		if len(args) == 1 && reIdentifier.MatchString(args[0]) {
			codes = []uint32{0}
			label = args[0]
			link = LINK_WORD
			return
		}
		for _, arg := range args {
			var value uint32
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			codes = append(codes, value)
		}
		return
	case ".space":
		var size uint32
		if len(args) == 1 {
			size, err = asm.valueOf(args[0])
		}
		if len(args) != 1 || err != nil || size&3 != 0 {
			err = ErrSpaceSyntax
			return
		}
		codes = make([]uint32, size/4)
		return
	}

	if strings.HasPrefix(words[0], ".") {
		err = ErrDirectiveInvalid
		return
	}

	words = pseudo(words)

	switch words[0] {
	case "li":
		err = argCount(words[1:], 2, 2)
		if err != nil {
			return
		}
		var rd, value uint32
		rd, err = register(words[1])
		if err != nil {
			return
		}
		value, err = asm.valueOf(words[2])
		switch {
		case err == nil && isa.FitsI(value):
			codes = append(codes, isa.EncodeI(isa.OP_IMM, rd, isa.F3_ADD, 0, value))
		case err == nil:
			hi, lo := isa.SplitHiLo(value)
			codes = append(codes, isa.EncodeU(isa.OP_LUI, rd, hi))
			if lo != 0 {
				codes = append(codes, isa.EncodeI(isa.OP_IMM, rd, isa.F3_ADD, rd, lo))
			}
		case reIdentifier.MatchString(words[2]):
			err = nil
			codes = append(codes,
				isa.EncodeU(isa.OP_LUI, rd, 0),
				isa.EncodeI(isa.OP_IMM, rd, isa.F3_ADD, rd, 0),
			)
			label = words[2]
			link = LINK_ABS
		}
	case "la":
		err = argCount(words[1:], 2, 2)
		if err != nil {
			return
		}
		var rd uint32
		rd, err = register(words[1])
		if err != nil {
			return
		}
		codes = append(codes,
			isa.EncodeU(isa.OP_AUIPC, rd, 0),
			isa.EncodeI(isa.OP_IMM, rd, isa.F3_ADD, rd, 0),
		)
		label = words[2]
		link = LINK_PCREL
	case "call", "tail":
		err = argCount(words[1:], 1, 1)
		if err != nil {
			return
		}
		// call links through ra, tail scratches t1
		rd, tmp := uint32(1), uint32(1)
		if words[0] == "tail" {
			rd, tmp = 0, 6
		}
		codes = append(codes,
			isa.EncodeU(isa.OP_AUIPC, tmp, 0),
			isa.EncodeI(isa.OP_JALR, rd, 0, tmp, 0),
		)
		label = words[1]
		link = LINK_PCREL
	default:
		var code uint32
		code, label, link, err = asm.encode(words[0], words[1:])
		if err != nil {
			return
		}
		codes = append(codes, code)
	}

	return
}

// pseudoRewrite rewrites a pseudo-instruction with a fixed argument count.
type pseudoRewrite struct {
	args    int
	rewrite func(a []string) []string
}

// pseudoMap maps pseudo-instruction names to their machine equivalents.
var pseudoMap = map[string]pseudoRewrite{
	"nop":   {0, func(a []string) []string { return []string{"addi", "zero", "zero", "0"} }},
	"mv":    {2, func(a []string) []string { return []string{"addi", a[0], a[1], "0"} }},
	"not":   {2, func(a []string) []string { return []string{"xori", a[0], a[1], "-1"} }},
	"neg":   {2, func(a []string) []string { return []string{"sub", a[0], "zero", a[1]} }},
	"seqz":  {2, func(a []string) []string { return []string{"sltiu", a[0], a[1], "1"} }},
	"snez":  {2, func(a []string) []string { return []string{"sltu", a[0], "zero", a[1]} }},
	"j":     {1, func(a []string) []string { return []string{"jal", "zero", a[0]} }},
	"jal":   {1, func(a []string) []string { return []string{"jal", "ra", a[0]} }},
	"jr":    {1, func(a []string) []string { return []string{"jalr", "zero", "0", a[0]} }},
	"jalr":  {1, func(a []string) []string { return []string{"jalr", "ra", "0", a[0]} }},
	"ret":   {0, func(a []string) []string { return []string{"jalr", "zero", "0", "ra"} }},
	"beqz":  {2, func(a []string) []string { return []string{"beq", a[0], "zero", a[1]} }},
	"bnez":  {2, func(a []string) []string { return []string{"bne", a[0], "zero", a[1]} }},
	"bltz":  {2, func(a []string) []string { return []string{"blt", a[0], "zero", a[1]} }},
	"bgez":  {2, func(a []string) []string { return []string{"bge", a[0], "zero", a[1]} }},
	"blez":  {2, func(a []string) []string { return []string{"bge", "zero", a[0], a[1]} }},
	"bgtz":  {2, func(a []string) []string { return []string{"blt", "zero", a[0], a[1]} }},
	"bgt":   {3, func(a []string) []string { return []string{"blt", a[1], a[0], a[2]} }},
	"ble":   {3, func(a []string) []string { return []string{"bge", a[1], a[0], a[2]} }},
	"bgtu":  {3, func(a []string) []string { return []string{"bltu", a[1], a[0], a[2]} }},
	"bleu":  {3, func(a []string) []string { return []string{"bgeu", a[1], a[0], a[2]} }},
	"csrr":  {2, func(a []string) []string { return []string{"csrrs", a[0], a[1], "zero"} }},
	"csrw":  {2, func(a []string) []string { return []string{"csrrw", "zero", a[0], a[1]} }},
	"csrs":  {2, func(a []string) []string { return []string{"csrrs", "zero", a[0], a[1]} }},
	"csrc":  {2, func(a []string) []string { return []string{"csrrc", "zero", a[0], a[1]} }},
	"csrwi": {2, func(a []string) []string { return []string{"csrrwi", "zero", a[0], a[1]} }},
	"csrsi": {2, func(a []string) []string { return []string{"csrrsi", "zero", a[0], a[1]} }},
	"csrci": {2, func(a []string) []string { return []string{"csrrci", "zero", a[0], a[1]} }},
}

// pseudo rewrites pseudo-instructions into their machine equivalents.
func pseudo(words []string) []string {
	pr, ok := pseudoMap[words[0]]
	if !ok || pr.args != len(words)-1 {
		return words
	}

	return pr.rewrite(words[1:])
}

// encode encodes a single machine instruction.
func (asm *Assembler) encode(mnemonic string, args []string) (code uint32, label string, link Link, err error) {
	insn, ok := Instructions[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	regs := func(words ...string) (values []uint32, err error) {
		for _, word := range words {
			var reg uint32
			reg, err = register(word)
			if err != nil {
				return
			}
			values = append(values, reg)
		}
		return
	}

	var r []uint32
	var imm uint32

	switch insn.Format {
	case FORMAT_R:
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		if r, err = regs(args...); err != nil {
			return
		}
		code = isa.EncodeR(insn.Op, r[0], insn.Funct3, r[1], r[2], insn.Funct7)
	case FORMAT_I, FORMAT_SHIFT:
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		if r, err = regs(args[0], args[1]); err != nil {
			return
		}
		if insn.Format == FORMAT_SHIFT {
			if imm, err = asm.immediate(args[2], fitsUnsigned(31)); err != nil {
				return
			}
			imm |= insn.Funct7 << 5
		} else if imm, err = asm.immediate(args[2], isa.FitsI); err != nil {
			return
		}
		code = isa.EncodeI(insn.Op, r[0], insn.Funct3, r[1], imm)
	case FORMAT_LOAD, FORMAT_STORE:
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		if r, err = regs(args[0], args[2]); err != nil {
			return
		}
		if imm, err = asm.immediate(args[1], isa.FitsI); err != nil {
			return
		}
		if insn.Format == FORMAT_LOAD {
			code = isa.EncodeI(insn.Op, r[0], insn.Funct3, r[1], imm)
		} else {
			code = isa.EncodeS(insn.Op, insn.Funct3, r[1], r[0], imm)
		}
	case FORMAT_BRANCH:
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		if r, err = regs(args[0], args[1]); err != nil {
			return
		}
		if imm, label, err = asm.target(args[2], isa.FitsB); err != nil {
			return
		}
		if len(label) > 0 {
			link = LINK_BRANCH
		}
		code = isa.EncodeB(insn.Op, insn.Funct3, r[0], r[1], imm)
	case FORMAT_U:
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if r, err = regs(args[0]); err != nil {
			return
		}
		if imm, err = asm.immediate(args[1], fitsUnsigned(0xfffff)); err != nil {
			return
		}
		code = isa.EncodeU(insn.Op, r[0], imm<<12)
	case FORMAT_JAL:
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if r, err = regs(args[0]); err != nil {
			return
		}
		if imm, label, err = asm.target(args[1], isa.FitsJ); err != nil {
			return
		}
		if len(label) > 0 {
			link = LINK_JAL
		}
		code = isa.EncodeJ(insn.Op, r[0], imm)
	case FORMAT_JALR:
		if err = argCount(args, 2, 3); err != nil {
			return
		}
		offset := "0"
		switch {
		case len(args) == 2:
			// jalr rd, rs1
		case isRegister(args[1]):
			// jalr rd, rs1, offset
			offset = args[2]
			args = args[:2]
		default:
			// jalr rd, offset(rs1)
			offset = args[1]
			args = []string{args[0], args[2]}
		}
		if r, err = regs(args...); err != nil {
			return
		}
		if imm, err = asm.immediate(offset, isa.FitsI); err != nil {
			return
		}
		code = isa.EncodeI(insn.Op, r[0], 0, r[1], imm)
	case FORMAT_CSR, FORMAT_CSRI:
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		var csr uint32
		if csr, err = asm.csrOf(args[1]); err != nil {
			return
		}
		if insn.Format == FORMAT_CSR {
			r, err = regs(args[0], args[2])
		} else {
			r, err = regs(args[0])
			if err == nil {
				imm, err = asm.immediate(args[2], fitsUnsigned(31))
				r = append(r, imm)
			}
		}
		if err != nil {
			return
		}
		code = isa.EncodeI(insn.Op, r[0], insn.Funct3, r[1], csr)
	case FORMAT_AMO, FORMAT_LR:
		// rd, [rs2,] 0(rs1), or rd, [rs2,] rs1
		count := 3
		if insn.Format == FORMAT_LR {
			count = 2
		}
		if err = argCount(args, count, count+1); err != nil {
			return
		}
		if len(args) == count+1 {
			if imm, err = asm.valueOf(args[count-1]); err != nil || imm != 0 {
				err = ErrOffsetInvalid
				return
			}
			args = slices.Delete(slices.Clone(args), count-1, count)
		}
		if r, err = regs(args...); err != nil {
			return
		}
		rs2 := uint32(0)
		if insn.Format == FORMAT_AMO {
			rs2 = r[1]
		}
		code = isa.EncodeR(insn.Op, r[0], insn.Funct3, r[len(r)-1], rs2, insn.Funct7)
	case FORMAT_FIXED:
		if err = argCount(args, 0, 0); err != nil {
			return
		}
		code = insn.Fixed
	}

	return
}
