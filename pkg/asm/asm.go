package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"regvm/pkg/vm"
)

// MinProgramSize is the minimum length of an assembled program. Shorter
// output is zero-padded up to this size as a safety margin for execution.
const MinProgramSize = 32

var (
	ErrSyntax             = errors.New("syntax error")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrUnknownRegister    = errors.New("unknown register")
	ErrLabelNotFound      = errors.New("label not found")
)

var zeroOperandOps = map[string]vm.Opcode{
	"HLT": vm.OpHLT,
}

var oneRegisterOps = map[string]vm.Opcode{
	"JMP":  vm.OpJMP,
	"JMPF": vm.OpJMPF,
}

var threeRegisterOps = map[string]vm.Opcode{
	"ADD": vm.OpADD,
	"SUB": vm.OpSUB,
	"MUL": vm.OpMUL,
	"DIV": vm.OpDIV,
}

var regAndValueOps = map[string]vm.Opcode{
	"LOAD": vm.OpLOAD,
}

// Assembler translates assembly source into bytecode in two passes:
// pass 1 collects label offsets, pass 2 emits instructions. The symbol
// table persists for the life of the instance, so labels defined in one
// Compile call remain visible to later calls.
type Assembler struct {
	symbols   map[string]int
	sourceMap map[int]int
}

func NewAssembler() *Assembler {
	return &Assembler{
		symbols: make(map[string]int),
	}
}

// Compile is a convenience for one-shot assembly with a fresh symbol table.
func Compile(source string) ([]byte, error) {
	return NewAssembler().Compile(source)
}

// sourceLine is an instruction line surviving pass 1, kept with its
// original 1-based line number for diagnostics and the source map.
type sourceLine struct {
	text   string
	lineNo int
}

// Compile assembles source into bytecode. On success the result is at
// least MinProgramSize bytes long. On any error no bytecode is returned.
func (a *Assembler) Compile(source string) ([]byte, error) {
	instructions, err := a.pass1(source)
	if err != nil {
		return nil, err
	}
	return a.pass2(instructions)
}

// SourceMap returns the bytecode-offset to source-line mapping recorded by
// the most recent successful Compile.
func (a *Assembler) SourceMap() map[int]int {
	return a.sourceMap
}

// Symbols returns the label table accumulated so far.
func (a *Assembler) Symbols() map[string]int {
	return a.symbols
}

// pass1 strips comments and blank lines, records label offsets, and
// size-estimates every instruction so that labels defined later in the
// source already have correct offsets when pass 2 resolves them.
func (a *Assembler) pass1(source string) ([]sourceLine, error) {
	var instructions []sourceLine
	offset := 0

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			label := strings.TrimSpace(strings.TrimSuffix(line, ":"))
			if !isIdentifier(label) {
				return nil, fmt.Errorf("%w on line %d: invalid label %q", ErrSyntax, lineNo, label)
			}
			if _, exists := a.symbols[label]; exists {
				return nil, fmt.Errorf("%w on line %d: duplicate label %q", ErrSyntax, lineNo, label)
			}
			a.symbols[label] = offset
			continue
		}

		mnemonic := strings.ToUpper(strings.Fields(line)[0])
		width, ok := instructionWidth(mnemonic)
		if !ok {
			return nil, fmt.Errorf("%w on line %d: %s", ErrUnknownInstruction, lineNo, mnemonic)
		}
		offset += width
		instructions = append(instructions, sourceLine{text: line, lineNo: lineNo})
	}

	return instructions, nil
}

// pass2 re-processes the surviving instruction lines in order, resolving
// operands against the symbol table and appending encoded bytes.
func (a *Assembler) pass2(instructions []sourceLine) ([]byte, error) {
	program := make([]byte, 0, MinProgramSize)
	sourceMap := make(map[int]int)

	for _, inst := range instructions {
		tokens := strings.Fields(inst.text)
		mnemonic := strings.ToUpper(tokens[0])
		operands := tokens[1:]
		sourceMap[len(program)] = inst.lineNo

		switch {
		case hasOp(zeroOperandOps, mnemonic):
			if len(operands) != 0 {
				return nil, arityError(mnemonic, 0, inst)
			}
			program = append(program, byte(zeroOperandOps[mnemonic]))

		case hasOp(regAndValueOps, mnemonic):
			if len(operands) != 2 {
				return nil, arityError(mnemonic, 2, inst)
			}
			reg, err := parseRegister(operands[0], inst.lineNo)
			if err != nil {
				return nil, err
			}
			value, err := a.parseValue(operands[1], inst.lineNo)
			if err != nil {
				return nil, err
			}
			// 16-bit value operand is big-endian.
			program = append(program, byte(regAndValueOps[mnemonic]), reg, byte(value>>8), byte(value))

		case hasOp(threeRegisterOps, mnemonic):
			if len(operands) != 3 {
				return nil, arityError(mnemonic, 3, inst)
			}
			program = append(program, byte(threeRegisterOps[mnemonic]))
			for _, tok := range operands {
				reg, err := parseRegister(tok, inst.lineNo)
				if err != nil {
					return nil, err
				}
				program = append(program, reg)
			}

		case hasOp(oneRegisterOps, mnemonic):
			if len(operands) != 1 {
				return nil, arityError(mnemonic, 1, inst)
			}
			reg, err := parseRegister(operands[0], inst.lineNo)
			if err != nil {
				return nil, err
			}
			program = append(program, byte(oneRegisterOps[mnemonic]), reg)

		default:
			// pass1 already screened mnemonics; keep the same failure
			// mode for safety.
			return nil, fmt.Errorf("%w on line %d: %s", ErrUnknownInstruction, inst.lineNo, mnemonic)
		}
	}

	for len(program) < MinProgramSize {
		program = append(program, 0)
	}

	a.sourceMap = sourceMap
	return program, nil
}

func arityError(mnemonic string, want int, inst sourceLine) error {
	return fmt.Errorf("%w on line %d: %s expects %d operands: %q", ErrSyntax, inst.lineNo, mnemonic, want, inst.text)
}

func hasOp(table map[string]vm.Opcode, mnemonic string) bool {
	_, ok := table[mnemonic]
	return ok
}

// instructionWidth returns the encoded byte length of an instruction.
func instructionWidth(mnemonic string) (int, bool) {
	for _, table := range []map[string]vm.Opcode{zeroOperandOps, oneRegisterOps, threeRegisterOps, regAndValueOps} {
		if op, ok := table[mnemonic]; ok {
			return op.Width(), true
		}
	}
	return 0, false
}

// parseRegister accepts tokens of the form r<N> with 0 <= N < 32.
func parseRegister(token string, lineNo int) (byte, error) {
	lower := strings.ToLower(token)
	if !strings.HasPrefix(lower, "r") {
		return 0, fmt.Errorf("%w on line %d: %q", ErrUnknownRegister, lineNo, token)
	}
	n, err := strconv.ParseUint(lower[1:], 10, 8)
	if err != nil || n >= vm.NumRegisters {
		return 0, fmt.Errorf("%w on line %d: %q", ErrUnknownRegister, lineNo, token)
	}
	return byte(n), nil
}

// parseValue resolves a numeric operand: label references win over plain
// integers. An identifier missing from the symbol table is a distinct
// ErrLabelNotFound; anything else unparseable is ErrSyntax.
func (a *Assembler) parseValue(token string, lineNo int) (uint16, error) {
	if offset, ok := a.symbols[token]; ok {
		return uint16(offset), nil
	}
	value, err := strconv.ParseUint(token, 10, 16)
	if err != nil {
		if isIdentifier(token) {
			return 0, fmt.Errorf("%w on line %d: %q", ErrLabelNotFound, lineNo, token)
		}
		return 0, fmt.Errorf("%w on line %d: invalid value %q", ErrSyntax, lineNo, token)
	}
	return uint16(value), nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
