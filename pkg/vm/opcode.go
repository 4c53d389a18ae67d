package vm

import "fmt"

// Opcode identifies the operation encoded in the first byte of an
// instruction.
type Opcode byte

const (
	OpHLT  Opcode = 0x00
	OpLOAD Opcode = 0x01
	OpADD  Opcode = 0x02
	OpSUB  Opcode = 0x03
	OpMUL  Opcode = 0x04
	OpDIV  Opcode = 0x05
	OpJMP  Opcode = 0x06
	OpJMPF Opcode = 0x07

	// OpIGL is the decode result for any byte outside the table above.
	// It is never emitted by the assembler.
	OpIGL Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	OpHLT:  "HLT",
	OpLOAD: "LOAD",
	OpADD:  "ADD",
	OpSUB:  "SUB",
	OpMUL:  "MUL",
	OpDIV:  "DIV",
	OpJMP:  "JMP",
	OpJMPF: "JMPF",
	OpIGL:  "IGL",
}

// decodeOpcode maps a raw program byte to an Opcode. Decoding is total:
// undefined bytes come back as OpIGL rather than leaking raw values into
// the dispatch switch.
func decodeOpcode(b byte) Opcode {
	op := Opcode(b)
	if _, ok := opcodeNames[op]; !ok || op == OpIGL {
		return OpIGL
	}
	return op
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// Width returns the total encoded size of an instruction with this
// opcode, including the opcode byte itself.
func (op Opcode) Width() int {
	switch op {
	case OpHLT:
		return 1
	case OpJMP, OpJMPF:
		return 2
	case OpLOAD, OpADD, OpSUB, OpMUL, OpDIV:
		return 4
	default:
		return 1
	}
}
