package asm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"regvm/pkg/vm"
)

func TestParseRegisterRange(t *testing.T) {
	for n := 0; n < vm.NumRegisters; n++ {
		reg, err := parseRegister(fmt.Sprintf("r%d", n), 1)
		assert.NoError(t, err, "r%d must be accepted", n)
		assert.Equal(t, byte(n), reg)
	}

	bad := []string{"r32", "r99", "r255", "x5", "5", "r", "r-1", "rr1", ""}
	for _, token := range bad {
		_, err := parseRegister(token, 1)
		assert.ErrorIs(t, err, ErrUnknownRegister, "token %q", token)
	}
}

func TestCompileLoad(t *testing.T) {
	program, err := Compile("LOAD r0 500")
	assert.NoError(t, err)
	assert.Len(t, program, MinProgramSize)
	assert.Equal(t, []byte{1, 0, 1, 244}, program[:4])
	for _, b := range program[4:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestCompileFullInstructionSet(t *testing.T) {
	source := `
	; exercise every mnemonic once
	LOAD r1 3
	ADD r0 r1 r2
	SUB r0 r1 r3
	MUL r0 r1 r4
	DIV r0 r1 r5
	JMP r6
	JMPF r7
	HLT
	`
	program, err := Compile(source)
	assert.NoError(t, err)
	want := []byte{
		1, 1, 0, 3,
		2, 0, 1, 2,
		3, 0, 1, 3,
		4, 0, 1, 4,
		5, 0, 1, 5,
		6, 6,
		7, 7,
		0,
	}
	assert.Equal(t, want, program[:len(want)])
	assert.Len(t, program, MinProgramSize)
}

func TestCompileIsCaseInsensitive(t *testing.T) {
	upper, err := Compile("LOAD R0 500")
	assert.NoError(t, err)
	lower, err := Compile("load r0 500")
	assert.NoError(t, err)
	assert.Equal(t, upper, lower)
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	source := "\n; full line comment\n   \nLOAD r0 1 ; trailing comment\n\nHLT\n"
	program, err := Compile(source)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 1, 0}, program[:5])
}

func TestForwardLabelReference(t *testing.T) {
	// "end" is defined after its use and must resolve to the offset
	// following the two 4-byte LOADs.
	source := `
	LOAD r0 10
	LOAD r1 end
	end:
	HLT
	`
	program, err := Compile(source)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 0, 8}, program[4:8], "label must resolve to offset 8")
}

func TestLabelOffsets(t *testing.T) {
	a := NewAssembler()
	source := `
	start:
	LOAD r0 1
	mid:
	JMP r0
	end:
	HLT
	`
	_, err := a.Compile(source)
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"start": 0, "mid": 4, "end": 6}, a.Symbols())
}

func TestSymbolsPersistAcrossCompiles(t *testing.T) {
	a := NewAssembler()
	_, err := a.Compile("entry:\nHLT")
	assert.NoError(t, err)

	// The label from the first program is still visible.
	program, err := a.Compile("LOAD r0 entry\nHLT")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0}, program[:4])
}

func TestDuplicateLabel(t *testing.T) {
	_, err := Compile("loop:\nHLT\nloop:\nHLT")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"unknown mnemonic", "FROB r0 r1 r2", ErrUnknownInstruction},
		{"unknown mnemonic fails pass1", "FROB r0\nHLT", ErrUnknownInstruction},
		{"bad register", "LOAD r32 5", ErrUnknownRegister},
		{"not a register", "ADD r0 five r2", ErrUnknownRegister},
		{"undefined label", "LOAD r0 missing", ErrLabelNotFound},
		{"malformed value", "LOAD r0 12abc", ErrSyntax},
		{"value out of range", "LOAD r0 70000", ErrSyntax},
		{"missing operands", "LOAD r0", ErrSyntax},
		{"extra operands", "HLT r0", ErrSyntax},
		{"bad arity arithmetic", "ADD r0 r1", ErrSyntax},
		{"invalid label line", "9lives:", ErrSyntax},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			program, err := Compile(tc.source)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, program, "no partial bytecode on error")
		})
	}
}

func TestSourceMap(t *testing.T) {
	a := NewAssembler()
	_, err := a.Compile("LOAD r0 1\nLOAD r1 2\nHLT")
	assert.NoError(t, err)
	assert.Equal(t, map[int]int{0: 1, 4: 2, 8: 3}, a.SourceMap())
}

func TestInstructionWidth(t *testing.T) {
	tests := []struct {
		mnemonic string
		want     int
		ok       bool
	}{
		{"HLT", 1, true},
		{"LOAD", 4, true},
		{"ADD", 4, true},
		{"JMP", 2, true},
		{"JMPF", 2, true},
		{"NOP", 0, false},
	}
	for _, tc := range tests {
		got, ok := instructionWidth(tc.mnemonic)
		assert.Equal(t, tc.ok, ok, "mnemonic %s", tc.mnemonic)
		assert.Equal(t, tc.want, got, "mnemonic %s", tc.mnemonic)
	}
}

func TestCompiledProgramRuns(t *testing.T) {
	program, err := Compile("LOAD r0 500")
	assert.NoError(t, err)

	machine := vm.New()
	machine.AddProgram(program)
	assert.NoError(t, machine.Run())

	got, err := machine.GetRegister(0)
	assert.NoError(t, err)
	assert.Equal(t, int32(500), got)
}
