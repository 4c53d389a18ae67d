package compiler

import (
	"fmt"

	"regvm/pkg/asm"
)

// Compile runs the whole front end: lex, parse, generate assembly, and
// assemble to bytecode. The assembly text is returned alongside the
// bytecode so callers can show it (and, on assembly errors, returned with
// the error for diagnosis). printRegs lists the registers holding each
// Print value, in source order.
func Compile(src string) (assembly string, bytecode []byte, printRegs []int, err error) {
	tokens, err := Lex(src)
	if err != nil {
		return "", nil, nil, fmt.Errorf("lex error: %w", err)
	}

	prog, err := Parse(tokens, src)
	if err != nil {
		return "", nil, nil, fmt.Errorf("parse error: %w", err)
	}

	assembly, printRegs, err = Generate(prog)
	if err != nil {
		return "", nil, nil, fmt.Errorf("codegen error: %w", err)
	}

	bytecode, err = asm.NewAssembler().Compile(assembly)
	if err != nil {
		return assembly, nil, nil, fmt.Errorf("assembly error: %w", err)
	}

	return assembly, bytecode, printRegs, nil
}
