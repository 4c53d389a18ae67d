package compiler

import (
	"fmt"
	"strings"

	"regvm/pkg/vm"
)

// Generator lowers an AST into assembly text consumable by pkg/asm.
//
// Register allocation is a simple bump counter over the VM's register
// file: every expression result gets a fresh register and declared
// variables keep theirs for the life of the program. With 32 registers
// that bounds program size, which is all this language needs.
type Generator struct {
	asm        []string
	regCounter int
	vars       map[string]int
	printRegs  []int
}

func newGenerator() *Generator {
	return &Generator{vars: make(map[string]int)}
}

// Generate lowers prog to assembly text. The returned register indices
// identify, in order, the value of each Print statement; the ISA has no
// output instruction, so the driver reads them from the register file
// after the program halts.
func Generate(prog *Program) (string, []int, error) {
	g := newGenerator()

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *DeclareStmt:
			reg, err := g.genExpr(s.Value)
			if err != nil {
				return "", nil, err
			}
			g.vars[s.Name] = reg
			g.emit("; %s -> r%d", s.Name, reg)
		case *PrintStmt:
			reg, err := g.genExpr(s.Value)
			if err != nil {
				return "", nil, err
			}
			g.printRegs = append(g.printRegs, reg)
			g.emit("; print r%d", reg)
		default:
			return "", nil, fmt.Errorf("unsupported statement %T", stmt)
		}
	}

	g.emit("HLT")
	return strings.Join(g.asm, "\n"), g.printRegs, nil
}

func (g *Generator) emit(format string, args ...any) {
	g.asm = append(g.asm, fmt.Sprintf(format, args...))
}

func (g *Generator) genExpr(expr Expr) (int, error) {
	switch e := expr.(type) {
	case *Literal:
		if e.Value < 0 || e.Value > 0xFFFF {
			return 0, fmt.Errorf("literal %d outside the 16-bit LOAD range", e.Value)
		}
		reg, err := g.allocRegister()
		if err != nil {
			return 0, err
		}
		g.emit("LOAD r%d %d", reg, e.Value)
		return reg, nil

	case *VarRef:
		reg, ok := g.vars[e.Name]
		if !ok {
			return 0, fmt.Errorf("undefined variable %q", e.Name)
		}
		return reg, nil

	case *BinaryExpr:
		left, err := g.genExpr(e.Left)
		if err != nil {
			return 0, err
		}
		right, err := g.genExpr(e.Right)
		if err != nil {
			return 0, err
		}
		dst, err := g.allocRegister()
		if err != nil {
			return 0, err
		}
		mnemonic, ok := binOpMnemonics[e.Op]
		if !ok {
			return 0, fmt.Errorf("unsupported operator %s", e.Op)
		}
		g.emit("%s r%d r%d r%d", mnemonic, left, right, dst)
		return dst, nil
	}

	return 0, fmt.Errorf("unsupported expression %T", expr)
}

var binOpMnemonics = map[TokenType]string{
	PLUS:  "ADD",
	MINUS: "SUB",
	STAR:  "MUL",
	SLASH: "DIV",
}

func (g *Generator) allocRegister() (int, error) {
	if g.regCounter >= vm.NumRegisters {
		return 0, fmt.Errorf("out of registers: program needs more than %d", vm.NumRegisters)
	}
	reg := g.regCounter
	g.regCounter++
	return reg, nil
}
