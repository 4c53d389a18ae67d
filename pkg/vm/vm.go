package vm

import (
	"errors"
	"fmt"
	"math"
)

// NumRegisters is the size of the register file. Register operands are a
// single byte, but only indices below NumRegisters are legal.
const NumRegisters = 32

var (
	ErrProgramCounterOutOfBounds = errors.New("program counter out of bounds")
	ErrRegisterOutOfBounds       = errors.New("register out of bounds")
	ErrDivisionByZero            = errors.New("division by zero")
	ErrInvalidOpcode             = errors.New("invalid opcode")
)

// stepResult is the outcome of executing a single instruction.
type stepResult int

const (
	stepContinue stepResult = iota // keep fetching
	stepHalt                       // HLT executed or program exhausted
	stepFault                      // a VM error occurred; see the returned error
)

// VM is a register machine executing the fixed-width bytecode produced by
// pkg/asm. All state is owned by one instance; nothing here is safe for
// concurrent use.
type VM struct {
	registers [NumRegisters]int32
	pc        int
	program   []byte

	// remainder holds the integer remainder of the most recent DIV.
	remainder uint32

	halted  bool
	faulted bool
}

func New() *VM {
	return &VM{}
}

// AddProgram replaces the loaded program and resets all execution state.
func (v *VM) AddProgram(program []byte) {
	v.program = program
	v.Reset()
}

// Reset re-arms the currently loaded program: registers, pc, and remainder
// are cleared and the machine leaves any halted or faulted state.
func (v *VM) Reset() {
	v.registers = [NumRegisters]int32{}
	v.pc = 0
	v.remainder = 0
	v.halted = false
	v.faulted = false
}

// Run executes instructions until a HLT, program exhaustion, or the first
// error. Registers written before a fault are preserved for inspection.
func (v *VM) Run() error {
	for {
		cont, err := v.RunOnce()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// RunOnce executes exactly one instruction. The returned bool is false when
// execution should stop (HLT executed or program exhausted). Run is built
// on the same step logic, so stepping and running cannot diverge.
func (v *VM) RunOnce() (bool, error) {
	res, err := v.step()
	if err != nil {
		v.faulted = true
		return false, err
	}
	return res == stepContinue, nil
}

// step fetches, decodes, and executes one instruction.
//
// Exhaustion is only a clean stop when pc lands exactly on the end of the
// buffer, which is where sequential execution of whole instructions ends
// up. A pc strictly past the end can only come from a jump to an
// out-of-range target and faults instead.
func (v *VM) step() (stepResult, error) {
	if v.halted || v.faulted {
		return stepHalt, nil
	}
	if v.pc == len(v.program) {
		return stepHalt, nil
	}
	if v.pc > len(v.program) || v.pc < 0 {
		return stepFault, fmt.Errorf("%w: pc=%d len=%d", ErrProgramCounterOutOfBounds, v.pc, len(v.program))
	}

	op := decodeOpcode(v.program[v.pc])
	v.pc++

	switch op {
	case OpHLT:
		v.halted = true
		return stepHalt, nil

	case OpLOAD:
		reg, err := v.nextByte()
		if err != nil {
			return stepFault, err
		}
		value, err := v.next16()
		if err != nil {
			return stepFault, err
		}
		if err := checkRegister(reg); err != nil {
			return stepFault, err
		}
		v.registers[reg] = int32(value)

	case OpADD, OpSUB, OpMUL:
		r1, r2, dst, err := v.nextThreeRegisters()
		if err != nil {
			return stepFault, err
		}
		a := int64(v.registers[r1])
		b := int64(v.registers[r2])
		var result int64
		switch op {
		case OpADD:
			result = a + b
		case OpSUB:
			result = a - b
		case OpMUL:
			result = a * b
		}
		// Overflow clamps to zero; it never wraps and never faults.
		if result > math.MaxInt32 || result < math.MinInt32 {
			result = 0
		}
		v.registers[dst] = int32(result)

	case OpDIV:
		r1, r2, dst, err := v.nextThreeRegisters()
		if err != nil {
			return stepFault, err
		}
		divisor := v.registers[r2]
		if divisor == 0 {
			return stepFault, fmt.Errorf("%w: r%d", ErrDivisionByZero, r2)
		}
		dividend := v.registers[r1]
		v.registers[dst] = dividend / divisor
		v.remainder = uint32(dividend % divisor)

	case OpJMP:
		reg, err := v.nextByte()
		if err != nil {
			return stepFault, err
		}
		if err := checkRegister(reg); err != nil {
			return stepFault, err
		}
		// Absolute jump. The target is not bounds-checked here; a bad
		// target faults on the next fetch.
		v.pc = int(uint32(v.registers[reg]))

	case OpJMPF:
		reg, err := v.nextByte()
		if err != nil {
			return stepFault, err
		}
		if err := checkRegister(reg); err != nil {
			return stepFault, err
		}
		// Relative forward jump. The register's bits are consumed as an
		// unsigned magnitude, so backward displacement is not
		// representable.
		v.pc += int(uint32(v.registers[reg]))

	case OpIGL:
		return stepFault, fmt.Errorf("%w: byte %d at pc %d", ErrInvalidOpcode, v.program[v.pc-1], v.pc-1)
	}

	return stepContinue, nil
}

// nextByte reads one operand byte at pc. Running off the end of the buffer
// mid-instruction is a fault, never a clean stop.
func (v *VM) nextByte() (byte, error) {
	if v.pc >= len(v.program) {
		return 0, fmt.Errorf("%w: operand read at pc %d", ErrProgramCounterOutOfBounds, v.pc)
	}
	b := v.program[v.pc]
	v.pc++
	return b, nil
}

// next16 reads a big-endian 16-bit operand at pc.
func (v *VM) next16() (uint16, error) {
	hi, err := v.nextByte()
	if err != nil {
		return 0, err
	}
	lo, err := v.nextByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (v *VM) nextThreeRegisters() (byte, byte, byte, error) {
	r1, err := v.nextByte()
	if err != nil {
		return 0, 0, 0, err
	}
	r2, err := v.nextByte()
	if err != nil {
		return 0, 0, 0, err
	}
	r3, err := v.nextByte()
	if err != nil {
		return 0, 0, 0, err
	}
	for _, r := range [3]byte{r1, r2, r3} {
		if err := checkRegister(r); err != nil {
			return 0, 0, 0, err
		}
	}
	return r1, r2, r3, nil
}

func checkRegister(idx byte) error {
	if int(idx) >= NumRegisters {
		return fmt.Errorf("%w: r%d", ErrRegisterOutOfBounds, idx)
	}
	return nil
}

// GetRegister returns the signed value held in register idx.
func (v *VM) GetRegister(idx int) (int32, error) {
	if idx < 0 || idx >= NumRegisters {
		return 0, fmt.Errorf("%w: r%d", ErrRegisterOutOfBounds, idx)
	}
	return v.registers[idx], nil
}

// Registers returns a copy of the full register file.
func (v *VM) Registers() [NumRegisters]int32 {
	return v.registers
}

// PC returns the current program counter (a byte offset).
func (v *VM) PC() int {
	return v.pc
}

// Remainder returns the remainder recorded by the most recent DIV.
func (v *VM) Remainder() uint32 {
	return v.remainder
}

// Program returns the loaded bytecode buffer.
func (v *VM) Program() []byte {
	return v.program
}

// Halted reports whether the machine has executed a HLT or faulted.
func (v *VM) Halted() bool {
	return v.halted || v.faulted
}
