package vm

import (
	"encoding/json"
	"fmt"
	"io"
)

// snapshotState is the JSON-serializable image of a VM's execution state.
type snapshotState struct {
	Registers [NumRegisters]int32 `json:"registers"`
	PC        int                 `json:"pc"`
	Remainder uint32              `json:"remainder"`
	Halted    bool                `json:"halted"`
	Program   []byte              `json:"program"`
}

// SaveState writes the complete execution state, including the loaded
// program, as JSON. A saved machine can be brought back with RestoreState
// and continued from the same pc.
func (v *VM) SaveState(w io.Writer) error {
	state := snapshotState{
		Registers: v.registers,
		PC:        v.pc,
		Remainder: v.remainder,
		Halted:    v.halted,
		Program:   v.program,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encoding vm state: %w", err)
	}
	return nil
}

// RestoreState replaces the machine's entire state with a snapshot
// previously written by SaveState. A faulted flag is not part of the
// snapshot; restoring always yields a runnable (or cleanly halted) machine.
func (v *VM) RestoreState(r io.Reader) error {
	var state snapshotState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("decoding vm state: %w", err)
	}
	v.registers = state.Registers
	v.pc = state.PC
	v.remainder = state.Remainder
	v.halted = state.Halted
	v.faulted = false
	v.program = state.Program
	return nil
}
