package vm

import (
	"bytes"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	v := New()
	v.AddProgram([]byte{
		byte(OpLOAD), 0, 0, 10,
		byte(OpLOAD), 1, 0, 3,
		byte(OpDIV), 0, 1, 2,
		byte(OpHLT),
	})

	// Step past the two LOADs, then snapshot mid-program.
	for i := 0; i < 2; i++ {
		if _, err := v.RunOnce(); err != nil {
			t.Fatalf("RunOnce: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := v.SaveState(&buf); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	restored := New()
	if err := restored.RestoreState(&buf); err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if restored.PC() != v.PC() {
		t.Fatalf("pc: expected %d, got %d", v.PC(), restored.PC())
	}
	if restored.Registers() != v.Registers() {
		t.Fatalf("registers: expected %v, got %v", v.Registers(), restored.Registers())
	}

	// The restored machine continues where the original left off.
	if err := restored.Run(); err != nil {
		t.Fatalf("Run after restore: %v", err)
	}
	if got, _ := restored.GetRegister(2); got != 3 {
		t.Errorf("r2: expected 3, got %d", got)
	}
	if restored.Remainder() != 1 {
		t.Errorf("remainder: expected 1, got %d", restored.Remainder())
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	v := New()
	if err := v.RestoreState(bytes.NewReader([]byte("not json"))); err == nil {
		t.Errorf("expected error restoring malformed snapshot")
	}
}
