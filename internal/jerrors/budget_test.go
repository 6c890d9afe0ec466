package jerrors

import (
	"testing"
	"time"
)

func TestChargeDeductsGasAndSteps(t *testing.T) {
	b := NewBudget(10, 5)
	ok := b.Charge(3)
	if !ok {
		t.Fatalf("Charge(3) = false, want true (budget not yet exhausted)")
	}
	if b.Gas != 7 || b.Steps != 4 {
		t.Errorf("Gas=%d Steps=%d, want 7,4", b.Gas, b.Steps)
	}
}

func TestChargeReportsExhaustion(t *testing.T) {
	b := NewBudget(2, 5)
	if ok := b.Charge(3); ok {
		t.Errorf("Charge(3) over a 2-gas budget = true, want false")
	}
	if !b.Exhausted() {
		t.Errorf("Exhausted() = false after overdraw")
	}
}

func TestChargeAppliesPartialEvenOnOverdraw(t *testing.T) {
	b := NewBudget(2, 5)
	b.Charge(3)
	if b.Gas != -1 {
		t.Errorf("Gas = %d, want -1 (partial charge still applied)", b.Gas)
	}
}

func TestStepsExhaustionIndependentOfGas(t *testing.T) {
	b := NewBudget(1000, 1)
	b.Charge(1)
	if !b.Exhausted() {
		t.Errorf("Exhausted() = false with Steps at 0")
	}
}

func TestCheckTerminalMemory(t *testing.T) {
	b := NewBudget(100, 100)
	b.MaxMemory = 5
	b.Allocate(10)
	if err := b.CheckTerminal(0); err == nil {
		t.Errorf("CheckTerminal = nil, want ResourceExhausted(memory)")
	}
}

func TestCheckTerminalDeadline(t *testing.T) {
	b := NewBudget(100, 100)
	b.Deadline = time.Now().Add(-time.Second)
	if err := b.CheckTerminal(0); err == nil {
		t.Errorf("CheckTerminal = nil, want ResourceExhausted(deadline)")
	}
}

func TestCheckTerminalStackDepth(t *testing.T) {
	b := NewBudget(100, 100)
	b.MaxStackDepth = 5
	if err := b.CheckTerminal(6); err == nil {
		t.Errorf("CheckTerminal = nil, want ResourceExhausted(stack depth)")
	}
	if err := b.CheckTerminal(5); err != nil {
		t.Errorf("CheckTerminal(5) with MaxStackDepth=5 = %v, want nil", err)
	}
}

func TestCheckTerminalZeroCapsAreUnbounded(t *testing.T) {
	b := NewBudget(100, 100)
	if err := b.CheckTerminal(1_000_000); err != nil {
		t.Errorf("CheckTerminal with zero caps = %v, want nil", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBudget(10, 10)
	cp := b.Clone()
	cp.Charge(5)
	if b.Gas != 10 {
		t.Errorf("original Gas mutated by clone: %d", b.Gas)
	}
	if cp.Gas != 5 {
		t.Errorf("clone Gas = %d, want 5", cp.Gas)
	}
}

func TestGasForNary(t *testing.T) {
	if got := GasForNary(2); got != 5 {
		t.Errorf("GasForNary(2) = %d, want 5", got)
	}
}
