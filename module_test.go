package gosynth

import "testing"

func TestDescriptorRejectsDuplicateNameInSameNamespace(t *testing.T) {
	d := newDescriptor(0)
	WithIn[Signal](d, "x")
	WithIn[Signal](d, "x")
	if d.dupErr == nil {
		t.Fatal("expected dupErr after registering \"x\" twice as an in-signal port")
	}
}

func TestDescriptorAllowsSameNameAcrossNamespaces(t *testing.T) {
	d := newDescriptor(0)
	WithIn[Signal](d, "shared")
	WithOut[Signal](d, "shared")
	WithIn[MidiEvents](d, "shared")
	if d.dupErr != nil {
		t.Fatalf("unexpected dupErr: %v", d.dupErr)
	}
}

func TestVariadicPortsGetNumArgsSlots(t *testing.T) {
	d := newDescriptor(4)
	h := WithVariadicIn[Signal](d, "ins")
	if len(d.inSignal) != 4 {
		t.Fatalf("len(inSignal) = %d, want 4", len(d.inSignal))
	}
	if _, err := h.At(4); err == nil {
		t.Fatal("expected out-of-bounds error at index 4 of a 4-slot variadic port")
	}
	if _, err := h.At(3); err != nil {
		t.Fatalf("At(3): %v", err)
	}
}

func TestVariadicPortWithZeroInstances(t *testing.T) {
	d := newDescriptor(0)
	WithVariadicOut[Signal](d, "outs")
	if d.outSignal != 0 {
		t.Fatalf("outSignal = %d, want 0", d.outSignal)
	}
	if d.dupErr != nil {
		t.Fatalf("unexpected dupErr: %v", d.dupErr)
	}
}
