package gosynth

import (
	"errors"
	"testing"
)

type passthroughModule struct {
	in  InHandle[Signal]
	out OutHandle[Signal]
}

func newPassthrough(d *Descriptor, _ struct{}, _ int) (Module, error) {
	return &passthroughModule{
		in:  WithInDefault[Signal](d, "in", 1),
		out: WithOut[Signal](d, "out"),
	}, nil
}

func (m *passthroughModule) FillBuffers(in *BuffersIn, out *BuffersOut) {
	src := GetIn(in, m.in)
	dst := GetOut(out, m.out)
	for i := range dst {
		dst[i] = src[i]
	}
}

type constModule struct {
	value Signal
	out   OutHandle[Signal]
}

func newConst(value Signal) Initializer[struct{}] {
	return func(d *Descriptor, _ struct{}, _ int) (Module, error) {
		return &constModule{value: value, out: WithOut[Signal](d, "out")}, nil
	}
}

func (m *constModule) FillBuffers(_ *BuffersIn, out *BuffersOut) {
	dst := GetOut(out, m.out)
	for i := range dst {
		dst[i] = m.value
	}
}

func newTestHost(t *testing.T) *Host {
	t.Helper()
	h, err := NewHost(nil)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	return h
}

func TestConstantDefaultBeforeLink(t *testing.T) {
	h := newTestHost(t)
	pt, err := CreateModule(h, "pt", newPassthrough, struct{}{})
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	in, err := In[Signal](h, pt, "in")
	if err != nil {
		t.Fatalf("In: %v", err)
	}
	out, err := Out[Signal](h, pt, "out")
	if err != nil {
		t.Fatalf("Out: %v", err)
	}
	outputIn, err := In[Signal](h, h.OutputModule(), "in")
	if err != nil {
		t.Fatalf("In(output): %v", err)
	}
	if err := Link[Signal](h, out, outputIn); err != nil {
		t.Fatalf("Link: %v", err)
	}

	h.ProcessBlock()

	mi := h.modules[pt.idx]
	got := GetIn(&BuffersIn{signal: gatherIn[Signal](h, mi)}, in.Port)
	for i, v := range got {
		if v != 1 {
			t.Fatalf("default constant at %d = %v, want 1", i, v)
		}
	}
}

func TestLinkAndProcessBlockPropagatesValue(t *testing.T) {
	h := newTestHost(t)
	src, err := CreateModule(h, "src", newConst(3), struct{}{})
	if err != nil {
		t.Fatalf("CreateModule(src): %v", err)
	}
	pt, err := CreateModule(h, "pt", newPassthrough, struct{}{})
	if err != nil {
		t.Fatalf("CreateModule(pt): %v", err)
	}

	srcOut, _ := Out[Signal](h, src, "out")
	ptIn, _ := In[Signal](h, pt, "in")
	ptOut, _ := Out[Signal](h, pt, "out")
	outIn, _ := In[Signal](h, h.OutputModule(), "in")

	if err := Link[Signal](h, srcOut, ptIn); err != nil {
		t.Fatalf("Link(src->pt): %v", err)
	}
	if err := Link[Signal](h, ptOut, outIn); err != nil {
		t.Fatalf("Link(pt->out): %v", err)
	}

	h.ProcessBlock()

	// The sink is a double buffer: the block just written isn't visible
	// until the reader drains whatever it was already on.
	for i := 0; i < BlockLen; i++ {
		h.Output().Next()
	}
	sample := h.Output().Next()
	if sample != 3 {
		t.Fatalf("sample = %v, want 3", sample)
	}
}

func TestLinkRejectsCycle(t *testing.T) {
	h := newTestHost(t)
	a, _ := CreateModule(h, "a", newPassthrough, struct{}{})
	b, _ := CreateModule(h, "b", newPassthrough, struct{}{})

	aOut, _ := Out[Signal](h, a, "out")
	bIn, _ := In[Signal](h, b, "in")
	if err := Link[Signal](h, aOut, bIn); err != nil {
		t.Fatalf("Link(a->b): %v", err)
	}

	bOut, _ := Out[Signal](h, b, "out")
	aIn, _ := In[Signal](h, a, "in")
	if err := Link[Signal](h, bOut, aIn); !errors.Is(err, ErrWouldCreateCycle) {
		t.Fatalf("Link(b->a) err = %v, want ErrWouldCreateCycle", err)
	}
}

func TestDestroyRevertsSubscribersToConstant(t *testing.T) {
	h := newTestHost(t)
	src, _ := CreateModule(h, "src", newConst(5), struct{}{})
	pt, _ := CreateModule(h, "pt", newPassthrough, struct{}{})

	srcOut, _ := Out[Signal](h, src, "out")
	ptIn, _ := In[Signal](h, pt, "in")
	if err := Link[Signal](h, srcOut, ptIn); err != nil {
		t.Fatalf("Link: %v", err)
	}

	if err := h.Destroy(src); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	mi := h.modules[pt.idx]
	if mi.numDeps != 0 {
		t.Fatalf("numDeps after Destroy = %d, want 0", mi.numDeps)
	}
	port := getInPort[Signal](mi, ptIn.Port.idx)
	if port.linked {
		t.Fatalf("input still linked after producer destroyed")
	}
	if (*port.constant)[0] != 1 {
		t.Fatalf("constant after Destroy = %v, want default 1", (*port.constant)[0])
	}
}

func TestDestroyRefusesOutputModule(t *testing.T) {
	h := newTestHost(t)
	if err := h.Destroy(h.OutputModule()); !errors.Is(err, ErrDestroyOutputModule) {
		t.Fatalf("Destroy(output) err = %v, want ErrDestroyOutputModule", err)
	}
}

func TestDuplicateModuleNameRejected(t *testing.T) {
	h := newTestHost(t)
	if _, err := CreateModule(h, "dup", newPassthrough, struct{}{}); err != nil {
		t.Fatalf("first CreateModule: %v", err)
	}
	if _, err := CreateModule(h, "dup", newPassthrough, struct{}{}); !errors.Is(err, ErrDuplicateIdentifier) {
		t.Fatalf("second CreateModule err = %v, want ErrDuplicateIdentifier", err)
	}
}

func TestModuleNamedNotFound(t *testing.T) {
	h := newTestHost(t)
	if _, err := h.ModuleNamed("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ModuleNamed err = %v, want ErrNotFound", err)
	}
}
