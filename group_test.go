package gosynth

import "testing"

type voiceModule struct {
	in  InHandle[Signal]
	out OutHandle[Signal]
}

func newVoiceModule(d *Descriptor, _ struct{}, _ int) (Module, error) {
	return &voiceModule{
		in:  WithInDefault[Signal](d, "in", 0),
		out: WithOut[Signal](d, "out"),
	}, nil
}

func (m *voiceModule) FillBuffers(in *BuffersIn, out *BuffersOut) {
	src := GetIn(in, m.in)
	dst := GetOut(out, m.out)
	for i := range dst {
		dst[i] = src[i] * 2
	}
}

type joiningModule struct {
	ins VariadicInHandle[Signal]
}

func newJoiningModule(d *Descriptor, _ struct{}, numArgs int) (Module, error) {
	return &joiningModule{ins: WithVariadicIn[Signal](d, "ins")}, nil
}

func (m *joiningModule) FillBuffers(in *BuffersIn, _ *BuffersOut) {
	_ = GetVariadicIn(in, m.ins)
}

func TestCreateGroupInstanceModuleCreatesOnePerInstance(t *testing.T) {
	h := newTestHost(t)
	g, err := CreateGroup(h, "voices", 3, nil)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	voices, err := CreateGroupInstanceModule(h, g, "voice", newVoiceModule, struct{}{})
	if err != nil {
		t.Fatalf("CreateGroupInstanceModule: %v", err)
	}
	if len(voices.modules) != 3 {
		t.Fatalf("len(modules) = %d, want 3", len(voices.modules))
	}
}

func TestLinkGroupRejectsMismatchedGroups(t *testing.T) {
	h := newTestHost(t)
	g1, _ := CreateGroup(h, "g1", 2, nil)
	g2, _ := CreateGroup(h, "g2", 2, nil)

	v1, err := CreateGroupInstanceModule(h, g1, "v1", newVoiceModule, struct{}{})
	if err != nil {
		t.Fatalf("CreateGroupInstanceModule(g1): %v", err)
	}
	v2, err := CreateGroupInstanceModule(h, g2, "v2", newVoiceModule, struct{}{})
	if err != nil {
		t.Fatalf("CreateGroupInstanceModule(g2): %v", err)
	}

	out1, _ := GroupInstanceOut[Signal](h, v1, "out")
	in2, _ := GroupInstanceIn[Signal](h, v2, "in")

	if err := LinkGroup[Signal](h, out1, in2); err != ErrGroupMismatch {
		t.Fatalf("LinkGroup across groups err = %v, want ErrGroupMismatch", err)
	}
}

func TestGroupJoiningModuleSeesOneSlotPerInstance(t *testing.T) {
	h := newTestHost(t)
	g, err := CreateGroup(h, "voices", 5, nil)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	joining, err := CreateGroupJoiningModule(h, g, "join", newJoiningModule, struct{}{})
	if err != nil {
		t.Fatalf("CreateGroupJoiningModule: %v", err)
	}
	ins, err := VariadicIn[Signal](h, joining.Ungrouped(), "ins")
	if err != nil {
		t.Fatalf("VariadicIn: %v", err)
	}
	if ins.n != 5 {
		t.Fatalf("variadic arity = %d, want 5", ins.n)
	}
}

func TestLinkGroupExtBroadcastsSingleOutputToEveryInstance(t *testing.T) {
	h := newTestHost(t)
	src, err := CreateModule(h, "src", newConst(7), struct{}{})
	if err != nil {
		t.Fatalf("CreateModule(src): %v", err)
	}
	g, err := CreateGroup(h, "voices", 3, nil)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	voices, err := CreateGroupInstanceModule(h, g, "voice", newVoiceModule, struct{}{})
	if err != nil {
		t.Fatalf("CreateGroupInstanceModule: %v", err)
	}

	srcOut, _ := Out[Signal](h, src, "out")
	voiceIn, err := GroupInstanceIn[Signal](h, voices, "in")
	if err != nil {
		t.Fatalf("GroupInstanceIn: %v", err)
	}
	if err := LinkGroupExt[Signal](h, srcOut, voiceIn); err != nil {
		t.Fatalf("LinkGroupExt: %v", err)
	}

	for i, handle := range voiceIn.Handles {
		mi := h.modules[handle.Module.idx]
		if mi.numDeps != 1 {
			t.Fatalf("voice %d numDeps = %d, want 1", i, mi.numDeps)
		}
	}
}
