package gosynth

// ModuleHandle refers to a module created in a Host. It stays valid for
// the lifetime of the module (until Destroy is called on it).
type ModuleHandle struct {
	idx int
}

// InHandle names a single input port on a module, scoped to one
// BufferElem kind.
type InHandle[E BufferElem] struct{ idx int }

// OutHandle names a single output port on a module, scoped to one
// BufferElem kind.
type OutHandle[E BufferElem] struct{ idx int }

// VariadicInHandle names a variadic input port: num_args sibling input
// slots, one per group instance.
type VariadicInHandle[E BufferElem] struct {
	idx, n int
}

// At returns the single-port handle for instance i of a variadic port.
func (h VariadicInHandle[E]) At(i int) (InHandle[E], error) {
	if i < 0 || i >= h.n {
		return InHandle[E]{}, wrapOutOfBounds(i, h.n)
	}
	return InHandle[E]{idx: h.idx + i}, nil
}

// VariadicOutHandle names a variadic output port: num_args sibling output
// slots, one per group instance.
type VariadicOutHandle[E BufferElem] struct {
	idx, n int
}

// At returns the single-port handle for instance i of a variadic port.
func (h VariadicOutHandle[E]) At(i int) (OutHandle[E], error) {
	if i < 0 || i >= h.n {
		return OutHandle[E]{}, wrapOutOfBounds(i, h.n)
	}
	return OutHandle[E]{idx: h.idx + i}, nil
}

func wrapOutOfBounds(idx, n int) error {
	return &variadicBoundsError{idx: idx, n: n}
}

type variadicBoundsError struct{ idx, n int }

func (e *variadicBoundsError) Error() string {
	return "variadic buffer index out of bounds"
}

func (e *variadicBoundsError) Unwrap() error { return ErrVariadicOutOfBounds }

// ModuleIn is a module-scoped handle to one of its input ports.
type ModuleIn[E BufferElem] struct {
	Module ModuleHandle
	Port   InHandle[E]
}

// ModuleOut is a module-scoped handle to one of its output ports.
type ModuleOut[E BufferElem] struct {
	Module ModuleHandle
	Port   OutHandle[E]
}

// ModuleVariadicIn is a module-scoped handle to one of its variadic input
// ports.
type ModuleVariadicIn[E BufferElem] struct {
	Module ModuleHandle
	Port   VariadicInHandle[E]
}

// At returns the single-instance handle for instance i.
func (h ModuleVariadicIn[E]) At(i int) (ModuleIn[E], error) {
	p, err := h.Port.At(i)
	if err != nil {
		return ModuleIn[E]{}, err
	}
	return ModuleIn[E]{Module: h.Module, Port: p}, nil
}

// All gathers every instance of this variadic port into a GroupIn scoped
// to group.
func (h ModuleVariadicIn[E]) All(group GroupHandle) GroupIn[E] {
	handles := make([]ModuleIn[E], h.Port.n)
	for i := range handles {
		handles[i], _ = h.At(i)
	}
	return GroupIn[E]{Group: group, Handles: handles}
}

// ModuleVariadicOut is a module-scoped handle to one of its variadic
// output ports.
type ModuleVariadicOut[E BufferElem] struct {
	Module ModuleHandle
	Port   VariadicOutHandle[E]
}

// At returns the single-instance handle for instance i.
func (h ModuleVariadicOut[E]) At(i int) (ModuleOut[E], error) {
	p, err := h.Port.At(i)
	if err != nil {
		return ModuleOut[E]{}, err
	}
	return ModuleOut[E]{Module: h.Module, Port: p}, nil
}

// All gathers every instance of this variadic port into a GroupOut scoped
// to group.
func (h ModuleVariadicOut[E]) All(group GroupHandle) GroupOut[E] {
	handles := make([]ModuleOut[E], h.Port.n)
	for i := range handles {
		handles[i], _ = h.At(i)
	}
	return GroupOut[E]{Group: group, Handles: handles}
}

// GroupHandle refers to a group of sibling module instances created with
// CreateGroup.
type GroupHandle struct{ idx int }

// GroupInstanceHandle refers to one particular instance of a group,
// independent of which grouped module is being addressed.
type GroupInstanceHandle struct {
	Group  GroupHandle
	offset int
}

// GroupJoiningModuleHandle refers to a single module that "joins" every
// instance of a group via a variadic port (one module, arity K).
type GroupJoiningModuleHandle struct {
	Group  GroupHandle
	module ModuleHandle
}

// Ungrouped returns the plain ModuleHandle backing this joining module.
func (h GroupJoiningModuleHandle) Ungrouped() ModuleHandle { return h.module }

// GroupInstanceModuleHandle refers to K sibling modules, one per group
// instance, all created from the same settings ("instance" grouping).
type GroupInstanceModuleHandle struct {
	Group   GroupHandle
	modules []ModuleHandle
}

// Ungrouped returns the plain ModuleHandle for one instance of this
// grouped module.
func (h GroupInstanceModuleHandle) Ungrouped(instance GroupInstanceHandle) (ModuleHandle, error) {
	if instance.Group != h.Group {
		return ModuleHandle{}, ErrInstanceGroupMismatch
	}
	return h.modules[instance.offset], nil
}

// GroupIn gathers one input port across every instance of a group.
type GroupIn[E BufferElem] struct {
	Group   GroupHandle
	Handles []ModuleIn[E]
}

// GroupOut gathers one output port across every instance of a group.
type GroupOut[E BufferElem] struct {
	Group   GroupHandle
	Handles []ModuleOut[E]
}

// GroupVariadicIn gathers one variadic input port across every instance of
// a group (e.g. a "joining" module's per-instance slots, exposed once per
// instance module in an "instance" group).
type GroupVariadicIn[E BufferElem] struct {
	Group   GroupHandle
	Handles []ModuleVariadicIn[E]
}

// At projects GroupVariadicIn down to the i-th slot of each member's
// variadic port.
func (h GroupVariadicIn[E]) At(i int) (GroupIn[E], error) {
	out := make([]ModuleIn[E], len(h.Handles))
	for j, m := range h.Handles {
		v, err := m.At(i)
		if err != nil {
			return GroupIn[E]{}, err
		}
		out[j] = v
	}
	return GroupIn[E]{Group: h.Group, Handles: out}, nil
}

// GroupVariadicOut is the output-port counterpart of GroupVariadicIn.
type GroupVariadicOut[E BufferElem] struct {
	Group   GroupHandle
	Handles []ModuleVariadicOut[E]
}

// At projects GroupVariadicOut down to the i-th slot of each member's
// variadic port.
func (h GroupVariadicOut[E]) At(i int) (GroupOut[E], error) {
	out := make([]ModuleOut[E], len(h.Handles))
	for j, m := range h.Handles {
		v, err := m.At(i)
		if err != nil {
			return GroupOut[E]{}, err
		}
		out[j] = v
	}
	return GroupOut[E]{Group: h.Group, Handles: out}, nil
}
