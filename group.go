package gosynth

// group tracks the bookkeeping needed to create and address K sibling
// module instances as a unit: how many instances exist, which of them
// have names, and which grouped-module names have already been used.
type group struct {
	numInstances   int
	namedInstances map[string]GroupInstanceHandle
	groupedNames   map[string]bool
}

func (h *Host) groupNameFromHandle(handle GroupHandle) string {
	for name, g := range h.groupNames {
		if g == handle {
			return name
		}
	}
	return ""
}

// CreateGroup declares a group of sibling module instances: anonymousInstances
// unnamed ones plus one per entry of namedInstances (which may be nil).
func CreateGroup(h *Host, name string, anonymousInstances int, namedInstances []string) (GroupHandle, error) {
	if _, exists := h.groupNames[name]; exists {
		return GroupHandle{}, duplicateIdentifierErr(IdentGroup, name)
	}

	g := &group{
		namedInstances: map[string]GroupInstanceHandle{},
		groupedNames:   map[string]bool{},
	}
	idx := h.nextGroupIdx
	handle := GroupHandle{idx: idx}

	g.numInstances += anonymousInstances
	for i, instanceName := range namedInstances {
		if _, exists := g.namedInstances[instanceName]; exists {
			return GroupHandle{}, duplicateIdentifierErr(IdentGroupInstance, instanceName)
		}
		g.namedInstances[instanceName] = GroupInstanceHandle{Group: handle, offset: anonymousInstances + i}
	}
	g.numInstances += len(namedInstances)

	h.nextGroupIdx++
	h.groups[idx] = g
	h.groupNames[name] = handle
	h.log.Debug("group created", "name", name, "instances", g.numInstances)
	return handle, nil
}

// GroupInstanceNamed looks up the instance handle registered under name
// when the group was created.
func (h *Host) GroupInstanceNamed(group GroupHandle, name string) (GroupInstanceHandle, error) {
	g, ok := h.groups[group.idx]
	if !ok {
		return GroupInstanceHandle{}, ErrGroupNotFound
	}
	inst, ok := g.namedInstances[name]
	if !ok {
		return GroupInstanceHandle{}, notFoundErr(IdentGroupInstance, name)
	}
	return inst, nil
}

// CreateGroupJoiningModule creates a single module that "joins" the group:
// one module instance whose variadic ports have one slot per group
// instance.
func CreateGroupJoiningModule[S any](h *Host, groupHandle GroupHandle, name string, init Initializer[S], settings S) (GroupJoiningModuleHandle, error) {
	g := h.groups[groupHandle.idx]
	if g.groupedNames[name] {
		return GroupJoiningModuleHandle{}, duplicateIdentifierErr(IdentGroupedModule, name)
	}
	module, err := createVariadicModuleAnonymous(h, init, settings, g.numInstances)
	if err != nil {
		return GroupJoiningModuleHandle{}, &ModuleInitError{ModuleName: name, GroupName: h.groupNameFromHandle(groupHandle), Err: err}
	}
	g.groupedNames[name] = true
	return GroupJoiningModuleHandle{Group: groupHandle, module: module}, nil
}

// CreateGroupInstanceModule creates K sibling modules, one per group
// instance, all built from the same settings.
func CreateGroupInstanceModule[S any](h *Host, groupHandle GroupHandle, name string, init Initializer[S], settings S) (GroupInstanceModuleHandle, error) {
	return CreateGroupInstanceVariadicModule(h, groupHandle, name, init, settings, 0)
}

// CreateGroupInstanceVariadicModule is CreateGroupInstanceModule for
// sibling modules that themselves have numArgs variadic ports.
func CreateGroupInstanceVariadicModule[S any](h *Host, groupHandle GroupHandle, name string, init Initializer[S], settings S, numArgs int) (GroupInstanceModuleHandle, error) {
	g := h.groups[groupHandle.idx]
	if g.groupedNames[name] {
		return GroupInstanceModuleHandle{}, duplicateIdentifierErr(IdentGroupedModule, name)
	}
	modules := make([]ModuleHandle, g.numInstances)
	for i := range modules {
		m, err := createVariadicModuleAnonymous(h, init, settings, numArgs)
		if err != nil {
			return GroupInstanceModuleHandle{}, &ModuleInitError{ModuleName: name, GroupName: h.groupNameFromHandle(groupHandle), Err: err}
		}
		modules[i] = m
	}
	g.groupedNames[name] = true
	return GroupInstanceModuleHandle{Group: groupHandle, modules: modules}, nil
}

// GroupJoiningIn looks up a variadic input port on a joining module and
// spreads it across the group as a GroupIn.
func GroupJoiningIn[E BufferElem](h *Host, handle GroupJoiningModuleHandle, name string) (GroupIn[E], error) {
	v, err := VariadicIn[E](h, handle.module, name)
	if err != nil {
		return GroupIn[E]{}, err
	}
	return v.All(handle.Group), nil
}

// GroupJoiningOut is the output-port counterpart of GroupJoiningIn.
func GroupJoiningOut[E BufferElem](h *Host, handle GroupJoiningModuleHandle, name string) (GroupOut[E], error) {
	v, err := VariadicOut[E](h, handle.module, name)
	if err != nil {
		return GroupOut[E]{}, err
	}
	return v.All(handle.Group), nil
}

// GroupInstanceIn looks up a single named input port on every sibling
// instance module.
func GroupInstanceIn[E BufferElem](h *Host, handle GroupInstanceModuleHandle, name string) (GroupIn[E], error) {
	out := make([]ModuleIn[E], len(handle.modules))
	for i, m := range handle.modules {
		v, err := In[E](h, m, name)
		if err != nil {
			return GroupIn[E]{}, err
		}
		out[i] = v
	}
	return GroupIn[E]{Group: handle.Group, Handles: out}, nil
}

// GroupInstanceOut is the output-port counterpart of GroupInstanceIn.
func GroupInstanceOut[E BufferElem](h *Host, handle GroupInstanceModuleHandle, name string) (GroupOut[E], error) {
	out := make([]ModuleOut[E], len(handle.modules))
	for i, m := range handle.modules {
		v, err := Out[E](h, m, name)
		if err != nil {
			return GroupOut[E]{}, err
		}
		out[i] = v
	}
	return GroupOut[E]{Group: handle.Group, Handles: out}, nil
}

// GroupInstanceVariadicIn looks up a variadic input port on every sibling
// instance module.
func GroupInstanceVariadicIn[E BufferElem](h *Host, handle GroupInstanceModuleHandle, name string) (GroupVariadicIn[E], error) {
	out := make([]ModuleVariadicIn[E], len(handle.modules))
	for i, m := range handle.modules {
		v, err := VariadicIn[E](h, m, name)
		if err != nil {
			return GroupVariadicIn[E]{}, err
		}
		out[i] = v
	}
	return GroupVariadicIn[E]{Group: handle.Group, Handles: out}, nil
}

// GroupInstanceVariadicOut is the output-port counterpart of
// GroupInstanceVariadicIn.
func GroupInstanceVariadicOut[E BufferElem](h *Host, handle GroupInstanceModuleHandle, name string) (GroupVariadicOut[E], error) {
	out := make([]ModuleVariadicOut[E], len(handle.modules))
	for i, m := range handle.modules {
		v, err := VariadicOut[E](h, m, name)
		if err != nil {
			return GroupVariadicOut[E]{}, err
		}
		out[i] = v
	}
	return GroupVariadicOut[E]{Group: handle.Group, Handles: out}, nil
}

// LinkGroup links each instance's output handle in out to the
// corresponding instance's input handle in in. Both must belong to the
// same group.
func LinkGroup[E BufferElem](h *Host, out GroupOut[E], in GroupIn[E]) error {
	if out.Group != in.Group {
		return ErrGroupMismatch
	}
	for i := range out.Handles {
		if err := Link[E](h, out.Handles[i], in.Handles[i]); err != nil {
			return err
		}
	}
	return nil
}

// LinkGroupExt links a single, ungrouped output port to every instance's
// input handle in in (for example, broadcasting one MIDI input across a
// polyphony group).
func LinkGroupExt[E BufferElem](h *Host, out ModuleOut[E], in GroupIn[E]) error {
	for _, target := range in.Handles {
		if err := Link[E](h, out, target); err != nil {
			return err
		}
	}
	return nil
}

// LinkGroupValue sets every instance's input handle in in constant at
// value.
func LinkGroupValue[E BufferElem](h *Host, value E, in GroupIn[E]) {
	for _, target := range in.Handles {
		LinkValue[E](h, value, target)
	}
}
