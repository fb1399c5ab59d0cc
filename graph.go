package gosynth

import (
	"github.com/charmbracelet/log"
)

// portRef addresses one port slot of one module by raw index, used only
// inside the host to track producer/subscriber relationships.
type portRef struct {
	module int
	idx    int
}

type inPort[E BufferElem] struct {
	linked   bool
	producer portRef
	constant *Block[E]
	def      E
}

type outPort[E BufferElem] struct {
	buffer      *Block[E]
	subscribers []portRef
}

type moduleInternals struct {
	mod     Module
	numArgs int
	numDeps int

	// finishedDep counts dependencies that have finished this block; see
	// scheduler.go. Accessed only through sync/atomic.
	finishedDep int64

	inSignal  []inPort[Signal]
	inMidi    []inPort[MidiEvents]
	outSignal []outPort[Signal]
	outMidi   []outPort[MidiEvents]

	metaInSignal, metaInMidi, metaOutSignal, metaOutMidi []portMeta
}

// Host owns every module, the links between their ports, and the block
// scheduler. A Host always has one built-in module, named "audio_out",
// which drives the audio sink.
type Host struct {
	modules       map[int]*moduleInternals
	moduleNames   map[string]ModuleHandle
	nextModuleIdx int

	groups       map[int]*group
	groupNames   map[string]GroupHandle
	nextGroupIdx int

	output       *AudioOutput
	outputHandle ModuleHandle

	log *log.Logger
}

const outputModuleName = "audio_out"

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// NewHost builds a Host with its audio sink module already created and
// named "audio_out". logger may be nil, in which case host diagnostics are
// discarded.
func NewHost(logger *log.Logger) (*Host, error) {
	if logger == nil {
		logger = log.New(discardWriter{})
	}
	h := &Host{
		modules:     map[int]*moduleInternals{},
		moduleNames: map[string]ModuleHandle{},
		groups:      map[int]*group{},
		groupNames:  map[string]GroupHandle{},
		output:      newAudioOutput(),
		log:         logger,
	}
	handle, err := CreateModule(h, outputModuleName, audioOutputInit, h.output)
	if err != nil {
		return nil, err
	}
	h.outputHandle = handle
	h.log.Debug("host ready", "output_module", outputModuleName)
	return h, nil
}

// OutputModule returns the handle of the built-in audio sink module.
func (h *Host) OutputModule() ModuleHandle { return h.outputHandle }

// Output returns the double-buffered sink the audio device callback reads
// from.
func (h *Host) Output() *AudioOutput { return h.output }

func createVariadicModuleAnonymous[S any](h *Host, init Initializer[S], settings S, numArgs int) (ModuleHandle, error) {
	d := newDescriptor(numArgs)
	mod, err := init(d, settings, numArgs)
	if err != nil {
		return ModuleHandle{}, err
	}
	if d.dupErr != nil {
		return ModuleHandle{}, d.dupErr
	}

	mi := &moduleInternals{
		mod:           mod,
		numArgs:       numArgs,
		inSignal:      make([]inPort[Signal], len(d.inSignal)),
		inMidi:        make([]inPort[MidiEvents], len(d.inMidi)),
		outSignal:     make([]outPort[Signal], d.outSignal),
		outMidi:       make([]outPort[MidiEvents], d.outMidi),
		metaInSignal:  d.metaInSignal,
		metaInMidi:    d.metaInMidi,
		metaOutSignal: d.metaOutSignal,
		metaOutMidi:   d.metaOutMidi,
	}
	for i, spec := range d.inSignal {
		mi.inSignal[i] = inPort[Signal]{constant: newBlock(spec.def), def: spec.def}
	}
	for i, spec := range d.inMidi {
		mi.inMidi[i] = inPort[MidiEvents]{constant: newBlock(spec.def), def: spec.def}
	}
	for i := range mi.outSignal {
		mi.outSignal[i] = outPort[Signal]{buffer: newBlock[Signal](0)}
	}
	for i := range mi.outMidi {
		mi.outMidi[i] = outPort[MidiEvents]{buffer: newBlock[MidiEvents](nil)}
	}

	idx := h.nextModuleIdx
	h.nextModuleIdx++
	h.modules[idx] = mi
	return ModuleHandle{idx: idx}, nil
}

// CreateModule creates a module named name with the given settings and
// registers it in the host under that name.
func CreateModule[S any](h *Host, name string, init Initializer[S], settings S) (ModuleHandle, error) {
	return CreateVariadicModule(h, name, init, settings, 0)
}

// CreateVariadicModule is CreateModule for a module built with numArgs
// variadic ports, for use outside of a group (groups call
// createVariadicModuleAnonymous directly, see group.go).
func CreateVariadicModule[S any](h *Host, name string, init Initializer[S], settings S, numArgs int) (ModuleHandle, error) {
	if _, exists := h.moduleNames[name]; exists {
		return ModuleHandle{}, duplicateIdentifierErr(IdentModule, name)
	}
	handle, err := createVariadicModuleAnonymous(h, init, settings, numArgs)
	if err != nil {
		return ModuleHandle{}, &ModuleInitError{ModuleName: name, Err: err}
	}
	h.moduleNames[name] = handle
	h.log.Debug("module created", "name", name)
	return handle, nil
}

// ModuleNamed looks a module handle up by the name it was created with.
func (h *Host) ModuleNamed(name string) (ModuleHandle, error) {
	handle, ok := h.moduleNames[name]
	if !ok {
		return ModuleHandle{}, notFoundErr(IdentModule, name)
	}
	return handle, nil
}

func metaListIn[E BufferElem](mi *moduleInternals) []portMeta {
	switch kindOf[E]() {
	case KindSignal:
		return mi.metaInSignal
	case KindMidi:
		return mi.metaInMidi
	default:
		panic("unreachable")
	}
}

func metaListOut[E BufferElem](mi *moduleInternals) []portMeta {
	switch kindOf[E]() {
	case KindSignal:
		return mi.metaOutSignal
	case KindMidi:
		return mi.metaOutMidi
	default:
		panic("unreachable")
	}
}

func lookupMeta(list []portMeta, name string, wantVariadic bool) (portMeta, error) {
	for _, m := range list {
		if m.name != name {
			continue
		}
		isVariadic := m.arity == ArVariadic
		if isVariadic != wantVariadic {
			return portMeta{}, wrongArityErr(wantVariadic, isVariadic)
		}
		return m, nil
	}
	return portMeta{}, notFoundErr(IdentBuffer, name)
}

// In looks up a single named input port on a module.
func In[E BufferElem](h *Host, m ModuleHandle, name string) (ModuleIn[E], error) {
	mi := h.modules[m.idx]
	pm, err := lookupMeta(metaListIn[E](mi), name, false)
	if err != nil {
		return ModuleIn[E]{}, err
	}
	return ModuleIn[E]{Module: m, Port: InHandle[E]{idx: pm.idx}}, nil
}

// Out looks up a single named output port on a module.
func Out[E BufferElem](h *Host, m ModuleHandle, name string) (ModuleOut[E], error) {
	mi := h.modules[m.idx]
	pm, err := lookupMeta(metaListOut[E](mi), name, false)
	if err != nil {
		return ModuleOut[E]{}, err
	}
	return ModuleOut[E]{Module: m, Port: OutHandle[E]{idx: pm.idx}}, nil
}

// VariadicIn looks up a named variadic input port on a module.
func VariadicIn[E BufferElem](h *Host, m ModuleHandle, name string) (ModuleVariadicIn[E], error) {
	mi := h.modules[m.idx]
	pm, err := lookupMeta(metaListIn[E](mi), name, true)
	if err != nil {
		return ModuleVariadicIn[E]{}, err
	}
	return ModuleVariadicIn[E]{Module: m, Port: VariadicInHandle[E]{idx: pm.idx, n: mi.numArgs}}, nil
}

// VariadicOut looks up a named variadic output port on a module.
func VariadicOut[E BufferElem](h *Host, m ModuleHandle, name string) (ModuleVariadicOut[E], error) {
	mi := h.modules[m.idx]
	pm, err := lookupMeta(metaListOut[E](mi), name, true)
	if err != nil {
		return ModuleVariadicOut[E]{}, err
	}
	return ModuleVariadicOut[E]{Module: m, Port: VariadicOutHandle[E]{idx: pm.idx, n: mi.numArgs}}, nil
}

func getInPort[E BufferElem](mi *moduleInternals, idx int) *inPort[E] {
	switch kindOf[E]() {
	case KindSignal:
		return any(&mi.inSignal[idx]).(*inPort[E])
	case KindMidi:
		return any(&mi.inMidi[idx]).(*inPort[E])
	default:
		panic("unreachable")
	}
}

func getOutPort[E BufferElem](mi *moduleInternals, idx int) *outPort[E] {
	switch kindOf[E]() {
	case KindSignal:
		return any(&mi.outSignal[idx]).(*outPort[E])
	case KindMidi:
		return any(&mi.outMidi[idx]).(*outPort[E])
	default:
		panic("unreachable")
	}
}

func addSubscriber[E BufferElem](h *Host, producer portRef, sub portRef) {
	op := getOutPort[E](h.modules[producer.module], producer.idx)
	op.subscribers = append(op.subscribers, sub)
}

func removeSubscriber[E BufferElem](h *Host, producer portRef, sub portRef) {
	op := getOutPort[E](h.modules[producer.module], producer.idx)
	for i, s := range op.subscribers {
		if s == sub {
			op.subscribers = append(op.subscribers[:i], op.subscribers[i+1:]...)
			return
		}
	}
}

func setBufferIn[E BufferElem](h *Host, in ModuleIn[E], linked bool, producer portRef, constVal E) {
	mi := h.modules[in.Module.idx]
	self := portRef{module: in.Module.idx, idx: in.Port.idx}
	port := getInPort[E](mi, in.Port.idx)

	wasLinked := port.linked
	oldProducer := port.producer

	switch {
	case wasLinked && !linked:
		mi.numDeps--
	case !wasLinked && linked:
		mi.numDeps++
	}

	if wasLinked {
		removeSubscriber[E](h, oldProducer, self)
	}

	port.linked = linked
	if linked {
		port.producer = producer
		port.constant = nil
		addSubscriber[E](h, producer, self)
	} else {
		port.producer = portRef{}
		port.constant = newBlock(constVal)
	}
}

func wouldCreateCycle(h *Host, producer, consumer ModuleHandle) bool {
	if producer == consumer {
		return true
	}
	visited := map[int]bool{}
	var dfs func(idx int) bool
	dfs = func(idx int) bool {
		if idx == producer.idx {
			return true
		}
		if visited[idx] {
			return false
		}
		visited[idx] = true
		for _, dep := range dependentsOf(h.modules[idx]) {
			if dfs(dep) {
				return true
			}
		}
		return false
	}
	return dfs(consumer.idx)
}

func dependentsOf(mi *moduleInternals) []int {
	seen := map[int]bool{}
	var out []int
	add := func(r portRef) {
		if !seen[r.module] {
			seen[r.module] = true
			out = append(out, r.module)
		}
	}
	for _, op := range mi.outSignal {
		for _, s := range op.subscribers {
			add(s)
		}
	}
	for _, op := range mi.outMidi {
		for _, s := range op.subscribers {
			add(s)
		}
	}
	return out
}

// Link connects an output port to an input port, replacing whatever the
// input port was previously linked or constant to. A link that would
// create a dependency cycle is rejected instead of silently hanging the
// scheduler.
func Link[E BufferElem](h *Host, out ModuleOut[E], in ModuleIn[E]) error {
	if wouldCreateCycle(h, out.Module, in.Module) {
		return ErrWouldCreateCycle
	}
	var zero E
	setBufferIn[E](h, in, true, portRef{module: out.Module.idx, idx: out.Port.idx}, zero)
	return nil
}

// LinkValue sets an input port constant at value, disconnecting it from
// any producer it was previously linked to.
func LinkValue[E BufferElem](h *Host, value E, in ModuleIn[E]) {
	setBufferIn[E](h, in, false, portRef{}, value)
}

// Destroy removes a module from the host: every input port of another
// module that was linked to one of this module's outputs reverts to its
// default constant, and this module's own linked inputs are unsubscribed
// from their producers. The built-in audio sink cannot be destroyed.
func (h *Host) Destroy(handle ModuleHandle) error {
	if handle == h.outputHandle {
		return ErrDestroyOutputModule
	}
	mi, ok := h.modules[handle.idx]
	if !ok {
		return ErrModuleNotFound
	}

	// setBufferIn removes each subscriber from op.subscribers in place, so
	// iterate over a copy.
	for _, op := range mi.outSignal {
		for _, sub := range append([]portRef(nil), op.subscribers...) {
			in := ModuleIn[Signal]{Module: ModuleHandle{idx: sub.module}, Port: InHandle[Signal]{idx: sub.idx}}
			setBufferIn[Signal](h, in, false, portRef{}, getInPort[Signal](h.modules[sub.module], sub.idx).def)
		}
	}
	for _, op := range mi.outMidi {
		for _, sub := range append([]portRef(nil), op.subscribers...) {
			in := ModuleIn[MidiEvents]{Module: ModuleHandle{idx: sub.module}, Port: InHandle[MidiEvents]{idx: sub.idx}}
			setBufferIn[MidiEvents](h, in, false, portRef{}, getInPort[MidiEvents](h.modules[sub.module], sub.idx).def)
		}
	}

	for i, p := range mi.inSignal {
		if p.linked {
			removeSubscriber[Signal](h, p.producer, portRef{module: handle.idx, idx: i})
		}
	}
	for i, p := range mi.inMidi {
		if p.linked {
			removeSubscriber[MidiEvents](h, p.producer, portRef{module: handle.idx, idx: i})
		}
	}

	for name, n := range h.moduleNames {
		if n == handle {
			delete(h.moduleNames, name)
			break
		}
	}
	delete(h.modules, handle.idx)
	h.log.Debug("module destroyed", "handle", handle.idx)
	return nil
}
