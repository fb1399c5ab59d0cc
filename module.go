package gosynth

import "fmt"

// Module is the contract every leaf or composite signal processor
// implements. FillBuffers must be deterministic given its input blocks
// and the module's own internal state, and must not allocate, block, or
// perform IO on the steady state path. The one exception is the built-in
// audio sink, whose FillBuffers copies its input into the AudioOutput and
// waits there until the device callback has finished the buffer it is
// reading (see output.go).
type Module interface {
	FillBuffers(in *BuffersIn, out *BuffersOut)
}

// Initializer builds a Module of settings type S, given a Descriptor to
// register its ports on and the number of variadic args it was created
// with: the group's instance count for a group-joining module, the
// caller's numArgs for CreateVariadicModule and
// CreateGroupInstanceVariadicModule, and 0 otherwise.
type Initializer[S any] func(d *Descriptor, settings S, numArgs int) (Module, error)

type inSpec[E BufferElem] struct {
	def E
}

type portMeta struct {
	name  string
	arity Arity
	idx   int
}

// Descriptor is the builder a module's Initializer uses to register its
// named ports. Each of the four (direction, kind) combinations has its own
// namespace: an input signal port and an output signal port (or an input
// MIDI port) may share a name without conflict.
type Descriptor struct {
	numArgs int

	inSignal  []inSpec[Signal]
	inMidi    []inSpec[MidiEvents]
	outSignal int
	outMidi   int

	metaInSignal, metaInMidi, metaOutSignal, metaOutMidi []portMeta
	dupErr                                                error
}

func newDescriptor(numArgs int) *Descriptor {
	return &Descriptor{numArgs: numArgs}
}

func addMeta(list *[]portMeta, d *Descriptor, kind Kind, dir Dir, name string, arity Arity, idx int) {
	for _, m := range *list {
		if m.name == name {
			if d.dupErr == nil {
				d.dupErr = fmt.Errorf("the %s-%s buffer identifier %q already exists in this module", kind, dir, name)
			}
			break
		}
	}
	*list = append(*list, portMeta{name: name, arity: arity, idx: idx})
}

// WithIn registers a single named input port defaulting to the zero value
// of E when unlinked.
func WithIn[E BufferElem](d *Descriptor, name string) InHandle[E] {
	var zero E
	return WithInDefault(d, name, zero)
}

// WithInDefault registers a single named input port, constant at def
// until something is linked to it.
func WithInDefault[E BufferElem](d *Descriptor, name string, def E) InHandle[E] {
	idx := addIn(d, ArSingle, name, def)
	return InHandle[E]{idx: idx}
}

// WithOut registers a single named output port.
func WithOut[E BufferElem](d *Descriptor, name string) OutHandle[E] {
	idx := addOut[E](d, ArSingle, name)
	return OutHandle[E]{idx: idx}
}

// WithVariadicIn registers a variadic input port with d.numArgs sibling
// slots, each defaulting to the zero value of E.
func WithVariadicIn[E BufferElem](d *Descriptor, name string) VariadicInHandle[E] {
	var zero E
	return WithVariadicInDefault(d, name, zero)
}

// WithVariadicInDefault registers a variadic input port with d.numArgs
// sibling slots, each constant at def until linked.
func WithVariadicInDefault[E BufferElem](d *Descriptor, name string, def E) VariadicInHandle[E] {
	idx := addIn(d, ArVariadic, name, def)
	return VariadicInHandle[E]{idx: idx, n: d.numArgs}
}

// WithVariadicOut registers a variadic output port with d.numArgs sibling
// slots.
func WithVariadicOut[E BufferElem](d *Descriptor, name string) VariadicOutHandle[E] {
	idx := addOut[E](d, ArVariadic, name)
	return VariadicOutHandle[E]{idx: idx, n: d.numArgs}
}

func addIn[E BufferElem](d *Descriptor, arity Arity, name string, def E) int {
	n := 1
	if arity == ArVariadic {
		n = d.numArgs
	}
	switch kindOf[E]() {
	case KindSignal:
		idx := len(d.inSignal)
		addMeta(&d.metaInSignal, d, KindSignal, DirIn, name, arity, idx)
		s := any(inSpec[E]{def: def}).(inSpec[Signal])
		for i := 0; i < n; i++ {
			d.inSignal = append(d.inSignal, s)
		}
		return idx
	case KindMidi:
		idx := len(d.inMidi)
		addMeta(&d.metaInMidi, d, KindMidi, DirIn, name, arity, idx)
		s := any(inSpec[E]{def: def}).(inSpec[MidiEvents])
		for i := 0; i < n; i++ {
			d.inMidi = append(d.inMidi, s)
		}
		return idx
	default:
		panic("unreachable")
	}
}

func addOut[E BufferElem](d *Descriptor, arity Arity, name string) int {
	n := 1
	if arity == ArVariadic {
		n = d.numArgs
	}
	switch kindOf[E]() {
	case KindSignal:
		idx := d.outSignal
		addMeta(&d.metaOutSignal, d, KindSignal, DirOut, name, arity, idx)
		d.outSignal += n
		return idx
	case KindMidi:
		idx := d.outMidi
		addMeta(&d.metaOutMidi, d, KindMidi, DirOut, name, arity, idx)
		d.outMidi += n
		return idx
	default:
		panic("unreachable")
	}
}

// BuffersIn is the read-only view of a module's linked/constant input
// buffers, handed to FillBuffers.
type BuffersIn struct {
	signal []*Block[Signal]
	midi   []*Block[MidiEvents]
}

// GetIn returns the current block for a single input port.
func GetIn[E BufferElem](b *BuffersIn, h InHandle[E]) *Block[E] {
	switch kindOf[E]() {
	case KindSignal:
		return any(b.signal[h.idx]).(*Block[E])
	case KindMidi:
		return any(b.midi[h.idx]).(*Block[E])
	default:
		panic("unreachable")
	}
}

// GetVariadicIn returns the current blocks for every instance of a
// variadic input port, in instance order.
func GetVariadicIn[E BufferElem](b *BuffersIn, h VariadicInHandle[E]) []*Block[E] {
	out := make([]*Block[E], h.n)
	for i := 0; i < h.n; i++ {
		ih, _ := h.At(i)
		out[i] = GetIn(b, ih)
	}
	return out
}

// BuffersOut is the writable view of a module's output buffers, handed to
// FillBuffers.
type BuffersOut struct {
	signal []*Block[Signal]
	midi   []*Block[MidiEvents]
}

// GetOut returns the current block for a single output port, for the
// module to overwrite in place.
func GetOut[E BufferElem](b *BuffersOut, h OutHandle[E]) *Block[E] {
	switch kindOf[E]() {
	case KindSignal:
		return any(b.signal[h.idx]).(*Block[E])
	case KindMidi:
		return any(b.midi[h.idx]).(*Block[E])
	default:
		panic("unreachable")
	}
}

// GetVariadicOut returns the current blocks for every instance of a
// variadic output port, in instance order.
func GetVariadicOut[E BufferElem](b *BuffersOut, h VariadicOutHandle[E]) []*Block[E] {
	out := make([]*Block[E], h.n)
	for i := 0; i < h.n; i++ {
		oh, _ := h.At(i)
		out[i] = GetOut(b, oh)
	}
	return out
}
