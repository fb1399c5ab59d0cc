package gosynth

import "sync/atomic"

func portsIn[E BufferElem](mi *moduleInternals) []inPort[E] {
	switch kindOf[E]() {
	case KindSignal:
		return any(mi.inSignal).([]inPort[E])
	case KindMidi:
		return any(mi.inMidi).([]inPort[E])
	default:
		panic("unreachable")
	}
}

func portsOut[E BufferElem](mi *moduleInternals) []outPort[E] {
	switch kindOf[E]() {
	case KindSignal:
		return any(mi.outSignal).([]outPort[E])
	case KindMidi:
		return any(mi.outMidi).([]outPort[E])
	default:
		panic("unreachable")
	}
}

func gatherIn[E BufferElem](h *Host, mi *moduleInternals) []*Block[E] {
	ports := portsIn[E](mi)
	out := make([]*Block[E], len(ports))
	for i, p := range ports {
		if p.linked {
			producer := h.modules[p.producer.module]
			out[i] = getOutPort[E](producer, p.producer.idx).buffer
		} else {
			out[i] = p.constant
		}
	}
	return out
}

func gatherOut[E BufferElem](mi *moduleInternals) []*Block[E] {
	ports := portsOut[E](mi)
	out := make([]*Block[E], len(ports))
	for i, p := range ports {
		out[i] = p.buffer
	}
	return out
}

// ProcessBlock runs one block through every module exactly once, strictly
// after all of its dependencies have run. Modules with no dependencies
// (the roots of the dependency DAG) are processed first; each finished
// module then recursively triggers its dependents once the last of their
// dependencies has finished.
func (h *Host) ProcessBlock() {
	for _, mi := range h.modules {
		atomic.StoreInt64(&mi.finishedDep, 0)
	}

	var roots []ModuleHandle
	for idx, mi := range h.modules {
		if mi.numDeps == 0 {
			roots = append(roots, ModuleHandle{idx: idx})
		}
	}

	for _, r := range roots {
		h.processModule(r)
	}
}

func (h *Host) processModule(handle ModuleHandle) {
	mi := h.modules[handle.idx]

	if atomic.AddInt64(&mi.finishedDep, 1) < int64(mi.numDeps) {
		return
	}

	in := &BuffersIn{
		signal: gatherIn[Signal](h, mi),
		midi:   gatherIn[MidiEvents](h, mi),
	}
	out := &BuffersOut{
		signal: gatherOut[Signal](mi),
		midi:   gatherOut[MidiEvents](mi),
	}
	mi.mod.FillBuffers(in, out)

	// One call per subscribed in-port, so a module with several in-ports
	// linked to this one still sees its counter reach numDeps.
	for _, op := range mi.outSignal {
		for _, s := range op.subscribers {
			h.processModule(ModuleHandle{idx: s.module})
		}
	}
	for _, op := range mi.outMidi {
		for _, s := range op.subscribers {
			h.processModule(ModuleHandle{idx: s.module})
		}
	}
}

// Run processes blocks back to back until stop is closed. It is meant to
// be launched in its own goroutine, feeding a real-time audio callback
// that reads from h.Output() independently.
func (h *Host) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
			h.ProcessBlock()
		}
	}
}
