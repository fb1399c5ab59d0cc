package modules

import gosynth "github.com/reidbhuntley/gosynth"

// OpKind selects which arithmetic operation an Op module performs.
type OpKind int

const (
	// OpAdd sums N inputs, each defaulting to 0 when unlinked.
	OpAdd OpKind = iota
	// OpMultiply multiplies N inputs, each defaulting to 1 when unlinked.
	OpMultiply
	// OpNegate negates a single input, defaulting to 0 when unlinked.
	OpNegate
)

// OpSettings picks the operation and, for Add/Multiply, how many inputs
// to expose.
type OpSettings struct {
	Kind   OpKind
	Inputs int
}

// Op is a fixed-arity elementwise combinator: sum, product, or negation.
type Op struct {
	kind OpKind
	ins  []gosynth.InHandle[gosynth.Signal]
	out  gosynth.OutHandle[gosynth.Signal]
}

// NewOp is the Initializer for Op.
func NewOp(d *gosynth.Descriptor, settings OpSettings, _ int) (gosynth.Module, error) {
	op := &Op{kind: settings.Kind, out: gosynth.WithOut[gosynth.Signal](d, "out")}
	switch settings.Kind {
	case OpAdd:
		for i := 0; i < settings.Inputs; i++ {
			op.ins = append(op.ins, gosynth.WithInDefault[gosynth.Signal](d, portName(i), 0))
		}
	case OpMultiply:
		for i := 0; i < settings.Inputs; i++ {
			op.ins = append(op.ins, gosynth.WithInDefault[gosynth.Signal](d, portName(i), 1))
		}
	case OpNegate:
		op.ins = []gosynth.InHandle[gosynth.Signal]{gosynth.WithInDefault[gosynth.Signal](d, "in", 0)}
	}
	return op, nil
}

func portName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return string(rune('a' + i))
}

func (o *Op) FillBuffers(in *gosynth.BuffersIn, out *gosynth.BuffersOut) {
	res := gosynth.GetOut(out, o.out)

	switch o.kind {
	case OpAdd:
		for i := range res {
			res[i] = 0
		}
		for _, h := range o.ins {
			block := gosynth.GetIn(in, h)
			for i := range res {
				res[i] += block[i]
			}
		}
	case OpMultiply:
		for i := range res {
			res[i] = 1
		}
		for _, h := range o.ins {
			block := gosynth.GetIn(in, h)
			for i := range res {
				res[i] *= block[i]
			}
		}
	case OpNegate:
		block := gosynth.GetIn(in, o.ins[0])
		for i := range res {
			res[i] = -block[i]
		}
	}
}
