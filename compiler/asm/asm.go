package asm

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Opcode int
	Reg    int
	Ref    int

	Kind uint8

	Sym struct {
		Name string
		Off  int64
	}

	Operand struct {
		Kind Kind
		Reg  Reg
		Imm  int64
		Sym  Sym
	}

	// Instr is immutable once appended to a Func.
	Instr struct {
		Op  Opcode
		Ops []Operand
	}

	Func struct {
		Name string
		Code []Instr

		NextReg Reg
	}
)

const (
	KindReg Kind = iota
	KindImm
	KindSym
)

const NoRef Ref = -1

func R(r Reg) Operand { return Operand{Kind: KindReg, Reg: r} }

func I(v int64) Operand { return Operand{Kind: KindImm, Imm: v} }

func S(s Sym) Operand { return Operand{Kind: KindSym, Sym: s} }

func New(name string) *Func {
	return &Func{Name: name}
}

func (x Operand) IsReg() bool { return x.Kind == KindReg }
func (x Operand) IsImm() bool { return x.Kind == KindImm }
func (x Operand) IsSym() bool { return x.Kind == KindSym }

// Emit appends an instruction and returns its reference.
func (f *Func) Emit(op Opcode, ops ...Operand) Ref {
	ref := Ref(len(f.Code))

	f.Code = append(f.Code, Instr{Op: op, Ops: ops})

	return ref
}

func (f *Func) Instr(ref Ref) *Instr {
	return &f.Code[ref]
}

// Alloc allocates a fresh virtual register starting from base.
func (f *Func) Alloc(base Reg) Reg {
	if f.NextReg < base {
		f.NextReg = base
	}

	r := f.NextReg
	f.NextReg++

	return r
}

func (in *Instr) NumOps() int { return len(in.Ops) }

func (in *Instr) Operand(i int) (Operand, bool) {
	if i < 0 || i >= len(in.Ops) {
		return Operand{}, false
	}

	return in.Ops[i], true
}

func (x Operand) String() string {
	switch x.Kind {
	case KindReg:
		return fmt.Sprintf("r%d", x.Reg)
	case KindImm:
		return fmt.Sprintf("#%d", x.Imm)
	case KindSym:
		if x.Sym.Off != 0 {
			return fmt.Sprintf("%s%+d", x.Sym.Name, x.Sym.Off)
		}

		return x.Sym.Name
	default:
		return fmt.Sprintf("operand(%d)", x.Kind)
	}
}

func (x Operand) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, x.String())
}

func (in Instr) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	ops := make([]byte, 0, 32)

	for i, x := range in.Ops {
		if i != 0 {
			ops = append(ops, ", "...)
		}

		ops = append(ops, x.String()...)
	}

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt(b, "op", int(in.Op))
	b = e.AppendString(b, "ops")
	b = e.AppendString(b, string(ops))

	return b
}
