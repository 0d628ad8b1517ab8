package back

import (
	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/target"
)

type (
	// candidate is an opcode usable only for one address space.
	candidate struct {
		Space ir.Space
		Op    asm.Opcode
	}
)

var (
	ldgCandidates = map[int][]candidate{
		1: {{Space: target.SpaceGlobal, Op: target.LDG}},
		2: {{Space: target.SpaceGlobal, Op: target.LDGV2}},
		4: {{Space: target.SpaceGlobal, Op: target.LDGV4}},
	}

	lduCandidates = map[int][]candidate{
		1: {{Space: target.SpaceGlobal, Op: target.LDU}},
		2: {{Space: target.SpaceGlobal, Op: target.LDUV2}},
		4: {{Space: target.SpaceGlobal, Op: target.LDUV4}},
	}
)

// pick returns the first candidate whose space equals sp.
func pick(sp ir.Space, cs []candidate) (asm.Opcode, bool) {
	for _, c := range cs {
		if c.Space == sp {
			return c.Op, true
		}
	}

	return 0, false
}

// addr folds address a into a base and offset operand pair.
// Anything ClassifyAddress can't fold ends up in a register with zero offset.
func (s *Selector) addr(a ir.Expr) (base, off asm.Operand) {
	p := ClassifyAddress(s.fn, a, s.Features.AddrWidth())

	switch n := s.fn.Exprs[p.Base].(type) {
	case ir.Frame:
		base = asm.S(frameSym(n))
	case ir.Global:
		if p.Off == OffImm {
			base = asm.S(asm.Sym{Name: n.Name})
		} else {
			base = asm.S(asm.Sym{Name: n.Name, Off: n.Off})
		}
	default:
		base = asm.R(s.reg(p.Base))
	}

	switch p.Off {
	case OffNone:
		off = asm.I(0)
	case OffImm:
		off = asm.I(p.Imm)
	case OffReg:
		off = asm.R(s.reg(p.Reg))
	default:
		panic(p.Off)
	}

	return base, off
}

func (s *Selector) selectLoad(x, chain, a ir.Expr, sp ir.Space, n int) Result {
	var op asm.Opcode

	switch n {
	case 1:
		op = target.LD
	case 2:
		op = target.LDV2
	case 4:
		op = target.LDV4
	default:
		s.fatal(x, "vector load of %d elements", n)
	}

	s.Select(chain)

	base, off := s.addr(a)
	rd := s.newRegs(n)

	ops := append(regOps(rd), asm.I(int64(sp)), base, off)

	return Result{Ref: s.emit(op, ops...), Regs: rd}
}

func (s *Selector) selectLoadNC(x ir.Expr, n ir.LoadNC) Result {
	cs := ldgCandidates
	if n.Uniform {
		cs = lduCandidates
	}

	l, ok := cs[n.N]
	if !ok {
		s.fatal(x, "non-coherent load of %d elements", n.N)
	}

	op, ok := pick(n.Space, l)
	if !ok || !s.Features.LDG {
		return s.selectLoad(x, n.Chain, n.Addr, n.Space, n.N)
	}

	s.Select(n.Chain)

	base, off := s.addr(n.Addr)
	rd := s.newRegs(n.N)

	ops := append(regOps(rd), base, off)

	return Result{Ref: s.emit(op, ops...), Regs: rd}
}

func (s *Selector) selectStore(x, chain, a ir.Expr, vals []ir.Expr, sp ir.Space) Result {
	var op asm.Opcode

	switch len(vals) {
	case 1:
		op = target.ST
	case 2:
		op = target.STV2
	case 4:
		op = target.STV4
	default:
		s.fatal(x, "vector store of %d elements", len(vals))
	}

	s.Select(chain)

	base, off := s.addr(a)

	ops := []asm.Operand{asm.I(int64(sp)), base, off}
	ops = append(ops, s.regs(vals)...)

	return Result{Ref: s.emit(op, ops...)}
}

func (s *Selector) selectLoadParam(x ir.Expr, n ir.LoadParam) Result {
	var op asm.Opcode

	switch n.N {
	case 1:
		op = target.LDPARAM
	case 2:
		op = target.LDPARAMV2
	case 4:
		op = target.LDPARAMV4
	default:
		s.fatal(x, "param load of %d elements", n.N)
	}

	s.Select(n.Chain)

	rd := s.newRegs(n.N)
	ops := append(regOps(rd), asm.I(n.Off))

	return Result{Ref: s.emit(op, ops...), Regs: rd}
}

func (s *Selector) selectStoreRetval(x ir.Expr, n ir.StoreRetval) Result {
	var op asm.Opcode

	switch len(n.Vals) {
	case 1:
		op = target.STRETVAL
	case 2:
		op = target.STRETVALV2
	case 4:
		op = target.STRETVALV4
	default:
		s.fatal(x, "retval store of %d elements", len(n.Vals))
	}

	s.Select(n.Chain)

	ops := []asm.Operand{asm.I(n.Off)}
	ops = append(ops, s.regs(n.Vals)...)

	return Result{Ref: s.emit(op, ops...)}
}

func (s *Selector) selectStoreParam(x ir.Expr, n ir.StoreParam) Result {
	var op asm.Opcode

	switch len(n.Vals) {
	case 1:
		op = target.STPARAM
	case 2:
		op = target.STPARAMV2
	case 4:
		op = target.STPARAMV4
	default:
		s.fatal(x, "param store of %d elements", len(n.Vals))
	}

	s.Select(n.Chain)

	ops := []asm.Operand{asm.I(int64(n.Param)), asm.I(n.Off)}
	ops = append(ops, s.regs(n.Vals)...)

	return Result{Ref: s.emit(op, ops...)}
}

func (s *Selector) selectAddrSpaceCast(x ir.Expr, n ir.AddrSpaceCast) Result {
	if n.From == n.To {
		return s.Select(n.X)
	}

	var op asm.Opcode
	var sp ir.Space

	switch {
	case n.From == target.SpaceGeneric:
		op, sp = target.CVTATO, n.To
	case n.To == target.SpaceGeneric:
		op, sp = target.CVTA, n.From
	default:
		s.fatal(x, "cast between two non-generic address spaces: %d -> %d", n.From, n.To)
	}

	src := s.reg(n.X)
	rd := s.newReg()

	return Result{Ref: s.emit(op, asm.R(rd), asm.R(src), asm.I(int64(sp))), Regs: []asm.Reg{rd}}
}
