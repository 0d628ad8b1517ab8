package back

import (
	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/target"
)

var (
	texOps  = [...]asm.Opcode{1: target.TEX1D, 2: target.TEX2D, 3: target.TEX3D}
	suldOps = [...]asm.Opcode{1: target.SULD1D, 2: target.SULD2D, 3: target.SULD3D}
	sustOps = [...]asm.Opcode{1: target.SUST1D, 2: target.SUST2D, 3: target.SUST3D}

	// one argument, one result
	unaryIntrinsics = map[string]asm.Opcode{
		"popc": target.POPC,
		"clz":  target.CLZ,
		"brev": target.BREV,
	}
)

// handle returns a texture or surface reference operand.
func (s *Selector) handle(x ir.Expr) asm.Operand {
	if g, ok := ClassifyDirect(s.fn, x); ok {
		return asm.S(asm.Sym{Name: s.fn.Exprs[g].(ir.Global).Name})
	}

	return asm.R(s.reg(x))
}

func (s *Selector) dim(x ir.Expr, dim int, coords []ir.Expr, ops []asm.Opcode) asm.Opcode {
	if dim <= 0 || dim >= len(ops) {
		s.fatal(x, "unsupported dimension %d", dim)
	}

	if len(coords) != dim {
		s.fatal(x, "%d coordinates for %d dimensions", len(coords), dim)
	}

	return ops[dim]
}

func (s *Selector) selectTex(x ir.Expr, n ir.Tex) Result {
	op := s.dim(x, n.Dim, n.Coords, texOps[:])

	s.Select(n.Chain)

	h := s.handle(n.Handle)
	smp := s.handle(n.Sampler)
	coords := s.regs(n.Coords)

	rd := s.newRegs(4)

	ops := append(regOps(rd), h, smp)
	ops = append(ops, coords...)

	return Result{Ref: s.emit(op, ops...), Regs: rd}
}

func (s *Selector) selectSuld(x ir.Expr, n ir.Suld) Result {
	op := s.dim(x, n.Dim, n.Coords, suldOps[:])

	s.Select(n.Chain)

	h := s.handle(n.Handle)
	coords := s.regs(n.Coords)

	rd := s.newReg()

	ops := append([]asm.Operand{asm.R(rd), h}, coords...)

	return Result{Ref: s.emit(op, ops...), Regs: []asm.Reg{rd}}
}

func (s *Selector) selectSust(x ir.Expr, n ir.Sust) Result {
	op := s.dim(x, n.Dim, n.Coords, sustOps[:])

	if len(n.Vals) != 1 {
		s.fatal(x, "surface store of %d values", len(n.Vals))
	}

	s.Select(n.Chain)

	h := s.handle(n.Handle)
	coords := s.regs(n.Coords)
	val := s.regs(n.Vals)

	ops := append([]asm.Operand{h}, coords...)
	ops = append(ops, val...)

	return Result{Ref: s.emit(op, ops...)}
}

func (s *Selector) selectIntrinsicNoChain(x ir.Expr, n ir.Intrinsic) Result {
	if op, ok := unaryIntrinsics[n.ID]; ok {
		if len(n.Args) != 1 {
			s.fatal(x, "intrinsic %v takes 1 argument, got %d", n.ID, len(n.Args))
		}

		src := s.reg(n.Args[0])
		rd := s.newReg()

		return Result{Ref: s.emit(op, asm.R(rd), asm.R(src)), Regs: []asm.Reg{rd}}
	}

	switch n.ID {
	case "texsurf.handle":
		if len(n.Args) != 1 {
			s.fatal(x, "intrinsic %v takes 1 argument, got %d", n.ID, len(n.Args))
		}

		g, ok := ClassifyDirect(s.fn, n.Args[0])
		if !ok {
			s.fatal(x, "texsurf handle of a non-symbol")
		}

		rd := s.newReg()
		sym := asm.Sym{Name: s.fn.Exprs[g].(ir.Global).Name}

		return Result{Ref: s.emit(target.TEXHANDLE, asm.R(rd), asm.S(sym)), Regs: []asm.Reg{rd}}
	}

	s.fatal(x, "unknown intrinsic: %v", n.ID)

	panic("unreachable")
}

func (s *Selector) selectIntrinsicChain(x ir.Expr, n ir.Intrinsic) Result {
	switch n.ID {
	case "membar":
		s.Select(n.Chain)

		return Result{Ref: s.emit(target.MEMBAR)}
	case "ldg.global", "ldu.global":
		if len(n.Args) != 1 {
			s.fatal(x, "intrinsic %v takes 1 argument, got %d", n.ID, len(n.Args))
		}

		return s.selectLoadNC(x, ir.LoadNC{
			Chain:   n.Chain,
			Addr:    n.Args[0],
			Space:   target.SpaceGlobal,
			N:       1,
			Uniform: n.ID == "ldu.global",
		})
	}

	if _, ok := unaryIntrinsics[n.ID]; ok {
		s.Select(n.Chain)

		return s.selectIntrinsicNoChain(x, n)
	}

	s.fatal(x, "unknown intrinsic: %v", n.ID)

	panic("unreachable")
}
