package back

import (
	"math"

	"github.com/slowlang/isel/compiler/ir"
)

type (
	OffKind int

	// AddrPattern is a base plus optional offset addressing form.
	// Off decides which of Imm and Reg is meaningful.
	AddrPattern struct {
		Base ir.Expr
		Off  OffKind
		Imm  int64
		Reg  ir.Expr
	}
)

const (
	OffNone OffKind = iota
	OffImm
	OffReg
)

// simm13 for 32-bit addressing, the full 32-bit displacement for 64-bit.
const (
	minImm32 = -4096
	maxImm32 = 4095
	minImm64 = math.MinInt32
	maxImm64 = math.MaxInt32
)

// ClassifyAddress finds the addressing form of address x for the given width.
// It never fails: anything it can't fold becomes a base-only form of x itself.
func ClassifyAddress(f *ir.Func, x ir.Expr, width int) AddrPattern {
	if width != 32 && width != 64 {
		panic(width)
	}

	switch n := f.Exprs[x].(type) {
	case ir.Frame:
		return AddrPattern{Base: x, Reg: ir.Nil}
	case ir.Global:
		if n.Off == 0 {
			return AddrPattern{Base: x, Reg: ir.Nil}
		}

		if immFits(n.Off, width) {
			return AddrPattern{Base: x, Off: OffImm, Imm: n.Off, Reg: ir.Nil}
		}
	case ir.Add:
		if p, ok := classifyAdd(f, x, n, width); ok {
			return p
		}
	}

	return AddrPattern{Base: x, Reg: ir.Nil}
}

func classifyAdd(f *ir.Func, x ir.Expr, n ir.Add, width int) (AddrPattern, bool) {
	base, c, ok := constOperand(f, n)

	if ok {
		// symbol + constant
		if g, isg := f.Exprs[base].(ir.Global); isg {
			if imm := g.Off + c; immFits(imm, width) && !addOverflows(g.Off, c) {
				return AddrPattern{Base: base, Off: OffImm, Imm: imm, Reg: ir.Nil}, true
			}
		} else if legalReg(f, x, width) && immFits(c, width) {
			return AddrPattern{Base: base, Off: OffImm, Imm: c, Reg: ir.Nil}, true
		}
	}

	// base + register
	if !legalReg(f, x, width) {
		return AddrPattern{}, false
	}

	l, r := n.L, n.R
	if _, ok := f.Exprs[l].(ir.Imm); ok {
		l, r = r, l
	}

	if g, ok := f.Exprs[l].(ir.Global); ok && g.Off != 0 {
		return AddrPattern{}, false
	}

	if !legalReg(f, r, width) {
		return AddrPattern{}, false
	}

	return AddrPattern{Base: l, Off: OffReg, Reg: r}, true
}

// ClassifyDirect matches a bare symbol address.
func ClassifyDirect(f *ir.Func, x ir.Expr) (ir.Expr, bool) {
	if g, ok := f.Exprs[x].(ir.Global); ok && g.Off == 0 {
		return x, true
	}

	return ir.Nil, false
}

// constOperand returns the non-constant operand and the constant of an add.
func constOperand(f *ir.Func, n ir.Add) (ir.Expr, int64, bool) {
	if c, ok := f.Exprs[n.R].(ir.Imm); ok {
		return n.L, int64(c), true
	}

	if c, ok := f.Exprs[n.L].(ir.Imm); ok {
		return n.R, int64(c), true
	}

	return ir.Nil, 0, false
}

// legalReg reports whether x lives in the register class of the address width.
// Constants fit any class since they are materialised on demand.
func legalReg(f *ir.Func, x ir.Expr, width int) bool {
	if _, ok := f.Exprs[x].(ir.Imm); ok {
		return true
	}

	return f.EType[x].Bits() == width
}

func immFits(v int64, width int) bool {
	if width == 64 {
		return v >= minImm64 && v <= maxImm64
	}

	return v >= minImm32 && v <= maxImm32
}

func addOverflows(a, b int64) bool {
	s := a + b

	return (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0)
}
