package back

import (
	"math/bits"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/target"
)

// selectBFE tries to turn a shift-and-mask tree rooted at x into a bit-field extract.
// The field must satisfy 0 <= start < W and 1 <= len <= W-start.
func (s *Selector) selectBFE(x ir.Expr) (Result, bool) {
	w := s.fn.EType[x].Bits()
	if w != 32 && w != 64 {
		return Result{}, false
	}

	var (
		val         ir.Expr
		start, size int64
		signed      bool
		ok          bool
	)

	switch n := s.fn.Exprs[x].(type) {
	case ir.And:
		val, start, size, ok = s.bfeAnd(n)
	case ir.Srl:
		val, start, size, ok = s.bfeShift(n.L, n.R, w)
	case ir.Sra:
		val, start, size, ok = s.bfeShift(n.L, n.R, w)
		signed = true

		if _, isAnd := s.fn.Exprs[n.L].(ir.And); isAnd {
			ok = false
		}
	}

	if !ok || start < 0 || start >= int64(w) || size < 1 || start+size > int64(w) {
		return Result{}, false
	}

	op := target.BFEU
	if signed {
		op = target.BFES
	}

	src := s.reg(val)
	rd := s.newReg()

	ref := s.emit(op, asm.R(rd), asm.R(src), asm.I(start), asm.I(size))

	return Result{Ref: ref, Regs: []asm.Reg{rd}}, true
}

// and (srl val, start), mask
func (s *Selector) bfeAnd(n ir.And) (val ir.Expr, start, size int64, ok bool) {
	lhs, mask, ok := s.constSide(n.L, n.R)
	if !ok {
		return
	}

	m := uint64(mask)
	if m == 0 || m&(m+1) != 0 {
		return val, 0, 0, false
	}

	size = int64(bits.OnesCount64(m))

	var sh ir.Expr

	switch l := s.fn.Exprs[lhs].(type) {
	case ir.Srl:
		val, sh = l.L, l.R
	case ir.Sra:
		val, sh = l.L, l.R
	default:
		return val, 0, 0, false
	}

	c, ok := s.fn.Exprs[sh].(ir.Imm)
	if !ok {
		return val, 0, 0, false
	}

	return val, int64(c), size, true
}

// srl (and val, mask), start
// srl (shl val, a), b
// sra (shl val, a), b
func (s *Selector) bfeShift(l, r ir.Expr, w int) (val ir.Expr, start, size int64, ok bool) {
	c, ok := s.fn.Exprs[r].(ir.Imm)
	if !ok {
		return
	}

	sh := int64(c)

	switch inner := s.fn.Exprs[l].(type) {
	case ir.And:
		v, mask, ok := s.constSide(inner.L, inner.R)
		if !ok {
			return val, 0, 0, false
		}

		m := uint64(mask)
		if m == 0 {
			return val, 0, 0, false
		}

		zeros := int64(bits.TrailingZeros64(m))
		ones := int64(bits.TrailingZeros64(^(m >> zeros)))

		if (m>>zeros)&((m>>zeros)+1) != 0 {
			return val, 0, 0, false // not contiguous
		}

		if sh < zeros || sh >= zeros+ones {
			return val, 0, 0, false
		}

		return v, sh, zeros + ones - sh, true
	case ir.Shl:
		ac, ok := s.fn.Exprs[inner.R].(ir.Imm)
		if !ok {
			return val, 0, 0, false
		}

		a := int64(ac)
		if a < 0 || sh < a || sh >= int64(w) {
			return val, 0, 0, false
		}

		return inner.L, sh - a, int64(w) - sh, true
	}

	return val, 0, 0, false
}

// constSide splits a commutative pair into its non-constant side and the constant.
func (s *Selector) constSide(l, r ir.Expr) (ir.Expr, int64, bool) {
	if c, ok := s.fn.Exprs[r].(ir.Imm); ok {
		return l, int64(c), true
	}

	if c, ok := s.fn.Exprs[l].(ir.Imm); ok {
		return r, int64(c), true
	}

	return ir.Nil, 0, false
}
