package back

import (
	"context"
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/set"
	"github.com/slowlang/isel/compiler/target"
)

type (
	Config struct {
		Features target.Features
	}

	// Result is what consumers of a selected node observe.
	// Ref is asm.NoRef for nodes folded into registers without an instruction.
	Result struct {
		Ref  asm.Ref
		Regs []asm.Reg
	}

	Selector struct {
		Config

		fn  *ir.Func
		out *asm.Func

		res      []Result
		done     exprSet
		visiting exprSet

		tr tlog.Span
	}

	// Unsupported is the panic value for nodes that can't be selected.
	Unsupported struct {
		Expr   ir.Expr
		Node   any
		Reason string
		At     loc.PC
	}
)

// Select lowers fn starting from its root.
// It panics with *Unsupported if the function contains an unrepresentable node.
func Select(ctx context.Context, fn *ir.Func, cfg Config) *asm.Func {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "back: select func", "name", fn.Name, "nodes", fn.Len(), "features", cfg.Features.String())
	defer tr.Finish()

	if tr.If("dump_dag") {
		for id, x := range fn.Exprs {
			tr.Printw("node", "id", id, "tp", fn.EType[id], "typ", tlog.NextAsType, x, "val", x, "args", ir.Operands(x))
		}
	}

	s := NewSelector(fn, cfg)
	s.tr = tr

	if fn.Root != ir.Nil {
		s.Select(fn.Root)
	}

	if tr.If("dump_code") {
		for i, in := range s.out.Code {
			tr.Printw("code", "ref", i, "instr", in)
		}
	}

	return s.out
}

func NewSelector(fn *ir.Func, cfg Config) *Selector {
	return &Selector{
		Config: cfg,
		fn:     fn,
		out:    asm.New(fn.Name),

		done:     set.MakeBits[ir.Expr](0),
		visiting: set.MakeBits[ir.Expr](0),
	}
}

func (s *Selector) Func() *asm.Func { return s.out }

// Select selects x once. Every later call returns the same Result.
func (s *Selector) Select(x ir.Expr) Result {
	if x == ir.Nil {
		return Result{Ref: asm.NoRef}
	}

	if s.done.IsSet(x) {
		return s.res[x]
	}

	if s.visiting.IsSet(x) {
		s.fatal(x, "dependency cycle")
	}

	s.visiting.Set(x)

	r := s.selectNode(x)

	s.visiting.Clear(x)

	s.res = sliceSet(s.res, x, r)
	s.done.Set(x)

	s.tr.V("isel_node").Printw("selected", "id", x, "typ", tlog.NextAsType, s.fn.Exprs[x], "ref", r.Ref, "regs", r.Regs)

	return r
}

func (s *Selector) selectNode(x ir.Expr) Result {
	switch n := s.fn.Exprs[x].(type) {
	case ir.Entry:
		return Result{Ref: asm.NoRef}
	case ir.Imm:
		rd := s.newReg()
		ref := s.materialize(rd, int64(n))

		return Result{Ref: ref, Regs: []asm.Reg{rd}}
	case ir.Arg:
		reg, ok := target.ArgReg(int(n))
		if !ok {
			s.fatal(x, "argument %d is not passed in a register", int(n))
		}

		return Result{Ref: asm.NoRef, Regs: []asm.Reg{reg}}
	case ir.Frame:
		rd := s.newReg()
		ref := s.emit(target.SET, asm.R(rd), asm.S(frameSym(n)))

		return Result{Ref: ref, Regs: []asm.Reg{rd}}
	case ir.Global:
		rd := s.newReg()
		ref := s.emit(target.SET, asm.R(rd), asm.S(asm.Sym{Name: n.Name, Off: n.Off}))

		return Result{Ref: ref, Regs: []asm.Reg{rd}}
	case ir.Res:
		r := s.Select(n.X)
		if n.N < 0 || n.N >= len(r.Regs) {
			s.fatal(x, "result %d of %d", n.N, len(r.Regs))
		}

		return Result{Ref: r.Ref, Regs: r.Regs[n.N : n.N+1]}
	case ir.Add:
		return s.alu(n.L, n.R, target.ADDrr, target.ADDri, true)
	case ir.Sub:
		return s.alu(n.L, n.R, target.SUBrr, target.SUBri, false)
	case ir.Mul:
		return s.alu(n.L, n.R, target.SMULrr, target.SMULri, true)
	case ir.And:
		if r, ok := s.selectBFE(x); ok {
			return r
		}

		return s.alu(n.L, n.R, target.ANDrr, target.ANDri, true)
	case ir.Or:
		return s.alu(n.L, n.R, target.ORrr, target.ORri, true)
	case ir.Xor:
		return s.alu(n.L, n.R, target.XORrr, target.XORri, true)
	case ir.Shl:
		return s.alu(n.L, n.R, target.SLLrr, target.SLLri, false)
	case ir.Srl:
		if r, ok := s.selectBFE(x); ok {
			return r
		}

		return s.alu(n.L, n.R, target.SRLrr, target.SRLri, false)
	case ir.Sra:
		if r, ok := s.selectBFE(x); ok {
			return r
		}

		return s.alu(n.L, n.R, target.SRArr, target.SRAri, false)
	case ir.Load:
		return s.selectLoad(x, n.Chain, n.Addr, n.Space, 1)
	case ir.LoadV:
		return s.selectLoad(x, n.Chain, n.Addr, n.Space, n.N)
	case ir.LoadNC:
		return s.selectLoadNC(x, n)
	case ir.Store:
		return s.selectStore(x, n.Chain, n.Addr, []ir.Expr{n.Val}, n.Space)
	case ir.StoreV:
		return s.selectStore(x, n.Chain, n.Addr, n.Vals, n.Space)
	case ir.LoadParam:
		return s.selectLoadParam(x, n)
	case ir.StoreRetval:
		return s.selectStoreRetval(x, n)
	case ir.StoreParam:
		return s.selectStoreParam(x, n)
	case ir.AddrSpaceCast:
		return s.selectAddrSpaceCast(x, n)
	case ir.Tex:
		return s.selectTex(x, n)
	case ir.Suld:
		return s.selectSuld(x, n)
	case ir.Sust:
		return s.selectSust(x, n)
	case ir.Intrinsic:
		if n.Chain == ir.Nil {
			return s.selectIntrinsicNoChain(x, n)
		}

		return s.selectIntrinsicChain(x, n)
	case ir.Ret:
		s.Select(n.Chain)

		link := target.I7
		if s.fn.Leaf {
			link = target.O7
		}

		ref := s.emit(target.JMPLri, asm.R(target.G0), asm.R(link), asm.I(8))

		return Result{Ref: ref}
	default:
		s.fatal(x, "no selection pattern")
	}

	panic("unreachable")
}

func (s *Selector) alu(l, r ir.Expr, rr, ri asm.Opcode, commutative bool) Result {
	if c, ok := s.fn.Exprs[r].(ir.Imm); ok && immFits(int64(c), 32) {
		rs := s.reg(l)
		rd := s.newReg()

		return Result{Ref: s.emit(ri, asm.R(rd), asm.R(rs), asm.I(int64(c))), Regs: []asm.Reg{rd}}
	}

	if c, ok := s.fn.Exprs[l].(ir.Imm); ok && commutative && immFits(int64(c), 32) {
		rs := s.reg(r)
		rd := s.newReg()

		return Result{Ref: s.emit(ri, asm.R(rd), asm.R(rs), asm.I(int64(c))), Regs: []asm.Reg{rd}}
	}

	rs1 := s.reg(l)
	rs2 := s.reg(r)
	rd := s.newReg()

	return Result{Ref: s.emit(rr, asm.R(rd), asm.R(rs1), asm.R(rs2)), Regs: []asm.Reg{rd}}
}

// materialize puts constant v into rd.
func (s *Selector) materialize(rd asm.Reg, v int64) asm.Ref {
	if immFits(v, 32) {
		return s.emit(target.ORri, asm.R(rd), asm.R(target.G0), asm.I(v))
	}

	return s.emit(target.SET, asm.R(rd), asm.I(v))
}

// reg selects x and returns the register holding its value.
func (s *Selector) reg(x ir.Expr) asm.Reg {
	r := s.Select(x)
	if len(r.Regs) == 0 {
		s.fatal(x, "used as a value but produces none")
	}

	return r.Regs[0]
}

func (s *Selector) regs(xs []ir.Expr) []asm.Operand {
	ops := make([]asm.Operand, len(xs))

	for i, x := range xs {
		ops[i] = asm.R(s.reg(x))
	}

	return ops
}

func (s *Selector) newReg() asm.Reg {
	return s.out.Alloc(target.VirtBase)
}

func (s *Selector) newRegs(n int) []asm.Reg {
	r := make([]asm.Reg, n)

	for i := range r {
		r[i] = s.newReg()
	}

	return r
}

func (s *Selector) emit(op asm.Opcode, ops ...asm.Operand) asm.Ref {
	return s.out.Emit(op, ops...)
}

func (s *Selector) fatal(x ir.Expr, format string, args ...any) {
	var n any
	if x >= 0 && int(x) < len(s.fn.Exprs) {
		n = s.fn.Exprs[x]
	}

	e := &Unsupported{
		Expr:   x,
		Node:   n,
		Reason: fmt.Sprintf(format, args...),
		At:     loc.Caller(1),
	}

	s.tr.Printw("unsupported node", "id", x, "typ", tlog.NextAsType, n, "reason", e.Reason, "from", e.At)

	panic(e)
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("cannot select node %d (%T): %s", e.Expr, e.Node, e.Reason)
}

func frameSym(n ir.Frame) asm.Sym {
	return asm.Sym{Name: fmt.Sprintf("__local_depot%d", int(n))}
}

func regOps(rs []asm.Reg) []asm.Operand {
	ops := make([]asm.Operand, len(rs))

	for i, r := range rs {
		ops[i] = asm.R(r)
	}

	return ops
}
