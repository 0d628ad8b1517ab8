package format

import (
	"nikand.dev/go/heap"
	"tlog.app/go/errors"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/target"
)

type (
	// Rule renders an instruction it matches with idiomatic alias text.
	Rule struct {
		Name     string
		Priority int

		Match  func(in *asm.Instr, f target.Features) bool
		Render func(b []byte, p *Printer, in *asm.Instr) []byte
	}

	opMatch struct {
		n   int
		reg bool
		r   asm.Reg
		imm int64
	}

	ruleRef struct {
		prio int
		set  int
		idx  int
	}
)

// Resolve appends the text of the first alias rule matching in.
// It returns false and b unchanged if no rule applies.
func (p *Printer) Resolve(b []byte, in *asm.Instr) ([]byte, bool) {
	if p.Syntax == nil {
		return b, false
	}

	for _, r := range p.Rules {
		if !r.Match(in, p.Features) {
			continue
		}

		return r.Render(b, p, in), true
	}

	return b, false
}

// CompileAliases turns declarative specs into rules keeping their order.
func CompileAliases(specs []target.AliasSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))

	for i, a := range specs {
		r, err := compileAlias(a)
		if err != nil {
			return nil, errors.Wrap(err, "alias %d (%v)", i, a.Name)
		}

		rules = append(rules, r)
	}

	return rules, nil
}

func compileAlias(a target.AliasSpec) (r Rule, err error) {
	var ops []asm.Opcode

	for _, name := range a.Opcodes {
		op, ok := target.LookupOpcode(name)
		if !ok {
			return r, errors.New("unknown opcode: %v", name)
		}

		ops = append(ops, op)
	}

	var ms []opMatch

	for n, v := range a.Ops {
		switch v := v.(type) {
		case string:
			reg, ok := target.ParseReg(v)
			if !ok {
				return r, errors.New("operand %d: unknown register: %v", n, v)
			}

			ms = append(ms, opMatch{n: n, reg: true, r: reg})
		case int:
			ms = append(ms, opMatch{n: n, imm: int64(v)})
		default:
			return r, errors.New("operand %d: unsupported constraint: %T", n, v)
		}
	}

	tmpl, err := ParseTemplate(a.Text)
	if err != nil {
		return r, errors.Wrap(err, "text")
	}

	nops := a.NOps
	feat := a.Features

	r = Rule{
		Name:     a.Name,
		Priority: a.Priority,
		Match: func(in *asm.Instr, f target.Features) bool {
			if !opIn(in.Op, ops) {
				return false
			}

			if nops != 0 && len(in.Ops) != nops {
				return false
			}

			if !feat.Match(f) {
				return false
			}

			for _, m := range ms {
				x, ok := in.Operand(m.n)
				if !ok {
					return false
				}

				if m.reg && !(x.IsReg() && x.Reg == m.r) {
					return false
				}

				if !m.reg && !(x.IsImm() && x.Imm == m.imm) {
					return false
				}
			}

			return true
		},
		Render: func(b []byte, p *Printer, in *asm.Instr) []byte {
			return p.AppendTemplate(b, tmpl, in)
		},
	}

	return r, nil
}

// MergeRules merges rule sets ordered by priority.
// Equal priorities keep the order of sets and of rules within a set.
func MergeRules(sets ...[]Rule) []Rule {
	h := heap.Heap[ruleRef]{Less: ruleLess}

	for s, rules := range sets {
		for i, r := range rules {
			h.Push(ruleRef{prio: r.Priority, set: s, idx: i})
		}
	}

	res := make([]Rule, 0, h.Len())

	for h.Len() != 0 {
		x := h.Pop()

		res = append(res, sets[x.set][x.idx])
	}

	return res
}

func ruleLess(d []ruleRef, i, j int) bool {
	if d[i].prio != d[j].prio {
		return d[i].prio < d[j].prio
	}

	if d[i].set != d[j].set {
		return d[i].set < d[j].set
	}

	return d[i].idx < d[j].idx
}

func opIn(op asm.Opcode, l []asm.Opcode) bool {
	for _, x := range l {
		if x == op {
			return true
		}
	}

	return false
}
