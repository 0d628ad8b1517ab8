package format

import (
	"strconv"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/target"
)

// trap immediates are encoded in a seven bit field
const trapImmMask = 0x7f

// AppendOperand renders one operand in the context of opcode op.
func (p *Printer) AppendOperand(b []byte, op asm.Opcode, x asm.Operand) []byte {
	switch x.Kind {
	case asm.KindReg:
		return append(b, p.regName(x.Reg)...)
	case asm.KindImm:
		v := x.Imm

		if target.OpcodeClass(op) == target.ClassTrap {
			v &= trapImmMask
		}

		return strconv.AppendInt(b, v, 10)
	case asm.KindSym:
		if p.Expr != nil {
			return p.Expr(b, x.Sym)
		}

		return AppendSym(b, x.Sym)
	default:
		panic(x)
	}
}

// AppendMem renders base and, unless it's zero, +off.
func (p *Printer) AppendMem(b []byte, op asm.Opcode, base, off asm.Operand) []byte {
	b = p.AppendOperand(b, op, base)

	if off.IsReg() && off.Reg == target.G0 || off.IsImm() && off.Imm == 0 {
		return b
	}

	b = append(b, '+')

	return p.AppendOperand(b, op, off)
}

// AppendCond renders raw condition code cc read from an instruction of class cl.
func (p *Printer) AppendCond(b []byte, cc int64, cl target.Class) []byte {
	abs := target.Renumber(cc, cl)

	return append(b, target.CondName(abs)...)
}

// AppendSym is the default symbolic expression printer.
func AppendSym(b []byte, s asm.Sym) []byte {
	b = append(b, s.Name...)

	if s.Off > 0 {
		b = append(b, '+')
	}

	if s.Off != 0 {
		b = strconv.AppendInt(b, s.Off, 10)
	}

	return b
}

func (p *Printer) regName(r asm.Reg) string {
	if p.RegName != nil {
		return p.RegName(r)
	}

	return target.RegName(r)
}
