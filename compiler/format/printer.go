package format

import (
	"context"
	"fmt"
	"io"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/ir"
	"github.com/slowlang/isel/compiler/target"
)

type (
	// Syntax is the immutable set of templates and alias rules.
	// It may be shared by any number of Printers.
	Syntax struct {
		Templates [target.NumOpcodes]Template
		Rules     []Rule
	}

	// Printer renders instructions of one stream.
	// It's not safe for concurrent use, create one per function being rendered.
	Printer struct {
		*Syntax

		Features target.Features

		RegName func(asm.Reg) string
		Expr    func(b []byte, s asm.Sym) []byte

		// Numbered prefixes every line with a line number.
		Numbered bool

		line int
	}
)

// Compile builds Syntax from declarative tables.
func Compile(t *target.Tables) (*Syntax, error) {
	s := &Syntax{}

	for name, text := range t.Templates {
		op, ok := target.LookupOpcode(name)
		if !ok {
			return nil, errors.New("template for unknown opcode: %v", name)
		}

		tmpl, err := ParseTemplate(text)
		if err != nil {
			return nil, errors.Wrap(err, "template %v", name)
		}

		s.Templates[op] = tmpl
	}

	rules, err := CompileAliases(t.Aliases)
	if err != nil {
		return nil, errors.Wrap(err, "aliases")
	}

	s.Rules = rules

	return s, nil
}

func BuiltinSyntax() (*Syntax, error) {
	t, err := target.Builtin()
	if err != nil {
		return nil, err
	}

	return Compile(t)
}

func New(s *Syntax, f target.Features) *Printer {
	return &Printer{
		Syntax:   s,
		Features: f,
	}
}

// Line returns the number the next numbered line gets.
func (p *Printer) Line() int { return p.line }

// AppendInstr renders in as one line without trailing newline.
// Alias rules are tried first, then the opcode template.
func (p *Printer) AppendInstr(b []byte, in *asm.Instr) []byte {
	b = append(b, '\t')

	b, ok := p.Resolve(b, in)
	if ok {
		return b
	}

	return p.AppendCanonical(b, in)
}

// AppendCanonical renders in using the opcode template, bypassing aliases.
func (p *Printer) AppendCanonical(b []byte, in *asm.Instr) []byte {
	if p.Syntax != nil && in.Op > 0 && in.Op < target.NumOpcodes {
		if t := p.Templates[in.Op]; t != nil {
			return p.AppendTemplate(b, t, in)
		}
	}

	b = hfmt.Appendf(b, "%s", target.OpcodeName(in.Op))

	for i, x := range in.Ops {
		if i == 0 {
			b = append(b, ' ')
		} else {
			b = append(b, ", "...)
		}

		b = p.AppendOperand(b, in.Op, x)
	}

	return b
}

func (p *Printer) AppendTemplate(b []byte, t Template, in *asm.Instr) []byte {
	for _, s := range t {
		if s.dir == 0 {
			b = append(b, s.lit...)
			continue
		}

		x, ok := in.Operand(s.n)
		if !ok {
			b = hfmt.Appendf(b, "<bad operand %d>", s.n)
			continue
		}

		switch s.dir {
		case dirOperand:
			b = p.AppendOperand(b, in.Op, x)
		case dirMem:
			off, ok := in.Operand(s.n + 1)
			if !ok {
				off = asm.I(0)
			}

			b = p.AppendMem(b, in.Op, x, off)
		case dirCond:
			b = p.AppendCond(b, x.Imm, target.OpcodeClass(in.Op))
		case dirSpace:
			b = append(b, target.SpaceSuffix(ir.Space(x.Imm))...)
		default:
			panic(s.dir)
		}
	}

	return b
}

// AppendLine renders in as a full line, numbered if requested.
func (p *Printer) AppendLine(b []byte, in *asm.Instr) []byte {
	if p.Numbered {
		b = hfmt.Appendf(b, "%d:", p.line)
		p.line++
	}

	b = p.AppendInstr(b, in)

	return append(b, '\n')
}

// WriteFunc renders the whole function to w.
// The only errors returned are w's.
func (p *Printer) WriteFunc(ctx context.Context, w io.Writer, f *asm.Func) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "format: write func", "name", f.Name, "instrs", len(f.Code))
	defer tr.Finish("err", &err)

	b := fmt.Appendf(nil, `
.global %v
.align 4
%[1]v:
`, f.Name)

	for i := range f.Code {
		b = p.AppendLine(b, &f.Code[i])
	}

	if tr.If("dump_text") {
		tr.Printw("text", "text", b)
	}

	_, err = w.Write(b)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}
