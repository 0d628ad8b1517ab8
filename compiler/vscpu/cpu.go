package vscpu

import (
	"context"
	"fmt"
	"io"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/isel/compiler/set"
)

type (
	CPU struct {
		PC int

		Mem      [MemSize]uint32
		Modified set.Bits[int]

		Halted bool
	}

	// GarbageError is returned when an instruction reads a cell
	// nobody has written to.
	GarbageError struct {
		PC   int
		Addr int
	}
)

var ErrGarbage = errors.New("garbage read")

func New(img *Image) *CPU {
	c := &CPU{}
	c.Load(img)

	return c
}

func (c *CPU) Load(img *Image) {
	for _, w := range img.Words {
		c.Mem[w.Addr] = w.Val
		c.Modified.Set(w.Addr)
	}
}

// Run executes until the program halts, fails, or limit steps are done.
// Zero limit means no limit.
func (c *CPU) Run(ctx context.Context, limit int) (steps int, err error) {
	tr := tlog.SpanFromContext(ctx)

	for !c.Halted && (limit == 0 || steps < limit) {
		if steps&0xfff == 0 {
			select {
			case <-ctx.Done():
				return steps, ctx.Err()
			default:
			}
		}

		if tr.If("vscpu_trace") && c.PC >= 0 && c.PC < MemSize {
			op, imm, a, b := Decode(c.Mem[c.PC])
			tr.Printw("step", "pc", c.PC, "op", op, "imm", imm, "a", a, "b", b)
		}

		err = c.Step()
		if err != nil {
			return steps, errors.Wrap(err, "step %d", steps)
		}

		steps++
	}

	return steps, nil
}

// Step executes one instruction.
// On a garbage read the pc is left at the faulting instruction.
func (c *CPU) Step() (err error) {
	if c.Halted {
		return nil
	}

	pc := c.PC
	if pc < 0 || pc >= MemSize {
		return errors.New("pc out of memory: %d", pc)
	}

	if !c.Modified.IsSet(pc) {
		return c.garbage(pc, pc)
	}

	op, imm, a, b := Decode(c.Mem[pc])

	c.PC++
	c.Modified.Set(a)

	var arg uint32

	if imm {
		arg = uint32(b)
	} else {
		if !c.Modified.IsSet(b) {
			return c.garbage(pc, b)
		}

		arg = c.Mem[b]
	}

	m := &c.Mem[a]

	switch op {
	case ADD:
		*m += arg
	case NAND:
		*m = ^(*m & arg)
	case SRL:
		if arg < 32 {
			*m >>= arg
		} else if arg-32 < 32 {
			*m <<= arg - 32
		} else {
			*m = 0
		}
	case LT:
		if *m < arg {
			*m = 1
		} else {
			*m = 0
		}
	case CP:
		*m = arg
	case CPI:
		return c.cpi(pc, a, b, imm)
	case BZJ:
		return c.bzj(pc, *m, arg, imm)
	case MUL:
		*m *= arg
	default:
		panic(op)
	}

	return nil
}

func (c *CPU) cpi(pc, a, b int, imm bool) error {
	if !c.Modified.IsSet(b) {
		return c.garbage(pc, b)
	}

	if !imm {
		src := int(c.Mem[b])
		if src >= MemSize || !c.Modified.IsSet(src) {
			return c.garbage(pc, src)
		}

		c.Mem[a] = c.Mem[src]

		return nil
	}

	dst := int(c.Mem[a])
	if dst >= MemSize {
		return errors.New("indirect store out of memory: %d", dst)
	}

	c.Mem[dst] = c.Mem[b]
	c.Modified.Set(dst)

	return nil
}

func (c *CPU) bzj(pc int, base, arg uint32, imm bool) error {
	var next uint64

	switch {
	case imm:
		next = uint64(base) + uint64(arg)
	case arg == 0:
		next = uint64(base)
	default:
		return nil
	}

	if next >= MemSize {
		return errors.New("jump out of memory: %d", next)
	}

	c.PC = int(next)
	c.Halted = c.PC == pc

	return nil
}

func (c *CPU) garbage(pc, addr int) error {
	c.PC = pc

	return &GarbageError{PC: pc, Addr: addr}
}

func (e *GarbageError) Error() string {
	return fmt.Sprintf("garbage read at mem[%d] (pc %d)", e.Addr, e.PC)
}

func (e *GarbageError) Is(target error) bool { return target == ErrGarbage }

// Dump writes modified cells as "addr: value", in hex if asked.
func (c *CPU) Dump(w io.Writer, hex bool) error {
	var b []byte

	c.Modified.Range(func(a int) bool {
		if hex {
			b = fmt.Appendf(b, "%d: %#x\n", a, c.Mem[a])
		} else {
			b = fmt.Appendf(b, "%d: %d\n", a, c.Mem[a])
		}

		return true
	})

	_, err := w.Write(b)

	return err
}
