package format

import (
	"bytes"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/target"
)

// ParseListing reads canonical machine instructions, one per line:
//
//	name:
//		ORri %g0, 5, %r0
//		SET sym+8, %r1
//
// Empty lines and lines starting with # are skipped.
func ParseListing(text []byte) (*asm.Func, error) {
	f := asm.New("")

	for line := 1; len(text) != 0; line++ {
		var l []byte
		l, text, _ = bytes.Cut(text, []byte{'\n'})

		s := strings.TrimSpace(string(l))
		if s == "" || s[0] == '#' {
			continue
		}

		if name, ok := strings.CutSuffix(s, ":"); ok {
			f.Name = name
			continue
		}

		in, err := ParseInstr(s)
		if err != nil {
			return nil, errors.Wrap(err, "line %d", line)
		}

		f.Emit(in.Op, in.Ops...)
	}

	return f, nil
}

func ParseInstr(s string) (in asm.Instr, err error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(s), " ")

	var ok bool

	in.Op, ok = target.LookupOpcode(name)
	if !ok {
		return in, errors.New("unknown opcode: %q", name)
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return in, nil
	}

	for _, o := range strings.Split(rest, ",") {
		x, err := ParseOperand(strings.TrimSpace(o))
		if err != nil {
			return in, errors.Wrap(err, "%v", name)
		}

		in.Ops = append(in.Ops, x)
	}

	return in, nil
}

// ParseOperand parses %reg, integer or sym[+-off].
func ParseOperand(s string) (asm.Operand, error) {
	if s == "" {
		return asm.Operand{}, errors.New("empty operand")
	}

	if s[0] == '%' {
		r, ok := target.ParseReg(s)
		if !ok {
			return asm.Operand{}, errors.New("unknown register: %q", s)
		}

		return asm.R(r), nil
	}

	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return asm.I(v), nil
	}

	name, off := s, int64(0)

	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		v, err := strconv.ParseInt(s[i:], 10, 64)
		if err != nil {
			return asm.Operand{}, errors.New("bad symbol offset: %q", s)
		}

		name, off = s[:i], v
	}

	if !isIdent(name) {
		return asm.Operand{}, errors.New("bad operand: %q", s)
	}

	return asm.S(asm.Sym{Name: name, Off: off}), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range []byte(s) {
		switch {
		case c == '_' || c == '.' || c == '$':
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}

	return true
}
