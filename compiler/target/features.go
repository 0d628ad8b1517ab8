package target

import (
	"strings"

	"tlog.app/go/errors"
)

type (
	Features struct {
		V9    bool // fcc0 is an explicit operand
		Ptr64 bool // 64-bit addressing
		LDG   bool // non-coherent global loads
	}
)

func ParseFeatures(s string) (f Features, err error) {
	for _, w := range strings.Split(s, ",") {
		w = strings.TrimSpace(w)

		on := true

		switch {
		case w == "":
			continue
		case w[0] == '+':
			w = w[1:]
		case w[0] == '-':
			w = w[1:]
			on = false
		}

		switch w {
		case "v9":
			f.V9 = on
		case "ptr64":
			f.Ptr64 = on
		case "ldg":
			f.LDG = on
		default:
			return f, errors.New("unknown feature: %v", w)
		}
	}

	return f, nil
}

// AddrWidth is the address width in bits.
func (f Features) AddrWidth() int {
	if f.Ptr64 {
		return 64
	}

	return 32
}

func (f Features) String() string {
	var l []string

	if f.V9 {
		l = append(l, "v9")
	}

	if f.Ptr64 {
		l = append(l, "ptr64")
	}

	if f.LDG {
		l = append(l, "ldg")
	}

	return strings.Join(l, ",")
}
