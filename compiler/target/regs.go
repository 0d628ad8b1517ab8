package target

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/slowlang/isel/compiler/asm"
)

const (
	G0 asm.Reg = iota
	G1
	G2
	G3
	G4
	G5
	G6
	G7
	O0
	O1
	O2
	O3
	O4
	O5
	SP // o6
	O7
	L0
	L1
	L2
	L3
	L4
	L5
	L6
	L7
	I0
	I1
	I2
	I3
	I4
	I5
	FP // i6
	I7
	FCC0
	FCC1
	FCC2
	FCC3

	NumPhysRegs
)

// VirtBase is the first virtual register number.
const VirtBase asm.Reg = 1024

var regNames = func() (r [NumPhysRegs]string) {
	for i := 0; i < 8; i++ {
		r[G0+asm.Reg(i)] = fmt.Sprintf("%%g%d", i)
		r[O0+asm.Reg(i)] = fmt.Sprintf("%%o%d", i)
		r[L0+asm.Reg(i)] = fmt.Sprintf("%%l%d", i)
		r[I0+asm.Reg(i)] = fmt.Sprintf("%%i%d", i)
	}

	r[SP] = "%sp"
	r[FP] = "%fp"

	for i := 0; i < 4; i++ {
		r[FCC0+asm.Reg(i)] = fmt.Sprintf("%%fcc%d", i)
	}

	return
}()

// RegName is the default register name table.
func RegName(r asm.Reg) string {
	switch {
	case r >= 0 && r < NumPhysRegs:
		return regNames[r]
	case r >= VirtBase:
		return "%r" + strconv.Itoa(int(r-VirtBase))
	default:
		return fmt.Sprintf("%%reg%d", int(r))
	}
}

func ParseReg(s string) (asm.Reg, bool) {
	for r, n := range regNames {
		if n == s {
			return asm.Reg(r), true
		}
	}

	switch s {
	case "%o6":
		return SP, true
	case "%i6":
		return FP, true
	}

	if n, ok := strings.CutPrefix(s, "%r"); ok {
		v, err := strconv.Atoi(n)
		if err == nil && v >= 0 {
			return VirtBase + asm.Reg(v), true
		}
	}

	return 0, false
}

// ArgReg is the register incoming argument n arrives in.
func ArgReg(n int) (asm.Reg, bool) {
	if n < 0 || n >= 6 {
		return 0, false
	}

	return I0 + asm.Reg(n), true
}
