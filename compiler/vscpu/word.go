package vscpu

import "fmt"

type (
	Op uint32

	// Word is a memory cell of an image.
	Word struct {
		Addr  int
		Val   uint32
		Instr bool
	}

	Image struct {
		Name  string
		Words []Word
	}
)

const (
	ADD Op = iota
	NAND
	SRL
	LT
	CP
	CPI
	BZJ
	MUL
)

const (
	MemSize = 1 << 14

	argMask = MemSize - 1
	immBit  = 1 << 28
	opShift = 29
)

var opNames = []string{
	ADD:  "ADD",
	NAND: "NAND",
	SRL:  "SRL",
	LT:   "LT",
	CP:   "CP",
	CPI:  "CPI",
	BZJ:  "BZJ",
	MUL:  "MUL",
}

func Encode(op Op, imm bool, a, b int) uint32 {
	w := uint32(op)<<opShift | uint32(a&argMask)<<14 | uint32(b&argMask)

	if imm {
		w |= immBit
	}

	return w
}

func Decode(w uint32) (op Op, imm bool, a, b int) {
	op = Op(w >> opShift)
	imm = w&immBit != 0
	a = int(w>>14) & argMask
	b = int(w) & argMask

	return
}

func LookupOp(name string) (op Op, imm bool, ok bool) {
	for i, n := range opNames {
		switch name {
		case n:
			return Op(i), false, true
		case n + "i":
			return Op(i), true, true
		}
	}

	return 0, false, false
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}

	return fmt.Sprintf("op%d", int(op))
}

// AppendText encodes the image in the loader format.
func (img *Image) AppendText(b []byte) []byte {
	for _, w := range img.Words {
		if w.Instr {
			b = fmt.Appendf(b, "%d: %#x\n", w.Addr, w.Val)
		} else {
			b = fmt.Appendf(b, "%d: %d\n", w.Addr, w.Val)
		}
	}

	return b
}
