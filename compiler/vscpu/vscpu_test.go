package vscpu

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"github.com/slowlang/isel/compiler/objerr"
)

const sumProgram = `
// sum 5+4+3+2+1 into mem[100]
0: CPi 100 0
1: CPi 101 5
2: ADD 100 101   // acc += i
3: ADD 101 103   // i--
4: BZJ 104 101   // if i == 0 goto exit
5: BZJi 105 0    // goto 2
6: BZJi 106 0    // halt

103: 0xFFFFFFFF
104: 6
105: 2
106: 6
`

func TestEncode(t *testing.T) {
	assert.Equal(t, uint32(1<<14|2), Encode(ADD, false, 1, 2))
	assert.Equal(t, uint32(4<<29|1<<28|100<<14|5), Encode(CP, true, 100, 5))
	assert.Equal(t, uint32(0x3fff), Encode(ADD, false, 0, 0x7fff))

	op, imm, a, b := Decode(Encode(BZJ, true, 105, 3))
	assert.Equal(t, BZJ, op)
	assert.True(t, imm)
	assert.Equal(t, 105, a)
	assert.Equal(t, 3, b)

	op, imm, ok := LookupOp("MULi")
	assert.True(t, ok)
	assert.Equal(t, MUL, op)
	assert.True(t, imm)

	_, _, ok = LookupOp("mul")
	assert.False(t, ok)
}

func TestRunSum(t *testing.T) {
	img, err := Assemble("sum", []byte(sumProgram))
	require.NoError(t, err)
	require.Len(t, img.Words, 11)

	c := New(img)

	steps, err := c.Run(context.Background(), 0)
	require.NoError(t, err)

	assert.True(t, c.Halted)
	assert.Equal(t, 22, steps)
	assert.Equal(t, 6, c.PC)
	assert.Equal(t, uint32(15), c.Mem[100])
	assert.Equal(t, uint32(0), c.Mem[101])

	steps, err = c.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, steps)
}

func TestRunLimit(t *testing.T) {
	img, err := Assemble("loop", []byte("0: BZJi 1 0\n1: 0\n"))
	require.NoError(t, err)

	c := New(img)

	steps, err := c.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
	assert.True(t, c.Halted)

	img, err = Assemble("spin", []byte("0: ADDi 2 1\n1: BZJi 3 0\n2: 0\n3: 0\n"))
	require.NoError(t, err)

	c = New(img)

	steps, err = c.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, steps)
	assert.False(t, c.Halted)
	assert.Equal(t, uint32(5), c.Mem[2])
}

func TestInstructions(t *testing.T) {
	for _, tc := range []struct {
		name string
		prog string
		addr int
		exp  uint32
	}{
		{"nand", "0: NAND 10 11\n1: BZJi 12 1\n10: 0xF0F0F0F0\n11: 0xFF00FF00\n12: 0\n", 10, 0x0FFF0FFF},
		{"srl", "0: SRLi 10 4\n1: BZJi 12 1\n10: 0x100\n12: 0\n", 10, 0x10},
		{"sll", "0: SRLi 10 36\n1: BZJi 12 1\n10: 0x100\n12: 0\n", 10, 0x1000},
		{"lt_true", "0: LTi 10 9\n1: BZJi 12 1\n10: 8\n12: 0\n", 10, 1},
		{"lt_false", "0: LT 10 11\n1: BZJi 12 1\n10: 8\n11: 8\n12: 0\n", 10, 0},
		{"cp", "0: CP 10 11\n1: BZJi 12 1\n11: 77\n12: 0\n", 10, 77},
		{"cpi_load", "0: CPI 10 11\n1: BZJi 12 1\n11: 20\n12: 0\n20: 99\n", 10, 99},
		{"cpi_store", "0: CPIi 10 11\n1: BZJi 12 1\n10: 20\n11: 55\n12: 0\n", 20, 55},
		{"mul", "0: MULi 10 3\n1: BZJi 12 1\n10: 0x80000001\n12: 0\n", 10, 0x80000003},
		{"add_wraps", "0: ADD 10 11\n1: BZJi 12 1\n10: 0xFFFFFFFF\n11: 2\n12: 0\n", 10, 1},
		{"bzj_not_taken", "0: BZJ 12 11\n1: CPi 10 7\n2: BZJi 12 2\n11: 1\n12: 0\n", 10, 7},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img, err := Assemble(tc.name, []byte(tc.prog))
			require.NoError(t, err)

			c := New(img)

			_, err = c.Run(context.Background(), 100)
			require.NoError(t, err)
			require.True(t, c.Halted)

			assert.Equal(t, tc.exp, c.Mem[tc.addr])
		})
	}
}

func TestGarbage(t *testing.T) {
	img, err := Assemble("g", []byte("0: CPi 10 1\n1: ADD 10 11\n"))
	require.NoError(t, err)

	c := New(img)

	steps, err := c.Run(context.Background(), 0)
	assert.ErrorIs(t, err, ErrGarbage)
	assert.Equal(t, 1, steps)
	assert.Equal(t, 1, c.PC)

	var g *GarbageError
	require.True(t, errors.As(err, &g))
	assert.Equal(t, 11, g.Addr)

	// running off the program is a garbage read too
	img, err = Assemble("g", []byte("0: CPi 10 1\n"))
	require.NoError(t, err)

	_, err = New(img).Run(context.Background(), 0)
	assert.ErrorIs(t, err, ErrGarbage)
}

func TestAssembleErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		kind objerr.Kind
	}{
		{"no_colon", "5 ADD 1 2", objerr.ParseFailed},
		{"unknown_op", "0: FOO 1 2", objerr.ParseFailed},
		{"bad_number", "0: ADD 1 zz", objerr.ParseFailed},
		{"extra", "0: ADD 1 2 3", objerr.ParseFailed},
		{"wide_value", "0: 4294967296", objerr.ParseFailed},
		{"wide_hex_value", "0: 0x100000000", objerr.ParseFailed},
		{"short", "0: ADD 1", objerr.UnexpectedEOF},
		{"no_value", "0:", objerr.UnexpectedEOF},
		{"address", "20000: 1", objerr.InvalidSectionIndex},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Assemble(tc.name, []byte(tc.text))
			assert.True(t, objerr.IsMalformed(err), "%v", err)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestImageRoundTrip(t *testing.T) {
	img, err := Assemble("sum", []byte(sumProgram))
	require.NoError(t, err)

	text := img.AppendText(nil)
	assert.Contains(t, string(text), "103: 4294967295\n")

	back, err := LoadImage("sum.in", bytes.NewReader(text))
	require.NoError(t, err)
	require.Len(t, back.Words, len(img.Words))

	for i, w := range img.Words {
		assert.Equal(t, w.Addr, back.Words[i].Addr)
		assert.Equal(t, w.Val, back.Words[i].Val)
	}

	_, err = LoadImage("x", bytes.NewReader([]byte("1 2 3\n")))
	assert.ErrorIs(t, err, objerr.ParseFailed)

	_, err = LoadImage("x", bytes.NewReader([]byte("0 4294967296\n")))
	assert.ErrorIs(t, err, objerr.ParseFailed)

	_, err = LoadImage("x", bytes.NewReader([]byte("16384 0\n")))
	assert.ErrorIs(t, err, objerr.InvalidSectionIndex)

	img, err = LoadImage("x", bytes.NewReader([]byte("0x10 0x20\n\n17: 5\n")))
	require.NoError(t, err)
	assert.Equal(t, []Word{{Addr: 16, Val: 32}, {Addr: 17, Val: 5}}, img.Words)
}

func TestDump(t *testing.T) {
	img, err := Assemble("d", []byte("0: ADDi 20 1\n1: BZJi 21 1\n20: 9\n21: 0\n"))
	require.NoError(t, err)

	c := New(img)

	_, err = c.Run(context.Background(), 0)
	require.NoError(t, err)

	var buf bytes.Buffer

	err = c.Dump(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, "0: 268763137\n1: 3490004993\n20: 10\n21: 0\n", buf.String())

	buf.Reset()

	err = c.Dump(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, "0: 0x10050001\n1: 0xd0054001\n20: 0xa\n21: 0x0\n", buf.String())
}
