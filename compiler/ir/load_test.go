package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSpaces = map[string]Space{"global": 1, "shared": 3}

func TestRead(t *testing.T) {
	fn, err := Read(strings.NewReader(`
name: f
nodes:
  - {op: entry}
  - {op: arg, n: 0, type: i32}
  - {op: imm, value: 12, type: i32}
  - {op: add, l: 1, r: 2, type: i32}
  - {op: load, chain: 0, addr: 3, space: global, type: i32}
  - {op: storev, chain: 4, addr: 1, vals: [2, 4], space: "3"}
  - {op: ret, chain: 5}
`), testSpaces)
	require.NoError(t, err)

	assert.Equal(t, "f", fn.Name)
	assert.Equal(t, 7, fn.Len())
	assert.Equal(t, Expr(6), fn.Root)

	assert.Equal(t, Entry{}, fn.Node(0))
	assert.Equal(t, Chain, fn.Type(0))
	assert.Equal(t, Imm(12), fn.Node(2))
	assert.Equal(t, Add{L: 1, R: 2}, fn.Node(3))
	assert.Equal(t, Load{Chain: 0, Addr: 3, Space: 1}, fn.Node(4))
	assert.Equal(t, I32, fn.Type(4))
	assert.Equal(t, StoreV{Chain: 4, Addr: 1, Vals: []Expr{2, 4}, Space: 3}, fn.Node(5))
	assert.Equal(t, Ret{Chain: 5}, fn.Node(6))

	assert.Equal(t, []Expr{0, 3}, Operands(fn.Node(4)))
	assert.Equal(t, []Expr{4, 1, 2, 4}, Operands(fn.Node(5)))
	assert.Nil(t, Operands(struct{}{}))
}

func TestReadRoot(t *testing.T) {
	fn, err := Read(strings.NewReader(`
name: f
leaf: true
root: 0
nodes:
  - {op: global, name: g, off: 8, type: i32}
  - {op: intrinsic, id: popc, args: [0], type: i32}
`), nil)
	require.NoError(t, err)

	assert.True(t, fn.Leaf)
	assert.Equal(t, Expr(0), fn.Root)
	assert.Equal(t, Global{Name: "g", Off: 8}, fn.Node(0))
	assert.Equal(t, Intrinsic{ID: "popc", Chain: Nil, Args: []Expr{0}}, fn.Node(1))
}

func TestReadErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
	}{
		{"forward_ref", "nodes: [{op: add, l: 1, r: 0, type: i32}, {op: imm, value: 1, type: i32}]"},
		{"self_ref", "nodes: [{op: add, l: 0, r: 0, type: i32}]"},
		{"missing_operand", "nodes: [{op: imm, value: 1, type: i32}, {op: add, l: 0, type: i32}]"},
		{"unknown_op", "nodes: [{op: frobnicate}]"},
		{"unknown_type", "nodes: [{op: imm, value: 1, type: i128}]"},
		{"unknown_space", "nodes: [{op: entry}, {op: imm, type: i32}, {op: load, chain: 0, addr: 1, space: texture}]"},
		{"unknown_field", "nodes: [{op: imm, valu: 1}]"},
		{"root_range", "root: 3\nnodes: [{op: entry}]"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.text), testSpaces)
			assert.Error(t, err)
		})
	}
}

func TestTypeBits(t *testing.T) {
	assert.Equal(t, 32, I32.Bits())
	assert.Equal(t, 64, I64.Bits())
	assert.Equal(t, 0, Chain.Bits())

	tp, err := ParseType("f64")
	require.NoError(t, err)
	assert.Equal(t, F64, tp)
	assert.Equal(t, "f64", tp.String())
}
