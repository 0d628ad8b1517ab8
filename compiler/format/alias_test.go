package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/isel/compiler/asm"
	"github.com/slowlang/isel/compiler/target"
)

func compileYAML(t *testing.T, text string) []Rule {
	t.Helper()

	tb, err := target.LoadTables(strings.NewReader(text))
	require.NoError(t, err)

	rules, err := CompileAliases(tb.Aliases)
	require.NoError(t, err)

	return rules
}

func TestAliasPriority(t *testing.T) {
	first := compileYAML(t, `
aliases:
  - name: low
    priority: 10
    opcodes: [ORri]
    ops: {1: "%g0"}
    text: "low $0"
  - name: mid
    priority: 5
    opcodes: [ORri]
    text: "mid $0"
`)

	second := compileYAML(t, `
aliases:
  - name: high
    priority: 1
    opcodes: [ORri]
    ops: {1: "%g0"}
    text: "high $0"
  - name: also_mid
    priority: 5
    opcodes: [ORri]
    text: "also_mid $0"
`)

	rules := MergeRules(first, second)

	var names []string
	for _, r := range rules {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{"high", "mid", "also_mid", "low"}, names)

	p := New(&Syntax{Rules: rules}, target.Features{})

	assert.Equal(t, "\thigh %r0", render(p, target.ORri, vreg(0), asm.R(target.G0), asm.I(1)))
	assert.Equal(t, "\tmid %r0", render(p, target.ORri, vreg(0), vreg(1), asm.I(1)))
}

func TestAliasConstraints(t *testing.T) {
	rules := compileYAML(t, `
aliases:
  - name: inc
    opcodes: [ADDri]
    nops: 3
    ops: {2: 1}
    features: {ptr64: true}
    text: "inc $0"
`)

	p := New(&Syntax{Rules: rules}, target.Features{Ptr64: true})

	assert.Equal(t, "\tinc %r0", render(p, target.ADDri, vreg(0), vreg(0), asm.I(1)))
	assert.Equal(t, "\tADDri %r0, %r0, 2", render(p, target.ADDri, vreg(0), vreg(0), asm.I(2)))
	assert.Equal(t, "\tADDri %r0, 1", render(p, target.ADDri, vreg(0), asm.I(1)))

	p.Features = target.Features{}
	assert.Equal(t, "\tADDri %r0, %r0, 1", render(p, target.ADDri, vreg(0), vreg(0), asm.I(1)))
}

func TestAliasErrors(t *testing.T) {
	_, err := CompileAliases([]target.AliasSpec{{Name: "x", Opcodes: []string{"NOPE"}, Text: "x"}})
	assert.Error(t, err)

	_, err = CompileAliases([]target.AliasSpec{{Name: "x", Opcodes: []string{"ORri"}, Ops: map[int]any{0: "%q9"}, Text: "x"}})
	assert.Error(t, err)

	_, err = CompileAliases([]target.AliasSpec{{Name: "x", Opcodes: []string{"ORri"}, Ops: map[int]any{0: 1.5}, Text: "x"}})
	assert.Error(t, err)

	_, err = CompileAliases([]target.AliasSpec{{Name: "x", Opcodes: []string{"ORri"}, Text: "bad $"}})
	assert.Error(t, err)
}

func TestParseTemplate(t *testing.T) {
	tm, err := ParseTemplate("ld$s1 [$m2], $0 $$5 $c12")
	require.NoError(t, err)

	assert.Equal(t, Template{
		{lit: "ld"},
		{dir: dirSpace, n: 1},
		{lit: " ["},
		{dir: dirMem, n: 2},
		{lit: "], "},
		{dir: dirOperand, n: 0},
		{lit: " "},
		{lit: "$"},
		{lit: "5 "},
		{dir: dirCond, n: 12},
	}, tm)

	for _, bad := range []string{"$", "x $m", "$x", "$c"} {
		_, err := ParseTemplate(bad)
		assert.Error(t, err, "%q", bad)
	}

	assert.Panics(t, func() { MustParseTemplate("$") })
}

func TestTemplateMissingOperand(t *testing.T) {
	p := New(&Syntax{}, target.Features{})

	b := p.AppendTemplate(nil, MustParseTemplate("x $3"), &asm.Instr{Op: target.ORri})
	assert.Equal(t, "x <bad operand 3>", string(b))
}

func TestBuiltinSyntax(t *testing.T) {
	s, err := BuiltinSyntax()
	require.NoError(t, err)

	for op := asm.Opcode(1); op < target.NumOpcodes; op++ {
		assert.NotNil(t, s.Templates[op], "no template for %v", target.OpcodeName(op))
	}

	assert.NotEmpty(t, s.Rules)
	assert.Equal(t, "ret", s.Rules[0].Name)
}
