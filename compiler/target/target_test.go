package target

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/isel/compiler/asm"
)

func TestParseFeatures(t *testing.T) {
	f, err := ParseFeatures("v9, +ptr64,ldg,-ldg")
	require.NoError(t, err)
	assert.Equal(t, Features{V9: true, Ptr64: true}, f)
	assert.Equal(t, 64, f.AddrWidth())
	assert.Equal(t, "v9,ptr64", f.String())

	f, err = ParseFeatures("")
	require.NoError(t, err)
	assert.Equal(t, Features{}, f)
	assert.Equal(t, 32, f.AddrWidth())

	_, err = ParseFeatures("sse4")
	assert.Error(t, err)
}

func TestRenumber(t *testing.T) {
	assert.EqualValues(t, 3, Renumber(3, ClassGeneric))
	assert.EqualValues(t, 3, Renumber(3, ClassTrap))
	assert.EqualValues(t, 19, Renumber(3, ClassFloatCC))
	assert.EqualValues(t, 35, Renumber(3, ClassCoprocCC))

	for cc := int64(0); cc < 48; cc++ {
		for _, cl := range []Class{ClassGeneric, ClassFloatCC, ClassCoprocCC} {
			once := Renumber(cc, cl)
			assert.Equal(t, once, Renumber(once, cl), "cc %d class %d", cc, cl)
		}
	}

	assert.Equal(t, "l", CondName(3))
	assert.Equal(t, "ul", CondName(19))
	assert.Equal(t, "123", CondName(33))
	assert.Equal(t, "cc99", CondName(99))
}

func TestOpcodes(t *testing.T) {
	op, ok := LookupOpcode("FBCOND")
	require.True(t, ok)
	assert.Equal(t, FBCOND, op)
	assert.Equal(t, ClassFloatCC, OpcodeClass(op))
	assert.Equal(t, ClassCoprocCC, OpcodeClass(CBCONDA))
	assert.Equal(t, ClassTrap, OpcodeClass(TXCCrr))
	assert.Equal(t, ClassGeneric, OpcodeClass(ADDrr))

	assert.Equal(t, "UNKNOWN", OpcodeName(0))
	assert.Equal(t, "UNKNOWN", OpcodeName(NumOpcodes))

	_, ok = LookupOpcode("UNKNOWN")
	assert.False(t, ok)

	for op := asm.Opcode(1); op < NumOpcodes; op++ {
		assert.NotEmpty(t, OpcodeName(op), "opcode %d", op)
	}
}

func TestRegs(t *testing.T) {
	assert.Equal(t, "%g0", RegName(G0))
	assert.Equal(t, "%sp", RegName(SP))
	assert.Equal(t, "%fp", RegName(FP))
	assert.Equal(t, "%i7", RegName(I7))
	assert.Equal(t, "%fcc2", RegName(FCC0+2))
	assert.Equal(t, "%r3", RegName(VirtBase+3))

	for r := G0; r < NumPhysRegs; r++ {
		p, ok := ParseReg(RegName(r))
		if assert.True(t, ok, "%v", RegName(r)) {
			assert.Equal(t, r, p)
		}
	}

	_, ok := ParseReg("%r-1")
	assert.False(t, ok)

	r, ok := ArgReg(5)
	assert.True(t, ok)
	assert.Equal(t, I5, r)

	_, ok = ArgReg(6)
	assert.False(t, ok)
}

func TestSpaceSuffix(t *testing.T) {
	assert.Equal(t, ".global", SpaceSuffix(SpaceGlobal))
	assert.Equal(t, ".param", SpaceSuffix(SpaceParam))
	assert.Equal(t, "", SpaceSuffix(SpaceGeneric))
	assert.Equal(t, SpaceShared, SpaceNames["shared"])
}

func TestTables(t *testing.T) {
	tb, err := Builtin()
	require.NoError(t, err)

	assert.Equal(t, "ld$s1 [$m2], $0", tb.Templates["LD"])
	require.NotEmpty(t, tb.Aliases)
	assert.Equal(t, "ret", tb.Aliases[0].Name)

	_, err = LoadTables(strings.NewReader("templates: {NOPE: x}"))
	assert.Error(t, err)

	_, err = LoadTables(strings.NewReader("aliases: [{name: a, text: x}]"))
	assert.Error(t, err)

	_, err = LoadTables(strings.NewReader("aliases: [{name: a, opcodes: [NOPE], text: x}]"))
	assert.Error(t, err)

	yes := true

	assert.True(t, FeatureMatch{}.Match(Features{V9: true}))
	assert.True(t, FeatureMatch{V9: &yes}.Match(Features{V9: true}))
	assert.False(t, FeatureMatch{V9: &yes}.Match(Features{}))
	assert.False(t, FeatureMatch{Ptr64: &yes}.Match(Features{}))
}
