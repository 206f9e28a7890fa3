package metricscalculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodesIdenticalStrings(t *testing.T) {
	ops := Opcodes("B1234ABC", "B1234ABC")
	require.Len(t, ops, 1)
	assert.Equal(t, OpCode{Tag: OpEqual, I1: 0, I2: 8, J1: 0, J2: 8}, ops[0])
}

func TestOpcodesSingleTrailingReplace(t *testing.T) {
	ops := Opcodes("B1234ABC", "B1234ABD")
	require.Len(t, ops, 2)
	assert.Equal(t, OpCode{Tag: OpEqual, I1: 0, I2: 7, J1: 0, J2: 7}, ops[0])
	assert.Equal(t, OpCode{Tag: OpReplace, I1: 7, I2: 8, J1: 7, J2: 8}, ops[1])
}

func TestOpcodesDisjointStrings(t *testing.T) {
	// No common runes: a single replace block spanning both strings, not a
	// per-character decomposition.
	ops := Opcodes("ABC", "XYZ")
	require.Len(t, ops, 1)
	assert.Equal(t, OpCode{Tag: OpReplace, I1: 0, I2: 3, J1: 0, J2: 3}, ops[0])
}

func TestOpcodesDeleteAndInsertOnly(t *testing.T) {
	ops := Opcodes("B1234ABC", "")
	require.Len(t, ops, 1)
	assert.Equal(t, OpCode{Tag: OpDelete, I1: 0, I2: 8, J1: 0, J2: 0}, ops[0])

	ops = Opcodes("", "B1234ABC")
	require.Len(t, ops, 1)
	assert.Equal(t, OpCode{Tag: OpInsert, I1: 0, I2: 0, J1: 0, J2: 8}, ops[0])
}

func TestOpcodesBothEmpty(t *testing.T) {
	assert.Empty(t, Opcodes("", ""))
}

func TestOpcodesTransposedInterior(t *testing.T) {
	// ABCD vs ACBD: the greedy aligner keeps A, inserts C, keeps B, drops the
	// original C, keeps D.
	ops := Opcodes("ABCD", "ACBD")
	want := []OpCode{
		{Tag: OpEqual, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: OpInsert, I1: 1, I2: 1, J1: 1, J2: 2},
		{Tag: OpEqual, I1: 1, I2: 2, J1: 2, J2: 3},
		{Tag: OpDelete, I1: 2, I2: 3, J1: 3, J2: 3},
		{Tag: OpEqual, I1: 3, I2: 4, J1: 3, J2: 4},
	}
	assert.Equal(t, want, ops)
}

func TestOpcodesCoverBothStringsInOrder(t *testing.T) {
	cases := [][2]string{
		{"B1234ABC", "B1234ABD"},
		{"AB123CD", "XY987ZW"},
		{"D5678EFG", "D5678EFGH"},
		{"PLATE", "PALTE"},
		{"A1B", "A1B2C3D"},
	}
	for _, c := range cases {
		ops := Opcodes(c[0], c[1])
		i, j := 0, 0
		for _, op := range ops {
			assert.Equal(t, i, op.I1, "gap in reference coverage for %q/%q", c[0], c[1])
			assert.Equal(t, j, op.J1, "gap in candidate coverage for %q/%q", c[0], c[1])
			assert.LessOrEqual(t, op.I1, op.I2)
			assert.LessOrEqual(t, op.J1, op.J2)
			i, j = op.I2, op.J2
		}
		assert.Equal(t, len([]rune(c[0])), i)
		assert.Equal(t, len([]rune(c[1])), j)
	}
}

func TestOpcodesOperateOnRunes(t *testing.T) {
	ops := Opcodes("B12", "Б12")
	require.Len(t, ops, 2)
	assert.Equal(t, OpCode{Tag: OpReplace, I1: 0, I2: 1, J1: 0, J2: 1}, ops[0])
	assert.Equal(t, OpCode{Tag: OpEqual, I1: 1, I2: 3, J1: 1, J2: 3}, ops[1])
}
