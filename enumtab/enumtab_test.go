package enumtab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectTypeLookup(t *testing.T) {
	code, ok := ObjectType.Code("Boolean")
	require.True(t, ok)
	require.Equal(t, uint32(10), code)

	name, ok := ObjectType.Name(1)
	require.True(t, ok)
	require.Equal(t, "ind_group", name)

	_, ok = ObjectType.Code("nonexistent")
	require.False(t, ok)
}

func TestObjectTypeAliasesShareCode(t *testing.T) {
	rulerCode, ok := ObjectType.Code("ruler")
	require.True(t, ok)
	badObjectCode, ok := ObjectType.Code("bad_object")
	require.True(t, ok)
	require.Equal(t, rulerCode, badObjectCode)
}

func TestCriterionLookup(t *testing.T) {
	code, ok := Criterion.Code("destroyed")
	require.True(t, ok)
	require.Equal(t, uint32(27), code)
}

func TestBufFlagLookup(t *testing.T) {
	code, ok := BufFlag.Code("pointer_included")
	require.True(t, ok)
	require.Equal(t, uint32(0x100), code)
}

func TestUniCharsetLookup(t *testing.T) {
	code, ok := UniCharset.Code("latin1")
	require.True(t, ok)
	require.Equal(t, uint32(0x0104), code)
}
