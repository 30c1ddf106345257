package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleEntries() []AtomDefinition {
	return []AtomDefinition{
		{Protocol: 0, AtomNumber: 1, Name: "uni_start_stream", Type: RAW},
		{Protocol: 0, AtomNumber: 2, Name: "uni_end_stream", Type: RAW},
		{Protocol: 2, AtomNumber: 4, Name: "act_replace_select_action", Type: STREAM, Flags: INDENT},
	}
}

func TestNewAndLookup(t *testing.T) {
	c, err := New(sampleEntries())
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	def, ok := c.FindByName("UNI_START_STREAM")
	require.True(t, ok)
	require.Equal(t, uint8(0), def.Protocol)
	require.Equal(t, uint8(1), def.AtomNumber)

	def, ok = c.FindByKey(2, 4)
	require.True(t, ok)
	require.Equal(t, "act_replace_select_action", def.Name)
	require.True(t, def.Flags.Has(INDENT))
	require.False(t, def.Flags.Has(OUTDENT))

	_, ok = c.FindByName("nope")
	require.False(t, ok)
	_, ok = c.FindByKey(99, 99)
	require.False(t, ok)
}

func TestNewRejectsDuplicateKey(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, AtomDefinition{Protocol: 0, AtomNumber: 1, Name: "dup_name"})
	_, err := New(entries)
	require.Error(t, err)
}

func TestNewRejectsDuplicateName(t *testing.T) {
	entries := sampleEntries()
	entries = append(entries, AtomDefinition{Protocol: 5, AtomNumber: 5, Name: "UNI_START_STREAM"})
	_, err := New(entries)
	require.Error(t, err)
}

func TestAllIteratesInOrder(t *testing.T) {
	c, err := New(sampleEntries())
	require.NoError(t, err)

	var names []string
	c.All(func(d AtomDefinition) bool {
		names = append(names, d.Name)
		return true
	})
	require.Equal(t, []string{"uni_start_stream", "uni_end_stream", "act_replace_select_action"}, names)
}

func TestAllStopsEarly(t *testing.T) {
	c, err := New(sampleEntries())
	require.NoError(t, err)

	var names []string
	c.All(func(d AtomDefinition) bool {
		names = append(names, d.Name)
		return len(names) < 1
	})
	require.Len(t, names, 1)
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "STREAM_LEGACY", STREAM_LEGACY.String())
	require.Equal(t, "UNKNOWN_TYPE", Type(0xFF).String())
	require.True(t, STREAM.IsStream())
	require.True(t, STREAM_LEGACY.IsStream())
	require.False(t, RAW.IsStream())
}
