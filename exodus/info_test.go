package exodus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoRecordsEmpty(t *testing.T) {
	f, ds := newExample(t, exampleParams())
	before := ds.ListVariables()
	require.NoError(t, f.PutInfoRecords(nil))
	require.NoError(t, f.PutInfoRecords([]string{}))
	assert.Equal(t, before, ds.ListVariables())
	_, has := ds.Dimension("num_info")
	assert.False(t, has)
}

func TestInfoRecords(t *testing.T) {
	f, ds := newExample(t, exampleParams())
	lines := []string{"written by a test", strings.Repeat("-", 80)}
	require.NoError(t, f.PutInfoRecords(lines))
	vi := variable(t, ds, "info_records")
	assert.Equal(t, []string{"num_info", "len_line"}, vi.Dimensions)
	assert.Equal(t, []int64{2, 81}, vi.Shape)

	got, err := f.InfoRecords()
	require.NoError(t, err)
	assert.Equal(t, lines, got)

	assert.ErrorIs(t, f.PutInfoRecords([]string{"again"}), ErrUsage)
}

func TestInfoRecordsTooLong(t *testing.T) {
	f, ds := newExample(t, exampleParams())
	assert.ErrorIs(t, f.PutInfoRecords([]string{strings.Repeat("x", 81)}), ErrUsage)
	_, has := ds.Dimension("num_info")
	assert.False(t, has)
	require.NoError(t, f.PutInfoRecords([]string{"ok"}))
}
