package exodus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "hello", "good friend", "edge of the world", strings.Repeat("x", 32)} {
		row, err := EncodeName(s, lenName)
		require.NoError(t, err, s)
		assert.Len(t, row, lenName)
		assert.Equal(t, s, DecodeName(row))
	}
}

func TestEncodeNamePadding(t *testing.T) {
	row, err := EncodeName("edge of the world", lenName)
	require.NoError(t, err)
	want := make([]byte, lenName)
	copy(want, "edge of the world")
	assert.Equal(t, want, row)
}

func TestEncodeNameTooLong(t *testing.T) {
	_, err := EncodeName(strings.Repeat("x", 33), lenName)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestDecodeName(t *testing.T) {
	assert.Equal(t, "", DecodeName(make([]byte, lenName)))
	assert.Equal(t, "", DecodeName([]byte("     ")))
	assert.Equal(t, "ab", DecodeName([]byte("ab  \x00zz")))
	assert.Equal(t, "a b", DecodeName([]byte("a b")))
}

func TestRows(t *testing.T) {
	table, err := encodeRows([]string{"one", "", "three"}, 8, 7)
	require.NoError(t, err)
	assert.Len(t, table, 24)
	assert.Equal(t, []string{"one", "", "three"}, decodeRows(table, 8))

	_, err = encodeRows([]string{"toolong"}, 8, 4)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Panics(t, func() { decodeRows(make([]byte, 7), 8) })
}
