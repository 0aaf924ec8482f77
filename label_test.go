package logfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLabelInfoFloating(t *testing.T) {
	floating, err := NewLabelInfo("TIP", "1.2", true, 3)
	require.NoError(t, err)
	assert.True(t, floating.IsFloating())
	assert.Equal(t, []MajorMinor{{Major: 1, Minor: -1}}, floating.Pairs)
	assert.Equal(t, "1", floating.RevisionString())
	assert.Equal(t, "0001-0001", floating.SortableRevisionString())

	fixed, err := NewLabelInfo("REL_1", "1.2", false, 3)
	require.NoError(t, err)
	assert.False(t, fixed.IsFloating())
	assert.Equal(t, []MajorMinor{{Major: 1, Minor: 2}}, fixed.Pairs)
	assert.Equal(t, "1.2", fixed.RevisionString())
	assert.Equal(t, 0, fixed.Depth())
}

func TestLabelSortableRevisionString(t *testing.T) {
	l, err := NewLabelInfo("L", "3.4.5.6", false, 0)
	require.NoError(t, err)
	assert.Equal(t, "0003000400050006", l.SortableRevisionString())
	assert.Equal(t, 1, l.Depth())

	branch := mustLabel(t, "L", "1.9.1.1", false, 0)
	later := mustLabel(t, "L", "1.10", false, 0)
	assert.Less(t, branch.SortableRevisionString(), later.SortableRevisionString())
}

func TestNewLabelInfoMalformed(t *testing.T) {
	for _, rev := range []string{"", "1", "1.2.3", "1.x", "1..2", "a.b"} {
		_, err := NewLabelInfo("L", rev, false, 0)
		require.ErrorIs(t, err, ErrMalformedLabel, "revision %q", rev)

		var le *LabelError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, rev, le.Revision)
	}
}

func TestLabelInfoRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		label *LabelInfo
	}{
		{"trunk", mustLabel(t, "REL_1", "1.4", false, 2)},
		{"branch", mustLabel(t, "BR", "1.4.2.1", false, 0)},
		{"floating", mustLabel(t, "TIP", "1.4.2.1", true, 7)},
		{"obsolete", NewObsoleteLabel(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := tt.label.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.label.EncodedSize()), n)

			got, err := ReadLabelInfo(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.label, got)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestLabelInfoKeepsStoredNameSize(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"unnamed", []byte{1, 0, 2, 0, 0, 0, 1, 0, 2, 0}},
		{"no pairs", []byte{0, 0, 4, 0, 0, 0}},
		{"no pairs named", []byte{0, 0, 4, 0, 2, 0, 'X', 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ReadLabelInfo(bytes.NewReader(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, len(tt.raw), l.EncodedSize())

			var buf bytes.Buffer
			n, err := l.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.raw)), n)
			assert.Equal(t, tt.raw, buf.Bytes())
		})
	}
}

func TestLabelInfoWireLayout(t *testing.T) {
	var buf bytes.Buffer
	_, err := mustLabel(t, "AB", "1.2", true, 3).WriteTo(&buf)
	require.NoError(t, err)

	want := []byte{
		1, 0, // revision count
		3, 0, // creator index
		3, 0, // label size with NUL
		1, 0, 0xFF, 0xFF, // pair 1.-1
		'A', 'B', 0,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestObsoleteLabel(t *testing.T) {
	l := NewObsoleteLabel(1)
	assert.True(t, l.IsObsolete())
	assert.False(t, l.IsFloating())
	assert.Equal(t, "obsolete", l.State.String())
	assert.Equal(t, "active", LabelActive.String())
}

func mustLabel(t *testing.T, label, rev string, floating bool, creator int) *LabelInfo {
	t.Helper()
	l, err := NewLabelInfo(label, rev, floating, creator)
	require.NoError(t, err)
	return l
}
