package logfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedHeaderInfo(t *testing.T) *HeaderInfo {
	t.Helper()
	hi := NewHeaderInfo()
	hi.Header.MajorNumber = 1
	hi.Header.MinorNumber = 7
	hi.SetAccessList("alice,bob")
	hi.SetModifierList("alice")
	hi.SetCommentPrefix("# ")
	hi.SetOwner("alice")
	hi.SetModuleDescription("parser sources")
	hi.SetSupplementalInfo([]byte{1, 2, 3, 4})

	branch, err := NewRevisionDescriptor("1.4.1.2")
	require.NoError(t, err)
	hi.SetDefaultBranch(branch)

	hi.AddLabel(mustLabel(t, "REL_1", "1.5", false, 0))
	hi.AddLabel(mustLabel(t, "TIP", "1.4.1.2", true, 1))
	return hi
}

func TestHeaderInfoRoundTrip(t *testing.T) {
	hi := populatedHeaderInfo(t)
	assert.True(t, hi.SizeChanged())

	var buf bytes.Buffer
	n, err := hi.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(hi.EncodedSize()), n)
	assert.False(t, hi.SizeChanged())

	got, err := ReadHeaderInfo(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, hi.Header, got.Header)
	assert.Equal(t, uint16(2), got.Header.DefaultDepth)
	assert.Equal(t, uint16(10), got.Header.AccessSize, "string sizes include the NUL")
	assert.Equal(t, "alice,bob", got.AccessList())
	assert.Equal(t, "alice", got.ModifierList())
	assert.Equal(t, "# ", got.CommentPrefix())
	assert.Equal(t, "alice", got.Owner())
	assert.Equal(t, "parser sources", got.ModuleDescription())
	assert.Equal(t, []byte{1, 2, 3, 4}, got.SupplementalInfo())
	assert.Equal(t, hi.DefaultBranch(), got.DefaultBranch())
	assert.Equal(t, hi.Labels(), got.Labels())
	assert.Equal(t, hi.EncodedSize(), got.EncodedSize())
}

func TestHeaderInfoMinimal(t *testing.T) {
	hi := NewHeaderInfo()
	var buf bytes.Buffer
	_, err := hi.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, buf.Len())

	got, err := ReadHeaderInfo(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, got.DefaultBranch())
	assert.Empty(t, got.Labels())
	assert.Empty(t, got.Owner())
}

func TestHeaderInfoRejectsCorruptHeader(t *testing.T) {
	var buf bytes.Buffer
	_, err := populatedHeaderInfo(t).WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	data[2] ^= 0x01
	_, err = ReadHeaderInfo(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestHeaderInfoTruncatedLabels(t *testing.T) {
	var buf bytes.Buffer
	_, err := populatedHeaderInfo(t).WriteTo(&buf)
	require.NoError(t, err)

	_, err = ReadHeaderInfo(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	assert.Error(t, err)
}

func TestHeaderInfoLabels(t *testing.T) {
	hi := populatedHeaderInfo(t)

	assert.True(t, hi.HasLabel("REL_1"))
	assert.False(t, hi.HasLabel("REL_2"))
	l, ok := hi.FindLabel("TIP")
	require.True(t, ok)
	assert.True(t, l.IsFloating())
	assert.False(t, hi.IsObsolete())

	require.True(t, hi.RemoveLabel("REL_1", 4))
	assert.False(t, hi.RemoveLabel("REL_1", 4))
	assert.False(t, hi.HasLabel("REL_1"))
	assert.True(t, hi.IsObsolete())
	assert.Len(t, hi.Labels(), 2, "removed labels keep their slot")
	assert.Equal(t, uint16(2), hi.Header.VersionCount)

	var buf bytes.Buffer
	_, err := hi.WriteTo(&buf)
	require.NoError(t, err)
	got, err := ReadHeaderInfo(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, got.IsObsolete())
	assert.True(t, got.HasLabel("TIP"))
}

func TestHeaderInfoSizeTracking(t *testing.T) {
	hi := NewHeaderInfo()
	hi.SetOwner("bob")
	var buf bytes.Buffer
	_, err := hi.WriteTo(&buf)
	require.NoError(t, err)

	hi.SetOwner("eve")
	assert.False(t, hi.SizeChanged(), "same length keeps the size")
	hi.SetOwner("mallory")
	assert.True(t, hi.SizeChanged())
	assert.Equal(t, uint16(8), hi.Header.OwnerSize)

	hi.SetOwner("")
	assert.Equal(t, uint16(1), hi.Header.OwnerSize, "an empty string is stored as a lone NUL")
}

// rawHeaderArea hand-encodes a header area the way older archives store it:
// an empty comment prefix kept as a single NUL, and labels whose name size
// is zero.
func rawHeaderArea(t *testing.T) []byte {
	t.Helper()
	h := NewLogFileHeader()
	h.MajorNumber = 1
	h.VersionCount = 3
	h.RevisionCount = 1
	h.CommentSize = 1
	h.OwnerSize = 4
	hdr, err := h.MarshalBinary()
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(hdr)
	buf.WriteByte(0)          // comment prefix ""
	buf.WriteString("bob\x00") // owner
	buf.Write([]byte{
		1, 0, 0, 0, 5, 0, 1, 0, 1, 0, 'R', 'E', 'L', '1', 0, // REL1 -> 1.1
		1, 0, 2, 0, 0, 0, 1, 0, 2, 0, // unnamed label, size 0
		0, 0, 4, 0, 0, 0, // no pairs, size 0
	})
	return buf.Bytes()
}

func TestHeaderInfoRewritePreservesLayout(t *testing.T) {
	raw := rawHeaderArea(t)

	hi, err := ReadHeaderInfo(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "", hi.CommentPrefix())
	assert.Equal(t, "bob", hi.Owner())
	assert.Equal(t, len(raw), hi.EncodedSize())

	var buf bytes.Buffer
	n, err := hi.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), n)
	assert.Equal(t, raw, buf.Bytes())

	again, err := ReadHeaderInfo(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, again.Labels(), 3)
	assert.True(t, again.HasLabel("REL1"))
	assert.Empty(t, again.Labels()[2].Pairs)
}
