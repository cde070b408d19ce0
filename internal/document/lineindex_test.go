package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineIndex_OffsetAndPosition_ASCII(t *testing.T) {
	text := []byte("{\n  \"a\": 1\n}")
	li := NewLineIndex(text)
	assert.Equal(t, 3, li.LineCount())

	offset := li.OffsetOf(text, 1, 2)
	assert.Equal(t, byte('"'), text[offset])

	line, char := li.PositionOf(text, offset)
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, char)
}

func TestLineIndex_UTF16_SurrogatePair(t *testing.T) {
	// U+1F600 (grinning face) is one UTF-16 surrogate pair (2 code units)
	// but 4 UTF-8 bytes; a key "b" follows it, and LSP positions count the
	// emoji as 2 characters, not 1 or 4.
	text := []byte("{\"a\": \"😀\", \"b\": 1}")
	li := NewLineIndex(text)

	offsetOfB := -1
	for i, b := range text {
		if b == 'b' {
			offsetOfB = i
			break
		}
	}
	line, char := li.PositionOf(text, uint32(offsetOfB))
	assert.Equal(t, 0, line)
	roundTrip := li.OffsetOf(text, line, char)
	assert.Equal(t, uint32(offsetOfB), roundTrip)
}

func TestLineIndex_Update_PreservesLaterLineOffsets(t *testing.T) {
	text := []byte("{\n  \"a\": 1\n}")
	li := NewLineIndex(text)

	// Replace "1" with "100" on line 1.
	startByte := li.OffsetOf(text, 1, 7)
	oldEndByte := li.OffsetOf(text, 1, 8)
	newText := []byte("{\n  \"a\": 100\n}")
	li.Update(newText, startByte, oldEndByte, []byte("100"))

	assert.Equal(t, 3, li.LineCount())
	line, char := li.PositionOf(newText, uint32(len(newText)-1))
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, char)
}

// applyReplace locates old within text, replaces it with replacement, and
// returns the new full text plus the [start, oldEnd) byte range that was
// replaced, for feeding directly into LineIndex.Update.
func applyReplace(t *testing.T, text, old, replacement []byte) (newText []byte, start, oldEnd uint32) {
	t.Helper()
	idx := bytes.Index(text, old)
	require.GreaterOrEqual(t, idx, 0, "fixture substring %q not found in %q", old, text)
	start = uint32(idx)
	oldEnd = start + uint32(len(old))
	newText = append(append(append([]byte{}, text[:start]...), replacement...), text[oldEnd:]...)
	return newText, start, oldEnd
}

func TestLineIndex_Update_InsertingNewlinesAddsLines(t *testing.T) {
	text := []byte(`{"a": 1, "b": 2}`)
	li := NewLineIndex(text)
	assert.Equal(t, 1, li.LineCount())

	replacement := []byte(",\n ")
	newText, start, oldEnd := applyReplace(t, text, []byte(", "), replacement)
	li.Update(newText, start, oldEnd, replacement)

	want := NewLineIndex(newText)
	require.Equal(t, want.LineCount(), li.LineCount())
	for i := 0; i < want.LineCount(); i++ {
		assert.Equal(t, want.LineStart(i), li.LineStart(i), "line %d", i)
	}
}

func TestLineIndex_Update_RemovingNewlinesMergesLines(t *testing.T) {
	text := []byte("{\n  \"a\": 1,\n  \"b\": 2\n}")
	li := NewLineIndex(text)
	require.Equal(t, 4, li.LineCount())

	replacement := []byte(", \"b")
	newText, start, oldEnd := applyReplace(t, text, []byte(",\n  \"b"), replacement)
	li.Update(newText, start, oldEnd, replacement)

	want := NewLineIndex(newText)
	require.Equal(t, want.LineCount(), li.LineCount())
	for i := 0; i < want.LineCount(); i++ {
		assert.Equal(t, want.LineStart(i), li.LineStart(i), "line %d", i)
	}
}
