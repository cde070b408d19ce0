package document

import (
	"sort"
)

// LineIndex maps between byte offsets and LSP's UTF-16 line/character
// positions. LSP positions are always UTF-16 code units even though the
// document itself is stored as UTF-8 bytes, so every conversion has to walk
// the relevant line's bytes and count code units as it goes.
type LineIndex struct {
	// lineStarts[i] is the byte offset of the first byte of line i.
	lineStarts []uint32
}

// NewLineIndex builds a line index from scratch.
func NewLineIndex(text []byte) *LineIndex {
	li := &LineIndex{lineStarts: []uint32{0}}
	for i, b := range text {
		if b == '\n' {
			li.lineStarts = append(li.lineStarts, uint32(i+1))
		}
	}
	return li
}

// Update incrementally patches the index after an edit that replaced the
// byte range [startByte, oldEndByte) with newText, given the document's full
// text AFTER the edit has been applied: line starts inside the removed range
// are dropped, every line start after it is shifted by the length delta, and
// new line starts are inserted for each '\n' in newText. A sanity check
// (see sane) guards against the incremental path drifting out of sync; if
// it fails, the index is rebuilt from newFullText.
func (li *LineIndex) Update(newFullText []byte, startByte, oldEndByte uint32, newText []byte) {
	delta := int64(len(newText)) - int64(oldEndByte-startByte)

	kept := li.lineStarts[:0:0]
	for _, ls := range li.lineStarts {
		switch {
		case ls <= startByte:
			kept = append(kept, ls)
		case ls > oldEndByte:
			kept = append(kept, uint32(int64(ls)+delta))
		default:
			// ls falls inside the removed range; drop it.
		}
	}

	var inserted []uint32
	for i, b := range newText {
		if b == '\n' {
			inserted = append(inserted, startByte+uint32(i)+1)
		}
	}

	merged := make([]uint32, 0, len(kept)+len(inserted))
	ki, ii := 0, 0
	for ki < len(kept) || ii < len(inserted) {
		switch {
		case ii >= len(inserted) || (ki < len(kept) && kept[ki] <= inserted[ii]):
			merged = append(merged, kept[ki])
			ki++
		default:
			merged = append(merged, inserted[ii])
			ii++
		}
	}
	if len(merged) == 0 || merged[0] != 0 {
		merged = append([]uint32{0}, merged...)
	}

	li.lineStarts = merged
	if !li.sane(newFullText) {
		*li = *NewLineIndex(newFullText)
	}
}

// sane checks that every recorded line start is actually preceded by a
// newline (or is offset 0) and that the count matches the number of
// newlines in text, the fallback trigger for Update's incremental path.
func (li *LineIndex) sane(text []byte) bool {
	want := 1
	for _, b := range text {
		if b == '\n' {
			want++
		}
	}
	if len(li.lineStarts) != want {
		return false
	}
	for i, ls := range li.lineStarts {
		if i == 0 {
			if ls != 0 {
				return false
			}
			continue
		}
		if ls == 0 || ls > uint32(len(text)) || text[ls-1] != '\n' {
			return false
		}
	}
	return true
}

// LineCount returns the number of lines in the document.
func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}

// LineStart returns the byte offset of the start of a line.
func (li *LineIndex) LineStart(line int) uint32 {
	if line < 0 {
		return 0
	}
	if line >= len(li.lineStarts) {
		return li.lineStarts[len(li.lineStarts)-1]
	}
	return li.lineStarts[line]
}

// lineOf finds the line containing a byte offset via binary search over
// line start offsets (mirrors partition_point in the reference implementation).
func (li *LineIndex) lineOf(offset uint32) int {
	idx := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	})
	return idx - 1
}

// OffsetOf converts an LSP Position (UTF-16 line/character) to a byte
// offset within text.
func (li *LineIndex) OffsetOf(text []byte, line, utf16Char int) uint32 {
	if line < 0 {
		return 0
	}
	start := li.LineStart(line)
	end := uint32(len(text))
	if line+1 < len(li.lineStarts) {
		end = li.lineStarts[line+1]
	}
	lineBytes := text[start:end]
	return start + utf16OffsetToByteOffset(lineBytes, utf16Char)
}

// PositionOf converts a byte offset to an LSP Position.
func (li *LineIndex) PositionOf(text []byte, offset uint32) (line, utf16Char int) {
	line = li.lineOf(offset)
	if line < 0 {
		line = 0
	}
	start := li.LineStart(line)
	end := uint32(len(text))
	if line+1 < len(li.lineStarts) {
		end = li.lineStarts[line+1]
	}
	if offset > end {
		offset = end
	}
	lineBytes := text[start:end]
	byteLen := offset - start
	if int(byteLen) > len(lineBytes) {
		byteLen = uint32(len(lineBytes))
	}
	utf16Char = byteOffsetToUTF16Offset(lineBytes[:byteLen])
	return line, utf16Char
}

// utf16OffsetToByteOffset walks lineBytes decoding UTF-8 runes, counting
// UTF-16 code units (2 for astral runes), stopping once target units have
// been consumed.
func utf16OffsetToByteOffset(lineBytes []byte, targetUnits int) uint32 {
	units := 0
	i := 0
	for i < len(lineBytes) && units < targetUnits {
		r, size := decodeRune(lineBytes[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return uint32(i)
}

// byteOffsetToUTF16Offset counts UTF-16 code units represented by lineBytes.
func byteOffsetToUTF16Offset(lineBytes []byte) int {
	units := 0
	i := 0
	for i < len(lineBytes) {
		r, size := decodeRune(lineBytes[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return units
}

func decodeRune(b []byte) (rune, int) {
	if len(b) == 0 {
		return 0, 0
	}
	b0 := b[0]
	switch {
	case b0 < 0x80:
		return rune(b0), 1
	case b0&0xE0 == 0xC0 && len(b) >= 2:
		return rune(b0&0x1F)<<6 | rune(b[1]&0x3F), 2
	case b0&0xF0 == 0xE0 && len(b) >= 3:
		return rune(b0&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F), 3
	case b0&0xF8 == 0xF0 && len(b) >= 4:
		return rune(b0&0x07)<<18 | rune(b[1]&0x3F)<<12 | rune(b[2]&0x3F)<<6 | rune(b[3]&0x3F), 4
	default:
		return rune(b0), 1
	}
}
