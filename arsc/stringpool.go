package arsc

import (
	"sync"
	"unicode/utf16"

	"github.com/codeskyblue/androidres/reserr"
)

// Flags are flags for string pool header.
const (
	SortedFlag uint32 = 1 << 0
	UTF8Flag   uint32 = 1 << 8
)

const (
	stringPoolHeaderSize = 28
	spanEnd              = 0xFFFFFFFF
)

// NilStringRef is the "no string" reference.
const NilStringRef = 0xFFFFFFFF

// Span is a span of style information associated with a string in the pool.
// Name is the index of the tag name string, e.g. "b".
type Span struct {
	Name      uint32
	FirstChar uint32
	LastChar  uint32
}

// StringPool is a decoded string pool chunk.
type StringPool struct {
	flags   uint32
	strings []string
	styles  [][]Span

	once  sync.Once
	index map[string]uint32
}

// Len returns the number of strings in the pool.
func (p *StringPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.strings)
}

// String returns the string at idx.
func (p *StringPool) String(idx uint32) (string, bool) {
	if p == nil || idx >= uint32(len(p.strings)) {
		return "", false
	}
	return p.strings[idx], true
}

// Styles returns the style spans of the string at idx, if any.
func (p *StringPool) Styles(idx uint32) []Span {
	if p == nil || idx >= uint32(len(p.styles)) {
		return nil
	}
	return p.styles[idx]
}

// IsUTF8 reports whether the pool was stored as UTF-8.
func (p *StringPool) IsUTF8() bool {
	return p.flags&UTF8Flag != 0
}

// IndexOf returns the index of the first occurrence of s.
func (p *StringPool) IndexOf(s string) (uint32, bool) {
	if p == nil {
		return 0, false
	}
	p.once.Do(func() {
		p.index = make(map[string]uint32, len(p.strings))
		for i := len(p.strings) - 1; i >= 0; i-- {
			p.index[p.strings[i]] = uint32(i)
		}
	})
	idx, ok := p.index[s]
	return idx, ok
}

func readStringPool(chunk []byte) (*StringPool, error) {
	r := newSliceReader(chunk, "string pool")
	h := r.header()
	stringCount := r.uint32()
	styleCount := r.uint32()
	flags := r.uint32()
	stringsStart := r.uint32()
	stylesStart := r.uint32()
	if r.err != nil {
		return nil, r.err
	}
	if h.Type != ResStringPoolChunkType {
		return nil, reserr.Errorf(reserr.MalformedTable, "string pool: unexpected chunk type 0x%04x", uint16(h.Type))
	}
	if h.HeaderSize < stringPoolHeaderSize {
		return nil, reserr.Errorf(reserr.MalformedTable, "string pool: header size %d", h.HeaderSize)
	}
	r.seek(int(h.HeaderSize))
	stringOffsets := r.uint32Array(stringCount)
	styleOffsets := r.uint32Array(styleCount)
	if r.err != nil {
		return nil, r.err
	}

	sp := &StringPool{
		flags:   flags,
		strings: make([]string, stringCount),
	}
	for i, off := range stringOffsets {
		pos := uint64(stringsStart) + uint64(off)
		if pos >= uint64(len(chunk)) {
			return nil, reserr.Errorf(reserr.MalformedTable, "string pool: string %d at %d outside chunk", i, pos)
		}
		r.seek(int(pos))
		var s string
		if flags&UTF8Flag != 0 {
			s = readUTF8(r)
		} else {
			s = readUTF16(r)
		}
		if r.err != nil {
			return nil, r.err
		}
		sp.strings[i] = s
	}

	if styleCount > 0 {
		sp.styles = make([][]Span, styleCount)
		for i, off := range styleOffsets {
			pos := uint64(stylesStart) + uint64(off)
			if pos >= uint64(len(chunk)) {
				return nil, reserr.Errorf(reserr.MalformedTable, "string pool: style %d at %d outside chunk", i, pos)
			}
			r.seek(int(pos))
			for {
				name := r.uint32()
				if r.err != nil {
					return nil, r.err
				}
				if name == spanEnd {
					break
				}
				sp.styles[i] = append(sp.styles[i], Span{Name: name, FirstChar: r.uint32(), LastChar: r.uint32()})
			}
		}
	}
	return sp, r.err
}

func readUTF16(r *sliceReader) string {
	size := int(r.uint16())
	if size&0x8000 != 0 {
		size = (size&0x7FFF)<<16 | int(r.uint16())
	}
	if !r.need(size * 2) {
		return ""
	}
	buf := make([]uint16, size)
	for i := range buf {
		buf[i] = r.uint16()
	}
	return string(utf16.Decode(buf))
}

func readUTF8(r *sliceReader) string {
	// utf-16 length, unused
	readUTF8Length(r)
	size := readUTF8Length(r)
	return string(r.bytes(size))
}

func readUTF8Length(r *sliceReader) int {
	first := int(r.uint8())
	if first&0x80 != 0 {
		return (first&0x7F)<<8 | int(r.uint8())
	}
	return first
}
