package arsc

import (
	"encoding/binary"

	"github.com/codeskyblue/androidres/reserr"
)

// sliceReader reads little-endian values from a chunk. The first read past
// the end is remembered and every later read returns zero.
type sliceReader struct {
	data []byte
	pos  int
	err  error
	what string
}

func newSliceReader(data []byte, what string) *sliceReader {
	return &sliceReader{data: data, what: what}
}

func (r *sliceReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos < 0 || r.pos+n > len(r.data) {
		r.err = reserr.Errorf(reserr.MalformedTable, "%s: read of %d bytes at offset %d past end (%d)",
			r.what, n, r.pos, len(r.data))
		return false
	}
	return true
}

func (r *sliceReader) uint8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *sliceReader) uint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *sliceReader) uint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *sliceReader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

func (r *sliceReader) uint32Array(count uint32) []uint32 {
	if r.err != nil {
		return nil
	}
	if uint64(count)*4 > uint64(len(r.data)-r.pos) {
		r.err = reserr.Errorf(reserr.MalformedTable, "%s: array of %d words at offset %d does not fit", r.what, count, r.pos)
		return nil
	}
	ret := make([]uint32, count)
	for i := range ret {
		ret[i] = r.uint32()
	}
	return ret
}

func (r *sliceReader) seek(pos int) {
	if r.err == nil && (pos < 0 || pos > len(r.data)) {
		r.err = reserr.Errorf(reserr.MalformedTable, "%s: seek to %d outside chunk of %d bytes", r.what, pos, len(r.data))
		return
	}
	r.pos = pos
}

func (r *sliceReader) header() ResChunkHeader {
	return ResChunkHeader{
		Type:       ChunkType(r.uint16()),
		HeaderSize: r.uint16(),
		Size:       r.uint32(),
	}
}

// readChunk validates the chunk header at offset and returns the chunk bytes.
func readChunk(data []byte, offset int, what string) (ResChunkHeader, []byte, error) {
	r := newSliceReader(data, what)
	r.seek(offset)
	h := r.header()
	if r.err != nil {
		return h, nil, r.err
	}
	if h.HeaderSize < chunkHeaderSize {
		return h, nil, reserr.Errorf(reserr.MalformedTable, "%s: header size %d at offset %d", what, h.HeaderSize, offset)
	}
	if h.Size < uint32(h.HeaderSize) {
		return h, nil, reserr.Errorf(reserr.MalformedTable, "%s: chunk size %d smaller than header %d", what, h.Size, h.HeaderSize)
	}
	if uint64(offset)+uint64(h.Size) > uint64(len(data)) {
		return h, nil, reserr.Errorf(reserr.MalformedTable, "%s: chunk of %d bytes at offset %d overruns parent of %d bytes",
			what, h.Size, offset, len(data))
	}
	return h, data[offset : offset+int(h.Size)], nil
}
