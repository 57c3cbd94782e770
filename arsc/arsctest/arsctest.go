// Package arsctest builds resources.arsc images for tests.
//
//	tb := arsctest.NewTable()
//	p := tb.Package(0x7f, "com.example")
//	red := p.Set("color/red", "", arsctest.Color(0xffff0000))
//	p.Set("string/hello", "fr", tb.String("Bonjour"))
//	data := tb.Bytes()
package arsctest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/codeskyblue/androidres/arsc"
)

// Table is a resource table under construction.
type Table struct {
	// UTF16 stores string pools as UTF-16 instead of UTF-8.
	UTF16 bool

	strings  *pool
	packages []*Package
}

// Package is a package under construction. Entry ids are handed out in
// order of first use: types from 1, entries from 0.
type Package struct {
	ID   uint8
	Name string

	// Sparse writes type chunks with the sparse offset table.
	Sparse bool
	// Offset16 writes type chunks with 16-bit offsets.
	Offset16 bool

	table     *Table
	types     []*typeBuilder
	libraries []arsc.Library
}

type typeBuilder struct {
	name    string
	keys    []string
	index   map[string]uint16
	public  map[uint16]bool
	configs []string
	values  map[string]map[uint16]*value
}

type value struct {
	complex bool
	v       arsc.ResValue
	parent  arsc.ResId
	items   []arsc.MapEntry
}

type pool struct {
	strings []string
	index   map[string]uint32
}

func newPool() *pool {
	return &pool{index: map[string]uint32{}}
}

func (p *pool) add(s string) uint32 {
	if idx, ok := p.index[s]; ok {
		return idx
	}
	idx := uint32(len(p.strings))
	p.strings = append(p.strings, s)
	p.index[s] = idx
	return idx
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{strings: newPool()}
}

// Package returns the package named name, creating it with id if needed.
func (t *Table) Package(id uint8, name string) *Package {
	for _, p := range t.packages {
		if p.Name == name {
			return p
		}
	}
	p := &Package{ID: id, Name: name, table: t}
	t.packages = append(t.packages, p)
	return p
}

// String adds s to the value string pool and returns a string value.
func (t *Table) String(s string) arsc.ResValue {
	return Value(arsc.TypeString, t.strings.add(s))
}

// Value returns a plain value.
func Value(dt arsc.DataType, data uint32) arsc.ResValue {
	return arsc.ResValue{Size: 8, DataType: dt, Data: data}
}

// Ref returns a reference to id.
func Ref(id arsc.ResId) arsc.ResValue { return Value(arsc.TypeReference, uint32(id)) }

// AttrRef returns a theme attribute reference to id.
func AttrRef(id arsc.ResId) arsc.ResValue { return Value(arsc.TypeAttribute, uint32(id)) }

// Int returns a decimal integer.
func Int(n int32) arsc.ResValue { return Value(arsc.TypeIntDec, uint32(n)) }

// Hex returns a hexadecimal integer.
func Hex(n uint32) arsc.ResValue { return Value(arsc.TypeIntHex, n) }

// Bool returns a boolean.
func Bool(b bool) arsc.ResValue {
	if b {
		return Value(arsc.TypeIntBoolean, 0xffffffff)
	}
	return Value(arsc.TypeIntBoolean, 0)
}

// Color returns an #aarrggbb color.
func Color(argb uint32) arsc.ResValue { return Value(arsc.TypeIntColorARGB8, argb) }

// Float returns a float.
func Float(f float32) arsc.ResValue { return Value(arsc.TypeFloat, math.Float32bits(f)) }

// Null returns @null.
func Null() arsc.ResValue { return Value(arsc.TypeReference, 0) }

// Empty returns @empty.
func Empty() arsc.ResValue { return Value(arsc.TypeNull, arsc.DataNullEmpty) }

// Item returns a bag item.
func Item(name arsc.ResId, v arsc.ResValue) arsc.MapEntry {
	return arsc.MapEntry{Name: name, Value: v}
}

func splitName(name string) (string, string) {
	i := strings.IndexByte(name, '/')
	if i < 0 {
		panic(fmt.Sprintf("arsctest: resource name %q is not type/entry", name))
	}
	return name[:i], name[i+1:]
}

func (p *Package) typeNamed(name string) (uint8, *typeBuilder) {
	for i, t := range p.types {
		if t.name == name {
			return uint8(i + 1), t
		}
	}
	t := &typeBuilder{
		name:   name,
		index:  map[string]uint16{},
		public: map[uint16]bool{},
		values: map[string]map[uint16]*value{},
	}
	p.types = append(p.types, t)
	return uint8(len(p.types)), t
}

// ResID returns the id of "type/entry", allocating it if needed.
func (p *Package) ResID(name string) arsc.ResId {
	typeName, key := splitName(name)
	tid, t := p.typeNamed(typeName)
	idx, ok := t.index[key]
	if !ok {
		idx = uint16(len(t.keys))
		t.keys = append(t.keys, key)
		t.index[key] = idx
	}
	return arsc.MakeResId(p.ID, tid, idx)
}

func (p *Package) put(name, config string, v *value) arsc.ResId {
	id := p.ResID(name)
	typeName, _ := splitName(name)
	_, t := p.typeNamed(typeName)
	vals, ok := t.values[config]
	if !ok {
		vals = map[uint16]*value{}
		t.values[config] = vals
		t.configs = append(t.configs, config)
	}
	vals[id.Entry()] = v
	return id
}

// Set stores a simple value for name under the qualifier string config.
func (p *Package) Set(name, config string, v arsc.ResValue) arsc.ResId {
	return p.put(name, config, &value{v: v})
}

// SetBag stores a bag for name under the qualifier string config.
func (p *Package) SetBag(name, config string, parent arsc.ResId, items ...arsc.MapEntry) arsc.ResId {
	return p.put(name, config, &value{complex: true, parent: parent, items: items})
}

// Public marks name as public.
func (p *Package) Public(name string) {
	id := p.ResID(name)
	p.types[id.Type()-1].public[id.Entry()] = true
}

// Library records a shared library dependency.
func (p *Package) Library(id uint8, name string) {
	p.libraries = append(p.libraries, arsc.Library{ID: id, Name: name})
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)    { w.buf.WriteByte(v) }
func (w *writer) u16(v uint16)  { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u32(v uint32)  { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) data(b []byte) { w.buf.Write(b) }

func (w *writer) pad4() {
	for w.buf.Len()%4 != 0 {
		w.buf.WriteByte(0)
	}
}

func (w *writer) name128(s string) {
	units := utf16.Encode([]rune(s))
	for i := 0; i < 128; i++ {
		if i < len(units) {
			w.u16(units[i])
		} else {
			w.u16(0)
		}
	}
}

func (w *writer) value(v arsc.ResValue) {
	w.u16(8)
	w.u8(0)
	w.u8(uint8(v.DataType))
	w.u32(v.Data)
}

// encodeChunk writes a chunk from its type specific header and body,
// filling in the header and chunk sizes.
func encodeChunk(typ arsc.ChunkType, headerf func(w *writer), dataf func(w *writer)) []byte {
	var header, body writer
	headerf(&header)
	if dataf != nil {
		dataf(&body)
	}
	var chunk writer
	chunk.u16(uint16(typ))
	chunk.u16(uint16(header.buf.Len() + 8))
	chunk.u32(uint32(header.buf.Len() + body.buf.Len() + 8))
	chunk.data(header.buf.Bytes())
	chunk.data(body.buf.Bytes())
	return chunk.buf.Bytes()
}

func encodeLength8(w *writer, n int) {
	if n > 0x7f {
		w.u8(uint8(n>>8) | 0x80)
	}
	w.u8(uint8(n))
}

func encodePool(strs []string, utf8 bool) []byte {
	var data writer
	offsets := make([]uint32, len(strs))
	for i, s := range strs {
		offsets[i] = uint32(data.buf.Len())
		if utf8 {
			encodeLength8(&data, len(utf16.Encode([]rune(s))))
			encodeLength8(&data, len(s))
			data.data([]byte(s))
			data.u8(0)
		} else {
			units := utf16.Encode([]rune(s))
			if len(units) > 0x7fff {
				data.u16(uint16(len(units)>>16) | 0x8000)
			}
			data.u16(uint16(len(units)))
			for _, u := range units {
				data.u16(u)
			}
			data.u16(0)
		}
	}
	data.pad4()

	var flags uint32
	if utf8 {
		flags |= arsc.UTF8Flag
	}
	return encodeChunk(arsc.ResStringPoolChunkType, func(w *writer) {
		w.u32(uint32(len(strs)))
		w.u32(0)
		w.u32(flags)
		w.u32(uint32(28 + 4*len(strs)))
		w.u32(0)
	}, func(w *writer) {
		for _, off := range offsets {
			w.u32(off)
		}
		w.data(data.buf.Bytes())
	})
}

// Bytes encodes the table. It panics on an invalid qualifier string.
func (t *Table) Bytes() []byte {
	var pkgs [][]byte
	for _, p := range t.packages {
		pkgs = append(pkgs, p.encode())
	}
	return encodeChunk(arsc.ResTableChunkType, func(w *writer) {
		w.u32(uint32(len(t.packages)))
	}, func(w *writer) {
		w.data(encodePool(t.strings.strings, !t.UTF16))
		for _, b := range pkgs {
			w.data(b)
		}
	})
}

func (p *Package) encode() []byte {
	typeStrings := newPool()
	keyStrings := newPool()
	for _, t := range p.types {
		typeStrings.add(t.name)
		for _, k := range t.keys {
			keyStrings.add(k)
		}
	}
	utf8 := !p.table.UTF16
	typePool := encodePool(typeStrings.strings, utf8)
	keyPool := encodePool(keyStrings.strings, utf8)

	const headerSize = 288
	return encodeChunk(arsc.ResTablePackageType, func(w *writer) {
		w.u32(uint32(p.ID))
		w.name128(p.Name)
		w.u32(headerSize)
		w.u32(uint32(len(p.types)))
		w.u32(uint32(headerSize + len(typePool)))
		w.u32(uint32(len(keyStrings.strings)))
		w.u32(0)
	}, func(w *writer) {
		w.data(typePool)
		w.data(keyPool)
		if len(p.libraries) > 0 {
			w.data(encodeChunk(arsc.ResTableLibraryType, func(w *writer) {
				w.u32(uint32(len(p.libraries)))
			}, func(w *writer) {
				for _, l := range p.libraries {
					w.u32(uint32(l.ID))
					w.name128(l.Name)
				}
			}))
		}
		for i, t := range p.types {
			w.data(p.encodeType(uint8(i+1), t, keyStrings))
		}
	})
}

func mustConfig(q string) arsc.Config {
	c, err := arsc.ParseQualifiers(q)
	if err != nil {
		panic(err)
	}
	return c
}

func (p *Package) encodeType(id uint8, t *typeBuilder, keys *pool) []byte {
	count := len(t.keys)
	var def arsc.Config
	flags := make([]uint32, count)
	for i := range flags {
		if t.public[uint16(i)] {
			flags[i] |= arsc.SpecPublic
		}
	}
	for _, q := range t.configs {
		c := mustConfig(q)
		for idx := range t.values[q] {
			flags[idx] |= def.Diff(&c)
		}
	}

	var out writer
	out.data(encodeChunk(arsc.ResTableTypeSpecType, func(w *writer) {
		w.u8(id)
		w.u8(0)
		w.u16(0)
		w.u32(uint32(count))
	}, func(w *writer) {
		for _, f := range flags {
			w.u32(f)
		}
	}))

	for _, q := range t.configs {
		c := mustConfig(q)
		vals := t.values[q]
		var entries writer
		offsets := make([]uint32, count)
		for i := 0; i < count; i++ {
			v, ok := vals[uint16(i)]
			if !ok {
				offsets[i] = 0xFFFFFFFF
				continue
			}
			offsets[i] = uint32(entries.buf.Len())
			var eflags uint16
			if t.public[uint16(i)] {
				eflags |= arsc.EntryFlagPublic
			}
			key := keys.add(t.keys[i])
			if v.complex {
				entries.u16(16)
				entries.u16(eflags | arsc.EntryFlagComplex)
				entries.u32(key)
				entries.u32(uint32(v.parent))
				entries.u32(uint32(len(v.items)))
				for _, it := range v.items {
					entries.u32(uint32(it.Name))
					entries.value(it.Value)
				}
			} else {
				entries.u16(8)
				entries.u16(eflags)
				entries.u32(key)
				entries.value(v.v)
			}
		}

		var offsetTable writer
		var typeFlags uint8
		entryCount := count
		switch {
		case p.Sparse:
			typeFlags = arsc.TypeFlagSparse
			entryCount = 0
			for i, off := range offsets {
				if off != 0xFFFFFFFF {
					offsetTable.u16(uint16(i))
					offsetTable.u16(uint16(off / 4))
					entryCount++
				}
			}
		case p.Offset16:
			typeFlags = arsc.TypeFlagOffset16
			for _, off := range offsets {
				if off == 0xFFFFFFFF {
					offsetTable.u16(0xFFFF)
				} else {
					offsetTable.u16(uint16(off / 4))
				}
			}
			offsetTable.pad4()
		default:
			for _, off := range offsets {
				offsetTable.u32(off)
			}
		}

		config, _ := c.MarshalBinary()
		headerSize := 20 + len(config)
		out.data(encodeChunk(arsc.ResTableTypeType, func(w *writer) {
			w.u8(id)
			w.u8(typeFlags)
			w.u16(0)
			w.u32(uint32(entryCount))
			w.u32(uint32(headerSize + offsetTable.buf.Len()))
			w.data(config)
		}, func(w *writer) {
			w.data(offsetTable.buf.Bytes())
			w.data(entries.buf.Bytes())
		}))
	}
	return out.buf.Bytes()
}
