package arsc

import (
	"sort"
	"sync"
	"unicode/utf16"

	"github.com/codeskyblue/androidres/reserr"
)

// Entry flags.
const (
	EntryFlagComplex uint16 = 0x0001
	EntryFlagPublic  uint16 = 0x0002
	EntryFlagWeak    uint16 = 0x0004
	EntryFlagCompact uint16 = 0x0008
)

// Type chunk flags.
const (
	TypeFlagSparse   uint8 = 0x01
	TypeFlagOffset16 uint8 = 0x02
)

const (
	tableHeaderSize      = 12
	packageHeaderMinSize = 284
	typeSpecHeaderSize   = 16
	typeHeaderMinSize    = 20
	libraryHeaderSize    = 12
	packageNameLen       = 128

	noEntry   = 0xFFFFFFFF
	noEntry16 = 0xFFFF
)

// Table is a parsed resource table.
type Table struct {
	strings  *StringPool
	packages []*Package
}

// Package is one package chunk of a table.
type Package struct {
	// ID is the package id as stored; 0 for shared libraries.
	ID   uint8
	Name string

	TypeStrings *StringPool
	KeyStrings  *StringPool
	Libraries   []Library

	table *Table
	types map[uint8]*TypeGroup

	once  sync.Once
	names map[string]uint16
}

// Library maps a shared library package name to the id it was built with.
type Library struct {
	ID   uint8
	Name string
}

// TypeGroup holds the type spec of one resource type and all of its
// configuration variants in file order.
type TypeGroup struct {
	ID         uint8
	EntryCount int
	SpecFlags  []uint32
	Types      []*Type

	pkg *Package
}

// Type is one configuration variant of a resource type.
type Type struct {
	ID      uint8
	Config  Config
	entries []*Entry
}

// Entry is a resource entry. A simple entry carries Value; a complex entry
// (a bag) carries Parent and Map.
type Entry struct {
	Key    uint32
	Flags  uint16
	Value  ResValue
	Parent ResId
	Map    []MapEntry
}

// MapEntry is a single name/value pair of a bag.
type MapEntry struct {
	Name  ResId
	Value ResValue
}

// IsComplex reports whether e is a bag.
func (e *Entry) IsComplex() bool {
	return e.Flags&EntryFlagComplex != 0
}

// Strings returns the global value string pool.
func (t *Table) Strings() *StringPool {
	return t.strings
}

// Packages returns the packages in file order.
func (t *Table) Packages() []*Package {
	return t.packages
}

// Locales returns the distinct BCP-47 locales the table has variants for.
func (t *Table) Locales() []string {
	seen := map[string]bool{}
	var ret []string
	for _, p := range t.packages {
		for _, g := range p.TypeGroups() {
			for _, typ := range g.Types {
				l := typ.Config.Locale()
				if l != "" && !seen[l] {
					seen[l] = true
					ret = append(ret, l)
				}
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// String returns the value string at idx.
func (t *Table) String(idx uint32) (string, bool) {
	return t.strings.String(idx)
}

// Table returns the table p was read from.
func (p *Package) Table() *Table {
	return p.table
}

// TypeGroup returns the type with the given id, or nil.
func (p *Package) TypeGroup(id uint8) *TypeGroup {
	return p.types[id]
}

// TypeGroups returns the types sorted by id.
func (p *Package) TypeGroups() []*TypeGroup {
	ret := make([]*TypeGroup, 0, len(p.types))
	for _, g := range p.types {
		ret = append(ret, g)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

// TypeID returns the id of the type named name, such as "string".
func (p *Package) TypeID(name string) (uint8, bool) {
	idx, ok := p.TypeStrings.IndexOf(name)
	if !ok || idx > 0xfe {
		return 0, false
	}
	id := uint8(idx + 1)
	if _, ok := p.types[id]; !ok {
		return 0, false
	}
	return id, true
}

// EntryIndex returns the index of the entry named key inside type typeID.
func (p *Package) EntryIndex(typeID uint8, key string) (uint16, bool) {
	p.once.Do(p.buildNameIndex)
	idx, ok := p.names[nameKey(typeID, key)]
	return idx, ok
}

// FindID returns the id of typeName/entry, such as "string"/"app_name".
// The package byte is the id stored in the table.
func (p *Package) FindID(typeName, entry string) (ResId, bool) {
	tid, ok := p.TypeID(typeName)
	if !ok {
		return 0, false
	}
	idx, ok := p.EntryIndex(tid, entry)
	if !ok {
		return 0, false
	}
	return MakeResId(p.ID, tid, idx), true
}

// TypeName returns the name of type typeID.
func (p *Package) TypeName(typeID uint8) string {
	s, _ := p.TypeStrings.String(uint32(typeID) - 1)
	return s
}

// KeyName returns the entry name stored at key index idx.
func (p *Package) KeyName(idx uint32) string {
	s, _ := p.KeyStrings.String(idx)
	return s
}

// Types returns the configuration variants of type typeID.
func (p *Package) Types(typeID uint8) []*Type {
	if g := p.types[typeID]; g != nil {
		return g.Types
	}
	return nil
}

// SpecFlags returns the type spec flags of an entry.
func (p *Package) SpecFlags(typeID uint8, entry uint16) uint32 {
	if g := p.types[typeID]; g != nil {
		return g.Flags(entry)
	}
	return 0
}

func nameKey(typeID uint8, key string) string {
	return string([]byte{typeID, '/'}) + key
}

func (p *Package) buildNameIndex() {
	p.names = make(map[string]uint16)
	for _, g := range p.types {
		for i := 0; i < g.EntryCount; i++ {
			if e, _ := g.FirstEntry(uint16(i)); e != nil {
				if key, ok := p.KeyStrings.String(e.Key); ok {
					k := nameKey(g.ID, key)
					if _, dup := p.names[k]; !dup {
						p.names[k] = uint16(i)
					}
				}
			}
		}
	}
}

// Name returns the type name, such as "string".
func (g *TypeGroup) Name() string {
	return g.pkg.TypeName(g.ID)
}

// Package returns the package g belongs to.
func (g *TypeGroup) Package() *Package {
	return g.pkg
}

// FirstEntry returns the entry idx of the first variant that has it.
func (g *TypeGroup) FirstEntry(idx uint16) (*Entry, *Type) {
	for _, t := range g.Types {
		if e := t.Entry(idx); e != nil {
			return e, t
		}
	}
	return nil, nil
}

// Flags returns the type spec flags of entry idx.
func (g *TypeGroup) Flags(idx uint16) uint32 {
	if int(idx) >= len(g.SpecFlags) {
		return 0
	}
	return g.SpecFlags[idx]
}

// Entry returns entry idx, or nil when the variant has none.
func (t *Type) Entry(idx uint16) *Entry {
	if int(idx) >= len(t.entries) {
		return nil
	}
	return t.entries[idx]
}

// EntryCount returns the number of entry slots of the variant.
func (t *Type) EntryCount() int {
	return len(t.entries)
}

// LoadTable parses a resources.arsc image. Every structural problem is
// reported as a MalformedTable error.
func LoadTable(data []byte) (*Table, error) {
	h, chunk, err := readChunk(data, 0, "table")
	if err != nil {
		return nil, err
	}
	if h.Type != ResTableChunkType {
		return nil, reserr.Errorf(reserr.MalformedTable, "table: unexpected chunk type 0x%04x", uint16(h.Type))
	}
	if h.HeaderSize < tableHeaderSize {
		return nil, reserr.Errorf(reserr.MalformedTable, "table: header size %d", h.HeaderSize)
	}
	r := newSliceReader(chunk, "table")
	r.seek(chunkHeaderSize)
	packageCount := r.uint32()
	if r.err != nil {
		return nil, r.err
	}

	t := &Table{}
	for offset := int(h.HeaderSize); offset < len(chunk); {
		ch, sub, err := readChunk(chunk, offset, "table")
		if err != nil {
			return nil, err
		}
		switch ch.Type {
		case ResStringPoolChunkType:
			if t.strings == nil {
				if t.strings, err = readStringPool(sub); err != nil {
					return nil, err
				}
			}
		case ResTablePackageType:
			p, err := readPackage(sub, t)
			if err != nil {
				return nil, err
			}
			t.packages = append(t.packages, p)
		}
		offset += int(ch.Size)
	}
	if uint32(len(t.packages)) != packageCount {
		return nil, reserr.Errorf(reserr.MalformedTable, "table: header declares %d packages, found %d",
			packageCount, len(t.packages))
	}
	if t.strings == nil {
		t.strings = &StringPool{}
	}
	return t, nil
}

func readUTF16Name(r *sliceReader, n int) string {
	buf := make([]uint16, 0, n)
	for i := 0; i < n; i++ {
		c := r.uint16()
		if c == 0 {
			r.seek(r.pos + (n-i-1)*2)
			break
		}
		buf = append(buf, c)
	}
	return string(utf16.Decode(buf))
}

func readPackage(chunk []byte, t *Table) (*Package, error) {
	r := newSliceReader(chunk, "package")
	h := r.header()
	id := r.uint32()
	name := readUTF16Name(r, packageNameLen)
	typeStrings := r.uint32()
	r.uint32() // lastPublicType
	keyStrings := r.uint32()
	r.uint32() // lastPublicKey
	var typeIDOffset uint32
	if h.HeaderSize >= packageHeaderMinSize+4 {
		typeIDOffset = r.uint32()
	}
	if r.err != nil {
		return nil, r.err
	}
	if h.HeaderSize < packageHeaderMinSize {
		return nil, reserr.Errorf(reserr.MalformedTable, "package: header size %d", h.HeaderSize)
	}
	if id > 0xff {
		return nil, reserr.Errorf(reserr.MalformedTable, "package %q: id 0x%x out of range", name, id)
	}

	p := &Package{
		ID:    uint8(id),
		Name:  name,
		table: t,
		types: make(map[uint8]*TypeGroup),
	}
	var err error
	if p.TypeStrings, err = readPoolAt(chunk, typeStrings, "type strings"); err != nil {
		return nil, err
	}
	if p.KeyStrings, err = readPoolAt(chunk, keyStrings, "key strings"); err != nil {
		return nil, err
	}

	for offset := int(h.HeaderSize); offset < len(chunk); {
		ch, sub, err := readChunk(chunk, offset, "package")
		if err != nil {
			return nil, err
		}
		switch ch.Type {
		case ResTableTypeSpecType:
			if err := p.readTypeSpec(sub, typeIDOffset); err != nil {
				return nil, err
			}
		case ResTableTypeType:
			if err := p.readType(sub, typeIDOffset); err != nil {
				return nil, err
			}
		case ResTableLibraryType:
			if err := p.readLibrary(sub); err != nil {
				return nil, err
			}
		}
		offset += int(ch.Size)
	}
	return p, nil
}

func readPoolAt(chunk []byte, offset uint32, what string) (*StringPool, error) {
	if offset == 0 {
		return nil, reserr.Errorf(reserr.MalformedTable, "package: missing %s", what)
	}
	if uint64(offset) >= uint64(len(chunk)) {
		return nil, reserr.Errorf(reserr.MalformedTable, "package: %s at %d outside chunk", what, offset)
	}
	_, sub, err := readChunk(chunk, int(offset), what)
	if err != nil {
		return nil, err
	}
	return readStringPool(sub)
}

func (p *Package) readTypeSpec(chunk []byte, typeIDOffset uint32) error {
	r := newSliceReader(chunk, "type spec")
	h := r.header()
	id := uint32(r.uint8())
	r.uint8()
	r.uint16()
	entryCount := r.uint32()
	if r.err != nil {
		return r.err
	}
	if h.HeaderSize < typeSpecHeaderSize {
		return reserr.Errorf(reserr.MalformedTable, "type spec: header size %d", h.HeaderSize)
	}
	if id == 0 || id+typeIDOffset > 0xff {
		return reserr.Errorf(reserr.MalformedTable, "type spec: invalid type id %d", id)
	}
	tid := uint8(id + typeIDOffset)
	if _, ok := p.types[tid]; ok {
		return reserr.Errorf(reserr.MalformedTable, "type spec: duplicate type id %d", tid)
	}
	r.seek(int(h.HeaderSize))
	flags := r.uint32Array(entryCount)
	if r.err != nil {
		return r.err
	}
	p.types[tid] = &TypeGroup{
		ID:         tid,
		EntryCount: int(entryCount),
		SpecFlags:  flags,
		pkg:        p,
	}
	return nil
}

func (p *Package) readType(chunk []byte, typeIDOffset uint32) error {
	r := newSliceReader(chunk, "type")
	h := r.header()
	id := uint32(r.uint8())
	flags := r.uint8()
	r.uint16()
	entryCount := r.uint32()
	entriesStart := r.uint32()
	if r.err != nil {
		return r.err
	}
	if h.HeaderSize < typeHeaderMinSize {
		return reserr.Errorf(reserr.MalformedTable, "type: header size %d", h.HeaderSize)
	}
	g := p.types[uint8(id+typeIDOffset)]
	if id == 0 || g == nil {
		return reserr.Errorf(reserr.MalformedTable, "type: id %d has no type spec", id)
	}
	config, _, err := ReadConfig(chunk[r.pos:h.HeaderSize])
	if err != nil {
		return err
	}
	if flags&TypeFlagSparse == 0 && int(entryCount) > g.EntryCount {
		return reserr.Errorf(reserr.MalformedTable, "type %d: %d entries, spec declares %d", id, entryCount, g.EntryCount)
	}
	if uint64(entriesStart) > uint64(len(chunk)) {
		return reserr.Errorf(reserr.MalformedTable, "type %d: entries start %d outside chunk", id, entriesStart)
	}

	typ := &Type{
		ID:      g.ID,
		Config:  config,
		entries: make([]*Entry, g.EntryCount),
	}
	r.seek(int(h.HeaderSize))
	offsets := map[uint16]uint32{}
	for i := uint32(0); i < entryCount && r.err == nil; i++ {
		switch {
		case flags&TypeFlagSparse != 0:
			idx, off := r.uint16(), r.uint16()
			offsets[idx] = uint32(off) * 4
		case flags&TypeFlagOffset16 != 0:
			if off := r.uint16(); off != noEntry16 {
				offsets[uint16(i)] = uint32(off) * 4
			}
		default:
			if off := r.uint32(); off != noEntry {
				offsets[uint16(i)] = off
			}
		}
	}
	if r.err != nil {
		return r.err
	}
	entries := chunk[entriesStart:]
	for idx, off := range offsets {
		if int(idx) >= g.EntryCount {
			return reserr.Errorf(reserr.MalformedTable, "type %d: entry %d beyond spec count %d", id, idx, g.EntryCount)
		}
		e, err := readEntry(entries, off)
		if err != nil {
			return err
		}
		typ.entries[idx] = e
	}
	g.Types = append(g.Types, typ)
	return nil
}

func readResValue(r *sliceReader) ResValue {
	return ResValue{
		Size:     r.uint16(),
		Res0:     r.uint8(),
		DataType: DataType(r.uint8()),
		Data:     r.uint32(),
	}
}

func readEntry(data []byte, offset uint32) (*Entry, error) {
	r := newSliceReader(data, "entry")
	r.seek(int(offset))
	size := r.uint16()
	flags := r.uint16()
	e := &Entry{Flags: flags}

	if flags&EntryFlagCompact != 0 {
		e.Key = uint32(size)
		e.Value = ResValue{Size: valueSize, DataType: DataType(flags >> 8), Data: r.uint32()}
		e.Flags = flags & 0xff
		return e, r.err
	}

	e.Key = r.uint32()
	if r.err != nil {
		return nil, r.err
	}
	if size < 8 {
		return nil, reserr.Errorf(reserr.MalformedTable, "entry at %d: size %d", offset, size)
	}
	if flags&EntryFlagComplex != 0 {
		e.Parent = ResId(r.uint32())
		count := r.uint32()
		if r.err != nil {
			return nil, r.err
		}
		r.seek(int(offset) + int(size))
		if uint64(count)*12 > uint64(len(data)-r.pos) {
			return nil, reserr.Errorf(reserr.MalformedTable, "entry at %d: %d map entries do not fit", offset, count)
		}
		e.Map = make([]MapEntry, count)
		for i := range e.Map {
			e.Map[i].Name = ResId(r.uint32())
			e.Map[i].Value = readResValue(r)
		}
		return e, r.err
	}
	r.seek(int(offset) + int(size))
	e.Value = readResValue(r)
	return e, r.err
}

func (p *Package) readLibrary(chunk []byte) error {
	r := newSliceReader(chunk, "library")
	h := r.header()
	count := r.uint32()
	if r.err != nil {
		return r.err
	}
	if h.HeaderSize < libraryHeaderSize {
		return reserr.Errorf(reserr.MalformedTable, "library: header size %d", h.HeaderSize)
	}
	r.seek(int(h.HeaderSize))
	for i := uint32(0); i < count; i++ {
		id := r.uint32()
		name := readUTF16Name(r, packageNameLen)
		if r.err != nil {
			return r.err
		}
		p.Libraries = append(p.Libraries, Library{ID: uint8(id), Name: name})
	}
	return nil
}
