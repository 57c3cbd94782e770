// Package arsc reads compiled Android resource tables and selects
// configuration-qualified entries from them.
package arsc

import (
	"fmt"
)

// ChunkType is a type of a resource chunk.
type ChunkType uint16

// Chunk types.
const (
	ResNullChunkType       ChunkType = 0x0000
	ResStringPoolChunkType ChunkType = 0x0001
	ResTableChunkType      ChunkType = 0x0002
	ResXMLChunkType        ChunkType = 0x0003

	// Chunk types in RES_TABLE_TYPE
	ResTablePackageType           ChunkType = 0x0200
	ResTableTypeType              ChunkType = 0x0201
	ResTableTypeSpecType          ChunkType = 0x0202
	ResTableLibraryType           ChunkType = 0x0203
	ResTableOverlayableType       ChunkType = 0x0204
	ResTableOverlayablePolicyType ChunkType = 0x0205
	ResTableStagedAliasType       ChunkType = 0x0206
)

const chunkHeaderSize = 8

// ResChunkHeader is a header of a resource chunk.
type ResChunkHeader struct {
	Type       ChunkType
	HeaderSize uint16
	Size       uint32
}

// DataType is a type of the data value.
type DataType uint8

// The constants for DataType
const (
	TypeNull             DataType = 0x00
	TypeReference        DataType = 0x01
	TypeAttribute        DataType = 0x02
	TypeString           DataType = 0x03
	TypeFloat            DataType = 0x04
	TypeDimension        DataType = 0x05
	TypeFraction         DataType = 0x06
	TypeDynamicReference DataType = 0x07
	TypeDynamicAttribute DataType = 0x08
	TypeFirstInt         DataType = 0x10
	TypeIntDec           DataType = 0x10
	TypeIntHex           DataType = 0x11
	TypeIntBoolean       DataType = 0x12
	TypeFirstColorInt    DataType = 0x1c
	TypeIntColorARGB8    DataType = 0x1c
	TypeIntColorRGB8     DataType = 0x1d
	TypeIntColorARGB4    DataType = 0x1e
	TypeIntColorRGB4     DataType = 0x1f
	TypeLastColorInt     DataType = 0x1f
	TypeLastInt          DataType = 0x1f
)

// Data values of TypeNull.
const (
	DataNullUndefined uint32 = 0
	DataNullEmpty     uint32 = 1
)

func (t DataType) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeReference:
		return "Reference"
	case TypeAttribute:
		return "Attribute"
	case TypeString:
		return "String"
	case TypeFloat:
		return "Float"
	case TypeDimension:
		return "Dimension"
	case TypeFraction:
		return "Fraction"
	case TypeDynamicReference:
		return "DynamicReference"
	case TypeDynamicAttribute:
		return "DynamicAttribute"
	case TypeIntDec:
		return "IntDec"
	case TypeIntHex:
		return "IntHex"
	case TypeIntBoolean:
		return "IntBoolean"
	case TypeIntColorARGB8:
		return "IntColorARGB8"
	case TypeIntColorRGB8:
		return "IntColorRGB8"
	case TypeIntColorARGB4:
		return "IntColorARGB4"
	case TypeIntColorRGB4:
		return "IntColorRGB4"
	default:
		return fmt.Sprintf("type<%d>", uint8(t))
	}
}

// IsInt reports whether t is one of the integer types, colors included.
func (t DataType) IsInt() bool {
	return t >= TypeFirstInt && t <= TypeLastInt
}

// IsColor reports whether t is one of the color types.
func (t DataType) IsColor() bool {
	return t >= TypeFirstColorInt && t <= TypeLastColorInt
}

const valueSize = 8

// ResValue is a representation of a value in a resource
type ResValue struct {
	Size     uint16
	Res0     uint8
	DataType DataType
	Data     uint32
}

// IsUndefined reports whether v is the "no value" sentinel (TYPE_NULL that is not @empty).
func (v ResValue) IsUndefined() bool {
	return v.DataType == TypeNull && v.Data != DataNullEmpty
}

// ResId is a resource identifier: 0xPPTTEEEE.
type ResId uint32

// MakeResId packs a package id, a type id and an entry index.
func MakeResId(pkg, typ uint8, entry uint16) ResId {
	return ResId(uint32(pkg)<<24 | uint32(typ)<<16 | uint32(entry))
}

// Package returns the package id.
func (id ResId) Package() uint8 {
	return uint8(id >> 24)
}

// Type returns the type id, starting at 1.
func (id ResId) Type() uint8 {
	return uint8(id >> 16)
}

// Entry returns the entry index inside its type.
func (id ResId) Entry() uint16 {
	return uint16(id)
}

// IsValid reports whether id has both a package and a type id. Bag keys of
// arrays and attribute meta entries are not valid resource ids.
func (id ResId) IsValid() bool {
	return id&0xff000000 != 0 && id&0x00ff0000 != 0
}

func (id ResId) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

// Well known package ids.
const (
	SysPackageID uint8 = 0x01
	AppPackageID uint8 = 0x7f
)

// Bag keys of attribute definitions.
const (
	AttrType  ResId = 0x01000000
	AttrMin   ResId = 0x01000001
	AttrMax   ResId = 0x01000002
	AttrL10N  ResId = 0x01000003
	AttrOther ResId = 0x01000004
	AttrZero  ResId = 0x01000005
	AttrOne   ResId = 0x01000006
	AttrTwo   ResId = 0x01000007
	AttrFew   ResId = 0x01000008
	AttrMany  ResId = 0x01000009
)

// ArrayKey returns the bag key of the i'th array item.
func ArrayKey(i int) ResId {
	return ResId(0x02000000 + uint32(i))
}

// ArrayIndex returns the array index encoded in a bag key, or -1.
func ArrayIndex(key ResId) int {
	if key&0xffff0000 != 0x02000000 {
		return -1
	}
	return int(key & 0xffff)
}

// Format flags stored under AttrType.
type Format uint32

const (
	FormatAny       Format = 0x0000ffff
	FormatReference Format = 1 << 0
	FormatString    Format = 1 << 1
	FormatInteger   Format = 1 << 2
	FormatBoolean   Format = 1 << 3
	FormatColor     Format = 1 << 4
	FormatFloat     Format = 1 << 5
	FormatDimension Format = 1 << 6
	FormatFraction  Format = 1 << 7
	FormatEnum      Format = 1 << 16
	FormatFlags     Format = 1 << 17
)

var formatNames = []struct {
	f    Format
	name string
}{
	{FormatReference, "reference"},
	{FormatString, "string"},
	{FormatInteger, "integer"},
	{FormatBoolean, "boolean"},
	{FormatColor, "color"},
	{FormatFloat, "float"},
	{FormatDimension, "dimension"},
	{FormatFraction, "fraction"},
	{FormatEnum, "enum"},
	{FormatFlags, "flags"},
}

func (f Format) String() string {
	if f&FormatAny == FormatAny {
		return "any"
	}
	s := ""
	for _, n := range formatNames {
		if f&n.f != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Type spec flags.
const (
	SpecPublic    uint32 = 0x40000000
	SpecStagedAPI uint32 = 0x20000000
)
