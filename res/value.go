// Package res resolves resources out of one or more loaded arsc tables:
// reference chains, bags, themes and typed attribute arrays.
package res

import (
	"fmt"
	"math"

	"github.com/codeskyblue/androidres/arsc"
)

// Cookie identifies the loaded table that produced a value.
type Cookie int

// NoCookie marks values that did not come from a table, such as literals.
const NoCookie Cookie = -1

// TypedValue is the result of a resolution.
type TypedValue struct {
	Type arsc.DataType
	Data uint32
	// String is the string payload of TypeString values.
	String string

	// ResourceID is the id of the resource the value was last read from.
	ResourceID arsc.ResId
	// Density is the density of the variant that was picked, 0 for none.
	Density uint16
	// ChangingConfigurations holds the Config* bits that would change
	// this value.
	ChangingConfigurations uint32
	Cookie                 Cookie
}

func nullValue() TypedValue {
	return TypedValue{Type: arsc.TypeNull, Data: arsc.DataNullUndefined, Cookie: NoCookie}
}

func emptyValue() TypedValue {
	return TypedValue{Type: arsc.TypeNull, Data: arsc.DataNullEmpty, Cookie: NoCookie}
}

// IsNull reports whether v is undefined: TYPE_NULL that is not @empty.
func (v TypedValue) IsNull() bool {
	return v.Type == arsc.TypeNull && v.Data != arsc.DataNullEmpty
}

// IsEmpty reports whether v is @empty.
func (v TypedValue) IsEmpty() bool {
	return v.Type == arsc.TypeNull && v.Data == arsc.DataNullEmpty
}

// Float returns the value of a TypeFloat.
func (v TypedValue) Float() float32 {
	return math.Float32frombits(v.Data)
}

// JavaChangingConfigurations returns ChangingConfigurations in the
// ActivityInfo bit layout.
func (v TypedValue) JavaChangingConfigurations() uint32 {
	return arsc.JavaConfigChanges(v.ChangingConfigurations)
}

var dimensionUnits = []string{"px", "dip", "sp", "pt", "in", "mm"}

// CoerceToString formats v the way TypedValue.coerceToString does.
func (v TypedValue) CoerceToString() string {
	switch v.Type {
	case arsc.TypeNull:
		if v.Data == arsc.DataNullEmpty {
			return "@empty"
		}
		return ""
	case arsc.TypeReference:
		if v.Data == 0 {
			return "@null"
		}
		return fmt.Sprintf("@0x%08x", v.Data)
	case arsc.TypeAttribute:
		return fmt.Sprintf("?0x%08x", v.Data)
	case arsc.TypeString:
		return v.String
	case arsc.TypeFloat:
		return fmt.Sprint(v.Float())
	case arsc.TypeDimension:
		unit := int(v.Data >> complexUnitShift & complexUnitMask)
		if unit < len(dimensionUnits) {
			return fmt.Sprint(ComplexToFloat(v.Data)) + dimensionUnits[unit]
		}
		return fmt.Sprintf("dimension<%#x>", v.Data)
	case arsc.TypeFraction:
		suffix := "%"
		if v.Data>>complexUnitShift&complexUnitMask == ComplexUnitFractionParent {
			suffix = "%p"
		}
		return fmt.Sprint(ComplexToFloat(v.Data)*100) + suffix
	case arsc.TypeIntHex:
		return fmt.Sprintf("0x%08x", v.Data)
	case arsc.TypeIntBoolean:
		if v.Data != 0 {
			return "true"
		}
		return "false"
	case arsc.TypeIntDec:
		return fmt.Sprint(int32(v.Data))
	}
	if v.Type.IsColor() {
		return fmt.Sprintf("#%08x", v.Data)
	}
	return fmt.Sprintf("%s<%#x>", v.Type, v.Data)
}
