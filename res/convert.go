package res

import (
	"math"
	"strconv"
	"strings"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
)

// Complex (dimension and fraction) data layout.
const (
	complexUnitShift     = 0
	complexUnitMask      = 0xf
	complexRadixShift    = 4
	complexRadixMask     = 0x3
	complexMantissaShift = 8
	complexMantissaMask  = 0xffffff

	complexRadix23p0 = 0
	complexRadix16p7 = 1
	complexRadix8p15 = 2
	complexRadix0p23 = 3
)

// Complex units.
const (
	ComplexUnitPx  = 0
	ComplexUnitDip = 1
	ComplexUnitSp  = 2
	ComplexUnitPt  = 3
	ComplexUnitIn  = 4
	ComplexUnitMm  = 5

	ComplexUnitFraction       = 0
	ComplexUnitFractionParent = 1
)

var radixMults = [4]float32{
	1.0 / (1 << 8),
	1.0 / (1 << 7) / (1 << 8),
	1.0 / (1 << 15) / (1 << 8),
	1.0 / (1 << 23) / (1 << 8),
}

// FloatToComplex packs f with unit into a complex data word, picking the
// radix that keeps the most precision.
func FloatToComplex(f float32, unit uint32) uint32 {
	neg := f < 0
	if neg {
		f = -f
	}
	bits := uint64(f*(1<<23) + 0.5)
	var radix, shift uint32
	switch {
	case bits&0x7fffff == 0:
		// no fraction, 23p0 reads easiest
		radix, shift = complexRadix23p0, 23
	case bits&0xffffffffff800000 == 0:
		radix, shift = complexRadix0p23, 0
	case bits&0xffffffff80000000 == 0:
		radix, shift = complexRadix8p15, 8
	case bits&0xffffff8000000000 == 0:
		radix, shift = complexRadix16p7, 16
	default:
		radix, shift = complexRadix23p0, 23
	}
	mantissa := uint32(bits>>shift) & complexMantissaMask
	if neg {
		mantissa = -mantissa & complexMantissaMask
	}
	return radix<<complexRadixShift | mantissa<<complexMantissaShift | unit&complexUnitMask
}

// ComplexToFloat returns the magnitude of a complex data word.
func ComplexToFloat(data uint32) float32 {
	mantissa := int32(data & (complexMantissaMask << complexMantissaShift))
	return float32(mantissa) * radixMults[data>>complexRadixShift&complexRadixMask]
}

// DisplayMetrics is what dimension conversion needs to know about a screen.
type DisplayMetrics struct {
	DensityDpi uint16
	FontScale  float32
}

// ComplexToDimension converts a dimension to pixels.
func ComplexToDimension(data uint32, m DisplayMetrics) float32 {
	v := ComplexToFloat(data)
	density := float32(m.DensityDpi) / arsc.DensityMedium
	if m.DensityDpi == 0 {
		density = 1
	}
	fontScale := m.FontScale
	if fontScale == 0 {
		fontScale = 1
	}
	xdpi := density * arsc.DensityMedium
	switch data >> complexUnitShift & complexUnitMask {
	case ComplexUnitDip:
		return v * density
	case ComplexUnitSp:
		return v * density * fontScale
	case ComplexUnitPt:
		return v * xdpi / 72
	case ComplexUnitIn:
		return v * xdpi
	case ComplexUnitMm:
		return v * xdpi / 25.4
	}
	return v
}

// ComplexToFraction converts a fraction against base (for %) or pbase
// (for %p).
func ComplexToFraction(data uint32, base, pbase float32) float32 {
	switch data >> complexUnitShift & complexUnitMask {
	case ComplexUnitFraction:
		return ComplexToFloat(data) * base
	case ComplexUnitFractionParent:
		return ComplexToFloat(data) * pbase
	}
	return 0
}

func mismatch(format, s string) error {
	return reserr.Errorf(reserr.TypeMismatch, "%q is not a valid %s", s, format)
}

// ParseColor parses #RGB, #ARGB, #RRGGBB and #AARRGGBB.
func ParseColor(s string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '#' {
		return TypedValue{}, mismatch("color", s)
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return TypedValue{}, mismatch("color", s)
	}
	c := uint32(n)
	v := TypedValue{Cookie: NoCookie}
	expand := func(nibble uint32) uint32 { return nibble<<4 | nibble }
	switch len(s) - 1 {
	case 3:
		v.Type = arsc.TypeIntColorRGB4
		v.Data = 0xff000000 | expand(c>>8&0xf)<<16 | expand(c>>4&0xf)<<8 | expand(c&0xf)
	case 4:
		v.Type = arsc.TypeIntColorARGB4
		v.Data = expand(c>>12&0xf)<<24 | expand(c>>8&0xf)<<16 | expand(c>>4&0xf)<<8 | expand(c&0xf)
	case 6:
		v.Type = arsc.TypeIntColorRGB8
		v.Data = 0xff000000 | c
	case 8:
		v.Type = arsc.TypeIntColorARGB8
		v.Data = c
	default:
		return TypedValue{}, mismatch("color", s)
	}
	return v, nil
}

// ParseBool accepts true and false in any case.
func ParseBool(s string) (TypedValue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return TypedValue{Type: arsc.TypeIntBoolean, Data: 0xffffffff, Cookie: NoCookie}, nil
	case "false":
		return TypedValue{Type: arsc.TypeIntBoolean, Data: 0, Cookie: NoCookie}, nil
	}
	return TypedValue{}, mismatch("boolean", s)
}

// ParseInt parses a decimal (INT_DEC) or 0x prefixed (INT_HEX) integer.
func ParseInt(s string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return TypedValue{}, mismatch("integer", s)
		}
		return TypedValue{Type: arsc.TypeIntHex, Data: uint32(n), Cookie: NoCookie}, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return TypedValue{}, mismatch("integer", s)
	}
	return TypedValue{Type: arsc.TypeIntDec, Data: uint32(int32(n)), Cookie: NoCookie}, nil
}

// ParseFloat parses a plain floating point number.
func ParseFloat(s string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return TypedValue{}, mismatch("float", s)
	}
	return TypedValue{Type: arsc.TypeFloat, Data: math.Float32bits(float32(f)), Cookie: NoCookie}, nil
}

var dimensionSuffixes = []struct {
	suffix string
	unit   uint32
}{
	{"px", ComplexUnitPx},
	{"dip", ComplexUnitDip},
	{"dp", ComplexUnitDip},
	{"sp", ComplexUnitSp},
	{"pt", ComplexUnitPt},
	{"in", ComplexUnitIn},
	{"mm", ComplexUnitMm},
}

func parseMagnitude(s, suffix string) (float32, bool) {
	num := strings.TrimSpace(strings.TrimSuffix(s, suffix))
	if num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 32)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return float32(f), true
}

// ParseDimension parses a number followed by px, dp, dip, sp, pt, in or mm.
func ParseDimension(s string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	for _, u := range dimensionSuffixes {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		f, ok := parseMagnitude(s, u.suffix)
		if !ok {
			break
		}
		return TypedValue{Type: arsc.TypeDimension, Data: FloatToComplex(f, u.unit), Cookie: NoCookie}, nil
	}
	return TypedValue{}, mismatch("dimension", s)
}

// ParseFraction parses a number followed by % or %p.
func ParseFraction(s string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	unit, suffix := uint32(ComplexUnitFraction), "%"
	if strings.HasSuffix(s, "%p") {
		unit, suffix = ComplexUnitFractionParent, "%p"
	} else if !strings.HasSuffix(s, "%") {
		return TypedValue{}, mismatch("fraction", s)
	}
	f, ok := parseMagnitude(s, suffix)
	if !ok {
		return TypedValue{}, mismatch("fraction", s)
	}
	return TypedValue{Type: arsc.TypeFraction, Data: FloatToComplex(f/100, unit), Cookie: NoCookie}, nil
}

// Symbol is one enum or flag value of an attribute.
type Symbol struct {
	Name  string
	ID    arsc.ResId
	Value uint32
}

// ParseEnum looks s up among the enum symbols.
func ParseEnum(s string, symbols []Symbol) (TypedValue, error) {
	s = strings.TrimSpace(s)
	for _, sym := range symbols {
		if sym.Name == s {
			return TypedValue{Type: arsc.TypeIntDec, Data: sym.Value, Cookie: NoCookie}, nil
		}
	}
	return TypedValue{}, mismatch("enum", s)
}

// ParseFlags ORs together the |-separated flag symbols of s.
func ParseFlags(s string, symbols []Symbol) (TypedValue, error) {
	var data uint32
	for _, tok := range strings.Split(s, "|") {
		tok = strings.TrimSpace(tok)
		found := false
		for _, sym := range symbols {
			if sym.Name == tok {
				data |= sym.Value
				found = true
				break
			}
		}
		if !found {
			return TypedValue{}, mismatch("flag", s)
		}
	}
	return TypedValue{Type: arsc.TypeIntHex, Data: data, Cookie: NoCookie}, nil
}

// ParseString wraps s as a string value.
func ParseString(s string) TypedValue {
	return TypedValue{Type: arsc.TypeString, String: s, Cookie: NoCookie}
}

// inferLiteral guesses the type of a literal from its lexical shape.
func inferLiteral(s string) TypedValue {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "#") {
		if v, err := ParseColor(t); err == nil {
			return v
		}
	}
	if v, err := ParseBool(t); err == nil {
		return v
	}
	if t != "" && (t[0] == '-' || t[0] == '+' || t[0] == '.' || (t[0] >= '0' && t[0] <= '9')) {
		for _, parse := range []func(string) (TypedValue, error){ParseInt, ParseFloat, ParseDimension, ParseFraction} {
			if v, err := parse(t); err == nil {
				return v
			}
		}
	}
	return ParseString(s)
}
