package res_test

import (
	"testing"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/res"
	"github.com/codeskyblue/androidres/reserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplex(t *testing.T) {
	assert.Equal(t, uint32(0xA01), res.FloatToComplex(10, res.ComplexUnitDip))
	for _, f := range []float32{0, 0.5, 1.5, -2, 100.25, 12345} {
		data := res.FloatToComplex(f, res.ComplexUnitPx)
		assert.InDelta(t, f, res.ComplexToFloat(data), 0.001, "%v", f)
	}

	ten := res.FloatToComplex(10, res.ComplexUnitDip)
	assert.Equal(t, float32(20), res.ComplexToDimension(ten, res.DisplayMetrics{DensityDpi: arsc.DensityXHigh}))
	assert.Equal(t, float32(10), res.ComplexToDimension(ten, res.DisplayMetrics{}))
	sp := res.FloatToComplex(10, res.ComplexUnitSp)
	assert.Equal(t, float32(30), res.ComplexToDimension(sp, res.DisplayMetrics{DensityDpi: arsc.DensityXHigh, FontScale: 1.5}))
	in := res.FloatToComplex(1, res.ComplexUnitIn)
	assert.Equal(t, float32(320), res.ComplexToDimension(in, res.DisplayMetrics{DensityDpi: arsc.DensityXHigh}))
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		parse func(string) (res.TypedValue, error)
		input string
		dt    arsc.DataType
		data  uint32
	}{
		{res.ParseColor, "#abc", arsc.TypeIntColorRGB4, 0xffaabbcc},
		{res.ParseColor, "#8abc", arsc.TypeIntColorARGB4, 0x88aabbcc},
		{res.ParseColor, "#123456", arsc.TypeIntColorRGB8, 0xff123456},
		{res.ParseColor, "#12345678", arsc.TypeIntColorARGB8, 0x12345678},
		{res.ParseBool, "True", arsc.TypeIntBoolean, 0xffffffff},
		{res.ParseBool, "false", arsc.TypeIntBoolean, 0},
		{res.ParseInt, "-5", arsc.TypeIntDec, 0xfffffffb},
		{res.ParseInt, "0xff", arsc.TypeIntHex, 0xff},
		{res.ParseFloat, "0.25", arsc.TypeFloat, 0x3e800000},
		{res.ParseDimension, "10dp", arsc.TypeDimension, 0xA01},
		{res.ParseDimension, "10dip", arsc.TypeDimension, 0xA01},
		{res.ParseDimension, "3px", arsc.TypeDimension, 0x300},
		{res.ParseDimension, "12sp", arsc.TypeDimension, 0xC02},
	}
	for _, v := range tests {
		tv, err := v.parse(v.input)
		require.NoError(t, err, v.input)
		assert.Equal(t, v.dt, tv.Type, v.input)
		assert.Equal(t, v.data, tv.Data, v.input)
		assert.Equal(t, res.NoCookie, tv.Cookie, v.input)
	}

	for _, v := range []struct {
		parse func(string) (res.TypedValue, error)
		input string
	}{
		{res.ParseColor, "abc"},
		{res.ParseColor, "#12345"},
		{res.ParseColor, "#xyz"},
		{res.ParseBool, "yes"},
		{res.ParseInt, "1.5"},
		{res.ParseInt, "0xg"},
		{res.ParseFloat, "one"},
		{res.ParseDimension, "10"},
		{res.ParseDimension, "dp"},
		{res.ParseDimension, "10furlongs"},
		{res.ParseFraction, "50"},
	} {
		_, err := v.parse(v.input)
		assert.True(t, reserr.Is(err, reserr.TypeMismatch), v.input)
	}
}

func TestParseFraction(t *testing.T) {
	v, err := res.ParseFraction("50%")
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeFraction, v.Type)
	assert.InDelta(t, 100, res.ComplexToFraction(v.Data, 200, 400), 0.001)
	assert.Equal(t, "50%", v.CoerceToString())

	v, err = res.ParseFraction("25%p")
	require.NoError(t, err)
	assert.InDelta(t, 100, res.ComplexToFraction(v.Data, 200, 400), 0.001)
	assert.Equal(t, "25%p", v.CoerceToString())
}

func TestParseEnumFlags(t *testing.T) {
	symbols := []res.Symbol{{Name: "bold", Value: 1}, {Name: "italic", Value: 2}}
	v, err := res.ParseEnum("italic", symbols)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeIntDec, v.Type)
	assert.Equal(t, uint32(2), v.Data)

	v, err = res.ParseFlags("bold | italic", symbols)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeIntHex, v.Type)
	assert.Equal(t, uint32(3), v.Data)

	_, err = res.ParseFlags("bold|", symbols)
	assert.Error(t, err)
}

func TestCoerceToString(t *testing.T) {
	for _, v := range []struct {
		value  res.TypedValue
		expect string
	}{
		{res.TypedValue{Type: arsc.TypeNull, Data: arsc.DataNullEmpty}, "@empty"},
		{res.TypedValue{Type: arsc.TypeNull}, ""},
		{res.TypedValue{Type: arsc.TypeReference}, "@null"},
		{res.TypedValue{Type: arsc.TypeReference, Data: 0x7f010000}, "@0x7f010000"},
		{res.TypedValue{Type: arsc.TypeAttribute, Data: 0x01010098}, "?0x01010098"},
		{res.TypedValue{Type: arsc.TypeString, String: "hi"}, "hi"},
		{res.TypedValue{Type: arsc.TypeDimension, Data: 0xA01}, "10dip"},
		{res.TypedValue{Type: arsc.TypeIntHex, Data: 0xff}, "0x000000ff"},
		{res.TypedValue{Type: arsc.TypeIntDec, Data: 0xffffffff}, "-1"},
		{res.TypedValue{Type: arsc.TypeIntBoolean, Data: 1}, "true"},
		{res.TypedValue{Type: arsc.TypeIntColorRGB8, Data: 0xffff0000}, "#ffff0000"},
		{res.TypedValue{Type: arsc.TypeFloat, Data: 0x3fc00000}, "1.5"},
	} {
		assert.Equal(t, v.expect, v.value.CoerceToString())
	}
}

func TestJavaChangingConfigurations(t *testing.T) {
	v := res.TypedValue{ChangingConfigurations: arsc.ConfigDensity | arsc.ConfigLocale}
	assert.Equal(t, uint32(0x1000|arsc.ConfigLocale), v.JavaChangingConfigurations())
}
