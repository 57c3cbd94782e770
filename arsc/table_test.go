package arsc_test

import (
	"encoding/binary"
	"testing"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/arsc/arsctest"
	"github.com/codeskyblue/androidres/reserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(configure func(tb *arsctest.Table, p *arsctest.Package)) []byte {
	tb := arsctest.NewTable()
	p := tb.Package(0x7f, "com.example.app")
	if configure != nil {
		configure(tb, p)
	}
	p.Set("string/greeting", "", tb.String("Hello"))
	p.Set("string/greeting", "fr", tb.String("Bonjour"))
	p.Set("string/greeting", "de", tb.String("Hallo"))
	p.Set("color/red", "", arsctest.Color(0xffff0000))
	p.Set("color/primary", "", arsctest.Ref(p.ResID("color/red")))
	p.Set("dimen/pad", "hdpi", arsctest.Value(arsc.TypeDimension, 0xA01))
	p.SetBag("style/Base", "", 0,
		arsctest.Item(0x01010098, arsctest.Ref(p.ResID("color/red"))))
	p.Public("string/greeting")
	return tb.Bytes()
}

func TestLoadTable(t *testing.T) {
	for _, v := range []struct {
		name   string
		option func(tb *arsctest.Table, p *arsctest.Package)
	}{
		{"dense", nil},
		{"utf16", func(tb *arsctest.Table, p *arsctest.Package) { tb.UTF16 = true }},
		{"sparse", func(tb *arsctest.Table, p *arsctest.Package) { p.Sparse = true }},
		{"offset16", func(tb *arsctest.Table, p *arsctest.Package) { p.Offset16 = true }},
	} {
		t.Run(v.name, func(t *testing.T) {
			table, err := arsc.LoadTable(sampleTable(v.option))
			require.NoError(t, err)
			require.Len(t, table.Packages(), 1)

			p := table.Packages()[0]
			assert.Equal(t, uint8(0x7f), p.ID)
			assert.Equal(t, "com.example.app", p.Name)

			id, ok := p.FindID("string", "greeting")
			require.True(t, ok)
			assert.Equal(t, arsc.ResId(0x7f010000), id)
			assert.Equal(t, "string", p.TypeName(id.Type()))

			types := p.Types(id.Type())
			require.Len(t, types, 3)
			assert.Equal(t, "fr", types[1].Config.String())
			e := types[1].Entry(id.Entry())
			require.NotNil(t, e)
			assert.Equal(t, "greeting", p.KeyName(e.Key))
			assert.Equal(t, arsc.TypeString, e.Value.DataType)
			s, ok := table.String(e.Value.Data)
			require.True(t, ok)
			assert.Equal(t, "Bonjour", s)

			flags := p.SpecFlags(id.Type(), id.Entry())
			assert.NotZero(t, flags&arsc.SpecPublic)
			assert.NotZero(t, flags&arsc.ConfigLocale)

			primary, ok := p.FindID("color", "primary")
			require.True(t, ok)
			e, _ = p.TypeGroup(primary.Type()).FirstEntry(primary.Entry())
			require.NotNil(t, e)
			assert.Equal(t, arsc.TypeReference, e.Value.DataType)
			assert.Equal(t, uint32(0x7f020000), e.Value.Data)

			style, ok := p.FindID("style", "Base")
			require.True(t, ok)
			e, _ = p.TypeGroup(style.Type()).FirstEntry(style.Entry())
			require.NotNil(t, e)
			assert.True(t, e.IsComplex())
			require.Len(t, e.Map, 1)
			assert.Equal(t, arsc.ResId(0x01010098), e.Map[0].Name)

			_, ok = p.FindID("string", "missing")
			assert.False(t, ok)
			_, ok = p.FindID("drawable", "greeting")
			assert.False(t, ok)

			assert.Equal(t, []string{"de", "fr"}, table.Locales())
		})
	}
}

func TestLoadTableLibrary(t *testing.T) {
	tb := arsctest.NewTable()
	p := tb.Package(0, "com.example.lib")
	p.Library(0x02, "com.example.lib")
	p.Set("string/name", "", tb.String("lib"))

	table, err := arsc.LoadTable(tb.Bytes())
	require.NoError(t, err)
	pkg := table.Packages()[0]
	assert.Equal(t, uint8(0), pkg.ID)
	assert.Equal(t, []arsc.Library{{ID: 0x02, Name: "com.example.lib"}}, pkg.Libraries)
}

func TestLoadTableMalformed(t *testing.T) {
	good := sampleTable(nil)

	tests := []struct {
		name string
		data func() []byte
	}{
		{"empty", func() []byte { return nil }},
		{"truncated", func() []byte { return good[:len(good)/2] }},
		{"header", func() []byte { return good[:6] }},
		{"root type", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint16(b, uint16(arsc.ResXMLChunkType))
			return b
		}},
		{"package count", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint32(b[8:], 2)
			return b
		}},
		{"size past end", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint32(b[4:], uint32(len(b)+4))
			return b
		}},
		{"small header", func() []byte {
			b := append([]byte(nil), good...)
			binary.LittleEndian.PutUint16(b[2:], 4)
			return b
		}},
	}
	for _, v := range tests {
		_, err := arsc.LoadTable(v.data())
		if !reserr.Is(err, reserr.MalformedTable) {
			t.Fatalf("Failed: %s - err:%v", v.name, err)
		}
	}
}

func TestStringPoolLongStrings(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a' + byte(i%26)
	}
	for _, utf16 := range []bool{false, true} {
		tb := arsctest.NewTable()
		tb.UTF16 = utf16
		p := tb.Package(0x7f, "com.example")
		p.Set("string/long", "", tb.String(string(long)))
		p.Set("string/unicode", "", tb.String("Grüße, 世界"))

		table, err := arsc.LoadTable(tb.Bytes())
		require.NoError(t, err)
		assert.Equal(t, !utf16, table.Strings().IsUTF8())
		s, _ := table.String(0)
		assert.Equal(t, string(long), s)
		s, _ = table.String(1)
		assert.Equal(t, "Grüße, 世界", s)
		idx, ok := table.Strings().IndexOf("Grüße, 世界")
		assert.True(t, ok)
		assert.Equal(t, uint32(1), idx)
	}
}
