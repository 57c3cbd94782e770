package arsc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, q string) *Config {
	t.Helper()
	c, err := ParseQualifiers(q)
	require.NoError(t, err, q)
	return &c
}

func TestParseQualifiersRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"fr",
		"fr-rFR",
		"mcc310-mnc4",
		"ldrtl",
		"sw600dp",
		"w720dp-h480dp",
		"large-long-round",
		"widecg-highdr",
		"land",
		"car-night",
		"xhdpi",
		"anydpi",
		"420dpi",
		"finger-keyssoft-qwerty-navhidden-dpad",
		"640x480",
		"v21",
		"de-rDE-port-xxhdpi-v28",
	}
	for _, q := range tests {
		c, err := ParseQualifiers(q)
		if err != nil {
			t.Fatalf("Failed: %q - err:%v", q, err)
		}
		if c.String() != q {
			t.Fatalf("Failed: %q - res:%q", q, c.String())
		}
	}
}

func TestParseQualifiersErrors(t *testing.T) {
	for _, q := range []string{"bogus", "fr-", "mcc31x", "vx1", "fr-de"} {
		_, err := ParseQualifiers(q)
		assert.Error(t, err, q)
	}
}

func TestParseQualifiersLocale(t *testing.T) {
	c := mustParse(t, "b+sr+Latn+RS")
	assert.Equal(t, "sr", c.LanguageString())
	assert.Equal(t, "Latn", c.ScriptString())
	assert.Equal(t, "RS", c.RegionString())
	assert.Equal(t, "sr-Latn-RS", c.Locale())
	assert.Equal(t, "b+sr+Latn+RS", c.String())

	c = mustParse(t, "fil-rPH")
	assert.Equal(t, "fil", c.LanguageString())
	assert.Equal(t, "fil-PH", c.Locale())
}

func TestPackedLanguage(t *testing.T) {
	var c Config
	c.SetLanguage("fil")
	assert.NotZero(t, c.Language[0]&0x80)
	assert.Equal(t, "fil", c.LanguageString())

	c.SetRegion("419")
	assert.Equal(t, "419", c.RegionString())
}

func TestSetLocale(t *testing.T) {
	var c Config
	require.NoError(t, c.SetLocale("fr-FR"))
	assert.Equal(t, "fr", c.LanguageString())
	assert.Equal(t, "FR", c.RegionString())
	assert.Equal(t, "Latn", c.ScriptString())
	assert.True(t, c.LocaleScriptWasComputed)
	assert.Equal(t, "fr-FR", c.Locale())

	require.NoError(t, c.SetLocale(""))
	assert.Equal(t, "", c.Locale())

	assert.Error(t, c.SetLocale("not a tag"))
}

func TestReadConfigShort(t *testing.T) {
	data := make([]byte, 28)
	binary.LittleEndian.PutUint32(data, 28)
	binary.LittleEndian.PutUint16(data[4:], 310)
	data[8], data[9] = 'e', 'n'
	binary.LittleEndian.PutUint16(data[24:], 21)

	c, size, err := ReadConfig(data)
	require.NoError(t, err)
	assert.Equal(t, 28, size)
	assert.Equal(t, uint16(310), c.Mcc)
	assert.Equal(t, "en", c.LanguageString())
	assert.Equal(t, uint16(21), c.SDKVersion)
	assert.Zero(t, c.ScreenWidthDp)

	_, _, err = ReadConfig(data[:20])
	assert.Error(t, err)
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	c := mustParse(t, "b+sr+Latn-sw600dp-night-xhdpi-v26")
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, ConfigSize)

	back, _, err := ReadConfig(data)
	require.NoError(t, err)
	assert.Equal(t, *c, back)
	assert.Equal(t, 0, c.Compare(&back))
}

func TestMatch(t *testing.T) {
	device := mustParse(t, "en-rUS-sw411dp-w411dp-h731dp-normal-notlong-port-notnight-xxhdpi-finger-v28")
	tests := []struct {
		qualifiers string
		match      bool
	}{
		{"", true},
		{"en", true},
		{"en-rUS", true},
		{"fr", false},
		{"land", false},
		{"port", true},
		{"sw600dp", false},
		{"sw320dp", true},
		{"large", false},
		{"small", true},
		{"v21", true},
		{"v29", false},
		{"night", false},
		{"hdpi", true},
		{"car", false},
		{"stylus", false},
	}
	for _, v := range tests {
		res := mustParse(t, v.qualifiers).Match(device)
		if res != v.match {
			t.Fatalf("Failed: %v - res:%v", v, res)
		}
	}
}

func TestMatchKeysHiddenSoft(t *testing.T) {
	device := mustParse(t, "keyssoft")
	assert.True(t, mustParse(t, "keysexposed").Match(device))
	assert.False(t, mustParse(t, "keyshidden").Match(device))
}

func TestMatchIsIdempotent(t *testing.T) {
	device := mustParse(t, "de-rDE-land-hdpi-v23")
	res := mustParse(t, "de-land")
	first := res.Match(device)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, res.Match(device))
	}
	assert.True(t, first)
}

func TestSelectBestLocale(t *testing.T) {
	candidates := []*Config{mustParse(t, ""), mustParse(t, "fr"), mustParse(t, "de")}

	var device Config
	require.NoError(t, device.SetLocale("de-DE"))
	best, ok := SelectBest(candidates, &device)
	require.True(t, ok)
	assert.Equal(t, 2, best)

	require.NoError(t, device.SetLocale("ja-JP"))
	best, ok = SelectBest(candidates, &device)
	require.True(t, ok)
	assert.Equal(t, 0, best)
}

func TestSelectBestRegion(t *testing.T) {
	candidates := []*Config{mustParse(t, "en-rUS"), mustParse(t, "en"), mustParse(t, "en-rGB")}
	var device Config
	require.NoError(t, device.SetLocale("en-GB"))
	best, _ := SelectBest(candidates, &device)
	assert.Equal(t, 2, best)

	require.NoError(t, device.SetLocale("en-AU"))
	best, _ = SelectBest(candidates, &device)
	assert.Equal(t, 1, best)
}

func TestSelectBestDensity(t *testing.T) {
	candidates := []*Config{mustParse(t, "mdpi"), mustParse(t, "hdpi"), mustParse(t, "xxhdpi")}
	device := mustParse(t, "xhdpi")
	best, ok := SelectBest(candidates, device)
	require.True(t, ok)
	assert.Equal(t, 2, best)

	candidates = append(candidates, mustParse(t, "anydpi"))
	best, _ = SelectBest(candidates, device)
	assert.Equal(t, 3, best)

	best, _ = SelectBest(candidates[:3], mustParse(t, "hdpi"))
	assert.Equal(t, 1, best)
}

func TestSelectBestPrecedence(t *testing.T) {
	// locale outranks orientation
	candidates := []*Config{mustParse(t, "land"), mustParse(t, "fr")}
	device := mustParse(t, "fr-rFR-land")
	best, _ := SelectBest(candidates, device)
	assert.Equal(t, 1, best)

	// smallest width picks the largest that still fits
	candidates = []*Config{mustParse(t, "sw320dp"), mustParse(t, "sw600dp"), mustParse(t, "sw720dp")}
	best, _ = SelectBest(candidates, mustParse(t, "sw650dp"))
	assert.Equal(t, 1, best)

	candidates = []*Config{mustParse(t, "v14"), mustParse(t, "v21"), mustParse(t, "v26")}
	best, _ = SelectBest(candidates, mustParse(t, "v23"))
	assert.Equal(t, 1, best)
}

func TestSelectBestTies(t *testing.T) {
	candidates := []*Config{mustParse(t, "land"), mustParse(t, "land")}
	best, ok := SelectBest(candidates, mustParse(t, "land"))
	require.True(t, ok)
	assert.Equal(t, 0, best)

	_, ok = SelectBest([]*Config{mustParse(t, "fr")}, mustParse(t, "de"))
	assert.False(t, ok)
}

func TestIsMoreSpecificThan(t *testing.T) {
	assert.True(t, mustParse(t, "fr").IsMoreSpecificThan(mustParse(t, "")))
	assert.False(t, mustParse(t, "").IsMoreSpecificThan(mustParse(t, "fr")))
	assert.True(t, mustParse(t, "fr-rFR").IsMoreSpecificThan(mustParse(t, "fr")))
	assert.True(t, mustParse(t, "mcc310").IsMoreSpecificThan(mustParse(t, "fr")))
	assert.False(t, mustParse(t, "hdpi").IsMoreSpecificThan(mustParse(t, "")))
	assert.True(t, mustParse(t, "land").IsBetterThan(mustParse(t, ""), nil))
}

func TestDiff(t *testing.T) {
	a := mustParse(t, "fr-port-hdpi")
	b := mustParse(t, "de-land-hdpi-ldrtl")
	assert.Equal(t, ConfigLocale|ConfigOrientation|ConfigLayoutDir, a.Diff(b))
	assert.Equal(t, uint32(0), a.Diff(a))
	assert.Equal(t, ConfigSmallestScreenSize|ConfigScreenSize, mustParse(t, "sw600dp-w600dp").Diff(mustParse(t, "")))
}

func TestJavaScreenLayout(t *testing.T) {
	var c Config
	c.SetJavaScreenLayout(0x200 | LayoutDirRTL | ScreenSizeLarge)
	assert.Equal(t, uint8(LayoutDirRTL|ScreenSizeLarge), c.ScreenLayout)
	assert.Equal(t, uint8(ScreenRoundYes), c.ScreenLayout2&MaskScreenRound)
	assert.Equal(t, uint32(0x200|LayoutDirRTL|ScreenSizeLarge), c.JavaScreenLayout())
}

func TestJavaConfigChanges(t *testing.T) {
	tests := []struct {
		native, java uint32
	}{
		{ConfigMcc | ConfigLocale, 0x0005},
		{ConfigDensity, 0x1000},
		{ConfigScreenSize, 0x0400},
		{ConfigScreenLayout, 0x0100},
		{ConfigUIMode, 0x0200},
		{ConfigSmallestScreenSize, 0x0800},
		{ConfigLayoutDir, 0x2000},
		{ConfigColorMode, 0x4000},
		{ConfigVersion | ConfigScreenRound, 0},
	}
	for _, v := range tests {
		if res := JavaConfigChanges(v.native); res != v.java {
			t.Fatalf("Failed: %#x - res:%#x", v.native, res)
		}
	}
}
