package arsc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codeskyblue/androidres/reserr"
)

type qualifier struct {
	name  string
	mask  uint8
	value uint8
	field func(c *Config) *uint8
}

func screenLayoutField(c *Config) *uint8  { return &c.ScreenLayout }
func screenLayout2Field(c *Config) *uint8 { return &c.ScreenLayout2 }
func colorModeField(c *Config) *uint8     { return &c.ColorMode }
func orientationField(c *Config) *uint8   { return &c.Orientation }
func uiModeField(c *Config) *uint8        { return &c.UIMode }
func touchscreenField(c *Config) *uint8   { return &c.Touchscreen }
func inputFlagsField(c *Config) *uint8    { return &c.InputFlags }
func keyboardField(c *Config) *uint8      { return &c.Keyboard }
func navigationField(c *Config) *uint8    { return &c.Navigation }

// Keyword qualifiers in the order they are printed. Numeric and locale
// qualifiers are handled separately.
var (
	layoutDirQualifiers = []qualifier{
		{"ldltr", MaskLayoutDir, LayoutDirLTR, screenLayoutField},
		{"ldrtl", MaskLayoutDir, LayoutDirRTL, screenLayoutField},
	}
	screenQualifiers = []qualifier{
		{"small", MaskScreenSize, ScreenSizeSmall, screenLayoutField},
		{"normal", MaskScreenSize, ScreenSizeNormal, screenLayoutField},
		{"large", MaskScreenSize, ScreenSizeLarge, screenLayoutField},
		{"xlarge", MaskScreenSize, ScreenSizeXLarge, screenLayoutField},
		{"long", MaskScreenLong, ScreenLongYes, screenLayoutField},
		{"notlong", MaskScreenLong, ScreenLongNo, screenLayoutField},
		{"round", MaskScreenRound, ScreenRoundYes, screenLayout2Field},
		{"notround", MaskScreenRound, ScreenRoundNo, screenLayout2Field},
		{"widecg", MaskWideColorGamut, WideColorGamutYes, colorModeField},
		{"nowidecg", MaskWideColorGamut, WideColorGamutNo, colorModeField},
		{"highdr", MaskHDR, HDRYes, colorModeField},
		{"lowdr", MaskHDR, HDRNo, colorModeField},
		{"port", 0xff, OrientationPort, orientationField},
		{"land", 0xff, OrientationLand, orientationField},
		{"square", 0xff, OrientationSquare, orientationField},
		{"desk", MaskUIModeType, UIModeTypeDesk, uiModeField},
		{"car", MaskUIModeType, UIModeTypeCar, uiModeField},
		{"television", MaskUIModeType, UIModeTypeTelevision, uiModeField},
		{"appliance", MaskUIModeType, UIModeTypeAppliance, uiModeField},
		{"watch", MaskUIModeType, UIModeTypeWatch, uiModeField},
		{"vrheadset", MaskUIModeType, UIModeTypeVRHeadset, uiModeField},
		{"night", MaskUIModeNight, UIModeNightYes, uiModeField},
		{"notnight", MaskUIModeNight, UIModeNightNo, uiModeField},
	}
	inputQualifiers = []qualifier{
		{"notouch", 0xff, TouchscreenNoTouch, touchscreenField},
		{"stylus", 0xff, TouchscreenStylus, touchscreenField},
		{"finger", 0xff, TouchscreenFinger, touchscreenField},
		{"keysexposed", MaskKeysHidden, KeysHiddenNo, inputFlagsField},
		{"keyshidden", MaskKeysHidden, KeysHiddenYes, inputFlagsField},
		{"keyssoft", MaskKeysHidden, KeysHiddenSoft, inputFlagsField},
		{"nokeys", 0xff, KeyboardNoKeys, keyboardField},
		{"qwerty", 0xff, KeyboardQwerty, keyboardField},
		{"12key", 0xff, Keyboard12Key, keyboardField},
		{"navexposed", MaskNavHidden, NavHiddenNo, inputFlagsField},
		{"navhidden", MaskNavHidden, NavHiddenYes, inputFlagsField},
		{"nonav", 0xff, NavigationNoNav, navigationField},
		{"dpad", 0xff, NavigationDPad, navigationField},
		{"trackball", 0xff, NavigationTrackball, navigationField},
		{"wheel", 0xff, NavigationWheel, navigationField},
	}
)

var densityNames = []struct {
	name    string
	density uint16
}{
	{"ldpi", DensityLow},
	{"mdpi", DensityMedium},
	{"tvdpi", DensityTV},
	{"hdpi", DensityHigh},
	{"xhdpi", DensityXHigh},
	{"xxhdpi", DensityXXHigh},
	{"xxxhdpi", DensityXXXHigh},
	{"anydpi", DensityAny},
	{"nodpi", DensityNone},
}

func applyKeyword(c *Config, tok string) bool {
	for _, set := range [][]qualifier{layoutDirQualifiers, screenQualifiers, inputQualifiers} {
		for _, q := range set {
			if q.name == tok {
				f := q.field(c)
				*f = *f&^q.mask | q.value
				return true
			}
		}
	}
	return false
}

func parseNumber(s, prefix, suffix string) (uint16, bool) {
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) || len(s) <= len(prefix)+len(suffix) {
		return 0, false
	}
	n, err := strconv.ParseUint(s[len(prefix):len(s)-len(suffix)], 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

func isLower(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// ParseQualifiers parses a resource directory qualifier string such as
// "fr-rFR-land-hdpi-v21" or "b+sr+Latn-night". "" and "default" give the
// default configuration.
func ParseQualifiers(s string) (Config, error) {
	var c Config
	if s == "" || s == "default" {
		return c, nil
	}
	toks := strings.Split(strings.ToLower(s), "-")
	orig := strings.Split(s, "-")
	for i, tok := range toks {
		if tok == "" {
			return c, badQualifier(s, orig[i])
		}
		if applyKeyword(&c, tok) || applyNumeric(&c, tok) {
			continue
		}
		switch {
		case strings.HasPrefix(tok, "b+"):
			if err := c.SetLocale(strings.Replace(orig[i][2:], "+", "-", -1)); err != nil {
				return c, badQualifier(s, orig[i])
			}
		case tok[0] == 'r' && len(tok) == 3 && c.Language[0] != 0 && c.Country[0] == 0:
			c.SetRegion(tok[1:])
			c.computeScript()
		case (len(tok) == 2 || len(tok) == 3) && isLower(tok) && c.Language[0] == 0:
			c.SetLanguage(tok)
			c.computeScript()
		default:
			return c, badQualifier(s, orig[i])
		}
	}
	return c, nil
}

func applyNumeric(c *Config, tok string) bool {
	if n, ok := parseNumber(tok, "mcc", ""); ok {
		c.Mcc = n
	} else if n, ok := parseNumber(tok, "mnc", ""); ok {
		c.Mnc = n
	} else if n, ok := parseNumber(tok, "sw", "dp"); ok {
		c.SmallestScreenWidthDp = n
	} else if n, ok := parseNumber(tok, "w", "dp"); ok {
		c.ScreenWidthDp = n
	} else if n, ok := parseNumber(tok, "h", "dp"); ok {
		c.ScreenHeightDp = n
	} else if n, ok := parseNumber(tok, "v", ""); ok {
		c.SDKVersion = n
	} else if strings.HasSuffix(tok, "dpi") {
		return parseDensity(c, tok)
	} else if parts := strings.SplitN(tok, "x", 2); len(parts) == 2 {
		w, err1 := strconv.ParseUint(parts[0], 10, 16)
		h, err2 := strconv.ParseUint(parts[1], 10, 16)
		if err1 != nil || err2 != nil {
			return false
		}
		c.ScreenWidth, c.ScreenHeight = uint16(w), uint16(h)
	} else {
		return false
	}
	return true
}

func parseDensity(c *Config, tok string) bool {
	for _, d := range densityNames {
		if d.name == tok {
			c.Density = d.density
			return true
		}
	}
	n, ok := parseNumber(tok, "", "dpi")
	if !ok {
		return false
	}
	c.Density = n
	return true
}

func badQualifier(s, tok string) error {
	return reserr.Errorf(reserr.TypeMismatch, "configuration %q: unknown qualifier %q", s, tok)
}

func appendKeywords(parts []string, c *Config, set []qualifier) []string {
	for _, q := range set {
		if v := *q.field(c) & q.mask; v != 0 && v == q.value {
			parts = append(parts, q.name)
		}
	}
	return parts
}

// String returns the qualifier string of c, "" for the default config.
func (c Config) String() string {
	var parts []string
	if c.Mcc != 0 {
		parts = append(parts, fmt.Sprintf("mcc%d", c.Mcc))
	}
	if c.Mnc != 0 {
		parts = append(parts, fmt.Sprintf("mnc%d", c.Mnc))
	}
	if c.locale() {
		if (c.ScriptString() != "" && !c.LocaleScriptWasComputed) || c.VariantString() != "" {
			parts = append(parts, "b+"+strings.Replace(c.Locale(), "-", "+", -1))
		} else {
			if l := c.LanguageString(); l != "" {
				parts = append(parts, l)
			}
			if r := c.RegionString(); r != "" {
				parts = append(parts, "r"+r)
			}
		}
	}
	parts = appendKeywords(parts, &c, layoutDirQualifiers)
	if c.SmallestScreenWidthDp != 0 {
		parts = append(parts, fmt.Sprintf("sw%ddp", c.SmallestScreenWidthDp))
	}
	if c.ScreenWidthDp != 0 {
		parts = append(parts, fmt.Sprintf("w%ddp", c.ScreenWidthDp))
	}
	if c.ScreenHeightDp != 0 {
		parts = append(parts, fmt.Sprintf("h%ddp", c.ScreenHeightDp))
	}
	parts = appendKeywords(parts, &c, screenQualifiers)
	if c.Density != 0 {
		name := ""
		for _, d := range densityNames {
			if d.density == c.Density {
				name = d.name
			}
		}
		if name == "" {
			name = fmt.Sprintf("%ddpi", c.Density)
		}
		parts = append(parts, name)
	}
	parts = appendKeywords(parts, &c, inputQualifiers)
	if c.ScreenWidth != 0 || c.ScreenHeight != 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", c.ScreenWidth, c.ScreenHeight))
	}
	if c.SDKVersion != 0 {
		parts = append(parts, fmt.Sprintf("v%d", c.SDKVersion))
	}
	return strings.Join(parts, "-")
}
