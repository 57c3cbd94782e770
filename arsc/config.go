package arsc

import (
	"bytes"
	"encoding/binary"

	"github.com/codeskyblue/androidres/reserr"
)

// ConfigSize is the size of a serialized Config, size field included.
const ConfigSize = 64

// Orientation
const (
	OrientationAny    = 0x00
	OrientationPort   = 0x01
	OrientationLand   = 0x02
	OrientationSquare = 0x03
)

// Touchscreen
const (
	TouchscreenAny     = 0x00
	TouchscreenNoTouch = 0x01
	TouchscreenStylus  = 0x02
	TouchscreenFinger  = 0x03
)

// Density
const (
	DensityDefault = 0
	DensityLow     = 120
	DensityMedium  = 160
	DensityTV      = 213
	DensityHigh    = 240
	DensityXHigh   = 320
	DensityXXHigh  = 480
	DensityXXXHigh = 640
	DensityAny     = 0xfffe
	DensityNone    = 0xffff
)

// Keyboard
const (
	KeyboardAny    = 0x00
	KeyboardNoKeys = 0x01
	KeyboardQwerty = 0x02
	Keyboard12Key  = 0x03
)

// Navigation
const (
	NavigationAny       = 0x00
	NavigationNoNav     = 0x01
	NavigationDPad      = 0x02
	NavigationTrackball = 0x03
	NavigationWheel     = 0x04
)

// InputFlags bits
const (
	MaskKeysHidden = 0x03
	KeysHiddenAny  = 0x00
	KeysHiddenNo   = 0x01
	KeysHiddenYes  = 0x02
	KeysHiddenSoft = 0x03

	MaskNavHidden = 0x0c
	NavHiddenAny  = 0x00
	NavHiddenNo   = 0x04
	NavHiddenYes  = 0x08
)

// ScreenLayout bits
const (
	MaskScreenSize   = 0x0f
	ScreenSizeAny    = 0x00
	ScreenSizeSmall  = 0x01
	ScreenSizeNormal = 0x02
	ScreenSizeLarge  = 0x03
	ScreenSizeXLarge = 0x04

	MaskScreenLong = 0x30
	ScreenLongAny  = 0x00
	ScreenLongNo   = 0x10
	ScreenLongYes  = 0x20

	MaskLayoutDir = 0xC0
	LayoutDirAny  = 0x00
	LayoutDirLTR  = 0x40
	LayoutDirRTL  = 0x80
)

// ScreenLayout2 bits
const (
	MaskScreenRound = 0x03
	ScreenRoundAny  = 0x00
	ScreenRoundNo   = 0x01
	ScreenRoundYes  = 0x02
)

// ColorMode bits
const (
	MaskWideColorGamut = 0x03
	WideColorGamutAny  = 0x00
	WideColorGamutNo   = 0x01
	WideColorGamutYes  = 0x02

	MaskHDR = 0x0c
	HDRAny  = 0x00
	HDRNo   = 0x04
	HDRYes  = 0x08
)

// UIMode bits
const (
	MaskUIModeType       = 0x0f
	UIModeTypeAny        = 0x00
	UIModeTypeNormal     = 0x01
	UIModeTypeDesk       = 0x02
	UIModeTypeCar        = 0x03
	UIModeTypeTelevision = 0x04
	UIModeTypeAppliance  = 0x05
	UIModeTypeWatch      = 0x06
	UIModeTypeVRHeadset  = 0x07

	MaskUIModeNight = 0x30
	UIModeNightAny  = 0x00
	UIModeNightNo   = 0x10
	UIModeNightYes  = 0x20
)

// Configuration axes, as used in type spec flags and Diff.
const (
	ConfigMcc                uint32 = 0x0001
	ConfigMnc                uint32 = 0x0002
	ConfigLocale             uint32 = 0x0004
	ConfigTouchscreen        uint32 = 0x0008
	ConfigKeyboard           uint32 = 0x0010
	ConfigKeyboardHidden     uint32 = 0x0020
	ConfigNavigation         uint32 = 0x0040
	ConfigOrientation        uint32 = 0x0080
	ConfigDensity            uint32 = 0x0100
	ConfigScreenSize         uint32 = 0x0200
	ConfigVersion            uint32 = 0x0400
	ConfigScreenLayout       uint32 = 0x0800
	ConfigUIMode             uint32 = 0x1000
	ConfigSmallestScreenSize uint32 = 0x2000
	ConfigLayoutDir          uint32 = 0x4000
	ConfigScreenRound        uint32 = 0x8000
	ConfigColorMode          uint32 = 0x10000
)

// Config describes the device configuration a resource variant was built
// for, or the configuration a lookup is made with.
type Config struct {
	// imsi
	Mcc uint16
	Mnc uint16

	// locale, two letters or a packed three letter code
	Language [2]byte
	Country  [2]byte

	// screen type
	Orientation uint8
	Touchscreen uint8
	Density     uint16

	// input
	Keyboard   uint8
	Navigation uint8
	InputFlags uint8
	InputPad0  uint8

	// screen size
	ScreenWidth  uint16
	ScreenHeight uint16

	// version
	SDKVersion   uint16
	MinorVersion uint16

	// screen config
	ScreenLayout          uint8
	UIMode                uint8
	SmallestScreenWidthDp uint16

	// screen size dp
	ScreenWidthDp  uint16
	ScreenHeightDp uint16

	LocaleScript  [4]byte
	LocaleVariant [8]byte

	// screen config 2
	ScreenLayout2 uint8
	ColorMode     uint8

	LocaleScriptWasComputed bool
	LocaleNumberingSystem   [8]byte
}

// ReadConfig decodes a serialized config. Shorter (older) configs are zero
// filled; the returned size is the one stored in the data.
func ReadConfig(data []byte) (Config, int, error) {
	var c Config
	if len(data) < 4 {
		return c, 0, reserr.Errorf(reserr.MalformedTable, "config: %d bytes", len(data))
	}
	size := int(binary.LittleEndian.Uint32(data))
	if size < 4 || size > len(data) {
		return c, 0, reserr.Errorf(reserr.MalformedTable, "config: size %d with %d bytes available", size, len(data))
	}
	buf := make([]byte, ConfigSize)
	copy(buf, data[:size])

	r := newSliceReader(buf, "config")
	r.seek(4)
	c.Mcc = r.uint16()
	c.Mnc = r.uint16()
	copy(c.Language[:], r.bytes(2))
	copy(c.Country[:], r.bytes(2))
	c.Orientation = r.uint8()
	c.Touchscreen = r.uint8()
	c.Density = r.uint16()
	c.Keyboard = r.uint8()
	c.Navigation = r.uint8()
	c.InputFlags = r.uint8()
	c.InputPad0 = r.uint8()
	c.ScreenWidth = r.uint16()
	c.ScreenHeight = r.uint16()
	c.SDKVersion = r.uint16()
	c.MinorVersion = r.uint16()
	c.ScreenLayout = r.uint8()
	c.UIMode = r.uint8()
	c.SmallestScreenWidthDp = r.uint16()
	c.ScreenWidthDp = r.uint16()
	c.ScreenHeightDp = r.uint16()
	copy(c.LocaleScript[:], r.bytes(4))
	copy(c.LocaleVariant[:], r.bytes(8))
	c.ScreenLayout2 = r.uint8()
	c.ColorMode = r.uint8()
	r.uint16() // screenConfigPad2
	c.LocaleScriptWasComputed = r.uint8() != 0
	copy(c.LocaleNumberingSystem[:], r.bytes(8))
	return c, size, r.err
}

// MarshalBinary serializes c in the ConfigSize layout.
func (c Config) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	w := func(v interface{}) {
		binary.Write(buf, binary.LittleEndian, v)
	}
	w(uint32(ConfigSize))
	w(c.Mcc)
	w(c.Mnc)
	w(c.Language)
	w(c.Country)
	w(c.Orientation)
	w(c.Touchscreen)
	w(c.Density)
	w(c.Keyboard)
	w(c.Navigation)
	w(c.InputFlags)
	w(c.InputPad0)
	w(c.ScreenWidth)
	w(c.ScreenHeight)
	w(c.SDKVersion)
	w(c.MinorVersion)
	w(c.ScreenLayout)
	w(c.UIMode)
	w(c.SmallestScreenWidthDp)
	w(c.ScreenWidthDp)
	w(c.ScreenHeightDp)
	w(c.LocaleScript)
	w(c.LocaleVariant)
	w(c.ScreenLayout2)
	w(c.ColorMode)
	w(uint16(0))
	w(c.LocaleScriptWasComputed)
	w(c.LocaleNumberingSystem)
	for buf.Len() < ConfigSize {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

// Java-facing screenLayout round bits.
const (
	javaScreenLayoutRoundMask  = 0x300
	javaScreenLayoutRoundShift = 8
)

// SetJavaScreenLayout stores a Java Configuration.screenLayout value: the low
// byte goes to ScreenLayout and the round qualifier to ScreenLayout2.
func (c *Config) SetJavaScreenLayout(v uint32) {
	c.ScreenLayout = uint8(v & 0xff)
	round := uint8((v & javaScreenLayoutRoundMask) >> javaScreenLayoutRoundShift)
	c.ScreenLayout2 = c.ScreenLayout2&^MaskScreenRound | round&MaskScreenRound
}

// JavaScreenLayout recombines ScreenLayout and the round qualifier.
func (c *Config) JavaScreenLayout() uint32 {
	return uint32(c.ScreenLayout) | uint32(c.ScreenLayout2&MaskScreenRound)<<javaScreenLayoutRoundShift
}

var javaConfigBits = []struct {
	native, java uint32
}{
	{ConfigMcc, 0x0001},
	{ConfigMnc, 0x0002},
	{ConfigLocale, 0x0004},
	{ConfigTouchscreen, 0x0008},
	{ConfigKeyboard, 0x0010},
	{ConfigKeyboardHidden, 0x0020},
	{ConfigNavigation, 0x0040},
	{ConfigOrientation, 0x0080},
	{ConfigScreenLayout, 0x0100},
	{ConfigUIMode, 0x0200},
	{ConfigScreenSize, 0x0400},
	{ConfigSmallestScreenSize, 0x0800},
	{ConfigDensity, 0x1000},
	{ConfigLayoutDir, 0x2000},
	{ConfigColorMode, 0x4000},
}

// JavaConfigChanges maps native Config* bits to the ActivityInfo.CONFIG_*
// bits reported as a value's changing configurations. Bits without a Java
// counterpart (version, round) are dropped.
func JavaConfigChanges(native uint32) uint32 {
	var ret uint32
	for _, b := range javaConfigBits {
		if native&b.native != 0 {
			ret |= b.java
		}
	}
	return ret
}

func (c *Config) imsi() bool         { return c.Mcc != 0 || c.Mnc != 0 }
func (c *Config) locale() bool       { return c.Language != [2]byte{} || c.Country != [2]byte{} }
func (c *Config) screenType() bool   { return c.Orientation != 0 || c.Touchscreen != 0 || c.Density != 0 }
func (c *Config) input() bool        { return c.Keyboard != 0 || c.Navigation != 0 || c.InputFlags != 0 }
func (c *Config) screenSize() bool   { return c.ScreenWidth != 0 || c.ScreenHeight != 0 }
func (c *Config) version() bool      { return c.SDKVersion != 0 || c.MinorVersion != 0 }
func (c *Config) screenSizeDp() bool { return c.ScreenWidthDp != 0 || c.ScreenHeightDp != 0 }
func (c *Config) screenConfig() bool {
	return c.ScreenLayout != 0 || c.UIMode != 0 || c.SmallestScreenWidthDp != 0
}
func (c *Config) screenConfig2() bool { return c.ScreenLayout2 != 0 || c.ColorMode != 0 }

// Match reports whether a resource built for c can be used on a device
// configured as settings.
func (c *Config) Match(settings *Config) bool {
	if c.imsi() {
		if c.Mcc != 0 && c.Mcc != settings.Mcc {
			return false
		}
		if c.Mnc != 0 && c.Mnc != settings.Mnc {
			return false
		}
	}
	if c.locale() && !c.matchLocale(settings) {
		return false
	}
	if c.screenConfig() {
		layoutDir := c.ScreenLayout & MaskLayoutDir
		setLayoutDir := settings.ScreenLayout & MaskLayoutDir
		if layoutDir != 0 && layoutDir != setLayoutDir {
			return false
		}
		// screen sizes for larger screens than the setting do not match
		screenSize := c.ScreenLayout & MaskScreenSize
		setScreenSize := settings.ScreenLayout & MaskScreenSize
		if screenSize != 0 && screenSize > setScreenSize {
			return false
		}
		screenLong := c.ScreenLayout & MaskScreenLong
		setScreenLong := settings.ScreenLayout & MaskScreenLong
		if screenLong != 0 && screenLong != setScreenLong {
			return false
		}
		uiModeType := c.UIMode & MaskUIModeType
		setUIModeType := settings.UIMode & MaskUIModeType
		if uiModeType != 0 && uiModeType != setUIModeType {
			return false
		}
		uiModeNight := c.UIMode & MaskUIModeNight
		setUIModeNight := settings.UIMode & MaskUIModeNight
		if uiModeNight != 0 && uiModeNight != setUIModeNight {
			return false
		}
		if c.SmallestScreenWidthDp != 0 && c.SmallestScreenWidthDp > settings.SmallestScreenWidthDp {
			return false
		}
	}
	if c.screenConfig2() {
		screenRound := c.ScreenLayout2 & MaskScreenRound
		setScreenRound := settings.ScreenLayout2 & MaskScreenRound
		if screenRound != 0 && screenRound != setScreenRound {
			return false
		}
		hdr := c.ColorMode & MaskHDR
		setHDR := settings.ColorMode & MaskHDR
		if hdr != 0 && hdr != setHDR {
			return false
		}
		wcg := c.ColorMode & MaskWideColorGamut
		setWCG := settings.ColorMode & MaskWideColorGamut
		if wcg != 0 && wcg != setWCG {
			return false
		}
	}
	if c.screenSizeDp() {
		if c.ScreenWidthDp != 0 && c.ScreenWidthDp > settings.ScreenWidthDp {
			return false
		}
		if c.ScreenHeightDp != 0 && c.ScreenHeightDp > settings.ScreenHeightDp {
			return false
		}
	}
	if c.screenType() {
		if c.Orientation != 0 && c.Orientation != settings.Orientation {
			return false
		}
		// density always matches, it can be scaled
		if c.Touchscreen != 0 && c.Touchscreen != settings.Touchscreen {
			return false
		}
	}
	if c.input() {
		keysHidden := c.InputFlags & MaskKeysHidden
		setKeysHidden := settings.InputFlags & MaskKeysHidden
		if keysHidden != 0 && keysHidden != setKeysHidden {
			// keyshidden=no also matches a soft keyboard
			if keysHidden != KeysHiddenNo || setKeysHidden != KeysHiddenSoft {
				return false
			}
		}
		navHidden := c.InputFlags & MaskNavHidden
		setNavHidden := settings.InputFlags & MaskNavHidden
		if navHidden != 0 && navHidden != setNavHidden {
			return false
		}
		if c.Keyboard != 0 && c.Keyboard != settings.Keyboard {
			return false
		}
		if c.Navigation != 0 && c.Navigation != settings.Navigation {
			return false
		}
	}
	if c.screenSize() {
		if c.ScreenWidth != 0 && c.ScreenWidth > settings.ScreenWidth {
			return false
		}
		if c.ScreenHeight != 0 && c.ScreenHeight > settings.ScreenHeight {
			return false
		}
	}
	if c.version() {
		if c.SDKVersion != 0 && c.SDKVersion > settings.SDKVersion {
			return false
		}
		if c.MinorVersion != 0 && c.MinorVersion != settings.MinorVersion {
			return false
		}
	}
	return true
}

// IsMoreSpecificThan reports whether c qualifies more axes than o, checking
// axes in precedence order.
func (c *Config) IsMoreSpecificThan(o *Config) bool {
	if c.imsi() || o.imsi() {
		if c.Mcc != o.Mcc {
			if c.Mcc == 0 {
				return false
			}
			if o.Mcc == 0 {
				return true
			}
		}
		if c.Mnc != o.Mnc {
			if c.Mnc == 0 {
				return false
			}
			if o.Mnc == 0 {
				return true
			}
		}
	}
	if c.locale() || o.locale() {
		if d := c.localeSpecificity(o); d != 0 {
			return d > 0
		}
	}
	if c.ScreenLayout != 0 || o.ScreenLayout != 0 {
		if (c.ScreenLayout^o.ScreenLayout)&MaskLayoutDir != 0 {
			if c.ScreenLayout&MaskLayoutDir == 0 {
				return false
			}
			if o.ScreenLayout&MaskLayoutDir == 0 {
				return true
			}
		}
	}
	if c.SmallestScreenWidthDp != o.SmallestScreenWidthDp {
		if c.SmallestScreenWidthDp == 0 {
			return false
		}
		if o.SmallestScreenWidthDp == 0 {
			return true
		}
	}
	if c.screenSizeDp() || o.screenSizeDp() {
		if c.ScreenWidthDp != o.ScreenWidthDp {
			if c.ScreenWidthDp == 0 {
				return false
			}
			if o.ScreenWidthDp == 0 {
				return true
			}
		}
		if c.ScreenHeightDp != o.ScreenHeightDp {
			if c.ScreenHeightDp == 0 {
				return false
			}
			if o.ScreenHeightDp == 0 {
				return true
			}
		}
	}
	if c.ScreenLayout != 0 || o.ScreenLayout != 0 {
		if (c.ScreenLayout^o.ScreenLayout)&MaskScreenSize != 0 {
			if c.ScreenLayout&MaskScreenSize == 0 {
				return false
			}
			if o.ScreenLayout&MaskScreenSize == 0 {
				return true
			}
		}
		if (c.ScreenLayout^o.ScreenLayout)&MaskScreenLong != 0 {
			if c.ScreenLayout&MaskScreenLong == 0 {
				return false
			}
			if o.ScreenLayout&MaskScreenLong == 0 {
				return true
			}
		}
	}
	if (c.ScreenLayout2^o.ScreenLayout2)&MaskScreenRound != 0 {
		if c.ScreenLayout2&MaskScreenRound == 0 {
			return false
		}
		if o.ScreenLayout2&MaskScreenRound == 0 {
			return true
		}
	}
	if c.ColorMode != 0 || o.ColorMode != 0 {
		if (c.ColorMode^o.ColorMode)&MaskHDR != 0 {
			if c.ColorMode&MaskHDR == 0 {
				return false
			}
			if o.ColorMode&MaskHDR == 0 {
				return true
			}
		}
		if (c.ColorMode^o.ColorMode)&MaskWideColorGamut != 0 {
			if c.ColorMode&MaskWideColorGamut == 0 {
				return false
			}
			if o.ColorMode&MaskWideColorGamut == 0 {
				return true
			}
		}
	}
	if c.Orientation != o.Orientation {
		if c.Orientation == 0 {
			return false
		}
		if o.Orientation == 0 {
			return true
		}
	}
	if c.UIMode != 0 || o.UIMode != 0 {
		diff := c.UIMode ^ o.UIMode
		if diff&MaskUIModeType != 0 {
			if c.UIMode&MaskUIModeType == 0 {
				return false
			}
			if o.UIMode&MaskUIModeType == 0 {
				return true
			}
		}
		if diff&MaskUIModeNight != 0 {
			if c.UIMode&MaskUIModeNight == 0 {
				return false
			}
			if o.UIMode&MaskUIModeNight == 0 {
				return true
			}
		}
	}
	// density is never more specific, the default equals 160
	if c.Touchscreen != o.Touchscreen {
		if c.Touchscreen == 0 {
			return false
		}
		if o.Touchscreen == 0 {
			return true
		}
	}
	if c.input() || o.input() {
		if (c.InputFlags^o.InputFlags)&MaskKeysHidden != 0 {
			if c.InputFlags&MaskKeysHidden == 0 {
				return false
			}
			if o.InputFlags&MaskKeysHidden == 0 {
				return true
			}
		}
		if (c.InputFlags^o.InputFlags)&MaskNavHidden != 0 {
			if c.InputFlags&MaskNavHidden == 0 {
				return false
			}
			if o.InputFlags&MaskNavHidden == 0 {
				return true
			}
		}
		if c.Keyboard != o.Keyboard {
			if c.Keyboard == 0 {
				return false
			}
			if o.Keyboard == 0 {
				return true
			}
		}
		if c.Navigation != o.Navigation {
			if c.Navigation == 0 {
				return false
			}
			if o.Navigation == 0 {
				return true
			}
		}
	}
	if c.screenSize() || o.screenSize() {
		if c.ScreenWidth != o.ScreenWidth {
			if c.ScreenWidth == 0 {
				return false
			}
			if o.ScreenWidth == 0 {
				return true
			}
		}
		if c.ScreenHeight != o.ScreenHeight {
			if c.ScreenHeight == 0 {
				return false
			}
			if o.ScreenHeight == 0 {
				return true
			}
		}
	}
	if c.version() || o.version() {
		if c.SDKVersion != o.SDKVersion {
			if c.SDKVersion == 0 {
				return false
			}
			if o.SDKVersion == 0 {
				return true
			}
		}
		if c.MinorVersion != o.MinorVersion {
			if c.MinorVersion == 0 {
				return false
			}
			if o.MinorVersion == 0 {
				return true
			}
		}
	}
	return false
}

// IsBetterThan reports whether c is a better match than o for requested.
// Both c and o must already Match requested. With a nil request it falls
// back to IsMoreSpecificThan.
func (c *Config) IsBetterThan(o *Config, r *Config) bool {
	if r == nil {
		return c.IsMoreSpecificThan(o)
	}

	if c.imsi() || o.imsi() {
		if c.Mcc != o.Mcc && r.Mcc != 0 {
			return c.Mcc != 0
		}
		if c.Mnc != o.Mnc && r.Mnc != 0 {
			return c.Mnc != 0
		}
	}

	if c.isLocaleBetterThan(o, r) {
		return true
	} else if o.isLocaleBetterThan(c, r) {
		return false
	}

	if c.ScreenLayout != 0 || o.ScreenLayout != 0 {
		if (c.ScreenLayout^o.ScreenLayout)&MaskLayoutDir != 0 && r.ScreenLayout&MaskLayoutDir != 0 {
			return c.ScreenLayout&MaskLayoutDir > o.ScreenLayout&MaskLayoutDir
		}
	}

	// larger configs were filtered by Match, so the largest is closest
	if c.SmallestScreenWidthDp != o.SmallestScreenWidthDp {
		return c.SmallestScreenWidthDp > o.SmallestScreenWidthDp
	}

	if c.screenSizeDp() || o.screenSizeDp() {
		myDelta, otherDelta := 0, 0
		if r.ScreenWidthDp != 0 {
			myDelta += int(r.ScreenWidthDp) - int(c.ScreenWidthDp)
			otherDelta += int(r.ScreenWidthDp) - int(o.ScreenWidthDp)
		}
		if r.ScreenHeightDp != 0 {
			myDelta += int(r.ScreenHeightDp) - int(c.ScreenHeightDp)
			otherDelta += int(r.ScreenHeightDp) - int(o.ScreenHeightDp)
		}
		if myDelta != otherDelta {
			return myDelta < otherDelta
		}
	}

	if c.ScreenLayout != 0 || o.ScreenLayout != 0 {
		mySL := c.ScreenLayout & MaskScreenSize
		oSL := o.ScreenLayout & MaskScreenSize
		if mySL != oSL && r.ScreenLayout&MaskScreenSize != 0 {
			fixedMySL, fixedOSL := mySL, oSL
			if r.ScreenLayout&MaskScreenSize >= ScreenSizeNormal {
				if fixedMySL == 0 {
					fixedMySL = ScreenSizeNormal
				}
				if fixedOSL == 0 {
					fixedOSL = ScreenSizeNormal
				}
			}
			// same size after fixing: the explicit one wins
			if fixedMySL == fixedOSL {
				return mySL != 0
			}
			return fixedMySL > fixedOSL
		}
		if (c.ScreenLayout^o.ScreenLayout)&MaskScreenLong != 0 && r.ScreenLayout&MaskScreenLong != 0 {
			return c.ScreenLayout&MaskScreenLong != 0
		}
	}

	if (c.ScreenLayout2^o.ScreenLayout2)&MaskScreenRound != 0 && r.ScreenLayout2&MaskScreenRound != 0 {
		return c.ScreenLayout2&MaskScreenRound != 0
	}

	if c.ColorMode != 0 || o.ColorMode != 0 {
		if (c.ColorMode^o.ColorMode)&MaskWideColorGamut != 0 && r.ColorMode&MaskWideColorGamut != 0 {
			return c.ColorMode&MaskWideColorGamut != 0
		}
		if (c.ColorMode^o.ColorMode)&MaskHDR != 0 && r.ColorMode&MaskHDR != 0 {
			return c.ColorMode&MaskHDR != 0
		}
	}

	if c.Orientation != o.Orientation && r.Orientation != 0 {
		return c.Orientation != 0
	}

	if c.UIMode != 0 || o.UIMode != 0 {
		diff := c.UIMode ^ o.UIMode
		if diff&MaskUIModeType != 0 && r.UIMode&MaskUIModeType != 0 {
			return c.UIMode&MaskUIModeType != 0
		}
		if diff&MaskUIModeNight != 0 && r.UIMode&MaskUIModeNight != 0 {
			return c.UIMode&MaskUIModeNight != 0
		}
	}

	if c.screenType() || o.screenType() {
		if c.Density != o.Density {
			if better, decided := densityIsBetter(int(c.Density), int(o.Density), int(r.Density)); decided {
				return better
			}
		}
		if c.Touchscreen != o.Touchscreen && r.Touchscreen != 0 {
			return c.Touchscreen != 0
		}
	}

	if c.input() || o.input() {
		keysHidden := c.InputFlags & MaskKeysHidden
		oKeysHidden := o.InputFlags & MaskKeysHidden
		if keysHidden != oKeysHidden {
			reqKeysHidden := r.InputFlags & MaskKeysHidden
			if reqKeysHidden != 0 {
				switch {
				case keysHidden == 0:
					return false
				case oKeysHidden == 0:
					return true
				case reqKeysHidden == keysHidden:
					// an exact match beats keyshidden=no standing in for soft
					return true
				case reqKeysHidden == oKeysHidden:
					return false
				}
			}
		}
		navHidden := c.InputFlags & MaskNavHidden
		oNavHidden := o.InputFlags & MaskNavHidden
		if navHidden != oNavHidden && r.InputFlags&MaskNavHidden != 0 {
			if navHidden == 0 {
				return false
			}
			if oNavHidden == 0 {
				return true
			}
		}
		if c.Keyboard != o.Keyboard && r.Keyboard != 0 {
			return c.Keyboard != 0
		}
		if c.Navigation != o.Navigation && r.Navigation != 0 {
			return c.Navigation != 0
		}
	}

	if c.screenSize() || o.screenSize() {
		myDelta, otherDelta := 0, 0
		if r.ScreenWidth != 0 {
			myDelta += int(r.ScreenWidth) - int(c.ScreenWidth)
			otherDelta += int(r.ScreenWidth) - int(o.ScreenWidth)
		}
		if r.ScreenHeight != 0 {
			myDelta += int(r.ScreenHeight) - int(c.ScreenHeight)
			otherDelta += int(r.ScreenHeight) - int(o.ScreenHeight)
		}
		if myDelta != otherDelta {
			return myDelta < otherDelta
		}
	}

	if c.version() || o.version() {
		if c.SDKVersion != o.SDKVersion && r.SDKVersion != 0 {
			return c.SDKVersion > o.SDKVersion
		}
		if c.MinorVersion != o.MinorVersion && r.MinorVersion != 0 {
			return c.MinorVersion != 0
		}
	}
	return false
}

// densityIsBetter picks between two density buckets for a requested density.
// Scaling down is preferred over scaling up.
func densityIsBetter(mine, other, requested int) (better bool, decided bool) {
	if mine == 0 {
		mine = DensityMedium
	}
	if other == 0 {
		other = DensityMedium
	}
	// anydpi beats scaling any bucket
	if mine == DensityAny {
		return true, true
	}
	if other == DensityAny {
		return false, true
	}
	if requested == 0 || requested == DensityAny {
		requested = DensityMedium
	}
	if mine == other {
		return false, false
	}
	h, l := mine, other
	imBigger := true
	if l > h {
		h, l = l, h
		imBigger = false
	}
	if requested >= h {
		return imBigger, true
	}
	if l >= requested {
		return !imBigger, true
	}
	// scaling down is 2x better than up
	if (2*l-requested)*h > requested*requested {
		return !imBigger, true
	}
	return imBigger, true
}

// Diff returns the Config* bits of the axes on which c and o differ.
func (c *Config) Diff(o *Config) uint32 {
	var diffs uint32
	if c.Mcc != o.Mcc {
		diffs |= ConfigMcc
	}
	if c.Mnc != o.Mnc {
		diffs |= ConfigMnc
	}
	if c.Orientation != o.Orientation {
		diffs |= ConfigOrientation
	}
	if c.Density != o.Density {
		diffs |= ConfigDensity
	}
	if c.Touchscreen != o.Touchscreen {
		diffs |= ConfigTouchscreen
	}
	if (c.InputFlags^o.InputFlags)&(MaskKeysHidden|MaskNavHidden) != 0 {
		diffs |= ConfigKeyboardHidden
	}
	if c.Keyboard != o.Keyboard {
		diffs |= ConfigKeyboard
	}
	if c.Navigation != o.Navigation {
		diffs |= ConfigNavigation
	}
	if c.ScreenWidth != o.ScreenWidth || c.ScreenHeight != o.ScreenHeight {
		diffs |= ConfigScreenSize
	}
	if c.SDKVersion != o.SDKVersion || c.MinorVersion != o.MinorVersion {
		diffs |= ConfigVersion
	}
	if c.ScreenLayout&MaskLayoutDir != o.ScreenLayout&MaskLayoutDir {
		diffs |= ConfigLayoutDir
	}
	if c.ScreenLayout&^MaskLayoutDir != o.ScreenLayout&^MaskLayoutDir {
		diffs |= ConfigScreenLayout
	}
	if c.ScreenLayout2&MaskScreenRound != o.ScreenLayout2&MaskScreenRound {
		diffs |= ConfigScreenRound
	}
	if c.ColorMode&(MaskWideColorGamut|MaskHDR) != o.ColorMode&(MaskWideColorGamut|MaskHDR) {
		diffs |= ConfigColorMode
	}
	if c.UIMode != o.UIMode {
		diffs |= ConfigUIMode
	}
	if c.SmallestScreenWidthDp != o.SmallestScreenWidthDp {
		diffs |= ConfigSmallestScreenSize
	}
	if c.ScreenWidthDp != o.ScreenWidthDp || c.ScreenHeightDp != o.ScreenHeightDp {
		diffs |= ConfigScreenSize
	}
	if c.compareLocales(o) != 0 {
		diffs |= ConfigLocale
	}
	return diffs
}

// Compare orders configs field by field; 0 means equal.
func (c *Config) Compare(o *Config) int {
	a, _ := c.MarshalBinary()
	b, _ := o.MarshalBinary()
	return bytes.Compare(a, b)
}

// SelectBest returns the index of the candidate config that best matches
// target. Candidates that do not match are discarded; among equally good
// ones the first wins. ok is false when nothing matches.
func SelectBest(candidates []*Config, target *Config) (best int, ok bool) {
	best = -1
	for i, c := range candidates {
		if !c.Match(target) {
			continue
		}
		if best < 0 || c.IsBetterThan(candidates[best], target) {
			best = i
		}
	}
	return best, best >= 0
}
