package arsc

import (
	"bytes"
	"strings"

	"github.com/codeskyblue/androidres/reserr"
	"golang.org/x/text/language"
)

// packLanguageOrRegion stores a two letter code as is and a three letter
// code in the packed form with the high bit set.
func packLanguageOrRegion(s string, base byte) [2]byte {
	var out [2]byte
	switch len(s) {
	case 2:
		out[0], out[1] = s[0], s[1]
	case 3:
		first := (s[0] - base) & 0x7f
		second := (s[1] - base) & 0x7f
		third := (s[2] - base) & 0x7f
		out[0] = 0x80 | third<<2 | second>>3
		out[1] = second<<5 | first
	}
	return out
}

func unpackLanguageOrRegion(in [2]byte, base byte) string {
	if in[0]&0x80 != 0 {
		first := in[1] & 0x1f
		second := (in[1]&0xe0)>>5 + (in[0]&0x03)<<3
		third := (in[0] & 0x7c) >> 2
		return string([]byte{first + base, second + base, third + base})
	}
	if in[0] != 0 {
		return string(in[:])
	}
	return ""
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// LanguageString returns the language subtag, "" when unset.
func (c *Config) LanguageString() string { return unpackLanguageOrRegion(c.Language, 'a') }

// RegionString returns the region subtag, "" when unset.
func (c *Config) RegionString() string { return unpackLanguageOrRegion(c.Country, '0') }

// ScriptString returns the script subtag, "" when unset.
func (c *Config) ScriptString() string { return cstring(c.LocaleScript[:]) }

// VariantString returns the variant subtag, "" when unset.
func (c *Config) VariantString() string { return cstring(c.LocaleVariant[:]) }

// SetLanguage stores a two or three letter language code.
func (c *Config) SetLanguage(lang string) {
	c.Language = packLanguageOrRegion(strings.ToLower(lang), 'a')
}

// SetRegion stores a two letter or three digit region code.
func (c *Config) SetRegion(region string) {
	c.Country = packLanguageOrRegion(strings.ToUpper(region), '0')
}

// SetLocale replaces the locale part of c with a BCP-47 tag such as
// "fr-FR" or "sr-Latn-RS". An empty tag clears the locale. When the tag
// carries no script one is derived from the language and region.
func (c *Config) SetLocale(tag string) error {
	c.Language, c.Country = [2]byte{}, [2]byte{}
	c.LocaleScript, c.LocaleVariant = [4]byte{}, [8]byte{}
	c.LocaleScriptWasComputed = false
	if tag == "" {
		return nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return reserr.Errorf(reserr.TypeMismatch, "locale %q: %v", tag, err)
	}
	base, script, region := t.Raw()
	if base.String() != "und" {
		c.SetLanguage(base.String())
	}
	if region.String() != "ZZ" {
		c.SetRegion(region.String())
	}
	if script.String() != "Zzzz" {
		copy(c.LocaleScript[:], script.String())
	} else {
		c.computeScript()
	}
	if vs := t.Variants(); len(vs) > 0 {
		copy(c.LocaleVariant[:], strings.ToLower(vs[0].String()))
	}
	return nil
}

// computeScript fills in the likely script of the language and region.
func (c *Config) computeScript() {
	lang := c.LanguageString()
	if lang == "" {
		return
	}
	s := lang
	if r := c.RegionString(); r != "" {
		s += "-" + r
	}
	t, err := language.Parse(s)
	if err != nil {
		return
	}
	script, conf := t.Script()
	if conf == language.No || script.String() == "Zzzz" {
		return
	}
	copy(c.LocaleScript[:], script.String())
	c.LocaleScriptWasComputed = true
}

// Locale returns the BCP-47 form of the locale part of c, "" when unset.
// A computed script is left out.
func (c *Config) Locale() string {
	var parts []string
	lang := c.LanguageString()
	if lang == "" {
		lang = "und"
	}
	parts = append(parts, lang)
	if s := c.ScriptString(); s != "" && !c.LocaleScriptWasComputed {
		parts = append(parts, s)
	}
	if r := c.RegionString(); r != "" {
		parts = append(parts, r)
	}
	if v := c.VariantString(); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 1 && parts[0] == "und" {
		return ""
	}
	return strings.Join(parts, "-")
}

var (
	tagalog  = [2]byte{'t', 'l'}
	filipino = packLanguageOrRegion("fil", 'a')
	english  = [2]byte{'e', 'n'}
	usRegion = [2]byte{'U', 'S'}
)

func langsAreEquivalent(a, b [2]byte) bool {
	return a == b ||
		(a == tagalog && b == filipino) ||
		(a == filipino && b == tagalog)
}

// scriptFor returns the stored script or, failing that, a computed one.
func (c *Config) scriptFor() [4]byte {
	if c.LocaleScript[0] != 0 || c.LocaleScriptWasComputed {
		return c.LocaleScript
	}
	tmp := Config{Language: c.Language, Country: c.Country}
	tmp.computeScript()
	return tmp.LocaleScript
}

func (c *Config) matchLocale(settings *Config) bool {
	if !langsAreEquivalent(c.Language, settings.Language) {
		return false
	}
	countriesMustMatch := false
	var script [4]byte
	if settings.LocaleScript[0] == 0 {
		countriesMustMatch = true
	} else {
		script = c.scriptFor()
		if script[0] == 0 {
			countriesMustMatch = true
		}
	}
	if countriesMustMatch {
		if c.Country[0] != 0 && c.Country != settings.Country {
			return false
		}
	} else if script != settings.LocaleScript {
		return false
	}
	return true
}

// compareRegions ranks region a against b for a request: the requested
// region itself first, then no region at all, then anything else.
func compareRegions(a, b, requested [2]byte) int {
	if a == b {
		return 0
	}
	rank := func(r [2]byte) int {
		switch {
		case r == requested:
			return 2
		case r[0] == 0:
			return 1
		}
		return 0
	}
	return rank(a) - rank(b)
}

func (c *Config) isLocaleBetterThan(o *Config, r *Config) bool {
	if !r.locale() {
		return false
	}
	if !c.locale() && !o.locale() && c.LocaleScript[0] == 0 && o.LocaleScript[0] == 0 {
		return false
	}
	if !langsAreEquivalent(c.Language, o.Language) {
		// only one of them has a language; for US English the
		// unqualified resources are where en-US traditionally lives
		if r.Language == english && r.Country == usRegion {
			if c.Language[0] != 0 {
				return c.Country[0] == 0 || c.Country == usRegion
			}
			return !(o.Country[0] == 0 || o.Country == usRegion)
		}
		return c.Language[0] != 0
	}
	if d := compareRegions(c.Country, o.Country, r.Country); d != 0 {
		return d > 0
	}
	mine := c.LocaleVariant == r.LocaleVariant
	other := o.LocaleVariant == r.LocaleVariant
	if mine != other {
		return mine
	}
	return c.Language == r.Language && o.Language != r.Language
}

// localeSpecificity returns >0 when c's locale is more specific than o's.
// Variants weigh more than explicit scripts.
func (c *Config) localeSpecificity(o *Config) int {
	if c.locale() || o.locale() {
		if c.Language[0] != o.Language[0] {
			if c.Language[0] == 0 {
				return -1
			}
			if o.Language[0] == 0 {
				return 1
			}
		}
		if c.Country[0] != o.Country[0] {
			if c.Country[0] == 0 {
				return -1
			}
			if o.Country[0] == 0 {
				return 1
			}
		}
	}
	score := func(x *Config) int {
		s := 0
		if x.LocaleScript[0] != 0 && !x.LocaleScriptWasComputed {
			s++
		}
		if x.LocaleVariant[0] != 0 {
			s += 2
		}
		return s
	}
	return score(c) - score(o)
}

func (c *Config) compareLocales(o *Config) int {
	if d := bytes.Compare(append(c.Language[:2:2], c.Country[:]...), append(o.Language[:2:2], o.Country[:]...)); d != 0 {
		return d
	}
	if d := bytes.Compare(c.LocaleScript[:], o.LocaleScript[:]); d != 0 {
		return d
	}
	return bytes.Compare(c.LocaleVariant[:], o.LocaleVariant[:])
}
