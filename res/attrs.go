package res

import (
	"strconv"
	"strings"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
)

// AttributeSet is the attributes of one XML element.
type AttributeSet interface {
	Len() int
	// AttributeNameResource returns the attribute id of the i'th
	// attribute, 0 if it has none.
	AttributeNameResource(i int) arsc.ResId
	AttributeValue(i int) string
	// StyleAttribute returns the raw style="" value, "" when absent.
	StyleAttribute() string
}

// Attribute is one attribute of an Attributes set.
type Attribute struct {
	ID    arsc.ResId
	Value string
}

// Attributes is an AttributeSet held in memory.
type Attributes struct {
	Items []Attribute
	Style string
}

func (a *Attributes) Len() int                               { return len(a.Items) }
func (a *Attributes) AttributeNameResource(i int) arsc.ResId { return a.Items[i].ID }
func (a *Attributes) AttributeValue(i int) string            { return a.Items[i].Value }
func (a *Attributes) StyleAttribute() string                 { return a.Style }

// TypedArray holds the values obtained for a list of attributes.
type TypedArray struct {
	// Values has one value per requested attribute.
	Values []TypedValue
	// Indices lists the positions in Values that have a value.
	Indices []int
}

// HasValue reports whether the i'th attribute got a value.
func (a *TypedArray) HasValue(i int) bool {
	for _, idx := range a.Indices {
		if idx == i {
			return true
		}
	}
	return false
}

// ChangingConfigurations returns the union over all values.
func (a *TypedArray) ChangingConfigurations() uint32 {
	var c uint32
	for _, v := range a.Values {
		c |= v.ChangingConfigurations
	}
	return c
}

// AttrsToTypedArray computes the value of every attribute in attrIDs for
// an element. The first place holding a value wins: the element's own
// attributes, its style="" style, the style the theme names for
// defStyleAttr, the style defStyleRes and finally the theme. theme may be
// nil.
func (am *AssetManager) AttrsToTypedArray(attrs AttributeSet, attrIDs []arsc.ResId, defStyleAttr arsc.ResId, theme *Theme, defStyleRes arsc.ResId) (*TypedArray, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	if theme != nil {
		if theme.am != am {
			return nil, reserr.New(reserr.InvalidHandle, "theme belongs to a different asset manager")
		}
		theme.mu.RLock()
		defer theme.mu.RUnlock()
	}

	var styles []*ResolvedBag
	addStyle := func(what string, id arsc.ResId) error {
		if id == 0 {
			return nil
		}
		b, err := am.bag(id, nil)
		if err != nil {
			return am.soft(reserr.Errorf(reserr.KindOf(err), "%s %s: %v", what, id, err))
		}
		styles = append(styles, b)
		return nil
	}

	if attrs != nil && attrs.StyleAttribute() != "" {
		id, err := am.styleReference(attrs.StyleAttribute(), theme)
		if err != nil {
			if err := am.soft(err); err != nil {
				return nil, err
			}
		} else if err := addStyle("style", id); err != nil {
			return nil, err
		}
	}
	if defStyleAttr != 0 && theme != nil {
		if v, err := theme.attribute(defStyleAttr); err == nil {
			cfg := am.config
			v, err = am.resolve(v, &cfg, map[arsc.ResId]bool{})
			if err != nil {
				return nil, err
			}
			if v.Type == arsc.TypeReference {
				if err := addStyle("default style", arsc.ResId(v.Data)); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := addStyle("default style resource", defStyleRes); err != nil {
		return nil, err
	}

	ret := &TypedArray{Values: make([]TypedValue, len(attrIDs))}
	for i, attr := range attrIDs {
		v, err := am.attrValue(attr, attrs, styles, theme)
		if err != nil {
			return nil, err
		}
		ret.Values[i] = v
		if !v.IsNull() {
			ret.Indices = append(ret.Indices, i)
		}
	}
	return ret, nil
}

func (am *AssetManager) attrValue(attr arsc.ResId, attrs AttributeSet, styles []*ResolvedBag, theme *Theme) (TypedValue, error) {
	v, found := nullValue(), false
	if attrs != nil {
		for j := 0; j < attrs.Len(); j++ {
			if attrs.AttributeNameResource(j) != attr {
				continue
			}
			lit, err := am.convertLiteral(attr, attrs.AttributeValue(j))
			if err != nil {
				if err := am.soft(err); err != nil {
					return nullValue(), err
				}
				break
			}
			v, found = lit, true
			break
		}
	}
	for _, b := range styles {
		if found {
			break
		}
		if e, ok := b.Find(attr); ok && !e.Value.IsNull() {
			v, found = e.Value, true
		}
	}
	if !found && theme != nil {
		if tv, err := theme.attribute(attr); err == nil {
			v, found = tv, true
		} else if !reserr.Is(err, reserr.NotFound) {
			return nullValue(), err
		}
	}
	if !found {
		return nullValue(), nil
	}

	if v.Type == arsc.TypeAttribute {
		if theme == nil {
			return nullValue(), am.soft(reserr.Errorf(reserr.Unresolvable,
				"attribute %s: %s needs a theme", attr, v.CoerceToString()))
		}
		tv, err := theme.attribute(arsc.ResId(v.Data))
		if err != nil {
			if reserr.Is(err, reserr.NotFound) {
				return nullValue(), am.soft(reserr.Errorf(reserr.Unresolvable, "attribute %s: %v", attr, err))
			}
			return nullValue(), err
		}
		v = tv
	}
	cfg := am.config
	return am.resolve(v, &cfg, map[arsc.ResId]bool{})
}

// styleReference reads the id a style="" attribute names.
func (am *AssetManager) styleReference(s string, theme *Theme) (arsc.ResId, error) {
	v, err := am.parseReference(s, "style")
	if err != nil {
		return 0, err
	}
	if v.Type == arsc.TypeAttribute {
		if theme == nil {
			return 0, reserr.Errorf(reserr.Unresolvable, "style %q needs a theme", s)
		}
		if v, err = theme.attribute(arsc.ResId(v.Data)); err != nil {
			return 0, err
		}
		cfg := am.config
		if v, err = am.resolve(v, &cfg, map[arsc.ResId]bool{}); err != nil {
			return 0, err
		}
	}
	if v.Type != arsc.TypeReference {
		return 0, reserr.Errorf(reserr.TypeMismatch, "style %q is not a reference", s)
	}
	return arsc.ResId(v.Data), nil
}

// parseReference parses "@[package:]type/name", "@0xNNNNNNNN",
// "?[package:][type/]name" and "?0xNNNNNNNN".
func (am *AssetManager) parseReference(s, defType string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '@' && s[0] != '?') {
		return nullValue(), mismatch("reference", s)
	}
	v := TypedValue{Type: arsc.TypeReference, Cookie: NoCookie}
	if s[0] == '?' {
		v.Type, defType = arsc.TypeAttribute, "attr"
	}
	switch s {
	case "@null":
		return v, nil
	case "@empty":
		return emptyValue(), nil
	}
	if body := s[1:]; strings.HasPrefix(body, "0x") {
		n, err := strconv.ParseUint(body[2:], 16, 32)
		if err != nil {
			return nullValue(), mismatch("reference", s)
		}
		v.Data = uint32(n)
		return v, nil
	}
	id, err := am.resourceIdentifier(s, defType, "")
	if err != nil {
		return nullValue(), err
	}
	v.Data = uint32(id)
	return v, nil
}

// ConvertLiteral converts an XML attribute value for attr to a typed
// value, using the formats attr declares.
func (am *AssetManager) ConvertLiteral(attr arsc.ResId, literal string) (TypedValue, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.convertLiteral(attr, literal)
}

func (am *AssetManager) convertLiteral(attr arsc.ResId, literal string) (TypedValue, error) {
	t := strings.TrimSpace(literal)
	if strings.HasPrefix(t, "@") || strings.HasPrefix(t, "?") {
		return am.parseReference(t, "")
	}
	def, err := am.attributeDef(attr)
	if err != nil {
		return inferLiteral(literal), nil
	}

	f := def.Format
	if f&arsc.FormatColor != 0 {
		if v, err := ParseColor(t); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatBoolean != 0 {
		if v, err := ParseBool(t); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatInteger != 0 {
		if v, err := ParseInt(t); err == nil {
			n := int32(v.Data)
			if def.HasMin && n < def.Min || def.HasMax && n > def.Max {
				return nullValue(), reserr.Errorf(reserr.TypeMismatch,
					"%d is out of range for attribute %s", n, attr)
			}
			return v, nil
		}
	}
	if f&arsc.FormatFraction != 0 {
		if v, err := ParseFraction(t); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatDimension != 0 {
		if v, err := ParseDimension(t); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatFloat != 0 {
		if v, err := ParseFloat(t); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatEnum != 0 {
		if v, err := ParseEnum(t, def.Symbols); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatFlags != 0 {
		if v, err := ParseFlags(t, def.Symbols); err == nil {
			return v, nil
		}
	}
	if f&arsc.FormatString != 0 {
		return ParseString(literal), nil
	}
	return nullValue(), reserr.Errorf(reserr.TypeMismatch,
		"%q is not a valid %s for attribute %s", literal, f, attr)
}
