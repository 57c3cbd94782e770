package res

import (
	"sort"
	"sync"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
)

type themeEntry struct {
	value  TypedValue
	cookie Cookie
}

// Theme is a set of attribute values built by applying styles on top of
// each other.
type Theme struct {
	am *AssetManager

	mu       sync.RWMutex
	entries  map[arsc.ResId]themeEntry
	changing uint32
}

// NewTheme returns an empty theme bound to am.
func (am *AssetManager) NewTheme() *Theme {
	return &Theme{am: am, entries: make(map[arsc.ResId]themeEntry)}
}

// AssetManager returns the asset manager the theme reads styles from.
func (t *Theme) AssetManager() *AssetManager {
	return t.am
}

// ApplyStyle copies the attributes of the style resid into the theme.
// Without force, attributes that already have a defined value are kept.
func (t *Theme) ApplyStyle(resid arsc.ResId, force bool) error {
	t.am.mu.RLock()
	defer t.am.mu.RUnlock()
	b, err := t.am.bag(resid, nil)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range b.Entries {
		if !e.Key.IsValid() {
			continue
		}
		if old, ok := t.entries[e.Key]; ok && !force && !old.value.IsNull() {
			continue
		}
		t.entries[e.Key] = themeEntry{value: e.Value, cookie: e.Cookie}
	}
	t.changing |= b.ChangingConfigurations
	return nil
}

// GetAttribute returns the value the theme holds for attr, following
// ?attr values through the theme. The value is not reference resolved.
// A missing or undefined attribute is a NotFound error.
func (t *Theme) GetAttribute(attr arsc.ResId) (TypedValue, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.attribute(attr)
}

func (t *Theme) attribute(attr arsc.ResId) (TypedValue, error) {
	visited := map[arsc.ResId]bool{}
	for {
		if visited[attr] {
			return nullValue(), reserr.Errorf(reserr.CircularReference,
				"theme attribute %s refers back to itself", attr)
		}
		visited[attr] = true
		e, ok := t.entries[attr]
		if !ok || e.value.IsNull() {
			return nullValue(), reserr.Errorf(reserr.NotFound, "theme has no value for %s", attr)
		}
		if e.value.Type == arsc.TypeAttribute {
			attr = arsc.ResId(e.value.Data)
			continue
		}
		v := e.value
		v.ChangingConfigurations |= t.changing
		return v, nil
	}
}

// ResolveAttributeReference looks v up in the theme if it is an
// attribute reference and resolves the result through the asset manager.
func (t *Theme) ResolveAttributeReference(v TypedValue) (TypedValue, error) {
	t.am.mu.RLock()
	defer t.am.mu.RUnlock()
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolveAttribute(v)
}

func (t *Theme) resolveAttribute(v TypedValue) (TypedValue, error) {
	if v.Type == arsc.TypeAttribute {
		var err error
		if v, err = t.attribute(arsc.ResId(v.Data)); err != nil {
			return nullValue(), err
		}
	}
	cfg := t.am.config
	return t.am.resolve(v, &cfg, map[arsc.ResId]bool{})
}

// SetTo makes t a copy of src. Both themes must belong to the same asset
// manager.
func (t *Theme) SetTo(src *Theme) error {
	if src.am != t.am {
		return reserr.New(reserr.InvalidHandle, "themes belong to different asset managers")
	}
	if src == t {
		return nil
	}
	src.mu.RLock()
	entries := make(map[arsc.ResId]themeEntry, len(src.entries))
	for k, v := range src.entries {
		entries[k] = v
	}
	changing := src.changing
	src.mu.RUnlock()

	t.mu.Lock()
	t.entries, t.changing = entries, changing
	t.mu.Unlock()
	return nil
}

// Clear removes every attribute.
func (t *Theme) Clear() {
	t.mu.Lock()
	t.entries = make(map[arsc.ResId]themeEntry)
	t.changing = 0
	t.mu.Unlock()
}

// ChangingConfigurations returns the configuration axes any applied
// style depends on.
func (t *Theme) ChangingConfigurations() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.changing
}

// Keys returns the attributes the theme defines, sorted.
func (t *Theme) Keys() []arsc.ResId {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]arsc.ResId, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
