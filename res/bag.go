package res

import (
	"sort"
	"strings"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
)

// BagEntry is one key of a resolved bag.
type BagEntry struct {
	Key arsc.ResId
	// Value is the value as stored, dynamic references remapped.
	Value TypedValue
	// Resolved is Value with references followed.
	Resolved TypedValue
	Cookie   Cookie
}

// ResolvedBag is a bag merged with all of its parents.
type ResolvedBag struct {
	ID     arsc.ResId
	Parent arsc.ResId
	// Entries are sorted by key.
	Entries                []BagEntry
	ChangingConfigurations uint32
}

// Find returns the entry for key.
func (b *ResolvedBag) Find(key arsc.ResId) (*BagEntry, bool) {
	i := sort.Search(len(b.Entries), func(i int) bool { return b.Entries[i].Key >= key })
	if i < len(b.Entries) && b.Entries[i].Key == key {
		return &b.Entries[i], true
	}
	return nil, false
}

// GetBag returns the bag id, with its parent chain merged in. Keys of
// the child win over those of its parents. The result is the caller's
// own copy.
func (am *AssetManager) GetBag(id arsc.ResId) (*ResolvedBag, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	b, err := am.bag(id, nil)
	if err != nil {
		return nil, err
	}
	return b.clone(), nil
}

func (b *ResolvedBag) clone() *ResolvedBag {
	c := *b
	c.Entries = append([]BagEntry(nil), b.Entries...)
	return &c
}

func (am *AssetManager) bag(id arsc.ResId, chain []arsc.ResId) (*ResolvedBag, error) {
	am.cacheMu.Lock()
	cached, ok := am.bags[id]
	am.cacheMu.Unlock()
	if ok {
		return cached, nil
	}

	for _, c := range chain {
		if c == id {
			names := make([]string, 0, len(chain)+1)
			for _, c := range chain {
				names = append(names, c.String())
			}
			names = append(names, id.String())
			return nil, reserr.Errorf(reserr.CircularReference,
				"circular style parent: %s", strings.Join(names, " -> "))
		}
	}

	cfg := am.config
	r, err := am.findEntry(id, &cfg)
	if err != nil {
		return nil, err
	}
	if !r.entry.IsComplex() {
		return nil, reserr.Errorf(reserr.TypeMismatch, "resource %s is not a bag", id)
	}

	b := &ResolvedBag{
		ID:                     id,
		Parent:                 r.pkg.remap(r.entry.Parent),
		ChangingConfigurations: r.flags &^ (arsc.SpecPublic | arsc.SpecStagedAPI),
	}
	merged := make(map[arsc.ResId]BagEntry)
	if b.Parent != 0 {
		parent, err := am.bag(b.Parent, append(chain, id))
		switch {
		case err == nil:
			for _, e := range parent.Entries {
				merged[e.Key] = e
			}
			b.ChangingConfigurations |= parent.ChangingConfigurations
		case reserr.Is(err, reserr.NotFound):
			if err := am.soft(reserr.Errorf(reserr.Unresolvable,
				"bag %s: parent %s: %v", id, b.Parent, err)); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	for _, item := range r.entry.Map {
		v := r.typed(item.Value, id)
		resolved, err := am.resolve(v, &cfg, map[arsc.ResId]bool{})
		if err != nil {
			return nil, err
		}
		b.ChangingConfigurations |= resolved.ChangingConfigurations
		key := r.pkg.remap(item.Name)
		merged[key] = BagEntry{Key: key, Value: v, Resolved: resolved, Cookie: r.cookie}
	}

	b.Entries = make([]BagEntry, 0, len(merged))
	for _, e := range merged {
		b.Entries = append(b.Entries, e)
	}
	sort.Slice(b.Entries, func(i, j int) bool { return b.Entries[i].Key < b.Entries[j].Key })

	am.cacheMu.Lock()
	am.bags[id] = b
	am.cacheMu.Unlock()
	return b, nil
}

// GetResourceArray returns the resolved items of an array resource in
// index order.
func (am *AssetManager) GetResourceArray(id arsc.ResId) ([]TypedValue, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.array(id)
}

func (am *AssetManager) array(id arsc.ResId) ([]TypedValue, error) {
	b, err := am.bag(id, nil)
	if err != nil {
		return nil, err
	}
	var ret []TypedValue
	for _, e := range b.Entries {
		i := arsc.ArrayIndex(e.Key)
		if i < 0 {
			continue
		}
		for len(ret) <= i {
			ret = append(ret, nullValue())
		}
		ret[i] = e.Resolved
	}
	return ret, nil
}

// GetResourceStringArray returns an array resource as strings. Items
// that are not strings are coerced; undefined items are "".
func (am *AssetManager) GetResourceStringArray(id arsc.ResId) ([]string, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	values, err := am.array(id)
	if err != nil {
		return nil, err
	}
	ret := make([]string, len(values))
	for i, v := range values {
		if !v.IsNull() {
			ret[i] = v.CoerceToString()
		}
	}
	return ret, nil
}

// GetResourceIntArray returns an array resource of integers, booleans
// or colors.
func (am *AssetManager) GetResourceIntArray(id arsc.ResId) ([]int32, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	values, err := am.array(id)
	if err != nil {
		return nil, err
	}
	ret := make([]int32, len(values))
	for i, v := range values {
		if !v.Type.IsInt() {
			err := am.soft(reserr.Errorf(reserr.TypeMismatch,
				"array %s item %d is %s, not an integer", id, i, v.Type))
			if err != nil {
				return nil, err
			}
			continue
		}
		ret[i] = int32(v.Data)
	}
	return ret, nil
}

// GetStyleAttributes returns the attribute ids a style sets, including
// the inherited ones.
func (am *AssetManager) GetStyleAttributes(id arsc.ResId) ([]arsc.ResId, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	b, err := am.bag(id, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]arsc.ResId, 0, len(b.Entries))
	for _, e := range b.Entries {
		ret = append(ret, e.Key)
	}
	return ret, nil
}

// AttributeDef describes an attr resource.
type AttributeDef struct {
	ID     arsc.ResId
	Format arsc.Format
	Min    int32
	HasMin bool
	Max    int32
	HasMax bool
	// Symbols are the enum or flag values, by name.
	Symbols []Symbol
}

// GetAttributeDef reads the definition of the attribute attr.
func (am *AssetManager) GetAttributeDef(attr arsc.ResId) (*AttributeDef, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.attributeDef(attr)
}

func (am *AssetManager) attributeDef(attr arsc.ResId) (*AttributeDef, error) {
	b, err := am.bag(attr, nil)
	if err != nil {
		return nil, err
	}
	def := &AttributeDef{ID: attr, Format: arsc.FormatAny}
	for _, e := range b.Entries {
		switch e.Key {
		case arsc.AttrType:
			def.Format = arsc.Format(e.Value.Data)
		case arsc.AttrMin:
			def.Min, def.HasMin = int32(e.Value.Data), true
		case arsc.AttrMax:
			def.Max, def.HasMax = int32(e.Value.Data), true
		default:
			if !e.Key.IsValid() {
				continue
			}
			sym := Symbol{ID: e.Key, Value: e.Value.Data}
			if n, err := am.resourceName(e.Key); err == nil {
				sym.Name = n.Entry
			}
			def.Symbols = append(def.Symbols, sym)
		}
	}
	return def, nil
}
