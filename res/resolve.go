package res

import (
	"strings"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
)

// GetResourceValue returns the value of id for the active configuration.
// A non-zero density overrides the configured one. With resolveRefs the
// stored value is followed through any reference chain; without it the
// stored value is returned as is, which may be a reference.
//
// A bag resolves to a reference to itself.
func (am *AssetManager) GetResourceValue(id arsc.ResId, density uint16, resolveRefs bool) (TypedValue, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	cfg := am.config
	if density != 0 {
		cfg.Density = density
	}
	return am.resourceValue(id, &cfg, resolveRefs)
}

func (am *AssetManager) resourceValue(id arsc.ResId, cfg *arsc.Config, resolveRefs bool) (TypedValue, error) {
	r, err := am.findEntry(id, cfg)
	if err != nil {
		return nullValue(), err
	}
	var v TypedValue
	if r.entry.IsComplex() {
		v = r.bagReference(id)
	} else {
		v = r.value(id)
	}
	if !resolveRefs {
		return v, nil
	}
	return am.resolve(v, cfg, map[arsc.ResId]bool{id: true})
}

func (r *entryResult) bagReference(id arsc.ResId) TypedValue {
	return TypedValue{
		Type:                   arsc.TypeReference,
		Data:                   uint32(id),
		ResourceID:             id,
		Density:                r.config.Density,
		ChangingConfigurations: r.flags &^ (arsc.SpecPublic | arsc.SpecStagedAPI),
		Cookie:                 r.cookie,
	}
}

// ResolveReference follows v through references until a literal, @null or
// a bag is reached.
func (am *AssetManager) ResolveReference(v TypedValue) (TypedValue, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	cfg := am.config
	return am.resolve(v, &cfg, map[arsc.ResId]bool{})
}

// resolve follows a reference chain. visited holds every id already on
// the chain; revisiting one is a CircularReference. A dangling link is an
// Unresolvable soft error and leaves the reference in place.
func (am *AssetManager) resolve(v TypedValue, cfg *arsc.Config, visited map[arsc.ResId]bool) (TypedValue, error) {
	maxDepth := am.MaxReferenceDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxReferenceDepth
	}
	var chain []string
	for hops := 0; v.Type == arsc.TypeReference; hops++ {
		ref := arsc.ResId(v.Data)
		if ref == 0 {
			// @null
			null := nullValue()
			null.ResourceID = v.ResourceID
			null.ChangingConfigurations = v.ChangingConfigurations
			return null, nil
		}
		chain = append(chain, ref.String())
		if hops >= maxDepth {
			return v, am.soft(reserr.Errorf(reserr.Unresolvable,
				"reference chain longer than %d: %s", maxDepth, strings.Join(chain, " -> ")))
		}
		if visited[ref] {
			return nullValue(), reserr.Errorf(reserr.CircularReference,
				"circular reference: %s", strings.Join(chain, " -> "))
		}
		visited[ref] = true

		r, err := am.findEntry(ref, cfg)
		if err != nil {
			return v, am.soft(reserr.Errorf(reserr.Unresolvable, "could not resolve %s: %v", ref, err))
		}
		var next TypedValue
		if r.entry.IsComplex() {
			next = r.bagReference(ref)
			next.ChangingConfigurations |= v.ChangingConfigurations
			return next, nil
		}
		next = r.value(ref)
		next.ChangingConfigurations |= v.ChangingConfigurations
		v = next
	}
	return v, nil
}
