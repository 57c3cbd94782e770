package res

import "github.com/codeskyblue/androidres/arsc"

// BagCached reports whether the bag id is in am's cache.
func BagCached(am *AssetManager, id arsc.ResId) bool {
	am.cacheMu.Lock()
	defer am.cacheMu.Unlock()
	_, ok := am.bags[id]
	return ok
}
