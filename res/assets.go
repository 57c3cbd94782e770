package res

import (
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
	"github.com/pkg/errors"
)

// DefaultMaxReferenceDepth bounds reference chains.
const DefaultMaxReferenceDepth = 20

const firstSharedLibraryID = 0x02

// AssetManager answers resource queries against a set of tables layered in
// the order they were added: a later table shadows an earlier one for the
// same resource id.
type AssetManager struct {
	// MaxReferenceDepth is the longest reference chain that is followed.
	MaxReferenceDepth int

	mu          sync.RWMutex
	tables      []*loadedTable
	packageIDs  map[string]uint8
	nextLibID   uint8
	config      arsc.Config
	strict      bool
	logger      *log.Logger
	packageName string

	cacheMu sync.Mutex
	bags    map[arsc.ResId]*ResolvedBag
}

type loadedTable struct {
	cookie   Cookie
	path     string
	table    *arsc.Table
	packages []*loadedPackage
}

type loadedPackage struct {
	pkg     *arsc.Package
	id      uint8
	table   *loadedTable
	dynamic map[uint8]uint8
}

// ResourceName is the package:type/entry name of a resource.
type ResourceName struct {
	Package string
	Type    string
	Entry   string
}

func (n ResourceName) String() string {
	if n.Package == "" {
		return n.Type + "/" + n.Entry
	}
	return n.Package + ":" + n.Type + "/" + n.Entry
}

// ParseResourceName splits "[@|?][package:]type/entry". Missing parts are
// taken from defType and defPackage.
func ParseResourceName(s, defType, defPackage string) (ResourceName, error) {
	n := ResourceName{Package: defPackage, Type: defType}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "@"), "?")
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "*")
	if i := strings.IndexByte(s, ':'); i >= 0 {
		n.Package, s = s[:i], s[i+1:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		n.Type, s = s[:i], s[i+1:]
	}
	n.Entry = s
	if n.Type == "" || n.Entry == "" {
		return n, reserr.Errorf(reserr.NotFound, "resource name %q is incomplete", s)
	}
	return n, nil
}

// NewAssetManager returns an asset manager without tables.
func NewAssetManager() *AssetManager {
	return &AssetManager{
		MaxReferenceDepth: DefaultMaxReferenceDepth,
		packageIDs:        make(map[string]uint8),
		nextLibID:         firstSharedLibraryID,
		logger:            log.New(os.Stderr, "", log.LstdFlags),
		bags:              make(map[arsc.ResId]*ResolvedBag),
	}
}

// Application is what the asset manager needs from the app under test.
type Application interface {
	PackageName() string
	// AssetPaths lists tables in priority order, lowest first.
	AssetPaths() []string
	Configuration() arsc.Config
}

// NewAssetManagerFor loads every asset path of app through open.
func NewAssetManagerFor(app Application, open func(path string) ([]byte, error)) (*AssetManager, error) {
	am := NewAssetManager()
	am.packageName = app.PackageName()
	for _, path := range app.AssetPaths() {
		data, err := open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		if _, err := am.AddTable(path, data); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}
	am.SetConfiguration(app.Configuration())
	return am, nil
}

// SetLogger replaces the logger soft errors are reported to.
func (am *AssetManager) SetLogger(l *log.Logger) {
	am.mu.Lock()
	am.logger = l
	am.mu.Unlock()
}

// SetStrict makes soft conditions (NotFound, Unresolvable, TypeMismatch)
// returned errors instead of log lines. Changing the mode drops cached
// bags.
func (am *AssetManager) SetStrict(strict bool) {
	am.mu.Lock()
	defer am.mu.Unlock()
	if am.strict == strict {
		return
	}
	am.strict = strict
	am.cacheMu.Lock()
	am.bags = make(map[arsc.ResId]*ResolvedBag)
	am.cacheMu.Unlock()
}

// SetPackageName sets the default package for name lookups.
func (am *AssetManager) SetPackageName(name string) {
	am.mu.Lock()
	am.packageName = name
	am.mu.Unlock()
}

// Configuration returns the active configuration.
func (am *AssetManager) Configuration() arsc.Config {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.config
}

// SetConfiguration replaces the active configuration. Cached bags that
// depend on an axis that changed are dropped.
func (am *AssetManager) SetConfiguration(c arsc.Config) {
	am.mu.Lock()
	defer am.mu.Unlock()
	diff := am.config.Diff(&c)
	am.config = c
	if diff == 0 {
		return
	}
	am.cacheMu.Lock()
	for id, bag := range am.bags {
		if bag.ChangingConfigurations&diff != 0 {
			delete(am.bags, id)
		}
	}
	am.cacheMu.Unlock()
}

// AddTable parses data and layers it above the tables already loaded.
func (am *AssetManager) AddTable(path string, data []byte) (Cookie, error) {
	t, err := arsc.LoadTable(data)
	if err != nil {
		return NoCookie, err
	}
	am.mu.Lock()
	defer am.mu.Unlock()

	lt := &loadedTable{cookie: Cookie(len(am.tables)), path: path, table: t}
	for _, p := range t.Packages() {
		id := p.ID
		if assigned, ok := am.packageIDs[p.Name]; ok {
			id = assigned
		} else if id == 0 {
			id = am.nextLibID
			am.nextLibID++
		}
		am.packageIDs[p.Name] = id
		lt.packages = append(lt.packages, &loadedPackage{pkg: p, id: id, table: lt})
	}
	am.tables = append(am.tables, lt)
	am.rebuildDynamicRefs()
	if am.packageName == "" {
		for _, lp := range lt.packages {
			if lp.id == arsc.AppPackageID {
				am.packageName = lp.pkg.Name
			}
		}
	}

	am.cacheMu.Lock()
	am.bags = make(map[arsc.ResId]*ResolvedBag)
	am.cacheMu.Unlock()
	return lt.cookie, nil
}

func (am *AssetManager) rebuildDynamicRefs() {
	for _, t := range am.tables {
		for _, lp := range t.packages {
			lp.dynamic = make(map[uint8]uint8)
			for _, lib := range lp.pkg.Libraries {
				if id, ok := am.packageIDs[lib.Name]; ok {
					lp.dynamic[lib.ID] = id
				}
			}
		}
	}
}

// remap translates an id as written in lp's table into a runtime id.
func (lp *loadedPackage) remap(id arsc.ResId) arsc.ResId {
	pkg := id.Package()
	switch {
	case id == 0:
		return 0
	case pkg == 0:
		return id&0x00ffffff | arsc.ResId(lp.id)<<24
	case pkg == arsc.SysPackageID, pkg == arsc.AppPackageID:
		return id
	}
	if to, ok := lp.dynamic[pkg]; ok {
		return id&0x00ffffff | arsc.ResId(to)<<24
	}
	return id
}

// remapValue resolves dynamic references of a raw table value.
func (lp *loadedPackage) remapValue(v arsc.ResValue) arsc.ResValue {
	switch v.DataType {
	case arsc.TypeDynamicReference:
		v.DataType = arsc.TypeReference
	case arsc.TypeDynamicAttribute:
		v.DataType = arsc.TypeAttribute
	case arsc.TypeReference, arsc.TypeAttribute:
	default:
		return v
	}
	v.Data = uint32(lp.remap(arsc.ResId(v.Data)))
	return v
}

// Cookies returns the cookie and path of every loaded table.
func (am *AssetManager) Cookies() map[Cookie]string {
	am.mu.RLock()
	defer am.mu.RUnlock()
	ret := make(map[Cookie]string, len(am.tables))
	for _, t := range am.tables {
		ret[t.cookie] = t.path
	}
	return ret
}

// AssignedPackageIDs returns the runtime package id of every package name.
func (am *AssetManager) AssignedPackageIDs() map[string]uint8 {
	am.mu.RLock()
	defer am.mu.RUnlock()
	ret := make(map[string]uint8, len(am.packageIDs))
	for k, v := range am.packageIDs {
		ret[k] = v
	}
	return ret
}

// GetLocales returns the locales any loaded table has variants for.
func (am *AssetManager) GetLocales() []string {
	am.mu.RLock()
	defer am.mu.RUnlock()
	seen := map[string]bool{}
	var ret []string
	for _, t := range am.tables {
		for _, l := range t.table.Locales() {
			if !seen[l] {
				seen[l] = true
				ret = append(ret, l)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// soft reports a soft condition: returned in strict mode, logged otherwise.
func (am *AssetManager) soft(err error) error {
	if err == nil {
		return nil
	}
	if am.strict || !reserr.KindOf(err).Soft() {
		return err
	}
	if am.logger != nil {
		am.logger.Printf("warning: %v", err)
	}
	return nil
}

type entryResult struct {
	entry  *arsc.Entry
	config arsc.Config
	pkg    *loadedPackage
	flags  uint32
	cookie Cookie
}

// value converts the entry's simple value into a TypedValue.
func (r *entryResult) value(id arsc.ResId) TypedValue {
	return r.typed(r.entry.Value, id)
}

// typed converts a raw value stored in r's package.
func (r *entryResult) typed(raw arsc.ResValue, id arsc.ResId) TypedValue {
	raw = r.pkg.remapValue(raw)
	v := TypedValue{
		Type:                   raw.DataType,
		Data:                   raw.Data,
		ResourceID:             id,
		Density:                r.config.Density,
		ChangingConfigurations: r.flags &^ (arsc.SpecPublic | arsc.SpecStagedAPI),
		Cookie:                 r.cookie,
	}
	if v.Type == arsc.TypeString {
		v.String, _ = r.pkg.pkg.Table().String(v.Data)
	}
	return v
}

// findEntry picks the best variant of id for cfg across all tables.
func (am *AssetManager) findEntry(id arsc.ResId, cfg *arsc.Config) (*entryResult, error) {
	if !id.IsValid() {
		return nil, reserr.Errorf(reserr.NotFound, "invalid resource id %s", id)
	}
	var best *entryResult
	packageSeen, typeSeen := false, false
	for _, t := range am.tables {
		for _, lp := range t.packages {
			if lp.id != id.Package() {
				continue
			}
			packageSeen = true
			g := lp.pkg.TypeGroup(id.Type())
			if g == nil {
				continue
			}
			typeSeen = true
			if int(id.Entry()) >= g.EntryCount {
				continue
			}
			var candidates []*arsc.Config
			var entries []*arsc.Entry
			for _, typ := range g.Types {
				if e := typ.Entry(id.Entry()); e != nil {
					c := typ.Config
					candidates = append(candidates, &c)
					entries = append(entries, e)
				}
			}
			i, ok := arsc.SelectBest(candidates, cfg)
			if !ok {
				continue
			}
			// equal configs in a later table shadow earlier ones
			if best == nil || candidates[i].IsBetterThan(&best.config, cfg) || candidates[i].Compare(&best.config) == 0 {
				best = &entryResult{
					entry:  entries[i],
					config: *candidates[i],
					pkg:    lp,
					flags:  g.Flags(id.Entry()),
					cookie: t.cookie,
				}
			}
		}
	}
	if best == nil {
		switch {
		case !packageSeen:
			return nil, reserr.Errorf(reserr.NotFound, "resource %s: no package 0x%02x", id, id.Package())
		case !typeSeen:
			return nil, reserr.Errorf(reserr.NotFound, "resource %s: no type 0x%02x", id, id.Type())
		}
		return nil, reserr.Errorf(reserr.NotFound, "resource %s: no entry for configuration %q", id, cfg.String())
	}
	return best, nil
}

// GetResourceName returns the name of id.
func (am *AssetManager) GetResourceName(id arsc.ResId) (ResourceName, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.resourceName(id)
}

func (am *AssetManager) resourceName(id arsc.ResId) (ResourceName, error) {
	if !id.IsValid() {
		return ResourceName{}, reserr.Errorf(reserr.NotFound, "invalid resource id %s", id)
	}
	for i := len(am.tables) - 1; i >= 0; i-- {
		for _, lp := range am.tables[i].packages {
			if lp.id != id.Package() {
				continue
			}
			g := lp.pkg.TypeGroup(id.Type())
			if g == nil {
				continue
			}
			e, _ := g.FirstEntry(id.Entry())
			if e == nil {
				continue
			}
			return ResourceName{
				Package: lp.pkg.Name,
				Type:    g.Name(),
				Entry:   lp.pkg.KeyName(e.Key),
			}, nil
		}
	}
	return ResourceName{}, reserr.Errorf(reserr.NotFound, "resource %s has no name", id)
}

// GetResourceIdentifier returns the id of name, "[package:]type/entry".
// defType and defPackage fill in what name leaves out; an empty
// defPackage means the application package.
func (am *AssetManager) GetResourceIdentifier(name, defType, defPackage string) (arsc.ResId, error) {
	am.mu.RLock()
	defer am.mu.RUnlock()
	return am.resourceIdentifier(name, defType, defPackage)
}

func (am *AssetManager) resourceIdentifier(name, defType, defPackage string) (arsc.ResId, error) {
	if defPackage == "" {
		defPackage = am.packageName
	}
	n, err := ParseResourceName(name, defType, defPackage)
	if err != nil {
		return 0, err
	}
	if n.Package == "android" {
		n.Package = am.frameworkPackage()
	}
	for i := len(am.tables) - 1; i >= 0; i-- {
		for _, lp := range am.tables[i].packages {
			if lp.pkg.Name != n.Package {
				continue
			}
			if id, ok := lp.pkg.FindID(n.Type, n.Entry); ok {
				return id&0x00ffffff | arsc.ResId(lp.id)<<24, nil
			}
		}
	}
	return 0, reserr.Errorf(reserr.NotFound, "no resource named %s", n)
}

// frameworkPackage returns the name of the package loaded with id 0x01,
// which is usually "android".
func (am *AssetManager) frameworkPackage() string {
	for _, t := range am.tables {
		for _, lp := range t.packages {
			if lp.id == arsc.SysPackageID {
				return lp.pkg.Name
			}
		}
	}
	return "android"
}

// ResourceInfo summarizes one resource across all loaded tables.
type ResourceInfo struct {
	ID   arsc.ResId
	Name ResourceName
	// Configs lists the qualifiers of every variant, in table order.
	Configs []string
	Bag     bool
	Public  bool
}

// Resources lists every resource of the loaded tables, sorted by id.
func (am *AssetManager) Resources() []ResourceInfo {
	am.mu.RLock()
	defer am.mu.RUnlock()
	byID := make(map[arsc.ResId]*ResourceInfo)
	for _, t := range am.tables {
		for _, lp := range t.packages {
			for _, g := range lp.pkg.TypeGroups() {
				for idx := 0; idx < g.EntryCount; idx++ {
					id := arsc.MakeResId(lp.id, g.ID, uint16(idx))
					for _, typ := range g.Types {
						e := typ.Entry(uint16(idx))
						if e == nil {
							continue
						}
						info, ok := byID[id]
						if !ok {
							info = &ResourceInfo{ID: id}
							byID[id] = info
						}
						info.Name = ResourceName{Package: lp.pkg.Name, Type: g.Name(), Entry: lp.pkg.KeyName(e.Key)}
						info.Configs = append(info.Configs, typ.Config.String())
						info.Bag = e.IsComplex()
						info.Public = info.Public || g.Flags(uint16(idx))&arsc.SpecPublic != 0
					}
				}
			}
		}
	}
	ret := make([]ResourceInfo, 0, len(byID))
	for _, info := range byID {
		ret = append(ret, *info)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}
