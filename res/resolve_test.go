package res_test

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"testing"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/arsc/arsctest"
	"github.com/codeskyblue/androidres/res"
	"github.com/codeskyblue/androidres/reserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appPackage = "com.example.app"

func loadAssets(t *testing.T, build func(tb *arsctest.Table, p *arsctest.Package)) *res.AssetManager {
	tb := arsctest.NewTable()
	build(tb, tb.Package(0x7f, appPackage))
	am := res.NewAssetManager()
	am.SetLogger(log.New(ioutil.Discard, "", 0))
	_, err := am.AddTable("resources.arsc", tb.Bytes())
	require.NoError(t, err)
	return am
}

func configure(t *testing.T, am *res.AssetManager, qualifiers string) {
	c, err := arsc.ParseQualifiers(qualifiers)
	require.NoError(t, err)
	am.SetConfiguration(c)
}

func sample(tb *arsctest.Table, p *arsctest.Package) {
	p.Set("string/greeting", "", tb.String("Hello"))
	p.Set("string/greeting", "fr", tb.String("Bonjour"))
	p.Set("string/greeting", "de", tb.String("Hallo"))
	red := p.Set("color/red", "", arsctest.Color(0xffff0000))
	p.Set("color/primary", "", arsctest.Ref(red))
	p.Set("color/none", "", arsctest.Null())
	p.Set("color/dangling", "", arsctest.Ref(0x7f0f0000))
	p.Set("color/self", "", arsctest.Ref(p.ResID("color/self")))
	p.Set("color/ping", "", arsctest.Ref(p.ResID("color/pong")))
	p.Set("color/pong", "", arsctest.Ref(p.ResID("color/ping")))
	p.Set("dimen/pad", "", arsctest.Value(arsc.TypeDimension, 0x801))
	p.Set("dimen/pad", "hdpi", arsctest.Value(arsc.TypeDimension, 0xA01))
	p.SetBag("style/Base", "", 0, arsctest.Item(0x01010098, arsctest.Ref(red)))
}

func TestGetResourceValueLocale(t *testing.T) {
	am := loadAssets(t, sample)
	id, err := am.GetResourceIdentifier("string/greeting", "", "")
	require.NoError(t, err)

	for _, v := range []struct {
		config string
		expect string
	}{
		{"", "Hello"},
		{"fr", "Bonjour"},
		{"fr-rCA", "Bonjour"},
		{"de-rDE", "Hallo"},
		{"ja", "Hello"},
	} {
		configure(t, am, v.config)
		val, err := am.GetResourceValue(id, 0, true)
		require.NoError(t, err)
		assert.Equal(t, arsc.TypeString, val.Type, v.config)
		assert.Equal(t, v.expect, val.String, v.config)
		assert.NotZero(t, val.ChangingConfigurations&arsc.ConfigLocale)
		assert.Equal(t, res.Cookie(0), val.Cookie)
	}
}

func TestGetResourceValueDensity(t *testing.T) {
	am := loadAssets(t, sample)
	id, err := am.GetResourceIdentifier("@dimen/pad", "", "")
	require.NoError(t, err)

	v, err := am.GetResourceValue(id, 0, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x801), v.Data)

	v, err = am.GetResourceValue(id, arsc.DensityXHigh, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xA01), v.Data)
	assert.Equal(t, uint16(arsc.DensityHigh), v.Density)
	assert.Equal(t, "10dip", v.CoerceToString())
}

func TestResolveReference(t *testing.T) {
	am := loadAssets(t, sample)
	id := func(name string) arsc.ResId {
		id, err := am.GetResourceIdentifier(name, "", appPackage)
		require.NoError(t, err)
		return id
	}
	red := id("color/red")

	v, err := am.GetResourceValue(id("color/primary"), 0, true)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeIntColorARGB8, v.Type)
	assert.Equal(t, uint32(0xffff0000), v.Data)
	assert.Equal(t, red, v.ResourceID)

	// without resolution the stored reference comes back
	v, err = am.GetResourceValue(id("color/primary"), 0, false)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeReference, v.Type)
	assert.Equal(t, uint32(red), v.Data)

	v, err = am.ResolveReference(v)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xffff0000), v.Data)

	v, err = am.GetResourceValue(id("color/none"), 0, true)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	style := id("style/Base")
	v, err = am.GetResourceValue(style, 0, true)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeReference, v.Type)
	assert.Equal(t, uint32(style), v.Data)

	_, err = am.GetResourceValue(0x7f0e0001, 0, true)
	assert.True(t, reserr.Is(err, reserr.NotFound))
}

func TestResolveReferenceCycle(t *testing.T) {
	am := loadAssets(t, sample)
	for _, name := range []string{"color/self", "color/ping", "color/pong"} {
		id, err := am.GetResourceIdentifier(name, "", "")
		require.NoError(t, err)
		_, err = am.GetResourceValue(id, 0, true)
		assert.True(t, reserr.Is(err, reserr.CircularReference), name)
	}
}

func TestResolveReferenceDangling(t *testing.T) {
	am := loadAssets(t, sample)
	var logs bytes.Buffer
	am.SetLogger(log.New(&logs, "", 0))
	id, err := am.GetResourceIdentifier("color/dangling", "", "")
	require.NoError(t, err)

	v, err := am.GetResourceValue(id, 0, true)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeReference, v.Type)
	assert.Equal(t, uint32(0x7f0f0000), v.Data)
	assert.Contains(t, logs.String(), "warning")

	am.SetStrict(true)
	_, err = am.GetResourceValue(id, 0, true)
	assert.True(t, reserr.Is(err, reserr.Unresolvable))
}

func chain(n int) func(tb *arsctest.Table, p *arsctest.Package) {
	return func(tb *arsctest.Table, p *arsctest.Package) {
		for i := 0; i < n; i++ {
			p.Set(fmt.Sprintf("color/c%d", i), "", arsctest.Ref(p.ResID(fmt.Sprintf("color/c%d", i+1))))
		}
		p.Set(fmt.Sprintf("color/c%d", n), "", arsctest.Color(0xff00ff00))
	}
}

func TestResolveReferenceDepth(t *testing.T) {
	am := loadAssets(t, chain(res.DefaultMaxReferenceDepth))
	am.SetStrict(true)
	v, err := am.GetResourceValue(arsc.MakeResId(0x7f, 1, 0), 0, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff00ff00), v.Data)

	am = loadAssets(t, chain(res.DefaultMaxReferenceDepth+1))
	am.SetStrict(true)
	_, err = am.GetResourceValue(arsc.MakeResId(0x7f, 1, 0), 0, true)
	assert.True(t, reserr.Is(err, reserr.Unresolvable))

	am.SetStrict(false)
	v, err = am.GetResourceValue(arsc.MakeResId(0x7f, 1, 0), 0, true)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeReference, v.Type)
}

func TestResourceNames(t *testing.T) {
	am := loadAssets(t, sample)
	for _, v := range []struct {
		name, defType, defPackage string
	}{
		{"string/greeting", "", ""},
		{"@string/greeting", "", ""},
		{"greeting", "string", ""},
		{"com.example.app:string/greeting", "", "other"},
		{"@com.example.app:greeting", "string", ""},
	} {
		id, err := am.GetResourceIdentifier(v.name, v.defType, v.defPackage)
		require.NoError(t, err, v.name)
		assert.Equal(t, arsc.ResId(0x7f010000), id, v.name)
	}

	n, err := am.GetResourceName(0x7f010000)
	require.NoError(t, err)
	assert.Equal(t, "com.example.app:string/greeting", n.String())

	_, err = am.GetResourceIdentifier("string/missing", "", "")
	assert.True(t, reserr.Is(err, reserr.NotFound))
	_, err = am.GetResourceIdentifier("missing", "", "")
	assert.True(t, reserr.Is(err, reserr.NotFound))
	_, err = am.GetResourceName(0x7f090000)
	assert.True(t, reserr.Is(err, reserr.NotFound))
}

func TestOverlayShadows(t *testing.T) {
	am := loadAssets(t, sample)
	tb := arsctest.NewTable()
	p := tb.Package(0x7f, appPackage)
	p.Set("string/greeting", "", tb.String("Overlay"))
	cookie, err := am.AddTable("overlay.arsc", tb.Bytes())
	require.NoError(t, err)
	assert.Equal(t, res.Cookie(1), cookie)

	v, err := am.GetResourceValue(0x7f010000, 0, true)
	require.NoError(t, err)
	assert.Equal(t, "Overlay", v.String)
	assert.Equal(t, cookie, v.Cookie)

	// the base table still wins where it is more specific
	configure(t, am, "fr")
	v, err = am.GetResourceValue(0x7f010000, 0, true)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", v.String)
	assert.Equal(t, res.Cookie(0), v.Cookie)

	assert.Equal(t, map[res.Cookie]string{0: "resources.arsc", 1: "overlay.arsc"}, am.Cookies())
	assert.Equal(t, []string{"de", "fr"}, am.GetLocales())
}

func TestSharedLibrary(t *testing.T) {
	lib := arsctest.NewTable()
	lp := lib.Package(0, "com.example.lib")
	accent := lp.Set("color/accent", "", arsctest.Color(0xff123456))
	lp.Set("color/alias", "", arsctest.Ref(accent))

	app := arsctest.NewTable()
	ap := app.Package(0x7f, appPackage)
	ap.Library(0x03, "com.example.lib")
	ap.Set("color/fromlib", "", arsctest.Value(arsc.TypeDynamicReference, 0x03010000))

	am := res.NewAssetManager()
	_, err := am.AddTable("lib.arsc", lib.Bytes())
	require.NoError(t, err)
	_, err = am.AddTable("app.arsc", app.Bytes())
	require.NoError(t, err)

	ids := am.AssignedPackageIDs()
	assert.Equal(t, uint8(0x02), ids["com.example.lib"])
	assert.Equal(t, uint8(0x7f), ids[appPackage])

	v, err := am.GetResourceValue(0x02010001, 0, false)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeReference, v.Type)
	assert.Equal(t, uint32(0x02010000), v.Data)

	v, err = am.GetResourceValue(0x7f010000, 0, false)
	require.NoError(t, err)
	assert.Equal(t, arsc.TypeReference, v.Type)
	assert.Equal(t, uint32(0x02010000), v.Data)

	v, err = am.ResolveReference(v)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff123456), v.Data)

	id, err := am.GetResourceIdentifier("com.example.lib:color/alias", "", "")
	require.NoError(t, err)
	assert.Equal(t, arsc.ResId(0x02010001), id)
}

func TestNewAssetManagerFor(t *testing.T) {
	tb := arsctest.NewTable()
	sample(tb, tb.Package(0x7f, appPackage))
	data := tb.Bytes()

	fr, err := arsc.ParseQualifiers("fr")
	require.NoError(t, err)
	app := &testApp{paths: []string{"base.apk"}, config: fr}
	am, err := res.NewAssetManagerFor(app, func(path string) ([]byte, error) {
		if path != "base.apk" {
			return nil, fmt.Errorf("no such file %s", path)
		}
		return data, nil
	})
	require.NoError(t, err)
	v, err := am.GetResourceValue(0x7f010000, 0, true)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", v.String)

	app.paths = append(app.paths, "missing.apk")
	_, err = res.NewAssetManagerFor(app, func(path string) ([]byte, error) {
		if path != "base.apk" {
			return nil, fmt.Errorf("no such file %s", path)
		}
		return data, nil
	})
	assert.Error(t, err)
}

type testApp struct {
	paths  []string
	config arsc.Config
}

func (a *testApp) PackageName() string        { return appPackage }
func (a *testApp) AssetPaths() []string       { return a.paths }
func (a *testApp) Configuration() arsc.Config { return a.config }

func TestResources(t *testing.T) {
	am := loadAssets(t, sample)
	list := am.Resources()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].ID < list[i].ID)
	}

	greeting := list[0]
	assert.Equal(t, arsc.ResId(0x7f010000), greeting.ID)
	assert.Equal(t, "com.example.app:string/greeting", greeting.Name.String())
	assert.Equal(t, []string{"", "fr", "de"}, greeting.Configs)
	assert.False(t, greeting.Bag)

	var style *res.ResourceInfo
	for i := range list {
		if list[i].Name.Type == "style" {
			style = &list[i]
		}
	}
	require.NotNil(t, style)
	assert.True(t, style.Bag)
	assert.Equal(t, "Base", style.Name.Entry)
}
