package main

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/arsc/arsctest"
	"github.com/codeskyblue/androidres/res"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *ResourceServer {
	tb := arsctest.NewTable()
	p := tb.Package(0x7f, "com.example.app")
	p.Set("string/greeting", "", tb.String("Hello"))
	p.Set("string/greeting", "fr", tb.String("Bonjour"))
	red := p.Set("color/red", "", arsctest.Color(0xffff0000))
	p.Set("color/primary", "", arsctest.Ref(red))
	p.Set("color/loop", "", arsctest.Ref(p.ResID("color/loop")))
	accent := p.SetBag("attr/accent", "", 0, arsctest.Item(arsc.AttrType, arsctest.Int(int32(arsc.FormatColor))))
	p.SetBag("style/AppTheme", "", 0, arsctest.Item(accent, arsctest.Ref(red)))

	am := res.NewAssetManager()
	am.SetLogger(log.New(ioutil.Discard, "", 0))
	_, err := am.AddTable("resources.arsc", tb.Bytes())
	require.NoError(t, err)
	return NewResourceServer(am)
}

func do(s http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestServerValue(t *testing.T) {
	s := newTestServer(t)

	w := do(s, "GET", "/api/resources/color/primary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v valueJSON
	decode(t, w, &v)
	assert.Equal(t, "#ffff0000", v.Value)
	assert.Equal(t, "com.example.app:color/red", v.Name)

	w = do(s, "GET", "/api/resources/color/primary?resolve=false", nil)
	decode(t, w, &v)
	assert.Equal(t, "Reference", v.Type)

	w = do(s, "GET", "/api/resources/0x7f010000", nil)
	decode(t, w, &v)
	assert.Equal(t, "Hello", v.Value)

	w = do(s, "GET", "/api/resources/color/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, "GET", "/api/resources/color/loop", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var e map[string]string
	decode(t, w, &e)
	assert.Equal(t, "circular-reference", e["kind"])
}

func TestServerConfig(t *testing.T) {
	s := newTestServer(t)

	w := do(s, "PUT", "/api/config", url.Values{"qualifiers": {"fr-xhdpi"}})
	require.Equal(t, http.StatusOK, w.Code)
	var c map[string]interface{}
	decode(t, w, &c)
	assert.Equal(t, "fr-xhdpi", c["qualifiers"])

	var v valueJSON
	decode(t, do(s, "GET", "/api/resources/string/greeting", nil), &v)
	assert.Equal(t, "Bonjour", v.Value)

	w = do(s, "PUT", "/api/config", url.Values{"qualifiers": {"not-a-qualifier"}})
	assert.NotEqual(t, http.StatusOK, w.Code)

	var locales []string
	decode(t, do(s, "GET", "/api/locales", nil), &locales)
	assert.Equal(t, []string{"fr"}, locales)
}

func TestServerSearch(t *testing.T) {
	s := newTestServer(t)
	var matches []map[string]interface{}
	decode(t, do(s, "GET", "/api/search?q=grt", nil), &matches)
	require.Len(t, matches, 1)
	assert.Equal(t, "com.example.app:string/greeting", matches[0]["name"])

	w := do(s, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "com.example.app:string/greeting")
}

func TestServerBag(t *testing.T) {
	s := newTestServer(t)
	w := do(s, "GET", "/api/bags/style/AppTheme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bag struct {
		ID      string `json:"id"`
		Entries []struct {
			Name     string    `json:"name"`
			Resolved valueJSON `json:"resolved"`
		} `json:"entries"`
	}
	decode(t, w, &bag)
	require.Len(t, bag.Entries, 1)
	assert.Equal(t, "com.example.app:attr/accent", bag.Entries[0].Name)
	assert.Equal(t, "#ffff0000", bag.Entries[0].Resolved.Value)

	w = do(s, "GET", "/api/bags/color/red", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServerThemes(t *testing.T) {
	s := newTestServer(t)

	w := do(s, "POST", "/api/themes", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]uint64
	decode(t, w, &created)
	h := created["theme"]
	require.NotZero(t, h)
	base := "/api/themes/" + jsonNumber(h)

	w = do(s, "GET", base+"/attrs/accent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, "POST", base+"/styles", url.Values{"style": {"AppTheme"}, "force": {"true"}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(s, "GET", base+"/attrs/accent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v valueJSON
	decode(t, w, &v)
	assert.Equal(t, "#ffff0000", v.Value)

	w = do(s, "DELETE", base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(s, "GET", base+"/attrs/accent", nil)
	assert.Equal(t, http.StatusGone, w.Code)
}

func jsonNumber(n uint64) string {
	data, _ := json.Marshal(n)
	return string(data)
}
