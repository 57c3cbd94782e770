package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/res"
	"github.com/codeskyblue/androidres/reserr"
	"github.com/gorilla/mux"
)

// ResourceServer is an HTTP inspector over one asset manager.
type ResourceServer struct {
	am      *res.AssetManager
	session *res.Session
	assets  res.Handle
	m       *mux.Router
}

func NewResourceServer(am *res.AssetManager) *ResourceServer {
	m := mux.NewRouter()
	s := &ResourceServer{
		am:      am,
		session: res.NewSession(),
		m:       m,
	}
	s.assets = s.session.NewAssets(am)

	m.HandleFunc("/", s.hIndex)
	api := m.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", s.hConfig).Methods("GET")
	api.HandleFunc("/config", s.hSetConfig).Methods("PUT", "POST")
	api.HandleFunc("/locales", s.hLocales).Methods("GET")
	api.HandleFunc("/search", s.hSearch).Methods("GET")
	api.HandleFunc("/resources/{id:.+}", s.hValue).Methods("GET")
	api.HandleFunc("/bags/{id:.+}", s.hBag).Methods("GET")
	api.HandleFunc("/themes", s.hNewTheme).Methods("POST")
	api.HandleFunc("/themes/{theme:[0-9]+}", s.hReleaseTheme).Methods("DELETE")
	api.HandleFunc("/themes/{theme:[0-9]+}/styles", s.hApplyStyle).Methods("POST")
	api.HandleFunc("/themes/{theme:[0-9]+}/attrs/{attr:.+}", s.hThemeAttr).Methods("GET")
	return s
}

func (s *ResourceServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.m.ServeHTTP(w, r)
}

type valueJSON struct {
	Type                   string `json:"type"`
	Data                   string `json:"data"`
	Value                  string `json:"value"`
	Resource               string `json:"resource,omitempty"`
	Name                   string `json:"name,omitempty"`
	Density                uint16 `json:"density,omitempty"`
	Cookie                 int    `json:"cookie"`
	ChangingConfigurations uint32 `json:"changingConfigurations"`
}

func (s *ResourceServer) toJSON(v res.TypedValue) valueJSON {
	j := valueJSON{
		Type:                   v.Type.String(),
		Data:                   fmt.Sprintf("0x%08x", v.Data),
		Value:                  v.CoerceToString(),
		Density:                v.Density,
		Cookie:                 int(v.Cookie),
		ChangingConfigurations: v.JavaChangingConfigurations(),
	}
	if v.ResourceID != 0 {
		j.Resource = v.ResourceID.String()
		if n, err := s.am.GetResourceName(v.ResourceID); err == nil {
			j.Name = n.String()
		}
	}
	return j
}

func renderJSON(w http.ResponseWriter, v interface{}) {
	renderJSONStatus(w, http.StatusOK, v)
}

func renderJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	data, _ := json.Marshal(v)
	w.Write(data)
}

func renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch reserr.KindOf(err) {
	case reserr.NotFound, reserr.Unresolvable:
		status = http.StatusNotFound
	case reserr.TypeMismatch:
		status = http.StatusBadRequest
	case reserr.InvalidHandle:
		status = http.StatusGone
	case reserr.CircularReference:
		status = http.StatusUnprocessableEntity
	}
	renderJSONStatus(w, status, map[string]string{
		"kind":  string(reserr.KindOf(err)),
		"error": err.Error(),
	})
}

func (s *ResourceServer) hIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Package   string
		Config    string
		Locales   []string
		Resources []res.ResourceInfo
	}{
		Package:   s.packageName(),
		Config:    s.am.Configuration().String(),
		Locales:   s.am.GetLocales(),
		Resources: s.am.Resources(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "index", data); err != nil {
		log.Println("index:", err)
	}
}

func (s *ResourceServer) packageName() string {
	for name, id := range s.am.AssignedPackageIDs() {
		if id == arsc.AppPackageID {
			return name
		}
	}
	return "resources"
}

func (s *ResourceServer) hConfig(w http.ResponseWriter, r *http.Request) {
	c := s.am.Configuration()
	renderJSON(w, map[string]interface{}{
		"qualifiers": c.String(),
		"locale":     c.Locale(),
		"density":    c.Density,
		"sdk":        c.SDKVersion,
	})
}

func (s *ResourceServer) hSetConfig(w http.ResponseWriter, r *http.Request) {
	c, err := arsc.ParseQualifiers(r.FormValue("qualifiers"))
	if err != nil {
		renderError(w, err)
		return
	}
	s.am.SetConfiguration(c)
	log.Printf("%s set configuration %q", getRealIP(r), c.String())
	s.hConfig(w, r)
}

func (s *ResourceServer) hLocales(w http.ResponseWriter, r *http.Request) {
	locales := s.am.GetLocales()
	if locales == nil {
		locales = []string{}
	}
	renderJSON(w, locales)
}

func (s *ResourceServer) hSearch(w http.ResponseWriter, r *http.Request) {
	q := r.FormValue("q")
	type match struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Bag  bool   `json:"bag"`
	}
	matches := []match{}
	for _, info := range s.am.Resources() {
		name := info.Name.String()
		if SublimeContains(name, q) {
			matches = append(matches, match{ID: info.ID.String(), Name: name, Bag: info.Bag})
		}
	}
	renderJSON(w, matches)
}

func (s *ResourceServer) hValue(w http.ResponseWriter, r *http.Request) {
	id, err := lookupID(s.am, mux.Vars(r)["id"], "")
	if err != nil {
		renderError(w, err)
		return
	}
	resolve := r.FormValue("resolve") != "false"
	density, _ := strconv.ParseUint(r.FormValue("density"), 10, 16)
	v, err := s.am.GetResourceValue(id, uint16(density), resolve)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, s.toJSON(v))
}

func (s *ResourceServer) hBag(w http.ResponseWriter, r *http.Request) {
	id, err := lookupID(s.am, mux.Vars(r)["id"], "")
	if err != nil {
		renderError(w, err)
		return
	}
	bag, err := s.am.GetBag(id)
	if err != nil {
		renderError(w, err)
		return
	}
	type entry struct {
		Key      string    `json:"key"`
		Name     string    `json:"name,omitempty"`
		Value    valueJSON `json:"value"`
		Resolved valueJSON `json:"resolved"`
	}
	entries := make([]entry, 0, len(bag.Entries))
	for _, e := range bag.Entries {
		en := entry{Key: e.Key.String(), Value: s.toJSON(e.Value), Resolved: s.toJSON(e.Resolved)}
		if n, err := s.am.GetResourceName(e.Key); err == nil {
			en.Name = n.String()
		}
		entries = append(entries, en)
	}
	parent := ""
	if bag.Parent != 0 {
		parent = bag.Parent.String()
	}
	renderJSON(w, map[string]interface{}{
		"id":      bag.ID.String(),
		"parent":  parent,
		"entries": entries,
	})
}

func (s *ResourceServer) themeHandle(r *http.Request) res.Handle {
	h, _ := strconv.ParseUint(mux.Vars(r)["theme"], 10, 64)
	return res.Handle(h)
}

func (s *ResourceServer) hNewTheme(w http.ResponseWriter, r *http.Request) {
	h, err := s.session.NewTheme(s.assets)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSONStatus(w, http.StatusCreated, map[string]uint64{"theme": uint64(h)})
}

func (s *ResourceServer) hReleaseTheme(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ReleaseTheme(s.themeHandle(r)); err != nil {
		renderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *ResourceServer) hApplyStyle(w http.ResponseWriter, r *http.Request) {
	style, err := lookupID(s.am, r.FormValue("style"), "style")
	if err != nil {
		renderError(w, err)
		return
	}
	force := r.FormValue("force") == "true"
	if err := s.session.ApplyThemeStyle(s.themeHandle(r), style, force); err != nil {
		renderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *ResourceServer) hThemeAttr(w http.ResponseWriter, r *http.Request) {
	attr, err := lookupID(s.am, mux.Vars(r)["attr"], "attr")
	if err != nil {
		renderError(w, err)
		return
	}
	resolve := r.FormValue("resolve") != "false"
	v, err := s.session.ThemeAttributeValue(s.themeHandle(r), attr, resolve)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, s.toJSON(v))
}
