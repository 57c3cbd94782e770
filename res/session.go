package res

import (
	"sync"

	"github.com/codeskyblue/androidres/arsc"
	"github.com/codeskyblue/androidres/reserr"
)

// Handle names an asset manager or theme held by a Session.
type Handle uint64

// Session hands out handles to asset managers and themes for callers that
// cannot hold Go pointers, such as the HTTP inspector.
type Session struct {
	mu     sync.Mutex
	next   Handle
	assets map[Handle]*AssetManager
	themes map[Handle]*Theme
}

// NewSession returns an empty session.
func NewSession() *Session {
	s := &Session{next: 1}
	s.reset()
	return s
}

// reset keeps the handle counter so released handles stay invalid.
func (s *Session) reset() {
	s.assets = make(map[Handle]*AssetManager)
	s.themes = make(map[Handle]*Theme)
}

func (s *Session) handle() Handle {
	h := s.next
	s.next++
	return h
}

func invalid(what string, h Handle) error {
	return reserr.Errorf(reserr.InvalidHandle, "invalid %s handle %d", what, h)
}

// NewAssets registers am and returns its handle.
func (s *Session) NewAssets(am *AssetManager) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.handle()
	s.assets[h] = am
	return h
}

// Assets returns the asset manager behind h.
func (s *Session) Assets(h Handle) (*AssetManager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	am, ok := s.assets[h]
	if !ok {
		return nil, invalid("asset manager", h)
	}
	return am, nil
}

// ReleaseAssets drops the asset manager h and every theme created on it.
func (s *Session) ReleaseAssets(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	am, ok := s.assets[h]
	if !ok {
		return invalid("asset manager", h)
	}
	delete(s.assets, h)
	for th, t := range s.themes {
		if t.am == am {
			delete(s.themes, th)
		}
	}
	return nil
}

// NewTheme creates an empty theme on the asset manager assets.
func (s *Session) NewTheme(assets Handle) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	am, ok := s.assets[assets]
	if !ok {
		return 0, invalid("asset manager", assets)
	}
	h := s.handle()
	s.themes[h] = am.NewTheme()
	return h, nil
}

// Theme returns the theme behind h.
func (s *Session) Theme(h Handle) (*Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme(h)
}

func (s *Session) theme(h Handle) (*Theme, error) {
	t, ok := s.themes[h]
	if !ok {
		return nil, invalid("theme", h)
	}
	return t, nil
}

// ApplyThemeStyle applies the style resid to the theme h.
func (s *Session) ApplyThemeStyle(h Handle, resid arsc.ResId, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.theme(h)
	if err != nil {
		return err
	}
	return t.ApplyStyle(resid, force)
}

// CopyTheme makes the theme dst a copy of src.
func (s *Session) CopyTheme(dst, src Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.theme(dst)
	if err != nil {
		return err
	}
	sr, err := s.theme(src)
	if err != nil {
		return err
	}
	return d.SetTo(sr)
}

// ReleaseTheme drops the theme h.
func (s *Session) ReleaseTheme(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.themes[h]; !ok {
		return invalid("theme", h)
	}
	delete(s.themes, h)
	return nil
}

// ThemeAttributeValue returns the value of attr in the theme h, reference
// resolved when resolve is set.
func (s *Session) ThemeAttributeValue(h Handle, attr arsc.ResId, resolve bool) (TypedValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.theme(h)
	if err != nil {
		return nullValue(), err
	}
	v, err := t.GetAttribute(attr)
	if err != nil || !resolve {
		return v, err
	}
	return t.ResolveAttributeReference(v)
}

// Reset releases every handle.
func (s *Session) Reset() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}
