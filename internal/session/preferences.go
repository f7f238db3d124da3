package session

import (
	"sync"

	"github.com/fmuoria/resume-admin/internal/store"
)

// Theme modes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences holds the persisted UI preferences
type Preferences struct {
	store store.Store

	mu   sync.RWMutex
	mode string
}

// NewPreferences loads the saved theme mode, defaulting to light
func NewPreferences(s store.Store) *Preferences {
	mode := ThemeLight
	if saved, ok := s.Get(store.KeyThemeMode); ok && (saved == ThemeLight || saved == ThemeDark) {
		mode = saved
	}
	return &Preferences{store: s, mode: mode}
}

// ThemeMode returns the current theme mode
func (p *Preferences) ThemeMode() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// ToggleThemeMode flips between light and dark and persists the choice
func (p *Preferences) ToggleThemeMode() (string, error) {
	p.mu.Lock()
	if p.mode == ThemeLight {
		p.mode = ThemeDark
	} else {
		p.mode = ThemeLight
	}
	mode := p.mode
	p.mu.Unlock()

	return mode, p.store.Set(store.KeyThemeMode, mode)
}
