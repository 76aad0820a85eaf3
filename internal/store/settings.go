package store

import (
	"sort"
	"sync/atomic"
)

// Settings maps category names to their setting. A published Settings value
// is never modified; updates publish a fresh map.
type Settings map[string]CategorySetting

// Lookup returns the setting for category, defaulting to enabled with no
// message.
func (s Settings) Lookup(category string) CategorySetting {
	if cs, ok := s[category]; ok {
		return cs
	}
	return CategorySetting{Enabled: true}
}

func (s Settings) clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SettingsStore publishes the category policy as a whole map.
type SettingsStore struct {
	current atomic.Pointer[Settings]
}

func NewSettingsStore() *SettingsStore {
	s := &SettingsStore{}
	empty := Settings{}
	s.current.Store(&empty)
	return s
}

// Current returns the published settings. Callers must not modify it.
func (s *SettingsStore) Current() Settings {
	return *s.current.Load()
}

// Replace publishes a copy of next as the complete policy.
func (s *SettingsStore) Replace(next Settings) {
	cp := next.clone()
	s.current.Store(&cp)
}

// ReplaceDisabled publishes a policy in which exactly the named categories
// are disabled. Messages already configured are kept.
func (s *SettingsStore) ReplaceDisabled(names []string) Settings {
	disabled := make(map[string]bool, len(names))
	for _, n := range names {
		disabled[n] = true
	}

	for {
		old := s.current.Load()
		next := Settings{}
		for cat, cs := range *old {
			cs.Enabled = !disabled[cat]
			next[cat] = cs
		}
		for cat := range disabled {
			if _, ok := next[cat]; !ok {
				next[cat] = CategorySetting{Enabled: false}
			}
		}
		if s.current.CompareAndSwap(old, &next) {
			return next
		}
	}
}

// Disabled lists the disabled categories, sorted.
func (s *SettingsStore) Disabled() []string {
	out := []string{}
	for cat, cs := range s.Current() {
		if !cs.Enabled {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}
