package state

import (
	"sort"

	"github.com/yourusername/wise/internal/entity"
	"github.com/yourusername/wise/internal/layout"
)

// Entry is one row of a Snapshot.
type Entry struct {
	BundleID string          `json:"bundleId"`
	WindowID entity.WindowID `json:"windowId"`
	WindowState
}

// BundleIDs returns every bundle id with at least one window, sorted.
func (s *Store) BundleIDs() []string {
	var ids []string
	s.bundles.Range(func(key, value any) bool {
		b := value.(*bundleState)
		b.mu.RLock()
		n := len(b.windows)
		b.mu.RUnlock()
		if n > 0 {
			ids = append(ids, key.(string))
		}
		return true
	})
	sort.Strings(ids)
	return ids
}

// EnabledWindows returns the preset of every enabled window of bundleID.
func (s *Store) EnabledWindows(bundleID string) map[entity.WindowID]layout.Preset {
	b := s.lookup(bundleID)
	if b == nil {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make(map[entity.WindowID]layout.Preset)
	for id, ws := range b.windows {
		if ws.Enabled {
			result[id] = ws.Preset
		}
	}
	return result
}

// Snapshot returns a copy of every entry sorted by bundle id then window id.
// Each bundle is copied under its own lock, so the result is consistent per
// bundle but not across bundles.
func (s *Store) Snapshot() []Entry {
	var entries []Entry
	s.bundles.Range(func(key, value any) bool {
		b := value.(*bundleState)
		b.mu.RLock()
		for id, ws := range b.windows {
			entries = append(entries, Entry{
				BundleID:    key.(string),
				WindowID:    id,
				WindowState: *ws,
			})
		}
		b.mu.RUnlock()
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BundleID != entries[j].BundleID {
			return entries[i].BundleID < entries[j].BundleID
		}
		return entries[i].WindowID < entries[j].WindowID
	})
	return entries
}

// Count returns the number of windows with an entry, and how many of them
// are enabled.
func (s *Store) Count() (total, enabled int) {
	s.bundles.Range(func(_, value any) bool {
		b := value.(*bundleState)
		b.mu.RLock()
		for _, ws := range b.windows {
			total++
			if ws.Enabled {
				enabled++
			}
		}
		b.mu.RUnlock()
		return true
	})
	return total, enabled
}
