package manifest

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// Store holds the live set of update records. It is not safe for concurrent
// use; callers serialize access.
type Store struct {
	updates map[string]UpdateRecord
	latest  string
}

func NewStore() *Store {
	return &Store{updates: map[string]UpdateRecord{}}
}

// NewStoreFrom seeds a store with m's records. The latest version is
// recomputed rather than trusted.
func NewStoreFrom(m Manifest) *Store {
	s := NewStore()
	for k, v := range m.Updates {
		s.updates[k] = v.clone()
	}
	s.recompute()
	return s
}

func (s *Store) recompute() {
	keys := make([]string, 0, len(s.updates))
	for k := range s.updates {
		keys = append(keys, k)
	}
	s.latest = LatestVersion(keys)
}

func checkFlags(version string, r UpdateRecord) error {
	if r.Forced && r.Automatic {
		return common.NewValidationError(version, "update cannot be both forced and automatic")
	}
	return nil
}

// Upsert inserts or fully replaces the record for version.
func (s *Store) Upsert(version string, f Fields) (Manifest, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return Manifest{}, common.NewValidationError("version", "version number is required")
	}

	r := f.Record(version)
	if err := checkFlags(version, r); err != nil {
		return Manifest{}, err
	}

	s.updates[version] = r
	s.recompute()
	return s.Manifest(), nil
}

// Remove deletes version if present. Removing an absent version is a no-op.
func (s *Store) Remove(version string) Manifest {
	delete(s.updates, strings.TrimSpace(version))
	s.recompute()
	return s.Manifest()
}

// ImportMerge adds every incoming version that is not already present and
// returns how many were added. Existing versions are never overwritten. The
// whole batch is rejected when any new record is invalid. Records are kept
// as decoded into UpdateRecord, so fields outside the fixed schema are
// dropped.
func (s *Store) ImportMerge(updates map[string]UpdateRecord) (int, error) {
	fresh := make(map[string]UpdateRecord)
	for version, r := range updates {
		if _, exists := s.updates[version]; exists {
			continue
		}
		if strings.TrimSpace(version) == "" {
			return 0, common.NewValidationError("version", "imported update has an empty version")
		}
		if err := checkFlags(version, r); err != nil {
			return 0, err
		}
		fresh[version] = r.clone()
	}

	for version, r := range fresh {
		s.updates[version] = r
	}
	s.recompute()
	return len(fresh), nil
}

// Replace swaps the whole record set for m's, as done by a history restore.
func (s *Store) Replace(m Manifest) (Manifest, error) {
	for version, r := range m.Updates {
		if strings.TrimSpace(version) == "" {
			return Manifest{}, common.NewValidationError("version", "empty version in snapshot")
		}
		if err := checkFlags(version, r); err != nil {
			return Manifest{}, fmt.Errorf("replace: %w", err)
		}
	}

	next := make(map[string]UpdateRecord, len(m.Updates))
	for k, v := range m.Updates {
		next[k] = v.clone()
	}
	s.updates = next
	s.recompute()
	return s.Manifest(), nil
}

// Manifest returns a deep copy of the current document.
func (s *Store) Manifest() Manifest {
	m := Manifest{
		LatestVersion:          s.latest,
		Updates:                s.updates,
		RequiredAndroidVersion: RequiredAndroidVersion,
	}
	return m.Clone()
}

func (s *Store) LatestVersion() string { return s.latest }

func (s *Store) Len() int { return len(s.updates) }

// Get returns the record stored for version.
func (s *Store) Get(version string) (UpdateRecord, bool) {
	r, ok := s.updates[version]
	return r.clone(), ok
}

// Versions lists labels in display order, latest first.
func (s *Store) Versions() []string {
	keys := make([]string, 0, len(s.updates))
	for k := range s.updates {
		keys = append(keys, k)
	}
	return SortVersions(keys)
}

// Serialize renders the canonical document.
func (s *Store) Serialize() ([]byte, error) {
	return Marshal(s.Manifest())
}
