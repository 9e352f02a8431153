// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/paper-crawler/pkg/types"

// Known reports whether a paper with the given key already exists, usually
// in the store.
type Known interface {
	Contains(key types.Key) bool
}

// KeySet is a map-backed Known. The zero value is not usable; use NewKeySet.
type KeySet map[types.Key]struct{}

// NewKeySet returns a KeySet holding the keys of papers.
func NewKeySet(papers ...types.Paper) KeySet {
	ks := make(KeySet, len(papers))
	for _, p := range papers {
		ks.Add(p.Key())
	}
	return ks
}

// Contains reports whether key is in the set.
func (ks KeySet) Contains(key types.Key) bool {
	_, ok := ks[key]
	return ok
}

// Add inserts key.
func (ks KeySet) Add(key types.Key) {
	ks[key] = struct{}{}
}

// Dedupe drops records whose key is already known or appeared earlier in
// records. Matching is exact on the lowercased title and author. known may
// be nil. It returns the kept records in input order and the number removed.
func Dedupe(records []types.Paper, known Known) ([]types.Paper, int) {
	seen := make(KeySet, len(records))
	out := make([]types.Paper, 0, len(records))
	removed := 0

	for _, r := range records {
		key := r.Key()
		if seen.Contains(key) || (known != nil && known.Contains(key)) {
			removed++
			continue
		}
		seen.Add(key)
		out = append(out, r)
	}
	return out, removed
}
