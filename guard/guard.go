// Package guard runs the pre-admission checks for newly classified videos:
// near-duplicate detection and a best-effort availability probe.
//
// Duplicate checks are O(n) against the full catalog. That is acceptable at
// catalog sizes in the hundreds; past roughly ten thousand entries a
// bucketed similarity index would be needed.
package guard

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/sihabxd/OnlineHub/catalog"
	"github.com/sihabxd/OnlineHub/classify"
)

// ErrDuplicate is returned when admission declines a near-duplicate. It is
// a user-visible warning, not a system failure.
var ErrDuplicate = errors.New("guard: duplicate video")

// DefaultSimilarityThreshold is the normalized edit-distance similarity
// above which two titles or URLs count as the same video.
const DefaultSimilarityThreshold = 0.85

// Guard performs duplicate detection with a cheap exact-hash path and an
// O(n) similarity fallback.
type Guard struct {
	mu        sync.Mutex
	threshold float64
	seen      map[uint64]struct{}
}

// New creates a Guard. A non-positive threshold falls back to the default.
func New(threshold float64) *Guard {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Guard{
		threshold: threshold,
		seen:      make(map[uint64]struct{}),
	}
}

// exactKey hashes the (externalID, platform, title) triple for the O(1)
// duplicate path.
func exactKey(externalID string, platform classify.Platform, title string) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", externalID, platform, strings.ToLower(strings.TrimSpace(title)))
	return h.Sum64()
}

// Rebuild replaces the exact-hash set from the current catalog entries.
// Call after every catalog reload.
func (g *Guard) Rebuild(entries []catalog.Entry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		g.seen[exactKey(e.Video.ExternalID, e.Video.Platform, e.Video.Title)] = struct{}{}
	}
}

// Remember adds one admitted video to the exact-hash set.
func (g *Guard) Remember(v classify.Video) {
	g.mu.Lock()
	g.seen[exactKey(v.ExternalID, v.Platform, v.Title)] = struct{}{}
	g.mu.Unlock()
}

// IsDuplicate reports whether the candidate is an exact or near duplicate
// of any existing entry. The exact-hash hit is O(1); otherwise every entry
// is compared by title and by original URL, and either similarity above
// the threshold yields a duplicate verdict.
func (g *Guard) IsDuplicate(v classify.Video, entries []catalog.Entry) bool {
	g.mu.Lock()
	_, exact := g.seen[exactKey(v.ExternalID, v.Platform, v.Title)]
	threshold := g.threshold
	g.mu.Unlock()
	if exact {
		return true
	}

	for _, e := range entries {
		if e.Video.Platform == v.Platform && e.Video.ExternalID == v.ExternalID {
			return true
		}
		if Similarity(v.Title, e.Video.Title) > threshold {
			return true
		}
		if Similarity(v.OriginalURL, e.Video.OriginalURL) > threshold {
			return true
		}
	}
	return false
}

// Similarity computes normalized edit-distance similarity in [0, 1]:
// 1 - distance/maxLen, case-insensitive. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
