package catalog

import (
	"sort"
	"strings"

	"github.com/sihabxd/OnlineHub/classify"
)

// Sort selects the ordering of query results.
type Sort string

const (
	SortTitleAsc     Sort = "title_asc"
	SortTitleDesc    Sort = "title_desc"
	SortNewest       Sort = "newest"
	SortOldest       Sort = "oldest"
	SortDurationAsc  Sort = "duration_asc"
	SortDurationDesc Sort = "duration_desc"
	SortPopular      Sort = "popular"
	SortRecent       Sort = "recent"
)

// MinSearchLength is the shortest search term that filters; shorter terms
// match everything.
const MinSearchLength = 2

// Filter describes one catalog query. The zero value returns every entry
// in insertion order.
type Filter struct {
	Platform classify.Platform // empty means all platforms
	Search   string
	Sort     Sort
}

// Query returns the entries matching the filter, ordered by the sort key.
// It is a pure function of catalog state and the filter; catalog state is
// never mutated.
func (c *Catalog) Query(f Filter) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.entries))
	term := strings.ToLower(strings.TrimSpace(f.Search))
	for _, e := range c.entries {
		if f.Platform != "" && e.Video.Platform != f.Platform {
			continue
		}
		if len(term) >= MinSearchLength && !entryMatches(e, term) {
			continue
		}
		out = append(out, e)
	}
	c.sortLocked(out, f.Sort)
	return out
}

// entryMatches reports whether any searchable field loosely matches the
// lowercased term. The field set is fixed: title, description, platform,
// tags, category, author.
func entryMatches(e Entry, term string) bool {
	fields := []string{
		e.Video.Title,
		e.Video.Description,
		string(e.Video.Platform),
		e.Category,
		e.Author,
	}
	fields = append(fields, e.Tags...)
	for _, field := range fields {
		if subsequenceMatch(term, strings.ToLower(field)) {
			return true
		}
	}
	return false
}

// subsequenceMatch reports whether every rune of term appears in order
// (not necessarily contiguously) within value. Deliberately permissive;
// this is not edit-distance matching.
func subsequenceMatch(term, value string) bool {
	if term == "" {
		return true
	}
	runes := []rune(term)
	i := 0
	for _, r := range value {
		if r == runes[i] {
			i++
			if i == len(runes) {
				return true
			}
		}
	}
	return false
}

// sortLocked orders entries by the given key. All comparisons use
// sort.SliceStable so entries that compare equal keep their prior relative
// order. An unknown or empty key keeps insertion order.
func (c *Catalog) sortLocked(entries []Entry, key Sort) {
	switch key {
	case SortTitleAsc:
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Video.Title) < strings.ToLower(entries[j].Video.Title)
		})
	case SortTitleDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Video.Title) > strings.ToLower(entries[j].Video.Title)
		})
	case SortNewest:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		})
	case SortDurationAsc:
		sort.SliceStable(entries, func(i, j int) bool {
			return ParseDurationLabel(entries[i].DurationLabel) < ParseDurationLabel(entries[j].DurationLabel)
		})
	case SortDurationDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return ParseDurationLabel(entries[i].DurationLabel) > ParseDurationLabel(entries[j].DurationLabel)
		})
	case SortPopular:
		sort.SliceStable(entries, func(i, j int) bool {
			return c.popularityLocked(entries[i]) > c.popularityLocked(entries[j])
		})
	case SortRecent:
		sort.SliceStable(entries, func(i, j int) bool {
			return c.ledger.rank(entries[i].RecordID) < c.ledger.rank(entries[j].RecordID)
		})
	}
}
