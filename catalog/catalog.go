// Package catalog holds the in-memory collection of known videos and its
// query surface: platform filtering, loose text search, and stable
// multi-key sorting. A bounded recently-played ledger feeds the popularity
// and recency sorts. Renderers subscribe to change notifications instead of
// reaching into catalog state.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sihabxd/OnlineHub/classify"
)

// Status marks whether an entry participates in catalog views.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// DurationUnknown is the sentinel label for entries whose duration was
// never probed. It parses as zero seconds.
const DurationUnknown = "unknown"

// Entry is a classified video plus its store-assigned record identity and
// catalog metadata. RecordID is always assigned by the record store; the
// catalog never invents one.
type Entry struct {
	RecordID      string
	Video         classify.Video
	DurationLabel string
	CreatedAt     time.Time
	ViewCount     int
	Tags          []string
	Category      string
	Author        string
	Status        Status
}

// ParseDurationLabel converts a "mm:ss" or "hh:mm:ss" label to seconds.
// The unknown sentinel and anything unparseable yield zero.
func ParseDurationLabel(label string) int {
	label = strings.TrimSpace(label)
	if label == "" || label == DurationUnknown {
		return 0
	}
	parts := strings.Split(label, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// FormatDuration renders seconds as mm:ss, or hh:mm:ss from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		return DurationUnknown
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Catalog is the shared entry set. All access is mutex-guarded; change
// subscribers are invoked outside the lock, after each mutation.
type Catalog struct {
	mu      sync.Mutex
	entries []Entry
	byID    map[string]int
	ledger  *ledger
	subs    []func()
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byID:   make(map[string]int),
		ledger: newLedger(ledgerCapacity),
	}
}

// Subscribe registers a callback fired after every catalog mutation.
// Callbacks run synchronously on the mutating goroutine.
func (c *Catalog) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Catalog) notifyLocked() []func() {
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	return subs
}

func fire(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

// SetAll replaces the full entry set. Inactive entries are dropped here so
// they never appear in any view.
func (c *Catalog) SetAll(entries []Entry) {
	c.mu.Lock()
	c.entries = c.entries[:0]
	c.byID = make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Status == StatusInactive {
			continue
		}
		if _, exists := c.byID[e.RecordID]; exists {
			continue
		}
		c.byID[e.RecordID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	subs := c.notifyLocked()
	c.mu.Unlock()
	fire(subs)
}

// Add appends one entry. Inactive entries and duplicate record IDs are
// ignored.
func (c *Catalog) Add(e Entry) {
	if e.Status == StatusInactive {
		return
	}
	c.mu.Lock()
	if _, exists := c.byID[e.RecordID]; exists {
		c.mu.Unlock()
		return
	}
	c.byID[e.RecordID] = len(c.entries)
	c.entries = append(c.entries, e)
	subs := c.notifyLocked()
	c.mu.Unlock()
	fire(subs)
}

// Get returns the entry with the given record ID.
func (c *Catalog) Get(recordID string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byID[recordID]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of the current entry set in insertion order.
func (c *Catalog) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports the number of active entries.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MarkPlayed records a playback of the entry in the recently-played
// ledger: the record moves to the front and its play count increments.
func (c *Catalog) MarkPlayed(recordID string) {
	c.mu.Lock()
	if _, ok := c.byID[recordID]; !ok {
		c.mu.Unlock()
		return
	}
	c.ledger.touch(recordID)
	subs := c.notifyLocked()
	c.mu.Unlock()
	fire(subs)
}

// PopularThreshold is the popularity score at or above which the UI shows
// its "popular" indicator.
const PopularThreshold = 100

// Popularity computes viewCount + 10 * recentPlayCount for an entry.
func (c *Catalog) Popularity(recordID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byID[recordID]
	if !ok {
		return 0
	}
	return c.entries[i].ViewCount + 10*c.ledger.plays(recordID)
}

func (c *Catalog) popularityLocked(e Entry) int {
	return e.ViewCount + 10*c.ledger.plays(e.RecordID)
}
