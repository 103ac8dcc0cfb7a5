package catalog

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sihabxd/OnlineHub/classify"
)

func makeEntry(id, title string, platform classify.Platform) Entry {
	return Entry{
		RecordID: id,
		Video: classify.Video{
			Platform:    platform,
			ExternalID:  "x-" + id,
			Title:       title,
			Description: "desc of " + title,
			OriginalURL: "https://example.com/" + id,
		},
		DurationLabel: DurationUnknown,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        StatusActive,
	}
}

func TestParseDurationLabel(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"0:30", 30},
		{"2:05", 125},
		{"1:00:00", 3600},
		{"1:02:03", 3723},
		{DurationUnknown, 0},
		{"", 0},
		{"garbage", 0},
		{"1:2:3:4", 0},
		{"-1:30", 0},
	}
	for _, tt := range tests {
		if got := ParseDurationLabel(tt.label); got != tt.want {
			t.Errorf("ParseDurationLabel(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(125); got != "2:05" {
		t.Errorf("FormatDuration(125) = %q", got)
	}
	if got := FormatDuration(3723); got != "1:02:03" {
		t.Errorf("FormatDuration(3723) = %q", got)
	}
	if got := FormatDuration(-1); got != DurationUnknown {
		t.Errorf("FormatDuration(-1) = %q", got)
	}
}

func TestSetAllExcludesInactive(t *testing.T) {
	c := New()
	active := makeEntry("a", "Active", classify.PlatformYouTube)
	inactive := makeEntry("b", "Hidden", classify.PlatformYouTube)
	inactive.Status = StatusInactive

	c.SetAll([]Entry{active, inactive})
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("inactive entry must be excluded from every view")
	}
	if got := c.Query(Filter{}); len(got) != 1 || got[0].RecordID != "a" {
		t.Errorf("Query returned %v", got)
	}
}

func TestAddIgnoresDuplicateRecordID(t *testing.T) {
	c := New()
	c.Add(makeEntry("a", "First", classify.PlatformVimeo))
	c.Add(makeEntry("a", "Second", classify.PlatformVimeo))
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	e, _ := c.Get("a")
	if e.Video.Title != "First" {
		t.Errorf("duplicate add should not replace, got title %q", e.Video.Title)
	}
}

func TestQueryPlatformFilter(t *testing.T) {
	c := New()
	c.SetAll([]Entry{
		makeEntry("a", "One", classify.PlatformYouTube),
		makeEntry("b", "Two", classify.PlatformVimeo),
		makeEntry("c", "Three", classify.PlatformYouTube),
	})
	got := c.Query(Filter{Platform: classify.PlatformYouTube})
	if len(got) != 2 || got[0].RecordID != "a" || got[1].RecordID != "c" {
		t.Errorf("platform filter returned %v", got)
	}
}

func TestQuerySubsequenceSearch(t *testing.T) {
	c := New()
	c.SetAll([]Entry{
		makeEntry("a", "Golang Tutorial", classify.PlatformYouTube),
		makeEntry("b", "Cooking Show", classify.PlatformVimeo),
	})

	// "gltl" is a subsequence of "golang tutorial" but not contiguous.
	got := c.Query(Filter{Search: "gltl"})
	if len(got) != 1 || got[0].RecordID != "a" {
		t.Errorf("subsequence search returned %v", got)
	}

	// Single-character terms are below the threshold and match everything.
	if got := c.Query(Filter{Search: "q"}); len(got) != 2 {
		t.Errorf("below-threshold search returned %d entries, want 2", len(got))
	}

	if got := c.Query(Filter{Search: "zz_no_such_term_zz"}); len(got) != 0 {
		t.Errorf("impossible term returned %d entries, want 0", len(got))
	}
}

func TestQuerySearchesDeclaredFields(t *testing.T) {
	c := New()
	e := makeEntry("a", "Untitled", classify.PlatformTwitch)
	e.Tags = []string{"speedrun"}
	e.Category = "gaming"
	e.Author = "Maria"
	c.SetAll([]Entry{e, makeEntry("b", "Other", classify.PlatformVimeo)})

	for _, term := range []string{"speedrun", "gaming", "maria", "twitch"} {
		got := c.Query(Filter{Search: term})
		if len(got) != 1 || got[0].RecordID != "a" {
			t.Errorf("search %q returned %v, want entry a", term, got)
		}
	}
}

func TestQuerySortKeys(t *testing.T) {
	c := New()
	a := makeEntry("a", "Banana", classify.PlatformYouTube)
	a.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a.DurationLabel = "5:00"
	a.ViewCount = 10
	b := makeEntry("b", "apple", classify.PlatformYouTube)
	b.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.DurationLabel = "1:00:00"
	b.ViewCount = 200
	d := makeEntry("d", "Cherry", classify.PlatformYouTube)
	d.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	d.DurationLabel = DurationUnknown
	d.ViewCount = 50
	c.SetAll([]Entry{a, b, d})

	order := func(f Filter) string {
		var ids []string
		for _, e := range c.Query(f) {
			ids = append(ids, e.RecordID)
		}
		return strings.Join(ids, ",")
	}

	if got := order(Filter{Sort: SortTitleAsc}); got != "b,a,d" {
		t.Errorf("title asc = %s", got)
	}
	if got := order(Filter{Sort: SortTitleDesc}); got != "d,a,b" {
		t.Errorf("title desc = %s", got)
	}
	if got := order(Filter{Sort: SortNewest}); got != "a,d,b" {
		t.Errorf("newest = %s", got)
	}
	if got := order(Filter{Sort: SortOldest}); got != "b,d,a" {
		t.Errorf("oldest = %s", got)
	}
	// Unknown duration sorts as zero.
	if got := order(Filter{Sort: SortDurationAsc}); got != "d,a,b" {
		t.Errorf("duration asc = %s", got)
	}
	if got := order(Filter{Sort: SortDurationDesc}); got != "b,a,d" {
		t.Errorf("duration desc = %s", got)
	}
	if got := order(Filter{Sort: SortPopular}); got != "b,d,a" {
		t.Errorf("popular = %s", got)
	}
}

func TestQuerySortStability(t *testing.T) {
	c := New()
	var entries []Entry
	for i := 0; i < 10; i++ {
		e := makeEntry(fmt.Sprintf("id%d", i), "Same Title", classify.PlatformYouTube)
		entries = append(entries, e)
	}
	c.SetAll(entries)

	for _, key := range []Sort{SortTitleAsc, SortNewest, SortDurationAsc, SortPopular, SortRecent} {
		got := c.Query(Filter{Sort: key})
		for i, e := range got {
			want := fmt.Sprintf("id%d", i)
			if e.RecordID != want {
				t.Errorf("sort %q not stable: position %d = %s, want %s", key, i, e.RecordID, want)
				break
			}
		}
	}
}

func TestRecentlyPlayedLedger(t *testing.T) {
	c := New()
	c.SetAll([]Entry{
		makeEntry("a", "A", classify.PlatformYouTube),
		makeEntry("b", "B", classify.PlatformYouTube),
		makeEntry("c", "C", classify.PlatformYouTube),
	})

	c.MarkPlayed("a")
	c.MarkPlayed("b")
	c.MarkPlayed("a") // replay moves to front, no duplicate

	got := c.Query(Filter{Sort: SortRecent})
	if got[0].RecordID != "a" || got[1].RecordID != "b" || got[2].RecordID != "c" {
		t.Errorf("recent order = %s,%s,%s", got[0].RecordID, got[1].RecordID, got[2].RecordID)
	}

	// Two plays of "a" contribute 10 each to popularity.
	if p := c.Popularity("a"); p != 20 {
		t.Errorf("popularity of a = %d, want 20", p)
	}
	if p := c.Popularity("c"); p != 0 {
		t.Errorf("popularity of c = %d, want 0", p)
	}
}

func TestLedgerCapacity(t *testing.T) {
	l := newLedger(3)
	for _, id := range []string{"a", "b", "c", "d"} {
		l.touch(id)
	}
	if len(l.records) != 3 {
		t.Fatalf("ledger grew to %d, capacity 3", len(l.records))
	}
	if l.plays("a") != 0 {
		t.Error("oldest record should have been evicted")
	}
	if l.rank("d") != 0 {
		t.Errorf("most recent rank = %d, want 0", l.rank("d"))
	}
}

func TestSubscribeFiresOnMutation(t *testing.T) {
	c := New()
	fired := 0
	c.Subscribe(func() { fired++ })

	c.SetAll([]Entry{makeEntry("a", "A", classify.PlatformYouTube)})
	c.Add(makeEntry("b", "B", classify.PlatformYouTube))
	c.MarkPlayed("a")

	if fired != 3 {
		t.Errorf("subscriber fired %d times, want 3", fired)
	}
}

func TestValidateEntry(t *testing.T) {
	e := makeEntry("a", "ok", classify.PlatformYouTube)
	if msg := ValidateEntry(e); msg != "" {
		t.Errorf("valid entry rejected: %s", msg)
	}
	e.Video.Title = strings.Repeat("x", MaxTitleLength+1)
	if msg := ValidateEntry(e); msg == "" {
		t.Error("overlong title should be rejected")
	}
	e = makeEntry("a", "ok", classify.PlatformYouTube)
	e.Tags = []string{strings.Repeat("t", MaxTagLength+1)}
	if msg := ValidateEntry(e); msg == "" {
		t.Error("overlong tag should be rejected")
	}
}
