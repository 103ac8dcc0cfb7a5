package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sihabxd/OnlineHub/catalog"
	"github.com/sihabxd/OnlineHub/classify"
)

func openMemory(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleEntry(id string) catalog.Entry {
	return catalog.Entry{
		RecordID: id,
		Video: classify.Video{
			Platform:        classify.PlatformYouTube,
			ExternalID:      "yt-" + id,
			EmbedCandidates: []string{"https://www.youtube.com/embed/" + id, "https://youtu.be/" + id},
			ThumbnailURL:    "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
			Title:           "Title " + id,
			Description:     "Description " + id,
			OriginalURL:     "https://youtu.be/" + id,
		},
		DurationLabel: "4:20",
		CreatedAt:     time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC),
		ViewCount:     12,
		Tags:          []string{"go", "talks"},
		Category:      "tech",
		Author:        "Ada",
		Status:        catalog.StatusActive,
	}
}

func TestReplaceAllAndLoadRoundTrip(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	want := []catalog.Entry{sampleEntry("a"), sampleEntry("b")}
	if err := c.ReplaceAll(ctx, want); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(got))
	}
	e := got[0]
	if e.RecordID != "a" || e.Video.Platform != classify.PlatformYouTube {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Video.EmbedCandidates) != 2 {
		t.Errorf("embed candidates = %v", e.Video.EmbedCandidates)
	}
	if e.Tags[0] != "go" || e.Category != "tech" || e.Author != "Ada" {
		t.Errorf("metadata lost: %+v", e)
	}
	if !e.CreatedAt.Equal(time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)) {
		t.Errorf("createdAt = %v", e.CreatedAt)
	}
}

func TestReplaceAllClearsPriorEntries(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	if err := c.ReplaceAll(ctx, []catalog.Entry{sampleEntry("old")}); err != nil {
		t.Fatal(err)
	}
	if err := c.ReplaceAll(ctx, []catalog.Entry{sampleEntry("new")}); err != nil {
		t.Fatal(err)
	}
	got, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RecordID != "new" {
		t.Errorf("entries = %v", got)
	}
}

func TestPutUpserts(t *testing.T) {
	c := openMemory(t)
	ctx := context.Background()

	e := sampleEntry("a")
	if err := c.Put(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.ViewCount = 99
	if err := c.Put(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ViewCount != 99 {
		t.Errorf("entries = %v", got)
	}
}

func TestLoadEmptyCache(t *testing.T) {
	c := openMemory(t)
	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("Load on empty cache: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("entries = %v, want none", got)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer c.Close()

	if err := c.Put(context.Background(), sampleEntry("a")); err != nil {
		t.Fatal(err)
	}
}
