package store

import (
	"fmt"
	"time"

	"github.com/sihabxd/OnlineHub/catalog"
	"github.com/sihabxd/OnlineHub/classify"
)

// EntryFromRecord maps a store record to a catalog entry. A record without
// a URL violates the schema; everything else is defaulted leniently so one
// sloppy row does not take down ingestion.
func EntryFromRecord(r Record) (catalog.Entry, error) {
	if r.ID == "" {
		return catalog.Entry{}, fmt.Errorf("%w: record without id", ErrMalformedResponse)
	}
	if r.Fields.URL == "" {
		return catalog.Entry{}, fmt.Errorf("%w: record %s without url", ErrMalformedResponse, r.ID)
	}

	candidates := r.Fields.EmbedURLs
	if len(candidates) == 0 {
		candidates = []string{r.Fields.URL}
	}

	status := catalog.StatusActive
	if r.Fields.Status == string(catalog.StatusInactive) {
		status = catalog.StatusInactive
	}

	duration := r.Fields.Duration
	if duration == "" {
		duration = catalog.DurationUnknown
	}

	createdAt, err := time.Parse(time.RFC3339, r.Fields.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	viewCount := r.Fields.ViewCount
	if viewCount < 0 {
		viewCount = 0
	}

	return catalog.Entry{
		RecordID: r.ID,
		Video: classify.Video{
			Platform:        classify.ParsePlatform(r.Fields.Type),
			ExternalID:      r.Fields.VideoID,
			EmbedCandidates: candidates,
			ThumbnailURL:    r.Fields.Thumbnail,
			Title:           r.Fields.Title,
			Description:     r.Fields.Description,
			OriginalURL:     r.Fields.URL,
		},
		DurationLabel: duration,
		CreatedAt:     createdAt,
		ViewCount:     viewCount,
		Tags:          r.Fields.Tags,
		Category:      r.Fields.Category,
		Author:        r.Fields.Author,
		Status:        status,
	}, nil
}

// FieldsFromEntry maps a catalog entry back to store fields for insertion.
func FieldsFromEntry(e catalog.Entry) Fields {
	createdAt := ""
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return Fields{
		VideoID:     e.Video.ExternalID,
		Title:       e.Video.Title,
		Description: e.Video.Description,
		Type:        string(e.Video.Platform),
		Duration:    e.DurationLabel,
		URL:         e.Video.OriginalURL,
		EmbedURLs:   e.Video.EmbedCandidates,
		Thumbnail:   e.Video.ThumbnailURL,
		CreatedAt:   createdAt,
		Status:      string(e.Status),
		ViewCount:   e.ViewCount,
		Tags:        e.Tags,
		Category:    e.Category,
		Author:      e.Author,
	}
}
