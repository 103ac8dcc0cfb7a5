package catalog

import "fmt"

// Text field length limits applied at admission time.
const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
	MaxTagLength         = 50
	MaxCategoryLength    = 100
	MaxAuthorLength      = 200
	MaxURLLength         = 2048
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func ValidateTitle(s string) string       { return checkLen(s, MaxTitleLength, "title") }
func ValidateDescription(s string) string { return checkLen(s, MaxDescriptionLength, "description") }
func ValidateTag(s string) string         { return checkLen(s, MaxTagLength, "tag") }
func ValidateCategory(s string) string    { return checkLen(s, MaxCategoryLength, "category") }
func ValidateAuthor(s string) string      { return checkLen(s, MaxAuthorLength, "author") }
func ValidateURL(s string) string         { return checkLen(s, MaxURLLength, "URL") }

// ValidateEntry returns the first field problem found, or "" when the
// entry is acceptable.
func ValidateEntry(e Entry) string {
	if msg := ValidateTitle(e.Video.Title); msg != "" {
		return msg
	}
	if msg := ValidateDescription(e.Video.Description); msg != "" {
		return msg
	}
	if msg := ValidateURL(e.Video.OriginalURL); msg != "" {
		return msg
	}
	if msg := ValidateCategory(e.Category); msg != "" {
		return msg
	}
	if msg := ValidateAuthor(e.Author); msg != "" {
		return msg
	}
	for _, tag := range e.Tags {
		if msg := ValidateTag(tag); msg != "" {
			return msg
		}
	}
	return ""
}
