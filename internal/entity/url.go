// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL, the Click
// struct recorded on every redirect, the aggregates served by analytics,
// and the error taxonomy shared by every layer.
package entity

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// URL represents a shortened URL.
type URL struct {
	ShortCode      string     // ShortCode is the immutable code the URL is reachable under.
	OriginalURL    string     // OriginalURL is the full URL that the short code resolves to.
	ClickCount     int64      // ClickCount is the number of recorded redirects. It only grows.
	IsCustom       bool       // IsCustom reports whether the code was supplied by the user.
	ExpiresAt      *time.Time // ExpiresAt is the moment the URL stops resolving, nil for never.
	CreatedAt      time.Time  // CreatedAt is the timestamp when the URL was created.
	LastAccessedAt *time.Time // LastAccessedAt is the timestamp of the last recorded click.
}

// Expired reports whether the URL is logically gone at the given moment.
// An expired URL must be treated as absent by every read even if it has not
// been physically deleted yet.
func (u *URL) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && !now.Before(*u.ExpiresAt)
}

// Validate checks that the record can be stored: the short code is set and
// the original URL is an absolute http or https URL.
func (u *URL) Validate() error {
	if err := validate.Var(u.ShortCode, "required"); err != nil {
		return NewValidationError("short_code", "must not be empty")
	}

	return ValidateOriginalURL(u.OriginalURL)
}

// ValidateOriginalURL reports a *ValidationError unless raw is an absolute
// http or https URL.
func ValidateOriginalURL(raw string) error {
	if err := validate.Var(raw, "required,http_url"); err != nil {
		return NewValidationError("url", "must be an absolute http or https URL")
	}

	return nil
}

// Click is a single recorded redirect. Clicks are append-only and are only
// removed together with the URL they belong to.
type Click struct {
	ShortCode string
	ClickedAt time.Time
	UserAgent string
	IPAddress string
	Referrer  string
}

// URLStats contains click statistics for a single shortened URL.
type URLStats struct {
	ShortCode  string
	ClickCount int64
	LastClick  *time.Time
}

// URLPage is one page of URLs ordered by click count together with totals
// computed over every stored URL.
type URLPage struct {
	URLs          []*URL
	TotalURLs     int64
	TotalClicks   int64
	AverageClicks float64
	Page          int
	TotalPages    int
}

// NewURLPage builds a page and derives the average and page count from the
// totals.
func NewURLPage(urls []*URL, totalURLs, totalClicks int64, page, pageSize int) *URLPage {
	p := &URLPage{
		URLs:        urls,
		TotalURLs:   totalURLs,
		TotalClicks: totalClicks,
		Page:        page,
	}

	if totalURLs > 0 {
		p.AverageClicks = float64(totalClicks) / float64(totalURLs)
	}
	if pageSize > 0 {
		p.TotalPages = int((totalURLs + int64(pageSize) - 1) / int64(pageSize))
	}

	return p
}
