package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const statusError = "error"

// shortenRequest represents the structure for a request to shorten a URL.
type shortenRequest struct {
	URL        string     `json:"url" validate:"required,http_url"`
	CustomCode string     `json:"custom_code,omitempty" validate:"omitempty,min=3,max=20,alphanum"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// shortenResponse represents a newly created or already existing short URL.
type shortenResponse struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	IsCustom    bool       `json:"is_custom"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toShortenResponse(baseURL string, url *entity.URL) shortenResponse {
	return shortenResponse{
		ShortCode:   url.ShortCode,
		ShortURL:    shortURL(baseURL, url.ShortCode),
		OriginalURL: url.OriginalURL,
		IsCustom:    url.IsCustom,
		ExpiresAt:   url.ExpiresAt,
		CreatedAt:   url.CreatedAt,
	}
}

// urlInfoResponse is returned by the info endpoint.
type urlInfoResponse struct {
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toURLInfoResponse(baseURL string, url *entity.URL) urlInfoResponse {
	return urlInfoResponse{
		ShortCode:   url.ShortCode,
		ShortURL:    shortURL(baseURL, url.ShortCode),
		OriginalURL: url.OriginalURL,
		ExpiresAt:   url.ExpiresAt,
	}
}

// urlStatsResponse contains click statistics for a single URL.
type urlStatsResponse struct {
	ShortCode  string     `json:"short_code"`
	ClickCount int64      `json:"click_count"`
	LastClick  *time.Time `json:"last_click"`
}

func toURLStatsResponse(stats *entity.URLStats) urlStatsResponse {
	return urlStatsResponse{
		ShortCode:  stats.ShortCode,
		ClickCount: stats.ClickCount,
		LastClick:  stats.LastClick,
	}
}

type urlAnalytics struct {
	ShortCode      string     `json:"short_code"`
	ShortURL       string     `json:"short_url"`
	OriginalURL    string     `json:"original_url"`
	ClickCount     int64      `json:"click_count"`
	IsCustom       bool       `json:"is_custom"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// analyticsPageResponse is one page of per-URL analytics plus global totals.
type analyticsPageResponse struct {
	TotalURLs     int64          `json:"total_urls"`
	TotalClicks   int64          `json:"total_clicks"`
	AverageClicks float64        `json:"average_clicks"`
	URLs          []urlAnalytics `json:"urls"`
	Page          int            `json:"page"`
	TotalPages    int            `json:"total_pages"`
}

func toAnalyticsPageResponse(baseURL string, page *entity.URLPage) analyticsPageResponse {
	urls := make([]urlAnalytics, 0, len(page.URLs))
	for _, u := range page.URLs {
		urls = append(urls, urlAnalytics{
			ShortCode:      u.ShortCode,
			ShortURL:       shortURL(baseURL, u.ShortCode),
			OriginalURL:    u.OriginalURL,
			ClickCount:     u.ClickCount,
			IsCustom:       u.IsCustom,
			CreatedAt:      u.CreatedAt,
			LastAccessedAt: u.LastAccessedAt,
			ExpiresAt:      u.ExpiresAt,
		})
	}

	return analyticsPageResponse{
		TotalURLs:     page.TotalURLs,
		TotalClicks:   page.TotalClicks,
		AverageClicks: page.AverageClicks,
		URLs:          urls,
		Page:          page.Page,
		TotalPages:    page.TotalPages,
	}
}

type messageResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func shortURL(baseURL, shortCode string) string {
	return baseURL + "/" + shortCode
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Errors     []validationError `json:"errors,omitempty"`
	RetryAfter int               `json:"retry_after,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	urlNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "url not found",
	}

	urlExpiredResponse = errorResponse{
		Status:  statusError,
		Message: "url expired",
	}

	shortCodeTakenResponse = errorResponse{
		Status:  statusError,
		Message: "short code already taken",
	}

	serviceUnavailableResponse = errorResponse{
		Status:  statusError,
		Message: "service temporarily unavailable",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

func rateLimitedResponse(retryAfter int) errorResponse {
	return errorResponse{
		Status:     statusError,
		Message:    "rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "http_url":
		return "must be an absolute http or https url"
	case "min", "max":
		return "must be 3-20 characters long"
	case "alphanum":
		return "must be alphanumeric"
	case "numeric":
		return "must be a number"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		validationErrs = append(validationErrs, validationError{
			Field:   vErr.Field,
			Message: vErr.Reason,
		})
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}
