package http

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

type shortenUseCase interface {
	Shorten(ctx context.Context, in usecase.ShortenInput) (*usecase.ShortenResult, error)
	Delete(ctx context.Context, shortCode string) error
}

type redirectUseCase interface {
	Resolve(ctx context.Context, shortCode string) (*entity.URL, error)
	Redirect(ctx context.Context, shortCode string, meta usecase.AccessMeta) (string, error)
}

type statsUseCase interface {
	Analytics(ctx context.Context, shortCode string) (*entity.URLStats, error)
	AnalyticsPage(ctx context.Context, page, limit int) (*entity.URLPage, error)
	CacheStats() cache.Stats
	ClearCache()
	CheckRate(key string) ratelimit.Decision
	RateLimitStats() ratelimit.Stats
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// renderError maps use case errors onto HTTP statuses. Unexpected errors are
// attached to the request log entry.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *entity.ValidationError

	switch {
	case errors.As(err, &vErr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
	case errors.Is(err, entity.ErrURLNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, urlNotFoundResponse)
	case errors.Is(err, entity.ErrURLExpired):
		render.Status(r, http.StatusGone)
		render.JSON(w, r, urlExpiredResponse)
	case errors.Is(err, entity.ErrShortCodeTaken):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, shortCodeTakenResponse)
	case errors.Is(err, entity.ErrCodeExhausted), errors.Is(err, entity.ErrStoreUnavailable):
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, serviceUnavailableResponse)
	default:
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
	}
}

// clientIP returns the client address. RemoteAddr is already rewritten by
// the RealIP middleware when proxy headers are present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimit rejects requests over the per-client limit with 429 and a
// Retry-After header in whole seconds.
func rateLimit(statsUC statsUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := statsUC.CheckRate(clientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				retryAfter := int(math.Ceil(d.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, rateLimitedResponse(retryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
