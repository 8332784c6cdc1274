package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
	"github.com/vadimbarashkov/shortlink/internal/usecase"

	httpMock "github.com/vadimbarashkov/shortlink/mocks/http"
)

const testBaseURL = "http://sho.rt"

var allowed = ratelimit.Decision{Allowed: true, Limit: 60, Remaining: 59}

type HandlersTestSuite struct {
	suite.Suite
	logger         *httplog.Logger
	shortenUCMock  *httpMock.MockShortenUseCase
	redirectUCMock *httpMock.MockRedirectUseCase
	statsUCMock    *httpMock.MockStatsUseCase
	server         *httptest.Server
	e              *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.shortenUCMock = httpMock.NewMockShortenUseCase(suite.T())
	suite.redirectUCMock = httpMock.NewMockRedirectUseCase(suite.T())
	suite.statsUCMock = httpMock.NewMockStatsUseCase(suite.T())

	router := NewRouter(
		suite.logger,
		RouterConfig{BaseURL: testBaseURL + "/"},
		suite.shortenUCMock,
		suite.redirectUCMock,
		suite.statsUCMock,
	)
	suite.server = httptest.NewServer(router)
	suite.T().Cleanup(func() {
		suite.server.Close()
	})

	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.shortenUCMock.AssertExpectations(suite.T())
	suite.redirectUCMock.AssertExpectations(suite.T())
	suite.statsUCMock.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) allowRate() {
	suite.statsUCMock.
		On("CheckRate", mock.Anything).
		Once().
		Return(allowed)
}

func (suite *HandlersTestSuite) TestHealth() {
	suite.Run("success", func() {
		suite.e.GET("/health").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("status", "healthy")
	})
}

func (suite *HandlersTestSuite) TestShortenURL() {
	const path = "/api/v1/shorten"

	suite.Run("empty request body", func() {
		suite.allowRate()

		resp := suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.HasValue("message", "empty request body")
	})

	suite.Run("invalid request body", func() {
		suite.allowRate()

		resp := suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.HasValue("message", "invalid request body")
	})

	suite.Run("invalid url", func() {
		suite.allowRate()

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "invalid url"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.HasValue("status", "error")
		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "url").
			ContainsKey("message")
	})

	suite.Run("invalid custom code", func() {
		suite.allowRate()

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com", "custom_code": "a-b"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "custom_code").
			HasValue("message", "must be alphanumeric")
	})

	suite.Run("reserved custom code", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Shorten", mock.Anything, usecase.ShortenInput{OriginalURL: "https://example.com", CustomCode: "admin"}).
			Once().
			Return(nil, fmt.Errorf("usecase: %w", entity.NewValidationError("custom_code", "reserved word")))

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com", "custom_code": "admin"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "custom_code").
			HasValue("message", "reserved word")
	})

	suite.Run("short code taken", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Shorten", mock.Anything, usecase.ShortenInput{OriginalURL: "https://example.com", CustomCode: "mycode"}).
			Once().
			Return(nil, entity.ErrShortCodeTaken)

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com", "custom_code": "mycode"}).
			Expect().
			Status(http.StatusConflict).
			JSON().Object().
			HasValue("status", "error")
	})

	suite.Run("code space exhausted", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Shorten", mock.Anything, usecase.ShortenInput{OriginalURL: "https://example.com"}).
			Once().
			Return(nil, entity.ErrCodeExhausted)

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusServiceUnavailable).
			JSON().Object().
			HasValue("status", "error")
	})

	suite.Run("server error", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Shorten", mock.Anything, usecase.ShortenInput{OriginalURL: "https://example.com"}).
			Once().
			Return(nil, errors.New("unknown error"))

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			JSON().Object().
			HasValue("status", "error")
	})

	suite.Run("created", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Shorten", mock.Anything, usecase.ShortenInput{OriginalURL: "https://example.com"}).
			Once().
			Return(&usecase.ShortenResult{
				URL: &entity.URL{
					ShortCode:   "abc123",
					OriginalURL: "https://example.com",
					CreatedAt:   time.Now(),
				},
			}, nil)

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusCreated)

		resp.Header("X-RateLimit-Limit").IsEqual("60")
		resp.Header("X-RateLimit-Remaining").IsEqual("59")

		obj := resp.JSON().Object()
		obj.HasValue("short_code", "abc123")
		obj.HasValue("short_url", testBaseURL+"/abc123")
		obj.HasValue("original_url", "https://example.com")
		obj.HasValue("is_custom", false)
		obj.NotContainsKey("expires_at")
		obj.ContainsKey("created_at")
	})

	suite.Run("existing", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Shorten", mock.Anything, usecase.ShortenInput{OriginalURL: "https://example.com"}).
			Once().
			Return(&usecase.ShortenResult{
				URL: &entity.URL{
					ShortCode:   "abc123",
					OriginalURL: "https://example.com",
				},
				Existing: true,
			}, nil)

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("short_code", "abc123")
	})

	suite.Run("rate limited", func() {
		suite.statsUCMock.
			On("CheckRate", mock.Anything).
			Once().
			Return(ratelimit.Decision{Limit: 60, RetryAfter: 1500 * time.Millisecond})

		resp := suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusTooManyRequests)

		resp.Header("Retry-After").IsEqual("2")
		resp.Header("X-RateLimit-Remaining").IsEqual("0")

		obj := resp.JSON().Object()
		obj.HasValue("status", "error")
		obj.HasValue("retry_after", 2)
	})

	suite.Run("rate limited with sub-second wait", func() {
		suite.statsUCMock.
			On("CheckRate", mock.Anything).
			Once().
			Return(ratelimit.Decision{Limit: 60})

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusTooManyRequests).
			Header("Retry-After").IsEqual("1")
	})
}

func (suite *HandlersTestSuite) TestGetURLInfo() {
	const path = "/api/v1/info/%s"

	suite.Run("url not found", func() {
		suite.redirectUCMock.
			On("Resolve", mock.Anything, "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("status", "error")
	})

	suite.Run("url expired", func() {
		suite.redirectUCMock.
			On("Resolve", mock.Anything, "abc123").
			Once().
			Return(nil, entity.ErrURLExpired)

		suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusGone)
	})

	suite.Run("store unavailable", func() {
		suite.redirectUCMock.
			On("Resolve", mock.Anything, "abc123").
			Once().
			Return(nil, fmt.Errorf("postgres: %w", entity.ErrStoreUnavailable))

		suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusServiceUnavailable)
	})

	suite.Run("success", func() {
		suite.redirectUCMock.
			On("Resolve", mock.Anything, "abc123").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc123",
				OriginalURL: "https://example.com",
			}, nil)

		resp := suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("short_code", "abc123")
		resp.HasValue("short_url", testBaseURL+"/abc123")
		resp.HasValue("original_url", "https://example.com")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	suite.Run("url not found", func() {
		suite.redirectUCMock.
			On("Redirect", mock.Anything, "abc123", mock.Anything).
			Once().
			Return("", entity.ErrURLNotFound)

		suite.e.GET("/abc123").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("url expired", func() {
		suite.redirectUCMock.
			On("Redirect", mock.Anything, "abc123", mock.Anything).
			Once().
			Return("", entity.ErrURLExpired)

		suite.e.GET("/abc123").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusGone)
	})

	suite.Run("success", func() {
		suite.redirectUCMock.
			On("Redirect", mock.Anything, "abc123", mock.MatchedBy(func(meta usecase.AccessMeta) bool {
				return meta.UserAgent == "test-agent" &&
					meta.Referrer == "https://ref.example.com" &&
					meta.IPAddress != ""
			})).
			Once().
			Return("https://example.com/landing", nil)

		suite.e.GET("/abc123").
			WithHeader("User-Agent", "test-agent").
			WithHeader("Referer", "https://ref.example.com").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusTemporaryRedirect).
			Header("Location").IsEqual("https://example.com/landing")
	})
}

func (suite *HandlersTestSuite) TestDeleteURL() {
	const path = "/%s"

	suite.Run("url not found", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Delete", mock.Anything, "abc123").
			Once().
			Return(entity.ErrURLNotFound)

		suite.e.DELETE(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("status", "error")
	})

	suite.Run("server error", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Delete", mock.Anything, "abc123").
			Once().
			Return(errors.New("unknown error"))

		suite.e.DELETE(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusInternalServerError)
	})

	suite.Run("rate limited", func() {
		suite.statsUCMock.
			On("CheckRate", mock.Anything).
			Once().
			Return(ratelimit.Decision{Limit: 60, RetryAfter: 30 * time.Second})

		suite.e.DELETE(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusTooManyRequests).
			Header("Retry-After").IsEqual("30")
	})

	suite.Run("success", func() {
		suite.allowRate()
		suite.shortenUCMock.
			On("Delete", mock.Anything, "abc123").
			Once().
			Return(nil)

		suite.e.DELETE(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusNoContent)
	})
}

func (suite *HandlersTestSuite) TestGetURLStats() {
	const path = "/api/v1/analytics/%s"

	suite.Run("url not found", func() {
		suite.statsUCMock.
			On("Analytics", mock.Anything, "abc123").
			Once().
			Return(nil, entity.ErrURLNotFound)

		suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusNotFound)
	})

	suite.Run("success", func() {
		lastClick := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		suite.statsUCMock.
			On("Analytics", mock.Anything, "abc123").
			Once().
			Return(&entity.URLStats{
				ShortCode:  "abc123",
				ClickCount: 3,
				LastClick:  &lastClick,
			}, nil)

		resp := suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("short_code", "abc123")
		resp.HasValue("click_count", 3)
		resp.HasValue("last_click", "2024-05-01T12:00:00Z")
	})

	suite.Run("never clicked", func() {
		suite.statsUCMock.
			On("Analytics", mock.Anything, "abc123").
			Once().
			Return(&entity.URLStats{ShortCode: "abc123"}, nil)

		resp := suite.e.GET(fmt.Sprintf(path, "abc123")).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("click_count", 0)
		resp.Value("last_click").IsNull()
	})
}

func (suite *HandlersTestSuite) TestListURLStats() {
	const path = "/api/v1/analytics"

	suite.Run("invalid page", func() {
		resp := suite.e.GET(path).
			WithQuery("page", "abc").
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object()

		resp.Value("errors").Array().Value(0).Object().
			HasValue("field", "page")
	})

	suite.Run("invalid limit", func() {
		suite.e.GET(path).
			WithQuery("limit", "1.5").
			Expect().
			Status(http.StatusBadRequest)
	})

	suite.Run("store unavailable", func() {
		suite.statsUCMock.
			On("AnalyticsPage", mock.Anything, 1, usecase.DefaultPageSize).
			Once().
			Return(nil, entity.ErrStoreUnavailable)

		suite.e.GET(path).
			Expect().
			Status(http.StatusServiceUnavailable)
	})

	suite.Run("success", func() {
		suite.statsUCMock.
			On("AnalyticsPage", mock.Anything, 2, 1).
			Once().
			Return(&entity.URLPage{
				URLs: []*entity.URL{
					{ShortCode: "abc123", OriginalURL: "https://example.com", ClickCount: 4},
				},
				TotalURLs:     2,
				TotalClicks:   6,
				AverageClicks: 3,
				Page:          2,
				TotalPages:    2,
			}, nil)

		resp := suite.e.GET(path).
			WithQuery("page", 2).
			WithQuery("limit", 1).
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("total_urls", 2)
		resp.HasValue("total_clicks", 6)
		resp.HasValue("average_clicks", 3)
		resp.HasValue("page", 2)
		resp.HasValue("total_pages", 2)

		url := resp.Value("urls").Array().Value(0).Object()
		url.HasValue("short_code", "abc123")
		url.HasValue("short_url", testBaseURL+"/abc123")
		url.HasValue("click_count", 4)
	})
}

func (suite *HandlersTestSuite) TestCache() {
	suite.Run("stats", func() {
		suite.statsUCMock.
			On("CacheStats").
			Once().
			Return(cache.Stats{Size: 1, Capacity: 10, Hits: 3, Misses: 1, HitRate: 0.75})

		resp := suite.e.GET("/api/v1/cache/stats").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("size", 1)
		resp.HasValue("capacity", 10)
		resp.HasValue("hit_rate", 0.75)
	})

	suite.Run("clear", func() {
		suite.statsUCMock.
			On("ClearCache").
			Once().
			Return()

		resp := suite.e.POST("/api/v1/cache/clear").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("message", "cache cleared")
		resp.ContainsKey("timestamp")
	})
}

func (suite *HandlersTestSuite) TestRateLimitStats() {
	suite.Run("success", func() {
		suite.statsUCMock.
			On("RateLimitStats").
			Once().
			Return(ratelimit.Stats{Limit: 60, WindowSeconds: 60, ActiveKeys: 2})

		resp := suite.e.GET("/api/v1/rate-limit/stats").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		resp.HasValue("limit", 60)
		resp.HasValue("window_seconds", 60)
		resp.HasValue("active_keys", 2)
	})
}

func TestURLHandler(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
