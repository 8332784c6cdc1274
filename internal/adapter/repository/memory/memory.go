// Package memory implements the URL store in process memory. It backs the
// "memory" storage driver and gives tests a real store without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type record struct {
	url    entity.URL
	seq    uint64
	clicks []entity.Click
}

// URLRepository is safe for concurrent use. Every method holds one mutex
// for its whole duration, so Create is an atomic check and insert.
type URLRepository struct {
	mu      sync.RWMutex
	records map[string]*record
	seq     uint64
	now     func() time.Time
}

type Option func(*URLRepository)

// WithClock overrides the clock used for creation timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(r *URLRepository) {
		r.now = now
	}
}

func NewURLRepository(opts ...Option) *URLRepository {
	r := &URLRepository{
		records: make(map[string]*record),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *URLRepository) Create(_ context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.Create"

	if err := url.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[url.ShortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	r.seq++
	rec := &record{
		url: entity.URL{
			ShortCode:   url.ShortCode,
			OriginalURL: url.OriginalURL,
			IsCustom:    url.IsCustom,
			ExpiresAt:   copyTime(url.ExpiresAt),
			CreatedAt:   r.now(),
		},
		seq: r.seq,
	}
	r.records[url.ShortCode] = rec

	return snapshot(rec), nil
}

func (r *URLRepository) FindByCode(_ context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.FindByCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return snapshot(rec), nil
}

// FindByURL returns the first assigned code of a live record for originalURL.
func (r *URLRepository) FindByURL(_ context.Context, originalURL string) (string, error) {
	const op = "adapter.repository.memory.URLRepository.FindByURL"

	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()

	var first *record
	for _, rec := range r.records {
		if rec.url.OriginalURL != originalURL || rec.url.Expired(now) {
			continue
		}
		if first == nil || rec.seq < first.seq {
			first = rec
		}
	}

	if first == nil {
		return "", fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return first.url.ShortCode, nil
}

func (r *URLRepository) RecordClick(_ context.Context, click *entity.Click) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[click.ShortCode]
	if !ok {
		return nil
	}

	c := *click
	if c.ClickedAt.IsZero() {
		c.ClickedAt = r.now()
	}

	rec.url.ClickCount++
	rec.url.LastAccessedAt = &c.ClickedAt
	rec.clicks = append(rec.clicks, c)

	return nil
}

// Clicks returns the click history of shortCode in insertion order.
func (r *URLRepository) Clicks(shortCode string) []entity.Click {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[shortCode]
	if !ok {
		return nil
	}

	return append([]entity.Click(nil), rec.clicks...)
}

func (r *URLRepository) Delete(_ context.Context, shortCode string) error {
	const op = "adapter.repository.memory.URLRepository.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[shortCode]; !ok {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	delete(r.records, shortCode)
	return nil
}

func (r *URLRepository) ListPaged(_ context.Context, page, pageSize int) (*entity.URLPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*record, 0, len(r.records))
	var totalClicks int64
	for _, rec := range r.records {
		all = append(all, rec)
		totalClicks += rec.url.ClickCount
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.url.ClickCount != b.url.ClickCount {
			return a.url.ClickCount > b.url.ClickCount
		}
		if !a.url.CreatedAt.Equal(b.url.CreatedAt) {
			return a.url.CreatedAt.After(b.url.CreatedAt)
		}
		return a.seq > b.seq
	})

	var urls []*entity.URL
	for i := (page - 1) * pageSize; i >= 0 && i < len(all) && len(urls) < pageSize; i++ {
		urls = append(urls, snapshot(all[i]))
	}

	return entity.NewURLPage(urls, int64(len(all)), totalClicks, page, pageSize), nil
}

func (r *URLRepository) DeleteExpired(_ context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var codes []string
	for code, rec := range r.records {
		if rec.url.Expired(now) {
			delete(r.records, code)
			codes = append(codes, code)
		}
	}

	sort.Strings(codes)
	return codes, nil
}

func snapshot(rec *record) *entity.URL {
	u := rec.url
	u.ExpiresAt = copyTime(rec.url.ExpiresAt)
	u.LastAccessedAt = copyTime(rec.url.LastAccessedAt)
	return &u
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
