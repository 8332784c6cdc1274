package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

func storeError(op, msg string, err error) error {
	return fmt.Errorf("%s: %s: %w: %w", op, msg, entity.ErrStoreUnavailable, err)
}

type urlDB struct {
	ShortCode      string       `db:"short_code"`
	OriginalURL    string       `db:"original_url"`
	ClickCount     int64        `db:"click_count"`
	IsCustom       bool         `db:"is_custom"`
	ExpiresAt      sql.NullTime `db:"expires_at"`
	CreatedAt      time.Time    `db:"created_at"`
	LastAccessedAt sql.NullTime `db:"last_accessed_at"`
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ShortCode:      u.ShortCode,
		OriginalURL:    u.OriginalURL,
		ClickCount:     u.ClickCount,
		IsCustom:       u.IsCustom,
		ExpiresAt:      nullTimePtr(u.ExpiresAt),
		CreatedAt:      u.CreatedAt,
		LastAccessedAt: nullTimePtr(u.LastAccessedAt),
	}
}

type totalsDB struct {
	TotalURLs   int64 `db:"total_urls"`
	TotalClicks int64 `db:"total_clicks"`
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Create claims url.ShortCode with a single conditional insert, so of any
// number of concurrent callers with the same code exactly one succeeds.
func (r *URLRepository) Create(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Create"
	const query = `INSERT INTO urls(short_code, original_url, is_custom, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (short_code) DO NOTHING
		RETURNING *`

	if err := url.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var created urlDB

	if err := r.db.GetContext(ctx, &created, query, url.ShortCode, url.OriginalURL, url.IsCustom, url.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, storeError(op, "failed to insert into urls table", err)
	}

	return created.toEntity(), nil
}

func (r *URLRepository) FindByCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.FindByCode"
	const query = `SELECT * FROM urls WHERE short_code = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, storeError(op, "failed to get row from urls table", err)
	}

	return url.toEntity(), nil
}

// FindByURL returns the first assigned code of a live record for originalURL.
func (r *URLRepository) FindByURL(ctx context.Context, originalURL string) (string, error) {
	const op = "adapter.repository.postgres.URLRepository.FindByURL"
	const query = `SELECT short_code FROM urls
		WHERE original_url = $1 AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at ASC, short_code ASC
		LIMIT 1`

	var shortCode string

	if err := r.db.GetContext(ctx, &shortCode, query, originalURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return "", storeError(op, "failed to get row from urls table", err)
	}

	return shortCode, nil
}

// RecordClick bumps the counters and appends the click in one statement. It
// does nothing when the URL has been deleted in the meantime.
func (r *URLRepository) RecordClick(ctx context.Context, click *entity.Click) error {
	const op = "adapter.repository.postgres.URLRepository.RecordClick"
	const query = `WITH updated AS (
			UPDATE urls SET click_count = click_count + 1, last_accessed_at = $2
			WHERE short_code = $1
			RETURNING short_code
		)
		INSERT INTO clicks(short_code, clicked_at, user_agent, ip_address, referrer)
		SELECT short_code, $2, $3, $4, $5 FROM updated`

	clickedAt := click.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query, click.ShortCode, clickedAt,
		nullString(click.UserAgent), nullString(click.IPAddress), nullString(click.Referrer))
	if err != nil {
		return storeError(op, "failed to record click", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Delete removes the URL. Its clicks go with it through the foreign key.
func (r *URLRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "adapter.repository.postgres.URLRepository.Delete"
	const query = `DELETE FROM urls WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return storeError(op, "failed to delete from urls table", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return storeError(op, "failed to get number of affected rows", err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}

func (r *URLRepository) ListPaged(ctx context.Context, page, pageSize int) (*entity.URLPage, error) {
	const op = "adapter.repository.postgres.URLRepository.ListPaged"
	const totalsQuery = `SELECT COUNT(*) AS total_urls, COALESCE(SUM(click_count), 0) AS total_clicks FROM urls`
	const pageQuery = `SELECT * FROM urls
		ORDER BY click_count DESC, created_at DESC
		LIMIT $1 OFFSET $2`

	var totals totalsDB

	if err := r.db.GetContext(ctx, &totals, totalsQuery); err != nil {
		return nil, storeError(op, "failed to count urls", err)
	}

	var rows []urlDB

	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageSize, (page-1)*pageSize); err != nil {
		return nil, storeError(op, "failed to select from urls table", err)
	}

	urls := make([]*entity.URL, 0, len(rows))
	for i := range rows {
		urls = append(urls, rows[i].toEntity())
	}

	return entity.NewURLPage(urls, totals.TotalURLs, totals.TotalClicks, page, pageSize), nil
}

// DeleteExpired removes every URL expired at now and returns their codes.
func (r *URLRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	const op = "adapter.repository.postgres.URLRepository.DeleteExpired"
	const query = `DELETE FROM urls WHERE expires_at IS NOT NULL AND expires_at <= $1 RETURNING short_code`

	var codes []string

	if err := r.db.SelectContext(ctx, &codes, query, now); err != nil {
		return nil, storeError(op, "failed to delete expired urls", err)
	}

	return codes, nil
}
