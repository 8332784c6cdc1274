// Package clicks records redirect accesses off the request path.
package clicks

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	DefaultQueueSize    = 1024
	DefaultWriteTimeout = 2 * time.Second
)

// Store persists a single click.
type Store interface {
	RecordClick(ctx context.Context, click *entity.Click) error
}

// Stats holds recorder counters since start.
type Stats struct {
	Enqueued uint64 `json:"enqueued"`
	Recorded uint64 `json:"recorded"`
	Dropped  uint64 `json:"dropped"`
	Failed   uint64 `json:"failed"`
	Pending  int    `json:"pending"`
}

// Recorder queues clicks and writes them to the store from one goroutine,
// so clicks for a code are applied in submission order.
type Recorder struct {
	store        Store
	logger       *slog.Logger
	queue        chan entity.Click
	writeTimeout time.Duration

	enqueued atomic.Uint64
	recorded atomic.Uint64
	dropped  atomic.Uint64
	failed   atomic.Uint64
}

// New creates a Recorder. Non-positive sizes and timeouts fall back to the
// defaults.
func New(store Store, logger *slog.Logger, queueSize int, writeTimeout time.Duration) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		store:        store,
		logger:       logger,
		queue:        make(chan entity.Click, queueSize),
		writeTimeout: writeTimeout,
	}
}

// RecordAsync enqueues the click without blocking. It returns false when
// the queue is full and the click was dropped.
func (r *Recorder) RecordAsync(click entity.Click) bool {
	select {
	case r.queue <- click:
		r.enqueued.Add(1)
		return true
	default:
		r.dropped.Add(1)
		r.logger.Warn("click queue full, dropping click", slog.String("short_code", click.ShortCode))
		return false
	}
}

// Run drains the queue until ctx is done. Clicks still queued at that point
// are written before Run returns. Store failures are logged and dropped.
func (r *Recorder) Run(ctx context.Context) error {
	r.logger.Info("click recorder started", slog.Int("queue_size", cap(r.queue)))

	for {
		select {
		case click := <-r.queue:
			r.write(click)
		case <-ctx.Done():
			r.drain()
			r.logger.Info("click recorder stopped")
			return nil
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case click := <-r.queue:
			r.write(click)
		default:
			return
		}
	}
}

func (r *Recorder) write(click entity.Click) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.store.RecordClick(ctx, &click); err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to record click",
			slog.String("short_code", click.ShortCode),
			slog.Any("err", err),
		)
		return
	}

	r.recorded.Add(1)
}

// Stats returns a snapshot of the recorder counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Enqueued: r.enqueued.Load(),
		Recorded: r.recorded.Load(),
		Dropped:  r.dropped.Load(),
		Failed:   r.failed.Load(),
		Pending:  len(r.queue),
	}
}
