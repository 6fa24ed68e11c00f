// Package worker relays audit outbox rows to the message broker.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "mandate/pkg/platform/audit"
	txcontext "mandate/pkg/platform/tx"
)

// Outbox is the relay side of an audit store.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]audit.Record, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID) error
}

// Publisher delivers one payload keyed by aggregate.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Relay polls the outbox and publishes pending rows in creation order. Rows
// are marked processed only after the broker acknowledged them, so delivery
// is at-least-once.
type Relay struct {
	outbox    Outbox
	publisher Publisher
	runner    txcontext.Runner
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithTxRunner holds the fetched rows' locks until they are marked.
func WithTxRunner(runner txcontext.Runner) Option {
	return func(r *Relay) {
		if runner != nil {
			r.runner = runner
		}
	}
}

func NewRelay(outbox Outbox, publisher Publisher, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		publisher: publisher,
		runner:    txcontext.NoopRunner{},
		interval:  2 * time.Second,
		batchSize: 100,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. Batch failures are logged and retried
// on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RelayOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many rows were relayed.
// Publishing stops at the first failure; rows already acknowledged are
// still marked.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	relayed := 0
	err := r.runner.RunInTx(ctx, func(txCtx context.Context) error {
		records, err := r.outbox.FetchPending(txCtx, r.batchSize)
		if err != nil {
			return err
		}
		done := make([]uuid.UUID, 0, len(records))
		var publishErr error
		for _, rec := range records {
			payload := rec.Payload
			if len(payload) == 0 {
				payload, err = json.Marshal(rec.Event)
				if err != nil {
					publishErr = fmt.Errorf("marshal outbox event %s: %w", rec.ID, err)
					break
				}
			}
			if err := r.publisher.Publish(txCtx, rec.Event.Subject, payload); err != nil {
				publishErr = fmt.Errorf("publish outbox event %s: %w", rec.ID, err)
				break
			}
			done = append(done, rec.ID)
		}
		if err := r.outbox.MarkProcessed(txCtx, done); err != nil {
			return err
		}
		relayed = len(done)
		return publishErr
	})
	return relayed, err
}
