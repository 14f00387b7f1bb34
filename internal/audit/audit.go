package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/hardbottle/internal/model"
	"github.com/dukerupert/hardbottle/internal/store"
)

// Entry is one audit record. EntityID is optional; Details and IPAddress may
// be empty.
type Entry struct {
	Action     string
	EntityType string
	EntityID   *int64
	Details    string
	ActorID    string
	IPAddress  string
}

// Sink receives one entry per mutating role operation. Delivery is
// best-effort: implementations must never propagate failure back to the
// operation that produced the entry.
type Sink interface {
	Record(e Entry)
}

// Recorder writes entries to the audit store with a few quick retries.
// A write that still fails after the retries is logged and dropped; audit is
// an observability concern, not a correctness one.
type Recorder struct {
	store  *store.AuditStore
	logger *slog.Logger
}

func NewRecorder(s *store.AuditStore, logger *slog.Logger) *Recorder {
	return &Recorder{store: s, logger: logger}
}

func (r *Recorder) Record(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(2, retry.NewConstant(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.store.Insert(model.AuditEntry{
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Details:    e.Details,
			ActorID:    e.ActorID,
			IPAddress:  e.IPAddress,
		}); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("audit record dropped", "action", e.Action, "entity_type", e.EntityType, "error", err)
	}
}

// Nop discards every entry. Used in tests.
type Nop struct{}

func (Nop) Record(Entry) {}
