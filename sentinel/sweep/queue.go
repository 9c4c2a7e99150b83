// Package sweep queues on-demand threat sweeps. The engine only ever writes
// rows in queued state; the external sweep worker claims them, runs the scan
// and writes the result back. There is no dedup key: repeated requests queue
// repeated sweeps.
package sweep

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sentinelops/go-api/sentinel"
	"github.com/sentinelops/go-api/sentinel/postgres/models"
	"gorm.io/gorm"
)

// DefaultSweepType is used when the caller does not name a sweep type.
const DefaultSweepType = "runtime-anomaly"

// Notifier tells the external sweep worker that new work is queued. The
// worker also polls the queued rows, so notification is best-effort.
type Notifier interface {
	NotifyQueued(ctx context.Context, sweepKey string) error
}

// Request carries the fields of a sweep submission. Empty optional fields
// stay out of the stored payload entirely.
type Request struct {
	RequestedBy *int64
	SweepType   string
	Reason      string
	Scope       string
	Metadata    map[string]interface{}
}

// Queue appends sweep jobs to the threat sweep ledger.
type Queue struct {
	db       *gorm.DB
	notifier Notifier
}

// NewQueue creates a Queue bound to the given database handle. notifier may
// be nil when no dispatch channel is configured.
func NewQueue(db *gorm.DB, notifier Notifier) *Queue {
	return &Queue{db: db, notifier: notifier}
}

// Enqueue creates one queued sweep row and returns the serialized record.
// Fire-and-forget: this engine never starts, polls or completes the sweep.
func (q *Queue) Enqueue(ctx context.Context, req Request) (*sentinel.Sweep, error) {
	sweepType := req.SweepType
	if sweepType == "" {
		sweepType = DefaultSweepType
	}

	// Only supplied keys go into the payload; absent fields do not leave
	// null placeholders behind.
	payload := models.JSONDoc{}
	if req.Reason != "" {
		payload["reason"] = req.Reason
	}
	if req.Scope != "" {
		payload["scope"] = req.Scope
	}
	if len(req.Metadata) > 0 {
		payload["metadata"] = req.Metadata
	}

	row := models.ThreatSweep{
		SweepKey:    "sweep-" + uuid.NewString(),
		RequestedBy: req.RequestedBy,
		SweepType:   sweepType,
		Status:      models.SweepStatusQueued,
		Payload:     payload,
	}
	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("queue threat sweep: %w", err)
	}

	if q.notifier != nil {
		if err := q.notifier.NotifyQueued(ctx, row.SweepKey); err != nil {
			// A missed notification only delays pickup until the worker's
			// next poll; the queued row is already durable.
			slog.Warn("Sweep dispatch notification failed", "sweepKey", row.SweepKey, "error", err)
		}
	}

	slog.Info("Threat sweep queued", "sweepKey", row.SweepKey, "sweepType", sweepType)
	return &sentinel.Sweep{
		ID:          row.SweepKey,
		Status:      row.Status,
		RequestedBy: row.RequestedBy,
		SweepType:   row.SweepType,
		Payload:     map[string]interface{}(row.Payload),
		CreatedAt:   row.CreatedAt,
	}, nil
}
