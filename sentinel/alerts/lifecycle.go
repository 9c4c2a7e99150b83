// Package alerts implements the alert lifecycle state machine. The engine
// exposes exactly two transitions, acknowledge and suppress, both legal from
// any current status; each one appends a bounded audit entry to the alert's
// metadata document.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sentinelops/go-api/sentinel"
	"github.com/sentinelops/go-api/sentinel/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrMissingAlertKey is returned before any lookup when the alert key is
	// empty.
	ErrMissingAlertKey = errors.New("alert key is required")
	// ErrAlertNotFound is returned when no alert carries the given key.
	ErrAlertNotFound = errors.New("alert not found")
)

// Manager applies lifecycle transitions to the alert ledger.
type Manager struct {
	db *gorm.DB
}

// NewManager creates a Manager bound to the given database handle.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Acknowledge marks the alert as acknowledged and appends an audit entry.
// Re-acknowledging an already-acknowledged alert is legal and simply appends
// another entry.
func (m *Manager) Acknowledge(ctx context.Context, alertKey string, actorID *int64, note *string) (*sentinel.Alert, error) {
	return m.transition(ctx, alertKey, models.AlertStatusAcknowledged, actorID, note)
}

// Suppress marks the alert as suppressed, appends an audit entry and stamps
// resolvedAt.
func (m *Manager) Suppress(ctx context.Context, alertKey string, actorID *int64, note *string) (*sentinel.Alert, error) {
	return m.transition(ctx, alertKey, models.AlertStatusSuppressed, actorID, note)
}

func (m *Manager) transition(ctx context.Context, alertKey, status string, actorID *int64, note *string) (*sentinel.Alert, error) {
	if strings.TrimSpace(alertKey) == "" {
		return nil, ErrMissingAlertKey
	}

	var updated models.Alert
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alert models.Alert
		// Row lock for the read-modify-write of metadata.actions: concurrent
		// transitions on the same key must not drop each other's audit entry.
		// sqlite has no FOR UPDATE; its single-writer transactions serialize
		// the same way.
		query := tx.Where("alert_key = ?", alertKey)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := query.First(&alert).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrAlertNotFound, alertKey)
		}
		if err != nil {
			return fmt.Errorf("load alert %s: %w", alertKey, err)
		}

		now := time.Now().UTC()
		alert.AppendAction(models.AlertAction{
			Status:  status,
			ActorID: actorID,
			Note:    note,
			At:      now,
		})
		if note != nil && *note != "" {
			alert.Metadata["lastNote"] = *note
		}

		updates := map[string]interface{}{
			"status":   status,
			"metadata": alert.Metadata,
		}
		// resolvedAt is a one-way stamp: set when the alert reaches a
		// resolved-like status, carried forward unchanged otherwise.
		if status == models.AlertStatusSuppressed || status == models.AlertStatusResolved {
			updates["resolved_at"] = now
		}

		if err := tx.Model(&alert).Updates(updates).Error; err != nil {
			return fmt.Errorf("persist alert transition: %w", err)
		}
		if err := tx.Where("alert_key = ?", alertKey).First(&updated).Error; err != nil {
			return fmt.Errorf("reload alert %s: %w", alertKey, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Alert transition applied", "alertKey", alertKey, "status", status)
	serialized := Serialize(updated)
	return &serialized, nil
}
