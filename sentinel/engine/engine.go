// Package engine is the front door of the security operations engine: the
// surrounding REST layer calls these operations after resolving the caller's
// identity. Every operation checks the access gate first and fails closed.
//
// Error taxonomy for transport mapping: ErrUnauthorized (here),
// alerts.ErrMissingAlertKey (validation), alerts.ErrAlertNotFound
// (not-found). Anything else is a storage failure, propagated unchanged —
// the engine performs no local recovery and never substitutes cached data.
package engine

import (
	"context"
	"errors"

	"github.com/sentinelops/go-api/sentinel"
	"github.com/sentinelops/go-api/sentinel/alerts"
	"github.com/sentinelops/go-api/sentinel/gate"
	"github.com/sentinelops/go-api/sentinel/sweep"
	"github.com/sentinelops/go-api/sentinel/telemetry"
	"gorm.io/gorm"
)

// ErrUnauthorized is returned when the caller fails the access gate.
var ErrUnauthorized = errors.New("caller is not authorized for security operations")

// Engine wires the telemetry aggregator, the alert lifecycle manager and the
// threat sweep queue behind one gated surface.
type Engine struct {
	telemetry *telemetry.Aggregator
	alerts    *alerts.Manager
	sweeps    *sweep.Queue
}

// New constructs the engine over an already-connected database handle. The
// notifier may be nil when no sweep dispatch channel is configured.
func New(db *gorm.DB, notifier sweep.Notifier) *Engine {
	return &Engine{
		telemetry: telemetry.NewAggregator(db),
		alerts:    alerts.NewManager(db),
		sweeps:    sweep.NewQueue(db, notifier),
	}
}

// GetTelemetry returns one consolidated telemetry snapshot.
func (e *Engine) GetTelemetry(ctx context.Context, caller gate.Caller, includeResolved bool) (*sentinel.TelemetrySnapshot, error) {
	if !gate.Authorize(caller) {
		return nil, ErrUnauthorized
	}
	return e.telemetry.Snapshot(ctx, includeResolved)
}

// AcknowledgeAlert transitions the alert to acknowledged on behalf of the
// caller.
func (e *Engine) AcknowledgeAlert(ctx context.Context, caller gate.Caller, alertKey string, note *string) (*sentinel.Alert, error) {
	if !gate.Authorize(caller) {
		return nil, ErrUnauthorized
	}
	return e.alerts.Acknowledge(ctx, alertKey, caller.ActorID, note)
}

// SuppressAlert transitions the alert to suppressed on behalf of the caller.
func (e *Engine) SuppressAlert(ctx context.Context, caller gate.Caller, alertKey string, note *string) (*sentinel.Alert, error) {
	if !gate.Authorize(caller) {
		return nil, ErrUnauthorized
	}
	return e.alerts.Suppress(ctx, alertKey, caller.ActorID, note)
}

// QueueThreatSweep enqueues one sweep. When the request does not name a
// requesting actor, the caller's actor id is recorded.
func (e *Engine) QueueThreatSweep(ctx context.Context, caller gate.Caller, req sweep.Request) (*sentinel.Sweep, error) {
	if !gate.Authorize(caller) {
		return nil, ErrUnauthorized
	}
	if req.RequestedBy == nil {
		req.RequestedBy = caller.ActorID
	}
	return e.sweeps.Enqueue(ctx, req)
}
