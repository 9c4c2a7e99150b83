// File: sweep.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Threat sweep status constants. This engine only ever writes
// SweepStatusQueued; the sweep worker owns every later transition.
const (
	SweepStatusQueued    = "queued"
	SweepStatusRunning   = "running"
	SweepStatusCompleted = "completed"
	SweepStatusFailed    = "failed"
)

// ThreatSweep is one on-demand scan job. Rows are append-and-poll: this
// engine inserts them in queued state, the external worker claims them,
// stamps startedAt/completedAt and writes the result document.
type ThreatSweep struct {
	gorm.Model
	SweepKey    string     `gorm:"uniqueIndex;not null;size:255" json:"sweep_key"`
	RequestedBy *int64     `json:"requested_by,omitempty"`
	SweepType   string     `gorm:"not null;size:100" json:"sweep_type"`
	Status      string     `gorm:"not null;size:20;index:idx_threat_sweeps_status" json:"status"`
	Payload     JSONDoc    `json:"payload,omitempty"`
	Result      JSONDoc    `json:"result,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the ThreatSweep model.
func (ThreatSweep) TableName() string {
	return "threat_sweeps"
}
