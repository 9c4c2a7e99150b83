// File: posture.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostureSnapshot is an immutable point-in-time record of aggregate security
// metrics. The ingestion job appends snapshots on its own schedule; this
// engine only ever reads the most recent one (max captured_at).
type PostureSnapshot struct {
	gorm.Model
	CapturedAt          time.Time  `gorm:"not null;index:idx_posture_captured,sort:desc" json:"captured_at"`
	AttackSurfaceScore  *float64   `json:"attack_surface_score,omitempty"`
	AttackSurfaceChange *float64   `json:"attack_surface_change,omitempty"`
	Signals             StringList `json:"signals,omitempty"`
	BlockedIntrusions   int        `gorm:"not null;default:0" json:"blocked_intrusions"`
	QuarantinedAssets   int        `gorm:"not null;default:0" json:"quarantined_assets"`
	HighRiskVulns       int        `gorm:"not null;default:0" json:"high_risk_vulns"`
	MTTRMinutes         int        `gorm:"not null;default:0" json:"mttr_minutes"`
	PatchBacklog        int        `gorm:"not null;default:0" json:"patch_backlog"`
	PatchBacklogDelta   int        `gorm:"not null;default:0" json:"patch_backlog_delta"`
	NextPatchWindow     *time.Time `json:"next_patch_window,omitempty"`
	Notes               string     `gorm:"type:text" json:"notes,omitempty"`
}

// TableName specifies the table name for the PostureSnapshot model.
func (PostureSnapshot) TableName() string {
	return "posture_snapshots"
}
