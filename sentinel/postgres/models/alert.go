// File: alert.go
package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Alert severity constants, ordered by business priority (critical first).
// The stored text does not sort in this order; see the telemetry aggregator.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Alert lifecycle status constants.
const (
	AlertStatusOpen          = "open"
	AlertStatusInvestigating = "investigating"
	AlertStatusAcknowledged  = "acknowledged"
	AlertStatusSuppressed    = "suppressed"
	AlertStatusResolved      = "resolved"
	AlertStatusClosed        = "closed"
)

// MaxAlertActions bounds the embedded audit history. The oldest entries
// beyond this count silently drop on append.
const MaxAlertActions = 20

// Alert is a detected security event keyed by a stable business key so that
// re-ingestion of the same detection is idempotent. Created by the external
// detector pipeline; this engine only transitions its status.
type Alert struct {
	gorm.Model
	AlertKey          string     `gorm:"uniqueIndex;not null;size:255" json:"alert_key"`
	Severity          string     `gorm:"not null;size:20;index:idx_alerts_severity" json:"severity"`
	Category          string     `gorm:"size:100" json:"category,omitempty"`
	Source            string     `gorm:"size:100" json:"source,omitempty"`
	Asset             string     `gorm:"size:255" json:"asset,omitempty"`
	Location          string     `gorm:"size:255" json:"location,omitempty"`
	RecommendedAction string     `gorm:"type:text" json:"recommended_action,omitempty"`
	Status            string     `gorm:"not null;size:20;index:idx_alerts_status" json:"status"`
	DetectedAt        time.Time  `gorm:"not null;index:idx_alerts_detected,sort:desc" json:"detected_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	Metadata          JSONDoc    `json:"metadata,omitempty"`
}

// TableName specifies the table name for the Alert model.
func (Alert) TableName() string {
	return "alerts"
}

// AlertAction is one audit entry embedded under metadata "actions". It is the
// only piece of the metadata document this engine reads and writes itself.
type AlertAction struct {
	Status  string    `json:"status"`
	ActorID *int64    `json:"actorId"`
	Note    *string   `json:"note"`
	At      time.Time `json:"at"`
}

// Actions decodes the audit history from metadata. Anything that is not a
// well-formed entry list (missing key, wrong shape, corrupt ingestion data)
// reads as empty rather than failing the caller.
func (a *Alert) Actions() []AlertAction {
	if a.Metadata == nil {
		return nil
	}
	raw, ok := a.Metadata["actions"]
	if !ok {
		return nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var actions []AlertAction
	if err := json.Unmarshal(buf, &actions); err != nil {
		return nil
	}
	return actions
}

// AppendAction appends an audit entry, keeping only the MaxAlertActions most
// recent entries in chronological order.
func (a *Alert) AppendAction(entry AlertAction) {
	actions := a.Actions()
	if len(actions) > MaxAlertActions-1 {
		actions = actions[len(actions)-(MaxAlertActions-1):]
	}
	actions = append(actions, entry)
	if a.Metadata == nil {
		a.Metadata = JSONDoc{}
	}
	a.Metadata["actions"] = actions
}

// LastNote returns the metadata "lastNote" convenience field, if set.
func (a *Alert) LastNote() string {
	if a.Metadata == nil {
		return ""
	}
	note, _ := a.Metadata["lastNote"].(string)
	return note
}
