// File: incident.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Incident lifecycle status constants.
const (
	IncidentStatusOpen          = "open"
	IncidentStatusInvestigating = "investigating"
	IncidentStatusContained     = "contained"
	IncidentStatusResolved      = "resolved"
)

// Incident is a higher-level grouping of related alerts under active
// response. Read-only to this engine; the incident-management service owns
// its lifecycle.
type Incident struct {
	gorm.Model
	IncidentKey string     `gorm:"uniqueIndex;not null;size:255" json:"incident_key"`
	Severity    string     `gorm:"not null;size:20" json:"severity"`
	Status      string     `gorm:"not null;size:20;index:idx_incidents_status" json:"status"`
	Owner       string     `gorm:"size:100" json:"owner,omitempty"`
	Summary     string     `gorm:"type:text" json:"summary,omitempty"`
	OpenedAt    time.Time  `gorm:"not null;index:idx_incidents_opened,sort:desc" json:"opened_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Metadata    JSONDoc    `json:"metadata,omitempty"`
}

// TableName specifies the table name for the Incident model.
func (Incident) TableName() string {
	return "incidents"
}
