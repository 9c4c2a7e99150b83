// File: playbook.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Playbook status constants.
const (
	PlaybookStatusDraft   = "draft"
	PlaybookStatusActive  = "active"
	PlaybookStatusRetired = "retired"
)

// Playbook is a named remediation procedure. Read-only to this engine; the
// execution engine owns runs and lastRunAt bookkeeping.
type Playbook struct {
	gorm.Model
	Slug      string        `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Name      string        `gorm:"not null;size:255;index:idx_playbooks_name" json:"name"`
	Status    string        `gorm:"not null;size:20;default:draft" json:"status"`
	Owner     string        `gorm:"size:100" json:"owner,omitempty"`
	Category  string        `gorm:"size:100" json:"category,omitempty"`
	Summary   string        `gorm:"type:text" json:"summary,omitempty"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	Metadata  JSONDoc       `json:"metadata,omitempty"`
	Runs      []PlaybookRun `gorm:"constraint:OnDelete:CASCADE" json:"runs,omitempty"`
}

// TableName specifies the table name for the Playbook model.
func (Playbook) TableName() string {
	return "playbooks"
}

// PlaybookRun is one execution record of a playbook, written by the external
// execution engine. This engine only counts rows per playbook.
type PlaybookRun struct {
	gorm.Model
	PlaybookID uint      `gorm:"not null;index:idx_playbook_runs_playbook" json:"playbook_id"`
	ExecutedAt time.Time `gorm:"not null" json:"executed_at"`
	Executor   string    `gorm:"size:100" json:"executor,omitempty"`
	Result     string    `gorm:"size:50" json:"result,omitempty"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	Metadata   JSONDoc   `json:"metadata,omitempty"`
}

// TableName specifies the table name for the PlaybookRun model.
func (PlaybookRun) TableName() string {
	return "playbook_runs"
}
