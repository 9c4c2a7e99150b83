// Package sentinel holds the wire shapes the security operations engine
// returns to its consumers (the REST layer and workers). Database models live
// in sentinel/postgres/models; mapping between the two happens in the
// component packages.
package sentinel

import "time"

// Posture status values derived from the attack-surface score.
const (
	PostureResilient = "resilient"
	PostureGuarded   = "guarded"
	PostureWatch     = "watch"
	PostureCritical  = "critical"
)

// Alert is the serialized alert shape.
type Alert struct {
	AlertKey          string                 `json:"alertKey"`
	Severity          string                 `json:"severity"`
	Category          string                 `json:"category,omitempty"`
	Source            string                 `json:"source,omitempty"`
	Asset             string                 `json:"asset,omitempty"`
	Location          string                 `json:"location,omitempty"`
	RecommendedAction string                 `json:"recommendedAction,omitempty"`
	Status            string                 `json:"status"`
	DetectedAt        time.Time              `json:"detectedAt"`
	ResolvedAt        *time.Time             `json:"resolvedAt,omitempty"`
	LastNote          string                 `json:"lastNote,omitempty"`
	Actions           []AlertAction          `json:"actions,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// AlertAction is one serialized audit entry.
type AlertAction struct {
	Status  string    `json:"status"`
	ActorID *int64    `json:"actorId"`
	Note    *string   `json:"note"`
	At      time.Time `json:"at"`
}

// Incident is the serialized incident shape.
type Incident struct {
	IncidentKey string     `json:"incidentKey"`
	Severity    string     `json:"severity"`
	Status      string     `json:"status"`
	Owner       string     `json:"owner,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	OpenedAt    time.Time  `json:"openedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// Playbook is the serialized playbook shape, annotated with its run count.
type Playbook struct {
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Owner     string     `json:"owner,omitempty"`
	Category  string     `json:"category,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	RunCount  int64      `json:"runCount"`
}

// PostureSummary is the posture block of a telemetry snapshot.
type PostureSummary struct {
	Status              string   `json:"status"`
	AttackSurfaceScore  *float64 `json:"attackSurfaceScore"`
	AttackSurfaceChange *float64 `json:"attackSurfaceChange"`
	Signals             []string `json:"signals"`
}

// SecurityMetrics is the counters block of a telemetry snapshot.
type SecurityMetrics struct {
	BlockedIntrusions        int `json:"blockedIntrusions"`
	QuarantinedAssets        int `json:"quarantinedAssets"`
	HighRiskVulnerabilities  int `json:"highRiskVulnerabilities"`
	MeanTimeToRespondMinutes int `json:"meanTimeToRespondMinutes"`
}

// PatchWindow is the patch backlog block of a telemetry snapshot.
type PatchWindow struct {
	NextWindow    *time.Time `json:"nextWindow"`
	Backlog       int        `json:"backlog"`
	BacklogChange int        `json:"backlogChange"`
}

// TelemetrySnapshot is one consolidated point-in-time view of the security
// posture, open alerts, incidents and playbooks.
type TelemetrySnapshot struct {
	Posture     PostureSummary  `json:"posture"`
	Metrics     SecurityMetrics `json:"metrics"`
	PatchWindow PatchWindow     `json:"patchWindow"`
	Alerts      []Alert         `json:"alerts"`
	Incidents   []Incident      `json:"incidents"`
	Playbooks   []Playbook      `json:"playbooks"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Sweep is the serialized threat sweep record returned on enqueue.
type Sweep struct {
	ID          string                 `json:"id"`
	Status      string                 `json:"status"`
	RequestedBy *int64                 `json:"requestedBy"`
	SweepType   string                 `json:"sweepType"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"createdAt"`
}
