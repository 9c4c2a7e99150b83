// Package telemetry assembles the consolidated security telemetry snapshot
// from the posture, alert, incident and playbook ledgers. The reads fan out
// concurrently and the snapshot is all-or-nothing: any ledger failure fails
// the whole call, there is no partial or cached result.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sentinelops/go-api/sentinel"
	"github.com/sentinelops/go-api/sentinel/alerts"
	"github.com/sentinelops/go-api/sentinel/postgres/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Presentation limits per ledger.
const (
	alertLimit    = 12
	incidentLimit = 6
	playbookLimit = 10
)

// Aggregator reads the ledgers and shapes one telemetry snapshot.
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates an Aggregator bound to the given database handle.
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Snapshot assembles one consolidated telemetry snapshot. When
// includeResolved is false, resolved and closed alerts are excluded.
func (a *Aggregator) Snapshot(ctx context.Context, includeResolved bool) (*sentinel.TelemetrySnapshot, error) {
	var (
		posture   *models.PostureSnapshot
		alertRows []models.Alert
		incidents []models.Incident
		playbooks []models.Playbook
		runCounts map[uint]int64
	)

	// The five reads have no data dependency on each other; fan them out so
	// latency is bounded by the slowest read, and cancel the rest if one
	// fails.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posture, err = a.latestPosture(gctx)
		return err
	})
	g.Go(func() (err error) {
		alertRows, err = a.recentAlerts(gctx, includeResolved)
		return err
	})
	g.Go(func() (err error) {
		incidents, err = a.recentIncidents(gctx)
		return err
	})
	g.Go(func() (err error) {
		playbooks, err = a.activePlaybooks(gctx)
		return err
	})
	g.Go(func() (err error) {
		runCounts, err = a.playbookRunCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble telemetry snapshot: %w", err)
	}

	snap := &sentinel.TelemetrySnapshot{
		Alerts:      make([]sentinel.Alert, 0, len(alertRows)),
		Incidents:   make([]sentinel.Incident, 0, len(incidents)),
		Playbooks:   make([]sentinel.Playbook, 0, len(playbooks)),
		GeneratedAt: time.Now().UTC(),
	}

	snap.Posture = sentinel.PostureSummary{
		Status:  postureStatus(nil),
		Signals: make([]string, 0),
	}
	if posture != nil {
		snap.Posture = sentinel.PostureSummary{
			Status:              postureStatus(posture.AttackSurfaceScore),
			AttackSurfaceScore:  posture.AttackSurfaceScore,
			AttackSurfaceChange: posture.AttackSurfaceChange,
			Signals:             append(make([]string, 0, len(posture.Signals)), posture.Signals...),
		}
		snap.Metrics = sentinel.SecurityMetrics{
			BlockedIntrusions:        posture.BlockedIntrusions,
			QuarantinedAssets:        posture.QuarantinedAssets,
			HighRiskVulnerabilities:  posture.HighRiskVulns,
			MeanTimeToRespondMinutes: posture.MTTRMinutes,
		}
		snap.PatchWindow = sentinel.PatchWindow{
			NextWindow:    posture.NextPatchWindow,
			Backlog:       posture.PatchBacklog,
			BacklogChange: posture.PatchBacklogDelta,
		}
	}

	for _, row := range alertRows {
		snap.Alerts = append(snap.Alerts, alerts.Serialize(row))
	}
	for _, row := range incidents {
		snap.Incidents = append(snap.Incidents, sentinel.Incident{
			IncidentKey: row.IncidentKey,
			Severity:    row.Severity,
			Status:      row.Status,
			Owner:       row.Owner,
			Summary:     row.Summary,
			OpenedAt:    row.OpenedAt,
			ResolvedAt:  row.ResolvedAt,
		})
	}
	for _, row := range playbooks {
		snap.Playbooks = append(snap.Playbooks, sentinel.Playbook{
			Slug:      row.Slug,
			Name:      row.Name,
			Status:    row.Status,
			Owner:     row.Owner,
			Category:  row.Category,
			Summary:   row.Summary,
			LastRunAt: row.LastRunAt,
			RunCount:  runCounts[row.ID],
		})
	}

	return snap, nil
}

// latestPosture returns the most recent posture snapshot, or nil when the
// ingestion job has not written one yet.
func (a *Aggregator) latestPosture(ctx context.Context) (*models.PostureSnapshot, error) {
	var snap models.PostureSnapshot
	err := a.db.WithContext(ctx).Order("captured_at DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest posture snapshot: %w", err)
	}
	return &snap, nil
}

func (a *Aggregator) recentAlerts(ctx context.Context, includeResolved bool) ([]models.Alert, error) {
	query := a.db.WithContext(ctx).Model(&models.Alert{})
	if !includeResolved {
		query = query.Where("status NOT IN ?", []string{models.AlertStatusResolved, models.AlertStatusClosed})
	}

	// Two-phase sort. The database pass orders by the stored severity text,
	// which is stable but alphabetical; the re-sort below applies the
	// business order critical > high > medium > low. The persisted ordering
	// of the severity values is never trusted to match business priority.
	var rows []models.Alert
	err := query.
		Order("severity ASC").
		Order("detected_at DESC").
		Limit(alertLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load recent alerts: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := severityRank(rows[i].Severity), severityRank(rows[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return rows[i].DetectedAt.After(rows[j].DetectedAt)
	})
	return rows, nil
}

// severityRank is the business priority of a severity value. Unknown values
// sort with low.
func severityRank(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 0
	case models.SeverityHigh:
		return 1
	case models.SeverityMedium:
		return 2
	default:
		return 3
	}
}

func (a *Aggregator) recentIncidents(ctx context.Context) ([]models.Incident, error) {
	var rows []models.Incident
	err := a.db.WithContext(ctx).
		Order("opened_at DESC").
		Limit(incidentLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load recent incidents: %w", err)
	}
	return rows, nil
}

func (a *Aggregator) activePlaybooks(ctx context.Context) ([]models.Playbook, error) {
	var rows []models.Playbook
	err := a.db.WithContext(ctx).
		Where("status <> ?", models.PlaybookStatusRetired).
		Order("name ASC").
		Limit(playbookLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load playbooks: %w", err)
	}
	return rows, nil
}

func (a *Aggregator) playbookRunCounts(ctx context.Context) (map[uint]int64, error) {
	type runCount struct {
		PlaybookID uint
		Total      int64
	}
	var rows []runCount
	err := a.db.WithContext(ctx).
		Model(&models.PlaybookRun{}).
		Select("playbook_id, COUNT(*) as total").
		Group("playbook_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count playbook runs: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.PlaybookID] = row.Total
	}
	return counts, nil
}
