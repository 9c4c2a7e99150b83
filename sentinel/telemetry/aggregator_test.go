package telemetry

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sentinelops/go-api/sentinel/postgres"
	"github.com/sentinelops/go-api/sentinel/postgres/models"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database migrated with the ledger
// schema. Each test gets its own shared-cache namespace.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := postgres.Connect(postgres.Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("❌ Failed to open test database: %v", err)
	}
	return db
}

func seedAlert(t *testing.T, db *gorm.DB, key, severity, status string, detectedAt time.Time) {
	t.Helper()
	alert := models.Alert{
		AlertKey:   key,
		Severity:   severity,
		Status:     status,
		DetectedAt: detectedAt,
	}
	if err := db.Create(&alert).Error; err != nil {
		t.Fatalf("❌ Failed to seed alert %s: %v", key, err)
	}
}

func TestSnapshotSeverityOrdering(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seedAlert(t, db, "low-1", models.SeverityLow, models.AlertStatusOpen, base)
	seedAlert(t, db, "medium-1", models.SeverityMedium, models.AlertStatusOpen, base.Add(1*time.Minute))
	seedAlert(t, db, "critical-1", models.SeverityCritical, models.AlertStatusOpen, base.Add(2*time.Minute))
	seedAlert(t, db, "high-old", models.SeverityHigh, models.AlertStatusInvestigating, base.Add(3*time.Minute))
	seedAlert(t, db, "high-new", models.SeverityHigh, models.AlertStatusOpen, base.Add(4*time.Minute))
	seedAlert(t, db, "resolved-1", models.SeverityCritical, models.AlertStatusResolved, base.Add(5*time.Minute))
	seedAlert(t, db, "closed-1", models.SeverityCritical, models.AlertStatusClosed, base.Add(6*time.Minute))

	snap, err := agg.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}

	got := make([]string, 0, len(snap.Alerts))
	for _, a := range snap.Alerts {
		got = append(got, a.AlertKey)
	}
	want := []string{"critical-1", "high-new", "high-old", "medium-1", "low-1"}
	if len(got) != len(want) {
		t.Fatalf("❌ Expected %d alerts, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("❌ Alert order mismatch at %d: expected %s, got %s (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestSnapshotIncludeResolved(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seedAlert(t, db, "open-1", models.SeverityHigh, models.AlertStatusOpen, base)
	seedAlert(t, db, "resolved-1", models.SeverityHigh, models.AlertStatusResolved, base.Add(time.Minute))
	seedAlert(t, db, "closed-1", models.SeverityLow, models.AlertStatusClosed, base.Add(2*time.Minute))

	snap, err := agg.Snapshot(ctx, true)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}
	if len(snap.Alerts) != 3 {
		t.Fatalf("❌ Expected all 3 alerts with includeResolved=true, got %d", len(snap.Alerts))
	}

	snap, err = agg.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}
	for _, a := range snap.Alerts {
		if a.Status == models.AlertStatusResolved || a.Status == models.AlertStatusClosed {
			t.Errorf("❌ Resolved/closed alert %s leaked into default snapshot", a.AlertKey)
		}
	}
}

func TestSnapshotAlertLimit(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		seedAlert(t, db, fmt.Sprintf("alert-%02d", i), models.SeverityMedium, models.AlertStatusOpen, base.Add(time.Duration(i)*time.Minute))
	}

	snap, err := agg.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}
	if len(snap.Alerts) != alertLimit {
		t.Errorf("❌ Expected %d alerts, got %d", alertLimit, len(snap.Alerts))
	}
}

func TestSnapshotPlaybookRunCounts(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	playbooks := []models.Playbook{
		{Slug: "alpha", Name: "Alpha containment", Status: models.PlaybookStatusActive},
		{Slug: "bravo", Name: "Bravo rotation", Status: models.PlaybookStatusActive},
		{Slug: "charlie", Name: "Charlie lockdown", Status: models.PlaybookStatusDraft},
		{Slug: "delta", Name: "Delta legacy", Status: models.PlaybookStatusRetired},
	}
	for i := range playbooks {
		if err := db.Create(&playbooks[i]).Error; err != nil {
			t.Fatalf("❌ Failed to seed playbook: %v", err)
		}
	}

	executed := time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
	runs := []models.PlaybookRun{
		{PlaybookID: playbooks[0].ID, ExecutedAt: executed, Result: "success"},
		{PlaybookID: playbooks[0].ID, ExecutedAt: executed.Add(time.Hour), Result: "success"},
		{PlaybookID: playbooks[1].ID, ExecutedAt: executed, Result: "failure"},
	}
	for i := range runs {
		if err := db.Create(&runs[i]).Error; err != nil {
			t.Fatalf("❌ Failed to seed playbook run: %v", err)
		}
	}

	snap, err := agg.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}

	if len(snap.Playbooks) != 3 {
		t.Fatalf("❌ Expected 3 non-retired playbooks, got %d", len(snap.Playbooks))
	}
	wantCounts := map[string]int64{"alpha": 2, "bravo": 1, "charlie": 0}
	wantOrder := []string{"alpha", "bravo", "charlie"}
	for i, pb := range snap.Playbooks {
		if pb.Slug != wantOrder[i] {
			t.Errorf("❌ Playbook order mismatch at %d: expected %s, got %s", i, wantOrder[i], pb.Slug)
		}
		if pb.RunCount != wantCounts[pb.Slug] {
			t.Errorf("❌ Run count mismatch for %s: expected %d, got %d", pb.Slug, wantCounts[pb.Slug], pb.RunCount)
		}
	}
}

func TestSnapshotIncidentOrdering(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		incident := models.Incident{
			IncidentKey: fmt.Sprintf("incident-%d", i),
			Severity:    models.SeverityHigh,
			Status:      models.IncidentStatusOpen,
			OpenedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&incident).Error; err != nil {
			t.Fatalf("❌ Failed to seed incident: %v", err)
		}
	}

	snap, err := agg.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}
	if len(snap.Incidents) != incidentLimit {
		t.Fatalf("❌ Expected %d incidents, got %d", incidentLimit, len(snap.Incidents))
	}
	if snap.Incidents[0].IncidentKey != "incident-6" {
		t.Errorf("❌ Expected newest incident first, got %s", snap.Incidents[0].IncidentKey)
	}
	if snap.Incidents[len(snap.Incidents)-1].IncidentKey != "incident-1" {
		t.Errorf("❌ Expected oldest kept incident last, got %s", snap.Incidents[len(snap.Incidents)-1].IncidentKey)
	}
}

func TestSnapshotLatestPosture(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	older := 72.0
	newer := 91.5
	change := 3.5
	window := time.Date(2026, 5, 10, 2, 0, 0, 0, time.UTC)
	snapshots := []models.PostureSnapshot{
		{
			CapturedAt:         time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			AttackSurfaceScore: &older,
			BlockedIntrusions:  5,
		},
		{
			CapturedAt:          time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
			AttackSurfaceScore:  &newer,
			AttackSurfaceChange: &change,
			Signals:             models.StringList{"edge WAF updated", "zero critical patches overdue"},
			BlockedIntrusions:   42,
			QuarantinedAssets:   2,
			HighRiskVulns:       1,
			MTTRMinutes:         34,
			PatchBacklog:        7,
			PatchBacklogDelta:   -3,
			NextPatchWindow:     &window,
		},
	}
	for i := range snapshots {
		if err := db.Create(&snapshots[i]).Error; err != nil {
			t.Fatalf("❌ Failed to seed posture snapshot: %v", err)
		}
	}

	snap, err := agg.Snapshot(ctx, false)
	if err != nil {
		t.Fatalf("❌ Snapshot failed: %v", err)
	}

	if snap.Posture.Status != "resilient" {
		t.Errorf("❌ Expected resilient posture from newest snapshot, got %s", snap.Posture.Status)
	}
	if snap.Posture.AttackSurfaceScore == nil || *snap.Posture.AttackSurfaceScore != newer {
		t.Errorf("❌ Expected newest attack-surface score %v, got %v", newer, snap.Posture.AttackSurfaceScore)
	}
	if len(snap.Posture.Signals) != 2 {
		t.Errorf("❌ Expected 2 signals, got %d", len(snap.Posture.Signals))
	}
	if snap.Metrics.BlockedIntrusions != 42 {
		t.Errorf("❌ Expected blockedIntrusions from newest snapshot, got %d", snap.Metrics.BlockedIntrusions)
	}
	if snap.PatchWindow.Backlog != 7 || snap.PatchWindow.BacklogChange != -3 {
		t.Errorf("❌ Patch window mismatch: %+v", snap.PatchWindow)
	}
	if snap.PatchWindow.NextWindow == nil || !snap.PatchWindow.NextWindow.Equal(window) {
		t.Errorf("❌ Expected next patch window %v, got %v", window, snap.PatchWindow.NextWindow)
	}
}

func TestSnapshotCancelledContext(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	seedAlert(t, db, "alert-ctx", models.SeverityHigh, models.AlertStatusOpen, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := agg.Snapshot(ctx, false)
	if err == nil {
		t.Fatal("❌ Expected error from cancelled context, got nil")
	}
	if snap != nil {
		t.Errorf("❌ No partial snapshot on failure, got %+v", snap)
	}
}

func TestSnapshotEmptyStore(t *testing.T) {
	db := newTestDB(t)
	agg := NewAggregator(db)

	snap, err := agg.Snapshot(context.Background(), false)
	if err != nil {
		t.Fatalf("❌ Snapshot over empty store failed: %v", err)
	}

	if snap.Posture.Status != "guarded" {
		t.Errorf("❌ Missing posture should read guarded, got %s", snap.Posture.Status)
	}
	if snap.Posture.AttackSurfaceScore != nil {
		t.Errorf("❌ Expected nil score, got %v", *snap.Posture.AttackSurfaceScore)
	}
	if snap.Posture.Signals == nil || len(snap.Posture.Signals) != 0 {
		t.Errorf("❌ Expected empty (non-nil) signals, got %v", snap.Posture.Signals)
	}
	if snap.Metrics.BlockedIntrusions != 0 || snap.Metrics.QuarantinedAssets != 0 {
		t.Errorf("❌ Expected zero metrics, got %+v", snap.Metrics)
	}
	if len(snap.Alerts) != 0 || len(snap.Incidents) != 0 || len(snap.Playbooks) != 0 {
		t.Errorf("❌ Expected empty collections, got %d/%d/%d", len(snap.Alerts), len(snap.Incidents), len(snap.Playbooks))
	}
}
