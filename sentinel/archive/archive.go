// Package archive keeps a short history of telemetry snapshots in the KV
// store so dashboards can chart posture trends. It is write-behind only: the
// live aggregation path never reads from it, and a failed aggregation is
// never answered from archived data.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sentinelops/go-api/sentinel"
	"github.com/sentinelops/go-api/sentinel/store"
)

const keyPrefix = "telemetry:snapshot:"

// keepCount bounds the archive to the most recent snapshots.
const keepCount = 10

// Entry is one archived telemetry snapshot.
type Entry struct {
	SnapshotID string                     `json:"snapshot_id"`
	ArchivedAt time.Time                  `json:"archived_at"`
	Telemetry  sentinel.TelemetrySnapshot `json:"telemetry"`
}

// Archive stores telemetry snapshots in the KV store.
type Archive struct {
	kv store.KVStore
}

// New creates an Archive over the given KV store.
func New(kv store.KVStore) *Archive {
	return &Archive{kv: kv}
}

// Save archives a snapshot under a timestamp-based id and prunes old
// entries. Returns the id assigned to the snapshot.
func (a *Archive) Save(ctx context.Context, snap *sentinel.TelemetrySnapshot) (string, error) {
	now := time.Now().UTC()
	// Format: YYYY-MM-DD-HHMMSS, sortable as text.
	snapshotID := now.Format("2006-01-02-150405")

	entry := Entry{
		SnapshotID: snapshotID,
		ArchivedAt: now,
		Telemetry:  *snap,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal telemetry snapshot: %w", err)
	}
	if err := a.kv.SetValue(ctx, keyPrefix+snapshotID, string(data)); err != nil {
		return "", fmt.Errorf("archive telemetry snapshot: %w", err)
	}

	if err := a.Prune(ctx); err != nil {
		// Log but don't fail the save on cleanup errors.
		slog.Warn("Failed to prune telemetry archive", "error", err)
	}
	return snapshotID, nil
}

// Get retrieves one archived snapshot by id.
func (a *Archive) Get(ctx context.Context, snapshotID string) (*Entry, error) {
	value, err := a.kv.GetValue(ctx, keyPrefix+snapshotID)
	if err != nil {
		return nil, fmt.Errorf("archived snapshot %s not found: %w", snapshotID, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return nil, fmt.Errorf("unmarshal archived snapshot %s: %w", snapshotID, err)
	}
	return &entry, nil
}

// List returns all archived snapshot ids, most recent first.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	keys, err := a.kv.ListKeys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, keyPrefix))
	}

	// Timestamp-format ids sort descending as text.
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Latest returns the most recently archived snapshot.
func (a *Archive) Latest(ctx context.Context) (*Entry, error) {
	ids, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no archived snapshots available")
	}
	return a.Get(ctx, ids[0])
}

// Prune deletes everything beyond the keepCount most recent snapshots.
func (a *Archive) Prune(ctx context.Context) error {
	ids, err := a.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) <= keepCount {
		return nil
	}

	for _, snapshotID := range ids[keepCount:] {
		if err := a.kv.DeleteValue(ctx, keyPrefix+snapshotID); err != nil {
			// Log but continue pruning.
			slog.Warn("Failed to delete archived snapshot", "snapshotId", snapshotID, "error", err)
		}
	}
	return nil
}
