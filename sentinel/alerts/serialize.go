package alerts

import (
	"github.com/sentinelops/go-api/sentinel"
	"github.com/sentinelops/go-api/sentinel/postgres/models"
)

// Serialize maps an alert ledger row to the wire shape returned to the API
// layer. The audit history and lastNote come out of the metadata document.
func Serialize(alert models.Alert) sentinel.Alert {
	out := sentinel.Alert{
		AlertKey:          alert.AlertKey,
		Severity:          alert.Severity,
		Category:          alert.Category,
		Source:            alert.Source,
		Asset:             alert.Asset,
		Location:          alert.Location,
		RecommendedAction: alert.RecommendedAction,
		Status:            alert.Status,
		DetectedAt:        alert.DetectedAt,
		ResolvedAt:        alert.ResolvedAt,
		LastNote:          alert.LastNote(),
		Metadata:          map[string]interface{}(alert.Metadata),
	}
	for _, action := range alert.Actions() {
		out.Actions = append(out.Actions, sentinel.AlertAction(action))
	}
	return out
}
