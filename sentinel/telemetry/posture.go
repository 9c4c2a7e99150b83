package telemetry

import (
	"math"

	"github.com/sentinelops/go-api/sentinel"
)

// Posture status thresholds on the 0-100 attack-surface score.
const (
	resilientThreshold = 90
	guardedThreshold   = 80
	watchThreshold     = 65
)

// postureStatus maps the attack-surface score to an operator-facing status.
// A missing or non-numeric score reads as "guarded", not "critical": blank
// telemetry means the ingestion job has not reported, which operators treat
// differently from a genuinely degraded environment.
func postureStatus(score *float64) string {
	if score == nil || math.IsNaN(*score) {
		return sentinel.PostureGuarded
	}
	switch {
	case *score >= resilientThreshold:
		return sentinel.PostureResilient
	case *score >= guardedThreshold:
		return sentinel.PostureGuarded
	case *score >= watchThreshold:
		return sentinel.PostureWatch
	default:
		return sentinel.PostureCritical
	}
}
