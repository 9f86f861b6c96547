// Package analysis contains the financial intelligence engines: anomaly
// detection, trend estimation, forecasting, health and score evaluation, risk
// classification, budget optimization, scenario simulation and the alert
// engine that consolidates all of them.
//
// Every engine is stateless and safe for concurrent use. Thresholds and
// windows are configuration passed at construction, never package state.
// Insufficient history and zero denominators are normal outcomes that degrade
// to defined fallbacks, not errors.
package analysis

import (
	"math"
	"time"
)

// beginningOfTime bounds all-history queries against a TransactionSource.
var beginningOfTime = time.Time{}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func defaultNow(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return time.Now
}
