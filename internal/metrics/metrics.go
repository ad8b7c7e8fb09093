// Package metrics provides application-level counters using stdlib expvar.
// Counters are exported on /debug/vars when an expvar handler is mounted
// and can be dumped with Snapshot.
package metrics

import (
	"expvar"
	"sort"
	"strings"
)

// Operation counters.
var (
	ReviewsTotal        = expvar.NewInt("mnemos_reviews_total")
	InvalidRatingsTotal = expvar.NewInt("mnemos_invalid_ratings_total")
	LapsesTotal         = expvar.NewInt("mnemos_lapses_total")
	ClampsTotal         = expvar.NewInt("mnemos_numeric_clamps_total")
	MasterySkipped      = expvar.NewInt("mnemos_mastery_skipped_total")
	MasteryUpdates      = expvar.NewInt("mnemos_mastery_updates_total")
	MasteryErrors       = expvar.NewInt("mnemos_mastery_errors_total")
	PredictionsTotal    = expvar.NewInt("mnemos_predictions_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }

// Snapshot returns the current value of every mnemos counter keyed by name.
func Snapshot() map[string]int64 {
	out := make(map[string]int64)
	expvar.Do(func(kv expvar.KeyValue) {
		if v, ok := kv.Value.(*expvar.Int); ok && strings.HasPrefix(kv.Key, "mnemos_") {
			out[kv.Key] = v.Value()
		}
	})
	return out
}

// Names returns the counter names in Snapshot, sorted.
func Names(snap map[string]int64) []string {
	names := make([]string, 0, len(snap))
	for k := range snap {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
