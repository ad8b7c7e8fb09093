package spacedrep

import (
	"sort"
	"time"
)

// SelectDue returns the cards due at now, ordered New first, then Learning,
// Review and Relearning, then by due time ascending, then by card id.
// A limit <= 0 means no limit. The input slice is not modified.
func SelectDue(cards []CardState, now time.Time, limit int) []CardState {
	var due []CardState
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].State != due[j].State {
			return due[i].State < due[j].State
		}
		if !due[i].Due.Equal(due[j].Due) {
			return due[i].Due.Before(due[j].Due)
		}
		return due[i].CardID < due[j].CardID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}
