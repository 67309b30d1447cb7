package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// CountByStatus tallies status values.
func CountByStatus(statuses []string) map[string]int {
	out := make(map[string]int, len(statuses))
	for _, s := range statuses {
		out[s]++
	}
	return out
}

// Activity is one row of a dashboard feed.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Student   string    `json:"student,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MergeRecent merges feeds newest first and keeps at most limit entries.
func MergeRecent(limit int, feeds ...[]Activity) []Activity {
	var all []Activity
	for _, f := range feeds {
		all = append(all, f...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []Activity{}
	}
	return all
}
