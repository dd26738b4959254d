package stats

import (
	"time"

	"github.com/hiel0122/youtuber-analyzer-go/internal/model"
)

// SubscriptionRates derives subscriber deltas over standard windows from
// historical snapshots. Best-effort: a window with no snapshot old enough
// reports zero. History must be sorted oldest first.
func SubscriptionRates(history []model.SubscriberPoint, current int64, now time.Time) model.SubscriptionRates {
	return model.SubscriptionRates{
		PerDay:   deltaSince(history, current, now.AddDate(0, 0, -1)),
		PerWeek:  deltaSince(history, current, now.AddDate(0, 0, -7)),
		PerMonth: deltaSince(history, current, now.AddDate(0, -1, 0)),
		PerYear:  deltaSince(history, current, now.AddDate(-1, 0, 0)),
	}
}

// deltaSince subtracts the newest snapshot recorded at or before the cutoff
// from the current count.
func deltaSince(history []model.SubscriberPoint, current int64, cutoff time.Time) int64 {
	var baseline *model.SubscriberPoint
	for i := range history {
		if history[i].RecordedAt.After(cutoff) {
			break
		}
		baseline = &history[i]
	}
	if baseline == nil {
		return 0
	}
	return current - baseline.SubscriberCount
}
