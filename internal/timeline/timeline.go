// Package timeline derives grouped views and summaries from event lists.
// Everything here is pure computation over store query results.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/lifelogd/lifelogd/internal/domain"
)

// Summary aggregates one period of the timeline.
type Summary struct {
	Period  string   `json:"period"`
	Count   int      `json:"count"`
	AvgMood *float64 `json:"avgMood,omitempty"`
}

// PeriodLabel renders an event timestamp as its grouping bucket.
// groupBy is "day", "week" or "month"; anything else falls back to day.
func PeriodLabel(timestamp, groupBy string) (string, bool) {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return "", false
	}
	switch groupBy {
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), true
	case "month":
		return t.Format("2006-01"), true
	default:
		return t.Format("2006-01-02"), true
	}
}

// Group buckets events by period label. Events whose timestamp fails to
// parse are left out; the store only holds validated timestamps, so this
// is a guard, not a code path with expected traffic.
func Group(events []domain.Event, groupBy string) map[string][]domain.Event {
	grouped := map[string][]domain.Event{}
	for _, event := range events {
		label, ok := PeriodLabel(event.Timestamp, groupBy)
		if !ok {
			continue
		}
		grouped[label] = append(grouped[label], event)
	}
	return grouped
}

// Summarize returns per-period counts and mood averages, oldest first.
func Summarize(events []domain.Event, groupBy string) []Summary {
	type acc struct {
		count    int
		moodSum  int
		moodObsv int
	}
	buckets := map[string]*acc{}

	for _, event := range events {
		label, ok := PeriodLabel(event.Timestamp, groupBy)
		if !ok {
			continue
		}
		bucket := buckets[label]
		if bucket == nil {
			bucket = &acc{}
			buckets[label] = bucket
		}
		bucket.count++
		if event.Mood != nil {
			bucket.moodSum += *event.Mood
			bucket.moodObsv++
		}
	}

	summaries := make([]Summary, 0, len(buckets))
	for label, bucket := range buckets {
		s := Summary{Period: label, Count: bucket.count}
		if bucket.moodObsv > 0 {
			avg := float64(bucket.moodSum) / float64(bucket.moodObsv)
			s.AvgMood = &avg
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Period < summaries[j].Period })
	return summaries
}

// Activity builds a weekday-by-hour heatmap of event counts. Rows follow
// time.Weekday numbering (Sunday = 0), columns are hours 0-23.
func Activity(events []domain.Event) [7][24]int {
	var heatmap [7][24]int
	for _, event := range events {
		t, err := time.Parse(time.RFC3339, event.Timestamp)
		if err != nil {
			continue
		}
		heatmap[int(t.Weekday())][t.Hour()]++
	}
	return heatmap
}
