package summary

import (
	"sort"
	"time"
)

// The feed mixes fractional-second "...Z" stamps with other ISO-8601
// variants, so parsing tries a few layouts before giving up.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z0700",
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, &ParseError{Value: value, Err: lastErr}
}

// BuildListeningHabits buckets plays by hour of day and by date and hour.
// Hours with no plays are omitted from the hourly histogram (the grouping
// has always worked that way); hourly buckets come back hour-ascending and
// date-hour buckets in first-encountered key order.
func BuildListeningHabits(plays []PlayEvent) (ListeningHabits, error) {
	type dateHourKey struct {
		date string
		hour int
	}

	hourCounts := make(map[int]int)
	dateHourCounts := make(map[dateHourKey]int)
	var dateHourOrder []dateHourKey

	for _, play := range plays {
		t, err := parseTimestamp(play.PlayedAt)
		if err != nil {
			return ListeningHabits{}, err
		}

		hourCounts[t.Hour()]++

		key := dateHourKey{date: t.Format("2006-01-02"), hour: t.Hour()}
		if _, seen := dateHourCounts[key]; !seen {
			dateHourOrder = append(dateHourOrder, key)
		}
		dateHourCounts[key]++
	}

	habits := ListeningHabits{TotalPlays: len(plays)}

	for hour, count := range hourCounts {
		habits.Hourly = append(habits.Hourly, HourlyBucket{Hour: hour, Count: count})
	}
	sort.Slice(habits.Hourly, func(i, j int) bool {
		return habits.Hourly[i].Hour < habits.Hourly[j].Hour
	})

	for _, key := range dateHourOrder {
		habits.DateRange = append(habits.DateRange, DateHourBucket{
			Date:  key.date,
			Hour:  key.hour,
			Count: dateHourCounts[key],
		})
	}

	return habits, nil
}
