package account

import (
	"fmt"
	"sort"

	"github.com/playmatch/api/pkg/validation"
	"github.com/playmatch/api/repos/store"
)

var preferredTimes = map[string]bool{
	"morning":   true,
	"afternoon": true,
	"evening":   true,
	"flexible":  true,
}

// validateAvailability checks every time range and normalises an empty
// preferredTimes to flexible.
func validateAvailability(fields map[string]string, a *store.Availability) {
	if a.PreferredTimes == "" {
		a.PreferredTimes = "flexible"
	}
	if !preferredTimes[a.PreferredTimes] {
		fields["availability.preferredTimes"] = "must be morning, afternoon, evening or flexible"
	}
	if len(a.Notes) > maxBioLength {
		fields["availability.notes"] = "notes are too long"
	}

	for _, day := range a.Weekdays.Days() {
		key := "availability.weekdays." + day.Name
		if msg := checkRanges(day.TimeRanges); msg != "" {
			fields[key] = msg
		}
	}
}

func checkRanges(ranges []store.TimeRange) string {
	for _, r := range ranges {
		if !validation.IsClock(r.Start) || !validation.IsClock(r.End) {
			return fmt.Sprintf("time range %s-%s must use HH:mm", r.Start, r.End)
		}
		if r.Start >= r.End {
			return fmt.Sprintf("time range %s-%s must start before it ends", r.Start, r.End)
		}
	}

	sorted := append([]store.TimeRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return fmt.Sprintf("time ranges %s-%s and %s-%s overlap",
				sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End)
		}
	}
	return ""
}
