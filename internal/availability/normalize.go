package availability

import "sort"

// Normalized maps a date to its bookable time labels.
// A date key never maps to an empty slice.
type Normalized map[string][]string

// Normalize drops dates without data and keeps only available labels,
// in the order the endpoint listed them.
func Normalize(raw RawAvailability) Normalized {
	out := Normalized{}
	for _, day := range raw {
		var labels []string
		for _, s := range day.Slots {
			if s.Available {
				labels = append(labels, s.Label)
			}
		}
		// A repeated date key in the body: last one wins, like a JSON map.
		if len(labels) == 0 {
			delete(out, day.Date)
			continue
		}
		out[day.Date] = labels
	}
	return out
}

// Dates returns the dates sorted lexicographically (YYYY-MM-DD sorts by time).
func (n Normalized) Dates() []string {
	dates := make([]string, 0, len(n))
	for d := range n {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Count returns the total number of available slots.
func (n Normalized) Count() int {
	c := 0
	for _, labels := range n {
		c += len(labels)
	}
	return c
}

func (n Normalized) Empty() bool { return len(n) == 0 }
