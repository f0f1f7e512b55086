package reconcile

import "heritage/core/dataset"

// Overlaps reports whether a lifetime starting in born overlaps the reign.
// A nil died is read as dataset.SentinelYear.
func Overlaps(born int, died *int, iv dataset.Interval) bool {
	end := dataset.SentinelYear
	if died != nil {
		end = *died
	}

	// Open-ended lifetimes only match the reign(s) covering the birth year,
	// not every reign up to the present. This follows the stored data's
	// convention and probably stands in for a missing "living" flag; keep
	// it as is until the data model grows one.
	if end == dataset.SentinelYear {
		return iv.FromYear() <= born && born <= iv.ToYear()
	}

	return born <= iv.ToYear() && end >= iv.FromYear()
}

// GetOverlapping returns the intervals overlapping the lifetime, in the
// order they appear in intervals.
func GetOverlapping(born int, died *int, intervals []dataset.Interval) []dataset.Interval {
	var out []dataset.Interval
	for _, iv := range intervals {
		if Overlaps(born, died, iv) {
			out = append(out, iv)
		}
	}
	return out
}

// MatchIDs is GetOverlapping reduced to interval ids. It never returns nil.
func MatchIDs(born int, died *int, intervals []dataset.Interval) []string {
	matched := GetOverlapping(born, died, intervals)
	ids := make([]string, 0, len(matched))
	for _, iv := range matched {
		ids = append(ids, iv.ID)
	}
	return ids
}
