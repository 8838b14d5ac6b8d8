// Package patch collapses vegetation patches that share a land point into a
// single value per land point.
package patch

// Group is a maximal run of consecutive records with identical coordinates.
type Group struct {
	Start int
	Count int
}

// End returns the index one past the last member of g.
func (g Group) End() int { return g.Start + g.Count }

// Groups partitions the records into runs of identical (lat, lon) in a single
// left-to-right scan. Groups appear in first-occurrence order and cover every
// index exactly once. Only the common prefix of lats and lons is scanned.
func Groups(lats, lons []float64) []Group {
	n := min(len(lats), len(lons))
	if n == 0 {
		return nil
	}
	groups := []Group{{Start: 0, Count: 1}}
	for i := 1; i < n; i++ {
		if lats[i] == lats[i-1] && lons[i] == lons[i-1] {
			groups[len(groups)-1].Count++
			continue
		}
		groups = append(groups, Group{Start: i, Count: 1})
	}
	return groups
}
