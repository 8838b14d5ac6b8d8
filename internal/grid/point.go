package grid

// LandPoint is one observed location in degrees. Land points keep the order
// in which they are stored in the dataset.
type LandPoint struct {
	Latitude  float64
	Longitude float64
}

// Points zips latitude and longitude columns into land points. The shorter
// column bounds the result.
func Points(lats, lons []float64) []LandPoint {
	n := min(len(lats), len(lons))
	pts := make([]LandPoint, n)
	for i := range pts {
		pts[i] = LandPoint{Latitude: lats[i], Longitude: lons[i]}
	}
	return pts
}

// Cell is a regular-grid location. Row indexes latitude, Col longitude.
type Cell struct {
	Row int
	Col int
}
