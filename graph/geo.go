package graph

import "math"

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DistanceBetween returns the straight-line distance between two stations, or
// zero when either is unknown.
func (g *Graph) DistanceBetween(a, b string) float64 {
	sa, ok1 := g.stations[a]
	sb, ok2 := g.stations[b]
	if !ok1 || !ok2 {
		return 0
	}
	return HaversineMeters(sa.Latitude, sa.Longitude, sb.Latitude, sb.Longitude)
}
