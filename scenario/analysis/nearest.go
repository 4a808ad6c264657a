package analysis

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/transit"
)

// ErrNoHomes is returned when a nearest-point analysis gets no home locations.
var ErrNoHomes = errors.New("no home locations")

// NearestMatch pairs a home with the closest candidate point.
type NearestMatch struct {
	Home     Home
	Nearest  geo.NamedPoint
	Distance float64
}

func matchNearest(points []geo.NamedPoint, homes []Home) ([]NearestMatch, error) {
	if len(homes) == 0 {
		return nil, ErrNoHomes
	}
	idx, err := geo.NewNearestIndex(points)
	if err != nil {
		return nil, err
	}
	out := make([]NearestMatch, len(homes))
	for i, h := range homes {
		np, d := idx.Nearest(h.Coord)
		out[i] = NearestMatch{Home: h, Nearest: np, Distance: d}
	}
	return out, nil
}

// ReadMeasurementPoints reads accessibility measurement points from a CSV with
// id, xcoord and ycoord columns. Repeated ids keep their first coordinate.
func ReadMeasurementPoints(path string) ([]geo.NamedPoint, error) {
	t, err := readTable(path, ',')
	if err != nil {
		return nil, err
	}
	if err := t.require("id", "xcoord", "ycoord"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	seen := make(map[string]bool)
	var points []geo.NamedPoint
	for i, row := range t.rows {
		id := t.get(row, "id")
		if seen[id] {
			continue
		}
		c, err := t.point(row, "xcoord", "ycoord")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		seen[id] = true
		points = append(points, geo.NamedPoint{ID: id, Coord: c})
	}
	return points, nil
}

// MapAccessibility assigns every home its nearest measurement point.
func MapAccessibility(points []geo.NamedPoint, homes []Home) ([]NearestMatch, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("measurement points: %w", geo.ErrNoPoints)
	}
	logrus.Infof("Searching the nearest of %d measurement points for %d homes", len(points), len(homes))
	return matchNearest(points, homes)
}

// WriteAccessibilityMapping stores the home to measurement point mapping.
func WriteAccessibilityMapping(path string, matches []NearestMatch) error {
	header := []string{"person_id", "home_x", "home_y", "nearest_measurement_point_id",
		"nearest_measurement_point_x", "nearest_measurement_point_y", "dist_to_nearest_measurement_point"}
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{m.Home.PersonID, formatFloat(m.Home.Coord[0]), formatFloat(m.Home.Coord[1]),
			m.Nearest.ID, formatFloat(m.Nearest.Coord[0]), formatFloat(m.Nearest.Coord[1]), formatFloat(m.Distance)}
	}
	return writeTable(path, header, rows)
}

// StopsInArea returns the stop facilities with a coordinate inside area.
func StopsInArea(s *transit.Schedule, area *geo.Area) []geo.NamedPoint {
	var stops []geo.NamedPoint
	for _, st := range s.Stops {
		c, ok := st.Coord()
		if !ok || !area.Contains(c) {
			continue
		}
		stops = append(stops, geo.NamedPoint{ID: st.ID, Name: st.DisplayName(), Coord: c})
	}
	return stops
}

// NearestStops assigns every home its closest stop.
func NearestStops(stops []geo.NamedPoint, homes []Home) ([]NearestMatch, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("transit stops in area: %w", geo.ErrNoPoints)
	}
	logrus.Infof("Calculating the nearest of %d transit stops for %d homes", len(stops), len(homes))
	return matchNearest(stops, homes)
}

// WalkTime converts a beeline distance into walking seconds.
func WalkTime(dist float64, access defaults.StopAccess) float64 {
	return dist * access.DetourFactor / access.WalkSpeed
}

// WriteStopDistances stores the distance and walking time to the nearest stop.
func WriteStopDistances(path string, matches []NearestMatch, access defaults.StopAccess) error {
	header := []string{"person_id", "x", "y", "dist_to_nearest_transit_stop", "time_to_nearest_transit_stop", "nearest_transit_stop"}
	rows := make([][]string, len(matches))
	for i, m := range matches {
		rows[i] = []string{m.Home.PersonID, formatFloat(m.Home.Coord[0]), formatFloat(m.Home.Coord[1]),
			formatFloat(m.Distance), formatFloat(WalkTime(m.Distance, access)), m.Nearest.Name}
	}
	return writeTable(path, header, rows)
}
