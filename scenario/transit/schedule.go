// Package transit reads the stop facilities of a transit schedule.
package transit

import (
	"encoding/xml"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// Schedule is the part of a transitSchedule file needed for stop analyses.
// Transit lines are skipped while decoding.
type Schedule struct {
	XMLName xml.Name `xml:"transitSchedule"`
	Stops   []*Stop  `xml:"transitStops>stopFacility"`
}

// Stop is a transit stop facility.
type Stop struct {
	ID        string        `xml:"id,attr"`
	X         *matsim.Float `xml:"x,attr,omitempty"`
	Y         *matsim.Float `xml:"y,attr,omitempty"`
	Name      string        `xml:"name,attr,omitempty"`
	LinkRefID string        `xml:"linkRefId,attr,omitempty"`
	StopArea  string        `xml:"stopAreaId,attr,omitempty"`
}

// ReadSchedule loads the stop facilities of a transit schedule file.
func ReadSchedule(path string) (*Schedule, error) {
	var s Schedule
	if err := matsim.ReadXML(path, &s); err != nil {
		return nil, fmt.Errorf("reading transit schedule: %w", err)
	}
	return &s, nil
}

// Coord returns the stop coordinate; stops without one report false.
func (s *Stop) Coord() (orb.Point, bool) {
	if s.X == nil || s.Y == nil {
		return orb.Point{}, false
	}
	return orb.Point{float64(*s.X), float64(*s.Y)}, true
}

// DisplayName returns the stop name, or its id when unnamed.
func (s *Stop) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
