// Package facilities reads and writes activity facility files.
package facilities

import (
	"encoding/xml"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

const doctype = `<!DOCTYPE facilities SYSTEM "http://www.matsim.org/files/dtd/facilities_v1.dtd">`

// Facilities is the root of a facilities file.
type Facilities struct {
	XMLName    xml.Name          `xml:"facilities"`
	Name       string            `xml:"name,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
	Items      []*Facility       `xml:"facility"`
}

// Facility is a location offering one or more activity types.
type Facility struct {
	ID         string            `xml:"id,attr"`
	X          matsim.Float      `xml:"x,attr"`
	Y          matsim.Float      `xml:"y,attr"`
	LinkID     string            `xml:"linkId,attr,omitempty"`
	Desc       string            `xml:"desc,attr,omitempty"`
	Activities []*ActivityOption `xml:"activity"`
	Attributes matsim.Attributes `xml:"attributes"`
}

// ActivityOption is an activity type a facility offers.
type ActivityOption struct {
	Type     string `xml:"type,attr"`
	Capacity *struct {
		Value matsim.Float `xml:"value,attr"`
	} `xml:"capacity,omitempty"`
}

// Read loads a facilities file.
func Read(path string) (*Facilities, error) {
	var f Facilities
	if err := matsim.ReadXML(path, &f); err != nil {
		return nil, fmt.Errorf("reading facilities: %w", err)
	}
	return &f, nil
}

// Write stores the facilities at path.
func Write(path string, f *Facilities) error {
	if err := matsim.WriteXML(path, doctype, f); err != nil {
		return fmt.Errorf("writing facilities: %w", err)
	}
	return nil
}

// Facility returns the facility with the given id, or nil.
func (f *Facilities) Facility(id string) *Facility {
	for _, fac := range f.Items {
		if fac.ID == id {
			return fac
		}
	}
	return nil
}

// Add appends a facility. Duplicate ids are an error.
func (f *Facilities) Add(fac *Facility) error {
	if f.Facility(fac.ID) != nil {
		return fmt.Errorf("duplicate facility %s", fac.ID)
	}
	f.Items = append(f.Items, fac)
	return nil
}

// NewFacility builds a facility at p offering the given activity types.
func NewFacility(id string, p orb.Point, types ...string) *Facility {
	fac := &Facility{ID: id, X: matsim.Float(p[0]), Y: matsim.Float(p[1])}
	for _, t := range types {
		fac.Activities = append(fac.Activities, &ActivityOption{Type: t})
	}
	return fac
}

// Coord returns the facility location.
func (fac *Facility) Coord() orb.Point {
	return orb.Point{float64(fac.X), float64(fac.Y)}
}
