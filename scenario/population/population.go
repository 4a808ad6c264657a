// Package population reads, writes and inspects population files.
package population

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

const doctype = `<!DOCTYPE population SYSTEM "http://www.matsim.org/files/dtd/population_v6.dtd">`

// Well-known person attribute names.
const (
	AttrSubpopulation = "subpopulation"
	AttrVehicles      = "vehicles"
	AttrVehicleTypes  = "vehicleTypes"
	AttrAge           = "age"
	AttrSex           = "sex"
	AttrIncome        = "income"
	AttrCarAvail      = "carAvail"
	AttrPtAbo         = "sim_ptAbo"
	AttrHouseholdSize = "MiD:hhgr_gr"
	AttrRoutingMode   = "routingMode"
)

// Population is the root of a population file.
type Population struct {
	XMLName    xml.Name          `xml:"population"`
	Desc       string            `xml:"desc,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
	Persons    []*Person         `xml:"person"`
}

// Person is one simulated traveler.
type Person struct {
	ID         string            `xml:"id,attr"`
	Attributes matsim.Attributes `xml:"attributes"`
	Plans      []*Plan           `xml:"plan"`
}

// Element is either an *Activity or a *Leg.
type Element interface {
	isElement()
}

// Plan is an ordered sequence of activities and legs.
type Plan struct {
	Score      *float64
	Selected   bool
	Type       string
	Attributes matsim.Attributes
	Elements   []Element
}

// Activity is a stay at a location.
type Activity struct {
	Type       string            `xml:"type,attr"`
	Link       string            `xml:"link,attr,omitempty"`
	Facility   string            `xml:"facility,attr,omitempty"`
	X          *matsim.Float     `xml:"x,attr,omitempty"`
	Y          *matsim.Float     `xml:"y,attr,omitempty"`
	StartTime  string            `xml:"start_time,attr,omitempty"`
	EndTime    string            `xml:"end_time,attr,omitempty"`
	MaxDur     string            `xml:"max_dur,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
}

// Leg is a movement between two activities.
type Leg struct {
	Mode       string            `xml:"mode,attr"`
	DepTime    string            `xml:"dep_time,attr,omitempty"`
	TravTime   string            `xml:"trav_time,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
	Route      *Route            `xml:"route,omitempty"`
}

// Route is the network or generic route of a leg.
type Route struct {
	Type      string `xml:"type,attr,omitempty"`
	StartLink string `xml:"start_link,attr,omitempty"`
	EndLink   string `xml:"end_link,attr,omitempty"`
	TravTime  string `xml:"trav_time,attr,omitempty"`
	Distance  string `xml:"distance,attr,omitempty"`
	VehicleID string `xml:"vehicleRefId,attr,omitempty"`
	Value     string `xml:",chardata"`
}

func (*Activity) isElement() {}
func (*Leg) isElement()      {}

// Read loads a population file (optionally gzip-compressed).
func Read(path string) (*Population, error) {
	var pop Population
	if err := matsim.ReadXML(path, &pop); err != nil {
		return nil, fmt.Errorf("reading population: %w", err)
	}
	return &pop, nil
}

// Write stores the population at path.
func Write(path string, pop *Population) error {
	if err := matsim.WriteXML(path, doctype, pop); err != nil {
		return fmt.Errorf("writing population: %w", err)
	}
	return nil
}

// Person returns the person with the given id, or nil.
func (p *Population) Person(id string) *Person {
	for _, person := range p.Persons {
		if person.ID == id {
			return person
		}
	}
	return nil
}

// RemovePersons drops every person for which remove returns true and reports how many were dropped.
func (p *Population) RemovePersons(remove func(*Person) bool) int {
	kept := p.Persons[:0]
	for _, person := range p.Persons {
		if !remove(person) {
			kept = append(kept, person)
		}
	}
	removed := len(p.Persons) - len(kept)
	for i := len(kept); i < len(p.Persons); i++ {
		p.Persons[i] = nil
	}
	p.Persons = kept
	return removed
}

// SelectedPlan returns the plan flagged as selected, the first plan if none is, or nil.
func (p *Person) SelectedPlan() *Plan {
	for _, plan := range p.Plans {
		if plan.Selected {
			return plan
		}
	}
	if len(p.Plans) > 0 {
		return p.Plans[0]
	}
	return nil
}

// Subpopulation returns the subpopulation attribute; the second result is false when unset.
func (p *Person) Subpopulation() (string, bool) {
	return p.Attributes.Get(AttrSubpopulation)
}

// Age returns nil when the attribute is missing or not numeric.
func (p *Person) Age() *int {
	v, ok := p.Attributes.Get(AttrAge)
	if !ok {
		return nil
	}
	age, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return nil
		}
		age = int(f)
	}
	return &age
}

func (p *Person) attr(name string) string {
	v, _ := p.Attributes.Get(name)
	return v
}

// Sex returns the raw sex attribute or "".
func (p *Person) Sex() string { return p.attr(AttrSex) }

// CarAvail returns the raw car availability attribute or "".
func (p *Person) CarAvail() string { return p.attr(AttrCarAvail) }

// Income returns the income attribute, or 0 when absent.
func (p *Person) Income() float64 {
	v, _ := p.Attributes.Float(AttrIncome)
	return v
}

// Coord returns the activity coordinate if both x and y are set.
func (a *Activity) Coord() (orb.Point, bool) {
	if a.X == nil || a.Y == nil {
		return orb.Point{}, false
	}
	return orb.Point{float64(*a.X), float64(*a.Y)}, true
}

// SetCoord stores the activity coordinate.
func (a *Activity) SetCoord(p orb.Point) {
	a.X = matsim.FloatPtr(p[0])
	a.Y = matsim.FloatPtr(p[1])
}

// RoutingMode returns the routingMode attribute, falling back to the leg mode.
func (l *Leg) RoutingMode() string {
	if v, ok := l.Attributes.Get(AttrRoutingMode); ok && v != "" {
		return v
	}
	return l.Mode
}

// Activities returns the activities of the plan in order.
func (p *Plan) Activities() []*Activity {
	var acts []*Activity
	for _, el := range p.Elements {
		if a, ok := el.(*Activity); ok {
			acts = append(acts, a)
		}
	}
	return acts
}

// Legs returns the legs of the plan in order.
func (p *Plan) Legs() []*Leg {
	var legs []*Leg
	for _, el := range p.Elements {
		if l, ok := el.(*Leg); ok {
			legs = append(legs, l)
		}
	}
	return legs
}
