// Package testutil provides shared fixture builders for the scenario test packages.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

// Act builds an activity with a link and a coordinate.
func Act(actType, link string, x, y float64) *population.Activity {
	a := &population.Activity{Type: actType, Link: link}
	a.SetCoord(orb.Point{x, y})
	return a
}

// Leg builds a leg with mode and routingMode set to mode.
func Leg(mode string) *population.Leg {
	l := &population.Leg{Mode: mode}
	l.Attributes.SetString(population.AttrRoutingMode, mode)
	return l
}

// Person builds a person with one selected plan. An empty subpopulation leaves
// the attribute unset.
func Person(id, subpopulation string, elements ...population.Element) *population.Person {
	p := &population.Person{ID: id}
	if subpopulation != "" {
		p.Attributes.SetString(population.AttrSubpopulation, subpopulation)
	}
	p.Plans = []*population.Plan{{Selected: true, Elements: elements}}
	return p
}

// Population wraps persons.
func Population(persons ...*population.Person) *population.Population {
	return &population.Population{Persons: persons}
}

// LinkSpec describes a link for Network.
type LinkSpec struct {
	ID, From, To string
	Modes        string
	Length       float64
	FreeSpeed    float64
	Type         string
}

// Network builds a network from node coordinates and links. Nodes are added in
// the order of ids.
func Network(t *testing.T, ids []string, coords map[string]orb.Point, links ...LinkSpec) *network.Network {
	t.Helper()
	n := &network.Network{}
	for _, id := range ids {
		c := coords[id]
		require.NoError(t, n.AddNode(&network.Node{ID: id, X: matsim.Float(c[0]), Y: matsim.Float(c[1])}))
	}
	for _, ls := range links {
		length, speed := ls.Length, ls.FreeSpeed
		if length == 0 {
			length = 100
		}
		if speed == 0 {
			speed = 13.89
		}
		l := &network.Link{ID: ls.ID, From: ls.From, To: ls.To, Length: matsim.Float(length),
			FreeSpeed: matsim.Float(speed), Capacity: 1000, PermLanes: 1, Modes: ls.Modes}
		if ls.Type != "" {
			l.Attributes.SetString(network.AttrType, ls.Type)
		}
		require.NoError(t, n.AddLink(l))
	}
	return n
}

// Corridor builds a west-east chain of nodes n0..n(k) spaced 1000m apart with
// links in both directions ("f<i>" eastbound, "b<i>" westbound).
func Corridor(t *testing.T, k int, modes string) *network.Network {
	t.Helper()
	var ids []string
	coords := map[string]orb.Point{}
	for i := 0; i <= k; i++ {
		id := nodeID(i)
		ids = append(ids, id)
		coords[id] = orb.Point{float64(i) * 1000, 0}
	}
	var links []LinkSpec
	for i := 0; i < k; i++ {
		links = append(links,
			LinkSpec{ID: "f" + strconv.Itoa(i), From: nodeID(i), To: nodeID(i + 1), Modes: modes, Length: 1000, Type: "highway.residential"},
			LinkSpec{ID: "b" + strconv.Itoa(i), From: nodeID(i + 1), To: nodeID(i), Modes: modes, Length: 1000, Type: "highway.residential"},
		)
	}
	return Network(t, ids, coords, links...)
}

func nodeID(i int) string { return "n" + strconv.Itoa(i) }

// Square returns an axis-aligned square polygon.
func Square(x0, y0, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0}}}
}

// WriteArea stores polygons as a GeoJSON feature collection under dir and
// returns the file path.
func WriteArea(t *testing.T, dir string, polygons ...orb.Polygon) string {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, p := range polygons {
		fc.Append(geojson.NewFeature(p))
	}
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	path := filepath.Join(dir, "area.geojson")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
