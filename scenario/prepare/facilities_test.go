package prepare

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresden-mobility/dresden-scenario/scenario/facilities"
)

const poiOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="51.05" lon="13.73"><tag k="amenity" v="school"/></node>
  <node id="2" lat="51.06" lon="13.74"><tag k="amenity" v="parking"/></node>
  <node id="3" lat="51.00" lon="13.70"/>
  <node id="4" lat="51.02" lon="13.72"/>
  <node id="5" lat="51.07" lon="13.75"><tag k="shop" v="supermarket"/><tag k="amenity" v="school"/></node>
  <node id="1" lat="51.05" lon="13.73"><tag k="amenity" v="school"/></node>
  <way id="10"><nd ref="3"/><nd ref="4"/><tag k="shop" v="supermarket"/></way>
  <way id="1"><nd ref="3"/><nd ref="4"/><tag k="shop" v="supermarket"/></way>
</osm>`

func poiOptions() POIOptions {
	return POIOptions{
		Format: OSMFormatXML,
		Tags: map[string]map[string]string{
			"amenity": {"school": "education", "parking": "ignore"},
			"shop":    {"supermarket": "shop"},
		},
		IgnoreType: "ignore",
	}
}

func TestReadOSMFacilities_NodesAndWayCentroids(t *testing.T) {
	// GIVEN OSM data with tagged nodes and ways
	// WHEN facilities are read without projection
	fac, stats, err := ReadOSMFacilities(context.Background(), strings.NewReader(poiOSM), poiOptions())
	require.NoError(t, err)

	// THEN mapped elements become facilities, ignored and repeated elements are skipped
	assert.Equal(t, POIStats{Nodes: 4, Ways: 2, Ignored: 1, Duplicates: 1}, stats)
	require.Len(t, fac.Items, 4)

	school := fac.Facility("node/1")
	require.NotNil(t, school)
	assert.Equal(t, orb.Point{13.73, 51.05}, school.Coord())

	mixed := fac.Facility("node/5")
	require.NotNil(t, mixed)
	require.Len(t, mixed.Activities, 2)
	assert.Equal(t, "education", mixed.Activities[0].Type)
	assert.Equal(t, "shop", mixed.Activities[1].Type)

	way := fac.Facility("way/10")
	require.NotNil(t, way)
	assert.InDelta(t, 13.71, way.Coord()[0], 1e-9)
	assert.InDelta(t, 51.01, way.Coord()[1], 1e-9)
}

func TestReadOSMFacilities_NodeAndWayWithSameIDAreDistinct(t *testing.T) {
	// GIVEN a node and a way sharing the numeric id 5
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="3" lat="51.00" lon="13.70"/>
  <node id="4" lat="51.02" lon="13.72"/>
  <node id="5" lat="51.07" lon="13.75"><tag k="shop" v="supermarket"/></node>
  <way id="5"><nd ref="3"/><nd ref="4"/><tag k="shop" v="supermarket"/></way>
</osm>`

	// WHEN facilities are read
	fac, stats, err := ReadOSMFacilities(context.Background(), strings.NewReader(doc), poiOptions())
	require.NoError(t, err)

	// THEN both become facilities with type-qualified ids
	assert.Equal(t, 0, stats.Duplicates)
	require.Len(t, fac.Items, 2)
	assert.NotNil(t, fac.Facility("node/5"))
	assert.NotNil(t, fac.Facility("way/5"))
}

func TestReadOSMFacilities_UnknownFormat(t *testing.T) {
	opts := poiOptions()
	opts.Format = "csv"

	_, _, err := ReadOSMFacilities(context.Background(), strings.NewReader(poiOSM), opts)

	assert.Error(t, err)
}

func TestMergeFacilities_PrefixesAndDropsIgnored(t *testing.T) {
	// GIVEN existing facilities and POIs, one of them ignored only
	base := &facilities.Facilities{Items: []*facilities.Facility{facilities.NewFacility("home1", orb.Point{0, 0}, "home")}}
	add := &facilities.Facilities{Items: []*facilities.Facility{
		facilities.NewFacility("1", orb.Point{1, 1}, "education"),
		facilities.NewFacility("2", orb.Point{2, 2}, "ignore"),
		facilities.NewFacility("3", orb.Point{3, 3}, "ignore", "shop"),
	}}

	// WHEN merged
	added, err := MergeFacilities(base, add, "accessibility_", "ignore")
	require.NoError(t, err)

	// THEN two facilities are added under the prefix without ignore options
	assert.Equal(t, 2, added)
	require.Len(t, base.Items, 3)
	assert.Nil(t, base.Facility("accessibility_2"))
	third := base.Facility("accessibility_3")
	require.NotNil(t, third)
	require.Len(t, third.Activities, 1)
	assert.Equal(t, "shop", third.Activities[0].Type)
}

func TestMergeFacilities_DuplicateIDIsError(t *testing.T) {
	base := &facilities.Facilities{Items: []*facilities.Facility{facilities.NewFacility("x_1", orb.Point{0, 0}, "home")}}
	add := &facilities.Facilities{Items: []*facilities.Facility{facilities.NewFacility("1", orb.Point{1, 1}, "shop")}}

	_, err := MergeFacilities(base, add, "x_", "ignore")

	assert.Error(t, err)
}
