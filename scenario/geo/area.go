// Package geo provides study areas, buffered containment tests, projections
// and nearest-point lookups in the scenario coordinate system.
package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Area is a (multi)polygon study area. Coordinates are expected in the
// scenario CRS; no reprojection is applied on load.
type Area struct {
	polygons orb.MultiPolygon
	bound    orb.Bound
}

// NewArea wraps polygons into an Area. Rings are closed if necessary.
func NewArea(polygons ...orb.Polygon) *Area {
	mp := make(orb.MultiPolygon, 0, len(polygons))
	for _, p := range polygons {
		closed := make(orb.Polygon, 0, len(p))
		for _, r := range p {
			closed = append(closed, closeRing(r))
		}
		if len(closed) > 0 && len(closed[0]) > 0 {
			mp = append(mp, closed)
		}
	}
	return &Area{polygons: mp, bound: mp.Bound()}
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r[:len(r):len(r)], r[0])
	}
	return r
}

// LoadArea reads an ESRI shapefile (.shp) or a GeoJSON feature collection
// (.geojson, .json). Non-polygonal features are ignored.
func LoadArea(path string) (*Area, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return loadShapefile(path)
	case ".geojson", ".json":
		return loadGeoJSON(path)
	default:
		return nil, fmt.Errorf("unsupported area file %s (want .shp or .geojson)", path)
	}
}

func loadShapefile(path string) (*Area, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile %s: %w", path, err)
	}
	defer dec.Close()

	var polygons []orb.Polygon
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		switch gg := g.(type) {
		case geom.Polygon:
			polygons = append(polygons, fromGeomPolygon(gg))
		case geom.MultiPolygon:
			for _, p := range gg {
				polygons = append(polygons, fromGeomPolygon(p))
			}
		}
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("decoding shapefile %s: %w", path, err)
	}
	return NewArea(polygons...), nil
}

func fromGeomPolygon(p geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, path := range p {
		ring := make(orb.Ring, 0, len(path)+1)
		for _, pt := range path {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		out = append(out, ring)
	}
	return out
}

func loadGeoJSON(path string) (*Area, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing geojson %s: %w", path, err)
	}
	var polygons []orb.Polygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		}
	}
	return NewArea(polygons...), nil
}

// IsEmpty reports whether the area has no polygons.
func (a *Area) IsEmpty() bool { return a == nil || len(a.polygons) == 0 }

// Bound returns the bounding box of the area.
func (a *Area) Bound() orb.Bound { return a.bound }

// Contains reports whether p lies inside the area (holes excluded).
func (a *Area) Contains(p orb.Point) bool {
	if a.IsEmpty() || !a.bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(a.polygons, p)
}

// WithinBuffer reports whether p lies inside the area grown by d metres.
func (a *Area) WithinBuffer(p orb.Point, d float64) bool {
	if a.IsEmpty() {
		return false
	}
	if d <= 0 {
		return a.Contains(p)
	}
	if !a.bound.Pad(d).Contains(p) {
		return false
	}
	if planar.MultiPolygonContains(a.polygons, p) {
		return true
	}
	return a.boundaryDistance(p) <= d
}

func (a *Area) boundaryDistance(p orb.Point) float64 {
	return planar.DistanceFrom(a.polygons, p)
}

// SegmentWithinBuffer reports whether the straight segment p-q touches the
// area grown by d metres.
func (a *Area) SegmentWithinBuffer(p, q orb.Point, d float64) bool {
	if a.IsEmpty() {
		return false
	}
	if d < 0 {
		d = 0
	}
	seg := orb.Bound{Min: p, Max: p}.Extend(q)
	if !a.bound.Pad(d).Intersects(seg) {
		return false
	}
	if a.WithinBuffer(p, d) || a.WithinBuffer(q, d) {
		return true
	}
	// both ends are outside: the segment touches the buffer only if it comes
	// within d of some boundary edge
	for _, poly := range a.polygons {
		for _, ring := range poly {
			for i := 1; i < len(ring); i++ {
				if segmentDistance(p, q, ring[i-1], ring[i]) <= d {
					return true
				}
			}
		}
	}
	return false
}

// segmentDistance is the minimal distance between segments ab and cd.
func segmentDistance(a, b, c, d orb.Point) float64 {
	if segmentsIntersect(a, b, c, d) {
		return 0
	}
	return min(
		planar.DistanceFromSegment(c, d, a),
		planar.DistanceFromSegment(c, d, b),
		planar.DistanceFromSegment(a, b, c),
		planar.DistanceFromSegment(a, b, d),
	)
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func segmentsIntersect(a, b, c, d orb.Point) bool {
	d1, d2 := orientation(c, d, a), orientation(c, d, b)
	d3, d4 := orientation(a, b, c), orientation(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
