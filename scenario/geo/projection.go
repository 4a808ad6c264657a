package geo

import (
	"fmt"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
)

// WGS84 is the CRS of OSM data.
const WGS84 = "EPSG:4326"

// Proj4 definitions of the coordinate systems used by the scenario.
var knownCRS = map[string]string{
	"EPSG:4326":  "+proj=longlat +datum=WGS84 +no_defs",
	"WGS84":      "+proj=longlat +datum=WGS84 +no_defs",
	"EPSG:25832": "+proj=utm +zone=32 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	"EPSG:25833": "+proj=utm +zone=33 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
}

// Transformer converts points between two coordinate systems.
type Transformer struct {
	from, to string
	t        proj.Transformer
}

// NewTransformer builds a transformation between two CRS given as EPSG codes
// known to this package or as proj4 strings.
func NewTransformer(from, to string) (*Transformer, error) {
	src, err := parseCRS(from)
	if err != nil {
		return nil, err
	}
	dst, err := parseCRS(to)
	if err != nil {
		return nil, err
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("building transform %s -> %s: %w", from, to, err)
	}
	return &Transformer{from: from, to: to, t: t}, nil
}

func parseCRS(name string) (*proj.SR, error) {
	def := name
	if d, ok := knownCRS[name]; ok {
		def = d
	}
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("parsing CRS %q: %w", name, err)
	}
	return sr, nil
}

// Transform converts p. Geographic coordinates are (lon, lat) in degrees.
func (t *Transformer) Transform(p orb.Point) (orb.Point, error) {
	x, y, err := t.t(p[0], p[1])
	if err != nil {
		return orb.Point{}, fmt.Errorf("transforming %v from %s to %s: %w", p, t.from, t.to, err)
	}
	return orb.Point{x, y}, nil
}
