package prepare

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/facilities"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
)

// OSM input encodings.
const (
	OSMFormatPBF = "pbf"
	OSMFormatXML = "xml"
)

// POIOptions configures ReadOSMFacilities.
type POIOptions struct {
	Format      string                       // OSMFormatPBF or OSMFormatXML
	Tags        map[string]map[string]string // tag key -> tag value -> activity type
	IgnoreType  string                       // activity type that marks irrelevant POIs
	Transformer *geo.Transformer             // WGS84 -> scenario CRS
}

// POIStats summarizes an OSM scan.
type POIStats struct {
	Nodes, Ways int
	Ignored     int
	Duplicates  int
}

type osmScanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// ReadOSMFacilities scans OSM nodes and ways and turns every element whose
// tags map to an activity type into a facility. Ways are placed at the
// centroid of their nodes.
func ReadOSMFacilities(ctx context.Context, r io.Reader, opts POIOptions) (*facilities.Facilities, POIStats, error) {
	var stats POIStats
	var scanner osmScanner
	switch opts.Format {
	case OSMFormatPBF:
		s := osmpbf.New(ctx, r, runtime.GOMAXPROCS(0))
		s.SkipRelations = true
		scanner = s
	case OSMFormatXML:
		scanner = osmxml.New(ctx, r)
	default:
		return nil, stats, fmt.Errorf("unknown OSM format %q", opts.Format)
	}
	defer func() { _ = scanner.Close() }()

	// tag keys are evaluated in a fixed order so facility options are deterministic
	keys := lo.Keys(opts.Tags)
	sort.Strings(keys)

	out := &facilities.Facilities{}
	nodeCoords := make(map[osm.NodeID]orb.Point)
	seen := make(map[string]bool)

	add := func(id string, tags osm.Tags, lonLat orb.Point) error {
		types := activityTypes(tags, keys, opts.Tags)
		if len(types) == 0 {
			return nil
		}
		relevant := lo.Without(types, opts.IgnoreType)
		if len(relevant) == 0 {
			stats.Ignored++
			return nil
		}
		if seen[id] {
			stats.Duplicates++
			return nil
		}
		p := lonLat
		if opts.Transformer != nil {
			var err error
			if p, err = opts.Transformer.Transform(lonLat); err != nil {
				return err
			}
		}
		seen[id] = true
		out.Items = append(out.Items, facilities.NewFacility(id, p, relevant...))
		return nil
	}

	for scanner.Scan() {
		switch e := scanner.Object().(type) {
		case *osm.Node:
			p := orb.Point{e.Lon, e.Lat}
			nodeCoords[e.ID] = p
			if len(e.Tags) == 0 {
				continue
			}
			stats.Nodes++
			if err := add(elementID(osm.TypeNode, int64(e.ID)), e.Tags, p); err != nil {
				return nil, stats, err
			}
		case *osm.Way:
			if len(e.Tags) == 0 {
				continue
			}
			c, ok := wayCentroid(e, nodeCoords)
			if !ok {
				continue
			}
			stats.Ways++
			if err := add(elementID(osm.TypeWay, int64(e.ID)), e.Tags, c); err != nil {
				return nil, stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scanning OSM data: %w", err)
	}
	return out, stats, nil
}

func activityTypes(tags osm.Tags, keys []string, mapping map[string]map[string]string) []string {
	var types []string
	for _, k := range keys {
		v := tags.Find(k)
		if v == "" {
			continue
		}
		if t, ok := mapping[k][v]; ok {
			types = append(types, t)
		}
	}
	return lo.Uniq(types)
}

func wayCentroid(w *osm.Way, nodeCoords map[osm.NodeID]orb.Point) (orb.Point, bool) {
	var sx, sy float64
	n := 0
	for _, wn := range w.Nodes {
		if p, ok := nodeCoords[wn.ID]; ok {
			sx += p[0]
			sy += p[1]
			n++
		}
	}
	if n == 0 {
		return orb.Point{}, false
	}
	return orb.Point{sx / float64(n), sy / float64(n)}, true
}

// elementID names a facility after its OSM element. Node and way ids are
// separate namespaces, so the type is part of the id.
func elementID(t osm.Type, id int64) string {
	return string(t) + "/" + strconv.FormatInt(id, 10)
}

// MergeFacilities copies every facility of add into base under prefix+id and
// reports how many were added. Facilities whose options are all ignoreType are skipped.
func MergeFacilities(base, add *facilities.Facilities, prefix, ignoreType string) (int, error) {
	added := 0
	for _, f := range add.Items {
		opts := lo.Filter(f.Activities, func(o *facilities.ActivityOption, _ int) bool { return o.Type != ignoreType })
		if len(opts) == 0 {
			continue
		}
		nf := &facilities.Facility{ID: prefix + f.ID, X: f.X, Y: f.Y, Activities: opts}
		if err := base.Add(nf); err != nil {
			return added, err
		}
		added++
	}
	logrus.Infof("Merged %d facilities into %d existing ones", added, len(base.Items)-added)
	return added, nil
}
