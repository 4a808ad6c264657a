package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// ErrNoPoints is returned when a nearest lookup is built from nothing.
var ErrNoPoints = errors.New("no points to search")

// NamedPoint is a candidate of a nearest lookup.
type NamedPoint struct {
	ID    string
	Name  string
	Coord orb.Point
}

type indexedPoint struct {
	idx int
	p   orb.Point
}

func (ip indexedPoint) Point() orb.Point { return ip.p }

// NearestIndex answers nearest-point queries. The result equals an exhaustive
// Euclidean scan; ties resolve to the point added first.
type NearestIndex struct {
	points []NamedPoint
	qt     *quadtree.Quadtree
}

// NewNearestIndex builds an index over points.
func NewNearestIndex(points []NamedPoint) (*NearestIndex, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	bound := orb.Bound{Min: points[0].Coord, Max: points[0].Coord}
	for _, p := range points[1:] {
		bound = bound.Extend(p.Coord)
	}
	qt := quadtree.New(bound.Pad(1))
	for i, p := range points {
		if err := qt.Add(indexedPoint{idx: i, p: p.Coord}); err != nil {
			return nil, err
		}
	}
	return &NearestIndex{points: points, qt: qt}, nil
}

// Len returns the number of indexed points.
func (n *NearestIndex) Len() int { return len(n.points) }

// Nearest returns the closest point to p and its distance.
func (n *NearestIndex) Nearest(p orb.Point) (NamedPoint, float64) {
	found := n.qt.Find(p)
	radius := planar.Distance(found.Point(), p)

	// collect every candidate at the same distance to resolve ties by insertion order
	b := orb.Bound{Min: p, Max: p}.Pad(radius + 1e-6)
	best, bestDist := -1, math.Inf(1)
	for _, c := range n.qt.InBound(nil, b) {
		ip := c.(indexedPoint)
		d := planar.Distance(ip.p, p)
		if d < bestDist || (d == bestDist && ip.idx < best) {
			best, bestDist = ip.idx, d
		}
	}
	return n.points[best], bestDist
}
