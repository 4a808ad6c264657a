// Package routing computes free-speed shortest paths on a single-mode subnetwork.
package routing

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
)

// ErrNoRoute is returned when the destination is unreachable from the origin.
var ErrNoRoute = errors.New("no route")

// maxCachedTrees bounds the shortest-path tree cache; it is reset when full.
const maxCachedTrees = 4096

// Router routes between links of one mode. It is safe for concurrent use.
type Router struct {
	mode    string
	net     *network.Network
	g       *simple.WeightedDirectedGraph
	nodeIDs map[string]int64
	// cheapest link per directed node pair
	edges map[[2]int64]*network.Link
	links *geo.NearestIndex

	mu    sync.Mutex
	trees map[int64]path.Shortest
}

// NewRouter builds the routing graph of all links that allow mode.
// Edge weights are free-speed travel times (length / freespeed).
func NewRouter(net *network.Network, mode string) (*Router, error) {
	r := &Router{
		mode:    mode,
		net:     net,
		g:       simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		nodeIDs: make(map[string]int64),
		edges:   make(map[[2]int64]*network.Link),
		trees:   make(map[int64]path.Shortest),
	}
	var candidates []geo.NamedPoint
	for _, l := range net.Links.Items {
		if !l.AllowsMode(mode) {
			continue
		}
		candidates = append(candidates, geo.NamedPoint{ID: l.ID, Coord: net.LinkCoord(l)})
		from, to := r.node(l.From), r.node(l.To)
		if from.ID() == to.ID() {
			continue
		}
		w := travelTime(l)
		key := [2]int64{from.ID(), to.ID()}
		if prev, ok := r.edges[key]; ok && travelTime(prev) <= w {
			continue
		}
		r.edges[key] = l
		r.g.SetWeightedEdge(r.g.NewWeightedEdge(from, to, w))
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("network has no links for mode %s", mode)
	}
	idx, err := geo.NewNearestIndex(candidates)
	if err != nil {
		return nil, err
	}
	r.links = idx
	return r, nil
}

func (r *Router) node(id string) graph.Node {
	if v, ok := r.nodeIDs[id]; ok {
		return r.g.Node(v)
	}
	n := r.g.NewNode()
	r.g.AddNode(n)
	r.nodeIDs[id] = n.ID()
	return n
}

func travelTime(l *network.Link) float64 {
	if l.FreeSpeed <= 0 {
		return math.Inf(1)
	}
	return float64(l.Length) / float64(l.FreeSpeed)
}

// Mode returns the mode the router was built for.
func (r *Router) Mode() string { return r.mode }

// Route returns the link sequence from fromLink to toLink, both included.
func (r *Router) Route(fromLink, toLink string) ([]string, error) {
	if fromLink == toLink {
		return []string{fromLink}, nil
	}
	from, to := r.net.Link(fromLink), r.net.Link(toLink)
	if from == nil || to == nil {
		return nil, fmt.Errorf("route %s -> %s: unknown link", fromLink, toLink)
	}
	start, okStart := r.nodeIDs[from.To]
	end, okEnd := r.nodeIDs[to.From]
	if !okStart || !okEnd {
		return nil, fmt.Errorf("route %s -> %s: %w", fromLink, toLink, ErrNoRoute)
	}
	route := []string{fromLink}
	if start != end {
		nodes, weight := r.tree(start).To(end)
		if len(nodes) == 0 || math.IsInf(weight, 1) {
			return nil, fmt.Errorf("route %s -> %s: %w", fromLink, toLink, ErrNoRoute)
		}
		for i := 1; i < len(nodes); i++ {
			route = append(route, r.edges[[2]int64{nodes[i-1].ID(), nodes[i].ID()}].ID)
		}
	}
	return append(route, toLink), nil
}

func (r *Router) tree(origin int64) path.Shortest {
	r.mu.Lock()
	t, ok := r.trees[origin]
	r.mu.Unlock()
	if ok {
		return t
	}
	t = path.DijkstraFrom(r.g.Node(origin), r.g)
	r.mu.Lock()
	if len(r.trees) >= maxCachedTrees {
		r.trees = make(map[int64]path.Shortest)
	}
	r.trees[origin] = t
	r.mu.Unlock()
	return t
}

// NearestLink returns the id of the routable link whose midpoint is closest to p.
func (r *Router) NearestLink(p orb.Point) string {
	np, _ := r.links.Nearest(p)
	return np.ID
}
