package network

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CleanStats summarizes a CleanNetwork run.
type CleanStats struct {
	ModesRemoved map[string]int // links that lost the mode
	LinksRemoved int
	NodesRemoved int
}

// CleanNetwork keeps each mode only on links inside the largest strongly
// connected component of that mode's subnetwork. Links left without any mode
// by this process are deleted, and so are nodes no longer referenced.
func CleanNetwork(n *Network, modes []string) CleanStats {
	stats := CleanStats{ModesRemoved: make(map[string]int, len(modes))}
	emptied := make(map[string]bool)

	for _, mode := range modes {
		keep := largestComponent(n, mode)
		for _, l := range n.Links.Items {
			if !l.AllowsMode(mode) {
				continue
			}
			if keep[l.From] && keep[l.To] {
				continue
			}
			l.RemoveModes(mode)
			stats.ModesRemoved[mode]++
			if len(l.AllowedModes()) == 0 {
				emptied[l.ID] = true
			}
		}
		logrus.Infof("Cleaned subnetwork for mode %s: removed mode from %d links, %d nodes remain reachable",
			mode, stats.ModesRemoved[mode], len(keep))
	}

	stats.LinksRemoved = n.RemoveLinks(func(l *Link) bool { return emptied[l.ID] })
	stats.NodesRemoved = n.RemoveOrphanNodes()
	return stats
}

// largestComponent returns the node ids of the biggest strongly connected
// component among links that allow mode.
func largestComponent(n *Network, mode string) map[string]bool {
	ids := make(map[string]int64)
	names := make(map[int64]string)
	g := simple.NewDirectedGraph()
	nodeFor := func(id string) graph.Node {
		if v, ok := ids[id]; ok {
			return g.Node(v)
		}
		node := g.NewNode()
		g.AddNode(node)
		ids[id] = node.ID()
		names[node.ID()] = id
		return node
	}
	for _, l := range n.Links.Items {
		if !l.AllowsMode(mode) {
			continue
		}
		from, to := nodeFor(l.From), nodeFor(l.To)
		if from.ID() == to.ID() {
			continue
		}
		g.SetEdge(g.NewEdge(from, to))
	}

	// equal-sized components are ordered by their smallest node id so the result
	// does not depend on map iteration order
	var best []graph.Node
	bestMin := ""
	for _, comp := range topo.TarjanSCC(g) {
		minName := names[comp[0].ID()]
		for _, node := range comp[1:] {
			if name := names[node.ID()]; name < minName {
				minName = name
			}
		}
		if len(comp) > len(best) || (len(comp) == len(best) && minName < bestMin) {
			best, bestMin = comp, minName
		}
	}
	keep := make(map[string]bool, len(best))
	for _, node := range best {
		keep[names[node.ID()]] = true
	}
	return keep
}
