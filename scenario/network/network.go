// Package network reads, writes and edits network files.
package network

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

const doctype = `<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">`

// Well-known link attribute names.
const (
	AttrType                = "type"
	AttrDisallowedNextLinks = "disallowedNextLinks"
	AttrHbefaRoadType       = "hbefa_road_type"
)

// Network is the root of a network file.
type Network struct {
	XMLName    xml.Name          `xml:"network"`
	Name       string            `xml:"name,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
	Nodes      []*Node           `xml:"nodes>node"`
	Links      LinkSet           `xml:"links"`

	nodeIndex map[string]*Node
	linkIndex map[string]*Link
}

// LinkSet is the <links> element with its set-wide attributes.
type LinkSet struct {
	CapPeriod          string  `xml:"capperiod,attr,omitempty"`
	EffectiveCellSize  string  `xml:"effectivecellsize,attr,omitempty"`
	EffectiveLaneWidth string  `xml:"effectivelanewidth,attr,omitempty"`
	Items              []*Link `xml:"link"`
}

// Node is a network vertex.
type Node struct {
	ID         string            `xml:"id,attr"`
	X          matsim.Float      `xml:"x,attr"`
	Y          matsim.Float      `xml:"y,attr"`
	Z          *matsim.Float     `xml:"z,attr,omitempty"`
	Type       string            `xml:"type,attr,omitempty"`
	OrigID     string            `xml:"origid,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
}

// Link is a directed network edge.
type Link struct {
	ID         string            `xml:"id,attr"`
	From       string            `xml:"from,attr"`
	To         string            `xml:"to,attr"`
	Length     matsim.Float      `xml:"length,attr"`
	FreeSpeed  matsim.Float      `xml:"freespeed,attr"`
	Capacity   matsim.Float      `xml:"capacity,attr"`
	PermLanes  matsim.Float      `xml:"permlanes,attr"`
	Oneway     string            `xml:"oneway,attr,omitempty"`
	Modes      string            `xml:"modes,attr"`
	OrigID     string            `xml:"origid,attr,omitempty"`
	Attributes matsim.Attributes `xml:"attributes"`
}

// Read loads a network file and indexes its nodes and links.
func Read(path string) (*Network, error) {
	var n Network
	if err := matsim.ReadXML(path, &n); err != nil {
		return nil, fmt.Errorf("reading network: %w", err)
	}
	n.reindex()
	return &n, nil
}

// Write stores the network at path.
func Write(path string, n *Network) error {
	if err := matsim.WriteXML(path, doctype, n); err != nil {
		return fmt.Errorf("writing network: %w", err)
	}
	return nil
}

func (n *Network) reindex() {
	n.nodeIndex = make(map[string]*Node, len(n.Nodes))
	for _, node := range n.Nodes {
		n.nodeIndex[node.ID] = node
	}
	n.linkIndex = make(map[string]*Link, len(n.Links.Items))
	for _, l := range n.Links.Items {
		n.linkIndex[l.ID] = l
	}
}

func (n *Network) ensureIndex() {
	if n.nodeIndex == nil || n.linkIndex == nil {
		n.reindex()
	}
}

// AddNode appends a node, replacing nothing. Duplicate ids are an error.
func (n *Network) AddNode(node *Node) error {
	n.ensureIndex()
	if _, ok := n.nodeIndex[node.ID]; ok {
		return fmt.Errorf("duplicate node %s", node.ID)
	}
	n.Nodes = append(n.Nodes, node)
	n.nodeIndex[node.ID] = node
	return nil
}

// AddLink appends a link whose end nodes must already exist.
func (n *Network) AddLink(l *Link) error {
	n.ensureIndex()
	if _, ok := n.linkIndex[l.ID]; ok {
		return fmt.Errorf("duplicate link %s", l.ID)
	}
	if n.nodeIndex[l.From] == nil || n.nodeIndex[l.To] == nil {
		return fmt.Errorf("link %s references unknown node", l.ID)
	}
	n.Links.Items = append(n.Links.Items, l)
	n.linkIndex[l.ID] = l
	return nil
}

// Node returns the node with the given id, or nil.
func (n *Network) Node(id string) *Node {
	n.ensureIndex()
	return n.nodeIndex[id]
}

// Link returns the link with the given id, or nil.
func (n *Network) Link(id string) *Link {
	n.ensureIndex()
	return n.linkIndex[id]
}

// RemoveLinks drops every link for which remove returns true and reports the count.
func (n *Network) RemoveLinks(remove func(*Link) bool) int {
	before := len(n.Links.Items)
	n.Links.Items = lo.Reject(n.Links.Items, func(l *Link, _ int) bool { return remove(l) })
	n.reindex()
	return before - len(n.Links.Items)
}

// RemoveOrphanNodes drops nodes no link touches and reports the count.
func (n *Network) RemoveOrphanNodes() int {
	used := make(map[string]bool, len(n.Nodes))
	for _, l := range n.Links.Items {
		used[l.From] = true
		used[l.To] = true
	}
	before := len(n.Nodes)
	n.Nodes = lo.Filter(n.Nodes, func(node *Node, _ int) bool { return used[node.ID] })
	n.reindex()
	return before - len(n.Nodes)
}

// Coord returns the node coordinate.
func (node *Node) Coord() orb.Point {
	return orb.Point{float64(node.X), float64(node.Y)}
}

// LinkCoord returns the midpoint of the link's end nodes.
func (n *Network) LinkCoord(l *Link) orb.Point {
	from, to := n.Node(l.From), n.Node(l.To)
	if from == nil || to == nil {
		return orb.Point{}
	}
	return orb.Point{(float64(from.X) + float64(to.X)) / 2, (float64(from.Y) + float64(to.Y)) / 2}
}

// AllowedModes returns the link's modes in file order.
func (l *Link) AllowedModes() []string {
	if strings.TrimSpace(l.Modes) == "" {
		return nil
	}
	parts := strings.Split(l.Modes, ",")
	modes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			modes = append(modes, p)
		}
	}
	return lo.Uniq(modes)
}

// SetAllowedModes replaces the link's mode set.
func (l *Link) SetAllowedModes(modes []string) {
	l.Modes = strings.Join(lo.Uniq(modes), ",")
}

// AllowsMode reports whether mode may use the link.
func (l *Link) AllowsMode(mode string) bool {
	return lo.Contains(l.AllowedModes(), mode)
}

// AddModes allows additional modes, keeping existing order.
func (l *Link) AddModes(modes ...string) {
	l.SetAllowedModes(append(l.AllowedModes(), modes...))
}

// RemoveModes disallows the given modes and reports whether anything changed.
func (l *Link) RemoveModes(modes ...string) bool {
	current := l.AllowedModes()
	kept := lo.Without(current, modes...)
	l.SetAllowedModes(kept)
	return len(kept) != len(current)
}

// Type returns the "type" link attribute (the OSM highway tag, e.g. "highway.primary").
func (l *Link) Type() (string, bool) {
	if v, ok := l.Attributes.Get(AttrType); ok {
		return v, true
	}
	return "", false
}
