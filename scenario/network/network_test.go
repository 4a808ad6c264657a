package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

const sampleNetwork = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">
<network>
	<nodes>
		<node id="a" x="0.0" y="0.0"/>
		<node id="b" x="100.0" y="0.0"/>
	</nodes>
	<links capperiod="01:00:00" effectivecellsize="7.5" effectivelanewidth="3.75">
		<link id="ab" from="a" to="b" length="100.0" freespeed="13.9" capacity="1800.0" permlanes="2.0" oneway="1" modes="car,ride">
			<attributes>
				<attribute name="type" class="java.lang.String">highway.primary</attribute>
				<attribute name="disallowedNextLinks" class="org.matsim.core.network.DisallowedNextLinks">{"car":[["ba"]],"bike":[["x"]]}</attribute>
			</attributes>
		</link>
		<link id="ba" from="b" to="a" length="100.0" freespeed="13.9" capacity="1800.0" permlanes="1.0" oneway="1" modes="car"/>
	</links>
</network>
`

// newTestNetwork builds a network from node coordinates and links given as from->to pairs.
func newTestNetwork(t *testing.T, nodes map[string][2]float64, links [][4]string) *Network {
	t.Helper()
	n := &Network{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if xy, ok := nodes[id]; ok {
			require.NoError(t, n.AddNode(&Node{ID: id, X: matsim.Float(xy[0]), Y: matsim.Float(xy[1])}))
		}
	}
	for _, l := range links {
		require.NoError(t, n.AddLink(&Link{ID: l[0], From: l[1], To: l[2], Length: 100, FreeSpeed: 10, Capacity: 1000, PermLanes: 1, Modes: l[3]}))
	}
	return n
}

func TestRead_ParsesLinksAndAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleNetwork), 0644))

	n, err := Read(path)
	require.NoError(t, err)

	l := n.Link("ab")
	require.NotNil(t, l)
	assert.Equal(t, []string{"car", "ride"}, l.AllowedModes())
	typ, ok := l.Type()
	assert.True(t, ok)
	assert.Equal(t, "highway.primary", typ)
	assert.Equal(t, "01:00:00", n.Links.CapPeriod)
	assert.Equal(t, [2]float64{50, 0}, [2]float64(n.LinkCoord(l)))

	// AND writing keeps the link set attributes
	out := filepath.Join(t.TempDir(), "network.xml.gz")
	require.NoError(t, Write(out, n))
	again, err := Read(out)
	require.NoError(t, err)
	assert.Equal(t, "7.5", again.Links.EffectiveCellSize)
	assert.Len(t, again.Links.Items, 2)
}

func TestLinkModes_AddRemove(t *testing.T) {
	l := &Link{Modes: "car,bike"}

	l.AddModes("truck8t", "car")
	assert.Equal(t, "car,bike,truck8t", l.Modes)

	assert.True(t, l.RemoveModes("car", "ride"))
	assert.False(t, l.RemoveModes("ride"))
	assert.Equal(t, []string{"bike", "truck8t"}, l.AllowedModes())
	assert.False(t, l.AllowsMode("car"))
}

func TestClearDisallowedNextLinks_OnlyAllowedModes(t *testing.T) {
	// GIVEN a car link with restrictions for car and bike
	l := &Link{ID: "ab", Modes: "car"}
	require.NoError(t, l.SetDisallowedNextLinks(map[string][][]string{"car": {{"ba"}}, "bike": {{"x"}}}))

	// WHEN cleared
	cleared, err := l.ClearDisallowedNextLinks()
	require.NoError(t, err)

	// THEN only the car entry is gone
	assert.Equal(t, []string{"car"}, cleared)
	m, err := l.DisallowedNextLinks()
	require.NoError(t, err)
	assert.Equal(t, map[string][][]string{"bike": {{"x"}}}, m)

	// AND clearing a link whose restrictions are all allowed drops the attribute
	l.AddModes("bike")
	_, err = l.ClearDisallowedNextLinks()
	require.NoError(t, err)
	assert.False(t, l.Attributes.Has(AttrDisallowedNextLinks))
}

func TestCleanNetwork_KeepsLargestStronglyConnectedComponent(t *testing.T) {
	// GIVEN a truck cycle a<->b<->c and a dead end c->d
	n := newTestNetwork(t,
		map[string][2]float64{"a": {0, 0}, "b": {1, 0}, "c": {2, 0}, "d": {3, 0}},
		[][4]string{
			{"ab", "a", "b", "car,truck"},
			{"ba", "b", "a", "car,truck"},
			{"bc", "b", "c", "truck"},
			{"cb", "c", "b", "truck"},
			{"cd", "c", "d", "truck"},
		})

	// WHEN cleaned for truck
	stats := CleanNetwork(n, []string{"truck"})

	// THEN the dead end loses truck and, having no modes left, is removed with its node
	assert.Equal(t, 1, stats.ModesRemoved["truck"])
	assert.Equal(t, 1, stats.LinksRemoved)
	assert.Equal(t, 1, stats.NodesRemoved)
	assert.Nil(t, n.Link("cd"))
	assert.Nil(t, n.Node("d"))
	assert.True(t, n.Link("bc").AllowsMode("truck"))
}

func TestRemoveLinks_ReindexesLookups(t *testing.T) {
	n := newTestNetwork(t,
		map[string][2]float64{"a": {0, 0}, "b": {1, 0}},
		[][4]string{{"ab", "a", "b", "car"}, {"ba", "b", "a", "car"}})

	removed := n.RemoveLinks(func(l *Link) bool { return l.ID == "ab" })

	assert.Equal(t, 1, removed)
	assert.Nil(t, n.Link("ab"))
	assert.NotNil(t, n.Link("ba"))
	assert.Equal(t, 0, n.RemoveOrphanNodes())
}
