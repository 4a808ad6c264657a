package routing

import (
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
)

// a -> b -> c is fast, a -> c directly is slow; d is only reachable by bike.
func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	n := &network.Network{}
	for _, node := range []struct {
		id   string
		x, y float64
	}{{"a", 0, 0}, {"b", 100, 0}, {"c", 200, 0}, {"d", 300, 0}, {"s", -100, 0}} {
		require.NoError(t, n.AddNode(&network.Node{ID: node.id, X: matsim.Float(node.x), Y: matsim.Float(node.y)}))
	}
	link := func(id, from, to string, length, speed float64, modes string) {
		require.NoError(t, n.AddLink(&network.Link{ID: id, From: from, To: to, Length: matsim.Float(length),
			FreeSpeed: matsim.Float(speed), Capacity: 1000, PermLanes: 1, Modes: modes}))
	}
	link("sa", "s", "a", 100, 10, "car")
	link("ab", "a", "b", 100, 20, "car")
	link("bc", "b", "c", 100, 20, "car")
	link("ac", "a", "c", 200, 5, "car")
	link("ac_fast", "a", "c", 200, 1, "car")
	link("cd", "c", "d", 100, 5, "bike")
	link("dd", "d", "d", 10, 5, "car")
	return n
}

func TestRoute_PicksFastestPath(t *testing.T) {
	// GIVEN a network where the detour via b is faster than the direct link
	r, err := NewRouter(testNetwork(t), "car")
	require.NoError(t, err)

	// WHEN routing from sa to bc
	route, err := r.Route("sa", "bc")
	require.NoError(t, err)

	// THEN the route includes both end links and the intermediate link
	assert.Equal(t, []string{"sa", "ab", "bc"}, route)
}

func TestRoute_SameLinkIsSingleElement(t *testing.T) {
	r, err := NewRouter(testNetwork(t), "car")
	require.NoError(t, err)

	route, err := r.Route("ab", "ab")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab"}, route)
}

func TestRoute_AdjacentLinks(t *testing.T) {
	r, err := NewRouter(testNetwork(t), "car")
	require.NoError(t, err)

	route, err := r.Route("ab", "bc")
	require.NoError(t, err)
	assert.Equal(t, []string{"ab", "bc"}, route)
}

func TestRoute_UnreachableIsErrNoRoute(t *testing.T) {
	r, err := NewRouter(testNetwork(t), "car")
	require.NoError(t, err)

	_, err = r.Route("bc", "sa")
	assert.ErrorIs(t, err, ErrNoRoute)

	_, err = r.Route("sa", "missing")
	assert.Error(t, err)
}

func TestRoute_ConcurrentCallsAgree(t *testing.T) {
	r, err := NewRouter(testNetwork(t), "car")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.Route("sa", "bc")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, []string{"sa", "ab", "bc"}, got)
	}
}

func TestNearestLink_OnlyModeLinks(t *testing.T) {
	r, err := NewRouter(testNetwork(t), "car")
	require.NoError(t, err)

	// cd (bike only) has its midpoint at 250; the loop at d is the closest car link
	assert.Equal(t, "dd", r.NearestLink(orb.Point{290, 0}))
	assert.Equal(t, "sa", r.NearestLink(orb.Point{-60, 5}))
}

func TestNewRouter_NoLinksForModeIsError(t *testing.T) {
	_, err := NewRouter(testNetwork(t), "truck40t")
	assert.Error(t, err)
}
