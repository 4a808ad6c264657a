package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/internal/testutil"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
	"github.com/dresden-mobility/dresden-scenario/scenario/transit"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestStayHomeAgents(t *testing.T) {
	// GIVEN two stay-home agents, a commuter and a single non-home activity
	pop := testutil.Population(
		testutil.Person("b", "person", testutil.Act("home_86400", "", 0, 0)),
		testutil.Person("a", "person", testutil.Act("home", "", 0, 0)),
		testutil.Person("c", "person", testutil.Act("home", "", 0, 0), testutil.Leg("car"), testutil.Act("work", "", 1, 1)),
		testutil.Person("d", "person", testutil.Act("work", "", 0, 0)),
	)

	// WHEN checked
	res, err := StayHomeAgents(pop)
	require.NoError(t, err)

	// THEN ids are sorted and the share is relative to all persons
	assert.Equal(t, []string{"a", "b"}, res.IDs)
	assert.InDelta(t, 0.5, res.Share(), 1e-12)
}

func TestStayHomeAgents_SingleLegIsError(t *testing.T) {
	pop := testutil.Population(testutil.Person("x", "person", testutil.Leg("car")))

	_, err := StayHomeAgents(pop)

	assert.ErrorIs(t, err, ErrInvalidStayHomePlan)
}

func TestStayHomeAgents_EmptyPopulation(t *testing.T) {
	res, err := StayHomeAgents(testutil.Population())
	require.NoError(t, err)
	assert.Zero(t, res.Share())
}

func freightPerson(id string, fromX, toX float64) *population.Person {
	return testutil.Person(id, "longDistanceFreight",
		testutil.Act("freight_start", "", fromX, 1), testutil.Leg("truck40t"), testutil.Act("freight_end", "", toX, 2))
}

func TestCheckFreight_ValidPopulationIsSummarized(t *testing.T) {
	// GIVEN a well formed freight population
	pop := testutil.Population(freightPerson("f1", 10, 20), freightPerson("f2", 30, 40.5))

	// WHEN checked and summarized
	c := CheckFreight(pop)
	require.True(t, c.Valid())
	path := FreightSummaryPath(filepath.Join(t.TempDir(), "freight.plans.xml.gz"))
	require.NoError(t, WriteFreightSummary(path, pop))

	// THEN one row per person is written next to the input
	assert.True(t, strings.HasSuffix(path, "freight.plans-locations-summary.tsv"))
	assert.Equal(t, []string{
		"trip_id\tfrom_x\tfrom_y\tto_x\tto_y",
		"f1\t10\t1\t20\t2",
		"f2\t30\t1\t40.5\t2",
	}, readLines(t, path))
}

func TestCheckFreight_CountsDefects(t *testing.T) {
	// GIVEN persons with structural defects
	twoPlans := freightPerson("two", 0, 1)
	twoPlans.Plans = append(twoPlans.Plans, twoPlans.Plans[0].Clone())
	short := testutil.Person("short", "longDistanceFreight", testutil.Act("freight_start", "", 0, 0))
	noCoord := testutil.Person("nocoord", "longDistanceFreight",
		&population.Activity{Type: "freight_start"}, testutil.Leg("truck40t"), testutil.Act("freight_end", "", 1, 1))
	swapped := testutil.Person("swapped", "longDistanceFreight",
		testutil.Leg("truck40t"), testutil.Act("freight_start", "", 0, 0), testutil.Leg("truck40t"))

	// WHEN checked
	c := CheckFreight(testutil.Population(twoPlans, short, noCoord, swapped))

	// THEN every defect is counted and the population is not valid
	assert.Equal(t, 1, c.PlanCount)
	assert.Equal(t, 1, c.ElementCount)
	assert.Equal(t, 1, c.TooShortToRead)
	assert.Equal(t, 1, c.MissingCoord)
	assert.Equal(t, 2, c.NotActivity)
	assert.Equal(t, 1, c.NotLeg)
	assert.False(t, c.Valid())
}

func TestHomeLocations_RoundTrip(t *testing.T) {
	// GIVEN persons inside and outside a square area
	area := geo.NewArea(testutil.Square(0, 0, 100))
	inside := testutil.Person("in", "person", testutil.Act("home_43200", "", 10, 20), testutil.Leg("car"), testutil.Act("home", "", 90, 90))
	outside := testutil.Person("out", "person", testutil.Act("home", "", 500, 500))
	freight := testutil.Person("fr", "freight", testutil.Act("home", "", 10, 10))
	noHome := testutil.Person("work", "person", testutil.Act("work", "", 10, 10))
	pop := testutil.Population(inside, outside, freight, noHome)

	// WHEN home locations are extracted, written and read back
	homes := HomeLocations(pop, area)
	path := filepath.Join(t.TempDir(), "homes.tsv")
	require.NoError(t, WriteHomes(path, homes))
	read, err := ReadHomes(path)
	require.NoError(t, err)

	// THEN only the first home of the regular person inside the area remains
	assert.Equal(t, []Home{{PersonID: "in", Coord: orb.Point{10, 20}}}, read)
}

func TestInputPlans(t *testing.T) {
	// GIVEN a person with attributes and a day of trips
	p := testutil.Person("p1", "person",
		testutil.Act("home", "", 0, 0), testutil.Leg("car"),
		testutil.Act("work", "", 1, 0), testutil.Leg("walk"),
		testutil.Act("shop_daily", "", 2, 0), testutil.Leg("pt"),
		testutil.Act("home", "", 0, 0))
	p.Attributes.SetString(population.AttrAge, "42")
	p.Attributes.SetString(population.AttrSex, "f")
	p.Attributes.SetString(population.AttrCarAvail, "always")
	p.Attributes.SetString(population.AttrPtAbo, "full")
	p.Attributes.SetFloat(population.AttrIncome, 1500)
	p.Attributes.SetString(population.AttrHouseholdSize, "3")
	noAge := testutil.Person("p2", "person", testutil.Act("home", "", 0, 0))
	pop := testutil.Population(p, noAge)

	// WHEN summarized and written
	summaries, err := InputPlans(pop)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "persons.tsv")
	require.NoError(t, WritePersonSummaries(path, summaries))

	// THEN persons without age are skipped and trips are counted by purpose
	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "person_id\tage\tsex\tcar_availability\tpt_subscription\tincome\thousehold_size\thousehold_income\ttotal_trips\terrands\tshopping\tleisure\teduc\twork\tvisit", lines[0])
	assert.Equal(t, "p1\t42\tf\talways\tfull\t1500\t3\t4500\t3\t0\t1\t0\t0\t1\t0", lines[1])
}

func TestInputPlans_MalformedHouseholdSize(t *testing.T) {
	p := testutil.Person("p1", "person", testutil.Act("home", "", 0, 0))
	p.Attributes.SetString(population.AttrAge, "42")
	p.Attributes.SetString(population.AttrHouseholdSize, "three")

	_, err := InputPlans(testutil.Population(p))

	assert.Error(t, err)
}

func TestAccessibilityMapping(t *testing.T) {
	// GIVEN measurement points with a repeated id and two homes
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "accessibilities.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,xcoord,ycoord,time,shop_accessibility\n"+
		"m1,0,0,28800,1.2\n"+
		"m2,100,0,28800,2.3\n"+
		"m1,999,999,32400,1.4\n"), 0644))
	homes := []Home{{"h1", orb.Point{10, 0}}, {"h2", orb.Point{80, 0}}}

	// WHEN mapped
	points, err := ReadMeasurementPoints(csvPath)
	require.NoError(t, err)
	matches, err := MapAccessibility(points, homes)
	require.NoError(t, err)

	// THEN the first occurrence of m1 is used and rows keep home order
	require.Len(t, points, 2)
	assert.Equal(t, orb.Point{0, 0}, points[0].Coord)
	require.Len(t, matches, 2)
	assert.Equal(t, "m1", matches[0].Nearest.ID)
	assert.InDelta(t, 10, matches[0].Distance, 1e-9)
	assert.Equal(t, "m2", matches[1].Nearest.ID)

	out := filepath.Join(dir, "mapping.tsv")
	require.NoError(t, WriteAccessibilityMapping(out, matches))
	assert.Equal(t, "h2\t80\t0\tm2\t100\t0\t20", readLines(t, out)[2])
}

func TestAccessibilityMapping_EmptyInputs(t *testing.T) {
	_, err := MapAccessibility(nil, []Home{{"h", orb.Point{}}})
	assert.ErrorIs(t, err, geo.ErrNoPoints)

	_, err = MapAccessibility([]geo.NamedPoint{{ID: "m"}}, nil)
	assert.ErrorIs(t, err, ErrNoHomes)
}

func TestNearestStops(t *testing.T) {
	// GIVEN stops inside and outside the area, one without coordinate
	f := matsim.FloatPtr
	schedule := &transit.Schedule{Stops: []*transit.Stop{
		{ID: "s1", X: f(10), Y: f(10), Name: "Postplatz"},
		{ID: "s2", X: f(500), Y: f(500), Name: "Outside"},
		{ID: "s3", Name: "Nowhere"},
		{ID: "s4", X: f(90), Y: f(10)},
	}}
	area := geo.NewArea(testutil.Square(0, 0, 100))
	access := defaults.StopAccess{DetourFactor: 1.3, WalkSpeed: 1.23}

	// WHEN homes are matched to the stops in the area
	stops := StopsInArea(schedule, area)
	matches, err := NearestStops(stops, []Home{{"h1", orb.Point{10, 40}}, {"h2", orb.Point{90, 20}}})
	require.NoError(t, err)

	// THEN distances and walking times follow the nearest stop
	require.Len(t, stops, 2)
	assert.Equal(t, "Postplatz", matches[0].Nearest.Name)
	assert.InDelta(t, 30, matches[0].Distance, 1e-9)
	assert.InDelta(t, 30*1.3/1.23, WalkTime(matches[0].Distance, access), 1e-9)
	assert.Equal(t, "s4", matches[1].Nearest.Name)

	out := filepath.Join(t.TempDir(), "stops.tsv")
	require.NoError(t, WriteStopDistances(out, matches, access))
	lines := readLines(t, out)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], "\tPostplatz"))
}

func TestNearestStops_NoStopsIsError(t *testing.T) {
	_, err := NearestStops(nil, []Home{{"h", orb.Point{}}})
	assert.ErrorIs(t, err, geo.ErrNoPoints)
}
