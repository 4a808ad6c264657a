package population

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePopulation = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE population SYSTEM "http://www.matsim.org/files/dtd/population_v6.dtd">
<population>
	<person id="p1">
		<attributes>
			<attribute name="subpopulation" class="java.lang.String">person</attribute>
			<attribute name="age" class="java.lang.Integer">42</attribute>
		</attributes>
		<plan score="12.5" selected="no">
			<activity type="home" x="1.0" y="2.0" end_time="07:00:00"/>
		</plan>
		<plan selected="yes">
			<activity type="home" link="l1" x="1.0" y="2.0" end_time="08:00:00"/>
			<leg mode="walk" dep_time="08:00:00">
				<attributes>
					<attribute name="routingMode" class="java.lang.String">pt</attribute>
				</attributes>
			</leg>
			<activity type="pt interaction" link="l2" x="5.0" y="2.0" max_dur="00:00:00"/>
			<leg mode="pt" trav_time="00:10:00">
				<route type="default_pt" start_link="l2" end_link="l3">stuff</route>
			</leg>
			<activity type="pt interaction" link="l3" x="9.0" y="2.0" max_dur="00:00:00"/>
			<leg mode="walk"/>
			<activity type="work" link="l4" x="10.0" y="2.0"/>
		</plan>
	</person>
</population>
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.xml")
	require.NoError(t, os.WriteFile(path, []byte(samplePopulation), 0644))
	return path
}

func TestRead_PlanElementsKeepDocumentOrder(t *testing.T) {
	// GIVEN a population with an interleaved pt trip
	pop, err := Read(writeSample(t))
	require.NoError(t, err)

	// THEN the selected plan keeps activities and legs interleaved
	require.Len(t, pop.Persons, 1)
	plan := pop.Persons[0].SelectedPlan()
	require.NotNil(t, plan)
	require.Len(t, plan.Elements, 7)
	_, isAct := plan.Elements[0].(*Activity)
	_, isLeg := plan.Elements[1].(*Leg)
	assert.True(t, isAct)
	assert.True(t, isLeg)
	assert.Equal(t, "stuff", plan.Legs()[1].Route.Value)

	// AND person helpers read the attributes
	sub, ok := pop.Persons[0].Subpopulation()
	assert.True(t, ok)
	assert.Equal(t, "person", sub)
	require.NotNil(t, pop.Persons[0].Age())
	assert.Equal(t, 42, *pop.Persons[0].Age())
	assert.Nil(t, (&Person{}).Age())
}

func TestWriteRead_RoundTripPreservesPlans(t *testing.T) {
	// GIVEN a parsed population
	pop, err := Read(writeSample(t))
	require.NoError(t, err)

	// WHEN written as gzip and read back
	out := filepath.Join(t.TempDir(), "out.xml.gz")
	require.NoError(t, Write(out, pop))
	again, err := Read(out)
	require.NoError(t, err)

	// THEN scores, selection and elements survive
	p := again.Persons[0]
	require.Len(t, p.Plans, 2)
	require.NotNil(t, p.Plans[0].Score)
	assert.Equal(t, 12.5, *p.Plans[0].Score)
	assert.False(t, p.Plans[0].Selected)
	assert.True(t, p.Plans[1].Selected)
	assert.Len(t, p.Plans[1].Elements, 7)
	coord, ok := p.Plans[1].Activities()[3].Coord()
	assert.True(t, ok)
	assert.Equal(t, 10.0, coord[0])
}

func TestTrips_StageActivitiesBelongToTrip(t *testing.T) {
	pop, err := Read(writeSample(t))
	require.NoError(t, err)

	trips := Trips(pop.Persons[0].SelectedPlan())

	require.Len(t, trips, 1)
	assert.Equal(t, "home", trips[0].Origin.Type)
	assert.Equal(t, "work", trips[0].Destination.Type)
	assert.Len(t, trips[0].Elements, 5)
	assert.Equal(t, "pt", trips[0].MainMode())
}

func TestTripsToLegs_OneLegPerTripWithMainMode(t *testing.T) {
	// GIVEN a plan with a multi-stage pt trip
	pop, err := Read(writeSample(t))
	require.NoError(t, err)
	plan := pop.Persons[0].SelectedPlan()

	// WHEN trips are converted to legs
	TripsToLegs(plan)

	// THEN home-leg-work remains with the routing mode
	require.Len(t, plan.Elements, 3)
	leg, ok := plan.Elements[1].(*Leg)
	require.True(t, ok)
	assert.Equal(t, "pt", leg.Mode)
	assert.Equal(t, "pt", leg.RoutingMode())
	assert.Equal(t, "08:00:00", leg.DepTime)
	assert.Nil(t, leg.Route)
}

func TestPlanClone_IsIndependent(t *testing.T) {
	pop, err := Read(writeSample(t))
	require.NoError(t, err)
	plan := pop.Persons[0].SelectedPlan()

	c := plan.Clone()
	TripsToLegs(c)
	c.Activities()[0].Type = "changed"

	assert.Len(t, plan.Elements, 7)
	assert.Equal(t, "home", plan.Activities()[0].Type)
}

func TestRemovePersons_CountsRemoved(t *testing.T) {
	pop := &Population{Persons: []*Person{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	removed := pop.RemovePersons(func(p *Person) bool { return p.ID != "b" })

	assert.Equal(t, 2, removed)
	require.Len(t, pop.Persons, 1)
	assert.Equal(t, "b", pop.Persons[0].ID)
	assert.Nil(t, pop.Person("a"))
}
