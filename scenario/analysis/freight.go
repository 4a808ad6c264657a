package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

var freightSummaryColumns = []string{"trip_id", "from_x", "from_y", "to_x", "to_y"}

// FreightCheck counts structural defects of a long distance freight population,
// where every person should have one plan of activity, leg, activity.
type FreightCheck struct {
	Persons        int
	PlanCount      int // persons with more or less than one plan
	ElementCount   int // first plans without exactly three elements
	NotActivity    int // elements 0 or 2 that are not activities
	NotLeg         int // element 1 that is not a leg
	MissingCoord   int // activities without coordinate
	TooShortToRead int // plans with fewer than three elements
}

// Valid reports whether the trips can be summarized.
func (c FreightCheck) Valid() bool {
	return c.ElementCount == 0 && c.NotActivity == 0 && c.NotLeg == 0 && c.MissingCoord == 0
}

// CheckFreight inspects the first plan of every person.
func CheckFreight(pop *population.Population) FreightCheck {
	c := FreightCheck{Persons: len(pop.Persons)}
	for _, p := range pop.Persons {
		if len(p.Plans) != 1 {
			logrus.Infof("Person %s has %d plans, but should only have one.", p.ID, len(p.Plans))
			c.PlanCount++
		}
		if len(p.Plans) == 0 {
			continue
		}
		elements := p.Plans[0].Elements
		if len(elements) != 3 {
			logrus.Infof("Plan of person %s has %d plan elements, but should have exactly 3.", p.ID, len(elements))
			c.ElementCount++
		}
		if len(elements) < 3 {
			c.TooShortToRead++
			continue
		}
		for _, i := range []int{0, 2} {
			act, ok := elements[i].(*population.Activity)
			if !ok {
				logrus.Infof("Plan element at index %d for person %s should be of type activity, but it is not.", i, p.ID)
				c.NotActivity++
				continue
			}
			if _, ok := act.Coord(); !ok {
				logrus.Infof("Activity at plan element index %d for person %s does not have a coordinate.", i, p.ID)
				c.MissingCoord++
			}
		}
		if _, ok := elements[1].(*population.Leg); !ok {
			logrus.Infof("Plan element at index 1 for person %s should be of type leg, but it is not.", p.ID)
			c.NotLeg++
		}
	}
	return c
}

// FreightSummaryPath derives the summary file name from the population path.
func FreightSummaryPath(input string) string {
	return matsim.TrimExtensions(input) + "-locations-summary.tsv"
}

// WriteFreightSummary writes origin and destination of every selected plan.
// The population must have passed CheckFreight.
func WriteFreightSummary(path string, pop *population.Population) error {
	rows := make([][]string, 0, len(pop.Persons))
	for _, p := range pop.Persons {
		plan := p.SelectedPlan()
		if plan == nil || len(plan.Elements) < 3 {
			continue
		}
		from, okFrom := plan.Elements[0].(*population.Activity)
		to, okTo := plan.Elements[2].(*population.Activity)
		if !okFrom || !okTo {
			continue
		}
		fc, _ := from.Coord()
		tc, _ := to.Coord()
		rows = append(rows, []string{p.ID, formatFloat(fc[0]), formatFloat(fc[1]), formatFloat(tc[0]), formatFloat(tc[1])})
	}
	if err := writeTable(path, freightSummaryColumns, rows); err != nil {
		return err
	}
	logrus.Infof("Summary of long distance freight trips written to %s", path)
	return nil
}
