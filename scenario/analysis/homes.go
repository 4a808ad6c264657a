package analysis

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

const personSubpopulation = "person"

var homeColumns = []string{"person_id", "x", "y"}

// Home is the home location of one person.
type Home struct {
	PersonID string
	Coord    orb.Point
}

// HomeLocations returns the home of every regular person living inside area,
// taken from the first selected-plan activity whose type contains "home".
func HomeLocations(pop *population.Population, area *geo.Area) []Home {
	var homes []Home
	for _, p := range pop.Persons {
		if sub, ok := p.Subpopulation(); !ok || sub != personSubpopulation {
			continue
		}
		plan := p.SelectedPlan()
		if plan == nil {
			continue
		}
		for _, act := range plan.Activities() {
			if !strings.Contains(act.Type, "home") {
				continue
			}
			if c, ok := act.Coord(); ok && area.Contains(c) {
				homes = append(homes, Home{PersonID: p.ID, Coord: c})
			}
			break
		}
	}
	return homes
}

// WriteHomes stores homes as TSV with columns person_id, x, y.
func WriteHomes(path string, homes []Home) error {
	rows := make([][]string, len(homes))
	for i, h := range homes {
		rows[i] = []string{h.PersonID, formatFloat(h.Coord[0]), formatFloat(h.Coord[1])}
	}
	return writeTable(path, homeColumns, rows)
}

// ReadHomes loads a file written by WriteHomes.
func ReadHomes(path string) ([]Home, error) {
	t, err := readTable(path, '\t')
	if err != nil {
		return nil, err
	}
	if err := t.require(homeColumns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	homes := make([]Home, 0, len(t.rows))
	for i, row := range t.rows {
		c, err := t.point(row, "x", "y")
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		homes = append(homes, Home{PersonID: t.get(row, "person_id"), Coord: c})
	}
	return homes, nil
}
