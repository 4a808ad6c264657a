package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

// tripPurposes are matched as substrings of the destination activity type.
var tripPurposes = []struct{ column, match string }{
	{"errands", "errands"},
	{"shopping", "shop"},
	{"leisure", "leisure"},
	{"educ", "educ"},
	{"work", "work"},
	{"visit", "visit"},
}

// PersonSummary describes one regular person and their selected plan.
type PersonSummary struct {
	PersonID        string
	Age             int
	Sex             string
	CarAvailability string
	PtSubscription  string
	Income          float64
	HouseholdSize   int
	HouseholdIncome float64
	TotalTrips      int
	TripsByPurpose  []int // in tripPurposes order
}

// InputPlans summarizes persons of the "person" subpopulation that have an age.
func InputPlans(pop *population.Population) ([]PersonSummary, error) {
	var out []PersonSummary
	for _, p := range pop.Persons {
		if sub, ok := p.Subpopulation(); !ok || sub != personSubpopulation {
			continue
		}
		age := p.Age()
		if age == nil {
			continue
		}
		hh, ok := p.Attributes.Get(population.AttrHouseholdSize)
		if !ok {
			return nil, fmt.Errorf("person %s has no %s attribute", p.ID, population.AttrHouseholdSize)
		}
		size, err := strconv.Atoi(strings.TrimSpace(hh))
		if err != nil {
			return nil, fmt.Errorf("person %s: parsing %s: %w", p.ID, population.AttrHouseholdSize, err)
		}
		ptAbo, _ := p.Attributes.Get(population.AttrPtAbo)
		s := PersonSummary{
			PersonID:        p.ID,
			Age:             *age,
			Sex:             p.Sex(),
			CarAvailability: p.CarAvail(),
			PtSubscription:  ptAbo,
			Income:          p.Income(),
			HouseholdSize:   size,
			TripsByPurpose:  make([]int, len(tripPurposes)),
		}
		s.HouseholdIncome = s.Income * float64(size)
		if plan := p.SelectedPlan(); plan != nil {
			for _, trip := range population.Trips(plan) {
				s.TotalTrips++
				for i, purpose := range tripPurposes {
					if strings.Contains(trip.Destination.Type, purpose.match) {
						s.TripsByPurpose[i]++
					}
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// WritePersonSummaries stores summaries as TSV.
func WritePersonSummaries(path string, summaries []PersonSummary) error {
	header := []string{"person_id", "age", "sex", "car_availability", "pt_subscription", "income",
		"household_size", "household_income", "total_trips"}
	for _, p := range tripPurposes {
		header = append(header, p.column)
	}
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		row := []string{s.PersonID, strconv.Itoa(s.Age), s.Sex, s.CarAvailability, s.PtSubscription,
			formatFloat(s.Income), strconv.Itoa(s.HouseholdSize), formatFloat(s.HouseholdIncome), strconv.Itoa(s.TotalTrips)}
		for _, n := range s.TripsByPurpose {
			row = append(row, strconv.Itoa(n))
		}
		rows[i] = row
	}
	return writeTable(path, header, rows)
}
