package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

// ErrInvalidStayHomePlan is returned when a selected plan consists of a single leg.
var ErrInvalidStayHomePlan = errors.New("single-element plan is not an activity")

// StayHomeResult lists the agents that never leave home.
type StayHomeResult struct {
	Persons int
	IDs     []string // sorted
}

// Share is the fraction of persons staying home, 0 for an empty population.
func (r StayHomeResult) Share() float64 {
	if r.Persons == 0 {
		return 0
	}
	return float64(len(r.IDs)) / float64(r.Persons)
}

// StayHomeAgents finds persons whose selected plan is a single home activity.
// A single non-home activity is logged and not counted.
func StayHomeAgents(pop *population.Population) (StayHomeResult, error) {
	res := StayHomeResult{Persons: len(pop.Persons)}
	for _, p := range pop.Persons {
		plan := p.SelectedPlan()
		if plan == nil || len(plan.Elements) != 1 {
			continue
		}
		act, ok := plan.Elements[0].(*population.Activity)
		if !ok {
			return res, fmt.Errorf("person %s: %w", p.ID, ErrInvalidStayHomePlan)
		}
		if !strings.Contains(act.Type, "home") {
			logrus.Errorf("Person %s has a single-activity plan of type %s, expected a home activity", p.ID, act.Type)
			continue
		}
		res.IDs = append(res.IDs, p.ID)
	}
	sort.Strings(res.IDs)
	return res, nil
}
