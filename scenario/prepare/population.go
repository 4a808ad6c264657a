// Package prepare transforms scenario inputs: population cut-outs, mode
// conversion, vehicle attribute stripping, network fixes and facilities.
package prepare

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

// SingleModeStats reports what ConvertToSingleMode touched.
type SingleModeStats struct {
	Persons   int
	Converted int
	Legs      int
}

// ConvertToSingleMode turns every trip of persons in subpopulation into a
// single leg of mode without a route. Other persons, including those without a
// subpopulation, are left untouched. All plans of a converted person are kept.
func ConvertToSingleMode(pop *population.Population, mode, subpopulation string) SingleModeStats {
	stats := SingleModeStats{Persons: len(pop.Persons)}
	for _, person := range pop.Persons {
		if sub, ok := person.Subpopulation(); !ok || sub != subpopulation {
			continue
		}
		stats.Converted++
		for _, plan := range person.Plans {
			population.TripsToLegs(plan)
			for _, leg := range plan.Legs() {
				population.RemoveRoute(leg)
				population.SetMode(leg, mode)
				stats.Legs++
			}
		}
	}
	return stats
}

// VehicleRemovalStats reports how many persons lost which attribute.
type VehicleRemovalStats struct {
	Persons             int
	VehicleTypesRemoved int
	VehiclesRemoved     int
}

// RemoveVehicleInformation strips the vehicles attribute from every person and
// the vehicleTypes attribute from every person whose type map has none of skipModes.
func RemoveVehicleInformation(pop *population.Population, skipModes []string) (VehicleRemovalStats, error) {
	stats := VehicleRemovalStats{Persons: len(pop.Persons)}
	for _, person := range pop.Persons {
		if raw, ok := person.Attributes.Get(population.AttrVehicleTypes); ok {
			types := map[string]string{}
			if raw != "" {
				if err := json.Unmarshal([]byte(raw), &types); err != nil {
					return stats, fmt.Errorf("person %s: parsing %s: %w", person.ID, population.AttrVehicleTypes, err)
				}
			}
			skip := lo.SomeBy(skipModes, func(mode string) bool {
				_, has := types[mode]
				return has
			})
			if !skip {
				person.Attributes.Remove(population.AttrVehicleTypes)
				stats.VehicleTypesRemoved++
			}
		}
		if person.Attributes.Remove(population.AttrVehicles) {
			stats.VehiclesRemoved++
		}
	}
	return stats, nil
}

// LinkRefStats reports what DropMissingLinkRefs cleared.
type LinkRefStats struct {
	Activities int
	Routes     int
}

// DropMissingLinkRefs clears activity links and removes leg routes that refer
// to links no longer in net, so they are reassigned and rerouted on load.
func DropMissingLinkRefs(pop *population.Population, net *network.Network) LinkRefStats {
	var stats LinkRefStats
	missing := func(id string) bool { return id != "" && net.Link(id) == nil }
	for _, person := range pop.Persons {
		for _, plan := range person.Plans {
			for _, act := range plan.Activities() {
				if missing(act.Link) {
					act.Link = ""
					stats.Activities++
				}
			}
			for _, leg := range plan.Legs() {
				if leg.Route != nil && lo.SomeBy(routeLinks(leg.Route), missing) {
					population.RemoveRoute(leg)
					stats.Routes++
				}
			}
		}
	}
	return stats
}

// routeLinks lists the start, end and, for network routes, traversed links.
func routeLinks(r *population.Route) []string {
	ids := []string{r.StartLink, r.EndLink}
	if r.Type == "links" {
		ids = append(ids, strings.Fields(r.Value)...)
	}
	return ids
}
