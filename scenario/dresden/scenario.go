package dresden

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
	"github.com/dresden-mobility/dresden-scenario/scenario/prepare"
	"github.com/dresden-mobility/dresden-scenario/scenario/vehicles"
)

// Scenario bundles the inputs a run is prepared from. TransitVehicles and
// Population are optional.
type Scenario struct {
	Config          *config.Config
	Network         *network.Network
	Vehicles        *vehicles.Vehicles
	TransitVehicles *vehicles.Vehicles
	Population      *population.Population
}

// PrepareScenario applies the base network and vehicle preparation.
func PrepareScenario(s *Scenario, d *defaults.Defaults, opts Options) error {
	prepare.PrepareFreightNetwork(s.Network, d.FreightModes)

	changed, err := prepare.ClearDisallowedNextLinks(s.Network)
	if err != nil {
		return err
	}
	logrus.Infof("Removed turn restrictions from %d links", changed)

	if !opts.Emissions {
		return nil
	}
	prepare.AddHbefaRoadTypes(s.Network)
	return PrepareVehicleTypesForEmissions(s.Vehicles, s.TransitVehicles, d.Emissions.TransitVehicleHint)
}

const (
	hbefaAverage = "average"
	hbefaDiesel  = "diesel"
)

// emission classes by vehicle type id
var hbefaVehicleClasses = map[string][2]string{
	"car":      {vehicles.CategoryPassengerCar, hbefaAverage},
	"ride":     {vehicles.CategoryNonHbefaVehicle, hbefaAverage},
	"bike":     {vehicles.CategoryNonHbefaVehicle, hbefaAverage},
	"truck8t":  {vehicles.CategoryLightCommercialVehicle, hbefaDiesel},
	"truck18t": {vehicles.CategoryHeavyGoodsVehicle, hbefaDiesel},
	"truck40t": {vehicles.CategoryHeavyGoodsVehicle, hbefaDiesel},
}

// PrepareVehicleTypesForEmissions sets HBEFA engine attributes on vehicle types
// that have none. Unknown types are an error. Every transit vehicle type gets
// transitCategory.
func PrepareVehicleTypesForEmissions(v, transit *vehicles.Vehicles, transitCategory string) error {
	for _, t := range v.Types {
		if t.EngineInformation != nil && t.EngineInformation.Attributes.Len() > 0 {
			continue
		}
		class, ok := hbefaVehicleClasses[t.ID]
		if !ok {
			return fmt.Errorf("does not know how to handle vehicle type %s", t.ID)
		}
		t.SetHbefa(class[0], class[1], hbefaAverage, hbefaAverage)
	}
	if transit == nil {
		return nil
	}
	for _, t := range transit.Types {
		t.EngineAttributes().SetString(vehicles.AttrHbefaVehicleCategory, transitCategory)
	}
	return nil
}
