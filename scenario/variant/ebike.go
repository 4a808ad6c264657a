package variant

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/dresden"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/vehicles"
)

const modeBike = "bike"

// EbikeCity introduces an e-bike mode and reduces car capacity inside an area.
type EbikeCity struct {
	Area *geo.Area
}

func newEbikeCity(p Params) (Variant, error) {
	area, err := loadArea(p.AreaPath)
	if err != nil {
		return nil, err
	}
	return &EbikeCity{Area: area}, nil
}

func (*EbikeCity) Name() string { return NameEbikeCity }

// PrepareConfig adds scoring, simulation and replanning settings for the e-bike mode.
func (*EbikeCity) PrepareConfig(cfg *config.Config, d *defaults.Defaults) error {
	mode := d.Ebike.Mode
	params := cfg.ScoringParameters("").ModeParams(mode)
	params.SetFloat("constant", 0)
	params.SetFloat("monetaryDistanceRate", 0)
	params.SetFloat("dailyMonetaryConstant", d.Ebike.DailyMonetaryConstant)

	qsim := cfg.Module(config.ModuleQSim)
	qsim.AddToList("mainMode", mode)
	qsim.Set("linkDynamics", d.Ebike.LinkDynamics)
	cfg.Module(config.ModuleRouting).AddToList("networkModes", mode)

	smc := cfg.Module(config.ModuleSubtourModeChoice)
	smc.AddToList("modes", mode)
	smc.AddToList("chainBasedModes", mode)
	return nil
}

// PrepareScenario adds the e-bike vehicle type, one e-bike per person, opens
// bike links to e-bikes and reduces car capacity in the area.
func (v *EbikeCity) PrepareScenario(s *dresden.Scenario, d *defaults.Defaults) error {
	if v.Area.IsEmpty() {
		return errMissing("non-empty e-bike city area")
	}
	if s.Population == nil {
		return fmt.Errorf("a population is required to create e-bikes")
	}
	mode := d.Ebike.Mode
	bike := s.Vehicles.Type(modeBike)
	if bike == nil {
		return fmt.Errorf("vehicle type %s not found, cannot derive %s", modeBike, mode)
	}
	ebike := &vehicles.VehicleType{
		ID:                      mode,
		NetworkMode:             &vehicles.NetworkMode{NetworkMode: mode},
		MaximumVelocity:         &vehicles.Velocity{MeterPerSecond: matsim.Float(d.Ebike.MaxVelocity)},
		PassengerCarEquivalents: bike.PassengerCarEquivalents,
		Length:                  bike.Length,
		Width:                   bike.Width,
		FlowEfficiencyFactor:    bike.FlowEfficiencyFactor,
	}
	if err := s.Vehicles.AddType(ebike); err != nil {
		return err
	}
	for _, p := range s.Population.Persons {
		if err := s.Vehicles.AddVehicle(&vehicles.Vehicle{ID: p.ID + "_" + mode, Type: mode}); err != nil {
			return err
		}
	}

	opened := 0
	for _, l := range s.Network.Links.Items {
		if l.AllowsMode(modeBike) && !l.AllowsMode(mode) {
			l.AddModes(mode)
			opened++
		}
	}
	links := carLinksInArea(s.Network, v.Area, d.Policy.ExcludedRoadTypes, true)
	reduceCapacity(links, d.Policy)
	logrus.Infof("Created %d e-bikes, opened %d links to %s and reduced car capacity on %d links",
		len(s.Population.Persons), opened, mode, len(links))
	return nil
}

func errMissing(what string) error {
	return fmt.Errorf("%s must be provided", what)
}
