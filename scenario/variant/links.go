package variant

import (
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/dresden"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// SpeedReduction scales the free speed of car links inside an area.
type SpeedReduction struct {
	Area           *geo.Area
	RelativeChange float64
}

func newSpeedReduction(p Params) (Variant, error) {
	area, err := loadArea(p.AreaPath)
	if err != nil {
		return nil, err
	}
	if p.RelativeChange == nil {
		return nil, errMissing("relative speed change")
	}
	return &SpeedReduction{Area: area, RelativeChange: *p.RelativeChange}, nil
}

func (*SpeedReduction) Name() string                                           { return NameSpeedReduction }
func (*SpeedReduction) PrepareConfig(*config.Config, *defaults.Defaults) error { return nil }

// PrepareScenario applies the change only for factors in [0, 1).
func (v *SpeedReduction) PrepareScenario(s *dresden.Scenario, d *defaults.Defaults) error {
	if v.RelativeChange < 0 || v.RelativeChange >= 1 {
		logrus.Warnf("Relative speed change %v is outside [0, 1), network left unchanged", v.RelativeChange)
		return nil
	}
	links := carLinksInArea(s.Network, v.Area, d.Policy.ExcludedRoadTypes, false)
	for _, l := range links {
		l.FreeSpeed *= matsim.Float(v.RelativeChange)
	}
	logrus.Infof("Reduced free speed of %d links by a factor of %v", len(links), v.RelativeChange)
	return nil
}

// CapacityReduction reduces car capacity and lanes inside an area.
type CapacityReduction struct {
	Area *geo.Area
}

func newCapacityReduction(p Params) (Variant, error) {
	area, err := loadArea(p.AreaPath)
	if err != nil {
		return nil, err
	}
	return &CapacityReduction{Area: area}, nil
}

func (*CapacityReduction) Name() string                                           { return NameCapacityReduction }
func (*CapacityReduction) PrepareConfig(*config.Config, *defaults.Defaults) error { return nil }

func (v *CapacityReduction) PrepareScenario(s *dresden.Scenario, d *defaults.Defaults) error {
	if v.Area.IsEmpty() {
		return errMissing("non-empty capacity reduction area")
	}
	links := carLinksInArea(s.Network, v.Area, d.Policy.ExcludedRoadTypes, true)
	reduceCapacity(links, d.Policy)
	logrus.Infof("Reduced car capacity on %d links", len(links))
	return nil
}

// ParkingCost charges parking on car links inside an area.
type ParkingCost struct {
	Area                            *geo.Area
	OneHour, ExtraHour, Residential float64
}

func newParkingCost(p Params) (Variant, error) {
	v := &ParkingCost{}
	if p.AreaPath == "" {
		return v, nil
	}
	area, err := loadArea(p.AreaPath)
	if err != nil {
		return nil, err
	}
	if p.OneHour == nil || p.ExtraHour == nil || p.Residential == nil {
		return nil, errMissing("one hour, extra hour and residential parking costs")
	}
	v.Area, v.OneHour, v.ExtraHour, v.Residential = area, *p.OneHour, *p.ExtraHour, *p.Residential
	return v, nil
}

func (*ParkingCost) Name() string { return NameParkingCost }

// PrepareConfig names the link attributes the parking cost module reads.
func (*ParkingCost) PrepareConfig(cfg *config.Config, d *defaults.Defaults) error {
	p := d.Parking
	m := cfg.Module(config.ModuleParkingCosts)
	m.Set("firstHourParkingCostLinkAttributeName", p.OneHourAttribute)
	m.Set("extraHourParkingCostLinkAttributeName", p.ExtraHourAttribute)
	m.Set("maxDailyParkingCostLinkAttributeName", p.MaxDailyAttribute)
	m.Set("maxParkingDurationAttributeName", p.MaxDurationAttribute)
	m.Set("parkingPenaltyAttributeName", p.PenaltyAttribute)
	m.Set("residentialParkingFeeAttributeName", p.ResidentialAttribute)
	m.Set("activityPrefixForDailyParkingCosts", p.DailyActivityPrefix)
	return nil
}

func (v *ParkingCost) PrepareScenario(s *dresden.Scenario, d *defaults.Defaults) error {
	if v.Area == nil {
		return nil
	}
	p := d.Parking
	links := carLinksInArea(s.Network, v.Area, d.Policy.ExcludedRoadTypes, false)
	for _, l := range links {
		l.Attributes.SetFloat(p.OneHourAttribute, v.OneHour)
		l.Attributes.SetFloat(p.ExtraHourAttribute, v.ExtraHour)
		l.Attributes.SetFloat(p.ResidentialAttribute, v.Residential)
	}
	logrus.Infof("Added parking costs to %d links", len(links))
	return nil
}
