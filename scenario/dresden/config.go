// Package dresden applies the Dresden base preparation to a scenario config
// and its network and vehicles.
package dresden

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// Options toggles the optional parts of the base preparation.
type Options struct {
	// SampleSize in percent; 0 keeps the config's sample.
	SampleSize                float64
	Emissions                 bool
	ExplicitWalkIntermodality bool
}

// DefaultOptions enables emissions and explicit walk intermodality.
func DefaultOptions() Options {
	return Options{Emissions: true, ExplicitWalkIntermodality: true}
}

const (
	modeCar  = "car"
	modeRide = "ride"
	modeWalk = "walk"
)

// PrepareConfig applies the Dresden base settings to cfg.
func PrepareConfig(cfg *config.Config, d *defaults.Defaults, opts Options) error {
	addActivityScoringParams(cfg, d.Activities)
	simWrapper := prepareSimWrapper(cfg, d)

	if opts.SampleSize != 0 {
		if err := applySample(cfg, simWrapper, d, opts.SampleSize); err != nil {
			return err
		}
	}

	qsim := cfg.Module(config.ModuleQSim)
	tam := cfg.Module(config.ModuleTimeAllocation)
	if end, ok := qsim.Seconds("endTime"); ok {
		tam.SetFloat("latestActivityEndTime", end)
	} else {
		logrus.Warnf("qsim.endTime not set, leaving %s.latestActivityEndTime unchanged", config.ModuleTimeAllocation)
	}
	tam.SetBool("mutateAroundInitialEndTimeOnly", false)
	tam.SetBool("mutationAffectsDuration", false)

	cfg.Module(config.ModuleVspExperimental).Set("vspDefaultsCheckingLevel", "abort")

	scoring := cfg.Module(config.ModuleScoring)
	cfg.ScoringParameters("").SetFloat("performing", d.Scoring.Performing)
	scoring.SetBool("writeExperiencedPlans", true)
	scoring.SetFloat("pathSizeLogitBeta", d.Scoring.PathSizeLogitBeta)

	prepareCommercialTraffic(cfg, d)

	SetRideParamsFromCar(cfg, d.Scoring.RideAlpha)

	qsim.SetBool("usingTravelTimeCheckInTeleportation", true)
	qsim.SetBool("usePersonIdForMissingVehicleId", false)
	cfg.Module(config.ModuleRouting).Set("accessEgressType", "accessEgressModeToLink")

	prepareAnnealing(cfg, d.Annealing)
	preparePtFares(cfg, d)

	if opts.ExplicitWalkIntermodality {
		prepareWalkIntermodality(cfg, d.IntermodalWalk)
	}
	if opts.Emissions {
		prepareEmissions(cfg, d.Emissions)
	}
	return nil
}

// addActivityScoringParams adds duration-binned params "<type>_<seconds>" for
// every base activity type to the default scoring set.
func addActivityScoringParams(cfg *config.Config, a defaults.Activities) {
	params := cfg.ScoringParameters("")
	added := 0
	for _, t := range a.Types {
		for dur := a.DurationStep; dur <= a.MaxDuration; dur += a.DurationStep {
			p := params.ActivityParams(t.Type + "_" + strconv.Itoa(int(dur)))
			p.SetFloat("typicalDuration", dur)
			if t.OpeningTime != nil {
				p.Set("openingTime", matsim.FormatTime(*t.OpeningTime))
			}
			if t.ClosingTime != nil {
				p.Set("closingTime", matsim.FormatTime(*t.ClosingTime))
			}
			added++
		}
	}
	logrus.Infof("Added %d activity scoring params for %d activity types", added, len(a.Types))
}

func prepareSimWrapper(cfg *config.Config, d *defaults.Defaults) *config.Module {
	m := cfg.Module(config.ModuleSimWrapper)
	params := m.FindOrAddSet("params", "context", d.SimWrapper.Context)
	params.Set("context", d.SimWrapper.Context)
	params.Set("mapCenter", d.SimWrapper.MapCenter)
	params.SetFloat("mapZoomLevel", d.SimWrapper.MapZoomLevel)
	params.Set("shp", d.SimWrapperShp())
	return m
}

var samplePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)pct`)

// AdjustSampleName replaces the "<n>pct" marker of a file name or run id with the new size.
func AdjustSampleName(name string, size float64) string {
	return samplePattern.ReplaceAllString(name, matsim.FormatFloat(size)+"pct")
}

func applySample(cfg *config.Config, simWrapper *config.Module, d *defaults.Defaults, size float64) error {
	if !d.IsSampleSize(size) {
		return fmt.Errorf("sample size %v%% is not one of %v", size, d.SampleSizes)
	}
	controller := cfg.Module(config.ModuleController)
	for _, p := range []struct {
		g    *config.Module
		name string
	}{
		{controller, "outputDirectory"},
		{cfg.Module(config.ModulePlans), "inputPlansFile"},
		{controller, "runId"},
	} {
		if v, ok := p.g.Get(p.name); ok {
			p.g.Set(p.name, AdjustSampleName(v, size))
		}
	}
	factor := size / 100
	qsim := cfg.Module(config.ModuleQSim)
	qsim.SetFloat("flowCapacityFactor", factor)
	qsim.SetFloat("storageCapacityFactor", factor)
	cfg.Module(config.ModuleCounts).SetFloat("countsScaleFactor", factor)
	simWrapper.SetFloat("sampleSize", factor)
	logrus.Infof("Scaled scenario to a %v%% sample", size)
	return nil
}

func prepareCommercialTraffic(cfg *config.Config, d *defaults.Defaults) {
	params := cfg.ScoringParameters("")
	for _, mode := range d.FreightModes {
		params.ModeParams(mode)
	}

	qsim := cfg.Module(config.ModuleQSim)
	qsimModes := qsim.List("mainMode")
	qsim.AddToList("mainMode", d.FreightModes...)
	cfg.Module(config.ModuleRouting).AddToList("networkModes", d.FreightModes...)

	for _, t := range d.Commercial.ActivityTypes {
		params.ActivityParams(t).SetFloat("typicalDuration", d.Commercial.TypicalDuration)
	}

	for _, sub := range d.Subpopulations.Commercial {
		cfg.AddStrategy("ChangeExpBeta", sub, d.Commercial.ChangeExpBeta)
		cfg.AddStrategy("ReRoute", sub, d.Commercial.ReRoute)
	}
	cfg.AddStrategy("ChangeExpBeta", d.Subpopulations.LongDistanceFreight, d.Commercial.FreightChangeBeta)
	cfg.AddStrategy("ReRoute", d.Subpopulations.LongDistanceFreight, d.Commercial.FreightReRoute)

	cfg.Module(config.ModuleTravelTimeCalculator).SetList("analyzedModes", lo.Union(qsimModes, d.FreightModes))
}

// SetRideParamsFromCar derives ride scoring from car scoring in every scoring
// set that has car params: ride travels at (alpha+1) times the car disutility
// net of alpha times performing, and pays alpha times the car distance cost.
func SetRideParamsFromCar(cfg *config.Config, alpha float64) {
	scoring := cfg.Module(config.ModuleScoring)
	defaultPerforming := cfg.ScoringParameters("").FloatOr("performing", 0)
	for _, set := range scoring.SetsOf(config.SetScoringParameters) {
		if !set.HasModeParams(modeCar) {
			continue
		}
		car := set.ModeParams(modeCar)
		performing := set.FloatOr("performing", defaultPerforming)
		mut := car.FloatOr("marginalUtilityOfTraveling_util_hr", 0)
		rate := car.FloatOr("monetaryDistanceRate", 0)
		ride := set.ModeParams(modeRide)
		ride.SetFloat("marginalUtilityOfTraveling_util_hr", (alpha+1)*mut-alpha*performing)
		ride.SetFloat("monetaryDistanceRate", alpha*rate)
	}
}

func prepareAnnealing(cfg *config.Config, a defaults.Annealing) {
	m := cfg.Module(config.ModuleAnnealer)
	m.SetBool("activateAnnealingModule", true)
	v := m.AddSet("AnnealingVariable")
	v.Set("annealParameter", "globalInnovationRate")
	v.Set("annealType", a.Type)
	v.SetFloat("endValue", a.EndValue)
	v.SetFloat("halfLife", a.HalfLife)
	v.SetFloat("shapeFactor", a.ShapeFactor)
	v.SetFloat("startValue", a.StartValue)
	v.Set("defaultSubpopulation", a.Subpopulation)
}

func preparePtFares(cfg *config.Config, d *defaults.Defaults) {
	f := d.PtFares
	m := cfg.Module(config.ModulePtFare)

	zone := m.AddSet("fareZoneBased")
	zone.Set("description", f.ZoneDescription)
	zone.Set("transactionPartner", f.ZoneDescription)
	zone.Set("order", strconv.Itoa(f.ZoneOrder))
	zone.Set("fareZoneShp", d.SimWrapperShp())

	dist := m.AddSet("distanceBased")
	dist.Set("description", f.DistanceDescription)
	dist.Set("transactionPartner", lo.Ternary(f.TransactionPartner != "", f.TransactionPartner, f.DistanceDescription))
	dist.Set("order", strconv.Itoa(f.DistanceOrder))
	dist.SetFloat("minFare", f.MinFare)
	for _, c := range f.DistanceClasses {
		maxDist := c.MaxDistance
		if maxDist == 0 {
			maxDist = math.Inf(1)
		}
		cls := dist.AddSet("distanceClassLinearFare")
		cls.Set("maxDistance", formatDistance(maxDist))
		cls.SetFloat("fareSlope", c.Slope/f.InflationFactor)
		cls.SetFloat("fareIntercept", c.Intercept/f.InflationFactor)
	}
}

func formatDistance(v float64) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	return matsim.FormatFloat(v)
}

func prepareWalkIntermodality(cfg *config.Config, w defaults.IntermodalWalk) {
	m := cfg.Module(config.ModuleSwissRailRaptor)
	m.SetBool("useIntermodalAccessEgress", true)
	m.Set("intermodalAccessEgressModeSelection", "CalcLeastCostModePerStop")
	s := m.FindOrAddSet("intermodalAccessEgress", "mode", modeWalk)
	s.SetFloat("initialSearchRadius", w.InitialSearchRadius)
	s.SetFloat("maxRadius", w.MaxRadius)
	s.SetFloat("searchExtensionRadius", w.SearchExtension)
}

func prepareEmissions(cfg *config.Config, e defaults.Emissions) {
	m := cfg.Module(config.ModuleEmissions)
	m.Set("detailedColdEmissionFactorsFile", e.DetailedCold)
	m.Set("detailedWarmEmissionFactorsFile", e.DetailedWarm)
	m.Set("averageFleetColdEmissionFactorsFile", e.AverageCold)
	m.Set("averageFleetWarmEmissionFactorsFile", e.AverageWarm)
	m.Set("hbefaTableConsistencyCheckingLevel", e.ConsistencyCheck)
	m.Set("detailedVsAverageLookupBehavior", e.LookupBehavior)
}
