package config

import (
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
)

// Module names.
const (
	ModuleGlobal               = "global"
	ModuleNetwork              = "network"
	ModulePlans                = "plans"
	ModuleFacilities           = "facilities"
	ModuleVehicles             = "vehicles"
	ModuleTransit              = "transit"
	ModuleController           = "controller"
	ModuleQSim                 = "qsim"
	ModuleScoring              = "scoring"
	ModuleReplanning           = "replanning"
	ModuleRouting              = "routing"
	ModuleCounts               = "counts"
	ModuleTimeAllocation       = "timeAllocationMutator"
	ModuleVspExperimental      = "vspExperimental"
	ModuleSimWrapper           = "simwrapper"
	ModuleAnnealer             = "ReplanningAnnealer"
	ModulePtFare               = "ptfare"
	ModuleSwissRailRaptor      = "swissRailRaptor"
	ModuleEmissions            = "emissions"
	ModuleTravelTimeCalculator = "travelTimeCalculator"
	ModuleSubtourModeChoice    = "subtourModeChoice"
	ModuleChangeMode           = "changeMode"
	ModuleParkingCosts         = "parkingCosts"
)

// Parameter set types.
const (
	SetScoringParameters = "scoringParameters"
	SetActivityParams    = "activityParams"
	SetModeParams        = "modeParams"
	SetStrategySettings  = "strategysettings"
)

// ScoringParameters returns the scoring set for a subpopulation ("" is the default set).
func (c *Config) ScoringParameters(subpopulation string) *ParameterSet {
	return c.Module(ModuleScoring).FindOrAddSet(SetScoringParameters, "subpopulation", subpopulation)
}

// ActivityParams returns the activity scoring params of actType, adding them when missing.
func (s *ParameterSet) ActivityParams(actType string) *ParameterSet {
	return s.FindOrAddSet(SetActivityParams, "activityType", actType)
}

// ModeParams returns the mode scoring params of mode, adding them when missing.
func (s *ParameterSet) ModeParams(mode string) *ParameterSet {
	return s.FindOrAddSet(SetModeParams, "mode", mode)
}

// HasModeParams reports whether scoring params exist for mode.
func (s *ParameterSet) HasModeParams(mode string) bool {
	return s.FindSet(SetModeParams, "mode", mode) != nil
}

// AddStrategy appends a replanning strategy for a subpopulation.
func (c *Config) AddStrategy(name, subpopulation string, weight float64) *ParameterSet {
	s := c.Module(ModuleReplanning).AddSet(SetStrategySettings)
	s.Set("strategyName", name)
	s.Set("subpopulation", subpopulation)
	s.SetFloat("weight", weight)
	return s
}

// Strategies returns the strategy settings for a subpopulation.
func (c *Config) Strategies(subpopulation string) []*ParameterSet {
	var out []*ParameterSet
	for _, s := range c.Module(ModuleReplanning).SetsOf(SetStrategySettings) {
		if v, _ := s.Get("subpopulation"); v == subpopulation {
			out = append(out, s)
		}
	}
	return out
}

// Seconds parses a time param ("HH:MM:SS" or seconds).
func (g *Group) Seconds(name string) (float64, bool) {
	v, ok := g.Get(name)
	if !ok {
		return 0, false
	}
	s, err := matsim.ParseTime(v)
	if err != nil {
		return 0, false
	}
	return s, true
}
