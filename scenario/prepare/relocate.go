package prepare

import (
	"fmt"
	"path/filepath"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

// Output names used by RelocatePopulation.
const (
	RelocatedConfigName     = "config.xml"
	RelocatedPopulationName = "population.xml.gz"
)

// RelocatePopulation reads the config at configPath and its population, writes
// the population to outDir and a copy of the config that points to it.
// It returns the absolute paths of the written config and population.
func RelocatePopulation(configPath, outDir string) (string, string, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return "", "", err
	}
	plans, ok := cfg.Module(config.ModulePlans).Get("inputPlansFile")
	if !ok || plans == "" {
		return "", "", fmt.Errorf("config %s has no plans.inputPlansFile", configPath)
	}
	pop, err := population.Read(cfg.ResolvePath(plans))
	if err != nil {
		return "", "", err
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", "", fmt.Errorf("resolving %s: %w", outDir, err)
	}
	popPath := filepath.Join(absOut, RelocatedPopulationName)
	if err := population.Write(popPath, pop); err != nil {
		return "", "", err
	}
	AbsolutizeInputs(cfg)
	cfg.Module(config.ModulePlans).Set("inputPlansFile", popPath)
	cfgPath := filepath.Join(absOut, RelocatedConfigName)
	if err := config.Write(cfgPath, cfg); err != nil {
		return "", "", err
	}
	return cfgPath, popPath, nil
}

// file params that must keep pointing at the original inputs once the config moves
var inputFileParams = [][2]string{
	{config.ModuleNetwork, "inputNetworkFile"},
	{config.ModuleFacilities, "inputFacilitiesFile"},
	{config.ModuleTransit, "transitScheduleFile"},
	{config.ModuleTransit, "vehiclesFile"},
	{config.ModuleVehicles, "vehiclesFile"},
	{config.ModuleCounts, "inputCountsFile"},
}

// AbsolutizeInputs rewrites the config's relative input file params to
// absolute paths so the config can be written elsewhere.
func AbsolutizeInputs(cfg *config.Config) {
	for _, mp := range inputFileParams {
		if !cfg.HasModule(mp[0]) {
			continue
		}
		m := cfg.Module(mp[0])
		v, ok := m.Get(mp[1])
		if !ok || v == "" || v == "null" {
			continue
		}
		resolved := cfg.ResolvePath(v)
		if resolved == v {
			continue
		}
		if abs, err := filepath.Abs(resolved); err == nil {
			resolved = abs
		}
		m.Set(mp[1], resolved)
	}
}
