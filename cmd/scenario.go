package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/dresden"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
	"github.com/dresden-mobility/dresden-scenario/scenario/prepare"
	"github.com/dresden-mobility/dresden-scenario/scenario/variant"
	"github.com/dresden-mobility/dresden-scenario/scenario/vehicles"
)

// Output names written by scenario build.
const (
	builtConfigName          = "config.xml"
	builtNetworkName         = "network.xml.gz"
	builtVehiclesName        = "vehicles.xml"
	builtTransitVehiclesName = "transitVehicles.xml.gz"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Build runnable Dresden scenarios",
}

// buildInputs names the files scenario build reads. Empty paths fall back to
// the config's params.
type buildInputs struct {
	Config          string
	Network         string
	Vehicles        string
	TransitVehicles string
	Population      string
}

var (
	buildIn        buildInputs
	buildVariant   string
	buildParams    variant.Params
	buildOpts      dresden.Options
	buildOutputDir string
)

var scenarioBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Apply the base preparation and a policy variant to a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		d := mustLoadDefaults(defaultsPath)

		// unset optional values stay nil
		p := buildParams
		for name, target := range map[string]**float64{
			"relative-change": &p.RelativeChange,
			"one-hour":        &p.OneHour,
			"extra-hour":      &p.ExtraHour,
			"residential":     &p.Residential,
		} {
			if !cmd.Flags().Changed(name) {
				*target = nil
			}
		}

		v, err := variant.New(buildVariant, p)
		if err != nil {
			logrus.Fatalf("Invalid variant: %v", err)
		}
		cfgPath, err := runScenarioBuild(buildIn, v, d, buildOpts, buildOutputDir)
		if err != nil {
			logrus.Fatalf("Scenario build failed: %v", err)
		}
		logrus.Infof("Wrote %s scenario config to %s", v.Name(), cfgPath)
	},
}

// inputPath returns the flag value, or the config param resolved against the
// config location.
func inputPath(cfg *config.Config, flag, module, param string) string {
	if flag != "" {
		return flag
	}
	if !cfg.HasModule(module) {
		return ""
	}
	v, _ := cfg.Module(module).Get(param)
	if v == "" || v == "null" {
		return ""
	}
	return cfg.ResolvePath(v)
}

// loadScenario reads the inputs named by flags or by the prepared config.
func loadScenario(cfg *config.Config, in buildInputs) (*dresden.Scenario, error) {
	s := &dresden.Scenario{Config: cfg}
	var err error

	netPath := inputPath(cfg, in.Network, config.ModuleNetwork, "inputNetworkFile")
	if netPath == "" {
		return nil, fmt.Errorf("no network given and %s has no network.inputNetworkFile", in.Config)
	}
	if s.Network, err = network.Read(netPath); err != nil {
		return nil, err
	}

	vehPath := inputPath(cfg, in.Vehicles, config.ModuleVehicles, "vehiclesFile")
	if vehPath == "" {
		return nil, fmt.Errorf("no vehicles given and %s has no vehicles.vehiclesFile", in.Config)
	}
	if s.Vehicles, err = vehicles.Read(vehPath); err != nil {
		return nil, err
	}

	if path := inputPath(cfg, in.TransitVehicles, config.ModuleTransit, "vehiclesFile"); path != "" {
		if s.TransitVehicles, err = vehicles.Read(path); err != nil {
			return nil, err
		}
	}
	if path := inputPath(cfg, in.Population, config.ModulePlans, "inputPlansFile"); path != "" {
		if s.Population, err = population.Read(path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// runScenarioBuild prepares the config, loads the inputs it then names and
// prepares them, and writes the result to outDir. The written config points at
// the written files and at absolute paths of all other inputs.
func runScenarioBuild(in buildInputs, v variant.Variant, d *defaults.Defaults, opts dresden.Options, outDir string) (string, error) {
	cfg, err := config.Read(in.Config)
	if err != nil {
		return "", err
	}
	if err := variant.PrepareConfig(v, cfg, d, opts); err != nil {
		return "", err
	}
	s, err := loadScenario(cfg, in)
	if err != nil {
		return "", err
	}
	if err := variant.PrepareScenario(v, s, d, opts); err != nil {
		return "", err
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", outDir, err)
	}
	if err := os.MkdirAll(absOut, 0755); err != nil {
		return "", err
	}
	prepare.AbsolutizeInputs(s.Config)

	out := func(name string) string { return filepath.Join(absOut, name) }
	if err := network.Write(out(builtNetworkName), s.Network); err != nil {
		return "", err
	}
	s.Config.Module(config.ModuleNetwork).Set("inputNetworkFile", out(builtNetworkName))
	if err := vehicles.Write(out(builtVehiclesName), s.Vehicles); err != nil {
		return "", err
	}
	s.Config.Module(config.ModuleVehicles).Set("vehiclesFile", out(builtVehiclesName))
	if s.TransitVehicles != nil {
		if err := vehicles.Write(out(builtTransitVehiclesName), s.TransitVehicles); err != nil {
			return "", err
		}
		s.Config.Module(config.ModuleTransit).Set("vehiclesFile", out(builtTransitVehiclesName))
	}
	// plans are not rewritten, the config points at the given or configured population
	if plans := inputPath(s.Config, in.Population, config.ModulePlans, "inputPlansFile"); plans != "" && !strings.Contains(plans, "://") {
		abs, err := filepath.Abs(plans)
		if err != nil {
			return "", err
		}
		s.Config.Module(config.ModulePlans).Set("inputPlansFile", abs)
	}

	cfgPath := out(builtConfigName)
	if err := config.Write(cfgPath, s.Config); err != nil {
		return "", err
	}
	return cfgPath, nil
}

func init() {
	f := scenarioBuildCmd.Flags()
	f.StringVar(&buildIn.Config, "config", "", "Path to the scenario config")
	f.StringVar(&buildIn.Network, "network", "", "Network file (defaults to the config's)")
	f.StringVar(&buildIn.Vehicles, "vehicles", "", "Vehicle types file (defaults to the config's)")
	f.StringVar(&buildIn.TransitVehicles, "transit-vehicles", "", "Transit vehicles file (defaults to the config's)")
	f.StringVar(&buildIn.Population, "population", "", "Population file (defaults to the config's)")
	f.StringVar(&buildVariant, "variant", variant.NameBase, "Policy variant ("+strings.Join(variant.Names(), ", ")+")")
	f.StringVar(&buildParams.AreaPath, "area", "", "Area the variant applies to (.shp or .geojson)")
	buildParams.RelativeChange = new(float64)
	buildParams.OneHour = new(float64)
	buildParams.ExtraHour = new(float64)
	buildParams.Residential = new(float64)
	f.Float64Var(buildParams.RelativeChange, "relative-change", 0, "Factor applied to free speeds in the area")
	f.Float64Var(buildParams.OneHour, "one-hour", 0, "Parking cost of the first hour")
	f.Float64Var(buildParams.ExtraHour, "extra-hour", 0, "Parking cost of each additional hour")
	f.Float64Var(buildParams.Residential, "residential", 0, "Daily residential parking cost")
	f.Float64Var(&buildOpts.SampleSize, "sample-size", 0, "Sample size in percent (0 keeps the config's)")
	f.BoolVar(&buildOpts.Emissions, "emissions", true, "Prepare emission analysis")
	f.BoolVar(&buildOpts.ExplicitWalkIntermodality, "explicit-walk-intermodality", true, "Add explicit walk access and egress to pt")
	f.StringVar(&buildOutputDir, "output-dir", "", "Directory the prepared scenario is written to")
	_ = scenarioBuildCmd.MarkFlagRequired("config")
	_ = scenarioBuildCmd.MarkFlagRequired("output-dir")

	scenarioCmd.AddCommand(scenarioBuildCmd)
	rootCmd.AddCommand(scenarioCmd)
}
