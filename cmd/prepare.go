package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/facilities"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
	"github.com/dresden-mobility/dresden-scenario/scenario/prepare"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare population, network and facility inputs",
}

// --- dresden prepare single-mode-population ---

var (
	singleModeOutput string
	singleModeMode   string
)

var singleModeCmd = &cobra.Command{
	Use:   "single-mode-population INPUT",
	Short: "Convert every trip of the person subpopulation into a single-mode leg",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d := mustLoadDefaults(defaultsPath)
		pop := mustReadPopulation(args[0])
		stats := prepare.ConvertToSingleMode(pop, singleModeMode, d.Subpopulations.Person)
		if err := population.Write(singleModeOutput, pop); err != nil {
			logrus.Fatalf("Failed to write population: %v", err)
		}
		logrus.Infof("Converted %d legs of %d/%d persons to %s, written to %s",
			stats.Legs, stats.Converted, stats.Persons, singleModeMode, singleModeOutput)
	},
}

// --- dresden prepare remove-vehicles ---

var (
	removeVehiclesOutput string
	removeVehiclesSkip   []string
)

var removeVehiclesCmd = &cobra.Command{
	Use:   "remove-vehicles INPUT",
	Short: "Remove vehicle and vehicle type attributes from persons",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pop := mustReadPopulation(args[0])
		stats, err := prepare.RemoveVehicleInformation(pop, removeVehiclesSkip)
		if err != nil {
			logrus.Fatalf("Removing vehicle information failed: %v", err)
		}
		if err := population.Write(removeVehiclesOutput, pop); err != nil {
			logrus.Fatalf("Failed to write population: %v", err)
		}
		logrus.Infof("Removed %s from %d/%d persons", population.AttrVehicleTypes, stats.VehicleTypesRemoved, stats.Persons)
		logrus.Infof("Removed %s from %d/%d persons", population.AttrVehicles, stats.VehiclesRemoved, stats.Persons)
	},
}

// --- dresden prepare cut-out ---

var (
	cutOutPopulation  string
	cutOutNetwork     string
	cutOutShp         string
	cutOutOutput      string
	cutOutBuffer      float64
	cutOutNetworkMode string
	cutOutBeeline     bool
	cutOutWorkers     int
)

var cutOutCmd = &cobra.Command{
	Use:   "cut-out",
	Short: "Keep only persons whose plans touch the study area",
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateCutOutFlags(cutOutBeeline, cutOutNetwork); err != nil {
			logrus.Fatalf("Invalid cut-out flags: %v", err)
		}
		pop := mustReadPopulation(cutOutPopulation)
		area := mustLoadArea(cutOutShp)
		var net *network.Network
		if !cutOutBeeline {
			var err error
			if net, err = network.Read(cutOutNetwork); err != nil {
				logrus.Fatalf("Failed to read network: %v", err)
			}
		}
		stats, err := prepare.CutOut(cmd.Context(), pop, net, area, prepare.CutOutOptions{
			Buffer:      cutOutBuffer,
			NetworkMode: cutOutNetworkMode,
			Beeline:     cutOutBeeline,
			Workers:     cutOutWorkers,
		})
		if err != nil {
			logrus.Fatalf("Cut-out failed: %v", err)
		}
		if err := population.Write(cutOutOutput, pop); err != nil {
			logrus.Fatalf("Failed to write population: %v", err)
		}
		logrus.Infof("Removed %d of %d persons, %d legs could not be routed", stats.Removed, stats.Persons, stats.Unroutable)
	},
}

// validateCutOutFlags requires a network unless legs are judged by beeline.
func validateCutOutFlags(beeline bool, networkPath string) error {
	if !beeline && networkPath == "" {
		return errors.New("--network is required for routed cut-outs, pass --beeline to cut out without a network")
	}
	return nil
}

// --- dresden prepare network ---

var (
	prepareNetworkInput  string
	prepareNetworkOutput string
)

var prepareNetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Close the Augustus bridge, add freight modes and HBEFA road types",
	Run: func(cmd *cobra.Command, args []string) {
		d := mustLoadDefaults(defaultsPath)
		if err := runPrepareNetwork(prepareNetworkInput, prepareNetworkOutput, d); err != nil {
			logrus.Fatalf("Network preparation failed: %v", err)
		}
	},
}

func runPrepareNetwork(in, out string, d *defaults.Defaults) error {
	net, err := network.Read(in)
	if err != nil {
		return err
	}
	closed := prepare.CloseLinks(net, d.AugustusBridge.Links, d.AugustusBridge.ClosedModes)
	logrus.Infof("Closed %d bridge links for %v", closed, d.AugustusBridge.ClosedModes)
	prepare.PrepareFreightNetwork(net, d.FreightModes)
	typed := prepare.AddHbefaRoadTypes(net)
	logrus.Infof("Added HBEFA road types to %d links", typed)
	return network.Write(out, net)
}

// --- dresden prepare facilities-from-osm ---

var (
	osmInput         string
	facilitiesOutput string
	facilitiesMerge  string
)

var facilitiesCmd = &cobra.Command{
	Use:   "facilities-from-osm",
	Short: "Create facilities from OSM points of interest",
	Run: func(cmd *cobra.Command, args []string) {
		d := mustLoadDefaults(defaultsPath)
		if err := runFacilitiesFromOSM(cmd.Context(), osmInput, facilitiesMerge, facilitiesOutput, d); err != nil {
			logrus.Fatalf("Facility creation failed: %v", err)
		}
	},
}

// osmFormat picks the scanner from the file name.
func osmFormat(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".pbf") {
		return prepare.OSMFormatPBF
	}
	return prepare.OSMFormatXML
}

func runFacilitiesFromOSM(ctx context.Context, in, mergeWith, out string, d *defaults.Defaults) error {
	tr, err := geo.NewTransformer(geo.WGS84, d.CRS)
	if err != nil {
		return err
	}
	r, err := matsim.Open(in)
	if err != nil {
		return err
	}
	defer r.Close()
	pois, stats, err := prepare.ReadOSMFacilities(ctx, r, prepare.POIOptions{
		Format:      osmFormat(in),
		Tags:        d.OSM.Tags,
		IgnoreType:  d.OSM.IgnoreType,
		Transformer: tr,
	})
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	logrus.Infof("Found %d facilities in %d nodes and %d ways, %d ignored, %d duplicates",
		len(pois.Items), stats.Nodes, stats.Ways, stats.Ignored, stats.Duplicates)

	base := &facilities.Facilities{}
	if mergeWith != "" {
		if base, err = facilities.Read(mergeWith); err != nil {
			return err
		}
	}
	if _, err := prepare.MergeFacilities(base, pois, d.OSM.IDPrefix, d.OSM.IgnoreType); err != nil {
		return err
	}
	return facilities.Write(out, base)
}

// --- dresden prepare relocate-population ---

var (
	relocateConfig    string
	relocateOutputDir string
)

var relocateCmd = &cobra.Command{
	Use:   "relocate-population",
	Short: "Copy a config's population next to a rewritten config",
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, popPath, err := prepare.RelocatePopulation(relocateConfig, relocateOutputDir)
		if err != nil {
			logrus.Fatalf("Relocation failed: %v", err)
		}
		logrus.Infof("Wrote population to %s and config to %s", popPath, cfgPath)
	},
}

func init() {
	singleModeCmd.Flags().StringVar(&singleModeOutput, "output", "", "Path to the output population")
	singleModeCmd.Flags().StringVar(&singleModeMode, "transport-mode", "car", "Mode every leg is set to")
	_ = singleModeCmd.MarkFlagRequired("output")

	removeVehiclesCmd.Flags().StringVar(&removeVehiclesOutput, "output", "", "Path to the output population")
	removeVehiclesCmd.Flags().StringSliceVar(&removeVehiclesSkip, "skip", nil, "Comma-separated modes whose vehicle types are kept")
	_ = removeVehiclesCmd.MarkFlagRequired("output")

	cutOutCmd.Flags().StringVar(&cutOutPopulation, "population", "", "Path to the input population")
	cutOutCmd.Flags().StringVar(&cutOutNetwork, "network", "", "Path to the network used for routing")
	cutOutCmd.Flags().StringVar(&cutOutShp, "shp", "", "Path to the study area (.shp or .geojson)")
	cutOutCmd.Flags().StringVar(&cutOutOutput, "output-population", "", "Path to the output population")
	cutOutCmd.Flags().Float64Var(&cutOutBuffer, "buffer", 5000, "Buffer around the area in metres")
	cutOutCmd.Flags().StringVar(&cutOutNetworkMode, "network-mode", "car", "Mode used to route legs")
	cutOutCmd.Flags().BoolVar(&cutOutBeeline, "beeline", false, "Use straight lines between activities instead of routes")
	cutOutCmd.Flags().IntVar(&cutOutWorkers, "workers", 0, "Number of routing workers (0 = one per CPU)")
	_ = cutOutCmd.MarkFlagRequired("population")
	_ = cutOutCmd.MarkFlagRequired("shp")
	_ = cutOutCmd.MarkFlagRequired("output-population")

	prepareNetworkCmd.Flags().StringVar(&prepareNetworkInput, "network", "", "Path to the input network")
	prepareNetworkCmd.Flags().StringVar(&prepareNetworkOutput, "output", "", "Path to the output network")
	_ = prepareNetworkCmd.MarkFlagRequired("network")
	_ = prepareNetworkCmd.MarkFlagRequired("output")

	facilitiesCmd.Flags().StringVar(&osmInput, "osm", "", "Path to an OSM file (.osm.pbf, .osm or .osm.gz)")
	facilitiesCmd.Flags().StringVar(&facilitiesOutput, "output", "", "Path to the output facilities")
	facilitiesCmd.Flags().StringVar(&facilitiesMerge, "merge-with", "", "Existing facilities the new ones are added to")
	_ = facilitiesCmd.MarkFlagRequired("osm")
	_ = facilitiesCmd.MarkFlagRequired("output")

	relocateCmd.Flags().StringVar(&relocateConfig, "config", "", "Path to the scenario config")
	relocateCmd.Flags().StringVar(&relocateOutputDir, "output-dir", "", "Directory for the population and config copies")
	_ = relocateCmd.MarkFlagRequired("config")
	_ = relocateCmd.MarkFlagRequired("output-dir")

	prepareCmd.AddCommand(singleModeCmd)
	prepareCmd.AddCommand(removeVehiclesCmd)
	prepareCmd.AddCommand(cutOutCmd)
	prepareCmd.AddCommand(prepareNetworkCmd)
	prepareCmd.AddCommand(facilitiesCmd)
	prepareCmd.AddCommand(relocateCmd)

	rootCmd.AddCommand(prepareCmd)
}
