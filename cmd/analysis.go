package cmd

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dresden-mobility/dresden-scenario/scenario/analysis"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
	"github.com/dresden-mobility/dresden-scenario/scenario/transit"
)

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Analyse populations and write TSV tables for calibration",
}

// --- dresden analysis stay-home-agents ---

var stayHomeCmd = &cobra.Command{
	Use:   "stay-home-agents INPUT",
	Short: "Count persons whose selected plan is a single home activity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := analysis.StayHomeAgents(mustReadPopulation(args[0]))
		if errors.Is(err, analysis.ErrInvalidStayHomePlan) {
			logrus.Fatalf("Invalid plan: %v", err)
		} else if err != nil {
			logrus.Fatalf("Stay home analysis failed: %v", err)
		}
		logrus.Infof("%d of %d persons stay home (share %.4f)", len(res.IDs), res.Persons, res.Share())
		logrus.Infof("Stay home agents: %s", strings.Join(res.IDs, ", "))
	},
}

// --- dresden analysis check-summarize-freight ---

var freightCmd = &cobra.Command{
	Use:   "check-summarize-freight INPUT",
	Short: "Check freight plans and summarize their locations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheckFreight(args[0]); err != nil {
			logrus.Fatalf("Freight check failed: %v", err)
		}
	},
}

// runCheckFreight logs the check results and writes the location summary
// next to the input. An unsummarizable population is reported, not an error.
func runCheckFreight(in string) error {
	pop, err := population.Read(in)
	if err != nil {
		return err
	}
	check := analysis.CheckFreight(pop)
	logrus.Infof("Checked %d freight persons: %d with plan count != 1, %d plans with element count != 3 (%d too short to read)",
		check.Persons, check.PlanCount, check.ElementCount, check.TooShortToRead)
	logrus.Infof("%d elements not an activity, %d not a leg, %d activities without coord",
		check.NotActivity, check.NotLeg, check.MissingCoord)
	if !check.Valid() {
		logrus.Errorf("Freight population %s is not summarizable, no summary written", in)
		return nil
	}
	out := analysis.FreightSummaryPath(in)
	if err := analysis.WriteFreightSummary(out, pop); err != nil {
		return err
	}
	logrus.Infof("Freight summary written to %s", out)
	return nil
}

// --- dresden analysis home-locations ---

var (
	homesShp    string
	homesOutput string
)

var homesCmd = &cobra.Command{
	Use:   "home-locations INPUT",
	Short: "Write home coordinates of persons living in an area",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		homes := analysis.HomeLocations(mustReadPopulation(args[0]), mustLoadArea(homesShp))
		if err := analysis.WriteHomes(homesOutput, homes); err != nil {
			logrus.Fatalf("Failed to write homes: %v", err)
		}
		logrus.Infof("Wrote %d home locations to %s", len(homes), homesOutput)
	},
}

// --- dresden analysis input-plans ---

var inputPlansOutput string

var inputPlansCmd = &cobra.Command{
	Use:   "input-plans INPUT",
	Short: "Summarize persons and trip purposes of an input population",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		summaries, err := analysis.InputPlans(mustReadPopulation(args[0]))
		if err != nil {
			logrus.Fatalf("Input plans analysis failed: %v", err)
		}
		if err := analysis.WritePersonSummaries(inputPlansOutput, summaries); err != nil {
			logrus.Fatalf("Failed to write person summaries: %v", err)
		}
		logrus.Infof("Wrote %d person summaries to %s", len(summaries), inputPlansOutput)
	},
}

// --- dresden analysis accessibility-mapping ---

var (
	accessibilityInput  string
	accessibilityHomes  string
	accessibilityOutput string
)

var accessibilityCmd = &cobra.Command{
	Use:   "accessibility-mapping",
	Short: "Map each home to its nearest accessibility measurement point",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAccessibilityMapping(accessibilityInput, accessibilityHomes, accessibilityOutput); err != nil {
			logrus.Fatalf("Accessibility mapping failed: %v", err)
		}
	},
}

func runAccessibilityMapping(pointsPath, homesPath, out string) error {
	points, err := analysis.ReadMeasurementPoints(pointsPath)
	if err != nil {
		return err
	}
	homes, err := analysis.ReadHomes(homesPath)
	if err != nil {
		return err
	}
	matches, err := analysis.MapAccessibility(points, homes)
	if err != nil {
		return err
	}
	return analysis.WriteAccessibilityMapping(out, matches)
}

// --- dresden analysis pt-stops ---

var (
	ptStopsSchedule string
	ptStopsShp      string
	ptStopsHomes    string
	ptStopsOutput   string
)

var ptStopsCmd = &cobra.Command{
	Use:   "pt-stops",
	Short: "Write the distance and walk time from each home to its nearest transit stop",
	Run: func(cmd *cobra.Command, args []string) {
		d := mustLoadDefaults(defaultsPath)
		if err := runPtStops(ptStopsSchedule, ptStopsShp, ptStopsHomes, ptStopsOutput, d); err != nil {
			logrus.Fatalf("Transit stop analysis failed: %v", err)
		}
	},
}

func runPtStops(schedulePath, areaPath, homesPath, out string, d *defaults.Defaults) error {
	schedule, err := transit.ReadSchedule(schedulePath)
	if err != nil {
		return err
	}
	area, err := geo.LoadArea(areaPath)
	if err != nil {
		return err
	}
	stops := analysis.StopsInArea(schedule, area)
	logrus.Infof("%d of %d stops lie in the area", len(stops), len(schedule.Stops))
	homes, err := analysis.ReadHomes(homesPath)
	if err != nil {
		return err
	}
	matches, err := analysis.NearestStops(stops, homes)
	if err != nil {
		return err
	}
	return analysis.WriteStopDistances(out, matches, d.StopAccess)
}

func init() {
	homesCmd.Flags().StringVar(&homesShp, "shp", "", "Path to the area (.shp or .geojson)")
	homesCmd.Flags().StringVar(&homesOutput, "output", "", "Path to the output TSV")
	_ = homesCmd.MarkFlagRequired("shp")
	_ = homesCmd.MarkFlagRequired("output")

	inputPlansCmd.Flags().StringVar(&inputPlansOutput, "output", "", "Path to the output TSV")
	_ = inputPlansCmd.MarkFlagRequired("output")

	accessibilityCmd.Flags().StringVar(&accessibilityInput, "accessibility", "", "CSV of measurement points (id,xcoord,ycoord)")
	accessibilityCmd.Flags().StringVar(&accessibilityHomes, "homes", "", "TSV of home locations")
	accessibilityCmd.Flags().StringVar(&accessibilityOutput, "output", "", "Path to the output TSV")
	_ = accessibilityCmd.MarkFlagRequired("accessibility")
	_ = accessibilityCmd.MarkFlagRequired("homes")
	_ = accessibilityCmd.MarkFlagRequired("output")

	ptStopsCmd.Flags().StringVar(&ptStopsSchedule, "schedule", "", "Path to the transit schedule")
	ptStopsCmd.Flags().StringVar(&ptStopsShp, "shp", "", "Path to the area (.shp or .geojson)")
	ptStopsCmd.Flags().StringVar(&ptStopsHomes, "homes", "", "TSV of home locations")
	ptStopsCmd.Flags().StringVar(&ptStopsOutput, "output", "", "Path to the output TSV")
	_ = ptStopsCmd.MarkFlagRequired("schedule")
	_ = ptStopsCmd.MarkFlagRequired("shp")
	_ = ptStopsCmd.MarkFlagRequired("homes")
	_ = ptStopsCmd.MarkFlagRequired("output")

	analysisCmd.AddCommand(stayHomeCmd)
	analysisCmd.AddCommand(freightCmd)
	analysisCmd.AddCommand(homesCmd)
	analysisCmd.AddCommand(inputPlansCmd)
	analysisCmd.AddCommand(accessibilityCmd)
	analysisCmd.AddCommand(ptStopsCmd)

	rootCmd.AddCommand(analysisCmd)
}
