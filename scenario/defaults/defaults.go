// Package defaults loads the scenario constants from defaults.yaml.
package defaults

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Defaults struct {
	Version        string         `yaml:"version" validate:"required"`
	CRS            string         `yaml:"crs" validate:"required"`
	Subpopulations Subpopulations `yaml:"subpopulations"`
	FreightModes   []string       `yaml:"freight_modes" validate:"min=1,dive,required"`
	AugustusBridge BridgeClosure  `yaml:"augustus_bridge"`
	CarolaBridge   CollapsedLinks `yaml:"carola_bridge"`
	Activities     Activities     `yaml:"activities"`
	Commercial     Commercial     `yaml:"commercial"`
	SimWrapper     SimWrapper     `yaml:"simwrapper"`
	SampleSizes    []float64      `yaml:"sample_sizes" validate:"min=1,dive,gt=0,lte=100"`
	Scoring        Scoring        `yaml:"scoring"`
	Annealing      Annealing      `yaml:"annealing"`
	PtFares        PtFares        `yaml:"pt_fares"`
	IntermodalWalk IntermodalWalk `yaml:"intermodal_walk"`
	Emissions      Emissions      `yaml:"emissions"`
	OSM            OSMMapping     `yaml:"osm"`
	StopAccess     StopAccess     `yaml:"stop_access"`
	Ebike          Ebike          `yaml:"ebike"`
	Parking        Parking        `yaml:"parking"`
	Policy         Policy         `yaml:"policy"`
}

// Subpopulations names the subpopulations the scenario distinguishes.
type Subpopulations struct {
	Person              string   `yaml:"person" validate:"required"`
	LongDistanceFreight string   `yaml:"long_distance_freight" validate:"required"`
	Commercial          []string `yaml:"commercial" validate:"min=1,dive,required"`
}

// BridgeClosure lists links closed to motorized traffic.
type BridgeClosure struct {
	Links       []string `yaml:"links" validate:"dive,required"`
	ClosedModes []string `yaml:"closed_modes" validate:"min=1,dive,required"`
}

// CollapsedLinks lists links taken out of the network by the bridge variants.
// The closure variant keeps Links with a near-zero capacity and free speed,
// the removal variant deletes Links and RemovalOnlyLinks.
type CollapsedLinks struct {
	Links            []string `yaml:"links" validate:"min=1,dive,required"`
	RemovalOnlyLinks []string `yaml:"removal_only_links" validate:"dive,required"`
	Capacity         float64  `yaml:"capacity" validate:"gt=0"`
	FreeSpeed        float64  `yaml:"free_speed" validate:"gt=0"`
}

// ActivityType is one base activity type with optional opening hours in seconds.
type ActivityType struct {
	Type        string   `yaml:"type" validate:"required"`
	OpeningTime *float64 `yaml:"opening_time,omitempty" validate:"omitempty,gte=0"`
	ClosingTime *float64 `yaml:"closing_time,omitempty" validate:"omitempty,gtfield=OpeningTime"`
}

// Activities configures the duration-binned activity scoring params.
type Activities struct {
	DurationStep float64        `yaml:"duration_step" validate:"gt=0"`
	MaxDuration  float64        `yaml:"max_duration" validate:"gtfield=DurationStep"`
	Types        []ActivityType `yaml:"types" validate:"min=1,dive"`
}

// Commercial holds commercial traffic activity and strategy settings.
type Commercial struct {
	ActivityTypes     []string `yaml:"activity_types" validate:"min=1,dive,required"`
	TypicalDuration   float64  `yaml:"typical_duration" validate:"gt=0"`
	ChangeExpBeta     float64  `yaml:"change_exp_beta" validate:"gte=0,lte=1"`
	ReRoute           float64  `yaml:"reroute" validate:"gte=0,lte=1"`
	FreightChangeBeta float64  `yaml:"freight_change_exp_beta" validate:"gte=0,lte=1"`
	FreightReRoute    float64  `yaml:"freight_reroute" validate:"gte=0,lte=1"`
}

// SimWrapper holds the dashboard defaults.
type SimWrapper struct {
	Context      string  `yaml:"context"`
	MapCenter    string  `yaml:"map_center" validate:"required"`
	MapZoomLevel float64 `yaml:"map_zoom_level" validate:"gt=0"`
	Shp          string  `yaml:"shp" validate:"required"`
}

// Scoring holds scoring constants applied to the base config.
type Scoring struct {
	Performing        float64 `yaml:"performing" validate:"gt=0"`
	PathSizeLogitBeta float64 `yaml:"path_size_logit_beta" validate:"gte=0"`
	RideAlpha         float64 `yaml:"ride_alpha" validate:"gte=0"`
}

// Annealing holds the replanning annealer variable.
type Annealing struct {
	Type          string  `yaml:"type" validate:"required,oneof=sigmoid exponential linear msa geometric"`
	EndValue      float64 `yaml:"end_value" validate:"gte=0"`
	HalfLife      float64 `yaml:"half_life" validate:"gt=0"`
	ShapeFactor   float64 `yaml:"shape_factor" validate:"gt=0"`
	StartValue    float64 `yaml:"start_value" validate:"gtfield=EndValue"`
	Subpopulation string  `yaml:"subpopulation" validate:"required"`
}

// DistanceClass is one linear fare segment up to MaxDistance metres (0 = unbounded).
type DistanceClass struct {
	MaxDistance float64 `yaml:"max_distance" validate:"gte=0"`
	Slope       float64 `yaml:"slope" validate:"gte=0"`
	Intercept   float64 `yaml:"intercept" validate:"gte=0"`
}

// PtFares holds the zone-based and distance-based fare systems.
type PtFares struct {
	ZoneDescription     string          `yaml:"zone_description" validate:"required"`
	ZoneOrder           int             `yaml:"zone_order" validate:"gt=0"`
	DistanceDescription string          `yaml:"distance_description" validate:"required"`
	DistanceOrder       int             `yaml:"distance_order" validate:"gt=0"`
	MinFare             float64         `yaml:"min_fare" validate:"gte=0"`
	InflationFactor     float64         `yaml:"inflation_factor" validate:"gt=0"`
	TransactionPartner  string          `yaml:"transaction_partner"`
	DistanceClasses     []DistanceClass `yaml:"distance_classes" validate:"min=1,dive"`
}

// IntermodalWalk holds the access/egress search radii for walk.
type IntermodalWalk struct {
	InitialSearchRadius float64 `yaml:"initial_search_radius" validate:"gt=0"`
	MaxRadius           float64 `yaml:"max_radius" validate:"gtfield=InitialSearchRadius"`
	SearchExtension     float64 `yaml:"search_extension_radius" validate:"gt=0"`
}

// Emissions holds the HBEFA table locations and lookup behaviour.
type Emissions struct {
	AverageCold        string `yaml:"average_cold" validate:"required"`
	AverageWarm        string `yaml:"average_warm" validate:"required"`
	DetailedCold       string `yaml:"detailed_cold" validate:"required"`
	DetailedWarm       string `yaml:"detailed_warm" validate:"required"`
	ConsistencyCheck   string `yaml:"consistency_check" validate:"required"`
	LookupBehavior     string `yaml:"lookup_behavior" validate:"required"`
	TransitVehicleHint string `yaml:"transit_vehicle_category" validate:"required"`
}

// OSMMapping maps OSM tag values to activity types per tag key.
type OSMMapping struct {
	IgnoreType string                       `yaml:"ignore_type" validate:"required"`
	IDPrefix   string                       `yaml:"id_prefix" validate:"required"`
	Tags       map[string]map[string]string `yaml:"tags" validate:"min=1"`
}

// StopAccess converts beeline distance to walking time.
type StopAccess struct {
	DetourFactor float64 `yaml:"detour_factor" validate:"gte=1"`
	WalkSpeed    float64 `yaml:"walk_speed" validate:"gt=0"`
}

// Ebike holds the e-bike variant constants.
type Ebike struct {
	Mode                  string  `yaml:"mode" validate:"required"`
	MaxVelocity           float64 `yaml:"max_velocity" validate:"gt=0"`
	DailyMonetaryConstant float64 `yaml:"daily_monetary_constant"`
	LinkDynamics          string  `yaml:"link_dynamics" validate:"required,oneof=FIFO PassingQ SeepageQ"`
}

// Parking holds the link attribute names of the parking cost variant.
type Parking struct {
	OneHourAttribute     string `yaml:"one_hour_attribute" validate:"required"`
	ExtraHourAttribute   string `yaml:"extra_hour_attribute" validate:"required"`
	ResidentialAttribute string `yaml:"residential_attribute" validate:"required"`
	MaxDailyAttribute    string `yaml:"max_daily_attribute" validate:"required"`
	MaxDurationAttribute string `yaml:"max_duration_attribute" validate:"required"`
	PenaltyAttribute     string `yaml:"penalty_attribute" validate:"required"`
	DailyActivityPrefix  string `yaml:"daily_activity_prefix" validate:"required"`
}

// Policy holds the constants shared by link-level policy variants.
type Policy struct {
	ExcludedRoadTypes    []string `yaml:"excluded_road_types" validate:"dive,required"`
	CapacityFactor       float64  `yaml:"capacity_factor" validate:"gt=0,lte=1"`
	LaneFactor           float64  `yaml:"lane_factor" validate:"gt=0,lte=1"`
	MinLanesForReduction float64  `yaml:"min_lanes_for_reduction" validate:"gte=0"`
}

// Load parses and validates defaults.yaml.
// Uses strict field checking so typos cause errors.
func Load(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading defaults file %s: %w", path, err)
	}
	var d Defaults
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing defaults YAML: %w", err)
	}
	if err := validator.New().Struct(&d); err != nil {
		return nil, fmt.Errorf("validating defaults: %w", err)
	}
	return &d, nil
}

// IsSampleSize reports whether size (in percent) is one of the configured samples.
func (d *Defaults) IsSampleSize(size float64) bool {
	for _, s := range d.SampleSizes {
		if s == size {
			return true
		}
	}
	return false
}

// SimWrapperShp returns the dashboard shapefile path for the scenario version.
func (d *Defaults) SimWrapperShp() string {
	return fmt.Sprintf(d.SimWrapper.Shp, d.Version)
}
