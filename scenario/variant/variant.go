// Package variant implements the policy variants built on top of the Dresden
// base scenario.
package variant

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/dresden"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
)

// Variant adjusts a base-prepared scenario.
type Variant interface {
	Name() string
	PrepareConfig(cfg *config.Config, d *defaults.Defaults) error
	PrepareScenario(s *dresden.Scenario, d *defaults.Defaults) error
}

// Params carries the command line inputs of all variants; each variant reads
// the fields it needs.
type Params struct {
	AreaPath       string
	RelativeChange *float64
	OneHour        *float64
	ExtraHour      *float64
	Residential    *float64
}

// Variant names.
const (
	NameBase              = "base"
	NameSpeedReduction    = "speed-reduction"
	NameCapacityReduction = "capacity-reduction"
	NameParkingCost       = "parking-cost"
	NameEbikeCity         = "ebike-city"
	NameBridgeClosure     = "bridge-closure"
	NameBridgeRemoval     = "bridge-removal"
)

var constructors = map[string]func(Params) (Variant, error){
	NameBase:              func(Params) (Variant, error) { return Base{}, nil },
	NameSpeedReduction:    newSpeedReduction,
	NameCapacityReduction: newCapacityReduction,
	NameParkingCost:       newParkingCost,
	NameEbikeCity:         newEbikeCity,
	NameBridgeClosure:     func(Params) (Variant, error) { return BridgeClosure{}, nil },
	NameBridgeRemoval:     func(Params) (Variant, error) { return BridgeClosure{Remove: true}, nil },
}

// Names lists the known variants in sorted order.
func Names() []string {
	names := lo.Keys(constructors)
	sort.Strings(names)
	return names
}

// New builds the named variant from p.
func New(name string, p Params) (Variant, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown variant %q, valid variants: %s", name, strings.Join(Names(), ", "))
	}
	return ctor(p)
}

// Apply runs the base preparation and then the variant on config and scenario.
func Apply(v Variant, s *dresden.Scenario, d *defaults.Defaults, opts dresden.Options) error {
	if err := PrepareConfig(v, s.Config, d, opts); err != nil {
		return err
	}
	return PrepareScenario(v, s, d, opts)
}

// PrepareConfig runs the base and variant config preparation. Inputs named by
// the config, such as the sample-sized plans file, are final only afterwards.
func PrepareConfig(v Variant, cfg *config.Config, d *defaults.Defaults, opts dresden.Options) error {
	if err := dresden.PrepareConfig(cfg, d, opts); err != nil {
		return err
	}
	if err := v.PrepareConfig(cfg, d); err != nil {
		return fmt.Errorf("%s config: %w", v.Name(), err)
	}
	return nil
}

// PrepareScenario runs the base and variant preparation of network, vehicles
// and population loaded from a prepared config.
func PrepareScenario(v Variant, s *dresden.Scenario, d *defaults.Defaults, opts dresden.Options) error {
	if err := dresden.PrepareScenario(s, d, opts); err != nil {
		return err
	}
	if err := v.PrepareScenario(s, d); err != nil {
		return fmt.Errorf("%s scenario: %w", v.Name(), err)
	}
	return nil
}

// Base is the unmodified Dresden scenario.
type Base struct{}

func (Base) Name() string                                                { return NameBase }
func (Base) PrepareConfig(*config.Config, *defaults.Defaults) error      { return nil }
func (Base) PrepareScenario(*dresden.Scenario, *defaults.Defaults) error { return nil }

func loadArea(path string) (*geo.Area, error) {
	if path == "" {
		return nil, fmt.Errorf("an area file is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("area file: %w", err)
	}
	return geo.LoadArea(path)
}

// carLinksInArea returns car links whose coordinate lies in area and whose
// type is not one of the excluded road types. With requireType, links
// without a type attribute are skipped too.
func carLinksInArea(net *network.Network, area *geo.Area, excluded []string, requireType bool) []*network.Link {
	var out []*network.Link
	for _, l := range net.Links.Items {
		if !l.AllowsMode("car") || !area.Contains(net.LinkCoord(l)) {
			continue
		}
		typ, ok := l.Type()
		if !ok && requireType {
			continue
		}
		if lo.SomeBy(excluded, func(ex string) bool { return strings.Contains(typ, ex) }) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// reduceCapacity scales capacity by the policy factor, and lanes as well on
// links wider than the configured minimum.
func reduceCapacity(links []*network.Link, p defaults.Policy) {
	for _, l := range links {
		l.Capacity *= matsim.Float(p.CapacityFactor)
		if float64(l.PermLanes) > p.MinLanesForReduction {
			l.PermLanes *= matsim.Float(p.LaneFactor)
		}
	}
}
