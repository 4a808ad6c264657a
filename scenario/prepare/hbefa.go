package prepare

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/network"
)

// hbefaRoadClass maps an OSM highway class to an HBEFA road category and the
// speed range (km/h) the category is tabulated for.
type hbefaRoadClass struct {
	category       string
	minKmh, maxKmh float64
}

// Same table as the MATSim emissions contrib OsmHbefaMapping. Keys with a
// "-Nat." suffix are picked by speed in hbefaClassKey.
var osmHbefaClasses = map[string]hbefaRoadClass{
	"motorway-Nat.": {"MW-Nat.", 80, 130},
	"motorway":      {"MW-City", 60, 110},
	"primary-Nat.":  {"Trunk-Nat.", 80, 110},
	"primary":       {"Trunk-City", 50, 80},
	"trunk":         {"Trunk-City", 50, 80},
	"secondary":     {"Distr", 50, 80},
	"tertiary":      {"Local", 50, 60},
	"residential":   {"Access", 30, 50},
	"service":       {"Access", 30, 50},
	"living":        {"Access", 30, 50},
}

var defaultHbefaClass = hbefaRoadClass{"Access", 30, 50}

// NormalizeRoadType strips the "highway." prefix and everything from the
// first underscore, so "motorway_link" and "living_street" become "motorway"
// and "living".
func NormalizeRoadType(linkType string) string {
	t := strings.TrimPrefix(linkType, "highway.")
	t, _, _ = strings.Cut(t, "_")
	return t
}

// hbefaClassKey picks the table key for a normalized type at kmh.
// Unclassified roads are classed by speed. Motorways are always national,
// primary roads from 90 km/h on.
func hbefaClassKey(typ string, kmh float64) string {
	if typ == "unclassified" || typ == "road" {
		switch {
		case kmh <= 50:
			typ = "living"
		case kmh == 60:
			typ = "tertiary"
		case kmh == 70:
			typ = "secondary"
		case kmh <= 90:
			typ = "primary"
		default:
			typ = "motorway"
		}
	}
	if typ == "motorway" || (typ == "primary" && kmh >= 90) {
		typ += "-Nat."
	}
	return typ
}

// HbefaRoadType derives the HBEFA road type ("URB/<category>/<speed>") of a
// link from its OSM type and free speed. Speeds are rounded to 10 km/h and
// clamped to the category's tabulated range.
func HbefaRoadType(linkType string, freeSpeed float64) string {
	kmh := math.Round(freeSpeed*3.6/10) * 10
	class, ok := osmHbefaClasses[hbefaClassKey(NormalizeRoadType(linkType), kmh)]
	if !ok {
		class = defaultHbefaClass
	}
	kmh = math.Max(class.minKmh, math.Min(class.maxKmh, kmh))
	return fmt.Sprintf("URB/%s/%d", class.category, int(kmh))
}

// AddHbefaRoadTypes sets the hbefa_road_type attribute on every link that
// carries motorized traffic. Links without a type attribute fall back to the
// access category.
func AddHbefaRoadTypes(net *network.Network) int {
	count, untyped := 0, 0
	for _, l := range net.Links.Items {
		if !l.AllowsMode(carMode) && !hasAnyTruckMode(l) {
			continue
		}
		typ, ok := l.Type()
		if !ok {
			untyped++
		}
		l.Attributes.SetString(network.AttrHbefaRoadType, HbefaRoadType(typ, float64(l.FreeSpeed)))
		count++
	}
	if untyped > 0 {
		logrus.Warnf("%d links without type attribute were mapped to %s", untyped, defaultHbefaClass.category)
	}
	logrus.Infof("Added HBEFA road types to %d links", count)
	return count
}

func hasAnyTruckMode(l *network.Link) bool {
	for _, m := range l.AllowedModes() {
		if strings.HasPrefix(m, truckMode) {
			return true
		}
	}
	return false
}
