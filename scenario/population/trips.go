package population

import "strings"

// StageActivitySuffix marks activities that only exist inside a trip.
const StageActivitySuffix = " interaction"

// IsStageActivity reports whether the activity type is a trip-internal stage.
func IsStageActivity(actType string) bool {
	return strings.HasSuffix(actType, StageActivitySuffix)
}

// Trip is the part of a plan between two consecutive main activities.
type Trip struct {
	Origin      *Activity
	Destination *Activity
	Elements    []Element // legs and stage activities between Origin and Destination
}

// Legs returns the legs of the trip.
func (t Trip) Legs() []*Leg {
	var legs []*Leg
	for _, el := range t.Elements {
		if l, ok := el.(*Leg); ok {
			legs = append(legs, l)
		}
	}
	return legs
}

// MainMode is the routing mode of the first leg, or "" for a trip without legs.
func (t Trip) MainMode() string {
	legs := t.Legs()
	if len(legs) == 0 {
		return ""
	}
	return legs[0].RoutingMode()
}

// Trips splits a plan into trips. Leading or trailing legs without a main
// activity on both sides are not part of any trip.
func Trips(plan *Plan) []Trip {
	var trips []Trip
	var origin *Activity
	var between []Element
	for _, el := range plan.Elements {
		act, isAct := el.(*Activity)
		if isAct && !IsStageActivity(act.Type) {
			if origin != nil {
				trips = append(trips, Trip{Origin: origin, Destination: act, Elements: between})
			}
			origin = act
			between = nil
			continue
		}
		if origin != nil {
			between = append(between, el)
		}
	}
	return trips
}

// TripsToLegs replaces every trip of the plan with a single leg carrying the
// trip's main mode as mode and routingMode. The departure time of the first
// leg is kept; routes are dropped.
func TripsToLegs(plan *Plan) {
	var out []Element
	var pending []Element
	seenMain := false
	flush := func() {
		var first *Leg
		for _, el := range pending {
			if l, ok := el.(*Leg); ok {
				first = l
				break
			}
		}
		if first != nil {
			mode := first.RoutingMode()
			leg := &Leg{Mode: mode, DepTime: first.DepTime}
			leg.Attributes.SetString(AttrRoutingMode, mode)
			out = append(out, leg)
		}
		pending = nil
	}
	for _, el := range plan.Elements {
		act, isAct := el.(*Activity)
		if isAct && !IsStageActivity(act.Type) {
			if seenMain {
				flush()
			} else {
				out = append(out, pending...)
				pending = nil
			}
			out = append(out, act)
			seenMain = true
			continue
		}
		pending = append(pending, el)
	}
	out = append(out, pending...)
	plan.Elements = out
}

// RemoveRoute drops the route and the routed travel time of a leg.
func RemoveRoute(leg *Leg) {
	leg.Route = nil
	leg.TravTime = ""
}

// SetMode sets both the leg mode and its routingMode attribute.
func SetMode(leg *Leg, mode string) {
	leg.Mode = mode
	leg.Attributes.SetString(AttrRoutingMode, mode)
}
