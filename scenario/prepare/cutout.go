package prepare

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
	"github.com/dresden-mobility/dresden-scenario/scenario/routing"
)

// CutOutOptions configures CutOut.
type CutOutOptions struct {
	Buffer      float64 // metres around the area
	NetworkMode string  // mode used for routing when Beeline is false
	Beeline     bool    // test straight lines between activities instead of routes
	Workers     int     // 0 uses one worker per CPU
}

// CutOutStats summarizes a cut-out.
type CutOutStats struct {
	Persons    int
	Removed    int
	Unroutable int // legs that could not be routed and were ignored
}

// CutOut removes every person whose plans never touch the buffered area.
// Kept persons are written back unchanged; routing runs on copies of their plans.
func CutOut(ctx context.Context, pop *population.Population, net *network.Network, area *geo.Area, opts CutOutOptions) (CutOutStats, error) {
	stats := CutOutStats{Persons: len(pop.Persons)}
	if area.IsEmpty() {
		return stats, errors.New("cut-out area is empty")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var router *routing.Router
	if !opts.Beeline {
		r, err := routing.NewRouter(net, opts.NetworkMode)
		if err != nil {
			return stats, fmt.Errorf("building router: %w", err)
		}
		router = r
	}

	relevant := make([]bool, len(pop.Persons))
	var unroutable atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, person := range pop.Persons {
		i, person := i, person
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Beeline {
				relevant[i] = touchesByBeeline(person, area, opts.Buffer)
				return nil
			}
			rel, skipped, err := touchesByRoute(person, net, router, area, opts.Buffer)
			if err != nil {
				return fmt.Errorf("person %s: %w", person.ID, err)
			}
			relevant[i] = rel
			unroutable.Add(int64(skipped))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	keep := make(map[*population.Person]bool, len(pop.Persons))
	for i, person := range pop.Persons {
		if relevant[i] {
			keep[person] = true
		}
	}
	stats.Removed = pop.RemovePersons(func(p *population.Person) bool { return !keep[p] })
	stats.Unroutable = int(unroutable.Load())
	if stats.Unroutable > 0 {
		logrus.Warnf("%d legs could not be routed on the %s network and were ignored", stats.Unroutable, opts.NetworkMode)
	}
	return stats, nil
}

func touchesByBeeline(person *population.Person, area *geo.Area, buffer float64) bool {
	for _, plan := range person.Plans {
		var prev orb.Point
		hasPrev := false
		for _, el := range plan.Elements {
			act, ok := el.(*population.Activity)
			if !ok {
				continue
			}
			p, ok := act.Coord()
			if !ok {
				continue
			}
			if area.WithinBuffer(p, buffer) {
				return true
			}
			if hasPrev && area.SegmentWithinBuffer(prev, p, buffer) {
				return true
			}
			prev, hasPrev = p, true
		}
	}
	return false
}

func touchesByRoute(person *population.Person, net *network.Network, router *routing.Router, area *geo.Area, buffer float64) (bool, int, error) {
	skipped := 0
	for _, plan := range person.Plans {
		c := plan.Clone()
		population.TripsToLegs(c)
		for _, trip := range population.Trips(c) {
			from, okFrom := accessLink(trip.Origin, net, router)
			to, okTo := accessLink(trip.Destination, net, router)
			if !okFrom || !okTo {
				skipped++
				continue
			}
			route, err := router.Route(from, to)
			if errors.Is(err, routing.ErrNoRoute) {
				skipped++
				continue
			}
			if err != nil {
				return false, skipped, err
			}
			for _, id := range route {
				l := net.Link(id)
				if area.WithinBuffer(net.Node(l.From).Coord(), buffer) || area.WithinBuffer(net.Node(l.To).Coord(), buffer) {
					return true, skipped, nil
				}
			}
		}
	}
	return false, skipped, nil
}

// accessLink picks the link an activity is routed from: its own link when the
// routing mode may use it, otherwise the nearest routable link to its coordinate.
func accessLink(act *population.Activity, net *network.Network, router *routing.Router) (string, bool) {
	if act.Link != "" {
		if l := net.Link(act.Link); l != nil && l.AllowsMode(router.Mode()) {
			return act.Link, true
		}
	}
	if p, ok := act.Coord(); ok {
		return router.NearestLink(p), true
	}
	return "", false
}
