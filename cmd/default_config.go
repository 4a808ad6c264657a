package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/geo"
	"github.com/dresden-mobility/dresden-scenario/scenario/population"
)

// mustLoadDefaults parses and validates defaults.yaml or exits.
func mustLoadDefaults(path string) *defaults.Defaults {
	d, err := defaults.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load defaults: %v", err)
	}
	return d
}

func mustReadPopulation(path string) *population.Population {
	pop, err := population.Read(path)
	if err != nil {
		logrus.Fatalf("Failed to read population: %v", err)
	}
	return pop
}

func mustLoadArea(path string) *geo.Area {
	area, err := geo.LoadArea(path)
	if err != nil {
		logrus.Fatalf("Failed to load area: %v", err)
	}
	return area
}
