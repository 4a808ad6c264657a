package variant

import (
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/config"
	"github.com/dresden-mobility/dresden-scenario/scenario/defaults"
	"github.com/dresden-mobility/dresden-scenario/scenario/dresden"
	"github.com/dresden-mobility/dresden-scenario/scenario/matsim"
	"github.com/dresden-mobility/dresden-scenario/scenario/network"
	"github.com/dresden-mobility/dresden-scenario/scenario/prepare"
)

// BridgeClosure models the collapsed Carola bridge. With Remove unset the
// bridge links stay in the network but carry almost nothing; with Remove set
// they are deleted and network and population are cleaned up afterwards.
type BridgeClosure struct {
	Remove bool
}

func (v BridgeClosure) Name() string {
	if v.Remove {
		return NameBridgeRemoval
	}
	return NameBridgeClosure
}

func (BridgeClosure) PrepareConfig(*config.Config, *defaults.Defaults) error { return nil }

func (v BridgeClosure) PrepareScenario(s *dresden.Scenario, d *defaults.Defaults) error {
	if v.Remove {
		removeBridge(s, d.CarolaBridge)
		return nil
	}
	closed := 0
	for _, id := range d.CarolaBridge.Links {
		l := s.Network.Link(id)
		if l == nil {
			logrus.Warnf("Bridge link %s not found", id)
			continue
		}
		l.Capacity = matsim.Float(d.CarolaBridge.Capacity)
		l.FreeSpeed = matsim.Float(d.CarolaBridge.FreeSpeed)
		closed++
	}
	logrus.Infof("Closed %d of %d bridge links", closed, len(d.CarolaBridge.Links))
	return nil
}

func removeBridge(s *dresden.Scenario, b defaults.CollapsedLinks) {
	ids := lo.SliceToMap(append(append([]string{}, b.Links...), b.RemovalOnlyLinks...),
		func(id string) (string, bool) { return id, true })
	for id := range ids {
		if s.Network.Link(id) == nil {
			logrus.Warnf("Bridge link %s not found", id)
		}
	}
	removed := s.Network.RemoveLinks(func(l *network.Link) bool { return ids[l.ID] })

	var modes []string
	if s.Config != nil {
		modes = s.Config.Module(config.ModuleRouting).List("networkModes")
	}
	clean := network.CleanNetwork(s.Network, modes)
	logrus.Infof("Removed %d bridge links, cleaning removed %d more links and %d nodes",
		removed, clean.LinksRemoved, clean.NodesRemoved)

	if s.Population == nil {
		return
	}
	refs := prepare.DropMissingLinkRefs(s.Population, s.Network)
	logrus.Infof("Cleared %d activity links and %d routes referring to removed links", refs.Activities, refs.Routes)
}
