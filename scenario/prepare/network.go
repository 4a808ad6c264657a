package prepare

import (
	"github.com/sirupsen/logrus"

	"github.com/dresden-mobility/dresden-scenario/scenario/network"
)

const truckMode = "truck"
const carMode = "car"

// CloseLinks removes modes from the listed links. Link ids missing from the
// network are logged and skipped; the number of modified links is returned.
func CloseLinks(net *network.Network, linkIDs []string, modes []string) int {
	changed := 0
	for _, id := range linkIDs {
		l := net.Link(id)
		if l == nil {
			logrus.Warnf("Link %s not found in network, cannot close it for %v", id, modes)
			continue
		}
		if l.RemoveModes(modes...) {
			changed++
		}
	}
	logrus.Infof("Closed %d of %d links for modes %v", changed, len(linkIDs), modes)
	return changed
}

// PrepareFreightNetwork replaces the generic truck mode by the freight modes
// on every car link and keeps each freight mode on its largest strongly
// connected subnetwork.
func PrepareFreightNetwork(net *network.Network, freightModes []string) network.CleanStats {
	count := 0
	for _, l := range net.Links.Items {
		l.RemoveModes(truckMode)
		if l.AllowsMode(carMode) {
			l.AddModes(freightModes...)
			count++
		}
	}
	logrus.Infof("For %d links the freight modes %v have been added as allowed modes.", count, freightModes)
	return network.CleanNetwork(net, freightModes)
}

// ClearDisallowedNextLinks drops turn restrictions for the modes each link
// allows and reports the number of links that changed.
func ClearDisallowedNextLinks(net *network.Network) (int, error) {
	changed := 0
	for _, l := range net.Links.Items {
		cleared, err := l.ClearDisallowedNextLinks()
		if err != nil {
			return changed, err
		}
		if len(cleared) > 0 {
			changed++
		}
	}
	return changed, nil
}
