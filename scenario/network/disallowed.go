package network

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

const disallowedNextLinksClass = "org.matsim.core.network.DisallowedNextLinks"

// DisallowedNextLinks returns the turn restrictions of a link as mode -> link sequences.
// A link without the attribute yields an empty map.
func (l *Link) DisallowedNextLinks() (map[string][][]string, error) {
	raw, ok := l.Attributes.Get(AttrDisallowedNextLinks)
	if !ok || raw == "" {
		return map[string][][]string{}, nil
	}
	var m map[string][][]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("link %s: parsing %s: %w", l.ID, AttrDisallowedNextLinks, err)
	}
	if m == nil {
		m = map[string][][]string{}
	}
	return m, nil
}

// SetDisallowedNextLinks stores the turn restrictions, removing the attribute when m is empty.
func (l *Link) SetDisallowedNextLinks(m map[string][][]string) error {
	if len(m) == 0 {
		l.Attributes.Remove(AttrDisallowedNextLinks)
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("link %s: encoding %s: %w", l.ID, AttrDisallowedNextLinks, err)
	}
	class := disallowedNextLinksClass
	for _, it := range l.Attributes.Items {
		if it.Name == AttrDisallowedNextLinks && it.Class != "" {
			class = it.Class
		}
	}
	l.Attributes.Set(AttrDisallowedNextLinks, class, string(data))
	return nil
}

// ClearDisallowedNextLinks removes the turn restrictions of the link's own
// allowed modes and reports the modes that were cleared.
func (l *Link) ClearDisallowedNextLinks() ([]string, error) {
	m, err := l.DisallowedNextLinks()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	cleared := lo.Filter(lo.Keys(m), func(mode string, _ int) bool { return l.AllowsMode(mode) })
	sort.Strings(cleared)
	for _, mode := range cleared {
		delete(m, mode)
	}
	return cleared, l.SetDisallowedNextLinks(m)
}
