package epg

import (
	"radio-epg/source"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Guide is the merged output of all sources. Channels maps channel id to
// display name in first-seen order.
type Guide struct {
	Channels *orderedmap.OrderedMap[string, string]
	Programs []source.Program
}

// Aggregate concatenates the reports' programs in the given order and
// registers each channel the first time one of its programs appears.
func Aggregate(reports ...source.Report) *Guide {
	g := &Guide{Channels: orderedmap.New[string, string]()}
	for _, r := range reports {
		g.Programs = append(g.Programs, r.Programs...)
	}
	for _, p := range g.Programs {
		if _, seen := g.Channels.Get(p.Channel); !seen {
			// No source publishes a display name, so the id doubles as one.
			g.Channels.Set(p.Channel, p.Channel)
		}
	}
	return g
}

// ChannelIDs returns the registry keys in output order.
func (g *Guide) ChannelIDs() []string {
	ids := make([]string, 0, g.Channels.Len())
	for pair := g.Channels.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}
