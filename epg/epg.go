package epg

import (
	"context"
	"errors"
	"fmt"

	"radio-epg/config"
	"radio-epg/logging"
	"radio-epg/source"

	"github.com/rs/zerolog"
)

// ErrNoPrograms is returned when every source failed without producing a
// single program. The previous guide is left in place.
var ErrNoPrograms = errors.New("no programs fetched from any source")

// Generator runs the sources one after another and writes the merged guide.
type Generator struct {
	Adapters []source.Adapter
	Output   string
	log      zerolog.Logger
}

// NewGenerator wires the sources from cfg in their output order: Hanoi,
// VOH, then VOV Giao thông.
func NewGenerator(cfg *config.Config) *Generator {
	fetcher := source.NewFetcher(cfg.Timeout)
	return &Generator{
		Adapters: []source.Adapter{
			source.NewHanoi(fetcher, cfg.Hanoi),
			source.NewVOH(fetcher, cfg.VOH),
			source.NewVOVGT(fetcher, cfg.VOVGT),
		},
		Output: cfg.Output,
		log:    logging.WithComponent("epg"),
	}
}

// Run fetches every source, then writes the guide to g.Output. Source
// failures only shrink the guide; Run fails when every source failed or the
// file cannot be written.
func (g *Generator) Run(ctx context.Context) error {
	reports := make([]source.Report, 0, len(g.Adapters))
	for _, a := range g.Adapters {
		r := a.Fetch(ctx)
		g.log.Info().
			Str(logging.FieldSource, a.Name()).
			Int(logging.FieldPrograms, len(r.Programs)).
			Int("failures", len(r.Failures)).
			Msg("source done")
		reports = append(reports, r)
	}

	if allFailed(reports) {
		return ErrNoPrograms
	}
	guide := Aggregate(reports...)

	data, err := Marshal(guide)
	if err != nil {
		return err
	}
	if err := WriteGuide(g.Output, data); err != nil {
		return fmt.Errorf("write guide %s: %w", g.Output, err)
	}
	g.log.Info().
		Str(logging.FieldPath, g.Output).
		Int(logging.FieldChannels, guide.Channels.Len()).
		Int(logging.FieldPrograms, len(guide.Programs)).
		Msg("guide written")
	return nil
}

// allFailed reports whether every source came back empty with failures.
// Sources that are merely empty still produce a (possibly empty) guide.
func allFailed(reports []source.Report) bool {
	if len(reports) == 0 {
		return false
	}
	for _, r := range reports {
		if len(r.Programs) > 0 || len(r.Failures) == 0 {
			return false
		}
	}
	return true
}

// Generate builds a Generator from cfg and runs it once.
func Generate(ctx context.Context, cfg *config.Config) error {
	return NewGenerator(cfg).Run(ctx)
}
