// Package source fetches broadcast schedules from the upstream radio sites
// and maps them onto Program values.
package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"radio-epg/logging"
	"radio-epg/vntime"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// Program is one broadcast slot on one channel.
type Program struct {
	Channel     string
	Title       string
	Description string
	Start       time.Time
	Stop        time.Time
}

// Adapter is one upstream schedule source. Fetch never fails as a whole:
// whatever could not be fetched is reported in Report.Failures.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) Report
}

// Report is the outcome of one adapter run.
type Report struct {
	Source   string
	Programs []Program
	Failures []ChannelFailure
}

// ChannelFailure records a channel that was skipped. Channel is empty when
// the whole source failed before any channel was queried.
type ChannelFailure struct {
	Channel string
	Err     error
}

func (r *Report) fail(log zerolog.Logger, channel string, err error) {
	ev := log.Warn().Err(err).Str(logging.FieldChannel, channel)
	var te *TransportError
	if errors.As(err, &te) {
		ev = ev.Str(logging.FieldURL, te.URL)
	}
	ev.Msg("skipping channel")
	r.Failures = append(r.Failures, ChannelFailure{Channel: channel, Err: err})
}

// newProgram moves a stop that falls before start to the next day, then
// rejects slots that are still empty.
func newProgram(channel, title, desc string, start, stop time.Time) (Program, error) {
	stop = vntime.WrapStop(start, stop)
	if !stop.After(start) {
		return Program{}, &ScheduleFormatError{
			Field: "stop",
			Value: stop.Format(time.RFC3339),
			Err:   ErrEmptySlot,
		}
	}
	return Program{
		Channel:     channel,
		Title:       cleanText(title),
		Description: cleanText(desc),
		Start:       start,
		Stop:        stop,
	}, nil
}

// cleanText trims s and composes its diacritics; the upstream CMSs mix NFC
// and NFD Vietnamese text.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
