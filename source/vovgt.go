package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"radio-epg/config"
	"radio-epg/logging"
	"radio-epg/vntime"

	"github.com/rs/zerolog"
)

type vovEntry struct {
	Content *string `json:"content"`
	Time    *string `json:"time"`
}

// VOVGT reads the VOV Giao thông schedules. They only carry times of day,
// so slots are placed on the current local date.
type VOVGT struct {
	fetcher  *Fetcher
	baseURL  string
	channels []config.VOVGTChannel
	now      func() time.Time
	log      zerolog.Logger
}

func NewVOVGT(fetcher *Fetcher, cfg config.VOVGTConfig) *VOVGT {
	return &VOVGT{
		fetcher:  fetcher,
		baseURL:  cfg.URL,
		channels: cfg.Channels,
		now:      vntime.Now,
		log:      logging.WithComponent("source.vovgt"),
	}
}

func (v *VOVGT) Name() string { return "vovgt" }

func (v *VOVGT) Fetch(ctx context.Context) Report {
	report := Report{Source: v.Name()}
	ref := v.now()
	for _, ch := range v.channels {
		programs, err := v.fetchChannel(ctx, ch, ref)
		if err != nil {
			report.fail(v.log, ch.ID, err)
			continue
		}
		v.log.Debug().Str(logging.FieldChannel, ch.ID).Int(logging.FieldPrograms, len(programs)).Msg("fetched schedule")
		report.Programs = append(report.Programs, programs...)
	}
	return report
}

func (v *VOVGT) fetchChannel(ctx context.Context, ch config.VOVGTChannel, ref time.Time) ([]Program, error) {
	body, err := v.fetcher.Get(ctx, v.baseURL+ch.Suffix, nil, nil)
	if err != nil {
		return nil, err
	}
	entries, err := vovSchedule(body)
	if err != nil {
		return nil, err
	}
	programs := make([]Program, 0, len(entries))
	for _, e := range entries {
		p, err := mapVOV(ch.ID, e, ref)
		if err != nil {
			v.log.Debug().Err(err).Str(logging.FieldChannel, ch.ID).Msg("dropping record")
			continue
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// vovSchedule decodes the response, a JSON array whose second element is
// the schedule list.
func vovSchedule(body []byte) ([]vovEntry, error) {
	const what = "vovgt schedule"
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, &ParseError{What: what, Err: err}
	}
	if len(parts) < 2 {
		return nil, &ParseError{What: what, Err: fmt.Errorf("expected at least 2 elements, got %d", len(parts))}
	}
	var entries []vovEntry
	if err := json.Unmarshal(parts[1], &entries); err != nil {
		return nil, &ParseError{What: what, Err: err}
	}
	return entries, nil
}

func mapVOV(channel string, e vovEntry, ref time.Time) (Program, error) {
	if e.Content == nil || strings.TrimSpace(*e.Content) == "" {
		return Program{}, &ScheduleFormatError{Field: "content", Err: errors.New("missing")}
	}
	if e.Time == nil {
		return Program{}, &ScheduleFormatError{Field: "time", Err: errors.New("missing")}
	}
	start, stop, err := ParseSlot(*e.Time, ref)
	if err != nil {
		return Program{}, err
	}
	return newProgram(channel, *e.Content, *e.Content, start, stop)
}

// ParseSlot reads a "HHhMM|HHhMM" slot on the date of ref. Minutes may be
// omitted ("23h|0h30"). A stop earlier than start is taken to be on the
// next day.
func ParseSlot(s string, ref time.Time) (start, stop time.Time, err error) {
	from, to, ok := strings.Cut(s, "|")
	if !ok || strings.Contains(to, "|") {
		return start, stop, &ScheduleFormatError{Field: "time", Value: s, Err: errors.New("want HHhMM|HHhMM")}
	}
	h1, m1, err := parseClock(from)
	if err != nil {
		return start, stop, &ScheduleFormatError{Field: "time", Value: s, Err: err}
	}
	h2, m2, err := parseClock(to)
	if err != nil {
		return start, stop, &ScheduleFormatError{Field: "time", Value: s, Err: err}
	}
	start = vntime.ComposeFromTimeOfDay(h1, m1, ref)
	stop = vntime.WrapStop(start, vntime.ComposeFromTimeOfDay(h2, m2, ref))
	return start, stop, nil
}

// parseClock reads "HHh[MM]". "24h" is end of day and composes to
// midnight of the next day.
func parseClock(s string) (hour, minute int, err error) {
	hs, ms, _ := strings.Cut(strings.TrimSpace(s), "h")
	if hour, err = strconv.Atoi(strings.TrimSpace(hs)); err != nil || hour < 0 || hour > 24 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	if ms = strings.TrimSpace(ms); ms != "" {
		if minute, err = strconv.Atoi(ms); err != nil || minute < 0 || minute > 59 {
			return 0, 0, fmt.Errorf("bad minute in %q", s)
		}
	}
	if hour == 24 && minute != 0 {
		return 0, 0, fmt.Errorf("bad time in %q", s)
	}
	return hour, minute, nil
}
