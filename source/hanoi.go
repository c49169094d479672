package source

import (
	"context"
	"encoding/json"
	"time"

	"radio-epg/config"
	"radio-epg/logging"
	"radio-epg/vntime"

	"github.com/rs/zerolog"
)

type hanoiResponse struct {
	Data *[]hanoiRecord `json:"Data"`
}

type hanoiRecord struct {
	StartTime   string `json:"StartTime"`
	EndTime     string `json:"EndTime"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// Hanoi reads the hanoionline.vn daily schedule, one request per channel.
type Hanoi struct {
	fetcher  *Fetcher
	url      string
	channels []config.HanoiChannel
	now      func() time.Time
	log      zerolog.Logger
}

func NewHanoi(fetcher *Fetcher, cfg config.HanoiConfig) *Hanoi {
	return &Hanoi{
		fetcher:  fetcher,
		url:      cfg.URL,
		channels: cfg.Channels,
		now:      vntime.Now,
		log:      logging.WithComponent("source.hanoi"),
	}
}

func (h *Hanoi) Name() string { return "hanoi" }

func (h *Hanoi) Fetch(ctx context.Context) Report {
	report := Report{Source: h.Name()}
	today := vntime.DateKey(h.now())
	for _, ch := range h.channels {
		programs, err := h.fetchChannel(ctx, ch, today)
		if err != nil {
			report.fail(h.log, ch.ID, err)
			continue
		}
		h.log.Debug().Str(logging.FieldChannel, ch.ID).Int(logging.FieldPrograms, len(programs)).Msg("fetched schedule")
		report.Programs = append(report.Programs, programs...)
	}
	return report
}

func (h *Hanoi) fetchChannel(ctx context.Context, ch config.HanoiChannel, day string) ([]Program, error) {
	body, err := h.fetcher.Get(ctx, h.url, map[string]string{"key": ch.Key + "_" + day}, nil)
	if err != nil {
		return nil, err
	}
	records, err := hanoiSchedule(body)
	if err != nil {
		return nil, err
	}
	programs := make([]Program, 0, len(records))
	for _, rec := range records {
		p, err := mapHanoi(ch.ID, rec)
		if err != nil {
			h.log.Debug().Err(err).Str(logging.FieldChannel, ch.ID).Msg("dropping record")
			continue
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func hanoiSchedule(body []byte) ([]hanoiRecord, error) {
	var res hanoiResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &ParseError{What: "hanoi schedule", Err: err}
	}
	if res.Data == nil {
		return nil, missingKey("hanoi schedule", "Data")
	}
	return *res.Data, nil
}

func mapHanoi(channel string, rec hanoiRecord) (Program, error) {
	start, err := vntime.ParseTimestamp(rec.StartTime)
	if err != nil {
		return Program{}, &ScheduleFormatError{Field: "StartTime", Value: rec.StartTime, Err: err}
	}
	stop, err := vntime.ParseTimestamp(rec.EndTime)
	if err != nil {
		return Program{}, &ScheduleFormatError{Field: "EndTime", Value: rec.EndTime, Err: err}
	}
	return newProgram(channel, rec.Name, rec.Description, start, stop)
}
