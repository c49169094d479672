package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"radio-epg/config"
	"radio-epg/logging"
	"radio-epg/vntime"

	"github.com/rs/zerolog"
)

type vohPayload struct {
	PageProps *struct {
		PageData *struct {
			ChanelActive *struct {
				RadioScheduleList []vohRecord `json:"radioScheduleList"`
			} `json:"chanelActive"`
		} `json:"pageData"`
	} `json:"pageProps"`
}

type vohRecord struct {
	BroadcastFrom string `json:"broadcastFrom"`
	BroadcastTo   string `json:"broadcastTo"`
	RadioTitle    string `json:"radioTitle"`
	CategoryTitle string `json:"categoryTitle"`
}

// programKey identifies a slot for de-duplication. Times are compared as
// instants, not by their *time.Location.
type programKey struct {
	channel, title, desc string
	start, stop          int64
}

func keyOf(p Program) programKey {
	return programKey{p.Channel, p.Title, p.Description, p.Start.UnixNano(), p.Stop.UnixNano()}
}

// VOH reads the voh.com.vn schedules through the site's Next.js data API.
type VOH struct {
	fetcher  *Fetcher
	resolver *BuildIDResolver
	baseURL  string
	channels []config.VOHChannel
	log      zerolog.Logger
}

func NewVOH(fetcher *Fetcher, cfg config.VOHConfig) *VOH {
	return &VOH{
		fetcher:  fetcher,
		resolver: NewBuildIDResolver(fetcher, cfg.BuildPage),
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		channels: cfg.Channels,
		log:      logging.WithComponent("source.voh"),
	}
}

func (v *VOH) Name() string { return "voh" }

func (v *VOH) Fetch(ctx context.Context) Report {
	report := Report{Source: v.Name()}
	if len(v.channels) == 0 {
		return report
	}
	buildID, err := v.resolver.Resolve(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("cannot resolve build id, skipping source")
		report.Failures = append(report.Failures, ChannelFailure{Err: err})
		return report
	}
	v.log.Debug().Str(logging.FieldBuildID, buildID).Msg("resolved build id")

	for _, ch := range v.channels {
		programs, err := v.fetchChannel(ctx, buildID, ch)
		if err != nil {
			report.fail(v.log, ch.ID, err)
			continue
		}
		v.log.Debug().Str(logging.FieldChannel, ch.ID).Int(logging.FieldPrograms, len(programs)).Msg("fetched schedule")
		report.Programs = append(report.Programs, programs...)
	}
	return report
}

func (v *VOH) dataURL(buildID string) string {
	return fmt.Sprintf("%s/_next/data/%s/radios/schedule/schedule-detail.json", v.baseURL, url.PathEscape(buildID))
}

func (v *VOH) fetchChannel(ctx context.Context, buildID string, ch config.VOHChannel) ([]Program, error) {
	body, err := v.fetcher.Get(ctx, v.dataURL(buildID), map[string]string{
		"channelNewId": strconv.Itoa(ch.Code),
	}, nil)
	if err != nil {
		return nil, err
	}
	records, err := vohSchedule(body)
	if err != nil {
		return nil, err
	}
	return v.mapRecords(ch.ID, records), nil
}

// mapRecords converts records and drops repeated slots, which the API
// sometimes returns.
func (v *VOH) mapRecords(channel string, records []vohRecord) []Program {
	seen := make(map[programKey]struct{}, len(records))
	programs := make([]Program, 0, len(records))
	for _, rec := range records {
		p, err := mapVOH(channel, rec)
		if err != nil {
			v.log.Debug().Err(err).Str(logging.FieldChannel, channel).Msg("dropping record")
			continue
		}
		k := keyOf(p)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		programs = append(programs, p)
	}
	return programs
}

func vohSchedule(body []byte) ([]vohRecord, error) {
	const what = "voh schedule"
	var p vohPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ParseError{What: what, Err: err}
	}
	switch {
	case p.PageProps == nil:
		return nil, missingKey(what, "pageProps")
	case p.PageProps.PageData == nil:
		return nil, missingKey(what, "pageData")
	case p.PageProps.PageData.ChanelActive == nil:
		return nil, missingKey(what, "chanelActive")
	case p.PageProps.PageData.ChanelActive.RadioScheduleList == nil:
		return nil, missingKey(what, "radioScheduleList")
	}
	return p.PageProps.PageData.ChanelActive.RadioScheduleList, nil
}

// mapVOH puts the programme name in the title and its category in the
// description. Both are free text, and upstream has swapped them before.
func mapVOH(channel string, rec vohRecord) (Program, error) {
	start, err := vntime.ParseTimestamp(rec.BroadcastFrom)
	if err != nil {
		return Program{}, &ScheduleFormatError{Field: "broadcastFrom", Value: rec.BroadcastFrom, Err: err}
	}
	stop, err := vntime.ParseTimestamp(rec.BroadcastTo)
	if err != nil {
		return Program{}, &ScheduleFormatError{Field: "broadcastTo", Value: rec.BroadcastTo, Err: err}
	}
	return newProgram(channel, rec.RadioTitle, rec.CategoryTitle, start, stop)
}
