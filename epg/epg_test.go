package epg

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"radio-epg/config"
	"radio-epg/logging"
	"radio-epg/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name   string
	report source.Report
	calls  int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(context.Context) source.Report {
	s.calls++
	r := s.report
	r.Source = s.name
	return r
}

func failed(name string) *stubAdapter {
	return &stubAdapter{name: name, report: source.Report{
		Failures: []source.ChannelFailure{{Channel: name + "-1", Err: errors.New("connection refused")}},
	}}
}

func readGuide(t *testing.T, path string) (*Guide, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	g, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return g, string(data)
}

func TestRunSingleSource(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schedule", "vietnam.xml")
	hanoi := &stubAdapter{name: "hanoi", report: source.Report{Programs: []source.Program{
		prog("FM90", "Tin tức", "", 7),
	}}}
	voh, vovgt := failed("voh"), failed("vovgt")

	g := &Generator{Adapters: []source.Adapter{hanoi, voh, vovgt}, Output: out, log: logging.Base()}
	require.NoError(t, g.Run(t.Context()))

	assert.Equal(t, 1, hanoi.calls)
	assert.Equal(t, 1, voh.calls)
	assert.Equal(t, 1, vovgt.calls)

	guide, raw := readGuide(t, out)
	assert.Equal(t, []string{"FM90"}, guide.ChannelIDs())
	require.Len(t, guide.Programs, 1)
	assert.Equal(t, 1, strings.Count(raw, "<channel "))
	assert.Equal(t, 1, strings.Count(raw, "<programme "))
	assert.Contains(t, raw, `start="20261015070000 +0700"`)
	assert.NotContains(t, raw, "<desc")
}

func TestRunNothingFetchedKeepsPreviousGuide(t *testing.T) {
	out := filepath.Join(t.TempDir(), "vietnam.xml")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	g := &Generator{Adapters: []source.Adapter{failed("hanoi"), failed("voh")}, Output: out, log: logging.Base()}
	err := g.Run(t.Context())
	assert.ErrorIs(t, err, ErrNoPrograms)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestRunEmptySourcesWritesEmptyGuide(t *testing.T) {
	out := filepath.Join(t.TempDir(), "vietnam.xml")
	g := &Generator{
		Adapters: []source.Adapter{
			&stubAdapter{name: "hanoi"},
			&stubAdapter{name: "voh"},
			&stubAdapter{name: "vovgt"},
		},
		Output: out,
		log:    logging.Base(),
	}
	require.NoError(t, g.Run(t.Context()))

	guide, raw := readGuide(t, out)
	assert.Empty(t, guide.ChannelIDs())
	assert.Empty(t, guide.Programs)
	assert.Equal(t, Header+"<tv></tv>\n", raw)
}

func TestRunPartialFailureWithoutProgramsWritesGuide(t *testing.T) {
	out := filepath.Join(t.TempDir(), "vietnam.xml")
	g := &Generator{
		Adapters: []source.Adapter{failed("hanoi"), &stubAdapter{name: "voh"}},
		Output:   out,
		log:      logging.Base(),
	}
	require.NoError(t, g.Run(t.Context()))
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRunUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	g := &Generator{
		Adapters: []source.Adapter{&stubAdapter{name: "hanoi", report: source.Report{Programs: []source.Program{prog("FM90", "t", "", 7)}}}},
		Output:   filepath.Join(blocker, "vietnam.xml"),
		log:      logging.Base(),
	}
	assert.Error(t, g.Run(t.Context()))
}

// Full pipeline against fake upstreams where the VOH build page has lost
// its __NEXT_DATA__ script.
func TestGenerateWithoutVOHBuildID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hanoi", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Query().Get("key"), "FM90_") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"Data":[{"StartTime":"2026-10-15T07:00:00+07:00","EndTime":"2026-10-15T07:30:00+07:00","Name":"Tin tức","Description":""}]}`))
	})
	mux.HandleFunc("/voh/page.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="__next"></div></body></html>`))
	})
	mux.HandleFunc("/vovgt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{}, [{"content":"Giao thông đêm","time":"23h|0h30"}]]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	logging.Configure(logging.Config{Level: "debug", Output: &logs})
	t.Cleanup(func() { logging.Configure(logging.Config{}) })

	out := filepath.Join(t.TempDir(), "vietnam.xml")
	cfg := &config.Config{
		Output:  out,
		Timeout: 2 * time.Second,
		Hanoi: config.HanoiConfig{
			URL:      srv.URL + "/hanoi",
			Channels: []config.HanoiChannel{{Key: "FM90", ID: "FM90"}},
		},
		VOH: config.VOHConfig{
			URL:       srv.URL,
			BuildPage: srv.URL + "/voh/page.html",
			Channels:  []config.VOHChannel{{ID: "voh-999", Code: 999}},
		},
		VOVGT: config.VOVGTConfig{
			URL:      srv.URL + "/vovgt",
			Channels: []config.VOVGTChannel{{ID: "vov-gt", Suffix: ""}},
		},
	}
	require.NoError(t, Generate(t.Context(), cfg))

	guide, _ := readGuide(t, out)
	assert.Equal(t, []string{"FM90", "vov-gt"}, guide.ChannelIDs())
	require.Len(t, guide.Programs, 2)
	night := guide.Programs[1]
	assert.Equal(t, "Giao thông đêm", night.Title)
	assert.Equal(t, "Giao thông đêm", night.Description)
	assert.Equal(t, 24*time.Hour+30*time.Minute-23*time.Hour, night.Stop.Sub(night.Start))

	assert.Contains(t, logs.String(), "cannot resolve build id")
	assert.Contains(t, logs.String(), source.ErrMarkerNotFound.Error())
}
