package epg

import (
	"bytes"
	"strings"
	"testing"

	"radio-epg/source"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGuide() *Guide {
	return Aggregate(
		source.Report{Programs: []source.Program{
			prog("FM90", "Tin tức", "Bản tin <sáng> & \"trưa\"", 7),
			prog("FM90", "Âm nhạc", "", 8),
		}},
		source.Report{Programs: []source.Program{
			prog("dai-phat-thanh-VOH-99.9Mhz", "Chào buổi sáng", "Thời sự", 5),
		}},
	)
}

func TestMarshalLayout(t *testing.T) {
	data, err := Marshal(sampleGuide())
	require.NoError(t, err)
	out := string(data)

	want := Header + `<tv>
  <channel id="FM90">
    <display-name>FM90</display-name>
  </channel>
  <channel id="dai-phat-thanh-VOH-99.9Mhz">
    <display-name>dai-phat-thanh-VOH-99.9Mhz</display-name>
  </channel>
  <programme start="20261015070000 +0700" stop="20261015073000 +0700" channel="FM90">
    <title lang="vi">Tin tức</title>
    <desc lang="vi">Bản tin &lt;sáng&gt; &amp; &#34;trưa&#34;</desc>
  </programme>
  <programme start="20261015080000 +0700" stop="20261015083000 +0700" channel="FM90">
    <title lang="vi">Âm nhạc</title>
  </programme>
  <programme start="20261015050000 +0700" stop="20261015053000 +0700" channel="dai-phat-thanh-VOH-99.9Mhz">
    <title lang="vi">Chào buổi sáng</title>
    <desc lang="vi">Thời sự</desc>
  </programme>
</tv>
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, strings.HasPrefix(out, "<?xml version='1.0' encoding='utf-8'?>\n<tv>"))
	assert.NotContains(t, out, "<desc lang=\"vi\"></desc>")
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := Marshal(sampleGuide())
	require.NoError(t, err)
	b, err := Marshal(sampleGuide())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestMarshalDecodeRoundTrip(t *testing.T) {
	in := sampleGuide()
	data, err := Marshal(in)
	require.NoError(t, err)

	out, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, in.ChannelIDs(), out.ChannelIDs())
	if diff := cmp.Diff(in.Programs, out.Programs); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestDecodeRejectsBadTimestamp(t *testing.T) {
	doc := Header + `<tv><programme start="2026-10-15" stop="20261015073000 +0700" channel="x"><title>t</title></programme></tv>`
	_, err := Decode(strings.NewReader(doc))
	assert.ErrorContains(t, err, "bad timestamp")
}
