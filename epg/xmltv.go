// Package epg merges the source schedules and writes them as an XMLTV guide.
package epg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"radio-epg/consts"
	"radio-epg/source"
	"radio-epg/vntime"

	"github.com/google/renameio/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Header is the XML declaration written before the guide.
const Header = `<?xml version='1.0' encoding='utf-8'?>` + "\n"

const lang = "vi"

type TV struct {
	XMLName    xml.Name    `xml:"tv"`
	Channels   []Channel   `xml:"channel"`
	Programmes []Programme `xml:"programme"`
}

type Channel struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"display-name"`
}

type Programme struct {
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Channel string `xml:"channel,attr"`
	Title   Text   `xml:"title"`
	Desc    *Text  `xml:"desc,omitempty"`
}

type Text struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// Document builds the XMLTV tree for g. Channels come before programmes,
// both in aggregation order.
func Document(g *Guide) *TV {
	tv := &TV{
		Channels:   make([]Channel, 0, g.Channels.Len()),
		Programmes: make([]Programme, 0, len(g.Programs)),
	}
	for pair := g.Channels.Oldest(); pair != nil; pair = pair.Next() {
		tv.Channels = append(tv.Channels, Channel{ID: pair.Key, DisplayName: pair.Value})
	}
	for _, p := range g.Programs {
		prog := Programme{
			Start:   vntime.Format(p.Start),
			Stop:    vntime.Format(p.Stop),
			Channel: p.Channel,
			Title:   Text{Lang: lang, Value: p.Title},
		}
		if p.Description != "" {
			prog.Desc = &Text{Lang: lang, Value: p.Description}
		}
		tv.Programmes = append(tv.Programmes, prog)
	}
	return tv
}

// Marshal renders g as an indented XMLTV document. The output only depends
// on g, so the same guide always yields the same bytes.
func Marshal(g *Guide) ([]byte, error) {
	data, err := xml.MarshalIndent(Document(g), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal xmltv: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(Header) + len(data) + 1)
	buf.WriteString(Header)
	buf.Write(data)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Decode reads a guide written by Marshal back into channels and programs.
func Decode(r io.Reader) (*Guide, error) {
	var tv TV
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.Entity = map[string]string{}
	if err := dec.Decode(&tv); err != nil {
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}

	g := &Guide{
		Channels: orderedmap.New[string, string](),
		Programs: make([]source.Program, 0, len(tv.Programmes)),
	}
	for _, ch := range tv.Channels {
		g.Channels.Set(ch.ID, ch.DisplayName)
	}
	for _, p := range tv.Programmes {
		start, err := parseTime(p.Start)
		if err != nil {
			return nil, err
		}
		stop, err := parseTime(p.Stop)
		if err != nil {
			return nil, err
		}
		prog := source.Program{
			Channel: p.Channel,
			Title:   p.Title.Value,
			Start:   start,
			Stop:    stop,
		}
		if p.Desc != nil {
			prog.Description = p.Desc.Value
		}
		g.Programs = append(g.Programs, prog)
	}
	return g, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(consts.TIME_FORMAT, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode xmltv: bad timestamp %q: %w", s, err)
	}
	return t.In(vntime.Location), nil
}

// WriteGuide atomically replaces path with data, creating its directory
// when needed. Readers never see a partially written guide.
func WriteGuide(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create guide directory: %w", err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending guide file: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write guide data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace guide file: %w", err)
	}
	return nil
}
