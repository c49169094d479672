package source

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// BuildIDResolver finds the Next.js build id that VOH puts in its data
// endpoint paths. The id changes with every deployment, so it is scraped
// from a rendered page. Resolution runs at most once per resolver.
type BuildIDResolver struct {
	fetcher *Fetcher
	page    string

	once sync.Once
	id   string
	err  error
}

func NewBuildIDResolver(fetcher *Fetcher, page string) *BuildIDResolver {
	return &BuildIDResolver{fetcher: fetcher, page: page}
}

// Resolve returns the build id, or a *ResolutionError.
func (r *BuildIDResolver) Resolve(ctx context.Context) (string, error) {
	r.once.Do(func() {
		r.id, r.err = r.resolve(ctx)
	})
	return r.id, r.err
}

func (r *BuildIDResolver) resolve(ctx context.Context) (string, error) {
	body, err := r.fetcher.Get(ctx, r.page, nil, nil)
	if err != nil {
		return "", &ResolutionError{Page: r.page, Err: err}
	}
	id, err := ExtractBuildID(body)
	if err != nil {
		return "", &ResolutionError{Page: r.page, Err: err}
	}
	return id, nil
}

// ExtractBuildID reads buildId from the __NEXT_DATA__ script of a Next.js page.
func ExtractBuildID(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", &ParseError{What: "build page", Err: err}
	}
	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return "", &ParseError{What: "build page", Err: ErrMarkerNotFound}
	}
	var data struct {
		BuildID string `json:"buildId"`
	}
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		return "", &ParseError{What: "__NEXT_DATA__", Err: err}
	}
	if data.BuildID == "" {
		return "", &ParseError{What: "__NEXT_DATA__", Err: ErrBuildIDMissing}
	}
	return data.BuildID, nil
}
