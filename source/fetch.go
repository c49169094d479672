package source

import (
	"context"
	"net/http"
	"time"

	"radio-epg/consts"

	"github.com/imroc/req/v3"
)

const defaultTimeout = 10 * time.Second

// Fetcher issues the GET requests of every adapter. Each request gets its
// own deadline so one slow channel cannot stall the run.
type Fetcher struct {
	client  *req.Client
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client:  req.C().SetUserAgent(consts.UA).SetTimeout(timeout),
		timeout: timeout,
	}
}

// Get returns the body of a 200 response.
func (f *Fetcher) Get(ctx context.Context, url string, query, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	res, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if res.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: url, Status: res.StatusCode}
	}
	body, err := res.ToBytes()
	if err != nil {
		return nil, &TransportError{URL: url, Status: res.StatusCode, Err: err}
	}
	return body, nil
}
