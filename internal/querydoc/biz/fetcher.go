package biz

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DocumentFetcher downloads a source document to local disk.
type DocumentFetcher interface {
	// Fetch downloads the document at url into destPath.
	Fetch(ctx context.Context, url, destPath string) error
}

type httpFetcher struct {
	client *resty.Client
}

// NewDocumentFetcher creates an HTTP fetcher with the given timeout.
func NewDocumentFetcher(timeout time.Duration) DocumentFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &httpFetcher{client: client}
}

// Fetch streams the response body straight to destPath.
func (f *httpFetcher) Fetch(ctx context.Context, url, destPath string) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetOutput(destPath).
		Get(url)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	if resp.IsError() {
		return &FetchError{URL: url, Status: resp.StatusCode()}
	}
	return nil
}
