package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"
)

const userAgent = "Mozilla/5.0 (compatible; portfolio-ingest/1.0)"

// RawEntry is a feed entry as the source published it
type RawEntry struct {
	Title     string
	Link      string
	Summary   string
	Content   string
	Published *time.Time
	Source    string
}

// Fetcher retrieves the latest entries of a single source
type Fetcher interface {
	Fetch(ctx context.Context, source string, limit int) ([]RawEntry, error)
}

// FetchReport is the outcome of fetching a list of sources
type FetchReport struct {
	Entries []RawEntry
	Failed  int
}

type HTTPFetcher struct {
	client *http.Client
	// Retries is the number of extra attempts after a transient failure
	Retries int
	// Interval is the first wait between attempts, it grows exponentially
	Interval time.Duration
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{
		client:   client,
		Retries:  2,
		Interval: 500 * time.Millisecond,
	}
}

// Fetch downloads and parses one RSS or Atom feed and returns at most limit entries
func (f *HTTPFetcher) Fetch(ctx context.Context, source string, limit int) ([]RawEntry, error) {
	var body string

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.Interval
	b.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		var err error
		body, err = f.download(ctx, source)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.Retries)), ctx))
	if err != nil {
		return nil, err
	}

	return ParseFeed(ctx, source, body, limit)
}

func (f *HTTPFetcher) download(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, http.NoBody)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("feed new request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return "", fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("feed request: status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(fmt.Errorf("feed request: status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("feed read body: %w", err)
	}
	return string(raw), nil
}

// ParseFeed parses an RSS or Atom document. A limit of zero or less returns every entry.
func ParseFeed(ctx context.Context, source, body string, limit int) ([]RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := parsed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	entries := make([]RawEntry, 0, len(items))
	for _, item := range items {
		entry := RawEntry{
			Title:   item.Title,
			Link:    extractLink(item),
			Summary: item.Description,
			Content: item.Content,
			Source:  source,
		}
		if entry.Summary == "" {
			entry.Summary = item.Content
		}
		switch {
		case item.PublishedParsed != nil:
			entry.Published = item.PublishedParsed
		case item.UpdatedParsed != nil:
			entry.Published = item.UpdatedParsed
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// extractLink prefers the entry link and falls back to a GUID that is a URL
func extractLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}

// maxWorkers bounds the number of sources downloaded at the same time
const maxWorkers = 4

type fetchResult struct {
	entries []RawEntry
	err     error
}

// FetchAll fetches the sources in parallel and reports the entries in source
// order. A failing source is logged and skipped so that the remaining sources
// still contribute entries.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []string, limit int) FetchReport {
	results := make([]fetchResult, len(sources))
	workerQueue := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < min(maxWorkers, len(sources)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range workerQueue {
				if err := ctx.Err(); err != nil {
					results[index].err = err
					continue
				}
				results[index].entries, results[index].err = fetcher.Fetch(ctx, sources[index], limit)
			}
		}()
	}

	for index := range sources {
		workerQueue <- index
	}
	close(workerQueue)
	wg.Wait()

	var report FetchReport
	for index, result := range results {
		source := sources[index]
		if result.err != nil {
			log.WithFields(log.Fields{
				"source": source,
				"error":  result.err,
			}).Warn("Error fetching feed")
			report.Failed++
			continue
		}

		log.WithFields(log.Fields{
			"source":  source,
			"entries": len(result.entries),
		}).Debug("Fetched feed")
		report.Entries = append(report.Entries, result.entries...)
	}

	return report
}
