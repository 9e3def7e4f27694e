package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// CollyFetcher downloads saved hosting pages over http(s) or from file:// URLs
type CollyFetcher struct {
	collector *colly.Collector
	logger    *zap.Logger
}

// NewCollyFetcher creates a new CollyFetcher; delay spaces out requests to the same host
func NewCollyFetcher(delay time.Duration, logger *zap.Logger) *CollyFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)

	t := &http.Transport{}
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	c.WithTransport(t)

	if delay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: 1,
			Delay:       delay,
		})
	}

	return &CollyFetcher{collector: c, logger: logger}
}

// Fetch returns the body of one page
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := cf.collector.Clone()

	var body string
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		cf.logger.Debug("fetched page", zap.String("url", r.Request.URL.String()), zap.Int("bytes", len(r.Body)))
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("failed to fetch %s (status %d): %w", r.Request.URL, r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fetchErr
	}
	if body == "" {
		return "", fmt.Errorf("empty page at %s", url)
	}
	return body, nil
}

// SnapshotURL turns a local path into a file:// URL and leaves http(s) URLs alone
func SnapshotURL(pathOrURL string) (string, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") || strings.HasPrefix(pathOrURL, "file://") {
		return pathOrURL, nil
	}

	abs, err := filepath.Abs(pathOrURL)
	if err != nil {
		return "", fmt.Errorf("failed to resolve snapshot path: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
