package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/larkwiot/bookexplorer/internal/book"
	"github.com/larkwiot/bookexplorer/internal/config"
	"github.com/larkwiot/bookexplorer/internal/logger"
	"github.com/larkwiot/bookexplorer/internal/metrics"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type Google struct {
	enabled    bool
	url        string
	apiKey     string
	maxResults uint
	client     *http.Client
	sanitizer  *bluemonday.Policy
}

func NewGoogle(conf *config.GoogleConfig) *Google {
	base := conf.Url
	if !strings.Contains(base, "://") {
		base = fmt.Sprintf("https://%s", base)
	}

	return &Google{
		enabled:    conf.Enable,
		url:        base,
		apiKey:     conf.ApiKey,
		maxResults: conf.MaxResults,
		client:     &http.Client{Timeout: time.Duration(conf.TimeoutSeconds) * time.Second},
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (g *Google) Name() string {
	return "Google"
}

func (g *Google) Disabled() bool {
	return !g.enabled
}

type googleImageLinks struct {
	Thumbnail string `json:"thumbnail"`
}

type googleVolumeInfo struct {
	Title         string            `json:"title"`
	Authors       []string          `json:"authors"`
	Description   *string           `json:"description"`
	Publisher     string            `json:"publisher"`
	PublishedDate string            `json:"publishedDate"`
	PageCount     int               `json:"pageCount"`
	Categories    []string          `json:"categories"`
	ImageLinks    *googleImageLinks `json:"imageLinks"`
}

type googleItem struct {
	Id         string           `json:"id"`
	VolumeInfo googleVolumeInfo `json:"volumeInfo"`
}

type googleResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []googleItem `json:"items"`
}

// QueryURL builds the volumes request for a user query. A query that is a
// valid ISBN is narrowed to an isbn: search.
func (g *Google) QueryURL(query string) string {
	q := query
	if isbn, ok := book.ParseIsbn(query); ok {
		q = "isbn:" + string(isbn)
	}

	params := url.Values{}
	params.Set("q", q)
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}
	if g.maxResults > 0 {
		params.Set("maxResults", strconv.FormatUint(uint64(g.maxResults), 10))
	}
	return g.url + "?" + params.Encode()
}

func (g *Google) Lookup(ctx context.Context, query string) Outcome {
	timer := prometheus.NewTimer(metrics.LookupDuration.WithLabelValues(g.Name()))
	defer timer.ObserveDuration()

	result, err := g.fetch(ctx, query)
	if err != nil {
		logger.For(ctx).Errorf("google: lookup for %q failed: %v", query, err)
		return Failed(err)
	}

	return Found(lo.Map(result.Items, func(item googleItem, _ int) book.Summary {
		return g.toSummary(item)
	}))
}

func (g *Google) fetch(ctx context.Context, query string) (*googleResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, g.QueryURL(query), nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	response, err := g.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("google: %w", ErrRateLimited)
	}
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("google returned status code %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var result googleResponse
	err = json.NewDecoder(response.Body).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("decoding google response: %w", err)
	}

	return &result, nil
}

func (g *Google) toSummary(item googleItem) book.Summary {
	info := item.VolumeInfo

	summary := book.Summary{
		VolumeID:   item.Id,
		Title:      info.Title,
		Categories: info.Categories,
	}

	if info.Authors != nil {
		summary.Authors = mo.Some(info.Authors)
	}
	if info.Description != nil {
		summary.Description = mo.Some(g.plainText(*info.Description))
	}
	if info.Publisher != "" {
		summary.Publisher = mo.Some(info.Publisher)
	}
	if info.PublishedDate != "" {
		summary.PublishedDate = mo.Some(info.PublishedDate)
	}
	if info.PageCount > 0 {
		summary.PageCount = mo.Some(info.PageCount)
	}
	if info.ImageLinks != nil && info.ImageLinks.Thumbnail != "" {
		summary.Thumbnail = mo.Some(info.ImageLinks.Thumbnail)
	}

	return summary
}

// plainText drops markup the catalog sometimes embeds in descriptions.
func (g *Google) plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(g.sanitizer.Sanitize(s)))
}
