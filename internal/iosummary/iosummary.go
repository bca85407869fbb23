// Package iosummary fetches short encyclopedic summaries of countries
// from the Wikipedia REST API.
package iosummary

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/gnames/factbook/internal/iohttp"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gnfmt"
)

const disambiguation = "disambiguation"

type summary struct {
	client      *iohttp.Client
	enc         gnfmt.Encoder
	url         string
	maxLen      int
	placeholder string
}

// New creates a SummarySource.
func New(cfg *config.Config, client *iohttp.Client) pipeline.SummarySource {
	return &summary{
		client:      client.For(pipeline.SourceSummary),
		enc:         gnfmt.GNjson{},
		url:         cfg.Endpoints.Summary,
		maxLen:      cfg.Summary.MaxLength,
		placeholder: config.SummaryPlaceholder,
	}
}

// Attribution implements pipeline.Attributor.
func (s *summary) Attribution() country.Attribution {
	return country.Attribution{
		Label: "Wikipedia",
		URL:   "https://en.wikipedia.org",
	}
}

// FetchSummary implements pipeline.SummarySource. A disambiguation page
// is retried once as "<name> (country)". On any failure the placeholder
// is returned together with the error.
func (s *summary) FetchSummary(
	ctx context.Context,
	name string,
) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.placeholder, fmt.Errorf("empty title: %w", pipeline.ErrNotFound)
	}

	page, err := s.fetch(ctx, name)
	if err == nil && page.Type == disambiguation {
		page, err = s.fetch(ctx, name+" (country)")
		if err == nil && page.Type == disambiguation {
			err = fmt.Errorf("%s is ambiguous: %w", name, pipeline.ErrNotFound)
		}
	}
	if err != nil {
		return s.placeholder, err
	}

	text := strings.TrimSpace(page.Extract)
	if text == "" {
		return s.placeholder,
			fmt.Errorf("summary of %s is empty: %w", name, pipeline.ErrNotFound)
	}
	return Truncate(text, s.maxLen), nil
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

func (s *summary) fetch(ctx context.Context, name string) (pageSummary, error) {
	var res pageSummary
	title := url.PathEscape(strings.ReplaceAll(name, " ", "_"))
	u := s.url + "/page/summary/" + title

	bs, err := s.client.Get(ctx, u)
	if err != nil {
		return res, err
	}
	if err = s.enc.Decode(bs, &res); err != nil {
		return res, fmt.Errorf("decode %s: %w: %w", u, pipeline.ErrSchema, err)
	}
	return res, nil
}

// Truncate shortens text longer than maxLen characters to at most maxLen
// characters including the trailing ellipsis. Spaces before the ellipsis
// are trimmed. A non-positive maxLen keeps the text intact.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	rs := []rune(text)
	if len(rs) <= maxLen {
		return text
	}
	res := strings.TrimRightFunc(string(rs[:maxLen-1]), unicode.IsSpace)
	return res + "…"
}
