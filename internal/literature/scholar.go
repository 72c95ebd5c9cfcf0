// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/oncology-cdss/internal/httputil"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// scholarBase is the Google Scholar results page. Declared as a var so
// tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

// scholarUserAgent is sent in place of the configured agent; Scholar
// rejects non-browser clients.
const scholarUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ScholarSource scrapes the Google Scholar results page.
type ScholarSource struct {
	Client *http.Client

	// YearFrom and YearTo map to as_ylo and as_yhi.
	YearFrom int
	YearTo   int
}

// Name returns the display name.
func (s *ScholarSource) Name() string { return string(types.SourceAcademicSearch) }

// Search fetches one results page and parses up to limit entries. Entries
// without a title link are skipped, so fewer than limit papers may return.
func (s *ScholarSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = DefaultAcademicMaxResults
	}
	from, to := s.yearRange()

	params := url.Values{
		"q":      {query},
		"hl":     {"en"},
		"as_ylo": {strconv.Itoa(from)},
		"as_yhi": {strconv.Itoa(to)},
	}
	header := http.Header{}
	header.Set("User-Agent", scholarUserAgent)

	body, err := httputil.Fetch(ctx, s.Client, scholarBase+"?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("Google Scholar request: %w", err)
	}
	return parseScholarPage(body, limit, from, to)
}

func (s *ScholarSource) yearRange() (int, int) {
	from, to := s.YearFrom, s.YearTo
	if from <= 0 {
		from = DefaultAcademicYearFrom
	}
	if to <= 0 {
		to = DefaultAcademicYearTo
	}
	return from, to
}

// parseScholarPage extracts papers from a results page. Only the first
// limit result blocks are considered.
func parseScholarPage(body []byte, limit, from, to int) ([]types.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing Google Scholar page: %w", err)
	}

	items := doc.Find(".gs_r.gs_or.gs_scl")
	if items.Length() > limit {
		items = items.Slice(0, limit)
	}

	var papers []types.Paper
	items.Each(func(_ int, item *goquery.Selection) {
		titleLink := item.Find(".gs_rt a").First()
		if titleLink.Length() == 0 {
			return
		}

		title := cleanText(titleLink.Text())
		if title == "" {
			title = types.NoTitleAvailable
		}
		link, _ := titleLink.Attr("href")

		abstract := types.NoAbstractAvailable
		if snippet := item.Find(".gs_rs").First(); snippet.Length() > 0 {
			if text := cleanText(snippet.Text()); text != "" {
				abstract = text
			}
		}

		info := cleanText(item.Find(".gs_a").First().Text())

		papers = append(papers, types.Paper{
			Title:    title,
			Authors:  types.NormalizeAuthors(scholarAuthors(info)),
			Source:   types.SourceAcademicSearch,
			Provider: "google_scholar",
			Year:     scholarYear(info, from, to),
			Abstract: abstract,
			Link:     link,
		})
	})
	return papers, nil
}

// scholarYear returns the first dash-separated numeric token of the info
// line that falls within [from, to], or from when none does.
func scholarYear(info string, from, to int) int {
	for _, part := range strings.Split(info, "-") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && y >= from && y <= to {
			return y
		}
	}
	return from
}

// scholarAuthors parses the comma-separated author list that precedes the
// first " - " in the info line. Elided names ("…") are dropped.
func scholarAuthors(info string) []string {
	head, _, _ := strings.Cut(info, " - ")
	var authors []string
	for _, a := range strings.Split(head, ",") {
		a = strings.TrimSpace(strings.Trim(strings.TrimSpace(a), "…"))
		if a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

// cleanText collapses runs of whitespace, non-breaking spaces included.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
