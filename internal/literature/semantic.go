// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/oncology-cdss/internal/httputil"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,venue,externalIds,url"

// SemanticScholarSource queries the Semantic Scholar Graph API. It is the
// alternate academic backend and its papers carry the academic source tag.
type SemanticScholarSource struct {
	Client    *http.Client
	UserAgent string
	APIKey    string

	YearFrom int
	YearTo   int
}

// Name returns the display name.
func (s *SemanticScholarSource) Name() string { return "Semantic Scholar" }

// Search queries the paper search endpoint for up to limit papers.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if limit <= 0 {
		limit = DefaultAcademicMaxResults
	}

	params := url.Values{
		"query":  {q},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}
	if yr := buildYearRange(s.YearFrom, s.YearTo); yr != "" {
		params.Set("year", yr)
	}

	header := http.Header{}
	ua := s.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	header.Set("User-Agent", ua)
	if s.APIKey != "" {
		header.Set("x-api-key", s.APIKey)
	}

	body, err := httputil.Fetch(ctx, s.Client, semanticAPIBase+"?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}

	var sr semanticResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, sp := range sr.Data {
		p := types.Paper{
			Title:    strings.TrimSpace(sp.Title),
			Abstract: strings.TrimSpace(sp.Abstract),
			Journal:  strings.TrimSpace(sp.Venue),
			Year:     sp.Year,
			Link:     sp.URL,
			Source:   types.SourceAcademicSearch,
			Provider: "semantic_scholar",
			PMID:     sp.ExternalIDs.PubMed,
		}
		var authors []string
		for _, a := range sp.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
		p.Authors = types.NormalizeAuthors(authors)
		if p.Title == "" {
			p.Title = types.NoTitleAvailable
		}
		if p.Abstract == "" {
			p.Abstract = types.NoAbstractAvailable
		}
		papers = append(papers, p)
		if len(papers) == limit {
			break
		}
	}
	return papers, nil
}

// buildYearRange returns a Semantic Scholar year filter (e.g. "2024-2025").
func buildYearRange(from, to int) string {
	switch {
	case from > 0 && to > 0:
		return fmt.Sprintf("%d-%d", from, to)
	case from > 0:
		return fmt.Sprintf("%d-", from)
	case to > 0:
		return fmt.Sprintf("-%d", to)
	default:
		return ""
	}
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	Year        int                 `json:"year"`
	Venue       string              `json:"venue"`
	URL         string              `json:"url"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI    string `json:"DOI"`
	PubMed string `json:"PubMed"`
}
