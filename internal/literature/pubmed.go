// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/oncology-cdss/internal/httputil"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

const pubmedTool = "oncology-cdss"

// PubMedSource queries the NCBI E-utilities: esearch for matching PMIDs,
// then efetch for the article records.
type PubMedSource struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
	Email     string

	// MinYear and MaxYear restrict the publication date ([dp]) of hits.
	MinYear int
	MaxYear int
}

// Name returns the display name.
func (s *PubMedSource) Name() string { return string(types.SourceClinicalIndex) }

// Search returns up to limit papers published between MinYear and MaxYear.
// A query with no hits returns an empty slice and no error.
func (s *PubMedSource) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = DefaultClinicalMaxResults
	}

	ids, err := s.searchIDs(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params := s.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	body, err := httputil.Fetch(ctx, s.Client, pubmedFetchBase+"?"+params.Encode(), s.header())
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch: %w", err)
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing PubMed efetch response: %w", err)
	}

	papers := make([]types.Paper, 0, len(set.Articles))
	for _, a := range set.Articles {
		papers = append(papers, a.toPaper())
		if len(papers) == limit {
			break
		}
	}
	return papers, nil
}

func (s *PubMedSource) searchIDs(ctx context.Context, query string, limit int) ([]string, error) {
	params := s.baseParams()
	params.Set("term", s.term(query))
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("retmode", "json")

	body, err := httputil.Fetch(ctx, s.Client, pubmedSearchBase+"?"+params.Encode(), s.header())
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}

	var sr esearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}
	if sr.Result.Error != "" {
		return nil, fmt.Errorf("PubMed esearch: %s", sr.Result.Error)
	}
	return sr.Result.IDList, nil
}

// term appends the publication-date restriction to query.
func (s *PubMedSource) term(query string) string {
	minYear, maxYear := s.MinYear, s.MaxYear
	if minYear <= 0 {
		minYear = DefaultMinYear
	}
	if maxYear <= 0 {
		maxYear = DefaultMaxYear
	}
	return fmt.Sprintf("%s AND %d:%d[dp]", query, minYear, maxYear)
}

func (s *PubMedSource) baseParams() url.Values {
	params := url.Values{
		"db":   {"pubmed"},
		"tool": {pubmedTool},
	}
	if s.Email != "" {
		params.Set("email", s.Email)
	}
	if s.APIKey != "" {
		params.Set("api_key", s.APIKey)
	}
	return params
}

func (s *PubMedSource) header() http.Header {
	h := http.Header{}
	ua := s.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	h.Set("User-Agent", ua)
	return h
}

// E-utilities esearch JSON structures.
type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}

// E-utilities efetch XML structures. Only the fields mapped into a Paper
// are declared.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    markupText `xml:"ArticleTitle"`
			Abstract struct {
				Texts []markupText `xml:"AbstractText"`
			} `xml:"Abstract"`
			Authors []pubmedAuthor `xml:"AuthorList>Author"`
			Journal struct {
				Title   string `xml:"Title"`
				PubDate struct {
					Year        string `xml:"Year"`
					MedlineDate string `xml:"MedlineDate"`
				} `xml:"JournalIssue>PubDate"`
			} `xml:"Journal"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

type pubmedAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

// markupText captures an element whose text may contain inline markup
// such as <i> or <sup>.
type markupText struct {
	Inner string `xml:",innerxml"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func (m markupText) String() string {
	return strings.Join(strings.Fields(html.UnescapeString(tagPattern.ReplaceAllString(m.Inner, ""))), " ")
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func (a pubmedArticle) toPaper() types.Paper {
	c := a.Citation
	p := types.Paper{
		Title:    c.Article.Title.String(),
		PMID:     strings.TrimSpace(c.PMID),
		Journal:  strings.TrimSpace(c.Article.Journal.Title),
		Source:   types.SourceClinicalIndex,
		Provider: "pubmed",
	}

	var abstract []string
	for _, t := range c.Article.Abstract.Texts {
		if s := t.String(); s != "" {
			abstract = append(abstract, s)
		}
	}
	p.Abstract = strings.Join(abstract, " ")

	var authors []string
	for _, au := range c.Article.Authors {
		switch {
		case au.CollectiveName != "":
			authors = append(authors, strings.TrimSpace(au.CollectiveName))
		default:
			authors = append(authors, strings.TrimSpace(au.LastName+" "+au.ForeName))
		}
	}
	p.Authors = types.NormalizeAuthors(authors)

	pd := c.Article.Journal.PubDate
	if y, err := strconv.Atoi(strings.TrimSpace(pd.Year)); err == nil {
		p.Year = y
	} else if m := yearPattern.FindString(pd.MedlineDate); m != "" {
		p.Year, _ = strconv.Atoi(m)
	}

	if p.Title == "" {
		p.Title = types.NoTitleAvailable
	}
	if p.Abstract == "" {
		p.Abstract = types.NoAbstractAvailable
	}
	if p.Journal == "" {
		p.Journal = types.UnknownJournal
	}
	if p.PMID == "" {
		p.PMID = types.UnknownPMID
	} else {
		p.Link = "https://pubmed.ncbi.nlm.nih.gov/" + p.PMID + "/"
	}
	return p
}
