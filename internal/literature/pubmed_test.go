// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

const efetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">39000001</PMID>
      <Article>
        <Journal>
          <JournalIssue><PubDate><Year>2024</Year><Month>Mar</Month></PubDate></JournalIssue>
          <Title>The New England journal of medicine</Title>
        </Journal>
        <ArticleTitle>Adjuvant <i>pembrolizumab</i> in resected melanoma.</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Relapse is common.</AbstractText>
          <AbstractText Label="RESULTS">Survival improved &amp; toxicity was manageable.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Long</LastName><ForeName>Georgina V</ForeName></Author>
          <Author><LastName>Larkin</LastName><ForeName>James</ForeName></Author>
          <Author><CollectiveName>KEYNOTE-716 Investigators</CollectiveName></Author>
          <Author><LastName>Robert</LastName><ForeName>Caroline</ForeName></Author>
          <Author><LastName>Ascierto</LastName><ForeName>Paolo A</ForeName></Author>
          <Author><LastName>Hodi</LastName><ForeName>F Stephen</ForeName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1"></PMID>
      <Article>
        <Journal>
          <JournalIssue><PubDate><MedlineDate>2023 Nov-Dec</MedlineDate></PubDate></JournalIssue>
        </Journal>
        <ArticleTitle></ArticleTitle>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func withPubMedServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	oldSearch, oldFetch := pubmedSearchBase, pubmedFetchBase
	pubmedSearchBase = ts.URL + "/esearch.fcgi"
	pubmedFetchBase = ts.URL + "/efetch.fcgi"
	t.Cleanup(func() {
		pubmedSearchBase, pubmedFetchBase = oldSearch, oldFetch
	})
	return ts
}

func TestPubMedSearch(t *testing.T) {
	var searchReq, fetchReq *http.Request
	ts := withPubMedServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			searchReq = r
			fmt.Fprint(w, `{"esearchresult":{"count":"2","idlist":["39000001","39000002"]}}`)
		case "/efetch.fcgi":
			fetchReq = r
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, efetchFixture)
		default:
			http.NotFound(w, r)
		}
	})

	src := &PubMedSource{Client: ts.Client(), APIKey: "k", Email: "a@b.org", MinYear: 2023, MaxYear: 2025}
	papers, err := src.Search(context.Background(), "pembrolizumab AND melanoma", 12)
	require.NoError(t, err)

	q := searchReq.URL.Query()
	assert.Equal(t, "pubmed", q.Get("db"))
	assert.Equal(t, "pembrolizumab AND melanoma AND 2023:2025[dp]", q.Get("term"))
	assert.Equal(t, "12", q.Get("retmax"))
	assert.Equal(t, "k", q.Get("api_key"))
	assert.Equal(t, "a@b.org", q.Get("email"))
	assert.Equal(t, DefaultUserAgent, searchReq.Header.Get("User-Agent"))
	assert.Equal(t, "39000001,39000002", fetchReq.URL.Query().Get("id"))

	require.Len(t, papers, 2)

	p := papers[0]
	assert.Equal(t, "Adjuvant pembrolizumab in resected melanoma.", p.Title)
	assert.Equal(t, "Relapse is common. Survival improved & toxicity was manageable.", p.Abstract)
	assert.Equal(t, "The New England journal of medicine", p.Journal)
	assert.Equal(t, "39000001", p.PMID)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, types.SourceClinicalIndex, p.Source)
	assert.Equal(t, []string{
		"Long Georgina V", "Larkin James", "KEYNOTE-716 Investigators", "Robert Caroline", "Ascierto Paolo A",
	}, p.Authors)

	empty := papers[1]
	assert.Equal(t, types.NoTitleAvailable, empty.Title)
	assert.Equal(t, types.NoAbstractAvailable, empty.Abstract)
	assert.Equal(t, types.UnknownJournal, empty.Journal)
	assert.Equal(t, types.UnknownPMID, empty.PMID)
	assert.Equal(t, []string{types.UnknownAuthor}, empty.Authors)
	assert.Equal(t, 2023, empty.Year)
}

func TestPubMedNoHits(t *testing.T) {
	fetched := false
	ts := withPubMedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/efetch.fcgi" {
			fetched = true
		}
		fmt.Fprint(w, `{"esearchresult":{"count":"0","idlist":[]}}`)
	})

	src := &PubMedSource{Client: ts.Client()}
	papers, err := src.Search(context.Background(), "nothing", 12)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.False(t, fetched)
}

func TestPubMedHTTPError(t *testing.T) {
	ts := withPubMedServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	src := &PubMedSource{Client: ts.Client()}
	_, err := src.Search(context.Background(), "q", 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestPubMedMalformedXML(t *testing.T) {
	ts := withPubMedServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/esearch.fcgi" {
			fmt.Fprint(w, `{"esearchresult":{"idlist":["1"]}}`)
			return
		}
		fmt.Fprint(w, `<PubmedArticleSet><PubmedArticle>`)
	})

	src := &PubMedSource{Client: ts.Client()}
	_, err := src.Search(context.Background(), "q", 12)
	require.Error(t, err)
}

func TestPubMedTimeout(t *testing.T) {
	ts := withPubMedServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"esearchresult":{"idlist":[]}}`)
	})

	client := ts.Client()
	client.Timeout = 20 * time.Millisecond
	src := &PubMedSource{Client: client}
	_, err := src.Search(context.Background(), "q", 12)
	require.Error(t, err)
}

func TestPubMedTermDefaults(t *testing.T) {
	src := &PubMedSource{}
	assert.Equal(t, "q AND 2023:2025[dp]", src.term("q"))
}
