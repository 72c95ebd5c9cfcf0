// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

const scholarFixture = `<html><body><div id="gs_res_ccl_mid">
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><a href="https://example.org/a">Five-year outcomes with <b>pembrolizumab</b></a></h3>
    <div class="gs_a">GV Long, J Larkin, C Robert - The Lancet Oncology, 2024 - thelancet.com</div>
    <div class="gs_rs">Long-term   follow-up of KEYNOTE-006.</div>
  </div>
</div>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><span>[CITATION]</span> No link here</h3>
    <div class="gs_a">A Nobody - 2025</div>
  </div>
</div>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><a href="https://example.org/c">Nivolumab versus pembrolizumab</a></h3>
    <div class="gs_a">P Ascierto, F Hodi… - 2025 - Springer</div>
  </div>
</div>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><a href="https://example.org/d">Fourth result</a></h3>
  </div>
</div>
</div></body></html>`

func withScholarServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	old := scholarBase
	scholarBase = ts.URL
	t.Cleanup(func() { scholarBase = old })
	return ts
}

func TestScholarSearch(t *testing.T) {
	var captured *http.Request
	ts := withScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, scholarFixture)
	})

	src := &ScholarSource{Client: ts.Client(), YearFrom: 2024, YearTo: 2025}
	papers, err := src.Search(context.Background(), "pembrolizumab melanoma", 6)
	require.NoError(t, err)

	q := captured.URL.Query()
	assert.Equal(t, "pembrolizumab melanoma", q.Get("q"))
	assert.Equal(t, "en", q.Get("hl"))
	assert.Equal(t, "2024", q.Get("as_ylo"))
	assert.Equal(t, "2025", q.Get("as_yhi"))
	assert.True(t, strings.HasPrefix(captured.Header.Get("User-Agent"), "Mozilla/5.0"))

	require.Len(t, papers, 3)

	p := papers[0]
	assert.Equal(t, "Five-year outcomes with pembrolizumab", p.Title)
	assert.Equal(t, "https://example.org/a", p.Link)
	assert.Equal(t, "Long-term follow-up of KEYNOTE-006.", p.Abstract)
	assert.Equal(t, []string{"GV Long", "J Larkin", "C Robert"}, p.Authors)
	assert.Equal(t, types.SourceAcademicSearch, p.Source)
	// "The Lancet Oncology, 2024" is not a bare numeric token.
	assert.Equal(t, 2024, p.Year)

	assert.Equal(t, "Nivolumab versus pembrolizumab", papers[1].Title)
	assert.Equal(t, 2025, papers[1].Year)
	assert.Equal(t, []string{"P Ascierto", "F Hodi"}, papers[1].Authors)
	assert.Equal(t, types.NoAbstractAvailable, papers[1].Abstract)

	assert.Equal(t, []string{types.UnknownAuthor}, papers[2].Authors)
}

func TestScholarLimitAppliesBeforeSkipping(t *testing.T) {
	ts := withScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scholarFixture)
	})

	src := &ScholarSource{Client: ts.Client()}
	papers, err := src.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	// The second block has no title link, so only one of the first two survives.
	require.Len(t, papers, 1)
}

func TestScholarBlocked(t *testing.T) {
	ts := withScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	src := &ScholarSource{Client: ts.Client()}
	_, err := src.Search(context.Background(), "q", 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestScholarEmptyPage(t *testing.T) {
	ts := withScholarServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Please show you're not a robot</body></html>`)
	})

	src := &ScholarSource{Client: ts.Client()}
	papers, err := src.Search(context.Background(), "q", 6)
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestScholarYear(t *testing.T) {
	tests := []struct {
		info string
		want int
	}{
		{"A Author - 2025 - site.org", 2025},
		{"A Author - Journal, 2025 - site.org", 2024},
		{"A Author - 2019 - site.org", 2024},
		{"", 2024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scholarYear(tt.info, 2024, 2025), tt.info)
	}
}
