// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("cdss", zap.NewNop())
	b := NewCollector("cdss", zap.NewNop())

	a.RecordStage("retrieve", StatusOK, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.stageRuns.WithLabelValues("retrieve", StatusOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.stageRuns.WithLabelValues("retrieve", StatusOK)))
}

func TestRecordCounters(t *testing.T) {
	c := NewCollector("cdss", nil)

	c.RecordPapers("PubMed", 12)
	c.RecordPapers("PubMed", 3)
	c.RecordReview("approve")
	c.RecordRecommendation("1A")
	c.RecordStoreWrite("session", nil)
	c.RecordStoreWrite("session", errors.New("boom"))

	assert.Equal(t, 15.0, testutil.ToFloat64(c.papersRetrieved.WithLabelValues("PubMed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reviewDecisions.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recommendations.WithLabelValues("1A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storeWrites.WithLabelValues("session", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storeWrites.WithLabelValues("session", StatusFailed)))
}

func TestRecordHTTPRequestBucketsStatus(t *testing.T) {
	c := NewCollector("cdss", nil)
	c.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)
	c.RecordHTTPRequest("POST", "/analyze", 503, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/healthz", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/analyze", "5xx")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("cdss", nil)
	c.RecordStage("analyze", StatusFailed, 10*time.Millisecond)

	ts := httptest.NewServer(c.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `cdss_stage_runs_total{stage="analyze",status="failed"} 1`))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "2xx", statusCode(204))
	assert.Equal(t, "3xx", statusCode(302))
	assert.Equal(t, "4xx", statusCode(404))
	assert.Equal(t, "5xx", statusCode(500))
	assert.Equal(t, "unknown", statusCode(0))
}
