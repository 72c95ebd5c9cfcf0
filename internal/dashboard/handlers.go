// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/internal/secrets"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

const (
	recentOnIndex = 10
	defaultLimit  = 20
	maxLimit      = 100
)

var defaultQuery = types.ClinicalQuery{
	Treatment:  "pembrolizumab",
	CancerType: "melanoma",
	StartYear:  2024,
	EndYear:    2025,
}

// analyzeRequest is the JSON body of POST /api/v1/analyze. Session ids are
// generated when omitted.
type analyzeRequest struct {
	types.ClinicalQuery
	SessionID       string `json:"session_id"`
	ReviewSessionID string `json:"review_session_id"`
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.indexView(c, defaultQuery, ""))
}

func (s *Server) analyzeForm(c *gin.Context) {
	var q types.ClinicalQuery
	if err := c.ShouldBind(&q); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", s.indexView(c, defaultQuery, err.Error()))
		return
	}
	if err := q.Validate(); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", s.indexView(c, q, err.Error()))
		return
	}
	if err := secrets.CheckAPIKey(s.cfg.APIKey); err != nil {
		s.logger.Warn("run refused", zap.Error(err))
		c.HTML(http.StatusServiceUnavailable, "index.html", s.indexView(c, q, err.Error()+". Check .env file."))
		return
	}

	rep, err := s.run(c, newRequest(q, "", ""))
	view := resultView{Query: q.String(), Report: rep}
	status := http.StatusOK
	if err != nil {
		view.Error = err.Error()
		status = http.StatusInternalServerError
	}
	c.HTML(status, "result.html", view)
}

func (s *Server) analyzeJSON(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := secrets.CheckAPIKey(s.cfg.APIKey); err != nil {
		s.logger.Warn("run refused", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	rep, err := s.run(c, newRequest(body.ClinicalQuery, body.SessionID, body.ReviewSessionID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": rep})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) run(c *gin.Context, req pipeline.Request) (*pipeline.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.logger.Info("dashboard run",
		zap.String("query", req.Query),
		zap.String("session_id", req.SessionID))
	rep, err := s.runner.Run(c.Request.Context(), req)
	if err != nil {
		s.logger.Error("dashboard run failed", zap.Error(err))
	}
	return rep, err
}

func (s *Server) getSession(c *gin.Context) {
	if s.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store not configured"})
		return
	}
	id := c.Param("id")
	recs, err := s.sessions.Sessions(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(recs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "session_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "records": recs})
}

func (s *Server) listSessions(c *gin.Context) {
	if s.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store not configured"})
		return
	}
	limit := defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLimit)
	}
	recs, err := s.sessions.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *Server) figure(c *gin.Context) {
	if s.cfg.FigurePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "figure not found"})
		return
	}
	if _, err := os.Stat(s.cfg.FigurePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("figure unreadable", zap.Error(err))
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "figure not found"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.File(s.cfg.FigurePath)
}

func (s *Server) indexView(c *gin.Context, q types.ClinicalQuery, errMsg string) indexView {
	v := indexView{
		CancerTypes: types.CancerTypes,
		FromYears:   yearRange(2018, 2025),
		ToYears:     yearRange(2019, 2026),
		Query:       q,
		Preview:     q.String(),
		Error:       errMsg,
	}
	if s.sessions != nil {
		recs, err := s.sessions.Recent(c.Request.Context(), recentOnIndex)
		if err != nil {
			s.logger.Warn("listing recent sessions", zap.Error(err))
		}
		v.Recent = recs
	}
	return v
}

// newRequest builds a run request, generating session ids that share one
// short run suffix when they are not supplied.
func newRequest(q types.ClinicalQuery, sessionID, reviewSessionID string) pipeline.Request {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(q.CancerType)), " ", "_")
	suffix := uuid.NewString()[:8]
	if sessionID == "" {
		sessionID = slug + "_workflow_" + suffix
	}
	if reviewSessionID == "" {
		reviewSessionID = slug + "_clinical_review_" + suffix
	}
	return pipeline.Request{
		Query:           q.String(),
		Domain:          strings.TrimSpace(q.CancerType),
		SessionID:       sessionID,
		ReviewSessionID: reviewSessionID,
	}
}

func yearRange(from, to int) []int {
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}
