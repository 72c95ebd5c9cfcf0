package main

import (
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/oncology-cdss/internal/dashboard"
	"github.com/pdiddy/oncology-cdss/internal/literature"
	"github.com/pdiddy/oncology-cdss/internal/secrets"
	"github.com/pdiddy/oncology-cdss/internal/store"
	"github.com/pdiddy/oncology-cdss/internal/survival"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Workflow identifiers used when neither flags nor config name them.
const (
	defaultQuery           = "pembrolizumab AND melanoma AND (2024/01/01:2025/12/31[PDAT])"
	defaultDomain          = "melanoma"
	defaultSessionID       = "melanoma_workflow_2025"
	defaultReviewSessionID = "melanoma_clinical_review_2025"
)

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")

	viper.SetDefault("literature.timeout", literature.DefaultTimeout)
	viper.SetDefault("literature.user_agent", literature.DefaultUserAgent)
	viper.SetDefault("literature.clinical_max_results", literature.DefaultClinicalMaxResults)
	viper.SetDefault("literature.academic_max_results", literature.DefaultAcademicMaxResults)
	viper.SetDefault("literature.min_year", literature.DefaultMinYear)
	viper.SetDefault("literature.max_year", literature.DefaultMaxYear)
	viper.SetDefault("literature.academic_year_from", literature.DefaultAcademicYearFrom)
	viper.SetDefault("literature.academic_year_to", literature.DefaultAcademicYearTo)
	viper.SetDefault("literature.result_cap", literature.DefaultResultCap)
	viper.SetDefault("literature.academic_backend", types.AcademicBackendScholar)

	viper.SetDefault("analysis.figure_path", survival.DefaultFigurePath)
	viper.SetDefault("database.url", store.DefaultPath)
	viper.SetDefault("dashboard.addr", dashboard.DefaultAddr)

	viper.SetDefault("workflow.query", defaultQuery)
	viper.SetDefault("workflow.domain", defaultDomain)
	viper.SetDefault("workflow.session_id", defaultSessionID)
	viper.SetDefault("workflow.review_session_id", defaultReviewSessionID)
}

// loadConfig assembles the pipeline configuration from viper, the process
// environment and loaded secrets.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		APIKey: resolveAPIKey(),
		Literature: types.LiteratureConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("literature.timeout"),
				UserAgent: viper.GetString("literature.user_agent"),
			},
			ClinicalMaxResults:    viper.GetInt("literature.clinical_max_results"),
			AcademicMaxResults:    viper.GetInt("literature.academic_max_results"),
			MinYear:               viper.GetInt("literature.min_year"),
			MaxYear:               viper.GetInt("literature.max_year"),
			AcademicYearFrom:      viper.GetInt("literature.academic_year_from"),
			AcademicYearTo:        viper.GetInt("literature.academic_year_to"),
			ResultCap:             viper.GetInt("literature.result_cap"),
			AcademicBackend:       viper.GetString("literature.academic_backend"),
			NCBIAPIKey:            loadedSecrets.Or(secrets.KeyNCBI, viper.GetString("literature.ncbi_api_key")),
			NCBIEmail:             viper.GetString("literature.ncbi_email"),
			SemanticScholarAPIKey: loadedSecrets.Or(secrets.KeySemanticScholar, viper.GetString("literature.semantic_scholar_api_key")),
		},
		Analysis: types.AnalysisConfig{
			FigurePath: viper.GetString("analysis.figure_path"),
		},
		Store: types.StoreConfig{
			URL: resolveDatabaseURL(),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		Workflow: types.WorkflowConfig{
			Query:           viper.GetString("workflow.query"),
			Domain:          viper.GetString("workflow.domain"),
			SessionID:       viper.GetString("workflow.session_id"),
			ReviewSessionID: viper.GetString("workflow.review_session_id"),
		},
		Dashboard: types.DashboardConfig{
			Addr: viper.GetString("dashboard.addr"),
		},
	}
}

// resolveAPIKey checks GOOGLE_API_KEY, then the api_key config key, then
// .secrets/google-api-key.
func resolveAPIKey() string {
	key := os.Getenv("GOOGLE_API_KEY")
	if key == "" {
		key = viper.GetString("api_key")
	}
	return loadedSecrets.Or(secrets.KeyGoogleAPI, key)
}

// resolveDatabaseURL prefers DATABASE_URL over database.url. The secret is
// consulted only when neither is set explicitly.
func resolveDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	if viper.InConfig("database.url") || os.Getenv("ONCOLOGY_CDSS_DATABASE_URL") != "" {
		return viper.GetString("database.url")
	}
	if url := loadedSecrets.Get(secrets.KeyDatabaseURL); url != "" {
		return url
	}
	return viper.GetString("database.url")
}
