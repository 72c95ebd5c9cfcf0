package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each external request. A source that times out
	// contributes no papers.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with API requests
	// (e.g. "oncology-cdss/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Academic search backends.
const (
	AcademicBackendScholar         = "scholar"
	AcademicBackendSemanticScholar = "semantic_scholar"
)

// LiteratureConfig holds settings for the retrieval stage.
type LiteratureConfig struct {
	HTTPConfig `yaml:",inline"`

	// ClinicalMaxResults caps the clinical-index lookup (default 12).
	ClinicalMaxResults int `json:"clinical_max_results" yaml:"clinical_max_results"`

	// AcademicMaxResults caps the academic-search lookup (default 6).
	AcademicMaxResults int `json:"academic_max_results" yaml:"academic_max_results"`

	// MinYear is the earliest publication year requested from the clinical
	// index (default 2023).
	MinYear int `json:"min_year" yaml:"min_year"`

	// MaxYear closes the year range quoted in the search summary (default 2025).
	MaxYear int `json:"max_year" yaml:"max_year"`

	// AcademicYearFrom and AcademicYearTo bound the academic search (default 2024-2025).
	AcademicYearFrom int `json:"academic_year_from" yaml:"academic_year_from"`
	AcademicYearTo   int `json:"academic_year_to" yaml:"academic_year_to"`

	// ResultCap is the maximum number of papers kept in the result (default 20).
	ResultCap int `json:"result_cap" yaml:"result_cap"`

	// AcademicBackend selects the academic source: "scholar" or "semantic_scholar".
	AcademicBackend string `json:"academic_backend" yaml:"academic_backend"`

	// NCBIAPIKey is an optional E-utilities key for higher rate limits.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// NCBIEmail is sent as the E-utilities contact address.
	NCBIEmail string `json:"ncbi_email,omitempty" yaml:"ncbi_email,omitempty"`

	// SemanticScholarAPIKey is an optional API key for the Semantic Scholar backend.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// AnalysisConfig holds settings for the survival analysis stage.
type AnalysisConfig struct {
	// FigurePath is the output path of the survival plot. It is overwritten
	// on every run.
	FigurePath string `json:"figure_path" yaml:"figure_path"`
}

// StoreConfig holds settings for the persistence layer.
type StoreConfig struct {
	// URL is a database connection string. Empty, a file path, or a
	// sqlite:// URL selects SQLite; postgres:// selects PostgreSQL.
	URL string `json:"url" yaml:"url"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format"`
}

// WorkflowConfig holds the identifiers a CLI run persists under.
type WorkflowConfig struct {
	Query           string `json:"query" yaml:"query"`
	Domain          string `json:"domain" yaml:"domain"`
	SessionID       string `json:"session_id" yaml:"session_id"`
	ReviewSessionID string `json:"review_session_id" yaml:"review_session_id"`
}

// DashboardConfig holds settings for the web dashboard.
type DashboardConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	// APIKey is the literature-summary model credential. Runs refuse to
	// start without it.
	APIKey string `json:"-" yaml:"-"`

	Literature LiteratureConfig `json:"literature" yaml:"literature"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Store      StoreConfig      `json:"database" yaml:"database"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Workflow   WorkflowConfig   `json:"workflow" yaml:"workflow"`
	Dashboard  DashboardConfig  `json:"dashboard" yaml:"dashboard"`
}
