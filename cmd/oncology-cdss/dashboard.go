package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/oncology-cdss/internal/dashboard"
	"github.com/pdiddy/oncology-cdss/internal/literature"
	"github.com/pdiddy/oncology-cdss/internal/metrics"
	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/internal/review"
	"github.com/pdiddy/oncology-cdss/internal/secrets"
	"github.com/pdiddy/oncology-cdss/internal/store"
	"github.com/pdiddy/oncology-cdss/internal/survival"
)

const metricsNamespace = "oncology_cdss"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the web dashboard",
	Long: `Dashboard serves the query builder and results pages, a JSON API over the
same workflow, the latest survival plot and Prometheus metrics. Runs are
refused with 503 while GOOGLE_API_KEY is not configured.`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().String("addr", "", "listen address (default :8501)")

	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Dashboard.Addr = addr
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := secrets.CheckAPIKey(cfg.APIKey); err != nil {
		logger.Warn("dashboard runs will be refused", zap.Error(err))
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	st, err := store.Open(ctx, cfg.Store.URL, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	collector := metrics.NewCollector(metricsNamespace, logger)
	sup := pipeline.New(
		literature.NewSearcherFromConfig(cfg.Literature, logger),
		survival.NewAnalyzer(cfg.Analysis, logger),
		review.Simulated{},
		st,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(collector),
	)

	srv, err := dashboard.New(dashboard.Config{
		Addr:       cfg.Dashboard.Addr,
		FigurePath: cfg.Analysis.FigurePath,
		APIKey:     cfg.APIKey,
	}, sup, st, collector, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}
