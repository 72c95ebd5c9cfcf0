package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oncology-cdss/internal/literature"
	"github.com/pdiddy/oncology-cdss/internal/pipeline"
	"github.com/pdiddy/oncology-cdss/internal/report"
	"github.com/pdiddy/oncology-cdss/internal/review"
	"github.com/pdiddy/oncology-cdss/internal/secrets"
	"github.com/pdiddy/oncology-cdss/internal/store"
	"github.com/pdiddy/oncology-cdss/internal/survival"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full clinical decision workflow",
	Long: `Run searches PubMed and Google Scholar, analyzes the embedded survival
trial, scores a treatment recommendation, routes it through physician review
and archives the session.

A failed search or analysis is replaced by an explicit default and the run
continues. A failure to archive is reported but does not change the exit
status; a missing GOOGLE_API_KEY stops the run before any stage.`,
	RunE: runWorkflow,
}

func init() {
	runCmd.Flags().String("query", "", "literature query (default from config)")
	runCmd.Flags().String("cancer-type", "", "cancer type recorded with the session")
	runCmd.Flags().String("session-id", "", "session id for the workflow record")
	runCmd.Flags().String("review-session-id", "", "session id for the approval log entry")
	runCmd.Flags().Bool("interactive", false, "ask for the physician decision on the terminal")
	runCmd.Flags().String("format", report.FormatText, "output format: text, json or yaml")

	rootCmd.AddCommand(runCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	wf := cfg.Workflow
	if v, _ := cmd.Flags().GetString("query"); v != "" {
		wf.Query = v
	}
	if v, _ := cmd.Flags().GetString("cancer-type"); v != "" {
		wf.Domain = v
	}
	if v, _ := cmd.Flags().GetString("session-id"); v != "" {
		wf.SessionID = v
	}
	if v, _ := cmd.Flags().GetString("review-session-id"); v != "" {
		wf.ReviewSessionID = v
	}
	interactive, _ := cmd.Flags().GetBool("interactive")
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, report.FormatText, report.FormatJSON, report.FormatYAML); err != nil {
		return err
	}

	if err := secrets.CheckAPIKey(cfg.APIKey); err != nil {
		return fmt.Errorf("%w: set it in .env, the config file or .secrets/%s", err, secrets.KeyGoogleAPI)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	st, err := store.Open(ctx, cfg.Store.URL, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var reviewer review.Reviewer = review.Simulated{}
	if interactive {
		reviewer = &review.Console{In: os.Stdin, Out: os.Stderr}
	}

	sup := pipeline.New(
		literature.NewSearcherFromConfig(cfg.Literature, logger),
		survival.NewAnalyzer(cfg.Analysis, logger),
		reviewer,
		st,
		pipeline.WithLogger(logger),
	)

	rep, runErr := sup.Run(ctx, requestFor(wf))
	if err := report.Write(os.Stdout, rep, format); err != nil {
		return err
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}
	return nil
}

func requestFor(wf types.WorkflowConfig) pipeline.Request {
	return pipeline.Request{
		Query:           wf.Query,
		Domain:          wf.Domain,
		SessionID:       wf.SessionID,
		ReviewSessionID: wf.ReviewSessionID,
	}
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want one of %v)", format, allowed)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
