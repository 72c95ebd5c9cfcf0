package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oncology-cdss/internal/literature"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search PubMed and an academic engine for papers",
	Long: `Search runs the literature lookup on its own: PubMed first, then Google
Scholar (or Semantic Scholar with --backend semantic_scholar). A source that
fails contributes no papers and is reported in the output.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("backend", "", "academic backend: scholar or semantic_scholar")
	searchCmd.Flags().Int("max-results", 0, "maximum number of merged results (default 20)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output papers as CSL-YAML for reference managers")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		query = cfg.Workflow.Query
	}

	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		switch backend {
		case types.AcademicBackendScholar, types.AcademicBackendSemanticScholar:
			cfg.Literature.AcademicBackend = backend
		default:
			return fmt.Errorf("unknown backend %q (want scholar or semantic_scholar)", backend)
		}
	}
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.Literature.ResultCap = n
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	res, err := literature.NewSearcherFromConfig(cfg.Literature, logger).Search(ctx, query)
	if err != nil {
		return err
	}
	switch {
	case asCSL:
		return literature.FormatCSL(res, os.Stdout)
	case asJSON:
		return literature.FormatJSON(res, os.Stdout)
	}
	literature.FormatTable(res, os.Stdout)
	return nil
}
