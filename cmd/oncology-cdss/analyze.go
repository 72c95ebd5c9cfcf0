package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oncology-cdss/internal/survival"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the Kaplan-Meier and log-rank analysis on the embedded trial",
	Long: `Analyze estimates overall survival for the pembrolizumab and nivolumab arms,
compares them with a log-rank test and writes the survival plot.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("figure", "", "output path for the survival plot")
	analyzeCmd.Flags().Bool("json", false, "output evidence as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if path, _ := cmd.Flags().GetString("figure"); path != "" {
		cfg.Analysis.FigurePath = path
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	ev, err := survival.NewAnalyzer(cfg.Analysis, logger).Analyze(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	}
	fmt.Print(survival.Summary(ev))
	fmt.Printf("\n%s\n", ev.Interpretation)
	return nil
}
