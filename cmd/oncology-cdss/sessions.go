package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/oncology-cdss/internal/store"
	"github.com/pdiddy/oncology-cdss/pkg/types"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and export archived sessions",
	Long: `Sessions reads the research memory database. Every run appends rows; a
session id may have several entries, listed oldest first.`,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print every record stored under a session id",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent records",
	RunE:  runSessionsList,
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsExport,
}

func init() {
	sessionsShowCmd.Flags().Bool("json", false, "output records as JSON")
	sessionsListCmd.Flags().Int("limit", 20, "maximum number of records")
	sessionsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	sessionsCmd.AddCommand(sessionsShowCmd, sessionsListCmd, sessionsExportCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := loadConfig()
	return store.Open(cmd.Context(), cfg.Store.URL, logger)
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.Sessions(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("session %q: %w", args[0], store.ErrNotFound)
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	for _, r := range recs {
		fmt.Printf("#%d  %s  %s  %s\n", r.ID, r.SessionID, r.Domain, r.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("    query:    %s\n", r.Query)
		fmt.Printf("    findings: %s\n", r.Findings)
	}
	return nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	writeRecordTable(os.Stdout, recs)
	return nil
}

func runSessionsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "yaml", "json"); err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if format == "json" {
		return st.ExportJSON(cmd.Context(), os.Stdout, args[0])
	}
	return st.ExportYAML(cmd.Context(), os.Stdout, args[0])
}

func writeRecordTable(w io.Writer, recs []types.SessionRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSESSION\tCANCER TYPE\tQUERY\tRECORDED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.SessionID, r.Domain, r.Query, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
