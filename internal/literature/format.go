// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// FormatTable writes papers as a human-readable table to w.
func FormatTable(res types.LiteratureResult, w io.Writer) {
	if len(res.Papers) == 0 {
		fmt.Fprintln(w, NoResultsSummary)
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n",
		"#", "Title", "Authors", "Year", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range res.Papers {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), year, p.Source)
	}

	fmt.Fprintf(w, "\n%d of %d papers (%d PubMed, %d academic)\n",
		len(res.Papers), res.TotalFound, res.ClinicalCount, res.AcademicCount)
	for _, e := range res.SourceErrors {
		fmt.Fprintf(w, "warning: %s\n", e)
	}
	fmt.Fprintln(w, res.Summary)
}

// FormatJSON writes the result as indented JSON to w.
func FormatJSON(res types.LiteratureResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
