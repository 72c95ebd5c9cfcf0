// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

func TestToCSLItemPubMed(t *testing.T) {
	p := types.Paper{
		Title:    "Five-year survival with combined nivolumab and ipilimumab",
		Authors:  []string{"Larkin J", "Chiarion-Sileni V"},
		Source:   types.SourceClinicalIndex,
		Year:     2024,
		Journal:  "N Engl J Med",
		PMID:     "31562797",
		Abstract: "Background...",
		Link:     "https://pubmed.ncbi.nlm.nih.gov/31562797/",
	}

	item := toCSLItem(p, 1)

	if item.ID != "pmid31562797" {
		t.Errorf("ID = %q, want %q", item.ID, "pmid31562797")
	}
	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want article-journal", item.Type)
	}
	if item.ContainerTitle != "N Engl J Med" {
		t.Errorf("ContainerTitle = %q", item.ContainerTitle)
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[0].Family != "Larkin" || item.Author[0].Given != "J" {
		t.Errorf("Author[0] = %+v, want Larkin/J", item.Author[0])
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2024 {
		t.Errorf("Issued year should be 2024")
	}
}

func TestToCSLItemScholarPlaceholders(t *testing.T) {
	p := types.Paper{
		Title:    "Immune checkpoint inhibitors in melanoma",
		Authors:  []string{"AM Eggermont", "Smith"},
		Source:   types.SourceAcademicSearch,
		Year:     2025,
		Journal:  types.UnknownJournal,
		PMID:     types.UnknownPMID,
		Abstract: types.NoAbstractAvailable,
	}

	item := toCSLItem(p, 3)

	if item.ID != "ref3" {
		t.Errorf("ID = %q, want ref3", item.ID)
	}
	if item.Type != "article" {
		t.Errorf("Type = %q, want article", item.Type)
	}
	if item.PMID != "" || item.Abstract != "" || item.ContainerTitle != "" {
		t.Errorf("placeholders should be omitted, got %+v", item)
	}
	if item.Author[0].Family != "Eggermont" || item.Author[0].Given != "AM" {
		t.Errorf("Author[0] = %+v, want Eggermont/AM", item.Author[0])
	}
	if item.Author[1].Literal != "Smith" {
		t.Errorf("Author[1] = %+v, want literal Smith", item.Author[1])
	}
}

func TestToCSLItemUnknownAuthorDropped(t *testing.T) {
	item := toCSLItem(types.Paper{Title: "x", Authors: []string{types.UnknownAuthor}}, 1)
	if len(item.Author) != 0 {
		t.Errorf("Author = %+v, want none", item.Author)
	}
	if item.Issued != nil {
		t.Errorf("Issued should be nil without a year")
	}
}

func TestFormatCSL(t *testing.T) {
	res := types.LiteratureResult{Papers: []types.Paper{
		{Title: "First", Source: types.SourceClinicalIndex, PMID: "1", Year: 2024},
		{Title: "Second", Source: types.SourceAcademicSearch, Year: 2025},
	}}

	var buf bytes.Buffer
	if err := FormatCSL(res, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id: pmid1", "title: First", "id: ref2", "date-parts:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
