// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Source tags which kind of index a paper came from.
type Source string

const (
	// SourceClinicalIndex marks papers from the clinical-publication index.
	SourceClinicalIndex Source = "PubMed"

	// SourceAcademicSearch marks papers from the general academic search engine.
	SourceAcademicSearch Source = "Google Scholar"
)

// Placeholder values substituted when a source omits a field.
const (
	UnknownAuthor       = "Unknown"
	NoTitleAvailable    = "No title available"
	NoAbstractAvailable = "No abstract available"
	UnknownJournal      = "Unknown"
	UnknownPMID         = "Unknown"
)

// MaxAuthors is the number of authors kept per paper.
const MaxAuthors = 5

// Paper is a normalized literature hit. Retrieval backends construct it and
// downstream stages treat it as read-only.
type Paper struct {
	// Title is the paper title, or NoTitleAvailable.
	Title string `json:"title" yaml:"title"`

	// Authors lists up to MaxAuthors names in source order. Never empty:
	// a paper without authors carries a single UnknownAuthor entry.
	Authors []string `json:"authors" yaml:"authors"`

	// Source is the index category the paper came from.
	Source Source `json:"source" yaml:"source"`

	// Provider names the backend that produced the hit (e.g. "pubmed",
	// "google_scholar", "semantic_scholar").
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// Year is the publication year. Zero means unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal is the publishing journal (clinical index only).
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// PMID is the clinical-index identifier.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// Abstract is the abstract or search snippet.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Link is the landing page URL when the source provides one.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`
}

// NormalizeAuthors truncates authors to MaxAuthors and substitutes
// UnknownAuthor for an empty list. The input slice is not modified.
func NormalizeAuthors(authors []string) []string {
	out := make([]string, 0, MaxAuthors)
	for _, a := range authors {
		if a == "" {
			continue
		}
		out = append(out, a)
		if len(out) == MaxAuthors {
			break
		}
	}
	if len(out) == 0 {
		return []string{UnknownAuthor}
	}
	return out
}
