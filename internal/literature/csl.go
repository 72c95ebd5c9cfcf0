// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML form, consumable by Pandoc
// and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the result's papers as a CSL-YAML list.
func FormatCSL(res types.LiteratureResult, w io.Writer) error {
	items := make([]CSLItem, len(res.Papers))
	for i, p := range res.Papers {
		items[i] = toCSLItem(p, i+1)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a paper. Placeholder fields are left out rather than
// cited; n numbers papers that have no PMID.
func toCSLItem(p types.Paper, n int) CSLItem {
	item := CSLItem{
		ID:    fmt.Sprintf("ref%d", n),
		Type:  "article",
		Title: p.Title,
		URL:   p.Link,
	}
	if p.Abstract != types.NoAbstractAvailable {
		item.Abstract = p.Abstract
	}
	if p.PMID != "" && p.PMID != types.UnknownPMID {
		item.ID = "pmid" + p.PMID
		item.PMID = p.PMID
	}
	if p.Source == types.SourceClinicalIndex {
		item.Type = "article-journal"
		if p.Journal != types.UnknownJournal {
			item.ContainerTitle = p.Journal
		}
	}
	for _, a := range p.Authors {
		if a == types.UnknownAuthor {
			continue
		}
		item.Author = append(item.Author, parseAuthorName(a, p.Source == types.SourceClinicalIndex))
	}
	if p.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{p.Year}}}
	}
	return item
}

// parseAuthorName splits a name into family and given parts. PubMed lists
// "Family Initials", so familyFirst splits on the first space; other
// sources list "Initials Family" and split on the last. Single tokens use
// the literal field.
func parseAuthorName(name string, familyFirst bool) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if familyFirst {
		idx := strings.Index(name, " ")
		if idx < 0 {
			return CSLName{Literal: name}
		}
		return CSLName{Family: name[:idx], Given: strings.TrimSpace(name[idx+1:])}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{Given: name[:idx], Family: name[idx+1:]}
}
