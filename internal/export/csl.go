// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) format,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
}

// CSLName is a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts form. Only the year is known.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes papers as a CSL-YAML list to w.
func FormatCSL(papers []types.Paper, w io.Writer) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:       p.ID,
		Type:     "article",
		Title:    p.Title,
		Abstract: p.AbstractText,
	}
	if item.ID == "" {
		item.ID = citationKey(p)
	}
	if p.Journal != "" {
		item.Type = "article-journal"
		item.ContainerTitle = p.Journal
	}
	for _, name := range splitAuthors(p.Author) {
		item.Author = append(item.Author, parseAuthorName(name))
	}
	if p.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*p.Year}}}
	}
	return item
}

// splitAuthors splits an author line such as "A Vaswani, N Shazeer, N Parmar…"
// into names, dropping the truncation marker Scholar appends.
func splitAuthors(line string) []string {
	line = strings.TrimRight(strings.TrimSpace(line), "…. ")
	var names []string
	for _, n := range strings.Split(line, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// parseAuthorName splits a full name into CSL family/given parts on the
// last space. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

var reNonWord = regexp.MustCompile(`[^a-z0-9]+`)

// citationKey builds a key like "vaswani2017attention" for papers without an ID.
func citationKey(p types.Paper) string {
	family := ""
	if names := splitAuthors(p.Author); len(names) > 0 {
		n := parseAuthorName(names[0])
		family = n.Family
		if family == "" {
			family = n.Literal
		}
	}
	word := ""
	for _, w := range strings.Fields(strings.ToLower(p.Title)) {
		if w = reNonWord.ReplaceAllString(w, ""); len(w) > 3 {
			word = w
			break
		}
	}
	year := ""
	if p.Year != nil {
		year = strconv.Itoa(*p.Year)
	}
	return reNonWord.ReplaceAllString(strings.ToLower(family), "") + year + word
}
