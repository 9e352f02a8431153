// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-crawler/pkg/types"
)

const (
	minYear = 1900
	maxYear = 2100
)

var (
	reYear     = regexp.MustCompile(`\b(\d{4})\b`)
	reSpace    = regexp.MustCompile(`\s+`)
	blockTexts = []string{"unusual traffic", "not a robot"}
	emptyTexts = []string{"did not match any articles"}
)

// parseResults extracts one raw record per result block. Blocks without a
// title (author profiles, "did you mean" rows) are skipped.
func parseResults(doc *goquery.Document) []types.RawRecord {
	var records []types.RawRecord
	doc.Find(".gs_r").Each(func(_ int, s *goquery.Selection) {
		title := cleanText(s.Find(".gs_rt a").First().Text())
		if title == "" {
			// Citation-only entries have no link in the title.
			title = cleanText(stripTags(s.Find(".gs_rt").First()))
		}
		if title == "" {
			return
		}

		rec := types.RawRecord{"title": title}

		author, journal, year := parseByline(s.Find(".gs_a").First().Text())
		rec["author"] = author
		if journal != "" {
			rec["journal"] = journal
		}
		if year > 0 {
			rec["year"] = year
		}
		if abstract := cleanText(s.Find(".gs_rs").First().Text()); abstract != "" {
			rec["abstractText"] = abstract
		}
		records = append(records, rec)
	})
	return records
}

// parseByline splits a result byline of the form
// "A Author, B Author - Journal, 2017 - host.org" into its parts.
func parseByline(text string) (author, journal string, year int) {
	text = cleanText(text)
	if text == "" {
		return "", "", 0
	}

	parts := strings.Split(text, " - ")
	author = strings.TrimSpace(parts[0])

	if len(parts) > 1 {
		venue := strings.TrimSpace(parts[1])
		if idx := strings.LastIndex(venue, ","); idx >= 0 {
			journal = strings.TrimSpace(venue[:idx])
			year = findYear(venue[idx+1:])
		} else if y := findYear(venue); y > 0 && strings.TrimSpace(venue) == strconv.Itoa(y) {
			year = y
		} else {
			journal = venue
		}
	}

	if year == 0 {
		year = findYear(text)
	}
	return author, journal, year
}

// findYear returns the first plausible four-digit year in s, or 0.
func findYear(s string) int {
	for _, m := range reYear.FindAllStringSubmatch(s, -1) {
		y, err := strconv.Atoi(m[1])
		if err == nil && y >= minYear && y <= maxYear {
			return y
		}
	}
	return 0
}

// isBlockedPage reports whether doc is a captcha or "unusual traffic"
// interstitial instead of a result page.
func isBlockedPage(doc *goquery.Document) bool {
	if doc.Find("#gs_captcha_ccl, #captcha-form, form#captcha, .g-recaptcha").Length() > 0 {
		return true
	}
	if doc.Find(".gs_r").Length() > 0 {
		return false
	}
	body := strings.ToLower(doc.Find("body").Text())
	for _, t := range blockTexts {
		if strings.Contains(body, t) {
			return true
		}
	}
	return false
}

// isResultPage reports whether doc is a Scholar result listing, possibly
// one with no matches. Consent pages and unknown layouts are not.
func isResultPage(doc *goquery.Document) bool {
	if doc.Find(".gs_r, #gs_res_ccl, #gs_res_ccl_mid, #gs_ab_md").Length() > 0 {
		return true
	}
	body := strings.ToLower(doc.Find("body").Text())
	for _, t := range emptyTexts {
		if strings.Contains(body, t) {
			return true
		}
	}
	return false
}

// stripTags returns the text of s without the [PDF]/[BOOK] type markers.
func stripTags(s *goquery.Selection) string {
	c := s.Clone()
	c.Find(".gs_ctc, .gs_ctu").Remove()
	return c.Text()
}

// cleanText collapses whitespace, including non-breaking spaces, and trims.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}
