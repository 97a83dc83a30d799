package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

var (
	pageStartPattern = regexp.MustCompile(`==Start of OCR for page (\d+)==`)
	pageEndPattern   = regexp.MustCompile(`==End of OCR for page \d+==`)
)

// SplitIntoPages splits OCR text into pages on the page-start markers.
//
// Each page's Raw keeps its start marker. Text before the first marker is
// kept on the first page. A document without markers becomes a single
// page numbered 1; whitespace-only input yields no pages.
func SplitIntoPages(fullText string) []domain.PageUnit {
	if strings.TrimSpace(fullText) == "" {
		return nil
	}

	locs := pageStartPattern.FindAllStringSubmatchIndex(fullText, -1)
	if len(locs) == 0 {
		return []domain.PageUnit{{
			Number: 1,
			Raw:    fullText,
			Text:   stripMarkers(fullText),
		}}
	}

	pages := make([]domain.PageUnit, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		if i == 0 {
			start = 0
		}
		end := len(fullText)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		// The pattern only matches digits, so Atoi fails only on overflow.
		number, err := strconv.Atoi(fullText[loc[2]:loc[3]])
		if err != nil {
			number = len(pages) + 1
		}

		raw := fullText[start:end]
		pages = append(pages, domain.PageUnit{
			Number: number,
			Raw:    raw,
			Text:   stripMarkers(raw),
		})
	}

	return pages
}

// HasPageMarkers reports whether text contains a page-start marker.
func HasPageMarkers(text string) bool {
	return pageStartPattern.MatchString(text)
}

func stripMarkers(s string) string {
	s = pageStartPattern.ReplaceAllString(s, "")
	return pageEndPattern.ReplaceAllString(s, "")
}
