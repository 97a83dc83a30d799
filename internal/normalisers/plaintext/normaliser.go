// Package plaintext cleans OCR text files before they are parsed.
package plaintext

import (
	"strings"
	"unicode"
)

const bom = "\uFEFF"

// Normalise returns text as valid UTF-8 with LF line endings.
//
// A leading byte order mark is dropped, CRLF and lone CR become LF and
// form feeds become line breaks. Control characters other than newline
// and tab are removed, and trailing whitespace is trimmed from each line.
// Page markers and all other content are left untouched.
func Normalise(text string) string {
	text = strings.ToValidUTF8(text, string(unicode.ReplacementChar))
	text = strings.TrimPrefix(text, bom)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")

	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}
