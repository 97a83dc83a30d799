package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean text unchanged",
			in:   "==Start of OCR for page 1==\nVorsitzender: Bitte.",
			want: "==Start of OCR for page 1==\nVorsitzender: Bitte.",
		},
		{
			name: "byte order mark dropped",
			in:   "\uFEFFSeite 1",
			want: "Seite 1",
		},
		{
			name: "windows line endings",
			in:   "a\r\nb\r\n",
			want: "a\nb\n",
		},
		{
			name: "lone carriage return",
			in:   "a\rb",
			want: "a\nb",
		},
		{
			name: "form feed becomes line break",
			in:   "page one\fpage two",
			want: "page one\npage two",
		},
		{
			name: "control characters removed",
			in:   "Zeu\x00ge:\x07 Ja\tgenau",
			want: "Zeuge: Ja\tgenau",
		},
		{
			name: "trailing whitespace trimmed",
			in:   "Frage   \nAntwort\t\n",
			want: "Frage\nAntwort\n",
		},
		{
			name: "invalid utf8 replaced",
			in:   "Gr\xfc\xdfe",
			want: "Gr\uFFFDe",
		},
		{
			name: "umlauts kept",
			in:   "Prüfung der Maßnahmen",
			want: "Prüfung der Maßnahmen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalise(tt.in))
		})
	}
}
