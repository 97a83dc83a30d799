package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "****"},
		{"AIza1234", "****"},
		{"AIzaSyD-0123456789", "AIza...6789"},
		{"sk-proj-abcdefghijklmnop", "sk-p...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAPIKey(tt.key))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 2},
		{"1", 1},
		{"3", 3},
		{"0", 2},
		{"4", 2},
		{"-1", 2},
		{"ollama", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(tt.input, 3, 2))
		})
	}
}

func promptCmd() (*cobra.Command, *bytes.Buffer) {
	out := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	return cmd, out
}

func TestPromptInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"20\n", 20},
		{"\n", 15},
		{"zero\n", 15},
		{"0\n", 15},
		{"-3\n", 15},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			cmd, out := promptCmd()
			got := promptInt(cmd, bufio.NewReader(strings.NewReader(tt.input)), "Entries per analysis batch", 15)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Entries per analysis batch [15]: ", out.String())
		})
	}
}

func TestPromptBool(t *testing.T) {
	tests := []struct {
		input   string
		current bool
		want    bool
		hint    string
	}{
		{"y\n", false, true, "[y/N]"},
		{"YES\n", false, true, "[y/N]"},
		{"n\n", true, false, "[Y/n]"},
		{"\n", true, true, "[Y/n]"},
		{"maybe\n", false, false, "[y/N]"},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			cmd, out := promptCmd()
			got := promptBool(cmd, bufio.NewReader(strings.NewReader(tt.input)), "Break batches", tt.current)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), tt.hint)
		})
	}
}

func TestAnyChanged(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Int("top-k", 0, "")
	cmd.Flags().Bool("speaker-breaks", true, "")

	assert.False(t, anyChanged(cmd, "top-k", "speaker-breaks"))
	assert.NoError(t, cmd.Flags().Set("speaker-breaks", "false"))
	assert.True(t, anyChanged(cmd, "top-k", "speaker-breaks"))
	assert.False(t, anyChanged(cmd, "top-k"))
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  gemini-2.5-pro \nlast"))
	assert.Equal(t, "gemini-2.5-pro", readLine(r))
	assert.Equal(t, "last", readLine(r))
	assert.Empty(t, readLine(r))
}
