package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

func TestExecute_PrintsUserMessage(t *testing.T) {
	mock := runsMock()
	mock.InsightsE = domain.ErrLLMUnavailable
	withServices(t, Services{Runs: mock})

	resetFlags(rootCmd)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs([]string{"insights", "run-1"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, stderr.String(), "Error: No LLM provider is configured. Run 'protokoll settings llm' first.")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"parse", "analyze", "insights", "pipeline", "runs", "settings", "corpus", "watch", "mcp", "tui", "version",
	} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestSetVersion(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	SetVersion("")
	assert.Equal(t, old, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	sink := &textSink{out: &buf}

	sink.Progress("step", 0, 2)
	sink.Progress("step", 1, 2)
	sink.Progress("", 1, 2)
	sink.Progress("done", 2, 2)
	sink.Warn("chunk failed")

	assert.Equal(t, "step\ndone\nwarning: chunk failed\n", buf.String())
}
