package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
)

func TestReporter_SendsMessages(t *testing.T) {
	sender := &FakeSender{}
	r := NewReporter(sender)

	r.Progress("chunk 1/4", 1, 4)
	r.Warn("pages 3-4: invalid output")

	require.Len(t, sender.Msgs, 2)
	assert.Equal(t, messages.ProgressUpdated{Message: "chunk 1/4", Completed: 1, Total: 4}, sender.Msgs[0])
	assert.Equal(t, messages.WarningRaised{Message: "pages 3-4: invalid output"}, sender.Msgs[1])
}
