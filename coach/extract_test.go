package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAction(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantStatus ExtractStatus
	}{
		{
			name:       "no fenced block",
			reply:      "Just take a deep breath and relax.",
			wantStatus: ExtractNone,
		},
		{
			name:       "plain code fence is not an action block",
			reply:      "Try this:\n```\nnot json\n```",
			wantStatus: ExtractNone,
		},
		{
			name:       "invalid json",
			reply:      "Sure!\n```json\n{not valid json\n```",
			wantStatus: ExtractInvalid,
		},
		{
			name:       "missing date",
			reply:      "```json\n{\"action\": \"create_event\", \"summary\": \"Meditation\", \"time\": \"07:00\"}\n```",
			wantStatus: ExtractInvalid,
		},
		{
			name:       "missing time",
			reply:      "```json\n{\"action\": \"create_event\", \"summary\": \"Meditation\", \"date\": \"2026-09-01\"}\n```",
			wantStatus: ExtractInvalid,
		},
		{
			name:       "wrong action tag",
			reply:      "```json\n{\"action\": \"delete_event\", \"summary\": \"X\", \"date\": \"2026-09-01\", \"time\": \"07:00\"}\n```",
			wantStatus: ExtractInvalid,
		},
		{
			name:       "valid action",
			reply:      "I'll set that up!\n```json\n{\"action\": \"create_event\", \"summary\": \"Meditation\", \"date\": \"2026-09-01\", \"time\": \"07:00\", \"duration\": 30}\n```\nEnjoy!",
			wantStatus: ExtractOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, status := ExtractAction(tt.reply)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestExtractActionFields(t *testing.T) {
	reply := "Done!\n```json\n{\"action\": \"create_event\", \"summary\": \"Morning Run\", \"description\": \"Easy pace\", \"date\": \"2026-09-02\", \"time\": \"06:30\", \"duration\": 45}\n```"

	action, status := ExtractAction(reply)
	assert.Equal(t, ExtractOK, status)
	assert.Equal(t, "Morning Run", action.Summary)
	assert.Equal(t, "Easy pace", action.Description)
	assert.Equal(t, "2026-09-02", action.Date)
	assert.Equal(t, "06:30", action.Time)
	assert.Equal(t, 45, action.Duration)
}

func TestExtractActionFirstBlockOnly(t *testing.T) {
	reply := "```json\n{\"action\": \"create_event\", \"summary\": \"First\", \"date\": \"2026-09-01\", \"time\": \"07:00\"}\n```\n" +
		"```json\n{\"action\": \"create_event\", \"summary\": \"Second\", \"date\": \"2026-09-02\", \"time\": \"08:00\"}\n```"

	action, status := ExtractAction(reply)
	assert.Equal(t, ExtractOK, status)
	assert.Equal(t, "First", action.Summary)
}

func TestStripActionBlocks(t *testing.T) {
	reply := "Let's do it.\n```json\n{\"action\": \"create_event\"}\n```\nSee you there."

	stripped := StripActionBlocks(reply)
	assert.NotContains(t, stripped, "```")
	assert.Contains(t, stripped, "Let's do it.")
	assert.Contains(t, stripped, "See you there.")
}

func TestStripActionBlocksNoBlock(t *testing.T) {
	assert.Equal(t, "Hello there.", StripActionBlocks("  Hello there.\n"))
}
