package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitParserOpusWithWait(t *testing.T) {
	entry := ConversationLog{
		Type:      "system",
		Timestamp: "2025-06-01T12:00:00Z",
		SessionId: "s1",
		Content:   "Claude Opus 4 rate limit reached. Please wait 45 minutes before retrying.",
	}

	found := NewLimitParser().ParseLogs([]ConversationLog{entry})
	require.Len(t, found, 1)

	limit := found[0]
	assert.Equal(t, "opus_limit", limit.Type)
	require.NotNil(t, limit.ResetTime)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(45*time.Minute).Unix(), *limit.ResetTime)
}

func TestLimitParserToolResultResetTimestamp(t *testing.T) {
	entry := ConversationLog{
		Type:      "user",
		Timestamp: "2025-06-01T12:00:00Z",
		SessionId: "s1",
		Message: Message{
			Role: "user",
			Content: FlexibleContent{{
				Type:    "tool_result",
				Content: "Limit reached|1750000000000",
			}},
		},
	}

	found := NewLimitParser().ParseLogs([]ConversationLog{entry})
	require.Len(t, found, 1)

	limit := found[0]
	assert.Equal(t, "general_limit", limit.Type)
	require.NotNil(t, limit.ResetTime)
	// Millisecond timestamps are normalized to seconds.
	assert.Equal(t, int64(1750000000), *limit.ResetTime)
}

func TestLimitParserApiErrorText(t *testing.T) {
	entry := ConversationLog{
		Type:              "assistant",
		Timestamp:         "2025-06-01T12:00:00Z",
		SessionId:         "s1",
		IsApiErrorMessage: true,
		Message: Message{
			Role:  "assistant",
			Model: "claude-sonnet-4-20250514",
			Content: FlexibleContent{{
				Type: "text",
				Text: "API Error: rate limit exceeded for this organization",
			}},
		},
	}

	found := NewLimitParser().ParseLogs([]ConversationLog{entry})
	require.Len(t, found, 1)
	assert.Equal(t, "api_error_limit", found[0].Type)
	assert.Equal(t, "claude-sonnet-4-20250514", found[0].Model)
}

func TestLimitParserIgnoresOrdinaryTraffic(t *testing.T) {
	logs := []ConversationLog{
		{
			Type:      "system",
			Timestamp: "2025-06-01T12:00:00Z",
			Content:   "Session resumed.",
		},
		{
			Type:      "assistant",
			Timestamp: "2025-06-01T12:01:00Z",
			Message: Message{
				Role:    "assistant",
				Content: FlexibleContent{{Type: "text", Text: "Here is the function you asked for."}},
			},
		},
	}

	assert.Empty(t, NewLimitParser().ParseLogs(logs))
}

func TestLimitParserBadTimestamp(t *testing.T) {
	entry := ConversationLog{
		Type:      "system",
		Timestamp: "not-a-timestamp",
		Content:   "rate limit exceeded",
	}
	assert.Empty(t, NewLimitParser().ParseLogs([]ConversationLog{entry}))
}
