package parser

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// ConversationLog is the subset of a Claude Code conversation log entry
// the predictor needs: timing, identity, token usage and enough content
// to detect limit messages.
type ConversationLog struct {
	Content           string  `json:"content,omitempty"`
	IsApiErrorMessage bool    `json:"isApiErrorMessage,omitempty"`
	Message           Message `json:"message"`
	RequestId         string  `json:"requestId,omitempty"`
	SessionId         string  `json:"sessionId"`
	Timestamp         string  `json:"timestamp"`
	Type              string  `json:"type"`
	Uuid              string  `json:"uuid"`
}

type Message struct {
	Content FlexibleContent `json:"content"`
	Id      string          `json:"id,omitempty"`
	Model   string          `json:"model,omitempty"`
	Role    string          `json:"role"`
	Usage   Usage           `json:"usage,omitempty"`
}

// FlexibleContent accepts both the string and the array form of the
// message content field.
type FlexibleContent []ContentItem

func (fc *FlexibleContent) UnmarshalJSON(data []byte) error {
	// First try to parse as []ContentItem array
	var items []ContentItem
	if err := sonic.Unmarshal(data, &items); err == nil {
		*fc = items
		return nil
	}

	// If array parsing fails, try to parse as string
	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		*fc = []ContentItem{{Type: "text", Text: str}}
		return nil
	}

	return fmt.Errorf("content must be either string or array of ContentItem")
}

type ContentItem struct {
	Content   any    `json:"content,omitempty"`
	Text      string `json:"text,omitempty"`
	ToolUseId string `json:"tool_use_id,omitempty"`
	Type      string `json:"type"`
}

type Usage struct {
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
}
