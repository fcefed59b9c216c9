package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// LimitInfo contains information about a detected rate limit
type LimitInfo struct {
	Type      string // "opus_limit", "general_limit", "system_limit", "api_error_limit"
	Timestamp int64  // Unix timestamp when limit was detected
	ResetTime *int64 // Unix timestamp when limit will reset
	Content   string // Original limit message content
	Model     string // Model that hit the limit
	SessionID string // Session ID
}

// LimitKind maps the detected limit type onto the engine's closed kind
// set. Opus limits are per-model rate ceilings; everything else is a
// usage ceiling.
func (l LimitInfo) LimitKind() string {
	if l.Type == "opus_limit" {
		return model.LimitKindRate
	}
	return model.LimitKindUsage
}

// LimitParser parses conversation logs to detect rate limit messages
type LimitParser struct {
	opusPattern    *regexp.Regexp
	waitPattern    *regexp.Regexp
	resetPattern   *regexp.Regexp
	generalPattern *regexp.Regexp
}

// NewLimitParser creates a new limit message parser
func NewLimitParser() *LimitParser {
	return &LimitParser{
		// Matches Opus-specific rate limits
		opusPattern: regexp.MustCompile(`(?i)(opus).*(rate\s*limit|limit\s*exceeded|limit\s*reached|limit\s*hit)`),
		// Matches wait time instructions
		waitPattern: regexp.MustCompile(`(?i)wait\s+(\d+)\s+minutes?`),
		// Matches reset timestamp in "limit reached|timestamp" format
		resetPattern: regexp.MustCompile(`(?i)limit\s+reached\|(\d+)`),
		// General limit patterns
		generalPattern: regexp.MustCompile(`(?i)(rate\s*limit|limit\s*exceeded|limit\s*reached|you've\s*reached|quota\s*exceeded)`),
	}
}

// ParseLogs parses conversation logs and returns detected limit information
func (p *LimitParser) ParseLogs(logs []ConversationLog) []LimitInfo {
	var found []LimitInfo

	for _, entry := range logs {
		switch entry.Type {
		case "system":
			if limit := p.parseSystemMessage(entry); limit != nil {
				found = append(found, *limit)
			}
		case "user", "assistant":
			if limit := p.parseUserAssistantMessage(entry); limit != nil {
				found = append(found, *limit)
			}
		}
	}

	if len(found) > 0 {
		util.LogDebugf("LimitParser: found %d limit messages in %d logs", len(found), len(logs))
	}
	return found
}

// parseSystemMessage parses system messages for limit information
func (p *LimitParser) parseSystemMessage(entry ConversationLog) *LimitInfo {
	content := strings.ToLower(entry.Content)

	// Quick check for limit-related keywords
	if !strings.Contains(content, "limit") && !strings.Contains(content, "rate") {
		return nil
	}

	timestamp, err := time.Parse(time.RFC3339, entry.Timestamp)
	if err != nil {
		return nil
	}

	limit := &LimitInfo{
		Timestamp: timestamp.Unix(),
		Content:   entry.Content,
		SessionID: entry.SessionId,
	}

	// Check for Opus-specific limit
	if p.opusPattern.MatchString(content) {
		limit.Type = "opus_limit"

		if matches := p.waitPattern.FindStringSubmatch(entry.Content); len(matches) > 1 {
			waitMinutes := 0
			fmt.Sscanf(matches[1], "%d", &waitMinutes)
			resetTime := timestamp.Add(time.Duration(waitMinutes) * time.Minute).Unix()
			limit.ResetTime = &resetTime
		}

		return limit
	}

	if p.generalPattern.MatchString(content) {
		limit.Type = "system_limit"
		return limit
	}

	return nil
}

// parseUserAssistantMessage parses user/assistant messages for limit information
func (p *LimitParser) parseUserAssistantMessage(entry ConversationLog) *LimitInfo {
	modelName := entry.Message.Model

	for _, item := range entry.Message.Content {
		// API error messages arrive as plain text items
		if item.Type == "text" && item.Text != "" {
			if limit := p.parseTextContent(item.Text, entry, modelName); limit != nil {
				return limit
			}
		}

		if item.Type == "tool_result" && item.Content != nil {
			if limit := p.parseToolResult(item, entry, modelName); limit != nil {
				return limit
			}
		}
	}

	return nil
}

// parseToolResult parses tool result content for limit messages
func (p *LimitParser) parseToolResult(item ContentItem, entry ConversationLog, modelName string) *LimitInfo {
	contentStr := ""
	switch v := item.Content.(type) {
	case string:
		contentStr = v
	case []interface{}:
		for _, subItem := range v {
			if subMap, ok := subItem.(map[string]interface{}); ok {
				if text, ok := subMap["text"].(string); ok {
					contentStr += text + " "
				}
			}
		}
	}

	if contentStr == "" || !strings.Contains(strings.ToLower(contentStr), "limit reached") {
		return nil
	}

	timestamp, err := time.Parse(time.RFC3339, entry.Timestamp)
	if err != nil {
		return nil
	}

	limit := &LimitInfo{
		Type:      "general_limit",
		Timestamp: timestamp.Unix(),
		Content:   contentStr,
		SessionID: entry.SessionId,
		Model:     modelName,
	}

	// Extract reset timestamp from "limit reached|timestamp" format
	if matches := p.resetPattern.FindStringSubmatch(contentStr); len(matches) > 1 {
		var resetTimestamp int64
		fmt.Sscanf(matches[1], "%d", &resetTimestamp)
		// Convert milliseconds to seconds if needed
		if resetTimestamp > 1e12 {
			resetTimestamp = resetTimestamp / 1000
		}
		limit.ResetTime = &resetTimestamp
	}

	return limit
}

// parseTextContent parses text content for limit messages (e.g., from API error messages)
func (p *LimitParser) parseTextContent(text string, entry ConversationLog, modelName string) *LimitInfo {
	textLower := strings.ToLower(text)

	if !strings.Contains(textLower, "limit reached") &&
		!strings.Contains(textLower, "rate limit") &&
		!strings.Contains(textLower, "limit exceeded") {
		return nil
	}

	timestamp, err := time.Parse(time.RFC3339, entry.Timestamp)
	if err != nil {
		return nil
	}

	limit := &LimitInfo{
		Type:      "api_error_limit",
		Timestamp: timestamp.Unix(),
		Content:   text,
		SessionID: entry.SessionId,
		Model:     modelName,
	}

	if p.opusPattern.MatchString(textLower) {
		limit.Type = "opus_limit"
	}

	if matches := p.resetPattern.FindStringSubmatch(text); len(matches) > 1 {
		var resetTimestamp int64
		fmt.Sscanf(matches[1], "%d", &resetTimestamp)
		if resetTimestamp > 1e12 {
			resetTimestamp = resetTimestamp / 1000
		}
		limit.ResetTime = &resetTimestamp
	}

	return limit
}
