package model

// Model identifiers
const (
	ModelDefault  = "default"
	ModelHaiku35  = "claude-3-5-haiku"
	ModelSonnet35 = "claude-3-5-sonnet"
	ModelSonnet4  = "claude-sonnet-4-20250514"
	ModelOpus4    = "claude-opus-4-20250514"
)

// Message Entry Type
const (
	EntryAssistant = "assistant"
)

// Limit kinds
const (
	LimitKindRate  = "rate"
	LimitKindUsage = "usage"
)
