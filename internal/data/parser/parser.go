// Package parser turns Claude Code JSONL conversation logs into costed
// usage records and limit markers for the prediction engine. It is the
// engine's external collaborator: everything downstream assumes records
// are well formed.
package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-predictor/internal/core/limits"
	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/pricing"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

// Parser is a struct for parsing conversation log files.
type Parser struct {
	concurrency int
	limitParser *LimitParser
	mu          sync.Mutex
	cache       map[string]cacheEntry
}

// cacheEntry pairs parsed logs with the file identity they were read
// from. A changed mod time, size or inode invalidates the entry, so
// watch-mode reloads see appended records.
type cacheEntry struct {
	info *util.FileInfo
	logs []ConversationLog
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File  string
	Logs  []ConversationLog
	Error error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	return &Parser{
		concurrency: concurrency,
		limitParser: NewLimitParser(),
		cache:       make(map[string]cacheEntry),
	}
}

// ParseFile parses the log file at the specified path and returns a slice of ConversationLog and an error if any.
func (p *Parser) ParseFile(filepath string) ([]ConversationLog, error) {
	info, err := util.GetFileInfo(filepath)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if cached, ok := p.cache[filepath]; ok && *cached.info == *info {
		p.mu.Unlock()
		return cached.logs, nil
	}
	p.mu.Unlock()

	util.LogDebugf("Start parsing file: %s", filepath)

	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var logs []ConversationLog
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		var entry ConversationLog
		if err := sonic.Unmarshal(scanner.Bytes(), &entry); err != nil {
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", filepath, lineCount, err)
			continue
		}
		logs = append(logs, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[filepath] = cacheEntry{info: info, logs: logs}
	p.mu.Unlock()

	return logs, nil
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebugf("Start concurrent parsing of %d files, concurrency: %d", len(files), p.concurrency)

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			logs, err := p.ParseFile(f)
			results <- ParseResult{
				File:  f,
				Logs:  logs,
				Error: err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Stream is the fully materialized parser output: costed usage records
// sorted by timestamp plus the limit markers detected along the way.
type Stream struct {
	Records []model.UsageRecord
	Markers []limits.Marker
}

// BuildStream parses every file and converts assistant entries with
// usage into UsageRecords, costing them from the pricing table. The
// result is sorted by timestamp ascending (ties keep file-arrival
// order).
func (p *Parser) BuildStream(files []string) (*Stream, error) {
	stream := &Stream{}

	for result := range p.ParseFiles(files) {
		if result.Error != nil {
			return nil, fmt.Errorf("parse %s: %w", result.File, result.Error)
		}
		project := projectNameFromPath(result.File)
		for _, entry := range result.Logs {
			if rec, ok := toUsageRecord(entry, project); ok {
				stream.Records = append(stream.Records, rec)
			}
		}
		for _, info := range p.limitParser.ParseLogs(result.Logs) {
			stream.Markers = append(stream.Markers, limits.Marker{
				Timestamp: time.Unix(info.Timestamp, 0).UTC(),
				Kind:      info.LimitKind(),
			})
		}
	}

	sort.SliceStable(stream.Records, func(i, j int) bool {
		return stream.Records[i].Timestamp.Before(stream.Records[j].Timestamp)
	})
	sort.SliceStable(stream.Markers, func(i, j int) bool {
		return stream.Markers[i].Timestamp.Before(stream.Markers[j].Timestamp)
	})

	util.LogInfof("Parsed %d usage records and %d limit markers from %d files",
		len(stream.Records), len(stream.Markers), len(files))
	return stream, nil
}

// toUsageRecord converts an assistant log entry carrying token usage.
func toUsageRecord(entry ConversationLog, project string) (model.UsageRecord, bool) {
	if entry.Type != model.EntryAssistant {
		return model.UsageRecord{}, false
	}
	usage := entry.Message.Usage
	tokens := model.TokenCounts{
		Input:         usage.InputTokens,
		Output:        usage.OutputTokens,
		CacheCreation: usage.CacheCreationInputTokens,
		CacheRead:     usage.CacheReadInputTokens,
	}
	if tokens.Total() == 0 {
		return model.UsageRecord{}, false
	}

	timestamp, err := time.Parse(time.RFC3339, entry.Timestamp)
	if err != nil {
		util.LogDebugf("Skip record with bad timestamp %q: %v", entry.Timestamp, err)
		return model.UsageRecord{}, false
	}

	modelName := entry.Message.Model
	if modelName == "" {
		modelName = model.ModelDefault
	}

	return model.UsageRecord{
		Timestamp: timestamp.UTC(),
		Model:     modelName,
		Tokens:    tokens,
		Cost:      pricing.GetPricing(modelName).Cost(tokens),
		SessionID: entry.SessionId,
		ProjectID: project,
	}, true
}

// projectNameFromPath derives the project name from the Claude projects
// directory layout (~/.claude/projects/<project>/<session>.jsonl).
func projectNameFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	return strings.TrimPrefix(dir, "-")
}
