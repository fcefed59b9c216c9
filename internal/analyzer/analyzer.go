// Package analyzer wires the data layer to the prediction engine:
// scan the Claude projects directory, parse the logs into a record
// stream, extract limit history, and run the predictors over it.
package analyzer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/penwyp/go-claude-predictor/internal/core/forecast"
	"github.com/penwyp/go-claude-predictor/internal/core/limits"
	"github.com/penwyp/go-claude-predictor/internal/core/model"
	"github.com/penwyp/go-claude-predictor/internal/core/predict"
	"github.com/penwyp/go-claude-predictor/internal/data/parser"
	"github.com/penwyp/go-claude-predictor/internal/data/scanner"
	"github.com/penwyp/go-claude-predictor/internal/util"
)

type Config struct {
	DataDir     string
	Timezone    string
	Concurrency int

	Predict  predict.Config
	Forecast forecast.Config
}

type Analyzer struct {
	config  *Config
	scanner *scanner.FileScanner
	parser  *parser.Parser
}

// Snapshot is one fully loaded view of the usage history: the sorted
// record stream, the limit events with their pre-limit snapshots, and
// the pattern statistics derived from them. It is recomputed per load;
// nothing here survives across invocations.
type Snapshot struct {
	Records  []model.UsageRecord
	Sessions []*model.Session
	Events   []limits.Event
	History  predict.History
	LoadedAt time.Time
}

func New(config *Config) *Analyzer {
	if config.Concurrency == 0 {
		config.Concurrency = runtime.NumCPU()
	}
	if config.Predict == (predict.Config{}) {
		config.Predict = predict.DefaultConfig()
	}
	if config.Forecast.CurrentWindow == 0 {
		config.Forecast = forecast.DefaultConfig()
	}

	return &Analyzer{
		config:  config,
		scanner: scanner.NewFileScanner(config.DataDir),
		parser:  parser.NewParser(config.Concurrency),
	}
}

// Load scans, parses and materializes the usage snapshot.
func (a *Analyzer) Load() (*Snapshot, error) {
	start := time.Now()
	util.LogInfo("Loading Claude usage history...")

	files, err := a.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSONL files found under %s", a.config.DataDir)
	}

	stream, err := a.parser.BuildStream(files)
	if err != nil {
		return nil, err
	}
	if err := model.EnsureSorted(stream.Records); err != nil {
		return nil, err
	}

	events, err := limits.Extract(stream.Records, stream.Markers,
		a.config.Predict.ShortLookback, a.config.Predict.LongLookback)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Records:  stream.Records,
		Sessions: model.BuildSessions(stream.Records),
		Events:   events,
		History:  predict.BuildHistory(events),
		LoadedAt: time.Now(),
	}

	util.LogInfof("Loaded %d records across %d sessions with %d limit events in %v",
		len(snap.Records), len(snap.Sessions), len(snap.Events), time.Since(start))
	return snap, nil
}

// PredictLegacy runs the deterministic predictor anchored at the
// latest record.
func (a *Analyzer) PredictLegacy(snap *Snapshot) (predict.LegacyPrediction, error) {
	return predict.LegacyAtLatest(a.config.Predict, snap.Records, snap.History)
}

// Backtest replays historical limit events through the legacy
// predictor.
func (a *Analyzer) Backtest(snap *Snapshot) (predict.BacktestReport, error) {
	return predict.Backtest(a.config.Predict, snap.Records, snap.Events)
}

// PredictAdvanced runs the probabilistic multi-horizon engine.
func (a *Analyzer) PredictAdvanced(snap *Snapshot) (map[int]forecast.Prediction, error) {
	engine := forecast.NewEngine(a.config.Forecast)
	return engine.PredictAtLatest(snap.Records, snap.Events)
}
