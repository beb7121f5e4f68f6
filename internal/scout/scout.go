// Package scout runs complete scans: directory, collection, pipeline and outputs.
package scout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"PrebloomScout/internal/calculator"
	"PrebloomScout/internal/directory"
	"PrebloomScout/internal/extractor"
	"PrebloomScout/internal/model"
	"PrebloomScout/internal/pipeline"
	"PrebloomScout/internal/recorder"
	"PrebloomScout/internal/report"
	"PrebloomScout/internal/scorer"
	"PrebloomScout/internal/validator"
)

// ErrScanRunning is returned when a scan is requested while one is in progress.
var ErrScanRunning = errors.New("scout: scan already running")

// DirectoryLoader provides the symbol directory for a scan.
type DirectoryLoader interface {
	Load(ctx context.Context) (*directory.Directory, error)
}

// UnitCollector provides the text units for a scan.
type UnitCollector interface {
	Collect(ctx context.Context, since time.Time) ([]model.TextUnit, error)
}

// Metrics observes scans. It is optional.
type Metrics interface {
	pipeline.Observer
	DirectoryLoaded(symbols int)
	ScanFinished(err error)
}

// Report is the outcome of one scan.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Result     *pipeline.Result
}

// Service wires the collaborators of a scan.
type Service struct {
	Loader           DirectoryLoader
	Collector        UnitCollector
	Extractor        *extractor.Extractor
	Exclusions       validator.ExclusionSet
	Scorer           *scorer.Scorer
	Recorder         recorder.Recorder // optional
	Metrics          Metrics           // optional
	CSVPath          string            // empty disables the CSV report
	Workers          int
	EvidenceCapacity int
	LookbackDays     int
	FixedNow         time.Time // zero uses Clock
	Clock            func() time.Time

	running sync.Mutex
	mu      sync.RWMutex
	last    *Report
}

// Scan runs one complete pass. Missing foundational inputs (directory or
// evaluation instant) are fatal; CSV and recorder failures are logged only.
func (s *Service) Scan(ctx context.Context) (rep *Report, err error) {
	if !s.running.TryLock() {
		return nil, ErrScanRunning
	}
	defer s.running.Unlock()

	started := s.clock()
	if s.Metrics != nil {
		defer func() { s.Metrics.ScanFinished(err) }()
	}

	now := s.FixedNow
	if now.IsZero() {
		now = started
	}
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Time("now", now).Logger()
	logger.Info().Msg("scan started")

	dir, err := s.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.DirectoryLoaded(dir.Len())
	}
	v, err := validator.New(dir, s.Exclusions)
	if err != nil {
		return nil, err
	}

	lookback := s.LookbackDays
	if lookback <= 0 {
		lookback = calculator.HorizonDays
	}
	units, err := s.Collector.Collect(ctx, now.AddDate(0, 0, -lookback))
	if err != nil {
		return nil, fmt.Errorf("collect units: %w", err)
	}

	opts := []pipeline.Option{pipeline.WithWorkers(s.Workers)}
	if s.EvidenceCapacity > 0 {
		opts = append(opts, pipeline.WithEvidenceCapacity(s.EvidenceCapacity))
	}
	if s.Metrics != nil {
		opts = append(opts, pipeline.WithObserver(s.Metrics))
	}
	res, err := pipeline.New(s.Extractor, v, s.Scorer, opts...).Run(ctx, units, now)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	rep = &Report{RunID: runID, StartedAt: started, FinishedAt: s.clock(), Result: res}
	logger.Info().
		Int("units", res.Stats.Units).
		Int("confirmed", res.Stats.Confirmed).
		Int("ranked", res.Stats.Ranked).
		Dur("elapsed", rep.FinishedAt.Sub(started)).
		Msg("scan finished")

	if s.CSVPath != "" {
		if err := report.WriteFile(s.CSVPath, res.Entries); err != nil {
			logger.Error().Err(err).Str("path", s.CSVPath).Msg("write csv report")
		} else {
			logger.Info().Str("path", s.CSVPath).Int("rows", len(res.Entries)).Msg("csv report written")
		}
	}
	if s.Recorder != nil {
		if err := s.Recorder.RecordRun(&recorder.RunSnapshot{
			ID:         runID,
			StartedAt:  started,
			FinishedAt: rep.FinishedAt,
			Result:     res,
		}); err != nil {
			logger.Error().Err(err).Msg("record run")
		}
	}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()
	return rep, nil
}

// Last returns the most recent successful report, or nil.
func (s *Service) Last() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Service) clock() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
