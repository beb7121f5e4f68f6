package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"PrebloomScout/internal/notifier"
	"PrebloomScout/internal/scout"
)

// Scanner runs scans and remembers the last report.
type Scanner interface {
	Scan(ctx context.Context) (*scout.Report, error)
	Last() *scout.Report
}

// Sender delivers chat messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the scan cron task and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  Scanner
	Notifier Sender // nil disables notifications
	TopN     int
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc Scanner, sender Sender, topN int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Notifier: sender,
		TopN:     topN,
		Ctx:      ctx,
	}
}

// RegisterAll registers the scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the scan task immediately.
func (s *Scheduler) RunNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	log.Info().Msg("running scan task")
	rep, err := s.Scanner.Scan(s.Ctx)
	if err != nil {
		if errors.Is(err, scout.ErrScanRunning) {
			log.Warn().Msg("scan skipped, previous run still in progress")
			return
		}
		log.Error().Err(err).Msg("scan failed")
		s.trySend(fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatRankedReport(rep.Result, s.TopN))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// "/top@SomeBot 5" addresses a specific bot in group chats.
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/scan":
		go s.scanTask()
		return "🔎 Scan started"
	case "/top":
		last := s.Scanner.Last()
		if last == nil {
			return "No scan has completed yet"
		}
		n := s.TopN
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		return notifier.FormatRankedReport(last.Result, n)
	case "/status":
		last := s.Scanner.Last()
		if last == nil {
			return "No scan has completed yet"
		}
		return notifier.FormatRunStats(last.Result, last.FinishedAt)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /scan - run a scan now\n• /top [n] - show the last ranking\n• /status - show last scan statistics"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
