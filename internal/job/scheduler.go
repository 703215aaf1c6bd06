// Package job runs recurring work on cron schedules: the scan cycle and,
// when reporting is enabled, the daily digest email.
package job

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
)

// Trigger starts one scan cycle. *scanner.Scanner is the production
// implementation.
type Trigger interface {
	Scan(ctx context.Context) (*domain.ScanReport, error)
}

// Reporter sends the digest email.
type Reporter interface {
	SendDigest(ctx context.Context) error
}

// Scheduler drives the cron entries. Overlapping scan runs are skipped, not
// queued: a cycle that outlasts its interval simply absorbs the next tick.
type Scheduler struct {
	logger  logger.Interface
	cron    *cron.Cron
	parser  cron.Parser
	trigger Trigger

	scanRunning atomic.Bool
}

// New creates a scheduler with the scan cycle registered on the given
// 5-field cron schedule.
func New(schedule string, trigger Trigger, log logger.Interface) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid scan schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		logger:  log.WithComponent("scheduler"),
		cron:    cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		parser:  parser,
		trigger: trigger,
	}

	if _, err := s.cron.AddFunc(schedule, s.runScan); err != nil {
		return nil, fmt.Errorf("scheduling scan: %w", err)
	}

	s.logger.Info("scan schedule registered", "schedule", schedule)

	return s, nil
}

// ScheduleDigest registers the digest email on its own cron schedule.
func (s *Scheduler) ScheduleDigest(schedule string, reporter Reporter) error {
	if _, err := s.parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if sendErr := reporter.SendDigest(context.Background()); sendErr != nil {
			s.logger.Error("digest send failed", "error", sendErr.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling digest: %w", err)
	}

	s.logger.Info("digest schedule registered", "schedule", schedule)

	return nil
}

// Start begins firing scheduled entries.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts scheduling and waits for in-flight entries to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runScan() {
	if !s.scanRunning.CompareAndSwap(false, true) {
		s.logger.Warn("previous scan still running, skipping this tick")
		return
	}
	defer s.scanRunning.Store(false)

	report, err := s.trigger.Scan(context.Background())
	if err != nil {
		s.logger.Error("scheduled scan failed", "error", err.Error())
		return
	}

	s.logger.Info("scheduled scan finished",
		"cycle_id", report.CycleID,
		"new", report.TotalNew(),
		"updated", report.TotalUpdated(),
		"expired", report.Expired)
}
