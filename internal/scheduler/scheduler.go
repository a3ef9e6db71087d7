package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"MarketInsights/internal/calculator"
	"MarketInsights/internal/collector"
	"MarketInsights/internal/metrics"
	"MarketInsights/internal/model"
	"MarketInsights/internal/notifier"
)

// maxParallelFetches bounds concurrent series fetches in one report.
const maxParallelFetches = 4

// Scheduler runs the periodic report and answers chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Collector    *collector.Collector
	Sender       notifier.Sender
	Metrics      *metrics.Collector
	Series       []model.SeriesInfo
	LookbackDays int
	DefaultStart time.Time
	Now          func() time.Time
	Ctx          context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sender notifier.Sender, m *metrics.Collector,
	series []model.SeriesInfo, lookbackDays int, defaultStart time.Time) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Collector:    col,
		Sender:       sender,
		Metrics:      m,
		Series:       series,
		LookbackDays: lookbackDays,
		DefaultStart: defaultStart,
		Now:          time.Now,
		Ctx:          ctx,
	}
}

// Register adds the report job for the given cron spec (with seconds field).
func (s *Scheduler) Register(reportCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunReportNow executes the report task immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")
	report := notifier.FormatDailyReport(s.Now(), s.BuildReport(s.Ctx))
	s.trySend(report)
}

// BuildReport summarizes every catalog series over the lookback window.
// Each series is fetched on its own call chain; results keep catalog order.
func (s *Scheduler) BuildReport(ctx context.Context) []notifier.SeriesResult {
	end := model.DateOnly(s.Now())
	start := end.AddDate(0, 0, -s.LookbackDays)

	results := make([]notifier.SeriesResult, len(s.Series))
	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, info := range s.Series {
		i, info := i, info
		g.Go(func() error {
			sum, err := s.summarize(ctx, info.ID, start, end)
			results[i] = notifier.SeriesResult{Info: info, Summary: sum, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Scheduler) summarize(ctx context.Context, seriesID string, start, end time.Time) (*model.MetricsSummary, error) {
	table, err := s.Collector.Collect(ctx, seriesID, start, end)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeMetrics(table, start, end)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends the bot name in groups: /series@SomeBot
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/list":
		return notifier.FormatCatalog(s.Series)
	case "/report":
		return notifier.FormatDailyReport(s.Now(), s.BuildReport(ctx))
	case "/series":
		return s.handleSeries(ctx, fields[1:])
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /list\n• /report\n• /series ID [START [END]] (dates as YYYY-MM-DD)"

func (s *Scheduler) handleSeries(ctx context.Context, args []string) string {
	if len(args) == 0 || len(args) > 3 {
		return "Usage: /series ID [START [END]]"
	}
	info := model.FindSeries(s.Series, strings.ToUpper(args[0]))
	start := s.DefaultStart
	end := model.DateOnly(s.Now())
	var err error
	if len(args) >= 2 {
		if start, err = model.ParseDate(args[1]); err != nil {
			return fmt.Sprintf("Invalid start date %q, expected YYYY-MM-DD", args[1])
		}
	}
	if len(args) == 3 {
		if end, err = model.ParseDate(args[2]); err != nil {
			return fmt.Sprintf("Invalid end date %q, expected YYYY-MM-DD", args[2])
		}
	}
	sum, err := s.summarize(ctx, info.ID, start, end)
	return notifier.FormatSeriesReport(info, sum, err)
}

func (s *Scheduler) trySend(text string) {
	outcome := "ok"
	if err := s.Sender.Send(s.Ctx, text); err != nil {
		outcome = "error"
		log.Printf("[ERROR] send report: %v", err)
	}
	if s.Metrics != nil {
		s.Metrics.ReportsSent.WithLabelValues(outcome).Inc()
	}
}
