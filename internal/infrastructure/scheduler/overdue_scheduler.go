package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// SweepService runs the daily overdue detection over all active loans
type SweepService interface {
	SweepOverdueLoans(ctx context.Context, asOf time.Time) (int, error)
}

// OverdueSchedulerConfig holds configuration for the cron-based overdue sweep
type OverdueSchedulerConfig struct {
	// Enabled indicates if the cron scheduler is enabled
	Enabled bool
	// CronHour is the hour (0-23) to run the daily sweep
	CronHour int
	// CronMinute is the minute (0-59) to run the daily sweep
	CronMinute int
	// DailyCronSchedule is the cron expression (parsed to extract hour/minute)
	DailyCronSchedule string
	// JobTimeout is the maximum time a sweep run can take
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed sweeps
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultOverdueSchedulerConfig returns default sweep scheduler configuration.
// Defaults to running at 1:00 AM daily.
func DefaultOverdueSchedulerConfig() OverdueSchedulerConfig {
	return OverdueSchedulerConfig{
		Enabled:           true,
		CronHour:          1,
		CronMinute:        0,
		DailyCronSchedule: "0 1 * * *",
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract hour and minute.
// Returns defaults (1:00) if parsing fails or the expression is empty.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 1
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 1); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 1, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 1, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// SweepJobRecord represents a record of a sweep execution
type SweepJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	AsOf        time.Time  `gorm:"column:as_of;not null"`
	Marked      int        `gorm:"column:marked_count"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (SweepJobRecord) TableName() string {
	return "overdue_sweep_jobs"
}

// SweepJobRepository handles persistence of sweep job records
type SweepJobRepository struct {
	db *gorm.DB
}

// NewSweepJobRepository creates a new SweepJobRepository
func NewSweepJobRepository(db *gorm.DB) *SweepJobRepository {
	return &SweepJobRepository{db: db}
}

// RecordJobStart records the start of a sweep execution
func (r *SweepJobRepository) RecordJobStart(ctx context.Context, asOf time.Time) (uuid.UUID, error) {
	now := time.Now()
	record := &SweepJobRecord{
		ID:        uuid.New(),
		AsOf:      asOf,
		Status:    string(JobStatusRunning),
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a sweep
func (r *SweepJobRepository) RecordJobComplete(ctx context.Context, jobID uuid.UUID, marked int, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).
		Model(&SweepJobRecord{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"marked_count":    marked,
			"last_run_status": status,
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJob returns the most recent sweep record
func (r *SweepJobRepository) GetLastJob(ctx context.Context) (*SweepJobRecord, error) {
	var record SweepJobRecord
	if err := r.db.WithContext(ctx).Order("last_run_at DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// OverdueScheduler runs the daily overdue sweep on a cron schedule
type OverdueScheduler struct {
	config  OverdueSchedulerConfig
	sweeper SweepService
	jobRepo *SweepJobRepository
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewOverdueScheduler creates a new cron-based overdue sweep scheduler
func NewOverdueScheduler(
	config OverdueSchedulerConfig,
	sweeper SweepService,
	jobRepo *SweepJobRepository,
	logger *zap.Logger,
) *OverdueScheduler {
	if config.DailyCronSchedule != "" {
		if hour, minute, err := ParseCronSchedule(config.DailyCronSchedule); err == nil {
			config.CronHour = hour
			config.CronMinute = minute
		}
	}

	return &OverdueScheduler{
		config:  config,
		sweeper: sweeper,
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// Start starts the cron scheduler
func (s *OverdueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *OverdueScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow triggers a sweep immediately, outside the cron schedule
func (s *OverdueScheduler) RunNow(ctx context.Context) {
	s.runSweep(ctx)
}

// NextRunAt returns the next scheduled run time
func (s *OverdueScheduler) NextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// cronLoop runs the main cron loop
func (s *OverdueScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runSweep(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the sweep should run at the given time
func (s *OverdueScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

// calculateNextRunTime calculates the next run time
func (s *OverdueScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runSweep executes one sweep with retries
func (s *OverdueScheduler) runSweep(ctx context.Context) {
	asOf := time.Now().UTC()

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	jobID, err := s.jobRepo.RecordJobStart(runCtx, asOf)
	if err != nil {
		s.logger.Error("Failed to record sweep start", zap.Error(err))
	}

	var marked int
	var sweepErr error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-runCtx.Done():
				sweepErr = runCtx.Err()
			case <-time.After(s.config.RetryDelay):
			}
			if sweepErr != nil {
				break
			}
		}

		marked, sweepErr = s.sweeper.SweepOverdueLoans(runCtx, asOf)
		if sweepErr == nil {
			break
		}
		s.logger.Warn("Overdue sweep attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(sweepErr),
		)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	if jobID != uuid.Nil {
		errMsg := ""
		if sweepErr != nil {
			errMsg = sweepErr.Error()
		}
		if err := s.jobRepo.RecordJobComplete(runCtx, jobID, marked, sweepErr == nil, errMsg); err != nil {
			s.logger.Error("Failed to record sweep completion", zap.Error(err))
		}
	}

	if sweepErr != nil {
		s.logger.Error("Overdue sweep failed", zap.Error(sweepErr))
		return
	}
	s.logger.Info("Overdue sweep completed",
		zap.Int("marked", marked),
		zap.Time("as_of", asOf),
	)
}
