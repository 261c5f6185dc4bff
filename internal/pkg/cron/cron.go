package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/internal/pkg/logger"
)

// DefaultSchedule 每天 00:10（业务时区）清理
const DefaultSchedule = "10 0 * * *"

// sweepTimeout 单次清理的超时
const sweepTimeout = 10 * time.Minute

// Sweeper 删除过期的用量计数
type Sweeper interface {
	SweepBefore(ctx context.Context, retentionDays int, dryRun bool) (int64, error)
}

type Service struct {
	sweeper       Sweeper
	retentionDays int
	schedule      string
	cron          *cron.Cron
}

func NewService(sweeper Sweeper, retentionDays int, schedule string, loc *time.Location) *Service {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sweeper:       sweeper,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(cron.WithLocation(loc)),
	}
}

// Start 注册并启动定时任务，retentionDays <= 0 时不注册清理任务
func (s *Service) Start() error {
	if s.retentionDays > 0 {
		if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
			return err
		}
	}
	s.cron.Start()
	logger.L.Info("cron service started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
	)
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	logger.L.Info("cron service stopped")
}

func (s *Service) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.RunNow(ctx, false); err != nil {
		logger.L.Error("usage sweep failed", zap.Error(err))
	}
}

// RunNow 立即执行一次清理（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context, dryRun bool) (int64, error) {
	start := time.Now()
	rows, err := s.sweeper.SweepBefore(ctx, s.retentionDays, dryRun)
	if err != nil {
		return 0, err
	}
	logger.L.Info("usage sweep completed",
		zap.Int64("rows", rows),
		zap.Bool("dry_run", dryRun),
		zap.Duration("took", time.Since(start)),
	)
	return rows, nil
}
