package workers

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"chakavak/internal/core/dispatch"
)

type DispatchRunner interface {
	RunCycle(ctx context.Context) (*dispatch.CycleSummary, error)
}

// DispatchWorker اجرای دوره‌ای dispatch داخل خود پروسه.
// trigger بیرونی (مسیر /cron/dispatch) همچنان برقرار است؛ این worker
// برای deployment هایی است که cron بیرونی ندارند.
type DispatchWorker struct {
	Dispatcher DispatchRunner
	CronSpec   string
	Logger     *zap.Logger

	cron     *cron.Cron
	inFlight atomic.Bool
}

func NewDispatchWorker(dispatcher DispatchRunner, cronSpec string, logger *zap.Logger) *DispatchWorker {
	return &DispatchWorker{
		Dispatcher: dispatcher,
		CronSpec:   cronSpec,
		Logger:     logger,
	}
}

// Run شروع زمان‌بند و توقف با ctx
func (w *DispatchWorker) Run(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.CronSpec, func() {
		w.runOnce(ctx)
	})
	if err != nil {
		return err
	}

	w.Logger.Info("🚀 DispatchWorker started", zap.String("spec", w.CronSpec))
	w.cron.Start()

	<-ctx.Done()
	// cycle در حال اجرا تمام می‌شود، ولی cycle جدیدی شروع نمی‌شود
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.Logger.Info("🛑 DispatchWorker stopped")
	return nil
}

func (w *DispatchWorker) runOnce(ctx context.Context) {
	// اگر cycle قبلی هنوز تمام نشده، این نوبت skip می‌شود
	if !w.inFlight.CompareAndSwap(false, true) {
		w.Logger.Warn("⚠️ Previous dispatch cycle still running, skipping this tick")
		return
	}
	defer w.inFlight.Store(false)

	summary, err := w.Dispatcher.RunCycle(ctx)
	if err != nil {
		w.Logger.Error("❌ Dispatch cycle error", zap.Error(err))
		return
	}
	w.Logger.Info("✅ Scheduled dispatch tick finished",
		zap.Int("processed", summary.Processed),
		zap.Int("posted", summary.Posted))
}
