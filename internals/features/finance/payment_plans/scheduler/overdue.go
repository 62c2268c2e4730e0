package scheduler

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/finance/payment_plans/service"
	"schoolhub_backend/internals/helpers/dbtime"
	"schoolhub_backend/internals/helpers/jobs"
)

// StartOverdueScheduler: tandai cicilan lewat jatuh tempo sebagai overdue.
// Interval default 24 jam (OVERDUE_CHECK_HOURS).
func StartOverdueScheduler(ctx context.Context, db *gorm.DB) <-chan struct{} {
	every := time.Duration(configs.GetEnvInt("OVERDUE_CHECK_HOURS", 24)) * time.Hour
	if every <= 0 {
		every = 24 * time.Hour
	}
	return jobs.RunEvery(ctx, every, overdueJob(db))
}

func overdueJob(db *gorm.DB) func(context.Context) {
	return func(ctx context.Context) {
		if db == nil {
			return
		}
		n, err := service.MarkOverdue(ctx, db, nil, dbtime.Today())
		switch {
		case err != nil && ctx.Err() == nil:
			log.Printf("[OVERDUE ERROR] Gagal update cicilan: %v", err)
		case n > 0:
			log.Printf("[OVERDUE] %d cicilan ditandai overdue", n)
		}
	}
}
