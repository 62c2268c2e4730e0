package jobs

import (
	"context"
	"time"
)

// RunEvery: jalankan job sekali di awal lalu tiap interval, sampai ctx dibatalkan.
// Channel yang dikembalikan ditutup setelah goroutine selesai.
func RunEvery(ctx context.Context, every time.Duration, job func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			job(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}
