package scheduler

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/jobs"
)

const cleanupEvery = 24 * time.Hour

// StartBlacklistCleanupScheduler: hapus token_blacklist yang sudah lewat masa simpan.
// Berhenti saat ctx dibatalkan; channel yang dikembalikan ditutup setelah goroutine selesai.
func StartBlacklistCleanupScheduler(ctx context.Context, db *gorm.DB) <-chan struct{} {
	// baris disimpan TTL hari setelah expired (default 7)
	ttlDays := configs.GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 7)
	return jobs.RunEvery(ctx, cleanupEvery, func(ctx context.Context) {
		log.Println("[CLEANUP] Menjalankan pembersihan token_blacklist...")
		before := time.Now().Add(-time.Duration(ttlDays) * 24 * time.Hour)
		n, err := helperAuth.PurgeExpiredBlacklist(ctx, db, before)
		switch {
		case err != nil:
			log.Printf("[CLEANUP ERROR] Gagal hapus token: %v", err)
		case n > 0:
			log.Printf("[CLEANUP] %d token kadaluarsa dihapus", n)
		default:
			log.Println("[CLEANUP] Tidak ada token yang memenuhi syarat dihapus")
		}
	})
}
