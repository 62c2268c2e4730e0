package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	planService "schoolhub_backend/internals/features/finance/payment_plans/service"
	helperAuth "schoolhub_backend/internals/helpers/auth"
	"schoolhub_backend/internals/helpers/dbtime"
)

// Versi manual dari job yang dijalankan scheduler server.

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Tandai cicilan yang lewat jatuh tempo (semua sekolah kalau --school kosong)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var school *uuid.UUID
		if raw, _ := cmd.Flags().GetString("school"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return err
			}
			school = &id
		}
		today := dbtime.Today()
		if raw, _ := cmd.Flags().GetString("date"); raw != "" {
			d, err := dbtime.ParseDate(raw)
			if err != nil {
				return err
			}
			today = d
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		n, err := planService.MarkOverdue(ctx, openDB(), school, today)
		if err != nil {
			return err
		}
		logger.Info("cicilan overdue diperbarui", zap.Int64("rows", n), zap.String("date", today.Format(dbtime.DateLayout)))
		return nil
	},
}

var purgeTokensCmd = &cobra.Command{
	Use:   "purge-tokens",
	Short: "Hapus token_blacklist yang sudah kadaluarsa",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		ctx, cancel := commandContext(cmd)
		defer cancel()
		before := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		n, err := helperAuth.PurgeExpiredBlacklist(ctx, openDB(), before)
		if err != nil {
			return err
		}
		logger.Info("token blacklist dibersihkan", zap.Int64("rows", n), zap.Time("before", before))
		return nil
	},
}

func init() {
	overdueCmd.Flags().String("school", "", "batasi ke satu sekolah (uuid)")
	overdueCmd.Flags().String("date", "", "tanggal acuan YYYY-MM-DD (default hari ini)")
	purgeTokensCmd.Flags().Int("days", 7, "simpan baris sekian hari setelah expired")
}
