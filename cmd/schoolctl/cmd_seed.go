package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schoolhub_backend/internals/seeds"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed role sistem, katalog (jenjang/tingkat/seri/mapel), dan template biaya dari yaml",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().String("file", "internals/seeds/data/seed.yaml", "path file seed yaml")
	_ = conf.BindPFlag("seed.file", seedCmd.Flags().Lookup("file"))
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := conf.GetString("seed.file")
	f, err := seeds.LoadFile(path)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := seeds.Run(ctx, openDB(), f)
	if err != nil {
		return err
	}
	logger.Info("seed selesai",
		zap.String("file", path),
		zap.Int("roles", res.Roles),
		zap.Int("levels", res.Catalogs.Levels),
		zap.Int("grades", res.Catalogs.Grades),
		zap.Int("subjects", res.Catalogs.Subjects),
		zap.Int("fee_type_templates", res.Templates),
	)
	if res.OwnerPassword != "" {
		// satu-satunya kesempatan melihat password sementara
		fmt.Fprintf(cmd.OutOrStdout(), "Owner %s dibuat, password sementara: %s\n", f.Owner.Email, res.OwnerPassword)
	}
	return nil
}
