package main

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	gradeService "schoolhub_backend/internals/features/school/grades/student_grades/service"
)

var averagesCmd = &cobra.Command{
	Use:   "averages",
	Short: "Hitung ulang rata-rata & peringkat (satu kelas, atau semua kelas aktif satu sekolah)",
	RunE:  runAverages,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Ekspor data ke file",
}

var exportGradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Ekspor lembar nilai kelas+periode ke xlsx",
	RunE:  runExportGrades,
}

func init() {
	f := averagesCmd.Flags()
	f.String("class", "", "id kelas")
	f.String("school", "", "id sekolah; semua kelas aktif di tahun ajaran periode")
	f.String("term", "", "id periode (wajib)")
	f.Int("workers", 4, "kelas yang dihitung paralel")
	_ = averagesCmd.MarkFlagRequired("term")
	_ = conf.BindPFlag("workers", f.Lookup("workers"))

	g := exportGradesCmd.Flags()
	g.String("school", "", "id sekolah (default: sekolah pemilik kelas)")
	g.String("class", "", "id kelas (wajib)")
	g.String("term", "", "id periode (wajib)")
	g.String("out", "notes.xlsx", "file tujuan")
	for _, name := range []string{"class", "term"} {
		_ = exportGradesCmd.MarkFlagRequired(name)
	}
	exportCmd.AddCommand(exportGradesCmd)
}

func uuidFlag(cmd *cobra.Command, name string) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "--%s bukan uuid", name)
	}
	return id, nil
}

type classRef struct {
	ClassID       uuid.UUID
	ClassSchoolID uuid.UUID
	ClassName     string
}

// classesForTerm: kelas aktif di tahun ajaran milik periode.
func classesForTerm(ctx context.Context, db *gorm.DB, schoolID, termID uuid.UUID) ([]classRef, error) {
	var out []classRef
	err := db.WithContext(ctx).Table("classes c").
		Select("c.class_id, c.class_school_id, c.class_name").
		Joins("JOIN terms t ON t.term_school_year_id = c.class_school_year_id").
		Where("t.term_id = ? AND c.class_school_id = ? AND c.class_status = 'active' AND c.class_deleted_at IS NULL", termID, schoolID).
		Order("c.class_name ASC").
		Scan(&out).Error
	return out, err
}

func findClass(ctx context.Context, db *gorm.DB, classID uuid.UUID) (classRef, error) {
	var c classRef
	res := db.WithContext(ctx).Table("classes").
		Select("class_id, class_school_id, class_name").
		Where("class_id = ? AND class_deleted_at IS NULL", classID).
		Scan(&c)
	if res.Error != nil {
		return c, res.Error
	}
	if res.RowsAffected == 0 {
		return c, errors.Errorf("kelas %s tidak ditemukan", classID)
	}
	return c, nil
}

type batchFailure struct {
	Class classRef
	Err   error
}

// recomputeBatch: jalankan fn per kelas dengan paralelisme terbatas.
// Satu kelas gagal tidak menghentikan kelas lain; pembatalan ctx menghentikan semuanya.
func recomputeBatch(ctx context.Context, classes []classRef, workers int, fn func(context.Context, classRef) error) (int, []batchFailure, error) {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu     sync.Mutex
		ok     int
		failed []batchFailure
	)
	for _, c := range classes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fn(gctx, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, batchFailure{Class: c, Err: err})
				return nil
			}
			ok++
			return nil
		})
	}
	err := g.Wait()
	return ok, failed, err
}

func runAverages(cmd *cobra.Command, args []string) error {
	termID, err := uuidFlag(cmd, "term")
	if err != nil {
		return err
	}
	classID, err := uuidFlag(cmd, "class")
	if err != nil {
		return err
	}
	schoolID, err := uuidFlag(cmd, "school")
	if err != nil {
		return err
	}
	if classID == uuid.Nil && schoolID == uuid.Nil {
		return errors.New("isi --class atau --school")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	conn := openDB()

	var classes []classRef
	if classID != uuid.Nil {
		c, err := findClass(ctx, conn, classID)
		if err != nil {
			return err
		}
		classes = append(classes, c)
	} else {
		if classes, err = classesForTerm(ctx, conn, schoolID, termID); err != nil {
			return err
		}
	}
	if len(classes) == 0 {
		logger.Warn("tidak ada kelas aktif untuk periode ini", zap.String("term", termID.String()))
		return nil
	}

	ok, failed, err := recomputeBatch(ctx, classes, conf.GetInt("workers"), func(ctx context.Context, c classRef) error {
		res, err := gradeService.Recompute(ctx, conn, c.ClassSchoolID, c.ClassID, termID)
		if err != nil {
			return err
		}
		logger.Debug("kelas dihitung ulang",
			zap.String("class", c.ClassName),
			zap.Int("students", res.Students),
			zap.Int("validated_grades", res.ValidatedUsed),
		)
		return nil
	})
	for _, f := range failed {
		logger.Error("gagal hitung ulang", zap.String("class", f.Class.ClassName), zap.Error(f.Err))
	}
	logger.Info("rekap rata-rata selesai", zap.Int("ok", ok), zap.Int("failed", len(failed)))
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return errors.Errorf("%d kelas gagal dihitung ulang", len(failed))
	}
	return nil
}

func runExportGrades(cmd *cobra.Command, args []string) error {
	schoolID, err := uuidFlag(cmd, "school")
	if err != nil {
		return err
	}
	classID, err := uuidFlag(cmd, "class")
	if err != nil {
		return err
	}
	termID, err := uuidFlag(cmd, "term")
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")

	ctx, cancel := commandContext(cmd)
	defer cancel()
	conn := openDB()
	if schoolID == uuid.Nil {
		c, err := findClass(ctx, conn, classID)
		if err != nil {
			return err
		}
		schoolID = c.ClassSchoolID
	}
	gs, err := gradeService.LoadGradeSheet(ctx, conn, schoolID, classID, termID)
	if err != nil {
		return err
	}
	f, err := gradeService.BuildGradeSheet(gs)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(out); err != nil {
		return errors.Wrapf(err, "gagal menulis %s", out)
	}
	logger.Info("lembar nilai diekspor",
		zap.String("class", gs.ClassName),
		zap.String("term", gs.TermName),
		zap.Int("students", len(gs.Students)),
		zap.String("file", out),
	)
	return nil
}
