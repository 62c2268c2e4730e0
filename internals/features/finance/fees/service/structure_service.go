package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/finance/fees/dto"
	"schoolhub_backend/internals/features/finance/fees/model"
	helper "schoolhub_backend/internals/helpers"
)

type StructureFilter struct {
	SchoolYearID *uuid.UUID
	GradeID      *uuid.UUID
	FeeTypeID    *uuid.UUID
}

func structureItems(tx *gorm.DB) *gorm.DB {
	return tx.Table("fee_structures fs").
		Select("fs.*, ft.fee_type_code, ft.fee_type_name, g.grade_name, sr.serie_name AS series_name").
		Joins("JOIN fee_types ft ON ft.fee_type_id = fs.fee_structure_fee_type_id AND ft.fee_type_deleted_at IS NULL").
		Joins("LEFT JOIN grades g ON g.grade_id = fs.fee_structure_grade_id").
		Joins("LEFT JOIN series sr ON sr.serie_id = fs.fee_structure_series_id")
}

func ListStructures(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f StructureFilter) ([]dto.FeeStructureItem, error) {
	q := structureItems(db.WithContext(ctx)).Where("fs.fee_structure_school_id = ?", schoolID)
	if f.SchoolYearID != nil {
		q = q.Where("fs.fee_structure_school_year_id = ?", *f.SchoolYearID)
	}
	if f.GradeID != nil {
		q = q.Where("fs.fee_structure_grade_id = ?", *f.GradeID)
	}
	if f.FeeTypeID != nil {
		q = q.Where("fs.fee_structure_fee_type_id = ?", *f.FeeTypeID)
	}
	rows := []dto.FeeStructureItem{}
	err := q.Order("g.grade_order ASC NULLS FIRST, ft.fee_type_display_order ASC").Scan(&rows).Error
	return rows, err
}

func loadStructure(tx *gorm.DB, schoolID, id uuid.UUID) (model.FeeStructureModel, error) {
	var m model.FeeStructureModel
	err := tx.Where("fee_structure_id = ? AND fee_structure_school_id = ?", id, schoolID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "struktur biaya tidak ditemukan")
	}
	return m, err
}

// kombinasi jenis biaya + tahun + tingkat + seri harus unik (NULL dianggap sama)
func ensureUniqueStructure(tx *gorm.DB, m model.FeeStructureModel) error {
	q := tx.Model(&model.FeeStructureModel{}).
		Where("fee_structure_school_id = ? AND fee_structure_fee_type_id = ? AND fee_structure_school_year_id = ?",
			m.FeeStructureSchoolID, m.FeeStructureFeeTypeID, m.FeeStructureSchoolYearID).
		Where("fee_structure_grade_id IS NOT DISTINCT FROM ?", m.FeeStructureGradeID).
		Where("fee_structure_series_id IS NOT DISTINCT FROM ?", m.FeeStructureSeriesID)
	if m.FeeStructureID != uuid.Nil {
		q = q.Where("fee_structure_id <> ?", m.FeeStructureID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrap(helper.ErrConflict, "struktur biaya untuk kombinasi ini sudah ada")
	}
	return nil
}

func createStructure(tx *gorm.DB, m *model.FeeStructureModel) error {
	if _, err := loadFeeType(tx, m.FeeStructureSchoolID, m.FeeStructureFeeTypeID); err != nil {
		return err
	}
	if err := ensureUniqueStructure(tx, *m); err != nil {
		return err
	}
	return tx.Create(m).Error
}

func CreateStructure(ctx context.Context, db *gorm.DB, m model.FeeStructureModel) (model.FeeStructureModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createStructure(tx, &m)
	})
	return m, err
}

// BulkCreateStructures: semua atau tidak sama sekali
func BulkCreateStructures(ctx context.Context, db *gorm.DB, rows []model.FeeStructureModel) ([]model.FeeStructureModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := createStructure(tx, &rows[i]); err != nil {
				return errors.Wrapf(err, "baris %d", i+1)
			}
		}
		return nil
	})
	return rows, err
}

func UpdateStructure(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, u map[string]any) (model.FeeStructureModel, error) {
	tx := db.WithContext(ctx)
	m, err := loadStructure(tx, schoolID, id)
	if err != nil {
		return m, err
	}
	if len(u) > 0 {
		if err := tx.Model(&m).Updates(u).Error; err != nil {
			return m, err
		}
	}
	return loadStructure(tx, schoolID, id)
}

// DeleteStructure: ditolak kalau sudah ada tagihan siswa
func DeleteStructure(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	tx := db.WithContext(ctx)
	m, err := loadStructure(tx, schoolID, id)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&model.StudentFeeModel{}).Where("student_fee_fee_structure_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrap(helper.ErrConflict, "struktur biaya sudah ditagihkan ke siswa")
	}
	return tx.Delete(&m).Error
}

/* =========================
   Konteks siswa
========================= */

type studentPlacement struct {
	EnrollmentID uuid.UUID
	StudentID    uuid.UUID
	GradeID      *uuid.UUID
	SeriesID     *uuid.UUID
	ClassName    string
}

func placementQuery(tx *gorm.DB, schoolID, yearID uuid.UUID) *gorm.DB {
	return tx.Table("enrollments e").
		Select(`e.enrollment_id, e.enrollment_student_id AS student_id,
			c.class_grade_id AS grade_id, c.class_series_id AS series_id, c.class_name`).
		Joins("JOIN classes c ON c.class_id = e.enrollment_class_id").
		Where("e.enrollment_school_id = ? AND e.enrollment_school_year_id = ? AND e.enrollment_status = 'confirmed'",
			schoolID, yearID)
}

func studentPlacementFor(tx *gorm.DB, schoolID, studentID, yearID uuid.UUID) (studentPlacement, error) {
	var p studentPlacement
	res := placementQuery(tx, schoolID, yearID).
		Where("e.enrollment_student_id = ?", studentID).
		Limit(1).Scan(&p)
	if res.Error != nil {
		return p, res.Error
	}
	if res.RowsAffected == 0 {
		return p, errors.Wrap(helper.ErrBadRequest, "siswa belum terdaftar (confirmed) di tahun ajaran ini")
	}
	return p, nil
}

// confirmedCounts: jumlah enrollment confirmed per siswa (semua tahun). ≤ 1 = siswa baru.
func confirmedCounts(tx *gorm.DB, studentIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		StudentID uuid.UUID
		N         int
	}
	if err := tx.Table("enrollments").
		Select("enrollment_student_id AS student_id, COUNT(*) AS n").
		Where("enrollment_student_id IN ? AND enrollment_status = 'confirmed'", studentIDs).
		Group("enrollment_student_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.StudentID] = r.N
	}
	return out, nil
}

func IsNewStudent(confirmed int) bool { return confirmed <= 1 }

type feeLineRow struct {
	FeeStructureID   uuid.UUID
	FeeTypeID        uuid.UUID
	FeeTypeCode      string
	FeeTypeName      string
	FeeTypeCategory  string
	Amount           float64
	NewStudentAmount *float64
	GradeID          *uuid.UUID
	SeriesID         *uuid.UUID
}

func (r feeLineRow) line() FeeLine {
	return FeeLine{
		FeeStructureID:   r.FeeStructureID,
		FeeTypeID:        r.FeeTypeID,
		FeeTypeCode:      r.FeeTypeCode,
		FeeTypeName:      r.FeeTypeName,
		FeeTypeCategory:  r.FeeTypeCategory,
		Amount:           r.Amount,
		NewStudentAmount: r.NewStudentAmount,
	}
}

// MatchesPlacement: tingkat sama (atau struktur tanpa tingkat); seri harus sama
// kalau kelas punya seri, kalau tidak struktur harus tanpa seri.
func MatchesPlacement(structGrade, structSeries, grade, series *uuid.UUID) bool {
	if structGrade != nil && (grade == nil || *structGrade != *grade) {
		return false
	}
	if series != nil {
		return structSeries != nil && *structSeries == *series
	}
	return structSeries == nil
}

func yearFeeLines(tx *gorm.DB, schoolID, yearID uuid.UUID) ([]feeLineRow, error) {
	rows := []feeLineRow{}
	err := tx.Table("fee_structures fs").
		Select(`fs.fee_structure_id, ft.fee_type_id, ft.fee_type_code, ft.fee_type_name, ft.fee_type_category,
			fs.fee_structure_amount AS amount, fs.fee_structure_new_student_amount AS new_student_amount,
			fs.fee_structure_grade_id AS grade_id, fs.fee_structure_series_id AS series_id`).
		Joins("JOIN fee_types ft ON ft.fee_type_id = fs.fee_structure_fee_type_id AND ft.fee_type_deleted_at IS NULL").
		Where("fs.fee_structure_school_id = ? AND fs.fee_structure_school_year_id = ? AND ft.fee_type_status = 'active'",
			schoolID, yearID).
		Order("ft.fee_type_display_order ASC").
		Scan(&rows).Error
	return rows, err
}

func linesFor(all []feeLineRow, p studentPlacement) []FeeLine {
	out := []FeeLine{}
	for _, r := range all {
		if MatchesPlacement(r.GradeID, r.SeriesID, p.GradeID, p.SeriesID) {
			out = append(out, r.line())
		}
	}
	return out
}

// StructuresForStudent: struktur biaya yang berlaku untuk penempatan siswa di tahun itu
func StructuresForStudent(ctx context.Context, db *gorm.DB, schoolID, studentID, yearID uuid.UUID) ([]dto.FeeStructureItem, error) {
	tx := db.WithContext(ctx)
	p, err := studentPlacementFor(tx, schoolID, studentID, yearID)
	if err != nil {
		return nil, err
	}
	all, err := ListStructures(ctx, db, schoolID, StructureFilter{SchoolYearID: &yearID})
	if err != nil {
		return nil, err
	}
	out := []dto.FeeStructureItem{}
	for _, s := range all {
		if MatchesPlacement(s.FeeStructureGradeID, s.FeeStructureSeriesID, p.GradeID, p.SeriesID) {
			out = append(out, s)
		}
	}
	return out, nil
}
