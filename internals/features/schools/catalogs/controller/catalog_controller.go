package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/schools/catalogs/dto"
	"schoolhub_backend/internals/features/schools/catalogs/model"
	helper "schoolhub_backend/internals/helpers"
)

type CatalogController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewCatalogController(db *gorm.DB, v *validator.Validate) *CatalogController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &CatalogController{DB: db, Validate: v}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

type catalogRequest[M any] interface {
	ToModel() M
	Updates() map[string]any
}

func createFrom[M any, R catalogRequest[M]](ctl *CatalogController, c *fiber.Ctx, label string) error {
	var req R
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := req.ToModel()
	if err := ctl.DB.WithContext(reqCtx(c)).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode "+label+" sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat "+label)
	}
	return helper.JsonCreated(c, strings.ToUpper(label[:1])+label[1:]+" dibuat", m)
}

func updateByID[M any, R catalogRequest[M]](ctl *CatalogController, c *fiber.Ctx, idCol, label string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req R
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	var m M
	db := ctl.DB.WithContext(reqCtx(c))
	if err := db.First(&m, idCol+" = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, label+" tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil "+label)
	}
	if err := db.Model(&m).Updates(req.Updates()).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode "+label+" sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui "+label)
	}
	_ = db.First(&m, idCol+" = ?", id).Error
	return helper.JsonUpdated(c, label+" diperbarui", m)
}

// usedBy: "tabel.kolom" yang mereferensikan id (hapus ditolak kalau masih dipakai)
func deleteByID[M any](ctl *CatalogController, c *fiber.Ctx, idCol, label string, usedBy ...string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	db := ctl.DB.WithContext(reqCtx(c))
	for _, ref := range usedBy {
		parts := strings.SplitN(ref, ".", 2)
		var n int64
		if err := db.Table(parts[0]).Where(parts[1]+" = ?", id).Count(&n).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa relasi "+label)
		}
		if n > 0 {
			return helper.JsonError(c, fiber.StatusConflict, label+" masih dipakai di "+parts[0])
		}
	}
	var m M
	res := db.Where(idCol+" = ?", id).Delete(&m)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus "+label)
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, label+" tidak ditemukan")
	}
	return helper.JsonDeleted(c, label+" dihapus", fiber.Map{"id": id})
}

func parseOptionalUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
	}
	return &id, nil
}

/* ============================ PUBLIC READ ============================ */

// GET /api/public/catalogs/levels
func (ctl *CatalogController) ListLevels(c *fiber.Ctx) error {
	var rows []model.EducationLevelModel
	if err := ctl.DB.WithContext(reqCtx(c)).Order("education_level_order ASC, education_level_name ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil jenjang")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /api/public/catalogs/tracks?education_level_id=
func (ctl *CatalogController) ListTracks(c *fiber.Ctx) error {
	levelID, err := parseOptionalUUID(c, "education_level_id")
	if err != nil {
		return err
	}
	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.TrackModel{})
	if levelID != nil {
		q = q.Where("track_education_level_id = ?", *levelID)
	}
	var rows []model.TrackModel
	if err := q.Order("track_name ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil track")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /api/public/catalogs/grades?track_id=
func (ctl *CatalogController) ListGrades(c *fiber.Ctx) error {
	trackID, err := parseOptionalUUID(c, "track_id")
	if err != nil {
		return err
	}
	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.GradeModel{})
	if trackID != nil {
		q = q.Where("grade_track_id = ?", *trackID)
	}
	var rows []model.GradeModel
	if err := q.Order("grade_order ASC, grade_name ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tingkat")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /api/public/catalogs/series?track_id=
func (ctl *CatalogController) ListSeries(c *fiber.Ctx) error {
	trackID, err := parseOptionalUUID(c, "track_id")
	if err != nil {
		return err
	}
	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.SerieModel{})
	if trackID != nil {
		q = q.Where("serie_track_id = ?", *trackID)
	}
	var rows []model.SerieModel
	if err := q.Order("serie_code ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil série")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /api/public/catalogs/subjects?category=&search=
func (ctl *CatalogController) ListSubjects(c *fiber.Ctx) error {
	q := ctl.DB.WithContext(reqCtx(c)).Model(&model.SubjectModel{})
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		q = q.Where("subject_category = ?", cat)
	}
	if s := strings.TrimSpace(c.Query("search")); s != "" {
		q = q.Where("LOWER(subject_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var rows []model.SubjectModel
	if err := q.Order("subject_name ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil mata pelajaran")
	}
	return helper.JsonOK(c, "OK", rows)
}

// GET /api/o/catalogs/stats
func (ctl *CatalogController) Stats(c *fiber.Ctx) error {
	db := ctl.DB.WithContext(reqCtx(c))
	var st dto.CatalogStats
	counts := []struct {
		m   any
		dst *int64
	}{
		{&model.EducationLevelModel{}, &st.EducationLevels},
		{&model.TrackModel{}, &st.Tracks},
		{&model.GradeModel{}, &st.Grades},
		{&model.SerieModel{}, &st.Series},
		{&model.SubjectModel{}, &st.Subjects},
	}
	for _, it := range counts {
		if err := db.Model(it.m).Count(it.dst).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung katalog")
		}
	}
	return helper.JsonOK(c, "OK", st)
}

/* ============================ OWNER WRITE ============================ */

func (ctl *CatalogController) CreateLevel(c *fiber.Ctx) error {
	return createFrom[model.EducationLevelModel, dto.EducationLevelRequest](ctl, c, "jenjang")
}
func (ctl *CatalogController) UpdateLevel(c *fiber.Ctx) error {
	return updateByID[model.EducationLevelModel, dto.EducationLevelRequest](ctl, c, "education_level_id", "jenjang")
}
func (ctl *CatalogController) DeleteLevel(c *fiber.Ctx) error {
	return deleteByID[model.EducationLevelModel](ctl, c, "education_level_id", "jenjang",
		"tracks.track_education_level_id")
}

func (ctl *CatalogController) CreateTrack(c *fiber.Ctx) error {
	return createFrom[model.TrackModel, dto.TrackRequest](ctl, c, "track")
}
func (ctl *CatalogController) UpdateTrack(c *fiber.Ctx) error {
	return updateByID[model.TrackModel, dto.TrackRequest](ctl, c, "track_id", "track")
}
func (ctl *CatalogController) DeleteTrack(c *fiber.Ctx) error {
	return deleteByID[model.TrackModel](ctl, c, "track_id", "track",
		"grades.grade_track_id", "series.serie_track_id")
}

func (ctl *CatalogController) CreateGrade(c *fiber.Ctx) error {
	return createFrom[model.GradeModel, dto.GradeRequest](ctl, c, "tingkat")
}
func (ctl *CatalogController) UpdateGrade(c *fiber.Ctx) error {
	return updateByID[model.GradeModel, dto.GradeRequest](ctl, c, "grade_id", "tingkat")
}
func (ctl *CatalogController) DeleteGrade(c *fiber.Ctx) error {
	return deleteByID[model.GradeModel](ctl, c, "grade_id", "tingkat", "classes.class_grade_id")
}

// PUT /api/o/catalogs/grades/reorder
func (ctl *CatalogController) ReorderGrades(c *fiber.Ctx) error {
	var req dto.ReorderGradesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	err := ctl.DB.WithContext(reqCtx(c)).Transaction(func(tx *gorm.DB) error {
		for _, it := range req.Items {
			if err := tx.Model(&model.GradeModel{}).
				Where("grade_id = ?", it.ID).
				Update("grade_order", it.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengurutkan tingkat")
	}
	return helper.JsonUpdated(c, "Urutan tingkat diperbarui", fiber.Map{"updated": len(req.Items)})
}

func (ctl *CatalogController) CreateSerie(c *fiber.Ctx) error {
	return createFrom[model.SerieModel, dto.SerieRequest](ctl, c, "série")
}
func (ctl *CatalogController) UpdateSerie(c *fiber.Ctx) error {
	return updateByID[model.SerieModel, dto.SerieRequest](ctl, c, "serie_id", "série")
}
func (ctl *CatalogController) DeleteSerie(c *fiber.Ctx) error {
	return deleteByID[model.SerieModel](ctl, c, "serie_id", "série", "classes.class_series_id")
}

func (ctl *CatalogController) CreateSubject(c *fiber.Ctx) error {
	return createFrom[model.SubjectModel, dto.SubjectRequest](ctl, c, "mata pelajaran")
}
func (ctl *CatalogController) UpdateSubject(c *fiber.Ctx) error {
	return updateByID[model.SubjectModel, dto.SubjectRequest](ctl, c, "subject_id", "mata pelajaran")
}
func (ctl *CatalogController) DeleteSubject(c *fiber.Ctx) error {
	return deleteByID[model.SubjectModel](ctl, c, "subject_id", "mata pelajaran", "class_subjects.class_subject_subject_id")
}
