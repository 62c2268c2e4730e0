package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/constants"
	"schoolhub_backend/internals/features/hr/teachers/dto"
	"schoolhub_backend/internals/features/hr/teachers/model"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	userService "schoolhub_backend/internals/features/users/user/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/mailer"
)

type TeacherService struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func NewTeacherService(db *gorm.DB, m mailer.Mailer) *TeacherService {
	if m == nil {
		m = mailer.New()
	}
	return &TeacherService{DB: db, Mailer: m}
}

func LoadTeacher(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID) (model.TeacherModel, error) {
	var m model.TeacherModel
	err := db.WithContext(ctx).
		Where("teacher_id = ? AND teacher_school_id = ?", teacherID, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "guru tidak ditemukan")
	}
	return m, err
}

// Create: user (lama/baru) + profil guru + role teacher + daftar mapel, satu transaksi.
func (s *TeacherService) Create(ctx context.Context, schoolID uuid.UUID, req dto.CreateTeacherRequest, by *uuid.UUID) (dto.CreateTeacherResponse, error) {
	var (
		resp       dto.CreateTeacherResponse
		tempPwd    string
		schoolName string
		fullName   string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("schools").Select("school_name").
			Where("school_id = ? AND school_deleted_at IS NULL", schoolID).
			Scan(&schoolName).Error; err != nil {
			return err
		}

		var userID uuid.UUID
		if req.UserID != nil {
			var n int64
			if err := tx.Table("users").Where("id = ? AND deleted_at IS NULL", *req.UserID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return errors.Wrap(helper.ErrNotFound, "user tidak ditemukan")
			}
			userID = *req.UserID
		} else {
			u, pwd, err := userService.ProvisionUser(tx, userService.NewAccount{
				Email:    req.Email,
				FullName: req.FullName,
				Phone:    req.Phone,
			})
			if err != nil {
				return err
			}
			userID, tempPwd, fullName = u.ID, pwd, u.DisplayName()
			resp.Email = u.Email
		}

		t := model.TeacherModel{
			TeacherSchoolID:       schoolID,
			TeacherUserID:         userID,
			TeacherSpecialization: req.Specialization,
			TeacherHireDate:       dto.ParseHireDate(req.HireDate),
			TeacherStatus:         req.Status,
		}
		if t.TeacherStatus == "" {
			t.TeacherStatus = model.EmploymentActive
		}
		if err := tx.Create(&t).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return errors.Wrap(helper.ErrConflict, "user sudah terdaftar sebagai guru di sekolah ini")
			}
			return err
		}
		if err := roleService.GrantRole(ctx, tx, userID, constants.RoleTeacher, &schoolID, by); err != nil {
			return err
		}
		if len(req.SubjectIDs) > 0 {
			if err := addSubjects(tx, schoolID, t.TeacherID, req.SubjectIDs); err != nil {
				return err
			}
		}
		resp.TeacherID, resp.UserID = t.TeacherID, userID
		return nil
	})
	if err != nil {
		return resp, err
	}

	if tempPwd != "" {
		resp.NewUser = true
		msg := mailer.WelcomeStaff(configs.AppName, schoolName, fullName, resp.Email, tempPwd, "enseignant")
		if err := s.Mailer.Send(ctx, msg); err != nil {
			log.Printf("[MAIL] ❌ gagal kirim welcome guru ke %s: %v", resp.Email, err)
		} else {
			resp.EmailSent = true
		}
	}
	return resp, nil
}

func addSubjects(tx *gorm.DB, schoolID, teacherID uuid.UUID, subjectIDs []uuid.UUID) error {
	rows := make([]model.TeacherSubjectModel, 0, len(subjectIDs))
	for _, sid := range subjectIDs {
		rows = append(rows, model.TeacherSubjectModel{
			TeacherSubjectSchoolID:  schoolID,
			TeacherSubjectTeacherID: teacherID,
			TeacherSubjectSubjectID: sid,
		})
	}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if helper.IsForeignKeyViolation(err) {
		return errors.Wrap(helper.ErrBadRequest, "mapel tidak dikenal")
	}
	return err
}

// AddSubjects: tambah mapel (yang sudah ada diabaikan).
func AddSubjects(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID, subjectIDs []uuid.UUID) error {
	return addSubjects(db.WithContext(ctx), schoolID, teacherID, subjectIDs)
}

// ReplaceSubjects: set mapel guru persis seperti daftar yang dikirim.
func ReplaceSubjects(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID, subjectIDs []uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("teacher_subject_teacher_id = ? AND teacher_subject_subject_id NOT IN ?", teacherID, subjectIDs).
			Delete(&model.TeacherSubjectModel{}).Error; err != nil {
			return err
		}
		return addSubjects(tx, schoolID, teacherID, subjectIDs)
	})
}

func RemoveSubject(ctx context.Context, db *gorm.DB, teacherID, subjectID uuid.UUID) (bool, error) {
	res := db.WithContext(ctx).
		Where("teacher_subject_teacher_id = ? AND teacher_subject_subject_id = ?", teacherID, subjectID).
		Delete(&model.TeacherSubjectModel{})
	return res.RowsAffected > 0, res.Error
}

func Subjects(ctx context.Context, db *gorm.DB, teacherID uuid.UUID) ([]dto.TeacherSubjectItem, error) {
	rows := []dto.TeacherSubjectItem{}
	err := db.WithContext(ctx).Table("teacher_subjects ts").
		Select("s.subject_id, s.subject_name, s.subject_category").
		Joins("JOIN subjects s ON s.subject_id = ts.teacher_subject_subject_id AND s.subject_deleted_at IS NULL").
		Where("ts.teacher_subject_teacher_id = ?", teacherID).
		Order("s.subject_name ASC").
		Scan(&rows).Error
	return rows, err
}

// Classes: kelas tempat guru mengajar + kelas yang dia wali.
func Classes(ctx context.Context, db *gorm.DB, schoolID, teacherID uuid.UUID, yearID *uuid.UUID) ([]dto.TeacherClassItem, error) {
	var taught []dto.TeacherClassItem
	q := db.WithContext(ctx).Table("class_subjects cs").
		Select(`c.class_id, c.class_name, c.class_school_year_id AS school_year_id,
			s.subject_id, s.subject_name, cs.class_subject_hours_per_week AS hours_per_week`).
		Joins("JOIN classes c ON c.class_id = cs.class_subject_class_id AND c.class_deleted_at IS NULL").
		Joins("JOIN subjects s ON s.subject_id = cs.class_subject_subject_id").
		Where("cs.class_subject_school_id = ? AND cs.class_subject_teacher_id = ?", schoolID, teacherID)
	if yearID != nil {
		q = q.Where("c.class_school_year_id = ?", *yearID)
	}
	if err := q.Order("c.class_name ASC, s.subject_name ASC").Scan(&taught).Error; err != nil {
		return nil, err
	}

	var homeroom []dto.TeacherClassItem
	hq := db.WithContext(ctx).Table("classes c").
		Select("c.class_id, c.class_name, c.class_school_year_id AS school_year_id").
		Where("c.class_school_id = ? AND c.class_homeroom_teacher_id = ? AND c.class_deleted_at IS NULL", schoolID, teacherID)
	if yearID != nil {
		hq = hq.Where("c.class_school_year_id = ?", *yearID)
	}
	if err := hq.Scan(&homeroom).Error; err != nil {
		return nil, err
	}
	return MergeHomeroom(taught, homeroom), nil
}

// MergeHomeroom: tandai baris yang kelasnya diwali; kelas wali tanpa mapel ditambahkan.
func MergeHomeroom(taught, homeroom []dto.TeacherClassItem) []dto.TeacherClassItem {
	out := make([]dto.TeacherClassItem, 0, len(taught)+len(homeroom))
	isHome := make(map[uuid.UUID]bool, len(homeroom))
	for _, h := range homeroom {
		isHome[h.ClassID] = true
	}
	seen := map[uuid.UUID]bool{}
	for _, t := range taught {
		t.IsHomeroom = isHome[t.ClassID]
		seen[t.ClassID] = true
		out = append(out, t)
	}
	for _, h := range homeroom {
		if seen[h.ClassID] {
			continue
		}
		h.IsHomeroom = true
		out = append(out, h)
	}
	return out
}
