package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/school/conduct/dto"
	"schoolhub_backend/internals/features/school/conduct/model"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
	"schoolhub_backend/internals/helpers/mailer"
)

type Filter struct {
	Type      string
	Status    string
	Severity  string
	Category  string
	StudentID *uuid.UUID
	ClassID   *uuid.UUID
	From, To  *time.Time
	Search    string
}

const studentNameSQL = `TRIM(s.student_first_name || ' ' || s.student_last_name)`

func List(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, f Filter, p helper.Params) ([]dto.ConductItem, int64, error) {
	q := db.WithContext(ctx).Table("conduct_records r").
		Joins("JOIN students s ON s.student_id = r.conduct_record_student_id").
		Where("r.conduct_record_school_id = ? AND r.conduct_record_deleted_at IS NULL", schoolID)
	if f.Type != "" {
		q = q.Where("r.conduct_record_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("r.conduct_record_status = ?", f.Status)
	}
	if f.Severity != "" {
		q = q.Where("r.conduct_record_severity = ?", f.Severity)
	}
	if f.Category != "" {
		q = q.Where("r.conduct_record_category = ?", f.Category)
	}
	if f.StudentID != nil {
		q = q.Where("r.conduct_record_student_id = ?", *f.StudentID)
	}
	if f.ClassID != nil {
		q = q.Where("r.conduct_record_class_id = ?", *f.ClassID)
	}
	if f.From != nil {
		q = q.Where("r.conduct_record_incident_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("r.conduct_record_incident_date <= ?", *f.To)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("(r.conduct_record_title ILIKE ? OR r.conduct_record_description ILIKE ? OR "+studentNameSQL+" ILIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.ConductItem{}
	err := q.Select(`r.*, ` + studentNameSQL + ` AS student_name,
			(SELECT COUNT(*) FROM conduct_follow_ups fu WHERE fu.conduct_follow_up_record_id = r.conduct_record_id) AS follow_up_count`).
		Order("r.conduct_record_incident_date DESC, r.conduct_record_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func Load(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.ConductRecordModel, error) {
	var m model.ConductRecordModel
	err := db.WithContext(ctx).
		Where("conduct_record_id = ? AND conduct_record_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "catatan perilaku tidak ditemukan")
	}
	return m, err
}

// Get: catatan + tindak lanjut (urut tanggal dibuat)
func Get(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (dto.ConductDetail, error) {
	m, err := Load(ctx, db, schoolID, id)
	if err != nil {
		return dto.ConductDetail{}, err
	}
	out := dto.ConductDetail{ConductRecordModel: m, FollowUps: []model.ConductFollowUpModel{}}
	tx := db.WithContext(ctx)
	if err := tx.Table("students s").Select(studentNameSQL).
		Where("s.student_id = ?", m.ConductRecordStudentID).
		Scan(&out.StudentName).Error; err != nil {
		return out, err
	}
	err = tx.Where("conduct_follow_up_record_id = ?", id).
		Order("conduct_follow_up_created_at").
		Find(&out.FollowUps).Error
	return out, err
}

func ensureStudent(tx *gorm.DB, schoolID, studentID uuid.UUID) error {
	var n int64
	if err := tx.Table("students").
		Where("student_id = ? AND student_school_id = ? AND student_deleted_at IS NULL", studentID, schoolID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(helper.ErrNotFound, "siswa tidak ditemukan")
	}
	return nil
}

func Create(ctx context.Context, db *gorm.DB, m model.ConductRecordModel) (model.ConductRecordModel, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureStudent(tx, m.ConductRecordSchoolID, m.ConductRecordStudentID); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return auditService.Record(tx, m.ConductRecordSchoolID, m.ConductRecordRecordedBy,
			"conduct.created", "conduct_record", &m.ConductRecordID,
			map[string]any{"type": m.ConductRecordType, "student_id": m.ConductRecordStudentID})
	})
	return m, err
}

// Update: catatan yang sudah selesai (resolved/closed) tidak boleh diubah isinya
func Update(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, updates map[string]any) (model.ConductRecordModel, error) {
	m, err := Load(ctx, db, schoolID, id)
	if err != nil {
		return m, err
	}
	if model.IsFinal(m.ConductRecordStatus) {
		return m, errors.Wrap(helper.ErrInvalidState, "catatan sudah ditutup")
	}
	if len(updates) == 0 {
		return m, nil
	}
	if err := db.WithContext(ctx).Model(&m).Updates(updates).Error; err != nil {
		return m, err
	}
	return Load(ctx, db, schoolID, id)
}

func Delete(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, actor *uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := Load(ctx, tx, schoolID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}
		return auditService.Record(tx, schoolID, actor, "conduct.deleted", "conduct_record", &id, nil)
	})
}

// UpdateStatus: resolved/closed mengisi resolved_at/by; status lain mengosongkannya lagi
func UpdateStatus(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.StatusRequest, actor *uuid.UUID, now time.Time) (model.ConductRecordModel, error) {
	var out model.ConductRecordModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.ConductRecordModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("conduct_record_id = ? AND conduct_record_school_id = ?", id, schoolID).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(helper.ErrNotFound, "catatan perilaku tidak ditemukan")
			}
			return err
		}
		from := m.ConductRecordStatus
		upd := map[string]any{"conduct_record_status": req.Status}
		if model.IsFinal(req.Status) {
			upd["conduct_record_resolved_at"] = now
			upd["conduct_record_resolved_by"] = actor
			if req.ResolutionNotes != nil {
				upd["conduct_record_resolution_notes"] = strings.TrimSpace(*req.ResolutionNotes)
			}
		} else if model.IsFinal(from) {
			upd["conduct_record_resolved_at"] = nil
			upd["conduct_record_resolved_by"] = nil
		}
		if err := tx.Model(&m).Updates(upd).Error; err != nil {
			return err
		}
		if err := auditService.Record(tx, schoolID, actor, "conduct.status", "conduct_record", &id,
			map[string]any{"from": from, "to": req.Status}); err != nil {
			return err
		}
		return tx.First(&out, "conduct_record_id = ?", id).Error
	})
	return out, err
}

/* ===================== follow-up ===================== */

func AddFollowUp(ctx context.Context, db *gorm.DB, schoolID, recordID uuid.UUID, req dto.FollowUpRequest, actor *uuid.UUID) (model.ConductFollowUpModel, error) {
	fu := model.ConductFollowUpModel{
		ConductFollowUpRecordID:  recordID,
		ConductFollowUpAction:    strings.TrimSpace(req.Action),
		ConductFollowUpNotes:     req.Notes,
		ConductFollowUpCreatedBy: actor,
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		d, err := dbtime.ParseDate(*req.DueDate)
		if err != nil {
			return fu, errors.Wrap(helper.ErrBadRequest, "due_date harus YYYY-MM-DD")
		}
		fu.ConductFollowUpDueDate = &d
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := Load(ctx, tx, schoolID, recordID); err != nil {
			return err
		}
		return tx.Create(&fu).Error
	})
	return fu, err
}

func loadFollowUp(tx *gorm.DB, schoolID, recordID, id uuid.UUID) (model.ConductFollowUpModel, error) {
	var fu model.ConductFollowUpModel
	err := tx.Table("conduct_follow_ups fu").Select("fu.*").
		Joins("JOIN conduct_records r ON r.conduct_record_id = fu.conduct_follow_up_record_id").
		Where("fu.conduct_follow_up_id = ? AND fu.conduct_follow_up_record_id = ? AND r.conduct_record_school_id = ?", id, recordID, schoolID).
		Take(&fu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fu, errors.Wrap(helper.ErrNotFound, "tindak lanjut tidak ditemukan")
	}
	return fu, err
}

func CompleteFollowUp(ctx context.Context, db *gorm.DB, schoolID, recordID, id uuid.UUID, outcome string, now time.Time) (model.ConductFollowUpModel, error) {
	tx := db.WithContext(ctx)
	fu, err := loadFollowUp(tx, schoolID, recordID, id)
	if err != nil {
		return fu, err
	}
	if fu.ConductFollowUpCompletedAt != nil {
		return fu, errors.Wrap(helper.ErrInvalidState, "tindak lanjut sudah selesai")
	}
	outcome = strings.TrimSpace(outcome)
	if err := tx.Model(&model.ConductFollowUpModel{}).
		Where("conduct_follow_up_id = ?", id).
		Updates(map[string]any{
			"conduct_follow_up_completed_at": now,
			"conduct_follow_up_outcome":      outcome,
		}).Error; err != nil {
		return fu, err
	}
	fu.ConductFollowUpCompletedAt = &now
	fu.ConductFollowUpOutcome = &outcome
	return fu, nil
}

func DeleteFollowUp(ctx context.Context, db *gorm.DB, schoolID, recordID, id uuid.UUID) error {
	tx := db.WithContext(ctx)
	if _, err := loadFollowUp(tx, schoolID, recordID, id); err != nil {
		return err
	}
	return tx.Delete(&model.ConductFollowUpModel{}, "conduct_follow_up_id = ?", id).Error
}

/* ===================== orang tua ===================== */

type parentContact struct {
	ParentFirstName string
	ParentLastName  string
	ParentEmail     *string
}

func primaryParent(tx *gorm.DB, studentID uuid.UUID) (parentContact, error) {
	var c parentContact
	err := tx.Table("student_parents sp").
		Select("p.parent_first_name, p.parent_last_name, p.parent_email").
		Joins("JOIN parents p ON p.parent_id = sp.student_parent_parent_id AND p.parent_deleted_at IS NULL").
		Where("sp.student_parent_student_id = ? AND p.parent_email IS NOT NULL AND p.parent_email <> ''", studentID).
		Order("sp.student_parent_is_primary DESC, sp.student_parent_created_at ASC").
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, errors.Wrap(helper.ErrBadRequest, "tidak ada kontak orang tua dengan email")
	}
	return c, err
}

// NotifyParent: tandai orang tua sudah diberi tahu, opsional kirim email ke wali utama
func NotifyParent(ctx context.Context, db *gorm.DB, m mailer.Mailer, schoolID, id uuid.UUID, req dto.ParentNotifyRequest, actor *uuid.UUID, now time.Time) (model.ConductRecordModel, error) {
	rec, err := Load(ctx, db, schoolID, id)
	if err != nil {
		return rec, err
	}
	tx := db.WithContext(ctx)
	if req.SendEmail {
		if m == nil {
			m = mailer.New()
		}
		parent, err := primaryParent(tx, rec.ConductRecordStudentID)
		if err != nil {
			return rec, err
		}
		var sender string
		if actor != nil {
			_ = tx.Table("users").Select("full_name").Where("id = ?", *actor).Scan(&sender).Error
		}
		if sender == "" {
			sender = configs.AppName
		}
		body := rec.ConductRecordDescription
		if req.Message != nil && strings.TrimSpace(*req.Message) != "" {
			body = strings.TrimSpace(*req.Message)
		}
		email := strings.TrimSpace(*parent.ParentEmail)
		msg := mailer.ParentMessage(configs.AppName,
			strings.TrimSpace(parent.ParentFirstName+" "+parent.ParentLastName), email,
			sender, rec.ConductRecordTitle, body)
		if err := m.Send(ctx, msg); err != nil {
			log.Printf("[MAIL] ❌ gagal kirim notifikasi perilaku %s ke %s: %v", id, email, err)
			return rec, errors.Wrap(err, "gagal mengirim email ke orang tua")
		}
	}
	if err := tx.Model(&rec).Updates(map[string]any{
		"conduct_record_parent_notified":    true,
		"conduct_record_parent_notified_at": now,
	}).Error; err != nil {
		return rec, err
	}
	_ = auditService.Record(tx, schoolID, actor, "conduct.parent_notified", "conduct_record", &id, map[string]any{"email": req.SendEmail})
	return Load(ctx, db, schoolID, id)
}

// AcknowledgeParent: butuh notifikasi terlebih dahulu
func AcknowledgeParent(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, response *string, now time.Time) (model.ConductRecordModel, error) {
	rec, err := Load(ctx, db, schoolID, id)
	if err != nil {
		return rec, err
	}
	if !rec.ConductRecordParentNotified {
		return rec, errors.Wrap(helper.ErrInvalidState, "orang tua belum diberi tahu")
	}
	upd := map[string]any{
		"conduct_record_parent_acknowledged":    true,
		"conduct_record_parent_acknowledged_at": now,
	}
	if response != nil {
		upd["conduct_record_parent_response"] = strings.TrimSpace(*response)
	}
	if err := db.WithContext(ctx).Model(&rec).Updates(upd).Error; err != nil {
		return rec, err
	}
	return Load(ctx, db, schoolID, id)
}

/* ===================== ringkasan ===================== */

// Summarize: ringkasan catatan perilaku satu siswa
func Summarize(studentID uuid.UUID, records []model.ConductRecordModel) dto.StudentSummary {
	out := dto.StudentSummary{
		StudentID: studentID,
		ByType: map[string]int{
			model.TypeIncident: 0, model.TypeSanction: 0, model.TypeReward: 0, model.TypeNote: 0,
		},
		BySeverity: map[string]int{
			model.SeverityLow: 0, model.SeverityMedium: 0, model.SeverityHigh: 0,
			model.SeverityCritical: 0, model.SeverityUrgent: 0,
		},
		ByCategory: map[string]int{},
	}
	for _, r := range records {
		out.Total++
		out.ByType[r.ConductRecordType]++
		out.ByCategory[r.ConductRecordCategory]++
		if r.ConductRecordSeverity != nil {
			out.BySeverity[*r.ConductRecordSeverity]++
		}
		switch {
		case r.ConductRecordStatus == model.StatusOpen:
			out.Open++
		case model.IsFinal(r.ConductRecordStatus):
			out.Resolved++
		}
		out.TotalPoints += r.ConductRecordPointsAwarded
		if d := r.ConductRecordIncidentDate; out.LastRecord == nil || d.After(*out.LastRecord) {
			out.LastRecord = &d
		}
	}
	return out
}

func StudentSummary(ctx context.Context, db *gorm.DB, schoolID, studentID uuid.UUID, yearID *uuid.UUID) (dto.StudentSummary, error) {
	tx := db.WithContext(ctx)
	if err := ensureStudent(tx, schoolID, studentID); err != nil {
		return dto.StudentSummary{}, err
	}
	q := tx.Where("conduct_record_school_id = ? AND conduct_record_student_id = ?", schoolID, studentID)
	if yearID != nil {
		q = q.Where("conduct_record_school_year_id = ?", *yearID)
	}
	var rows []model.ConductRecordModel
	if err := q.Find(&rows).Error; err != nil {
		return dto.StudentSummary{}, err
	}
	return Summarize(studentID, rows), nil
}
