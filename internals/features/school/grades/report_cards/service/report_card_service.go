package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/school/grades/report_cards/dto"
	"schoolhub_backend/internals/features/school/grades/report_cards/model"
	gradeService "schoolhub_backend/internals/features/school/grades/student_grades/service"
	auditService "schoolhub_backend/internals/features/schools/audit_logs/service"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/mailer"
)

// BulkConcurrency: batas worker generate rapor per kelas
const BulkConcurrency = 4

type ReportCardService struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
}

func New(db *gorm.DB, m mailer.Mailer) *ReportCardService {
	if m == nil {
		m = mailer.New()
	}
	return &ReportCardService{DB: db, Mailer: m}
}

// SummarizeAttendance: hitungan per status → ringkasan kehadiran rapor
func SummarizeAttendance(counts map[string]int64) map[string]any {
	present, late := counts["present"], counts["late"]
	absent, excused := counts["absent"], counts["excused"]
	total := present + late + absent + excused
	return map[string]any{
		"present":         present,
		"late":            late,
		"absent":          absent,
		"excused":         excused,
		"total":           total,
		"attendance_rate": helper.Percent(float64(present+late), float64(total)),
	}
}

type termRow struct {
	TermID           uuid.UUID
	TermName         string
	TermSchoolYearID uuid.UUID
	TermStartDate    time.Time
	TermEndDate      time.Time
}

func loadTerm(tx *gorm.DB, schoolID, termID uuid.UUID) (termRow, error) {
	var t termRow
	err := tx.Table("terms").
		Select("term_id, term_name, term_school_year_id, term_start_date, term_end_date").
		Where("term_id = ? AND term_school_id = ? AND term_deleted_at IS NULL", termID, schoolID).
		Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, errors.Wrap(helper.ErrNotFound, "periode tidak ditemukan")
	}
	return t, err
}

// classOfStudent: kelas dari pendaftaran confirmed di tahun ajaran periode
func classOfStudent(tx *gorm.DB, schoolID, studentID, yearID uuid.UUID) (uuid.UUID, error) {
	var row struct{ EnrollmentClassID uuid.UUID }
	err := tx.Table("enrollments").Select("enrollment_class_id").
		Where("enrollment_school_id = ? AND enrollment_student_id = ? AND enrollment_school_year_id = ? AND enrollment_status = 'confirmed'",
			schoolID, studentID, yearID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, errors.Wrap(helper.ErrBadRequest, "siswa tidak punya pendaftaran aktif di tahun ajaran ini")
	}
	return row.EnrollmentClassID, err
}

func attendanceSummary(tx *gorm.DB, studentID uuid.UUID, t termRow) (map[string]any, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := tx.Table("student_attendances").
		Select("student_attendance_status AS status, COUNT(*) AS count").
		Where("student_attendance_student_id = ? AND student_attendance_date BETWEEN ? AND ?",
			studentID, t.TermStartDate, t.TermEndDate).
		Group("student_attendance_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return SummarizeAttendance(counts), nil
}

func defaultTemplateID(tx *gorm.DB, schoolID uuid.UUID) (*uuid.UUID, error) {
	var ids []uuid.UUID
	if err := tx.Model(&model.ReportCardTemplateModel{}).
		Where("report_card_template_school_id = ? AND report_card_template_is_default", schoolID).
		Limit(1).Pluck("report_card_template_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

type genInput struct {
	schoolID   uuid.UUID
	studentID  uuid.UUID
	classID    uuid.UUID
	term       termRow
	templateID *uuid.UUID
	comment    *string
	actor      *uuid.UUID
}

// generateOne: upsert rapor (student+term) berstatus generated + ringkasan absensi + audit
func (s *ReportCardService) generateOne(ctx context.Context, in genInput) (model.ReportCardModel, error) {
	var card model.ReportCardModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		summary, err := attendanceSummary(tx, in.studentID, in.term)
		if err != nil {
			return err
		}
		tpl := in.templateID
		if tpl == nil {
			if tpl, err = defaultTemplateID(tx, in.schoolID); err != nil {
				return err
			}
		}
		now := time.Now()
		card = model.ReportCardModel{
			ReportCardSchoolID:          in.schoolID,
			ReportCardStudentID:         in.studentID,
			ReportCardClassID:           in.classID,
			ReportCardTermID:            in.term.TermID,
			ReportCardTemplateID:        tpl,
			ReportCardStatus:            model.ReportCardGenerated,
			ReportCardHomeroomComment:   in.comment,
			ReportCardAttendanceSummary: summary,
			ReportCardGeneratedAt:       &now,
			ReportCardGeneratedBy:       in.actor,
		}
		cols := []string{
			"report_card_class_id", "report_card_template_id", "report_card_status",
			"report_card_attendance_summary", "report_card_generated_at", "report_card_generated_by", "report_card_updated_at",
		}
		if in.comment != nil {
			cols = append(cols, "report_card_homeroom_comment")
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_card_student_id"}, {Name: "report_card_term_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).Create(&card).Error; err != nil {
			return err
		}
		// id hasil upsert bisa milik baris lama
		if err := tx.Where("report_card_student_id = ? AND report_card_term_id = ?", in.studentID, in.term.TermID).
			First(&card).Error; err != nil {
			return err
		}
		return auditService.Record(tx, in.schoolID, in.actor, "report_card.generated", "report_card", &card.ReportCardID, map[string]any{
			"student_id": in.studentID,
			"term_id":    in.term.TermID,
			"class_id":   in.classID,
		})
	})
	return card, err
}

// Generate: hitung ulang rata-rata kelas lalu buat/perbarui rapor satu siswa
func (s *ReportCardService) Generate(ctx context.Context, schoolID uuid.UUID, req dto.GenerateRequest, actor *uuid.UUID) (model.ReportCardModel, error) {
	db := s.DB.WithContext(ctx)
	t, err := loadTerm(db, schoolID, req.TermID)
	if err != nil {
		return model.ReportCardModel{}, err
	}
	classID, err := classOfStudent(db, schoolID, req.StudentID, t.TermSchoolYearID)
	if err != nil {
		return model.ReportCardModel{}, err
	}
	if _, err := gradeService.Recompute(ctx, s.DB, schoolID, classID, t.TermID); err != nil {
		return model.ReportCardModel{}, err
	}
	return s.generateOne(ctx, genInput{
		schoolID: schoolID, studentID: req.StudentID, classID: classID, term: t,
		templateID: req.TemplateID, comment: req.HomeroomComment, actor: actor,
	})
}

// BulkGenerate: rata-rata dihitung sekali, lalu rapor tiap siswa lewat errgroup (maks 4 paralel).
// Kegagalan per siswa dikumpulkan, bukan menghentikan batch.
func (s *ReportCardService) BulkGenerate(ctx context.Context, schoolID uuid.UUID, req dto.BulkGenerateRequest, actor *uuid.UUID) (dto.BulkResult, error) {
	res := dto.BulkResult{Errors: []dto.BulkError{}}
	db := s.DB.WithContext(ctx)
	t, err := loadTerm(db, schoolID, req.TermID)
	if err != nil {
		return res, err
	}
	if _, err := gradeService.Recompute(ctx, s.DB, schoolID, req.ClassID, t.TermID); err != nil {
		return res, err
	}
	var students []uuid.UUID
	if err := db.Table("enrollments").
		Where("enrollment_school_id = ? AND enrollment_class_id = ? AND enrollment_status = 'confirmed'", schoolID, req.ClassID).
		Pluck("enrollment_student_id", &students).Error; err != nil {
		return res, err
	}
	res.Total = len(students)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(BulkConcurrency)
	for _, sid := range students {
		sid := sid
		g.Go(func() error {
			_, err := s.generateOne(gctx, genInput{
				schoolID: schoolID, studentID: sid, classID: req.ClassID, term: t,
				templateID: req.TemplateID, actor: actor,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, dto.BulkError{StudentID: sid, Error: err.Error()})
				return nil
			}
			res.Success++
			return nil
		})
	}
	_ = g.Wait()
	return res, nil
}

func LoadReportCard(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.ReportCardModel, error) {
	var m model.ReportCardModel
	err := db.WithContext(ctx).
		Where("report_card_id = ? AND report_card_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "rapor tidak ditemukan")
	}
	return m, err
}

type contact struct {
	ParentFirstName string
	ParentLastName  string
	ParentEmail     *string
}

// primaryContact: orang tua utama yang punya email, lalu orang tua lain
func primaryContact(tx *gorm.DB, studentID uuid.UUID) (contact, error) {
	var c contact
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

// Send: kirim notifikasi rapor ke orang tua lewat email, status → sent
func (s *ReportCardService) Send(ctx context.Context, schoolID, id uuid.UUID, actor *uuid.UUID) (dto.SendResult, error) {
	db := s.DB.WithContext(ctx)
	card, err := LoadReportCard(ctx, s.DB, schoolID, id)
	if err != nil {
		return dto.SendResult{}, err
	}
	if card.ReportCardStatus == model.ReportCardDraft {
		return dto.SendResult{}, errors.Wrap(helper.ErrInvalidState, "rapor belum di-generate")
	}
	parent, err := primaryContact(db, card.ReportCardStudentID)
	if err != nil {
		return dto.SendResult{}, err
	}
	var info struct {
		StudentFirstName string
		StudentLastName  string
		TermName         string
	}
	if err := db.Table("students s").
		Select("s.student_first_name, s.student_last_name, t.term_name").
		Joins("JOIN terms t ON t.term_id = ?", card.ReportCardTermID).
		Where("s.student_id = ?", card.ReportCardStudentID).
		Take(&info).Error; err != nil {
		return dto.SendResult{}, err
	}
	var overall struct {
		Value *float64
		Rank  *int
	}
	if err := db.Table("student_averages").
		Select("student_average_value AS value, student_average_rank_in_class AS rank").
		Where("student_average_student_id = ? AND student_average_term_id = ? AND student_average_subject_id IS NULL",
			card.ReportCardStudentID, card.ReportCardTermID).
		Scan(&overall).Error; err != nil {
		return dto.SendResult{}, err
	}

	email := strings.TrimSpace(*parent.ParentEmail)
	msg := mailer.ReportCardReady(configs.AppName,
		strings.TrimSpace(parent.ParentFirstName+" "+parent.ParentLastName), email,
		strings.TrimSpace(info.StudentFirstName+" "+info.StudentLastName), info.TermName,
		overall.Value, overall.Rank)
	if err := s.Mailer.Send(ctx, msg); err != nil {
		log.Printf("[MAIL] ❌ gagal kirim rapor %s ke %s: %v", id, email, err)
		return dto.SendResult{}, errors.Wrap(err, "gagal mengirim email rapor")
	}

	now := time.Now()
	method := model.DeliveryEmail
	if err := db.Model(&card).Updates(map[string]any{
		"report_card_status":          model.ReportCardSent,
		"report_card_sent_at":         now,
		"report_card_delivery_method": method,
	}).Error; err != nil {
		return dto.SendResult{}, err
	}
	_ = auditService.Record(db, schoolID, actor, "report_card.sent", "report_card", &card.ReportCardID, map[string]any{"email": email})
	return dto.SendResult{ReportCardID: card.ReportCardID, Email: email, SentAt: now}, nil
}

// Mark: delivered butuh sent; viewed butuh sent/delivered (delivered_at ikut terisi)
func Mark(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, status string) (model.ReportCardModel, error) {
	card, err := LoadReportCard(ctx, db, schoolID, id)
	if err != nil {
		return card, err
	}
	now := time.Now()
	upd := map[string]any{"report_card_status": status}
	switch status {
	case model.ReportCardDelivered:
		if card.ReportCardStatus != model.ReportCardSent {
			return card, errors.Wrap(helper.ErrInvalidState, "rapor belum dikirim")
		}
		upd["report_card_delivered_at"] = now
	case model.ReportCardViewed:
		if card.ReportCardStatus != model.ReportCardSent && card.ReportCardStatus != model.ReportCardDelivered &&
			card.ReportCardStatus != model.ReportCardViewed {
			return card, errors.Wrap(helper.ErrInvalidState, "rapor belum dikirim")
		}
		upd["report_card_viewed_at"] = now
		if card.ReportCardDeliveredAt == nil {
			upd["report_card_delivered_at"] = now
		}
	default:
		return card, errors.Wrap(helper.ErrBadRequest, fmt.Sprintf("status %q tidak dikenal", status))
	}
	err = db.WithContext(ctx).Model(&card).Updates(upd).Error
	return card, err
}

// UpsertComment: satu komentar per rapor+mapel
func UpsertComment(ctx context.Context, db *gorm.DB, schoolID, cardID uuid.UUID, req dto.CommentRequest, teacherID *uuid.UUID) (model.TeacherCommentModel, error) {
	if _, err := LoadReportCard(ctx, db, schoolID, cardID); err != nil {
		return model.TeacherCommentModel{}, err
	}
	if req.TeacherID != nil {
		teacherID = req.TeacherID
	}
	m := model.TeacherCommentModel{
		TeacherCommentSchoolID:     schoolID,
		TeacherCommentReportCardID: cardID,
		TeacherCommentSubjectID:    req.SubjectID,
		TeacherCommentTeacherID:    teacherID,
		TeacherCommentText:         strings.TrimSpace(req.Comment),
	}
	tx := db.WithContext(ctx)
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "teacher_comment_report_card_id"}, {Name: "teacher_comment_subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"teacher_comment_text", "teacher_comment_teacher_id", "teacher_comment_updated_at"}),
	}).Create(&m).Error; err != nil {
		return m, err
	}
	err := tx.Where("teacher_comment_report_card_id = ? AND teacher_comment_subject_id = ?", cardID, req.SubjectID).First(&m).Error
	return m, err
}
