package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/school/messages/dto"
	"schoolhub_backend/internals/features/school/messages/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/mailer"
)

// batas email paralel per broadcast
const mailConcurrency = 4

type parentInfo struct {
	ParentID        uuid.UUID
	ParentFirstName string
	ParentLastName  string
	ParentEmail     *string
	ParentUserID    *uuid.UUID
}

func (p parentInfo) name() string {
	return strings.TrimSpace(p.ParentFirstName + " " + p.ParentLastName)
}

func loadParent(tx *gorm.DB, schoolID, parentID uuid.UUID) (parentInfo, error) {
	var p parentInfo
	err := tx.Table("parents").
		Select("parent_id, parent_first_name, parent_last_name, parent_email, parent_user_id").
		Where("parent_id = ? AND parent_school_id = ? AND parent_deleted_at IS NULL", parentID, schoolID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, errors.Wrap(helper.ErrNotFound, "orang tua tidak ditemukan")
	}
	return p, err
}

func senderName(tx *gorm.DB, userID uuid.UUID) string {
	var name string
	_ = tx.Table("users").Select("full_name").Where("id = ?", userID).Scan(&name).Error
	if name == "" {
		return configs.AppName
	}
	return name
}

// IsRecipient: pesan ke orang tua dibaca oleh user orang tua tsb, balasan orang tua dibaca staf tujuan
func IsRecipient(m model.MessageModel, userID uuid.UUID, parentUserID *uuid.UUID) bool {
	if m.MessageDirection == model.DirectionFromParent {
		return m.MessageRecipientUserID != nil && *m.MessageRecipientUserID == userID
	}
	return parentUserID != nil && *parentUserID == userID
}

// IsParticipant: pengirim atau penerima
func IsParticipant(m model.MessageModel, userID uuid.UUID, parentUserID *uuid.UUID) bool {
	return m.MessageSenderUserID == userID || IsRecipient(m, userID, parentUserID)
}

// deliver: kirim email kalau channel email; gagal → status failed (pesan tetap tersimpan)
func deliver(ctx context.Context, tx *gorm.DB, ml mailer.Mailer, m *model.MessageModel, p parentInfo, sender string) error {
	if m.MessageChannel != model.ChannelEmail {
		return nil
	}
	var sendErr error
	if p.ParentEmail == nil || strings.TrimSpace(*p.ParentEmail) == "" {
		sendErr = errors.New("orang tua tidak punya email")
	} else {
		sendErr = ml.Send(ctx, mailer.ParentMessage(configs.AppName, p.name(),
			strings.TrimSpace(*p.ParentEmail), sender, m.MessageSubject, m.MessageBody))
	}
	if sendErr == nil {
		return nil
	}
	log.Printf("[MAIL] ❌ pesan %s gagal terkirim: %v", m.MessageID, sendErr)
	msg := sendErr.Error()
	m.MessageStatus = model.StatusFailed
	m.MessageError = &msg
	return tx.Model(&model.MessageModel{}).Where("message_id = ?", m.MessageID).
		Updates(map[string]any{"message_status": model.StatusFailed, "message_error": msg}).Error
}

// Send: simpan pesan lalu kirim email bila diminta
func Send(ctx context.Context, db *gorm.DB, ml mailer.Mailer, schoolID, sender uuid.UUID, req dto.SendRequest) (model.MessageModel, error) {
	tx := db.WithContext(ctx)
	p, err := loadParent(tx, schoolID, req.ParentID)
	if err != nil {
		return model.MessageModel{}, err
	}
	if req.StudentID != nil {
		var n int64
		if err := tx.Table("student_parents").
			Where("student_parent_student_id = ? AND student_parent_parent_id = ?", *req.StudentID, req.ParentID).
			Count(&n).Error; err != nil {
			return model.MessageModel{}, err
		}
		if n == 0 {
			return model.MessageModel{}, errors.Wrap(helper.ErrBadRequest, "siswa bukan anak dari orang tua ini")
		}
	}
	m := req.ToModel(schoolID, sender)
	if err := tx.Create(&m).Error; err != nil {
		return m, err
	}
	if err := deliver(ctx, tx, ml, &m, p, senderName(tx, sender)); err != nil {
		return m, err
	}
	return m, nil
}

type classRecipient struct {
	ParentID        uuid.UUID
	ParentFirstName string
	ParentLastName  string
	ParentEmail     *string
	StudentID       uuid.UUID
}

func (r classRecipient) parent() parentInfo {
	return parentInfo{
		ParentID:        r.ParentID,
		ParentFirstName: r.ParentFirstName,
		ParentLastName:  r.ParentLastName,
		ParentEmail:     r.ParentEmail,
	}
}

// BroadcastToClass: satu pesan per pasangan (orang tua, siswa) dari enrollment confirmed
func BroadcastToClass(ctx context.Context, db *gorm.DB, ml mailer.Mailer, schoolID, sender uuid.UUID, req dto.ClassBroadcastRequest) (dto.BroadcastResult, error) {
	tx := db.WithContext(ctx)
	var recips []classRecipient
	if err := tx.Table("enrollments e").
		Select(`p.parent_id, p.parent_first_name, p.parent_last_name, p.parent_email,
			e.enrollment_student_id AS student_id`).
		Joins("JOIN student_parents sp ON sp.student_parent_student_id = e.enrollment_student_id").
		Joins("JOIN parents p ON p.parent_id = sp.student_parent_parent_id AND p.parent_deleted_at IS NULL").
		Where("e.enrollment_school_id = ? AND e.enrollment_class_id = ? AND e.enrollment_status = ?", schoolID, req.ClassID, "confirmed").
		Order("p.parent_last_name, p.parent_first_name").
		Scan(&recips).Error; err != nil {
		return dto.BroadcastResult{}, err
	}
	if len(recips) == 0 {
		return dto.BroadcastResult{}, errors.Wrap(helper.ErrBadRequest, "kelas tidak punya kontak orang tua")
	}

	msgs := make([]model.MessageModel, len(recips))
	for i, r := range recips {
		sid := r.StudentID
		msgs[i] = dto.SendRequest{
			ParentID: r.ParentID, StudentID: &sid,
			Subject: req.Subject, Body: req.Body, Channel: req.Channel,
		}.ToModel(schoolID, sender)
	}
	if err := tx.CreateInBatches(&msgs, 100).Error; err != nil {
		return dto.BroadcastResult{}, err
	}

	res := dto.BroadcastResult{Total: len(msgs)}
	name := senderName(tx, sender)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mailConcurrency)
	for i := range msgs {
		i := i
		g.Go(func() error {
			if err := deliver(gctx, tx, ml, &msgs[i], recips[i].parent(), name); err != nil {
				return err
			}
			mu.Lock()
			if msgs[i].MessageStatus == model.StatusFailed {
				res.Failed++
			} else {
				res.Sent++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

func Load(ctx context.Context, db *gorm.DB, id uuid.UUID) (model.MessageModel, error) {
	var m model.MessageModel
	err := db.WithContext(ctx).Where("message_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "pesan tidak ditemukan")
	}
	return m, err
}

func parentUserOf(tx *gorm.DB, parentID uuid.UUID) *uuid.UUID {
	var row struct{ ParentUserID *uuid.UUID }
	_ = tx.Table("parents").Select("parent_user_id").Where("parent_id = ?", parentID).Take(&row).Error
	return row.ParentUserID
}

// Reply: balasan masuk ke thread root; arah ditentukan dari siapa yang membalas
func Reply(ctx context.Context, db *gorm.DB, ml mailer.Mailer, rootID, userID uuid.UUID, body string) (model.MessageModel, error) {
	tx := db.WithContext(ctx)
	first, err := Load(ctx, db, rootID)
	if err != nil {
		return first, err
	}
	root := first
	if first.MessageParentMessageID != nil {
		if root, err = Load(ctx, db, first.ThreadRoot()); err != nil {
			return root, err
		}
	}
	parentUser := parentUserOf(tx, root.MessageRecipientParentID)
	if !IsParticipant(root, userID, parentUser) {
		return root, errors.Wrap(helper.ErrForbidden, "bukan peserta percakapan")
	}
	rid := root.MessageID
	m := model.MessageModel{
		MessageSchoolID:          root.MessageSchoolID,
		MessageSenderUserID:      userID,
		MessageRecipientParentID: root.MessageRecipientParentID,
		MessageStudentID:         root.MessageStudentID,
		MessageParentMessageID:   &rid,
		MessageSubject:           "Re: " + strings.TrimPrefix(root.MessageSubject, "Re: "),
		MessageBody:              strings.TrimSpace(body),
		MessageStatus:            model.StatusSent,
	}
	if parentUser != nil && *parentUser == userID {
		staff := root.MessageSenderUserID
		m.MessageDirection = model.DirectionFromParent
		m.MessageRecipientUserID = &staff
		m.MessageChannel = model.ChannelInApp
	} else {
		m.MessageDirection = model.DirectionToParent
		m.MessageChannel = root.MessageChannel
	}
	if err := tx.Create(&m).Error; err != nil {
		return m, err
	}
	if m.MessageDirection == model.DirectionToParent {
		p, err := loadParent(tx, root.MessageSchoolID, root.MessageRecipientParentID)
		if err != nil {
			return m, err
		}
		if err := deliver(ctx, tx, ml, &m, p, senderName(tx, userID)); err != nil {
			return m, err
		}
	}
	return m, nil
}

func withNames(q *gorm.DB) *gorm.DB {
	return q.Joins("LEFT JOIN users u ON u.id = m.message_sender_user_id").
		Joins("JOIN parents p ON p.parent_id = m.message_recipient_parent_id").
		Joins("LEFT JOIN students s ON s.student_id = m.message_student_id").
		Select(`m.*, COALESCE(u.full_name, '') AS sender_name,
			TRIM(p.parent_first_name || ' ' || p.parent_last_name) AS parent_name,
			NULLIF(TRIM(COALESCE(s.student_first_name, '') || ' ' || COALESCE(s.student_last_name, '')), '') AS student_name`)
}

func page(q *gorm.DB, p helper.Params) ([]dto.MessageItem, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.MessageItem{}
	err := withNames(q).Order("m.message_created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).Scan(&rows).Error
	return rows, total, err
}

// inboxScope: semua pesan yang ditujukan ke userID (sebagai staf atau orang tua)
func inboxScope(q *gorm.DB, userID uuid.UUID) *gorm.DB {
	return q.Where(`((m.message_direction = ? AND m.message_recipient_user_id = ?)
		OR (m.message_direction = ? AND m.message_recipient_parent_id IN (SELECT parent_id FROM parents WHERE parent_user_id = ? AND parent_deleted_at IS NULL)))`,
		model.DirectionFromParent, userID, model.DirectionToParent, userID)
}

func Inbox(ctx context.Context, db *gorm.DB, userID uuid.UUID, unreadOnly bool, p helper.Params) ([]dto.MessageItem, int64, error) {
	q := inboxScope(db.WithContext(ctx).Table("messages m"), userID)
	if unreadOnly {
		q = q.Where("m.message_read_at IS NULL")
	}
	return page(q, p)
}

func Outbox(ctx context.Context, db *gorm.DB, userID uuid.UUID, status string, p helper.Params) ([]dto.MessageItem, int64, error) {
	q := db.WithContext(ctx).Table("messages m").Where("m.message_sender_user_id = ?", userID)
	if status != "" {
		q = q.Where("m.message_status = ?", status)
	}
	return page(q, p)
}

// Thread: pesan root + semua balasan, urut waktu
func Thread(ctx context.Context, db *gorm.DB, id, userID uuid.UUID) ([]dto.MessageItem, error) {
	first, err := Load(ctx, db, id)
	if err != nil {
		return nil, err
	}
	rootID := first.ThreadRoot()
	tx := db.WithContext(ctx)
	root := first
	if rootID != first.MessageID {
		if root, err = Load(ctx, db, rootID); err != nil {
			return nil, err
		}
	}
	if !IsParticipant(root, userID, parentUserOf(tx, root.MessageRecipientParentID)) {
		return nil, errors.Wrap(helper.ErrForbidden, "bukan peserta percakapan")
	}
	rows := []dto.MessageItem{}
	err = withNames(tx.Table("messages m").
		Where("m.message_id = ? OR m.message_parent_message_id = ?", rootID, rootID)).
		Order("m.message_created_at ASC").
		Scan(&rows).Error
	return rows, err
}

// MarkRead: hanya penerima; idempoten
func MarkRead(ctx context.Context, db *gorm.DB, id, userID uuid.UUID, now time.Time) (model.MessageModel, error) {
	m, err := Load(ctx, db, id)
	if err != nil {
		return m, err
	}
	tx := db.WithContext(ctx)
	if !IsRecipient(m, userID, parentUserOf(tx, m.MessageRecipientParentID)) {
		return m, errors.Wrap(helper.ErrForbidden, "hanya penerima yang bisa menandai dibaca")
	}
	if m.MessageReadAt != nil {
		return m, nil
	}
	if err := tx.Model(&m).Updates(map[string]any{
		"message_status":  model.StatusRead,
		"message_read_at": now,
	}).Error; err != nil {
		return m, err
	}
	m.MessageStatus = model.StatusRead
	m.MessageReadAt = &now
	return m, nil
}

func UnreadCount(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	err := inboxScope(db.WithContext(ctx).Table("messages m"), userID).
		Where("m.message_read_at IS NULL").
		Count(&n).Error
	return n, err
}
