package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/academics/classrooms/dto"
	"schoolhub_backend/internals/features/school/academics/classrooms/model"
)

type classroomAssignment struct {
	ClassroomID uuid.UUID
	ClassID     uuid.UUID
	ClassName   string
}

// ActiveAssignments: kelas aktif yang memakai ruang (opsional difilter tahun ajaran / ruang).
func ActiveAssignments(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, yearID, classroomID *uuid.UUID) (map[uuid.UUID][]dto.AssignedClass, error) {
	q := db.WithContext(ctx).Table("classes").
		Select("class_classroom_id AS classroom_id, class_id, class_name").
		Where("class_school_id = ? AND class_status = 'active' AND class_deleted_at IS NULL AND class_classroom_id IS NOT NULL", schoolID)
	if yearID != nil {
		q = q.Where("class_school_year_id = ?", *yearID)
	}
	if classroomID != nil {
		q = q.Where("class_classroom_id = ?", *classroomID)
	}
	var rows []classroomAssignment
	if err := q.Order("class_name ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]dto.AssignedClass, len(rows))
	for _, r := range rows {
		out[r.ClassroomID] = append(out[r.ClassroomID], dto.AssignedClass{ClassID: r.ClassID, ClassName: r.ClassName})
	}
	return out, nil
}

// BuildAvailability: ruang aktif → tersedia kalau belum dipakai kelas mana pun.
func BuildAvailability(rooms []model.ClassroomModel, assigned map[uuid.UUID][]dto.AssignedClass) []dto.ClassroomAvailability {
	out := make([]dto.ClassroomAvailability, 0, len(rooms))
	for _, r := range rooms {
		if r.ClassroomStatus != model.ClassroomStatusActive {
			continue
		}
		item := dto.ClassroomAvailability{
			ClassroomID:   r.ClassroomID,
			ClassroomName: r.ClassroomName,
			ClassroomCode: r.ClassroomCode,
			Capacity:      r.ClassroomCapacity,
			Available:     true,
		}
		if list := assigned[r.ClassroomID]; len(list) > 0 {
			first := list[0]
			item.Available = false
			item.AssignedTo = &first
		}
		out = append(out, item)
	}
	return out
}
