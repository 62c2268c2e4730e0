package dto

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"schoolhub_backend/internals/features/school/academics/classrooms/model"
)

type ClassroomRequest struct {
	Name      string          `json:"name" validate:"required,min=1,max=100"`
	Code      string          `json:"code" validate:"required,min=1,max=20"`
	Type      string          `json:"type" validate:"omitempty,oneof=regular lab gym library auditorium"`
	Capacity  *int            `json:"capacity" validate:"omitempty,min=1,max=1000"`
	Floor     *string         `json:"floor" validate:"omitempty,max=20"`
	Building  *string         `json:"building" validate:"omitempty,max=100"`
	Equipment json.RawMessage `json:"equipment"`
	Status    string          `json:"status" validate:"omitempty,oneof=active maintenance inactive"`
	Notes     *string         `json:"notes" validate:"omitempty,max=1000"`
}

// Apply: isi model dari request (default type=regular, capacity=30, status=active).
func (r ClassroomRequest) Apply(m *model.ClassroomModel) {
	m.ClassroomName = strings.TrimSpace(r.Name)
	m.ClassroomCode = strings.ToUpper(strings.TrimSpace(r.Code))
	m.ClassroomType = r.Type
	if m.ClassroomType == "" {
		m.ClassroomType = "regular"
	}
	m.ClassroomCapacity = 30
	if r.Capacity != nil {
		m.ClassroomCapacity = *r.Capacity
	}
	m.ClassroomFloor = r.Floor
	m.ClassroomBuilding = r.Building
	m.ClassroomEquipment = datatypes.JSON([]byte("[]"))
	if len(r.Equipment) > 0 {
		m.ClassroomEquipment = datatypes.JSON(r.Equipment)
	}
	m.ClassroomStatus = r.Status
	if m.ClassroomStatus == "" {
		m.ClassroomStatus = model.ClassroomStatusActive
	}
	m.ClassroomNotes = r.Notes
}

type AssignedClass struct {
	ClassID   uuid.UUID `json:"class_id"`
	ClassName string    `json:"class_name"`
}

type ClassroomDetail struct {
	model.ClassroomModel
	AssignedClasses []AssignedClass `json:"assigned_classes"`
}

type ClassroomAvailability struct {
	ClassroomID   uuid.UUID      `json:"classroom_id"`
	ClassroomName string         `json:"classroom_name"`
	ClassroomCode string         `json:"classroom_code"`
	Capacity      int            `json:"capacity"`
	Available     bool           `json:"available"`
	AssignedTo    *AssignedClass `json:"assigned_to"`
}
