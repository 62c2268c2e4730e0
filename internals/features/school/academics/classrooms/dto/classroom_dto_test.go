package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/academics/classrooms/model"
	helper "schoolhub_backend/internals/helpers"
)

func TestClassroomDefaults(t *testing.T) {
	var m model.ClassroomModel
	ClassroomRequest{Name: "Salle 12", Code: "s12"}.Apply(&m)
	assert.Equal(t, "S12", m.ClassroomCode)
	assert.Equal(t, "regular", m.ClassroomType)
	assert.Equal(t, 30, m.ClassroomCapacity)
	assert.Equal(t, "active", m.ClassroomStatus)
	assert.JSONEq(t, `[]`, string(m.ClassroomEquipment))
}

func TestClassroomCapacityBounds(t *testing.T) {
	v := helper.NewValidator()
	zero, big := 0, 1001
	assert.Contains(t, helper.ValidationFields(v.Struct(ClassroomRequest{Name: "A", Code: "A", Capacity: &zero})), "capacity")
	assert.Contains(t, helper.ValidationFields(v.Struct(ClassroomRequest{Name: "A", Code: "A", Capacity: &big})), "capacity")
	assert.Contains(t, helper.ValidationFields(v.Struct(ClassroomRequest{Name: "A", Code: "A", Type: "garage"})), "type")
}
