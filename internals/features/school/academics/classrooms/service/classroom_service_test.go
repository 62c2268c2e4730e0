package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/features/school/academics/classrooms/dto"
	"schoolhub_backend/internals/features/school/academics/classrooms/model"
)

func TestBuildAvailability(t *testing.T) {
	a := model.ClassroomModel{ClassroomID: uuid.New(), ClassroomName: "Salle 1", ClassroomStatus: "active", ClassroomCapacity: 40}
	b := model.ClassroomModel{ClassroomID: uuid.New(), ClassroomName: "Salle 2", ClassroomStatus: "active"}
	broken := model.ClassroomModel{ClassroomID: uuid.New(), ClassroomName: "Labo", ClassroomStatus: "maintenance"}

	classID := uuid.New()
	assigned := map[uuid.UUID][]dto.AssignedClass{
		b.ClassroomID: {{ClassID: classID, ClassName: "6ème A"}},
	}

	out := BuildAvailability([]model.ClassroomModel{a, b, broken}, assigned)
	require.Len(t, out, 2)

	assert.True(t, out[0].Available)
	assert.Nil(t, out[0].AssignedTo)
	assert.Equal(t, 40, out[0].Capacity)

	assert.False(t, out[1].Available)
	require.NotNil(t, out[1].AssignedTo)
	assert.Equal(t, "6ème A", out[1].AssignedTo.ClassName)
}
