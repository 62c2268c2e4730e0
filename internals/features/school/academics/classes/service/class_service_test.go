package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"schoolhub_backend/internals/features/school/academics/classes/dto"
)

func TestClassDisplayName(t *testing.T) {
	assert.Equal(t, "6ème A", ClassDisplayName("6ème", "", "A"))
	assert.Equal(t, "Terminale D B", ClassDisplayName("Terminale", "D", "B"))
	assert.Equal(t, "1ère C 2", ClassDisplayName(" 1ère ", " C ", "2"))
}

func TestWorkload(t *testing.T) {
	tid := uuid.New()

	w := Workload(tid, nil)
	assert.Equal(t, 0, w.TotalHours)
	assert.False(t, w.Overloaded)
	assert.NotNil(t, w.Assignments)

	rows := []dto.TeacherAssignment{
		{ClassName: "6ème A", SubjectName: "Maths", HoursPerWeek: 12},
		{ClassName: "5ème A", SubjectName: "Maths", HoursPerWeek: 12},
		{ClassName: "4ème A", SubjectName: "Maths", HoursPerWeek: 6},
	}
	w = Workload(tid, rows)
	assert.Equal(t, 30, w.TotalHours)
	assert.False(t, w.Overloaded, "tepat 30 jam belum overload")

	rows = append(rows, dto.TeacherAssignment{ClassName: "3ème A", SubjectName: "Maths", HoursPerWeek: 1})
	w = Workload(tid, rows)
	assert.Equal(t, 31, w.TotalHours)
	assert.True(t, w.Overloaded)
}
