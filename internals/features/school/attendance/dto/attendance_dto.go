package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/attendance/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

// RosterItem: siswa kelas + absensi yang sudah tercatat (kalau ada)
type RosterItem struct {
	EnrollmentID     uuid.UUID     `json:"enrollment_id"`
	StudentID        uuid.UUID     `json:"student_id"`
	StudentFirstName string        `json:"student_first_name"`
	StudentLastName  string        `json:"student_last_name"`
	StudentMatricule *string       `json:"student_matricule,omitempty"`
	AttendanceID     *uuid.UUID    `json:"attendance_id,omitempty"`
	Status           *string       `json:"status,omitempty"`
	ArrivalTime      *dbtime.Clock `json:"arrival_time,omitempty"`
	LateMinutes      *int          `json:"late_minutes,omitempty"`
	Reason           *string       `json:"reason,omitempty"`
}

type StudentRecord struct {
	EnrollmentID   uuid.UUID `json:"enrollment_id" validate:"required"`
	Status         string    `json:"status" validate:"required,oneof=present late absent excused"`
	ArrivalTime    *string   `json:"arrival_time" validate:"omitempty,hhmm"`
	Reason         *string   `json:"reason" validate:"omitempty,max=500"`
	ReasonCategory *string   `json:"reason_category" validate:"omitempty,oneof=illness family transport religious other"`
}

type BulkSaveRequest struct {
	ClassID        uuid.UUID       `json:"class_id" validate:"required"`
	Date           string          `json:"date" validate:"required,datetime=2006-01-02,notfuture"`
	ClassSessionID *uuid.UUID      `json:"class_session_id"`
	Records        []StudentRecord `json:"records" validate:"required,min=1,max=200,dive"`
}

type BulkSaveResult struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type StudentHistoryItem struct {
	model.StudentAttendanceModel
	ClassName   string  `json:"class_name"`
	SubjectName *string `json:"subject_name,omitempty"`
}

type ClassStats struct {
	ClassID        uuid.UUID `json:"class_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Recorded       int64     `json:"recorded"`
	Present        int64     `json:"present"`
	Late           int64     `json:"late"`
	Absent         int64     `json:"absent"`
	Excused        int64     `json:"excused"`
	AttendanceRate float64   `json:"attendance_rate"`
}

type TrendPoint struct {
	Month   string  `json:"month"`
	Total   int64   `json:"total"`
	Present int64   `json:"present"`
	Late    int64   `json:"late"`
	Absent  int64   `json:"absent"`
	Excused int64   `json:"excused"`
	Rate    float64 `json:"rate"`
}

/* ===================== guru ===================== */

type TeacherAttendanceRequest struct {
	TeacherID     uuid.UUID `json:"teacher_id" validate:"required"`
	Date          string    `json:"date" validate:"required,datetime=2006-01-02,notfuture"`
	Status        string    `json:"status" validate:"required,oneof=present late absent excused on_leave"`
	ArrivalTime   *string   `json:"arrival_time" validate:"omitempty,hhmm"`
	DepartureTime *string   `json:"departure_time" validate:"omitempty,hhmm"`
	Reason        *string   `json:"reason" validate:"omitempty,max=500"`
}

type BulkTeacherRequest struct {
	Records []TeacherAttendanceRequest `json:"records" validate:"required,min=1,max=300,dive"`
}

type TeacherDailyItem struct {
	TeacherID   uuid.UUID                     `json:"teacher_id"`
	TeacherName string                        `json:"teacher_name"`
	Attendance  *model.TeacherAttendanceModel `json:"attendance,omitempty" gorm:"-"`
}

type PunctualityRow struct {
	TeacherID        uuid.UUID `json:"teacher_id"`
	TeacherName      string    `json:"teacher_name"`
	TotalDays        int64     `json:"total_days"`
	PresentDays      int64     `json:"present_days"`
	LateDays         int64     `json:"late_days"`
	AbsentDays       int64     `json:"absent_days"`
	ExcusedDays      int64     `json:"excused_days"`
	OnLeaveDays      int64     `json:"on_leave_days"`
	TotalLateMinutes int64     `json:"total_late_minutes"`
	AttendanceRate   float64   `json:"attendance_rate" gorm:"-"`
	PunctualityRate  float64   `json:"punctuality_rate" gorm:"-"`
}

/* ===================== settings & alerts ===================== */

type SettingsRequest struct {
	TeacherExpectedArrival *string  `json:"teacher_expected_arrival" validate:"omitempty,hhmm"`
	TeacherLateThreshold   *int     `json:"teacher_late_threshold_minutes" validate:"omitempty,min=0,max=240"`
	StudentLateThreshold   *int     `json:"student_late_threshold_minutes" validate:"omitempty,min=0,max=240"`
	ChronicAbsencePercent  *float64 `json:"chronic_absence_threshold_percent" validate:"omitempty,min=0,max=100"`
	WorkingDays            []int64  `json:"working_days" validate:"omitempty,min=1,max=7,unique,dive,min=1,max=7"`
}

// Apply: timpa field yang dikirim saja
func (r SettingsRequest) Apply(s *model.AttendanceSettingsModel) error {
	if r.TeacherExpectedArrival != nil {
		c, err := dbtime.ParseClock(*r.TeacherExpectedArrival)
		if err != nil {
			return err
		}
		s.AttendanceSettingsTeacherExpectedArrival = c
	}
	if r.TeacherLateThreshold != nil {
		s.AttendanceSettingsTeacherLateThreshold = *r.TeacherLateThreshold
	}
	if r.StudentLateThreshold != nil {
		s.AttendanceSettingsStudentLateThreshold = *r.StudentLateThreshold
	}
	if r.ChronicAbsencePercent != nil {
		s.AttendanceSettingsChronicAbsencePercent = *r.ChronicAbsencePercent
	}
	if len(r.WorkingDays) > 0 {
		s.AttendanceSettingsWorkingDays = r.WorkingDays
	}
	return nil
}

type AlertActionRequest struct {
	Note *string `json:"note" validate:"omitempty,max=1000"`
}

type AlertItem struct {
	model.AttendanceAlertModel
	TeacherName *string `json:"teacher_name,omitempty"`
	StudentName *string `json:"student_name,omitempty"`
}

type AlertCounts struct {
	Active       int64 `json:"active"`
	Acknowledged int64 `json:"acknowledged"`
	Resolved     int64 `json:"resolved"`
	Dismissed    int64 `json:"dismissed"`
	High         int64 `json:"high_active"`
}

type ChronicCheck struct {
	StudentID   uuid.UUID `json:"student_id"`
	Absences    int64     `json:"absences"`
	SchoolDays  int       `json:"school_days"`
	AbsenceRate float64   `json:"absence_rate"`
	Threshold   float64   `json:"threshold"`
	IsChronic   bool      `json:"is_chronic"`
}

type DetectResult struct {
	Checked int `json:"checked"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
