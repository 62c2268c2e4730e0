package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/school/students/students/model"
	"schoolhub_backend/internals/helpers/dbtime"
)

type StudentRequest struct {
	FirstName        string     `json:"first_name" validate:"required,min=1,max=100"`
	LastName         string     `json:"last_name" validate:"required,min=1,max=100"`
	Matricule        *string    `json:"matricule" validate:"omitempty,min=3,max=30"`
	DOB              *string    `json:"dob" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Gender           *string    `json:"gender" validate:"omitempty,oneof=M F other"`
	BirthPlace       *string    `json:"birth_place" validate:"omitempty,max=100"`
	Nationality      *string    `json:"nationality" validate:"omitempty,max=60"`
	Address          *string    `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *string    `json:"emergency_contact" validate:"omitempty,max=150"`
	EmergencyPhone   *string    `json:"emergency_phone" validate:"omitempty,max=30"`
	BloodType        *string    `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MedicalNotes     *string    `json:"medical_notes" validate:"omitempty,max=2000"`
	AdmissionDate    *string    `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	SchoolYearID     *uuid.UUID `json:"school_year_id"`
}

func parseDate(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d, err := dbtime.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ToModel: matricule diisi belakangan kalau kosong. Tanggal masuk default hari ini.
func (r StudentRequest) ToModel(schoolID uuid.UUID) model.StudentModel {
	m := model.StudentModel{
		StudentSchoolID:         schoolID,
		StudentFirstName:        strings.TrimSpace(r.FirstName),
		StudentLastName:         strings.TrimSpace(r.LastName),
		StudentDOB:              parseDate(r.DOB),
		StudentGender:           r.Gender,
		StudentBirthPlace:       trimPtr(r.BirthPlace),
		StudentNationality:      trimPtr(r.Nationality),
		StudentAddress:          trimPtr(r.Address),
		StudentEmergencyContact: trimPtr(r.EmergencyContact),
		StudentEmergencyPhone:   trimPtr(r.EmergencyPhone),
		StudentBloodType:        r.BloodType,
		StudentMedicalNotes:     trimPtr(r.MedicalNotes),
		StudentStatus:           model.StudentStatusActive,
		StudentAdmissionDate:    parseDate(r.AdmissionDate),
	}
	if r.Matricule != nil {
		m.StudentMatricule = strings.ToUpper(strings.TrimSpace(*r.Matricule))
	}
	if m.StudentAdmissionDate == nil {
		today := dbtime.Today()
		m.StudentAdmissionDate = &today
	}
	return m
}

type UpdateStudentRequest struct {
	FirstName        *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName         *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	DOB              *string `json:"dob" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Gender           *string `json:"gender" validate:"omitempty,oneof=M F other"`
	BirthPlace       *string `json:"birth_place" validate:"omitempty,max=100"`
	Nationality      *string `json:"nationality" validate:"omitempty,max=60"`
	Address          *string `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,max=150"`
	EmergencyPhone   *string `json:"emergency_phone" validate:"omitempty,max=30"`
	BloodType        *string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MedicalNotes     *string `json:"medical_notes" validate:"omitempty,max=2000"`
}

func (r UpdateStudentRequest) Updates() map[string]any {
	up := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			up[col] = strings.TrimSpace(*v)
		}
	}
	set("student_first_name", r.FirstName)
	set("student_last_name", r.LastName)
	set("student_gender", r.Gender)
	set("student_birth_place", r.BirthPlace)
	set("student_nationality", r.Nationality)
	set("student_address", r.Address)
	set("student_emergency_contact", r.EmergencyContact)
	set("student_emergency_phone", r.EmergencyPhone)
	set("student_blood_type", r.BloodType)
	set("student_medical_notes", r.MedicalNotes)
	if d := parseDate(r.DOB); d != nil {
		up["student_dob"] = *d
	}
	return up
}

type StudentStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=active graduated transferred withdrawn"`
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

/* ---------- parents ---------- */

type ParentRequest struct {
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name" validate:"required,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	Occupation *string `json:"occupation" validate:"omitempty,max=100"`
}

func (r ParentRequest) ToModel(schoolID uuid.UUID) model.ParentModel {
	m := model.ParentModel{
		ParentSchoolID:   schoolID,
		ParentFirstName:  strings.TrimSpace(r.FirstName),
		ParentLastName:   strings.TrimSpace(r.LastName),
		ParentPhone:      trimPtr(r.Phone),
		ParentEmail:      trimPtr(r.Email),
		ParentOccupation: trimPtr(r.Occupation),
	}
	if m.ParentEmail != nil {
		low := strings.ToLower(*m.ParentEmail)
		m.ParentEmail = &low
	}
	return m
}

// LinkParentRequest: parent_id yang sudah ada, atau data parent baru.
type LinkParentRequest struct {
	ParentID     *uuid.UUID     `json:"parent_id" validate:"required_without=Parent"`
	Parent       *ParentRequest `json:"parent" validate:"required_without=ParentID,omitempty"`
	Relationship string         `json:"relationship" validate:"required,oneof=father mother guardian other"`
	IsPrimary    bool           `json:"is_primary"`
}

/* ---------- responses ---------- */

type StudentListItem struct {
	StudentID        uuid.UUID  `json:"student_id"`
	StudentMatricule string     `json:"student_matricule"`
	StudentFirstName string     `json:"student_first_name"`
	StudentLastName  string     `json:"student_last_name"`
	StudentDOB       *time.Time `json:"student_dob,omitempty"`
	StudentGender    *string    `json:"student_gender,omitempty"`
	StudentStatus    string     `json:"student_status"`
	StudentPhotoURL  *string    `json:"student_photo_url,omitempty"`
	ClassID          *uuid.UUID `json:"class_id,omitempty"`
	ClassName        *string    `json:"class_name,omitempty"`
	SeriesName       *string    `json:"series_name,omitempty"`
}

type ParentLink struct {
	model.ParentModel
	Relationship string `json:"relationship"`
	IsPrimary    bool   `json:"is_primary"`
}

type CurrentEnrollment struct {
	EnrollmentID   uuid.UUID `json:"enrollment_id"`
	ClassID        uuid.UUID `json:"class_id"`
	ClassName      string    `json:"class_name"`
	SchoolYearID   uuid.UUID `json:"school_year_id"`
	SchoolYearName string    `json:"school_year_name"`
	Status         string    `json:"status"`
	RollNumber     *int      `json:"roll_number,omitempty"`
}

type StudentProfile struct {
	Student           model.StudentModel `json:"student"`
	Parents           []ParentLink       `json:"parents"`
	CurrentEnrollment *CurrentEnrollment `json:"current_enrollment"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type StudentStats struct {
	Total         int64       `json:"total"`
	ByStatus      []CountItem `json:"by_status"`
	ByGender      []CountItem `json:"by_gender"`
	NewAdmissions int64       `json:"new_admissions"`
}

type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}
