package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StudentStatusActive      = "active"
	StudentStatusGraduated   = "graduated"
	StudentStatusTransferred = "transferred"
	StudentStatusWithdrawn   = "withdrawn"
)

type StudentModel struct {
	StudentID       uuid.UUID  `gorm:"column:student_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_id"`
	StudentSchoolID uuid.UUID  `gorm:"column:student_school_id;type:uuid;not null;uniqueIndex:uq_student_matricule" json:"student_school_id"`
	StudentUserID   *uuid.UUID `gorm:"column:student_user_id;type:uuid" json:"student_user_id,omitempty"`

	StudentMatricule   string     `gorm:"column:student_matricule;size:30;not null;uniqueIndex:uq_student_matricule" json:"student_matricule"`
	StudentFirstName   string     `gorm:"column:student_first_name;size:100;not null" json:"student_first_name"`
	StudentLastName    string     `gorm:"column:student_last_name;size:100;not null;index" json:"student_last_name"`
	StudentDOB         *time.Time `gorm:"column:student_dob;type:date" json:"student_dob,omitempty"`
	StudentGender      *string    `gorm:"column:student_gender;size:10" json:"student_gender,omitempty"`
	StudentPhotoURL    *string    `gorm:"column:student_photo_url" json:"student_photo_url,omitempty"`
	StudentBirthPlace  *string    `gorm:"column:student_birth_place;size:100" json:"student_birth_place,omitempty"`
	StudentNationality *string    `gorm:"column:student_nationality;size:60" json:"student_nationality,omitempty"`
	StudentAddress     *string    `gorm:"column:student_address" json:"student_address,omitempty"`

	StudentEmergencyContact *string `gorm:"column:student_emergency_contact;size:150" json:"student_emergency_contact,omitempty"`
	StudentEmergencyPhone   *string `gorm:"column:student_emergency_phone;size:30" json:"student_emergency_phone,omitempty"`
	StudentBloodType        *string `gorm:"column:student_blood_type;size:5" json:"student_blood_type,omitempty"`
	StudentMedicalNotes     *string `gorm:"column:student_medical_notes" json:"student_medical_notes,omitempty"`

	StudentStatus         string     `gorm:"column:student_status;size:20;not null;default:active;index" json:"student_status"`
	StudentAdmissionDate  *time.Time `gorm:"column:student_admission_date;type:date" json:"student_admission_date,omitempty"`
	StudentStatusReason   *string    `gorm:"column:student_status_reason" json:"student_status_reason,omitempty"`
	StudentWithdrawalDate *time.Time `gorm:"column:student_withdrawal_date;type:date" json:"student_withdrawal_date,omitempty"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"-"`
}

func (StudentModel) TableName() string { return "students" }

func (s StudentModel) FullName() string { return s.StudentFirstName + " " + s.StudentLastName }

type ParentModel struct {
	ParentID         uuid.UUID  `gorm:"column:parent_id;type:uuid;default:gen_random_uuid();primaryKey" json:"parent_id"`
	ParentSchoolID   uuid.UUID  `gorm:"column:parent_school_id;type:uuid;not null;index" json:"parent_school_id"`
	ParentUserID     *uuid.UUID `gorm:"column:parent_user_id;type:uuid;index" json:"parent_user_id,omitempty"`
	ParentFirstName  string     `gorm:"column:parent_first_name;size:100;not null" json:"parent_first_name"`
	ParentLastName   string     `gorm:"column:parent_last_name;size:100;not null" json:"parent_last_name"`
	ParentPhone      *string    `gorm:"column:parent_phone;size:30;index" json:"parent_phone,omitempty"`
	ParentEmail      *string    `gorm:"column:parent_email;size:255;index" json:"parent_email,omitempty"`
	ParentOccupation *string    `gorm:"column:parent_occupation;size:100" json:"parent_occupation,omitempty"`

	ParentCreatedAt time.Time      `gorm:"column:parent_created_at;autoCreateTime" json:"parent_created_at"`
	ParentUpdatedAt time.Time      `gorm:"column:parent_updated_at;autoUpdateTime" json:"parent_updated_at"`
	ParentDeletedAt gorm.DeletedAt `gorm:"column:parent_deleted_at;index" json:"-"`
}

func (ParentModel) TableName() string { return "parents" }

func (p ParentModel) FullName() string { return p.ParentFirstName + " " + p.ParentLastName }

type StudentParentModel struct {
	StudentParentID           uuid.UUID `gorm:"column:student_parent_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_parent_id"`
	StudentParentStudentID    uuid.UUID `gorm:"column:student_parent_student_id;type:uuid;not null;uniqueIndex:uq_student_parent" json:"student_parent_student_id"`
	StudentParentParentID     uuid.UUID `gorm:"column:student_parent_parent_id;type:uuid;not null;uniqueIndex:uq_student_parent;index" json:"student_parent_parent_id"`
	StudentParentRelationship string    `gorm:"column:student_parent_relationship;size:20;not null" json:"student_parent_relationship"`
	StudentParentIsPrimary    bool      `gorm:"column:student_parent_is_primary;not null;default:false" json:"student_parent_is_primary"`
	StudentParentCreatedAt    time.Time `gorm:"column:student_parent_created_at;autoCreateTime" json:"student_parent_created_at"`
}

func (StudentParentModel) TableName() string { return "student_parents" }

// MatriculeSequenceModel: counter per sekolah + tahun ajaran
type MatriculeSequenceModel struct {
	MatriculeSequenceID           uuid.UUID `gorm:"column:matricule_sequence_id;type:uuid;default:gen_random_uuid();primaryKey" json:"matricule_sequence_id"`
	MatriculeSequenceSchoolID     uuid.UUID `gorm:"column:matricule_sequence_school_id;type:uuid;not null;uniqueIndex:uq_matricule_sequence" json:"matricule_sequence_school_id"`
	MatriculeSequenceSchoolYearID uuid.UUID `gorm:"column:matricule_sequence_school_year_id;type:uuid;not null;uniqueIndex:uq_matricule_sequence" json:"matricule_sequence_school_year_id"`
	MatriculeSequencePrefix       string    `gorm:"column:matricule_sequence_prefix;size:4;not null" json:"matricule_sequence_prefix"`
	MatriculeSequenceYear         string    `gorm:"column:matricule_sequence_year;size:2;not null" json:"matricule_sequence_year"`
	MatriculeSequenceLastNumber   int       `gorm:"column:matricule_sequence_last_number;not null;default:0" json:"matricule_sequence_last_number"`
	MatriculeSequenceUpdatedAt    time.Time `gorm:"column:matricule_sequence_updated_at;autoUpdateTime" json:"matricule_sequence_updated_at"`
}

func (MatriculeSequenceModel) TableName() string { return "matricule_sequences" }
