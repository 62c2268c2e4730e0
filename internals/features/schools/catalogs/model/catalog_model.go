package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Data referensi global (tidak per sekolah), dikelola owner.

type EducationLevelModel struct {
	EducationLevelID    uuid.UUID `gorm:"column:education_level_id;type:uuid;default:gen_random_uuid();primaryKey" json:"education_level_id"`
	EducationLevelCode  string    `gorm:"column:education_level_code;size:20;not null;uniqueIndex" json:"education_level_code"`
	EducationLevelName  string    `gorm:"column:education_level_name;size:100;not null" json:"education_level_name"`
	EducationLevelOrder int       `gorm:"column:education_level_order;not null;default:0" json:"education_level_order"`

	EducationLevelCreatedAt time.Time      `gorm:"column:education_level_created_at;autoCreateTime" json:"education_level_created_at"`
	EducationLevelUpdatedAt time.Time      `gorm:"column:education_level_updated_at;autoUpdateTime" json:"education_level_updated_at"`
	EducationLevelDeletedAt gorm.DeletedAt `gorm:"column:education_level_deleted_at;index" json:"-"`
}

func (EducationLevelModel) TableName() string { return "education_levels" }

type TrackModel struct {
	TrackID               uuid.UUID `gorm:"column:track_id;type:uuid;default:gen_random_uuid();primaryKey" json:"track_id"`
	TrackCode             string    `gorm:"column:track_code;size:20;not null;uniqueIndex" json:"track_code"`
	TrackName             string    `gorm:"column:track_name;size:100;not null" json:"track_name"`
	TrackEducationLevelID uuid.UUID `gorm:"column:track_education_level_id;type:uuid;not null;index" json:"track_education_level_id"`

	TrackCreatedAt time.Time      `gorm:"column:track_created_at;autoCreateTime" json:"track_created_at"`
	TrackUpdatedAt time.Time      `gorm:"column:track_updated_at;autoUpdateTime" json:"track_updated_at"`
	TrackDeletedAt gorm.DeletedAt `gorm:"column:track_deleted_at;index" json:"-"`
}

func (TrackModel) TableName() string { return "tracks" }

// GradeModel: tingkat/kelas (6ème, 5ème, ...), bukan nilai siswa.
type GradeModel struct {
	GradeID      uuid.UUID `gorm:"column:grade_id;type:uuid;default:gen_random_uuid();primaryKey" json:"grade_id"`
	GradeCode    string    `gorm:"column:grade_code;size:20;not null;uniqueIndex" json:"grade_code"`
	GradeName    string    `gorm:"column:grade_name;size:100;not null" json:"grade_name"`
	GradeOrder   int       `gorm:"column:grade_order;not null;default:0;index" json:"grade_order"`
	GradeTrackID uuid.UUID `gorm:"column:grade_track_id;type:uuid;not null;index" json:"grade_track_id"`

	GradeCreatedAt time.Time      `gorm:"column:grade_created_at;autoCreateTime" json:"grade_created_at"`
	GradeUpdatedAt time.Time      `gorm:"column:grade_updated_at;autoUpdateTime" json:"grade_updated_at"`
	GradeDeletedAt gorm.DeletedAt `gorm:"column:grade_deleted_at;index" json:"-"`
}

func (GradeModel) TableName() string { return "grades" }

type SerieModel struct {
	SerieID      uuid.UUID `gorm:"column:serie_id;type:uuid;default:gen_random_uuid();primaryKey" json:"serie_id"`
	SerieCode    string    `gorm:"column:serie_code;size:20;not null;uniqueIndex" json:"serie_code"`
	SerieName    string    `gorm:"column:serie_name;size:100;not null" json:"serie_name"`
	SerieTrackID uuid.UUID `gorm:"column:serie_track_id;type:uuid;not null;index" json:"serie_track_id"`

	SerieCreatedAt time.Time      `gorm:"column:serie_created_at;autoCreateTime" json:"serie_created_at"`
	SerieUpdatedAt time.Time      `gorm:"column:serie_updated_at;autoUpdateTime" json:"serie_updated_at"`
	SerieDeletedAt gorm.DeletedAt `gorm:"column:serie_deleted_at;index" json:"-"`
}

func (SerieModel) TableName() string { return "series" }

const (
	SubjectCategoryScience    = "Scientifique"
	SubjectCategoryLiterature = "Littéraire"
	SubjectCategorySport      = "Sportif"
	SubjectCategoryOther      = "Autre"
)

type SubjectModel struct {
	SubjectID        uuid.UUID `gorm:"column:subject_id;type:uuid;default:gen_random_uuid();primaryKey" json:"subject_id"`
	SubjectName      string    `gorm:"column:subject_name;size:100;not null;uniqueIndex:uq_subjects_name,where:subject_deleted_at IS NULL" json:"subject_name"`
	SubjectShortName *string   `gorm:"column:subject_short_name;size:20" json:"subject_short_name,omitempty"`
	SubjectCategory  string    `gorm:"column:subject_category;size:20;not null;default:Autre" json:"subject_category"`

	SubjectCreatedAt time.Time      `gorm:"column:subject_created_at;autoCreateTime" json:"subject_created_at"`
	SubjectUpdatedAt time.Time      `gorm:"column:subject_updated_at;autoUpdateTime" json:"subject_updated_at"`
	SubjectDeletedAt gorm.DeletedAt `gorm:"column:subject_deleted_at;index" json:"-"`
}

func (SubjectModel) TableName() string { return "subjects" }
