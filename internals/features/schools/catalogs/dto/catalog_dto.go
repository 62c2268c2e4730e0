package dto

import (
	"strings"

	"github.com/google/uuid"

	"schoolhub_backend/internals/features/schools/catalogs/model"
)

func code(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

/* ---------- Education level ---------- */

type EducationLevelRequest struct {
	Code  string `json:"code" validate:"required,min=1,max=20"`
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Order int    `json:"order" validate:"min=0,max=100"`
}

func (r EducationLevelRequest) ToModel() model.EducationLevelModel {
	return model.EducationLevelModel{
		EducationLevelCode:  code(r.Code),
		EducationLevelName:  strings.TrimSpace(r.Name),
		EducationLevelOrder: r.Order,
	}
}

func (r EducationLevelRequest) Updates() map[string]any {
	return map[string]any{
		"education_level_code":  code(r.Code),
		"education_level_name":  strings.TrimSpace(r.Name),
		"education_level_order": r.Order,
	}
}

/* ---------- Track ---------- */

type TrackRequest struct {
	Code             string    `json:"code" validate:"required,min=1,max=20"`
	Name             string    `json:"name" validate:"required,min=2,max=100"`
	EducationLevelID uuid.UUID `json:"education_level_id" validate:"required"`
}

func (r TrackRequest) ToModel() model.TrackModel {
	return model.TrackModel{
		TrackCode:             code(r.Code),
		TrackName:             strings.TrimSpace(r.Name),
		TrackEducationLevelID: r.EducationLevelID,
	}
}

func (r TrackRequest) Updates() map[string]any {
	return map[string]any{
		"track_code":               code(r.Code),
		"track_name":               strings.TrimSpace(r.Name),
		"track_education_level_id": r.EducationLevelID,
	}
}

/* ---------- Grade ---------- */

type GradeRequest struct {
	Code    string    `json:"code" validate:"required,min=1,max=20"`
	Name    string    `json:"name" validate:"required,min=1,max=100"`
	Order   int       `json:"order" validate:"min=0,max=100"`
	TrackID uuid.UUID `json:"track_id" validate:"required"`
}

func (r GradeRequest) ToModel() model.GradeModel {
	return model.GradeModel{
		GradeCode:    code(r.Code),
		GradeName:    strings.TrimSpace(r.Name),
		GradeOrder:   r.Order,
		GradeTrackID: r.TrackID,
	}
}

func (r GradeRequest) Updates() map[string]any {
	return map[string]any{
		"grade_code":     code(r.Code),
		"grade_name":     strings.TrimSpace(r.Name),
		"grade_order":    r.Order,
		"grade_track_id": r.TrackID,
	}
}

type ReorderGradesRequest struct {
	Items []ReorderItem `json:"items" validate:"required,min=1,dive"`
}

type ReorderItem struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Order int       `json:"order" validate:"min=0,max=1000"`
}

/* ---------- Serie ---------- */

type SerieRequest struct {
	Code    string    `json:"code" validate:"required,min=1,max=20"`
	Name    string    `json:"name" validate:"required,min=1,max=100"`
	TrackID uuid.UUID `json:"track_id" validate:"required"`
}

func (r SerieRequest) ToModel() model.SerieModel {
	return model.SerieModel{
		SerieCode:    code(r.Code),
		SerieName:    strings.TrimSpace(r.Name),
		SerieTrackID: r.TrackID,
	}
}

func (r SerieRequest) Updates() map[string]any {
	return map[string]any{
		"serie_code":     code(r.Code),
		"serie_name":     strings.TrimSpace(r.Name),
		"serie_track_id": r.TrackID,
	}
}

/* ---------- Subject ---------- */

type SubjectRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	ShortName *string `json:"short_name" validate:"omitempty,max=20"`
	Category  string  `json:"category" validate:"required,oneof=Scientifique Littéraire Sportif Autre"`
}

func (r SubjectRequest) ToModel() model.SubjectModel {
	return model.SubjectModel{
		SubjectName:      strings.TrimSpace(r.Name),
		SubjectShortName: r.ShortName,
		SubjectCategory:  r.Category,
	}
}

func (r SubjectRequest) Updates() map[string]any {
	return map[string]any{
		"subject_name":       strings.TrimSpace(r.Name),
		"subject_short_name": r.ShortName,
		"subject_category":   r.Category,
	}
}

type CatalogStats struct {
	EducationLevels int64 `json:"education_levels"`
	Tracks          int64 `json:"tracks"`
	Grades          int64 `json:"grades"`
	Series          int64 `json:"series"`
	Subjects        int64 `json:"subjects"`
}
