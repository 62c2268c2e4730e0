package service

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/schools/catalogs/model"
)

// Struktur file seed (yaml)
type CatalogSeed struct {
	EducationLevels []LevelSeed   `yaml:"education_levels"`
	Subjects        []SubjectSeed `yaml:"subjects"`
}

type LevelSeed struct {
	Code   string      `yaml:"code"`
	Name   string      `yaml:"name"`
	Order  int         `yaml:"order"`
	Tracks []TrackSeed `yaml:"tracks"`
}

type TrackSeed struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Grades []struct {
		Code  string `yaml:"code"`
		Name  string `yaml:"name"`
		Order int    `yaml:"order"`
	} `yaml:"grades"`
	Series []struct {
		Code string `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"series"`
}

type SubjectSeed struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	Category  string `yaml:"category"`
}

type SeedResult struct {
	Levels   int `json:"levels"`
	Tracks   int `json:"tracks"`
	Grades   int `json:"grades"`
	Series   int `json:"series"`
	Subjects int `json:"subjects"`
}

// SeedCatalogs: upsert berdasarkan code (nama untuk subject). Aman dijalankan berulang.
func SeedCatalogs(ctx context.Context, db *gorm.DB, seed CatalogSeed) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, l := range seed.EducationLevels {
			lvl := model.EducationLevelModel{
				EducationLevelCode:  strings.ToUpper(l.Code),
				EducationLevelName:  l.Name,
				EducationLevelOrder: l.Order,
			}
			if err := upsert(tx, &lvl, "education_level_code", "education_level_name", "education_level_order"); err != nil {
				return err
			}
			if err := tx.Where("education_level_code = ?", lvl.EducationLevelCode).First(&lvl).Error; err != nil {
				return err
			}
			res.Levels++

			for _, t := range l.Tracks {
				tr := model.TrackModel{
					TrackCode:             strings.ToUpper(t.Code),
					TrackName:             t.Name,
					TrackEducationLevelID: lvl.EducationLevelID,
				}
				if err := upsert(tx, &tr, "track_code", "track_name", "track_education_level_id"); err != nil {
					return err
				}
				if err := tx.Where("track_code = ?", tr.TrackCode).First(&tr).Error; err != nil {
					return err
				}
				res.Tracks++

				for _, g := range t.Grades {
					gr := model.GradeModel{
						GradeCode:    strings.ToUpper(g.Code),
						GradeName:    g.Name,
						GradeOrder:   g.Order,
						GradeTrackID: tr.TrackID,
					}
					if err := upsert(tx, &gr, "grade_code", "grade_name", "grade_order", "grade_track_id"); err != nil {
						return err
					}
					res.Grades++
				}
				for _, s := range t.Series {
					se := model.SerieModel{
						SerieCode:    strings.ToUpper(s.Code),
						SerieName:    s.Name,
						SerieTrackID: tr.TrackID,
					}
					if err := upsert(tx, &se, "serie_code", "serie_name", "serie_track_id"); err != nil {
						return err
					}
					res.Series++
				}
			}
		}

		for _, s := range seed.Subjects {
			var n int64
			if err := tx.Model(&model.SubjectModel{}).Where("subject_name = ?", s.Name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			sub := model.SubjectModel{SubjectName: s.Name, SubjectCategory: s.Category}
			if sub.SubjectCategory == "" {
				sub.SubjectCategory = model.SubjectCategoryOther
			}
			if s.ShortName != "" {
				short := s.ShortName
				sub.SubjectShortName = &short
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
			res.Subjects++
		}
		return nil
	})
	return res, err
}

func upsert(tx *gorm.DB, row any, conflictCol string, updateCols ...string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: conflictCol}},
		DoUpdates: clause.AssignmentColumns(updateCols),
	}).Create(row).Error
}
