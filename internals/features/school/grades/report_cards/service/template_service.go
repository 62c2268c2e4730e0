package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/features/school/grades/report_cards/dto"
	"schoolhub_backend/internals/features/school/grades/report_cards/model"
	helper "schoolhub_backend/internals/helpers"
)

func clearDefault(tx *gorm.DB, schoolID uuid.UUID, keep *uuid.UUID) error {
	q := tx.Model(&model.ReportCardTemplateModel{}).
		Where("report_card_template_school_id = ? AND report_card_template_is_default", schoolID)
	if keep != nil {
		q = q.Where("report_card_template_id <> ?", *keep)
	}
	return q.Update("report_card_template_is_default", false).Error
}

// CreateTemplate: template pertama sekolah otomatis jadi default
func CreateTemplate(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, req dto.TemplateRequest) (model.ReportCardTemplateModel, error) {
	m := model.ReportCardTemplateModel{
		ReportCardTemplateSchoolID:  schoolID,
		ReportCardTemplateName:      strings.TrimSpace(req.Name),
		ReportCardTemplateIsDefault: req.IsDefault,
		ReportCardTemplateConfig:    dto.MergeConfig(dto.DefaultTemplateConfig(), req.Config),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.ReportCardTemplateModel{}).
			Where("report_card_template_school_id = ?", schoolID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			m.ReportCardTemplateIsDefault = true
		}
		if m.ReportCardTemplateIsDefault {
			if err := clearDefault(tx, schoolID, nil); err != nil {
				return err
			}
		}
		return tx.Create(&m).Error
	})
	return m, err
}

func LoadTemplate(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) (model.ReportCardTemplateModel, error) {
	var m model.ReportCardTemplateModel
	err := db.WithContext(ctx).
		Where("report_card_template_id = ? AND report_card_template_school_id = ?", id, schoolID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "template rapor tidak ditemukan")
	}
	return m, err
}

func UpdateTemplate(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, req dto.UpdateTemplateRequest) (model.ReportCardTemplateModel, error) {
	var m model.ReportCardTemplateModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = LoadTemplate(ctx, tx, schoolID, id); err != nil {
			return err
		}
		upd := map[string]any{}
		if req.Name != nil {
			upd["report_card_template_name"] = strings.TrimSpace(*req.Name)
		}
		if req.Config != nil {
			upd["report_card_template_config"] = dto.MergeConfig(m.ReportCardTemplateConfig, req.Config)
		}
		if req.IsDefault != nil {
			if *req.IsDefault {
				if err := clearDefault(tx, schoolID, &id); err != nil {
					return err
				}
			}
			upd["report_card_template_is_default"] = *req.IsDefault
		}
		if len(upd) == 0 {
			return nil
		}
		return tx.Model(&m).Updates(upd).Error
	})
	return m, err
}

// DeleteTemplate: template default tidak boleh dihapus selama masih ada template lain
func DeleteTemplate(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	m, err := LoadTemplate(ctx, db, schoolID, id)
	if err != nil {
		return err
	}
	if m.ReportCardTemplateIsDefault {
		var others int64
		if err := db.WithContext(ctx).Model(&model.ReportCardTemplateModel{}).
			Where("report_card_template_school_id = ? AND report_card_template_id <> ?", schoolID, id).
			Count(&others).Error; err != nil {
			return err
		}
		if others > 0 {
			return errors.Wrap(helper.ErrInvalidState, "jadikan template lain default sebelum menghapus")
		}
	}
	return db.WithContext(ctx).Delete(&m).Error
}
