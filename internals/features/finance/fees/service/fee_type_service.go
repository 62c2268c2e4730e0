package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/features/finance/fees/model"
	helper "schoolhub_backend/internals/helpers"
)

func ListFeeTypes(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, category, status string) ([]model.FeeTypeModel, error) {
	q := db.WithContext(ctx).Where("fee_type_school_id = ?", schoolID)
	if category != "" {
		q = q.Where("fee_type_category = ?", category)
	}
	if status != "" {
		q = q.Where("fee_type_status = ?", status)
	}
	rows := []model.FeeTypeModel{}
	err := q.Order("fee_type_display_order ASC, fee_type_name ASC").Find(&rows).Error
	return rows, err
}

func loadFeeType(tx *gorm.DB, schoolID, id uuid.UUID) (model.FeeTypeModel, error) {
	var m model.FeeTypeModel
	err := tx.Where("fee_type_id = ? AND fee_type_school_id = ?", id, schoolID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, errors.Wrap(helper.ErrNotFound, "jenis biaya tidak ditemukan")
	}
	return m, err
}

func CreateFeeType(ctx context.Context, db *gorm.DB, m model.FeeTypeModel) (model.FeeTypeModel, error) {
	err := db.WithContext(ctx).Create(&m).Error
	if helper.IsUniqueViolation(err) {
		return m, errors.Wrapf(helper.ErrConflict, "kode %s sudah dipakai", m.FeeTypeCode)
	}
	return m, err
}

func UpdateFeeType(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID, u map[string]any) (model.FeeTypeModel, error) {
	tx := db.WithContext(ctx)
	m, err := loadFeeType(tx, schoolID, id)
	if err != nil {
		return m, err
	}
	if len(u) > 0 {
		if err := tx.Model(&m).Updates(u).Error; err != nil {
			return m, err
		}
	}
	return loadFeeType(tx, schoolID, id)
}

// DeleteFeeType: ditolak kalau sudah dipakai struktur biaya
func DeleteFeeType(ctx context.Context, db *gorm.DB, schoolID, id uuid.UUID) error {
	tx := db.WithContext(ctx)
	m, err := loadFeeType(tx, schoolID, id)
	if err != nil {
		return err
	}
	var n int64
	if err := tx.Model(&model.FeeStructureModel{}).Where("fee_structure_fee_type_id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrap(helper.ErrConflict, "jenis biaya masih dipakai struktur biaya, nonaktifkan saja")
	}
	return tx.Delete(&m).Error
}

/* =========================
   Templates (katalog global)
========================= */

func ListTemplates(ctx context.Context, db *gorm.DB, category string) ([]model.FeeTypeTemplateModel, error) {
	q := db.WithContext(ctx).Where("fee_type_template_is_active = TRUE")
	if category != "" {
		q = q.Where("fee_type_template_category = ?", category)
	}
	rows := []model.FeeTypeTemplateModel{}
	err := q.Order("fee_type_template_display_order ASC, fee_type_template_name ASC").Find(&rows).Error
	return rows, err
}

// CopyTemplates: salin template ke jenis biaya sekolah; kode yang sudah ada dilewati.
func CopyTemplates(ctx context.Context, db *gorm.DB, schoolID uuid.UUID, codes []string) ([]model.FeeTypeModel, error) {
	norm := make([]string, 0, len(codes))
	for _, c := range codes {
		norm = append(norm, strings.ToUpper(strings.TrimSpace(c)))
	}
	var created []model.FeeTypeModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tpls []model.FeeTypeTemplateModel
		if err := tx.Where("fee_type_template_code IN ? AND fee_type_template_is_active = TRUE", norm).
			Find(&tpls).Error; err != nil {
			return err
		}
		if len(tpls) == 0 {
			return errors.Wrap(helper.ErrNotFound, "template tidak ditemukan")
		}
		rows := make([]model.FeeTypeModel, 0, len(tpls))
		for _, t := range tpls {
			id := t.FeeTypeTemplateID
			rows = append(rows, model.FeeTypeModel{
				FeeTypeSchoolID:           schoolID,
				FeeTypeTemplateID:         &id,
				FeeTypeCode:               t.FeeTypeTemplateCode,
				FeeTypeName:               t.FeeTypeTemplateName,
				FeeTypeCategory:           t.FeeTypeTemplateCategory,
				FeeTypeIsMandatory:        t.FeeTypeTemplateIsMandatory,
				FeeTypeIsRecurring:        t.FeeTypeTemplateIsRecurring,
				FeeTypeRevenueAccountCode: t.FeeTypeTemplateRevenueAccountCode,
				FeeTypeDisplayOrder:       t.FeeTypeTemplateDisplayOrder,
				FeeTypeStatus:             model.StatusActive,
			})
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "fee_type_school_id"}, {Name: "fee_type_code"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "fee_type_deleted_at IS NULL"}}},
			DoNothing:   true,
		}).Create(&rows)
		if res.Error != nil {
			return res.Error
		}
		return tx.Where("fee_type_school_id = ? AND fee_type_code IN ?", schoolID, norm).
			Order("fee_type_display_order ASC").
			Find(&created).Error
	})
	return created, err
}

// TemplateSeed: entri yaml "fee_type_templates"
type TemplateSeed struct {
	Code               string  `yaml:"code"`
	Name               string  `yaml:"name"`
	Category           string  `yaml:"category"`
	IsMandatory        *bool   `yaml:"is_mandatory"`
	IsRecurring        bool    `yaml:"is_recurring"`
	RevenueAccountCode *string `yaml:"revenue_account_code"`
	DisplayOrder       int     `yaml:"display_order"`
}

// SeedTemplates: upsert berdasarkan kode, aman dijalankan berulang.
func SeedTemplates(ctx context.Context, db *gorm.DB, seeds []TemplateSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}
	rows := make([]model.FeeTypeTemplateModel, 0, len(seeds))
	for _, s := range seeds {
		mandatory := true
		if s.IsMandatory != nil {
			mandatory = *s.IsMandatory
		}
		rows = append(rows, model.FeeTypeTemplateModel{
			FeeTypeTemplateCode:               strings.ToUpper(strings.TrimSpace(s.Code)),
			FeeTypeTemplateName:               s.Name,
			FeeTypeTemplateCategory:           s.Category,
			FeeTypeTemplateIsMandatory:        mandatory,
			FeeTypeTemplateIsRecurring:        s.IsRecurring,
			FeeTypeTemplateRevenueAccountCode: s.RevenueAccountCode,
			FeeTypeTemplateDisplayOrder:       s.DisplayOrder,
			FeeTypeTemplateIsActive:           true,
		})
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fee_type_template_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fee_type_template_name", "fee_type_template_category", "fee_type_template_is_mandatory",
			"fee_type_template_is_recurring", "fee_type_template_revenue_account_code", "fee_type_template_display_order",
		}),
	}).Create(&rows).Error
	return len(rows), err
}
