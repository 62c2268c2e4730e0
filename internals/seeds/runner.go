package seeds

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/constants"
	feeService "schoolhub_backend/internals/features/finance/fees/service"
	catalogService "schoolhub_backend/internals/features/schools/catalogs/service"
	roleModel "schoolhub_backend/internals/features/users/roles/model"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	userService "schoolhub_backend/internals/features/users/user/service"
)

// File: isi satu file seed yaml. Semua bagian opsional.
type File struct {
	Roles            []RoleSeed                 `yaml:"roles"`
	Catalogs         catalogService.CatalogSeed `yaml:"catalogs"`
	FeeTypeTemplates []feeService.TemplateSeed  `yaml:"fee_type_templates"`
	Owner            *OwnerSeed                 `yaml:"owner"`
}

type RoleSeed struct {
	Slug        string              `yaml:"slug"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Scope       string              `yaml:"scope"`
	Permissions map[string][]string `yaml:"permissions"`
}

type OwnerSeed struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
}

type Result struct {
	Roles     int                       `json:"roles"`
	Catalogs  catalogService.SeedResult `json:"catalogs"`
	Templates int                       `json:"fee_type_templates"`
	// OwnerPassword hanya terisi kalau akun owner baru dibuat
	OwnerPassword string `json:"-"`
}

func LoadFile(path string) (File, error) {
	var f File
	raw, err := os.ReadFile(path)
	if err != nil {
		return f, errors.Wrapf(err, "gagal membaca file seed %s", path)
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return f, errors.Wrapf(err, "gagal decode yaml %s", path)
	}
	return f, nil
}

// Run: roles dulu (owner butuh role "owner"), lalu katalog dan template biaya.
// Semua upsert, aman dijalankan ulang.
func Run(ctx context.Context, db *gorm.DB, f File) (Result, error) {
	var res Result

	n, err := SeedRoles(ctx, db, f.Roles)
	if err != nil {
		return res, errors.Wrap(err, "seed roles")
	}
	res.Roles = n
	log.Printf("✅ %d role di-seed", n)

	if res.Catalogs, err = catalogService.SeedCatalogs(ctx, db, f.Catalogs); err != nil {
		return res, errors.Wrap(err, "seed katalog")
	}
	log.Printf("✅ katalog: %d jenjang, %d jurusan, %d tingkat, %d seri, %d mapel",
		res.Catalogs.Levels, res.Catalogs.Tracks, res.Catalogs.Grades, res.Catalogs.Series, res.Catalogs.Subjects)

	if res.Templates, err = feeService.SeedTemplates(ctx, db, f.FeeTypeTemplates); err != nil {
		return res, errors.Wrap(err, "seed template biaya")
	}
	log.Printf("✅ %d template jenis biaya di-seed", res.Templates)

	if f.Owner != nil && f.Owner.Email != "" {
		pwd, err := seedOwner(ctx, db, *f.Owner)
		if err != nil {
			return res, errors.Wrap(err, "seed owner")
		}
		res.OwnerPassword = pwd
	}
	return res, nil
}

func SeedRoles(ctx context.Context, db *gorm.DB, roles []RoleSeed) (int, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	rows := make([]roleModel.RoleModel, 0, len(roles))
	for _, r := range roles {
		perms := r.Permissions
		if perms == nil {
			perms = map[string][]string{}
		}
		raw, err := json.Marshal(perms)
		if err != nil {
			return 0, err
		}
		scope := r.Scope
		if scope == "" {
			scope = roleModel.RoleScopeSchool
		}
		var desc *string
		if d := strings.TrimSpace(r.Description); d != "" {
			desc = &d
		}
		rows = append(rows, roleModel.RoleModel{
			RoleSlug:        strings.ToLower(strings.TrimSpace(r.Slug)),
			RoleName:        r.Name,
			RoleDescription: desc,
			RolePermissions: datatypes.JSON(raw),
			RoleScope:       scope,
			RoleIsSystem:    true,
		})
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "role_slug"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "role_deleted_at IS NULL"}}},
		DoUpdates:   clause.AssignmentColumns([]string{"role_name", "role_description", "role_permissions", "role_scope", "role_is_system"}),
	}).Create(&rows).Error
	return len(rows), err
}

func seedOwner(ctx context.Context, db *gorm.DB, o OwnerSeed) (string, error) {
	var pwd string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, temp, err := userService.ProvisionUser(tx, userService.NewAccount{
			Email:    o.Email,
			FullName: o.FullName,
			UserName: userService.DefaultUserName(o.Email),
		})
		if err != nil {
			return err
		}
		pwd = temp
		return roleService.GrantRole(ctx, tx, u.ID, constants.RoleOwner, nil, nil)
	})
	if err == nil && pwd == "" {
		log.Printf("ℹ️ Owner %s sudah ada, dilewati.", o.Email)
	}
	return pwd, err
}
