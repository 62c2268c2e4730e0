package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	roleModel "schoolhub_backend/internals/features/users/roles/model"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

// Permissions: resource → daftar aksi. "*" di resource atau aksi = semua.
type Permissions map[string][]string

func ParsePermissions(raw datatypes.JSON) Permissions {
	p := Permissions{}
	if len(raw) == 0 {
		return p
	}
	_ = json.Unmarshal(raw, &p)
	return p
}

func HasPermission(perms Permissions, resource, action string) bool {
	check := func(actions []string) bool {
		for _, a := range actions {
			if a == "*" || strings.EqualFold(a, action) {
				return true
			}
		}
		return false
	}
	if actions, ok := perms["*"]; ok && check(actions) {
		return true
	}
	for res, actions := range perms {
		if strings.EqualFold(res, resource) && check(actions) {
			return true
		}
	}
	return false
}

type grantRow struct {
	RoleSlug  string     `gorm:"column:role_slug"`
	RoleScope string     `gorm:"column:role_scope"`
	SchoolID  *uuid.UUID `gorm:"column:user_role_school_id"`
}

// LoadRolesClaim: kumpulkan role user → bentuk claim token.
func LoadRolesClaim(ctx context.Context, db *gorm.DB, userID uuid.UUID) (helperAuth.RolesClaim, error) {
	var rows []grantRow
	err := db.WithContext(ctx).Raw(`
		SELECT r.role_slug, r.role_scope, ur.user_role_school_id
		FROM user_roles ur
		JOIN roles r ON r.role_id = ur.user_role_role_id AND r.role_deleted_at IS NULL
		WHERE ur.user_role_user_id = ? AND ur.user_role_deleted_at IS NULL
		ORDER BY r.role_slug
	`, userID).Scan(&rows).Error
	if err != nil {
		return helperAuth.RolesClaim{}, errors.Wrap(err, "load user roles")
	}
	return BuildRolesClaim(rows), nil
}

func BuildRolesClaim(rows []grantRow) helperAuth.RolesClaim {
	rc := helperAuth.RolesClaim{RolesGlobal: []string{}, SchoolRoles: []helperAuth.SchoolRolesEntry{}}
	idx := map[uuid.UUID]int{}
	for _, r := range rows {
		if r.SchoolID == nil || r.RoleScope == roleModel.RoleScopeSystem {
			rc.RolesGlobal = appendUnique(rc.RolesGlobal, r.RoleSlug)
			continue
		}
		i, ok := idx[*r.SchoolID]
		if !ok {
			rc.SchoolRoles = append(rc.SchoolRoles, helperAuth.SchoolRolesEntry{SchoolID: *r.SchoolID})
			i = len(rc.SchoolRoles) - 1
			idx[*r.SchoolID] = i
		}
		rc.SchoolRoles[i].Roles = appendUnique(rc.SchoolRoles[i].Roles, r.RoleSlug)
	}
	return rc
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// GrantRole: idempotent, tidak dobel kalau sudah punya.
func GrantRole(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roleSlug string, schoolID, by *uuid.UUID) error {
	var role roleModel.RoleModel
	if err := tx.WithContext(ctx).Where("role_slug = ?", roleSlug).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(helper.ErrNotFound, "role %s belum di-seed", roleSlug)
		}
		return err
	}
	q := tx.WithContext(ctx).Model(&roleModel.UserRoleModel{}).
		Where("user_role_user_id = ? AND user_role_role_id = ?", userID, role.RoleID)
	if schoolID == nil {
		q = q.Where("user_role_school_id IS NULL")
	} else {
		q = q.Where("user_role_school_id = ?", *schoolID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&roleModel.UserRoleModel{
		UserRoleUserID:     userID,
		UserRoleRoleID:     role.RoleID,
		UserRoleSchoolID:   schoolID,
		UserRoleAssignedBy: by,
	}).Error
}

// RevokeRole: cabut role (per sekolah atau global kalau schoolID nil). Tidak error kalau memang tidak ada.
func RevokeRole(ctx context.Context, tx *gorm.DB, userID uuid.UUID, roleSlug string, schoolID *uuid.UUID) error {
	q := tx.WithContext(ctx).
		Where("user_role_user_id = ?", userID).
		Where("user_role_role_id IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&roleModel.RoleModel{}).Select("role_id").Where("role_slug = ?", roleSlug))
	if schoolID == nil {
		q = q.Where("user_role_school_id IS NULL")
	} else {
		q = q.Where("user_role_school_id = ?", *schoolID)
	}
	return q.Delete(&roleModel.UserRoleModel{}).Error
}
