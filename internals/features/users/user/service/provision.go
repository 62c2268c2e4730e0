package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	authService "schoolhub_backend/internals/features/users/auth/service"
	"schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
)

// NewAccount: data minimal untuk membuat akun staf/guru/orang tua dari sisi admin.
type NewAccount struct {
	Email    string
	FullName string
	UserName string
	Phone    *string
}

// DefaultUserName: bagian lokal email + 4 karakter acak.
func DefaultUserName(email string) string {
	local := strings.SplitN(strings.ToLower(strings.TrimSpace(email)), "@", 2)[0]
	if len(local) > 40 {
		local = local[:40]
	}
	return local + "_" + uuid.NewString()[:4]
}

// ProvisionUser cari user berdasarkan email (case-insensitive). Kalau belum ada,
// buat user baru dengan password acak. tempPwd kosong berarti user lama.
func ProvisionUser(tx *gorm.DB, acc NewAccount) (user model.UserModel, tempPwd string, err error) {
	email := strings.ToLower(strings.TrimSpace(acc.Email))
	if email == "" {
		return user, "", errors.Wrap(helper.ErrBadRequest, "email wajib diisi")
	}

	err = tx.Where("LOWER(email) = ?", email).First(&user).Error
	if err == nil {
		return user, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, "", err
	}

	tempPwd = authService.RandomPassword(12)
	hash, err := authService.HashPassword(tempPwd)
	if err != nil {
		return user, "", err
	}
	name := strings.TrimSpace(acc.FullName)
	userName := strings.TrimSpace(acc.UserName)
	if userName == "" {
		userName = DefaultUserName(email)
	}
	user = model.UserModel{
		UserName: userName,
		FullName: &name,
		Email:    email,
		Phone:    acc.Phone,
		Password: &hash,
		IsActive: true,
	}
	if err := tx.Create(&user).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return user, "", errors.Wrap(helper.ErrConflict, "user_name sudah dipakai")
		}
		return user, "", err
	}
	return user, tempPwd, nil
}
