package controller

import (
	"context"
	"errors"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/constants"
	authDto "schoolhub_backend/internals/features/users/auth/dto"
	authService "schoolhub_backend/internals/features/users/auth/service"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Tokens   authService.TokenConfig
}

func NewAuthController(db *gorm.DB, v *validator.Validate) *AuthController {
	if v == nil {
		v = helper.NewValidator()
	}
	return &AuthController{DB: db, Validate: v, Tokens: authService.DefaultTokenConfig()}
}

func reqCtx(c *fiber.Ctx) context.Context {
	if uc := c.UserContext(); uc != nil {
		return uc
	}
	return context.Background()
}

func (ac *AuthController) setTokenCookies(c *fiber.Ctx, pair authDto.TokenPairResponse) {
	secure := configs.GetEnvBool("COOKIE_SECURE", true)
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
		Expires:  time.Now().Add(ac.Tokens.AccessTTL),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Strict",
		Path:     "/api/auth",
		Expires:  time.Now().Add(ac.Tokens.RefreshTTL),
	})
}

func (ac *AuthController) clearTokenCookies(c *fiber.Ctx) {
	c.ClearCookie("access_token")
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Path: "/api/auth", Expires: time.Unix(0, 0), HTTPOnly: true})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authDto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if err := ac.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var u userModel.UserModel
	err := ac.DB.WithContext(reqCtx(c)).
		Where("LOWER(email) = LOWER(?) OR user_name = ?", req.Identifier, req.Identifier).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !authService.CheckPassword(u.Password, req.Password)) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Email/username atau password salah")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal login")
	}
	if !u.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Akun dinonaktifkan")
	}
	return ac.finishLogin(c, u)
}

func (ac *AuthController) finishLogin(c *fiber.Ctx, u userModel.UserModel) error {
	pair, err := authService.IssueTokens(reqCtx(c), ac.DB, ac.Tokens, u, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	now := time.Now()
	_ = ac.DB.WithContext(reqCtx(c)).Model(&userModel.UserModel{}).
		Where("id = ?", u.ID).Update("last_login_at", now).Error

	ac.setTokenCookies(c, pair)
	return helper.JsonOK(c, "Login berhasil", fiber.Map{
		"user": fiber.Map{
			"id":        u.ID,
			"user_name": u.UserName,
			"full_name": u.FullName,
			"email":     u.Email,
		},
		"tokens": pair,
	})
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req authDto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ac.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if strings.TrimSpace(configs.GoogleClientID) == "" {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Login Google belum dikonfigurasi")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "ID token Google tidak valid")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil || strings.TrimSpace(claimSet.Email) == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Gagal membaca ID token Google")
	}

	u, err := ac.findOrCreateGoogleUser(reqCtx(c), claimSet.Sub, claimSet.Email, claimSet.Name)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if !u.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Akun dinonaktifkan")
	}
	return ac.finishLogin(c, u)
}

func (ac *AuthController) findOrCreateGoogleUser(ctx context.Context, sub, email, name string) (userModel.UserModel, error) {
	var u userModel.UserModel
	err := ac.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ? OR LOWER(email) = LOWER(?)", sub, email).First(&u).Error
		if err == nil {
			if u.GoogleID == nil {
				return tx.Model(&u).Update("google_id", sub).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// user baru: user_name dari bagian lokal email + suffix acak
		local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
		if len(local) > 40 {
			local = local[:40]
		}
		u = userModel.UserModel{
			UserName: local + "_" + uuid.NewString()[:6],
			Email:    strings.ToLower(email),
			GoogleID: &sub,
			IsActive: true,
		}
		if strings.TrimSpace(name) != "" {
			u.FullName = &name
		}
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		return roleService.GrantRole(ctx, tx, u.ID, constants.RoleUser, nil, nil)
	})
	return u, err
}

// POST /api/auth/refresh-token
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req authDto.RefreshRequest
	_ = c.BodyParser(&req)
	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		raw = helper.GetRefreshTokenFromCookie(c)
	}
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak ditemukan")
	}

	pair, err := authService.RotateRefreshToken(reqCtx(c), ac.DB, ac.Tokens, raw, c.Get(fiber.HeaderUserAgent), c.IP())
	if errors.Is(err, authService.ErrInvalidRefresh) {
		ac.clearTokenCookies(c)
		return helper.JsonError(c, fiber.StatusUnauthorized, "Refresh token tidak valid atau kedaluwarsa")
	}
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	ac.setTokenCookies(c, pair)
	return helper.JsonOK(c, "Token diperbarui", pair)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	access := helper.GetRawAccessToken(c)
	refresh := helper.GetRefreshTokenFromCookie(c)
	if access == "" && refresh == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Tidak ada sesi aktif")
	}
	if err := authService.Logout(reqCtx(c), ac.DB, ac.Tokens, access, refresh); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal logout")
	}
	ac.clearTokenCookies(c)
	return helper.JsonOK(c, "Logout berhasil", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	ctx := reqCtx(c)

	var u userModel.UserModel
	if err := ac.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
	}

	rc, err := roleService.LoadRolesClaim(ctx, ac.DB, u.ID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat role")
	}

	names := map[uuid.UUID]string{}
	if len(rc.SchoolRoles) > 0 {
		ids := make([]uuid.UUID, 0, len(rc.SchoolRoles))
		for _, e := range rc.SchoolRoles {
			ids = append(ids, e.SchoolID)
		}
		var rows []struct {
			SchoolID   uuid.UUID
			SchoolName string
		}
		if err := ac.DB.WithContext(ctx).
			Table("schools").
			Select("school_id, school_name").
			Where("school_id IN ? AND school_deleted_at IS NULL", ids).
			Scan(&rows).Error; err == nil {
			for _, r := range rows {
				names[r.SchoolID] = r.SchoolName
			}
		}
	}

	resp := authDto.MeResponse{
		ID:          u.ID,
		UserName:    u.UserName,
		FullName:    u.FullName,
		Email:       u.Email,
		RolesGlobal: rc.RolesGlobal,
		SchoolRoles: make([]authDto.SchoolRoleItem, 0, len(rc.SchoolRoles)),
		TeacherID:   helperAuth.GetTeacherIDFromToken(c),
	}
	for _, e := range rc.SchoolRoles {
		resp.SchoolRoles = append(resp.SchoolRoles, authDto.SchoolRoleItem{
			SchoolID:   e.SchoolID,
			SchoolName: names[e.SchoolID],
			Roles:      e.Roles,
		})
	}
	return helper.JsonOK(c, "OK", resp)
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	var req authDto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ac.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var u userModel.UserModel
	if err := ac.DB.WithContext(reqCtx(c)).First(&u, "id = ?", userID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "User tidak ditemukan")
	}
	if !authService.CheckPassword(u.Password, req.OldPassword) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Password lama salah")
	}
	hash, err := authService.HashPassword(req.NewPassword)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}
	if err := ac.DB.WithContext(reqCtx(c)).Model(&u).Update("password", hash).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengganti password")
	}
	return helper.JsonOK(c, "Password berhasil diganti", nil)
}
