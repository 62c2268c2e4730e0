// internals/features/users/auth/service/token_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	authDto "schoolhub_backend/internals/features/users/auth/dto"
	authModel "schoolhub_backend/internals/features/users/auth/model"
	roleService "schoolhub_backend/internals/features/users/roles/service"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	helperAuth "schoolhub_backend/internals/helpers/auth"
)

const (
	accessTTLDefault  = 24 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour
)

var ErrInvalidRefresh = errors.New("refresh token invalid")

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  configs.JWTSecret,
		RefreshSecret: configs.JWTRefreshSecret,
		AccessTTL:     accessTTLDefault,
		RefreshTTL:    refreshTTLDefault,
	}
}

func (cfg TokenConfig) check() error {
	if strings.TrimSpace(cfg.AccessSecret) == "" || strings.TrimSpace(cfg.RefreshSecret) == "" {
		return errors.New("JWT_SECRET / JWT_REFRESH_SECRET belum diset")
	}
	return nil
}

// BuildAccessClaims: claim yang dibaca middleware AuthJWT.
func BuildAccessClaims(u userModel.UserModel, rc helperAuth.RolesClaim, teacherID *uuid.UUID, now time.Time, ttl time.Duration) jwt.MapClaims {
	claims := jwt.MapClaims{
		"id":           u.ID.String(),
		"sub":          u.ID.String(),
		"typ":          "access",
		"user_name":    u.UserName,
		"roles_global": rc.RolesGlobal,
		"school_roles": rc.SchoolRoles,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}
	// sekolah tunggal → jadikan sekolah aktif
	if len(rc.SchoolRoles) == 1 {
		claims["school_id"] = rc.SchoolRoles[0].SchoolID.String()
	}
	if teacherID != nil {
		claims["teacher_id"] = teacherID.String()
	}
	return claims
}

func BuildRefreshClaims(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": userID.String(),
		"typ": "refresh",
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
}

func sign(claims jwt.MapClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseRefreshToken: verifikasi signature + typ=refresh → user id.
func ParseRefreshToken(cfg TokenConfig, raw string) (uuid.UUID, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidRefresh
		}
		return []byte(cfg.RefreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, ErrInvalidRefresh
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return uuid.Nil, ErrInvalidRefresh
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidRefresh
	}
	return id, nil
}

// AccessTokenExpiry: exp dari access token (tanpa verifikasi ulang; dipakai saat logout).
func AccessTokenExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			return time.Unix(int64(exp), 0)
		}
	}
	return time.Now().Add(accessTTLDefault)
}

func findTeacherID(ctx context.Context, db *gorm.DB, userID uuid.UUID, rc helperAuth.RolesClaim) *uuid.UUID {
	if len(rc.SchoolRoles) != 1 {
		return nil
	}
	var id uuid.UUID
	_ = db.WithContext(ctx).Raw(`
		SELECT teacher_id FROM teachers
		WHERE teacher_user_id = ? AND teacher_school_id = ? AND teacher_deleted_at IS NULL
		LIMIT 1
	`, userID, rc.SchoolRoles[0].SchoolID).Scan(&id).Error
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// IssueTokens: buat access+refresh, simpan hash refresh.
func IssueTokens(ctx context.Context, db *gorm.DB, cfg TokenConfig, u userModel.UserModel, userAgent, ip string) (authDto.TokenPairResponse, error) {
	if err := cfg.check(); err != nil {
		return authDto.TokenPairResponse{}, err
	}
	rc, err := roleService.LoadRolesClaim(ctx, db, u.ID)
	if err != nil {
		return authDto.TokenPairResponse{}, err
	}
	now := time.Now().UTC()

	access, err := sign(BuildAccessClaims(u, rc, findTeacherID(ctx, db, u.ID, rc), now, cfg.AccessTTL), cfg.AccessSecret)
	if err != nil {
		return authDto.TokenPairResponse{}, errors.Wrap(err, "sign access")
	}
	refresh, err := sign(BuildRefreshClaims(u.ID, now, cfg.RefreshTTL), cfg.RefreshSecret)
	if err != nil {
		return authDto.TokenPairResponse{}, errors.Wrap(err, "sign refresh")
	}

	rt := authModel.RefreshTokenModel{
		UserID:    u.ID,
		Token:     helperAuth.HmacHex(refresh, cfg.RefreshSecret),
		ExpiresAt: now.Add(cfg.RefreshTTL),
		UserAgent: strptr(userAgent),
		IP:        strptr(ip),
	}
	if err := db.WithContext(ctx).Create(&rt).Error; err != nil {
		return authDto.TokenPairResponse{}, errors.Wrap(err, "simpan refresh token")
	}

	return authDto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(cfg.AccessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// RotateRefreshToken: refresh lama dihapus, pasangan baru diterbitkan.
func RotateRefreshToken(ctx context.Context, db *gorm.DB, cfg TokenConfig, raw, userAgent, ip string) (authDto.TokenPairResponse, error) {
	if err := cfg.check(); err != nil {
		return authDto.TokenPairResponse{}, err
	}
	userID, err := ParseRefreshToken(cfg, raw)
	if err != nil {
		return authDto.TokenPairResponse{}, err
	}

	hash := helperAuth.HmacHex(raw, cfg.RefreshSecret)
	res := db.WithContext(ctx).
		Where("token = ? AND user_id = ? AND expires_at > NOW()", hash, userID).
		Delete(&authModel.RefreshTokenModel{})
	if res.Error != nil {
		return authDto.TokenPairResponse{}, res.Error
	}
	if res.RowsAffected == 0 {
		return authDto.TokenPairResponse{}, ErrInvalidRefresh
	}

	var u userModel.UserModel
	if err := db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return authDto.TokenPairResponse{}, errors.Wrap(helper.ErrNotFound, "user tidak ditemukan")
	}
	if !u.IsActive {
		return authDto.TokenPairResponse{}, errors.Wrap(helper.ErrForbidden, "akun dinonaktifkan")
	}
	return IssueTokens(ctx, db, cfg, u, userAgent, ip)
}

// Logout: blacklist access token sampai exp, hapus refresh token.
func Logout(ctx context.Context, db *gorm.DB, cfg TokenConfig, access, refresh string) error {
	if access != "" {
		if err := helperAuth.AddToBlacklist(ctx, db, access, cfg.AccessSecret, AccessTokenExpiry(access)); err != nil {
			return errors.Wrap(err, "blacklist access token")
		}
	}
	if refresh != "" {
		if err := db.WithContext(ctx).
			Where("token = ?", helperAuth.HmacHex(refresh, cfg.RefreshSecret)).
			Delete(&authModel.RefreshTokenModel{}).Error; err != nil {
			return errors.Wrap(err, "hapus refresh token")
		}
	}
	return nil
}

func strptr(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
