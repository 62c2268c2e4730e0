// file: internals/helpers/auth/auth_blacklist.go
package helper

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"gorm.io/gorm"
)

// HmacHex: token disimpan sebagai HMAC-SHA256 hex, tidak pernah mentah.
func HmacHex(msg, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(msg))
	return hex.EncodeToString(m.Sum(nil))
}

// AddToBlacklist: simpan HMAC(access_token) sampai token kedaluwarsa.
func AddToBlacklist(ctx context.Context, db *gorm.DB, rawAccessToken, jwtSecret string, expiresAt time.Time) error {
	if db == nil || strings.TrimSpace(rawAccessToken) == "" || strings.TrimSpace(jwtSecret) == "" {
		return nil
	}
	return db.WithContext(ctx).Exec(`
		INSERT INTO token_blacklist (token_blacklist_token, token_blacklist_expired_at, token_blacklist_created_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (token_blacklist_token) DO UPDATE
		SET token_blacklist_expired_at = EXCLUDED.token_blacklist_expired_at
	`, HmacHex(rawAccessToken, jwtSecret), expiresAt).Error
}

// IsBlacklisted: ada baris yang belum expired?
func IsBlacklisted(ctx context.Context, db *gorm.DB, rawAccessToken, jwtSecret string) (bool, error) {
	if db == nil || strings.TrimSpace(rawAccessToken) == "" || strings.TrimSpace(jwtSecret) == "" {
		return false, nil
	}
	var exists bool
	err := db.WithContext(ctx).Raw(`
		SELECT EXISTS (
		  SELECT 1 FROM token_blacklist
		  WHERE token_blacklist_token = ?
		    AND token_blacklist_expired_at > NOW()
		)
	`, HmacHex(rawAccessToken, jwtSecret)).Scan(&exists).Error
	return exists, err
}

// PurgeExpiredBlacklist: hard delete baris yang expired sebelum `before`.
func PurgeExpiredBlacklist(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	if db == nil {
		return 0, nil
	}
	res := db.WithContext(ctx).Exec(`DELETE FROM token_blacklist WHERE token_blacklist_expired_at <= ?`, before)
	return res.RowsAffected, res.Error
}
