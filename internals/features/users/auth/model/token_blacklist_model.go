package model

import "time"

type TokenBlacklistModel struct {
	TokenBlacklistID        uint      `gorm:"column:token_blacklist_id;primaryKey" json:"token_blacklist_id"`
	TokenBlacklistToken     string    `gorm:"column:token_blacklist_token;type:text;not null;uniqueIndex" json:"-"`
	TokenBlacklistExpiredAt time.Time `gorm:"column:token_blacklist_expired_at;type:timestamptz;not null;index" json:"token_blacklist_expired_at"`
	TokenBlacklistCreatedAt time.Time `gorm:"column:token_blacklist_created_at;type:timestamptz;autoCreateTime" json:"token_blacklist_created_at"`
}

func (TokenBlacklistModel) TableName() string { return "token_blacklist" }
