package model

import (
	"time"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	APIToken     string    `gorm:"column:api_token;size:64;uniqueIndex" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	APILimit     int       `gorm:"column:api_limit;default:1000" json:"api_limit"`
	APIUsage     int       `gorm:"column:api_usage;default:0" json:"api_usage"`
	GithubID     *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
