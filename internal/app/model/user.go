package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint     `gorm:"primarykey" json:"id"`
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	AvatarURL    string   `json:"avatar_url"`
	Role         UserRole `gorm:"type:varchar(20);default:'user'" json:"role"`

	// Password reset state. ResetPasswordToken holds the SHA-256 hash of the
	// raw token, never the token itself. At most one active token per user;
	// a new request overwrites the previous one.
	ResetPasswordToken     *string    `gorm:"index" json:"-"`
	ResetPasswordExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
