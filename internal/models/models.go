package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Avatar       string    `gorm:"size:255"                 json:"avatar,omitempty"`
	Confirmed    bool      `gorm:"not null;default:false"   json:"confirmed"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contact belongs to exactly one user; email and phone are unique within
// that user's book, not globally.
type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                       json:"id"`
	Name      string    `gorm:"size:50;not null"                               json:"name"`
	Surname   string    `gorm:"size:50;not null"                               json:"surname"`
	Email     string    `gorm:"size:100;not null;index:idx_owner_email,unique" json:"email"`
	Phone     string    `gorm:"size:20;not null;index:idx_owner_phone,unique"  json:"phone"`
	Birthday  time.Time `gorm:"not null"                                       json:"birthday"`
	Info      string    `gorm:"size:500"                                       json:"info,omitempty"`
	UserID    uint      `gorm:"not null;index;index:idx_owner_email,unique;index:idx_owner_phone,unique" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"                    json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
