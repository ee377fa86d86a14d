package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the per-user student card shown on the portfolio.
type Profile struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name      string    `json:"name"`
	Age       *int      `json:"age"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Github    string    `json:"github"`
	Facebook  string    `json:"facebook"`
	Linkedin  string    `json:"linkedin"`
	Mascot    string    `json:"mascot"`
	GroupCode string    `gorm:"index" json:"group_code"`
	UpdatedAt time.Time `json:"updated_at"`
}
