package models

import "time"

// LecturesPerLevel is the number of lectures that make up one course level.
const LecturesPerLevel = 4

// DefaultTotalLevels is used when a course is created without a level count.
const DefaultTotalLevels = 6

// MaxTotalLevels caps the level count a course can declare.
const MaxTotalLevels = 1000

type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Title        string    `gorm:"not null" json:"title"`
	TotalLevels  int       `gorm:"not null" json:"total_levels"`
	LecturesDone int       `gorm:"not null" json:"lectures_done"`
	Level        int       `gorm:"not null" json:"level"`
	Progress     int       `gorm:"not null" json:"progress"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Level       *int      `json:"level"`
	CourseID    *uint     `json:"course_id"`
	CourseLevel *int      `json:"course_level"`
	SortOrder   int       `gorm:"index" json:"sort_order"`
	Tags        *string   `json:"tags"` // JSON array of strings
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
