package models

import "time"

// ProgressLogEntry records a signed change of lectures_done for one course on one day.
// Entries are append-only; consumers sum them per day.
type ProgressLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Date      string    `gorm:"size:10;not null" json:"date"`
	Delta     int       `gorm:"not null" json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProgressLogEntry) TableName() string {
	return "progress_log"
}

type Achievement struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_achievement_user_key" json:"user_id"`
	Key      string    `gorm:"column:akey;not null;uniqueIndex:idx_achievement_user_key" json:"akey"`
	Title    string    `gorm:"not null" json:"title"`
	Icon     string    `json:"icon"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

// MonthlyProgress is the per-month sum of progress deltas.
type MonthlyProgress struct {
	Month    string `json:"month"`
	Lectures int    `json:"lectures"`
}

// ProgressOverview summarises the caller's progress log.
type ProgressOverview struct {
	TotalLectures    int               `json:"total_lectures"`
	ActiveDays       int               `json:"active_days"`
	CoursesCompleted int64             `json:"courses_completed"`
	Daily            map[string]int    `json:"daily"`
	Monthly          []MonthlyProgress `json:"monthly"`
}
