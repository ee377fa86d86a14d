package models

import "time"

// Submission is a homework file a student hands in for one session of a course.
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	CourseID     uint      `gorm:"index;not null" json:"course_id"`
	SessionIndex int       `gorm:"not null" json:"session_index"`
	Note         string    `json:"note"`
	FilePath     string    `gorm:"not null" json:"file_path"`
	GroupCode    string    `gorm:"index" json:"group_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionView is a submission joined with its course title.
type SubmissionView struct {
	Submission
	CourseTitle string `json:"course_title"`
}

// InstructorGroup is a group code an instructor follows.
type InstructorGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_instructor_group_code" json:"user_id"`
	Code      string    `gorm:"not null;uniqueIndex:idx_instructor_group_code" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupSummary is an instructor group with its activity counters.
type GroupSummary struct {
	InstructorGroup
	StudentCount    int64 `json:"student_count"`
	SubmissionCount int64 `json:"submission_count"`
}
