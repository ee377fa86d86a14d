package services

import (
	"gorm.io/gorm"

	"progresshub/backend/cache"
	"progresshub/backend/storage"
	"progresshub/backend/utils"
)

// Services bundles every service the HTTP layer uses.
type Services struct {
	Users       *UserService
	Profiles    *ProfileService
	Courses     *CourseService
	Projects    *ProjectService
	Progress    *ProgressLogger
	Awards      *Awarder
	Portfolio   *PortfolioService
	Submissions *SubmissionService
}

func New(db *gorm.DB, log *utils.Logger, clock Clock, cleaner *storage.Cleaner, c cache.PortfolioCache) *Services {
	if clock == nil {
		clock = SystemClock
	}
	portfolio := NewPortfolioService(db, log, c)
	awarder := NewAwarder(db, log, clock)
	progressLog := NewProgressLogger(db, clock)

	return &Services{
		Users:       NewUserService(db, log),
		Profiles:    NewProfileService(db, log, cleaner, portfolio),
		Courses:     NewCourseService(db, log, awarder, progressLog, portfolio),
		Projects:    NewProjectService(db, log, cleaner, portfolio),
		Progress:    progressLog,
		Awards:      awarder,
		Portfolio:   portfolio,
		Submissions: NewSubmissionService(db, log),
	}
}
