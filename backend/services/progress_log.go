package services

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"progresshub/backend/models"
)

// ProgressLogger appends one signed delta per course update that changed lectures_done.
type ProgressLogger struct {
	db    *gorm.DB
	clock Clock
}

func NewProgressLogger(db *gorm.DB, clock Clock) *ProgressLogger {
	return &ProgressLogger{db: db, clock: clock}
}

// Record writes newDone-oldDone dated at the current UTC day. A zero delta writes nothing
// and returns nil.
func (l *ProgressLogger) Record(ctx context.Context, tx *gorm.DB, userID, courseID uint, oldDone, newDone int) (*models.ProgressLogEntry, error) {
	delta := newDone - oldDone
	if delta == 0 {
		return nil, nil
	}
	if tx == nil {
		tx = l.db
	}

	entry := &models.ProgressLogEntry{
		CourseID: courseID,
		UserID:   userID,
		Date:     dayOf(l.clock.Now()),
		Delta:    delta,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, errors.Wrap(err, "append progress log")
	}
	return entry, nil
}

// List returns the user's entries ordered by day, then insertion.
func (l *ProgressLogger) List(ctx context.Context, userID uint) ([]models.ProgressLogEntry, error) {
	rows := []models.ProgressLogEntry{}
	if err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list progress log")
	}
	return rows, nil
}

// Overview sums the user's log per day and per month.
func (l *ProgressLogger) Overview(ctx context.Context, userID uint) (*models.ProgressOverview, error) {
	entries, err := l.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &models.ProgressOverview{Daily: map[string]int{}, Monthly: []models.MonthlyProgress{}}
	monthly := map[string]int{}
	for _, e := range entries {
		overview.TotalLectures += e.Delta
		overview.Daily[e.Date] += e.Delta
		monthly[e.Date[:7]] += e.Delta
	}
	overview.ActiveDays = len(overview.Daily)

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		overview.Monthly = append(overview.Monthly, models.MonthlyProgress{Month: m, Lectures: monthly[m]})
	}

	if err := l.db.WithContext(ctx).Model(&models.Course{}).
		Where("user_id = ? AND progress >= 100", userID).
		Count(&overview.CoursesCompleted).Error; err != nil {
		return nil, errors.Wrap(err, "count completed courses")
	}
	return overview, nil
}
