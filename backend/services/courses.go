package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"progresshub/backend/models"
	"progresshub/backend/utils"
)

// CourseInput carries the optional fields of a create or update request.
// A nil field means "not provided".
type CourseInput struct {
	Title        *string
	TotalLevels  *int
	LecturesDone *int
}

// CourseUpdateResult is the outcome of one course update.
type CourseUpdateResult struct {
	Course  *models.Course           `json:"course"`
	Awarded []AwardedAchievement     `json:"awarded"`
	Logged  *models.ProgressLogEntry `json:"-"`
}

type CourseService struct {
	db          *gorm.DB
	log         *utils.Logger
	awarder     *Awarder
	progressLog *ProgressLogger
	portfolio   *PortfolioService
}

func NewCourseService(db *gorm.DB, log *utils.Logger, awarder *Awarder, progressLog *ProgressLogger, portfolio *PortfolioService) *CourseService {
	return &CourseService{
		db:          db,
		log:         log.With("service", "CourseService"),
		awarder:     awarder,
		progressLog: progressLog,
		portfolio:   portfolio,
	}
}

func (s *CourseService) List(ctx context.Context, userID uint) ([]models.Course, error) {
	courses := []models.Course{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "list courses")
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, userID, id uint) (*models.Course, error) {
	return findOwned[models.Course](ctx, s.db, userID, id)
}

func (s *CourseService) Create(ctx context.Context, userID uint, in CourseInput) (*models.Course, error) {
	course := &models.Course{UserID: userID, Title: deref(in.Title)}
	ComputeCourseDerived(deref(in.TotalLevels), deref(in.LecturesDone)).apply(course)

	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, errors.Wrap(err, "create course")
	}
	s.portfolio.Invalidate(ctx, userID)
	return course, nil
}

// Update applies the provided fields, recomputes level and progress, logs the lecture delta
// and awards milestones, all in one transaction. The course row is locked for the duration,
// so concurrent updates to the same course observe each other's prior state.
func (s *CourseService) Update(ctx context.Context, userID, id uint, in CourseInput) (*CourseUpdateResult, error) {
	result := &CourseUpdateResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&course).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errors.Wrap(err, "load course")
		}

		prevLecturesDone := course.LecturesDone
		nextTotal := course.TotalLevels
		if in.TotalLevels != nil {
			nextTotal = *in.TotalLevels
		}
		nextLectures := course.LecturesDone
		if in.LecturesDone != nil {
			nextLectures = *in.LecturesDone
		}
		if in.Title != nil {
			course.Title = *in.Title
		}
		ComputeCourseDerived(nextTotal, nextLectures).apply(&course)

		if err := tx.Model(&models.Course{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]interface{}{
				"title":         course.Title,
				"total_levels":  course.TotalLevels,
				"lectures_done": course.LecturesDone,
				"level":         course.Level,
				"progress":      course.Progress,
			}).Error; err != nil {
			return errors.Wrap(err, "update course")
		}

		entry, err := s.progressLog.Record(ctx, tx, userID, course.ID, prevLecturesDone, course.LecturesDone)
		if err != nil {
			return err
		}

		awarded, err := s.awarder.AwardCourseMilestones(ctx, tx, &course, prevLecturesDone)
		if err != nil {
			return err
		}

		if err := tx.First(&course, course.ID).Error; err != nil {
			return errors.Wrap(err, "reload course")
		}

		result.Course = &course
		result.Awarded = awarded
		result.Logged = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.portfolio.Invalidate(ctx, userID)
	s.log.Debug("course updated", "user_id", userID, "course_id", id,
		"lectures_done", result.Course.LecturesDone, "awarded", len(result.Awarded))
	return result, nil
}

// Delete removes the course if the user owns it; a missing course is not an error.
func (s *CourseService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Course{}).Error; err != nil {
		return errors.Wrap(err, "delete course")
	}
	s.portfolio.Invalidate(ctx, userID)
	return nil
}

// findOwned loads a row by id scoped to its owner, mapping "missing" and "not yours" to ErrNotFound.
func findOwned[T any](ctx context.Context, db *gorm.DB, userID, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load row")
	}
	return &row, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
