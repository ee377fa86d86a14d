package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"progresshub/backend/models"
	"progresshub/backend/utils"
)

// SubmissionInput is a homework hand-in for one course session.
type SubmissionInput struct {
	CourseID     uint
	SessionIndex int
	Note         string
}

// SubmissionService handles homework hand-ins and the instructor's group-based review feed.
type SubmissionService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewSubmissionService(db *gorm.DB, log *utils.Logger) *SubmissionService {
	return &SubmissionService{db: db, log: log.With("service", "SubmissionService")}
}

// Create stores a submission for one of the user's own courses, stamped with the group code
// currently on the user's profile.
func (s *SubmissionService) Create(ctx context.Context, userID uint, in SubmissionInput, fileRef string) (*models.SubmissionView, error) {
	view := &models.SubmissionView{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := findOwned[models.Course](ctx, tx, userID, in.CourseID)
		if err != nil {
			return err
		}

		var profile models.Profile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "load profile")
		}

		view.Submission = models.Submission{
			UserID:       userID,
			CourseID:     course.ID,
			SessionIndex: in.SessionIndex,
			Note:         in.Note,
			FilePath:     fileRef,
			GroupCode:    profile.GroupCode,
		}
		view.CourseTitle = course.Title
		return errors.Wrap(tx.Create(&view.Submission).Error, "create submission")
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *SubmissionService) feed(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("submissions").
		Select("submissions.*, courses.title AS course_title").
		Joins("LEFT JOIN courses ON courses.id = submissions.course_id").
		Order("submissions.created_at DESC, submissions.id DESC")
}

// ListMine returns the user's own submissions, newest first.
func (s *SubmissionService) ListMine(ctx context.Context, userID uint) ([]models.SubmissionView, error) {
	rows := []models.SubmissionView{}
	if err := s.feed(ctx).
		Where("submissions.user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	return rows, nil
}

// InstructorFeed returns submissions from every group the instructor follows, newest first.
func (s *SubmissionService) InstructorFeed(ctx context.Context, instructorID uint) ([]models.SubmissionView, error) {
	rows := []models.SubmissionView{}
	codes := s.db.WithContext(ctx).
		Model(&models.InstructorGroup{}).
		Select("code").
		Where("user_id = ?", instructorID)
	if err := s.feed(ctx).
		Where("submissions.group_code IN (?)", codes).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list group submissions")
	}
	return rows, nil
}

// ListGroups returns the instructor's groups with student and submission counts.
func (s *SubmissionService) ListGroups(ctx context.Context, instructorID uint) ([]models.GroupSummary, error) {
	var groups []models.InstructorGroup
	db := s.db.WithContext(ctx)
	if err := db.Where("user_id = ?", instructorID).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, errors.Wrap(err, "list groups")
	}

	out := make([]models.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summary := models.GroupSummary{InstructorGroup: g}
		if err := db.Model(&models.Profile{}).Where("group_code = ?", g.Code).
			Count(&summary.StudentCount).Error; err != nil {
			return nil, errors.Wrap(err, "count students")
		}
		if err := db.Model(&models.Submission{}).Where("group_code = ?", g.Code).
			Count(&summary.SubmissionCount).Error; err != nil {
			return nil, errors.Wrap(err, "count submissions")
		}
		out = append(out, summary)
	}
	return out, nil
}

// AddGroup follows a group code. Codes are trimmed and unique per instructor.
func (s *SubmissionService) AddGroup(ctx context.Context, instructorID uint, code string) (*models.InstructorGroup, error) {
	code = strings.TrimSpace(code)
	var count int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.InstructorGroup{}).
		Where("user_id = ? AND code = ?", instructorID, code).
		Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check group")
	}
	if count > 0 {
		return nil, ErrGroupExists
	}

	group := &models.InstructorGroup{UserID: instructorID, Code: code}
	if err := db.Create(group).Error; err != nil {
		return nil, ErrGroupExists
	}
	return group, nil
}

// RemoveGroup stops following a group; groups of other instructors are reported as not found.
func (s *SubmissionService) RemoveGroup(ctx context.Context, instructorID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, instructorID).
		Delete(&models.InstructorGroup{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete group")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
