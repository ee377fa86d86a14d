package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"progresshub/backend/models"
	"progresshub/backend/storage"
	"progresshub/backend/utils"
)

// ProjectInput holds the optional project fields. On update a nil field keeps the stored value.
type ProjectInput struct {
	Title       *string
	Description *string
	Level       *int
	CourseID    *uint
	CourseLevel *int
	Tags        *string
}

type ProjectService struct {
	db        *gorm.DB
	log       *utils.Logger
	cleaner   *storage.Cleaner
	portfolio *PortfolioService
}

func NewProjectService(db *gorm.DB, log *utils.Logger, cleaner *storage.Cleaner, portfolio *PortfolioService) *ProjectService {
	return &ProjectService{db: db, log: log.With("service", "ProjectService"), cleaner: cleaner, portfolio: portfolio}
}

// ParseTags accepts a JSON array and returns it re-encoded with every element stringified,
// trimmed, and empty ones dropped. Anything else yields nil.
func ParseTags(raw string) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if t := strings.TrimSpace(fmt.Sprint(item)); t != "" {
			tags = append(tags, t)
		}
	}
	out, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	s := string(out)
	return &s
}

func (s *ProjectService) List(ctx context.Context, userID uint) ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order ASC, id DESC").
		Find(&projects).Error; err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	return projects, nil
}

// checkCourse rejects links to courses the user does not own.
func (s *ProjectService) checkCourse(ctx context.Context, tx *gorm.DB, userID uint, courseID *uint) error {
	if courseID == nil {
		return nil
	}
	_, err := findOwned[models.Course](ctx, tx, userID, *courseID)
	return err
}

// Create appends a project at the end of the user's ordering.
func (s *ProjectService) Create(ctx context.Context, userID uint, in ProjectInput, imageRef string) (*models.Project, error) {
	project := &models.Project{
		UserID:      userID,
		Title:       deref(in.Title),
		Description: deref(in.Description),
		Image:       imageRef,
		Level:       in.Level,
		CourseID:    in.CourseID,
		CourseLevel: in.CourseLevel,
		Tags:        in.Tags,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCourse(ctx, tx, userID, in.CourseID); err != nil {
			return err
		}
		var maxRow struct{ M *int }
		if err := tx.Model(&models.Project{}).
			Select("MAX(sort_order) AS m").
			Where("user_id = ?", userID).
			Scan(&maxRow).Error; err != nil {
			return errors.Wrap(err, "read sort order")
		}
		if maxRow.M != nil {
			project.SortOrder = *maxRow.M + 1
		}
		return errors.Wrap(tx.Create(project).Error, "create project")
	})
	if err != nil {
		return nil, err
	}
	s.portfolio.Invalidate(ctx, userID)
	return project, nil
}

// Update changes the provided fields. A new imageRef replaces the old image, whose file
// is removed in the background after the commit.
func (s *ProjectService) Update(ctx context.Context, userID, id uint, in ProjectInput, imageRef string) (*models.Project, error) {
	var replaced string
	var project *models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findOwned[models.Project](ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := s.checkCourse(ctx, tx, userID, in.CourseID); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Level != nil {
			updates["level"] = *in.Level
		}
		if in.CourseID != nil {
			updates["course_id"] = *in.CourseID
		}
		if in.CourseLevel != nil {
			updates["course_level"] = *in.CourseLevel
		}
		if in.Tags != nil {
			updates["tags"] = *in.Tags
		}
		if imageRef != "" {
			updates["image"] = imageRef
			if current.Image != "" && current.Image != imageRef {
				replaced = current.Image
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Project{}).
				Where("id = ? AND user_id = ?", id, userID).
				Updates(updates).Error; err != nil {
				return errors.Wrap(err, "update project")
			}
		}

		project, err = findOwned[models.Project](ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cleaner.Schedule(replaced)
	s.portfolio.Invalidate(ctx, userID)
	return project, nil
}

// Reorder sets sort_order to each id's position. Ids the user does not own are skipped.
func (s *ProjectService) Reorder(ctx context.Context, userID uint, ids []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&models.Project{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("sort_order", i).Error; err != nil {
				return errors.Wrapf(err, "reorder project %d", id)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.portfolio.Invalidate(ctx, userID)
	return nil
}

// Delete removes the project and its image. A missing project is not an error.
func (s *ProjectService) Delete(ctx context.Context, userID, id uint) error {
	project, err := findOwned[models.Project](ctx, s.db, userID, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Project{}).Error; err != nil {
		return errors.Wrap(err, "delete project")
	}

	s.cleaner.Schedule(project.Image)
	s.portfolio.Invalidate(ctx, userID)
	return nil
}
