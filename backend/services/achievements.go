package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"progresshub/backend/models"
	"progresshub/backend/utils"
)

const (
	DefaultAchievementIcon = "🏅"
	levelAchievementIcon   = "🎉"
	courseCompleteIcon     = "🏆"
)

// AwardedAchievement is what an update reports back for every newly earned achievement.
type AwardedAchievement struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// Awarder grants achievements at most once per (user, key).
type Awarder struct {
	db    *gorm.DB
	log   *utils.Logger
	clock Clock
}

func NewAwarder(db *gorm.DB, log *utils.Logger, clock Clock) *Awarder {
	return &Awarder{db: db, log: log.With("service", "Awarder"), clock: clock}
}

// Award inserts the achievement if (userID, key) has none yet and reports whether it did.
// A conflict on the unique (user_id, akey) index counts as "already awarded", so racing
// callers never fail and never duplicate.
func (a *Awarder) Award(ctx context.Context, tx *gorm.DB, userID uint, key, title, icon string) (bool, error) {
	if tx == nil {
		tx = a.db
	}
	if icon == "" {
		icon = DefaultAchievementIcon
	}

	row := models.Achievement{
		UserID:   userID,
		Key:      key,
		Title:    title,
		Icon:     icon,
		EarnedAt: a.clock.Now().UTC(),
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "akey"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "award %s", key)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	a.log.Info("achievement awarded", "user_id", userID, "key", key)
	return true, nil
}

// AwardCourseMilestones grants one achievement per level reached since prevLecturesDone
// and one for completing the course. Level keys carry the same number as Course.Level.
func (a *Awarder) AwardCourseMilestones(ctx context.Context, tx *gorm.DB, course *models.Course, prevLecturesDone int) ([]AwardedAchievement, error) {
	awarded := []AwardedAchievement{}

	grant := func(key, title, icon string) error {
		ok, err := a.Award(ctx, tx, course.UserID, key, title, icon)
		if err != nil {
			return err
		}
		if ok {
			awarded = append(awarded, AwardedAchievement{Key: key, Title: title, Icon: icon})
		}
		return nil
	}

	// Crossing boundary index li means reaching level li+1. The boundary at the very end
	// has no level behind it; the completion award covers it.
	prevLevelIndex := prevLecturesDone / models.LecturesPerLevel
	newLevelIndex := course.LecturesDone / models.LecturesPerLevel
	for li := prevLevelIndex + 1; li <= newLevelIndex; li++ {
		reached := li + 1
		if reached > course.TotalLevels {
			break
		}
		key := fmt.Sprintf("course_%d_level_%d", course.ID, reached)
		title := fmt.Sprintf("Reached level %d in %s", reached, course.Title)
		if err := grant(key, title, levelAchievementIcon); err != nil {
			return nil, err
		}
	}

	if course.Progress >= 100 {
		key := fmt.Sprintf("course_%d_complete", course.ID)
		title := fmt.Sprintf("Completed the %s course", course.Title)
		if err := grant(key, title, courseCompleteIcon); err != nil {
			return nil, err
		}
	}

	return awarded, nil
}

// List returns the user's achievements, newest first.
func (a *Awarder) List(ctx context.Context, userID uint) ([]models.Achievement, error) {
	rows := []models.Achievement{}
	if err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list achievements")
	}
	return rows, nil
}
