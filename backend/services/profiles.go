package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"progresshub/backend/models"
	"progresshub/backend/storage"
	"progresshub/backend/utils"
)

// ProfileInput mirrors the profile form. Name, age, bio, links and group code are replaced
// on every save; mascot keeps its stored value when nil.
type ProfileInput struct {
	Name      string
	Age       *int
	Bio       string
	Github    string
	Facebook  string
	Linkedin  string
	Mascot    *string
	GroupCode string
}

type ProfileService struct {
	db        *gorm.DB
	log       *utils.Logger
	cleaner   *storage.Cleaner
	portfolio *PortfolioService
}

func NewProfileService(db *gorm.DB, log *utils.Logger, cleaner *storage.Cleaner, portfolio *PortfolioService) *ProfileService {
	return &ProfileService{db: db, log: log.With("service", "ProfileService"), cleaner: cleaner, portfolio: portfolio}
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load profile")
	}
	return &profile, nil
}

// Save creates or updates the user's profile. avatarRef is the stored path of a newly
// uploaded avatar, or empty to keep the current one. A replaced avatar file is deleted
// in the background once the update has committed.
func (s *ProfileService) Save(ctx context.Context, userID uint, in ProfileInput, avatarRef string) (*models.Profile, error) {
	var replaced string
	var profile models.Profile

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "load profile")
		}

		profile.UserID = userID
		profile.Name = in.Name
		profile.Age = in.Age
		profile.Bio = in.Bio
		profile.Github = in.Github
		profile.Facebook = in.Facebook
		profile.Linkedin = in.Linkedin
		profile.GroupCode = in.GroupCode
		if in.Mascot != nil {
			profile.Mascot = *in.Mascot
		}
		if avatarRef != "" {
			if exists && profile.Avatar != "" && profile.Avatar != avatarRef {
				replaced = profile.Avatar
			}
			profile.Avatar = avatarRef
		}

		if !exists {
			return errors.Wrap(tx.Create(&profile).Error, "create profile")
		}
		return errors.Wrap(tx.Save(&profile).Error, "update profile")
	})
	if err != nil {
		return nil, err
	}

	s.cleaner.Schedule(replaced)
	s.portfolio.Invalidate(ctx, userID)
	return &profile, nil
}
