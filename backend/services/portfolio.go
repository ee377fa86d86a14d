package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"progresshub/backend/cache"
	"progresshub/backend/models"
	"progresshub/backend/utils"
)

// PortfolioService assembles the owner's profile, courses and projects.
type PortfolioService struct {
	db    *gorm.DB
	log   *utils.Logger
	cache cache.PortfolioCache
}

func NewPortfolioService(db *gorm.DB, log *utils.Logger, c cache.PortfolioCache) *PortfolioService {
	if c == nil {
		c = cache.NopPortfolioCache{}
	}
	return &PortfolioService{db: db, log: log.With("service", "PortfolioService"), cache: c}
}

// Build reads the portfolio straight from the store.
func (s *PortfolioService) Build(ctx context.Context, userID uint) (*models.Portfolio, error) {
	db := s.db.WithContext(ctx)
	p := &models.Portfolio{Courses: []models.Course{}, Projects: []models.Project{}}

	var profile models.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p.Student = &models.Profile{UserID: userID}
	case err != nil:
		return nil, errors.Wrap(err, "load profile")
	default:
		p.Student = &profile
	}

	if err := db.Where("user_id = ?", userID).Order("id DESC").Find(&p.Courses).Error; err != nil {
		return nil, errors.Wrap(err, "load courses")
	}
	if err := db.Where("user_id = ?", userID).Order("sort_order ASC, id DESC").Find(&p.Projects).Error; err != nil {
		return nil, errors.Wrap(err, "load projects")
	}
	return p, nil
}

// Public serves the shared view, going through the cache. An Invalidate that lands between
// Build and Set leaves the older view cached until the TTL expires.
func (s *PortfolioService) Public(ctx context.Context, userID uint) (*models.Portfolio, error) {
	if p, ok, err := s.cache.Get(ctx, userID); err != nil {
		s.log.Warn("portfolio cache read failed", "user_id", userID, "error", err)
	} else if ok {
		return p, nil
	}

	p, err := s.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, userID, p); err != nil {
		s.log.Warn("portfolio cache write failed", "user_id", userID, "error", err)
	}
	return p, nil
}

// ShareToken signs a read-only token for the owner's public portfolio.
func (s *PortfolioService) ShareToken(userID uint, secret string, ttl time.Duration) (string, error) {
	token, err := utils.GenerateToken(userID, utils.TokenTypeShare, ttl, secret)
	if err != nil {
		return "", errors.Wrap(err, "sign share token")
	}
	return token, nil
}

// PublicByToken resolves a share token to its owner's portfolio. Session tokens, expired
// tokens and bad signatures all yield ErrInvalidShareToken.
func (s *PortfolioService) PublicByToken(ctx context.Context, token, secret string) (*models.Portfolio, error) {
	userID, typ, err := utils.ParseToken(token, secret)
	if err != nil || typ != utils.TokenTypeShare {
		return nil, ErrInvalidShareToken
	}
	return s.Public(ctx, userID)
}

// Invalidate drops the cached view after one of the owner's writes.
func (s *PortfolioService) Invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("portfolio cache invalidation failed", "user_id", userID, "error", err)
	}
}
