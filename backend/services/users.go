package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"progresshub/backend/models"
	"progresshub/backend/utils"
)

const (
	DemoEmail    = "demo@stem.club"
	DemoPassword = "12345678"
	demoName     = "Demo User"
)

type UserService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewUserService(db *gorm.DB, log *utils.Logger) *UserService {
	return &UserService{db: db, log: log.With("service", "UserService")}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{Email: NormalizeEmail(email), PasswordHash: string(hash), Name: name}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Any insert failure here is almost always the unique email index.
		s.log.Debug("register failed", "error", err)
		return nil, ErrEmailTaken
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SeedDemo makes sure the demo account exists. created reports whether it was made now.
func (s *UserService) SeedDemo(ctx context.Context) (user *models.User, created bool, err error) {
	var existing models.User
	err = s.db.WithContext(ctx).Where("email = ?", DemoEmail).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(err, "load demo user")
	}

	user, err = s.Register(ctx, DemoEmail, DemoPassword, demoName)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
