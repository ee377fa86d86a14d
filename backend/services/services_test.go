package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"progresshub/backend/models"
	"progresshub/backend/storage"
	"progresshub/backend/testutil"
)

type fixture struct {
	db      *gorm.DB
	svc     *Services
	now     time.Time
	cleaner *storage.Cleaner
	files   *storage.LocalStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: testutil.DB(t), now: testutil.FixedTime}

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	f.files = files
	f.cleaner = storage.NewCleaner(files, testutil.Logger(t))

	clock := ClockFunc(func() time.Time { return f.now })
	f.svc = New(f.db, testutil.Logger(t), clock, f.cleaner, nil)
	return f
}

func (f *fixture) user(t *testing.T, email string) uint {
	t.Helper()
	u, err := f.svc.Users.Register(context.Background(), email, "password", "")
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) course(t *testing.T, userID uint, title string, total, done int) *models.Course {
	t.Helper()
	c, err := f.svc.Courses.Create(context.Background(), userID, CourseInput{Title: &title, TotalLevels: &total, LecturesDone: &done})
	require.NoError(t, err)
	return c
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
