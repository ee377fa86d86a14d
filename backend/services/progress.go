package services

import (
	"math"

	"progresshub/backend/models"
)

// CourseDerived is a normalized course state.
type CourseDerived struct {
	Level        int
	Progress     int
	TotalLevels  int
	LecturesDone int
}

// ComputeCourseDerived normalizes raw level/lecture counts and derives level and progress.
// It never fails: a zero total falls back to the default, totals are clamped into
// [1, MaxTotalLevels], and lectures are clamped into [0, total*4].
func ComputeCourseDerived(totalLevels, lecturesDone int) CourseDerived {
	safeTotal := totalLevels
	if safeTotal == 0 {
		safeTotal = models.DefaultTotalLevels
	}
	safeTotal = min(max(1, safeTotal), models.MaxTotalLevels)

	maxLectures := safeTotal * models.LecturesPerLevel
	safeLectures := min(max(0, lecturesDone), maxLectures)

	return CourseDerived{
		Level:        min(safeTotal, safeLectures/models.LecturesPerLevel+1),
		Progress:     int(math.Round(float64(safeLectures) / float64(maxLectures) * 100)),
		TotalLevels:  safeTotal,
		LecturesDone: safeLectures,
	}
}

func (d CourseDerived) apply(c *models.Course) {
	c.Level = d.Level
	c.Progress = d.Progress
	c.TotalLevels = d.TotalLevels
	c.LecturesDone = d.LecturesDone
}
