package services

import "time"

// Clock supplies the current time; the progress log buckets entries by its UTC day.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

const dayLayout = "2006-01-02"

func dayOf(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
