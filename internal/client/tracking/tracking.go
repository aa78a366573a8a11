// Package tracking turns bus arrival times into the countdown shown on the
// home screen.
package tracking

import (
	"time"

	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/client/payments"
)

// Level drives how loudly the countdown is shown.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelSoon     Level = "soon"
	LevelImminent Level = "imminent"
)

const (
	soonMinutes     = 10
	imminentMinutes = 5
)

type Countdown struct {
	Minutes int
	Level   Level
}

// NextArrival counts whole minutes until arrival, never below zero.
func NextArrival(arrival, now time.Time) Countdown {
	minutes := int(arrival.Sub(now) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	level := LevelNormal
	switch {
	case minutes <= imminentMinutes:
		level = LevelImminent
	case minutes <= soonMinutes:
		level = LevelSoon
	}
	return Countdown{Minutes: minutes, Level: level}
}

// NextTrip returns the earliest trip still to arrive. Trips with an
// unreadable arrival time are skipped.
func NextTrip(trips []models.Trip, now time.Time) (models.Trip, time.Time, bool) {
	var (
		best    models.Trip
		bestAt  time.Time
		present bool
	)
	for _, tr := range trips {
		at, ok := payments.ParseDate(tr.Arrival)
		if !ok || at.Before(now) {
			continue
		}
		if !present || at.Before(bestAt) {
			best, bestAt, present = tr, at, true
		}
	}
	return best, bestAt, present
}
