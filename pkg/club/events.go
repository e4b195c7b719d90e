package club

import (
	"time"

	"clubdash/models"
)

// NextUpcomingEvent returns the earliest event on or after the calendar day of
// asOf. Events on the same day resolve to the smallest id.
func NextUpcomingEvent(events []models.Event, asOf time.Time) (models.Event, bool) {
	today := Day(asOf)
	var (
		best  models.Event
		found bool
	)
	for _, e := range events {
		d := Day(e.Date)
		if d.Before(today) {
			continue
		}
		if !found {
			best, found = e, true
			continue
		}
		bd := Day(best.Date)
		if d.Before(bd) || (d.Equal(bd) && e.ID < best.ID) {
			best = e
		}
	}
	return best, found
}
