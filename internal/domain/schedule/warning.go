package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var weekdayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayName returns the English name for an ISO weekday in [1, 7].
func WeekdayName(day int) string {
	if day < 1 || day > 7 {
		return ""
	}
	return weekdayNames[day]
}

// ComputeSchedulingWarning produces an advisory message when a proposed
// booking intersects a one-off practice closure, falls on an active weekly
// closure day, or sits outside every availability window of the selected
// doctor for that weekday. It returns nil when the slot is unremarkable.
//
// The message never blocks the booking; the operator confirms and proceeds.
func ComputeSchedulingWarning(
	doctorID *uuid.UUID,
	startsAt, endsAt time.Time,
	windows []*AvailabilityWindow,
	closures []*PracticeClosure,
	weeklyClosures []*PracticeWeeklyClosure,
) *string {
	weekday := ISOWeekday(startsAt)

	for _, cl := range closures {
		if Overlaps(startsAt, endsAt, cl.StartsAt, cl.EndsAt) {
			msg := "The practice is closed during this time"
			if cl.Title != nil && *cl.Title != "" {
				msg = fmt.Sprintf("The practice is closed during this time (%s)", *cl.Title)
			}
			return &msg
		}
	}

	for _, wc := range weeklyClosures {
		if wc.IsActive && wc.DayOfWeek == weekday {
			msg := fmt.Sprintf("The practice is closed every %s", WeekdayName(weekday))
			if wc.Title != nil && *wc.Title != "" {
				msg = fmt.Sprintf("The practice is closed every %s (%s)", WeekdayName(weekday), *wc.Title)
			}
			return &msg
		}
	}

	if doctorID != nil {
		startMin := MinuteOfDay(startsAt)
		endMin := MinuteOfDay(endsAt)
		covered := false
		for _, w := range windows {
			if w.DoctorID != *doctorID || w.DayOfWeek != weekday {
				continue
			}
			if startMin >= w.StartMinute && endMin <= w.EndMinute {
				covered = true
				break
			}
		}
		if !covered {
			msg := "This slot is outside the doctor's advertised hours"
			return &msg
		}
	}

	return nil
}
