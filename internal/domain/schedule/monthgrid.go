package schedule

import (
	"time"

	"github.com/google/uuid"
)

// MonthDay is one cell of the 42-day month grid.
type MonthDay struct {
	Date               time.Time      `json:"date"`
	InMonth            bool           `json:"in_month"`
	IsToday            bool           `json:"is_today"`
	Closed             bool           `json:"closed"`
	AvailabilityColors []string       `json:"availability_colors,omitempty"`
	Appointments       []*Appointment `json:"appointments,omitempty"`
}

// MonthGrid is the 6-week display grid for a month, starting on the Monday
// on/before the 1st.
type MonthGrid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Days  []MonthDay `json:"days"`
}

// GridStart returns the Monday on/before the first day of the given month.
func GridStart(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	offset := ISOWeekday(first) - 1
	return first.AddDate(0, 0, -offset)
}

// BuildMonthGrid projects appointments, availability windows and closures
// onto the 42-day grid for a month. When doctorID is set, availability
// colors are restricted to that doctor; appointments are expected to be
// pre-filtered by the caller.
func BuildMonthGrid(
	year int,
	month time.Month,
	today time.Time,
	appointments []*Appointment,
	windows []*AvailabilityWindow,
	closures []*PracticeClosure,
	weeklyClosures []*PracticeWeeklyClosure,
	doctorID *uuid.UUID,
) *MonthGrid {
	start := GridStart(year, month)

	// Bucket appointments by calendar date.
	byDate := make(map[string][]*Appointment)
	for _, a := range appointments {
		key := a.StartsAt.Format("2006-01-02")
		byDate[key] = append(byDate[key], a)
	}

	// Availability colors per weekday.
	colorsByDay := make(map[int][]string)
	for _, w := range windows {
		if doctorID != nil && w.DoctorID != *doctorID {
			continue
		}
		if w.Color == nil || *w.Color == "" {
			continue
		}
		if !containsString(colorsByDay[w.DayOfWeek], *w.Color) {
			colorsByDay[w.DayOfWeek] = append(colorsByDay[w.DayOfWeek], *w.Color)
		}
	}

	weeklyClosed := make(map[int]bool)
	for _, wc := range weeklyClosures {
		if wc.IsActive {
			weeklyClosed[wc.DayOfWeek] = true
		}
	}

	grid := &MonthGrid{Year: year, Month: month, Days: make([]MonthDay, 0, 42)}
	for i := 0; i < 42; i++ {
		date := start.AddDate(0, 0, i)
		dayStart := date
		dayEnd := date.AddDate(0, 0, 1)
		weekday := ISOWeekday(date)

		closed := weeklyClosed[weekday]
		if !closed {
			for _, cl := range closures {
				if !cl.StartsAt.After(dayStart) && !cl.EndsAt.Before(dayEnd) {
					closed = true
					break
				}
			}
		}

		grid.Days = append(grid.Days, MonthDay{
			Date:               date,
			InMonth:            date.Month() == month,
			IsToday:            SameDate(date, today),
			Closed:             closed,
			AvailabilityColors: colorsByDay[weekday],
			Appointments:       byDate[date.Format("2006-01-02")],
		})
	}
	return grid
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
