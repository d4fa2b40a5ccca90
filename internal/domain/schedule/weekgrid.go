package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// PositionedAppointment is an appointment placed in the week grid: its
// minute interval within the day plus the column slot assigned by the
// packing algorithm. Width is 1/Columns of the day lane, offset by
// Column/Columns.
type PositionedAppointment struct {
	*Appointment
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
	Column      int `json:"column"`
	Columns     int `json:"columns"`
}

// WeekDay is one day lane of the week grid.
type WeekDay struct {
	Date         time.Time                `json:"date"`
	Weekday      int                      `json:"weekday"`
	Closed       bool                     `json:"closed"`
	Windows      []*AvailabilityWindow    `json:"windows,omitempty"`
	Appointments []*PositionedAppointment `json:"appointments,omitempty"`
}

// WeekGrid is the 7-day week view with a shared time axis covering the
// union of availability windows and appointment times, rounded outward to
// whole hours with one hour of padding on each side.
type WeekGrid struct {
	WeekStart       time.Time `json:"week_start"`
	TimeStartMinute int       `json:"time_start_minute"`
	TimeEndMinute   int       `json:"time_end_minute"`
	Days            []WeekDay `json:"days"`
}

// Axis bounds used when a week has no windows and no appointments.
const (
	defaultAxisStart = 8 * 60
	defaultAxisEnd   = 18 * 60
)

// BuildWeekGrid lays out a Monday-anchored week. Appointments are expected
// to be pre-filtered to the week (and doctor, if any); windows are filtered
// here when doctorID is set.
func BuildWeekGrid(
	weekStart time.Time,
	appointments []*Appointment,
	windows []*AvailabilityWindow,
	closures []*PracticeClosure,
	weeklyClosures []*PracticeWeeklyClosure,
	doctorID *uuid.UUID,
) *WeekGrid {
	var dayWindows []*AvailabilityWindow
	for _, w := range windows {
		if doctorID != nil && w.DoctorID != *doctorID {
			continue
		}
		dayWindows = append(dayWindows, w)
	}

	axisStart, axisEnd := timeAxis(appointments, dayWindows)

	weeklyClosed := make(map[int]bool)
	for _, wc := range weeklyClosures {
		if wc.IsActive {
			weeklyClosed[wc.DayOfWeek] = true
		}
	}

	grid := &WeekGrid{
		WeekStart:       weekStart,
		TimeStartMinute: axisStart,
		TimeEndMinute:   axisEnd,
		Days:            make([]WeekDay, 0, 7),
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		dayEnd := date.AddDate(0, 0, 1)
		weekday := ISOWeekday(date)

		closed := weeklyClosed[weekday]
		if !closed {
			for _, cl := range closures {
				if !cl.StartsAt.After(date) && !cl.EndsAt.Before(dayEnd) {
					closed = true
					break
				}
			}
		}

		var winToday []*AvailabilityWindow
		for _, w := range dayWindows {
			if w.DayOfWeek == weekday {
				winToday = append(winToday, w)
			}
		}

		var positioned []*PositionedAppointment
		for _, a := range appointments {
			if !SameDate(a.StartsAt, date) {
				continue
			}
			positioned = append(positioned, &PositionedAppointment{
				Appointment: a,
				StartMinute: MinuteOfDay(a.StartsAt),
				EndMinute:   MinuteOfDay(a.EndsAt),
			})
		}
		packColumns(positioned)

		grid.Days = append(grid.Days, WeekDay{
			Date:         date,
			Weekday:      weekday,
			Closed:       closed,
			Windows:      winToday,
			Appointments: positioned,
		})
	}
	return grid
}

// timeAxis computes the shared time axis: the union of all window and
// appointment minutes, rounded outward to whole hours with one hour of
// padding, clamped to the day.
func timeAxis(appointments []*Appointment, windows []*AvailabilityWindow) (int, int) {
	start, end := -1, -1
	grow := func(s, e int) {
		if start == -1 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}
	for _, w := range windows {
		grow(w.StartMinute, w.EndMinute)
	}
	for _, a := range appointments {
		grow(MinuteOfDay(a.StartsAt), MinuteOfDay(a.EndsAt))
	}
	if start == -1 {
		return defaultAxisStart, defaultAxisEnd
	}

	start = (start/60)*60 - 60
	if end%60 != 0 {
		end = (end/60 + 1) * 60
	}
	end += 60

	if start < 0 {
		start = 0
	}
	if end > 24*60 {
		end = 24 * 60
	}
	return start, end
}

// packColumns assigns overlapping same-day appointments to side-by-side
// columns. Appointments are first grouped into connected-overlap components;
// within a component each appointment takes the lowest-indexed column whose
// last occupant ends at or before the appointment's start, and every member
// of the component shares the resulting column count.
func packColumns(appts []*PositionedAppointment) {
	n := len(appts)
	if n == 0 {
		return
	}

	overlaps := func(a, b *PositionedAppointment) bool {
		return a.StartMinute < b.EndMinute && a.EndMinute > b.StartMinute
	}

	visited := make([]bool, n)
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}

		// Collect the connected component reachable from i via pairwise
		// interval overlap, using a stack traversal.
		var component []int
		stack := []int{i}
		visited[i] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, cur)
			for j := 0; j < n; j++ {
				if !visited[j] && overlaps(appts[cur], appts[j]) {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}

		sort.Slice(component, func(a, b int) bool {
			ai, bi := appts[component[a]], appts[component[b]]
			if ai.StartMinute != bi.StartMinute {
				return ai.StartMinute < bi.StartMinute
			}
			return ai.EndMinute < bi.EndMinute
		})

		// Greedy first-fit: columnEnds[k] holds the end minute of the last
		// appointment placed in column k.
		var columnEnds []int
		for _, idx := range component {
			a := appts[idx]
			placed := false
			for col, colEnd := range columnEnds {
				if colEnd <= a.StartMinute {
					a.Column = col
					columnEnds[col] = a.EndMinute
					placed = true
					break
				}
			}
			if !placed {
				a.Column = len(columnEnds)
				columnEnds = append(columnEnds, a.EndMinute)
			}
		}
		for _, idx := range component {
			appts[idx].Columns = len(columnEnds)
		}
	}
}
