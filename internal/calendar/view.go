package calendar

import (
	"sort"
	"time"

	"calkids/internal/dates"
	"calkids/internal/model"
)

type ViewMode string

const (
	ViewWeek ViewMode = "week"
	ViewDay  ViewMode = "day"
	ViewNow  ViewMode = "now"
)

// SelectVisibleDays narrows buckets to what the active view shows. Week
// mode passes every loaded day through; day mode returns only activeDate's
// bucket, materializing an empty one when absent. When activeChildID is
// set (child mode) each bucket is further filtered to that child's
// instances; unassigned instances cannot match and disappear. Parent mode
// (empty activeChildID) passes everything.
//
// The result is a narrowed copy; the input is never modified.
func SelectVisibleDays(buckets model.DayBuckets, mode ViewMode, activeDate, activeChildID string) model.DayBuckets {
	out := make(model.DayBuckets)

	if mode == ViewDay {
		out[activeDate] = filterChild(buckets[activeDate], activeChildID)
		return out
	}

	for day, insts := range buckets {
		out[day] = filterChild(insts, activeChildID)
	}
	return out
}

func filterChild(insts []model.TaskInstance, childID string) []model.TaskInstance {
	if childID == "" {
		out := make([]model.TaskInstance, len(insts))
		copy(out, insts)
		return out
	}
	out := make([]model.TaskInstance, 0, len(insts))
	for _, inst := range insts {
		if inst.ChildID == childID {
			out = append(out, inst)
		}
	}
	return out
}

type TimeStatus string

const (
	StatusPast     TimeStatus = "past"
	StatusCurrent  TimeStatus = "current"
	StatusUpcoming TimeStatus = "upcoming"
)

// nowWindowSpan is the reported time window around "now".
const nowWindowSpan = 2 * time.Hour

type NowTask struct {
	model.TaskInstance
	TimeStatus     TimeStatus `json:"timeStatus"`
	MinutesFromNow int        `json:"minutesFromNow"` // signed minutes to start
}

type NowSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Current   int `json:"current"`
	Upcoming  int `json:"upcoming"`
}

type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type NowWindow struct {
	CurrentTime string               `json:"currentTime"`
	CurrentDate string               `json:"currentDate"`
	TimeWindow  TimeWindow           `json:"timeWindow"`
	Tasks       []NowTask            `json:"tasks"`
	ByChild     map[string][]NowTask `json:"byChild,omitempty"`
	Summary     NowSummary           `json:"summary"`
}

// NowView ignores day boundaries: it scans every loaded instance and
// classifies it against the supplied "now". Done instances count as past
// regardless of timing; otherwise an instance is current when now falls
// within [start, end] and upcoming when its start is still ahead.
// MinutesFromNow is positive for future starts and negative for past ones.
//
// In parent mode (empty activeChildID) tasks are additionally grouped by
// child for display; unassigned instances appear in the flat list only.
func NowView(buckets model.DayBuckets, now time.Time, activeChildID string) NowWindow {
	win := NowWindow{
		CurrentTime: dates.FormatISO(now),
		CurrentDate: dates.DayKey(now),
		TimeWindow: TimeWindow{
			Start: dates.FormatISO(now.Add(-nowWindowSpan)),
			End:   dates.FormatISO(now.Add(nowWindowSpan)),
		},
		Tasks: []NowTask{},
	}

	for _, insts := range buckets {
		for _, inst := range filterChild(insts, activeChildID) {
			win.Tasks = append(win.Tasks, classify(inst, now))
		}
	}

	sort.SliceStable(win.Tasks, func(i, j int) bool {
		return win.Tasks[i].Start.Before(win.Tasks[j].Start)
	})

	for _, t := range win.Tasks {
		win.Summary.Total++
		if t.Done {
			win.Summary.Completed++
		}
		switch t.TimeStatus {
		case StatusCurrent:
			win.Summary.Current++
		case StatusUpcoming:
			win.Summary.Upcoming++
		}
	}
	win.Summary.Pending = win.Summary.Total - win.Summary.Completed

	if activeChildID == "" {
		win.ByChild = make(map[string][]NowTask)
		for _, t := range win.Tasks {
			if t.ChildID == "" {
				continue
			}
			win.ByChild[t.ChildID] = append(win.ByChild[t.ChildID], t)
		}
	}

	return win
}

func classify(inst model.TaskInstance, now time.Time) NowTask {
	t := NowTask{
		TaskInstance:   inst,
		MinutesFromNow: int(inst.Start.Sub(now).Minutes()),
	}

	switch {
	case inst.Done:
		t.TimeStatus = StatusPast
	case !now.Before(inst.Start) && !now.After(inst.End):
		t.TimeStatus = StatusCurrent
	case inst.Start.After(now):
		t.TimeStatus = StatusUpcoming
	default:
		t.TimeStatus = StatusPast
	}
	return t
}
