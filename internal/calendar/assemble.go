package calendar

import (
	"fmt"
	"sort"
	"time"

	"calkids/internal/dates"
	"calkids/internal/model"
)

// RawInstance is one occurrence as delivered by an upstream calendar
// source, before normalization. Upstreams disagree about field names and
// about whether times come as an explicit date plus HH:MM clocks or as
// full timestamps; Normalize resolves all of that once, at the boundary.
type RawInstance struct {
	ID                string `json:"id"`
	TaskID            string `json:"taskId"`
	Title             string `json:"title"`
	Color             string `json:"color"`
	Icon              string `json:"icon"`
	Date              string `json:"date"`      // YYYY-MM-DD; authoritative when present
	StartTime         string `json:"startTime"` // HH:MM
	EndTime           string `json:"endTime"`
	Start             string `json:"start"` // full timestamp, fallback when Date is absent
	End               string `json:"end"`
	Done              bool   `json:"done"`
	DoneAt            string `json:"doneAt"`
	AssigneeProfileID string `json:"assigneeProfileId"`
	ChildID           string `json:"childId"`
}

const (
	defaultColor     = "#9AD7FF"
	defaultStartTime = "00:00"
	defaultEndTime   = "00:30"
)

// Assignee resolves the instance's child reference, trying
// assigneeProfileId first, then childId. Empty means unassigned; the
// instance is still bucketed and stays visible in parent-mode views.
func (r RawInstance) Assignee() string {
	if r.AssigneeProfileID != "" {
		return r.AssigneeProfileID
	}
	return r.ChildID
}

// Normalize converts a raw occurrence into the flat TaskInstance form.
// The explicit date field wins when present; otherwise the day is derived
// from the start timestamp by local-time field extraction.
func Normalize(r RawInstance) (model.TaskInstance, error) {
	inst := model.TaskInstance{
		ID:         r.ID,
		TemplateID: r.TaskID,
		ChildID:    r.Assignee(),
		Title:      r.Title,
		Color:      r.Color,
		Icon:       r.Icon,
		Done:       r.Done,
	}
	if inst.Color == "" {
		inst.Color = defaultColor
	}

	switch {
	case r.Date != "" && r.StartTime == "" && r.Start != "":
		// Hybrid payload: explicit date plus full timestamps but no
		// clock fields. The date stays authoritative for bucketing;
		// the timestamps supply the times that would otherwise fall
		// back to the 00:00 default.
		start, err := parseTimestamp(r.Start)
		if err != nil {
			return model.TaskInstance{}, fmt.Errorf("instance %s: %w", r.ID, err)
		}
		end := start.Add(30 * time.Minute)
		if r.End != "" {
			if e, err := parseTimestamp(r.End); err == nil {
				end = e
			}
		}
		inst.Date = r.Date
		inst.Start = start
		inst.End = end

	case r.Date != "":
		startClock, endClock := r.StartTime, r.EndTime
		if startClock == "" {
			startClock = defaultStartTime
		}
		if endClock == "" {
			endClock = defaultEndTime
		}
		start, err := dates.CombineDayTime(r.Date, startClock)
		if err != nil {
			return model.TaskInstance{}, fmt.Errorf("instance %s: %w", r.ID, err)
		}
		end, err := dates.CombineDayTime(r.Date, endClock)
		if err != nil {
			return model.TaskInstance{}, fmt.Errorf("instance %s: %w", r.ID, err)
		}
		inst.Date = r.Date
		inst.Start = start
		inst.End = end

	case r.Start != "":
		start, err := parseTimestamp(r.Start)
		if err != nil {
			return model.TaskInstance{}, fmt.Errorf("instance %s: %w", r.ID, err)
		}
		end := start.Add(30 * time.Minute)
		if r.End != "" {
			if e, err := parseTimestamp(r.End); err == nil {
				end = e
			}
		}
		inst.Date = dates.DayKey(start)
		inst.Start = start
		inst.End = end

	default:
		return model.TaskInstance{}, fmt.Errorf("instance %s: no date or start timestamp", r.ID)
	}

	if r.DoneAt != "" {
		if at, err := parseTimestamp(r.DoneAt); err == nil {
			inst.DoneAt = &at
		}
	}

	return inst, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
}

// BuildDayBuckets groups instances into a day-keyed map, each bucket
// sorted ascending by start time (stable on ties). The bucket key is the
// instance's own date field when set, else derived from its start. Feeding
// the output back in yields identical keys and ordering.
func BuildDayBuckets(instances []model.TaskInstance) model.DayBuckets {
	buckets := make(model.DayBuckets)
	for _, inst := range instances {
		key := inst.Date
		if key == "" {
			key = dates.DayKey(inst.Start)
			inst.Date = key
		}
		buckets[key] = append(buckets[key], inst)
	}

	for key := range buckets {
		bucket := buckets[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Start.Before(bucket[j].Start)
		})
	}
	return buckets
}
