package calendar

import (
	"reflect"
	"testing"
	"time"

	"calkids/internal/model"
)

func TestAssigneeResolutionOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  RawInstance
		want string
	}{
		{"profile id wins", RawInstance{AssigneeProfileID: "kid1", ChildID: "kid2"}, "kid1"},
		{"falls back to childId", RawInstance{ChildID: "kid2"}, "kid2"},
		{"neither means unassigned", RawInstance{}, ""},
	}

	for _, tt := range tests {
		if got := tt.raw.Assignee(); got != tt.want {
			t.Errorf("%s: Assignee() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeDateFieldAuthoritative(t *testing.T) {
	raw := RawInstance{
		ID:        "i1",
		TaskID:    "t1",
		Title:     "Breakfast",
		Date:      "2025-09-18",
		StartTime: "08:00",
		EndTime:   "08:30",
		// A conflicting full timestamp must lose to the explicit date.
		Start: "2025-09-19T08:00:00",
	}

	inst, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if inst.Date != "2025-09-18" {
		t.Errorf("Date = %q, want 2025-09-18", inst.Date)
	}
	want := time.Date(2025, 9, 18, 8, 0, 0, 0, time.Local)
	if !inst.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", inst.Start, want)
	}
}

func TestNormalizeHybridDateWithTimestamps(t *testing.T) {
	raw := RawInstance{
		ID:    "i5",
		Title: "Swim class",
		Date:  "2025-09-18",
		Start: "2025-09-18T16:00:00",
		End:   "2025-09-18T17:00:00",
	}

	inst, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if inst.Date != "2025-09-18" {
		t.Errorf("Date = %q, want 2025-09-18", inst.Date)
	}
	if inst.Start.Hour() != 16 || inst.End.Hour() != 17 {
		t.Errorf("times = %v..%v, want 16:00..17:00", inst.Start, inst.End)
	}
}

func TestNormalizeDerivesDayFromStart(t *testing.T) {
	raw := RawInstance{
		ID:    "i2",
		Title: "Pediatrician",
		Start: "2025-09-18T16:00:00",
		End:   "2025-09-18T17:00:00",
	}

	inst, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if inst.Date != "2025-09-18" {
		t.Errorf("Date = %q, want 2025-09-18", inst.Date)
	}
	if dur := inst.End.Sub(inst.Start); dur != time.Hour {
		t.Errorf("duration = %v, want 1h", dur)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	inst, err := Normalize(RawInstance{ID: "i3", Date: "2025-09-18"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if inst.Color == "" {
		t.Error("expected default color")
	}
	if inst.Start.Hour() != 0 || inst.End.Minute() != 30 {
		t.Errorf("defaults = %v..%v, want 00:00..00:30", inst.Start, inst.End)
	}
}

func TestNormalizeRejectsDatelessInstance(t *testing.T) {
	if _, err := Normalize(RawInstance{ID: "i4", Title: "Nothing"}); err == nil {
		t.Error("expected error for instance with neither date nor start")
	}
}

func inst(id, day string, hh, mm int, childID string) model.TaskInstance {
	d, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		d = time.Date(2025, 9, 18, 0, 0, 0, 0, time.Local)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, time.Local)
	return model.TaskInstance{
		ID:      id,
		ChildID: childID,
		Title:   id,
		Date:    day,
		Start:   start,
		End:     start.Add(30 * time.Minute),
	}
}

func TestBuildDayBucketsSortsByStart(t *testing.T) {
	buckets := BuildDayBuckets([]model.TaskInstance{
		inst("late", "2025-09-18", 19, 0, "kid1"),
		inst("early", "2025-09-18", 8, 0, "kid1"),
		inst("mid", "2025-09-18", 14, 0, "kid2"),
	})

	day := buckets["2025-09-18"]
	if len(day) != 3 {
		t.Fatalf("bucket size = %d, want 3", len(day))
	}
	wantOrder := []string{"early", "mid", "late"}
	for i, want := range wantOrder {
		if day[i].ID != want {
			t.Errorf("day[%d] = %q, want %q", i, day[i].ID, want)
		}
	}
}

func TestBuildDayBucketsKeyFromStartWhenDateMissing(t *testing.T) {
	i := inst("x", "", 8, 0, "kid1")
	buckets := BuildDayBuckets([]model.TaskInstance{i})

	day, ok := buckets["2025-09-18"]
	if !ok {
		t.Fatalf("expected bucket 2025-09-18, got keys %v", keys(buckets))
	}
	if day[0].Date != "2025-09-18" {
		t.Errorf("instance date backfilled to %q, want 2025-09-18", day[0].Date)
	}
}

func TestBuildDayBucketsIdempotent(t *testing.T) {
	input := []model.TaskInstance{
		inst("b", "2025-09-18", 9, 0, "kid1"),
		inst("a", "2025-09-18", 8, 0, "kid2"),
		inst("c", "2025-09-19", 7, 0, "kid1"),
	}

	first := BuildDayBuckets(input)

	var flat []model.TaskInstance
	for _, day := range first {
		flat = append(flat, day...)
	}
	second := BuildDayBuckets(flat)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-bucketing changed the result:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestBuildDayBucketsSameLocalDayInvariant(t *testing.T) {
	buckets := BuildDayBuckets([]model.TaskInstance{
		inst("a", "", 0, 1, "kid1"),
		inst("b", "", 23, 59, "kid1"),
	})
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
}

func keys(b model.DayBuckets) []string {
	var out []string
	for k := range b {
		out = append(out, k)
	}
	return out
}
