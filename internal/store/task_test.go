package store

import (
	"testing"
	"time"

	"calkids/internal/model"
)

func TestTaskTemplateCRUD(t *testing.T) {
	db := setupTestDB(t)
	householdID := createTestHousehold(t, db)
	ts := NewTaskStore(db)

	start := time.Date(2025, 9, 15, 8, 0, 0, 0, time.Local)
	tmpl, err := ts.Create(model.TaskTemplate{
		HouseholdID: householdID,
		ChildID:     "kid1",
		Title:       "Colazione",
		Color:       "#FFB3D9",
		Icon:        "🍎",
		Start:       start,
		End:         start.Add(30 * time.Minute),
		Repeat:      "daily",
		Reminders:   []int{10, 5},
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if tmpl.ID == "" {
		t.Error("expected generated id")
	}
	if !tmpl.Start.Equal(start) {
		t.Errorf("start = %v, want %v", tmpl.Start, start)
	}
	if len(tmpl.Reminders) != 2 || tmpl.Reminders[0] != 10 || tmpl.Reminders[1] != 5 {
		t.Errorf("reminders = %v, want [10 5]", tmpl.Reminders)
	}

	tmpl.Title = "Colazione insieme"
	tmpl.Repeat = "weekly"
	tmpl.Reminders = nil
	updated, err := ts.Update(*tmpl)
	if err != nil {
		t.Fatalf("update template: %v", err)
	}
	if updated.Title != "Colazione insieme" || updated.Repeat != "weekly" {
		t.Errorf("update result = %+v", updated)
	}
	if len(updated.Reminders) != 0 {
		t.Errorf("reminders = %v, want empty", updated.Reminders)
	}

	list, err := ts.ListByHousehold(householdID)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d templates, want 1", len(list))
	}

	if err := ts.Delete(tmpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	got, err := ts.GetByID(tmpl.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected template to be gone")
	}
}

func TestTaskTemplateTimePreservesOffset(t *testing.T) {
	db := setupTestDB(t)
	householdID := createTestHousehold(t, db)
	ts := NewTaskStore(db)

	zone := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2025, 9, 15, 23, 30, 0, 0, zone)

	tmpl, err := ts.Create(model.TaskTemplate{
		HouseholdID: householdID,
		Title:       "Andare a letto",
		Start:       start,
		End:         start.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	// The wall-clock hour must survive the round-trip; shifting to UTC
	// would move this task onto the previous day.
	if tmpl.Start.Hour() != 23 {
		t.Errorf("hour = %d, want 23", tmpl.Start.Hour())
	}
	if !tmpl.Start.Equal(start) {
		t.Errorf("start = %v, want %v", tmpl.Start, start)
	}
}

func TestTaskTemplateListOrder(t *testing.T) {
	db := setupTestDB(t)
	householdID := createTestHousehold(t, db)
	ts := NewTaskStore(db)

	day := time.Date(2025, 9, 15, 0, 0, 0, 0, time.Local)
	for _, hour := range []int{19, 8, 14} {
		start := day.Add(time.Duration(hour) * time.Hour)
		_, err := ts.Create(model.TaskTemplate{
			HouseholdID: householdID,
			Title:       "t",
			Start:       start,
			End:         start.Add(time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	list, err := ts.ListByHousehold(householdID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d templates, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Start.Before(list[i-1].Start) {
			t.Errorf("templates out of order at %d: %v after %v", i, list[i].Start, list[i-1].Start)
		}
	}
}
