package store

import (
	"testing"
	"time"

	"calkids/internal/model"
)

func TestInstanceStateUpsert(t *testing.T) {
	db := setupTestDB(t)
	is := NewInstanceStore(db)

	got, err := is.Get("tmpl1@2025-09-15")
	if err != nil {
		t.Fatalf("get missing state: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unrecorded instance, got %+v", got)
	}

	now := time.Now().Truncate(time.Second)
	state := model.InstanceState{
		InstanceID: "tmpl1@2025-09-15",
		ChildID:    "kid1",
		Done:       true,
		DoneAt:     &now,
		UpdatedAt:  now,
	}
	if err := is.Set(state); err != nil {
		t.Fatalf("set state: %v", err)
	}

	got, err = is.Get("tmpl1@2025-09-15")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got == nil || !got.Done || got.ChildID != "kid1" {
		t.Errorf("state = %+v", got)
	}
	if got.DoneAt == nil || !got.DoneAt.Equal(now) {
		t.Errorf("doneAt = %v, want %v", got.DoneAt, now)
	}

	// Upsert flips it back without a doneAt.
	state.Done = false
	state.DoneAt = nil
	if err := is.Set(state); err != nil {
		t.Fatalf("set state again: %v", err)
	}
	got, err = is.Get("tmpl1@2025-09-15")
	if err != nil {
		t.Fatal(err)
	}
	if got.Done || got.DoneAt != nil {
		t.Errorf("after undo: %+v", got)
	}
}

func TestInstanceStateGetMany(t *testing.T) {
	db := setupTestDB(t)
	is := NewInstanceStore(db)

	now := time.Now()
	for _, id := range []string{"a@2025-09-15", "b@2025-09-15"} {
		if err := is.Set(model.InstanceState{InstanceID: id, Done: true, UpdatedAt: now}); err != nil {
			t.Fatal(err)
		}
	}

	states, err := is.GetMany([]string{"a@2025-09-15", "b@2025-09-15", "c@2025-09-15"})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(states) != 2 {
		t.Errorf("got %d states, want 2", len(states))
	}
	if _, ok := states["c@2025-09-15"]; ok {
		t.Error("unrecorded instance should be absent")
	}

	empty, err := is.GetMany(nil)
	if err != nil {
		t.Fatalf("get many with no ids: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty map, got %v", empty)
	}
}

func TestInstanceStateDeleteByTemplate(t *testing.T) {
	db := setupTestDB(t)
	is := NewInstanceStore(db)

	now := time.Now()
	for _, id := range []string{"tmpl1@2025-09-15", "tmpl1@2025-09-16", "tmpl2@2025-09-15"} {
		if err := is.Set(model.InstanceState{InstanceID: id, Done: true, UpdatedAt: now}); err != nil {
			t.Fatal(err)
		}
	}

	if err := is.DeleteByTemplate("tmpl1"); err != nil {
		t.Fatalf("delete by template: %v", err)
	}

	states, err := is.GetMany([]string{"tmpl1@2025-09-15", "tmpl1@2025-09-16", "tmpl2@2025-09-15"})
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 1 {
		t.Errorf("got %d states, want only tmpl2's", len(states))
	}
	if _, ok := states["tmpl2@2025-09-15"]; !ok {
		t.Error("tmpl2 state should survive")
	}
}
