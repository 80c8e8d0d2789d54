package store

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	householdID := createTestHousehold(t, db)
	ss := NewSessionStore(db)

	sess, err := ss.Create(householdID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if sess.HouseholdID != householdID {
		t.Errorf("householdID = %q, want %q", sess.HouseholdID, householdID)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Errorf("GetByToken = %+v", got)
	}

	if err := ss.DeleteByToken(sess.Token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	got, err = ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted session: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	db := setupTestDB(t)
	householdID := createTestHousehold(t, db)
	ss := NewSessionStore(db)

	a, err := ss.Create(householdID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ss.Create(householdID, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if a.Token == b.Token {
		t.Error("two sessions share a token")
	}
}

func TestSessionExpiry(t *testing.T) {
	db := setupTestDB(t)
	householdID := createTestHousehold(t, db)
	ss := NewSessionStore(db)

	sess, err := ss.Create(householdID, -time.Minute)
	if err != nil {
		t.Fatalf("create expired session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get expired session: %v", err)
	}
	if got != nil {
		t.Error("expired session should not resolve")
	}

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}
}
