package store

import "testing"

func TestSettingsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSettingsStore(db)

	val, err := ss.Get("missing")
	if err != nil {
		t.Fatalf("get missing setting: %v", err)
	}
	if val != "" {
		t.Errorf("expected empty value, got %q", val)
	}

	if err := ss.Set("upstream_url", "https://calendar.example.com"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if err := ss.Set("upstream_url", "https://calendar2.example.com"); err != nil {
		t.Fatalf("overwrite setting: %v", err)
	}

	val, err = ss.Get("upstream_url")
	if err != nil {
		t.Fatal(err)
	}
	if val != "https://calendar2.example.com" {
		t.Errorf("value = %q", val)
	}

	all, err := ss.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d settings, want 1", len(all))
	}
}

func TestGetBoardSettings(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSettingsStore(db)

	if err := ss.Set("default_view", "day"); err != nil {
		t.Fatal(err)
	}
	if err := ss.Set("sounds_enabled", "false"); err != nil {
		t.Fatal(err)
	}
	// Keys outside the board group must not leak into the result.
	if err := ss.Set("upstream_url", "https://calendar.example.com"); err != nil {
		t.Fatal(err)
	}

	board, err := ss.GetBoardSettings()
	if err != nil {
		t.Fatalf("get board settings: %v", err)
	}
	if len(board) != 2 {
		t.Errorf("got %d board settings, want 2: %v", len(board), board)
	}
	if board["default_view"] != "day" {
		t.Errorf("default_view = %q, want day", board["default_view"])
	}
	if _, ok := board["upstream_url"]; ok {
		t.Error("upstream_url should not appear in board settings")
	}
}
