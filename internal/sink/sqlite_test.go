package sink

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/tracklab/synthgen/internal/models"
)

func TestWriteSQLite(t *testing.T) {
	dir := t.TempDir()
	accounts := sampleAccounts()
	users := sampleUsers()

	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	duration := 3600
	productive := true
	events := []models.Event{
		{
			EventID:       "evt-1",
			EventTS:       ts,
			IngestedAt:    ts.Add(3 * time.Minute),
			EventName:     "app_open",
			EventCategory: models.CategoryEngagement,
			UserID:        "usr-1",
			AccountID:     "acc-1",
			Source:        models.SourceMobile,
		},
		{
			EventID:         "evt-2",
			EventTS:         ts.Add(time.Hour),
			IngestedAt:      ts.Add(time.Hour + 5*time.Minute),
			EventName:       "timer_stop",
			EventCategory:   models.CategoryWorkSession,
			UserID:          "usr-1",
			AccountID:       "acc-1",
			DurationSeconds: &duration,
			IsProductive:    &productive,
			Source:          models.SourceDesktop,
		},
	}

	path, err := WriteSQLite(context.Background(), dir, accounts, users, events)
	if err != nil {
		t.Fatalf("WriteSQLite failed: %v", err)
	}
	if filepath.Base(path) != SQLiteFile {
		t.Errorf("wrote to %s, want %s", path, SQLiteFile)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	for table, want := range map[string]int{
		"dim_account": len(accounts),
		"dim_user":    len(users),
		"fct_event":   len(events),
	} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != want {
			t.Errorf("%s has %d rows, want %d", table, n, want)
		}
	}

	var activated sql.NullString
	if err := db.QueryRow("SELECT activated_at FROM dim_user WHERE user_id = 'usr-3'").Scan(&activated); err != nil {
		t.Fatalf("query usr-3: %v", err)
	}
	if activated.Valid {
		t.Errorf("usr-3 activated_at = %q, want NULL", activated.String)
	}

	var taskID sql.NullString
	var dur sql.NullInt64
	if err := db.QueryRow("SELECT task_id, duration_seconds FROM fct_event WHERE event_id = 'evt-1'").Scan(&taskID, &dur); err != nil {
		t.Fatalf("query evt-1: %v", err)
	}
	if taskID.Valid || dur.Valid {
		t.Error("evt-1 optional columns not NULL")
	}

	var gotTS string
	if err := db.QueryRow("SELECT event_ts FROM fct_event WHERE event_id = 'evt-2'").Scan(&gotTS); err != nil {
		t.Fatalf("query evt-2: %v", err)
	}
	if gotTS != "2025-11-03T10:30:00" {
		t.Errorf("evt-2 event_ts = %q", gotTS)
	}
}

func TestWriteSQLiteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	accounts := sampleAccounts()
	users := sampleUsers()

	if _, err := WriteSQLite(context.Background(), dir, accounts, users, nil); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	// Second run must replace, not append.
	path, err := WriteSQLite(context.Background(), dir, accounts[:1], users[:1], nil)
	if err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM dim_account").Scan(&n); err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if n != 1 {
		t.Errorf("dim_account has %d rows after rewrite, want 1", n)
	}
}
