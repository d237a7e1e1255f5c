package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tracklab/synthgen/internal/models"
)

func sampleAccounts() []models.Account {
	return []models.Account{
		{
			AccountID:   "acc-1",
			AccountName: "Account_10000",
			PlanTier:    models.TierPro,
			CreatedAt:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Region:      "EU",
			IsActive:    true,
		},
		{
			AccountID:   "acc-2",
			AccountName: "Account_10001",
			PlanTier:    models.TierFree,
			CreatedAt:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Region:      "NA",
			IsActive:    false,
		},
	}
}

func sampleUsers() []models.User {
	activated := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	deactivated := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []models.User{
		{
			UserID:      "usr-1",
			AccountID:   "acc-1",
			Role:        "member",
			CreatedAt:   time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			ActivatedAt: &activated,
			Timezone:    "UTC",
			Country:     "US",
			IsActive:    true,
		},
		{
			UserID:        "usr-2",
			AccountID:     "acc-1",
			Role:          "admin",
			CreatedAt:     time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			ActivatedAt:   &activated,
			Timezone:      "Europe/London",
			Country:       "GB",
			IsActive:      false,
			DeactivatedAt: &deactivated,
		},
		{
			UserID:    "usr-3",
			AccountID: "acc-2",
			Role:      "member",
			CreatedAt: time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
			Timezone:  "UTC",
			Country:   "CA",
			IsActive:  true,
		},
	}
}

func TestWriteLoadAccountsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	accounts := sampleAccounts()

	path, err := WriteAccountsCSV(dir, accounts)
	if err != nil {
		t.Fatalf("WriteAccountsCSV failed: %v", err)
	}
	if filepath.Base(path) != AccountsFile {
		t.Errorf("wrote to %s, want %s", path, AccountsFile)
	}

	loaded, err := LoadAccountsCSV(path)
	if err != nil {
		t.Fatalf("LoadAccountsCSV failed: %v", err)
	}
	if len(loaded) != len(accounts) {
		t.Fatalf("loaded %d accounts, want %d", len(loaded), len(accounts))
	}
	for i := range accounts {
		if loaded[i].AccountID != accounts[i].AccountID ||
			loaded[i].PlanTier != accounts[i].PlanTier ||
			!loaded[i].CreatedAt.Equal(accounts[i].CreatedAt) ||
			loaded[i].IsActive != accounts[i].IsActive {
			t.Errorf("account %d mismatch: %+v vs %+v", i, loaded[i], accounts[i])
		}
	}
}

func TestWriteLoadUsersRoundTrip(t *testing.T) {
	dir := t.TempDir()
	users := sampleUsers()

	path, err := WriteUsersCSV(dir, users)
	if err != nil {
		t.Fatalf("WriteUsersCSV failed: %v", err)
	}

	loaded, err := LoadUsersCSV(path)
	if err != nil {
		t.Fatalf("LoadUsersCSV failed: %v", err)
	}
	if len(loaded) != len(users) {
		t.Fatalf("loaded %d users, want %d", len(loaded), len(users))
	}

	if loaded[0].ActivatedAt == nil || !loaded[0].ActivatedAt.Equal(*users[0].ActivatedAt) {
		t.Errorf("usr-1 activated_at mismatch: %v", loaded[0].ActivatedAt)
	}
	if loaded[1].DeactivatedAt == nil || !loaded[1].DeactivatedAt.Equal(*users[1].DeactivatedAt) {
		t.Errorf("usr-2 deactivated_at mismatch: %v", loaded[1].DeactivatedAt)
	}
	if loaded[2].ActivatedAt != nil {
		t.Errorf("usr-3 activated_at = %v, want nil", loaded[2].ActivatedAt)
	}
	if loaded[2].DeactivatedAt != nil {
		t.Errorf("usr-3 deactivated_at = %v, want nil", loaded[2].DeactivatedAt)
	}
}

func TestWriteEventsCSV(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	taskID := "task-1"
	duration := 3600
	productive := true

	events := []models.Event{
		{
			EventID:       "evt-1",
			EventTS:       ts,
			IngestedAt:    ts.Add(4 * time.Minute),
			EventName:     "app_open",
			EventCategory: models.CategoryEngagement,
			UserID:        "usr-1",
			AccountID:     "acc-1",
			Source:        models.SourceWeb,
		},
		{
			EventID:         "evt-2",
			EventTS:         ts,
			IngestedAt:      ts.Add(2 * time.Minute),
			EventName:       "timer_stop",
			EventCategory:   models.CategoryWorkSession,
			UserID:          "usr-1",
			AccountID:       "acc-1",
			TaskID:          &taskID,
			DurationSeconds: &duration,
			IsProductive:    &productive,
			Source:          models.SourceDesktop,
		},
	}

	path, err := WriteEventsCSV(dir, events)
	if err != nil {
		t.Fatalf("WriteEventsCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}

	header := records[0]
	if header[0] != "event_id" || header[len(header)-1] != "source" {
		t.Errorf("unexpected header %v", header)
	}

	// Null optional columns serialize as empty strings.
	row1 := records[1]
	if row1[7] != "" || row1[8] != "" || row1[9] != "" {
		t.Errorf("app_open row has non-empty optional columns: %v", row1)
	}
	if row1[1] != "2025-11-03T09:30:00" {
		t.Errorf("event_ts = %q", row1[1])
	}

	row2 := records[2]
	if row2[7] != "task-1" || row2[8] != "3600" || row2[9] != "true" {
		t.Errorf("timer_stop optional columns = %v", row2[7:10])
	}
}

func TestLoadAccountsCSVBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dim_account.csv")
	content := "account_id,wrong_column\nacc-1,x\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAccountsCSV(path); err == nil {
		t.Error("expected error for mismatched header")
	}
}

func TestLoadAccountsCSVBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dim_account.csv")
	content := "account_id,account_name,plan_tier,created_at,region,is_active\n" +
		"acc-1,Account_10000,pro,not-a-timestamp,EU,true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAccountsCSV(path); err == nil {
		t.Error("expected error for malformed created_at")
	}
}

func TestLoadUsersCSVMissingFile(t *testing.T) {
	if _, err := LoadUsersCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	got, err := EnsureDir(dir)
	if err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if got != dir {
		t.Errorf("EnsureDir returned %s, want %s", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("output dir not created: %v", err)
	}
}
