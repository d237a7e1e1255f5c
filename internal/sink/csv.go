// Package sink writes the generated tables to their output formats and
// loads existing dimension tables back in. CSV is the primary format;
// SQLite is available for consumers that prefer a queryable artifact.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tracklab/synthgen/internal/models"
)

// Output file names inside the output directory.
const (
	AccountsFile = "dim_account.csv"
	UsersFile    = "dim_user.csv"
	EventsFile   = "fct_event.csv"
)

var (
	accountHeader = []string{"account_id", "account_name", "plan_tier", "created_at", "region", "is_active"}
	userHeader    = []string{"user_id", "account_id", "role", "created_at", "activated_at", "timezone", "country", "is_active", "deactivated_at"}
	eventHeader   = []string{"event_id", "event_ts", "ingested_at", "event_name", "event_category", "user_id", "account_id", "task_id", "duration_seconds", "is_productive", "source"}
)

// EnsureDir creates the output directory if needed and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// WriteAccountsCSV writes the account dimension to dir/dim_account.csv.
func WriteAccountsCSV(dir string, accounts []models.Account) (string, error) {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{
			a.AccountID,
			a.AccountName,
			string(a.PlanTier),
			models.FormatTime(a.CreatedAt),
			a.Region,
			strconv.FormatBool(a.IsActive),
		})
	}
	return writeCSV(filepath.Join(dir, AccountsFile), accountHeader, rows)
}

// WriteUsersCSV writes the user dimension to dir/dim_user.csv.
func WriteUsersCSV(dir string, users []models.User) (string, error) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.UserID,
			u.AccountID,
			u.Role,
			models.FormatTime(u.CreatedAt),
			models.FormatTimePtr(u.ActivatedAt),
			u.Timezone,
			u.Country,
			strconv.FormatBool(u.IsActive),
			models.FormatTimePtr(u.DeactivatedAt),
		})
	}
	return writeCSV(filepath.Join(dir, UsersFile), userHeader, rows)
}

// WriteEventsCSV writes the event fact table to dir/fct_event.csv.
// Null task_id, duration_seconds, and is_productive serialize as empty
// strings.
func WriteEventsCSV(dir string, events []models.Event) (string, error) {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		taskID := ""
		if e.TaskID != nil {
			taskID = *e.TaskID
		}
		duration := ""
		if e.DurationSeconds != nil {
			duration = strconv.Itoa(*e.DurationSeconds)
		}
		productive := ""
		if e.IsProductive != nil {
			productive = strconv.FormatBool(*e.IsProductive)
		}
		rows = append(rows, []string{
			e.EventID,
			models.FormatTime(e.EventTS),
			models.FormatTime(e.IngestedAt),
			e.EventName,
			string(e.EventCategory),
			e.UserID,
			e.AccountID,
			taskID,
			duration,
			productive,
			string(e.Source),
		})
	}
	return writeCSV(filepath.Join(dir, EventsFile), eventHeader, rows)
}

// writeCSV writes one header row followed by the data rows.
func writeCSV(path string, header []string, rows [][]string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// LoadAccountsCSV reads an account dimension previously written by
// WriteAccountsCSV. Malformed rows fail fast; injected imperfections are
// supposed to be the only source of bad data in this pipeline.
func LoadAccountsCSV(path string) ([]models.Account, error) {
	records, err := readCSV(path, accountHeader)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(records))
	for i, rec := range records {
		createdAt, err := models.ParseTime(rec[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		isActive, err := strconv.ParseBool(rec[5])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: parse is_active: %w", path, i+1, err)
		}
		accounts = append(accounts, models.Account{
			AccountID:   rec[0],
			AccountName: rec[1],
			PlanTier:    models.PlanTier(rec[2]),
			CreatedAt:   createdAt,
			Region:      rec[4],
			IsActive:    isActive,
		})
	}
	return accounts, nil
}

// LoadUsersCSV reads a user dimension previously written by WriteUsersCSV.
func LoadUsersCSV(path string) ([]models.User, error) {
	records, err := readCSV(path, userHeader)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(records))
	for i, rec := range records {
		createdAt, err := models.ParseTime(rec[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		activatedAt, err := models.ParseTimePtr(rec[4])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		isActive, err := strconv.ParseBool(rec[7])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: parse is_active: %w", path, i+1, err)
		}
		deactivatedAt, err := models.ParseTimePtr(rec[8])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		users = append(users, models.User{
			UserID:        rec[0],
			AccountID:     rec[1],
			Role:          rec[2],
			CreatedAt:     createdAt,
			ActivatedAt:   activatedAt,
			Timezone:      rec[5],
			Country:       rec[6],
			IsActive:      isActive,
			DeactivatedAt: deactivatedAt,
		})
	}
	return users, nil
}

// readCSV reads all data rows of a CSV file, validating the header.
func readCSV(path string, wantHeader []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	header := records[0]
	if len(header) != len(wantHeader) {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(wantHeader), len(header))
	}
	for i, col := range wantHeader {
		if header[i] != col {
			return nil, fmt.Errorf("%s: column %d is %q, expected %q", path, i, header[i], col)
		}
	}

	return records[1:], nil
}
