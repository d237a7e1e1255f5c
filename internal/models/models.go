// Package models defines the account, user, and event entities that make up
// the generated dataset, along with the enumerations and timestamp helpers
// shared by the generators and sinks.
package models

import (
	"fmt"
	"time"
)

// TimeLayout is the timestamp format used in all serialized output:
// second precision, no timezone suffix, no fractional seconds.
const TimeLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar-day format used for configuration values.
const DateLayout = "2006-01-02"

// PlanTier is an account's subscription tier.
type PlanTier string

const (
	TierFree       PlanTier = "free"
	TierBasic      PlanTier = "basic"
	TierPro        PlanTier = "pro"
	TierEnterprise PlanTier = "enterprise"
)

// Persona is a user's stable engagement persona. It is assigned once per
// user for the lifetime of a generation run and never reassigned.
type Persona string

const (
	PersonaPower   Persona = "power"
	PersonaRegular Persona = "regular"
	PersonaLight   Persona = "light"
)

// EventCategory groups event names into engagement, work session, and
// output families.
type EventCategory string

const (
	CategoryEngagement  EventCategory = "engagement"
	CategoryWorkSession EventCategory = "work_session"
	CategoryOutput      EventCategory = "output"
)

// Source identifies the client channel an event was reported from.
type Source string

const (
	SourceDesktop Source = "desktop"
	SourceWeb     Source = "web"
	SourceMobile  Source = "mobile"
	SourceAPI     Source = "api"
)

// Account is one row of the account dimension. Consumed read-only by the
// event generator.
type Account struct {
	AccountID   string
	AccountName string
	PlanTier    PlanTier
	CreatedAt   time.Time
	Region      string
	IsActive    bool
}

// User is one row of the user dimension. ActivatedAt is nil for users that
// never activated; such users generate no events. DeactivatedAt is set only
// for users that activated and later went inactive.
type User struct {
	UserID        string
	AccountID     string
	Role          string
	CreatedAt     time.Time
	ActivatedAt   *time.Time
	Timezone      string
	Country       string
	IsActive      bool
	DeactivatedAt *time.Time
}

// Event is one row of the event fact table. IngestedAt is zero until the
// imperfection pass assigns it. TaskID links a task_created/task_completed
// pair; DurationSeconds is set on timer_stop, idle_detected, and
// manual_time_added rows; IsProductive is set only on timer_stop rows.
type Event struct {
	EventID         string
	EventTS         time.Time
	IngestedAt      time.Time
	EventName       string
	EventCategory   EventCategory
	UserID          string
	AccountID       string
	TaskID          *string
	DurationSeconds *int
	IsProductive    *bool
	Source          Source
}

// FormatTime renders a timestamp in the serialized output format.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatTimePtr renders an optional timestamp, or "" when nil.
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}

// ParseTime parses a serialized timestamp. Malformed input is an error;
// upstream tables are never silently coerced.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseTimePtr parses an optional timestamp, mapping "" to nil.
func ParseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
