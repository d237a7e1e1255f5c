// Package report computes the post-run health-check summary: row counts,
// event date range, and the empirical defect rates of the generated table.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/tracklab/synthgen/internal/events"
	"github.com/tracklab/synthgen/internal/models"
)

// lateThreshold is the ingestion lag above which an event counts as late.
const lateThreshold = time.Hour

// Summary holds the quick checks printed after a generation run.
type Summary struct {
	AccountRows int `json:"account_rows"`
	UserRows    int `json:"user_rows"`
	EventRows   int `json:"event_rows"`

	// FirstEventDate and LastEventDate bound the event-time range.
	// Zero when no events were generated.
	FirstEventDate time.Time `json:"first_event_date"`
	LastEventDate  time.Time `json:"last_event_date"`

	// LateFraction is the share of events with ingested_at more than an
	// hour after event_ts.
	LateFraction float64 `json:"late_fraction"`

	// MissingDurationFraction is the share of duration-carrying rows
	// (timer_stop, idle_detected, manual_time_added) with a null duration.
	MissingDurationFraction float64 `json:"missing_duration_fraction"`

	// MissingTaskIDFraction is the share of task_completed rows with a
	// null task_id.
	MissingTaskIDFraction float64 `json:"missing_task_id_fraction"`
}

// Summarize computes the summary over the generated tables.
func Summarize(accounts []models.Account, users []models.User, evts []models.Event) Summary {
	s := Summary{
		AccountRows: len(accounts),
		UserRows:    len(users),
		EventRows:   len(evts),
	}

	late := 0
	durationRows, durationMissing := 0, 0
	taskRows, taskMissing := 0, 0

	for _, e := range evts {
		if s.FirstEventDate.IsZero() || e.EventTS.Before(s.FirstEventDate) {
			s.FirstEventDate = e.EventTS
		}
		if e.EventTS.After(s.LastEventDate) {
			s.LastEventDate = e.EventTS
		}

		if e.IngestedAt.Sub(e.EventTS) > lateThreshold {
			late++
		}

		switch e.EventName {
		case events.EventTimerStop, events.EventIdleDetected, events.EventManualTimeAdded:
			durationRows++
			if e.DurationSeconds == nil {
				durationMissing++
			}
		case events.EventTaskCompleted:
			taskRows++
			if e.TaskID == nil {
				taskMissing++
			}
		}
	}

	if len(evts) > 0 {
		s.LateFraction = float64(late) / float64(len(evts))
	}
	if durationRows > 0 {
		s.MissingDurationFraction = float64(durationMissing) / float64(durationRows)
	}
	if taskRows > 0 {
		s.MissingTaskIDFraction = float64(taskMissing) / float64(taskRows)
	}

	return s
}

// String renders the summary as the human-readable quick-checks block.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows: accounts=%d users=%d events=%d\n", s.AccountRows, s.UserRows, s.EventRows)
	if s.EventRows > 0 {
		fmt.Fprintf(&b, "event date range: %s -> %s\n",
			s.FirstEventDate.Format(models.DateLayout), s.LastEventDate.Format(models.DateLayout))
		fmt.Fprintf(&b, "late events (ingested_at > event_ts + 1h): %.2f%%\n", s.LateFraction*100)
		fmt.Fprintf(&b, "missing duration_seconds: %.2f%%\n", s.MissingDurationFraction*100)
		fmt.Fprintf(&b, "missing task_id on task_completed: %.2f%%\n", s.MissingTaskIDFraction*100)
	}
	return b.String()
}
