package events

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

// Event names emitted by the simulation.
const (
	EventAppOpen         = "app_open"
	EventDashboardView   = "dashboard_view"
	EventTimerStart      = "timer_start"
	EventTimerStop       = "timer_stop"
	EventIdleDetected    = "idle_detected"
	EventManualTimeAdded = "manual_time_added"
	EventTaskCreated     = "task_created"
	EventTaskCompleted   = "task_completed"
)

// Per-day behavioral parameters. Times are minute offsets within the day.
const (
	inactiveSuppressionProb = 0.80

	dashboardFollowupProb = 0.40

	workSessionProb      = 0.75
	sessionStartMinMin   = 8 * 60
	sessionStartMinMax   = 11 * 60
	sessionDurationMinS  = 20 * 60
	sessionDurationMaxS  = 3 * 60 * 60
	idleProb             = 0.18
	manualTimeProb       = 0.05
	manualTimeMinuteMin  = 12 * 60
	manualTimeMinuteMax  = 18 * 60
	taskBatchProb        = 0.55
	taskCreatedMinuteMin = 9 * 60
	taskCreatedMinuteMax = 17 * 60

	taskCompletedDelayMinuteMin = 15
	taskCompletedDelayMinuteMax = 240

	taskMeanPower   = 5.0
	taskMeanDefault = 2.0
)

var (
	sources     = []models.Source{models.SourceDesktop, models.SourceWeb, models.SourceMobile, models.SourceAPI}
	sourceProbs = []float64{0.70, 0.15, 0.10, 0.05}
)

// DailySimulator decides, per user per calendar day, whether engagement,
// work-session, and output events occur, and synthesizes timestamps and
// durations for each.
type DailySimulator struct {
	rng *rand.Rand
}

// NewDailySimulator creates a simulator drawing from rng.
func NewDailySimulator(rng *rand.Rand) *DailySimulator {
	return &DailySimulator{rng: rng}
}

// SimulateDay emits the events for one (user, day) pair, or nil when the
// day's participation gates fail. The gate order is fixed: inactive-user
// suppression first, then the activity draw. Churn cutoffs are enforced by
// the caller before this point.
func (s *DailySimulator) SimulateDay(user models.User, day time.Time, persona models.Persona, activityProb float64) []models.Event {
	// Inactive users keep an 80% chance of contributing nothing, drawn
	// independently of the activity probability.
	if !user.IsActive && randx.Bernoulli(s.rng, inactiveSuppressionProb) {
		return nil
	}

	if !randx.Bernoulli(s.rng, activityProb) {
		return nil
	}

	var out []models.Event
	out = s.emitEngagement(out, user, day)
	out = s.emitWorkSession(out, user, day)
	out = s.emitOutput(out, user, day, persona)
	return out
}

// emitEngagement appends 1-3 app_open events at random minute offsets, each
// with a 40% chance of a dashboard_view follow-up 1-30 minutes later.
func (s *DailySimulator) emitEngagement(out []models.Event, user models.User, day time.Time) []models.Event {
	n := randx.UniformInt(s.rng, 1, 4)
	for i := 0; i < n; i++ {
		ts := minutesInto(day, randx.UniformInt(s.rng, 0, 24*60))
		out = append(out, s.newEvent(user, ts, EventAppOpen, models.CategoryEngagement))

		if randx.Bernoulli(s.rng, dashboardFollowupProb) {
			ts2 := ts.Add(time.Duration(randx.UniformInt(s.rng, 1, 30)) * time.Minute)
			out = append(out, s.newEvent(user, ts2, EventDashboardView, models.CategoryEngagement))
		}
	}
	return out
}

// emitWorkSession appends a 75%-likely work session: a timer_start between
// 08:00-11:00 and a timer_stop 20 minutes to 3 hours later carrying the
// elapsed duration. The timer_stop duration is the source of truth for time
// worked. Idle (18%) and manual time (5%) events ride along.
func (s *DailySimulator) emitWorkSession(out []models.Event, user models.User, day time.Time) []models.Event {
	if !randx.Bernoulli(s.rng, workSessionProb) {
		return out
	}

	sessionStart := minutesInto(day, randx.UniformInt(s.rng, sessionStartMinMin, sessionStartMinMax))
	duration := randx.UniformInt(s.rng, sessionDurationMinS, sessionDurationMaxS)
	sessionEnd := sessionStart.Add(time.Duration(duration) * time.Second)

	out = append(out, s.newEvent(user, sessionStart, EventTimerStart, models.CategoryWorkSession))

	stop := s.newEvent(user, sessionEnd, EventTimerStop, models.CategoryWorkSession)
	stop.DurationSeconds = intPtr(duration)
	stop.IsProductive = boolPtr(true)
	out = append(out, stop)

	if randx.Bernoulli(s.rng, idleProb) {
		idleTS := sessionStart.Add(time.Duration(randx.UniformInt(s.rng, 10, 90)) * time.Minute)
		idle := s.newEvent(user, idleTS, EventIdleDetected, models.CategoryWorkSession)
		idle.DurationSeconds = intPtr(randx.UniformInt(s.rng, 60, 600))
		out = append(out, idle)
	}

	if randx.Bernoulli(s.rng, manualTimeProb) {
		mtTS := minutesInto(day, randx.UniformInt(s.rng, manualTimeMinuteMin, manualTimeMinuteMax))
		mt := s.newEvent(user, mtTS, EventManualTimeAdded, models.CategoryWorkSession)
		mt.DurationSeconds = intPtr(randx.UniformInt(s.rng, 5*60, 45*60))
		out = append(out, mt)
	}

	return out
}

// emitOutput appends a 55%-likely batch of task pairs. The task count is
// Poisson with mean 5 for power users and 2 otherwise; each task gets a
// shared task_id, a task_created between 09:00-17:00, and a task_completed
// 15-240 minutes later.
func (s *DailySimulator) emitOutput(out []models.Event, user models.User, day time.Time, persona models.Persona) []models.Event {
	if !randx.Bernoulli(s.rng, taskBatchProb) {
		return out
	}

	mean := taskMeanDefault
	if persona == models.PersonaPower {
		mean = taskMeanPower
	}

	n := randx.Poisson(s.rng, mean)
	for i := 0; i < n; i++ {
		taskID := uuid.NewString()
		createdTS := minutesInto(day, randx.UniformInt(s.rng, taskCreatedMinuteMin, taskCreatedMinuteMax))
		doneTS := createdTS.Add(time.Duration(randx.UniformInt(s.rng, taskCompletedDelayMinuteMin, taskCompletedDelayMinuteMax)) * time.Minute)

		created := s.newEvent(user, createdTS, EventTaskCreated, models.CategoryOutput)
		created.TaskID = strPtr(taskID)
		out = append(out, created)

		done := s.newEvent(user, doneTS, EventTaskCompleted, models.CategoryOutput)
		done.TaskID = strPtr(taskID)
		out = append(out, done)
	}

	return out
}

// newEvent builds an event row with a fresh event_id and a weighted source
// channel draw. IngestedAt stays zero until the imperfection pass.
func (s *DailySimulator) newEvent(user models.User, ts time.Time, name string, category models.EventCategory) models.Event {
	return models.Event{
		EventID:       uuid.NewString(),
		EventTS:       ts,
		EventName:     name,
		EventCategory: category,
		UserID:        user.UserID,
		AccountID:     user.AccountID,
		Source:        sources[randx.WeightedIndex(s.rng, sourceProbs)],
	}
}

func minutesInto(day time.Time, minutes int) time.Time {
	return day.Add(time.Duration(minutes) * time.Minute)
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
