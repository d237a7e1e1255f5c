package events

import (
	"math/rand"
	"time"

	"github.com/tracklab/synthgen/internal/config"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

// Delay distribution parameters for the ingestion pass.
const (
	meanIngestDelayMinutes = 5.0
	lateDelayHoursMin      = 1.0
	lateDelayHoursMax      = 72.0

	outlierDurationMinS = 8 * 3600
	outlierDurationMaxS = 16 * 3600
)

// Injector is the post-processing pass that turns the clean event table
// into a realistically imperfect one. It fills ingested_at and injects
// missing fields and duration outliers at the configured rates.
//
// The four steps draw independent random masks, so a row may be hit by more
// than one. The pass never alters row count, event_id, or the user, account,
// and category identity of any row.
type Injector struct {
	rng *rand.Rand
	cfg config.ImperfectionConfig
}

// NewInjector creates an injector with the given defect rates.
func NewInjector(cfg config.ImperfectionConfig, rng *rand.Rand) *Injector {
	return &Injector{rng: rng, cfg: cfg}
}

// Apply mutates events in place and returns the same slice. An empty input
// is a no-op. Steps, in order:
//
//  1. Ingestion delay: every row gets ingested_at = event_ts + Exp(mean 5m);
//     a PctLateEvents fraction instead gets a uniform 1-72h delay.
//  2. Missing duration: a PctMissingDuration fraction of timer_stop,
//     idle_detected, and manual_time_added rows lose duration_seconds.
//  3. Missing task linkage: a PctMissingTaskID fraction of task_completed
//     rows lose task_id.
//  4. Duration outliers: a PctOutlierDuration fraction of timer_stop rows
//     get a uniform 8-16h duration, modeling a timer left running.
func (inj *Injector) Apply(events []models.Event) []models.Event {
	if len(events) == 0 {
		return events
	}

	inj.applyIngestionDelay(events)
	inj.applyMissingDuration(events)
	inj.applyMissingTaskID(events)
	inj.applyDurationOutliers(events)

	return events
}

func (inj *Injector) applyIngestionDelay(events []models.Event) {
	for i := range events {
		delay := time.Duration(randx.Exponential(inj.rng, meanIngestDelayMinutes) * float64(time.Minute))
		if randx.Bernoulli(inj.rng, inj.cfg.PctLateEvents) {
			delay = time.Duration(randx.UniformFloat(inj.rng, lateDelayHoursMin, lateDelayHoursMax) * float64(time.Hour))
		}
		events[i].IngestedAt = events[i].EventTS.Add(delay)
	}
}

func (inj *Injector) applyMissingDuration(events []models.Event) {
	for i := range events {
		if !carriesDuration(events[i].EventName) {
			continue
		}
		if randx.Bernoulli(inj.rng, inj.cfg.PctMissingDuration) {
			events[i].DurationSeconds = nil
		}
	}
}

func (inj *Injector) applyMissingTaskID(events []models.Event) {
	for i := range events {
		if events[i].EventName != EventTaskCompleted {
			continue
		}
		if randx.Bernoulli(inj.rng, inj.cfg.PctMissingTaskID) {
			events[i].TaskID = nil
		}
	}
}

func (inj *Injector) applyDurationOutliers(events []models.Event) {
	for i := range events {
		if events[i].EventName != EventTimerStop {
			continue
		}
		if randx.Bernoulli(inj.rng, inj.cfg.PctOutlierDuration) {
			events[i].DurationSeconds = intPtr(randx.UniformInt(inj.rng, outlierDurationMinS, outlierDurationMaxS))
		}
	}
}

// carriesDuration reports whether an event name populates duration_seconds.
func carriesDuration(name string) bool {
	switch name {
	case EventTimerStop, EventIdleDetected, EventManualTimeAdded:
		return true
	}
	return false
}
