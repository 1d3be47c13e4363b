package gamedomain

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultCron            = "37 13 * * *"
	DefaultTimezone        = "Europe/Berlin"
	DefaultEarlyBirdCutoff = 2 * time.Hour
)

// Phase is where the game stands at a given moment.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEarlyBird
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseEarlyBird:
		return "early_bird"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "idle"
	}
}

// WinTimer supplies the win offset for an instance.
type WinTimer interface {
	WinTime(instanceStart time.Time) int64
}

// PhaseInfo describes the current phase and its boundaries. Instance is the
// game instance the phase belongs to: the running one while Active, the
// upcoming one during EarlyBird and Idle, the last one when Ended.
type PhaseInfo struct {
	Phase        Phase
	Instance     time.Time
	Start        time.Time
	End          time.Time
	NextInstance time.Time
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// lookbacks bound the search for the previous instance.
var lookbacks = []time.Duration{
	time.Hour,
	24 * time.Hour,
	8 * 24 * time.Hour,
	32 * 24 * time.Hour,
	367 * 24 * time.Hour,
	5 * 367 * 24 * time.Hour,
}

// Schedule evaluates the cron expression that produces game instances.
type Schedule struct {
	expr   string
	loc    *time.Location
	spec   cron.Schedule
	cutoff time.Duration
}

// NewSchedule parses expr in the named timezone. Errors are *ConfigurationError.
func NewSchedule(expr, timezone string, cutoff time.Duration) (*Schedule, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, &ConfigurationError{Field: "timezone", Value: timezone, Err: err}
	}

	spec, err := cronParser.Parse(expr)
	if err != nil {
		return nil, &ConfigurationError{Field: "cron", Value: expr, Err: err}
	}
	if _, ok := spec.(*cron.SpecSchedule); !ok {
		return nil, &ConfigurationError{
			Field: "cron",
			Value: expr,
			Err:   errors.New("interval descriptors are not anchored to wall-clock time"),
		}
	}

	if day := firstDoubleDay(spec, loc); day != "" {
		return nil, &ConfigurationError{
			Field: "cron",
			Value: expr,
			Err:   fmt.Errorf("fires more than once on %s; one game per calendar day", day),
		}
	}

	if cutoff < 0 {
		return nil, &ConfigurationError{
			Field: "early_bird_cutoff",
			Value: cutoff.String(),
			Err:   fmt.Errorf("must not be negative"),
		}
	}

	return &Schedule{expr: expr, loc: loc, spec: spec, cutoff: cutoff}, nil
}

// firstDoubleDay walks a leap year of firings and returns the first date that
// has two instances, or "" if every date has at most one.
func firstDoubleDay(spec cron.Schedule, loc *time.Location) string {
	from := time.Date(2000, 1, 1, 0, 0, 0, 0, loc)
	until := from.AddDate(1, 0, 1)

	var lastDay string
	for t := spec.Next(from.Add(-time.Second)); !t.IsZero() && t.Before(until); t = spec.Next(t) {
		day := t.In(loc).Format(time.DateOnly)
		if day == lastDay {
			return day
		}
		lastDay = day
	}
	return ""
}

func (s *Schedule) Expression() string       { return s.expr }
func (s *Schedule) Location() *time.Location { return s.loc }
func (s *Schedule) Cutoff() time.Duration    { return s.cutoff }

// NextInstance returns the first instance start strictly after t, or the zero
// time if the expression never fires again.
func (s *Schedule) NextInstance(after time.Time) time.Time {
	return s.spec.Next(after.In(s.loc))
}

// PreviousInstance returns the latest instance start at or before t, or the
// zero time if none exists within five years.
func (s *Schedule) PreviousInstance(before time.Time) time.Time {
	before = before.In(s.loc)
	for _, lb := range lookbacks {
		candidate := s.spec.Next(before.Add(-lb))
		if candidate.IsZero() || candidate.After(before) {
			continue
		}
		for {
			n := s.spec.Next(candidate)
			if n.IsZero() || n.After(before) {
				return candidate
			}
			candidate = n
		}
	}
	return time.Time{}
}

// EarlyBirdCutoff is the moment early-bird bets close for instance.
func (s *Schedule) EarlyBirdCutoff(instance time.Time) time.Time {
	return instance.Add(-s.cutoff)
}

// InstanceDate is the calendar date of instance in the schedule's timezone.
func (s *Schedule) InstanceDate(instance time.Time) string {
	return instance.In(s.loc).Format(time.DateOnly)
}

// ActiveEnd is the inclusive end of instance's active window.
func (s *Schedule) ActiveEnd(instance time.Time, wins WinTimer) time.Time {
	return instance.Add(Milliseconds(wins.WinTime(instance)))
}

// Phase reports the engine phase at now.
func (s *Schedule) Phase(now time.Time, wins WinTimer) PhaseInfo {
	now = now.In(s.loc)
	prev := s.PreviousInstance(now)
	next := s.NextInstance(now)

	var prevEnd time.Time
	if !prev.IsZero() {
		prevEnd = s.ActiveEnd(prev, wins)
		if !now.After(prevEnd) {
			return PhaseInfo{Phase: PhaseActive, Instance: prev, Start: prev, End: prevEnd, NextInstance: next}
		}
	}

	if next.IsZero() {
		return PhaseInfo{Phase: PhaseEnded, Instance: prev, Start: prevEnd}
	}

	cut := s.EarlyBirdCutoff(next)
	if now.Before(cut) {
		return PhaseInfo{Phase: PhaseEarlyBird, Instance: next, Start: prevEnd, End: cut, NextInstance: next}
	}
	return PhaseInfo{Phase: PhaseIdle, Instance: next, Start: cut, End: next, NextInstance: next}
}

// InstancePhase reports where a specific instance stands at now.
func (s *Schedule) InstancePhase(instance, now time.Time, wins WinTimer) Phase {
	switch {
	case now.Before(s.EarlyBirdCutoff(instance)):
		return PhaseEarlyBird
	case now.Before(instance):
		return PhaseIdle
	case !now.After(s.ActiveEnd(instance, wins)):
		return PhaseActive
	default:
		return PhaseEnded
	}
}

// NextInstances lists up to n upcoming instance starts after t.
func (s *Schedule) NextInstances(after time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	t := after
	for range n {
		t = s.NextInstance(t)
		if t.IsZero() {
			break
		}
		out = append(out, t)
	}
	return out
}
