package domain

import (
	"sort"
	"strconv"
	"time"

	"pulse/internal/platform/clock"
	apperrors "pulse/internal/platform/errors"
)

const (
	// TimestampLayout is yyyy-MM-dd HH:mm.
	TimestampLayout = "2006-01-02 15:04"

	MinBeatsPerMinute = 1
	MaxBeatsPerMinute = 300
)

// Sample is a single heart-rate reading. ID is assigned by the store.
type Sample struct {
	ID                string
	BeatsPerMinute    int
	Time              time.Time
	ZoneOffsetSeconds int
}

type ValidationKind int

const (
	InvalidRate ValidationKind = iota + 1
	InvalidTimestamp
)

type ValidationError struct {
	Kind ValidationKind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case InvalidRate:
		return "Please enter a valid heart rate (1-300 bpm)"
	case InvalidTimestamp:
		return "Invalid date/time format. Use yyyy-MM-dd HH:mm"
	default:
		return "invalid input"
	}
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case InvalidRate:
		return apperrors.ErrInvalidRate
	case InvalidTimestamp:
		return apperrors.ErrInvalidTimestamp
	default:
		return apperrors.ErrInvalidInput
	}
}

func ValidateRate(bpm int) error {
	if bpm < MinBeatsPerMinute || bpm > MaxBeatsPerMinute {
		return &ValidationError{Kind: InvalidRate}
	}
	return nil
}

// Validate parses raw form input exactly as typed: no trimming, no single
// digit fields. Both fields are checked; a bad rate is reported ahead of a
// bad timestamp.
func Validate(rawRate, rawTimestamp string, loc *time.Location) (int, time.Time, error) {
	bpm, rateErr := strconv.Atoi(rawRate)
	if rateErr == nil {
		rateErr = ValidateRate(bpm)
	}
	at, tsErr := parseTimestamp(rawTimestamp, loc)

	switch {
	case rateErr != nil:
		return 0, time.Time{}, &ValidationError{Kind: InvalidRate}
	case tsErr != nil:
		return 0, time.Time{}, &ValidationError{Kind: InvalidTimestamp}
	}
	return bpm, at.UTC(), nil
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if !matchesLayout(raw) {
		return time.Time{}, &ValidationError{Kind: InvalidTimestamp}
	}
	at, err := time.ParseInLocation(TimestampLayout, raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !clock.Encodable(at) {
		return time.Time{}, &ValidationError{Kind: InvalidTimestamp}
	}
	return at, nil
}

// matchesLayout reports whether raw has the shape dddd-dd-dd dd:dd.
func matchesLayout(raw string) bool {
	if len(raw) != len(TimestampLayout) {
		return false
	}
	for i := 0; i < len(raw); i++ {
		switch sep := TimestampLayout[i]; sep {
		case '-', ' ', ':':
			if raw[i] != sep {
				return false
			}
		default:
			if raw[i] < '0' || raw[i] > '9' {
				return false
			}
		}
	}
	return true
}

// NewSample builds a zero-length sample at the given instant, annotated with
// the UTC offset loc observes at that instant.
func NewSample(bpm int, at time.Time, loc *time.Location) (Sample, error) {
	if err := ValidateRate(bpm); err != nil {
		return Sample{}, err
	}
	if at.IsZero() || !clock.Encodable(at) {
		return Sample{}, &ValidationError{Kind: InvalidTimestamp}
	}
	_, offset := at.In(loc).Zone()
	return Sample{BeatsPerMinute: bpm, Time: at.UTC(), ZoneOffsetSeconds: offset}, nil
}

// Window is the closed range [now-hours, now].
func Window(now time.Time, hours int) (time.Time, time.Time) {
	return now.Add(-time.Duration(hours) * time.Hour), now
}

func InWindow(s Sample, from, to time.Time) bool {
	return !s.Time.Before(from) && !s.Time.After(to)
}

// SortNewestFirst returns a copy ordered by descending time. Samples sharing
// a timestamp keep their relative order.
func SortNewestFirst(samples []Sample) []Sample {
	out := append([]Sample(nil), samples...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out
}

// State is the session's view state. Records is replaced wholesale, never
// edited in place.
type State struct {
	Records            []Sample
	Error              string
	PermissionsGranted bool
}

func (s State) Clone() State {
	s.Records = append([]Sample(nil), s.Records...)
	return s
}
