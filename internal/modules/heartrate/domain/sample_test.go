package domain_test

import (
	"errors"
	"testing"
	"time"

	"pulse/internal/modules/heartrate/domain"
	apperrors "pulse/internal/platform/errors"
)

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	t.Parallel()
	bpm, at, err := domain.Validate("250", "2024-01-01 10:00", time.UTC)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if bpm != 250 || !at.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parse result %d %s", bpm, at)
	}
}

func TestValidateInterpretsTimestampInLocalZone(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*60*60)
	_, at, err := domain.Validate("72", "2024-06-01 08:30", loc)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if want := time.Date(2024, 6, 1, 6, 30, 0, 0, time.UTC); !at.Equal(want) {
		t.Fatalf("expected %s, got %s", want, at)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		rate string
		ts   string
		want error
	}{
		{name: "above range", rate: "301", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "zero", rate: "0", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "negative", rate: "-5", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "not a number", rate: "fast", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "fractional", rate: "72.5", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "empty rate", rate: "", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "bad timestamp", rate: "60", ts: "not-a-date", want: apperrors.ErrInvalidTimestamp},
		{name: "missing time", rate: "60", ts: "2024-01-01", want: apperrors.ErrInvalidTimestamp},
		{name: "impossible day", rate: "60", ts: "2024-02-30 10:00", want: apperrors.ErrInvalidTimestamp},
		{name: "seconds given", rate: "60", ts: "2024-01-01 10:00:05", want: apperrors.ErrInvalidTimestamp},
		{name: "both invalid reports rate", rate: "999", ts: "garbage", want: apperrors.ErrInvalidRate},
		{name: "padded rate", rate: " 72", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "rate with newline", rate: "72\n", ts: "2024-01-01 10:00", want: apperrors.ErrInvalidRate},
		{name: "padded timestamp", rate: "72", ts: " 2024-01-01 10:00 ", want: apperrors.ErrInvalidTimestamp},
		{name: "trailing newline", rate: "72", ts: "2024-01-01 10:00\n", want: apperrors.ErrInvalidTimestamp},
		{name: "single digit hour", rate: "72", ts: "2024-01-01 9:30", want: apperrors.ErrInvalidTimestamp},
		{name: "single digit minute", rate: "72", ts: "2024-01-01 10:5", want: apperrors.ErrInvalidTimestamp},
		{name: "single digit month", rate: "72", ts: "2024-1-01 10:00", want: apperrors.ErrInvalidTimestamp},
		{name: "T separator", rate: "72", ts: "2024-01-01T10:00", want: apperrors.ErrInvalidTimestamp},
		{name: "hour out of range", rate: "72", ts: "2024-01-01 24:00", want: apperrors.ErrInvalidTimestamp},
		{name: "past encodable range", rate: "72", ts: "2300-01-01 10:00", want: apperrors.ErrInvalidTimestamp},
		{name: "just past latest instant", rate: "72", ts: "2262-04-11 23:48", want: apperrors.ErrInvalidTimestamp},
		{name: "before earliest instant", rate: "72", ts: "1677-09-21 00:12", want: apperrors.ErrInvalidTimestamp},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := domain.Validate(tc.rate, tc.ts, time.UTC)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateAcceptsEncodableBoundaries(t *testing.T) {
	t.Parallel()
	for _, ts := range []string{"2262-04-11 23:47", "1677-09-21 00:13"} {
		if _, at, err := domain.Validate("72", ts, time.UTC); err != nil {
			t.Fatalf("%s: expected valid, got %v", ts, err)
		} else if got := at.Format(domain.TimestampLayout); got != ts {
			t.Fatalf("%s: parsed back as %s", ts, got)
		}
	}
}

func TestNewSampleRejectsUnencodableInstant(t *testing.T) {
	t.Parallel()
	far := time.Date(2300, 1, 1, 10, 0, 0, 0, time.UTC)
	if _, err := domain.NewSample(72, far, time.UTC); !errors.Is(err, apperrors.ErrInvalidTimestamp) {
		t.Fatalf("expected invalid timestamp, got %v", err)
	}
}

func TestValidationMessages(t *testing.T) {
	t.Parallel()
	_, _, err := domain.Validate("301", "2024-01-01 10:00", time.UTC)
	if err == nil || err.Error() != "Please enter a valid heart rate (1-300 bpm)" {
		t.Fatalf("unexpected rate message: %v", err)
	}
	_, _, err = domain.Validate("60", "not-a-date", time.UTC)
	if err == nil || err.Error() != "Invalid date/time format. Use yyyy-MM-dd HH:mm" {
		t.Fatalf("unexpected timestamp message: %v", err)
	}
}

func TestNewSampleRecordsZoneOffsetAtInstant(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	winter, err := domain.NewSample(60, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), loc)
	if err != nil {
		t.Fatalf("new sample: %v", err)
	}
	summer, err := domain.NewSample(60, time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC), loc)
	if err != nil {
		t.Fatalf("new sample: %v", err)
	}
	if winter.ZoneOffsetSeconds != 3600 || summer.ZoneOffsetSeconds != 7200 {
		t.Fatalf("expected offsets 3600/7200, got %d/%d", winter.ZoneOffsetSeconds, summer.ZoneOffsetSeconds)
	}
	if _, err := domain.NewSample(0, time.Now(), loc); !errors.Is(err, apperrors.ErrInvalidRate) {
		t.Fatalf("expected invalid rate, got %v", err)
	}
	if _, err := domain.NewSample(60, time.Time{}, loc); !errors.Is(err, apperrors.ErrInvalidTimestamp) {
		t.Fatalf("expected invalid timestamp, got %v", err)
	}
}

func TestWindowBoundsAreInclusive(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	from, to := domain.Window(now, 24)
	if !from.Equal(now.Add(-24*time.Hour)) || !to.Equal(now) {
		t.Fatalf("unexpected window %s..%s", from, to)
	}
	for _, at := range []time.Time{from, to, now.Add(-time.Hour)} {
		if !domain.InWindow(domain.Sample{Time: at}, from, to) {
			t.Fatalf("%s should be inside the window", at)
		}
	}
	for _, at := range []time.Time{from.Add(-time.Nanosecond), to.Add(time.Nanosecond)} {
		if domain.InWindow(domain.Sample{Time: at}, from, to) {
			t.Fatalf("%s should be outside the window", at)
		}
	}
}

func TestSortNewestFirstIsStable(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	in := []domain.Sample{
		{ID: "old", Time: base},
		{ID: "tie-a", Time: base.Add(time.Hour)},
		{ID: "new", Time: base.Add(2 * time.Hour)},
		{ID: "tie-b", Time: base.Add(time.Hour)},
	}
	out := domain.SortNewestFirst(in)
	got := []string{out[0].ID, out[1].ID, out[2].ID, out[3].ID}
	want := []string{"new", "tie-a", "tie-b", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if in[0].ID != "old" {
		t.Fatalf("input slice must not be reordered")
	}
}
