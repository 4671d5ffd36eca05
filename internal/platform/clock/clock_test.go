package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pulse/internal/platform/clock"
)

func TestEncodableMatchesUnixNanoRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "present", at: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), want: true},
		{name: "latest", at: clock.LatestEncodable, want: true},
		{name: "earliest", at: clock.EarliestEncodable, want: true},
		{name: "past latest", at: clock.LatestEncodable.Add(time.Nanosecond), want: false},
		{name: "before earliest", at: clock.EarliestEncodable.Add(-time.Nanosecond), want: false},
		{name: "far future", at: time.Date(2300, 1, 1, 10, 0, 0, 0, time.UTC), want: false},
		{name: "far past", at: time.Date(1600, 1, 1, 10, 0, 0, 0, time.UTC), want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, clock.Encodable(tc.at))
			if tc.want {
				require.True(t, time.Unix(0, tc.at.UnixNano()).Equal(tc.at))
			}
		})
	}
}
