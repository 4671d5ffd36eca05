package clock

import (
	"math"
	"time"
)

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

// Instants are persisted and sent over the wire as int64 nanoseconds since
// the Unix epoch, which bounds them to roughly 1677-09-21..2262-04-11 UTC.
var (
	EarliestEncodable = time.Unix(0, math.MinInt64).UTC()
	LatestEncodable   = time.Unix(0, math.MaxInt64).UTC()
)

// Encodable reports whether t survives a UnixNano round trip.
func Encodable(t time.Time) bool {
	return !t.Before(EarliestEncodable) && !t.After(LatestEncodable)
}
