package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pulse/internal/platform/clock"
)

type Capability string

const (
	CapabilityReadHeartRate  Capability = "read-heart-rate"
	CapabilityWriteHeartRate Capability = "write-heart-rate"
)

const (
	MinBeatsPerMinute = 1
	MaxBeatsPerMinute = 300
)

type ConsentPolicy string

const (
	ConsentAllow ConsentPolicy = "allow"
	ConsentDeny  ConsentPolicy = "deny"
)

func ParseCapability(raw string) (Capability, error) {
	c := Capability(strings.TrimSpace(raw))
	switch c {
	case CapabilityReadHeartRate, CapabilityWriteHeartRate:
		return c, nil
	default:
		return "", fmt.Errorf("unknown capability %q", raw)
	}
}

// CapabilitySet is kept sorted and free of duplicates.
type CapabilitySet []Capability

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	seen := map[Capability]struct{}{}
	out := make(CapabilitySet, 0, len(caps))
	for _, c := range caps {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s CapabilitySet) Has(c Capability) bool {
	for _, item := range s {
		if item == c {
			return true
		}
	}
	return false
}

func (s CapabilitySet) Union(other CapabilitySet) CapabilitySet {
	merged := append(append(CapabilitySet{}, s...), other...)
	return NewCapabilitySet(merged...)
}

func (s CapabilitySet) Without(other CapabilitySet) CapabilitySet {
	out := CapabilitySet{}
	for _, c := range s {
		if !other.Has(c) {
			out = append(out, c)
		}
	}
	return NewCapabilitySet(out...)
}

// Record is a single heart-rate record. ID is assigned by the store on insert.
type Record struct {
	ID                string
	BeatsPerMinute    int64
	Start             time.Time
	End               time.Time
	ZoneOffsetSeconds int32
}

func (r Record) Validate() error {
	if r.BeatsPerMinute < MinBeatsPerMinute || r.BeatsPerMinute > MaxBeatsPerMinute {
		return fmt.Errorf("beats per minute %d out of range [%d, %d]", r.BeatsPerMinute, MinBeatsPerMinute, MaxBeatsPerMinute)
	}
	if r.Start.IsZero() {
		return fmt.Errorf("start time is required")
	}
	if !clock.Encodable(r.Start) || !clock.Encodable(r.End) {
		return fmt.Errorf("time outside %s..%s", clock.EarliestEncodable.Format(time.RFC3339), clock.LatestEncodable.Format(time.RFC3339))
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("end time precedes start time")
	}
	return nil
}
