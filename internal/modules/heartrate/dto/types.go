package dto

import "time"

type SubmitInput struct {
	BeatsPerMinute string
	Timestamp      string
}

type SaveInput struct {
	BeatsPerMinute int
	At             time.Time
}

type SampleOutput struct {
	ID                string
	BeatsPerMinute    int
	Time              time.Time
	ZoneOffsetSeconds int
	// LocalTime is Time rendered as yyyy-MM-dd HH:mm in the configured zone.
	LocalTime string
}

// SessionState is an immutable snapshot of the controller's view state.
type SessionState struct {
	Records            []SampleOutput
	Error              string
	PermissionsGranted bool
}

func (s SessionState) HasError() bool {
	return s.Error != ""
}
