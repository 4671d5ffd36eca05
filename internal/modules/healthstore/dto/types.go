package dto

import "time"

type GrantsOutput struct {
	Capabilities []string
}

type RequestInput struct {
	Capabilities []string
}

type RecordInput struct {
	BeatsPerMinute    int64
	Start             time.Time
	End               time.Time
	ZoneOffsetSeconds int32
}

type InsertInput struct {
	Records []RecordInput
}

type InsertOutput struct {
	IDs []string
}

type QueryInput struct {
	From time.Time
	To   time.Time
}

type RecordOutput struct {
	ID                string
	BeatsPerMinute    int64
	Start             time.Time
	End               time.Time
	ZoneOffsetSeconds int32
}
