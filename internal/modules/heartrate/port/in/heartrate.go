package in

import (
	"context"

	"pulse/internal/modules/heartrate/dto"
)

// Usecase is the heart-rate session controller. Every operation returns the
// state snapshot observed once the operation has settled; failures land in
// the snapshot's Error slot instead of being returned.
type Usecase interface {
	Snapshot() dto.SessionState
	// Subscribe delivers the latest snapshot after each change. Slow
	// subscribers only ever see the most recent state.
	Subscribe() (<-chan dto.SessionState, func())

	Submit(ctx context.Context, input dto.SubmitInput) dto.SessionState
	Save(ctx context.Context, input dto.SaveInput) dto.SessionState
	Load(ctx context.Context) dto.SessionState
	ClearError() dto.SessionState

	CheckPermissions(ctx context.Context) dto.SessionState
	RequestPermissions(ctx context.Context) dto.SessionState
	OpenSettings(ctx context.Context) dto.SessionState

	Close()
}
