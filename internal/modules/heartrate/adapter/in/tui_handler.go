package in

import (
	"context"

	heartratedto "pulse/internal/modules/heartrate/dto"
	heartratein "pulse/internal/modules/heartrate/port/in"
)

// TUIHandler exposes the session controller to the terminal UI, which
// renders whatever snapshot an operation settles on.
type TUIHandler struct {
	usecase heartratein.Usecase
}

func NewTUIHandler(usecase heartratein.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Snapshot() heartratedto.SessionState {
	return h.usecase.Snapshot()
}

func (h TUIHandler) Subscribe() (<-chan heartratedto.SessionState, func()) {
	return h.usecase.Subscribe()
}

func (h TUIHandler) Submit(ctx context.Context, rawBPM, rawAt string) heartratedto.SessionState {
	return h.usecase.Submit(ctx, heartratedto.SubmitInput{BeatsPerMinute: rawBPM, Timestamp: rawAt})
}

func (h TUIHandler) Load(ctx context.Context) heartratedto.SessionState {
	return h.usecase.Load(ctx)
}

func (h TUIHandler) ClearError() heartratedto.SessionState {
	return h.usecase.ClearError()
}

func (h TUIHandler) CheckPermissions(ctx context.Context) heartratedto.SessionState {
	return h.usecase.CheckPermissions(ctx)
}

func (h TUIHandler) RequestPermissions(ctx context.Context) heartratedto.SessionState {
	return h.usecase.RequestPermissions(ctx)
}

func (h TUIHandler) OpenSettings(ctx context.Context) heartratedto.SessionState {
	return h.usecase.OpenSettings(ctx)
}
