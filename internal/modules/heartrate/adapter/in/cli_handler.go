package in

import (
	"context"
	"errors"

	heartratedto "pulse/internal/modules/heartrate/dto"
	heartratein "pulse/internal/modules/heartrate/port/in"
)

// ErrPermissionsMissing is returned when the CLI is asked to touch heart-rate
// data before read and write access have been granted.
var ErrPermissionsMissing = errors.New("heart rate permissions not granted; run `pulse permission request`")

type CLIHandler struct {
	usecase heartratein.Usecase
}

func NewCLIHandler(usecase heartratein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, rawBPM, rawAt string) (heartratedto.SessionState, error) {
	if err := h.ensureGranted(ctx); err != nil {
		return heartratedto.SessionState{}, err
	}
	return settle(h.usecase.Submit(ctx, heartratedto.SubmitInput{BeatsPerMinute: rawBPM, Timestamp: rawAt}))
}

func (h CLIHandler) List(ctx context.Context) (heartratedto.SessionState, error) {
	if err := h.ensureGranted(ctx); err != nil {
		return heartratedto.SessionState{}, err
	}
	return settle(h.usecase.Load(ctx))
}

func (h CLIHandler) ensureGranted(ctx context.Context) error {
	state, err := settle(h.usecase.CheckPermissions(ctx))
	if err != nil {
		return err
	}
	if !state.PermissionsGranted {
		return ErrPermissionsMissing
	}
	return nil
}

// settle turns a populated error slot into a Go error for the command layer.
func settle(state heartratedto.SessionState) (heartratedto.SessionState, error) {
	if state.HasError() {
		return state, errors.New(state.Error)
	}
	return state, nil
}
