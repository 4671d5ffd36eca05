package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pulse/internal/modules/heartrate/domain"
	"pulse/internal/modules/heartrate/dto"
	heartratein "pulse/internal/modules/heartrate/port/in"
	"pulse/internal/modules/heartrate/service"
	permissionin "pulse/internal/modules/permission/port/in"
	apperrors "pulse/internal/platform/errors"
	"pulse/internal/platform/metrics"
)

const (
	OpSubmit             = "submit"
	OpSave               = "save"
	OpLoad               = "load"
	OpClearError         = "clear_error"
	OpCheckPermissions   = "check_permissions"
	OpRequestPermissions = "request_permissions"
	OpOpenSettings       = "open_settings"
)

const (
	saveFailedPrefix       = "Failed to save heart rate: "
	loadFailedPrefix       = "Failed to load heart rates: "
	permissionCheckPrefix  = "Error checking permissions: "
	settingsFailedPrefix   = "Error opening health settings: "
	unknownFailureFallback = "unknown error"
)

// Interactor is the heart-rate session controller and the only writer of
// session state. Operations run one at a time through a single-slot gate.
type Interactor struct {
	svc        *service.HeartRateService
	permission permissionin.Usecase
	metrics    *metrics.Metrics
	log        zerolog.Logger

	gate   chan struct{}
	state  *stateStore
	ctx    context.Context
	cancel context.CancelFunc
}

func NewInteractor(svc *service.HeartRateService, permission permissionin.Usecase, m *metrics.Metrics, log zerolog.Logger) heartratein.Usecase {
	return newInteractor(svc, permission, m, log)
}

func newInteractor(svc *service.HeartRateService, permission permissionin.Usecase, m *metrics.Metrics, log zerolog.Logger) *Interactor {
	ctx, cancel := context.WithCancel(context.Background())
	i := &Interactor{
		svc:        svc,
		permission: permission,
		metrics:    m,
		log:        log.With().Str("component", "heartrate_session").Logger(),
		gate:       make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
	}
	i.state = newStateStore(i.render)
	return i
}

func (i *Interactor) Snapshot() dto.SessionState {
	return i.state.snapshot()
}

func (i *Interactor) Subscribe() (<-chan dto.SessionState, func()) {
	return i.state.subscribe()
}

func (i *Interactor) Submit(ctx context.Context, input dto.SubmitInput) dto.SessionState {
	return i.run(ctx, OpSubmit, func(ctx context.Context) error {
		bpm, at, err := i.svc.Parse(input.BeatsPerMinute, input.Timestamp)
		if err != nil {
			i.setError(err.Error())
			return err
		}
		return i.saveAndReload(ctx, bpm, at)
	})
}

func (i *Interactor) Save(ctx context.Context, input dto.SaveInput) dto.SessionState {
	return i.run(ctx, OpSave, func(ctx context.Context) error {
		return i.saveAndReload(ctx, input.BeatsPerMinute, input.At)
	})
}

func (i *Interactor) Load(ctx context.Context) dto.SessionState {
	return i.run(ctx, OpLoad, i.reload)
}

// ClearError does not wait for the gate; it touches nothing an in-flight
// operation reads.
func (i *Interactor) ClearError() dto.SessionState {
	i.state.update(func(s *domain.State) { s.Error = "" })
	i.metrics.ObserveOperation(OpClearError, nil)
	return i.Snapshot()
}

func (i *Interactor) CheckPermissions(ctx context.Context) dto.SessionState {
	return i.run(ctx, OpCheckPermissions, i.refreshPermissions)
}

// RequestPermissions runs the authorization flow and then re-reads the
// granted set. Closing the session mid-flow discards the outcome.
func (i *Interactor) RequestPermissions(ctx context.Context) dto.SessionState {
	return i.run(ctx, OpRequestPermissions, func(ctx context.Context) error {
		pending := i.permission.RequestGrant(ctx)
		if _, err := pending.Await(ctx); err != nil {
			pending.Cancel()
			if cancelled(ctx, err) {
				i.log.Info().Err(err).Msg("permission request abandoned")
				return err
			}
			i.setPermissionError(err)
			return err
		}
		return i.refreshPermissions(ctx)
	})
}

func (i *Interactor) OpenSettings(ctx context.Context) dto.SessionState {
	return i.run(ctx, OpOpenSettings, func(ctx context.Context) error {
		if err := i.permission.OpenSystemSettings(ctx); err != nil {
			if !cancelled(ctx, err) {
				i.setError(settingsFailedPrefix + reason(err))
			}
			return err
		}
		return nil
	})
}

// Close tears the session down. In-flight operations are cancelled and
// their results dropped; subscribers see their channels closed.
func (i *Interactor) Close() {
	i.cancel()
	i.state.close()
}

// ─── operation plumbing ───

func (i *Interactor) run(ctx context.Context, op string, fn func(context.Context) error) dto.SessionState {
	ctx, stop := i.bind(ctx)
	defer stop()

	if err := i.acquire(ctx); err != nil {
		i.log.Debug().Err(err).Str("op", op).Msg("operation not started")
		i.metrics.ObserveOperation(op, err)
		return i.Snapshot()
	}
	defer i.release()

	err := fn(ctx)
	i.metrics.ObserveOperation(op, err)
	var verr *domain.ValidationError
	switch {
	case err == nil:
	case cancelled(ctx, err):
		i.log.Debug().Err(err).Str("op", op).Msg("operation cancelled")
	case errors.As(err, &verr):
		i.log.Info().Err(err).Str("op", op).Msg("input rejected")
	default:
		i.log.Error().Err(err).Str("op", op).Msg("operation failed")
	}
	return i.Snapshot()
}

// bind derives a context that also ends when the session closes.
func (i *Interactor) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(i.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (i *Interactor) acquire(ctx context.Context) error {
	if err := i.closedErr(ctx); err != nil {
		return err
	}
	select {
	case i.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return i.closedErr(ctx)
	}
}

func (i *Interactor) release() {
	<-i.gate
}

func (i *Interactor) closedErr(ctx context.Context) error {
	if i.ctx.Err() != nil {
		return apperrors.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrOperationCancelled, err)
	}
	return nil
}

func (i *Interactor) saveAndReload(ctx context.Context, bpm int, at time.Time) error {
	if _, err := i.svc.Save(ctx, bpm, at); err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			i.setError(verr.Error())
		case !cancelled(ctx, err):
			i.setError(saveFailedPrefix + reason(err))
		}
		return err
	}
	i.state.update(func(s *domain.State) { s.Error = "" })
	return i.reload(ctx)
}

func (i *Interactor) reload(ctx context.Context) error {
	samples, err := i.svc.Recent(ctx)
	if err != nil {
		if !cancelled(ctx, err) {
			i.setError(loadFailedPrefix + reason(err))
		}
		return err
	}
	i.state.update(func(s *domain.State) {
		s.Records = samples
		s.Error = ""
	})
	return nil
}

func (i *Interactor) refreshPermissions(ctx context.Context) error {
	status, err := i.permission.CheckGranted(ctx)
	if err != nil {
		if cancelled(ctx, err) {
			return err
		}
		i.setPermissionError(err)
		return err
	}
	i.state.update(func(s *domain.State) { s.PermissionsGranted = status.Granted })
	return nil
}

func (i *Interactor) setPermissionError(err error) {
	i.state.update(func(s *domain.State) {
		s.PermissionsGranted = false
		s.Error = permissionCheckPrefix + reason(err)
	})
}

func (i *Interactor) setError(msg string) {
	i.state.update(func(s *domain.State) { s.Error = msg })
}

func (i *Interactor) render(s domain.State) dto.SessionState {
	loc := i.svc.Location()
	records := make([]dto.SampleOutput, 0, len(s.Records))
	for _, sample := range s.Records {
		records = append(records, dto.SampleOutput{
			ID:                sample.ID,
			BeatsPerMinute:    sample.BeatsPerMinute,
			Time:              sample.Time,
			ZoneOffsetSeconds: sample.ZoneOffsetSeconds,
			LocalTime:         sample.Time.In(loc).Format(domain.TimestampLayout),
		})
	}
	return dto.SessionState{Records: records, Error: s.Error, PermissionsGranted: s.PermissionsGranted}
}

// cancelled reports whether the caller or the session went away. The error
// alone does not decide it: a store may report a cancellation of its own
// while the caller is still waiting, and that is a failure to surface.
func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, apperrors.ErrSessionClosed)
}

func reason(err error) string {
	if err == nil || err.Error() == "" {
		return unknownFailureFallback
	}
	return err.Error()
}
