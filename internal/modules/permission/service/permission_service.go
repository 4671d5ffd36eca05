package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"pulse/internal/modules/permission/domain"
	permissionout "pulse/internal/modules/permission/port/out"
	apperrors "pulse/internal/platform/errors"
)

type PermissionService struct {
	client   permissionout.CapabilityClient
	settings permissionout.SettingsLauncher
	log      zerolog.Logger
}

func NewPermissionService(client permissionout.CapabilityClient, settings permissionout.SettingsLauncher, log zerolog.Logger) *PermissionService {
	return &PermissionService{
		client:   client,
		settings: settings,
		log:      log.With().Str("component", "permission").Logger(),
	}
}

// CheckGranted fails closed: a failed query reports false alongside the error.
func (s *PermissionService) CheckGranted(ctx context.Context) (bool, []domain.Capability, error) {
	granted, err := s.client.Granted(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("query granted capabilities")
		return false, nil, err
	}
	return domain.Satisfied(granted), granted, nil
}

// RequestGrant starts the authorization flow for the required capabilities.
// The flow runs until it completes or the returned request is cancelled.
func (s *PermissionService) RequestGrant(ctx context.Context) *GrantRequest {
	flowCtx, cancel := context.WithCancel(ctx)
	req := &GrantRequest{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(req.done)
		granted, err := s.client.Request(flowCtx, domain.Required())
		if err != nil {
			s.log.Error().Err(err).Msg("request capabilities")
		}
		req.granted, req.err = granted, err
	}()
	return req
}

func (s *PermissionService) OpenSystemSettings(ctx context.Context) error {
	if s.settings == nil {
		return apperrors.ErrSettingsUnavailable
	}
	if err := s.settings.Open(ctx); err != nil {
		s.log.Warn().Err(err).Msg("open system settings")
		return err
	}
	return nil
}

type GrantRequest struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool

	granted []domain.Capability
	err     error
}

// Await blocks until the flow finishes. A cancelled request never yields
// its result.
func (r *GrantRequest) Await(ctx context.Context) ([]domain.Capability, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRequestCancelled, ctx.Err())
	}
	if r.isCancelled() {
		return nil, apperrors.ErrRequestCancelled
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.granted, nil
}

func (r *GrantRequest) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
	r.cancel()
}

func (r *GrantRequest) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}
