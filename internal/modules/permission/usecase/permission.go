package usecase

import (
	"context"

	"pulse/internal/modules/permission/domain"
	"pulse/internal/modules/permission/dto"
	permissionin "pulse/internal/modules/permission/port/in"
	"pulse/internal/modules/permission/service"
)

type Interactor struct {
	svc *service.PermissionService
}

func NewInteractor(svc *service.PermissionService) permissionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) CheckGranted(ctx context.Context) (dto.StatusOutput, error) {
	ok, granted, err := i.svc.CheckGranted(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return dto.StatusOutput{Granted: ok, Capabilities: toStrings(granted)}, nil
}

func (i *Interactor) RequestGrant(ctx context.Context) permissionin.PendingGrant {
	return pendingGrant{req: i.svc.RequestGrant(ctx)}
}

func (i *Interactor) OpenSystemSettings(ctx context.Context) error {
	return i.svc.OpenSystemSettings(ctx)
}

type pendingGrant struct {
	req *service.GrantRequest
}

func (p pendingGrant) Await(ctx context.Context) (dto.StatusOutput, error) {
	granted, err := p.req.Await(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return dto.StatusOutput{Granted: domain.Satisfied(granted), Capabilities: toStrings(granted)}, nil
}

func (p pendingGrant) Cancel() {
	p.req.Cancel()
}

func toStrings(caps []domain.Capability) []string {
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, string(c))
	}
	return out
}
