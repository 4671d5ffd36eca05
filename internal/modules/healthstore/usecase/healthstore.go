package usecase

import (
	"context"
	"fmt"

	"pulse/internal/modules/healthstore/domain"
	"pulse/internal/modules/healthstore/dto"
	healthstorein "pulse/internal/modules/healthstore/port/in"
	"pulse/internal/modules/healthstore/service"
	apperrors "pulse/internal/platform/errors"
)

type Interactor struct {
	svc *service.StoreService
}

func NewInteractor(svc *service.StoreService) healthstorein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) GrantedCapabilities(ctx context.Context) (dto.GrantsOutput, error) {
	granted, err := i.svc.Granted(ctx)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	return toGrantsOutput(granted), nil
}

func (i *Interactor) RequestCapabilities(ctx context.Context, input dto.RequestInput) (dto.GrantsOutput, error) {
	requested, err := parseCapabilities(input.Capabilities)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	granted, err := i.svc.Request(ctx, requested)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	return toGrantsOutput(granted), nil
}

func (i *Interactor) Grant(ctx context.Context, input dto.RequestInput) (dto.GrantsOutput, error) {
	caps, err := parseCapabilities(input.Capabilities)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	granted, err := i.svc.Grant(ctx, caps)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	return toGrantsOutput(granted), nil
}

func (i *Interactor) Revoke(ctx context.Context, input dto.RequestInput) (dto.GrantsOutput, error) {
	caps, err := parseCapabilities(input.Capabilities)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	granted, err := i.svc.Revoke(ctx, caps)
	if err != nil {
		return dto.GrantsOutput{}, err
	}
	return toGrantsOutput(granted), nil
}

func (i *Interactor) Insert(ctx context.Context, input dto.InsertInput) (dto.InsertOutput, error) {
	records := make([]domain.Record, 0, len(input.Records))
	for _, r := range input.Records {
		records = append(records, domain.Record{
			BeatsPerMinute:    r.BeatsPerMinute,
			Start:             r.Start,
			End:               r.End,
			ZoneOffsetSeconds: r.ZoneOffsetSeconds,
		})
	}
	stored, err := i.svc.Insert(ctx, records)
	if err != nil {
		return dto.InsertOutput{}, err
	}
	ids := make([]string, 0, len(stored))
	for _, r := range stored {
		ids = append(ids, r.ID)
	}
	return dto.InsertOutput{IDs: ids}, nil
}

func (i *Interactor) Query(ctx context.Context, input dto.QueryInput) ([]dto.RecordOutput, error) {
	records, err := i.svc.Query(ctx, input.From, input.To)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordOutput, 0, len(records))
	for _, r := range records {
		out = append(out, dto.RecordOutput{
			ID:                r.ID,
			BeatsPerMinute:    r.BeatsPerMinute,
			Start:             r.Start,
			End:               r.End,
			ZoneOffsetSeconds: r.ZoneOffsetSeconds,
		})
	}
	return out, nil
}

func parseCapabilities(raw []string) (domain.CapabilitySet, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one capability is required", apperrors.ErrInvalidInput)
	}
	caps := make([]domain.Capability, 0, len(raw))
	for _, r := range raw {
		c, err := domain.ParseCapability(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		caps = append(caps, c)
	}
	return domain.NewCapabilitySet(caps...), nil
}

func toGrantsOutput(set domain.CapabilitySet) dto.GrantsOutput {
	out := dto.GrantsOutput{Capabilities: make([]string, 0, len(set))}
	for _, c := range set {
		out.Capabilities = append(out.Capabilities, string(c))
	}
	return out
}
