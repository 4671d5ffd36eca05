package in

import (
	"context"

	"pulse/internal/modules/healthstore/dto"
)

type Usecase interface {
	GrantedCapabilities(ctx context.Context) (dto.GrantsOutput, error)
	RequestCapabilities(ctx context.Context, input dto.RequestInput) (dto.GrantsOutput, error)
	Insert(ctx context.Context, input dto.InsertInput) (dto.InsertOutput, error)
	Query(ctx context.Context, input dto.QueryInput) ([]dto.RecordOutput, error)
	Grant(ctx context.Context, input dto.RequestInput) (dto.GrantsOutput, error)
	Revoke(ctx context.Context, input dto.RequestInput) (dto.GrantsOutput, error)
}
