package in

import (
	"context"

	"pulse/internal/modules/permission/dto"
)

// PendingGrant is an in-flight authorization flow.
type PendingGrant interface {
	Await(ctx context.Context) (dto.StatusOutput, error)
	Cancel()
}

type Usecase interface {
	CheckGranted(ctx context.Context) (dto.StatusOutput, error)
	RequestGrant(ctx context.Context) PendingGrant
	OpenSystemSettings(ctx context.Context) error
}
