package out

import (
	"context"

	"pulse/internal/modules/permission/domain"
)

type CapabilityClient interface {
	Granted(ctx context.Context) ([]domain.Capability, error)
	// Request runs the store's authorization flow and returns the granted
	// snapshot once it completes.
	Request(ctx context.Context, requested []domain.Capability) ([]domain.Capability, error)
}

type SettingsLauncher interface {
	Open(ctx context.Context) error
}
