package in

import (
	"context"

	"pulse/internal/modules/healthstore/dto"
	healthstorein "pulse/internal/modules/healthstore/port/in"
)

// CLIHandler backs the `pulse settings` commands.
type CLIHandler struct {
	usecase healthstorein.Usecase
}

func NewCLIHandler(usecase healthstorein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context) (dto.GrantsOutput, error) {
	return h.usecase.GrantedCapabilities(ctx)
}

func (h CLIHandler) Grant(ctx context.Context, capabilities []string) (dto.GrantsOutput, error) {
	return h.usecase.Grant(ctx, dto.RequestInput{Capabilities: capabilities})
}

func (h CLIHandler) Revoke(ctx context.Context, capabilities []string) (dto.GrantsOutput, error) {
	return h.usecase.Revoke(ctx, dto.RequestInput{Capabilities: capabilities})
}
