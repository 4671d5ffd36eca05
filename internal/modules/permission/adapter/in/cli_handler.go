package in

import (
	"context"

	"pulse/internal/modules/permission/dto"
	permissionin "pulse/internal/modules/permission/port/in"
)

type CLIHandler struct {
	usecase permissionin.Usecase
}

func NewCLIHandler(usecase permissionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.CheckGranted(ctx)
}

func (h CLIHandler) Request(ctx context.Context) (dto.StatusOutput, error) {
	pending := h.usecase.RequestGrant(ctx)
	out, err := pending.Await(ctx)
	if err != nil {
		pending.Cancel()
		return dto.StatusOutput{}, err
	}
	return out, nil
}

func (h CLIHandler) OpenSettings(ctx context.Context) error {
	return h.usecase.OpenSystemSettings(ctx)
}
