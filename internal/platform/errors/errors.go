package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidRate         = errors.New("invalid heart rate")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrStoreUnavailable    = errors.New("health store unavailable")
	ErrSettingsUnavailable = errors.New("settings surface unavailable")
	ErrRequestCancelled    = errors.New("permission request cancelled")
	ErrOperationCancelled  = errors.New("operation cancelled")
	ErrSessionClosed       = errors.New("session closed")
)
