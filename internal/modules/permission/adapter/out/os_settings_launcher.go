package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	permissionout "pulse/internal/modules/permission/port/out"
	apperrors "pulse/internal/platform/errors"
)

// OSSettingsLauncher opens the grants file, which is the settings surface
// of the local health store. A configured command replaces the OS opener
// and receives the target as its last argument.
type OSSettingsLauncher struct {
	command []string
	target  string
	goos    string
}

func NewOSSettingsLauncher(command []string, target string) permissionout.SettingsLauncher {
	return &OSSettingsLauncher{
		command: command,
		target:  target,
		goos:    runtime.GOOS,
	}
}

func (l *OSSettingsLauncher) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	argv, err := l.argv()
	if err != nil {
		return err
	}
	// the opener outlives the call, so it is not bound to ctx
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSettingsUnavailable, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (l *OSSettingsLauncher) argv() ([]string, error) {
	if len(l.command) > 0 {
		return append(append([]string{}, l.command...), l.target), nil
	}
	switch l.goos {
	case "darwin":
		return []string{"open", l.target}, nil
	case "linux":
		return []string{"xdg-open", l.target}, nil
	default:
		return nil, fmt.Errorf("%w: no opener on %s", apperrors.ErrSettingsUnavailable, l.goos)
	}
}
