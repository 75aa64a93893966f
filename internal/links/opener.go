package links

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// ErrNoOpener is returned when no URL launcher exists on this system
var ErrNoOpener = errors.New("no URL opener available")

// Opener launches URLs with the desktop's default handler
type Opener struct {
	command  []string
	logger   *zap.Logger
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewOpener picks the launcher for the running OS; logger may be nil
func NewOpener(logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{
		command:  launcher(runtime.GOOS),
		logger:   logger.Named("opener"),
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func launcher(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// CanOpen reports whether the URL scheme can be handed to the launcher.
// Store schemes (itms-apps, market) only resolve on a phone.
func (o *Opener) CanOpen(url string) (bool, error) {
	if len(o.command) == 0 {
		return false, ErrNoOpener
	}
	if _, err := o.lookPath(o.command[0]); err != nil {
		return false, fmt.Errorf("%w: %v", ErrNoOpener, err)
	}
	scheme, _, ok := strings.Cut(url, "://")
	if !ok {
		return false, nil
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return true, nil
	}
	return false, nil
}

// Open launches url
func (o *Opener) Open(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("empty URL")
	}
	if len(o.command) == 0 {
		return ErrNoOpener
	}
	args := append(append([]string{}, o.command[1:]...), url)
	o.logger.Info("opening url", zap.String("url", url), zap.String("launcher", o.command[0]))
	if err := o.run(ctx, o.command[0], args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
