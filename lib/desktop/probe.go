// Copyright 2026 The FocusLog Authors
// SPDX-License-Identifier: Apache-2.0

package desktop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// requiredTools are the command-line tools the probes depend on. Their
// absence is a startup failure, not a runtime degrade: a daemon that
// can never read a window title or idle time records nothing useful.
var requiredTools = []string{"xdotool", "xprintidle"}

// screenSaverServices are the session-bus screensaver providers probed
// for lock state, in priority order. The first one that answers wins.
var screenSaverServices = []string{
	"org.freedesktop.ScreenSaver",
	"org.gnome.ScreenSaver",
	"org.cinnamon.ScreenSaver",
	"org.mate.ScreenSaver",
}

// Probe reads desktop session state through external tools. Every read
// is best-effort with a bounded timeout: a slow or failing tool
// degrades to a "no value" result rather than blocking the caller.
type Probe struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewProbe returns a Probe whose external calls are bounded by
// timeout. If timeout is zero or negative, a 5 second default applies.
func NewProbe(timeout time.Duration, logger *slog.Logger) *Probe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Probe{timeout: timeout, logger: logger}
}

// CheckTools verifies that the required command-line tools are
// installed. Returns an error naming the first missing tool.
func CheckTools() error {
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("desktop: required tool %q not found in PATH", tool)
		}
	}
	return nil
}

// ActiveWindowTitle returns the title of the currently focused window.
// The second return value is false on any failure.
func (p *Probe) ActiveWindowTitle(ctx context.Context) (string, bool) {
	output, err := p.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		p.logger.Debug("active window title read failed", "error", err)
		return "", false
	}
	return output, true
}

// IdleMillis returns the user's input idle time in milliseconds. The
// second return value is false on any failure, including non-numeric
// tool output.
func (p *Probe) IdleMillis(ctx context.Context) (int64, bool) {
	output, err := p.run(ctx, "xprintidle")
	if err != nil {
		p.logger.Debug("idle time read failed", "error", err)
		return 0, false
	}
	millis, err := strconv.ParseInt(output, 10, 64)
	if err != nil {
		p.logger.Debug("idle time output not numeric", "output", output)
		return 0, false
	}
	return millis, true
}

// ScreenLocked reports whether the screen is locked. It asks each
// known session-bus screensaver in priority order and returns the
// first definite answer. When every provider fails, the screen is
// assumed unlocked — a wrong "unlocked" only records one extra
// snapshot row, while a wrong "locked" would silently drop activity.
func (p *Probe) ScreenLocked(ctx context.Context) bool {
	for _, service := range screenSaverServices {
		locked, ok := p.queryScreenSaver(ctx, service)
		if ok {
			return locked
		}
	}
	return false
}

// queryScreenSaver calls GetActive on one screensaver service. The
// D-Bus object path mirrors the service name with slashes.
func (p *Probe) queryScreenSaver(ctx context.Context, service string) (locked, ok bool) {
	objectPath := "/" + strings.ReplaceAll(service, ".", "/")
	output, err := p.run(ctx, "gdbus", "call", "--session",
		"--dest", service,
		"--object-path", objectPath,
		"--method", service+".GetActive")
	if err != nil {
		return false, false
	}
	// gdbus renders the reply tuple as "(true,)" or "(false,)".
	switch {
	case strings.Contains(output, "true"):
		return true, true
	case strings.Contains(output, "false"):
		return false, true
	default:
		p.logger.Debug("unexpected screensaver reply",
			"service", service,
			"output", output,
		)
		return false, false
	}
}

// run executes a tool with the probe's timeout and returns its trimmed
// stdout. Stderr is folded into the error message on failure.
func (p *Probe) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, isExit := err.(*exec.ExitError); isExit {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		if stderr != "" {
			return "", fmt.Errorf("desktop: %s: %w (%s)", name, err, stderr)
		}
		return "", fmt.Errorf("desktop: %s: %w", name, err)
	}
	return strings.TrimSpace(string(output)), nil
}
