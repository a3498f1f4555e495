package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Kind identifies the permission being asked for.
type Kind string

// KindLocationWhenInUse is access to the location while the application is in use.
const KindLocationWhenInUse Kind = "location_when_in_use"

// Status is the outcome of a permission check or request.
type Status string

const (
	StatusGranted Status = "granted"
	StatusDenied  Status = "denied"
)

// PermissionChecker is the platform permission API.
type PermissionChecker interface {
	Check(ctx context.Context, kind Kind) (Status, error)
	Request(ctx context.Context, kind Kind) (Status, error)
}

// PermissionPrompt is the text shown when the user is asked for location access.
const PermissionPrompt = "We need access to your location to show nearby restaurants."

// ConsentPermission grants location access either from consent given up front in
// configuration or by asking the user on an interactive terminal.
type ConsentPermission struct {
	preGranted  bool
	interactive bool
	in          io.Reader
	out         io.Writer
	log         *slog.Logger
}

// NewConsentPermission creates a ConsentPermission. When interactive is false,
// Request never prompts and always denies.
func NewConsentPermission(
	preGranted, interactive bool,
	in io.Reader,
	out io.Writer,
	log *slog.Logger,
) *ConsentPermission {
	return &ConsentPermission{
		preGranted:  preGranted,
		interactive: interactive,
		in:          in,
		out:         out,
		log:         log,
	}
}

// Check reports whether consent was given up front.
func (cp *ConsentPermission) Check(ctx context.Context, kind Kind) (Status, error) {
	if cp.preGranted {
		cp.log.DebugContext(ctx, "Permission granted by configuration", "kind", kind)
		return StatusGranted, nil
	}

	return StatusDenied, nil
}

// Request asks the user for consent and accepts "y" or "yes" in any case.
func (cp *ConsentPermission) Request(ctx context.Context, kind Kind) (Status, error) {
	if cp.preGranted {
		return StatusGranted, nil
	}
	if !cp.interactive {
		cp.log.DebugContext(ctx, "Non-interactive session, permission cannot be requested", "kind", kind)
		return StatusDenied, nil
	}

	if _, err := fmt.Fprintf(cp.out, "Location Permission\n%s\nAllow? [y/N]: ", PermissionPrompt); err != nil {
		return StatusDenied, fmt.Errorf("failed to write permission prompt: %w", err)
	}

	type reply struct {
		answer string
		err    error
	}
	// The reader cannot be interrupted, so an unanswered read is abandoned on cancellation.
	replies := make(chan reply, 1)
	go func() {
		answer, err := bufio.NewReader(cp.in).ReadString('\n')
		replies <- reply{answer: answer, err: err}
	}()

	var got reply
	select {
	case <-ctx.Done():
		cp.log.DebugContext(ctx, "Permission request cancelled", "kind", kind)
		return StatusDenied, nil
	case got = <-replies:
	}

	if got.err != nil && got.answer == "" {
		if errors.Is(got.err, io.EOF) {
			return StatusDenied, nil
		}
		return StatusDenied, fmt.Errorf("failed to read permission answer: %w", got.err)
	}

	switch strings.ToLower(strings.TrimSpace(got.answer)) {
	case "y", "yes":
		return StatusGranted, nil
	default:
		return StatusDenied, nil
	}
}
