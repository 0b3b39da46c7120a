// Package fault defines the error taxonomy shared across the VoxAura
// pipeline. Callers classify failures with [errors.Is] against the
// package sentinels rather than inspecting error strings.
//
// The taxonomy splits into two propagation classes: input errors
// ([ErrInvalidInput], [ErrNotFound]) are reported to the caller directly,
// while upstream errors ([ErrUpstreamUnavailable], [ErrUpstreamTimeout],
// [ErrUpstreamEmpty]) are absorbed by the orchestrator and converted into
// best-effort fallback output so a turn always produces a reply.
package fault

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable indicates a collaborator is unreachable or
	// misconfigured (missing credential, connection refused).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamTimeout indicates a collaborator call exceeded its
	// bounded deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamEmpty indicates a collaborator returned successfully but
	// produced no usable content (e.g. an empty generation).
	ErrUpstreamEmpty = errors.New("upstream returned empty result")

	// ErrInvalidInput indicates the caller's input cannot be processed:
	// empty audio and text, an unsupported file type, or an oversized file.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a lookup for an unknown key, such as a history
	// request for a session that does not exist.
	ErrNotFound = errors.New("not found")
)

// Upstream wraps err with the appropriate upstream sentinel. Timeouts and
// context deadline errors map to [ErrUpstreamTimeout]; everything else maps
// to [ErrUpstreamUnavailable]. A nil err returns nil.
func Upstream(collaborator string, err error) error {
	if err == nil {
		return nil
	}
	sentinel := ErrUpstreamUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		sentinel = ErrUpstreamTimeout
	}
	return fmt.Errorf("%s: %w: %w", collaborator, sentinel, err)
}

// IsUpstream reports whether err belongs to the absorbed upstream class.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamEmpty)
}
