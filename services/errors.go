package services

import "errors"

var (
	// ErrSessionNotActive is returned when a chat message targets a
	// missing or ended session.
	ErrSessionNotActive = errors.New("chat session not found or not active")

	// ErrBridgeUnavailable is returned when the AI provider cannot be
	// reached or is not configured.
	ErrBridgeUnavailable = errors.New("ai bridge unavailable")
)
