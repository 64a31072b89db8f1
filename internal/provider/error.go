// Package provider holds the error shape shared by every external-service
// client in the pipeline (mail, generation, publishing, token exchange).
package provider

import "fmt"

// Error carries the upstream HTTP status and message of a failed provider
// call. It is surfaced verbatim to the caller and never retried.
type Error struct {
	Provider string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("provider error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

// NewError creates a provider error for the given service.
func NewError(name string, status int, message string) *Error {
	return &Error{Provider: name, Status: status, Message: message}
}
