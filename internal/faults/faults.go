// Package faults defines the sentinel errors shared by the daemon, IPC, and
// audio layers, and maps them to the numeric codes carried in IPC error
// responses so callers can branch without string-matching.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition marks a lifecycle operation attempted from the
	// wrong state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSingleInstance marks a start attempt while another daemon holds the
	// PID file.
	ErrSingleInstance = errors.New("daemon already running")
	// ErrConflict marks an operation that clashes with an in-flight one,
	// such as starting a second recording.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks a missing device or absent recording.
	ErrNotFound = errors.New("not found")
	// ErrNotImplemented marks a request type without a registered handler.
	ErrNotImplemented = errors.New("not implemented")
	// ErrUnavailable marks an audio backend whose external command is
	// missing or unusable.
	ErrUnavailable = errors.New("backend unavailable")
)

// IPC error codes carried in the "code" field of error payloads.
const (
	CodeGeneric        = 1
	CodeConflict       = 409
	CodeNotFound       = 404
	CodeNotImplemented = 501
)

// Wrap tags an error with a sentinel marker and component/operation context.
// The marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Code maps an error to the IPC code communicated to clients.
func Code(err error) int {
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrSingleInstance):
		return CodeConflict
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNotImplemented):
		return CodeNotImplemented
	default:
		return CodeGeneric
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
