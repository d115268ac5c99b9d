package faults

import (
	"errors"
	"testing"
)

func TestWrapPreservesMarker(t *testing.T) {
	base := errors.New("socket gone")
	err := Wrap(ErrConflict, "daemon", "start-recording", "recording already in progress", base)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Wrap(ErrConflict, "daemon", "", "recording in progress", nil), CodeConflict},
		{Wrap(ErrSingleInstance, "daemon", "start", "", nil), CodeConflict},
		{Wrap(ErrNotFound, "audio", "", "no such device", nil), CodeNotFound},
		{Wrap(ErrNotImplemented, "ipc", "", "", nil), CodeNotImplemented},
		{Wrap(ErrInvalidTransition, "daemon", "pause", "", nil), CodeGeneric},
		{errors.New("anything else"), CodeGeneric},
	}
	for _, tc := range cases {
		if got := Code(tc.err); got != tc.want {
			t.Fatalf("Code(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
