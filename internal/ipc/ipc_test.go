package ipc_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"whisperdict/internal/faults"
	"whisperdict/internal/ipc"
	"whisperdict/internal/logging"
)

func startServer(t *testing.T) (*ipc.Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")
	server, err := ipc.NewServer(context.Background(), socketPath, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)
	return server, socketPath
}

func TestServerDispatchesRegisteredHandler(t *testing.T) {
	server, socketPath := startServer(t)
	server.Handle(ipc.MessageStatus, func(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
		return ipc.NewStatusMessage(ipc.StatusPayload{State: "running", Uptime: 42}), nil
	})

	response, err := ipc.Request(socketPath, ipc.NewMessage(ipc.MessageStatus))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	payload, err := response.StatusPayload()
	if err != nil {
		t.Fatalf("StatusPayload: %v", err)
	}
	if payload.State != "running" || payload.Uptime != 42 {
		t.Fatalf("unexpected status: %+v", payload)
	}
}

func TestServerRejectsUnregisteredType(t *testing.T) {
	_, socketPath := startServer(t)

	response, err := ipc.Request(socketPath, ipc.NewMessage(ipc.MessagePause))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if response.Type != ipc.MessageError {
		t.Fatalf("expected error response, got %s", response.Type)
	}
	payload, err := response.ErrorPayload()
	if err != nil {
		t.Fatalf("ErrorPayload: %v", err)
	}
	if payload.Code != faults.CodeNotImplemented {
		t.Fatalf("expected code %d, got %d", faults.CodeNotImplemented, payload.Code)
	}
}

func TestServerMapsHandlerErrorToCode(t *testing.T) {
	server, socketPath := startServer(t)
	server.Handle(ipc.MessageStart, func(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
		return ipc.Message{}, faults.Wrap(faults.ErrConflict, "daemon", "start", "daemon already running", nil)
	})

	response, err := ipc.Request(socketPath, ipc.NewMessage(ipc.MessageStart))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	payload, err := response.ErrorPayload()
	if err != nil {
		t.Fatalf("ErrorPayload: %v", err)
	}
	if payload.Code != faults.CodeConflict {
		t.Fatalf("expected code %d, got %d", faults.CodeConflict, payload.Code)
	}
	if payload.Message == "" {
		t.Fatal("expected error message in payload")
	}
}

func TestServerRecoversFromHandlerPanic(t *testing.T) {
	server, socketPath := startServer(t)
	server.Handle(ipc.MessageStop, func(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
		panic("handler exploded")
	})

	response, err := ipc.Request(socketPath, ipc.NewMessage(ipc.MessageStop))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if response.Type != ipc.MessageError {
		t.Fatalf("expected error response after panic, got %s", response.Type)
	}
}

func TestServerClosesConnectionAfterExchange(t *testing.T) {
	server, socketPath := startServer(t)
	server.Handle(ipc.MessageStatus, func(ctx context.Context, msg ipc.Message) (ipc.Message, error) {
		return ipc.NewStatusMessage(ipc.StatusPayload{State: "running"}), nil
	})

	client, err := ipc.Dial(socketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Send(ipc.NewMessage(ipc.MessageStatus)); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	// The server hangs up after one exchange, so a second send on the
	// same connection must fail.
	if _, err := client.Send(ipc.NewMessage(ipc.MessageStatus)); err == nil {
		t.Fatal("expected second exchange on the same connection to fail")
	}
}

func TestDialUnreachableSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "missing.sock")
	_, err := ipc.Dial(socketPath)
	if err == nil {
		t.Fatal("expected dial failure for missing socket")
	}
	var connErr *ipc.ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectError, got %T", err)
	}
	if connErr.Path != socketPath {
		t.Fatalf("expected path %q in error, got %q", socketPath, connErr.Path)
	}
}

func TestServerCloseRemovesSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")
	server, err := ipc.NewServer(context.Background(), socketPath, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	server.Close()

	if _, err := ipc.Dial(socketPath); err == nil {
		t.Fatal("expected dial to fail after server close")
	}
}
