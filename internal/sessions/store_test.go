package sessions

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStartAndFinishSession(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.StartSession(ctx, "hw:0,0", "parec", 16000, 1)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session id")
	}

	if err := store.FinishSession(ctx, id, 32000); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}

	sessions, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.ID != id || got.DeviceID != "hw:0,0" || got.Backend != "parec" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.EndedAt == nil {
		t.Fatal("finished session should carry an end time")
	}
	if got.Bytes != 32000 {
		t.Fatalf("Bytes = %d, want 32000", got.Bytes)
	}
	if got.Duration() < 0 {
		t.Fatalf("negative duration: %v", got.Duration())
	}
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.StartSession(ctx, "a", "parec", 16000, 1)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.StartSession(ctx, "b", "sox", 16000, 1)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	sessions, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != second || sessions[1].ID != first {
		t.Fatal("sessions should list most recent first")
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second {
		t.Fatalf("limit should keep only the most recent session, got %+v", limited)
	}
}

func TestOpenSessionHasNoEndTime(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.StartSession(ctx, "default", "pw-cat", 44100, 2); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	sessions, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if sessions[0].EndedAt != nil {
		t.Fatal("open session should have no end time")
	}
}

func TestFinishUnknownSession(t *testing.T) {
	store := newStore(t)

	if err := store.FinishSession(context.Background(), "no-such-id", 0); err == nil {
		t.Fatal("expected error finishing a session that does not exist")
	}
}

func TestStoreReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := store.StartSession(context.Background(), "default", "parec", 16000, 1)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	sessions, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != id {
		t.Fatalf("history lost across reopen: %+v", sessions)
	}
}
