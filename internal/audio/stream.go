package audio

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"whisperdict/internal/faults"
)

// startupGrace is how long StartProcess watches a freshly spawned capture
// process for an immediate exit before handing the stream to the caller.
const startupGrace = 50 * time.Millisecond

// Stream is the raw PCM output of one capture process. It implements
// io.Reader: Read returns chunks as the process produces them and io.EOF
// once the process ends and its output drains. A stream is not restartable.
type Stream struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *bytes.Buffer

	done    chan struct{}
	waitErr error

	bytesRead atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// StartProcess spawns a capture command with stdout piped into the
// returned stream and stderr buffered for diagnostics. All backends funnel
// through here. If the process dies within the startup grace window the
// buffered stderr is surfaced as the error.
func StartProcess(ctx context.Context, backend string, argv ...string) (*Stream, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, faults.Wrap(nil, backend, "start_recording", "create pipe", err)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stderr := &bytes.Buffer{}
	cmd.Stdout = pw
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, faults.Wrap(nil, backend, "start_recording", "spawn "+argv[0], err)
	}
	// The child holds its own copy of the write end; closing ours lets the
	// read end see EOF when the process exits.
	pw.Close()

	s := &Stream{
		cmd:    cmd,
		stdout: pr,
		stderr: stderr,
		done:   make(chan struct{}),
	}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	select {
	case <-s.done:
		pr.Close()
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "process exited before producing audio"
		}
		return nil, faults.Wrap(nil, backend, "start_recording", msg, s.waitErr)
	case <-time.After(startupGrace):
	}
	return s, nil
}

// Read reads the next chunk of PCM data. It returns io.EOF after the
// capture process exits and its remaining output has been consumed.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if n > 0 {
		s.bytesRead.Add(int64(n))
	}
	if err != nil && err != io.EOF {
		return n, faults.Wrap(nil, "audio", "read", "read stream", err)
	}
	return n, err
}

// BytesRead returns the total number of bytes consumed so far.
func (s *Stream) BytesRead() int64 {
	return s.bytesRead.Load()
}

// Exited reports whether the capture process has already terminated.
func (s *Stream) Exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close terminates the capture process and waits for it to exit. It is
// idempotent and tolerates a process that already exited on its own.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		if !s.Exited() {
			// Signal errors mean the process is already gone.
			_ = s.cmd.Process.Signal(syscall.SIGTERM)
		}
		<-s.done
		s.closeErr = s.stdout.Close()
	})
	return s.closeErr
}

// Stderr returns the capture process's buffered stderr. Only valid after
// the process has exited.
func (s *Stream) Stderr() string {
	return strings.TrimSpace(s.stderr.String())
}
