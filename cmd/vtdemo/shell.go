package main

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// shell wraps a PTY-backed login shell and implements term.PtyChannel
// (the core never spawns a process itself; that's entirely a host
// concern per SPEC_FULL.md §6).
type shell struct {
	mu     sync.Mutex
	file   *os.File
	cmd    *exec.Cmd
	closed bool
}

// spawnShell starts $SHELL (or sh) under a PTY sized rows x cols.
func spawnShell(rows, cols int) (*shell, error) {
	name := os.Getenv("SHELL")
	if name == "" {
		name = "/bin/sh"
	}
	cmd := exec.Command(name, "-l")
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	// creack/pty sets Setsid itself; Setpgid here can cause EPERM on start.
	cmd.SysProcAttr = &syscall.SysProcAttr{}

	f, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, err
	}
	return &shell{file: f, cmd: cmd}, nil
}

// Send implements term.PtyChannel: writes application input to the
// child process's stdin.
func (s *shell) Send(data []byte) error {
	s.mu.Lock()
	closed, f := s.closed, s.file
	s.mu.Unlock()
	if closed || f == nil {
		return io.ErrClosedPipe
	}
	_, err := f.Write(data)
	return err
}

// Resize propagates a host resize down to the PTY.
func (s *shell) Resize(rows, cols int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.file == nil {
		return nil
	}
	return pty.Setsize(s.file, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Read drains PTY output; the caller feeds it to Terminal.Write.
func (s *shell) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

func (s *shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.file.Close()
}

// Wait blocks until the child exits and returns its exit status.
func (s *shell) Wait() int {
	err := s.cmd.Wait()
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
