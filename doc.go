// Package term implements an embedded VT220/xterm-compatible terminal
// emulator core, the kind a text editor embeds to host a PTY-backed
// terminal buffer.
//
// The core owns the byte-level parser, the screen grid and scrollback
// ring, a damage-tracked projection into a host-owned line buffer, and
// an input dispatcher that turns host key/mouse events into PTY bytes.
// It never owns the PTY itself, the host's text buffer, or the screen
// compositor: those are reached through the collaborator interfaces in
// interfaces.go ([BufferSink], [UIHost], [ClipboardSink], [PtyChannel]).
//
// # Quick start
//
//	term := vt.New(vt.Options{
//		Rows: 24, Cols: 80,
//		BufferSink: mySink,
//		UIHost:     myHost,
//		Pty:        myPty,
//	})
//	defer term.Close()
//
//	n, err := term.Write(ptyOutput)  // feed PTY bytes in
//	err = term.HandleKey(keyMsg)     // forward a host key event out
//
// # Architecture
//
//   - [Terminal]: composition root; feeds bytes to a go-ansicode decoder
//     whose ansicode.Handler is internal/parser's Handler, and owns the
//     terminal's state.
//   - internal/screen: the VT screen model (grid, cursor, modes, scroll
//     regions) and the VT command table.
//   - internal/scrollback: the bounded scrollback ring.
//   - internal/projection: mirrors screen+scrollback into a BufferSink.
//   - internal/coalescer: the 10ms damage-flush timer.
//   - internal/input: key/mouse encoding and the terminal-focus state
//     machine.
//   - internal/request: the APC/PM/SOS passthrough channel and its
//     pending-send queue.
//   - internal/clipboard: OSC 52 selection job queue.
//   - internal/palette: 16-slot palette seeding and theme notifications.
//   - internal/registry: terminal handle → instance resolution and
//     refcounted teardown.
package term
