//go:build linux

package main

import (
	"errors"
	"io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// pollReader reads from a file without blocking. Read returns zero bytes
// when no input is ready.
type pollReader struct {
	file *os.File
	fd   int32
}

func (pr *pollReader) Read(buf []byte) (n int, err error) {
	fds := []unix.PollFd{{Fd: pr.fd, Events: unix.POLLIN}}

	ready, err := unix.Poll(fds, 0)
	if errors.Is(err, unix.EINTR) {
		return 0, nil
	}
	if err != nil || ready == 0 {
		return
	}

	return pr.file.Read(buf)
}

// consoleInput returns a non-blocking reader for the console. A terminal
// is placed in raw mode, keeping signals and output newline translation;
// restore returns it to its prior mode, and may be called more than once.
func consoleInput(file *os.File) (input io.Reader, restore func(), err error) {
	fd := file.Fd()

	input = &pollReader{file: file, fd: int32(fd)}
	restore = func() {}

	_, terr := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	if terr != nil {
		// Not a terminal.
		return
	}

	var saved unix.Termios
	err = termios.Tcgetattr(fd, &saved)
	if err != nil {
		return
	}

	raw := saved
	termios.Cfmakeraw(&raw)
	raw.Lflag |= unix.ISIG
	raw.Oflag |= unix.OPOST | unix.ONLCR

	err = termios.Tcsetattr(fd, termios.TCSANOW, &raw)
	if err != nil {
		return
	}

	restore = func() {
		_ = termios.Tcsetattr(fd, termios.TCSANOW, &saved)
	}

	return
}
