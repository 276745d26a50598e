//go:build !linux

package main

import (
	"io"
	"os"
)

// chanReader reads from a blocking reader on its own goroutine. Read
// returns zero bytes when no input is ready.
type chanReader struct {
	data    chan []byte
	err     error
	pending []byte
}

func newChanReader(r io.Reader) (cr *chanReader) {
	cr = &chanReader{data: make(chan []byte, 1)}

	go func() {
		defer close(cr.data)
		for {
			buf := make([]byte, 64)
			n, err := r.Read(buf)
			if n > 0 {
				cr.data <- buf[:n]
			}
			if err != nil {
				cr.err = err
				return
			}
		}
	}()

	return
}

func (cr *chanReader) Read(buf []byte) (n int, err error) {
	if len(cr.pending) == 0 {
		select {
		case data, ok := <-cr.data:
			if !ok {
				return 0, cr.err
			}
			cr.pending = data
		default:
			return 0, nil
		}
	}

	n = copy(buf, cr.pending)
	cr.pending = cr.pending[n:]
	return
}

// consoleInput returns a non-blocking reader for the console.
func consoleInput(file *os.File) (input io.Reader, restore func(), err error) {
	return newChanReader(file), func() {}, nil
}
