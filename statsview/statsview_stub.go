//go:build !statsview

package statsview

import "io"

// DEFAULT_ADDR is the listen address of the statistics server.
const DEFAULT_ADDR = "localhost:12600"

// Available returns true if the statistics server is compiled in.
func Available() bool { return false }

// Launch does nothing without the statsview build tag.
func Launch(addr string, output io.Writer) (stop func()) {
	return func() {}
}
