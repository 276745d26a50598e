//go:build statsview

package statsview

import (
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/ezrec/rvemu/translate"
)

// DEFAULT_ADDR is the listen address of the statistics server.
const DEFAULT_ADDR = "localhost:12600"

// Available returns true if the statistics server is compiled in.
func Available() bool { return true }

// Launch serves statistics at addr (DEFAULT_ADDR if empty) and writes the
// chart URL to output. The returned function shuts the server down.
func Launch(addr string, output io.Writer) (stop func()) {
	if len(addr) == 0 {
		addr = DEFAULT_ADDR
	}

	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()

	go mgr.Start()

	if output != nil {
		io.WriteString(output, translate.From("statsview: http://%v/debug/statsview\n", addr))
	}

	return mgr.Stop
}
