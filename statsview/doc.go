// Package statsview publishes Go runtime statistics of a running emulator
// (heap, goroutines, GC pauses) as live charts in a browser.
//
// The server is compiled in only with the statsview build tag; otherwise
// Available reports false and Launch does nothing.
package statsview
