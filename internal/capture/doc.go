// Package capture renders imported workflows in headless Chrome and extracts
// raster snapshots of the canvas view.
//
// Each capture gets a fresh browser context scoped to the item being
// processed. Readiness is probed through an ordered list of selectors, each
// with its own bounded timeout; if none appears the capture fails with
// ErrNoCanvas and the caller records the item as failed.
package capture
