// Package pipeline orchestrates one screenshot run: for each discovered
// workflow it checks the content store, imports the definition into the
// execution engine, captures the rendered canvas, publishes the image, and
// deletes the transient workflow.
//
// Items move through pending → checked → (skipped | importing → imported →
// capturing → captured → publishing → published) → cleaned → done, with
// failed reachable from any stage after importing. Processing is strictly
// sequential with fixed pacing delays; per-item failures are isolated and
// aggregated into the run report, and a remote workflow handle never
// outlives its item.
package pipeline
