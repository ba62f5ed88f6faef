// Package engine is the REST client for the workflow execution engine. It
// imports workflow definitions, deletes the transient copies after capture,
// and knows where the canvas view for an imported workflow lives.
package engine
