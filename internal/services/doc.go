// Package services hosts the shared error taxonomy for external service
// integrations (execution engine, headless browser, content store).
//
// Errors are tagged with sentinel markers so the pipeline can classify a
// failure without inspecting client-specific types: configuration errors
// abort the run before any processing, import/capture/publish errors fail a
// single item, and cleanup failures are logged without escalation.
package services
