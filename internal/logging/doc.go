// Package logging builds the slog loggers used across flowshot.
//
// Two output formats are supported: a compact console format that prefixes
// each line with the emitting component, and a JSON format with normalized
// field names for log aggregation. Attr helpers and standardized field
// constants keep key names consistent between the pipeline and the service
// clients.
package logging
