// Package report holds the aggregate outcome of one pipeline run and writes
// it as a JSON document.
package report
