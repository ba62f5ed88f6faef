// Package naming derives canonical artifact names and category buckets from
// workflow names and file paths. All functions are pure and never fail;
// malformed input degrades to safe defaults.
package naming
