// Package store is the remote content store client. Published screenshots
// live in a GitHub repository; writes go through the contents API with
// optimistic-concurrency version tokens, and public reads use the raw
// content URL scheme.
package store
