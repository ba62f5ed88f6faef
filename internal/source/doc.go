// Package source discovers workflow definition files on disk and parses them
// into the form the execution engine accepts.
package source
