// Command flowshot scans a directory of workflow definitions, imports each
// into a running execution engine, captures its rendered canvas with
// headless Chrome, publishes the screenshot to a GitHub repository, and
// removes the transient workflow again. A JSON run report is written after
// every run.
package main
