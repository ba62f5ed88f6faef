package pipeline

// Status tracks a single item through the processing pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusChecked    Status = "checked"
	StatusSkipped    Status = "skipped"
	StatusImporting  Status = "importing"
	StatusImported   Status = "imported"
	StatusCapturing  Status = "capturing"
	StatusCaptured   Status = "captured"
	StatusPublishing Status = "publishing"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
	StatusCleaned    Status = "cleaned"
	StatusDone       Status = "done"
)
