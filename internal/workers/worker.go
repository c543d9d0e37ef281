package workers

// Worker is a scheduled background job.
type Worker interface {
	Start() error
	// Stop waits for a running job to finish.
	Stop()
	Name() string
}
