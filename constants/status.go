package constants

// RunStatus is the canonical status for rows in extraction_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning  RunStatus = "RUNNING"  // in progress
	RunStatusFinished RunStatus = "FINISHED" // completed, table merged
	RunStatusFailed   RunStatus = "FAILED"   // terminal failure
)
