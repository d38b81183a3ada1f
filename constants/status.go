package constants

// RunStatus is the canonical status for rows in pipeline_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusDone    RunStatus = "DONE"    // terminal success (with or without redactions)
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)
