package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"     // optional: queued for processing
	JobStatusRunning   JobStatus = "RUNNING"    // in progress
	JobStatusDecodedOK JobStatus = "DECODED_OK" // stage 1 completed (text reconstructed)
	JobStatusParsedOK  JobStatus = "PARSED_OK"  // stage 2 completed (fields extracted)
	JobStatusFailed    JobStatus = "FAILED"     // terminal failure
)

// Terminal reports whether no further stage will run for the job.
func (s JobStatus) Terminal() bool {
	return s == JobStatusParsedOK || s == JobStatusFailed
}
