package model

// ProgressStatus represents the phase reported by a progress event
type ProgressStatus string

const (
	// ProgressStatusStarting means the engine accepted the job but no bytes arrived yet
	ProgressStatusStarting ProgressStatus = "starting"

	// ProgressStatusDownloading means media bytes are being transferred
	ProgressStatusDownloading ProgressStatus = "downloading"

	// ProgressStatusPostProcessing means the transfer ended and muxing or transcoding runs
	ProgressStatusPostProcessing ProgressStatus = "post_processing"

	// ProgressStatusFinished means the engine finished writing the output file
	ProgressStatusFinished ProgressStatus = "finished"

	// ProgressStatusError means the engine reported a failure for the current file
	ProgressStatusError ProgressStatus = "error"
)

// String returns the string representation of ProgressStatus
func (ps ProgressStatus) String() string {
	return string(ps)
}

// IsFinished returns true if the status is terminal (finished or error)
func (ps ProgressStatus) IsFinished() bool {
	return ps == ProgressStatusFinished || ps == ProgressStatusError
}

// ParseProgressStatus maps an engine status string onto ProgressStatus.
// Unknown values are returned unchanged so renderers can ignore them.
func ParseProgressStatus(s string) ProgressStatus {
	switch s {
	case "postprocessing", "post-processing", "processing":
		return ProgressStatusPostProcessing
	case "complete", "completed", "done":
		return ProgressStatusFinished
	}
	return ProgressStatus(s)
}
