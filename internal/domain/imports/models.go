package imports

import "time"

type UploadStatus string

const (
	StatusProcessing         UploadStatus = "PROCESSING"
	StatusCompleted          UploadStatus = "COMPLETED"
	StatusPartiallyCompleted UploadStatus = "PARTIALLY_COMPLETED"
	StatusFailed             UploadStatus = "FAILED"
)

// UploadError is one rejected row as retained on the history record.
type UploadError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// UploadHistory is the externally visible progress artifact for one upload
// attempt. It is created before any row is processed, mutated in place, and
// never duplicated across the life of the upload.
type UploadHistory struct {
	ID               string        `json:"id"`
	BatchID          string        `json:"batchId"`
	Filename         string        `json:"filename"`
	FileType         string        `json:"fileType"`
	Status           UploadStatus  `json:"status"`
	TotalRecords     int           `json:"totalRecords"`
	ProcessedRecords int           `json:"processedRecords"`
	ErrorRecords     int           `json:"errorRecords"`
	Errors           []UploadError `json:"errors"`
	StartedAt        time.Time     `json:"startedAt"`
	FinishedAt       *time.Time    `json:"finishedAt,omitempty"`
}

// ImportLog is the longer-term audit trail mirroring UploadHistory, scoped
// to the file-type classification.
type ImportLog struct {
	ID               string       `json:"id"`
	BatchID          string       `json:"batchId"`
	FileType         string       `json:"fileType"`
	Status           UploadStatus `json:"status"`
	TotalRecords     int          `json:"totalRecords"`
	ProcessedRecords int          `json:"processedRecords"`
	ErrorRecords     int          `json:"errorRecords"`
	Message          string       `json:"message"`
	CreatedAt        time.Time    `json:"createdAt"`
	FinishedAt       *time.Time   `json:"finishedAt,omitempty"`
}

// TerminalStatus maps final counters onto the worst-outcome status.
func TerminalStatus(total, processed, errors int) UploadStatus {
	if processed == 0 && errors > 0 {
		return StatusFailed
	}
	if processed == total {
		return StatusCompleted
	}
	if processed > 0 {
		return StatusPartiallyCompleted
	}
	return StatusCompleted
}
