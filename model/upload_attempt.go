package model

import "time"

// UploadStatus is the lifecycle state of an upload attempt.
type UploadStatus string

const (
	// StatusPending means the submitter has requested upload URLs.
	StatusPending UploadStatus = "pending"
	// StatusCancelled means the submitter cancelled the upload.
	StatusCancelled UploadStatus = "cancelled"
	// StatusUploaded means the submitter confirmed the upload.
	StatusUploaded UploadStatus = "uploaded"
	// StatusFailed means the upload failed for a technical reason.
	StatusFailed UploadStatus = "failed"
	// StatusAccepted means a downstream service accepted the upload.
	StatusAccepted UploadStatus = "accepted"
	// StatusRejected means a downstream service rejected the upload.
	StatusRejected UploadStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s UploadStatus) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusFailed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsActive reports whether the status blocks the creation of a new attempt
// for the same file.
func (s UploadStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusUploaded, StatusAccepted:
		return true
	}
	return false
}

// UploadAttempt is one try at uploading a file's bytes via a multipart
// upload. The upload ID is assigned by the object storage at init time.
type UploadAttempt struct {
	UploadID string `gorm:"column:upload_id;primaryKey;size:128" json:"upload_id"`

	FileID string `gorm:"column:file_id;size:128;not null;index" json:"file_id"`

	// Key of the attempt's bytes in the object store, generated fresh per
	// attempt and never reused.
	ObjectID string `gorm:"column:object_id;size:64;not null;index" json:"object_id"`

	StorageAlias string `gorm:"column:storage_alias;size:64;not null" json:"storage_alias"`

	Status UploadStatus `gorm:"column:status;size:16;not null" json:"status"`

	PartSize int64 `gorm:"column:part_size;not null" json:"part_size"`

	SubmitterPublicKey string `gorm:"column:submitter_public_key;size:512;not null" json:"submitter_public_key"`

	CreationDate   time.Time  `gorm:"column:creation_date;not null" json:"creation_date"`
	CompletionDate *time.Time `gorm:"column:completion_date" json:"completion_date"`
}

// TableName returns the database table name.
func (UploadAttempt) TableName() string {
	return "upload_attempt"
}
