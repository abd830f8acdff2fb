package mq

import "time"

// Inbound event types. The set is closed: the consumer fails loudly on
// anything else.
const (
	TypeFileMetadataUpserted = "file_metadata_upserted"
	TypeUploadAccepted       = "file_registered"
	TypeUploadRejected       = "file_validation_failure"
	TypeDeletionRequested    = "file_deletion_requested"
)

// Outbound event types.
const (
	TypeUploadReceived     = "upload_received"
	TypeDeletionSuccessful = "file_deletion_successful"
)

// InboundEventTypes enumerates every event type the consumer dispatches on.
var InboundEventTypes = []string{
	TypeFileMetadataUpserted,
	TypeUploadAccepted,
	TypeUploadRejected,
	TypeDeletionRequested,
}

// FilePayload is one file entry of a metadata upsert event.
type FilePayload struct {
	FileID          string `json:"file_id"`
	FileName        string `json:"file_name"`
	DecryptedSHA256 string `json:"decrypted_sha256"`
	DecryptedSize   int64  `json:"decrypted_size"`
}

// FileMetadataUpsertedEvent announces new or changed file registrations.
type FileMetadataUpsertedEvent struct {
	AssociatedFiles []FilePayload `json:"associated_files"`
}

// UploadAcceptedEvent reports that a downstream service registered the
// latest upload of the file.
type UploadAcceptedEvent struct {
	FileID string `json:"file_id"`
}

// UploadRejectedEvent reports a downstream validation failure for the
// latest upload of the file.
type UploadRejectedEvent struct {
	FileID string `json:"file_id"`
}

// DeletionRequestedEvent asks for full teardown of a file.
type DeletionRequestedEvent struct {
	FileID string `json:"file_id"`
}

// UploadReceivedEvent announces a finalized upload to downstream services.
type UploadReceivedEvent struct {
	FileID             string    `json:"file_id"`
	ObjectID           string    `json:"object_id"`
	BucketID           string    `json:"bucket_id"`
	StorageAlias       string    `json:"storage_alias"`
	SubmitterPublicKey string    `json:"submitter_public_key"`
	DecryptedSHA256    string    `json:"decrypted_sha256"`
	DecryptedSize      int64     `json:"decrypted_size"`
	UploadDate         time.Time `json:"upload_date"`
}

// DeletionSuccessfulEvent confirms that all data for the file is gone.
type DeletionSuccessfulEvent struct {
	FileID string `json:"file_id"`
}
