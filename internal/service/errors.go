package service

import (
	"fmt"
	"strings"

	"UploadInbox/model"
)

// The error types below are the expected operational outcomes of the
// services; callers branch on them with errors.As. OutOfSyncError is the
// exception: it signals an invariant violated by the environment and is
// always logged at critical severity before propagation.

// FileUnknownError is returned when no file is registered under the ID.
type FileUnknownError struct {
	FileID string
}

func (e *FileUnknownError) Error() string {
	return fmt.Sprintf("no file registered with id %q", e.FileID)
}

// InvalidMetadataUpdateError is returned when an upsert would change fields
// that are only settable at creation.
type InvalidMetadataUpdateError struct {
	FileID        string
	InvalidFields []string
}

func (e *InvalidMetadataUpdateError) Error() string {
	return fmt.Sprintf(
		"invalid metadata update for file %q: fields not updatable: %s",
		e.FileID, strings.Join(e.InvalidFields, ", "),
	)
}

// UnknownUploadError is returned when no upload attempt exists for the ID.
type UnknownUploadError struct {
	UploadID string
}

func (e *UnknownUploadError) Error() string {
	return fmt.Sprintf("no upload attempt with id %q", e.UploadID)
}

// UploadStatusMismatchError is returned when an attempt is not in the status
// an operation requires.
type UploadStatusMismatchError struct {
	UploadID       string
	ExpectedStatus model.UploadStatus
	CurrentStatus  model.UploadStatus
}

func (e *UploadStatusMismatchError) Error() string {
	return fmt.Sprintf(
		"upload attempt %q has status %q, expected %q",
		e.UploadID, e.CurrentStatus, e.ExpectedStatus,
	)
}

// ExistingActiveUploadError is returned when a new attempt is initiated
// while another attempt for the same file is still active. It carries the
// conflicting attempt so callers can explain the conflict.
type ExistingActiveUploadError struct {
	ActiveUpload model.UploadAttempt
}

func (e *ExistingActiveUploadError) Error() string {
	return fmt.Sprintf(
		"file %q already has an active upload attempt %q with status %q",
		e.ActiveUpload.FileID, e.ActiveUpload.UploadID, e.ActiveUpload.Status,
	)
}

// UnknownStorageAliasError is returned when no storage location is
// configured for the alias.
type UnknownStorageAliasError struct {
	StorageAlias string
}

func (e *UnknownStorageAliasError) Error() string {
	return fmt.Sprintf("no storage location configured for alias %q", e.StorageAlias)
}

// FileAlreadyInInboxError is returned when the object storage reports an
// in-flight upload for a freshly generated object ID.
type FileAlreadyInInboxError struct {
	FileID string
}

func (e *FileAlreadyInInboxError) Error() string {
	return fmt.Sprintf("file %q is already being uploaded to the inbox", e.FileID)
}

// UploadCompletionError is returned when the storage-side finalization of a
// multipart upload fails.
type UploadCompletionError struct {
	UploadID string
	Reason   string
}

func (e *UploadCompletionError) Error() string {
	return fmt.Sprintf("could not complete upload attempt %q: %s", e.UploadID, e.Reason)
}

// UploadCancelError is returned when the storage-side abort of a multipart
// upload fails. The attempt stays pending so the caller can retry.
type UploadCancelError struct {
	UploadID string
}

func (e *UploadCancelError) Error() string {
	return fmt.Sprintf("could not cancel upload attempt %q", e.UploadID)
}

// NoLatestUploadError is returned when a file has no upload attempt to
// accept or reject.
type NoLatestUploadError struct {
	FileID string
}

func (e *NoLatestUploadError) Error() string {
	return fmt.Sprintf("file %q has no latest upload attempt", e.FileID)
}

// OutOfSyncError reports disagreement between the database and the object
// storage.
type OutOfSyncError struct {
	Problem string
}

func (e *OutOfSyncError) Error() string {
	return "storage and database are out of sync: " + e.Problem
}
