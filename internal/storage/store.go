package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUploadAlreadyExists is returned when a multipart upload is already
	// in flight for the target object.
	ErrUploadAlreadyExists = errors.New("multipart upload already exists")
	// ErrUploadNotFound is returned when no multipart upload matches the
	// given upload ID.
	ErrUploadNotFound = errors.New("multipart upload not found")
	// ErrObjectNotFound is returned when the target object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// ConfirmError is returned when finalizing a multipart upload fails.
type ConfirmError struct {
	UploadID string
	Reason   string
}

func (e *ConfirmError) Error() string {
	return "could not confirm multipart upload " + e.UploadID + ": " + e.Reason
}

// ObjectStore abstracts the multipart upload operations of one object
// storage location. All operations are parameterized by (bucket, object).
type ObjectStore interface {
	InitMultipartUpload(ctx context.Context, bucket, object string) (uploadID string, err error)
	PartUploadURL(ctx context.Context, bucket, object, uploadID string, partNumber int, expiry time.Duration) (string, error)
	CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
	RemoveObject(ctx context.Context, bucket, object string) error
	ObjectExists(ctx context.Context, bucket, object string) (bool, error)
	ListObjectIDs(ctx context.Context, bucket string) ([]string, error)
}
