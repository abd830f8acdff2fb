package service

import (
	"context"

	"UploadInbox/internal/storage"
	"UploadInbox/model"
)

// Persistence is the keyed record store the services operate on. Not-found
// and already-exists conditions are signaled with repo.ErrNotFound and
// repo.ErrAlreadyExists.
type Persistence interface {
	GetFile(ctx context.Context, fileID string) (model.FileMetadata, error)
	InsertFile(ctx context.Context, file model.FileMetadata) error
	UpdateFile(ctx context.Context, file model.FileMetadata) error
	DeleteFile(ctx context.Context, fileID string) error

	GetAttempt(ctx context.Context, uploadID string) (model.UploadAttempt, error)
	InsertAttempt(ctx context.Context, attempt model.UploadAttempt) error
	UpdateAttempt(ctx context.Context, attempt model.UploadAttempt) error
	DeleteAttempt(ctx context.Context, uploadID string) error
	FindAttemptsByFile(ctx context.Context, fileID string) ([]model.UploadAttempt, error)
	FindAttemptsByObject(ctx context.Context, objectID string) ([]model.UploadAttempt, error)
}

// StorageLocations resolves a storage alias to its bucket and client.
type StorageLocations interface {
	ForAlias(alias string) (bucket string, store storage.ObjectStore, err error)
	Aliases() []string
}

// EventPublisher publishes the domain events this service emits.
type EventPublisher interface {
	PublishUploadReceived(ctx context.Context, file model.FileMetadata, attempt model.UploadAttempt, bucketID string) error
	PublishDeletionSuccessful(ctx context.Context, fileID string) error
}
