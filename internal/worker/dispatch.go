package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"UploadInbox/internal/mq"
	"UploadInbox/internal/service"
)

// ErrUnknownEventType is returned for event types outside the closed
// inbound set. The consumer treats it as fatal rather than dropping the
// message silently.
var ErrUnknownEventType = errors.New("unknown event type")

// FileRegistry is the slice of the file metadata service the dispatcher
// needs.
type FileRegistry interface {
	UpsertMultiple(ctx context.Context, upserts []service.FileUpsert) error
}

// UploadDecisions is the slice of the upload service the dispatcher needs.
type UploadDecisions interface {
	AcceptLatest(ctx context.Context, fileID string) error
	RejectLatest(ctx context.Context, fileID string) error
	DeletionRequested(ctx context.Context, fileID string) error
}

// Dispatcher routes inbound events to the service operations they trigger.
type Dispatcher struct {
	files   FileRegistry
	uploads UploadDecisions
}

func NewDispatcher(files FileRegistry, uploads UploadDecisions) *Dispatcher {
	return &Dispatcher{files: files, uploads: uploads}
}

// Dispatch handles one inbound event by its declared type.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, body []byte) error {
	switch eventType {
	case mq.TypeFileMetadataUpserted:
		var event mq.FileMetadataUpsertedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return err
		}
		upserts := make([]service.FileUpsert, 0, len(event.AssociatedFiles))
		for _, file := range event.AssociatedFiles {
			upserts = append(upserts, service.FileUpsert{
				FileID:          file.FileID,
				FileName:        file.FileName,
				DecryptedSHA256: file.DecryptedSHA256,
				DecryptedSize:   file.DecryptedSize,
			})
		}
		return d.files.UpsertMultiple(ctx, upserts)

	case mq.TypeUploadAccepted:
		var event mq.UploadAcceptedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return err
		}
		return d.uploads.AcceptLatest(ctx, event.FileID)

	case mq.TypeUploadRejected:
		var event mq.UploadRejectedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return err
		}
		return d.uploads.RejectLatest(ctx, event.FileID)

	case mq.TypeDeletionRequested:
		var event mq.DeletionRequestedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return err
		}
		return d.uploads.DeletionRequested(ctx, event.FileID)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
}
