package mq

import (
	"context"
	"encoding/json"

	"UploadInbox/model"
)

// Publisher emits the service's outbound domain events.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishUploadReceived announces that the upload attempt was finalized.
func (p *Publisher) PublishUploadReceived(ctx context.Context, file model.FileMetadata, attempt model.UploadAttempt, bucketID string) error {
	event := UploadReceivedEvent{
		FileID:             file.FileID,
		ObjectID:           attempt.ObjectID,
		BucketID:           bucketID,
		StorageAlias:       attempt.StorageAlias,
		SubmitterPublicKey: attempt.SubmitterPublicKey,
		DecryptedSHA256:    file.DecryptedSHA256,
		DecryptedSize:      file.DecryptedSize,
	}
	if attempt.CompletionDate != nil {
		event.UploadDate = *attempt.CompletionDate
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, ExchangeOutbound, TypeUploadReceived, body)
}

// PublishDeletionSuccessful confirms the teardown of a file.
func (p *Publisher) PublishDeletionSuccessful(ctx context.Context, fileID string) error {
	body, err := json.Marshal(DeletionSuccessfulEvent{FileID: fileID})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, ExchangeOutbound, TypeDeletionSuccessful, body)
}
