package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UploadInbox/internal/repo"
	"UploadInbox/internal/storage"
	"UploadInbox/model"
	"UploadInbox/utils"

	"go.uber.org/zap"
)

// UploadService drives the upload attempt state machine:
//
//	pending  -> uploaded | cancelled | failed
//	uploaded -> accepted | rejected | failed
//
// Every operation orders its external calls so that storage-side effects are
// durably applied, or explicitly rolled back, before the database write that
// depends on them. Events are published only after the corresponding
// database state is durable.
type UploadService struct {
	records   Persistence
	locations StorageLocations
	publisher EventPublisher

	partURLExpiry time.Duration

	partSize    func(fileSize int64) int64
	newObjectID func() string
	now         func() time.Time

	log *zap.SugaredLogger
}

func NewUploadService(
	records Persistence,
	locations StorageLocations,
	publisher EventPublisher,
	partURLExpiry time.Duration,
	log *zap.SugaredLogger,
) *UploadService {
	return &UploadService{
		records:       records,
		locations:     locations,
		publisher:     publisher,
		partURLExpiry: partURLExpiry,
		partSize:      CalculatePartSize,
		newObjectID:   utils.GetToken,
		now:           time.Now,
		log:           log,
	}
}

// critical logs a condition that requires operator attention.
func (s *UploadService) critical(msg string, keysAndValues ...interface{}) {
	s.log.Errorw(msg, append(keysAndValues, "severity", "critical")...)
}

func (s *UploadService) forAlias(alias string) (string, storage.ObjectStore, error) {
	bucket, store, err := s.locations.ForAlias(alias)
	if errors.Is(err, storage.ErrUnknownAlias) {
		return "", nil, &UnknownStorageAliasError{StorageAlias: alias}
	}
	return bucket, store, err
}

// assertNoActiveUpload fails when any attempt for the file is still active.
func (s *UploadService) assertNoActiveUpload(ctx context.Context, fileID string) error {
	attempts, err := s.records.FindAttemptsByFile(ctx, fileID)
	if err != nil {
		return err
	}
	for _, attempt := range attempts {
		if attempt.Status.IsActive() {
			activeUpload := &ExistingActiveUploadError{ActiveUpload: attempt}
			s.log.Errorw("active upload attempt already exists",
				"file_id", fileID, "upload_id", attempt.UploadID, "status", attempt.Status)
			return activeUpload
		}
	}
	return nil
}

// InitiateNew starts a new multipart upload attempt for the file. The
// storage-side upload is initiated before the database writes so that any
// database failure can be compensated by aborting the storage state.
func (s *UploadService) InitiateNew(ctx context.Context, fileID, submitterPublicKey, storageAlias string) (model.UploadAttempt, error) {
	file, err := s.records.GetFile(ctx, fileID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.UploadAttempt{}, &FileUnknownError{FileID: fileID}
	}
	if err != nil {
		return model.UploadAttempt{}, err
	}

	if err := s.assertNoActiveUpload(ctx, fileID); err != nil {
		return model.UploadAttempt{}, err
	}

	objectID := s.newObjectID()
	s.log.Debugw("generated object id", "file_id", fileID, "object_id", objectID)

	bucket, store, err := s.forAlias(storageAlias)
	if err != nil {
		return model.UploadAttempt{}, err
	}

	uploadID, err := store.InitMultipartUpload(ctx, bucket, objectID)
	if err != nil {
		if errors.Is(err, storage.ErrUploadAlreadyExists) {
			return model.UploadAttempt{}, &FileAlreadyInInboxError{FileID: fileID}
		}
		return model.UploadAttempt{}, err
	}
	s.log.Infow("started multipart upload", "file_id", fileID, "upload_id", uploadID)

	attempt := model.UploadAttempt{
		UploadID:           uploadID,
		FileID:             fileID,
		ObjectID:           objectID,
		StorageAlias:       storageAlias,
		Status:             model.StatusPending,
		PartSize:           s.partSize(file.DecryptedSize),
		SubmitterPublicKey: submitterPublicKey,
		CreationDate:       s.now(),
		CompletionDate:     nil,
	}

	if insertErr := s.records.InsertAttempt(ctx, attempt); insertErr != nil {
		// A duplicate key here means the storage assigned an upload ID that
		// is already taken, which breaks the uniqueness assumption. Either
		// way the freshly initiated storage upload must not be left behind.
		if abortErr := store.AbortMultipartUpload(ctx, bucket, objectID, uploadID); abortErr != nil {
			return model.UploadAttempt{}, abortErr
		}
		s.log.Errorw("rolled back multipart upload after failed insert",
			"upload_id", uploadID, "file_id", fileID, "error", insertErr)
		return model.UploadAttempt{}, insertErr
	}

	file.LatestUploadID = &attempt.UploadID
	if updateErr := s.records.UpdateFile(ctx, file); updateErr != nil {
		if abortErr := store.AbortMultipartUpload(ctx, bucket, objectID, uploadID); abortErr != nil {
			return model.UploadAttempt{}, abortErr
		}
		if deleteErr := s.records.DeleteAttempt(ctx, uploadID); deleteErr != nil {
			return model.UploadAttempt{}, deleteErr
		}
		s.log.Errorw("rolled back upload attempt after failed file update",
			"upload_id", uploadID, "file_id", fileID, "error", updateErr)
		return model.UploadAttempt{}, updateErr
	}

	s.log.Infow("created upload attempt", "upload_id", uploadID, "file_id", fileID)
	return attempt, nil
}

// GetDetails returns the upload attempt with the given ID.
func (s *UploadService) GetDetails(ctx context.Context, uploadID string) (model.UploadAttempt, error) {
	attempt, err := s.records.GetAttempt(ctx, uploadID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.UploadAttempt{}, &UnknownUploadError{UploadID: uploadID}
	}
	return attempt, err
}

// getUploadIfStatus loads the attempt and requires it to be in the given
// status.
func (s *UploadService) getUploadIfStatus(ctx context.Context, uploadID string, status model.UploadStatus) (model.UploadAttempt, error) {
	attempt, err := s.GetDetails(ctx, uploadID)
	if err != nil {
		return model.UploadAttempt{}, err
	}
	if attempt.Status != status {
		mismatch := &UploadStatusMismatchError{
			UploadID:       uploadID,
			ExpectedStatus: status,
			CurrentStatus:  attempt.Status,
		}
		s.log.Errorw("upload attempt status mismatch",
			"upload_id", uploadID, "expected_status", status, "current_status", attempt.Status)
		return model.UploadAttempt{}, mismatch
	}
	return attempt, nil
}

// CreatePartURL presigns an upload URL for one part of a pending attempt.
func (s *UploadService) CreatePartURL(ctx context.Context, uploadID string, partNo int) (string, error) {
	attempt, err := s.getUploadIfStatus(ctx, uploadID, model.StatusPending)
	if err != nil {
		return "", err
	}

	bucket, store, err := s.forAlias(attempt.StorageAlias)
	if err != nil {
		return "", err
	}

	signedURL, err := store.PartUploadURL(ctx, bucket, attempt.ObjectID, uploadID, partNo, s.partURLExpiry)
	if errors.Is(err, storage.ErrUploadNotFound) {
		outOfSync := &OutOfSyncError{
			Problem: fmt.Sprintf(
				"upload attempt %s is pending in the database but no matching multipart upload exists in storage",
				uploadID,
			),
		}
		s.critical("multipart upload missing for pending attempt",
			"upload_id", uploadID, "bucket_id", bucket, "object_id", attempt.ObjectID)
		return "", outOfSync
	}
	return signedURL, err
}

// Complete finalizes a pending attempt, marks it uploaded, and publishes the
// upload received event. Once the object is durably finalized in storage
// there is no further compensation for later failures.
func (s *UploadService) Complete(ctx context.Context, uploadID string) error {
	attempt, err := s.getUploadIfStatus(ctx, uploadID, model.StatusPending)
	if err != nil {
		return err
	}

	bucket, store, err := s.forAlias(attempt.StorageAlias)
	if err != nil {
		return err
	}

	if confirmErr := store.CompleteMultipartUpload(ctx, bucket, attempt.ObjectID, uploadID); confirmErr != nil {
		var confirm *storage.ConfirmError
		if !errors.As(confirmErr, &confirm) {
			return confirmErr
		}
		// Finalize failures cannot be repaired for this attempt.
		if cancelErr := s.cancelWithFinalStatus(ctx, uploadID, model.StatusFailed); cancelErr != nil {
			return cancelErr
		}
		completionErr := &UploadCompletionError{UploadID: uploadID, Reason: confirm.Reason}
		s.log.Errorw("upload completion failed", "upload_id", uploadID, "reason", confirm.Reason)
		return completionErr
	}

	completionDate := s.now()
	attempt.Status = model.StatusUploaded
	attempt.CompletionDate = &completionDate
	if err := s.records.UpdateAttempt(ctx, attempt); err != nil {
		return err
	}
	s.log.Infow("marked upload attempt as uploaded", "upload_id", uploadID)

	file, err := s.records.GetFile(ctx, attempt.FileID)
	if err != nil {
		return err
	}
	if err := s.publisher.PublishUploadReceived(ctx, file, attempt, bucket); err != nil {
		return err
	}
	s.log.Debugw("published upload received event", "upload_id", uploadID, "file_id", attempt.FileID)
	return nil
}

// Cancel aborts a pending attempt on behalf of the submitter.
func (s *UploadService) Cancel(ctx context.Context, uploadID string) error {
	return s.cancelWithFinalStatus(ctx, uploadID, model.StatusCancelled)
}

func (s *UploadService) cancelWithFinalStatus(ctx context.Context, uploadID string, finalStatus model.UploadStatus) error {
	attempt, err := s.getUploadIfStatus(ctx, uploadID, model.StatusPending)
	if err != nil {
		return err
	}

	bucket, store, err := s.forAlias(attempt.StorageAlias)
	if err != nil {
		return err
	}

	if abortErr := store.AbortMultipartUpload(ctx, bucket, attempt.ObjectID, uploadID); abortErr != nil {
		// A missing multipart upload already matches the state this cancel
		// is driving towards, so it resolves the drift instead of failing.
		if !errors.Is(abortErr, storage.ErrUploadNotFound) {
			cancelErr := &UploadCancelError{UploadID: uploadID}
			s.log.Errorw("could not abort multipart upload",
				"upload_id", uploadID, "error", abortErr)
			return cancelErr
		}
	}

	attempt.Status = finalStatus
	if err := s.records.UpdateAttempt(ctx, attempt); err != nil {
		return err
	}
	s.log.Warnw("aborted multipart upload",
		"upload_id", uploadID, "final_status", finalStatus)
	return nil
}

// AcceptLatest marks the latest attempt of the file as accepted after a
// downstream service registered the upload.
func (s *UploadService) AcceptLatest(ctx context.Context, fileID string) error {
	return s.clearLatestWithFinalStatus(ctx, fileID, model.StatusAccepted)
}

// RejectLatest marks the latest attempt of the file as rejected after a
// downstream validation failure.
func (s *UploadService) RejectLatest(ctx context.Context, fileID string) error {
	return s.clearLatestWithFinalStatus(ctx, fileID, model.StatusRejected)
}

func (s *UploadService) clearLatestWithFinalStatus(ctx context.Context, fileID string, finalStatus model.UploadStatus) error {
	file, err := s.records.GetFile(ctx, fileID)
	if errors.Is(err, repo.ErrNotFound) {
		// File IDs are immutable and shared across services, so an unknown
		// ID from a downstream event points to systemic inconsistency.
		unknownFile := &FileUnknownError{FileID: fileID}
		s.critical("downstream event references unknown file", "file_id", fileID)
		return unknownFile
	}
	if err != nil {
		return err
	}

	if file.LatestUploadID == nil {
		noUpload := &NoLatestUploadError{FileID: fileID}
		s.log.Errorw("file has no latest upload attempt", "file_id", fileID)
		return noUpload
	}

	latest, err := s.GetDetails(ctx, *file.LatestUploadID)
	if err != nil {
		return err
	}

	if latest.Status != model.StatusUploaded {
		switch latest.Status {
		case model.StatusAccepted, model.StatusFailed, model.StatusRejected:
			// Already final: a re-delivered event, not an inconsistency.
			s.log.Infow("ignoring duplicate decision for settled upload attempt",
				"upload_id", latest.UploadID, "file_id", fileID, "status", latest.Status)
			return nil
		}
		mismatch := &UploadStatusMismatchError{
			UploadID:       latest.UploadID,
			ExpectedStatus: model.StatusUploaded,
			CurrentStatus:  latest.Status,
		}
		s.log.Errorw("upload attempt status mismatch",
			"upload_id", latest.UploadID,
			"expected_status", model.StatusUploaded, "current_status", latest.Status)
		return mismatch
	}

	bucket, store, err := s.forAlias(latest.StorageAlias)
	if err != nil {
		return err
	}

	var retErr error
	if removeErr := store.RemoveObject(ctx, bucket, latest.ObjectID); removeErr != nil {
		if errors.Is(removeErr, storage.ErrObjectNotFound) {
			// The database says uploaded, so the object should exist.
			retErr = &OutOfSyncError{
				Problem: fmt.Sprintf(
					"clearing upload attempt %s for file %s (final status: %s), but object %s is missing from storage",
					latest.UploadID, fileID, finalStatus, latest.ObjectID,
				),
			}
			finalStatus = model.StatusFailed
			s.critical("object missing while clearing uploaded attempt",
				"upload_id", latest.UploadID, "file_id", fileID, "object_id", latest.ObjectID)
		} else {
			retErr = removeErr
		}
	}

	// Persist the final status regardless of the delete outcome so the
	// attempt never stays stuck at uploaded.
	latest.Status = finalStatus
	if updateErr := s.records.UpdateAttempt(ctx, latest); updateErr != nil && retErr == nil {
		retErr = updateErr
	}

	if retErr == nil {
		s.log.Infow("settled latest upload attempt",
			"file_id", fileID, "upload_id", latest.UploadID, "final_status", finalStatus)
	}
	return retErr
}

// DeletionRequested tears down all traces of a file: its metadata record,
// every upload attempt, and any objects or in-flight multipart uploads left
// behind by earlier partial failures. Individual not-found conditions are
// tolerated so repeated delivery stays idempotent.
func (s *UploadService) DeletionRequested(ctx context.Context, fileID string) error {
	if err := s.records.DeleteFile(ctx, fileID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	attempts, err := s.records.FindAttemptsByFile(ctx, fileID)
	if err != nil {
		return err
	}

	for _, attempt := range attempts {
		bucket, store, err := s.locations.ForAlias(attempt.StorageAlias)
		if err != nil {
			s.critical("attempt references unconfigured storage alias",
				"upload_id", attempt.UploadID, "file_id", fileID, "storage_alias", attempt.StorageAlias)
			return &UnknownStorageAliasError{StorageAlias: attempt.StorageAlias}
		}

		exists, err := store.ObjectExists(ctx, bucket, attempt.ObjectID)
		if err != nil {
			return err
		}
		if exists {
			if err := store.RemoveObject(ctx, bucket, attempt.ObjectID); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
				return err
			}
		}

		if err := store.AbortMultipartUpload(ctx, bucket, attempt.ObjectID, attempt.UploadID); err != nil && !errors.Is(err, storage.ErrUploadNotFound) {
			return err
		}

		if err := s.records.DeleteAttempt(ctx, attempt.UploadID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
	}

	if err := s.publisher.PublishDeletionSuccessful(ctx, fileID); err != nil {
		return err
	}
	s.log.Infow("deleted all data for file", "file_id", fileID)
	return nil
}
