package service

import (
	"context"
	"errors"
	"sort"

	"UploadInbox/internal/repo"
	"UploadInbox/model"

	"go.uber.org/zap"
)

// FileMetadataService keeps file metadata records in sync with upstream
// registration facts. None of the content fields may change after creation;
// the latest upload pointer is owned by the upload service and is carried
// over unchanged on updates.
type FileMetadataService struct {
	records Persistence
	log     *zap.SugaredLogger
}

func NewFileMetadataService(records Persistence, log *zap.SugaredLogger) *FileMetadataService {
	return &FileMetadataService{records: records, log: log}
}

// FileUpsert is the inbound payload for registering or updating a file.
type FileUpsert struct {
	FileID          string `json:"file_id"`
	FileName        string `json:"file_name"`
	DecryptedSHA256 string `json:"decrypted_sha256"`
	DecryptedSize   int64  `json:"decrypted_size"`
}

func metadataDiff(a, b model.FileMetadata) []string {
	var fields []string
	if a.FileName != b.FileName {
		fields = append(fields, "file_name")
	}
	if a.DecryptedSHA256 != b.DecryptedSHA256 {
		fields = append(fields, "decrypted_sha256")
	}
	if a.DecryptedSize != b.DecryptedSize {
		fields = append(fields, "decrypted_size")
	}
	sort.Strings(fields)
	return fields
}

// UpsertOne registers a new file or validates an update for an existing one.
func (s *FileMetadataService) UpsertOne(ctx context.Context, upsert FileUpsert) error {
	existing, err := s.records.GetFile(ctx, upsert.FileID)
	if errors.Is(err, repo.ErrNotFound) {
		file := model.FileMetadata{
			FileID:          upsert.FileID,
			FileName:        upsert.FileName,
			DecryptedSHA256: upsert.DecryptedSHA256,
			DecryptedSize:   upsert.DecryptedSize,
			LatestUploadID:  nil,
		}
		if err := s.records.InsertFile(ctx, file); err != nil {
			return err
		}
		s.log.Infow("registered new file", "file_id", upsert.FileID)
		return nil
	}
	if err != nil {
		return err
	}

	merged := model.FileMetadata{
		FileID:          upsert.FileID,
		FileName:        upsert.FileName,
		DecryptedSHA256: upsert.DecryptedSHA256,
		DecryptedSize:   upsert.DecryptedSize,
		LatestUploadID:  existing.LatestUploadID,
	}

	if changed := metadataDiff(merged, existing); len(changed) > 0 {
		invalidUpdate := &InvalidMetadataUpdateError{
			FileID:        upsert.FileID,
			InvalidFields: changed,
		}
		s.log.Errorw("rejected metadata update",
			"file_id", upsert.FileID, "invalid_fields", changed)
		return invalidUpdate
	}

	return s.records.UpdateFile(ctx, merged)
}

// UpsertMultiple registers or updates a batch of files.
func (s *FileMetadataService) UpsertMultiple(ctx context.Context, upserts []FileUpsert) error {
	for _, upsert := range upserts {
		if err := s.UpsertOne(ctx, upsert); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns the metadata for the file with the given ID.
func (s *FileMetadataService) GetByID(ctx context.Context, fileID string) (model.FileMetadata, error) {
	file, err := s.records.GetFile(ctx, fileID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.FileMetadata{}, &FileUnknownError{FileID: fileID}
	}
	return file, err
}
