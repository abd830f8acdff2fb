package repo

import (
	"context"
	"errors"

	"UploadInbox/model"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record with the given ID does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when inserting a record whose ID is taken.
	ErrAlreadyExists = errors.New("record already exists")
)

const mysqlDuplicateEntry = 1062

// Records gives keyed access to the file metadata and upload attempt
// collections. A single record write is atomic; there are no cross-record
// transactions.
type Records struct {
	db *gorm.DB
}

func NewRecords(db *gorm.DB) *Records {
	return &Records{db: db}
}

func translateInsertError(err error) error {
	if err == nil {
		return nil
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrAlreadyExists
	}
	return err
}

// GetFile loads a file metadata record by file ID.
func (r *Records) GetFile(ctx context.Context, fileID string) (model.FileMetadata, error) {
	var file model.FileMetadata
	err := r.db.WithContext(ctx).Take(&file, "file_id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FileMetadata{}, ErrNotFound
	}
	return file, err
}

// InsertFile creates a new file metadata record.
func (r *Records) InsertFile(ctx context.Context, file model.FileMetadata) error {
	return translateInsertError(r.db.WithContext(ctx).Create(&file).Error)
}

// UpdateFile overwrites an existing file metadata record.
func (r *Records) UpdateFile(ctx context.Context, file model.FileMetadata) error {
	if _, err := r.GetFile(ctx, file.FileID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.FileMetadata{}).
		Where("file_id = ?", file.FileID).
		Updates(map[string]interface{}{
			"file_name":        file.FileName,
			"decrypted_sha256": file.DecryptedSHA256,
			"decrypted_size":   file.DecryptedSize,
			"latest_upload_id": file.LatestUploadID,
		}).Error
}

// DeleteFile removes a file metadata record by file ID.
func (r *Records) DeleteFile(ctx context.Context, fileID string) error {
	tx := r.db.WithContext(ctx).Delete(&model.FileMetadata{}, "file_id = ?", fileID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAttempt loads an upload attempt record by upload ID.
func (r *Records) GetAttempt(ctx context.Context, uploadID string) (model.UploadAttempt, error) {
	var attempt model.UploadAttempt
	err := r.db.WithContext(ctx).Take(&attempt, "upload_id = ?", uploadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.UploadAttempt{}, ErrNotFound
	}
	return attempt, err
}

// InsertAttempt creates a new upload attempt record.
func (r *Records) InsertAttempt(ctx context.Context, attempt model.UploadAttempt) error {
	return translateInsertError(r.db.WithContext(ctx).Create(&attempt).Error)
}

// UpdateAttempt overwrites an existing upload attempt record.
func (r *Records) UpdateAttempt(ctx context.Context, attempt model.UploadAttempt) error {
	if _, err := r.GetAttempt(ctx, attempt.UploadID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.UploadAttempt{}).
		Where("upload_id = ?", attempt.UploadID).
		Updates(map[string]interface{}{
			"status":          attempt.Status,
			"completion_date": attempt.CompletionDate,
		}).Error
}

// DeleteAttempt removes an upload attempt record by upload ID.
func (r *Records) DeleteAttempt(ctx context.Context, uploadID string) error {
	tx := r.db.WithContext(ctx).Delete(&model.UploadAttempt{}, "upload_id = ?", uploadID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAttemptsByFile returns all upload attempts for the given file.
func (r *Records) FindAttemptsByFile(ctx context.Context, fileID string) ([]model.UploadAttempt, error) {
	var attempts []model.UploadAttempt
	err := r.db.WithContext(ctx).Find(&attempts, "file_id = ?", fileID).Error
	return attempts, err
}

// FindAttemptsByObject returns all upload attempts whose object ID matches.
func (r *Records) FindAttemptsByObject(ctx context.Context, objectID string) ([]model.UploadAttempt, error) {
	var attempts []model.UploadAttempt
	err := r.db.WithContext(ctx).Find(&attempts, "object_id = ?", objectID).Error
	return attempts, err
}
