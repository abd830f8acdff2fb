package model

// FileMetadata is the registered metadata for a single logical file.
// The content fields are immutable once set; only LatestUploadID changes
// afterwards, and only through the upload service.
type FileMetadata struct {
	FileID string `gorm:"column:file_id;primaryKey;size:128" json:"file_id"`

	FileName        string `gorm:"column:file_name;size:255;not null" json:"file_name"`
	DecryptedSHA256 string `gorm:"column:decrypted_sha256;size:64;not null" json:"decrypted_sha256"`
	DecryptedSize   int64  `gorm:"column:decrypted_size;not null" json:"decrypted_size"`

	// ID of the most recently created upload attempt for this file,
	// nil until the first attempt is initiated.
	LatestUploadID *string `gorm:"column:latest_upload_id;size:128" json:"latest_upload_id"`
}

// TableName returns the database table name.
func (FileMetadata) TableName() string {
	return "file_metadata"
}
