package dto

// CreateUploadRequest starts a new upload attempt for a registered file.
type CreateUploadRequest struct {
	FileID             string `json:"file_id" binding:"required"`
	SubmitterPublicKey string `json:"submitter_public_key" binding:"required"`
	StorageAlias       string `json:"storage_alias" binding:"required"`
}

// UpdateUploadStatusRequest moves a pending attempt to uploaded or
// cancelled.
type UpdateUploadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=uploaded cancelled"`
}
