package dto

import "UploadInbox/model"

// PartURLResponse carries a presigned part upload URL.
type PartURLResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the shape of every error body. ExceptionID is a stable
// identifier clients branch on; Data carries the structured details of the
// failure.
type ErrorResponse struct {
	ExceptionID string                 `json:"exception_id"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// ActiveUploadConflict is the Data payload of an existingActiveUpload
// error.
type ActiveUploadConflict struct {
	ActiveUpload model.UploadAttempt `json:"active_upload"`
}
