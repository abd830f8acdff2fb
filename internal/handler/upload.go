package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"UploadInbox/internal/dto"
	"UploadInbox/internal/service"
	"UploadInbox/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPartNumber = 10000

// UploadAPI is the slice of the upload service the HTTP layer exposes.
type UploadAPI interface {
	InitiateNew(ctx context.Context, fileID, submitterPublicKey, storageAlias string) (model.UploadAttempt, error)
	GetDetails(ctx context.Context, uploadID string) (model.UploadAttempt, error)
	CreatePartURL(ctx context.Context, uploadID string, partNo int) (string, error)
	Complete(ctx context.Context, uploadID string) error
	Cancel(ctx context.Context, uploadID string) error
}

// FileAPI is the slice of the file metadata service the HTTP layer exposes.
type FileAPI interface {
	GetByID(ctx context.Context, fileID string) (model.FileMetadata, error)
}

// Handler maps HTTP requests onto the services and service errors back onto
// status codes.
type Handler struct {
	uploads UploadAPI
	files   FileAPI
	log     *zap.SugaredLogger
}

func New(uploads UploadAPI, files FileAPI, log *zap.SugaredLogger) *Handler {
	return &Handler{uploads: uploads, files: files, log: log}
}

// writeError translates a service error into a stable error response.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		fileUnknown   *service.FileUnknownError
		unknownUpload *service.UnknownUploadError
		mismatch      *service.UploadStatusMismatchError
		activeUpload  *service.ExistingActiveUploadError
		unknownAlias  *service.UnknownStorageAliasError
		inInbox       *service.FileAlreadyInInboxError
		completion    *service.UploadCompletionError
		cancel        *service.UploadCancelError
	)

	switch {
	case errors.As(err, &fileUnknown):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			ExceptionID: "fileNotRegistered",
			Description: err.Error(),
			Data:        gin.H{"file_id": fileUnknown.FileID},
		})
	case errors.As(err, &unknownUpload):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			ExceptionID: "noSuchUpload",
			Description: err.Error(),
			Data:        gin.H{"upload_id": unknownUpload.UploadID},
		})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "uploadStatusMismatch",
			Description: err.Error(),
			Data: gin.H{
				"upload_id":       mismatch.UploadID,
				"expected_status": mismatch.ExpectedStatus,
				"current_status":  mismatch.CurrentStatus,
			},
		})
	case errors.As(err, &activeUpload):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "existingActiveUpload",
			Description: err.Error(),
			Data:        gin.H{"active_upload": activeUpload.ActiveUpload},
		})
	case errors.As(err, &unknownAlias):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "noSuchStorageAlias",
			Description: err.Error(),
			Data:        gin.H{"storage_alias": unknownAlias.StorageAlias},
		})
	case errors.As(err, &inInbox):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "fileAlreadyInInbox",
			Description: err.Error(),
			Data:        gin.H{"file_id": inInbox.FileID},
		})
	case errors.As(err, &completion):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "uploadCompletionError",
			Description: err.Error(),
			Data: gin.H{
				"upload_id": completion.UploadID,
				"reason":    completion.Reason,
			},
		})
	case errors.As(err, &cancel):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "uploadCancelError",
			Description: err.Error(),
			Data:        gin.H{"upload_id": cancel.UploadID},
		})
	default:
		h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			ExceptionID: "internalError",
			Description: "an internal error occurred",
		})
	}
}

// CreateUpload starts a new upload attempt.
func (h *Handler) CreateUpload(c *gin.Context) {
	var req dto.CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "malformedRequest",
			Description: err.Error(),
		})
		return
	}

	attempt, err := h.uploads.InitiateNew(c.Request.Context(), req.FileID, req.SubmitterPublicKey, req.StorageAlias)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// GetUpload returns details on an upload attempt.
func (h *Handler) GetUpload(c *gin.Context) {
	attempt, err := h.uploads.GetDetails(c.Request.Context(), c.Param("uploadID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// UpdateUploadStatus moves a pending attempt to uploaded or cancelled.
func (h *Handler) UpdateUploadStatus(c *gin.Context) {
	var req dto.UpdateUploadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "malformedRequest",
			Description: err.Error(),
		})
		return
	}

	uploadID := c.Param("uploadID")
	var err error
	switch req.Status {
	case string(model.StatusUploaded):
		err = h.uploads.Complete(c.Request.Context(), uploadID)
	case string(model.StatusCancelled):
		err = h.uploads.Cancel(c.Request.Context(), uploadID)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreatePartURL presigns an upload URL for one part of a pending attempt.
func (h *Handler) CreatePartURL(c *gin.Context) {
	partNo, err := strconv.Atoi(c.Param("partNo"))
	if err != nil || partNo < 1 || partNo > maxPartNumber {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			ExceptionID: "malformedRequest",
			Description: "part number must be between 1 and 10000",
		})
		return
	}

	signedURL, err := h.uploads.CreatePartURL(c.Request.Context(), c.Param("uploadID"), partNo)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PartURLResponse{URL: signedURL})
}
