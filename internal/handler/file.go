package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetFileMetadata returns the registered metadata for a file.
func (h *Handler) GetFileMetadata(c *gin.Context) {
	file, err := h.files.GetByID(c.Request.Context(), c.Param("fileID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}
