package router

import (
	"UploadInbox/internal/handler"
	"UploadInbox/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter(h *handler.Handler) *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	api := r.Group("/api")
	{
		uploads := api.Group("/uploads")
		{
			uploads.POST("", h.CreateUpload)
			uploads.GET("/:uploadID", h.GetUpload)
			uploads.PATCH("/:uploadID", h.UpdateUploadStatus)
			uploads.POST("/:uploadID/parts/:partNo/signed-urls", h.CreatePartURL)
		}
		api.GET("/files/:fileID", h.GetFileMetadata)
	}
	return r
}
