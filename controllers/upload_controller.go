package controllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/logger"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/services"
	"github.com/kendall-kelly/prepress-orders-api/utils"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"go.uber.org/zap"
)

// UploadOrderFile handles POST /api/v1/orders/:id/files
func UploadOrderFile(c *gin.Context) {
	uploadFile(c, workflow.KindOrder, "Order")
}

// UploadClaimFile handles POST /api/v1/claims/:id/files
func UploadClaimFile(c *gin.Context) {
	uploadFile(c, workflow.KindClaim, "Claim")
}

// ListOrderFiles handles GET /api/v1/orders/:id/files
func ListOrderFiles(c *gin.Context) {
	listFiles(c, workflow.KindOrder, "Order")
}

// ListClaimFiles handles GET /api/v1/claims/:id/files
func ListClaimFiles(c *gin.Context) {
	listFiles(c, workflow.KindClaim, "Claim")
}

// uploadFile stores a multipart "file" field and records it against the target.
// The optional "file_type" form field classifies it (design, reference, proof, claim, other).
func uploadFile(c *gin.Context, kind workflow.EntityKind, label string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", label)
	if !ok {
		return
	}
	target := workflow.AttachmentTarget{Kind: kind, ID: id}

	storage := services.GetFileStorage()
	if storage == nil {
		respondError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "File storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A file must be uploaded in the \"file\" field")
		return
	}

	engine := newEngine()
	ctx := c.Request.Context()

	// Check access before anything is written to storage
	if err := engine.CheckAttach(ctx, actor, target); err != nil {
		respondWorkflowError(c, err)
		return
	}

	stored, err := storage.Store(ctx, fileHeader, folderFor(kind, id))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	attachment, err := engine.RecordAttachment(ctx, actor, target, workflow.NewAttachment{
		Filename:     stored.Filename,
		OriginalName: fileHeader.Filename,
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		StorageKey:   stored.Key,
		FileType:     models.FileType(c.PostForm("file_type")),
	})
	if err != nil {
		if delErr := storage.Delete(ctx, stored.Key); delErr != nil {
			logger.Log.Warn("failed to remove orphaned upload", zap.String("key", stored.Key), zap.Error(delErr))
		}
		respondWorkflowError(c, err)
		return
	}

	if url, err := storage.URL(ctx, attachment.StorageKey); err == nil {
		attachment.URL = url
	}

	respondData(c, http.StatusCreated, attachment)
}

func listFiles(c *gin.Context, kind workflow.EntityKind, label string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", label)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	attachments, err := newEngine().ListAttachments(ctx, actor, workflow.AttachmentTarget{Kind: kind, ID: id})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	if storage := services.GetFileStorage(); storage != nil {
		for i := range attachments {
			url, err := storage.URL(ctx, attachments[i].StorageKey)
			if err != nil {
				logger.Log.Warn("failed to build file url", zap.Uint("attachment_id", attachments[i].ID), zap.Error(err))
				continue
			}
			attachments[i].URL = url
		}
	}

	respondData(c, http.StatusOK, attachments)
}

func folderFor(kind workflow.EntityKind, id uint) string {
	if kind == workflow.KindClaim {
		return "claims/" + strconv.FormatUint(uint64(id), 10)
	}
	return "orders/" + strconv.FormatUint(uint64(id), 10)
}

// uploadDir is where locally stored files live
func uploadDir() string {
	if local, ok := services.GetFileStorage().(*services.LocalFileStorage); ok {
		return local.Dir()
	}
	if cfg := config.GetConfig(); cfg != nil && cfg.UploadDir != "" {
		return cfg.UploadDir
	}
	return utils.UploadDir
}

// GetUploadedFile handles GET /api/v1/uploads/:filename - serves locally stored attachments
func GetUploadedFile(c *gin.Context) {
	filePath, err := utils.ResolveUploadPath(uploadDir(), c.Param("filename"))
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid file name")
		return
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		return
	}

	c.Header("Content-Type", utils.DetectMimeType(filePath))
	c.Header("Cache-Control", "private, max-age=3600")
	c.File(filePath)
}
