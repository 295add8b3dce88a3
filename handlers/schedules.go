package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"

	"agenda-widget/logger"
	"agenda-widget/middleware"
	"agenda-widget/models"
	"agenda-widget/services"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	minioService *services.MinIOService
	remote       *services.MinIORemote
	importer     *services.ImporterService
	cache        *services.ScheduleCache
	sourceBucket string
}

func NewScheduleHandler(minio *services.MinIOService, cache *services.ScheduleCache, sourceBucket string) *ScheduleHandler {
	return &ScheduleHandler{
		minioService: minio,
		remote:       services.NewMinIORemote(minio),
		importer:     services.NewImporterService(),
		cache:        cache,
		sourceBucket: sourceBucket,
	}
}

// ImportSchedules превращает загруженные XLSX пользователя в активный документ расписания.
// Файлы ищутся в бакете загрузки по пути users/<uid>/imports/<file>.
func (h *ScheduleHandler) ImportSchedules(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	userID := middleware.UserID(c)
	if userID == "" {
		userID = req.UserID
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user is required"})
		return
	}

	results := make([]models.ImportResult, 0, len(req.Files))
	succeeded := 0
	for _, file := range req.Files {
		result := h.importOne(c, userID, file)
		if result.Success {
			succeeded++
		}
		results = append(results, result)
	}
	if succeeded > 0 {
		h.cache.Invalidate(userID)
	}

	failed := len(req.Files) - succeeded
	statusCode := http.StatusOK
	if failed > 0 && succeeded == 0 {
		statusCode = http.StatusInternalServerError
	} else if failed > 0 {
		statusCode = http.StatusMultiStatus
	}

	c.JSON(statusCode, gin.H{
		"message":   fmt.Sprintf("processed %d files: %d succeeded, %d failed", len(req.Files), succeeded, failed),
		"total":     len(req.Files),
		"succeeded": succeeded,
		"failed":    failed,
		"results":   results,
	})
}

func (h *ScheduleHandler) importOne(c *gin.Context, userID, file string) models.ImportResult {
	result := models.ImportResult{FileName: file}
	ctx := c.Request.Context()

	name := path.Base(file)
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		result.Error = "only .xlsx files are supported"
		return result
	}
	sourcePath := fmt.Sprintf("users/%s/imports/%s", userID, name)

	exists, err := h.minioService.ObjectExistsInBucket(ctx, h.sourceBucket, sourcePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to check file existence: %v", err)
		return result
	}
	if !exists {
		result.Error = fmt.Sprintf("file not found in bucket: %s", sourcePath)
		return result
	}

	data, err := h.minioService.DownloadFile(ctx, h.sourceBucket, sourcePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to download file: %v", err)
		return result
	}

	scheduleID := strings.TrimSuffix(name, path.Ext(name))
	doc, err := h.importer.ParseXLSX(bytes.NewReader(data), userID, scheduleID)
	if err != nil {
		result.Error = err.Error()
		logger.Warnf("schedule import: %s: %v", sourcePath, err)
		return result
	}

	target, err := h.remote.SaveSchedule(ctx, doc)
	if err != nil {
		result.Error = fmt.Sprintf("failed to store schedule: %v", err)
		return result
	}

	logger.Infof("schedule import: %s -> %s", sourcePath, target)
	result.TargetFile = target
	result.Slots = len(doc.Slots)
	result.Success = true
	return result
}

// InvalidateCache сбрасывает кэш документов расписания
func (h *ScheduleHandler) InvalidateCache(c *gin.Context) {
	h.cache.Flush()
	c.JSON(http.StatusOK, gin.H{
		"message": "cache invalidated successfully",
	})
}
