// File: handlers/imageCommand.go
package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"transitops/config"
	"transitops/models"
	"transitops/services/command"
	"transitops/services/vision"
)

const (
	maxImageSize = 8 * 1024 * 1024
)

var allowedImageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
}

// ImageCommandHandler accepts a photographed schedule or note, runs OCR on
// it and feeds the extracted text into the command pipeline.
func ImageCommandHandler(svc command.CommandService, ocr vision.OCRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required", "details": err.Error()})
			return
		}
		if fileHeader.Size > maxImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image too large", "details": "maximum size is 8MB"})
			return
		}
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type", "details": "use png, jpg or webp"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open upload", "details": err.Error()})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		ocrCtx, cancel := context.WithTimeout(ctx, time.Duration(config.AppConfig.OCRTimeout)*time.Second)
		defer cancel()
		extraction, err := ocr.ExtractText(ocrCtx, data)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "text extraction failed", "details": err.Error()})
			return
		}
		if strings.TrimSpace(extraction.Text) == "" {
			c.JSON(http.StatusOK, &models.CommandResponse{
				Result: &models.CommandResult{OK: false, Message: "I couldn't read any text in that image."},
			})
			return
		}

		cmd := &models.Command{
			OperatorID: c.GetString("operatorID"),
			RawText:    extraction.Text,
			Origin:     models.OriginImage,
			OCRConf:    extraction.Confidence,
			Hints:      parseImageHints(c),
		}
		resp, err := svc.Submit(ctx, cmd)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process command", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// parseImageHints reads optional form fields describing the UI selection at
// capture time.
func parseImageHints(c *gin.Context) models.ContextHints {
	hints := models.ContextHints{
		CurrentPage:  c.PostForm("currentPage"),
		SelectedKind: c.PostForm("selectedKind"),
	}
	if raw := c.PostForm("selectedEntityId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			hints.SelectedEntityID = id
		}
	}
	return hints
}
